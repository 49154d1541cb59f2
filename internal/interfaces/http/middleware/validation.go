package middleware

import (
	"errors"
	"net/http"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/jewelry/backend/internal/interfaces/http/dto"
)

var (
	phonePattern = regexp.MustCompile(`^\+?[0-9][0-9 ()\-]{4,38}$`)
	slugPattern  = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

	setupValidatorOnce sync.Once
)

// SetupValidator teaches gin's validator the shop tags ("phone", "slug")
// and makes field errors report JSON names. Safe to call more than once.
func SetupValidator() {
	setupValidatorOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(jsonFieldName)
		_ = v.RegisterValidation("phone", matchString(phonePattern))
		_ = v.RegisterValidation("slug", matchString(slugPattern))
	})
}

func jsonFieldName(fld reflect.StructField) string {
	for _, tag := range []string{"json", "form", "uri"} {
		name, _, _ := strings.Cut(fld.Tag.Get(tag), ",")
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return fld.Name
}

func matchString(re *regexp.Regexp) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return re.MatchString(fl.Field().String())
	}
}

// FormatValidationErrors builds the 400 body for a failed bind. Anything
// that is not a field error (broken JSON, wrong types) becomes one "body" entry.
func FormatValidationErrors(err error, requestID string) dto.Response {
	var details []dto.ValidationDetail

	var fieldErrs validator.ValidationErrors
	switch {
	case errors.As(err, &fieldErrs):
		details = make([]dto.ValidationDetail, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			details = append(details, dto.ValidationDetail{
				Field:   fe.Field(),
				Tag:     fe.Tag(),
				Message: validationMessage(fe),
			})
		}
	case err != nil:
		details = []dto.ValidationDetail{{Field: "body", Message: "Malformed request"}}
	}

	return dto.NewValidationErrorResponse("Request validation failed", requestID, details)
}

// HandleValidationError aborts with the validation envelope
func HandleValidationError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, FormatValidationErrors(err, c.GetString(RequestIDKey)))
}

func validationMessage(fe validator.FieldError) string {
	param := fe.Param()
	isText := fe.Kind() == reflect.String

	switch fe.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Invalid email format"
	case "phone":
		return "Invalid phone number"
	case "slug":
		return "Use lowercase letters, digits and single dashes"
	case "url":
		return "Invalid URL format"
	case "uuid":
		return "Invalid UUID format"
	case "oneof":
		return "Must be one of: " + param
	case "min", "gte":
		if isText {
			return "Must be at least " + param + " characters"
		}
		return "Must be at least " + param
	case "max", "lte":
		if isText {
			return "Must be at most " + param + " characters"
		}
		return "Must be at most " + param
	case "len":
		return "Must be exactly " + param + " characters"
	case "gt":
		return "Must be greater than " + param
	case "lt":
		return "Must be less than " + param
	}
	return "Invalid value"
}
