package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/jewelry/backend/internal/application/contact"
)

// ContactHandler handles the public contact form and its back-office inbox
type ContactHandler struct {
	BaseHandler
	contactService *contact.Service
}

// NewContactHandler creates a new ContactHandler
func NewContactHandler(contactService *contact.Service) *ContactHandler {
	return &ContactHandler{
		contactService: contactService,
	}
}

// Submit godoc
// @Summary      Send a contact message
// @Description  Public contact form, rate limited per client IP
// @Tags         contact
// @Accept       json
// @Produce      json
// @Param        request body contact.SubmitRequest true "Message"
// @Success      201 {object} dto.Response{data=contact.SubmissionResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      429 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /contact [post]
func (h *ContactHandler) Submit(c *gin.Context) {
	var req contact.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	submission, err := h.contactService.Submit(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, submission)
}

// List godoc
// @Summary      List contact submissions
// @Tags         admin-contact
// @Produce      json
// @Param        status query string false "new, read, replied or archived"
// @Param        search query string false "Name, email, subject or message"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} dto.Response{data=[]contact.SubmissionResponse,meta=dto.Meta}
// @Security     BearerAuth
// @Router       /admin/contact-submissions [get]
func (h *ContactHandler) List(c *gin.Context) {
	var query contact.ListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BindError(c, err)
		return
	}

	page, err := h.contactService.List(c.Request.Context(), query)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	Paginated(&h.BaseHandler, c, page)
}

// Get godoc
// @Summary      Get contact submission
// @Description  Opening a new submission marks it as read
// @Tags         admin-contact
// @Produce      json
// @Param        id path string true "Submission ID"
// @Success      200 {object} dto.Response{data=contact.SubmissionResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/contact-submissions/{id} [get]
func (h *ContactHandler) Get(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	submission, err := h.contactService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, submission)
}

// UpdateStatus godoc
// @Summary      Change submission status
// @Tags         admin-contact
// @Accept       json
// @Produce      json
// @Param        id path string true "Submission ID"
// @Param        request body contact.UpdateStatusRequest true "Status"
// @Success      200 {object} dto.Response{data=contact.SubmissionResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/contact-submissions/{id}/status [put]
func (h *ContactHandler) UpdateStatus(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	var req contact.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	submission, err := h.contactService.UpdateStatus(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, submission)
}

// Delete godoc
// @Summary      Delete contact submission
// @Tags         admin-contact
// @Param        id path string true "Submission ID"
// @Success      204
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/contact-submissions/{id} [delete]
func (h *ContactHandler) Delete(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	if err := h.contactService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}
