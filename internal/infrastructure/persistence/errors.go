package persistence

import (
	"errors"

	"github.com/jewelry/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// The repositories translate gorm errors into domain errors here. The
// gorm config must set TranslateError for the duplicate and foreign key
// cases to fire.

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.ErrNotFound
	}
	return err
}

// duplicate returns conflict when err is a unique violation.
func duplicate(err error, conflict error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return conflict
	}
	return err
}

// referenced returns inUse when err is a foreign key violation.
func referenced(err error, inUse error) error {
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return inUse
	}
	return err
}

// affected turns a write that matched no row into shared.ErrNotFound.
func affected(res *gorm.DB) error {
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}
