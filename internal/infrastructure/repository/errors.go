package repository

import (
	"errors"

	domainRepo "github.com/sangkips/dealflow-api/internal/domain/repository"
	"gorm.io/gorm"
)

// translateCreateError maps gorm's duplicate key error onto the domain sentinel.
// The connection must be opened with gorm.Config{TranslateError: true}.
func translateCreateError(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domainRepo.ErrDuplicate
	}
	return err
}
