package db

import (
	"errors"

	"gorm.io/gorm"

	"github.com/rohanbsher/immigration-ai/internal/domain"
)

var errDBUnavailable = errors.New("db unavailable")

func translateError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return domain.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return domain.ErrConflict
	default:
		return err
	}
}

func strOrEmpty(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

func strOrNil(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
