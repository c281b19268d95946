package repository

import (
	"errors"

	"gorm.io/gorm"
)

var (
	ErrNotFound        = errors.New("record not found")
	ErrDuplicateEmail  = errors.New("email already registered")
	ErrDuplicateSlug   = errors.New("slug already in use")
	ErrUnknownCategory = errors.New("category not found")
)

// translate maps GORM errors onto the repository sentinels. duplicate is
// returned for unique-constraint violations.
func translate(err, duplicate error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case duplicate != nil && errors.Is(err, gorm.ErrDuplicatedKey):
		return duplicate
	default:
		return err
	}
}
