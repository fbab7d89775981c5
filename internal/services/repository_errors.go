package services

import (
	"errors"

	"gorm.io/gorm"
)

// mapMissing replaces a storage "no rows" error with the domain sentinel.
func mapMissing(err error, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}
