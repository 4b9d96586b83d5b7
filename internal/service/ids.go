package service

import (
	"fmt"

	"github.com/google/uuid"

	appErrors "github.com/unclebandit/wabulk-backend/internal/errors"
)

func isRecordID(id string) bool {
	return len(id) == 36 && uuid.Validate(id) == nil
}

// checkID rejects a path id that cannot name a stored record.
func checkID(resource, id string) error {
	if !isRecordID(id) {
		return appErrors.NewNotFound(resource, id)
	}
	return nil
}

// checkRefID rejects a malformed id supplied in a request body.
func checkRefID(field, id string) error {
	if !isRecordID(id) {
		return appErrors.NewValidation(field, fmt.Sprintf("%q is not a valid id", id))
	}
	return nil
}

func checkRefIDs(field string, ids []string) error {
	for _, id := range ids {
		if err := checkRefID(field, id); err != nil {
			return err
		}
	}
	return nil
}
