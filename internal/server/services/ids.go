package services

import (
	"errors"

	"github.com/dmitrijs2005/divvault/internal/common"
	"github.com/google/uuid"
)

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// checkID returns an input error naming what for ids that are not UUIDs.
func checkID(id, what string) error {
	if !validID(id) {
		return common.WithReason(common.ErrInvalidInput, "invalid "+what+" id")
	}
	return nil
}

// notFound replaces common.ErrorNotFound with a reason for the caller and
// passes every other error through.
func notFound(err error, reason string) error {
	if errors.Is(err, common.ErrorNotFound) {
		return common.WithReason(common.ErrorNotFound, reason)
	}
	return err
}
