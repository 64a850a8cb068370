package services

import (
	"errors"

	apperrors "volunvibe/app/errors"
	"volunvibe/app/models"
	"volunvibe/app/repositories"
)

// storeError classifies a repository error. Domain errors pass through.
func storeError(message string, err error) error {
	var de *apperrors.DomainError
	switch {
	case errors.As(err, &de):
		return err
	case errors.Is(err, models.ErrInvalidID):
		return apperrors.InvalidInput("invalid id", nil)
	case errors.Is(err, repositories.ErrNotFound):
		return apperrors.NotFound(message, err)
	case errors.Is(err, repositories.ErrConflict):
		return apperrors.Conflict("concurrent update, try again", err)
	default:
		return apperrors.Internal(message, err)
	}
}
