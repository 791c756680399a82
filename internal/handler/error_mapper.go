package handler

import (
	"errors"
	"net/http"

	"github.com/AlonS3/fall-guys-custom-maps-backend/internal/model"
	"github.com/AlonS3/fall-guys-custom-maps-backend/internal/service"
)

// MapServiceError converts a service error to an API error response.
// This centralizes error handling logic for all handlers, ensuring
// consistent HTTP status codes and error messages across the API.
func MapServiceError(err error) *model.APIError {
	if err == nil {
		return nil
	}

	switch {
	// ===== Not Found Errors → 404 =====
	case errors.Is(err, service.ErrMapNotFound):
		return model.NewNotFoundError("Map not found.")
	case errors.Is(err, service.ErrUserNotFound):
		return model.NewNotFoundError("User not found.")

	// ===== Authorization Errors → 403 =====
	case errors.Is(err, service.ErrNotMapOwner):
		return model.NewForbiddenError("You are not allowed to modify this map.")

	// ===== Conflict Errors → 409 =====
	case errors.Is(err, service.ErrDuplicateCode):
		return model.NewConflictError("A map with this code already exists.")
	case errors.Is(err, service.ErrAlreadyLiked):
		return model.NewConflictError("You have already liked this post")
	case errors.Is(err, service.ErrNotLiked):
		return model.NewConflictError("Map is not liked.")
	case errors.Is(err, service.ErrNicknameTaken):
		return model.NewConflictError("This nickname is already taken, please choose another one.")

	// ===== Upload Errors → 400 =====
	case errors.Is(err, service.ErrNoImagesUploaded):
		return model.NewValidationError(http.StatusBadRequest, "Uploading images failed, please try again.")

	// ===== Storage Errors → 500 =====
	case errors.Is(err, service.ErrImageProcessingFailed):
		return &model.APIError{
			Status: http.StatusInternalServerError,
			Detail: "Creating map failed, please try again.",
		}
	case errors.Is(err, service.ErrImageDeleteFailed):
		return &model.APIError{
			Status: http.StatusInternalServerError,
			Detail: "Deleting map failed, please try again later.",
		}

	default:
		return model.NewInternalError()
	}
}

// invalidInputs is the catch-all body for requests that fail
// validation.
func invalidInputs() *model.APIError {
	return model.NewValidationError(http.StatusUnprocessableEntity, "Invalid inputs passed, please check your data.")
}
