package service

import "errors"

// Centralized service layer errors.
// All errors returned by service methods are defined here for consistency
// and to make error handling in handlers predictable.

// ===== Authentication Errors =====
var (
	ErrUserNotFound        = errors.New("user not found")
	ErrNicknameTaken       = errors.New("nickname already taken")
	ErrTokenExpired        = errors.New("token expired")
	ErrTokenInvalid        = errors.New("token invalid")
	ErrProviderError       = errors.New("OAuth provider error")
	ErrAccountUpdateFailed = errors.New("account update failed")
)

// ===== Map Errors =====
var (
	ErrMapNotFound       = errors.New("map not found")
	ErrNotMapOwner       = errors.New("not the map owner")
	ErrDuplicateCode     = errors.New("map code already exists")
	ErrAlreadyLiked      = errors.New("map already liked")
	ErrNotLiked          = errors.New("map not liked")
	ErrNoImagesUploaded      = errors.New("no images could be stored")
	ErrImageProcessingFailed = errors.New("image could not be processed")
	ErrImageDeleteFailed     = errors.New("stored images could not be deleted")
)
