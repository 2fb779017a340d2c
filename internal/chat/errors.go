package chat

import "errors"

var (
	ErrRoomNotFound = errors.New("chat room not found")
	ErrUserNotFound = errors.New("user not found")
	ErrForbidden    = errors.New("access denied")
	ErrValidation   = errors.New("validation failed")
)
