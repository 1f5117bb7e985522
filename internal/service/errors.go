package service

import "errors"

// Sentinel errors the HTTP layer maps onto status codes. Internal error
// detail stays in the server log; clients only ever see these.
var (
	ErrUnauthorized = errors.New("authentication required")
	ErrForbidden    = errors.New("access denied")
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
)

// Bounds on free-text input, measured in runes.
const (
	maxTitleLen       = 200
	maxCommentBodyLen = 5000
	maxEmojiLen       = 32
)
