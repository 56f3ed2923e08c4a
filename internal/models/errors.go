package models

import "errors"

// Domain errors surfaced to the caller as user-visible rejections.
// Storage failures are wrapped with %w instead and treated as 500s.
var (
	ErrUnknownSymbol      = errors.New("unknown symbol")
	ErrQuoteUnavailable   = errors.New("quote unavailable")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrInsufficientShares = errors.New("insufficient shares")
	ErrInvalidQuantity    = errors.New("invalid share quantity")
	ErrUserNotFound       = errors.New("user not found")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid username or password")
)
