package auth

import "errors"

var (
	// ErrInvalidToken means the token is malformed, has a bad signature, or
	// carries unusable claims.
	ErrInvalidToken = errors.New("invalid authentication token")

	// ErrExpiredToken means the token's exp claim has passed.
	ErrExpiredToken = errors.New("authentication token has expired")

	// ErrTokenNotYetValid means the token's nbf claim is in the future.
	ErrTokenNotYetValid = errors.New("authentication token not yet valid")

	// ErrMissingToken means no bearer token was presented.
	ErrMissingToken = errors.New("authentication token is missing")
)
