package domain

import (
	"errors"
)

var (
	MessageFailedProcessRequest = "failed to process request"
	MessageFailedBodyRequest    = "failed to parse request body"
	MessageFailedGetToken       = "failed to get token"
	MessageFailedTokenInvalid   = "failed to token invalid"
	MessageSuccessPing          = "pong"

	ErrTokenNotFound = errors.New("failed to token not found")
	ErrTokenInvalid  = errors.New("token invalid")
	ErrTokenExpired  = errors.New("token expired")
	ErrSecretMissing = errors.New("JWT_SECRET is not configured")
)
