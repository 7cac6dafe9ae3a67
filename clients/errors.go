package clients

import "errors"

var (
	ErrClientNotFound     = errors.New("client not found")
	ErrInvalidScope       = errors.New("invalid scope")
	ErrInvalidRedirectURI = errors.New("invalid or no redirect uri")
)
