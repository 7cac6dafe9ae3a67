package server

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/mcpbridge/consent-bridge/clients"
	"github.com/mcpbridge/consent-bridge/csrf"
	apperrors "github.com/mcpbridge/consent-bridge/internal/errors"
	"github.com/mcpbridge/consent-bridge/sessionbinding"
	"github.com/mcpbridge/consent-bridge/statestore"
)

const contentTypeJSON = "application/json; charset=utf-8"

// generateRandomString creates a random base64url string
func generateRandomString(length int) string {
	b := make([]byte, length)
	rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}

// generateCodeChallenge creates a PKCE code challenge from a verifier
func generateCodeChallenge(verifier string) string {
	hash := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(hash[:])
}

func writeJSONError(w http.ResponseWriter, errorCode, description string, statusCode int) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":             errorCode,
		"error_description": description,
	})
}

// respondFlowError maps a flow failure to its OAuth error response. Any
// cookie-clearing directives accumulated before the failure are still
// applied so a broken flow does not leave stale security cookies behind.
func (s *Server) respondFlowError(w http.ResponseWriter, err error, clears ...*http.Cookie) {
	for _, c := range clears {
		if c != nil {
			http.SetCookie(w, c)
		}
	}

	code, status := classifyFlowError(err)
	s.metrics.RecordFailure(code)

	// Internal failure details (store addresses, upstream responses) stay
	// in the logs; the browser only gets a generic description.
	description := err.Error()
	if status == http.StatusInternalServerError {
		log.Err(err).Msg("Authorization flow failed")
		description = "internal server error"
	}
	writeJSONError(w, code, description, status)
}

func classifyFlowError(err error) (string, int) {
	switch {
	case errors.Is(err, statestore.ErrCorruptState),
		errors.Is(err, apperrors.ErrUpstreamExchange),
		errors.Is(err, apperrors.ErrInvalidIDToken),
		errors.Is(err, apperrors.ErrInternal):
		return "server_error", http.StatusInternalServerError

	case errors.Is(err, statestore.ErrInvalidOrExpiredState),
		errors.Is(err, csrf.ErrMissingToken),
		errors.Is(err, csrf.ErrMismatch),
		errors.Is(err, sessionbinding.ErrMissingBinding),
		errors.Is(err, sessionbinding.ErrMismatch),
		errors.Is(err, clients.ErrClientNotFound),
		errors.Is(err, clients.ErrInvalidRedirectURI),
		errors.Is(err, clients.ErrInvalidScope),
		errors.Is(err, apperrors.ErrMalformedStateBlob),
		errors.Is(err, apperrors.ErrInvalidNonce),
		errors.Is(err, apperrors.ErrUpstreamDenied),
		errors.Is(err, apperrors.ErrInvalidRequest):
		return "invalid_request", http.StatusBadRequest

	default:
		return "server_error", http.StatusInternalServerError
	}
}
