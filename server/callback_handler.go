package server

import (
	"net/http"
	"net/url"

	"github.com/rs/zerolog/log"

	apperrors "github.com/mcpbridge/consent-bridge/internal/errors"
	"github.com/mcpbridge/consent-bridge/sessionbinding"
	"github.com/mcpbridge/consent-bridge/token"
)

// CallbackHandler completes the flow when the upstream identity provider
// redirects back. The session binding is verified before the state record
// is trusted; both must pass, and processing halts entirely on either
// failure; there is no fallback path.
func (s *Server) CallbackHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		stateToken := query.Get("state")
		code := query.Get("code")

		// Upstream reported failure: terminate, the user must restart.
		if errParam := query.Get("error"); errParam != "" {
			log.Warn().Str("error", errParam).Str("description", query.Get("error_description")).Msg("Upstream authorization denied")
			s.respondFlowError(w, apperrors.Wrapf(apperrors.ErrUpstreamDenied, "%s", errParam), sessionbinding.ClearCookie())
			return
		}

		if code == "" || stateToken == "" {
			s.respondFlowError(w, apperrors.Wrapf(apperrors.ErrInvalidRequest, "missing code or state parameter"))
			return
		}

		// Prove this browser started the flow. On failure the state
		// record stays untouched, so a retry from the right browser can
		// still succeed within the TTL.
		bindingClear, err := sessionbinding.Verify(stateToken, r.Cookies())
		if err != nil {
			s.respondFlowError(w, err)
			return
		}

		pending, err := s.state.Validate(r.Context(), stateToken)
		if err != nil {
			s.metrics.RecordStateValidation("rejected")
			s.respondFlowError(w, err, bindingClear)
			return
		}
		s.metrics.RecordStateValidation("consumed")

		identity, err := s.up.Authenticate(r.Context(), code, pending.CodeVerifier, pending.Nonce)
		if err != nil {
			log.Err(err).Str("clientId", pending.ClientID).Msg("Upstream authentication failed")
			s.respondFlowError(w, err, bindingClear)
			return
		}

		sessionToken, err := s.minter.Mint(token.Identity{
			Subject: identity.Subject,
			Email:   identity.Email,
			Name:    identity.Name,
		}, pending.ClientID, pending.Scope)
		if err != nil {
			s.respondFlowError(w, apperrors.Wrapf(apperrors.ErrInternal, "mint session token"), bindingClear)
			return
		}

		s.metrics.FlowsCompleted.Inc()
		http.SetCookie(w, bindingClear)
		redirectToClient(w, r, pending.RedirectURI, sessionToken, pending.ClientState)
	}
}

// redirectToClient sends the browser back to the client's registered
// redirect URI with the minted token and the client's original state.
func redirectToClient(w http.ResponseWriter, r *http.Request, redirectURI, sessionToken, clientState string) {
	u, err := url.Parse(redirectURI)
	if err != nil {
		writeJSONError(w, "server_error", "invalid redirect URI", http.StatusInternalServerError)
		return
	}

	params := u.Query()
	params.Set("token", sessionToken)
	if clientState != "" {
		params.Set("state", clientState)
	}
	u.RawQuery = params.Encode()

	http.Redirect(w, r, u.String(), http.StatusSeeOther)
}
