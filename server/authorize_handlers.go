package server

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/mcpbridge/consent-bridge/approvals"
	"github.com/mcpbridge/consent-bridge/clients"
	"github.com/mcpbridge/consent-bridge/consent"
	"github.com/mcpbridge/consent-bridge/csrf"
	apperrors "github.com/mcpbridge/consent-bridge/internal/errors"
	"github.com/mcpbridge/consent-bridge/sessionbinding"
	"github.com/mcpbridge/consent-bridge/statestore"
)

// stateBlob is the request context round-tripped through the consent
// form's hidden state field, as base64 of JSON. It travels through the
// browser, so everything in it is re-validated on submission.
type stateBlob struct {
	ClientID    string `json:"clientId"`
	RedirectURI string `json:"redirectUri"`
	Scope       string `json:"scope"`
	ClientState string `json:"clientState"`
}

func encodeStateBlob(blob stateBlob) (string, error) {
	payload, err := json.Marshal(blob)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(payload), nil
}

func decodeStateBlob(raw string) (stateBlob, error) {
	var blob stateBlob
	payload, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return blob, apperrors.ErrMalformedStateBlob
	}
	if err := json.Unmarshal(payload, &blob); err != nil {
		return blob, apperrors.ErrMalformedStateBlob
	}
	if blob.ClientID == "" || blob.RedirectURI == "" {
		return blob, apperrors.ErrMalformedStateBlob
	}
	return blob, nil
}

// AuthorizeGetHandler begins the authorization flow. A client already
// approved by this browser skips the dialog entirely; everyone else gets
// the CSRF-protected consent page.
func (s *Server) AuthorizeGetHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		blob := stateBlob{
			ClientID:    query.Get("client_id"),
			RedirectURI: query.Get("redirect_uri"),
			Scope:       query.Get("scope"),
			ClientState: query.Get("state"),
		}
		if blob.ClientID == "" {
			s.respondFlowError(w, apperrors.Wrapf(apperrors.ErrInvalidRequest, "missing client_id"))
			return
		}

		client, err := s.validateRequest(blob)
		if err != nil {
			s.respondFlowError(w, err)
			return
		}

		if approvals.IsApproved(client.ID, r.Cookies(), s.cookieSecret) {
			s.metrics.AutoApprovals.Inc()
			s.redirectUpstream(w, r, blob)
			return
		}

		csrfToken, csrfCookie := csrf.Issue()
		encoded, err := encodeStateBlob(blob)
		if err != nil {
			s.respondFlowError(w, apperrors.Wrapf(apperrors.ErrInternal, "encode state"))
			return
		}

		body, headers, err := consent.Render(consent.Dialog{
			ClientName:        client.Name,
			ClientURI:         client.ClientURI,
			LogoURI:           client.LogoURI,
			ServerName:        s.config.GetAppName(),
			ServerDescription: s.config.GetServerDescription(),
			Scopes:            splitScope(blob.Scope),
			CSRFToken:         csrfToken,
			StateBlob:         encoded,
			SubmitPath:        RouteAuthorize,
		})
		if err != nil {
			log.Err(err).Msg("Failed to render consent dialog")
			s.respondFlowError(w, apperrors.Wrapf(apperrors.ErrInternal, "render consent dialog"))
			return
		}

		s.metrics.DialogsRendered.Inc()
		http.SetCookie(w, csrfCookie)
		for key, values := range headers {
			for _, v := range values {
				w.Header().Add(key, v)
			}
		}
		_, _ = w.Write(body)
	}
}

// AuthorizeSubmitHandler handles the consent form submission: CSRF
// validation, approval recording, state creation, session binding, then
// the redirect to the upstream identity provider.
func (s *Server) AuthorizeSubmitHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			s.respondFlowError(w, apperrors.Wrapf(apperrors.ErrInvalidRequest, "failed to parse form data"))
			return
		}

		csrfClear, err := csrf.Validate(r.PostForm, r.Cookies())
		if err != nil {
			s.respondFlowError(w, err)
			return
		}

		blob, err := decodeStateBlob(r.PostForm.Get("state"))
		if err != nil {
			s.respondFlowError(w, err, csrfClear)
			return
		}

		// The blob round-tripped through the browser; trust nothing in it
		// that hasn't been checked against the registry again.
		client, err := s.validateRequest(blob)
		if err != nil {
			s.respondFlowError(w, err, csrfClear)
			return
		}

		approvalCookie, err := approvals.AddApproval(client.ID, r.Cookies(), s.cookieSecret)
		if err != nil {
			s.respondFlowError(w, apperrors.Wrapf(apperrors.ErrInternal, "sign approval cookie"), csrfClear)
			return
		}

		s.metrics.ConsentGranted.Inc()
		http.SetCookie(w, csrfClear)
		http.SetCookie(w, approvalCookie)
		s.redirectUpstream(w, r, blob)
	}
}

// validateRequest checks the request context against the client registry.
func (s *Server) validateRequest(blob stateBlob) (*clients.Client, error) {
	client, err := s.clients.Get(blob.ClientID)
	if err != nil {
		return nil, err
	}
	if err := client.ValidateRedirectURI(blob.RedirectURI); err != nil {
		return nil, err
	}
	if err := client.ValidateScopes(blob.Scope); err != nil {
		return nil, err
	}
	return client, nil
}

// redirectUpstream persists the pending request, binds it to this
// browser and sends the user to the upstream identity provider. The
// upstream state parameter is the bridge's own state token.
func (s *Server) redirectUpstream(w http.ResponseWriter, r *http.Request, blob stateBlob) {
	codeVerifier := generateRandomString(32)
	nonce := generateRandomString(16)

	stateToken, err := s.state.Create(r.Context(), &statestore.PendingAuthorizationRequest{
		ClientID:     blob.ClientID,
		RedirectURI:  blob.RedirectURI,
		Scope:        blob.Scope,
		ClientState:  blob.ClientState,
		CodeVerifier: codeVerifier,
		Nonce:        nonce,
		CreatedAt:    time.Now(),
	})
	if err != nil {
		log.Err(err).Str("clientId", blob.ClientID).Msg("Failed to create state record")
		s.respondFlowError(w, apperrors.Wrapf(apperrors.ErrInternal, "create state record"))
		return
	}

	http.SetCookie(w, sessionbinding.Bind(stateToken))
	http.Redirect(w, r, s.up.AuthCodeURL(stateToken, nonce, generateCodeChallenge(codeVerifier)), http.StatusSeeOther)
}

func splitScope(scope string) []string {
	if scope == "" {
		return nil
	}
	return strings.Fields(scope)
}
