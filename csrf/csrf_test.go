package csrf_test

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mcpbridge/consent-bridge/csrf"
)

func TestIssue(t *testing.T) {
	token, cookie := csrf.Issue()

	require.NotEmpty(t, token)
	require.Equal(t, csrf.CookieName, cookie.Name)
	require.Equal(t, token, cookie.Value)
	require.True(t, cookie.HttpOnly)
	require.True(t, cookie.Secure)
	require.Equal(t, "/", cookie.Path)
	require.Empty(t, cookie.Domain, "host-locked cookies must not carry a Domain attribute")
	require.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
	require.Equal(t, 600, cookie.MaxAge)

	token2, _ := csrf.Issue()
	require.NotEqual(t, token, token2)
}

func TestValidate(t *testing.T) {
	withToken := func(field, cookieVal string) (url.Values, []*http.Cookie) {
		form := url.Values{}
		if field != "" {
			form.Set(csrf.FormField, field)
		}
		var cookies []*http.Cookie
		if cookieVal != "" {
			cookies = []*http.Cookie{{Name: csrf.CookieName, Value: cookieVal}}
		}
		return form, cookies
	}

	t.Run("matching token and cookie", func(t *testing.T) {
		form, cookies := withToken("abc123", "abc123")
		clear, err := csrf.Validate(form, cookies)
		require.NoError(t, err)
		require.Equal(t, csrf.CookieName, clear.Name)
		require.Equal(t, -1, clear.MaxAge, "cookie must be cleared after use")
	})

	t.Run("missing form field", func(t *testing.T) {
		form, cookies := withToken("", "abc123")
		_, err := csrf.Validate(form, cookies)
		require.ErrorIs(t, err, csrf.ErrMissingToken)
	})

	t.Run("missing cookie", func(t *testing.T) {
		form, cookies := withToken("abc123", "")
		_, err := csrf.Validate(form, cookies)
		require.ErrorIs(t, err, csrf.ErrMissingToken)
	})

	t.Run("single character difference", func(t *testing.T) {
		form, cookies := withToken("abc123", "abc124")
		_, err := csrf.Validate(form, cookies)
		require.ErrorIs(t, err, csrf.ErrMismatch)
	})

	t.Run("case difference", func(t *testing.T) {
		form, cookies := withToken("abc123", "ABC123")
		_, err := csrf.Validate(form, cookies)
		require.ErrorIs(t, err, csrf.ErrMismatch)
	})

	t.Run("unrelated cookies are ignored", func(t *testing.T) {
		form := url.Values{csrf.FormField: {"abc123"}}
		cookies := []*http.Cookie{
			{Name: "other", Value: "abc123"},
			{Name: csrf.CookieName, Value: "abc123"},
		}
		_, err := csrf.Validate(form, cookies)
		require.NoError(t, err)
	})
}
