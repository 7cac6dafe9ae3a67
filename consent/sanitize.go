package consent

import "net/url"

// SanitizeURL returns raw if it is an absolute http or https URL free of
// control characters, otherwise the empty string. Registered client
// metadata feeds the dialog's href and img src attributes, so anything
// that could smuggle another scheme (javascript:, data:) is dropped
// rather than escaped.
func SanitizeURL(raw string) string {
	if raw == "" {
		return ""
	}
	for _, r := range raw {
		if r < 0x20 || r == 0x7f {
			return ""
		}
	}

	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ""
	}
	if u.Host == "" {
		return ""
	}
	return raw
}
