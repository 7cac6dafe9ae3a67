// Package consent renders the approval dialog shown before a client is
// granted access. Rendering is a pure function of the dialog data: no
// store is touched and the opaque state blob is embedded unmodified.
package consent

import (
	"bytes"
	"embed"
	"html/template"
	"io/fs"
	"net/http"
)

//go:embed templates/*
var templateFiles embed.FS

// Dialog is everything the consent page needs. Client fields come from
// registered (possibly attacker-controlled) metadata and are sanitized
// during rendering; StateBlob is base64-of-JSON and is round-tripped
// through a hidden form field without interpretation.
type Dialog struct {
	ClientName        string
	ClientURI         string
	LogoURI           string
	ServerName        string
	ServerDescription string
	Scopes            []string
	CSRFToken         string
	StateBlob         string
	SubmitPath        string
}

type dialogView struct {
	ClientName        string
	ClientURI         template.URL
	LogoURI           template.URL
	ServerName        string
	ServerDescription string
	Scopes            []string
	CSRFToken         string
	StateBlob         string
	SubmitPath        string
}

// Render produces the consent page plus the headers it must be served
// with. The anti-framing headers are part of the contract, not a serving
// concern: the page carries a CSRF-protected form.
func Render(d Dialog) ([]byte, http.Header, error) {
	tmpl, err := ParseTemplate("consent.html")
	if err != nil {
		return nil, nil, err
	}

	view := dialogView{
		ClientName:        d.ClientName,
		ClientURI:         template.URL(SanitizeURL(d.ClientURI)),
		LogoURI:           template.URL(SanitizeURL(d.LogoURI)),
		ServerName:        d.ServerName,
		ServerDescription: d.ServerDescription,
		Scopes:            d.Scopes,
		CSRFToken:         d.CSRFToken,
		StateBlob:         d.StateBlob,
		SubmitPath:        d.SubmitPath,
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, view); err != nil {
		return nil, nil, err
	}

	headers := http.Header{}
	headers.Set("Content-Type", "text/html; charset=utf-8")
	headers.Set("Content-Security-Policy", "frame-ancestors 'none'")
	headers.Set("X-Frame-Options", "DENY")
	return buf.Bytes(), headers, nil
}

func TemplateFilesFS() fs.FS {
	subFS, err := fs.Sub(templateFiles, "templates")
	if err != nil {
		panic("Failed to create templates sub filesystem: " + err.Error())
	}
	return subFS
}

// ParseTemplate parses a template from the embedded filesystem
func ParseTemplate(name string) (*template.Template, error) {
	content, err := fs.ReadFile(TemplateFilesFS(), name)
	if err != nil {
		return nil, err
	}
	return template.New(name).Parse(string(content))
}
