// Package website fetches a readable text rendition of a company homepage
// through the Jina reader service.
package website

import (
	"context"
	"net/http"
	"strings"

	"github.com/teemow/agentdesk/internal/instrumentation"
	"github.com/teemow/agentdesk/internal/upstream"
	"github.com/teemow/agentdesk/internal/validation"
)

// DefaultBaseURL is the reader service root.
const DefaultBaseURL = "https://r.jina.ai"

// removeSelector lists the page elements the reader strips.
const removeSelector = `header, nav, input, iframe, footer, .footer, #footer, #nav, .elementor-button, ` +
	`[data-elementor-type="header"], [style*="display: none"], [style*="visibility: hidden"], ` +
	`aside, script, button, style, img`

// Reader fetches homepages as markdown-like text.
type Reader struct {
	api    *upstream.Client
	apiKey string
}

// NewReader returns a Reader. With an empty apiKey requests are sent
// without Authorization.
func NewReader(apiKey string, base upstream.Config) *Reader {
	base.Service = instrumentation.ServiceReader
	if base.BaseURL == "" {
		base.BaseURL = DefaultBaseURL
	}
	return &Reader{api: upstream.New(base), apiKey: apiKey}
}

// DomainFromEmail returns the part after the last "@".
func DomainFromEmail(email string) (string, error) {
	email, err := validation.Email("email", email)
	if err != nil {
		return "", err
	}
	domain := strings.ToLower(email[strings.LastIndex(email, "@")+1:])
	if domain == "" {
		return "", &validation.ValidationError{Field: "email", Reason: "has no domain"}
	}
	return domain, nil
}

// Headers returns the reader directives sent with every request.
func (r *Reader) Headers() http.Header {
	h := http.Header{
		"X-Md-Bullet-List-Marker": {"-"},
		"X-Md-Em-Delimiter":       {"*"},
		"X-Remove-Selector":       {removeSelector},
		"X-Retain-Images":         {"none"},
		"X-With-Generated-Alt":    {"true"},
	}
	if r.apiKey != "" {
		h.Set("Authorization", "Bearer "+r.apiKey)
	}
	return h
}

// Fetch returns the text of https://<domain>.
func (r *Reader) Fetch(ctx context.Context, domain string) (string, error) {
	domain, err := validation.Required("domain", domain)
	if err != nil {
		return "", err
	}
	return r.api.GetText(ctx, instrumentation.OperationFetchSite, "/https://"+domain, r.Headers())
}

// FetchForEmail fetches the homepage of the email's domain.
func (r *Reader) FetchForEmail(ctx context.Context, email string) (string, error) {
	domain, err := DomainFromEmail(email)
	if err != nil {
		return "", err
	}
	return r.Fetch(ctx, domain)
}
