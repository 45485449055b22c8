package teleperson

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// ID is an identifier the API sends either as a number or as a string.
type ID string

// UnmarshalJSON accepts 42 as well as "42".
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("teleperson: id must be a number or a string: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// String returns the identifier as sent in URLs.
func (id ID) String() string {
	return string(id)
}

// IDFromInt builds an ID from a numeric identifier.
func IDFromInt(n int64) ID {
	return ID(strconv.FormatInt(n, 10))
}

// User is a Teleperson account.
type User struct {
	ID        ID     `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
}

// Vendor is a company in a user's hub or lounge.
type Vendor struct {
	ID              ID     `json:"id"`
	CompanyName     string `json:"companyName"`
	CompanyOverview string `json:"companyOverview"`
	WebsiteURL      string `json:"websiteUrl,omitempty"`
}

// VendorSummary is the name and description shown to callers.
type VendorSummary struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Summarize drops vendors without a company name and maps the rest to
// summaries, keeping their order.
func Summarize(vendors []Vendor) []VendorSummary {
	out := make([]VendorSummary, 0, len(vendors))
	for _, v := range vendors {
		if v.CompanyName == "" {
			continue
		}
		out = append(out, VendorSummary{Name: v.CompanyName, Description: v.CompanyOverview})
	}
	return out
}

// Scope selects which vendor collections a lookup returns.
type Scope string

const (
	ScopeAll    Scope = "all"
	ScopeHub    Scope = "hub"
	ScopeLounge Scope = "lounge"
)

// ParseScope maps an argument to a Scope. The empty string means ScopeHub.
func ParseScope(s string) (Scope, error) {
	switch Scope(s) {
	case "":
		return ScopeHub, nil
	case ScopeAll, ScopeHub, ScopeLounge:
		return Scope(s), nil
	default:
		return "", fmt.Errorf("unknown vendor scope %q (want all, hub or lounge)", s)
	}
}

// Vendors is the result of a scoped lookup. Collections outside the
// scope are nil.
type Vendors struct {
	Hub    []VendorSummary `json:"hub,omitempty"`
	Lounge []VendorSummary `json:"lounge,omitempty"`
}

// Count is the number of vendors across both collections.
func (v *Vendors) Count() int {
	return len(v.Hub) + len(v.Lounge)
}

type dataEnvelope[T any] struct {
	Data T `json:"data"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
}
