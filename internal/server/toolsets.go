package server

import (
	"fmt"
	"strings"
)

// Toolset is a group of tools enabled together.
type Toolset string

const (
	ToolsetBooking   Toolset = "booking"
	ToolsetVendor    Toolset = "vendor"
	ToolsetWebsite   Toolset = "website"
	ToolsetKnowledge Toolset = "knowledge"
)

// AllToolsets lists every toolset in registration order.
var AllToolsets = []Toolset{ToolsetBooking, ToolsetVendor, ToolsetWebsite, ToolsetKnowledge}

// ParseToolsets parses a comma-separated list. "all" or an empty string
// selects every toolset. Duplicates are ignored.
func ParseToolsets(s string) ([]Toolset, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "all") {
		return append([]Toolset(nil), AllToolsets...), nil
	}

	seen := make(map[Toolset]bool)
	var out []Toolset
	for _, part := range strings.Split(s, ",") {
		name := Toolset(strings.ToLower(strings.TrimSpace(part)))
		if name == "" {
			continue
		}
		if !name.valid() {
			return nil, fmt.Errorf("unknown toolset %q (want booking, vendor, website or knowledge)", part)
		}
		if !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no toolsets selected in %q", s)
	}
	return out, nil
}

func (t Toolset) valid() bool {
	for _, known := range AllToolsets {
		if t == known {
			return true
		}
	}
	return false
}
