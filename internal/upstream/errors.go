package upstream

import (
	"encoding/json"
	"fmt"
	"strings"
)

// maxMessageLen bounds the body excerpt kept in an Error.
const maxMessageLen = 512

// Error is a failed upstream call: a non-2xx status (StatusCode set), a
// transport failure or an undecodable body (Err set).
type Error struct {
	Service    string
	Op         string
	StatusCode int
	Message    string
	Err        error
}

func (e *Error) Error() string {
	prefix := e.Service + " " + e.Op
	switch {
	case e.StatusCode != 0 && e.Message != "":
		return fmt.Sprintf("%s: status %d: %s", prefix, e.StatusCode, e.Message)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s: status %d", prefix, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", prefix, e.Err)
	case e.Message != "":
		return prefix + ": " + e.Message
	default:
		return prefix + ": failed"
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// messageFromBody pulls a human-readable message out of an error body.
// JSON bodies of the shapes {"message": ...}, {"error": "..."} and
// {"error": {"message": ...}} are understood; anything else is returned
// trimmed and shortened.
func messageFromBody(body []byte) string {
	var payload struct {
		Message json.RawMessage `json:"message"`
		Error   json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if s := rawString(payload.Message); s != "" {
			return s
		}
		if s := rawString(payload.Error); s != "" {
			return s
		}
		var nested struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(payload.Error, &nested) == nil && nested.Message != "" {
			return nested.Message
		}
	}

	msg := strings.TrimSpace(string(body))
	if len(msg) > maxMessageLen {
		msg = msg[:maxMessageLen] + "..."
	}
	return msg
}

// rawString decodes raw as a string, or joins it when it is a list of
// strings (validation errors are often reported that way).
func rawString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	var list []string
	if json.Unmarshal(raw, &list) == nil {
		return strings.Join(list, "; ")
	}
	return ""
}
