package common

import (
	"strings"
)

// userArgKeys are the arguments that name the person a call acts on, in
// order of preference.
var userArgKeys = []string{"email", "attendeeEmail"}

// StringArg returns the trimmed string argument name, or "" when it is
// missing or not a string.
func StringArg(args map[string]interface{}, name string) string {
	v, ok := args[name].(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(v)
}

// GetUserFromArgs returns the email a tool call acts on, "" if none.
func GetUserFromArgs(args map[string]interface{}) string {
	for _, key := range userArgKeys {
		if email := StringArg(args, key); email != "" {
			return email
		}
	}
	return ""
}
