package apperr

import (
	"errors"
	"strings"
)

// Message returns the user-visible text for a failed mutation on resource
// (singular noun, e.g. "asset").
func Message(err error, resource string) string {
	detail := Detail(err)
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrTransport):
		return "Unable to reach the server. Please check your connection."
	case errors.Is(err, ErrUnauthenticated):
		return "Authentication required. Please log in again."
	case errors.Is(err, ErrValidation):
		return "Invalid data provided. Please check your input."
	case errors.Is(err, ErrConflict):
		for _, field := range []string{"serial", "hostname", "username", "email"} {
			if strings.Contains(detail, "'"+field+"'") {
				return "This " + field + " already exists. Please use a different " + field + "."
			}
		}
		return "This " + resource + " already exists."
	case errors.Is(err, ErrForbidden):
		if detail != "" {
			return detail
		}
		return "Access denied."
	case errors.Is(err, ErrNotFound):
		return capitalize(resource) + " not found."
	}
	if detail != "" {
		return detail
	}
	return "Failed to save " + resource + ". Please try again."
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
