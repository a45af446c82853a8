// Package validation checks operator-supplied values that the config
// validator tags cannot express.
package validation

import (
	"fmt"
	"net/url"
	"strings"
)

// URLValidationError represents a URL validation failure
type URLValidationError struct {
	Field   string
	Message string
	URL     string
}

func (e URLValidationError) Error() string {
	return fmt.Sprintf("%s: %s (url: %s)", e.Field, e.Message, e.URL)
}

// ValidateOrigin checks that value is a browser origin: an http or https
// scheme and a host, with no path, query, fragment or credentials. Browsers
// send Origin without a trailing slash, so "https://app.example/" never matches.
func ValidateOrigin(value, field string) error {
	fail := func(message string) error {
		return URLValidationError{Field: field, Message: message, URL: value}
	}

	if value == "" {
		return fail("origin must not be empty")
	}

	parsed, err := url.Parse(value)
	if err != nil {
		return fail("invalid URL format")
	}

	switch strings.ToLower(parsed.Scheme) {
	case "http", "https":
	case "":
		return fail("origin must include a scheme (http:// or https://)")
	default:
		return fail("origin scheme must be http or https")
	}

	if parsed.Host == "" {
		return fail("origin must include a host")
	}
	if parsed.User != nil {
		return fail("origin must not contain credentials")
	}
	if parsed.Path != "" {
		return fail("origin must not contain a path or trailing slash")
	}
	if parsed.RawQuery != "" || parsed.ForceQuery {
		return fail("origin must not contain query parameters")
	}
	if parsed.Fragment != "" {
		return fail("origin must not contain a fragment")
	}
	return nil
}

// ValidateOrigins validates every entry, reporting the first failure with its index.
func ValidateOrigins(values []string, field string) error {
	for i, value := range values {
		if err := ValidateOrigin(value, fmt.Sprintf("%s[%d]", field, i)); err != nil {
			return err
		}
	}
	return nil
}
