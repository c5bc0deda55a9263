// Package redact masks credentials, account tokens, session ids, e-mail
// addresses and server paths in text before it is logged or sent to a client.
package redact

import (
	"regexp"
	"strings"
)

// Placeholders substituted for redacted text.
const (
	Placeholder           = "[REDACTED]"
	CredentialPlaceholder = "[REDACTED_CREDENTIAL]"
	TokenPlaceholder      = "[REDACTED_TOKEN]"
	SessionPlaceholder    = "[REDACTED_SESSION]"
	EmailPlaceholder      = "[REDACTED_EMAIL]"
	PathPlaceholder       = "[REDACTED_PATH]"
	StackPlaceholder      = "[STACK_TRACE_REDACTED]"
)

type rule struct {
	re          *regexp.Regexp
	replacement string
}

// rules apply in order; a stack trace swallows everything after it.
var rules = []rule{
	{regexp.MustCompile(`(?s)(?:goroutine \d+|panic:).*`), StackPlaceholder},
	// user info of postgres, redis and smtp addresses
	{regexp.MustCompile(`(?i)\b(?:postgres(?:ql)?|rediss?|smtp)://[^@\s]+@`), CredentialPlaceholder},
	// activation and reset tokens
	{regexp.MustCompile(`eyJ[A-Za-z0-9_-]+\.eyJ[A-Za-z0-9_-]+\.[A-Za-z0-9_-]+`), TokenPlaceholder},
	{regexp.MustCompile(`(?i)(password|passwd|pwd|secret)(\s*[=:]\s*)\S+`), "${1}${2}" + CredentialPlaceholder},
	// session cookies
	{
		regexp.MustCompile(`(?i)\b[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}\b`),
		SessionPlaceholder,
	},
	{regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`), EmailPlaceholder},
	// content directories and upload spools
	{regexp.MustCompile(`(?:/[\w.-]+){2,}`), PathPlaceholder},
}

// sensitiveFields are request parameters never logged in clear.
var sensitiveFields = map[string]struct{}{
	"password":        {},
	"repeat_password": {},
	"hash":            {},
	"captcha":         {},
}

// String redacts sensitive information from input.
func String(input string) string {
	if input == "" {
		return input
	}

	result := input
	for _, r := range rules {
		result = r.re.ReplaceAllString(result, r.replacement)
	}
	return result
}

// Error redacts sensitive information from an error's Error() output.
func Error(err error) string {
	if err == nil {
		return ""
	}

	return String(err.Error())
}

// Field redacts a request parameter. Passwords, tokens and captcha answers
// are masked whole; other values go through String.
func Field(name, value string) string {
	if _, ok := sensitiveFields[strings.ToLower(name)]; ok && value != "" {
		return Placeholder
	}
	return String(value)
}
