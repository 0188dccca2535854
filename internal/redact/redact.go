// Package redact scrubs credentials, tokens, connection strings and
// learner speech from text before it reaches logs or error responses.
package redact

import (
	"fmt"
	"regexp"
	"unicode/utf8"
)

// Placeholders substituted for redacted fragments.
const (
	Placeholder           = "[REDACTED]"
	CredentialPlaceholder = "[REDACTED_CREDENTIAL]"
	TokenPlaceholder      = "[REDACTED_JWT]"
	PathPlaceholder       = "[REDACTED_PATH]"
	SQLPlaceholder        = "[REDACTED_SQL]"
	EmailPlaceholder      = "[REDACTED_EMAIL]"
	StackPlaceholder      = "[STACK_TRACE_REDACTED]"
)

type rule struct {
	pattern     *regexp.Regexp
	replacement string
}

// rules run in order; earlier rules see the unmodified text.
var rules = []rule{
	// userinfo in postgres, redis and similar DSNs
	{regexp.MustCompile(`(?i)\b(postgres(?:ql)?|rediss?|mysql|mongodb(?:\+srv)?)://[^@\s/]+@`), "${1}://" + CredentialPlaceholder + "@"},
	{regexp.MustCompile(`eyJ[\w-]+\.eyJ[\w-]+\.[\w-]+`), TokenPlaceholder},
	{regexp.MustCompile(`(?i)(password|passwd|pwd|secret|api[_-]?key|token)(\s*[=:]\s*)[^\s&,;]+`), "${1}${2}" + Placeholder},
	{regexp.MustCompile(`(?:goroutine \d+|panic:)[\s\S]*?(?:\n\t.*)+`), StackPlaceholder},
	{regexp.MustCompile(`(?i)\b(?:SELECT|INSERT|UPDATE|DELETE)\b[^;]*?\b(?:FROM|INTO|SET)\b[^;]*`), SQLPlaceholder},
	{regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`), EmailPlaceholder},
	{regexp.MustCompile(`(?:/[\w.-]+){2,}`), PathPlaceholder},
}

// String redacts sensitive fragments of s.
func String(s string) string {
	if s == "" {
		return s
	}
	for _, r := range rules {
		s = r.pattern.ReplaceAllString(s, r.replacement)
	}
	return s
}

// Error redacts err's message. A nil error yields "".
func Error(err error) string {
	if err == nil {
		return ""
	}
	return String(err.Error())
}

// Utterance summarizes learner speech for logs without its content.
func Utterance(s string) string {
	return fmt.Sprintf("[utterance: %d chars]", utf8.RuneCountInString(s))
}
