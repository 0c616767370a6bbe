package logging

import "regexp"

// RedactedText is the replacement text for sensitive data.
const RedactedText = "[REDACTED]"

var (
	// Matches password=xxx, pwd=xxx, pass=xxx (until next delimiter)
	passwordPattern = regexp.MustCompile(`(?i)(password|pwd|pass)=[^;&\s]+`)

	// Matches connection string credentials (user:pass@host format)
	connStringPattern = regexp.MustCompile(`://([^:/@\s]+):[^@\s]+@`)

	// Matches the Immich API key header when it ends up in an error message
	apiKeyPattern = regexp.MustCompile(`(?i)(x-api-key[:=]\s*)[A-Za-z0-9\-_]+`)
)

// SanitizeDSN removes the password from a connection string.
// Use this before logging any connection string.
func SanitizeDSN(dsn string) string {
	if dsn == "" {
		return ""
	}
	sanitized := passwordPattern.ReplaceAllString(dsn, "${1}="+RedactedText)
	return connStringPattern.ReplaceAllString(sanitized, "://${1}:"+RedactedText+"@")
}

// SanitizeError returns the error message with credentials removed.
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}
	msg := SanitizeDSN(err.Error())
	return apiKeyPattern.ReplaceAllString(msg, "${1}"+RedactedText)
}
