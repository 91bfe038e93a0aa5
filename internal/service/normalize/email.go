package normalize

import (
	"regexp"
	"strings"

	"golang.org/x/net/idna"
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	idnaProfile  = idna.Lookup
)

// Addresses that parse but never reach a real business.
var placeholderEmailPatterns = []*regexp.Regexp{
	regexp.MustCompile(`example\.(com|org|net)`),
	regexp.MustCompile(`test@`),
	regexp.MustCompile(`noreply@`),
	regexp.MustCompile(`no-reply@`),
	regexp.MustCompile(`donotreply@`),
}

// EmailResult is the outcome of NormalizeEmail. Value is nil unless Valid.
type EmailResult struct {
	Valid bool
	Value *string
}

// NormalizeEmail lower-cases and trims the address and rejects malformed
// or placeholder addresses. A nil or blank input is invalid, not an error.
func NormalizeEmail(email *string) EmailResult {
	if email == nil {
		return EmailResult{}
	}
	normalized := strings.ToLower(strings.TrimSpace(*email))
	if normalized == "" || !emailPattern.MatchString(normalized) {
		return EmailResult{}
	}
	if IsPlaceholderEmail(normalized) {
		return EmailResult{}
	}
	return EmailResult{Valid: true, Value: &normalized}
}

// IsPlaceholderEmail reports whether the address matches a disposable or
// no-reply pattern. Matching is case-insensitive.
func IsPlaceholderEmail(email string) bool {
	lowered := strings.ToLower(email)
	for _, pattern := range placeholderEmailPatterns {
		if pattern.MatchString(lowered) {
			return true
		}
	}
	return false
}

// EmailDomainASCII returns the punycode form of the address's domain.
func EmailDomainASCII(email string) (string, bool) {
	at := strings.LastIndex(email, "@")
	if at < 0 || at == len(email)-1 {
		return "", false
	}
	domain := strings.ToLower(strings.TrimSpace(email[at+1:]))
	if !isDomainValid(domain) {
		return "", false
	}
	ascii, err := idnaProfile.ToASCII(domain)
	if err != nil || ascii == "" {
		return "", false
	}
	return ascii, true
}

func isDomainValid(domain string) bool {
	if strings.Count(domain, ".") == 0 {
		return false
	}
	for _, part := range strings.Split(domain, ".") {
		if part == "" || strings.HasPrefix(part, "-") || strings.HasSuffix(part, "-") {
			return false
		}
	}
	return true
}
