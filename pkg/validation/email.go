package validation

import (
	"sort"
	"strings"
)

// personalDomains are free consumer mail providers that never count as a
// business address. The list is matched against the lowercased domain.
var personalDomains = map[string]struct{}{
	"gmail.com":      {},
	"outlook.com":    {},
	"hotmail.com":    {},
	"yahoo.com":      {},
	"icloud.com":     {},
	"aol.com":        {},
	"protonmail.com": {},
	"proton.me":      {},
	"mail.com":       {},
	"yandex.com":     {},
	"zoho.com":       {},
	"live.com":       {},
	"msn.com":        {},
	"me.com":         {},
	"mac.com":        {},
	"googlemail.com": {},
	"yahoo.co.uk":    {},
	"yahoo.ca":       {},
	"yahoo.co.in":    {},
	"outlook.co.uk":  {},
	"hotmail.co.uk":  {},
}

const educationSuffix = ".edu"

// PersonalDomains returns the consumer mail denylist in sorted order.
func PersonalDomains() []string {
	out := make([]string, 0, len(personalDomains))
	for domain := range personalDomains {
		out = append(out, domain)
	}
	sort.Strings(out)
	return out
}

// IsPersonalDomain reports whether domain belongs to the consumer denylist.
func IsPersonalDomain(domain string) bool {
	_, ok := personalDomains[strings.ToLower(strings.TrimSpace(domain))]
	return ok
}

// EmailDomain returns the lowercased domain of an address with exactly one
// "@" and non-empty local and domain parts.
func EmailDomain(email string) (string, bool) {
	email = strings.TrimSpace(email)
	if strings.Count(email, "@") != 1 {
		return "", false
	}
	at := strings.IndexByte(email, '@')
	local, domain := email[:at], email[at+1:]
	if local == "" || domain == "" {
		return "", false
	}
	return strings.ToLower(domain), true
}

// IsWellFormedEmail performs the structural check used to reject typos before
// any routing decision is made: one "@", both halves present, no whitespace.
func IsWellFormedEmail(email string) bool {
	email = strings.TrimSpace(email)
	if strings.ContainsAny(email, " \t\r\n") {
		return false
	}
	_, ok := EmailDomain(email)
	return ok
}

// IsCompanyEmail reports whether email looks like a business address: it has
// exactly one "@", its domain is not a consumer mail provider, and the domain
// does not end in ".edu".
func IsCompanyEmail(email string) bool {
	domain, ok := EmailDomain(email)
	if !ok {
		return false
	}
	if IsPersonalDomain(domain) {
		return false
	}
	return !strings.HasSuffix(domain, educationSuffix)
}
