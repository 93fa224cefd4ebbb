package validator

import (
	"html"
	"strings"
	"unicode"
)

// Sanitize strips control characters and HTML-escapes markup. It is
// idempotent: sanitizing an already sanitized string returns it unchanged.
func Sanitize(s string) string {
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, html.UnescapeString(s))
	return html.EscapeString(strings.TrimSpace(s))
}

var (
	// local part is lower-cased, dots removed and "+tag" dropped
	dotlessProviders = map[string]string{
		"gmail.com":      "gmail.com",
		"googlemail.com": "gmail.com",
	}
	plusTagProviders = map[string]bool{
		"outlook.com": true,
		"hotmail.com": true,
		"live.com":    true,
		"icloud.com":  true,
		"me.com":      true,
		"mac.com":     true,
	}
	dashTagProviders = map[string]bool{
		"yahoo.com":      true,
		"ymail.com":      true,
		"rocketmail.com": true,
	}
)

// NormalizeEmail validates an address and returns its canonical form: the
// whole address lower-cased and, for providers that route address variants
// to the same mailbox, the variant markers removed.
func NormalizeEmail(email string) (string, error) {
	email = strings.TrimSpace(email)
	if err := ValidateEmail(email); err != nil {
		return "", err
	}

	at := strings.LastIndex(email, "@")
	local := strings.ToLower(email[:at])
	domain := strings.ToLower(email[at+1:])

	switch {
	case dotlessProviders[domain] != "":
		domain = dotlessProviders[domain]
		local = cutTag(local, "+")
		local = strings.ReplaceAll(local, ".", "")
	case plusTagProviders[domain]:
		local = cutTag(local, "+")
	case dashTagProviders[domain]:
		local = cutTag(local, "-")
	}

	if local == "" {
		return "", ErrInvalidEmailFormat
	}
	return local + "@" + domain, nil
}

func cutTag(local, sep string) string {
	if i := strings.Index(local, sep); i >= 0 {
		return local[:i]
	}
	return local
}
