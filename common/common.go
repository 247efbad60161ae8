// Package common provides shared utilities and constants for the virtualmin SDK.
package common //nolint:revive // package name is acceptable for SDK shared utilities

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/sethvargo/go-password/password"
)

// Service property keys owned by the adapter.
const (
	PropertyUsername = "virtualmin_username"
	PropertyPassword = "virtualmin_password"
	PropertyDomain   = "virtualmin_domain"
)

// PropertyKeys lists every property the adapter writes.
var PropertyKeys = []string{PropertyUsername, PropertyPassword, PropertyDomain}

// UsernameLength and PasswordLength are the lengths of generated credentials.
const (
	UsernameLength = 8
	PasswordLength = 16
)

// DomainRegex is the regex pattern for valid domain names.
const DomainRegex = `^[a-z0-9](?:[a-z0-9-]{0,61}[a-z0-9])?(?:\.[a-z0-9](?:[a-z0-9-]{0,61}[a-z0-9])?)+$`

var domainPattern = regexp.MustCompile(DomainRegex)

// Green returns a green-colored string for terminal output.
func Green(value string) string {
	return color.GreenString(value)
}

// NormalizeDomain lower-cases and trims domain and checks it is a valid
// domain name.
func NormalizeDomain(domain string) (string, error) {
	domain = strings.ToLower(strings.TrimSpace(domain))
	if domain == "" {
		return "", errors.New("domain is required")
	}
	if len(domain) > 253 || !domainPattern.MatchString(domain) {
		return "", errors.Errorf("invalid domain %q", domain)
	}
	return domain, nil
}

// GenerateUsername returns a random lower-case account name that starts
// with a letter.
func GenerateUsername() (string, error) {
	raw, err := password.Generate(UsernameLength, 2, 0, true, true)
	if err != nil {
		return "", errors.Wrap(err, "failed to generate username")
	}
	return NormalizeUsername(raw), nil
}

// NormalizeUsername lower-cases raw and replaces a leading digit with 'u'.
func NormalizeUsername(raw string) string {
	if raw != "" && unicode.IsDigit(rune(raw[0])) {
		raw = "u" + raw[1:]
	}
	return strings.ToLower(raw)
}

// GeneratePassword returns a random alphanumeric password.
func GeneratePassword() (string, error) {
	pass, err := password.Generate(PasswordLength, 4, 0, false, true)
	if err != nil {
		return "", errors.Wrap(err, "failed to generate password")
	}
	return pass, nil
}
