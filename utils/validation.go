package utils

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var (
	emailRegex  = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	domainRegex = regexp.MustCompile(`^([a-zA-Z0-9-]+\.)*[a-zA-Z0-9-]+\.[a-zA-Z]{2,}$`)
)

// IsValidID reports whether id is a well-formed record identifier
func IsValidID(id string) bool {
	if len(id) != 36 {
		return false
	}
	_, err := uuid.Parse(id)
	return err == nil
}

// IsValidEmail validates an email address
func IsValidEmail(email string) bool {
	return emailRegex.MatchString(email)
}

// NormalizeEmail trims and lower-cases an email address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// IsValidDomainName validates a bare domain such as example.com
func IsValidDomainName(domain string) bool {
	if strings.Contains(domain, "://") {
		return false
	}
	return domainRegex.MatchString(domain)
}
