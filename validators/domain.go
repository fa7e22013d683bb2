package validators

import (
	"regexp"
	"strings"
	"unicode"
)

const (
	maxDomainLength = 253
	maxLabelLength  = 63
	minTLDLength    = 2
)

var (
	labelRegex = regexp.MustCompile(`^[A-Za-z0-9]([A-Za-z0-9-]*[A-Za-z0-9])?$`)
	tldRegex   = regexp.MustCompile(`^[A-Za-z]+$`)
)

// DomainParts is a validated domain split into its structural parts.
// Subdomain is empty when the domain has exactly two labels.
type DomainParts struct {
	Subdomain string
	Domain    string
	TLD       string
}

// HasSubdomain reports whether the domain had more than two labels.
func (p DomainParts) HasSubdomain() bool {
	return p.Subdomain != ""
}

// String joins the parts back into the normalized domain.
func (p DomainParts) String() string {
	base := p.Domain + "." + p.TLD
	if p.HasSubdomain() {
		return p.Subdomain + "." + base
	}
	return base
}

// IsValidDomain checks s as-is: surrounding whitespace makes it invalid.
func IsValidDomain(s string) bool {
	return domainProblem(s) == ""
}

// ValidateDomain trims and lower-cases s and returns it if it is a valid domain.
func ValidateDomain(s string) (string, error) {
	normalized := normalizeDomain(s)
	if reason := domainProblem(normalized); reason != "" {
		return "", newValidationError(FieldDomain, s, reason)
	}
	return normalized, nil
}

// ExtractDomainParts expects a domain that already passed validation.
func ExtractDomainParts(s string) DomainParts {
	labels := strings.Split(normalizeDomain(s), ".")
	n := len(labels)
	if n < 2 {
		return DomainParts{TLD: labels[0]}
	}

	return DomainParts{
		Subdomain: strings.Join(labels[:n-2], "."),
		Domain:    labels[n-2],
		TLD:       labels[n-1],
	}
}

// IsSubdomain reports whether s has more than two labels.
func IsSubdomain(s string) bool {
	return ExtractDomainParts(s).HasSubdomain()
}

func normalizeDomain(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// domainProblem returns the first rule s breaks, or "" if s is a valid domain.
func domainProblem(s string) string {
	if s == "" {
		return "domain cannot be empty"
	}
	if strings.IndexFunc(s, unicode.IsSpace) >= 0 {
		return "domain cannot contain whitespace"
	}
	if strings.Contains(s, "://") {
		return "domain cannot include a scheme"
	}
	if strings.Contains(s, "/") {
		return "domain cannot include a path"
	}
	if strings.Contains(s, ":") {
		return "domain cannot include a port"
	}
	if strings.HasPrefix(s, ".") || strings.HasSuffix(s, ".") {
		return "domain cannot start or end with a dot"
	}
	if len(s) > maxDomainLength {
		return "domain length cannot exceed 253 characters"
	}

	labels := strings.Split(s, ".")
	if len(labels) < 2 {
		return "domain must have at least two labels"
	}

	for _, label := range labels {
		if label == "" {
			return "domain cannot contain empty labels (consecutive dots)"
		}
		if len(label) > maxLabelLength {
			return "domain label '" + label + "' cannot exceed 63 characters"
		}
		if strings.HasPrefix(label, "-") || strings.HasSuffix(label, "-") {
			return "domain label '" + label + "' cannot start or end with a hyphen"
		}
		if !labelRegex.MatchString(label) {
			return "domain label '" + label + "' may only contain letters, digits and hyphens"
		}
	}

	tld := labels[len(labels)-1]
	if len(tld) < minTLDLength {
		return "top-level domain must be at least 2 characters"
	}
	if !tldRegex.MatchString(tld) {
		return "top-level domain must contain only letters"
	}

	return ""
}
