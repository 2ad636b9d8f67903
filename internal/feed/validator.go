package feed

import (
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Verdict is the classification of a submitted string.
type Verdict int

const (
	// VerdictEmpty means there was nothing to submit; callers ignore it.
	VerdictEmpty Verdict = iota
	VerdictInvalidURL
	VerdictAlreadyTracked
	VerdictAccepted
)

func (v Verdict) String() string {
	switch v {
	case VerdictEmpty:
		return "empty"
	case VerdictInvalidURL:
		return "invalid_url"
	case VerdictAlreadyTracked:
		return "already_tracked"
	case VerdictAccepted:
		return "accepted"
	}
	return "unknown"
}

// Err maps a rejecting verdict onto the error taxonomy.
// Empty and Accepted carry no error.
func (v Verdict) Err() error {
	switch v {
	case VerdictInvalidURL:
		return ErrInvalidURL
	case VerdictAlreadyTracked:
		return ErrAlreadyTracked
	}
	return nil
}

// Lookup answers whether a URL is already tracked.
type Lookup interface {
	HasFeed(url string) bool
}

// Validator classifies candidate feed URLs. It has no side effects.
type Validator struct {
	validate *validator.Validate
	tracked  Lookup
}

// NewValidator creates a Validator that checks duplicates against tracked.
func NewValidator(tracked Lookup) *Validator {
	return &Validator{
		validate: validator.New(),
		tracked:  tracked,
	}
}

// Check trims raw and classifies it. The returned string is the normalized
// URL to hand to the fetcher when the verdict is VerdictAccepted.
func (v *Validator) Check(raw string) (string, Verdict) {
	candidate := strings.TrimSpace(raw)
	if candidate == "" {
		return "", VerdictEmpty
	}
	if !IsAbsoluteURL(v.validate, candidate) {
		return candidate, VerdictInvalidURL
	}
	if v.tracked != nil && v.tracked.HasFeed(candidate) {
		return candidate, VerdictAlreadyTracked
	}
	return candidate, VerdictAccepted
}

// IsAbsoluteURL reports whether s is a URL with both a scheme and a host.
// The validator "url" rule alone accepts opaque forms such as mailto:.
func IsAbsoluteURL(validate *validator.Validate, s string) bool {
	if err := validate.Var(s, "required,url"); err != nil {
		return false
	}
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return u.Scheme != "" && u.Host != ""
}
