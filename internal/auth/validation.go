package auth

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

const (
	minPasswordLength = 8
	maxPasswordLength = 72 // bcrypt input limit
)

// FieldErrors reports validation failures per input field.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	fields := make([]string, 0, len(e))
	for field := range e {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, e[field]))
	}
	return strings.Join(parts, "; ")
}

// NormalizeEmail trims surrounding whitespace and lowercases the address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SignUpInput is the validated shape of a sign-up request.
type SignUpInput struct {
	Email    string
	Password string
	Username *string
}

// Validate normalizes the email in place and checks input shape.
// Returns FieldErrors on failure; no store call is made before this passes.
func (in *SignUpInput) Validate() error {
	in.Email = NormalizeEmail(in.Email)

	errs := FieldErrors{}
	if !emailRegex.MatchString(in.Email) {
		errs["email"] = "invalid email address"
	}
	if len(in.Password) < minPasswordLength {
		errs["password"] = fmt.Sprintf("must be at least %d characters", minPasswordLength)
	} else if len(in.Password) > maxPasswordLength {
		errs["password"] = fmt.Sprintf("must be at most %d characters", maxPasswordLength)
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// SignInInput is the validated shape of a sign-in request.
type SignInInput struct {
	Email    string
	Password string
}

// Validate normalizes the email in place and checks input shape.
func (in *SignInInput) Validate() error {
	in.Email = NormalizeEmail(in.Email)

	errs := FieldErrors{}
	if !emailRegex.MatchString(in.Email) {
		errs["email"] = "invalid email address"
	}
	if in.Password == "" {
		errs["password"] = "password is required"
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
