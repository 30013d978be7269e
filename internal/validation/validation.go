// Package validation contains pure input checks for the public endpoints.
// Validators never touch external state and report failures as values, not
// errors, so handlers can map them to exact client-facing messages.
package validation

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// ErrorKind tags the rule a field failed.
type ErrorKind string

const (
	KindRequired      ErrorKind = "required"
	KindInvalidFormat ErrorKind = "invalid_format"
	KindTooShort      ErrorKind = "too_short"
)

// FieldError describes a single failed rule with the client-facing message.
type FieldError struct {
	Field   string
	Kind    ErrorKind
	Message string
}

// FieldErrors is the structured result of a validation pass. A nil/empty
// slice means the input is valid.
type FieldErrors []FieldError

// Has reports whether any error carries the given kind.
func (e FieldErrors) Has(kind ErrorKind) bool {
	for _, fe := range e {
		if fe.Kind == kind {
			return true
		}
	}
	return false
}

// emailRe matches the local@domain.tld shape. Intentionally loose: real
// address verification happens when mail is actually sent.
var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// EmailValid reports whether s looks like local@domain.tld.
func EmailValid(s string) bool {
	return emailRe.MatchString(strings.TrimSpace(s))
}

// minMessageLen is the minimum number of characters in a trimmed contact
// message.
const minMessageLen = 10

// MessageTooShort reports whether the trimmed message has fewer than the
// minimum number of characters. The minimum counts characters, not bytes,
// so multibyte text is measured by what the submitter actually typed.
func MessageTooShort(s string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(s)) < minMessageLen
}

// ContactInput is a contact-form payload.
type ContactInput struct {
	Name    string
	Email   string
	Company string
	Service string
	Message string
}

// Validate checks the contact payload and returns all failed rules.
// Name, email, company, and message are required; email must look like an
// address; the trimmed message must be at least 10 characters.
func (in ContactInput) Validate() FieldErrors {
	var errs FieldErrors

	if strings.TrimSpace(in.Name) == "" {
		errs = append(errs, FieldError{"name", KindRequired, "Name is required"})
	}
	if strings.TrimSpace(in.Email) == "" {
		errs = append(errs, FieldError{"email", KindRequired, "Email is required"})
	} else if !EmailValid(in.Email) {
		errs = append(errs, FieldError{"email", KindInvalidFormat, "Please provide a valid email address."})
	}
	if strings.TrimSpace(in.Company) == "" {
		errs = append(errs, FieldError{"company", KindRequired, "Company is required"})
	}
	if strings.TrimSpace(in.Message) == "" {
		errs = append(errs, FieldError{"message", KindRequired, "Message is required"})
	} else if MessageTooShort(in.Message) {
		errs = append(errs, FieldError{"message", KindTooShort, "Message must be at least 10 characters long."})
	}

	return errs
}

// RegistrationInput is a sign-up payload.
type RegistrationInput struct {
	Name     string
	Email    string
	Password string
}

// Validate checks the registration payload and returns the first failed
// rule, or nil when the payload is valid. Rule order is fixed: name length,
// email format, password length.
func (in RegistrationInput) Validate() *FieldError {
	if len(strings.TrimSpace(in.Name)) < 2 {
		return &FieldError{"name", KindTooShort, "Name must be at least 2 characters"}
	}
	if !EmailValid(in.Email) {
		return &FieldError{"email", KindInvalidFormat, "Please provide a valid email address."}
	}
	if len(in.Password) < 6 {
		return &FieldError{"password", KindTooShort, "Password must be at least 6 characters"}
	}
	return nil
}
