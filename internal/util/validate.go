package util

import (
	"strings"

	"github.com/go-openapi/strfmt"

	"go-auth-dashboard/internal/model"
)

const MinPasswordLength = 8

const (
	MsgInvalidEmail     = "Please enter a valid email."
	MsgPasswordRequired = "Password is required."
	MsgWeakPassword     = "Password must be at least 8 characters."
	MsgPasswordMismatch = "Passwords do not match."
)

// FieldErrors maps a form field name to the message shown next to it.
type FieldErrors map[string]string

func (f FieldErrors) Empty() bool {
	return len(f) == 0
}

// IsEmail accepts a bare address with a dotted domain; display-name forms
// such as "Ada <ada@example.com>" are rejected.
func IsEmail(email string) bool {
	email = strings.TrimSpace(email)
	if email == "" || strings.ContainsAny(email, " <>\"") {
		return false
	}
	if !strfmt.IsEmail(email) {
		return false
	}

	_, domain, ok := strings.Cut(email, "@")
	return ok && strings.Contains(domain, ".") && !strings.HasSuffix(domain, ".") && !strings.HasPrefix(domain, ".")
}

func ValidateEmail(email string) FieldErrors {
	errs := FieldErrors{}
	if !IsEmail(email) {
		errs["email"] = MsgInvalidEmail
	}
	return errs
}

func ValidateLogin(req model.LoginRequest) FieldErrors {
	errs := ValidateEmail(req.Email)
	if req.Password == "" {
		errs["password"] = MsgPasswordRequired
	}
	return errs
}

func ValidateRegister(form model.RegisterForm) FieldErrors {
	errs := ValidateEmail(form.Email)
	if len([]rune(form.Password)) < MinPasswordLength {
		errs["password"] = MsgWeakPassword
	}
	if form.ConfirmPassword != form.Password {
		errs["confirmPassword"] = MsgPasswordMismatch
	}
	return errs
}

// RegisterRequest turns a validated form into the API payload.
func RegisterRequest(form model.RegisterForm) model.RegisterRequest {
	return model.RegisterRequest{
		Email:     NormalizeEmail(form.Email),
		Password:  form.Password,
		FirstName: SanitizeName(form.FirstName),
		LastName:  SanitizeName(form.LastName),
	}
}
