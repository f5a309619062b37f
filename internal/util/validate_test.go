package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-auth-dashboard/internal/model"
)

func TestIsEmail(t *testing.T) {
	t.Parallel()

	valid := []string{"ada@example.com", "a.b+tag@sub.example.org", " ada@example.com "}
	for _, email := range valid {
		assert.True(t, IsEmail(email), email)
	}

	invalid := []string{"", "ada", "ada@", "@example.com", "ada@localhost", "Ada <ada@example.com>", "ada@example.", "a da@example.com"}
	for _, email := range invalid {
		assert.False(t, IsEmail(email), email)
	}
}

func TestValidateLogin(t *testing.T) {
	t.Parallel()

	errs := ValidateLogin(model.LoginRequest{Email: "nope", Password: ""})
	require.Equal(t, FieldErrors{"email": MsgInvalidEmail, "password": MsgPasswordRequired}, errs)

	require.True(t, ValidateLogin(model.LoginRequest{Email: "ada@example.com", Password: "x"}).Empty())
}

func TestValidateRegister(t *testing.T) {
	t.Parallel()

	t.Run("short password", func(t *testing.T) {
		errs := ValidateRegister(model.RegisterForm{Email: "ada@example.com", Password: "short", ConfirmPassword: "short"})
		require.Equal(t, FieldErrors{"password": MsgWeakPassword}, errs)
	})

	t.Run("mismatched confirmation", func(t *testing.T) {
		errs := ValidateRegister(model.RegisterForm{Email: "ada@example.com", Password: "password123", ConfirmPassword: "password124"})
		require.Equal(t, FieldErrors{"confirmPassword": MsgPasswordMismatch}, errs)
	})

	t.Run("valid", func(t *testing.T) {
		errs := ValidateRegister(model.RegisterForm{Email: "ada@example.com", Password: "password123", ConfirmPassword: "password123"})
		require.True(t, errs.Empty())
	})
}

func TestRegisterRequest(t *testing.T) {
	t.Parallel()

	req := RegisterRequest(model.RegisterForm{
		Email:     " Ada@Example.com",
		Password:  " keep spaces ",
		FirstName: " Ada ",
		LastName:  "",
	})

	require.Equal(t, model.RegisterRequest{Email: "ada@example.com", Password: " keep spaces ", FirstName: "Ada"}, req)
}
