package auth_test

import (
	"testing"

	"github.com/jrsteele09/course-session-gateway/auth"
	"github.com/stretchr/testify/require"
)

func TestValidator_ValidateSignUp(t *testing.T) {
	v := auth.NewValidator()

	tests := []struct {
		name    string
		params  auth.SignUpParams
		wantMsg string
	}{
		{
			name:   "valid",
			params: auth.SignUpParams{Email: "a@example.com", Password: "password123", Name: "Al"},
		},
		{
			name:    "bad email",
			params:  auth.SignUpParams{Email: "nope", Password: "password123", Name: "Al"},
			wantMsg: "email must be a valid email address",
		},
		{
			name:    "short password",
			params:  auth.SignUpParams{Email: "a@example.com", Password: "short", Name: "Al"},
			wantMsg: "password must be at least 8 characters",
		},
		{
			name:    "missing name",
			params:  auth.SignUpParams{Email: "a@example.com", Password: "password123"},
			wantMsg: "name is required",
		},
		{
			name:    "confirmation mismatch",
			params:  auth.SignUpParams{Email: "a@example.com", Password: "password123", PasswordConfirm: "password124", Name: "Al"},
			wantMsg: "passwords do not match",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateSignUp(tt.params)
			if tt.wantMsg == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, auth.InvalidParamsErr)
			require.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestValidator_ValidateSignIn(t *testing.T) {
	v := auth.NewValidator()

	require.NoError(t, v.ValidateSignIn(auth.SignInParams{Email: "a@example.com", Password: "x"}))

	err := v.ValidateSignIn(auth.SignInParams{})
	require.ErrorIs(t, err, auth.InvalidParamsErr)
	require.Contains(t, err.Error(), "email is required")
	require.Contains(t, err.Error(), "password is required")
}

func TestParseProvider(t *testing.T) {
	p, err := auth.ParseProvider(" Kakao ")
	require.NoError(t, err)
	require.Equal(t, auth.ProviderKakao, p)

	_, err = auth.ParseProvider("")
	require.Error(t, err)
}
