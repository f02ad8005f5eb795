package auth

import (
	"fmt"
	"strings"

	apperrors "github.com/jrsteele09/course-session-gateway/internal/errors"
)

// SignUpParams is the account registration form.
type SignUpParams struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Name     string `json:"name" validate:"required,min=2"`
	// PasswordConfirm is checked locally and never sent to the backend
	PasswordConfirm string `json:"passwordConfirm,omitempty" validate:"omitempty,eqfield=Password"`
}

// SignInParams is the credentials form.
type SignInParams struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type signUpBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

func (p SignUpParams) body() signUpBody {
	return signUpBody{Email: p.Email, Password: p.Password, Name: p.Name}
}

func (p *SignUpParams) normalise() {
	p.Email = strings.TrimSpace(p.Email)
	p.Name = strings.TrimSpace(p.Name)
}

func (p *SignInParams) normalise() {
	p.Email = strings.TrimSpace(p.Email)
}

// Provider is a third-party sign-in provider handled entirely by the backend.
type Provider string

const (
	ProviderGoogle Provider = "google"
	ProviderGithub Provider = "github"
	ProviderKakao  Provider = "kakao"
)

var providers = map[Provider]struct{}{
	ProviderGoogle: {},
	ProviderGithub: {},
	ProviderKakao:  {},
}

// ParseProvider maps a path segment onto a known provider
func ParseProvider(s string) (Provider, error) {
	p := Provider(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := providers[p]; !ok {
		return "", fmt.Errorf("%w: %q", apperrors.ErrUnknownProvider, s)
	}
	return p, nil
}
