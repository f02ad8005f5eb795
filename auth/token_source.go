package auth

import (
	"context"

	"github.com/jrsteele09/course-session-gateway/cookies"
	"golang.org/x/oauth2"
)

type sessionTokenSource struct {
	ctx     context.Context
	service *Service
	store   cookies.Store
}

// TokenSource exposes the session's access cookie as a Bearer token source.
// Each new token goes through CurrentSession, so an expired access token is
// refreshed and an unrecoverable session is signed out.
func (s *Service) TokenSource(ctx context.Context, store cookies.Store) oauth2.TokenSource {
	return oauth2.ReuseTokenSource(nil, &sessionTokenSource{ctx: ctx, service: s, store: store})
}

func (ts *sessionTokenSource) Token() (*oauth2.Token, error) {
	payload, err := ts.service.CurrentSession(ts.ctx, ts.store)
	if err != nil {
		return nil, err
	}

	return &oauth2.Token{
		AccessToken: cookies.Value(ts.store, cookies.AccessTokenName),
		TokenType:   "Bearer",
		Expiry:      payload.ExpiresTime(),
	}, nil
}
