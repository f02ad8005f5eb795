package auth

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/course-session-gateway/apiclient"
	"github.com/jrsteele09/course-session-gateway/cookies"
	"github.com/jrsteele09/course-session-gateway/internal/config"
	apperrors "github.com/jrsteele09/course-session-gateway/internal/errors"
	"github.com/jrsteele09/course-session-gateway/sessions"
	"github.com/jrsteele09/course-session-gateway/token"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Backend auth endpoints and the location users are sent to once signed out.
const (
	SignInPath  = "/auth/sign-in"
	SignUpPath  = "/auth/sign-up"
	SignOutPath = "/auth/sign-out"

	SignInRedirect = "/sign-in?reason=session_expired"
)

// Config is the configuration the Service reads.
type Config interface {
	config.BackendConfig
	GetSecureCookies() bool
}

// Service composes the cookie store, the backend client, the token codec and
// the session cache into the sign-in, sign-up, sign-out and session-check
// entry points.
type Service struct {
	client         *apiclient.Client
	codec          *token.Codec
	repo           sessions.Repo
	validator      *Validator
	apiURL         string
	signOutTimeout time.Duration
	secureCookies  bool
	nowTime        func() time.Time
	clientOptions  []apiclient.ClientOption
}

var _ apiclient.Terminator = (*Service)(nil)

// ServiceOption defines a function type to modify the Service instance.
type ServiceOption func(*Service)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) ServiceOption {
	return func(s *Service) {
		s.nowTime = nowFunc
	}
}

// WithHTTPClient replaces the HTTP client used for backend calls
func WithHTTPClient(httpClient *http.Client) ServiceOption {
	return func(s *Service) {
		s.clientOptions = append(s.clientOptions, apiclient.WithHTTPClient(httpClient))
	}
}

// NewService creates the auth Service. repo caches decoded payloads per client session.
func NewService(cfg Config, repo sessions.Repo, options ...ServiceOption) (*Service, error) {
	if cfg == nil {
		return nil, errors.New("[NewService] config is required")
	}
	if repo == nil {
		return nil, errors.New("[NewService] sessions repo is required")
	}

	s := &Service{
		repo:           repo,
		validator:      NewValidator(),
		apiURL:         cfg.GetAPIURL(),
		signOutTimeout: cfg.GetSignOutTimeout(),
		secureCookies:  cfg.GetSecureCookies(),
		nowTime:        time.Now,
	}
	for _, opt := range options {
		opt(s)
	}
	s.codec = token.NewCodec(token.WithNowTime(s.nowTime))

	client, err := apiclient.New(s.apiURL, cfg.GetRequestTimeout(), s, s.clientOptions...)
	if err != nil {
		return nil, errors.Wrap(err, "[NewService] apiclient.New")
	}
	s.client = client
	return s, nil
}

// Client returns the session client bound to this service's sign-out
func (s *Service) Client() *apiclient.Client {
	return s.client
}

// SignUp registers an account. It does not sign the user in.
func (s *Service) SignUp(ctx context.Context, store cookies.Store, params SignUpParams) (*apiclient.Response, error) {
	params.normalise()
	if err := s.validator.ValidateSignUp(params); err != nil {
		return nil, err
	}

	resp, err := s.client.Do(ctx, store, apiclient.Request{
		Method:   http.MethodPost,
		Endpoint: SignUpPath,
		Body:     params.body(),
	})
	if err != nil {
		return nil, errors.Wrap(err, "[Service.SignUp]")
	}
	return resp, nil
}

// SignIn posts credentials without any stored cookies, mirrors the backend
// cookies into store and returns the decoded access token payload. A nil
// payload with a nil error means the backend answered 2xx without a usable
// access token.
func (s *Service) SignIn(ctx context.Context, store cookies.Store, params SignInParams) (*token.Payload, error) {
	params.normalise()
	if err := s.validator.ValidateSignIn(params); err != nil {
		return nil, err
	}

	resp, err := s.client.Send(ctx, apiclient.Request{
		Method:   http.MethodPost,
		Endpoint: SignInPath,
		Body:     params,
	})
	if err != nil {
		log.Err(err).Str("email", params.Email).Msg("Sign in failed")
		return nil, signInError(err)
	}

	accessToken, ok := cookies.Sync(resp.Header, store)
	if !ok {
		log.Warn().Str("email", params.Email).Msg("Sign in response carried no access token")
		return nil, nil
	}

	payload, err := s.codec.Parse(accessToken)
	if err != nil {
		log.Warn().Err(err).Str("email", params.Email).Msg("Sign in access token rejected")
		return nil, nil
	}

	s.remember(ctx, store, accessToken, payload)
	log.Info().Str("user", payload.ID).Msg("Signed in")
	return payload, nil
}

// signInError keeps the backend message, falling back to SignInFailedErr
func signInError(err error) error {
	var apiErr *apperrors.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Message == "" {
			return apperrors.NewAPIError(apiErr.StatusCode, SignInFailedErr.Error())
		}
		return apiErr
	}
	return fmt.Errorf("%w: %w", SignInFailedErr, err)
}

// SignOut removes the token cookies and the cached session, then notifies
// the backend. The notification is best effort and bounded by the sign-out
// timeout. SignOut is idempotent and always returns SignInRedirect.
func (s *Service) SignOut(ctx context.Context, store cookies.Store) string {
	refreshCookie, hadRefresh := store.Get(cookies.RefreshTokenName)

	store.Delete(cookies.AccessTokenName)
	store.Delete(cookies.RefreshTokenName)

	if sid := cookies.Value(store, cookies.SessionIDName); sid != "" {
		if err := s.repo.Delete(ctx, sid); err != nil {
			log.Err(err).Str("session", sid).Msg("Failed to drop cached session")
		}
		store.Delete(cookies.SessionIDName)
	}

	attach := []cookies.Cookie{}
	if hadRefresh {
		attach = append(attach, refreshCookie)
	}

	notifyCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.signOutTimeout)
	defer cancel()
	if _, err := s.client.Send(notifyCtx, apiclient.Request{Method: http.MethodPost, Endpoint: SignOutPath}, attach...); err != nil {
		log.Warn().Err(err).Msg("Backend sign out failed")
	}

	return SignInRedirect
}

// CurrentSession returns the payload of the current session, refreshing the
// access token when it is missing or expired. When the session cannot be
// recovered it signs out and returns a *apiclient.SessionEndedError.
func (s *Service) CurrentSession(ctx context.Context, store cookies.Store) (*token.Payload, error) {
	accessToken := cookies.Value(store, cookies.AccessTokenName)

	if accessToken != "" {
		if payload := s.cached(ctx, store, accessToken); payload != nil {
			return payload, nil
		}
		payload, err := s.codec.Parse(accessToken)
		if err == nil {
			s.remember(ctx, store, accessToken, payload)
			return payload, nil
		}
		log.Debug().Err(err).Msg("Access token unusable, attempting refresh")
	}

	if cookies.Value(store, cookies.RefreshTokenName) == "" {
		return nil, s.endSession(ctx, store, apperrors.ErrNoRefreshToken)
	}

	newAccessToken, err := s.client.Refresh(ctx, store)
	if err != nil {
		return nil, s.endSession(ctx, store, err)
	}
	if newAccessToken == "" {
		return nil, s.endSession(ctx, store, apperrors.ErrNoAccessToken)
	}

	payload, err := s.codec.Parse(newAccessToken)
	if err != nil {
		return nil, s.endSession(ctx, store, err)
	}

	s.remember(ctx, store, newAccessToken, payload)
	return payload, nil
}

func (s *Service) endSession(ctx context.Context, store cookies.Store, reason error) error {
	log.Warn().Err(reason).Msg("Session could not be recovered, signing out")
	return &apiclient.SessionEndedError{RedirectURL: s.SignOut(ctx, store)}
}

// ProviderRedirectURL returns the backend URL that starts the provider's sign-in flow
func (s *Service) ProviderRedirectURL(provider string) (string, error) {
	p, err := ParseProvider(provider)
	if err != nil {
		return "", err
	}
	return s.apiURL + "/auth/" + string(p), nil
}

// cached returns the payload cached for the store's client session, or nil.
// An entry decoded from a different access token than accessToken is ignored.
func (s *Service) cached(ctx context.Context, store cookies.Store, accessToken string) *token.Payload {
	sid := cookies.Value(store, cookies.SessionIDName)
	if sid == "" {
		return nil
	}

	session, err := s.repo.Get(ctx, sid)
	if err != nil {
		if !errors.Is(err, sessions.ErrSessionNotFound) {
			log.Err(err).Str("session", sid).Msg("Failed to read cached session")
		}
		return nil
	}
	if !session.Matches(accessToken) || !session.Payload.ValidAt(s.nowTime()) {
		return nil
	}
	return &session.Payload
}

// remember caches payload, decoded from accessToken, under the store's client
// session, minting a session id cookie on first use. Cache failures are
// logged and ignored.
func (s *Service) remember(ctx context.Context, store cookies.Store, accessToken string, payload *token.Payload) {
	sid := cookies.Value(store, cookies.SessionIDName)
	if sid == "" {
		sid = uuid.NewString()
		store.Set(cookies.Cookie{
			Name:     cookies.SessionIDName,
			Value:    sid,
			Path:     "/",
			HttpOnly: true,
			Secure:   s.secureCookies,
			SameSite: http.SameSiteLaxMode,
		})
	}

	session := sessions.Session{
		ID:        sid,
		Payload:   *payload,
		TokenHash: sessions.HashToken(accessToken),
		CreatedAt: s.nowTime(),
	}
	if err := s.repo.Upsert(ctx, session); err != nil {
		log.Err(err).Str("session", sid).Msg("Failed to cache session")
	}
}
