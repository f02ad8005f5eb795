package token_test

import (
	"math"
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	apperrors "github.com/jrsteele09/course-session-gateway/internal/errors"
	"github.com/jrsteele09/course-session-gateway/token"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func signClaims(t *testing.T, claims jwtlib.MapClaims) string {
	t.Helper()
	signed, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString([]byte("backend-secret"))
	require.NoError(t, err)
	return signed
}

func newCodec() *token.Codec {
	return token.NewCodec(token.WithNowTime(func() time.Time { return fixedNow }))
}

func TestCodec_DecodeValidToken(t *testing.T) {
	raw := signClaims(t, jwtlib.MapClaims{
		"id":   "user-42",
		"role": "STUDENT",
		"type": "access",
		"iat":  fixedNow.Add(-time.Minute).Unix(),
		"exp":  fixedNow.Add(15 * time.Minute).Unix(),
	})

	payload := newCodec().Decode(raw)
	require.NotNil(t, payload)
	require.Equal(t, token.Payload{
		ID:        "user-42",
		Role:      "STUDENT",
		Type:      "access",
		IssuedAt:  fixedNow.Add(-time.Minute).Unix(),
		ExpiresAt: fixedNow.Add(15 * time.Minute).Unix(),
	}, *payload)
}

func TestCodec_NumericID(t *testing.T) {
	raw := signClaims(t, jwtlib.MapClaims{
		"id":  1234567,
		"exp": fixedNow.Add(time.Hour).Unix(),
	})

	payload := newCodec().Decode(raw)
	require.NotNil(t, payload)
	require.Equal(t, "1234567", payload.ID)
}

func TestCodec_SignatureIsNotVerified(t *testing.T) {
	raw := signClaims(t, jwtlib.MapClaims{"id": "u", "exp": fixedNow.Add(time.Hour).Unix()})
	tampered := raw[:len(raw)-4] + "AAAA"

	require.NotNil(t, newCodec().Decode(tampered))
}

func TestCodec_Rejections(t *testing.T) {
	codec := newCodec()

	tests := []struct {
		name    string
		raw     string
		wantErr error
	}{
		{"empty", "", apperrors.ErrInvalidToken},
		{"not a jwt", "not.a.jwt", apperrors.ErrInvalidToken},
		{"garbage", "abc", apperrors.ErrInvalidToken},
		{"missing exp", signClaims(t, jwtlib.MapClaims{"id": "u"}), apperrors.ErrInvalidToken},
		{"expired", signClaims(t, jwtlib.MapClaims{"id": "u", "exp": fixedNow.Add(-time.Second).Unix()}), apperrors.ErrTokenExpired},
		{"expires exactly now", signClaims(t, jwtlib.MapClaims{"id": "u", "exp": fixedNow.Unix()}), apperrors.ErrTokenExpired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload, err := codec.Parse(tt.raw)
			require.Nil(t, payload)
			require.ErrorIs(t, err, tt.wantErr)
			require.Nil(t, codec.Decode(tt.raw))
		})
	}
}

func TestCodec_PastExpiryAlwaysRejected(t *testing.T) {
	codec := newCodec()
	for _, age := range []time.Duration{time.Second, time.Minute, 24 * time.Hour, 365 * 24 * time.Hour} {
		raw := signClaims(t, jwtlib.MapClaims{"id": "u", "exp": fixedNow.Add(-age).Unix()})
		require.Nil(t, codec.Decode(raw), "age %s", age)
	}
}

func TestPayload_ValidAt(t *testing.T) {
	now := time.Unix(1_800_000_000, 0)

	tests := []struct {
		name string
		exp  int64
		now  time.Time
		want bool
	}{
		{name: "exp equals now", exp: now.Unix(), now: now, want: false},
		{name: "exp within the current second", exp: now.Unix(), now: now.Add(500 * time.Millisecond), want: false},
		{name: "exp one second ahead", exp: now.Unix() + 1, now: now.Add(999 * time.Millisecond), want: true},
		{name: "far future exp", exp: math.MaxInt64, now: now, want: true},
		{name: "far past exp", exp: math.MinInt64, now: now, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, token.Payload{ExpiresAt: tt.exp}.ValidAt(tt.now))
		})
	}
}

func TestCodec_OutOfRangeExpiry(t *testing.T) {
	raw := signClaims(t, jwtlib.MapClaims{"id": "user-1", "exp": 1e300})

	_, err := newCodec().Parse(raw)
	require.ErrorIs(t, err, apperrors.ErrInvalidToken)

	raw = signClaims(t, jwtlib.MapClaims{"id": "user-1", "exp": int64(9_300_000_000_000_000)})
	payload, err := newCodec().Parse(raw)
	require.NoError(t, err)
	require.Equal(t, int64(9_300_000_000_000_000), payload.ExpiresAt)
}
