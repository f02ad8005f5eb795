package token

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	apperrors "github.com/jrsteele09/course-session-gateway/internal/errors"
)

// Codec decodes access token claims. It does not verify signatures: the
// backend that issued the cookie is the signing authority, the gateway only
// reads claims.
type Codec struct {
	parser  *jwtlib.Parser
	nowTime func() time.Time
}

// CodecOption modifies a Codec
type CodecOption func(*Codec)

// WithNowTime sets the clock used for expiry checks (primarily for testing)
func WithNowTime(nowFunc func() time.Time) CodecOption {
	return func(c *Codec) {
		c.nowTime = nowFunc
	}
}

func NewCodec(options ...CodecOption) *Codec {
	c := &Codec{
		parser:  jwtlib.NewParser(jwtlib.WithJSONNumber()),
		nowTime: time.Now,
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// Decode returns the payload of a well formed, unexpired token and nil otherwise.
func (c *Codec) Decode(rawToken string) *Payload {
	payload, err := c.Parse(rawToken)
	if err != nil {
		return nil
	}
	return payload
}

// Parse is Decode with the reason for rejection. Errors wrap
// ErrInvalidToken or ErrTokenExpired.
func (c *Codec) Parse(rawToken string) (*Payload, error) {
	if strings.TrimSpace(rawToken) == "" {
		return nil, apperrors.ErrInvalidToken
	}

	unverifiedToken, _, err := c.parser.ParseUnverified(rawToken, jwtlib.MapClaims{})
	if err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrInvalidToken, "parse: %s", err.Error())
	}

	claims, ok := unverifiedToken.Claims.(jwtlib.MapClaims)
	if !ok {
		return nil, apperrors.Wrapf(apperrors.ErrInvalidToken, "error extracting claims")
	}

	exp, ok := int64Claim(claims["exp"])
	if !ok {
		return nil, apperrors.Wrapf(apperrors.ErrInvalidToken, "token missing exp claim")
	}
	iat, _ := int64Claim(claims["iat"])
	role, _ := claims["role"].(string)
	tokenType, _ := claims["type"].(string)

	payload := &Payload{
		ID:        stringClaim(claims["id"]),
		Role:      role,
		Type:      tokenType,
		IssuedAt:  iat,
		ExpiresAt: exp,
	}

	if !payload.ValidAt(c.nowTime()) {
		return nil, apperrors.ErrTokenExpired
	}
	return payload, nil
}

func int64Claim(v any) (int64, bool) {
	switch n := v.(type) {
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, true
		}
		if f, err := n.Float64(); err == nil {
			return floatClaim(f)
		}
	case float64:
		return floatClaim(n)
	}
	return 0, false
}

// floatClaim rejects values outside the int64 range, where the conversion is undefined
func floatClaim(f float64) (int64, bool) {
	if math.IsNaN(f) || f >= math.MaxInt64 || f < math.MinInt64 {
		return 0, false
	}
	return int64(f), true
}

// stringClaim accepts ids emitted either as strings or as numbers
func stringClaim(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case json.Number:
		return s.String()
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case nil:
		return ""
	default:
		return fmt.Sprint(s)
	}
}
