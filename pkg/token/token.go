package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	RoleAdmin = "admin"

	DefaultTTL = 24 * time.Hour
)

var (
	ErrEmptySecret  = errors.New("token secret is not configured")
	ErrInvalidToken = errors.New("invalid token")
)

// Claims carries the session role. Issued-at and expiry live in the registered claims.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Codec signs and verifies HS256 admin session tokens.
type Codec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewCodec(secret string, ttl time.Duration) (*Codec, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Codec{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

// WithClock replaces the time source. Used by tests.
func (c *Codec) WithClock(now func() time.Time) *Codec {
	c.now = now
	return c
}

func (c *Codec) TTL() time.Duration {
	return c.ttl
}

// Issue returns a signed token for role valid for the codec TTL.
func (c *Codec) Issue(role string) (string, time.Time, error) {
	now := c.now()
	expiresAt := now.Add(c.ttl)
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Verify parses tokenStr and returns its claims. Any defect (bad signature, other
// algorithm, expired, missing exp or role) yields ErrInvalidToken.
func (c *Codec) Verify(tokenStr string) (*Claims, error) {
	if tokenStr == "" {
		return nil, ErrInvalidToken
	}
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Role == "" {
		return nil, fmt.Errorf("%w: missing role", ErrInvalidToken)
	}
	return claims, nil
}

// IsAdmin reports whether tokenStr is a valid admin session.
func (c *Codec) IsAdmin(tokenStr string) bool {
	claims, err := c.Verify(tokenStr)
	return err == nil && claims.Role == RoleAdmin
}
