package sessiontoken

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	apperrors "github.com/jrsteele09/go-cinema-auth/internal/errors"
	"golang.org/x/crypto/hkdf"
)

const (
	issuer  = "cinema-auth"
	keyInfo = "cinema-auth session token signing key"
	keySize = 32
)

// Claims is the payload of the session cookie. It only points at the stored
// session; tokens never leave the server.
type Claims struct {
	jwt.RegisteredClaims
	SessionID string `json:"sid"`
}

// Codec issues and parses session tokens.
type Codec struct {
	key    []byte
	maxAge time.Duration
	now    func() time.Time
}

type Option func(*Codec)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Codec) {
		c.now = now
	}
}

// DeriveKey expands the configured secret into an HMAC key.
func DeriveKey(secret string) ([]byte, error) {
	if secret == "" {
		return nil, errors.New("session secret is required")
	}
	key := make([]byte, keySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, []byte(keyInfo)), key); err != nil {
		return nil, fmt.Errorf("derive session key: %w", err)
	}
	return key, nil
}

func New(secret string, maxAge time.Duration, opts ...Option) (*Codec, error) {
	key, err := DeriveKey(secret)
	if err != nil {
		return nil, err
	}
	c := &Codec{key: key, maxAge: maxAge, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// MaxAge is the lifetime of issued tokens.
func (c *Codec) MaxAge() time.Duration {
	return c.maxAge
}

// Issue signs a token for sessionID.
func (c *Codec) Issue(sessionID string) (string, error) {
	if sessionID == "" {
		return "", errors.New("sessionID is required")
	}
	now := c.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.maxAge)),
			ID:        uuid.NewString(),
		},
		SessionID: sessionID,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.key)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, nil
}

// Parse verifies token and returns the session ID it carries.
func (c *Codec) Parse(token string) (string, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return c.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if errors.Is(err, jwt.ErrTokenExpired) {
		return "", apperrors.Wrapf(apperrors.ErrTokenExpired, "session token")
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", apperrors.ErrInvalidToken, err)
	}
	if claims.SessionID == "" {
		return "", fmt.Errorf("%w: missing sid", apperrors.ErrInvalidToken)
	}
	return claims.SessionID, nil
}
