package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"newsroom/internal/entity"

	"github.com/golang-jwt/jwt/v5"
)

// MinSecretLength is the shortest accepted signing secret.
const MinSecretLength = 32

var (
	// ErrSecretTooShort is returned by NewManager for weak secrets.
	ErrSecretTooShort = fmt.Errorf("jwt secret must be at least %d characters", MinSecretLength)
	// ErrTokenExpired is returned when the token is past its expiry.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenInvalid is returned for bad signatures and malformed payloads.
	ErrTokenInvalid = errors.New("token invalid")
)

// Identity is the set of facts embedded in a session token.
type Identity struct {
	UserID       string
	Email        string
	Name         string
	Role         entity.Role
	IsSubscriber bool
}

// Claims represents JWT claims for authenticated requests.
type Claims struct {
	UserID       string `json:"id"`
	Email        string `json:"email"`
	Name         string `json:"name"`
	Role         string `json:"role"`
	IsSubscriber bool   `json:"isSubscriber"`
	jwt.RegisteredClaims
}

// Identity returns the typed identity carried by the claims.
func (c *Claims) Identity() Identity {
	return Identity{
		UserID:       c.UserID,
		Email:        c.Email,
		Name:         c.Name,
		Role:         entity.Role(c.Role),
		IsSubscriber: c.IsSubscriber,
	}
}

// Manager encapsulates JWT generation and validation.
type Manager struct {
	secret []byte
	issuer string
	expiry time.Duration
	now    func() time.Time
}

// NewManager creates a new JWT manager. It is called once at startup so a
// weak secret stops the process before any token is minted.
func NewManager(secret, issuer string, expiry time.Duration) (*Manager, error) {
	trimmed := strings.TrimSpace(secret)
	if len(trimmed) < MinSecretLength {
		return nil, ErrSecretTooShort
	}
	if expiry <= 0 {
		expiry = 7 * 24 * time.Hour
	}
	if strings.TrimSpace(issuer) == "" {
		issuer = "newsroom"
	}
	return &Manager{
		secret: []byte(trimmed),
		issuer: issuer,
		expiry: expiry,
		now:    time.Now,
	}, nil
}

// Expiry returns the configured token lifetime.
func (m *Manager) Expiry() time.Duration {
	return m.expiry
}

// MintToken issues a signed JWT for the identity.
func (m *Manager) MintToken(id Identity) (string, time.Time, error) {
	if m == nil {
		return "", time.Time{}, errors.New("jwt manager is nil")
	}
	if strings.TrimSpace(id.UserID) == "" || strings.TrimSpace(id.Email) == "" || !id.Role.Valid() {
		return "", time.Time{}, errors.New("invalid identity for token generation")
	}
	now := m.now().UTC()
	expiry := now.Add(m.expiry)

	claims := Claims{
		UserID:       id.UserID,
		Email:        id.Email,
		Name:         id.Name,
		Role:         id.Role.String(),
		IsSubscriber: id.IsSubscriber,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.UserID,
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiry),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiry, nil
}

// VerifyToken validates the token and returns claims. Failures are either
// ErrTokenExpired or ErrTokenInvalid.
func (m *Manager) VerifyToken(tokenString string) (*Claims, error) {
	if m == nil {
		return nil, errors.New("jwt manager is nil")
	}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(m.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)

	token, err := parser.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return m.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}
	if strings.TrimSpace(claims.UserID) == "" || strings.TrimSpace(claims.Email) == "" {
		return nil, fmt.Errorf("%w: missing identity claims", ErrTokenInvalid)
	}
	if _, ok := entity.ParseRole(claims.Role); !ok {
		return nil, fmt.Errorf("%w: unknown role", ErrTokenInvalid)
	}
	return claims, nil
}
