package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"datadesk/m/domain"
)

var (
	ErrExpiredCredential   = errors.New("token expired")
	ErrMalformedCredential = errors.New("invalid token")
)

// Claims identify the caller a token was issued to.
type Claims struct {
	Username string
	Role     domain.Role
}

type tokenClaims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// TokenService issues and validates HMAC signed JWTs.
type TokenService struct {
	secret []byte
	method jwt.SigningMethod
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenService constructs a TokenService. algorithm must name an HMAC
// method (HS256, HS384, HS512).
func NewTokenService(secret, algorithm string, ttl time.Duration) (*TokenService, error) {
	if secret == "" {
		return nil, errors.New("token secret is empty")
	}
	method, ok := jwt.GetSigningMethod(algorithm).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("unsupported token algorithm %q", algorithm)
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("token ttl must be positive, got %s", ttl)
	}
	return &TokenService{
		secret: []byte(secret),
		method: method,
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

// TTL is the lifetime applied by Issue.
func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

// Issue signs claims with the configured TTL.
func (s *TokenService) Issue(c Claims) (string, time.Time, error) {
	return s.IssueWithTTL(c, s.ttl)
}

// IssueWithTTL signs claims that expire ttl after now.
func (s *TokenService) IssueWithTTL(c Claims, ttl time.Duration) (string, time.Time, error) {
	now := s.now().UTC()
	expires := now.Add(ttl)
	claims := tokenClaims{
		Username: c.Username,
		Role:     c.Role.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   c.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	token := jwt.NewWithClaims(s.method, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expires, nil
}

// Validate verifies signature and expiry. Expired tokens yield
// ErrExpiredCredential; every other failure yields ErrMalformedCredential.
func (s *TokenService) Validate(tokenString string) (Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &tokenClaims{}, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{s.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, ErrExpiredCredential
		}
		return Claims{}, fmt.Errorf("%w: %v", ErrMalformedCredential, err)
	}
	tc, ok := token.Claims.(*tokenClaims)
	if !ok || !token.Valid {
		return Claims{}, ErrMalformedCredential
	}
	if tc.Username == "" {
		return Claims{}, fmt.Errorf("%w: missing username", ErrMalformedCredential)
	}
	role, err := domain.ParseRole(tc.Role)
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrMalformedCredential, err)
	}
	return Claims{Username: tc.Username, Role: role}, nil
}
