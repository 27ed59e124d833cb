package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"taskmaster/internal/domain"
)

const (
	// refreshTokenBytes is the amount of randomness in a refresh token before hex encoding.
	refreshTokenBytes = 40
	// RefreshTokenLifetime is how long an issued refresh token can be exchanged.
	RefreshTokenLifetime = 7 * 24 * time.Hour
	minKeyLength         = 32
)

var (
	// ErrInvalidToken indicates the token is malformed, badly signed or issued for another audience.
	ErrInvalidToken = errors.New("invalid authentication token")
	// ErrExpiredToken indicates the token lifetime has elapsed.
	ErrExpiredToken = errors.New("authentication token has expired")
)

// Settings configures token signing and validation.
type Settings struct {
	Key               string
	Issuer            string
	Audience          string
	DurationInMinutes int
}

// Claims is the identity carried by an access token.
type Claims struct {
	UserName  string
	UserID    int64
	Email     string
	Roles     []string
	TokenID   string
	ExpiresAt time.Time
}

// HasRole reports whether the claims include role.
func (c *Claims) HasRole(role string) bool {
	for _, r := range c.Roles {
		if r == role {
			return true
		}
	}
	return false
}

type jwtClaims struct {
	Email  string   `json:"email"`
	UserID string   `json:"uid"`
	Roles  []string `json:"roles"`
	jwt.RegisteredClaims
}

// TokenService issues and validates HMAC-SHA256 access tokens and opaque refresh tokens.
type TokenService struct {
	key      []byte
	issuer   string
	audience string
	lifetime time.Duration
	now      func() time.Time
}

// NewTokenService validates settings and returns a TokenService.
func NewTokenService(s Settings) (*TokenService, error) {
	if len(s.Key) < minKeyLength {
		return nil, fmt.Errorf("jwt key must be at least %d characters", minKeyLength)
	}
	if s.DurationInMinutes <= 0 {
		return nil, fmt.Errorf("jwt duration must be positive, got %d minutes", s.DurationInMinutes)
	}
	return &TokenService{
		key:      []byte(s.Key),
		issuer:   s.Issuer,
		audience: s.Audience,
		lifetime: time.Duration(s.DurationInMinutes) * time.Minute,
		now:      time.Now,
	}, nil
}

// WithClock returns a copy of s that reads the current time from now.
func (s *TokenService) WithClock(now func() time.Time) *TokenService {
	c := *s
	c.now = now
	return &c
}

// Lifetime is the validity window of issued access tokens.
func (s *TokenService) Lifetime() time.Duration {
	return s.lifetime
}

// GenerateAccessToken signs a token for user carrying roles.
func (s *TokenService) GenerateAccessToken(user *domain.User, roles []string) (string, time.Time, error) {
	now := s.now()
	expires := now.Add(s.lifetime)

	claims := jwtClaims{
		Email:  user.Email,
		UserID: strconv.FormatInt(user.ID, 10),
		Roles:  roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.UserName,
			ID:        uuid.NewString(),
			Issuer:    s.issuer,
			Audience:  jwt.ClaimStrings{s.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign access token: %w", err)
	}
	return signed, expires, nil
}

// ValidateAccessToken checks signature, issuer, audience and lifetime with no clock skew.
func (s *TokenService) ValidateAccessToken(tokenString string) (*Claims, error) {
	parsed := &jwtClaims{}
	token, err := jwt.ParseWithClaims(
		tokenString,
		parsed,
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return s.key, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(s.audience),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(0),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	uid, err := strconv.ParseInt(parsed.UserID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: bad uid claim", ErrInvalidToken)
	}

	return &Claims{
		UserName:  parsed.Subject,
		UserID:    uid,
		Email:     parsed.Email,
		Roles:     parsed.Roles,
		TokenID:   parsed.ID,
		ExpiresAt: parsed.ExpiresAt.Time,
	}, nil
}

// GenerateRefreshToken returns a fresh refresh token for userID valid for RefreshTokenLifetime.
func (s *TokenService) GenerateRefreshToken(userID int64) (*domain.RefreshToken, error) {
	buf := make([]byte, refreshTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return nil, fmt.Errorf("read random bytes: %w", err)
	}
	now := s.now().UTC()
	return &domain.RefreshToken{
		UserID:  userID,
		Token:   hex.EncodeToString(buf),
		Expires: now.Add(RefreshTokenLifetime),
		Created: now,
	}, nil
}
