package auth

import (
	"errors"
	"time"

	"github.com/dayloop-io/dayloop/internal/models"
	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

// TokenClaims are the claims carried by a programmatic bearer token.
type TokenClaims struct {
	PersonKey string `json:"person_key"`
	Email     string `json:"email"`
	jwt.RegisteredClaims
}

// TokenManager mints and validates signed bearer tokens for programmatic
// API access. These are stateless and separate from cookie sessions: they
// cannot be renewed or revoked, only outlived.
type TokenManager struct {
	secretKey []byte
	duration  time.Duration
}

// NewTokenManager creates a TokenManager. A nil manager (no secret
// configured) disables bearer issuance.
func NewTokenManager(secretKey string, duration time.Duration) *TokenManager {
	if secretKey == "" {
		return nil
	}
	if duration <= 0 {
		duration = 24 * time.Hour
	}
	return &TokenManager{
		secretKey: []byte(secretKey),
		duration:  duration,
	}
}

// GenerateToken creates a signed token for a person.
func (tm *TokenManager) GenerateToken(person *models.Person) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(tm.duration)

	claims := TokenClaims{
		PersonKey: person.Key,
		Email:     person.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(tm.secretKey)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// ValidateToken checks a signed token and returns its claims.
func (tm *TokenManager) ValidateToken(tokenString string) (*TokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &TokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return tm.secretKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*TokenClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
