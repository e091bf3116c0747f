package common

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// SessionToken is a validated bearer token for one tracking session
type SessionToken struct {
	SessionID string
	TokenID   string
	ExpiresAt time.Time
}

// SessionTokenSigner issues and validates HMAC-signed session tokens
type SessionTokenSigner struct {
	secretKey []byte
}

func NewSessionTokenSigner(secretKey []byte) *SessionTokenSigner {
	return &SessionTokenSigner{secretKey: secretKey}
}

// Issue signs a token for sessionID that expires after ttl
func (s *SessionTokenSigner) Issue(sessionID string, ttl time.Duration) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(ttl)

	claims := jwt.MapClaims{
		"sid": sessionID,
		"jti": uuid.New().String(),
		"exp": expiresAt.Unix(),
		"iat": now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.secretKey)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, expiresAt, nil
}

// Validate parses tokenString and returns its session claims
func (s *SessionTokenSigner) Validate(tokenString string) (*SessionToken, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.MapClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secretKey, nil
	}, jwt.WithExpirationRequired())

	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}

	sessionID, ok := (*claims)["sid"].(string)
	if !ok || sessionID == "" {
		return nil, errors.New("missing or invalid sid claim")
	}

	tokenID, _ := (*claims)["jti"].(string)

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, errors.New("missing or invalid exp claim")
	}

	return &SessionToken{
		SessionID: sessionID,
		TokenID:   tokenID,
		ExpiresAt: exp.Time,
	}, nil
}
