package utils

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"calendar-service/core/config"

	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims identifies the calling user. Tokens are minted by the chat
// platform; this service only verifies and reads them.
type TokenClaims struct {
	UserID      string   `json:"user_id"`
	SystemAdmin bool     `json:"system_admin,omitempty"`
	TeamAdminOf []string `json:"team_admin_of,omitempty"`
	jwt.RegisteredClaims
}

// IsTeamAdmin reports whether the caller administers teamID.
func (c *TokenClaims) IsTeamAdmin(teamID string) bool {
	return teamID != "" && slices.Contains(c.TeamAdminOf, teamID)
}

var ErrInvalidToken = errors.New("invalid token")

func ValidateAndParseToken(tokenString string) (*TokenClaims, error) {
	cfg, ok := config.GetSafe()
	if !ok {
		return nil, errors.New("config not initialized")
	}
	return ParseToken(tokenString, []byte(cfg.Auth.JWTSecret))
}

func ParseToken(tokenString string, secret []byte) (*TokenClaims, error) {
	if len(secret) == 0 {
		return nil, errors.New("jwt secret not configured")
	}
	claims := &TokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.UserID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// GenerateToken signs claims with secret. Used by tests and local tooling.
func GenerateToken(claims TokenClaims, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		Subject:   claims.UserID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}
