package utils

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// SessionPayload is the identity carried by a session token.
type SessionPayload struct {
	UserID  uuid.UUID
	Phone   string
	IsAdmin bool
}

type sessionClaims struct {
	UserID  string `json:"user_id"`
	Phone   string `json:"phone"`
	IsAdmin bool   `json:"is_admin"`
	jwt.RegisteredClaims
}

// GenerateToken signs a session token for the given identity.
func GenerateToken(secret string, payload SessionPayload, ttl time.Duration) (string, error) {
	claims := &sessionClaims{
		UserID:  payload.UserID.String(),
		Phone:   payload.Phone,
		IsAdmin: payload.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   payload.UserID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseToken validates a session token and returns its payload. Malformed,
// expired, and foreign-secret tokens all come back as errors.
func ParseToken(secret, tokenString string) (SessionPayload, error) {
	token, err := jwt.ParseWithClaims(tokenString, &sessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil {
		return SessionPayload{}, err
	}

	claims, ok := token.Claims.(*sessionClaims)
	if !ok || !token.Valid {
		return SessionPayload{}, jwt.ErrTokenInvalidClaims
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return SessionPayload{}, jwt.ErrTokenInvalidClaims
	}

	return SessionPayload{UserID: userID, Phone: claims.Phone, IsAdmin: claims.IsAdmin}, nil
}
