package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("security: invalid token")

type userClaims struct {
	UserID string `json:"id"`
	jwt.RegisteredClaims
}

// TokenCodec signs and verifies the time-limited identity tokens carried in
// the access_token cookie or a bearer header.
type TokenCodec struct {
	Secret []byte
	TTL    time.Duration
}

// Sign issues a token expiring after TTL. The TTL is taken as configured:
// a zero or negative value produces an already-expired token.
func (c TokenCodec) Sign(userID string) (string, error) {
	now := time.Now()
	claims := userClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.TTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.Secret)
	if err != nil {
		return "", fmt.Errorf("security: sign token: %w", err)
	}
	return signed, nil
}

// Verify returns the embedded user id, or ErrInvalidToken. Callers treat any
// failure as "unauthenticated", never as a server fault.
func (c TokenCodec) Verify(raw string) (string, error) {
	claims := &userClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return c.Secret, nil
	})
	if err != nil || !token.Valid || claims.UserID == "" {
		return "", ErrInvalidToken
	}
	return claims.UserID, nil
}
