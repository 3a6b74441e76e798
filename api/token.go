package api

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var jwtSigningMethod = jwt.SigningMethodHS256

// AccessClaims carries the identity verified by the authentication collaborator
type AccessClaims struct {
	UserID     int64  `json:"userId"`
	ReferrerID *int64 `json:"referrerId,omitempty"`
	jwt.RegisteredClaims
}

// IssueAccessToken signs claims for userID. The engine only verifies tokens;
// issuing is used by tests and local tooling.
func IssueAccessToken(secret, issuer string, userID int64, referrerID *int64, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := AccessClaims{
		UserID:     userID,
		ReferrerID: referrerID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwtSigningMethod, claims).SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("signing jwt: %w", err)
	}
	return signed, nil
}

// ParseAccessToken validates the token and returns its claims
func ParseAccessToken(secret, issuer, tokenString string) (*AccessClaims, error) {
	if secret == "" {
		return nil, fmt.Errorf("jwt secret is required")
	}

	claims := &AccessClaims{}
	_, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(token *jwt.Token) (interface{}, error) {
			if token.Method != jwtSigningMethod {
				return nil, fmt.Errorf("unexpected signing method %s", token.Header["alg"])
			}
			return []byte(secret), nil
		},
		jwt.WithValidMethods([]string{jwtSigningMethod.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}
	if claims.UserID <= 0 {
		return nil, fmt.Errorf("token has no userId")
	}
	return claims, nil
}
