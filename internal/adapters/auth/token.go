package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"teamregistry/internal/domain"
)

type jwtClaims struct {
	jwt.RegisteredClaims
	Email string   `json:"email"`
	Roles []string `json:"roles"`
}

type jwtIssuer struct {
	secret []byte
}

// NewJWTIssuer returns a TokenIssuer that signs JWTs with HS256 using the given secret.
func NewJWTIssuer(secret string) domain.TokenIssuer {
	return &jwtIssuer{secret: []byte(secret)}
}

func (i *jwtIssuer) Issue(userID, email string, roles []string, expiry time.Duration) (string, error) {
	now := time.Now()
	claims := jwtClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
		},
		Email: email,
		Roles: roles,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

type jwtVerifier struct {
	secret []byte
}

// NewJWTVerifier returns a TokenVerifier for tokens issued by NewJWTIssuer.
func NewJWTVerifier(secret string) domain.TokenVerifier {
	return &jwtVerifier{secret: []byte(secret)}
}

func (v *jwtVerifier) Verify(tokenString string) (string, error) {
	claims := &jwtClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid || claims.Subject == "" {
		return "", fmt.Errorf("invalid token")
	}
	return claims.Subject, nil
}
