package auth

import (
	"crypto/rand"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const tokenIssuer = "pingate-bank"

type sessionClaims struct {
	Email     string `json:"email"`
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

type tokenSigner struct {
	key []byte
}

func newTokenSigner(secret string) (*tokenSigner, error) {
	if secret != "" {
		return &tokenSigner{key: []byte(secret)}, nil
	}
	// Generate a random key if no secret is configured. Tokens then do not
	// survive a restart.
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("generate signing key: %w", err)
	}
	return &tokenSigner{key: b}, nil
}

func (t *tokenSigner) sign(identityID, email, sessionID string, issuedAt, expiresAt time.Time) (string, error) {
	claims := sessionClaims{
		Email:     email,
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   identityID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.key)
}

func (t *tokenSigner) parse(tokenStr string, now func() time.Time) (*sessionClaims, error) {
	var claims sessionClaims
	token, err := jwt.ParseWithClaims(tokenStr, &claims, func(tok *jwt.Token) (any, error) {
		return t.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(now),
	)
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.Subject == "" || claims.SessionID == "" {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return &claims, nil
}
