// Package session issues and checks HS256 access tokens and carries the
// authenticated user id through request contexts.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

const accessTokenType = "access"

var ErrInvalidToken = errors.New("invalid token")

type TokenClaims struct {
	UserID    string `json:"uid"`
	TokenType string `json:"typ"`
	jwt.RegisteredClaims
}

type Issuer struct {
	secret   []byte
	ttl      time.Duration
	now      func() time.Time
	accounts AccountFunc
	log      *zap.Logger
}

func NewIssuer(secret string, ttl time.Duration) *Issuer {
	return &Issuer{secret: []byte(secret), ttl: ttl, now: time.Now, log: zap.NewNop()}
}

// Issue signs an access token for userID and returns it with its expiry.
func (i *Issuer) Issue(userID string) (string, time.Time, error) {
	now := i.now()
	expires := now.Add(i.ttl)
	claims := &TokenClaims{
		UserID:    userID,
		TokenType: accessTokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expires, nil
}

// Parse validates raw and returns the user id it was issued for.
func (i *Issuer) Parse(raw string) (string, error) {
	claims := &TokenClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil || !token.Valid || claims.TokenType != accessTokenType || claims.UserID == "" {
		return "", ErrInvalidToken
	}
	return claims.UserID, nil
}

type principalKey struct{}

// WithPrincipal returns a context carrying userID as the requester.
func WithPrincipal(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, principalKey{}, userID)
}

// Principal returns the requester's user id, or "" for anonymous callers.
func Principal(ctx context.Context) string {
	id, _ := ctx.Value(principalKey{}).(string)
	return id
}
