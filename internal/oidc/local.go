package oidc

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/hirepath/hirepath/pkg/middleware"
)

// LocalVerifier validates HS256 tokens signed with a shared secret. It backs
// development and single-box deployments where no OIDC issuer is reachable;
// the secret comes from IDENTITY_LOCAL_SECRET.
type LocalVerifier struct {
	secret []byte
}

func NewLocalVerifier(secret string) (*LocalVerifier, error) {
	if secret == "" {
		return nil, errors.New("local token secret is empty")
	}
	return &LocalVerifier{secret: []byte(secret)}, nil
}

type localToken struct {
	claims jwt.MapClaims
}

func (t *localToken) Claims(v interface{}) error {
	if mm, ok := v.(*map[string]interface{}); ok {
		*mm = map[string]interface{}(t.claims)
		return nil
	}
	return errors.New("unsupported claims type")
}

func (v *LocalVerifier) Verify(_ context.Context, raw string) (middleware.Token, error) {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return v.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}
	return &localToken{claims: claims}, nil
}

// IssueLocal mints an HS256 token for the given claims; used by dev tooling
// and tests.
func (v *LocalVerifier) IssueLocal(claims jwt.MapClaims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}
