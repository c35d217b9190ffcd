package token

import (
	"context"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"auth-service/internal/apperr"
	"auth-service/internal/session"
)

type Verifier struct {
	accessSecret  []byte
	refreshSecret []byte
	sessions      session.Store
}

func NewVerifier(accessSecret, refreshSecret []byte, sessions session.Store) *Verifier {
	return &Verifier{
		accessSecret:  accessSecret,
		refreshSecret: refreshSecret,
		sessions:      sessions,
	}
}

func parse(tokenString string, secret []byte) (Payload, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return Payload{}, apperr.Wrap(err, apperr.KindUnauthorized, "invalid token")
	}
	if !token.Valid {
		return Payload{}, apperr.New(apperr.KindUnauthorized, "invalid token")
	}

	return claims.payload(), nil
}

// VerifyAccess checks signature and expiry under the access secret.
// Stateless; no store lookup.
func (v *Verifier) VerifyAccess(tokenString string) (Payload, error) {
	return parse(tokenString, v.accessSecret)
}

// VerifyRefresh checks signature and expiry under the refresh secret, then
// confirms the presented token is the one currently recorded for the user.
// A well-signed, unexpired token that has been superseded by a newer login
// or removed by logout fails here. The store is the source of truth for
// "currently active"; the signature is only tamper and expiry protection.
func (v *Verifier) VerifyRefresh(ctx context.Context, tokenString string) (Payload, error) {
	payload, err := parse(tokenString, v.refreshSecret)
	if err != nil {
		return Payload{}, err
	}

	stored, err := v.sessions.Get(ctx, payload.UserID)
	if err != nil {
		return Payload{}, apperr.Wrap(err, apperr.KindInternal, "failed to read refresh session")
	}

	if stored == "" || stored != tokenString {
		return Payload{}, apperr.New(apperr.KindUnauthorized, "refresh token is no longer active")
	}

	return payload, nil
}
