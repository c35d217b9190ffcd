package token

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"auth-service/internal/apperr"
	"auth-service/internal/session"
)

type Issuer struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	sessions      session.Store
}

func NewIssuer(
	accessSecret, refreshSecret []byte,
	accessTTL, refreshTTL time.Duration,
	sessions session.Store,
) *Issuer {
	return &Issuer{
		accessSecret:  accessSecret,
		refreshSecret: refreshSecret,
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		sessions:      sessions,
	}
}

func sign(payload Payload, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   payload.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Name:  payload.Name,
		Email: payload.Email,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", apperr.Wrap(err, apperr.KindInternal, "failed to sign token")
	}
	return signed, nil
}

// IssueAccess mints a short-lived stateless access token.
func (i *Issuer) IssueAccess(payload Payload) (string, error) {
	return sign(payload, i.accessSecret, i.accessTTL)
}

// IssueRefresh mints a refresh token and records it as the user's current
// session, replacing any previous record. Signing and storing are a unit:
// if the store write fails the token is not returned, so a caller can
// never hold a refresh token that is not recorded.
func (i *Issuer) IssueRefresh(ctx context.Context, payload Payload) (string, error) {
	signed, err := sign(payload, i.refreshSecret, i.refreshTTL)
	if err != nil {
		return "", err
	}

	if err := i.sessions.Set(ctx, payload.UserID, signed, i.refreshTTL); err != nil {
		return "", apperr.Wrap(err, apperr.KindInternal, "failed to store refresh session")
	}

	return signed, nil
}

// IssuePair mints an access and refresh token together, with the refresh
// side effect of IssueRefresh.
func (i *Issuer) IssuePair(ctx context.Context, payload Payload) (Pair, error) {
	access, err := i.IssueAccess(payload)
	if err != nil {
		return Pair{}, err
	}
	refresh, err := i.IssueRefresh(ctx, payload)
	if err != nil {
		return Pair{}, err
	}
	return Pair{AccessToken: access, RefreshToken: refresh}, nil
}
