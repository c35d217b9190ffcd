// Package token mints and verifies the signed access and refresh tokens.
//
// Access tokens are stateless: a valid signature and unexpired claim is
// enough. Refresh tokens are stateful: on top of the signature check, the
// presented token must equal the single value currently recorded in the
// session store for that user. Issuing a new refresh token overwrites that
// record, which is what invalidates the previous token the moment a newer
// login or refresh happens.
package token

import (
	"github.com/golang-jwt/jwt/v5"
)

// Payload carries the identity claims embedded in both token kinds.
type Payload struct {
	UserID string
	Name   string
	Email  string
}

// Claims is the JWT claim set: registered claims with Subject set to the
// user id, plus name and email.
type Claims struct {
	jwt.RegisteredClaims
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (c *Claims) payload() Payload {
	return Payload{
		UserID: c.Subject,
		Name:   c.Name,
		Email:  c.Email,
	}
}

// Pair is an access/refresh token pair issued together on login and refresh.
type Pair struct {
	AccessToken  string
	RefreshToken string
}
