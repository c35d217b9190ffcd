package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"auth-service/internal/token"
)

// unexported, collision-proof context key
type payloadContextKeyType struct{}

var payloadKey = payloadContextKeyType{}

// PayloadFromContext extracts the authenticated token payload from context.
func PayloadFromContext(ctx context.Context) (token.Payload, bool) {
	p, ok := ctx.Value(payloadKey).(token.Payload)
	return p, ok
}

// AccessVerifier validates an access token and returns its payload.
type AccessVerifier interface {
	VerifyAccess(tokenString string) (token.Payload, error)
}

type AuthMiddleware struct {
	Verifier AccessVerifier
}

func NewAuthMiddleware(verifier AccessVerifier) *AuthMiddleware {
	return &AuthMiddleware{Verifier: verifier}
}

// RequireAuth enforces a valid bearer access token and attaches its
// payload to the request context. Verification is stateless; no store
// lookup happens here.
func (a *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// 1. Read bearer header
		header := r.Header.Get("Authorization")
		if header == "" {
			unauthorized(w, "missing authorization header")
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			unauthorized(w, "malformed authorization header")
			return
		}

		// 2. Verify access token
		payload, err := a.Verifier.VerifyAccess(parts[1])
		if err != nil {
			unauthorized(w, "invalid or expired access token")
			return
		}

		// 3. Attach payload to context and continue
		ctx := context.WithValue(r.Context(), payloadKey, payload)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"message": message})
}
