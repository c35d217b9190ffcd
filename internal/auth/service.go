// Package auth implements the authentication workflows: register, login,
// logout, change-password, forgot-password and refresh-token rotation.
package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"auth-service/internal/apperr"
	"auth-service/internal/auth/credentials"
	"auth-service/internal/logger"
	"auth-service/internal/mail"
	"auth-service/internal/session"
	"auth-service/internal/token"
	"auth-service/internal/user"
	"auth-service/internal/utils"
)

type Service struct {
	users    user.Store
	sessions session.Store
	issuer   *token.Issuer
	verifier *token.Verifier
	mailer   mail.Sender
	product  mail.Product
}

func NewService(
	users user.Store,
	sessions session.Store,
	issuer *token.Issuer,
	verifier *token.Verifier,
	mailer mail.Sender,
	product mail.Product,
) *Service {
	return &Service{
		users:    users,
		sessions: sessions,
		issuer:   issuer,
		verifier: verifier,
		mailer:   mailer,
		product:  product,
	}
}

// Register creates a new user. The returned record still carries the
// password hash; the handler maps it to a response type without it.
func (s *Service) Register(ctx context.Context, name, email, password string) (*user.User, error) {
	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, user.ErrNotFound) {
		return nil, apperr.Wrap(err, apperr.KindInternal, "failed to look up user")
	}
	if existing != nil {
		return nil, apperr.New(apperr.KindConflict,
			fmt.Sprintf("register failed: %s already exists", email))
	}

	hash, err := credentials.HashPassword(password)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.KindInternal, "failed to hash password")
	}

	u := &user.User{
		ID:       uuid.NewString(),
		Name:     name,
		Email:    email,
		Password: hash,
	}
	if err := s.users.Create(ctx, u); err != nil {
		// Two concurrent registrations can both pass the lookup; the
		// unique index decides.
		if errors.Is(err, user.ErrDuplicateEmail) {
			return nil, apperr.New(apperr.KindConflict,
				fmt.Sprintf("register failed: %s already exists", email))
		}
		return nil, apperr.Wrap(err, apperr.KindInternal, "failed to create user")
	}

	msg, err := mail.WelcomeMessage(s.product, u.Email, u.Name)
	s.send(ctx, msg, err)

	return u, nil
}

// Login checks credentials and issues an access/refresh pair. Issuing the
// refresh token overwrites the user's session record, so any refresh token
// from an earlier login stops verifying.
func (s *Service) Login(ctx context.Context, email, password string) (token.Pair, error) {
	u, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, user.ErrNotFound) {
		return token.Pair{}, apperr.New(apperr.KindNotFound,
			fmt.Sprintf("login failed: %s not registered", email))
	}
	if err != nil {
		return token.Pair{}, apperr.Wrap(err, apperr.KindInternal, "failed to look up user")
	}

	if err := credentials.VerifyPassword(u.Password, password); err != nil {
		return token.Pair{}, apperr.New(apperr.KindUnauthorized, "invalid credentials")
	}

	return s.issuer.IssuePair(ctx, payloadFor(u))
}

// Logout deletes the user's refresh session. The token must pass the full
// refresh verification first, so an expired or superseded token cannot be
// used to delete someone's active session. Deleting an absent session is
// not an error.
func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return apperr.New(apperr.KindBadRequest, "refresh token is required")
	}

	payload, err := s.verifier.VerifyRefresh(ctx, refreshToken)
	if err != nil {
		return err
	}

	if err := s.sessions.Delete(ctx, payload.UserID); err != nil {
		return apperr.Wrap(err, apperr.KindInternal, "failed to delete refresh session")
	}
	return nil
}

// ChangePassword replaces the stored hash after checking the current
// password, and deletes the refresh session so a stolen refresh token does
// not survive the change.
func (s *Service) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	u, err := s.users.FindByID(ctx, userID)
	if errors.Is(err, user.ErrNotFound) {
		return apperr.New(apperr.KindNotFound, "user not found")
	}
	if err != nil {
		return apperr.Wrap(err, apperr.KindInternal, "failed to look up user")
	}

	if err := credentials.VerifyPassword(u.Password, currentPassword); err != nil {
		return apperr.New(apperr.KindUnauthorized, "old password is invalid")
	}

	hash, err := credentials.HashPassword(newPassword)
	if err != nil {
		return apperr.Wrap(err, apperr.KindInternal, "failed to hash password")
	}

	if err := s.users.UpdatePasswordByEmail(ctx, u.Email, hash); err != nil {
		return apperr.Wrap(err, apperr.KindInternal, "failed to update password")
	}

	if err := s.sessions.Delete(ctx, u.ID); err != nil {
		logger.Error("failed to invalidate refresh session after password change",
			"user_id", u.ID, "error", err.Error())
	}
	return nil
}

// ForgotPassword generates a replacement password, persists its hash and
// mails the plaintext to the user. The plaintext never appears in the
// HTTP response.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	u, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, user.ErrNotFound) {
		return apperr.New(apperr.KindNotFound,
			fmt.Sprintf("failed: %s not registered", email))
	}
	if err != nil {
		return apperr.Wrap(err, apperr.KindInternal, "failed to look up user")
	}

	password := utils.RandomPassword()
	hash, err := credentials.HashPassword(password)
	if err != nil {
		return apperr.Wrap(err, apperr.KindInternal, "failed to hash password")
	}

	if err := s.users.UpdatePasswordByEmail(ctx, u.Email, hash); err != nil {
		return apperr.Wrap(err, apperr.KindInternal, "failed to update password")
	}

	msg, err := mail.PasswordResetMessage(s.product, u.Email, u.Name, password)
	s.send(ctx, msg, err)

	return nil
}

// Refresh verifies a refresh token and issues a brand-new pair, rotating
// the stored session token.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (token.Pair, error) {
	if refreshToken == "" {
		return token.Pair{}, apperr.New(apperr.KindBadRequest, "refresh token is required")
	}

	payload, err := s.verifier.VerifyRefresh(ctx, refreshToken)
	if err != nil {
		return token.Pair{}, err
	}

	return s.issuer.IssuePair(ctx, payload)
}

// ListUsers returns all user records. Access is gated by the bearer
// middleware at the transport layer; there is no further scoping.
func (s *Service) ListUsers(ctx context.Context) ([]user.User, error) {
	users, err := s.users.All(ctx)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.KindInternal, "failed to list users")
	}
	return users, nil
}

func payloadFor(u *user.User) token.Payload {
	return token.Payload{
		UserID: u.ID,
		Name:   u.Name,
		Email:  u.Email,
	}
}

// send delivers a notification best-effort. Failures are logged, never
// propagated: the triggering request still succeeds.
func (s *Service) send(ctx context.Context, msg mail.Message, buildErr error) {
	if buildErr != nil {
		logger.Error("failed to build email", "error", buildErr.Error())
		return
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		logger.Error("failed to send email", "to", msg.To, "error", err.Error())
	}
}
