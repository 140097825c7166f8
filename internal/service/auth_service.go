package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/praneeth1335/backend/internal/auth"
	"github.com/praneeth1335/backend/internal/cache"
	"github.com/praneeth1335/backend/internal/email"
	"github.com/praneeth1335/backend/internal/ledger"
	"github.com/praneeth1335/backend/internal/models"
	"github.com/praneeth1335/backend/internal/storage"
)

const (
	otpTTL        = 10 * time.Minute
	resetTokenTTL = time.Hour

	otpKeyPrefix   = "otp:"
	resetKeyPrefix = "reset:"
)

// AuthService handles registration, login, email verification and password
// reset.
type AuthService struct {
	users         storage.UserStore
	authenticator auth.Authenticator
	tokens        *auth.JWTManager
	codes         cache.Codes
	mail          email.Sender
	updater       *ledger.Updater
}

// NewAuthService creates an AuthService.
func NewAuthService(
	users storage.UserStore,
	authenticator auth.Authenticator,
	tokens *auth.JWTManager,
	codes cache.Codes,
	mail email.Sender,
	updater *ledger.Updater,
) *AuthService {
	return &AuthService{
		users:         users,
		authenticator: authenticator,
		tokens:        tokens,
		codes:         codes,
		mail:          mail,
		updater:       updater,
	}
}

// NormalizeEmail lowercases and trims an email address. All email lookups and
// writes go through this so casing never splits one address into two records.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates an account, emails a verification code, and returns the
// user with a session token.
func (s *AuthService) Register(ctx context.Context, name, emailAddr, password string) (*models.User, string, error) {
	emailAddr = NormalizeEmail(emailAddr)

	user, err := s.authenticator.Register(ctx, strings.TrimSpace(name), emailAddr, password)
	if err != nil {
		return nil, "", err
	}

	if err := s.sendVerificationCode(ctx, user); err != nil {
		// Account creation succeeded; the code can be re-requested later.
		slog.Warn("failed to send verification code", "user_id", user.ID, "error", err)
	}

	token, err := s.tokens.Generate(user)
	if err != nil {
		return nil, "", fmt.Errorf("generating session token: %w", err)
	}
	return user, token, nil
}

func (s *AuthService) sendVerificationCode(ctx context.Context, user *models.User) error {
	otp, err := auth.GenerateOTP()
	if err != nil {
		return err
	}
	if err := s.codes.Set(ctx, otpKeyPrefix+user.Email, auth.HashCode(otp), otpTTL); err != nil {
		return fmt.Errorf("storing verification code: %w", err)
	}
	body := fmt.Sprintf("Hi %s,\n\nYour verification code is %s. It expires in %d minutes.\n", user.Name, otp, int(otpTTL.Minutes()))
	return s.mail.Send(ctx, user.Email, "Verify your email", body)
}

// Login authenticates the user, refreshes their aggregate balances, and
// returns a session token.
func (s *AuthService) Login(ctx context.Context, emailAddr, password string) (*models.User, string, error) {
	user, err := s.authenticator.Authenticate(ctx, NormalizeEmail(emailAddr), password)
	if err != nil {
		return nil, "", err
	}

	if err := s.updater.RecomputeUser(ctx, user); err != nil {
		return nil, "", err
	}

	token, err := s.tokens.Generate(user)
	if err != nil {
		return nil, "", fmt.Errorf("generating session token: %w", err)
	}
	return user, token, nil
}

// VerifyOTP checks the emailed code and marks the account verified.
func (s *AuthService) VerifyOTP(ctx context.Context, emailAddr, otp string) (*models.User, error) {
	emailAddr = NormalizeEmail(emailAddr)
	if !auth.ValidOTPFormat(otp) {
		return nil, ErrInvalidCode
	}

	stored, err := s.codes.Get(ctx, otpKeyPrefix+emailAddr)
	if err != nil {
		if errors.Is(err, cache.ErrNotFound) {
			return nil, ErrInvalidCode
		}
		return nil, fmt.Errorf("loading verification code: %w", err)
	}
	if stored != auth.HashCode(otp) {
		return nil, ErrInvalidCode
	}

	user, err := s.users.GetUserByEmail(ctx, emailAddr)
	if err != nil {
		return nil, fmt.Errorf("loading user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	user.IsVerified = true
	user.UpdatedAt = time.Now().Unix()
	if err := s.users.UpdateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("marking user verified: %w", err)
	}

	// Codes are single-use.
	if err := s.codes.Delete(ctx, otpKeyPrefix+emailAddr); err != nil {
		slog.Warn("failed to delete used verification code", "email", emailAddr, "error", err)
	}
	return user, nil
}

// ForgotPassword emails a single-use reset token to the account holder.
func (s *AuthService) ForgotPassword(ctx context.Context, emailAddr string) error {
	emailAddr = NormalizeEmail(emailAddr)

	user, err := s.users.GetUserByEmail(ctx, emailAddr)
	if err != nil {
		return fmt.Errorf("loading user: %w", err)
	}
	if user == nil {
		return ErrUserNotFound
	}

	token, err := auth.GenerateResetToken()
	if err != nil {
		return err
	}
	if err := s.codes.Set(ctx, resetKeyPrefix+auth.HashCode(token), user.ID, resetTokenTTL); err != nil {
		return fmt.Errorf("storing reset token: %w", err)
	}

	body := fmt.Sprintf("Hi %s,\n\nYour password reset code is %s. It expires in %d minutes.\n", user.Name, token, int(resetTokenTTL.Minutes()))
	return s.mail.Send(ctx, user.Email, "Reset your password", body)
}

// ResetPassword consumes a reset token and replaces the account password.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if err := s.authenticator.ValidateCredential(newPassword); err != nil {
		return err
	}

	key := resetKeyPrefix + auth.HashCode(token)
	userID, err := s.codes.Get(ctx, key)
	if err != nil {
		if errors.Is(err, cache.ErrNotFound) {
			return ErrInvalidCode
		}
		return fmt.Errorf("loading reset token: %w", err)
	}

	hashed, err := auth.HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.users.SetUserPassword(ctx, userID, hashed); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("updating password: %w", err)
	}

	if err := s.codes.Delete(ctx, key); err != nil {
		slog.Warn("failed to delete used reset token", "user_id", userID, "error", err)
	}
	return nil
}

// Profile returns the user with freshly recomputed aggregate balances.
func (s *AuthService) Profile(ctx context.Context, user *models.User) (*models.User, error) {
	if err := s.updater.RecomputeUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateProfile changes the display name and/or avatar. Empty arguments leave
// the current value untouched.
func (s *AuthService) UpdateProfile(ctx context.Context, user *models.User, name, avatar string) (*models.User, error) {
	if name = strings.TrimSpace(name); name != "" {
		user.Name = name
	}
	if avatar != "" {
		user.Avatar = avatar
	}
	user.UpdatedAt = time.Now().Unix()

	if err := s.users.UpdateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("updating profile: %w", err)
	}
	return user, nil
}
