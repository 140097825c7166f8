package service

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/praneeth1335/backend/internal/auth"
	"github.com/praneeth1335/backend/internal/cache"
	"github.com/praneeth1335/backend/internal/ledger"
	"github.com/praneeth1335/backend/internal/storage/memory"
)

// recordingSender captures outbound mail for assertions.
type recordingSender struct {
	to     []string
	bodies []string
}

func (r *recordingSender) Send(_ context.Context, to, _, body string) error {
	r.to = append(r.to, to)
	r.bodies = append(r.bodies, body)
	return nil
}

var otpPattern = regexp.MustCompile(`\b(\d{6})\b`)
var tokenPattern = regexp.MustCompile(`\b([0-9a-f]{40})\b`)

func newAuthFixture(t *testing.T) (*AuthService, *memory.MemoryStore, *recordingSender) {
	t.Helper()
	store := memory.New()
	calculator := ledger.NewCalculator(store, store)
	updater := ledger.NewUpdater(store, store, calculator)
	sender := &recordingSender{}
	svc := NewAuthService(
		store,
		auth.NewPasswordAuthenticator(store),
		auth.NewJWTManager("test-secret", time.Hour),
		cache.NewInMemoryCodes(),
		sender,
		updater,
	)
	return svc, store, sender
}

func TestRegisterAndVerify(t *testing.T) {
	svc, store, sender := newAuthFixture(t)
	ctx := context.Background()

	user, token, err := svc.Register(ctx, "Alice", "ALICE@Example.com", "secret123")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if token == "" {
		t.Error("expected a session token")
	}
	if user.Email != "alice@example.com" {
		t.Errorf("Email = %q, want normalized lowercase", user.Email)
	}
	if user.IsVerified {
		t.Error("new accounts start unverified")
	}
	if len(sender.to) != 1 || sender.to[0] != "alice@example.com" {
		t.Fatalf("verification mail went to %v, want alice@example.com", sender.to)
	}

	otp := otpPattern.FindString(sender.bodies[0])
	if otp == "" {
		t.Fatalf("no OTP found in mail body: %q", sender.bodies[0])
	}

	t.Run("wrong code rejected", func(t *testing.T) {
		if _, err := svc.VerifyOTP(ctx, "alice@example.com", "000000"); !errors.Is(err, ErrInvalidCode) {
			t.Errorf("VerifyOTP error = %v, want ErrInvalidCode", err)
		}
	})

	t.Run("malformed code rejected", func(t *testing.T) {
		if _, err := svc.VerifyOTP(ctx, "alice@example.com", "abc"); !errors.Is(err, ErrInvalidCode) {
			t.Errorf("VerifyOTP error = %v, want ErrInvalidCode", err)
		}
	})

	verified, err := svc.VerifyOTP(ctx, "alice@example.com", otp)
	if err != nil {
		t.Fatalf("VerifyOTP failed: %v", err)
	}
	if !verified.IsVerified {
		t.Error("user should be verified")
	}

	stored, err := store.GetUserByEmail(ctx, "alice@example.com")
	if err != nil || stored == nil {
		t.Fatalf("GetUserByEmail failed: %v", err)
	}
	if !stored.IsVerified {
		t.Error("verification should be persisted")
	}

	t.Run("codes are single use", func(t *testing.T) {
		if _, err := svc.VerifyOTP(ctx, "alice@example.com", otp); !errors.Is(err, ErrInvalidCode) {
			t.Errorf("replayed VerifyOTP error = %v, want ErrInvalidCode", err)
		}
	})
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _, _ := newAuthFixture(t)
	ctx := context.Background()

	if _, _, err := svc.Register(ctx, "Alice", "alice@example.com", "secret123"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if _, _, err := svc.Register(ctx, "Imposter", "alice@example.com", "secret456"); !errors.Is(err, auth.ErrEmailExists) {
		t.Errorf("Register error = %v, want ErrEmailExists", err)
	}
}

func TestRegisterWeakPassword(t *testing.T) {
	svc, _, _ := newAuthFixture(t)
	if _, _, err := svc.Register(context.Background(), "Alice", "alice@example.com", "short"); !errors.Is(err, auth.ErrWeakPassword) {
		t.Errorf("Register error = %v, want ErrWeakPassword", err)
	}
}

func TestLogin(t *testing.T) {
	svc, _, _ := newAuthFixture(t)
	ctx := context.Background()

	if _, _, err := svc.Register(ctx, "Alice", "alice@example.com", "secret123"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	user, token, err := svc.Login(ctx, "alice@example.com", "secret123")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if token == "" {
		t.Error("expected a session token")
	}
	if user.TotalOwedToYou != 0 || user.TotalYouOwe != 0 || user.NetBalance != 0 {
		t.Errorf("fresh account aggregates = (%v, %v, %v), want zeros",
			user.TotalOwedToYou, user.TotalYouOwe, user.NetBalance)
	}

	t.Run("wrong password", func(t *testing.T) {
		if _, _, err := svc.Login(ctx, "alice@example.com", "wrong"); !errors.Is(err, auth.ErrInvalidCredentials) {
			t.Errorf("Login error = %v, want ErrInvalidCredentials", err)
		}
	})

	t.Run("unknown email", func(t *testing.T) {
		if _, _, err := svc.Login(ctx, "nobody@example.com", "secret123"); !errors.Is(err, auth.ErrInvalidCredentials) {
			t.Errorf("Login error = %v, want ErrInvalidCredentials", err)
		}
	})
}

func TestPasswordReset(t *testing.T) {
	svc, _, sender := newAuthFixture(t)
	ctx := context.Background()

	if _, _, err := svc.Register(ctx, "Alice", "alice@example.com", "secret123"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	sender.bodies = nil

	if err := svc.ForgotPassword(ctx, "alice@example.com"); err != nil {
		t.Fatalf("ForgotPassword failed: %v", err)
	}
	if len(sender.bodies) != 1 {
		t.Fatalf("got %d reset mails, want 1", len(sender.bodies))
	}
	token := tokenPattern.FindString(sender.bodies[0])
	if token == "" {
		t.Fatalf("no reset token found in mail body: %q", sender.bodies[0])
	}

	t.Run("weak replacement rejected", func(t *testing.T) {
		if err := svc.ResetPassword(ctx, token, "short"); !errors.Is(err, auth.ErrWeakPassword) {
			t.Errorf("ResetPassword error = %v, want ErrWeakPassword", err)
		}
	})

	if err := svc.ResetPassword(ctx, token, "newsecret456"); err != nil {
		t.Fatalf("ResetPassword failed: %v", err)
	}

	if _, _, err := svc.Login(ctx, "alice@example.com", "secret123"); !errors.Is(err, auth.ErrInvalidCredentials) {
		t.Errorf("old password still works after reset: %v", err)
	}
	if _, _, err := svc.Login(ctx, "alice@example.com", "newsecret456"); err != nil {
		t.Errorf("Login with new password failed: %v", err)
	}

	t.Run("tokens are single use", func(t *testing.T) {
		if err := svc.ResetPassword(ctx, token, "another789"); !errors.Is(err, ErrInvalidCode) {
			t.Errorf("replayed ResetPassword error = %v, want ErrInvalidCode", err)
		}
	})
}

func TestForgotPasswordUnknownEmail(t *testing.T) {
	svc, _, _ := newAuthFixture(t)
	if err := svc.ForgotPassword(context.Background(), "nobody@example.com"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("ForgotPassword error = %v, want ErrUserNotFound", err)
	}
}

func TestUpdateProfile(t *testing.T) {
	svc, store, _ := newAuthFixture(t)
	ctx := context.Background()

	user, _, err := svc.Register(ctx, "Alice", "alice@example.com", "secret123")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	updated, err := svc.UpdateProfile(ctx, user, "Alicia", "")
	if err != nil {
		t.Fatalf("UpdateProfile failed: %v", err)
	}
	if updated.Name != "Alicia" {
		t.Errorf("Name = %q, want Alicia", updated.Name)
	}
	if updated.Avatar == "" {
		t.Error("empty avatar argument should keep the existing avatar")
	}

	stored, err := store.GetUserByID(ctx, user.ID)
	if err != nil || stored == nil {
		t.Fatalf("GetUserByID failed: %v", err)
	}
	if stored.Name != "Alicia" {
		t.Errorf("persisted Name = %q, want Alicia", stored.Name)
	}
}
