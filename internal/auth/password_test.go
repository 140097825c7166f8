package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/praneeth1335/backend/internal/models"
	"github.com/praneeth1335/backend/internal/storage/memory"
)

func TestPasswordAuthenticator(t *testing.T) {
	store := memory.New()
	authenticator := NewPasswordAuthenticator(store)
	ctx := context.Background()

	t.Run("register hashes the password", func(t *testing.T) {
		user, err := authenticator.Register(ctx, "Alice", "alice@example.com", "secret123")
		if err != nil {
			t.Fatalf("Register failed: %v", err)
		}
		if user.ID == "" {
			t.Error("expected a generated ID")
		}
		if user.PasswordHash == "secret123" || user.PasswordHash == "" {
			t.Error("password must be stored hashed")
		}
		if !user.IsActive {
			t.Error("new accounts start active")
		}
	})

	t.Run("duplicate email rejected", func(t *testing.T) {
		if _, err := authenticator.Register(ctx, "Alice2", "alice@example.com", "secret123"); !errors.Is(err, ErrEmailExists) {
			t.Errorf("Register error = %v, want ErrEmailExists", err)
		}
	})

	t.Run("weak password rejected", func(t *testing.T) {
		if _, err := authenticator.Register(ctx, "Bob", "bob@example.com", "12345"); !errors.Is(err, ErrWeakPassword) {
			t.Errorf("Register error = %v, want ErrWeakPassword", err)
		}
	})

	t.Run("authenticate with correct password", func(t *testing.T) {
		user, err := authenticator.Authenticate(ctx, "alice@example.com", "secret123")
		if err != nil {
			t.Fatalf("Authenticate failed: %v", err)
		}
		if user.Email != "alice@example.com" {
			t.Errorf("Email = %q, want alice@example.com", user.Email)
		}
	})

	t.Run("authenticate with wrong password", func(t *testing.T) {
		if _, err := authenticator.Authenticate(ctx, "alice@example.com", "nope12"); !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("Authenticate error = %v, want ErrInvalidCredentials", err)
		}
	})

	t.Run("authenticate unknown email", func(t *testing.T) {
		if _, err := authenticator.Authenticate(ctx, "ghost@example.com", "secret123"); !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("Authenticate error = %v, want ErrInvalidCredentials", err)
		}
	})

	t.Run("deactivated account rejected", func(t *testing.T) {
		user, err := store.GetUserByEmail(ctx, "alice@example.com")
		if err != nil || user == nil {
			t.Fatalf("GetUserByEmail failed: %v", err)
		}
		user.IsActive = false
		if err := store.UpdateUser(ctx, user); err != nil {
			t.Fatalf("UpdateUser failed: %v", err)
		}
		if _, err := authenticator.Authenticate(ctx, "alice@example.com", "secret123"); !errors.Is(err, ErrAccountDeactivated) {
			t.Errorf("Authenticate error = %v, want ErrAccountDeactivated", err)
		}
	})
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("secret123")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if hash == "secret123" || hash == "" {
		t.Error("hash must differ from the plaintext")
	}

	other, err := HashPassword("secret123")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if hash == other {
		t.Error("bcrypt hashes should be salted")
	}
}

func TestJWTRoundTrip(t *testing.T) {
	manager := NewJWTManager("test-secret", time.Hour)
	user := &models.User{ID: "u1", Email: "alice@example.com"}

	token, err := manager.Generate(user)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	claims, err := manager.Validate(token)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if claims.UserID != "u1" || claims.Email != "alice@example.com" {
		t.Errorf("claims = %+v, want u1/alice@example.com", claims)
	}

	t.Run("garbage token rejected", func(t *testing.T) {
		if _, err := manager.Validate("not.a.token"); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Validate error = %v, want ErrInvalidToken", err)
		}
	})

	t.Run("wrong secret rejected", func(t *testing.T) {
		other := NewJWTManager("different-secret", time.Hour)
		if _, err := other.Validate(token); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Validate error = %v, want ErrInvalidToken", err)
		}
	})

	t.Run("expired token rejected", func(t *testing.T) {
		short := NewJWTManager("test-secret", -time.Minute)
		expired, err := short.Generate(user)
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		if _, err := short.Validate(expired); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Validate error = %v, want ErrInvalidToken", err)
		}
	})
}

func TestGenerateOTP(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		otp, err := GenerateOTP()
		if err != nil {
			t.Fatalf("GenerateOTP failed: %v", err)
		}
		if !ValidOTPFormat(otp) {
			t.Fatalf("GenerateOTP produced invalid code %q", otp)
		}
		seen[otp] = true
	}
	if len(seen) < 2 {
		t.Error("50 generated codes were all identical")
	}
}

func TestValidOTPFormat(t *testing.T) {
	tests := []struct {
		otp  string
		want bool
	}{
		{"123456", true},
		{"000000", true},
		{"12345", false},
		{"1234567", false},
		{"12345a", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := ValidOTPFormat(tt.otp); got != tt.want {
			t.Errorf("ValidOTPFormat(%q) = %v, want %v", tt.otp, got, tt.want)
		}
	}
}

func TestHashCode(t *testing.T) {
	a := HashCode("123456")
	if a == "123456" || len(a) != 64 {
		t.Errorf("HashCode should return a 64-char hex digest, got %q", a)
	}
	if a != HashCode("123456") {
		t.Error("HashCode must be deterministic")
	}
	if a == HashCode("654321") {
		t.Error("different codes should hash differently")
	}
}
