package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/splitbook/backend/internal/models"
)

type fakeUserStorage struct {
	byEmail map[string]*models.User
}

func newFakeUserStorage() *fakeUserStorage {
	return &fakeUserStorage{byEmail: make(map[string]*models.User)}
}

func (f *fakeUserStorage) CreateUser(_ context.Context, user *models.User) error {
	f.byEmail[user.Email] = user
	return nil
}

func (f *fakeUserStorage) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	return f.byEmail[email], nil
}

func (f *fakeUserStorage) GetUserByID(_ context.Context, id string) (*models.User, error) {
	for _, u := range f.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, nil
}

func TestNormalizeEmail(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Alice@Example.COM", "alice@example.com"},
		{"  bob@example.com  ", "bob@example.com"},
		{"carol@example.com", "carol@example.com"},
	}
	for _, tt := range tests {
		if got := NormalizeEmail(tt.in); got != tt.want {
			t.Errorf("NormalizeEmail(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRegister(t *testing.T) {
	ctx := context.Background()
	a := NewPasswordAuthenticator(newFakeUserStorage())

	user, err := a.Register(ctx, "Alice@Example.com", "Alice", "secret1")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if user.Email != "alice@example.com" {
		t.Errorf("email = %q, want normalized lowercase", user.Email)
	}
	if user.PasswordHash == "" || user.PasswordHash == "secret1" {
		t.Errorf("password was not hashed")
	}

	t.Run("duplicate email", func(t *testing.T) {
		_, err := a.Register(ctx, "ALICE@example.com", "Alice Again", "secret2")
		if !errors.Is(err, ErrEmailExists) {
			t.Errorf("Register() error = %v, want ErrEmailExists", err)
		}
	})

	t.Run("weak password", func(t *testing.T) {
		_, err := a.Register(ctx, "bob@example.com", "Bob", "short")
		if !errors.Is(err, ErrWeakPassword) {
			t.Errorf("Register() error = %v, want ErrWeakPassword", err)
		}
	})
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	a := NewPasswordAuthenticator(newFakeUserStorage())
	if _, err := a.Register(ctx, "alice@example.com", "Alice", "secret1"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	t.Run("valid credentials", func(t *testing.T) {
		user, err := a.Authenticate(ctx, "Alice@Example.com", "secret1")
		if err != nil {
			t.Fatalf("Authenticate() error = %v", err)
		}
		if user.Email != "alice@example.com" {
			t.Errorf("unexpected user: %+v", user)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		if _, err := a.Authenticate(ctx, "alice@example.com", "wrong1"); !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("Authenticate() error = %v, want ErrInvalidCredentials", err)
		}
	})

	t.Run("unknown email", func(t *testing.T) {
		if _, err := a.Authenticate(ctx, "nobody@example.com", "secret1"); !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("Authenticate() error = %v, want ErrInvalidCredentials", err)
		}
	})
}

func TestJWT(t *testing.T) {
	user := &models.User{ID: "u1", Email: "alice@example.com"}

	t.Run("round trip", func(t *testing.T) {
		m := NewJWTManager("test-secret", time.Hour)
		token, err := m.Generate(user)
		if err != nil {
			t.Fatalf("Generate() error = %v", err)
		}
		claims, err := m.Validate(token)
		if err != nil {
			t.Fatalf("Validate() error = %v", err)
		}
		if claims.UserID != "u1" || claims.Email != "alice@example.com" {
			t.Errorf("unexpected claims: %+v", claims)
		}
	})

	t.Run("wrong secret", func(t *testing.T) {
		m := NewJWTManager("test-secret", time.Hour)
		token, err := m.Generate(user)
		if err != nil {
			t.Fatalf("Generate() error = %v", err)
		}
		other := NewJWTManager("other-secret", time.Hour)
		if _, err := other.Validate(token); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Validate() error = %v, want ErrInvalidToken", err)
		}
	})

	t.Run("expired token", func(t *testing.T) {
		m := NewJWTManager("test-secret", -time.Minute)
		token, err := m.Generate(user)
		if err != nil {
			t.Fatalf("Generate() error = %v", err)
		}
		if _, err := m.Validate(token); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Validate() error = %v, want ErrInvalidToken", err)
		}
	})

	t.Run("garbage token", func(t *testing.T) {
		m := NewJWTManager("test-secret", time.Hour)
		if _, err := m.Validate("not.a.token"); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Validate() error = %v, want ErrInvalidToken", err)
		}
	})
}
