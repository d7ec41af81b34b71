package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/splitbook/backend/internal/auth"
	"github.com/splitbook/backend/internal/middleware"
	"github.com/splitbook/backend/internal/models"
	"github.com/splitbook/backend/internal/storage"
)

// searchLimit bounds user search results.
const searchLimit = 10

// UserService handles accounts: registration, login, profile and search.
// Registration triggers pending-identity reconciliation.
type UserService struct {
	storage       storage.Store
	authenticator auth.Authenticator
	jwtManager    *auth.JWTManager
	reconciler    *Reconciler
}

// NewUserService creates a user service.
func NewUserService(store storage.Store, authenticator auth.Authenticator, jwtManager *auth.JWTManager, reconciler *Reconciler) *UserService {
	return &UserService{
		storage:       store,
		authenticator: authenticator,
		jwtManager:    jwtManager,
		reconciler:    reconciler,
	}
}

// Session is the result of a successful registration or login.
type Session struct {
	User  *models.User
	Token string
	// ConvertedGroups is how many groups were reconciled from a pending
	// identity at registration. Zero for logins.
	ConvertedGroups int
}

// Register creates an account, reconciles any pending identity with the same
// email, and returns a session token.
func (s *UserService) Register(ctx context.Context, email, name, password string) (*Session, error) {
	if strings.TrimSpace(email) == "" || strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: email and name", ErrMissingFields)
	}

	user, err := s.authenticator.Register(ctx, email, strings.TrimSpace(name), password)
	if err != nil {
		return nil, err
	}

	// Reconciliation failures must not fail the registration itself.
	converted, err := s.reconciler.OnRegistered(ctx, user)
	if err != nil {
		slog.Error("Reconciliation failed after registration", "user_id", user.ID, "error", err)
	}

	token, err := s.jwtManager.Generate(user)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	slog.Info("User registered", "user_id", user.ID, "converted_groups", converted)
	return &Session{User: user, Token: token, ConvertedGroups: converted}, nil
}

// Login authenticates email and password and returns a session token.
func (s *UserService) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.authenticator.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}
	token, err := s.jwtManager.Generate(user)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}
	return &Session{User: user, Token: token}, nil
}

// Me returns the authenticated user's profile.
func (s *UserService) Me(ctx context.Context) (*models.User, error) {
	actorID := middleware.GetUserID(ctx)
	if actorID == "" {
		return nil, ErrUnauthenticated
	}
	return s.storage.GetUserByID(ctx, actorID)
}

// UpdateProfileInput carries optional profile updates; nil fields are kept.
type UpdateProfileInput struct {
	Name     *string
	Avatar   *string
	Password *string
}

// UpdateProfile modifies the authenticated user's profile. A new password is
// validated and re-hashed.
func (s *UserService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.User, error) {
	actorID := middleware.GetUserID(ctx)
	if actorID == "" {
		return nil, ErrUnauthenticated
	}

	user, err := s.storage.GetUserByID(ctx, actorID)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return nil, fmt.Errorf("%w: name", ErrMissingFields)
		}
		user.Name = strings.TrimSpace(*in.Name)
	}
	if in.Avatar != nil {
		user.Avatar = *in.Avatar
	}
	if in.Password != nil {
		if err := s.authenticator.ValidateCredential(*in.Password); err != nil {
			return nil, err
		}
		hash, err := auth.HashPassword(*in.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}

	if err := s.storage.UpdateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}

// SearchUsers finds registered users by email substring, excluding the
// caller. Used when adding group members.
func (s *UserService) SearchUsers(ctx context.Context, query string) ([]*models.User, error) {
	actorID := middleware.GetUserID(ctx)
	if actorID == "" {
		return nil, ErrUnauthenticated
	}
	query = strings.TrimSpace(strings.ToLower(query))
	if query == "" {
		return nil, fmt.Errorf("%w: query", ErrMissingFields)
	}
	return s.storage.SearchUsersByEmail(ctx, query, actorID, searchLimit)
}
