package auth

import (
	"context"

	"github.com/splitbook/backend/internal/models"
)

// Authenticator abstracts the credential mechanism so the service layer does
// not care whether accounts are password-backed or something else.
type Authenticator interface {
	// Register creates a new account for the email with the given credential.
	Register(ctx context.Context, email, name, credential string) (*models.User, error)

	// Authenticate verifies credentials and returns the matching user.
	Authenticate(ctx context.Context, email, credential string) (*models.User, error)

	// ValidateCredential checks whether a credential meets requirements.
	ValidateCredential(credential string) error
}
