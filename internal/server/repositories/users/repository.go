// Package users is the credential store: persistent user records keyed by
// id, with unique email and username.
package users

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/storefront/internal/common"
	"github.com/dmitrijs2005/storefront/internal/server/models"
)

// Both wrap common.ErrorAlreadyExists.
var (
	ErrEmailTaken    = fmt.Errorf("email %w", common.ErrorAlreadyExists)
	ErrUsernameTaken = fmt.Errorf("username %w", common.ErrorAlreadyExists)
)

type Repository interface {
	// Create inserts user and fills its ID and timestamps.
	Create(ctx context.Context, user *models.User) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	// Update stores username, role and password hash of the user with user.ID.
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id string) error
}
