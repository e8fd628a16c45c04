package users

import (
	"context"

	"github.com/secureboxed/secureboxed/internal/server/models"
)

// Repository is the identity directory: known public-key identities,
// created on first login, never updated or deleted.
type Repository interface {
	Create(ctx context.Context, publicKey string) error
	FindByPublicKey(ctx context.Context, publicKey string) (*models.User, error)
}
