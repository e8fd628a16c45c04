package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/secureboxed/secureboxed/internal/common"
	"github.com/secureboxed/secureboxed/internal/dbx"
	"github.com/secureboxed/secureboxed/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new identity. The insert is an atomic upsert: concurrent
// first logins for the same identity race harmlessly, leaving exactly one row.
func (r *PostgresRepository) Create(ctx context.Context, publicKey string) error {

	query :=
		`INSERT INTO users (public_key)
		 VALUES ($1)
		 ON CONFLICT (public_key) DO NOTHING
		 `

	if _, err := r.db.ExecContext(ctx, query, publicKey); err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *PostgresRepository) FindByPublicKey(ctx context.Context, publicKey string) (*models.User, error) {
	query :=
		`SELECT id, public_key, created_at FROM users
		 WHERE public_key = $1
		 `

	user := &models.User{}
	err := r.db.QueryRowContext(ctx, query, publicKey).Scan(&user.ID, &user.PublicKey, &user.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}
