package repomanager

import (
	"context"
	"database/sql"

	"github.com/secureboxed/secureboxed/internal/dbx"
	"github.com/secureboxed/secureboxed/internal/server/repositories/users"
)

// RepositoryManager vends repository implementations bound to a database
// handle and exposes a schema migration hook.
type RepositoryManager interface {
	Users(db dbx.DBTX) users.Repository
	RunMigrations(ctx context.Context, db *sql.DB) error
}
