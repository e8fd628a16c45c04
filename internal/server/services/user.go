// Package services contains server-side business logic. This file implements
// UserService: login (create-on-first-sight) and bearer-token authentication
// against the identity directory.
package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/secureboxed/secureboxed/internal/common"
	"github.com/secureboxed/secureboxed/internal/server/auth"
	"github.com/secureboxed/secureboxed/internal/server/config"
	"github.com/secureboxed/secureboxed/internal/server/ledger"
	"github.com/secureboxed/secureboxed/internal/server/repositories/repomanager"
)

// UserService provides authentication-related operations:
// - Login: register an identity on first sight and mint a bearer token
// - Authenticate: verify a bearer token and resolve its subject
type UserService struct {
	db                          *sql.DB
	repomanager                 repomanager.RepositoryManager
	jwtSecret                   []byte
	accessTokenValidityDuration time.Duration
}

// NewUserService constructs a UserService using repositories and server config.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *UserService {
	return &UserService{
		db:                          db,
		repomanager:                 m,
		jwtSecret:                   []byte(cfg.SecretKey),
		accessTokenValidityDuration: cfg.AccessTokenValidityDuration,
	}
}

// Login accepts a claimed public-key identity, creates a directory entry if
// the identity is new, and returns a signed bearer token for it. The claim
// is not proven against the ledger (no challenge-response); only its shape
// is validated. Login is idempotent: a repeated login never creates a
// second directory entry.
func (s *UserService) Login(ctx context.Context, publicKey string) (string, error) {
	if _, err := ledger.ParsePublicKey(publicKey); err != nil {
		return "", common.ErrorValidation
	}

	repo := s.repomanager.Users(s.db)

	_, err := repo.FindByPublicKey(ctx, publicKey)
	if err != nil {
		if !errors.Is(err, common.ErrorNotFound) {
			return "", common.ErrorInternal
		}
		if err := repo.Create(ctx, publicKey); err != nil {
			return "", common.ErrorInternal
		}
	}

	token, err := auth.GenerateToken(publicKey, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return "", common.ErrorInternal
	}

	return token, nil
}

// Authenticate verifies a bearer token and looks its subject up in the
// identity directory. Invalid, malformed and expired tokens all yield
// ErrorUnauthorized; a valid token whose subject the directory does not
// know yields ErrorUserNotFound.
func (s *UserService) Authenticate(ctx context.Context, tokenString string) (string, error) {
	identity, err := auth.GetIdentityFromToken(tokenString, s.jwtSecret)
	if err != nil {
		return "", common.ErrorUnauthorized
	}

	repo := s.repomanager.Users(s.db)
	user, err := repo.FindByPublicKey(ctx, identity)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", common.ErrorUserNotFound
		}
		return "", common.ErrorInternal
	}

	return user.PublicKey, nil
}
