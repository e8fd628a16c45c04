// Package httpapi exposes the gateway's HTTP surface: login plus the four
// authenticated file operations, routed with chi.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/secureboxed/secureboxed/internal/logging"
	"github.com/secureboxed/secureboxed/internal/server/services"
)

type Server struct {
	address string
	logger  logging.Logger
	users   *services.UserService
	storage *services.StorageService
}

func NewServer(address string, l logging.Logger, us *services.UserService, ss *services.StorageService) *Server {
	return &Server{
		address: address,
		logger:  l.With("module", "http_server"),
		users:   us,
		storage: ss,
	}
}

// Router builds the HTTP routing tree. Login is the only unauthenticated
// route; everything else sits behind the bearer-token middleware.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(s.requestID)
	r.Use(s.requestLogger)

	r.Post("/login", s.handleLogin)

	r.Group(func(r chi.Router) {
		r.Use(s.bearerAuth)

		r.Post("/upload", s.handleUpload)
		r.Get("/download/{filename}", s.handleDownload)
		r.Delete("/delete/{filename}", s.handleDelete)
		r.Get("/list_files", s.handleList)
	})

	return r
}

// Run starts the HTTP server and shuts it down gracefully when ctx is
// cancelled.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.address,
		Handler: s.Router(),
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "shutdown error", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
