package httpapi

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/secureboxed/secureboxed/internal/common"
)

// maxUploadMemory bounds how much of a multipart body is held in memory
// before spilling to disk; the payload itself is still fully buffered
// before encryption.
const maxUploadMemory = 32 << 20

type loginRequest struct {
	PublicKey string `json:"public_key"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type uploadResponse struct {
	Filename string `json:"filename"`
	URL      string `json:"url"`
}

type deleteResponse struct {
	Message string `json:"message"`
}

type listResponse struct {
	Files []string `json:"files"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, common.ErrorValidation)
		return
	}

	token, err := s.users.Login(r.Context(), req.PublicKey)
	if err != nil {
		s.logger.Error(r.Context(), "login failed", "error", err)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{AccessToken: token, TokenType: "bearer"})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFromContext(r.Context())
	if !ok {
		writeError(w, common.ErrorUnauthorized)
		return
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		writeError(w, common.ErrorValidation)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, common.ErrorValidation)
		return
	}
	defer file.Close()

	payload, err := io.ReadAll(file)
	if err != nil {
		writeError(w, common.ErrorValidation)
		return
	}

	result, err := s.storage.Upload(r.Context(), identity, header.Filename, payload)
	if err != nil {
		s.logger.Error(r.Context(), "upload failed", "filename", header.Filename, "error", err)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, uploadResponse{Filename: result.Filename, URL: result.URL})
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFromContext(r.Context())
	if !ok {
		writeError(w, common.ErrorUnauthorized)
		return
	}

	filename := chi.URLParam(r, "filename")

	payload, err := s.storage.Download(r.Context(), identity, filename)
	if err != nil {
		s.logger.Error(r.Context(), "download failed", "filename", filename, "error", err)
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(payload)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFromContext(r.Context())
	if !ok {
		writeError(w, common.ErrorUnauthorized)
		return
	}

	filename := chi.URLParam(r, "filename")

	if err := s.storage.Delete(r.Context(), identity, filename); err != nil {
		s.logger.Error(r.Context(), "delete failed", "filename", filename, "error", err)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, deleteResponse{Message: fmt.Sprintf("File %s deleted successfully", filename)})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFromContext(r.Context())
	if !ok {
		writeError(w, common.ErrorUnauthorized)
		return
	}

	files, err := s.storage.List(r.Context(), identity)
	if err != nil {
		s.logger.Error(r.Context(), "list failed", "error", err)
		writeError(w, err)
		return
	}

	if files == nil {
		files = []string{}
	}
	writeJSON(w, http.StatusOK, listResponse{Files: files})
}
