package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/secureboxed/secureboxed/internal/common"
	"github.com/secureboxed/secureboxed/internal/cryptox"
	"github.com/secureboxed/secureboxed/internal/dbx"
	"github.com/secureboxed/secureboxed/internal/logging"
	"github.com/secureboxed/secureboxed/internal/server/auth"
	"github.com/secureboxed/secureboxed/internal/server/config"
	"github.com/secureboxed/secureboxed/internal/server/models"
	"github.com/secureboxed/secureboxed/internal/server/repositories/repomanager"
	"github.com/secureboxed/secureboxed/internal/server/repositories/users"
	"github.com/secureboxed/secureboxed/internal/server/services"
)

// base58-encoded 32-byte public keys
const (
	alicePK    = "11111111111111111111111111111111"
	bobPK      = "11111111111111111111111111111112"
	testSecret = "test-secret"
)

// -------- test fakes --------

type fakeUsersRepo struct {
	users.Repository
	entries map[string]*models.User
	creates int
}

func (f *fakeUsersRepo) Create(ctx context.Context, publicKey string) error {
	f.creates++
	if _, ok := f.entries[publicKey]; !ok {
		f.entries[publicKey] = &models.User{ID: publicKey, PublicKey: publicKey}
	}
	return nil
}

func (f *fakeUsersRepo) FindByPublicKey(ctx context.Context, publicKey string) (*models.User, error) {
	u, ok := f.entries[publicKey]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return u, nil
}

type fakeManager struct {
	repomanager.RepositoryManager
	u *fakeUsersRepo
}

func (f *fakeManager) Users(db dbx.DBTX) users.Repository { return f.u }

type fakeStore struct {
	objects map[string][]byte
	order   []string
	err     error
}

func (f *fakeStore) Put(ctx context.Context, key string, data []byte) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if _, ok := f.objects[key]; !ok {
		f.order = append(f.order, key)
	}
	f.objects[key] = bytes.Clone(data)
	return "https://store.example/" + key, nil
}

func (f *fakeStore) Get(ctx context.Context, key string) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	data, ok := f.objects[key]
	if !ok {
		return nil, errors.New("no such key")
	}
	return bytes.Clone(data), nil
}

func (f *fakeStore) List(ctx context.Context) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return append([]string(nil), f.order...), nil
}

func (f *fakeStore) Delete(ctx context.Context, key string) error {
	if f.err != nil {
		return f.err
	}
	delete(f.objects, key)
	for i, k := range f.order {
		if k == key {
			f.order = append(f.order[:i], f.order[i+1:]...)
			break
		}
	}
	return nil
}

// -------- helpers --------

func newTestServer(t *testing.T) (*Server, *fakeStore) {
	t.Helper()

	cfg := &config.Config{
		SecretKey:                   testSecret,
		AccessTokenValidityDuration: 30 * time.Minute,
	}
	repo := &fakeUsersRepo{entries: map[string]*models.User{}}
	us := services.NewUserService(nil, &fakeManager{u: repo}, cfg)

	store := &fakeStore{objects: map[string][]byte{}}
	ss := services.NewStorageService(store, cryptox.NewKey())

	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(io.Discard, nil)))
	return NewServer(":0", logger, us, ss), store
}

func doRequest(t *testing.T, s *Server, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func doLogin(t *testing.T, s *Server, publicKey string) string {
	t.Helper()

	body, _ := json.Marshal(map[string]string{"public_key": publicKey})
	req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewReader(body))
	rec := doRequest(t, s, req)
	require.Equal(t, http.StatusOK, rec.Code, "login body: %s", rec.Body.String())

	var resp struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "bearer", resp.TokenType)
	require.NotEmpty(t, resp.AccessToken)
	return resp.AccessToken
}

func doUpload(t *testing.T, s *Server, token, filename string, payload []byte) *httptest.ResponseRecorder {
	t.Helper()

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(payload)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	return doRequest(t, s, req)
}

func errCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Error
}

// -------- tests --------

func TestScenario_UploadDownloadDelete(t *testing.T) {
	s, _ := newTestServer(t)

	token := doLogin(t, s, alicePK)

	rec := doUpload(t, s, token, "notes.txt", []byte("hello"))
	require.Equal(t, http.StatusOK, rec.Code, "upload body: %s", rec.Body.String())

	var up struct {
		Filename string `json:"filename"`
		URL      string `json:"url"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &up))
	assert.Equal(t, "notes.txt", up.Filename)
	assert.NotEmpty(t, up.URL)

	req := httptest.NewRequest(http.MethodGet, "/download/notes.txt", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = doRequest(t, s, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/octet-stream", rec.Header().Get("Content-Type"))
	assert.Equal(t, []byte("hello"), rec.Body.Bytes())

	req = httptest.NewRequest(http.MethodDelete, "/delete/notes.txt", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = doRequest(t, s, req)
	require.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/download/notes.txt", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = doRequest(t, s, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "file_not_found", errCode(t, rec))
}

func TestLogin_Idempotent(t *testing.T) {
	s, _ := newTestServer(t)

	tok1 := doLogin(t, s, alicePK)
	tok2 := doLogin(t, s, alicePK)
	assert.NotEmpty(t, tok1)
	assert.NotEmpty(t, tok2)
}

func TestLogin_MalformedIdentity(t *testing.T) {
	s, _ := newTestServer(t)

	body, _ := json.Marshal(map[string]string{"public_key": "not-a-key-0OIl"})
	req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewReader(body))
	rec := doRequest(t, s, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "validation_error", errCode(t, rec))
}

func TestLogin_BadBody(t *testing.T) {
	s, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewReader([]byte("{not json")))
	rec := doRequest(t, s, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProtectedRoutes_RequireToken(t *testing.T) {
	s, _ := newTestServer(t)

	requests := []*http.Request{
		httptest.NewRequest(http.MethodPost, "/upload", nil),
		httptest.NewRequest(http.MethodGet, "/download/x", nil),
		httptest.NewRequest(http.MethodDelete, "/delete/x", nil),
		httptest.NewRequest(http.MethodGet, "/list_files", nil),
	}

	for _, req := range requests {
		rec := doRequest(t, s, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s", req.Method, req.URL.Path)
		assert.Equal(t, "unauthorized", errCode(t, rec))
	}
}

func TestDownload_ExpiredToken(t *testing.T) {
	s, _ := newTestServer(t)

	// upload with a valid token first, so the file exists
	valid := doLogin(t, s, alicePK)
	rec := doUpload(t, s, valid, "notes.txt", []byte("hello"))
	require.Equal(t, http.StatusOK, rec.Code)

	expired, err := auth.GenerateToken(alicePK, []byte(testSecret), -time.Second)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/download/notes.txt", nil)
	req.Header.Set("Authorization", "Bearer "+expired)
	rec = doRequest(t, s, req)

	// Unauthorized, not NotFound, even though the file exists.
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "unauthorized", errCode(t, rec))
}

func TestAuthenticated_UnknownIdentity(t *testing.T) {
	s, _ := newTestServer(t)

	// valid signature, but the directory has never seen this identity
	tok, err := auth.GenerateToken(bobPK, []byte(testSecret), time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/list_files", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := doRequest(t, s, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "user_not_found", errCode(t, rec))
}

func TestUpload_MissingFilePart(t *testing.T) {
	s, _ := newTestServer(t)
	token := doLogin(t, s, alicePK)

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	require.NoError(t, mw.WriteField("note", "no file here"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	rec := doRequest(t, s, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "validation_error", errCode(t, rec))
}

func TestUpload_StorageUnavailable(t *testing.T) {
	s, store := newTestServer(t)
	token := doLogin(t, s, alicePK)

	store.err = errors.New("store down")
	rec := doUpload(t, s, token, "notes.txt", []byte("hello"))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "storage_unavailable", errCode(t, rec))
}

func TestIsolation_AcrossIdentities(t *testing.T) {
	s, _ := newTestServer(t)

	aliceTok := doLogin(t, s, alicePK)
	bobTok := doLogin(t, s, bobPK)

	rec := doUpload(t, s, aliceTok, "notes.txt", []byte("alice data"))
	require.Equal(t, http.StatusOK, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/download/notes.txt", nil)
	req.Header.Set("Authorization", "Bearer "+bobTok)
	rec = doRequest(t, s, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/list_files", nil)
	req.Header.Set("Authorization", "Bearer "+bobTok)
	rec = doRequest(t, s, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Files []string `json:"files"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Empty(t, resp.Files)
}

func TestList_EmptyIsJSONArray(t *testing.T) {
	s, _ := newTestServer(t)
	token := doLogin(t, s, alicePK)

	req := httptest.NewRequest(http.MethodGet, "/list_files", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := doRequest(t, s, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"files":[]}`, rec.Body.String())
}
