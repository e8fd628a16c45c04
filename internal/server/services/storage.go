package services

import (
	"context"

	"github.com/secureboxed/secureboxed/internal/common"
	"github.com/secureboxed/secureboxed/internal/cryptox"
	"github.com/secureboxed/secureboxed/internal/server/blobstore"
	"github.com/secureboxed/secureboxed/internal/server/keymap"
)

// UploadResult describes a stored object: its logical filename and the
// remote locator it was written to.
type UploadResult struct {
	Filename string
	URL      string
}

// StorageService is the storage gateway: it encrypts payloads, maps them
// into the remote store's flat namespace, and scopes every operation to the
// authenticated owner. The service holds no persistent state of its own;
// everything durable lives in the remote store.
type StorageService struct {
	store         blobstore.RemoteStore
	encryptionKey []byte
}

// NewStorageService constructs a StorageService around a remote store and
// the service encryption key. The key is immutable for the service's
// lifetime and shared by every encrypt and decrypt call.
func NewStorageService(store blobstore.RemoteStore, encryptionKey []byte) *StorageService {
	return &StorageService{store: store, encryptionKey: encryptionKey}
}

// Upload encrypts payload and writes it to the remote store under the key
// derived from (owner, filename). The whole payload is buffered in memory
// before encryption. A store failure surfaces as ErrorStorageUnavailable
// and leaves no durable side effect; re-uploading an existing filename
// overwrites the previous object (last writer wins).
func (s *StorageService) Upload(ctx context.Context, owner, filename string, payload []byte) (*UploadResult, error) {
	if filename == "" {
		return nil, common.ErrorValidation
	}

	ciphertext, nonce, err := cryptox.Encrypt(payload, s.encryptionKey)
	if err != nil {
		return nil, common.ErrorInternal
	}

	// at-rest format: nonce || ciphertext+tag
	blob := make([]byte, 0, len(nonce)+len(ciphertext))
	blob = append(blob, nonce...)
	blob = append(blob, ciphertext...)

	remoteKey := keymap.RemoteKey(owner, filename)
	url, err := s.store.Put(ctx, remoteKey, blob)
	if err != nil {
		return nil, common.ErrorStorageUnavailable
	}

	return &UploadResult{Filename: filename, URL: url}, nil
}

// Download resolves (owner, filename) against the store's flat listing,
// fetches the blob and decrypts it. Tag verification failure, a truncated
// blob or a wrong key epoch all surface as ErrorDecryptionFailure; no
// partial plaintext is returned.
func (s *StorageService) Download(ctx context.Context, owner, filename string) ([]byte, error) {
	remoteKey, err := s.lookup(ctx, owner, filename)
	if err != nil {
		return nil, err
	}

	blob, err := s.store.Get(ctx, remoteKey)
	if err != nil {
		return nil, common.ErrorStorageUnavailable
	}

	if len(blob) < cryptox.NonceSize {
		return nil, common.ErrorDecryptionFailure
	}

	plaintext, err := cryptox.Decrypt(blob[cryptox.NonceSize:], blob[:cryptox.NonceSize], s.encryptionKey)
	if err != nil {
		return nil, common.ErrorDecryptionFailure
	}

	return plaintext, nil
}

// Delete removes the object resolved from (owner, filename). Deleting an
// already-deleted file yields ErrorNotFound, which is a terminal state for
// the caller, not something to retry.
func (s *StorageService) Delete(ctx context.Context, owner, filename string) error {
	remoteKey, err := s.lookup(ctx, owner, filename)
	if err != nil {
		return err
	}

	if err := s.store.Delete(ctx, remoteKey); err != nil {
		return common.ErrorStorageUnavailable
	}

	return nil
}

// List returns the remote keys namespaced to owner, in listing order.
func (s *StorageService) List(ctx context.Context, owner string) ([]string, error) {
	keys, err := s.store.List(ctx)
	if err != nil {
		return nil, common.ErrorStorageUnavailable
	}

	return keymap.FilterOwned(keys, owner), nil
}

func (s *StorageService) lookup(ctx context.Context, owner, filename string) (string, error) {
	keys, err := s.store.List(ctx)
	if err != nil {
		return "", common.ErrorStorageUnavailable
	}

	remoteKey, ok := keymap.Find(keys, owner, filename)
	if !ok {
		return "", common.ErrorNotFound
	}

	return remoteKey, nil
}
