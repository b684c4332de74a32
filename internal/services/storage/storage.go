package storage

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"filippo.io/age"
)

const (
	// ageHeader is the prefix of age-encrypted files
	ageHeader = "age-encryption.org"

	// markerFile indicates encryption is enabled for a data directory
	markerFile = ".encrypted"

	// verifyFile is used to validate the passphrase
	verifyFile = ".encryption-verify"

	// verifyMagic is the expected plaintext of the verify file
	verifyMagic = `{"magic":"radius-encryption-verify","version":1}`
)

// Storage provides transparent encrypted/unencrypted access to the files
// under a data directory. When the directory carries the encryption marker
// and a passphrase has been supplied, reads decrypt and writes encrypt;
// otherwise both pass through to plain file IO.
type Storage struct {
	baseDir   string
	encrypted bool
	identity  *age.ScryptIdentity
	recipient *age.ScryptRecipient
	mu        sync.RWMutex
}

// New creates a Storage rooted at baseDir. Encryption state is detected
// from the marker file; the store starts locked.
func New(baseDir string) *Storage {
	s := &Storage{baseDir: baseDir}

	if _, err := os.Stat(filepath.Join(baseDir, markerFile)); err == nil {
		s.encrypted = true
	}

	return s
}

// BaseDir returns the data directory this store is rooted at.
func (s *Storage) BaseDir() string {
	return s.baseDir
}

// IsEncrypted reports whether the data directory is encrypted at rest.
func (s *Storage) IsEncrypted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.encrypted
}

// IsUnlocked reports whether reads can currently succeed: either the
// directory is unencrypted, or a passphrase has been verified.
func (s *Storage) IsUnlocked() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !s.encrypted || s.identity != nil
}

// Unlock verifies the passphrase against the verification file and keeps
// the derived identity in memory for subsequent reads and writes.
func (s *Storage) Unlock(passphrase string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.encrypted {
		return nil
	}

	identity, err := age.NewScryptIdentity(passphrase)
	if err != nil {
		return fmt.Errorf("failed to create identity: %w", err)
	}

	encrypted, err := os.ReadFile(filepath.Join(s.baseDir, verifyFile))
	if err != nil {
		return fmt.Errorf("failed to read verification file: %w", err)
	}

	decrypted, err := decryptData(encrypted, identity)
	if err != nil {
		return fmt.Errorf("incorrect passphrase")
	}
	if string(decrypted) != verifyMagic {
		return fmt.Errorf("incorrect passphrase (verification failed)")
	}

	s.identity = identity
	s.recipient, _ = age.NewScryptRecipient(passphrase)

	return nil
}

// Lock clears the passphrase-derived keys from memory.
func (s *Storage) Lock() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.identity = nil
	s.recipient = nil
}

// ReadFile reads a file, decrypting it when it carries the age header.
func (s *Storage) ReadFile(path string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if isAgeEncrypted(data) {
		if s.identity == nil {
			return nil, fmt.Errorf("file is encrypted but storage is locked")
		}
		return decryptData(data, s.identity)
	}

	return data, nil
}

// WriteFile writes a file, encrypting it when encryption is enabled and
// unlocked. Files the encryption must never touch (markers, the SQLite
// database and its sidecars) are always written as-is.
func (s *Storage) WriteFile(path string, data []byte, perm os.FileMode) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.shouldSkipEncryption(path) {
		return s.atomicWrite(path, data, perm)
	}

	if s.encrypted && s.recipient != nil {
		encrypted, err := encryptData(data, s.recipient)
		if err != nil {
			return fmt.Errorf("failed to encrypt: %w", err)
		}
		data = encrypted
	}

	return s.atomicWrite(path, data, perm)
}

// OpenFile returns a reader over a potentially encrypted file.
func (s *Storage) OpenFile(path string) (io.ReadCloser, error) {
	data, err := s.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// atomicWrite writes via a temp file and rename so readers never observe
// a partial file.
func (s *Storage) atomicWrite(path string, data []byte, perm os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, perm); err != nil {
		return err
	}

	return os.Rename(tmpPath, path)
}

// shouldSkipEncryption reports files that must stay plaintext: the marker
// and verification files, and the SQLite database with its WAL sidecars,
// which the sql driver opens directly.
func (s *Storage) shouldSkipEncryption(path string) bool {
	base := filepath.Base(path)

	if base == markerFile || base == verifyFile {
		return true
	}

	lower := strings.ToLower(base)
	for _, suffix := range []string{".db", ".db-wal", ".db-shm", ".sqlite"} {
		if strings.HasSuffix(lower, suffix) {
			return true
		}
	}

	return false
}

// isAgeEncrypted checks whether data starts with the age header.
func isAgeEncrypted(data []byte) bool {
	return len(data) > len(ageHeader) && string(data[:len(ageHeader)]) == ageHeader
}

// encryptData encrypts data for the given scrypt recipient.
func encryptData(data []byte, recipient *age.ScryptRecipient) ([]byte, error) {
	var buf bytes.Buffer

	w, err := age.Encrypt(&buf, recipient)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// decryptData decrypts age-encrypted data with the given identity.
func decryptData(data []byte, identity *age.ScryptIdentity) ([]byte, error) {
	r, err := age.Decrypt(bytes.NewReader(data), identity)
	if err != nil {
		return nil, err
	}
	return io.ReadAll(r)
}
