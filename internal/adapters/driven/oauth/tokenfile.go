package oauth

import (
	"context"
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/docrelay/internal/core/domain"
	"github.com/custodia-labs/docrelay/internal/core/ports/driven"
	"github.com/custodia-labs/docrelay/internal/logger"
)

// Ensure TokenFile implements the interface.
var _ driven.CredentialStore = (*TokenFile)(nil)

// TokenFile stores the credential as JSON on disk. The format is the
// authorized-user token file written by Google's client libraries, so
// existing token.json files can be reused.
type TokenFile struct {
	mu   sync.Mutex
	path string
	seed string
}

// NewTokenFile creates a store at path. seed, if non-empty, is a
// credential JSON document used while no file exists at path (for
// deployments that inject the token through the environment).
func NewTokenFile(path, seed string) *TokenFile {
	return &TokenFile{path: path, seed: seed}
}

// Path returns the file location.
func (f *TokenFile) Path() string {
	return f.path
}

// Load reads the credential. It returns domain.ErrNoCredential when
// neither the file nor a seed exists.
func (f *TokenFile) Load(_ context.Context) (*domain.Credential, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		if f.seed == "" {
			return nil, domain.ErrNoCredential
		}
		logger.Debug("Token file %s not found, using seed credential", f.path)
		data = []byte(f.seed)
	} else if err != nil {
		return nil, errors.Wrapf(err, "reading token file %s", f.path)
	}

	var cred domain.Credential
	if err := json.Unmarshal(data, &cred); err != nil {
		return nil, errors.Wrapf(err, "parsing token file %s", f.path)
	}
	if cred.AccessToken == "" && cred.RefreshToken == "" {
		return nil, errors.Wrapf(domain.ErrNoCredential, "token file %s holds no token", f.path)
	}
	return &cred, nil
}

// Save writes cred atomically with owner-only permissions.
func (f *TokenFile) Save(_ context.Context, cred *domain.Credential) error {
	if cred == nil {
		return errors.New("nil credential")
	}

	data, err := json.MarshalIndent(cred, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encoding credential")
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return errors.Wrapf(err, "creating %s", dir)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return errors.Wrap(err, "creating temporary token file")
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		return errors.Wrap(err, "setting token file permissions")
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrap(err, "writing token file")
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return errors.Wrap(err, "syncing token file")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "closing token file")
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		return errors.Wrapf(err, "replacing %s", f.path)
	}
	return nil
}

// Watch calls onChange whenever the token file is written, replaced or
// removed, until ctx is done. The parent directory is watched because
// Save replaces the file by rename.
func (f *TokenFile) Watch(ctx context.Context, onChange func()) error {
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return errors.Wrapf(err, "creating %s", dir)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "creating file watcher")
	}
	if err := w.Add(dir); err != nil {
		w.Close()
		return errors.Wrapf(err, "watching %s", dir)
	}

	target := filepath.Clean(f.path)
	go func() {
		defer w.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != target {
					continue
				}
				if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) || ev.Has(fsnotify.Remove) {
					logger.Debugw("token file changed", logger.FieldPath, ev.Name, "op", ev.Op.String())
					onChange()
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				logger.Warnw("token file watch error", logger.FieldError, err)
			}
		}
	}()
	return nil
}
