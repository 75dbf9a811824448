package cartstore

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/webcraft-id/kantinku-backend/internal/cart"
	pkgerrors "github.com/webcraft-id/kantinku-backend/pkg/errors"
)

// FileFactory keeps each user's records as JSON files under
// <dir>/<userID>/<record>.json. Meant for local development without Redis.
type FileFactory struct {
	Dir string
}

// ForUser implements cart.StoreFactory.
func (f FileFactory) ForUser(userID string) cart.Store {
	return &fileStore{dir: filepath.Join(f.Dir, userID)}
}

type fileStore struct {
	dir string
}

func (s *fileStore) Load(_ context.Context, key string) (string, bool, error) {
	raw, err := os.ReadFile(s.path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", false, nil
		}
		return "", false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read cart record file")
	}
	return string(raw), true, nil
}

func (s *fileStore) Save(_ context.Context, key, value string) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create cart record dir")
	}
	if err := os.WriteFile(s.path(key), []byte(value), 0o600); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "write cart record file")
	}
	return nil
}

func (s *fileStore) Remove(_ context.Context, key string) error {
	if err := os.Remove(s.path(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete cart record file")
	}
	return nil
}

func (s *fileStore) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}
