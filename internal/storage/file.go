package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
)

// FileStore keeps one file per key under a data directory. A single flock
// file guards the whole directory so concurrent processes cannot interleave
// a read-modify-write cycle with a writer.
type FileStore struct {
	directory string
	lock      *flock.Flock
}

func NewFileStore(directory string) (*FileStore, error) {
	if err := os.MkdirAll(directory, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	return &FileStore{
		directory: directory,
		lock:      flock.New(filepath.Join(directory, "store.lock")),
	}, nil
}

func (store *FileStore) Get(ctx context.Context, key string) (string, error) {
	if err := store.lock.RLock(); err != nil {
		return "", fmt.Errorf("locking store: %w", err)
	}
	defer store.lock.Unlock()

	data, err := os.ReadFile(store.pathFor(key))
	if os.IsNotExist(err) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("reading key %s: %w", key, err)
	}
	return string(data), nil
}

func (store *FileStore) Set(ctx context.Context, key string, value string) error {
	if err := store.lock.Lock(); err != nil {
		return fmt.Errorf("locking store: %w", err)
	}
	defer store.lock.Unlock()

	path := store.pathFor(key)
	temporary := path + ".tmp"
	if err := os.WriteFile(temporary, []byte(value), 0o644); err != nil {
		return fmt.Errorf("writing key %s: %w", key, err)
	}
	if err := os.Rename(temporary, path); err != nil {
		return fmt.Errorf("replacing key %s: %w", key, err)
	}
	return nil
}

func (store *FileStore) ClearAll(ctx context.Context) error {
	if err := store.lock.Lock(); err != nil {
		return fmt.Errorf("locking store: %w", err)
	}
	defer store.lock.Unlock()

	entries, err := os.ReadDir(store.directory)
	if err != nil {
		return fmt.Errorf("reading data directory: %w", err)
	}
	for _, entry := range entries {
		if !strings.HasSuffix(entry.Name(), ".doc") {
			continue
		}
		if err := os.Remove(filepath.Join(store.directory, entry.Name())); err != nil {
			return fmt.Errorf("removing %s: %w", entry.Name(), err)
		}
	}
	return nil
}

func (store *FileStore) pathFor(key string) string {
	return filepath.Join(store.directory, key+".doc")
}
