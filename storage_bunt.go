package numgen

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tidwall/buntdb"
)

// BuntStorage persists records in an embedded buntdb file, the local durable store used by
// default. The special path ":memory:" keeps everything in memory.
type BuntStorage struct {
	db   *buntdb.DB
	path string
}

// NewBuntStorage opens (or creates) the database at path
func NewBuntStorage(path string) (*BuntStorage, error) {
	if path == "" {
		return nil, ErrInvalidParameters.WithDetails("empty storage path")
	}

	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create storage directory for %s: %w", path, err)
		}
	}

	db, err := buntdb.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open buntdb at %s: %w", path, err)
	}

	return &BuntStorage{db: db, path: path}, nil
}

// Get reads the record under key in a read-only transaction
func (b *BuntStorage) Get(_ context.Context, key string) ([]byte, error) {
	var val string
	err := b.db.View(func(tx *buntdb.Tx) error {
		var err error
		val, err = tx.Get(key)
		return err
	})
	if errors.Is(err, buntdb.ErrNotFound) {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, ErrRecordLoadFailure.WithDetails(b.path).WithCause(err)
	}

	return []byte(val), nil
}

// Set writes the record under key without expiry
func (b *BuntStorage) Set(_ context.Context, key string, data []byte) error {
	if key == "" {
		return ErrInvalidParameters.WithDetails("empty key")
	}

	err := b.db.Update(func(tx *buntdb.Tx) error {
		_, _, err := tx.Set(key, string(data), nil)
		return err
	})
	if err != nil {
		return ErrRecordSaveFailure.WithDetails(b.path).WithCause(err)
	}
	return nil
}

// Delete removes the record; a missing key is ignored
func (b *BuntStorage) Delete(_ context.Context, key string) error {
	err := b.db.Update(func(tx *buntdb.Tx) error {
		_, err := tx.Delete(key)
		return err
	})
	if err != nil && !errors.Is(err, buntdb.ErrNotFound) {
		return ErrRecordSaveFailure.WithDetails(b.path).WithCause(err)
	}
	return nil
}

// Close flushes and closes the database file
func (b *BuntStorage) Close() error { return b.db.Close() }
