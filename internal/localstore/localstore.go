// Package localstore is the durable client-side key-value store that
// survives restarts: the profile snapshot, the managed-auth token and the
// theme preference.
package localstore

import (
	"errors"
	"fmt"
	"os"

	"github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"

	"github.com/and161185/boolog/internal/errs"
)

// Well-known keys.
const (
	KeyProfile   = "boolog_user"
	KeyAuthToken = "boolog_auth_token"
	KeyTheme     = "boolog_theme"
)

// Store is a string-keyed byte store.
type Store interface {
	// Get returns errs.ErrNotFound when key is absent.
	Get(key string) ([]byte, error)
	Put(key string, val []byte) error
	Delete(key string) error
}

// Badger implements Store on a badger database.
type Badger struct{ db *badger.DB }

// Open opens (creating if needed) a persistent store in dir.
func Open(dir string, log *zap.Logger) (*Badger, error) {
	if dir == "" {
		return nil, errors.New("localstore: dir is required")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create state dir %s: %w", dir, err)
	}
	opts := badger.DefaultOptions(dir).
		WithSyncWrites(true).
		WithNumVersionsToKeep(1).
		WithLogger(badgerLogger(log))
	return open(opts)
}

// OpenInMemory opens a store that lives only as long as the process.
func OpenInMemory() (*Badger, error) {
	return open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
}

func open(opts badger.Options) (*Badger, error) {
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return &Badger{db: db}, nil
}

// Close closes the underlying database.
func (b *Badger) Close() error { return b.db.Close() }

// Get reads key.
func (b *Badger) Get(key string) ([]byte, error) {
	var out []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		out, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, errs.ErrNotFound
	}
	return out, err
}

// Put writes key.
func (b *Badger) Put(key string, val []byte) error {
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), val)
	})
}

// Delete removes key; deleting an absent key is not an error.
func (b *Badger) Delete(key string) error {
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
}

type zapBadger struct{ s *zap.SugaredLogger }

func badgerLogger(log *zap.Logger) badger.Logger {
	if log == nil {
		return nil
	}
	return zapBadger{s: log.Named("badger").Sugar()}
}

func (l zapBadger) Errorf(f string, a ...any)   { l.s.Errorf(f, a...) }
func (l zapBadger) Warningf(f string, a ...any) { l.s.Warnf(f, a...) }
func (l zapBadger) Infof(f string, a ...any)    { l.s.Debugf(f, a...) }
func (l zapBadger) Debugf(f string, a ...any)   { l.s.Debugf(f, a...) }
