// Cinemind - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinemind

package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/cinemind/internal/logging"
)

// Key prefixes.
const (
	prefixRecord  = "movie:"
	prefixFailure = "failure:"
)

var (
	// ErrRecordNotFound is returned when no record is stored for an item.
	ErrRecordNotFound = errors.New("catalog: record not found")

	// ErrStoreClosed is returned after Close.
	ErrStoreClosed = errors.New("catalog: store closed")
)

// Failure is the last ingestion error recorded for an item.
type Failure struct {
	MovieID  string    `json:"movie_id"`
	TMDbID   int64     `json:"tmdb_id,omitempty"`
	Reason   string    `json:"reason"`
	Attempts int       `json:"attempts"`
	LastAt   time.Time `json:"last_at"`
}

// Store persists catalog records in BadgerDB keyed by item id.
// Writes are upserts; storing a record clears any failure for the item.
type Store struct {
	db     *badger.DB
	mu     sync.RWMutex
	closed bool
}

// OpenStore opens or creates a store at path. An empty path opens an
// in-memory store that is discarded on Close.
func OpenStore(path string) (*Store, error) {
	opts := badger.DefaultOptions(path)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open catalog store: %w", err)
	}
	return &Store{db: db}, nil
}

// OpenStoreReadOnly opens an existing store without taking the write
// lock, so several readers (server, training job) can share it. It fails
// while a writer such as an ingestion run holds the store.
func OpenStoreReadOnly(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("open catalog store: read-only mode needs a path")
	}
	opts := badger.DefaultOptions(path).WithReadOnly(true)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open catalog store read-only: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the store. Further calls return ErrStoreClosed.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

func (s *Store) checkNotClosed() error {
	if s.closed {
		return ErrStoreClosed
	}
	return nil
}

// Put upserts a record.
func (s *Store) Put(rec *Record) error {
	if rec == nil || rec.MovieID == "" {
		return fmt.Errorf("put record: movie id required")
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.checkNotClosed(); err != nil {
		return err
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set([]byte(prefixRecord+rec.MovieID), data); err != nil {
			return err
		}
		if err := txn.Delete([]byte(prefixFailure + rec.MovieID)); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		return nil
	})
}

// Get returns the record for movieID or ErrRecordNotFound.
func (s *Store) Get(movieID string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.checkNotClosed(); err != nil {
		return nil, err
	}

	var rec Record
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(prefixRecord + movieID))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrRecordNotFound
		}
		if err != nil {
			return fmt.Errorf("get record: %w", err)
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &rec)
		})
	})
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// SeedText returns the content text of the stored record for movieID.
func (s *Store) SeedText(_ context.Context, movieID string) (string, bool) {
	rec, err := s.Get(movieID)
	if err != nil {
		return "", false
	}
	return rec.ContentText(), true
}

// Has reports whether a record is stored for movieID.
func (s *Store) Has(movieID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.checkNotClosed(); err != nil {
		return false, err
	}

	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte(prefixRecord + movieID))
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("lookup record: %w", err)
	}
	return true, nil
}

// Each calls fn for every stored record in key order. Records that fail to
// decode are logged and skipped.
func (s *Store) Each(ctx context.Context, fn func(*Record) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.checkNotClosed(); err != nil {
		return err
	}

	return s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(prefixRecord)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			item := it.Item()
			var rec Record
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			}); err != nil {
				logging.Warn().Err(err).Str("key", string(item.Key())).Msg("Catalog store failed to unmarshal record")
				continue
			}
			if err := fn(&rec); err != nil {
				return err
			}
		}
		return nil
	})
}

// Count returns the number of stored records.
func (s *Store) Count() (int, error) {
	return s.countPrefix(prefixRecord)
}

// RecordFailure stores or updates the failure entry for an item.
func (s *Store) RecordFailure(movieID string, tmdbID int64, cause error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.checkNotClosed(); err != nil {
		return err
	}

	key := []byte(prefixFailure + movieID)
	return s.db.Update(func(txn *badger.Txn) error {
		f := Failure{MovieID: movieID, TMDbID: tmdbID}
		item, err := txn.Get(key)
		switch {
		case err == nil:
			if err := item.Value(func(val []byte) error { return json.Unmarshal(val, &f) }); err != nil {
				return fmt.Errorf("unmarshal failure: %w", err)
			}
		case !errors.Is(err, badger.ErrKeyNotFound):
			return err
		}

		f.Attempts++
		f.Reason = cause.Error()
		f.LastAt = time.Now().UTC()
		data, err := json.Marshal(f)
		if err != nil {
			return fmt.Errorf("marshal failure: %w", err)
		}
		return txn.Set(key, data)
	})
}

// Failures returns all recorded failures in key order.
func (s *Store) Failures(ctx context.Context) ([]Failure, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.checkNotClosed(); err != nil {
		return nil, err
	}

	var failures []Failure
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(prefixFailure)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var f Failure
			if err := it.Item().Value(func(val []byte) error { return json.Unmarshal(val, &f) }); err != nil {
				return fmt.Errorf("unmarshal failure: %w", err)
			}
			failures = append(failures, f)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("iterate failures: %w", err)
	}
	return failures, nil
}

func (s *Store) countPrefix(prefix string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.checkNotClosed(); err != nil {
		return 0, err
	}

	count := 0
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		p := []byte(prefix)
		for it.Seek(p); it.ValidForPrefix(p); it.Next() {
			count++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", prefix, err)
	}
	return count, nil
}
