// Package bbolt implements the ports.Storage interface using bbolt (embedded
// B+ tree). One top-level bucket maps absolute file paths to JSON-serialized
// scan results. Writes are transactional — a crash mid-write cannot corrupt
// previously committed data.
package bbolt

import (
	"encoding/json"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/corey/psdef/internal/ports"
)

var bucketScans = []byte("scans")

// Store implements ports.Storage backed by bbolt.
type Store struct {
	db *bolt.DB
}

// NewStore opens (or creates) a bbolt database at the given path.
// The open timeout keeps a second process from hanging forever on the
// file lock a running watch session holds.
func NewStore(path string) (*Store, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("bbolt open: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying bbolt database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveScan persists the scan result for one file, replacing any previous
// result for the same path.
func (s *Store) SaveScan(path string, scan *ports.CachedScan) error {
	if scan == nil {
		return fmt.Errorf("nil scan")
	}

	data, err := json.Marshal(scan)
	if err != nil {
		return fmt.Errorf("marshal scan: %w", err)
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(bucketScans)
		if err != nil {
			return err
		}
		return b.Put([]byte(path), data)
	})
}

// LoadScan retrieves the cached scan result for a file.
// Returns nil, nil if the path has never been scanned.
func (s *Store) LoadScan(path string) (*ports.CachedScan, error) {
	var data []byte

	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketScans)
		if b == nil {
			return nil
		}
		// Copy bytes out of the transaction (bbolt slices are only valid within tx)
		if v := b.Get([]byte(path)); v != nil {
			data = make([]byte, len(v))
			copy(data, v)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if data == nil {
		return nil, nil
	}

	var scan ports.CachedScan
	if err := json.Unmarshal(data, &scan); err != nil {
		return nil, fmt.Errorf("unmarshal scan: %w", err)
	}
	return &scan, nil
}

// DeleteScan removes the cached result for a file.
// Idempotent: deleting a never-scanned path is not an error.
func (s *Store) DeleteScan(path string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketScans)
		if b == nil {
			return nil
		}
		return b.Delete([]byte(path))
	})
}

// ForEachScan calls fn for every cached scan, in path order. A non-nil error
// from fn stops the iteration and is returned.
func (s *Store) ForEachScan(fn func(path string, scan *ports.CachedScan) error) error {
	return s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketScans)
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, v []byte) error {
			var scan ports.CachedScan
			if err := json.Unmarshal(v, &scan); err != nil {
				return fmt.Errorf("unmarshal scan for %s: %w", k, err)
			}
			return fn(string(k), &scan)
		})
	})
}

// Stats reports how many files and definitions the cache currently holds.
func (s *Store) Stats() (*ports.CacheStats, error) {
	stats := &ports.CacheStats{}
	err := s.ForEachScan(func(path string, scan *ports.CachedScan) error {
		stats.Files++
		stats.Definitions += len(scan.Definitions)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// Clear drops every cached scan. Idempotent on an empty database.
func (s *Store) Clear() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		err := tx.DeleteBucket(bucketScans)
		if err == bolt.ErrBucketNotFound {
			return nil
		}
		return err
	})
}
