// Package watch re-runs work when a spec file changes. Content checksums
// decide whether anything changed, both between file events and across
// runs.
package watch

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/cespare/xxhash/v2"
	"github.com/dgraph-io/badger/v4"
)

// ChecksumOptions configures the checksum store.
type ChecksumOptions struct {
	// Dir holds the database. If empty, checksums live in memory and are
	// lost on Close.
	Dir string
}

// Checksums remembers the xxhash of the last content seen per key.
type Checksums struct {
	db *badger.DB
}

func OpenChecksums(opts ChecksumOptions) (*Checksums, error) {
	badgerOpts := badger.DefaultOptions(opts.Dir).WithLogger(nil)
	if opts.Dir == "" {
		badgerOpts = badgerOpts.WithInMemory(true)
	}
	db, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, fmt.Errorf("open checksum db: %w", err)
	}
	return &Checksums{db: db}, nil
}

func Sum(data []byte) uint64 {
	return xxhash.Sum64(data)
}

// Changed reports whether data differs from what was last recorded for key
// and records its checksum. The first call for a key always reports true.
func (c *Checksums) Changed(key string, data []byte) (bool, error) {
	sum := make([]byte, 8)
	binary.BigEndian.PutUint64(sum, Sum(data))

	changed := true
	err := c.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		switch {
		case errors.Is(err, badger.ErrKeyNotFound):
		case err != nil:
			return err
		default:
			err := item.Value(func(val []byte) error {
				changed = string(val) != string(sum)
				return nil
			})
			if err != nil {
				return err
			}
		}
		if !changed {
			return nil
		}
		return txn.Set([]byte(key), sum)
	})
	if err != nil {
		return false, fmt.Errorf("checksum %s: %w", key, err)
	}
	return changed, nil
}

// Forget drops the checksum for key so the next Changed reports true.
func (c *Checksums) Forget(key string) error {
	return c.db.Update(func(txn *badger.Txn) error {
		err := txn.Delete([]byte(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		return err
	})
}

func (c *Checksums) Close() error {
	return c.db.Close()
}
