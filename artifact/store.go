// Package artifact stores encoded draw lists keyed by their content hash.
//
// An artifact is the exact bytes produced by a codec. Storing the same
// bytes twice is a no-op, and every read re-checks the hash, so a store
// doubles as a replay log for determinism checks: compile again, look up
// the hash, compare bytes.
package artifact

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.etcd.io/bbolt"

	"github.com/gogpu/detdraw/codec"
	_ "github.com/gogpu/detdraw/codec/bdl1" // register BDL1
	_ "github.com/gogpu/detdraw/codec/bdl2" // register BDL2
	"github.com/gogpu/detdraw/digest"
)

const (
	dataBucket = "drawlist"
	metaBucket = "drawlist_meta"
)

var (
	// ErrNotFound indicates no artifact has the requested hash.
	ErrNotFound = errors.New("artifact: not found")

	// ErrCorrupt indicates stored bytes no longer match their hash.
	ErrCorrupt = errors.New("artifact: stored bytes do not match hash")
)

// Meta describes a stored artifact.
type Meta struct {
	Hash     string `json:"hash"`
	Format   string `json:"format"`
	Width    uint32 `json:"width"`
	Height   uint32 `json:"height"`
	Commands int    `json:"commands"`
	Size     int    `json:"size"`
}

// Store is a bbolt-backed artifact store.
type Store struct {
	db *bbolt.DB
}

// Open opens (creating if needed) a store at path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("artifact: storage path is required")
	}

	db, err := bbolt.Open(filepath.Clean(path), 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("artifact: open db: %w", err)
	}

	s := &Store{db: db}
	if err := s.ensureBuckets(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) ready(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.db == nil {
		return fmt.Errorf("artifact: store is not open")
	}
	return nil
}

// Put decodes data to validate it, then stores it under its hash. It
// returns the artifact's metadata.
func (s *Store) Put(ctx context.Context, data []byte) (Meta, error) {
	if err := s.ready(ctx); err != nil {
		return Meta{}, err
	}
	list, tag, err := codec.Decode(data)
	if err != nil {
		return Meta{}, fmt.Errorf("artifact: refusing invalid encoding: %w", err)
	}
	meta := Meta{
		Hash:     digest.Sum(data),
		Format:   tag.String(),
		Width:    list.Width,
		Height:   list.Height,
		Commands: list.Len(),
		Size:     len(data),
	}
	payload, err := json.Marshal(meta)
	if err != nil {
		return Meta{}, fmt.Errorf("artifact: marshal meta: %w", err)
	}

	err = s.db.Update(func(tx *bbolt.Tx) error {
		blobs, metas, err := buckets(tx)
		if err != nil {
			return err
		}
		key := []byte(meta.Hash)
		if blobs.Get(key) != nil {
			return nil
		}
		if err := blobs.Put(key, data); err != nil {
			return fmt.Errorf("artifact: put data: %w", err)
		}
		if err := metas.Put(key, payload); err != nil {
			return fmt.Errorf("artifact: put meta: %w", err)
		}
		return nil
	})
	if err != nil {
		return Meta{}, err
	}
	return meta, nil
}

// Get returns the bytes stored under hash. The bytes are re-hashed before
// they are returned.
func (s *Store) Get(ctx context.Context, hash string) ([]byte, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	if _, err := digest.Parse(hash); err != nil {
		return nil, err
	}

	var out []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		blobs, _, err := buckets(tx)
		if err != nil {
			return err
		}
		v := blobs.Get([]byte(hash))
		if v == nil {
			return ErrNotFound
		}
		// bbolt values are only valid inside the transaction.
		out = bytes.Clone(v)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := digest.Verify(out, hash); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return out, nil
}

// Has reports whether an artifact with hash is stored.
func (s *Store) Has(ctx context.Context, hash string) (bool, error) {
	if err := s.ready(ctx); err != nil {
		return false, err
	}
	var found bool
	err := s.db.View(func(tx *bbolt.Tx) error {
		blobs, _, err := buckets(tx)
		if err != nil {
			return err
		}
		found = blobs.Get([]byte(hash)) != nil
		return nil
	})
	return found, err
}

// Stat returns the metadata stored for hash.
func (s *Store) Stat(ctx context.Context, hash string) (Meta, error) {
	if err := s.ready(ctx); err != nil {
		return Meta{}, err
	}
	var meta Meta
	err := s.db.View(func(tx *bbolt.Tx) error {
		_, metas, err := buckets(tx)
		if err != nil {
			return err
		}
		payload := metas.Get([]byte(hash))
		if payload == nil {
			return ErrNotFound
		}
		if err := json.Unmarshal(payload, &meta); err != nil {
			return fmt.Errorf("artifact: unmarshal meta: %w", err)
		}
		return nil
	})
	return meta, err
}

// List returns the metadata of every artifact in hash order.
func (s *Store) List(ctx context.Context) ([]Meta, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	var out []Meta
	err := s.db.View(func(tx *bbolt.Tx) error {
		_, metas, err := buckets(tx)
		if err != nil {
			return err
		}
		return metas.ForEach(func(_, payload []byte) error {
			var meta Meta
			if err := json.Unmarshal(payload, &meta); err != nil {
				return fmt.Errorf("artifact: unmarshal meta: %w", err)
			}
			out = append(out, meta)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes the artifact with hash. Deleting a missing artifact
// returns ErrNotFound.
func (s *Store) Delete(ctx context.Context, hash string) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		blobs, metas, err := buckets(tx)
		if err != nil {
			return err
		}
		key := []byte(hash)
		if blobs.Get(key) == nil {
			return ErrNotFound
		}
		if err := blobs.Delete(key); err != nil {
			return err
		}
		return metas.Delete(key)
	})
}

func (s *Store) ensureBuckets() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		for _, name := range []string{dataBucket, metaBucket} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return fmt.Errorf("artifact: create %s bucket: %w", name, err)
			}
		}
		return nil
	})
}

func buckets(tx *bbolt.Tx) (blobs, metas *bbolt.Bucket, err error) {
	blobs = tx.Bucket([]byte(dataBucket))
	metas = tx.Bucket([]byte(metaBucket))
	if blobs == nil || metas == nil {
		return nil, nil, fmt.Errorf("artifact: buckets are missing")
	}
	return blobs, metas, nil
}
