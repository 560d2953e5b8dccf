package registry

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"go.etcd.io/bbolt"
)

var bucketOffline = []byte("available_offline") // key: file id -> val: RFC3339 time

// Bolt is a Registry stored in a local bbolt file.
type Bolt struct {
	db *bbolt.DB
}

// OpenBolt opens (or creates) the registry file at path.
func OpenBolt(path string) (*Bolt, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("create registry dir: %w", err)
	}
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open registry %s: %w", path, err)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		_, e := tx.CreateBucketIfNotExists(bucketOffline)
		return e
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Bolt{db: db}, nil
}

// Has reports whether fileID is available offline.
func (b *Bolt) Has(_ context.Context, fileID string) (bool, error) {
	found := false
	err := b.db.View(func(tx *bbolt.Tx) error {
		found = tx.Bucket(bucketOffline).Get([]byte(fileID)) != nil
		return nil
	})
	return found, err
}

// Add marks fileID available offline. The original time is kept on re-add.
func (b *Bolt) Add(_ context.Context, fileID string) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		bkt := tx.Bucket(bucketOffline)
		if bkt.Get([]byte(fileID)) != nil {
			return nil
		}
		return bkt.Put([]byte(fileID), []byte(time.Now().UTC().Format(time.RFC3339Nano)))
	})
}

// Remove unmarks fileID.
func (b *Bolt) Remove(_ context.Context, fileID string) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketOffline).Delete([]byte(fileID))
	})
}

// List returns all entries ordered by the time they were added.
func (b *Bolt) List(_ context.Context) ([]Entry, error) {
	var entries []Entry
	err := b.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketOffline).ForEach(func(k, v []byte) error {
			added, err := time.Parse(time.RFC3339Nano, string(v))
			if err != nil {
				return fmt.Errorf("entry %s: %w", k, err)
			}
			entries = append(entries, Entry{FileID: string(k), AddedAt: added})
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].AddedAt.Before(entries[j].AddedAt)
	})
	return entries, nil
}

// Close closes the bolt file.
func (b *Bolt) Close() error {
	return b.db.Close()
}
