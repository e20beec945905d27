// Package store persists the editor draft (text, theme and layout) in a
// bbolt file so a restarted server resumes where the user left off.
package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/gaurav-prasanna/mdpreview/core"
	bolt "go.etcd.io/bbolt"
)

var (
	draftBucket = []byte("draft")
	draftKey    = []byte("current")
)

// Store is a bbolt-backed draft store.
type Store struct {
	db *bolt.DB
}

// Open opens (creating if needed) the store file at path.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening draft store %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(draftBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing draft store: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the file lock.
func (s *Store) Close() error {
	return s.db.Close()
}

// Load returns the saved draft. The boolean is false when nothing has been
// saved yet.
func (s *Store) Load() (core.Draft, bool, error) {
	var draft core.Draft
	found := false
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(draftBucket).Get(draftKey)
		if data == nil {
			return nil
		}
		found = true
		return json.Unmarshal(data, &draft)
	})
	if err != nil {
		return core.Draft{}, false, fmt.Errorf("loading draft: %w", err)
	}
	return draft, found, nil
}

// Save replaces the saved draft.
func (s *Store) Save(draft core.Draft) error {
	data, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("encoding draft: %w", err)
	}
	err = s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(draftBucket).Put(draftKey, data)
	})
	if err != nil {
		return fmt.Errorf("saving draft: %w", err)
	}
	return nil
}
