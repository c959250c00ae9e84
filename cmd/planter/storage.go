package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/storage"
)

// Keys shared with the browser widget so the same names mean the same thing.
const (
	keyClicks = "userClicks"
	keyTrees  = "userTrees"
	keyGarden = "virtualGarden"
)

// LocalStore is the per-user key/value state that survives restarts.
type LocalStore interface {
	Get(key string) (string, bool, error)
	Put(key string, value string) error
	Close() error
}

type levelStore struct {
	db *leveldb.DB
}

// openLevelStore opens the data directory. LevelDB locks it, so a second
// planter process pointed at the same directory fails here instead of
// racing on the click counter.
func openLevelStore(dir string) (*levelStore, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("data directory is required")
	}
	db, err := leveldb.OpenFile(dir, nil)
	if err != nil {
		return nil, fmt.Errorf("open local store: %w", err)
	}
	return &levelStore{db: db}, nil
}

func openMemoryStore() (*levelStore, error) {
	db, err := leveldb.Open(storage.NewMemStorage(), nil)
	if err != nil {
		return nil, fmt.Errorf("open memory store: %w", err)
	}
	return &levelStore{db: db}, nil
}

func (s *levelStore) Get(key string) (string, bool, error) {
	value, err := s.db.Get([]byte(key), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %s: %w", key, err)
	}
	return string(value), true, nil
}

func (s *levelStore) Put(key string, value string) error {
	if err := s.db.Put([]byte(key), []byte(value), nil); err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

func (s *levelStore) Close() error {
	return s.db.Close()
}

// readCount returns the stored counter, or zero when it is missing,
// unreadable, or not a non-negative integer.
func readCount(store LocalStore, key string) int64 {
	raw, ok, err := store.Get(key)
	if err != nil || !ok {
		return 0
	}
	value, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || value < 0 {
		return 0
	}
	return value
}

func writeCount(store LocalStore, key string, value int64) error {
	return store.Put(key, strconv.FormatInt(value, 10))
}
