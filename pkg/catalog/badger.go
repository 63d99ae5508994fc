package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v3"
)

// classPrefix namespaces entry keys: "class/" + hash.
var classPrefix = []byte("class/")

// Badger is an embedded catalog.
type Badger struct {
	db  *badger.DB
	now func() time.Time

	// mu serializes Add. Concurrent read-modify-writes of one key would
	// otherwise abort with badger.ErrConflict.
	mu sync.Mutex
}

// OpenBadger opens or creates the catalog at path. An empty path keeps the
// catalog in memory.
func OpenBadger(path string) (*Badger, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil
	opts.MetricsEnabled = false
	if path == "" {
		opts.InMemory = true
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger catalog %q: %w", path, err)
	}
	return &Badger{db: db, now: time.Now}, nil
}

func classKey(hash string) []byte {
	return append(append([]byte{}, classPrefix...), hash...)
}

func (b *Badger) Add(_ context.Context, e Entry) (Entry, bool, error) {
	if err := validate(e); err != nil {
		return Entry{}, false, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	var (
		out   Entry
		isNew bool
	)
	err := b.db.Update(func(txn *badger.Txn) error {
		key := classKey(e.Hash)
		item, err := txn.Get(key)
		switch {
		case errors.Is(err, badger.ErrKeyNotFound):
			out, isNew = created(e, b.now()), true
		case err != nil:
			return err
		default:
			var stored Entry
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &stored)
			}); err != nil {
				return err
			}
			out = seen(stored, b.now())
		}
		data, err := json.Marshal(out)
		if err != nil {
			return err
		}
		return txn.Set(key, data)
	})
	if err != nil {
		return Entry{}, false, fmt.Errorf("catalog add %s: %w", e.Hash, err)
	}
	return out, isNew, nil
}

func (b *Badger) Get(_ context.Context, hash string) (Entry, error) {
	var e Entry
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(classKey(hash))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &e)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return Entry{}, ErrNotFound
	}
	if err != nil {
		return Entry{}, fmt.Errorf("catalog get %s: %w", hash, err)
	}
	return e, nil
}

// List scans every entry; the catalog is expected to stay small enough for
// that.
func (b *Badger) List(_ context.Context, limit int) ([]Entry, error) {
	var out []Entry
	err := b.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{
			PrefetchValues: true,
			PrefetchSize:   100,
			Prefix:         classPrefix,
		})
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			var e Entry
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &e)
			}); err != nil {
				return err
			}
			out = append(out, e)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("catalog list: %w", err)
	}
	sortEntries(out)
	return out[:min(len(out), listLimit(limit))], nil
}

func (b *Badger) Close() error {
	if b.db == nil {
		return nil
	}
	err := b.db.Close()
	b.db = nil
	return err
}

var _ Catalog = (*Badger)(nil)
