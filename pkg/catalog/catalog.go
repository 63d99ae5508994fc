// Package catalog records the isomorphism classes canonic has seen.
//
// A class is identified by the hash of its canonical certificate: two graphs
// land on the same [Entry] exactly when they are isomorphic. Adding a graph
// of a known class bumps its count instead of creating a new entry.
//
// Backends:
//   - [Badger], an embedded store; in memory when no path is given
//   - [Mongo], shared between server instances
//   - [Memory], for tests and one-off CLI runs
package catalog

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"time"

	"github.com/google/uuid"

	errs "github.com/matzehuels/canonic/pkg/errors"
)

// ErrNotFound is returned by Get for an unknown hash.
var ErrNotFound = errors.New("class not found")

// DefaultListLimit bounds List when the caller passes no limit.
const DefaultListLimit = 100

// Entry describes one isomorphism class.
type Entry struct {
	ID        string    `json:"id" yaml:"id" bson:"_id"`
	Hash      string    `json:"hash" yaml:"hash" bson:"hash"`
	Order     int       `json:"order" yaml:"order" bson:"order"`
	Directed  bool      `json:"directed" yaml:"directed" bson:"directed"`
	Edges     int       `json:"edges" yaml:"edges" bson:"edges"`
	GroupSize int       `json:"group_size" yaml:"group_size" bson:"group_size"`
	Orbits    [][]int   `json:"orbits" yaml:"orbits" bson:"orbits"`
	Count     int64     `json:"count" yaml:"count" bson:"count"`
	FirstSeen time.Time `json:"first_seen" yaml:"first_seen" bson:"first_seen"`
	LastSeen  time.Time `json:"last_seen" yaml:"last_seen" bson:"last_seen"`
}

// Catalog stores entries keyed by certificate hash.
type Catalog interface {
	// Add records one sighting of the class. For a new class it assigns the
	// ID and timestamps and returns created = true; for a known class it
	// increments Count and returns the stored entry.
	Add(ctx context.Context, e Entry) (Entry, bool, error)

	// Get returns the entry for hash or ErrNotFound.
	Get(ctx context.Context, hash string) (Entry, error)

	// List returns up to limit entries, most frequently seen first.
	List(ctx context.Context, limit int) ([]Entry, error)

	Close() error
}

// Options selects and configures a backend.
type Options struct {
	Backend       string // "badger", "mongo", "memory" or "none"
	Path          string // badger directory; empty means in memory
	MongoURI      string
	MongoDatabase string
}

// Open creates the backend named by opts. "none" and "" return a nil
// Catalog and no error.
func Open(ctx context.Context, opts Options) (Catalog, error) {
	switch opts.Backend {
	case "", "none":
		return nil, nil
	case "memory":
		return NewMemory(), nil
	case "badger":
		b, err := OpenBadger(opts.Path)
		if err != nil {
			return nil, err
		}
		return b, nil
	case "mongo":
		m, err := ConnectMongo(ctx, opts.MongoURI, opts.MongoDatabase)
		if err != nil {
			return nil, err
		}
		return m, nil
	default:
		return nil, errs.New(errs.ErrCodeUnsupported, "unknown catalog backend %q", opts.Backend)
	}
}

// created fills in the fields of a first sighting.
func created(e Entry, now time.Time) Entry {
	e.ID = uuid.NewString()
	e.Count = 1
	e.FirstSeen = now
	e.LastSeen = now
	return e
}

// seen updates a stored entry for another sighting.
func seen(stored Entry, now time.Time) Entry {
	stored.Count++
	stored.LastSeen = now
	return stored
}

// sortEntries orders by descending count, then hash.
func sortEntries(entries []Entry) {
	slices.SortFunc(entries, func(a, b Entry) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Hash, b.Hash)
	})
}

func listLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	return limit
}

func validate(e Entry) error {
	if err := errs.ValidateHash(e.Hash); err != nil {
		return err
	}
	return errs.ValidateOrder(e.Order)
}
