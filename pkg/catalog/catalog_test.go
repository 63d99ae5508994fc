package catalog

import (
	"context"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "github.com/matzehuels/canonic/pkg/errors"
)

func hashOf(c byte) string { return strings.Repeat(string(c), 64) }

// testCatalog runs the behaviour every backend shares.
func testCatalog(t *testing.T, c Catalog) {
	t.Helper()
	ctx := context.Background()

	t.Run("GetMissing", func(t *testing.T) {
		_, err := c.Get(ctx, hashOf('f'))
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("AddCreatesThenCounts", func(t *testing.T) {
		in := Entry{Hash: hashOf('a'), Order: 4, Edges: 4, GroupSize: 8, Orbits: [][]int{{0, 1, 2, 3}}}

		first, created, err := c.Add(ctx, in)
		require.NoError(t, err)
		assert.True(t, created)
		assert.NotEmpty(t, first.ID)
		assert.Equal(t, int64(1), first.Count)
		assert.False(t, first.FirstSeen.IsZero())

		second, created, err := c.Add(ctx, in)
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, int64(2), second.Count)
		assert.False(t, second.LastSeen.Before(first.LastSeen))

		got, err := c.Get(ctx, in.Hash)
		require.NoError(t, err)
		assert.Equal(t, int64(2), got.Count)
		assert.Equal(t, 8, got.GroupSize)
		assert.Equal(t, [][]int{{0, 1, 2, 3}}, got.Orbits)
	})

	t.Run("ListOrder", func(t *testing.T) {
		_, _, err := c.Add(ctx, Entry{Hash: hashOf('b'), Order: 3})
		require.NoError(t, err)
		_, _, err = c.Add(ctx, Entry{Hash: hashOf('c'), Order: 2})
		require.NoError(t, err)

		all, err := c.List(ctx, 0)
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, hashOf('a'), all[0].Hash)
		assert.Equal(t, hashOf('b'), all[1].Hash)
		assert.Equal(t, hashOf('c'), all[2].Hash)

		top, err := c.List(ctx, 1)
		require.NoError(t, err)
		require.Len(t, top, 1)
		assert.Equal(t, hashOf('a'), top[0].Hash)
	})

	t.Run("RejectsBadHash", func(t *testing.T) {
		_, _, err := c.Add(ctx, Entry{Hash: "nope", Order: 1})
		assert.True(t, errs.Is(err, errs.ErrCodeInvalidInput))
	})
}

// testConcurrentAdd records one class from many goroutines and checks that
// no sighting is lost.
func testConcurrentAdd(t *testing.T, c Catalog) {
	t.Helper()
	const workers = 64
	ctx := context.Background()
	in := Entry{Hash: hashOf('e'), Order: 3}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		creations int
		failed    []error
	)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, isNew, err := c.Add(ctx, in)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed = append(failed, err)
			}
			if isNew {
				creations++
			}
		}()
	}
	wg.Wait()

	require.Empty(t, failed)
	assert.Equal(t, 1, creations)
	got, err := c.Get(ctx, in.Hash)
	require.NoError(t, err)
	assert.Equal(t, int64(workers), got.Count)
}

func TestMemory(t *testing.T) {
	c := NewMemory()
	defer c.Close()
	testCatalog(t, c)
}

func TestBadgerInMemory(t *testing.T) {
	c, err := OpenBadger("")
	require.NoError(t, err)
	defer c.Close()
	testCatalog(t, c)
}

func TestMemoryConcurrentAdd(t *testing.T) {
	c := NewMemory()
	defer c.Close()
	testConcurrentAdd(t, c)
}

func TestBadgerConcurrentAdd(t *testing.T) {
	c, err := OpenBadger("")
	require.NoError(t, err)
	defer c.Close()
	testConcurrentAdd(t, c)
}

func TestBadgerPersists(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	c, err := OpenBadger(dir)
	require.NoError(t, err)
	_, _, err = c.Add(ctx, Entry{Hash: hashOf('d'), Order: 5})
	require.NoError(t, err)
	require.NoError(t, c.Close())

	c, err = OpenBadger(dir)
	require.NoError(t, err)
	defer c.Close()
	got, err := c.Get(ctx, hashOf('d'))
	require.NoError(t, err)
	assert.Equal(t, 5, got.Order)
}

func TestMongo(t *testing.T) {
	uri := os.Getenv("CANONIC_MONGO_URI")
	if uri == "" {
		t.Skip("CANONIC_MONGO_URI not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	c, err := ConnectMongo(ctx, uri, "canonic_test")
	require.NoError(t, err)
	defer c.Close()
	require.NoError(t, c.Drop(ctx))
	testCatalog(t, c)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	c, err := Open(ctx, Options{Backend: "none"})
	require.NoError(t, err)
	assert.Nil(t, c)

	c, err = Open(ctx, Options{Backend: "memory"})
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, c)

	_, err = Open(ctx, Options{Backend: "sqlite"})
	assert.True(t, errs.Is(err, errs.ErrCodeUnsupported))
}
