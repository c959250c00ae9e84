package main

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteStoreEnsureCounterIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := openTestSQLite(t, testConfig(t))

	created, err := store.EnsureCounter(ctx)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = store.EnsureCounter(ctx)
	require.NoError(t, err)
	assert.False(t, created)

	total, err := store.Total(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
}

func TestSQLiteStoreMissingRow(t *testing.T) {
	ctx := context.Background()
	store := openTestSQLite(t, testConfig(t))

	_, err := store.Total(ctx)
	assert.ErrorIs(t, err, ErrCounterMissing)

	_, err = store.Increment(ctx)
	assert.ErrorIs(t, err, ErrCounterMissing)
}

func TestSQLiteStoreEnsureKeepsExistingCount(t *testing.T) {
	ctx := context.Background()
	store := openTestSQLite(t, testConfig(t))
	_, err := store.EnsureCounter(ctx)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := store.Increment(ctx)
		require.NoError(t, err)
	}
	created, err := store.EnsureCounter(ctx)
	require.NoError(t, err)
	assert.False(t, created)

	total, err := store.Total(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
}

func TestSQLiteStoreConcurrentIncrements(t *testing.T) {
	ctx := context.Background()
	store := openTestSQLite(t, testConfig(t))
	_, err := store.EnsureCounter(ctx)
	require.NoError(t, err)

	const workers = 25
	results := make(chan int64, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			total, err := store.Increment(ctx)
			assert.NoError(t, err)
			results <- total
		}()
	}
	wg.Wait()
	close(results)

	seen := make(map[int64]bool)
	for total := range results {
		assert.False(t, seen[total], "two increments returned %d", total)
		seen[total] = true
	}
	assert.Len(t, seen, workers)

	total, err := store.Total(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(workers), total)
}

func TestSQLiteStorePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "counter.db")

	store, err := openSQLiteStore(ctx, path, "total_trees")
	require.NoError(t, err)
	_, err = store.EnsureCounter(ctx)
	require.NoError(t, err)
	_, err = store.Increment(ctx)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	reopened, err := openSQLiteStore(ctx, path, "total_trees")
	require.NoError(t, err)
	defer reopened.Close()

	total, err := reopened.Total(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}

func TestSQLiteStoreRequiresPath(t *testing.T) {
	_, err := openSQLiteStore(context.Background(), "  ", "total_trees")
	assert.Error(t, err)
}

func TestRebindPlaceholders(t *testing.T) {
	pg := &sqlStore{dollars: true}
	lite := &sqlStore{}

	query := "UPDATE t SET count = ? WHERE id = ?"
	assert.Equal(t, "UPDATE t SET count = $1 WHERE id = $2", pg.rebind(query))
	assert.Equal(t, query, lite.rebind(query))
}
