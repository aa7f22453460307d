package services

import (
	"context"
	"sync"
	"testing"

	"parkngo/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedgerAccumulatesPerDate(t *testing.T) {
	ledger := NewRevenueLedger(store.NewMemory())
	ctx := context.Background()

	require.NoError(t, ledger.Record(ctx, "2025-03-01", 50))
	require.NoError(t, ledger.Record(ctx, "2025-03-01", 75))
	require.NoError(t, ledger.Record(ctx, "2025-03-02", 30))

	entries, err := ledger.History(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// 依日期由舊到新
	assert.Equal(t, "2025-03-01", entries[0].Date)
	assert.InDelta(t, 125, entries[0].Revenue, 1e-9)
	assert.Equal(t, "2025-03-02", entries[1].Date)
	assert.InDelta(t, 30, entries[1].Revenue, 1e-9)
}

func TestLedgerSurfacesStoreFailure(t *testing.T) {
	mem := store.NewMemory()
	mem.Err = store.ErrUnavailable
	ledger := NewRevenueLedger(mem)

	err := ledger.Record(context.Background(), "2025-03-01", 50)
	assert.ErrorIs(t, err, store.ErrUnavailable)
}

func TestLedgerConcurrentRecordsSameDateNoLostUpdate(t *testing.T) {
	ledger := NewRevenueLedger(store.NewMemory())
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, ledger.Record(ctx, "2025-03-01", 10))
		}()
	}
	wg.Wait()

	entries, err := ledger.History(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.InDelta(t, 1000, entries[0].Revenue, 1e-9)
}
