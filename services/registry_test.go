package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"parkngo/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry(t *testing.T, capacity int) (*SlotRegistry, *store.Memory) {
	t.Helper()
	mem := store.NewMemory()
	registry := NewSlotRegistry(capacity, mem)
	require.NoError(t, registry.Reconcile(context.Background()))
	return registry, mem
}

func TestAllocateReturnsLowestFreeSlot(t *testing.T) {
	registry, _ := newTestRegistry(t, 5)
	ctx := context.Background()

	slot, _, err := registry.Allocate(ctx, "KA-01-A-1111")
	require.NoError(t, err)
	assert.Equal(t, 1, slot)

	slot, _, err = registry.Allocate(ctx, "KA-01-A-2222")
	require.NoError(t, err)
	assert.Equal(t, 2, slot)

	// 釋放 1 號後，下一台車應該回到 1 號
	require.NoError(t, registry.Finalize(ctx, "KA-01-A-1111", time.Now(), 50, ""))
	slot, _, err = registry.Allocate(ctx, "KA-01-A-3333")
	require.NoError(t, err)
	assert.Equal(t, 1, slot)
}

func TestAllocateFailsWhenFull(t *testing.T) {
	registry, _ := newTestRegistry(t, 3)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, _, err := registry.Allocate(ctx, string(rune('A'+i))+"-001")
		require.NoError(t, err)
	}

	_, _, err := registry.Allocate(ctx, "Z-999")
	assert.ErrorIs(t, err, ErrNoSlotsAvailable)
}

func TestAllocateRejectsAlreadyParkedVehicle(t *testing.T) {
	registry, _ := newTestRegistry(t, 5)
	ctx := context.Background()

	_, _, err := registry.Allocate(ctx, "KA-01-A-1111")
	require.NoError(t, err)

	_, _, err = registry.Allocate(ctx, "KA-01-A-1111")
	assert.ErrorIs(t, err, ErrVehicleAlreadyParked)
}

func TestAllocateNoPhantomSlotOnPersistenceFailure(t *testing.T) {
	registry, mem := newTestRegistry(t, 5)
	ctx := context.Background()

	mem.Err = store.ErrUnavailable
	_, _, err := registry.Allocate(ctx, "KA-01-A-1111")
	assert.ErrorIs(t, err, store.ErrUnavailable)

	// 資料庫失敗後車位表不能留下佔位，恢復後同一台車要能拿到 1 號
	mem.Err = nil
	slot, _, err := registry.Allocate(ctx, "KA-01-A-1111")
	require.NoError(t, err)
	assert.Equal(t, 1, slot)
}

func TestFinalizeRoundTrip(t *testing.T) {
	registry, _ := newTestRegistry(t, 5)
	ctx := context.Background()

	_, checkIn, err := registry.Allocate(ctx, "KA-01-A-1111")
	require.NoError(t, err)

	checkOut := checkIn.Add(2 * time.Hour)
	require.NoError(t, registry.Finalize(ctx, "KA-01-A-1111", checkOut, 90, "receipt.pdf"))

	// 車位釋放
	board := registry.Snapshot()
	assert.False(t, board[0].Occupied)

	// 重複結帳被擋下，且保留前次結果
	err = registry.Finalize(ctx, "KA-01-A-1111", checkOut, 90, "receipt.pdf")
	assert.ErrorIs(t, err, ErrAlreadyFinalized)

	prior, ok := registry.LastFinalized("KA-01-A-1111")
	require.True(t, ok)
	assert.Equal(t, 90.0, prior.Cost)
	assert.Equal(t, "receipt.pdf", prior.ReceiptPath)
}

func TestFinalizeUnknownVehicle(t *testing.T) {
	registry, _ := newTestRegistry(t, 5)
	err := registry.Finalize(context.Background(), "NOPE-1", time.Now(), 50, "")
	assert.ErrorIs(t, err, ErrVehicleNotFound)
}

func TestReconcilePopulatesOccupiedSlots(t *testing.T) {
	mem := store.NewMemory()
	checkIn := time.Now().Add(-time.Hour)
	mem.Seed("KA-01-A-3333", 3, checkIn)
	mem.Seed("KA-01-A-7777", 7, checkIn)

	registry := NewSlotRegistry(20, mem)
	require.NoError(t, registry.Reconcile(context.Background()))

	// 3、7 號已被佔用，新車拿到 1 號
	slot, _, err := registry.Allocate(context.Background(), "KA-01-A-1111")
	require.NoError(t, err)
	assert.Equal(t, 1, slot)

	board := registry.Snapshot()
	assert.True(t, board[2].Occupied)
	assert.Equal(t, "KA-01-A-3333", board[2].CarNumber)
	assert.True(t, board[6].Occupied)

	// 已佔用車牌結帳要能直接成立
	require.NoError(t, registry.Finalize(context.Background(), "KA-01-A-7777", time.Now(), 50, ""))
}

func TestReconcileSkipsOutOfRangeSlots(t *testing.T) {
	mem := store.NewMemory()
	mem.Seed("KA-01-A-3333", 3, time.Now())
	mem.Seed("KA-01-A-9999", 42, time.Now())

	registry := NewSlotRegistry(20, mem)
	require.NoError(t, registry.Reconcile(context.Background()))

	board := registry.Snapshot()
	occupied := 0
	for _, slot := range board {
		if slot.Occupied {
			occupied++
		}
	}
	assert.Equal(t, 1, occupied)
}

func TestOperationsRejectedBeforeReconcile(t *testing.T) {
	registry := NewSlotRegistry(5, store.NewMemory())

	_, _, err := registry.Allocate(context.Background(), "KA-01-A-1111")
	assert.ErrorIs(t, err, ErrNotReconciled)

	_, err = registry.FindActive("KA-01-A-1111")
	assert.ErrorIs(t, err, ErrNotReconciled)
}

func TestReconcileFailsWhenStoreUnavailable(t *testing.T) {
	mem := store.NewMemory()
	mem.Err = store.ErrUnavailable
	registry := NewSlotRegistry(5, mem)

	err := registry.Reconcile(context.Background())
	assert.ErrorIs(t, err, store.ErrUnavailable)

	// 重建失敗後仍不可受理
	_, _, err = registry.Allocate(context.Background(), "KA-01-A-1111")
	assert.ErrorIs(t, err, ErrNotReconciled)
}

func TestConcurrentAllocateFillsEachSlotOnce(t *testing.T) {
	const capacity = 20
	registry, _ := newTestRegistry(t, capacity)

	var wg sync.WaitGroup
	slots := make(chan int, capacity*2)
	var failures int64
	var mu sync.Mutex

	for i := 0; i < capacity*2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			slot, _, err := registry.Allocate(context.Background(), "CAR-"+string(rune('A'+i%26))+string(rune('0'+i/26)))
			if err != nil {
				mu.Lock()
				failures++
				mu.Unlock()
				if !errors.Is(err, ErrNoSlotsAvailable) {
					t.Errorf("unexpected allocate error: %v", err)
				}
				return
			}
			slots <- slot
		}(i)
	}
	wg.Wait()
	close(slots)

	seen := make(map[int]bool)
	for slot := range slots {
		assert.False(t, seen[slot], "slot %d allocated twice", slot)
		seen[slot] = true
	}
	assert.Len(t, seen, capacity)
	assert.EqualValues(t, capacity, failures)
}
