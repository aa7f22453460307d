package services

import (
	"context"
	"fmt"
	"sync"

	"parkngo/store"
)

// RevenueLedger 每日營收帳本：同日多次結帳累加到同一筆
type RevenueLedger struct {
	mu    sync.Mutex
	store store.Store
}

func NewRevenueLedger(st store.Store) *RevenueLedger {
	return &RevenueLedger{store: st}
}

// Record 把一筆結帳金額累加到該日期的營收
// 讀改寫在持久層以原子累加完成，這裡再用鎖保證同日併發結帳不會互相蓋掉
func (l *RevenueLedger) Record(ctx context.Context, date string, amount float64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.store.UpsertDailyRevenue(ctx, date, amount); err != nil {
		return fmt.Errorf("record revenue for %s: %w", date, err)
	}
	return nil
}

// History 依日期由舊到新回傳每日營收
func (l *RevenueLedger) History(ctx context.Context) ([]store.RevenueEntry, error) {
	entries, err := l.store.QueryRevenueHistory(ctx)
	if err != nil {
		return nil, fmt.Errorf("revenue history: %w", err)
	}
	return entries, nil
}
