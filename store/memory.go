package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"parkngo/models"
)

// Memory Store 的純記憶體實作，供測試與本機開發使用
// Err 設定後所有操作都會以該錯誤失敗，用來模擬資料庫斷線
type Memory struct {
	mu       sync.Mutex
	nextID   uint
	sessions map[uint]*models.ParkingSession
	revenue  map[string]float64

	Err error
}

func NewMemory() *Memory {
	return &Memory{
		nextID:   1,
		sessions: make(map[uint]*models.ParkingSession),
		revenue:  make(map[string]float64),
	}
}

// Seed 直接放入一筆停車中的紀錄，供重建測試建立初始狀態
func (m *Memory) Seed(carNumber string, slot int, checkIn time.Time) uint {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextID
	m.nextID++
	m.sessions[id] = &models.ParkingSession{
		SessionID: id,
		CarNumber: carNumber,
		Slot:      slot,
		CheckIn:   checkIn,
		Date:      checkIn.Format("2006-01-02"),
	}
	return id
}

func (m *Memory) InsertSession(_ context.Context, carNumber string, slot int, checkIn time.Time) (uint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return 0, m.Err
	}
	id := m.nextID
	m.nextID++
	m.sessions[id] = &models.ParkingSession{
		SessionID: id,
		CarNumber: carNumber,
		Slot:      slot,
		CheckIn:   checkIn,
		Date:      checkIn.Format("2006-01-02"),
	}
	return id, nil
}

func (m *Memory) UpdateSessionOnCheckout(_ context.Context, sessionID uint, checkOut time.Time, cost float64, receiptPath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return m.Err
	}
	session, ok := m.sessions[sessionID]
	if !ok {
		return fmt.Errorf("session %d not found: %w", sessionID, ErrUnavailable)
	}
	if session.CheckOut != nil {
		return fmt.Errorf("session %d: %w", sessionID, ErrSessionClosed)
	}
	out := checkOut
	c := cost
	path := receiptPath
	session.CheckOut = &out
	session.Cost = &c
	session.ReceiptPath = &path
	return nil
}

func (m *Memory) QueryActiveSessions(_ context.Context) ([]ActiveSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}
	var active []ActiveSession
	for _, session := range m.sessions {
		if session.CheckOut == nil {
			active = append(active, ActiveSession{
				SessionID: session.SessionID,
				Slot:      session.Slot,
				CarNumber: session.CarNumber,
				CheckIn:   session.CheckIn,
			})
		}
	}
	sort.Slice(active, func(i, j int) bool { return active[i].Slot < active[j].Slot })
	return active, nil
}

func (m *Memory) QueryCompletedSessions(_ context.Context) ([]models.ParkingSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}
	var completed []models.ParkingSession
	for _, session := range m.sessions {
		if session.CheckOut != nil {
			completed = append(completed, *session)
		}
	}
	sort.Slice(completed, func(i, j int) bool { return completed[i].CheckIn.After(completed[j].CheckIn) })
	return completed, nil
}

func (m *Memory) UpsertDailyRevenue(_ context.Context, date string, delta float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return m.Err
	}
	m.revenue[date] += delta
	return nil
}

func (m *Memory) QueryRevenueHistory(_ context.Context) ([]RevenueEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}
	entries := make([]RevenueEntry, 0, len(m.revenue))
	for date, revenue := range m.revenue {
		entries = append(entries, RevenueEntry{Date: date, Revenue: revenue})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Date < entries[j].Date })
	return entries, nil
}
