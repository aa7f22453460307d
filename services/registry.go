package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"parkngo/models"
	"parkngo/store"
)

// FinalizedResult 一次結帳的最終結果，重複送出結帳時原樣回覆
type FinalizedResult struct {
	SessionID   uint
	Slot        int
	CarNumber   string
	CheckIn     time.Time
	CheckOut    time.Time
	Cost        float64
	ReceiptPath string
}

// SlotRegistry 車位分配的唯一權威：固定大小的車位表加上進出場的狀態轉移
// 整張表共用一把鎖；先寫資料庫、成功後才改記憶體，失敗時車位表不留下半套狀態
type SlotRegistry struct {
	mu        sync.Mutex
	capacity  int
	slots     []*models.ParkingSession    // slots[i] 對應 i+1 號車位，nil 表示空位
	byCar     map[string]*models.ParkingSession
	finalized map[string]FinalizedResult // 車牌 -> 最後一次結帳結果，再次進場時清除
	store     store.Store
	ready     bool
	now       func() time.Time
}

func NewSlotRegistry(capacity int, st store.Store) *SlotRegistry {
	return &SlotRegistry{
		capacity:  capacity,
		slots:     make([]*models.ParkingSession, capacity),
		byCar:     make(map[string]*models.ParkingSession),
		finalized: make(map[string]FinalizedResult),
		store:     st,
		now:       time.Now,
	}
}

func (r *SlotRegistry) Capacity() int {
	return r.capacity
}

// Reconcile 從資料庫載入所有停車中的紀錄重建車位表
// 必須在開始受理請求前成功執行一次，否則其他操作一律拒絕
func (r *SlotRegistry) Reconcile(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	active, err := r.store.QueryActiveSessions(ctx)
	if err != nil {
		return fmt.Errorf("reconcile: %w", err)
	}

	r.slots = make([]*models.ParkingSession, r.capacity)
	r.byCar = make(map[string]*models.ParkingSession)
	for _, row := range active {
		if row.Slot < 1 || row.Slot > r.capacity {
			log.Printf("Reconcile: session %d has slot %d outside [1..%d], skipping", row.SessionID, row.Slot, r.capacity)
			continue
		}
		if r.slots[row.Slot-1] != nil {
			log.Printf("Reconcile: slot %d has more than one active session, keeping session %d", row.Slot, r.slots[row.Slot-1].SessionID)
			continue
		}
		session := &models.ParkingSession{
			SessionID: row.SessionID,
			CarNumber: row.CarNumber,
			Slot:      row.Slot,
			CheckIn:   row.CheckIn,
			Date:      row.CheckIn.Format("2006-01-02"),
		}
		r.slots[row.Slot-1] = session
		r.byCar[row.CarNumber] = session
	}

	r.ready = true
	log.Printf("Reconcile completed: %d of %d slots occupied", len(r.byCar), r.capacity)
	return nil
}

// Allocate 依編號由小到大找出第一個空位並分配給車牌
// 資料庫寫入成功前不會動到車位表，寫入失敗不會產生幽靈佔位
func (r *SlotRegistry) Allocate(ctx context.Context, carNumber string) (int, time.Time, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.ready {
		return 0, time.Time{}, ErrNotReconciled
	}
	if _, parked := r.byCar[carNumber]; parked {
		return 0, time.Time{}, fmt.Errorf("car %s: %w", carNumber, ErrVehicleAlreadyParked)
	}

	slot := 0
	for i, occupant := range r.slots {
		if occupant == nil {
			slot = i + 1
			break
		}
	}
	if slot == 0 {
		return 0, time.Time{}, ErrNoSlotsAvailable
	}

	checkIn := r.now()
	sessionID, err := r.store.InsertSession(ctx, carNumber, slot, checkIn)
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("allocate slot %d: %w", slot, err)
	}

	session := &models.ParkingSession{
		SessionID: sessionID,
		CarNumber: carNumber,
		Slot:      slot,
		CheckIn:   checkIn,
		Date:      checkIn.Format("2006-01-02"),
	}
	r.slots[slot-1] = session
	r.byCar[carNumber] = session
	delete(r.finalized, carNumber)

	log.Printf("Allocated slot %d to car %s (session %d)", slot, carNumber, sessionID)
	return slot, checkIn, nil
}

// FindActive 結帳第一階段：回傳車牌目前的停車中紀錄副本
// 費用計算與收據產生發生在這次讀取和 Finalize 之間
func (r *SlotRegistry) FindActive(carNumber string) (models.ParkingSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.ready {
		return models.ParkingSession{}, ErrNotReconciled
	}
	session, ok := r.byCar[carNumber]
	if !ok {
		if _, done := r.finalized[carNumber]; done {
			return models.ParkingSession{}, fmt.Errorf("car %s: %w", carNumber, ErrAlreadyFinalized)
		}
		return models.ParkingSession{}, fmt.Errorf("car %s: %w", carNumber, ErrVehicleNotFound)
	}
	return *session, nil
}

// Finalize 結帳第二階段：寫入離場時間、費用與收據後釋放車位
// 先更新資料庫，成功才清車位；同一筆重複結帳回傳 ErrAlreadyFinalized
func (r *SlotRegistry) Finalize(ctx context.Context, carNumber string, checkOut time.Time, cost float64, receiptPath string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.ready {
		return ErrNotReconciled
	}
	session, ok := r.byCar[carNumber]
	if !ok {
		if _, done := r.finalized[carNumber]; done {
			return fmt.Errorf("car %s: %w", carNumber, ErrAlreadyFinalized)
		}
		return fmt.Errorf("car %s: %w", carNumber, ErrVehicleNotFound)
	}

	err := r.store.UpdateSessionOnCheckout(ctx, session.SessionID, checkOut, cost, receiptPath)
	if errors.Is(err, store.ErrSessionClosed) {
		// 資料庫那筆已被別的流程結掉，同步清掉記憶體狀態
		r.clearLocked(session, checkOut, cost, receiptPath)
		return fmt.Errorf("car %s: %w", carNumber, ErrAlreadyFinalized)
	}
	if err != nil {
		return fmt.Errorf("finalize car %s: %w", carNumber, err)
	}

	out := checkOut
	c := cost
	path := receiptPath
	session.CheckOut = &out
	session.Cost = &c
	session.ReceiptPath = &path
	r.clearLocked(session, checkOut, cost, receiptPath)

	log.Printf("Finalized session %d: car %s left slot %d, cost %.2f", session.SessionID, carNumber, session.Slot, cost)
	return nil
}

// clearLocked 釋放車位並記下結帳結果，呼叫端必須已持有鎖
func (r *SlotRegistry) clearLocked(session *models.ParkingSession, checkOut time.Time, cost float64, receiptPath string) {
	r.slots[session.Slot-1] = nil
	delete(r.byCar, session.CarNumber)
	r.finalized[session.CarNumber] = FinalizedResult{
		SessionID:   session.SessionID,
		Slot:        session.Slot,
		CarNumber:   session.CarNumber,
		CheckIn:     session.CheckIn,
		CheckOut:    checkOut,
		Cost:        cost,
		ReceiptPath: receiptPath,
	}
}

// LastFinalized 查詢車牌最近一次的結帳結果，用來回覆重複送出的結帳
func (r *SlotRegistry) LastFinalized(carNumber string) (FinalizedResult, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	result, ok := r.finalized[carNumber]
	return result, ok
}

// Snapshot 依車位編號輸出目前的佔用狀態
func (r *SlotRegistry) Snapshot() []models.SlotResponse {
	r.mu.Lock()
	defer r.mu.Unlock()

	board := make([]models.SlotResponse, r.capacity)
	for i, occupant := range r.slots {
		board[i] = models.SlotResponse{Slot: i + 1}
		if occupant != nil {
			board[i].Occupied = true
			board[i].CarNumber = occupant.CarNumber
		}
	}
	return board
}
