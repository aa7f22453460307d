package store

import (
	"context"
	"fmt"
	"log"
	"time"

	"parkngo/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore Store 的 MySQL 實作，每次呼叫都套用逾時上限
type GormStore struct {
	db      *gorm.DB
	timeout time.Duration
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{
		db:      db,
		timeout: 5 * time.Second,
	}
}

// wrapDBError 將底層資料庫錯誤統一轉成 ErrUnavailable，呼叫端不需要認識 driver 錯誤
func wrapDBError(op string, err error) error {
	log.Printf("Store operation %s failed: %v", op, err)
	return fmt.Errorf("%s: %v: %w", op, err, ErrUnavailable)
}

func (s *GormStore) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}

func (s *GormStore) InsertSession(ctx context.Context, carNumber string, slot int, checkIn time.Time) (uint, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	session := models.ParkingSession{
		CarNumber: carNumber,
		Slot:      slot,
		CheckIn:   checkIn,
		Date:      checkIn.Format("2006-01-02"),
	}
	if err := s.db.WithContext(ctx).Create(&session).Error; err != nil {
		return 0, wrapDBError("insert session", err)
	}
	return session.SessionID, nil
}

func (s *GormStore) UpdateSessionOnCheckout(ctx context.Context, sessionID uint, checkOut time.Time, cost float64, receiptPath string) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	// check_out IS NULL 條件保證同一筆 session 只會被結帳一次
	result := s.db.WithContext(ctx).
		Model(&models.ParkingSession{}).
		Where("session_id = ? AND check_out IS NULL", sessionID).
		Updates(map[string]interface{}{
			"check_out":    checkOut,
			"cost":         cost,
			"receipt_path": receiptPath,
		})
	if result.Error != nil {
		return wrapDBError("update session on checkout", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("session %d: %w", sessionID, ErrSessionClosed)
	}
	return nil
}

func (s *GormStore) QueryActiveSessions(ctx context.Context) ([]ActiveSession, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var sessions []models.ParkingSession
	if err := s.db.WithContext(ctx).
		Where("check_out IS NULL").
		Order("slot ASC").
		Find(&sessions).Error; err != nil {
		return nil, wrapDBError("query active sessions", err)
	}

	active := make([]ActiveSession, len(sessions))
	for i, session := range sessions {
		active[i] = ActiveSession{
			SessionID: session.SessionID,
			Slot:      session.Slot,
			CarNumber: session.CarNumber,
			CheckIn:   session.CheckIn,
		}
	}
	return active, nil
}

func (s *GormStore) QueryCompletedSessions(ctx context.Context) ([]models.ParkingSession, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var sessions []models.ParkingSession
	if err := s.db.WithContext(ctx).
		Where("check_out IS NOT NULL").
		Order("check_in DESC").
		Find(&sessions).Error; err != nil {
		return nil, wrapDBError("query completed sessions", err)
	}
	return sessions, nil
}

func (s *GormStore) UpsertDailyRevenue(ctx context.Context, date string, delta float64) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	// 用資料庫端的原子累加取代先查再寫，避免同日同時結帳互相蓋掉
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "date"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"revenue": gorm.Expr("revenue + ?", delta)}),
	}).Create(&models.DailyRevenue{Date: date, Revenue: delta}).Error
	if err != nil {
		return wrapDBError("upsert daily revenue", err)
	}
	return nil
}

func (s *GormStore) QueryRevenueHistory(ctx context.Context) ([]RevenueEntry, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var records []models.DailyRevenue
	if err := s.db.WithContext(ctx).
		Order("date ASC").
		Find(&records).Error; err != nil {
		return nil, wrapDBError("query revenue history", err)
	}

	entries := make([]RevenueEntry, len(records))
	for i, record := range records {
		entries[i] = RevenueEntry{Date: record.Date, Revenue: record.Revenue}
	}
	return entries, nil
}
