package store

import (
	"context"
	"errors"
	"time"

	"parkngo/models"
)

// ErrUnavailable 資料庫無法連線或操作逾時
var ErrUnavailable = errors.New("persistence unavailable")

// ErrSessionClosed 欲更新的 session 已經結帳過
var ErrSessionClosed = errors.New("session already closed")

// ActiveSession 重建車位表所需的最小欄位
type ActiveSession struct {
	SessionID uint
	Slot      int
	CarNumber string
	CheckIn   time.Time
}

// RevenueEntry 單日營收
type RevenueEntry struct {
	Date    string  `json:"date"`
	Revenue float64 `json:"revenue"`
}

// Store 持久層協作者介面，核心邏輯只透過此介面存取資料庫
type Store interface {
	// InsertSession 寫入一筆新的停車紀錄，回傳 session_id
	InsertSession(ctx context.Context, carNumber string, slot int, checkIn time.Time) (uint, error)
	// UpdateSessionOnCheckout 結帳時一次寫入 check_out、cost、receipt_path
	// 若該筆已經結帳，回傳 ErrSessionClosed
	UpdateSessionOnCheckout(ctx context.Context, sessionID uint, checkOut time.Time, cost float64, receiptPath string) error
	// QueryActiveSessions 查詢所有尚未結帳的停車紀錄
	QueryActiveSessions(ctx context.Context) ([]ActiveSession, error)
	// QueryCompletedSessions 查詢已結帳的歷史紀錄，依進場時間由新到舊
	QueryCompletedSessions(ctx context.Context) ([]models.ParkingSession, error)
	// UpsertDailyRevenue 累加某日營收，該日尚無紀錄則建立
	UpsertDailyRevenue(ctx context.Context, date string, delta float64) error
	// QueryRevenueHistory 查詢每日營收，依日期由舊到新
	QueryRevenueHistory(ctx context.Context) ([]RevenueEntry, error)
}
