package services

import "errors"

var (
	// ErrNoSlotsAvailable 所有車位都被佔用
	ErrNoSlotsAvailable = errors.New("no slots available")
	// ErrVehicleNotFound 查無此車牌的停車中紀錄
	ErrVehicleNotFound = errors.New("vehicle not found")
	// ErrVehicleAlreadyParked 同一車牌已佔用車位，不可重複進場
	ErrVehicleAlreadyParked = errors.New("vehicle already parked")
	// ErrAlreadyFinalized 同一筆停車紀錄被重複結帳
	ErrAlreadyFinalized = errors.New("session already finalized")
	// ErrReceiptGeneration 收據產生失敗，不影響結帳本身
	ErrReceiptGeneration = errors.New("receipt generation failed")
	// ErrNotReconciled 車位表尚未從資料庫重建完成，不可受理請求
	ErrNotReconciled = errors.New("registry not reconciled")
)
