package models

import "time"

// ParkingSession 一輛車從進場到離場的完整停車紀錄
// check_out、cost、receipt_path 三個欄位在結帳時一次寫入，之後不再變動
type ParkingSession struct {
	SessionID   uint       `json:"session_id" gorm:"primaryKey;autoIncrement;type:INT UNSIGNED"`
	CarNumber   string     `json:"car_number" gorm:"index;type:varchar(20);not null" binding:"required,max=20"` // 車牌號碼
	Slot        int        `json:"slot" gorm:"index;not null;type:INT"`                                         // 分配到的車位編號
	CheckIn     time.Time  `json:"check_in" gorm:"type:datetime;not null"`                                      // 進場時間
	CheckOut    *time.Time `json:"check_out" gorm:"type:datetime;default:null"`                                 // 離場時間（停車中為 NULL）
	Cost        *float64   `json:"cost" gorm:"type:decimal(10,2);default:null"`                                 // 結算費用
	ReceiptPath *string    `json:"receipt_path" gorm:"type:varchar(255);default:null"`                          // 收據檔案路徑
	Date        string     `json:"date" gorm:"index;type:date;not null"`                                        // 進場日期（YYYY-MM-DD）
}

func (ParkingSession) TableName() string {
	return "parking_session"
}

// Active 回傳此筆紀錄是否仍在停車中
func (s *ParkingSession) Active() bool {
	return s.CheckOut == nil
}

type SessionResponse struct {
	SessionID   uint       `json:"session_id"`
	CarNumber   string     `json:"car_number"`
	Slot        int        `json:"slot"`
	CheckIn     time.Time  `json:"check_in"`
	CheckOut    *time.Time `json:"check_out"`
	Cost        *float64   `json:"cost"`
	ReceiptPath *string    `json:"receipt_path"`
}

func (s *ParkingSession) ToResponse() SessionResponse {
	return SessionResponse{
		SessionID:   s.SessionID,
		CarNumber:   s.CarNumber,
		Slot:        s.Slot,
		CheckIn:     s.CheckIn,
		CheckOut:    s.CheckOut,
		Cost:        s.Cost,
		ReceiptPath: s.ReceiptPath,
	}
}

// SlotResponse 車位看板的單格狀態
type SlotResponse struct {
	Slot      int    `json:"slot"`
	Occupied  bool   `json:"occupied"`
	CarNumber string `json:"car_number,omitempty"`
}
