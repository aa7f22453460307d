package models

// DailyRevenue 每日營收累計，一個日期一筆
// 此表是由 parking_session 推導出的彙總資料，可隨時重建
type DailyRevenue struct {
	Date    string  `json:"date" gorm:"primaryKey;type:date"`                 // 結帳日期（YYYY-MM-DD）
	Revenue float64 `json:"revenue" gorm:"type:decimal(12,2);not null;default:0"` // 當日累計營收
}

func (DailyRevenue) TableName() string {
	return "daily_revenue"
}
