package services

import "time"

// 停車費率（單位：元）
const (
	BaseFee      = 50.0 // 第 1 小時起跳價
	MidTierRate  = 40.0 // 第 2 到第 5 小時每小時費率
	LongTierRate = 30.0 // 第 6 小時起每小時費率
)

// CalculateCost 依停車時數計算三段式費用
// 邊界值（恰好 1 或 5 小時）算在較低的一段
func CalculateCost(hours float64) float64 {
	switch {
	case hours <= 1:
		return BaseFee
	case hours <= 5:
		return BaseFee + (hours-1)*MidTierRate
	default:
		return BaseFee + 4*MidTierRate + (hours-5)*LongTierRate
	}
}

// BillableHours 把停車時長換算成計費時數：整數小時加上分鐘除以 60
// 不足一分鐘的秒數不計費
func BillableHours(checkIn, checkOut time.Time) (hours int, minutes int, billable float64) {
	seconds := int(checkOut.Sub(checkIn).Seconds())
	if seconds < 0 {
		seconds = 0
	}
	hours = seconds / 3600
	minutes = (seconds % 3600) / 60
	billable = float64(hours) + float64(minutes)/60.0
	return hours, minutes, billable
}
