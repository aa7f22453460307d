package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"parkngo/models"
	"parkngo/store"
)

// ParkingService 進出場流程的調度者：
// 車位分配 -> 費用計算 -> 收據產生 -> 結帳落盤 -> 營收入帳
type ParkingService struct {
	registry *SlotRegistry
	ledger   *RevenueLedger
	receipts ReceiptGenerator
	store    store.Store
	now      func() time.Time
}

func NewParkingService(registry *SlotRegistry, ledger *RevenueLedger, receipts ReceiptGenerator, st store.Store) *ParkingService {
	return &ParkingService{
		registry: registry,
		ledger:   ledger,
		receipts: receipts,
		store:    st,
		now:      time.Now,
	}
}

type ParkResult struct {
	Slot      int       `json:"slot"`
	CarNumber string    `json:"car_number"`
	CheckIn   time.Time `json:"check_in"`
}

type CheckoutResult struct {
	Slot        int       `json:"slot"`
	CarNumber   string    `json:"car_number"`
	CheckIn     time.Time `json:"check_in"`
	CheckOut    time.Time `json:"check_out"`
	Hours       int       `json:"hours"`
	Minutes     int       `json:"minutes"`
	Cost        float64   `json:"cost"`
	ReceiptPath string    `json:"receipt_path,omitempty"`
	// ReceiptUnavailable 結帳成功但收據產生失敗
	ReceiptUnavailable bool `json:"receipt_unavailable,omitempty"`
	// Duplicate 重複送出的結帳，內容是前一次的結果
	Duplicate bool `json:"duplicate,omitempty"`
}

// Park 車輛進場：分配最小編號的空車位
func (s *ParkingService) Park(ctx context.Context, carNumber string) (*ParkResult, error) {
	slot, checkIn, err := s.registry.Allocate(ctx, carNumber)
	if err != nil {
		return nil, err
	}
	return &ParkResult{Slot: slot, CarNumber: carNumber, CheckIn: checkIn}, nil
}

// Checkout 車輛離場：找到停車中紀錄、計費、開收據、結帳、入帳
// 收據失敗只降級不擋結帳；營收入帳失敗會回傳錯誤但不回滾已完成的結帳
func (s *ParkingService) Checkout(ctx context.Context, carNumber string) (*CheckoutResult, error) {
	session, err := s.registry.FindActive(carNumber)
	if errors.Is(err, ErrAlreadyFinalized) {
		return s.duplicateResult(carNumber)
	}
	if err != nil {
		return nil, err
	}

	checkOut := s.now()
	hours, minutes, billable := BillableHours(session.CheckIn, checkOut)
	cost := CalculateCost(billable)

	receiptPath, receiptErr := s.receipts.Generate(session.Slot, carNumber, session.CheckIn, checkOut, cost)
	if receiptErr != nil {
		log.Printf("Receipt generation failed for car %s, continuing checkout: %v", carNumber, receiptErr)
		receiptPath = ""
	}

	if err := s.registry.Finalize(ctx, carNumber, checkOut, cost, receiptPath); err != nil {
		if errors.Is(err, ErrAlreadyFinalized) {
			return s.duplicateResult(carNumber)
		}
		return nil, err
	}

	if err := s.ledger.Record(ctx, checkOut.Format("2006-01-02"), cost); err != nil {
		// 結帳已成立，session 是事實來源；帳本寫入失敗要讓呼叫端看到並重試
		return nil, fmt.Errorf("checkout completed but revenue not recorded: %w", err)
	}

	return &CheckoutResult{
		Slot:               session.Slot,
		CarNumber:          carNumber,
		CheckIn:            session.CheckIn,
		CheckOut:           checkOut,
		Hours:              hours,
		Minutes:            minutes,
		Cost:               cost,
		ReceiptPath:        receiptPath,
		ReceiptUnavailable: receiptErr != nil,
	}, nil
}

// duplicateResult 以前一次的結帳結果回覆重複送出的請求
func (s *ParkingService) duplicateResult(carNumber string) (*CheckoutResult, error) {
	prior, ok := s.registry.LastFinalized(carNumber)
	if !ok {
		return nil, fmt.Errorf("car %s: %w", carNumber, ErrVehicleNotFound)
	}
	hours, minutes, _ := BillableHours(prior.CheckIn, prior.CheckOut)
	return &CheckoutResult{
		Slot:               prior.Slot,
		CarNumber:          prior.CarNumber,
		CheckIn:            prior.CheckIn,
		CheckOut:           prior.CheckOut,
		Hours:              hours,
		Minutes:            minutes,
		Cost:               prior.Cost,
		ReceiptPath:        prior.ReceiptPath,
		ReceiptUnavailable: prior.ReceiptPath == "",
		Duplicate:          true,
	}, nil
}

// Slots 車位看板
func (s *ParkingService) Slots() []models.SlotResponse {
	return s.registry.Snapshot()
}

// RevenueHistory 每日營收走勢，由舊到新
func (s *ParkingService) RevenueHistory(ctx context.Context) ([]store.RevenueEntry, error) {
	return s.ledger.History(ctx)
}

// ParkedHistory 已結帳的歷史停車紀錄，由新到舊
func (s *ParkingService) ParkedHistory(ctx context.Context) ([]models.SessionResponse, error) {
	sessions, err := s.store.QueryCompletedSessions(ctx)
	if err != nil {
		return nil, fmt.Errorf("parked history: %w", err)
	}
	responses := make([]models.SessionResponse, len(sessions))
	for i := range sessions {
		responses[i] = sessions[i].ToResponse()
	}
	return responses, nil
}
