package handlers

import (
	"errors"
	"log"
	"net/http"
	"os"
	"path/filepath"

	"parkngo/services"
	"parkngo/store"

	"github.com/gin-gonic/gin"
)

// ParkingHandler 進出場與車位看板的 HTTP 介面
type ParkingHandler struct {
	parking    *services.ParkingService
	receiptDir string
}

func NewParkingHandler(parking *services.ParkingService, receiptDir string) *ParkingHandler {
	return &ParkingHandler{parking: parking, receiptDir: receiptDir}
}

// ParkInput 進場與結帳共用的輸入
type ParkInput struct {
	CarNumber string `json:"car_number" binding:"required,max=20"`
}

// Park 車輛進場
func (h *ParkingHandler) Park(c *gin.Context) {
	var input ParkInput
	if err := c.ShouldBindJSON(&input); err != nil {
		log.Printf("Invalid input data: %v", err)
		ErrorResponse(c, http.StatusBadRequest, "無效的輸入資料", "請提供車牌號碼", "ERR_INVALID_INPUT")
		return
	}

	result, err := h.parking.Park(c.Request.Context(), input.CarNumber)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNoSlotsAvailable):
			ErrorResponse(c, http.StatusConflict, "目前沒有空車位，請稍後再試", err.Error(), "ERR_NO_SLOTS_AVAILABLE")
		case errors.Is(err, services.ErrVehicleAlreadyParked):
			ErrorResponse(c, http.StatusConflict, "此車牌已在場內", err.Error(), "ERR_ALREADY_PARKED")
		case errors.Is(err, store.ErrUnavailable), errors.Is(err, services.ErrNotReconciled):
			ErrorResponse(c, http.StatusServiceUnavailable, "系統暫時無法受理，請稍後再試", err.Error(), "ERR_PERSISTENCE_UNAVAILABLE")
		default:
			log.Printf("Park failed for car %s: %v", input.CarNumber, err)
			ErrorResponse(c, http.StatusInternalServerError, "進場失敗", err.Error(), "ERR_INTERNAL")
		}
		return
	}

	SuccessResponse(c, http.StatusOK, "車位分配成功", result)
}

// Checkout 車輛離場結帳
func (h *ParkingHandler) Checkout(c *gin.Context) {
	var input ParkInput
	if err := c.ShouldBindJSON(&input); err != nil {
		log.Printf("Invalid input data: %v", err)
		ErrorResponse(c, http.StatusBadRequest, "無效的輸入資料", "請提供車牌號碼", "ERR_INVALID_INPUT")
		return
	}

	result, err := h.parking.Checkout(c.Request.Context(), input.CarNumber)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrVehicleNotFound):
			ErrorResponse(c, http.StatusNotFound, "查無此車牌的停車紀錄", err.Error(), "ERR_VEHICLE_NOT_FOUND")
		case errors.Is(err, store.ErrUnavailable), errors.Is(err, services.ErrNotReconciled):
			ErrorResponse(c, http.StatusServiceUnavailable, "系統暫時無法受理，請稍後再試", err.Error(), "ERR_PERSISTENCE_UNAVAILABLE")
		default:
			log.Printf("Checkout failed for car %s: %v", input.CarNumber, err)
			ErrorResponse(c, http.StatusInternalServerError, "結帳失敗", err.Error(), "ERR_INTERNAL")
		}
		return
	}

	message := "結帳成功"
	if result.Duplicate {
		message = "此筆停車已結帳，回覆前次結果"
	} else if result.ReceiptUnavailable {
		message = "結帳成功，但收據暫時無法產生"
	}
	SuccessResponse(c, http.StatusOK, message, result)
}

// Slots 車位看板
func (h *ParkingHandler) Slots(c *gin.Context) {
	SuccessResponse(c, http.StatusOK, "查詢成功", h.parking.Slots())
}

// DownloadReceipt 下載 PDF 收據
func (h *ParkingHandler) DownloadReceipt(c *gin.Context) {
	// 只取檔名，擋掉路徑穿越
	name := filepath.Base(c.Param("name"))
	if name == "." || name == ".." || filepath.Ext(name) != ".pdf" {
		ErrorResponse(c, http.StatusBadRequest, "無效的收據檔名", "invalid receipt name", "ERR_INVALID_RECEIPT_NAME")
		return
	}

	path := filepath.Join(h.receiptDir, name)
	if _, err := os.Stat(path); err != nil {
		ErrorResponse(c, http.StatusNotFound, "收據不存在", "receipt not found", "ERR_RECEIPT_NOT_FOUND")
		return
	}

	c.FileAttachment(path, name)
}
