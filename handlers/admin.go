package handlers

import (
	"errors"
	"log"
	"net/http"

	"parkngo/services"
	"parkngo/store"

	"github.com/gin-gonic/gin"
)

// AdminHandler 管理員註冊、登入與儀表板
type AdminHandler struct {
	admins  *services.AdminService
	otp     *services.OTPService
	parking *services.ParkingService
}

func NewAdminHandler(admins *services.AdminService, otp *services.OTPService, parking *services.ParkingService) *AdminHandler {
	return &AdminHandler{admins: admins, otp: otp, parking: parking}
}

// RegisterInput 註冊需先通過簡訊驗證碼
type RegisterInput struct {
	Username string `json:"username" binding:"required,max=50"`
	Password string `json:"password" binding:"required"`
	Phone    string `json:"phone" binding:"required"`
	OTP      string `json:"otp" binding:"required"`
}

// Register 管理員註冊
func (h *AdminHandler) Register(c *gin.Context) {
	var input RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		log.Printf("Invalid input data: %v", err)
		ErrorResponse(c, http.StatusBadRequest, "無效的輸入資料", "請提供帳號、密碼、電話與驗證碼", "ERR_INVALID_INPUT")
		return
	}

	if !h.otp.Verify(input.Phone, input.OTP) {
		ErrorResponse(c, http.StatusUnauthorized, "驗證碼錯誤或已過期", "invalid or expired OTP", "ERR_INVALID_OTP")
		return
	}

	admin, err := h.admins.Register(input.Username, input.Password, input.Phone)
	if err != nil {
		log.Printf("Failed to register admin %s: %v", input.Username, err)
		ErrorResponse(c, http.StatusBadRequest, "註冊失敗", err.Error(), "ERR_REGISTER_FAILED")
		return
	}

	SuccessResponse(c, http.StatusOK, "管理員註冊成功", admin.ToResponse())
}

// LoginInput 登入輸入
type LoginInput struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login 管理員登入並取得 token
func (h *AdminHandler) Login(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		log.Printf("Invalid input data: %v", err)
		ErrorResponse(c, http.StatusBadRequest, "無效的輸入資料", "請提供帳號與密碼", "ERR_INVALID_INPUT")
		return
	}

	token, admin, err := h.admins.Login(input.Username, input.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			ErrorResponse(c, http.StatusUnauthorized, "帳號或密碼錯誤", err.Error(), "ERR_INVALID_CREDENTIALS")
			return
		}
		log.Printf("Login failed for admin %s: %v", input.Username, err)
		ErrorResponse(c, http.StatusInternalServerError, "登入失敗", err.Error(), "ERR_INTERNAL")
		return
	}

	SuccessResponse(c, http.StatusOK, "登入成功", gin.H{
		"token": token,
		"admin": admin.ToResponse(),
	})
}

// Dashboard 儀表板資料：車位佔用、每日營收走勢、歷史停車紀錄
func (h *AdminHandler) Dashboard(c *gin.Context) {
	ctx := c.Request.Context()

	revenue, err := h.parking.RevenueHistory(ctx)
	if err != nil {
		h.dashboardError(c, err)
		return
	}

	history, err := h.parking.ParkedHistory(ctx)
	if err != nil {
		h.dashboardError(c, err)
		return
	}

	var today float64
	if len(revenue) > 0 {
		today = revenue[len(revenue)-1].Revenue
	}

	SuccessResponse(c, http.StatusOK, "查詢成功", gin.H{
		"slots":          h.parking.Slots(),
		"daily_revenue":  today,
		"revenue_trend":  revenue,
		"parked_history": history,
	})
}

// RevenueHistory 每日營收走勢
func (h *AdminHandler) RevenueHistory(c *gin.Context) {
	revenue, err := h.parking.RevenueHistory(c.Request.Context())
	if err != nil {
		h.dashboardError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "查詢成功", revenue)
}

func (h *AdminHandler) dashboardError(c *gin.Context, err error) {
	if errors.Is(err, store.ErrUnavailable) {
		ErrorResponse(c, http.StatusServiceUnavailable, "系統暫時無法受理，請稍後再試", err.Error(), "ERR_PERSISTENCE_UNAVAILABLE")
		return
	}
	log.Printf("Dashboard query failed: %v", err)
	ErrorResponse(c, http.StatusInternalServerError, "查詢失敗", err.Error(), "ERR_INTERNAL")
}
