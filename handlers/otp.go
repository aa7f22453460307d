package handlers

import (
	"log"
	"net/http"
	"regexp"

	"parkngo/services"

	"github.com/gin-gonic/gin"
)

// 電話驗證字串：可帶國碼的 10 到 15 位數字
var phoneRegex = regexp.MustCompile(`^\+?[0-9]{10,15}$`)

// OTPHandler 簡訊驗證碼發送
type OTPHandler struct {
	otp *services.OTPService
}

func NewOTPHandler(otp *services.OTPService) *OTPHandler {
	return &OTPHandler{otp: otp}
}

type SendOTPInput struct {
	Phone string `json:"phone" binding:"required"`
}

// Send 發送驗證碼到指定電話
func (h *OTPHandler) Send(c *gin.Context) {
	var input SendOTPInput
	if err := c.ShouldBindJSON(&input); err != nil {
		log.Printf("Invalid input data: %v", err)
		ErrorResponse(c, http.StatusBadRequest, "無效的輸入資料", "請提供電話號碼", "ERR_INVALID_INPUT")
		return
	}

	if !phoneRegex.MatchString(input.Phone) {
		ErrorResponse(c, http.StatusBadRequest, "請提供有效的電話號碼", "phone must be 10-15 digits", "ERR_INVALID_PHONE")
		return
	}

	if err := h.otp.Send(c.Request.Context(), input.Phone); err != nil {
		log.Printf("Failed to send OTP to %s: %v", input.Phone, err)
		ErrorResponse(c, http.StatusBadGateway, "驗證碼發送失敗，請稍後再試", err.Error(), "ERR_OTP_SEND_FAILED")
		return
	}

	SuccessResponse(c, http.StatusOK, "驗證碼已發送", nil)
}
