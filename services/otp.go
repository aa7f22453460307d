package services

import (
	"context"
	"crypto/rand"
	"fmt"
	"log"
	"math/big"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
)

// Notifier 簡訊協作者：把一段文字送到指定的電話號碼
type Notifier interface {
	Send(ctx context.Context, phone, body string) error
}

// TwilioNotifier 透過 Twilio 發送簡訊
type TwilioNotifier struct {
	client *twilio.RestClient
	from   string
}

func NewTwilioNotifier(accountSID, authToken, from string) *TwilioNotifier {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return &TwilioNotifier{client: client, from: from}
}

func (n *TwilioNotifier) Send(_ context.Context, phone, body string) error {
	params := &openapi.CreateMessageParams{}
	params.SetTo(phone)
	params.SetFrom(n.from)
	params.SetBody(body)

	if _, err := n.client.Api.CreateMessage(params); err != nil {
		log.Printf("Failed to send SMS to %s: %v", phone, err)
		return fmt.Errorf("send sms: %w", err)
	}
	return nil
}

// LogNotifier 未設定 Twilio 憑證時的替代品，只把驗證碼寫進日誌
type LogNotifier struct{}

func (LogNotifier) Send(_ context.Context, phone, body string) error {
	log.Printf("SMS to %s: %s", phone, body)
	return nil
}

// OTPService 一次性驗證碼：產生、限時保存、驗證
// 驗證碼存在帶過期時間的 cache 裡，到期自動失效
type OTPService struct {
	codes    *cache.Cache
	notifier Notifier
}

const otpTTL = 5 * time.Minute

func NewOTPService(notifier Notifier) *OTPService {
	return &OTPService{
		codes:    cache.New(otpTTL, 10*time.Minute),
		notifier: notifier,
	}
}

// Send 產生六位數驗證碼並發送到指定電話
func (s *OTPService) Send(ctx context.Context, phone string) error {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return fmt.Errorf("generate otp: %w", err)
	}
	code := fmt.Sprintf("%06d", n.Int64()+100000)

	body := fmt.Sprintf("Your ParkNGo OTP is: %s. Do not share this OTP with anyone else.", code)
	if err := s.notifier.Send(ctx, phone, body); err != nil {
		return err
	}

	s.codes.Set(phone, code, cache.DefaultExpiration)
	log.Printf("OTP issued for %s, valid %s", phone, otpTTL)
	return nil
}

// Verify 核對驗證碼，成功即作廢，同一碼不能用第二次
func (s *OTPService) Verify(phone, code string) bool {
	stored, found := s.codes.Get(phone)
	if !found || stored.(string) != code {
		return false
	}
	s.codes.Delete(phone)
	return true
}
