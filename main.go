package main

import (
	"context"
	"log"
	"os"
	"strconv"
	"time"

	"parkngo/database"
	"parkngo/handlers"
	"parkngo/models"
	"parkngo/routes"
	"parkngo/services"
	"parkngo/store"
	"parkngo/utils"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

const defaultCapacity = 20

func main() {
	// 載入 .env 檔案
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found, using default environment variables: %v", err)
	}

	// 初始化 JWTSecret
	utils.InitJWTSecret()

	// 初始化資料庫
	database.InitDB()

	// 執行資料庫遷移
	database.DB.AutoMigrate(
		&models.ParkingSession{},
		&models.DailyRevenue{},
		&models.Admin{},
	)
	log.Println("Database migration completed")

	// 車位數量
	capacity := defaultCapacity
	if raw := os.Getenv("PARKING_CAPACITY"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			log.Fatalf("Invalid PARKING_CAPACITY %q", raw)
		}
		capacity = parsed
	}

	// 組裝核心元件
	st := store.NewGormStore(database.DB)
	registry := services.NewSlotRegistry(capacity, st)
	ledger := services.NewRevenueLedger(st)

	receiptDir := os.Getenv("RECEIPT_DIR")
	if receiptDir == "" {
		receiptDir = "generated_pdfs"
	}
	receipts, err := services.NewPDFReceiptService(receiptDir)
	if err != nil {
		log.Fatalf("Failed to initialize receipt service: %v", err)
	}

	parkingService := services.NewParkingService(registry, ledger, receipts, st)
	adminService := services.NewAdminService(database.DB)

	// 簡訊服務：沒有 Twilio 憑證時退回日誌輸出
	var notifier services.Notifier
	accountSID := os.Getenv("TWILIO_ACCOUNT_SID")
	if accountSID != "" {
		notifier = services.NewTwilioNotifier(accountSID, os.Getenv("TWILIO_AUTH_TOKEN"), os.Getenv("TWILIO_PHONE_NUMBER"))
		log.Println("Twilio notifier initialized")
	} else {
		notifier = services.LogNotifier{}
		log.Println("TWILIO_ACCOUNT_SID not set, OTP codes will be logged instead of sent")
	}
	otpService := services.NewOTPService(notifier)

	// 從資料庫重建車位表，成功前不開放服務
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := registry.Reconcile(ctx); err != nil {
		cancel()
		log.Fatalf("Failed to reconcile slot registry: %v", err)
	}
	cancel()

	// 設置 Gin 模式為 release
	ginMode := os.Getenv("GIN_MODE")
	if ginMode == "" {
		ginMode = gin.ReleaseMode
	}
	gin.SetMode(ginMode)
	log.Printf("Gin mode set to %s", ginMode)

	// 初始化 Gin 路由器
	r := gin.Default()

	parkingHandler := handlers.NewParkingHandler(parkingService, receiptDir)
	adminHandler := handlers.NewAdminHandler(adminService, otpService, parkingService)
	otpHandler := handlers.NewOTPHandler(otpService)

	// 創建一個 API 路由組
	api := r.Group("/api")
	{
		routes.Path(api, parkingHandler, adminHandler, otpHandler)
	}

	// 啟動定時任務
	c := cron.New()

	// 每天午夜記錄前一日營收
	_, err = c.AddFunc("0 0 * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		yesterday := time.Now().AddDate(0, 0, -1).Format("2006-01-02")
		entries, err := ledger.History(ctx)
		if err != nil {
			log.Printf("Failed to query revenue for daily summary: %v", err)
			return
		}
		total := 0.0
		for _, entry := range entries {
			if entry.Date == yesterday {
				total = entry.Revenue
				break
			}
		}
		log.Printf("Daily revenue summary for %s: %.2f", yesterday, total)
	})
	if err != nil {
		log.Fatalf("Failed to schedule daily revenue summary cron job: %v", err)
	}

	c.Start()
	log.Println("Cron jobs started")

	// 啟動伺服器
	log.Println("Starting server on :8080")
	if err := r.Run(":8080"); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
