package routes

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"parkngo/handlers"
	"parkngo/utils"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// AuthMiddleware 驗證 JWT token，並提取 admin_id 和 role
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"status":  false,
				"message": "缺少 Authorization 標頭",
				"error":   "Authorization header is required",
				"code":    "ERR_NO_AUTH_HEADER",
			})
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"status":  false,
				"message": "無效的 Authorization 格式",
				"error":   "Authorization header must be in the format 'Bearer <token>'",
				"code":    "ERR_INVALID_AUTH_FORMAT",
			})
			c.Abort()
			return
		}

		tokenString := parts[1]

		// 明確要求檢查 exp 字段
		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return utils.JWTSecret, nil
		}, jwt.WithExpirationRequired())

		if err != nil {
			log.Printf("Token parsing error: %v", err)
			if errors.Is(err, jwt.ErrTokenExpired) {
				c.JSON(http.StatusUnauthorized, gin.H{
					"status":  false,
					"message": "token 已過期",
					"error":   "Token has expired",
					"code":    "ERR_TOKEN_EXPIRED",
				})
			} else {
				c.JSON(http.StatusUnauthorized, gin.H{
					"status":  false,
					"message": "無效的 token",
					"error":   err.Error(),
					"code":    "ERR_INVALID_TOKEN",
				})
			}
			c.Abort()
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok || !token.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{
				"status":  false,
				"message": "無效的 token 內容",
				"error":   "Invalid token claims or token is not valid",
				"code":    "ERR_INVALID_CLAIMS",
			})
			c.Abort()
			return
		}

		// 確認 admin_id 字段
		adminID, ok := claims["admin_id"].(float64)
		if !ok {
			log.Printf("Missing or invalid admin_id in token")
			c.JSON(http.StatusUnauthorized, gin.H{
				"status":  false,
				"message": "無效的管理員 ID",
				"error":   "Invalid admin_id in token",
				"code":    "ERR_INVALID_ADMIN_ID",
			})
			c.Abort()
			return
		}

		// 確認 role 字段
		role, ok := claims["role"].(string)
		if !ok || role != "admin" {
			log.Printf("Missing or invalid role in token: %v", role)
			c.JSON(http.StatusUnauthorized, gin.H{
				"status":  false,
				"message": "無效的角色",
				"error":   "Invalid role in token",
				"code":    "ERR_INVALID_ROLE",
			})
			c.Abort()
			return
		}

		c.Set("admin_id", int(adminID))
		c.Set("role", role)
		c.Next()
	}
}

// Path 註冊所有路由
func Path(router *gin.RouterGroup, parking *handlers.ParkingHandler, admin *handlers.AdminHandler, otp *handlers.OTPHandler) {
	// 版本控制
	v1 := router.Group("/v1")
	{
		// 測試路由
		v1.GET("/ping", func(c *gin.Context) {
			c.JSON(200, gin.H{"message": "pong"})
		})

		// 停車路由：進出場與看板不需要登入
		parkingGroup := v1.Group("/parking")
		{
			parkingGroup.GET("/slots", parking.Slots)                     // 車位看板
			parkingGroup.POST("/park", parking.Park)                      // 車輛進場
			parkingGroup.POST("/checkout", parking.Checkout)              // 車輛離場結帳
			parkingGroup.GET("/receipts/:name", parking.DownloadReceipt)  // 下載收據
		}

		// 簡訊驗證碼
		otpGroup := v1.Group("/otp")
		{
			otpGroup.POST("/send", otp.Send)
		}

		// 管理員路由
		adminGroup := v1.Group("/admin")
		{
			// 公開路由：不需要 token 驗證
			adminGroup.POST("/register", admin.Register) // 註冊（需通過簡訊驗證碼）
			adminGroup.POST("/login", admin.Login)       // 登入並獲取 token

			// 受保護路由：需要 token 驗證
			adminWithAuth := adminGroup.Group("")
			adminWithAuth.Use(AuthMiddleware())
			{
				adminWithAuth.GET("/dashboard", admin.Dashboard)    // 儀表板
				adminWithAuth.GET("/revenue", admin.RevenueHistory) // 每日營收走勢
			}
		}
	}
}
