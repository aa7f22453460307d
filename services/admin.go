package services

import (
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"

	"parkngo/models"
	"parkngo/utils"

	"gorm.io/gorm"
)

// 密碼規則：至少 6 個字元，包含字母、數字與特殊符號
// Go 的 regexp 不支援 lookahead，條件拆開各自檢查
var (
	passwordCharset = regexp.MustCompile(`^[A-Za-z\d@$!%*?&]{6,}$`)
	hasLetter       = regexp.MustCompile(`[A-Za-z]`)
	hasDigit        = regexp.MustCompile(`\d`)
	hasSpecial      = regexp.MustCompile(`[@$!%*?&]`)
)

var ErrInvalidCredentials = errors.New("invalid username or password")

// AdminService 管理員帳號的註冊與登入
type AdminService struct {
	db *gorm.DB
}

func NewAdminService(db *gorm.DB) *AdminService {
	return &AdminService{db: db}
}

// ValidatePassword 檢查密碼是否符合規則，不符合時回傳說明
func ValidatePassword(password string) error {
	if !passwordCharset.MatchString(password) ||
		!hasLetter.MatchString(password) ||
		!hasDigit.MatchString(password) ||
		!hasSpecial.MatchString(password) {
		return errors.New("password must be at least 6 characters long, include a letter, a special symbol and a number")
	}
	return nil
}

// Register 建立管理員帳號，密碼以 bcrypt 雜湊後存放
func (s *AdminService) Register(username, password, phone string) (*models.Admin, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, errors.New("username is required")
	}
	if err := ValidatePassword(password); err != nil {
		return nil, err
	}

	var existing models.Admin
	if err := s.db.Where("username = ?", username).First(&existing).Error; err == nil {
		return nil, fmt.Errorf("username %s is already in use", username)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("Failed to check for duplicate username: %v", err)
		return nil, fmt.Errorf("failed to check for duplicate username: %w", err)
	}

	hashedPassword, err := utils.HashPassword(password)
	if err != nil {
		log.Printf("Failed to hash password: %v", err)
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	admin := models.Admin{
		Username: username,
		Password: hashedPassword,
		Phone:    phone,
	}
	if err := s.db.Create(&admin).Error; err != nil {
		log.Printf("Failed to register admin: %v", err)
		return nil, fmt.Errorf("failed to register admin: %w", err)
	}

	log.Printf("Successfully registered admin with ID %d", admin.AdminID)
	return &admin, nil
}

// Login 驗證帳號密碼，成功回傳簽發的 JWT
func (s *AdminService) Login(username, password string) (string, *models.Admin, error) {
	var admin models.Admin
	if err := s.db.Where("username = ?", username).First(&admin).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("Admin %s not found", username)
			return "", nil, ErrInvalidCredentials
		}
		log.Printf("Failed to login admin: %v", err)
		return "", nil, fmt.Errorf("failed to login admin: %w", err)
	}

	if !utils.CheckPasswordHash(password, admin.Password) {
		log.Printf("Invalid password for admin %s", username)
		return "", nil, ErrInvalidCredentials
	}

	token, err := utils.GenerateToken(admin.AdminID, admin.Username)
	if err != nil {
		log.Printf("Failed to generate token for admin %s: %v", username, err)
		return "", nil, fmt.Errorf("failed to generate token: %w", err)
	}

	log.Printf("Admin %s logged in successfully", username)
	return token, &admin, nil
}
