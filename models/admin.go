package models

type Admin struct {
	AdminID  int    `json:"admin_id" gorm:"primaryKey;autoIncrement;type:INT"`
	Username string `json:"username" gorm:"uniqueIndex;type:varchar(50);not null" binding:"required,max=50"`
	Password string `json:"password" gorm:"type:varchar(100);not null" binding:"required"`
	Phone    string `json:"phone" gorm:"type:varchar(20)"`
}

func (Admin) TableName() string {
	return "admin_info"
}

type AdminResponse struct {
	AdminID  int    `json:"admin_id"`
	Username string `json:"username"`
	Phone    string `json:"phone"`
}

func (a *Admin) ToResponse() AdminResponse {
	return AdminResponse{
		AdminID:  a.AdminID,
		Username: a.Username,
		Phone:    a.Phone,
	}
}
