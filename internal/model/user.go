package model

import (
	"time"
)

// User 用户模型
type User struct {
	Base
	Username string `gorm:"type:varchar(50);not null;uniqueIndex" json:"username"`
	Password string `gorm:"type:varchar(100);not null" json:"-"`
	Email    string `gorm:"type:varchar(100);not null;uniqueIndex" json:"email"`
	Role     string `gorm:"type:varchar(20);not null;default:'user';index" json:"role"`
	Status   int    `gorm:"type:tinyint(2);not null;default:1" json:"status"` // 0=禁用 1=正常

	// 个人资料
	FullName    string `gorm:"type:varchar(100)" json:"full_name"`
	PhoneNumber string `gorm:"type:varchar(20)" json:"phone_number"`
	Bio         string `gorm:"type:text" json:"bio"`

	IsVerified int `gorm:"type:tinyint(1);not null;default:0" json:"is_verified"` // 0=未验证 1=已验证

	// 通知已读游标：记录两类信息流各自的已读边界，只会单调前移
	LastGlobalNotificationAt   time.Time `gorm:"index" json:"last_global_notification_at"`
	LastPersonalNotificationAt time.Time `gorm:"index" json:"last_personal_notification_at"`

	LastLoginAt time.Time `json:"last_login_at"`
	LastLoginIP string    `gorm:"type:varchar(50)" json:"last_login_ip"`
}

// TableName 指定表名
func (User) TableName() string {
	return "users"
}
