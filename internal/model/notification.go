package model

import (
	"time"
)

// GlobalNotification 全局通知，按接收角色投递
// 角色可见性遵循 RolePermissions：高角色能看到低角色的通知
type GlobalNotification struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Sender       string    `gorm:"type:varchar(100);not null;index" json:"sender"`
	ReceiverRole string    `gorm:"type:varchar(20);not null;index:idx_global_created_role,priority:2;index:idx_global_updated_role,priority:2" json:"receiver_role"`
	Title        string    `gorm:"type:varchar(255);not null" json:"title"`
	Body         string    `gorm:"type:varchar(255);not null" json:"body"`
	Label        string    `gorm:"type:varchar(255);not null" json:"label"`
	Link         string    `gorm:"type:varchar(255)" json:"link"`
	CreatedAt    time.Time `gorm:"index:idx_global_created_role,priority:1" json:"created_at"`
	UpdatedAt    time.Time `gorm:"index:idx_global_updated_role,priority:1" json:"updated_at"`
}

// TableName 指定表名
func (GlobalNotification) TableName() string {
	return "global_notifications"
}

// PersonalNotification 个人通知，按接收邮箱精确投递
type PersonalNotification struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Sender        string    `gorm:"type:varchar(100);not null;index" json:"sender"`
	ReceiverEmail string    `gorm:"type:varchar(100);not null;index:idx_personal_created_email,priority:2;index:idx_personal_updated_email,priority:2" json:"receiver_email"`
	Title         string    `gorm:"type:varchar(255);not null" json:"title"`
	Body          string    `gorm:"type:varchar(255);not null" json:"body"`
	Label         string    `gorm:"type:varchar(255);not null" json:"label"`
	Link          string    `gorm:"type:varchar(255)" json:"link"`
	CreatedAt     time.Time `gorm:"index:idx_personal_created_email,priority:1" json:"created_at"`
	UpdatedAt     time.Time `gorm:"index:idx_personal_updated_email,priority:1" json:"updated_at"`
}

// TableName 指定表名
func (PersonalNotification) TableName() string {
	return "personal_notifications"
}
