package model

// PasswordResetRequest 密码重置申请
// 每个邮箱同一时间只允许存在一条待处理申请，由管理员处理后删除
type PasswordResetRequest struct {
	Base
	Email   string `gorm:"type:varchar(100);not null;uniqueIndex" json:"email"`
	Message string `gorm:"type:varchar(255)" json:"message"`
}

// TableName 指定表名
func (PasswordResetRequest) TableName() string {
	return "password_reset_requests"
}
