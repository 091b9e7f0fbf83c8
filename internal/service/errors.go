package service

import (
	"errors"
)

// 服务层错误，控制器用errors.Is映射为HTTP状态码
var (
	// ErrInvalidFeedParams 未提供有效的信息流拉取锚点或范围
	ErrInvalidFeedParams = errors.New("缺少有效的信息流拉取锚点")
	// ErrInvalidNotification 通知未能持久化（发送者或接收者不存在等）
	ErrInvalidNotification = errors.New("通知创建失败")
	// ErrNotificationNotFound 目标通知不存在
	ErrNotificationNotFound = errors.New("通知不存在")
	// ErrNotificationForbidden 非发送者删除个人通知
	ErrNotificationForbidden = errors.New("无权操作该通知")

	// ErrUserNotFound 用户不存在
	ErrUserNotFound = errors.New("用户不存在")
	// ErrEmailExists 邮箱已被注册
	ErrEmailExists = errors.New("邮箱已存在")
	// ErrUsernameExists 用户名已被注册
	ErrUsernameExists = errors.New("用户名已存在")
	// ErrWrongPassword 密码校验失败
	ErrWrongPassword = errors.New("密码错误")
	// ErrResetRequestExists 该邮箱已有待处理的密码重置申请
	ErrResetRequestExists = errors.New("密码重置申请已存在")
	// ErrResetRequestNotFound 密码重置申请不存在
	ErrResetRequestNotFound = errors.New("密码重置申请不存在")
)
