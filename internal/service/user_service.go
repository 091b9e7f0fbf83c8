package service

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"teamhub/internal/dto"
	"teamhub/internal/logger"
	"teamhub/internal/model"
	"teamhub/pkg/auth"
)

// UserService 用户服务：注册、登录、资料维护、密码重置与管理员操作
type UserService struct {
	db     *gorm.DB
	logger *zap.SugaredLogger
}

// NewUserService 创建用户服务实例
func NewUserService(db *gorm.DB) *UserService {
	return &UserService{
		db:     db,
		logger: logger.GetSugaredLogger(),
	}
}

// Register 用户注册，初始角色为user，两类通知游标初始化为当前时间
// （新用户不把历史通知算作未读）
func (s *UserService) Register(req *dto.RegisterRequest) (*model.User, error) {
	var count int64
	if err := s.db.Model(&model.User{}).Where("email = ?", req.Email).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("查询邮箱失败: %w", err)
	}
	if count > 0 {
		return nil, ErrEmailExists
	}
	if err := s.db.Model(&model.User{}).Where("username = ?", req.Username).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("查询用户名失败: %w", err)
	}
	if count > 0 {
		return nil, ErrUsernameExists
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("密码加密失败: %w", err)
	}

	now := time.Now()
	user := &model.User{
		Username:                   req.Username,
		Email:                      req.Email,
		Password:                   string(hashed),
		Role:                       model.RoleUser,
		Status:                     1,
		LastGlobalNotificationAt:   now,
		LastPersonalNotificationAt: now,
	}
	if err := s.db.Create(user).Error; err != nil {
		return nil, fmt.Errorf("创建用户失败: %w", err)
	}

	s.logger.Infof("用户注册成功: %s", user.Email)
	return user, nil
}

// Login 用户登录，支持用户名或邮箱，成功后返回令牌对
func (s *UserService) Login(req *dto.LoginRequest, clientIP string) (*model.User, *auth.TokenPair, error) {
	var user model.User
	err := s.db.Where("username = ? OR email = ?", req.Username, req.Username).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrUserNotFound
		}
		return nil, nil, fmt.Errorf("查询用户失败: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, nil, ErrWrongPassword
	}

	tokenPair, err := auth.GenerateTokenPair(user.ID, user.Email, user.Role, req.Remember)
	if err != nil {
		return nil, nil, fmt.Errorf("生成令牌失败: %w", err)
	}

	updates := map[string]interface{}{
		"last_login_at": time.Now(),
		"last_login_ip": clientIP,
	}
	if err := s.db.Model(&user).Updates(updates).Error; err != nil {
		s.logger.Warnf("更新登录信息失败: %v", err)
	}

	return &user, tokenPair, nil
}

// RefreshToken 刷新令牌，旧刷新令牌加入黑名单
func (s *UserService) RefreshToken(refreshToken string) (*auth.TokenPair, error) {
	tokenPair, err := auth.RefreshAccessToken(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("刷新令牌失败: %w", err)
	}
	return tokenPair, nil
}

// Logout 用户登出，访问令牌与刷新令牌同时拉黑
func (s *UserService) Logout(accessToken, refreshToken string) error {
	if accessToken != "" {
		if err := auth.RevokeToken(accessToken); err != nil {
			s.logger.Warnf("撤销访问令牌失败: %v", err)
		}
	}
	if refreshToken != "" {
		if err := auth.RevokeToken(refreshToken); err != nil {
			s.logger.Warnf("撤销刷新令牌失败: %v", err)
		}
	}
	return nil
}

// GetUserByID 按ID查询用户
func (s *UserService) GetUserByID(id uint) (*model.User, error) {
	var user model.User
	if err := s.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("查询用户失败: %w", err)
	}
	return &user, nil
}

// GetUserByEmail 按邮箱查询用户
func (s *UserService) GetUserByEmail(email string) (*model.User, error) {
	var user model.User
	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("查询用户失败: %w", err)
	}
	return &user, nil
}

// UpdateProfile 更新个人资料
func (s *UserService) UpdateProfile(userID uint, req *dto.UpdateProfileRequest) (*model.User, error) {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"full_name":    req.FullName,
		"phone_number": req.PhoneNumber,
		"bio":          req.Bio,
	}
	if err := s.db.Model(user).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("更新资料失败: %w", err)
	}
	return user, nil
}

// ChangePassword 修改密码，需验证旧密码
func (s *UserService) ChangePassword(userID uint, req *dto.ChangePasswordRequest) error {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.OldPassword)); err != nil {
		return ErrWrongPassword
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("密码加密失败: %w", err)
	}
	if err := s.db.Model(user).Update("password", string(hashed)).Error; err != nil {
		return fmt.Errorf("更新密码失败: %w", err)
	}
	return nil
}

// ForgotPassword 提交密码重置申请，同一邮箱只允许一条待处理申请
func (s *UserService) ForgotPassword(req *dto.ForgotPasswordRequest) error {
	if _, err := s.GetUserByEmail(req.Email); err != nil {
		return err
	}

	var count int64
	if err := s.db.Model(&model.PasswordResetRequest{}).Where("email = ?", req.Email).Count(&count).Error; err != nil {
		return fmt.Errorf("查询重置申请失败: %w", err)
	}
	if count > 0 {
		return ErrResetRequestExists
	}

	request := &model.PasswordResetRequest{
		Email:   req.Email,
		Message: req.Message,
	}
	if err := s.db.Create(request).Error; err != nil {
		return fmt.Errorf("创建重置申请失败: %w", err)
	}

	s.logger.Infof("收到密码重置申请: %s", req.Email)
	return nil
}

// ListUsers 管理员查询全部用户
func (s *UserService) ListUsers() ([]model.User, error) {
	var users []model.User
	if err := s.db.Order("created_at DESC").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("查询用户列表失败: %w", err)
	}
	return users, nil
}

// ListUnverifiedUsers 管理员查询待验证用户
func (s *UserService) ListUnverifiedUsers() ([]model.User, error) {
	var users []model.User
	if err := s.db.Where("is_verified = ?", 0).Order("created_at ASC").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("查询待验证用户失败: %w", err)
	}
	return users, nil
}

// VerifyUsers 管理员批量验证用户
func (s *UserService) VerifyUsers(req *dto.VerifyUsersRequest) (int64, error) {
	result := s.db.Model(&model.User{}).
		Where("email IN ? AND is_verified = ?", req.Emails, 0).
		Update("is_verified", 1)
	if result.Error != nil {
		return 0, fmt.Errorf("验证用户失败: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// UpdateUserRole 管理员修改用户角色
func (s *UserService) UpdateUserRole(req *dto.RoleUpdateRequest) (*model.User, error) {
	if !model.IsValidRole(req.Role) {
		return nil, fmt.Errorf("无效的角色: %s", req.Role)
	}

	user, err := s.GetUserByEmail(req.Email)
	if err != nil {
		return nil, err
	}

	if err := s.db.Model(user).Update("role", req.Role).Error; err != nil {
		return nil, fmt.Errorf("更新角色失败: %w", err)
	}

	s.logger.Infof("用户 %s 角色更新为 %s", user.Email, req.Role)
	return user, nil
}

// ListPasswordResetRequests 管理员查询待处理的密码重置申请
func (s *UserService) ListPasswordResetRequests() ([]model.PasswordResetRequest, error) {
	var requests []model.PasswordResetRequest
	if err := s.db.Order("created_at ASC").Find(&requests).Error; err != nil {
		return nil, fmt.Errorf("查询重置申请失败: %w", err)
	}
	return requests, nil
}

// ResetUserPassword 管理员处理重置申请：生成随机新密码并删除申请
func (s *UserService) ResetUserPassword(email string) (string, error) {
	var request model.PasswordResetRequest
	if err := s.db.Where("email = ?", email).First(&request).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrResetRequestNotFound
		}
		return "", fmt.Errorf("查询重置申请失败: %w", err)
	}

	user, err := s.GetUserByEmail(email)
	if err != nil {
		return "", err
	}

	newPassword, err := generatePassword()
	if err != nil {
		return "", err
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("密码加密失败: %w", err)
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(user).Update("password", string(hashed)).Error; err != nil {
			return fmt.Errorf("更新密码失败: %w", err)
		}
		if err := tx.Delete(&request).Error; err != nil {
			return fmt.Errorf("删除重置申请失败: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	s.logger.Infof("管理员重置了用户密码: %s", email)
	return newPassword, nil
}

// DeletePasswordResetRequest 管理员驳回重置申请
func (s *UserService) DeletePasswordResetRequest(email string) error {
	result := s.db.Where("email = ?", email).Delete(&model.PasswordResetRequest{})
	if result.Error != nil {
		return fmt.Errorf("删除重置申请失败: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrResetRequestNotFound
	}
	return nil
}

// generatePassword 生成随机初始密码
func generatePassword() (string, error) {
	buf := make([]byte, 12)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("生成随机密码失败: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// ToUserResponse 转换为对外的用户信息响应
func ToUserResponse(user *model.User) *dto.UserResponse {
	return &dto.UserResponse{
		ID:                         user.ID,
		Username:                   user.Username,
		Email:                      user.Email,
		Role:                       user.Role,
		FullName:                   user.FullName,
		PhoneNumber:                user.PhoneNumber,
		Bio:                        user.Bio,
		IsVerified:                 user.IsVerified == 1,
		LastGlobalNotificationAt:   user.LastGlobalNotificationAt,
		LastPersonalNotificationAt: user.LastPersonalNotificationAt,
		CreatedAt:                  user.CreatedAt,
	}
}
