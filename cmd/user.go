package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"

	"teamhub/internal/database"
	"teamhub/internal/model"
)

// userCmd 用户管理命令
var userCmd = &cobra.Command{
	Use:   "user",
	Short: "用户管理命令",
	Long:  `用户管理相关的命令，包括创建管理员、列出用户`,
}

// createAdminCmd 创建管理员用户命令
var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "交互式创建管理员用户",
	Run: func(cmd *cobra.Command, args []string) {
		createAdminUser()
	},
}

// listUsersCmd 列出用户命令
var listUsersCmd = &cobra.Command{
	Use:   "list",
	Short: "列出系统中的用户",
	Run: func(cmd *cobra.Command, args []string) {
		listUsers()
	},
}

func init() {
	userCmd.AddCommand(createAdminCmd)
	userCmd.AddCommand(listUsersCmd)
}

// createAdminUser 创建管理员用户
func createAdminUser() {
	if err := initializeSystem(); err != nil {
		fmt.Printf("系统初始化失败: %v\n", err)
		os.Exit(1)
	}

	reader := bufio.NewReader(os.Stdin)

	fmt.Print("请输入管理员用户名: ")
	username, _ := reader.ReadString('\n')
	username = strings.TrimSpace(username)

	fmt.Print("请输入管理员邮箱: ")
	email, _ := reader.ReadString('\n')
	email = strings.TrimSpace(email)

	fmt.Print("请输入管理员密码: ")
	passwordBytes, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		fmt.Printf("读取密码失败: %v\n", err)
		return
	}
	password := string(passwordBytes)
	fmt.Println()

	fmt.Print("请确认管理员密码: ")
	confirmBytes, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		fmt.Printf("读取确认密码失败: %v\n", err)
		return
	}
	fmt.Println()

	if password != string(confirmBytes) {
		fmt.Println("两次输入的密码不一致")
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		fmt.Printf("密码加密失败: %v\n", err)
		return
	}

	db := database.GetDB()

	var count int64
	if err := db.Model(&model.User{}).
		Where("username = ? OR email = ?", username, email).
		Count(&count).Error; err != nil {
		fmt.Printf("查询用户失败: %v\n", err)
		return
	}
	if count > 0 {
		fmt.Println("用户名或邮箱已存在")
		return
	}

	now := time.Now()
	user := &model.User{
		Username:                   username,
		Password:                   string(hashedPassword),
		Email:                      email,
		Role:                       model.RoleAdmin,
		Status:                     1,
		IsVerified:                 1,
		LastGlobalNotificationAt:   now,
		LastPersonalNotificationAt: now,
	}

	if err := db.Create(user).Error; err != nil {
		fmt.Printf("创建管理员用户失败: %v\n", err)
		return
	}

	fmt.Printf("管理员用户创建成功！\n")
	fmt.Printf("用户名: %s\n", username)
	fmt.Printf("邮箱: %s\n", email)
}

// listUsers 列出用户
func listUsers() {
	if err := initializeSystem(); err != nil {
		fmt.Printf("系统初始化失败: %v\n", err)
		os.Exit(1)
	}

	db := database.GetDB()
	var users []model.User

	if err := db.Select("id, username, email, role, status, is_verified, created_at").
		Order("created_at DESC").
		Limit(50).
		Find(&users).Error; err != nil {
		fmt.Printf("查询用户列表失败: %v\n", err)
		return
	}

	fmt.Printf("%-5s %-20s %-30s %-10s %-8s %-8s %-20s\n",
		"ID", "用户名", "邮箱", "角色", "状态", "已验证", "创建时间")
	fmt.Println(strings.Repeat("-", 100))

	for _, user := range users {
		status := "启用"
		if user.Status == 0 {
			status = "禁用"
		}
		verified := "否"
		if user.IsVerified == 1 {
			verified = "是"
		}

		fmt.Printf("%-5d %-20s %-30s %-10s %-8s %-8s %-20s\n",
			user.ID, user.Username, user.Email,
			user.Role, status, verified, user.CreatedAt.Format("2006-01-02 15:04"))
	}
}
