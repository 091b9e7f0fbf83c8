package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"teamhub/internal/config"
	"teamhub/internal/database"
	"teamhub/internal/logger"
	"teamhub/internal/model"
	"teamhub/internal/router"
	"teamhub/internal/service"
	"teamhub/pkg/auth"
)

var configPath string

// rootCmd 根命令
var rootCmd = &cobra.Command{
	Use:   "teamhub",
	Short: "团队协作通知服务",
	Long:  `团队协作后端服务，提供用户管理、角色权限、通知信息流与实时推送`,
}

// serveCmd 启动服务命令
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "启动HTTP服务",
	Run: func(cmd *cobra.Command, args []string) {
		startServer()
	},
}

// migrateCmd 数据库迁移命令
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "执行数据库迁移",
	Run: func(cmd *cobra.Command, args []string) {
		runMigrate()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "./config", "配置文件路径")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(userCmd)
}

// Execute 执行根命令
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// initializeSystem 初始化系统
func initializeSystem() error {
	if err := config.Init(configPath); err != nil {
		return fmt.Errorf("配置初始化失败: %v", err)
	}

	if err := logger.Init(); err != nil {
		return fmt.Errorf("日志初始化失败: %v", err)
	}

	db := database.GetDB()
	if db == nil {
		return fmt.Errorf("MySQL数据库连接失败")
	}

	if err := model.InitTables(db); err != nil {
		return fmt.Errorf("初始化数据库表失败: %v", err)
	}

	// 令牌黑名单使用Redis，多实例部署时登出状态共享
	redisClient := database.GetRedis()
	if redisClient == nil {
		return fmt.Errorf("Redis连接失败")
	}
	auth.UseBlacklist(auth.NewRedisTokenBlacklist(redisClient))

	return nil
}

// startServer 启动HTTP服务
func startServer() {
	if err := initializeSystem(); err != nil {
		fmt.Printf("系统初始化失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	cleanup := service.NewCleanupService(database.GetDB())
	if err := cleanup.Start(); err != nil {
		logger.Fatal("启动清理任务失败", zap.Error(err))
	}

	r := router.SetupRouter(database.GetDB())

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", config.GlobalConfig.App.Port),
		Handler: r,
	}

	// 优雅关闭
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP服务启动失败", zap.Error(err))
		}
	}()

	logger.Info("服务已启动", zap.String("addr", srv.Addr))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("关闭服务...")

	cleanup.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("服务关闭异常", zap.Error(err))
	}

	logger.Info("服务已关闭")
}

// runMigrate 只执行迁移后退出
func runMigrate() {
	if err := config.Init(configPath); err != nil {
		fmt.Printf("配置初始化失败: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Init(); err != nil {
		fmt.Printf("日志初始化失败: %v\n", err)
		os.Exit(1)
	}

	db := database.GetDB()
	if db == nil {
		fmt.Println("MySQL数据库连接失败")
		os.Exit(1)
	}
	if err := model.InitTables(db); err != nil {
		fmt.Printf("数据库迁移失败: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("数据库迁移完成")
}
