package config

import (
	"fmt"
	"log"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Config 全局配置结构体
type Config struct {
	App          AppConfig          `mapstructure:"app"`
	MySQL        DatabaseConfig     `mapstructure:"mysql"`
	Redis        RedisConfig        `mapstructure:"redis"`
	Log          LogConfig          `mapstructure:"log"`
	JWT          JWTConfig          `mapstructure:"jwt"`
	Notification NotificationConfig `mapstructure:"notification"`
}

// AppConfig 应用配置
type AppConfig struct {
	Name string `mapstructure:"name"`
	Mode string `mapstructure:"mode"`
	Port int    `mapstructure:"port"`
}

// JWTConfig JWT配置
type JWTConfig struct {
	SecretKey            string `mapstructure:"secret_key"`
	AccessExpireSeconds  int    `mapstructure:"access_expire_seconds"`
	RefreshExpireSeconds int    `mapstructure:"refresh_expire_seconds"`
	BufferSeconds        int    `mapstructure:"buffer_seconds"`
	Issuer               string `mapstructure:"issuer"`
	MachineID            int64  `mapstructure:"machine_id"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	Username     string `mapstructure:"username"`
	Password     string `mapstructure:"password"`
	Database     string `mapstructure:"database"`
	Charset      string `mapstructure:"charset"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
}

// DSN 获取数据库连接字符串
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=True&loc=Local",
		c.Username, c.Password, c.Host, c.Port, c.Database, c.Charset)
}

// RedisConfig Redis配置
type RedisConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	Password     string `mapstructure:"password"`
	DB           int    `mapstructure:"db"`
	PoolSize     int    `mapstructure:"pool_size"`
	MinIdleConns int    `mapstructure:"min_idle_conns"`
}

// Addr 获取Redis地址
func (c *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// LogConfig 日志配置
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Filename   string `mapstructure:"filename"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxAge     int    `mapstructure:"max_age"`
	MaxBackups int    `mapstructure:"max_backups"`
	Compress   bool   `mapstructure:"compress"`
	Stdout     bool   `mapstructure:"stdout"`
}

// NotificationConfig 通知子系统配置
type NotificationConfig struct {
	// PageChunkSize 信息流默认分页大小
	PageChunkSize int `mapstructure:"page_chunk_size"`
	// MaxPageChunkSize 信息流分页大小上限
	MaxPageChunkSize int `mapstructure:"max_page_chunk_size"`
	// CursorGraceSeconds 已读游标推进的宽限期（秒）
	// 只有锚点落在该窗口内的拉取才视为实时拉取并推进游标
	CursorGraceSeconds int `mapstructure:"cursor_grace_seconds"`
	// StreamDelayMS 推送通道两次检查之间的间隔（毫秒）
	StreamDelayMS int `mapstructure:"stream_delay_ms"`
	// StreamRetryTimeoutMS SSE客户端重连的retry值（毫秒）
	StreamRetryTimeoutMS int `mapstructure:"stream_retry_timeout_ms"`
	// CleanupDays 清理任务保留的通知天数
	CleanupDays int `mapstructure:"cleanup_days"`
}

var (
	// GlobalConfig 全局配置实例
	GlobalConfig *Config
	// 配置Viper实例
	viperInstance *viper.Viper
)

// Init 初始化配置
func Init(configPath string) error {
	v := viper.New()
	v.AddConfigPath(configPath)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("读取配置文件失败: %v", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return fmt.Errorf("解析配置文件失败: %v", err)
	}

	// 监听配置文件变更并热加载
	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var next Config
		if err := v.Unmarshal(&next); err != nil {
			log.Printf("重新加载配置失败: %v", err)
			return
		}
		GlobalConfig = &next
	})

	GlobalConfig = &config
	viperInstance = v
	return nil
}

// setDefaults 设置配置默认值
func setDefaults(v *viper.Viper) {
	v.SetDefault("app.mode", "debug")
	v.SetDefault("app.port", 8080)
	v.SetDefault("notification.page_chunk_size", 10)
	v.SetDefault("notification.max_page_chunk_size", 50)
	v.SetDefault("notification.cursor_grace_seconds", 10)
	v.SetDefault("notification.stream_delay_ms", 5000)
	v.SetDefault("notification.stream_retry_timeout_ms", 15000)
	v.SetDefault("notification.cleanup_days", 90)
}

// GetConfig 获取全局配置
func GetConfig() *Config {
	return GlobalConfig
}

// GetString 获取字符串配置
func GetString(key string) string {
	return viperInstance.GetString(key)
}

// GetInt 获取整数配置
func GetInt(key string) int {
	return viperInstance.GetInt(key)
}
