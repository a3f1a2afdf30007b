package config

import (
	"fmt"
	"path/filepath"
	"runtime"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Share    ShareConfig    `mapstructure:"share"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

type DatabaseConfig struct {
	DSN string `mapstructure:"dsn"`
}

type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	Expiration time.Duration `mapstructure:"expiration"`
}

// StorageConfig 对象存储(S3)相关配置
type StorageConfig struct {
	Bucket   string `mapstructure:"bucket"`
	Region   string `mapstructure:"region"`
	Endpoint string `mapstructure:"endpoint"` // 可选，兼容MinIO等自建存储
	// 预签名URL的有效期（秒），默认1小时
	PresignExpirySeconds int `mapstructure:"presign_expiry_seconds"`
	// 上传文件大小上限（字节）
	MaxFileSize int64 `mapstructure:"max_file_size"`
}

// ShareConfig 分享链接相关配置
type ShareConfig struct {
	// 生成分享URL时使用的站点基础地址
	BaseURL string `mapstructure:"base_url"`
	// 分享有效期的上下界（分钟）
	MinExpirationMinutes int `mapstructure:"min_expiration_minutes"`
	MaxExpirationMinutes int `mapstructure:"max_expiration_minutes"`
}

type LogConfig struct {
	Level      string `mapstructure:"level"`
	Production bool   `mapstructure:"production"`
}

var GlobalConfig Config

func Init() error {
	// 获取项目根目录
	_, b, _, _ := runtime.Caller(0)
	basepath := filepath.Dir(filepath.Dir(filepath.Dir(b)))

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(filepath.Join(basepath, "config"))

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := viper.Unmarshal(&GlobalConfig); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return nil
}

// 测试用的配置文件
func InitTest() error {
	// 获取项目根目录
	_, b, _, _ := runtime.Caller(0)
	basepath := filepath.Dir(filepath.Dir(filepath.Dir(b)))

	viper.SetConfigName("config.test")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(filepath.Join(basepath, "config"))

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := viper.Unmarshal(&GlobalConfig); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return nil
}

func setDefaults() {
	viper.SetDefault("server.addr", ":8080")
	viper.SetDefault("storage.presign_expiry_seconds", 3600)
	viper.SetDefault("storage.max_file_size", 50*1024*1024)
	// 10分钟到1年
	viper.SetDefault("share.min_expiration_minutes", 10)
	viper.SetDefault("share.max_expiration_minutes", 525960)
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.production", false)
}
