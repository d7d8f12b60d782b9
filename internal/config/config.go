package config

import (
	"github.com/blues/sfl/internal/logger"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Platform PlatformConfig `mapstructure:"platform"`
	Task     TaskConfig     `mapstructure:"task"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

// PlatformConfig 平台身份与协作方端点配置
type PlatformConfig struct {
	Operator         string `mapstructure:"operator"`           // 运营方地址
	Gateway          string `mapstructure:"gateway"`            // 网关身份地址（可为空，之后由运营方设置）
	GatewayNotifyUrl string `mapstructure:"gateway_notify_url"` // 网关解密请求通知端点
	TreasuryUrl      string `mapstructure:"treasury_url"`       // 资金划转服务端点
	EventPoolSize    int    `mapstructure:"event_pool_size"`    // 审计事件协程池大小
}

type TaskConfig struct {
	Interval int `mapstructure:"interval"` // 秒
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // 日志级别: debug, info, warn, error, fatal
	Output string `mapstructure:"output"` // 输出目标: stdout, stderr, file
	File   string `mapstructure:"file"`   // 日志文件路径（当output为file时使用）
}

func Load() *Config {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/sfl")

	// 设置默认值
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.mode", "debug")
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.password", "")
	viper.SetDefault("database.dbname", "funding_ledger")
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("platform.event_pool_size", 8)
	viper.SetDefault("task.interval", 60)
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.output", "stdout")
	viper.SetDefault("log.file", "logs/app.log")

	// 自动读取环境变量
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		logger.Warn("Warning: Could not read config file: %v", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		logger.Fatal("Unable to decode config into struct: %v", err)
	}

	return &config
}
