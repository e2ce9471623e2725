package database

import (
	"fmt"
	"time"
)

// 支援的資料庫驅動
const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config 定義資料庫連線與連線池的配置
type Config struct {
	Driver   string `yaml:"driver"`   // mysql / postgres / sqlite
	Host     string `yaml:"host"`     // 資料庫主機地址
	Port     int    `yaml:"port"`     // 資料庫埠號 (mysql 預設 3306，postgres 預設 5432)
	User     string `yaml:"user"`     // 使用者名稱
	Password string `yaml:"password"` // 密碼
	DBName   string `yaml:"dbname"`   // 資料庫名稱
	SSLMode  string `yaml:"sslmode"`  // 只有 postgres 使用
	Path     string `yaml:"path"`     // 只有 sqlite 使用，檔案路徑或 ":memory:"

	// 連線池設定 (Connection Pool)
	MaxOpenConns    int           `yaml:"max_open_conns"`    // 最大開啟連線數
	MaxIdleConns    int           `yaml:"max_idle_conns"`    // 最大閒置連線數
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"` // 連線最大存活時間

	// 連線重試
	MaxRetries    int           `yaml:"max_retries"`
	RetryInterval time.Duration `yaml:"retry_interval"`

	// GORM 設定
	LogLevel string `yaml:"log_level"` // Log 等級: "silent", "error", "warn", "info"
}

// ApplyDefaults 補全未設定的欄位
func (c *Config) ApplyDefaults() {
	if c.Driver == "" {
		c.Driver = DriverMySQL
	}
	if c.Port == 0 {
		switch c.Driver {
		case DriverMySQL:
			c.Port = 3306
		case DriverPostgres:
			c.Port = 5432
		}
	}
	if c.SSLMode == "" {
		c.SSLMode = "disable"
	}
	if c.MaxOpenConns == 0 {
		c.MaxOpenConns = 100
	}
	if c.MaxIdleConns == 0 {
		c.MaxIdleConns = 10
	}
	if c.ConnMaxLifetime == 0 {
		c.ConnMaxLifetime = 30 * time.Minute
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = 10
	}
	if c.RetryInterval == 0 {
		c.RetryInterval = 2 * time.Second
	}
}

// DSN (Data Source Name) 依驅動產生連線字串
//
//	mysql:    user:password@tcp(host:port)/dbname?charset=utf8mb4&parseTime=True&loc=Local
//	postgres: host=... port=... user=... password=... dbname=... sslmode=...
//	sqlite:   file:path?_foreign_keys=on&_journal_mode=WAL
func (c *Config) DSN() (string, error) {
	switch c.Driver {
	case DriverMySQL:
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			c.User,
			c.Password,
			c.Host,
			c.Port,
			c.DBName,
		), nil
	case DriverPostgres:
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			c.Host,
			c.Port,
			c.User,
			c.Password,
			c.DBName,
			c.SSLMode,
		), nil
	case DriverSQLite:
		if c.Path == "" || c.Path == ":memory:" {
			return "file::memory:?cache=shared", nil
		}
		return fmt.Sprintf("file:%s?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000", c.Path), nil
	default:
		return "", fmt.Errorf("unsupported database driver %q", c.Driver)
	}
}
