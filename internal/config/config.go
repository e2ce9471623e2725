// Package config 載入服務設定：YAML 檔為基礎，.env 與環境變數 (LEDGER_*) 覆蓋
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/JoeShih716/go-accounts-ledger/internal/app/core/adapter/out/kafka"
	"github.com/JoeShih716/go-accounts-ledger/internal/app/core/adapter/out/redis"
	"github.com/JoeShih716/go-accounts-ledger/internal/app/core/usecase"
	"github.com/JoeShih716/go-accounts-ledger/pkg/database"
)

// 儲存層種類
const (
	StorageMemory = "memory" // 記憶體 + WAL
	StorageLMAX   = "lmax"   // 記憶體 + WAL，單一寫入者
	StorageSQL    = "sql"    // GORM (mysql / postgres / sqlite)
)

// 序號來源
const (
	SequenceStore = "store" // 與資料同一個儲存層
	SequenceRedis = "redis"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Storage  StorageConfig  `yaml:"storage"`
	Sequence SequenceConfig `yaml:"sequence"`
	Kafka    kafka.Config   `yaml:"kafka"`
	Log      LogConfig      `yaml:"log"`
}

type ServerConfig struct {
	GRPCAddr        string        `yaml:"grpc_addr"`
	HTTPAddr        string        `yaml:"http_addr"`
	BasePath        string        `yaml:"base_path"` // REST 路由前綴
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	// 兩者都設定時 HTTP 以 HTTPS 提供
	TLSCertPath string `yaml:"tls_cert"`
	TLSKeyPath  string `yaml:"tls_key"`
}

type StorageConfig struct {
	Driver   string          `yaml:"driver"`
	Database database.Config `yaml:"database"`
	WALPath  string          `yaml:"wal_path"`
}

type SequenceConfig struct {
	Driver string       `yaml:"driver"`
	Redis  redis.Config `yaml:"redis"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load 讀取設定
//
// 參數:
//
//	path: string - YAML 設定檔路徑，空字串表示只用環境變數與預設值
//	envFiles: ...string - 要載入的 .env 檔；未指定時嘗試載入目前目錄的 .env (不存在則略過)
//
// 回傳值:
//
//	Config: 補齊預設值並通過驗證的設定
//	error: 讀檔、解析或驗證失敗
func Load(path string, envFiles ...string) (Config, error) {
	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}

	if len(envFiles) > 0 {
		if err := godotenv.Load(envFiles...); err != nil {
			return Config{}, fmt.Errorf("load env file: %w", err)
		}
	} else if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	setString(&c.Server.GRPCAddr, "LEDGER_GRPC_ADDR")
	setString(&c.Server.HTTPAddr, "LEDGER_HTTP_ADDR")
	setString(&c.Server.BasePath, "LEDGER_BASE_PATH")
	setString(&c.Server.TLSCertPath, "LEDGER_TLS_CERT")
	setString(&c.Server.TLSKeyPath, "LEDGER_TLS_KEY")

	setString(&c.Storage.Driver, "LEDGER_STORAGE_DRIVER")
	setString(&c.Storage.WALPath, "LEDGER_WAL_PATH")
	db := &c.Storage.Database
	setString(&db.Driver, "LEDGER_DB_DRIVER")
	setString(&db.Host, "LEDGER_DB_HOST")
	setString(&db.User, "LEDGER_DB_USER")
	setString(&db.Password, "LEDGER_DB_PASSWORD")
	setString(&db.DBName, "LEDGER_DB_NAME")
	setString(&db.Path, "LEDGER_DB_PATH")
	if err := setInt(&db.Port, "LEDGER_DB_PORT"); err != nil {
		return err
	}

	setString(&c.Sequence.Driver, "LEDGER_SEQUENCE_DRIVER")
	setString(&c.Sequence.Redis.Addr, "LEDGER_REDIS_ADDR")
	setString(&c.Sequence.Redis.Password, "LEDGER_REDIS_PASSWORD")

	if v, ok := os.LookupEnv("LEDGER_KAFKA_ENABLED"); ok {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid LEDGER_KAFKA_ENABLED: %w", err)
		}
		c.Kafka.Enabled = enabled
	}
	if v := os.Getenv("LEDGER_KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	setString(&c.Kafka.Topic, "LEDGER_KAFKA_TOPIC")

	setString(&c.Log.Level, "LEDGER_LOG_LEVEL")
	setString(&c.Log.Format, "LEDGER_LOG_FORMAT")
	return nil
}

func (c *Config) applyDefaults() {
	if c.Server.GRPCAddr == "" {
		c.Server.GRPCAddr = ":50051"
	}
	if c.Server.HTTPAddr == "" {
		c.Server.HTTPAddr = ":8080"
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = StorageMemory
	}
	if c.Storage.WALPath == "" {
		c.Storage.WALPath = "data/wal.log"
	}
	if c.Storage.Driver == StorageSQL {
		c.Storage.Database.ApplyDefaults()
	}
	if c.Sequence.Driver == "" {
		c.Sequence.Driver = SequenceStore
	}
	if c.Kafka.PublishTimeout == 0 {
		c.Kafka.PublishTimeout = usecase.DefaultPublishTimeout
	}
	if c.Kafka.Topic == "" {
		c.Kafka.Topic = "ledger.events"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
}

// Validate 檢查設定組合是否可用
func (c Config) Validate() error {
	switch c.Storage.Driver {
	case StorageMemory, StorageLMAX:
	case StorageSQL:
		if _, err := c.Storage.Database.DSN(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	switch c.Sequence.Driver {
	case SequenceStore:
	case SequenceRedis:
		if c.Sequence.Redis.Addr == "" {
			return errors.New("sequence driver redis requires sequence.redis.addr")
		}
	default:
		return fmt.Errorf("unknown sequence driver %q", c.Sequence.Driver)
	}
	if (c.Server.TLSCertPath == "") != (c.Server.TLSKeyPath == "") {
		return errors.New("server.tls_cert and server.tls_key must be set together")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return errors.New("kafka enabled without brokers")
	}
	return nil
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = n
	return nil
}
