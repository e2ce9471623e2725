package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/JoeShih716/go-accounts-ledger/internal/app/core/repository"
)

// Config Redis 連線配置
type Config struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	// Key 計數器使用的鍵，空字串時使用 repository.SequenceKey
	Key string `yaml:"key"`
}

// Sequence 以 Redis INCR 實作的全域序號
// INCR 在 Redis 端是單一原子操作，多個服務實例共用同一個鍵也不會拿到重複值
type Sequence struct {
	client *goredis.Client
	key    string
}

// NewSequence 建立連線並確認 Redis 可用
func NewSequence(ctx context.Context, cfg Config, logger *zap.Logger) (*Sequence, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:            cfg.Addr,
		Password:        cfg.Password,
		DB:              cfg.DB,
		PoolSize:        20,
		MinIdleConns:    2,
		PoolTimeout:     4 * time.Second,
		ConnMaxIdleTime: 5 * time.Minute,
		MaxRetries:      3,
		MinRetryBackoff: 8 * time.Millisecond,
		MaxRetryBackoff: 512 * time.Millisecond,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	key := cfg.Key
	if key == "" {
		key = repository.SequenceKey
	}
	logger.Info("redis sequence connected", zap.String("addr", cfg.Addr), zap.String("key", key))
	return &Sequence{client: client, key: key}, nil
}

// Next 遞增並回傳新值
func (s *Sequence) Next(ctx context.Context) (int64, error) {
	n, err := s.client.Incr(ctx, s.key).Result()
	if err != nil {
		return 0, fmt.Errorf("redis incr %s: %w", s.key, err)
	}
	return n, nil
}

// Clear 刪除計數器，下一次 Next 從 1 開始
func (s *Sequence) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", s.key, err)
	}
	return nil
}

func (s *Sequence) Close() error {
	return s.client.Close()
}

var (
	_ repository.Sequence = (*Sequence)(nil)
	_ repository.Clearer  = (*Sequence)(nil)
)
