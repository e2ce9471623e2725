package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/JoeShih716/go-accounts-ledger/internal/app/core/usecase"
)

// Config Kafka 發布配置
type Config struct {
	Enabled bool     `yaml:"enabled"`
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
	// PublishTimeout 每個事件最多等待多久，逾時只記錄 warning
	PublishTimeout time.Duration `yaml:"publish_timeout"`
}

// messageWriter 是 *kafka.Writer 中 Publisher 用到的部分
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher 將帳本事件以 JSON 寫入 Kafka topic
// 訊息 key 為帳戶 ID，同一帳戶的事件會落在同一個 partition 而保持順序
type Publisher struct {
	writer messageWriter
	logger *zap.Logger
}

// NewPublisher 建立同步寫入的 Kafka Writer
//
// 參數:
//
//	cfg: Config - broker 位址與 topic
//	logger: *zap.Logger - kafka-go 內部訊息以 Debug 等級輸出
func NewPublisher(cfg Config, logger *zap.Logger) (*Publisher, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka: no brokers configured")
	}
	if cfg.Topic == "" {
		return nil, fmt.Errorf("kafka: no topic configured")
	}
	w := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		MaxAttempts:  3,
		BatchSize:    100,
		BatchTimeout: 10 * time.Millisecond,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		Compression:  kafka.Snappy,
		Logger: kafka.LoggerFunc(func(msg string, args ...interface{}) {
			logger.Debug(fmt.Sprintf(msg, args...))
		}),
		ErrorLogger: kafka.LoggerFunc(func(msg string, args ...interface{}) {
			logger.Warn(fmt.Sprintf(msg, args...))
		}),
	}
	logger.Info("kafka publisher initialized",
		zap.Strings("brokers", cfg.Brokers),
		zap.String("topic", cfg.Topic),
	)
	return newPublisher(w, logger), nil
}

func newPublisher(w messageWriter, logger *zap.Logger) *Publisher {
	return &Publisher{writer: w, logger: logger}
}

// Publish 寫入一個事件
func (p *Publisher) Publish(ctx context.Context, event usecase.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", event.Type, err)
	}
	msg := kafka.Message{
		Key:   []byte(event.AccountID),
		Value: data,
		Time:  event.OccurredAt,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(event.Type)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish %s event: %w", event.Type, err)
	}
	p.logger.Debug("event published", zap.String("type", string(event.Type)), zap.String("id", event.ID))
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

var _ usecase.EventPublisher = (*Publisher)(nil)
