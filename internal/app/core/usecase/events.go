package usecase

import (
	"context"
	"time"

	"github.com/JoeShih716/go-accounts-ledger/internal/app/core/domain"
)

// EventType 帳本事件類型
type EventType string

const (
	EventAccountCreated      EventType = "account.created"
	EventTransactionRecorded EventType = "transaction.recorded"
)

// Event 帳本寫入成功後對外發布的事件
type Event struct {
	Type        EventType   `json:"type"`
	ID          string      `json:"id"`
	AccountID   string      `json:"accountId"`
	HolderID    string      `json:"holderId,omitempty"`
	AmountCents int64       `json:"amountCents,omitempty"`
	Date        domain.Date `json:"date,omitempty"`
	Memo        string      `json:"memo,omitempty"`
	OccurredAt  time.Time   `json:"occurredAt"`
}

// EventPublisher 事件發布介面 (Kafka 或不發布)
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
}

// NopPublisher 不發布任何事件
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
