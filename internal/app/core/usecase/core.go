package usecase

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/JoeShih716/go-accounts-ledger/internal/app/core/domain"
	"github.com/JoeShih716/go-accounts-ledger/internal/app/core/repository"
)

// DefaultPublishTimeout 單一事件發布的等待上限，寫入已完成，不讓 broker 拖住請求
const DefaultPublishTimeout = 2 * time.Second

// CoreUseCase 是核心業務邏輯層，組合帳戶與交易兩個 repository
// 不持有任何請求層級的可變狀態，可被任意多個 goroutine 同時呼叫
type CoreUseCase struct {
	accounts     *repository.AccountRepository
	transactions *repository.TransactionRepository
	publisher      EventPublisher
	publishTimeout time.Duration
	logger         *zap.Logger
	now          func() time.Time
}

// Option CoreUseCase 的選項
type Option func(*CoreUseCase)

// WithPublisher 設定事件發布者
func WithPublisher(p EventPublisher) Option {
	return func(c *CoreUseCase) {
		c.publisher = p
	}
}

// WithPublishTimeout 設定事件發布的等待上限，d <= 0 時沿用預設值
func WithPublishTimeout(d time.Duration) Option {
	return func(c *CoreUseCase) {
		if d > 0 {
			c.publishTimeout = d
		}
	}
}

// WithLogger 設定 logger
func WithLogger(l *zap.Logger) Option {
	return func(c *CoreUseCase) {
		c.logger = l
	}
}

func NewCoreUseCase(accounts *repository.AccountRepository, transactions *repository.TransactionRepository, opts ...Option) *CoreUseCase {
	c := &CoreUseCase{
		accounts:     accounts,
		transactions: transactions,
		publisher:      NopPublisher{},
		publishTimeout: DefaultPublishTimeout,
		logger:       zap.NewNop(),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CreateAccount 建立帳戶
func (c *CoreUseCase) CreateAccount(ctx context.Context, holderID string) (string, error) {
	id, err := c.accounts.Create(ctx, holderID)
	if err != nil {
		return "", err
	}
	c.publish(ctx, Event{Type: EventAccountCreated, ID: id, AccountID: id, HolderID: holderID})
	return id, nil
}

// GetAccountInfo 取得帳戶資訊與當前餘額
func (c *CoreUseCase) GetAccountInfo(ctx context.Context, id string) (domain.AccountInfo, error) {
	account, err := c.accounts.Get(ctx, id)
	if err != nil {
		return domain.AccountInfo{}, err
	}
	balance, err := c.transactions.SumBefore(ctx, id, nil)
	if err != nil {
		return domain.AccountInfo{}, err
	}
	return domain.AccountInfo{Account: account, BalanceCents: balance}, nil
}

// SearchAccounts 搜尋帳戶，結果不含餘額
func (c *CoreUseCase) SearchAccounts(ctx context.Context, filter domain.AccountFilter, req domain.PageRequest) (domain.Page[domain.Account], error) {
	return c.accounts.Search(ctx, filter, req)
}

// RecordTransaction 在帳戶下新增一筆交易
func (c *CoreUseCase) RecordTransaction(ctx context.Context, accountID string, amountCents int64, date domain.Date, memo string) (string, error) {
	id, err := c.transactions.Create(ctx, accountID, amountCents, date, memo)
	if err != nil {
		return "", err
	}
	c.publish(ctx, Event{
		Type:        EventTransactionRecorded,
		ID:          id,
		AccountID:   accountID,
		AmountCents: amountCents,
		Date:        date,
		Memo:        memo,
	})
	return id, nil
}

// QueryTransactions 查詢帳戶交易 (先確認帳戶存在)
func (c *CoreUseCase) QueryTransactions(ctx context.Context, accountID string, filter domain.TransactionFilter, req domain.PageRequest) (domain.Page[domain.Transaction], error) {
	if _, err := c.accounts.Get(ctx, accountID); err != nil {
		return domain.Page[domain.Transaction]{}, err
	}
	return c.transactions.FindByAccount(ctx, accountID, filter, req)
}

// GenerateStatement 產生 [from, to] 的對帳單
// 對帳單不分頁：截斷會讓後續頁的累計餘額失去起點
//
// 參數:
//
//	accountID: 帳戶 ID
//	from, to: 日期區間 (含兩端)
//
// 回傳值:
//
//	[]domain.StatementEntry: 依 (date, id) 排序，每筆帶有累計餘額
//	error: 帳戶不存在或儲存錯誤
func (c *CoreUseCase) GenerateStatement(ctx context.Context, accountID string, from, to domain.Date) ([]domain.StatementEntry, error) {
	if _, err := c.accounts.Get(ctx, accountID); err != nil {
		return nil, err
	}
	opening, err := c.transactions.SumBefore(ctx, accountID, &from)
	if err != nil {
		return nil, err
	}
	txs, err := c.transactions.FindRange(ctx, accountID, from, to)
	if err != nil {
		return nil, err
	}
	return domain.BuildStatement(opening, txs), nil
}

// publish 發布失敗只記錄，不影響已完成的寫入
func (c *CoreUseCase) publish(ctx context.Context, event Event) {
	event.OccurredAt = c.now().UTC()
	// 呼叫端取消不影響發布，等待時間另外限制
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.publishTimeout)
	defer cancel()
	if err := c.publisher.Publish(ctx, event); err != nil {
		c.logger.Warn("publish ledger event failed",
			zap.String("type", string(event.Type)),
			zap.String("id", event.ID),
			zap.Error(err),
		)
	}
}
