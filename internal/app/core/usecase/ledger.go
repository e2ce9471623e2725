package usecase

import (
	"context"

	"github.com/JoeShih716/go-accounts-ledger/internal/app/core/domain"
)

// Ledger 帳本對外提供的操作，傳輸層 (gRPC / REST) 只依賴這個介面
type Ledger interface {
	// CreateAccount 建立帳戶並回傳 ID
	CreateAccount(ctx context.Context, holderID string) (string, error)
	// GetAccountInfo 取得帳戶與當前餘額
	GetAccountInfo(ctx context.Context, id string) (domain.AccountInfo, error)
	// SearchAccounts 分頁搜尋帳戶
	SearchAccounts(ctx context.Context, filter domain.AccountFilter, req domain.PageRequest) (domain.Page[domain.Account], error)
	// RecordTransaction 新增交易並回傳 ID
	RecordTransaction(ctx context.Context, accountID string, amountCents int64, date domain.Date, memo string) (string, error)
	// QueryTransactions 分頁查詢帳戶交易
	QueryTransactions(ctx context.Context, accountID string, filter domain.TransactionFilter, req domain.PageRequest) (domain.Page[domain.Transaction], error)
	// GenerateStatement 產生含累計餘額的對帳單
	GenerateStatement(ctx context.Context, accountID string, from, to domain.Date) ([]domain.StatementEntry, error)
}

var _ Ledger = (*CoreUseCase)(nil)
