// Package repository 實作帳戶與交易的存取規則 (存在檢查、ID 配置、寫入筆數檢查、分頁)，
// 實際的儲存操作交給各 adapter 實作的 Store 介面。
package repository

import (
	"context"

	"github.com/JoeShih716/go-accounts-ledger/internal/app/core/domain"
)

// SequenceKey 序號計數器在儲存層中的固定鍵值
const SequenceKey = "ledger_next_id"

// Sequence 全域序號計數器
type Sequence interface {
	// Next 原子地遞增並回傳遞增後的值，同一個值不會被兩個呼叫者拿到
	Next(ctx context.Context) (int64, error)
}

// AccountStore 帳戶集合的儲存操作
type AccountStore interface {
	// InsertAccount 寫入一筆帳戶，回傳實際新增的筆數
	InsertAccount(ctx context.Context, account domain.Account) (int64, error)
	// FindAccount 依 ID 查詢，不存在時回傳 found=false
	FindAccount(ctx context.Context, id string) (account domain.Account, found bool, err error)
	// FindAccounts 依條件查詢，結果依 (holderId, id) 排序後跳過 offset 筆、最多取 limit 筆
	FindAccounts(ctx context.Context, filter domain.AccountFilter, offset, limit int) ([]domain.Account, error)
}

// TransactionStore 交易集合的儲存操作
type TransactionStore interface {
	// InsertTransaction 寫入一筆交易，回傳實際新增的筆數
	InsertTransaction(ctx context.Context, tx domain.Transaction) (int64, error)
	// FindTransactions 查詢單一帳戶的交易，依 (date, id) 排序後跳過 offset 筆、最多取 limit 筆
	FindTransactions(ctx context.Context, accountID string, filter domain.TransactionFilter, offset, limit int) ([]domain.Transaction, error)
	// FindTransactionRange 回傳日期落在 [from, to] 的全部交易，依 (date, id) 排序
	FindTransactionRange(ctx context.Context, accountID string, from, to domain.Date) ([]domain.Transaction, error)
	// SumTransactions 加總 date < before 的交易金額；before 為 nil 時加總全部
	SumTransactions(ctx context.Context, accountID string, before *domain.Date) (int64, error)
}

// Clearer 可清空全部資料的儲存層 (啟動參數 -c 使用)
type Clearer interface {
	Clear(ctx context.Context) error
}
