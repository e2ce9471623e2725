package repository

import (
	"context"

	"github.com/JoeShih716/go-accounts-ledger/internal/app/core/domain"
)

// TransactionRepository 交易存取
type TransactionRepository struct {
	store    TransactionStore
	accounts *AccountRepository
	ids      *IDGenerator
}

func NewTransactionRepository(store TransactionStore, accounts *AccountRepository, ids *IDGenerator) *TransactionRepository {
	return &TransactionRepository{
		store:    store,
		accounts: accounts,
		ids:      ids,
	}
}

// Create 在既有帳戶下新增一筆交易並回傳交易 ID
//
// 參數:
//
//	accountID: 帳戶 ID，必須已存在
//	amountCents: 金額 (分)，可為負數
//	date: 交易日期
//	memo: 備註
//
// 回傳值:
//
//	string: 交易 ID
//	error: 帳戶不存在 (KindNotFound) 或寫入失敗 (KindStorage)
func (r *TransactionRepository) Create(ctx context.Context, accountID string, amountCents int64, date domain.Date, memo string) (string, error) {
	if _, err := r.accounts.Get(ctx, accountID); err != nil {
		return "", err
	}
	id, err := r.ids.Allocate(ctx)
	if err != nil {
		return "", err
	}
	tx := domain.Transaction{
		ID:          id,
		AccountID:   accountID,
		AmountCents: amountCents,
		Date:        date,
		Memo:        memo,
	}
	n, err := r.store.InsertTransaction(ctx, tx)
	if err != nil {
		return "", domain.AsStorage(err, "cannot create new transaction for account %s", accountID)
	}
	if n != 1 {
		return "", domain.Storage(nil, "transaction create: expected 1 insert, got %d", n)
	}
	return id, nil
}

// FindByAccount 查詢帳戶內符合條件的交易，依 (date, id) 排序並分頁
func (r *TransactionRepository) FindByAccount(ctx context.Context, accountID string, filter domain.TransactionFilter, req domain.PageRequest) (domain.Page[domain.Transaction], error) {
	txs, err := r.store.FindTransactions(ctx, accountID, filter, req.Offset(), req.Limit())
	if err != nil {
		return domain.Page[domain.Transaction]{}, domain.AsStorage(err, "cannot query transactions for account %s", accountID)
	}
	return domain.NewPage(txs, req), nil
}

// FindRange 回傳 [from, to] 內全部交易 (不分頁)
func (r *TransactionRepository) FindRange(ctx context.Context, accountID string, from, to domain.Date) ([]domain.Transaction, error) {
	txs, err := r.store.FindTransactionRange(ctx, accountID, from, to)
	if err != nil {
		return nil, domain.AsStorage(err, "cannot read transactions for account %s", accountID)
	}
	return txs, nil
}

// SumBefore 加總 date < before 的金額；before 為 nil 即為當前餘額
func (r *TransactionRepository) SumBefore(ctx context.Context, accountID string, before *domain.Date) (int64, error) {
	sum, err := r.store.SumTransactions(ctx, accountID, before)
	if err != nil {
		return 0, domain.AsStorage(err, "cannot compute balance for account %s", accountID)
	}
	return sum, nil
}
