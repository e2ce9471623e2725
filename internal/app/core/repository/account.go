package repository

import (
	"context"

	"github.com/JoeShih716/go-accounts-ledger/internal/app/core/domain"
)

// AccountRepository 帳戶存取
type AccountRepository struct {
	store AccountStore
	ids   *IDGenerator
}

func NewAccountRepository(store AccountStore, ids *IDGenerator) *AccountRepository {
	return &AccountRepository{
		store: store,
		ids:   ids,
	}
}

// Create 建立帳戶並回傳新 ID
// 寫入筆數不是 1 時視為儲存錯誤 (例如 ID 衝突被儲存層默默忽略)
func (r *AccountRepository) Create(ctx context.Context, holderID string) (string, error) {
	id, err := r.ids.Allocate(ctx)
	if err != nil {
		return "", err
	}
	n, err := r.store.InsertAccount(ctx, domain.Account{ID: id, HolderID: holderID})
	if err != nil {
		return "", domain.AsStorage(err, "cannot create new account")
	}
	if n != 1 {
		return "", domain.Storage(nil, "account create: expected 1 insert, got %d", n)
	}
	return id, nil
}

// Get 依 ID 取得帳戶
func (r *AccountRepository) Get(ctx context.Context, id string) (domain.Account, error) {
	account, found, err := r.store.FindAccount(ctx, id)
	if err != nil {
		return domain.Account{}, domain.AsStorage(err, "cannot read account %s", id)
	}
	if !found {
		return domain.Account{}, domain.NotFound("no account for ID %s", id)
	}
	return account, nil
}

// Search 依條件搜尋帳戶，結果依 (holderId, id) 排序並分頁
func (r *AccountRepository) Search(ctx context.Context, filter domain.AccountFilter, req domain.PageRequest) (domain.Page[domain.Account], error) {
	accounts, err := r.store.FindAccounts(ctx, filter, req.Offset(), req.Limit())
	if err != nil {
		return domain.Page[domain.Account]{}, domain.AsStorage(err, "cannot search accounts")
	}
	return domain.NewPage(accounts, req), nil
}
