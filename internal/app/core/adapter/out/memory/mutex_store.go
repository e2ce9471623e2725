package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/JoeShih716/go-accounts-ledger/internal/app/core/domain"
	"github.com/JoeShih716/go-accounts-ledger/internal/app/core/repository"
	"github.com/JoeShih716/go-accounts-ledger/pkg/wal"
)

// WAL 紀錄種類
const (
	recordSequence    = "sequence"
	recordAccount     = "account"
	recordTransaction = "transaction"
)

type sequenceRecord struct {
	Value int64 `json:"value"`
}

// MutexStore 是一個使用 RWMutex 保護的記憶體儲存層
//
// 結構:
//
//	accounts: 帳戶資料 Map
//	transactions: 每個帳戶的交易，維持 (date, id) 排序
//	seq: 序號計數器 (atomic)
//	wal: Write-Ahead Log 實例，nil 表示純記憶體不落地
type MutexStore struct {
	mu           sync.RWMutex
	accounts     map[string]domain.Account
	transactions map[string][]domain.Transaction
	txIDs        map[string]struct{}
	seq          atomic.Int64
	wal          *wal.WAL
}

// NewMutexStore 建立一個新的 MutexStore 實例，並從 WAL 恢復資料
//
// 參數:
//
//	w: Write-Ahead Log 實例 (可為 nil)
//
// 回傳:
//
//	*MutexStore: MutexStore 實例
//	error: 初始化錯誤 (如 WAL 恢復失敗)
func NewMutexStore(w *wal.WAL) (*MutexStore, error) {
	s := &MutexStore{
		accounts:     make(map[string]domain.Account),
		transactions: make(map[string][]domain.Transaction),
		txIDs:        make(map[string]struct{}),
		wal:          w,
	}
	if w != nil {
		if err := s.recoverFromWAL(); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// recoverFromWAL 從 WAL 檔案恢復狀態
// 只有 NewMutexStore 呼叫，無需 Lock (單執行緒)
func (s *MutexStore) recoverFromWAL() error {
	return s.wal.ReadAll(func(rec wal.Record) error {
		switch rec.Kind {
		case recordSequence:
			var r sequenceRecord
			if err := json.Unmarshal(rec.Data, &r); err != nil {
				return err
			}
			// 並發配置時紀錄可能不是遞增順序，取最大值
			if r.Value > s.seq.Load() {
				s.seq.Store(r.Value)
			}
		case recordAccount:
			var a domain.Account
			if err := json.Unmarshal(rec.Data, &a); err != nil {
				return err
			}
			s.accounts[a.ID] = a
		case recordTransaction:
			var t domain.Transaction
			if err := json.Unmarshal(rec.Data, &t); err != nil {
				return err
			}
			s.insertSorted(t)
		default:
			return fmt.Errorf("unknown wal record kind %q", rec.Kind)
		}
		return nil
	})
}

// Next 原子遞增序號；有 WAL 時先落地再回傳，重啟後不會重複配置
func (s *MutexStore) Next(ctx context.Context) (int64, error) {
	n := s.seq.Add(1)
	if s.wal != nil {
		if err := s.wal.Append(recordSequence, sequenceRecord{Value: n}); err != nil {
			return 0, fmt.Errorf("wal write failed: %w", err)
		}
	}
	return n, nil
}

func (s *MutexStore) InsertAccount(ctx context.Context, account domain.Account) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[account.ID]; ok {
		return 0, nil
	}
	if s.wal != nil {
		if err := s.wal.Append(recordAccount, account); err != nil {
			return 0, fmt.Errorf("wal write failed: %w", err)
		}
	}
	s.accounts[account.ID] = account
	return 1, nil
}

func (s *MutexStore) FindAccount(ctx context.Context, id string) (domain.Account, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.accounts[id]
	return a, ok, nil
}

func (s *MutexStore) FindAccounts(ctx context.Context, filter domain.AccountFilter, offset, limit int) ([]domain.Account, error) {
	s.mu.RLock()
	matched := make([]domain.Account, 0)
	for _, a := range s.accounts {
		if filter.Matches(a) {
			matched = append(matched, a)
		}
	}
	s.mu.RUnlock()

	slices.SortFunc(matched, domain.CompareAccounts)
	return window(matched, offset, limit), nil
}

func (s *MutexStore) InsertTransaction(ctx context.Context, tx domain.Transaction) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.txIDs[tx.ID]; ok {
		return 0, nil
	}
	if s.wal != nil {
		if err := s.wal.Append(recordTransaction, tx); err != nil {
			return 0, fmt.Errorf("wal write failed: %w", err)
		}
	}
	s.insertSorted(tx)
	return 1, nil
}

// insertSorted 呼叫端需持有寫鎖
func (s *MutexStore) insertSorted(tx domain.Transaction) {
	list := s.transactions[tx.AccountID]
	i, _ := slices.BinarySearchFunc(list, tx, domain.CompareTransactions)
	s.transactions[tx.AccountID] = slices.Insert(list, i, tx)
	s.txIDs[tx.ID] = struct{}{}
}

func (s *MutexStore) FindTransactions(ctx context.Context, accountID string, filter domain.TransactionFilter, offset, limit int) ([]domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]domain.Transaction, 0)
	for _, t := range s.transactions[accountID] {
		if filter.Matches(t) {
			matched = append(matched, t)
		}
	}
	return window(matched, offset, limit), nil
}

func (s *MutexStore) FindTransactionRange(ctx context.Context, accountID string, from, to domain.Date) ([]domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Transaction, 0)
	for _, t := range s.transactions[accountID] {
		if t.Date.Within(from, to) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *MutexStore) SumTransactions(ctx context.Context, accountID string, before *domain.Date) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var sum int64
	for _, t := range s.transactions[accountID] {
		if before != nil && !t.Date.Before(*before) {
			break
		}
		sum += t.AmountCents
	}
	return sum, nil
}

// Clear 清空所有資料與序號
func (s *MutexStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.wal != nil {
		if err := s.wal.Truncate(); err != nil {
			return fmt.Errorf("wal truncate failed: %w", err)
		}
	}
	s.accounts = make(map[string]domain.Account)
	s.transactions = make(map[string][]domain.Transaction)
	s.txIDs = make(map[string]struct{})
	s.seq.Store(0)
	return nil
}

// window 回傳 items[offset : offset+limit]，超出範圍時截斷
func window[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := min(offset+limit, len(items))
	return slices.Clone(items[offset:end])
}

var (
	_ repository.Sequence         = (*MutexStore)(nil)
	_ repository.AccountStore     = (*MutexStore)(nil)
	_ repository.TransactionStore = (*MutexStore)(nil)
	_ repository.Clearer          = (*MutexStore)(nil)
)
