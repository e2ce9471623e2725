package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/JoeShih716/go-accounts-ledger/internal/app/core/domain"
	"github.com/JoeShih716/go-accounts-ledger/internal/app/core/repository"
	"github.com/JoeShih716/go-accounts-ledger/pkg/wal"
)

// ErrStopped 寫入迴圈已停止
var ErrStopped = errors.New("memory store: write loop stopped")

type writeKind uint8

const (
	writeNext writeKind = iota
	writeAccount
	writeTransaction
	writeClear
)

// writeRequest 寫入請求包裝，done 讓呼叫端等待結果
type writeRequest struct {
	kind    writeKind
	account domain.Account
	tx      domain.Transaction

	n    int64
	err  error
	done chan struct{}
}

// LMAXStore 單一寫入者的記憶體儲存層
// 所有寫入 (序號、帳戶、交易、清空) 經由 channel 交給同一個 goroutine 依序執行，
// WAL 的紀錄順序因此與序號配置順序一致；讀取直接走底下的 MutexStore
//
// 呼叫端(等待) -> Channel -> Run Loop -> WAL -> Map Update -> done -> 呼叫端(收到結果)
type LMAXStore struct {
	*MutexStore

	requests    chan *writeRequest
	requestPool sync.Pool
	stopped     chan struct{} // 不再接受新請求
	finished    chan struct{} // 剩餘請求已處理完
}

// NewLMAXStore 從 WAL 恢復資料後建立 LMAXStore，需呼叫 Start 才會開始處理寫入
//
// 參數:
//
//	w: Write-Ahead Log 實例 (可為 nil)
//
// 回傳:
//
//	*LMAXStore: LMAXStore 實例
//	error: WAL 恢復錯誤
func NewLMAXStore(w *wal.WAL) (*LMAXStore, error) {
	base, err := NewMutexStore(w)
	if err != nil {
		return nil, err
	}
	return &LMAXStore{
		MutexStore: base,
		requests:   make(chan *writeRequest, 1000),
		requestPool: sync.Pool{
			New: func() any {
				return &writeRequest{done: make(chan struct{}, 1)}
			},
		},
		stopped:  make(chan struct{}),
		finished: make(chan struct{}),
	}, nil
}

// Start 啟動寫入迴圈；ctx 取消後會把已排入的請求處理完再結束
func (s *LMAXStore) Start(ctx context.Context) {
	go s.run(ctx)
}

// Done 在寫入迴圈結束 (剩餘請求處理完) 後關閉
func (s *LMAXStore) Done() <-chan struct{} {
	return s.finished
}

func (s *LMAXStore) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(s.stopped)
			s.drain()
			close(s.finished)
			return
		case req := <-s.requests:
			s.process(req)
		}
	}
}

func (s *LMAXStore) drain() {
	for {
		select {
		case req := <-s.requests:
			s.process(req)
		default:
			return
		}
	}
}

// process 只在寫入迴圈中執行
func (s *LMAXStore) process(req *writeRequest) {
	ctx := context.Background()
	switch req.kind {
	case writeNext:
		req.n, req.err = s.MutexStore.Next(ctx)
	case writeAccount:
		req.n, req.err = s.MutexStore.InsertAccount(ctx, req.account)
	case writeTransaction:
		req.n, req.err = s.MutexStore.InsertTransaction(ctx, req.tx)
	case writeClear:
		req.err = s.MutexStore.Clear(ctx)
	}
	req.done <- struct{}{}
}

// submit 放入輸送帶並等待結果
func (s *LMAXStore) submit(ctx context.Context, fill func(*writeRequest)) (int64, error) {
	req := s.requestPool.Get().(*writeRequest)
	*req = writeRequest{done: req.done}
	fill(req)

	select {
	case <-s.stopped:
		s.requestPool.Put(req)
		return 0, ErrStopped
	case <-ctx.Done():
		s.requestPool.Put(req)
		return 0, ctx.Err()
	case s.requests <- req:
	}

	// 已排入的請求一定會被處理，除非迴圈在 drain 之後才收到
	select {
	case <-req.done:
	case <-s.finished:
		select {
		case <-req.done:
		default:
			return 0, ErrStopped
		}
	}
	n, err := req.n, req.err
	s.requestPool.Put(req)
	return n, err
}

func (s *LMAXStore) Next(ctx context.Context) (int64, error) {
	return s.submit(ctx, func(r *writeRequest) { r.kind = writeNext })
}

func (s *LMAXStore) InsertAccount(ctx context.Context, account domain.Account) (int64, error) {
	return s.submit(ctx, func(r *writeRequest) {
		r.kind = writeAccount
		r.account = account
	})
}

func (s *LMAXStore) InsertTransaction(ctx context.Context, tx domain.Transaction) (int64, error) {
	return s.submit(ctx, func(r *writeRequest) {
		r.kind = writeTransaction
		r.tx = tx
	})
}

func (s *LMAXStore) Clear(ctx context.Context) error {
	_, err := s.submit(ctx, func(r *writeRequest) { r.kind = writeClear })
	return err
}

var (
	_ repository.Sequence         = (*LMAXStore)(nil)
	_ repository.AccountStore     = (*LMAXStore)(nil)
	_ repository.TransactionStore = (*LMAXStore)(nil)
	_ repository.Clearer          = (*LMAXStore)(nil)
)
