package memory

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JoeShih716/go-accounts-ledger/internal/app/core/domain"
	"github.com/JoeShih716/go-accounts-ledger/pkg/wal"
)

func TestLMAXStoreSerializesWrites(t *testing.T) {
	w, err := wal.NewWAL(filepath.Join(t.TempDir(), "wal.log"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })

	s, err := NewLMAXStore(w)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		seen = make(map[int64]bool)
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				n, err := s.Next(context.Background())
				if !assert.NoError(t, err) {
					return
				}
				mu.Lock()
				seen[n] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Len(t, seen, 500)

	n, err := s.InsertAccount(context.Background(), domain.Account{ID: "a", HolderID: "h"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	n, err = s.InsertAccount(context.Background(), domain.Account{ID: "a", HolderID: "h"})
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)

	_, found, err := s.FindAccount(context.Background(), "a")
	require.NoError(t, err)
	assert.True(t, found)

	cancel()
	<-s.Done()
	_, err = s.Next(context.Background())
	assert.ErrorIs(t, err, ErrStopped)

	// WAL 中的序號與帳戶可被新的 store 恢復
	recovered, err := NewMutexStore(w)
	require.NoError(t, err)
	next, err := recovered.Next(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 501, next)
	_, found, err = recovered.FindAccount(context.Background(), "a")
	require.NoError(t, err)
	assert.True(t, found)
}

func TestLMAXStoreHonorsCallerContext(t *testing.T) {
	s, err := NewLMAXStore(nil)
	require.NoError(t, err)

	// 尚未 Start，buffer 滿之前請求會被排入；取消的 context 直接回傳
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for i := 0; i < cap(s.requests); i++ {
		s.requests <- &writeRequest{done: make(chan struct{}, 1)}
	}
	_, err = s.Next(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
