package redis

import (
	"context"
	"os"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// 需要真實的 Redis，未設定 LEDGER_TEST_REDIS_ADDR 時略過
func newTestSequence(t *testing.T) *Sequence {
	t.Helper()
	addr := os.Getenv("LEDGER_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("LEDGER_TEST_REDIS_ADDR not set")
	}
	ctx := context.Background()
	s, err := NewSequence(ctx, Config{Addr: addr, Key: "ledger_test_" + uuid.NewString()}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = s.Clear(ctx)
		_ = s.Close()
	})
	return s
}

func TestRedisSequenceConcurrentNext(t *testing.T) {
	s := newTestSequence(t)
	ctx := context.Background()

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		seen = make(map[int64]bool)
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				n, err := s.Next(ctx)
				if !assert.NoError(t, err) {
					return
				}
				mu.Lock()
				assert.False(t, seen[n])
				seen[n] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, seen, 500)
	for i := int64(1); i <= 500; i++ {
		assert.True(t, seen[i], "missing %d", i)
	}
}

func TestRedisSequenceClear(t *testing.T) {
	s := newTestSequence(t)
	ctx := context.Background()

	_, err := s.Next(ctx)
	require.NoError(t, err)
	require.NoError(t, s.Clear(ctx))

	n, err := s.Next(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}
