package sqldb

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/JoeShih716/go-accounts-ledger/internal/app/core/domain"
	"github.com/JoeShih716/go-accounts-ledger/pkg/database"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, _ := newTestStoreWithClient(t)
	return s
}

func newTestStoreWithClient(t *testing.T) (*Store, *database.Client) {
	t.Helper()
	client, err := database.NewClient(database.Config{
		Driver:   database.DriverSQLite,
		Path:     filepath.Join(t.TempDir(), "ledger.db"),
		LogLevel: "silent",
	}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	s, err := NewStore(context.Background(), client)
	require.NoError(t, err)
	return s, client
}

func TestSequenceIsMonotonicAndUnique(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	first, err := s.Next(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, first)

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		seen = map[int64]bool{first: true}
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				n, err := s.Next(ctx)
				if !assert.NoError(t, err) {
					return
				}
				mu.Lock()
				assert.False(t, seen[n], "duplicate sequence %d", n)
				seen[n] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Len(t, seen, 81)
}

func TestAccountsRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	for _, a := range []domain.Account{
		{ID: "000000000003_11", HolderID: "bob"},
		{ID: "000000000001_42", HolderID: "alice"},
		{ID: "000000000002_07", HolderID: "alice"},
	} {
		n, err := s.InsertAccount(ctx, a)
		require.NoError(t, err)
		require.EqualValues(t, 1, n)
	}

	n, err := s.InsertAccount(ctx, domain.Account{ID: "000000000003_11", HolderID: "dup"})
	require.NoError(t, err)
	assert.EqualValues(t, 0, n, "duplicate id is reported as zero inserts")

	a, found, err := s.FindAccount(ctx, "000000000003_11")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "bob", a.HolderID)

	_, found, err = s.FindAccount(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, found)

	all, err := s.FindAccounts(ctx, domain.AccountFilter{}, 0, 10)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "000000000001_42", all[0].ID)
	assert.Equal(t, "000000000002_07", all[1].ID)
	assert.Equal(t, "000000000003_11", all[2].ID)

	alice := "alice"
	page, err := s.FindAccounts(ctx, domain.AccountFilter{HolderID: &alice}, 1, 5)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "000000000002_07", page[0].ID)
}

func TestTransactionsQueriesAndSums(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	txs := []domain.Transaction{
		{ID: "000000000004_00", AccountID: "a", AmountCents: 2000, Date: domain.MustDate("2021-02-01"), Memo: "interest"},
		{ID: "000000000002_00", AccountID: "a", AmountCents: 150000, Date: domain.MustDate("2021-01-01"), Memo: "initial"},
		{ID: "000000000003_00", AccountID: "a", AmountCents: -5000, Date: domain.MustDate("2021-01-05"), Memo: "Rent 100%"},
		{ID: "000000000005_00", AccountID: "b", AmountCents: 7, Date: domain.MustDate("2021-01-05"), Memo: "rent"},
	}
	for _, tx := range txs {
		n, err := s.InsertTransaction(ctx, tx)
		require.NoError(t, err)
		require.EqualValues(t, 1, n)
	}

	got, err := s.FindTransactions(ctx, "a", domain.TransactionFilter{}, 0, 10)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "000000000002_00", got[0].ID)
	assert.Equal(t, "000000000003_00", got[1].ID)
	assert.Equal(t, "000000000004_00", got[2].ID)
	assert.Equal(t, domain.MustDate("2021-01-05"), got[1].Date)

	memo := "RENT"
	got, err = s.FindTransactions(ctx, "a", domain.TransactionFilter{MemoSubstring: &memo}, 0, 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "000000000003_00", got[0].ID)

	// LIKE 萬用字元必須照字面比對
	for sub, want := range map[string]int{"%": 1, "_": 0, "t 1": 1, "": 3} {
		sub := sub
		got, err = s.FindTransactions(ctx, "a", domain.TransactionFilter{MemoSubstring: &sub}, 0, 10)
		require.NoError(t, err)
		assert.Len(t, got, want, "memo substring %q", sub)
	}

	date := domain.MustDate("2021-02-01")
	got, err = s.FindTransactions(ctx, "a", domain.TransactionFilter{Date: &date}, 0, 10)
	require.NoError(t, err)
	require.Len(t, got, 1)

	rng, err := s.FindTransactionRange(ctx, "a", domain.MustDate("2021-01-01"), domain.MustDate("2021-01-31"))
	require.NoError(t, err)
	require.Len(t, rng, 2)

	sum, err := s.SumTransactions(ctx, "a", nil)
	require.NoError(t, err)
	assert.EqualValues(t, 147000, sum)

	before := domain.MustDate("2021-01-05")
	sum, err = s.SumTransactions(ctx, "a", &before)
	require.NoError(t, err)
	assert.EqualValues(t, 150000, sum)

	sum, err = s.SumTransactions(ctx, "nobody", nil)
	require.NoError(t, err)
	assert.Zero(t, sum)
}

func TestClearResetsEverything(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.Next(ctx)
	require.NoError(t, err)
	_, err = s.InsertAccount(ctx, domain.Account{ID: "x", HolderID: "h"})
	require.NoError(t, err)

	require.NoError(t, s.Clear(ctx))

	all, err := s.FindAccounts(ctx, domain.AccountFilter{}, 0, 10)
	require.NoError(t, err)
	assert.Empty(t, all)
	n, err := s.Next(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestMemoSearchFoldsNonASCII(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.InsertTransaction(ctx, domain.Transaction{
		ID: "000000000001_00", AccountID: "a", AmountCents: 100, Date: domain.MustDate("2021-03-01"), Memo: "ÉCOLE fees",
	})
	require.NoError(t, err)

	for _, sub := range []string{"école", "ÉCOLE", "Éc", "FEES"} {
		sub := sub
		got, err := s.FindTransactions(ctx, "a", domain.TransactionFilter{MemoSubstring: &sub}, 0, 10)
		require.NoError(t, err)
		assert.Len(t, got, 1, "memo substring %q", sub)
	}

	ecole := "ecole"
	got, err := s.FindTransactions(ctx, "a", domain.TransactionFilter{MemoSubstring: &ecole}, 0, 10)
	require.NoError(t, err)
	assert.Empty(t, got, "accents are not folded")
}

func TestHolderIDIsExactAndByteOrdered(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	for _, a := range []domain.Account{
		{ID: "000000000001_00", HolderID: "alice"},
		{ID: "000000000002_00", HolderID: "Alice"},
		{ID: "000000000003_00", HolderID: "alicé"},
		{ID: "000000000004_00", HolderID: "alice "},
	} {
		_, err := s.InsertAccount(ctx, a)
		require.NoError(t, err)
	}

	alice := "alice"
	got, err := s.FindAccounts(ctx, domain.AccountFilter{HolderID: &alice}, 0, 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "000000000001_00", got[0].ID)

	all, err := s.FindAccounts(ctx, domain.AccountFilter{}, 0, 10)
	require.NoError(t, err)
	holders := make([]string, 0, len(all))
	for _, a := range all {
		holders = append(holders, a.HolderID)
	}
	assert.Equal(t, []string{"Alice", "alice", "alice ", "alicé"}, holders)
}

func TestMigrateBackfillsMemoLower(t *testing.T) {
	ctx := context.Background()
	s, client := newTestStoreWithClient(t)

	// 模擬欄位加入前的舊資料
	require.NoError(t, client.DB().Create(&sqlTransaction{
		ID: "000000000001_00", AccountID: "a", AmountCents: 1, Date: "2021-01-01", Memo: "Ünïcode RENT",
	}).Error)

	_, err := NewStore(ctx, client)
	require.NoError(t, err)

	sub := "ünïcode rent"
	got, err := s.FindTransactions(ctx, "a", domain.TransactionFilter{MemoSubstring: &sub}, 0, 10)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestDialect(t *testing.T) {
	tests := []struct {
		driver string
		eq     string
		order  string
	}{
		{database.DriverMySQL, "holder_id = CAST(? AS BINARY)", "holder_id ASC, id ASC"},
		{database.DriverPostgres, "holder_id = ?", `holder_id COLLATE "C" ASC, id COLLATE "C" ASC`},
		{database.DriverSQLite, "holder_id = ?", "holder_id ASC, id ASC"},
	}
	for _, tt := range tests {
		t.Run(tt.driver, func(t *testing.T) {
			d := dialect{driver: tt.driver}
			assert.Equal(t, tt.eq, d.eq("holder_id"))
			assert.Equal(t, tt.order, d.ascending("holder_id", "id"))
		})
	}
}
