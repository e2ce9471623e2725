package repository_test

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JoeShih716/go-accounts-ledger/internal/app/core/adapter/out/memory"
	"github.com/JoeShih716/go-accounts-ledger/internal/app/core/domain"
	"github.com/JoeShih716/go-accounts-ledger/internal/app/core/repository"
)

type fixture struct {
	store        *memory.MutexStore
	ids          *repository.IDGenerator
	accounts     *repository.AccountRepository
	transactions *repository.TransactionRepository
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	store, err := memory.NewMutexStore(nil)
	require.NoError(t, err)
	ids := repository.NewIDGenerator(store)
	accounts := repository.NewAccountRepository(store, ids)
	return fixture{
		store:        store,
		ids:          ids,
		accounts:     accounts,
		transactions: repository.NewTransactionRepository(store, accounts, ids),
	}
}

func TestFormatIDSortsInAllocationOrder(t *testing.T) {
	assert.Equal(t, "000000000007_03", repository.FormatID(7, 3))

	ids := []string{
		repository.FormatID(10, 0),
		repository.FormatID(2, 99),
		repository.FormatID(100, 50),
		repository.FormatID(9, 1),
	}
	sort.Strings(ids)
	assert.Equal(t, []string{
		repository.FormatID(2, 99),
		repository.FormatID(9, 1),
		repository.FormatID(10, 0),
		repository.FormatID(100, 50),
	}, ids)
}

func TestAllocateIsUniqueAcrossKinds(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		accID, err := f.accounts.Create(ctx, "holder")
		require.NoError(t, err)
		txID, err := f.transactions.Create(ctx, accID, 100, domain.MustDate("2021-01-01"), "m")
		require.NoError(t, err)
		for _, id := range []string{accID, txID} {
			require.False(t, seen[id], "duplicate id %s", id)
			seen[id] = true
		}
	}
}

func TestAccountGetNotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.accounts.Get(context.Background(), "nope")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestAccountSearchOrderingAndFilter(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	holders := []string{"carol", "alice", "bob", "alice", "carol", "alice"}
	byHolder := map[string][]string{}
	for _, h := range holders {
		id, err := f.accounts.Create(ctx, h)
		require.NoError(t, err)
		byHolder[h] = append(byHolder[h], id)
	}

	page, err := f.accounts.Search(ctx, domain.AccountFilter{}, domain.PageRequest{Count: 100})
	require.NoError(t, err)
	require.Len(t, page.Items, len(holders))
	assert.True(t, sort.SliceIsSorted(page.Items, func(i, j int) bool {
		return domain.CompareAccounts(page.Items[i], page.Items[j]) < 0
	}))
	assert.Equal(t, "alice", page.Items[0].HolderID)
	assert.Equal(t, byHolder["alice"][0], page.Items[0].ID)

	alice := "alice"
	page, err = f.accounts.Search(ctx, domain.AccountFilter{HolderID: &alice}, domain.PageRequest{Count: 2})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	require.True(t, page.HasNext())
	assert.False(t, page.HasPrev())

	page, err = f.accounts.Search(ctx, domain.AccountFilter{HolderID: &alice}, domain.PageRequest{Index: *page.Next, Count: 2})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, byHolder["alice"][2], page.Items[0].ID)
	assert.False(t, page.HasNext())
	require.True(t, page.HasPrev())
	assert.Equal(t, 0, *page.Prev)

	id := byHolder["bob"][0]
	page, err = f.accounts.Search(ctx, domain.AccountFilter{ID: &id, HolderID: &alice}, domain.PageRequest{})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
}

func TestTransactionCreateRequiresAccount(t *testing.T) {
	f := newFixture(t)
	_, err := f.transactions.Create(context.Background(), "missing", 1, domain.MustDate("2021-01-01"), "m")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestTransactionQueries(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	acc, err := f.accounts.Create(ctx, "alice")
	require.NoError(t, err)
	other, err := f.accounts.Create(ctx, "bob")
	require.NoError(t, err)

	post := func(account string, cents int64, date, memo string) string {
		id, err := f.transactions.Create(ctx, account, cents, domain.MustDate(date), memo)
		require.NoError(t, err)
		return id
	}
	t3 := post(acc, 300, "2021-03-01", "Salary March")
	t1 := post(acc, 100, "2021-01-01", "salary jan")
	t2 := post(acc, -50, "2021-02-01", "rent")
	t2b := post(acc, -25, "2021-02-01", "100% rent_share")
	post(other, 999, "2021-01-01", "salary")

	page, err := f.transactions.FindByAccount(ctx, acc, domain.TransactionFilter{}, domain.PageRequest{Count: 10})
	require.NoError(t, err)
	var got []string
	for _, tx := range page.Items {
		got = append(got, tx.ID)
	}
	assert.Equal(t, []string{t1, t2, t2b, t3}, got)

	memo := "SALARY"
	page, err = f.transactions.FindByAccount(ctx, acc, domain.TransactionFilter{MemoSubstring: &memo}, domain.PageRequest{})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, t1, page.Items[0].ID)
	assert.Equal(t, t3, page.Items[1].ID)

	date := domain.MustDate("2021-02-01")
	page, err = f.transactions.FindByAccount(ctx, acc, domain.TransactionFilter{Date: &date}, domain.PageRequest{Count: 1})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, t2, page.Items[0].ID)
	assert.True(t, page.HasNext())

	txID := t2b
	page, err = f.transactions.FindByAccount(ctx, acc, domain.TransactionFilter{TransactionID: &txID}, domain.PageRequest{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)

	rng, err := f.transactions.FindRange(ctx, acc, domain.MustDate("2021-01-01"), domain.MustDate("2021-02-01"))
	require.NoError(t, err)
	assert.Len(t, rng, 3)

	sum, err := f.transactions.SumBefore(ctx, acc, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 325, sum)

	before := domain.MustDate("2021-02-01")
	sum, err = f.transactions.SumBefore(ctx, acc, &before)
	require.NoError(t, err)
	assert.EqualValues(t, 100, sum)
}

// brokenStore 模擬儲存層異常
type brokenStore struct {
	*memory.MutexStore
	inserted int64
	err      error
}

func (b brokenStore) InsertAccount(context.Context, domain.Account) (int64, error) {
	return b.inserted, b.err
}

type brokenSequence struct{}

func (brokenSequence) Next(context.Context) (int64, error) {
	return 0, errors.New("connection refused")
}

func TestStorageAnomalies(t *testing.T) {
	ctx := context.Background()
	mem, err := memory.NewMutexStore(nil)
	require.NoError(t, err)
	ids := repository.NewIDGenerator(mem)

	repo := repository.NewAccountRepository(brokenStore{MutexStore: mem, inserted: 0}, ids)
	_, err = repo.Create(ctx, "h")
	assert.True(t, errors.Is(err, domain.ErrStorage), "zero inserts: %v", err)

	repo = repository.NewAccountRepository(brokenStore{MutexStore: mem, err: errors.New("boom")}, ids)
	_, err = repo.Create(ctx, "h")
	assert.True(t, errors.Is(err, domain.ErrStorage), "insert error: %v", err)

	repo = repository.NewAccountRepository(mem, repository.NewIDGenerator(brokenSequence{}))
	_, err = repo.Create(ctx, "h")
	assert.True(t, errors.Is(err, domain.ErrStorage), "sequence error: %v", err)
}
