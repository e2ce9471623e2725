// Package seed 產生隨機帳戶與交易，供開發與壓測使用
package seed

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/JoeShih716/go-accounts-ledger/internal/app/core/domain"
	"github.com/JoeShih716/go-accounts-ledger/internal/app/core/usecase"
)

const year = 2021

// 1~9 月每月天數
var daysInMonth = [...]int{31, 28, 31, 30, 31, 30, 31, 31, 30}

var holders = []string{
	"homer", "bart", "marge", "lisa", "maggie", "john",
	"carey", "mary", "mariah", "jane", "julie", "tony",
}

var withdrawals = []string{
	"rent", "groceries", "tuition", "credit card payment",
	"split meal with karen", "dinner with the gang", "club dues",
	"fitness club payment", "mortgage payment", "car payment", "car repair",
	"cell phone bill", "movies", "laptop repair",
	"transfer to my other account", "internet bill",
}

var deposits = []string{
	"salary", "interest", "closing my CD", "transfer from my other account",
	"check from mary for meal", "cashback on credit card", "rental income",
	"royalties", "repayment from john", "tips",
}

var openings = []string{"initial deposit", "start my account"}

// Loader 透過帳本服務寫入隨機資料
type Loader struct {
	ledger      usecase.Ledger
	logger      *zap.Logger
	concurrency int

	mu  sync.Mutex
	rnd *rand.Rand
}

// NewLoader concurrency 為同時寫入的帳戶數
func NewLoader(ledger usecase.Ledger, logger *zap.Logger, concurrency int, rnd *rand.Rand) *Loader {
	if concurrency < 1 {
		concurrency = 1
	}
	if rnd == nil {
		rnd = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Loader{ledger: ledger, logger: logger, concurrency: concurrency, rnd: rnd}
}

// Load 建立 nAccounts 個帳戶，每個帳戶先存入一筆期初款項 (2021-01-01)，再加上 nTransactions 筆隨機收支
// 回傳建立的帳戶 ID (順序不固定)
func (l *Loader) Load(ctx context.Context, nAccounts, nTransactions int) ([]string, error) {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(l.concurrency)

	var (
		mu  sync.Mutex
		ids = make([]string, 0, nAccounts)
	)
	for i := 0; i < nAccounts; i++ {
		g.Go(func() error {
			id, err := l.loadAccount(ctx, nTransactions)
			if err != nil {
				return err
			}
			mu.Lock()
			ids = append(ids, id)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	l.logger.Info("random data loaded", zap.Int("accounts", nAccounts), zap.Int("transactions_per_account", nTransactions))
	return ids, nil
}

func (l *Loader) loadAccount(ctx context.Context, nTransactions int) (string, error) {
	id, err := l.ledger.CreateAccount(ctx, l.choice(holders))
	if err != nil {
		return "", fmt.Errorf("seed account: %w", err)
	}
	if _, err := l.ledger.RecordTransaction(ctx, id, l.amount(+1, 1000), domain.MustDate("2021-01-01"), l.choice(openings)); err != nil {
		return "", fmt.Errorf("seed opening deposit: %w", err)
	}
	for i := 0; i < nTransactions; i++ {
		sign, memos := int64(-1), withdrawals
		if l.intN(2) == 1 {
			sign, memos = +1, deposits
		}
		if _, err := l.ledger.RecordTransaction(ctx, id, l.amount(sign, 50), l.date(), l.choice(memos)); err != nil {
			return "", fmt.Errorf("seed transaction: %w", err)
		}
	}
	return id, nil
}

// intN rand.Rand 不是 goroutine-safe
func (l *Loader) intN(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.rnd.IntN(n)
}

func (l *Loader) choice(options []string) string {
	return options[l.intN(len(options))]
}

// amount 金額落在 [base/2, base*2) 元之間，加上隨機分數
func (l *Loader) amount(sign int64, base int) int64 {
	dollars := int64(base/2 + l.intN(base*2-base/2))
	cents := int64(l.intN(100))
	return sign * (dollars*100 + cents)
}

func (l *Loader) date() domain.Date {
	month := 1 + l.intN(len(daysInMonth))
	day := 1 + l.intN(daysInMonth[month-1])
	return domain.MustDate(fmt.Sprintf("%d-%02d-%02d", year, month, day))
}
