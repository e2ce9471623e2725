package sqldb

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/JoeShih716/go-accounts-ledger/internal/app/core/domain"
	"github.com/JoeShih716/go-accounts-ledger/internal/app/core/repository"
	"github.com/JoeShih716/go-accounts-ledger/pkg/database"
)

const (
	// maxCASAttempts 序號 compare-and-swap 的最大重試次數
	maxCASAttempts = 100
	// backfillBatchSize 補齊 memo_lower 時每批處理的筆數
	backfillBatchSize = 500
	// mysqlTableOptions 字串一律以位元組比較，與 Go 的字串比較一致
	mysqlTableOptions = "CHARSET=utf8mb4 COLLATE=utf8mb4_bin"
)

// sqlAccount 對應資料庫的 accounts 表
type sqlAccount struct {
	ID        string `gorm:"primaryKey;type:varchar(32);index:idx_accounts_holder_id,priority:2"`
	HolderID  string `gorm:"column:holder_id;type:varchar(255);not null;index:idx_accounts_holder_id,priority:1"`
	CreatedAt int64  `gorm:"autoCreateTime:milli"` // 自動寫入時間
}

func (*sqlAccount) TableName() string {
	return "accounts"
}

// sqlTransaction 對應資料庫的 transactions 表
// (account_id, tx_date, id) 索引同時服務查詢排序與期初餘額加總
type sqlTransaction struct {
	ID          string `gorm:"primaryKey;type:varchar(32);index:idx_transactions_account_date,priority:3"`
	AccountID   string `gorm:"column:account_id;type:varchar(32);not null;index:idx_transactions_account_date,priority:1"`
	AmountCents int64  `gorm:"column:amount_cents;not null"`
	Date        string `gorm:"column:tx_date;type:varchar(10);not null;index:idx_transactions_account_date,priority:2"`
	Memo        string `gorm:"column:memo;type:text"`
	MemoLower   string `gorm:"column:memo_lower;type:text"` // strings.ToLower(memo)，memo 子字串查詢只比對這一欄
	CreatedAt   int64  `gorm:"autoCreateTime:milli"`
}

func (*sqlTransaction) TableName() string {
	return "transactions"
}

// sqlSequence 對應資料庫的 sequences 表 (計數器)
type sqlSequence struct {
	Name  string `gorm:"column:seq_name;primaryKey;type:varchar(64)"`
	Value int64  `gorm:"column:seq_value;not null"`
}

func (*sqlSequence) TableName() string {
	return "sequences"
}

// Store 以 GORM 實作的關聯式資料庫儲存層 (MySQL / PostgreSQL / SQLite)
//
// 比對與排序必須和記憶體實作相同：精確比對逐位元組、排序依位元組順序、memo 以 Go 的 strings.ToLower 折疊大小寫。
// 各資料庫預設的 collation 不保證這些，差異由 dialect 處理
type Store struct {
	client  *database.Client
	dialect dialect
}

// NewStore 建立 Store 並執行 schema migration
func NewStore(ctx context.Context, client *database.Client) (*Store, error) {
	s := &Store{client: client, dialect: dialect{driver: client.Driver()}}
	if err := s.migrate(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) db(ctx context.Context) *gorm.DB {
	return s.client.DB().WithContext(ctx)
}

func (s *Store) migrate(ctx context.Context) error {
	db := s.db(ctx)
	if s.dialect.driver == database.DriverMySQL {
		db = db.Set("gorm:table_options", mysqlTableOptions)
	}
	if err := db.AutoMigrate(&sqlAccount{}, &sqlTransaction{}, &sqlSequence{}); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	if err := s.backfillMemoLower(ctx); err != nil {
		return err
	}
	return s.ensureSequence(ctx)
}

// backfillMemoLower 補齊加入 memo_lower 欄位之前寫入的交易
// 折疊必須在 Go 端做，SQL 的 LOWER() 在 SQLite 只處理 ASCII
func (s *Store) backfillMemoLower(ctx context.Context) error {
	var rows []sqlTransaction
	res := s.db(ctx).
		Where("memo_lower = '' AND memo <> ''").
		FindInBatches(&rows, backfillBatchSize, func(_ *gorm.DB, _ int) error {
			for _, r := range rows {
				err := s.db(ctx).Model(&sqlTransaction{}).
					Where(s.dialect.eq("id"), r.ID).
					Update("memo_lower", strings.ToLower(r.Memo)).Error
				if err != nil {
					return err
				}
			}
			return nil
		})
	if res.Error != nil {
		return fmt.Errorf("backfill memo_lower: %w", res.Error)
	}
	return nil
}

// ensureSequence 確保計數器那一列存在
func (s *Store) ensureSequence(ctx context.Context) error {
	err := s.db(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&sqlSequence{Name: repository.SequenceKey, Value: 0}).Error
	if err != nil {
		return fmt.Errorf("init sequence: %w", err)
	}
	return nil
}

// Next 以 compare-and-swap 迴圈遞增序號
// 每次嘗試都是「讀目前值」+「只在值未變時寫入」，寫入影響 0 列代表被別人搶先，重讀再試
func (s *Store) Next(ctx context.Context) (int64, error) {
	for attempt := 0; attempt < maxCASAttempts; attempt++ {
		var cur sqlSequence
		if err := s.db(ctx).Where("seq_name = ?", repository.SequenceKey).Take(&cur).Error; err != nil {
			return 0, fmt.Errorf("read sequence: %w", err)
		}
		res := s.db(ctx).Model(&sqlSequence{}).
			Where("seq_name = ? AND seq_value = ?", repository.SequenceKey, cur.Value).
			Update("seq_value", cur.Value+1)
		if res.Error != nil {
			return 0, fmt.Errorf("update sequence: %w", res.Error)
		}
		if res.RowsAffected == 1 {
			return cur.Value + 1, nil
		}
		if err := ctx.Err(); err != nil {
			return 0, err
		}
	}
	return 0, fmt.Errorf("sequence %s: no progress after %d attempts", repository.SequenceKey, maxCASAttempts)
}

func (s *Store) InsertAccount(ctx context.Context, account domain.Account) (int64, error) {
	row := sqlAccount{ID: account.ID, HolderID: account.HolderID}
	// ID 衝突時不報錯而是回傳 0 筆，由 repository 判斷
	res := s.db(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&row)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (s *Store) FindAccount(ctx context.Context, id string) (domain.Account, bool, error) {
	var row sqlAccount
	err := s.db(ctx).Where(s.dialect.eq("id"), id).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Account{}, false, nil
	}
	if err != nil {
		return domain.Account{}, false, err
	}
	return row.toDomain(), true, nil
}

func (s *Store) FindAccounts(ctx context.Context, filter domain.AccountFilter, offset, limit int) ([]domain.Account, error) {
	q := s.db(ctx).Model(&sqlAccount{})
	if filter.ID != nil {
		q = q.Where(s.dialect.eq("id"), *filter.ID)
	}
	if filter.HolderID != nil {
		q = q.Where(s.dialect.eq("holder_id"), *filter.HolderID)
	}
	var rows []sqlAccount
	if err := q.Order(s.dialect.ascending("holder_id", "id")).Offset(offset).Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Account, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDomain())
	}
	return out, nil
}

func (s *Store) InsertTransaction(ctx context.Context, tx domain.Transaction) (int64, error) {
	row := sqlTransaction{
		ID:          tx.ID,
		AccountID:   tx.AccountID,
		AmountCents: tx.AmountCents,
		Date:        tx.Date.String(),
		Memo:        tx.Memo,
		MemoLower:   strings.ToLower(tx.Memo),
	}
	res := s.db(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&row)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (s *Store) FindTransactions(ctx context.Context, accountID string, filter domain.TransactionFilter, offset, limit int) ([]domain.Transaction, error) {
	q := s.db(ctx).Model(&sqlTransaction{}).Where(s.dialect.eq("account_id"), accountID)
	if filter.TransactionID != nil {
		q = q.Where(s.dialect.eq("id"), *filter.TransactionID)
	}
	if filter.Date != nil {
		q = q.Where("tx_date = ?", filter.Date.String())
	}
	if filter.MemoSubstring != nil {
		q = q.Where("memo_lower LIKE ? ESCAPE '!'", likePattern(*filter.MemoSubstring))
	}
	var rows []sqlTransaction
	if err := q.Order(s.dialect.ascending("tx_date", "id")).Offset(offset).Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	return toTransactions(rows), nil
}

func (s *Store) FindTransactionRange(ctx context.Context, accountID string, from, to domain.Date) ([]domain.Transaction, error) {
	var rows []sqlTransaction
	err := s.db(ctx).
		Where(s.dialect.eq("account_id"), accountID).
		Where("tx_date >= ? AND tx_date <= ?", from.String(), to.String()).
		Order(s.dialect.ascending("tx_date", "id")).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toTransactions(rows), nil
}

func (s *Store) SumTransactions(ctx context.Context, accountID string, before *domain.Date) (int64, error) {
	q := s.db(ctx).Model(&sqlTransaction{}).
		Select("COALESCE(SUM(amount_cents), 0)").
		Where(s.dialect.eq("account_id"), accountID)
	if before != nil {
		q = q.Where("tx_date < ?", before.String())
	}
	var sum int64
	if err := q.Row().Scan(&sum); err != nil {
		return 0, err
	}
	return sum, nil
}

// Clear 清空三張表並重設計數器
func (s *Store) Clear(ctx context.Context) error {
	db := s.db(ctx).Session(&gorm.Session{AllowGlobalUpdate: true})
	for _, model := range []any{&sqlTransaction{}, &sqlAccount{}, &sqlSequence{}} {
		if err := db.Delete(model).Error; err != nil {
			return fmt.Errorf("clear: %w", err)
		}
	}
	return s.ensureSequence(ctx)
}

func (r sqlAccount) toDomain() domain.Account {
	return domain.Account{ID: r.ID, HolderID: r.HolderID}
}

func toTransactions(rows []sqlTransaction) []domain.Transaction {
	out := make([]domain.Transaction, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.Transaction{
			ID:          r.ID,
			AccountID:   r.AccountID,
			AmountCents: r.AmountCents,
			Date:        domain.Date(r.Date),
			Memo:        r.Memo,
		})
	}
	return out
}

// dialect 各資料庫在字串比較上的差異
type dialect struct {
	driver string
}

// eq 逐位元組的等值條件
// MySQL 的 utf8mb4_bin 是 PAD SPACE，'a' = 'a ' 成立，所以參數轉成 BINARY 比較
func (d dialect) eq(column string) string {
	if d.driver == database.DriverMySQL {
		return column + " = CAST(? AS BINARY)"
	}
	return column + " = ?"
}

// ascending 依位元組順序遞增排序
// PostgreSQL 預設依資料庫 locale 排序，指定 "C" collation；SQLite 預設 BINARY，MySQL 由表格 collation 決定
func (d dialect) ascending(columns ...string) string {
	parts := make([]string, 0, len(columns))
	for _, c := range columns {
		if d.driver == database.DriverPostgres {
			c += ` COLLATE "C"`
		}
		parts = append(parts, c+" ASC")
	}
	return strings.Join(parts, ", ")
}

// likePattern 轉成小寫並跳脫 LIKE 的萬用字元，以 '!' 作為跳脫字元
func likePattern(sub string) string {
	r := strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")
	return "%" + r.Replace(strings.ToLower(sub)) + "%"
}

var (
	_ repository.Sequence         = (*Store)(nil)
	_ repository.AccountStore     = (*Store)(nil)
	_ repository.TransactionStore = (*Store)(nil)
	_ repository.Clearer          = (*Store)(nil)
)
