package request

import (
	"github.com/JoeShih716/go-accounts-ledger/internal/app/core/domain"
	"github.com/JoeShih716/go-accounts-ledger/pkg/money"
)

// CreateAccount 建立帳戶
type CreateAccount struct {
	HolderID string
}

func (r CreateAccount) Validate() error {
	if r.HolderID == "" {
		return domain.Validation("holderId: is required")
	}
	return nil
}

// DecodeCreateAccount 參數: holderId
func DecodeCreateAccount(f Fields) (CreateAccount, error) {
	var p problems
	r := CreateAccount{HolderID: f.required(&p, "holderId")}
	if err := p.err(); err != nil {
		return CreateAccount{}, err
	}
	return r, r.Validate()
}

// GetAccountInfo 查詢帳戶與餘額
type GetAccountInfo struct {
	ID string
}

func (r GetAccountInfo) Validate() error {
	if r.ID == "" {
		return domain.Validation("id: is required")
	}
	return nil
}

// DecodeGetAccountInfo 參數: id (或 accountId)
func DecodeGetAccountInfo(f Fields) (GetAccountInfo, error) {
	var p problems
	r := GetAccountInfo{ID: f.required(&p, "id", "accountId")}
	if err := p.err(); err != nil {
		return GetAccountInfo{}, err
	}
	return r, r.Validate()
}

// SearchAccounts 分頁搜尋帳戶
type SearchAccounts struct {
	Filter domain.AccountFilter
	Page   domain.PageRequest
}

func (r SearchAccounts) Validate() error {
	return validatePage(r.Page)
}

// DecodeSearchAccounts 參數: id?, holderId?, index?, count?
func DecodeSearchAccounts(f Fields) (SearchAccounts, error) {
	var p problems
	id, hasID := f.str(&p, "id")
	holder, hasHolder := f.str(&p, "holderId")
	r := SearchAccounts{
		Filter: domain.AccountFilter{ID: optional(id, hasID), HolderID: optional(holder, hasHolder)},
		Page:   f.page(&p),
	}
	if err := p.err(); err != nil {
		return SearchAccounts{}, err
	}
	return r, r.Validate()
}

// RecordTransaction 新增交易
type RecordTransaction struct {
	AccountID   string
	AmountCents int64
	Date        domain.Date
	Memo        string
}

func (r RecordTransaction) Validate() error {
	var p problems
	if r.AccountID == "" {
		p.add("id", "is required")
	}
	if _, err := domain.ParseDate(r.Date.String()); err != nil {
		p.add("date", "%q is not a valid YYYY-MM-DD date", r.Date)
	}
	if r.Memo == "" {
		p.add("memo", "is required")
	}
	return p.err()
}

// DecodeRecordTransaction 參數: id (或 accountId), amount ("-50.00" 形式), date, memo
func DecodeRecordTransaction(f Fields) (RecordTransaction, error) {
	var p problems
	r := RecordTransaction{
		AccountID: f.required(&p, "id", "accountId"),
		Memo:      f.required(&p, "memo"),
	}
	if amount, ok := f.str(&p, "amount"); !ok {
		p.add("amount", "is required")
	} else if cents, err := money.ParseCents(amount); err != nil {
		p.add("amount", "%v", err)
	} else {
		r.AmountCents = cents
	}
	r.Date = f.requiredDate(&p, "date")
	if err := p.err(); err != nil {
		return RecordTransaction{}, err
	}
	return r, r.Validate()
}

// QueryTransactions 分頁查詢帳戶交易
type QueryTransactions struct {
	AccountID string
	Filter    domain.TransactionFilter
	Page      domain.PageRequest
}

func (r QueryTransactions) Validate() error {
	if r.AccountID == "" {
		return domain.Validation("id: is required")
	}
	return validatePage(r.Page)
}

// DecodeQueryTransactions 參數: id, actId (或 transactionId)?, date?, memoText (或 memoSubstring)?, index?, count?
func DecodeQueryTransactions(f Fields) (QueryTransactions, error) {
	var p problems
	r := QueryTransactions{AccountID: f.required(&p, "id", "accountId")}
	actID, hasAct := f.str(&p, "actId", "transactionId")
	r.Filter.TransactionID = optional(actID, hasAct)
	if d, ok := f.date(&p, "date"); ok {
		r.Filter.Date = &d
	}
	memo, hasMemo := f.str(&p, "memoText", "memoSubstring")
	r.Filter.MemoSubstring = optional(memo, hasMemo)
	r.Page = f.page(&p)
	if err := p.err(); err != nil {
		return QueryTransactions{}, err
	}
	return r, r.Validate()
}

// GenerateStatement 產生 [From, To] 的對帳單
type GenerateStatement struct {
	AccountID string
	From      domain.Date
	To        domain.Date
}

func (r GenerateStatement) Validate() error {
	var p problems
	if r.AccountID == "" {
		p.add("id", "is required")
	}
	if r.To.Before(r.From) {
		p.add("toDate", "%s is before fromDate %s", r.To, r.From)
	}
	return p.err()
}

// DecodeGenerateStatement 參數: id, fromDate, toDate
func DecodeGenerateStatement(f Fields) (GenerateStatement, error) {
	var p problems
	r := GenerateStatement{AccountID: f.required(&p, "id", "accountId")}
	r.From = f.requiredDate(&p, "fromDate")
	r.To = f.requiredDate(&p, "toDate")
	if err := p.err(); err != nil {
		return GenerateStatement{}, err
	}
	return r, r.Validate()
}

func validatePage(req domain.PageRequest) error {
	var p problems
	if req.Index < 0 {
		p.add("index", "must not be negative")
	}
	if req.Count < 1 || req.Count > MaxCount {
		p.add("count", "must be between 1 and %d", MaxCount)
	}
	return p.err()
}
