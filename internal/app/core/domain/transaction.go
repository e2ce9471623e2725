package domain

import "strings"

// Transaction 交易紀錄，建立後不可變更也不會刪除
// 金額以「分」為單位的有號整數，正數為存入、負數為支出
type Transaction struct {
	ID          string `json:"id"`
	AccountID   string `json:"accountId"`
	AmountCents int64  `json:"amountCents"`
	Date        Date   `json:"date"`
	Memo        string `json:"memo"`
}

// StatementEntry 對帳單的一列：交易加上該筆之後的累計餘額
type StatementEntry struct {
	Transaction
	RunningBalanceCents int64 `json:"runningBalanceCents"`
}

// TransactionFilter 單一帳戶內的交易查詢條件，非 nil 的欄位以 AND 組合
type TransactionFilter struct {
	// TransactionID 精確比對
	TransactionID *string
	// Date 精確比對
	Date *Date
	// MemoSubstring 不分大小寫的子字串比對
	MemoSubstring *string
}

// Matches 給記憶體實作使用的比對函式
func (f TransactionFilter) Matches(t Transaction) bool {
	if f.TransactionID != nil && t.ID != *f.TransactionID {
		return false
	}
	if f.Date != nil && t.Date != *f.Date {
		return false
	}
	if f.MemoSubstring != nil &&
		!strings.Contains(strings.ToLower(t.Memo), strings.ToLower(*f.MemoSubstring)) {
		return false
	}
	return true
}

// CompareTransactions 帳戶內交易的全序：(date, id) 遞增
func CompareTransactions(a, b Transaction) int {
	switch {
	case a.Date < b.Date:
		return -1
	case a.Date > b.Date:
		return 1
	case a.ID < b.ID:
		return -1
	case a.ID > b.ID:
		return 1
	}
	return 0
}

// BuildStatement 以期初餘額 opening 逐筆累加，txs 必須已依 (date, id) 排序
func BuildStatement(opening int64, txs []Transaction) []StatementEntry {
	entries := make([]StatementEntry, 0, len(txs))
	running := opening
	for _, t := range txs {
		running += t.AmountCents
		entries = append(entries, StatementEntry{
			Transaction:         t,
			RunningBalanceCents: running,
		})
	}
	return entries
}
