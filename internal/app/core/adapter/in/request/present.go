package request

import (
	"github.com/JoeShih716/go-accounts-ledger/internal/app/core/domain"
	"github.com/JoeShih716/go-accounts-ledger/pkg/money"
)

// 以下函式把核心回傳值轉成對外的欄位集合，金額一律輸出成兩位小數字串

func AccountFields(a domain.Account) map[string]any {
	return map[string]any{
		"id":       a.ID,
		"holderId": a.HolderID,
	}
}

func AccountInfoFields(info domain.AccountInfo) map[string]any {
	f := AccountFields(info.Account)
	f["balance"] = money.FormatCents(info.BalanceCents)
	return f
}

func TransactionFields(tx domain.Transaction) map[string]any {
	return map[string]any{
		"id":        tx.ID,
		"accountId": tx.AccountID,
		"amount":    money.FormatCents(tx.AmountCents),
		"date":      tx.Date.String(),
		"memo":      tx.Memo,
	}
}

func StatementFields(e domain.StatementEntry) map[string]any {
	f := TransactionFields(e.Transaction)
	f["balance"] = money.FormatCents(e.RunningBalanceCents)
	return f
}

// PageFields 一頁結果加上 index/count 與 next/prev 游標 (不存在時省略)
func PageFields[T any](p domain.Page[T], item func(T) map[string]any) map[string]any {
	items := make([]any, 0, len(p.Items))
	for _, it := range p.Items {
		items = append(items, item(it))
	}
	f := map[string]any{
		"result": items,
		"index":  p.Index,
		"count":  p.Count,
	}
	if p.Next != nil {
		f["next"] = *p.Next
	}
	if p.Prev != nil {
		f["prev"] = *p.Prev
	}
	return f
}
