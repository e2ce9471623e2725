package domain

// Account 帳戶，建立後不可變更也不會刪除
type Account struct {
	ID       string `json:"id"`
	HolderID string `json:"holderId"`
}

// AccountInfo 帳戶資訊加上當前餘額 (單位：分)
type AccountInfo struct {
	Account
	BalanceCents int64 `json:"balanceCents"`
}

// AccountFilter 帳戶搜尋條件，非 nil 的欄位以 AND 精確比對
type AccountFilter struct {
	ID       *string
	HolderID *string
}

// Matches 給記憶體實作使用的比對函式
func (f AccountFilter) Matches(a Account) bool {
	if f.ID != nil && a.ID != *f.ID {
		return false
	}
	if f.HolderID != nil && a.HolderID != *f.HolderID {
		return false
	}
	return true
}

// CompareAccounts 搜尋結果的排序：(holderId, id) 遞增
func CompareAccounts(a, b Account) int {
	switch {
	case a.HolderID < b.HolderID:
		return -1
	case a.HolderID > b.HolderID:
		return 1
	case a.ID < b.ID:
		return -1
	case a.ID > b.ID:
		return 1
	}
	return 0
}
