package domain

// DefaultCount 未指定 count 時每頁筆數
const DefaultCount = 5

// PageRequest 分頁請求：從 Index 開始取 Count 筆
type PageRequest struct {
	Index int
	Count int
}

// Normalize 補上預設值，負數 index 視為 0
func (r PageRequest) Normalize() PageRequest {
	if r.Index < 0 {
		r.Index = 0
	}
	if r.Count <= 0 {
		r.Count = DefaultCount
	}
	return r
}

// Offset 儲存層應跳過的筆數
func (r PageRequest) Offset() int {
	return r.Normalize().Index
}

// Limit 儲存層應取回的筆數：多取一筆用來判斷是否還有下一頁
func (r PageRequest) Limit() int {
	return r.Normalize().Count + 1
}

// Page 一頁結果與前後頁游標 (nil 表示不存在)
type Page[T any] struct {
	Items []T
	Index int
	Count int
	Next  *int
	Prev  *int
}

// HasNext 是否還有下一頁
func (p Page[T]) HasNext() bool {
	return p.Next != nil
}

// HasPrev 是否有上一頁
func (p Page[T]) HasPrev() bool {
	return p.Prev != nil
}

// NewPage 將儲存層依 req.Limit() 取回的結果整理成一頁
//
// 參數:
//
//	items: 從 req.Offset() 開始、最多 req.Limit() 筆的有序結果
//	req: 分頁請求
//
// 回傳值:
//
//	Page[T]: 最多 Count 筆，並帶有 Next/Prev 游標
func NewPage[T any](items []T, req PageRequest) Page[T] {
	req = req.Normalize()
	page := Page[T]{Index: req.Index, Count: req.Count}

	if len(items) > req.Count {
		items = items[:req.Count]
		next := req.Index + req.Count
		page.Next = &next
	}
	if req.Index > 0 {
		prev := max(0, req.Index-req.Count)
		page.Prev = &prev
	}
	if items == nil {
		items = []T{}
	}
	page.Items = items
	return page
}

// MapPage 轉換頁內元素，游標不變
func MapPage[T, U any](p Page[T], fn func(T) U) Page[U] {
	out := make([]U, 0, len(p.Items))
	for _, it := range p.Items {
		out = append(out, fn(it))
	}
	return Page[U]{Items: out, Index: p.Index, Count: p.Count, Next: p.Next, Prev: p.Prev}
}
