// Package request 將傳輸層收到的未定型別參數 (gRPC Struct、HTTP JSON body 或 query string)
// 解碼成帳本操作需要的型別化請求，並在進入核心之前完成欄位驗證。
package request

import (
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/JoeShih716/go-accounts-ledger/internal/app/core/domain"
)

// MaxCount 單頁筆數上限
const MaxCount = 1000

// Fields 一次請求的原始參數
type Fields map[string]any

// FromQuery 將 query string 轉成 Fields，同名參數只取第一個
func FromQuery(q url.Values) Fields {
	f := make(Fields, len(q))
	for k, v := range q {
		if len(v) > 0 {
			f[k] = v[0]
		}
	}
	return f
}

// Merge 回傳合併後的新 Fields，後面的參數覆蓋前面的
func Merge(all ...Fields) Fields {
	out := Fields{}
	for _, f := range all {
		for k, v := range f {
			out[k] = v
		}
	}
	return out
}

// problems 收集欄位錯誤，最後合併成一個 Validation 錯誤
type problems []string

func (p *problems) add(field, format string, args ...any) {
	*p = append(*p, field+": "+fmt.Sprintf(format, args...))
}

func (p problems) err() error {
	if len(p) == 0 {
		return nil
	}
	return domain.Validation("%s", strings.Join(p, "; "))
}

// lookup 依序嘗試多個別名，回傳第一個存在的值
func (f Fields) lookup(keys ...string) (string, any, bool) {
	for _, k := range keys {
		if v, ok := f[k]; ok && v != nil {
			return k, v, true
		}
	}
	return keys[0], nil, false
}

// str 讀取字串欄位；數字會轉成字串，空字串視為未提供
func (f Fields) str(p *problems, keys ...string) (string, bool) {
	name, v, ok := f.lookup(keys...)
	if !ok {
		return "", false
	}
	var s string
	switch x := v.(type) {
	case string:
		s = x
	case json.Number:
		s = x.String()
	case float64:
		s = strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		s = strconv.Itoa(x)
	case int64:
		s = strconv.FormatInt(x, 10)
	default:
		p.add(name, "must be a string")
		return "", false
	}
	s = strings.TrimSpace(s)
	return s, s != ""
}

func (f Fields) required(p *problems, keys ...string) string {
	s, ok := f.str(p, keys...)
	if !ok {
		p.add(keys[0], "is required")
	}
	return s
}

func (f Fields) date(p *problems, keys ...string) (domain.Date, bool) {
	s, ok := f.str(p, keys...)
	if !ok {
		return "", false
	}
	return parseDate(p, keys[0], s)
}

func (f Fields) requiredDate(p *problems, key string) domain.Date {
	s := f.required(p, key)
	if s == "" {
		return ""
	}
	d, _ := parseDate(p, key, s)
	return d
}

func parseDate(p *problems, key, s string) (domain.Date, bool) {
	d, err := domain.ParseDate(s)
	if err != nil {
		p.add(key, "%q is not a valid YYYY-MM-DD date", s)
		return "", false
	}
	return d, true
}

// nonNegative 讀取非負整數；字串需全為數字，JSON 數字需為整數
func (f Fields) nonNegative(p *problems, key string) (int, bool) {
	_, v, ok := f.lookup(key)
	if !ok {
		return 0, false
	}
	var n int64
	switch x := v.(type) {
	case string:
		if x == "" {
			return 0, false
		}
		parsed, err := strconv.ParseUint(x, 10, 31)
		if err != nil {
			p.add(key, "%q is not a non-negative integer", x)
			return 0, false
		}
		n = int64(parsed)
	case float64:
		if x < 0 || x != math.Trunc(x) || x > math.MaxInt32 {
			p.add(key, "%v is not a non-negative integer", x)
			return 0, false
		}
		n = int64(x)
	case json.Number:
		parsed, err := strconv.ParseUint(x.String(), 10, 31)
		if err != nil {
			p.add(key, "%q is not a non-negative integer", x)
			return 0, false
		}
		n = int64(parsed)
	case int:
		n = int64(x)
	case int64:
		n = x
	default:
		p.add(key, "must be an integer")
		return 0, false
	}
	if n < 0 {
		p.add(key, "%d is negative", n)
		return 0, false
	}
	return int(n), true
}

// page 讀取 index/count，未提供時為 0 與 domain.DefaultCount
func (f Fields) page(p *problems) domain.PageRequest {
	req := domain.PageRequest{Index: 0, Count: domain.DefaultCount}
	if n, ok := f.nonNegative(p, "index"); ok {
		req.Index = n
	}
	if n, ok := f.nonNegative(p, "count"); ok {
		switch {
		case n < 1:
			p.add("count", "must be at least 1")
		case n > MaxCount:
			p.add("count", "must be at most %d", MaxCount)
		default:
			req.Count = n
		}
	}
	return req
}

func optional(s string, ok bool) *string {
	if !ok {
		return nil
	}
	return &s
}
