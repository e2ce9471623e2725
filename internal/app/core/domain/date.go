package domain

import (
	"time"
)

// DateLayout ISO 日期格式 (不含時間)
const DateLayout = "2006-01-02"

// Date 日曆日期，以 YYYY-MM-DD 字串保存
// 固定寬度的 ISO 格式讓字串排序等同於時間排序，因此可直接作為資料庫排序鍵
type Date string

// ParseDate 解析並驗證 ISO 日期 (會拒絕 2021-02-30 這類不存在的日期)
func ParseDate(s string) (Date, error) {
	if _, err := time.Parse(DateLayout, s); err != nil {
		return "", Validation("bad date %q: expected YYYY-MM-DD", s)
	}
	return Date(s), nil
}

// MustDate 給測試與種子資料使用
func MustDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// DateOf 取出 t 的日曆日期 (UTC)
func DateOf(t time.Time) Date {
	return Date(t.UTC().Format(DateLayout))
}

func (d Date) String() string {
	return string(d)
}

// Before d 是否早於 other
func (d Date) Before(other Date) bool {
	return d < other
}

// After d 是否晚於 other
func (d Date) After(other Date) bool {
	return d > other
}

// Within d 是否落在 [from, to] 內 (含兩端)
func (d Date) Within(from, to Date) bool {
	return d >= from && d <= to
}
