// Package money 在對外的十進位金額字串與內部的整數分 (cents) 之間轉換
package money

import (
	"fmt"
	"math"
	"regexp"

	"github.com/shopspring/decimal"
)

// amountPattern 金額必須剛好帶兩位小數，例如 "1500.00"、"-50.00"、"+0.25"
var amountPattern = regexp.MustCompile(`^[-+]?\d+\.\d\d$`)

var (
	maxCents = decimal.NewFromInt(math.MaxInt64)
	minCents = decimal.NewFromInt(math.MinInt64)
)

// ParseCents 將十進位金額字串轉成分
//
// 參數:
//
//	s: string - 帶兩位小數的金額
//
// 回傳值:
//
//	int64: 以分為單位的金額
//	error: 格式不符或超出 int64 範圍
func ParseCents(s string) (int64, error) {
	if !amountPattern.MatchString(s) {
		return 0, fmt.Errorf("amount %q must have the form [-+]digits.dd", s)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("amount %q: %w", s, err)
	}
	cents := d.Shift(2)
	if cents.GreaterThan(maxCents) || cents.LessThan(minCents) {
		return 0, fmt.Errorf("amount %q out of range", s)
	}
	return cents.IntPart(), nil
}

// FormatCents 將分轉回帶兩位小數的字串
func FormatCents(cents int64) string {
	return decimal.New(cents, -2).StringFixed(2)
}
