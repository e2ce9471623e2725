package repository

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/JoeShih716/go-accounts-ledger/internal/app/core/domain"
)

const (
	// seqWidth 序號補零寬度，讓 ID 的字串排序與配置順序一致
	seqWidth = 12
	// randDigits 附加的隨機位數，只為了讓 ID 難以猜測，唯一性由序號保證
	randDigits = 2
)

// IDGenerator 帳戶與交易共用的 ID 產生器
type IDGenerator struct {
	seq  Sequence
	rand func(n int) int
}

func NewIDGenerator(seq Sequence) *IDGenerator {
	return &IDGenerator{
		seq:  seq,
		rand: rand.IntN,
	}
}

// Allocate 配置一個新的 ID，格式為 "<補零序號>_<兩位隨機數>"
//
// 回傳值:
//
//	string: 新 ID
//	error: 計數器無法遞增時回傳 KindStorage 錯誤
func (g *IDGenerator) Allocate(ctx context.Context) (string, error) {
	n, err := g.seq.Next(ctx)
	if err != nil {
		return "", domain.AsStorage(err, "cannot allocate id")
	}
	return FormatID(n, g.rand(100)), nil
}

// FormatID 組出 ID 字串
func FormatID(n int64, r int) string {
	return fmt.Sprintf("%0*d_%0*d", seqWidth, n, randDigits, r)
}
