package domain

import (
	"errors"
	"fmt"
)

// ErrorKind 錯誤類別，傳輸層依此決定回應狀態碼
type ErrorKind uint8

const (
	// KindUnknown 未分類錯誤 (不應穿越核心邊界)
	KindUnknown ErrorKind = iota
	// KindNotFound 帳戶或交易不存在
	KindNotFound
	// KindStorage 儲存層無法連線，或預期的寫入沒有生效
	KindStorage
	// KindValidation 輸入驗證失敗 (只由外部 adapter 產生)
	KindValidation
)

func (k ErrorKind) String() string {
	switch k {
	case KindNotFound:
		return "NOT_FOUND"
	case KindStorage:
		return "DB"
	case KindValidation:
		return "BAD_REQ"
	default:
		return "INTERNAL"
	}
}

// Error 核心對外唯一的錯誤型別：一個類別加上一段可讀訊息
type Error struct {
	Kind    ErrorKind
	Message string
	// Err 底層錯誤 (可為 nil)
	Err error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is 讓 errors.Is(err, ErrNotFound) 這類以類別比對的寫法成立
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Message == "" && t.Kind == e.Kind
}

var (
	// ErrNotFound 用於 errors.Is 比對 KindNotFound
	ErrNotFound = &Error{Kind: KindNotFound}

	// ErrStorage 用於 errors.Is 比對 KindStorage
	ErrStorage = &Error{Kind: KindStorage}

	// ErrValidation 用於 errors.Is 比對 KindValidation
	ErrValidation = &Error{Kind: KindValidation}
)

// NotFound 建立 KindNotFound 錯誤
func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// Storage 建立 KindStorage 錯誤，err 為底層儲存錯誤
func Storage(err error, format string, args ...any) *Error {
	return &Error{Kind: KindStorage, Message: fmt.Sprintf(format, args...), Err: err}
}

// Validation 建立 KindValidation 錯誤
func Validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// KindOf 取出錯誤類別；非 *Error 的錯誤視為 KindUnknown
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// AsStorage 已分類的錯誤原樣回傳，其餘包成 KindStorage
func AsStorage(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return Storage(err, format, args...)
}
