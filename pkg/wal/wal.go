// Package wal 以 JSON Lines 格式實作的 Write-Ahead Log
package wal

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

const (
	// FileModeReadOnly rw-r--r--
	FileModeReadOnly fs.FileMode = 0644

	// FileModeDir rwxr-xr-x
	FileModeDir fs.FileMode = 0755
)

// Record 每一行的外層結構，Kind 決定 Data 的型別
type Record struct {
	Kind string          `json:"kind"`
	Data json.RawMessage `json:"data"`
}

type WAL struct {
	file *os.File
	mu   sync.Mutex
}

// NewWAL 開啟或建立一個 WAL 檔案 (父目錄不存在時一併建立)
// O_APPEND 每次寫入時自動跳到文件末尾
func NewWAL(path string) (*WAL, error) {
	if err := os.MkdirAll(filepath.Dir(path), FileModeDir); err != nil {
		return nil, fmt.Errorf("failed to create wal directory: %w", err)
	}
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_RDWR, FileModeReadOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to open wal %s: %w", path, err)
	}
	return &WAL{file: file}, nil
}

// Append 寫入一筆紀錄並刷入硬碟，回傳時資料已落地
func (w *WAL) Append(kind string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s record: %w", kind, err)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := json.NewEncoder(w.file).Encode(Record{Kind: kind, Data: data}); err != nil {
		return err
	}
	return w.file.Sync()
}

// ReadAll 從頭依序讀出所有紀錄
// callback 一次處理一筆，避免一次將所有資料載入記憶體
func (w *WAL) ReadAll(callback func(rec Record) error) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, err := w.file.Seek(0, io.SeekStart); err != nil {
		return err
	}

	decoder := json.NewDecoder(w.file)
	for {
		var rec Record
		if err := decoder.Decode(&rec); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return fmt.Errorf("corrupted wal record: %w", err)
		}
		if err := callback(rec); err != nil {
			return err
		}
	}
	return nil
}

// Truncate 清空整個 WAL
func (w *WAL) Truncate() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.file.Truncate(0); err != nil {
		return err
	}
	return w.file.Sync()
}

// Close 關閉檔案
func (w *WAL) Close() error {
	return w.file.Close()
}
