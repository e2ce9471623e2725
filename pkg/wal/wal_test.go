package wal

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type entry struct {
	N int `json:"n"`
}

func TestAppendAndReplay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "ledger.wal")

	w, err := NewWAL(path)
	require.NoError(t, err)
	require.NoError(t, w.Append("a", entry{N: 1}))
	require.NoError(t, w.Append("b", entry{N: 2}))
	require.NoError(t, w.Close())

	w, err = NewWAL(path)
	require.NoError(t, err)
	defer w.Close()

	var kinds []string
	var sum int
	err = w.ReadAll(func(rec Record) error {
		var e entry
		if err := json.Unmarshal(rec.Data, &e); err != nil {
			return err
		}
		kinds = append(kinds, rec.Kind)
		sum += e.N
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, kinds)
	assert.Equal(t, 3, sum)

	// 讀完後仍可繼續追加
	require.NoError(t, w.Append("c", entry{N: 3}))
	count := 0
	require.NoError(t, w.ReadAll(func(Record) error { count++; return nil }))
	assert.Equal(t, 3, count)
}

func TestTruncate(t *testing.T) {
	w, err := NewWAL(filepath.Join(t.TempDir(), "ledger.wal"))
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, w.Append("a", entry{N: 1}))
	require.NoError(t, w.Truncate())

	count := 0
	require.NoError(t, w.ReadAll(func(Record) error { count++; return nil }))
	assert.Zero(t, count)
}
