package request

import (
	"encoding/json"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JoeShih716/go-accounts-ledger/internal/app/core/domain"
)

func TestDecodeCreateAccount(t *testing.T) {
	r, err := DecodeCreateAccount(Fields{"holderId": "Alice"})
	require.NoError(t, err)
	assert.Equal(t, "Alice", r.HolderID)

	_, err = DecodeCreateAccount(Fields{})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = DecodeCreateAccount(Fields{"holderId": "   "})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestDecodeRecordTransaction(t *testing.T) {
	tests := []struct {
		name    string
		in      Fields
		want    RecordTransaction
		wantErr string
	}{
		{
			name: "ok",
			in:   Fields{"id": "a1", "amount": "-50.00", "date": "2021-01-05", "memo": "rent"},
			want: RecordTransaction{AccountID: "a1", AmountCents: -5000, Date: "2021-01-05", Memo: "rent"},
		},
		{
			name: "accountId alias",
			in:   Fields{"accountId": "a1", "amount": "+1500.00", "date": "2021-01-01", "memo": "initial"},
			want: RecordTransaction{AccountID: "a1", AmountCents: 150000, Date: "2021-01-01", Memo: "initial"},
		},
		{
			name:    "amount without cents",
			in:      Fields{"id": "a1", "amount": "50", "date": "2021-01-05", "memo": "rent"},
			wantErr: "amount",
		},
		{
			name:    "amount as JSON number loses the fixed point",
			in:      Fields{"id": "a1", "amount": 50.5, "date": "2021-01-05", "memo": "rent"},
			wantErr: "amount",
		},
		{
			name:    "impossible date",
			in:      Fields{"id": "a1", "amount": "1.00", "date": "2021-02-30", "memo": "x"},
			wantErr: "date",
		},
		{
			name:    "everything missing",
			in:      Fields{},
			wantErr: "id: is required; memo: is required; amount: is required; date: is required",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeRecordTransaction(tt.in)
			if tt.wantErr != "" {
				require.ErrorIs(t, err, domain.ErrValidation)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodePaging(t *testing.T) {
	r, err := DecodeSearchAccounts(Fields{})
	require.NoError(t, err)
	assert.Equal(t, domain.PageRequest{Index: 0, Count: domain.DefaultCount}, r.Page)
	assert.Nil(t, r.Filter.ID)
	assert.Nil(t, r.Filter.HolderID)

	r, err = DecodeSearchAccounts(FromQuery(url.Values{"holderId": {"bob"}, "index": {"10"}, "count": {"3"}}))
	require.NoError(t, err)
	assert.Equal(t, domain.PageRequest{Index: 10, Count: 3}, r.Page)
	require.NotNil(t, r.Filter.HolderID)
	assert.Equal(t, "bob", *r.Filter.HolderID)

	r, err = DecodeSearchAccounts(Fields{"index": float64(4), "count": json.Number("2")})
	require.NoError(t, err)
	assert.Equal(t, domain.PageRequest{Index: 4, Count: 2}, r.Page)

	for _, bad := range []Fields{
		{"index": "-1"},
		{"index": "abc"},
		{"index": 1.5},
		{"count": "0"},
		{"count": "100000"},
		{"count": true},
	} {
		_, err := DecodeSearchAccounts(bad)
		assert.ErrorIs(t, err, domain.ErrValidation, "%v", bad)
	}
}

func TestDecodeQueryTransactions(t *testing.T) {
	r, err := DecodeQueryTransactions(Fields{"id": "a1", "memoText": "rent", "actId": "t9", "date": "2021-01-05"})
	require.NoError(t, err)
	require.NotNil(t, r.Filter.MemoSubstring)
	assert.Equal(t, "rent", *r.Filter.MemoSubstring)
	require.NotNil(t, r.Filter.TransactionID)
	assert.Equal(t, "t9", *r.Filter.TransactionID)
	require.NotNil(t, r.Filter.Date)
	assert.Equal(t, domain.Date("2021-01-05"), *r.Filter.Date)

	r, err = DecodeQueryTransactions(Fields{"id": "a1", "memoSubstring": "x", "transactionId": "t1"})
	require.NoError(t, err)
	assert.Equal(t, "x", *r.Filter.MemoSubstring)
	assert.Equal(t, "t1", *r.Filter.TransactionID)
	assert.Nil(t, r.Filter.Date)

	_, err = DecodeQueryTransactions(Fields{"memoText": "rent"})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestDecodeGenerateStatement(t *testing.T) {
	r, err := DecodeGenerateStatement(Fields{"id": "a1", "fromDate": "2021-01-01", "toDate": "2021-01-31"})
	require.NoError(t, err)
	assert.Equal(t, GenerateStatement{AccountID: "a1", From: "2021-01-01", To: "2021-01-31"}, r)

	_, err = DecodeGenerateStatement(Fields{"id": "a1", "fromDate": "2021-02-01", "toDate": "2021-01-31"})
	require.ErrorIs(t, err, domain.ErrValidation)
	assert.Contains(t, err.Error(), "before fromDate")

	_, err = DecodeGenerateStatement(Fields{"id": "a1", "fromDate": "2021-01-01"})
	require.ErrorIs(t, err, domain.ErrValidation)
	assert.Contains(t, err.Error(), "toDate: is required")
}

func TestPageFields(t *testing.T) {
	page := domain.NewPage([]domain.Transaction{
		{ID: "t1", AccountID: "a", AmountCents: 150000, Date: "2021-01-01", Memo: "initial"},
		{ID: "t2", AccountID: "a", AmountCents: -5000, Date: "2021-01-05", Memo: "rent"},
	}, domain.PageRequest{Index: 2, Count: 1})

	f := PageFields(page, TransactionFields)
	items := f["result"].([]any)
	require.Len(t, items, 1)
	assert.Equal(t, "1500.00", items[0].(map[string]any)["amount"])
	assert.Equal(t, 3, f["next"])
	assert.Equal(t, 1, f["prev"])

	info := AccountInfoFields(domain.AccountInfo{Account: domain.Account{ID: "a", HolderID: "Alice"}, BalanceCents: 147000})
	assert.Equal(t, "1470.00", info["balance"])
}
