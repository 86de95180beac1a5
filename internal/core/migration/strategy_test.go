package migration

import (
	"testing"
	"time"
	"unicode/utf8"

	"github.com/SscSPs/spa_ledger/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStrategies(t *testing.T) {
	tests := []struct {
		input   string
		want    []Strategy
		wantErr bool
	}{
		{input: "", want: DefaultStrategies},
		{input: "default", want: DefaultStrategies},
		{input: "STRICT", want: StrictStrategies},
		{input: "signature, explicit", want: []Strategy{StrategySignature, StrategyExplicit}},
		{input: "explicit,guess", wantErr: true},
		{input: "explicit,explicit", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseStrategies(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseStrategies_ReturnsCopy(t *testing.T) {
	got, err := ParseStrategies("default")
	require.NoError(t, err)
	got[0] = StrategyPlaceholder
	assert.Equal(t, StrategyExplicit, DefaultStrategies[0])
}

func TestPlaceholder(t *testing.T) {
	assert.Equal(t, "unknown_abcdef12", Placeholder("abcdef12-3456-7890"))
	assert.Equal(t, "unknown_t1", Placeholder("t1"))
	assert.Equal(t, "unknown_ñandú-çé", Placeholder("ñandú-çé-0042"))
	assert.True(t, utf8.ValidString(Placeholder("€€€€€€€€€€")))
	assert.Equal(t, "unknown_€€€€€€€€", Placeholder("€€€€€€€€€€"))
}

func TestResolveOwner_Order(t *testing.T) {
	rec := domain.RawLegacyRecord{
		MemberID:     domain.StringPtr("00001"),
		SignatureKey: domain.StringPtr("signatures/00042/sig.png"),
	}

	owner, st, ok := resolveOwner(rec, "t1", DefaultStrategies)
	require.True(t, ok)
	assert.Equal(t, "00001", owner)
	assert.Equal(t, StrategyExplicit, st)

	owner, st, ok = resolveOwner(rec, "t1", []Strategy{StrategySignature, StrategyExplicit})
	require.True(t, ok)
	assert.Equal(t, "00042", owner)
	assert.Equal(t, StrategySignature, st)

	blank := domain.RawLegacyRecord{MemberID: domain.StringPtr("   "), SignatureKey: domain.StringPtr("uploads/x.png")}
	_, _, ok = resolveOwner(blank, "t1", []Strategy{StrategyExplicit, StrategySignature})
	assert.False(t, ok)
}

func TestNormalizer_Normalize(t *testing.T) {
	now := time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC)
	n := Normalizer{
		Strategies: DefaultStrategies,
		Now:        func() time.Time { return now },
		NewID:      func(domain.RawLegacyRecord) string { return "generated-id" },
	}

	t.Run("clean record needs no repair", func(t *testing.T) {
		txn, repairs, skip := n.Normalize(domain.RawLegacyRecord{
			TransactionID: domain.StringPtr("t1"),
			MemberID:      domain.StringPtr("00042"),
			Amount:        domain.StringPtr("-12.50"),
			Timestamp:     domain.StringPtr("2023-05-01T10:00:00"),
			ServiceNotes:  domain.StringPtr(""),
		})
		require.Nil(t, skip)
		assert.Empty(t, repairs)
		assert.Equal(t, "00042", txn.OwnerID)
		assert.Equal(t, "-12.5", txn.Amount.String())
		assert.Empty(t, txn.Notes)
	})

	t.Run("placeholder uses generated id", func(t *testing.T) {
		txn, repairs, skip := n.Normalize(domain.RawLegacyRecord{Amount: domain.StringPtr("1")})
		require.Nil(t, skip)
		assert.Equal(t, "generated-id", txn.TransactionID)
		assert.Equal(t, "unknown_generate", txn.OwnerID)
		assert.Equal(t, now.Format(domain.TimestampLayout), txn.Timestamp)
		assert.Len(t, repairs, 3)
	})

	t.Run("malformed amount is skipped", func(t *testing.T) {
		_, _, skip := n.Normalize(domain.RawLegacyRecord{
			TransactionID: domain.StringPtr("t2"),
			MemberID:      domain.StringPtr("00042"),
			Amount:        domain.StringPtr("1,000"),
		})
		require.NotNil(t, skip)
		assert.Equal(t, "t2", skip.TransactionID)
	})
}
