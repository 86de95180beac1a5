package migration

import (
	"testing"
	"time"

	"github.com/SscSPs/spa_ledger/internal/core/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveTransactionID(t *testing.T) {
	rec := domain.RawLegacyRecord{
		Amount:       domain.StringPtr("-20"),
		Timestamp:    domain.StringPtr("2023-06-01T09:30:00"),
		SignatureKey: domain.StringPtr("signatures/00042/sig.png"),
	}
	copied := domain.RawLegacyRecord{
		Amount:       domain.StringPtr("-20"),
		Timestamp:    domain.StringPtr("2023-06-01T09:30:00"),
		SignatureKey: domain.StringPtr("signatures/00042/sig.png"),
	}

	id := DeriveTransactionID(rec)
	_, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, id, DeriveTransactionID(copied), "same content must give the same id")

	other := copied
	other.Amount = domain.StringPtr("-21")
	assert.NotEqual(t, id, DeriveTransactionID(other))

	emptyNotes := copied
	emptyNotes.ServiceNotes = domain.StringPtr("")
	assert.NotEqual(t, id, DeriveTransactionID(emptyNotes), "empty and absent fields differ")
}

func TestNormalize_DefaultIDIsStable(t *testing.T) {
	n := Normalizer{
		Strategies: DefaultStrategies,
		Now:        func() time.Time { return time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC) },
	}
	rec := domain.RawLegacyRecord{
		Amount:    domain.StringPtr("15"),
		Timestamp: domain.StringPtr("2023-06-02T10:00:00"),
	}

	first, repairs, skip := n.Normalize(rec)
	require.Nil(t, skip)
	second, _, skip := n.Normalize(rec)
	require.Nil(t, skip)

	assert.Equal(t, first.TransactionID, second.TransactionID)
	assert.Equal(t, first.OwnerID, second.OwnerID)
	assert.Equal(t, Placeholder(first.TransactionID), first.OwnerID)
	assert.Equal(t, "transaction_id", repairs[0].Field)
}
