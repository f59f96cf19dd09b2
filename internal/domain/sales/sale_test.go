package sales

import (
	"testing"
	"time"

	"github.com/backoffice/backend/internal/domain/ledger"
	"github.com/backoffice/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestSale(t *testing.T, method ledger.PaymentMethod, dueDate *time.Time) *Sale {
	s, err := NewSale(
		"SALE-20240110-00001",
		uuid.New(),
		"Test Customer",
		valueobject.NewMoneyBRLFromFloat(500.00),
		time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
		dueDate,
		method,
	)
	require.NoError(t, err)
	return s
}

func TestNewSale(t *testing.T) {
	t.Run("creates draft sale", func(t *testing.T) {
		s := createTestSale(t, ledger.PaymentMethodCash, nil)

		assert.Equal(t, SaleStatusDraft, s.Status)
		assert.Nil(t, s.FinalizedAt)
		assert.Nil(t, s.CancelledAt)

		events := s.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeSaleCreated, events[0].EventType())
	})

	t.Run("rejects empty sale number", func(t *testing.T) {
		_, err := NewSale("", uuid.New(), "Customer", valueobject.NewMoneyBRLFromFloat(10),
			time.Now(), nil, ledger.PaymentMethodCash)
		assert.Error(t, err)
	})

	t.Run("rejects non-positive total", func(t *testing.T) {
		_, err := NewSale("SALE-1", uuid.New(), "Customer", valueobject.NewMoneyBRLFromFloat(0),
			time.Now(), nil, ledger.PaymentMethodCash)
		assert.Error(t, err)
	})
}

func TestSale_Finalize(t *testing.T) {
	t.Run("finalizes draft sale", func(t *testing.T) {
		s := createTestSale(t, ledger.PaymentMethodPix, nil)

		require.NoError(t, s.Finalize())
		assert.Equal(t, SaleStatusFinalized, s.Status)
		assert.NotNil(t, s.FinalizedAt)
	})

	t.Run("rejects double finalize", func(t *testing.T) {
		s := createTestSale(t, ledger.PaymentMethodPix, nil)
		require.NoError(t, s.Finalize())

		assert.Error(t, s.Finalize())
	})

	t.Run("rejects finalize on cancelled sale", func(t *testing.T) {
		s := createTestSale(t, ledger.PaymentMethodPix, nil)
		require.NoError(t, s.Cancel())

		assert.Error(t, s.Finalize())
	})
}

func TestSale_Cancel(t *testing.T) {
	t.Run("cancels draft sale", func(t *testing.T) {
		s := createTestSale(t, ledger.PaymentMethodCash, nil)

		require.NoError(t, s.Cancel())
		assert.Equal(t, SaleStatusCancelled, s.Status)
		assert.NotNil(t, s.CancelledAt)
	})

	t.Run("cancels finalized sale", func(t *testing.T) {
		s := createTestSale(t, ledger.PaymentMethodCash, nil)
		require.NoError(t, s.Finalize())

		require.NoError(t, s.Cancel())
		assert.Equal(t, SaleStatusCancelled, s.Status)
	})

	t.Run("rejects double cancel", func(t *testing.T) {
		s := createTestSale(t, ledger.PaymentMethodCash, nil)
		require.NoError(t, s.Cancel())

		assert.Error(t, s.Cancel())
	})
}

func TestSale_IsOnCredit(t *testing.T) {
	issue := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)

	t.Run("deferred payment method is always on credit", func(t *testing.T) {
		s := createTestSale(t, ledger.PaymentMethodBoleto, nil)
		assert.True(t, s.IsOnCredit())
	})

	t.Run("future due date is on credit", func(t *testing.T) {
		due := issue.AddDate(0, 0, 30)
		s := createTestSale(t, ledger.PaymentMethodBankTransfer, &due)
		assert.True(t, s.IsOnCredit())
	})

	t.Run("due date equal to issue date is not on credit", func(t *testing.T) {
		due := issue
		s := createTestSale(t, ledger.PaymentMethodCash, &due)
		assert.False(t, s.IsOnCredit())
	})

	t.Run("same calendar day with later clock time is not on credit", func(t *testing.T) {
		due := issue.Add(6 * time.Hour)
		s := createTestSale(t, ledger.PaymentMethodPix, &due)
		assert.False(t, s.IsOnCredit())
	})

	t.Run("no due date with immediate method is not on credit", func(t *testing.T) {
		s := createTestSale(t, ledger.PaymentMethodCash, nil)
		assert.False(t, s.IsOnCredit())
	})
}

func TestSale_EffectiveDueDate(t *testing.T) {
	t.Run("uses explicit due date when present", func(t *testing.T) {
		due := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
		s := createTestSale(t, ledger.PaymentMethodBoleto, &due)
		assert.Equal(t, due, s.EffectiveDueDate())
	})

	t.Run("falls back to default credit term", func(t *testing.T) {
		s := createTestSale(t, ledger.PaymentMethodBoleto, nil)
		assert.Equal(t, s.IssueDate.AddDate(0, 0, DefaultCreditTermDays), s.EffectiveDueDate())
	})
}
