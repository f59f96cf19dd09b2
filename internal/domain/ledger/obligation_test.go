package ledger

import (
	"testing"
	"time"

	"github.com/backoffice/backend/internal/domain/shared"
	"github.com/backoffice/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test helpers

func createTestObligation(t *testing.T, polarity Polarity, amount float64) *Obligation {
	o, err := NewObligation(
		polarity,
		polarity.SequencePrefix()+"-20240110-00001",
		"Test obligation",
		uuid.New(),
		"Test Counterparty",
		valueobject.NewMoneyBRLFromFloat(amount),
		time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 2, 9, 0, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)
	return o
}

func createTestPayable(t *testing.T, amount float64) *Obligation {
	return createTestObligation(t, PolarityPayable, amount)
}

func createTestReceivable(t *testing.T, amount float64) *Obligation {
	return createTestObligation(t, PolarityReceivable, amount)
}

func money(amount float64) valueobject.Money {
	return valueobject.NewMoneyBRLFromFloat(amount)
}

func assertDomainErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, code, domainErr.Code)
}

// ============================================
// ObligationStatus Tests
// ============================================

func TestObligationStatus_IsValid(t *testing.T) {
	tests := []struct {
		status  ObligationStatus
		isValid bool
	}{
		{ObligationStatusPending, true},
		{ObligationStatusPartiallySettled, true},
		{ObligationStatusOverdue, true},
		{ObligationStatusSettled, true},
		{ObligationStatusCancelled, true},
		{ObligationStatus("INVALID"), false},
		{ObligationStatus(""), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.isValid, tt.status.IsValid())
		})
	}
}

func TestObligationStatus_IsTerminal(t *testing.T) {
	tests := []struct {
		status     ObligationStatus
		isTerminal bool
	}{
		{ObligationStatusPending, false},
		{ObligationStatusPartiallySettled, false},
		{ObligationStatusOverdue, false},
		{ObligationStatusSettled, true},
		{ObligationStatusCancelled, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.isTerminal, tt.status.IsTerminal())
		})
	}
}

// ============================================
// Creation Tests
// ============================================

func TestNewObligation(t *testing.T) {
	t.Run("creates pending obligation with full remaining amount", func(t *testing.T) {
		o := createTestPayable(t, 1000.00)

		assert.Equal(t, ObligationStatusPending, o.Status)
		assert.Equal(t, PolarityPayable, o.Polarity)
		assert.True(t, o.OriginalAmount.Equal(decimal.NewFromFloat(1000.00)))
		assert.True(t, o.SettledAmount.IsZero())
		assert.True(t, o.RemainingAmount.Equal(o.OriginalAmount))
		assert.True(t, o.Discount.IsZero())
		assert.True(t, o.Interest.IsZero())
		assert.True(t, o.Penalty.IsZero())
		assert.True(t, o.Active)
		assert.Nil(t, o.SettlementDate)
	})

	t.Run("emits created event", func(t *testing.T) {
		o := createTestReceivable(t, 500.00)

		events := o.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeObligationCreated, events[0].EventType())
	})

	t.Run("rejects non-positive amounts", func(t *testing.T) {
		for _, amount := range []float64{0, -10.50} {
			_, err := NewObligation(
				PolarityPayable,
				"AP-20240110-00001",
				"Bad amount",
				uuid.New(),
				"Counterparty",
				valueobject.NewMoneyBRLFromFloat(amount),
				time.Now(),
				time.Now().AddDate(0, 0, 30),
			)
			assertDomainErrorCode(t, err, "INVALID_AMOUNT")
		}
	})

	t.Run("rejects invalid polarity", func(t *testing.T) {
		_, err := NewObligation(
			Polarity("SIDEWAYS"),
			"XX-20240110-00001",
			"Bad polarity",
			uuid.New(),
			"Counterparty",
			money(100),
			time.Now(),
			time.Now(),
		)
		assertDomainErrorCode(t, err, "INVALID_POLARITY")
	})

	t.Run("allows empty counterparty name snapshot", func(t *testing.T) {
		o, err := NewObligation(
			PolarityReceivable,
			"AR-20240110-00001",
			"No snapshot",
			uuid.New(),
			"",
			money(100),
			time.Now(),
			time.Now().AddDate(0, 0, 10),
		)
		require.NoError(t, err)
		assert.Empty(t, o.CounterpartyName)
	})
}

// ============================================
// Settle Tests
// ============================================

func TestObligation_Settle(t *testing.T) {
	settleDate := time.Date(2024, 1, 20, 12, 0, 0, 0, time.UTC)

	t.Run("partial then full settlement", func(t *testing.T) {
		o := createTestPayable(t, 1000.00)

		err := o.Settle(money(300.00), PaymentMethodPix, settleDate)
		require.NoError(t, err)
		assert.Equal(t, ObligationStatusPartiallySettled, o.Status)
		assert.True(t, o.SettledAmount.Equal(decimal.NewFromFloat(300.00)))
		assert.True(t, o.RemainingAmount.Equal(decimal.NewFromFloat(700.00)))

		err = o.Settle(money(700.00), PaymentMethodPix, settleDate)
		require.NoError(t, err)
		assert.Equal(t, ObligationStatusSettled, o.Status)
		assert.True(t, o.RemainingAmount.IsZero())
		require.NotNil(t, o.SettlementDate)
		assert.Equal(t, settleDate, *o.SettlementDate)
	})

	t.Run("settling exact remaining amount settles fully", func(t *testing.T) {
		o := createTestReceivable(t, 250.50)

		err := o.Settle(money(250.50), PaymentMethodCash, settleDate)
		require.NoError(t, err)
		assert.Equal(t, ObligationStatusSettled, o.Status)
	})

	t.Run("last settlement method and date win", func(t *testing.T) {
		o := createTestPayable(t, 1000.00)
		laterDate := settleDate.AddDate(0, 0, 5)

		require.NoError(t, o.Settle(money(400.00), PaymentMethodPix, settleDate))
		require.NoError(t, o.Settle(money(600.00), PaymentMethodBankTransfer, laterDate))

		assert.Equal(t, PaymentMethodBankTransfer, o.PaymentMethod)
		assert.Equal(t, laterDate, *o.SettlementDate)
	})

	t.Run("rejects amount exceeding remaining without side effects", func(t *testing.T) {
		o := createTestReceivable(t, 1500.00)

		err := o.Settle(money(1700.00), PaymentMethodPix, settleDate)
		assertDomainErrorCode(t, err, "INVALID_AMOUNT")

		assert.Equal(t, ObligationStatusPending, o.Status)
		assert.True(t, o.SettledAmount.IsZero())
		assert.True(t, o.RemainingAmount.Equal(decimal.NewFromFloat(1500.00)))
		assert.Empty(t, o.PaymentMethod)
		assert.Nil(t, o.SettlementDate)
	})

	t.Run("rejects non-positive amounts", func(t *testing.T) {
		o := createTestPayable(t, 100.00)

		err := o.Settle(money(0), PaymentMethodCash, settleDate)
		assertDomainErrorCode(t, err, "INVALID_AMOUNT")

		err = o.Settle(money(-5), PaymentMethodCash, settleDate)
		assertDomainErrorCode(t, err, "INVALID_AMOUNT")
	})

	t.Run("rejects settlement on settled obligation", func(t *testing.T) {
		o := createTestPayable(t, 100.00)
		require.NoError(t, o.Settle(money(100.00), PaymentMethodCash, settleDate))

		err := o.Settle(money(1.00), PaymentMethodCash, settleDate)
		assertDomainErrorCode(t, err, "INVALID_STATE")
	})

	t.Run("rejects settlement on cancelled obligation", func(t *testing.T) {
		o := createTestPayable(t, 100.00)
		require.NoError(t, o.Cancel())

		err := o.Settle(money(50.00), PaymentMethodCash, settleDate)
		assertDomainErrorCode(t, err, "INVALID_STATE")
	})

	t.Run("settlement allowed on overdue obligation", func(t *testing.T) {
		o := createTestPayable(t, 100.00)
		require.True(t, o.RefreshStatus(o.DueDate.AddDate(0, 0, 1)))
		require.Equal(t, ObligationStatusOverdue, o.Status)

		err := o.Settle(money(40.00), PaymentMethodBoleto, settleDate)
		require.NoError(t, err)
		assert.Equal(t, ObligationStatusPartiallySettled, o.Status)
	})

	t.Run("settled amount is monotonically non-decreasing", func(t *testing.T) {
		o := createTestReceivable(t, 900.00)
		prev := o.SettledAmount

		for _, amt := range []float64{100, 200, 300, 300} {
			require.NoError(t, o.Settle(money(amt), PaymentMethodPix, settleDate))
			assert.True(t, o.SettledAmount.GreaterThanOrEqual(prev))
			assert.True(t, o.SettledAmount.LessThanOrEqual(o.OriginalAmount))
			prev = o.SettledAmount
		}
		assert.Equal(t, ObligationStatusSettled, o.Status)
	})

	t.Run("repeated partials avoid binary float drift", func(t *testing.T) {
		o := createTestPayable(t, 0.30)

		for range 3 {
			require.NoError(t, o.Settle(money(0.10), PaymentMethodPix, settleDate))
		}
		assert.Equal(t, ObligationStatusSettled, o.Status)
		assert.True(t, o.RemainingAmount.IsZero())
	})
}

// ============================================
// Cancel Tests
// ============================================

func TestObligation_Cancel(t *testing.T) {
	t.Run("cancels pending obligation", func(t *testing.T) {
		o := createTestPayable(t, 100.00)

		require.NoError(t, o.Cancel())
		assert.Equal(t, ObligationStatusCancelled, o.Status)
	})

	t.Run("cancels partially settled obligation without reversing settled amount", func(t *testing.T) {
		o := createTestReceivable(t, 100.00)
		require.NoError(t, o.Settle(money(60.00), PaymentMethodPix, time.Now()))

		require.NoError(t, o.Cancel())
		assert.Equal(t, ObligationStatusCancelled, o.Status)
		assert.True(t, o.SettledAmount.Equal(decimal.NewFromFloat(60.00)))
	})

	t.Run("rejects cancel on settled obligation", func(t *testing.T) {
		o := createTestPayable(t, 100.00)
		require.NoError(t, o.Settle(money(100.00), PaymentMethodCash, time.Now()))

		assertDomainErrorCode(t, o.Cancel(), "INVALID_STATE")
	})

	t.Run("rejects cancel on cancelled obligation", func(t *testing.T) {
		o := createTestPayable(t, 100.00)
		require.NoError(t, o.Cancel())

		assertDomainErrorCode(t, o.Cancel(), "INVALID_STATE")
	})
}

// ============================================
// RefreshStatus Tests
// ============================================

func TestObligation_RefreshStatus(t *testing.T) {
	t.Run("flips pending to overdue past due date", func(t *testing.T) {
		o := createTestPayable(t, 100.00)
		today := o.DueDate.AddDate(0, 0, 1)

		assert.True(t, o.RefreshStatus(today))
		assert.Equal(t, ObligationStatusOverdue, o.Status)
		assert.True(t, o.IsOverdue())
	})

	t.Run("is idempotent", func(t *testing.T) {
		o := createTestPayable(t, 100.00)
		today := o.DueDate.AddDate(0, 0, 1)

		require.True(t, o.RefreshStatus(today))
		assert.False(t, o.RefreshStatus(today))
		assert.Equal(t, ObligationStatusOverdue, o.Status)
	})

	t.Run("no change on or before due date", func(t *testing.T) {
		o := createTestPayable(t, 100.00)

		assert.False(t, o.RefreshStatus(o.DueDate))
		assert.Equal(t, ObligationStatusPending, o.Status)

		assert.False(t, o.RefreshStatus(o.DueDate.AddDate(0, 0, -1)))
		assert.Equal(t, ObligationStatusPending, o.Status)
	})

	t.Run("flips partially settled to overdue", func(t *testing.T) {
		o := createTestReceivable(t, 100.00)
		require.NoError(t, o.Settle(money(30.00), PaymentMethodPix, time.Now()))

		assert.True(t, o.RefreshStatus(o.DueDate.AddDate(0, 0, 2)))
		assert.Equal(t, ObligationStatusOverdue, o.Status)
	})

	t.Run("leaves terminal statuses untouched", func(t *testing.T) {
		settled := createTestPayable(t, 100.00)
		require.NoError(t, settled.Settle(money(100.00), PaymentMethodCash, time.Now()))
		assert.False(t, settled.RefreshStatus(settled.DueDate.AddDate(0, 0, 10)))
		assert.Equal(t, ObligationStatusSettled, settled.Status)

		cancelled := createTestPayable(t, 100.00)
		require.NoError(t, cancelled.Cancel())
		assert.False(t, cancelled.RefreshStatus(cancelled.DueDate.AddDate(0, 0, 10)))
		assert.Equal(t, ObligationStatusCancelled, cancelled.Status)
	})
}

// ============================================
// ComputeInterest Tests
// ============================================

func TestObligation_ComputeInterest(t *testing.T) {
	rate := decimal.NewFromFloat(0.001) // 0.1% per day

	t.Run("zero on or before due date", func(t *testing.T) {
		o := createTestPayable(t, 1000.00)

		assert.True(t, o.ComputeInterest(o.DueDate, rate).IsZero())
		assert.True(t, o.ComputeInterest(o.DueDate.AddDate(0, 0, -5), rate).IsZero())
	})

	t.Run("positive strictly after due date", func(t *testing.T) {
		o := createTestPayable(t, 1000.00)

		got := o.ComputeInterest(o.DueDate.AddDate(0, 0, 1), rate)
		assert.True(t, got.IsPositive())
		// 1000 * 0.001 * 1 day
		assert.True(t, got.Equal(decimal.NewFromFloat(1.00)))
	})

	t.Run("scales linearly with days late", func(t *testing.T) {
		o := createTestReceivable(t, 2000.00)

		got := o.ComputeInterest(o.DueDate.AddDate(0, 0, 10), rate)
		// 2000 * 0.001 * 10 days
		assert.True(t, got.Equal(decimal.NewFromFloat(20.00)))
	})

	t.Run("uses live date comparison regardless of stored label", func(t *testing.T) {
		o := createTestPayable(t, 1000.00)
		require.Equal(t, ObligationStatusPending, o.Status) // label never refreshed

		got := o.ComputeInterest(o.DueDate.AddDate(0, 0, 3), rate)
		assert.True(t, got.Equal(decimal.NewFromFloat(3.00)))
	})

	t.Run("counts calendar days even when less than 24h elapse per day", func(t *testing.T) {
		o := createTestPayable(t, 1000.00)
		// Due at UTC midnight, queried two calendar days later in a zone
		// whose midnight falls only 45 elapsed hours after the due date.
		o.DueDate = time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)
		asOf := time.Date(2024, 3, 11, 8, 0, 0, 0, time.FixedZone("UTC+3", 3*60*60))

		got := o.ComputeInterest(asOf, decimal.NewFromFloat(0.01))
		// 1000 * 0.01 * 2 days
		assert.True(t, got.Equal(decimal.NewFromFloat(20.00)))
	})

	t.Run("does not mutate the obligation", func(t *testing.T) {
		o := createTestPayable(t, 1000.00)
		before := o.Interest

		o.ComputeInterest(o.DueDate.AddDate(0, 0, 7), rate)
		assert.True(t, o.Interest.Equal(before))
	})
}

// ============================================
// GenerateNextInstallment Tests
// ============================================

func TestObligation_GenerateNextInstallment(t *testing.T) {
	t.Run("nil when not recurring", func(t *testing.T) {
		o := createTestPayable(t, 100.00)

		assert.Nil(t, o.GenerateNextInstallment())
	})

	t.Run("advances due date by recurrence kind", func(t *testing.T) {
		o := createTestPayable(t, 100.00)
		o.DueDate = time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
		kind := RecurrenceMonthly
		o.IsRecurring = true
		o.RecurrenceKind = &kind

		next := o.GenerateNextInstallment()
		require.NotNil(t, next)
		assert.Equal(t, time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC), next.DueDate)
	})

	t.Run("successor copies the recurring shape", func(t *testing.T) {
		o := createTestPayable(t, 350.00)
		kind := RecurrenceWeekly
		o.IsRecurring = true
		o.RecurrenceKind = &kind
		o.CostCenter = "HQ"
		o.Category = PayableCategoryRent

		next := o.GenerateNextInstallment()
		require.NotNil(t, next)
		assert.Equal(t, o.Description, next.Description)
		assert.True(t, next.OriginalAmount.Equal(o.OriginalAmount))
		assert.True(t, next.IsRecurring)
		assert.Equal(t, &kind, next.RecurrenceKind)
		assert.Equal(t, ObligationStatusPending, next.Status)
		assert.True(t, next.SettledAmount.IsZero())
		assert.True(t, next.RemainingAmount.Equal(o.OriginalAmount))
		assert.Equal(t, o.CostCenter, next.CostCenter)
		assert.Equal(t, o.Category, next.Category)
		assert.Empty(t, next.SequenceNumber) // assigned by the repository on persist
		assert.NotEqual(t, o.ID, next.ID)
	})

	t.Run("does not mutate the source obligation", func(t *testing.T) {
		o := createTestPayable(t, 100.00)
		kind := RecurrenceMonthly
		o.IsRecurring = true
		o.RecurrenceKind = &kind
		dueBefore := o.DueDate

		_ = o.GenerateNextInstallment()
		assert.Equal(t, dueBefore, o.DueDate)
		assert.Equal(t, ObligationStatusPending, o.Status)
	})

	t.Run("uses interval days when kind is absent", func(t *testing.T) {
		o := createTestPayable(t, 100.00)
		o.DueDate = time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
		interval := 45
		o.IsRecurring = true
		o.RecurrenceIntervalDays = &interval

		next := o.GenerateNextInstallment()
		require.NotNil(t, next)
		assert.Equal(t, time.Date(2024, 2, 24, 0, 0, 0, 0, time.UTC), next.DueDate)
	})

	t.Run("nil when recurring without kind or interval", func(t *testing.T) {
		o := createTestPayable(t, 100.00)
		o.IsRecurring = true

		assert.Nil(t, o.GenerateNextInstallment())
	})
}

// ============================================
// AppendNote Tests
// ============================================

func TestObligation_AppendNote(t *testing.T) {
	o := createTestPayable(t, 100.00)

	o.AppendNote("settlement 2024-01-20", "paid at branch")
	assert.Equal(t, "[settlement 2024-01-20] paid at branch", o.Notes)

	o.AppendNote("settlement 2024-02-20", "final installment")
	assert.Contains(t, o.Notes, "paid at branch")
	assert.Contains(t, o.Notes, "final installment")

	before := o.Notes
	o.AppendNote("ignored", "")
	assert.Equal(t, before, o.Notes)
}
