package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/backoffice/backend/internal/domain/ledger"
	"github.com/backoffice/backend/internal/domain/sales"
	"github.com/backoffice/backend/internal/domain/shared"
	"github.com/backoffice/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestSale(t *testing.T, method ledger.PaymentMethod, dueDate *time.Time) *sales.Sale {
	t.Helper()
	sale, err := sales.NewSale(
		"SALE-20240110-00001",
		uuid.New(),
		"Cliente Ltda",
		valueobject.NewMoneyBRLFromFloat(500.00),
		time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
		dueDate,
		method,
	)
	require.NoError(t, err)
	return sale
}

func newReceivableService(repo *MockObligationRepository) *ObligationService {
	return NewObligationService(ledger.PolarityReceivable, repo, nil, nil, nil, zap.NewNop())
}

func TestSaleCreatedHandler(t *testing.T) {
	ctx := context.Background()

	t.Run("spawns a receivable linked to the sale", func(t *testing.T) {
		repo := new(MockObligationRepository)
		handler := NewSaleCreatedHandler(newReceivableService(repo), zap.NewNop())

		due := time.Date(2024, 2, 9, 0, 0, 0, 0, time.UTC)
		sale := newTestSale(t, ledger.PaymentMethodBoleto, &due)
		event := sales.NewSaleCreatedEvent(sale)

		var persisted *ledger.Obligation
		repo.On("ExistsBySource", ctx, sale.ID).Return(false, nil)
		repo.On("GenerateSequenceNumber", ctx).Return("AR-20240110-00001", nil)
		repo.On("Save", ctx, mock.AnythingOfType("*ledger.Obligation")).Run(func(args mock.Arguments) {
			persisted = args.Get(1).(*ledger.Obligation)
		}).Return(nil)

		require.NoError(t, handler.Handle(ctx, event))

		require.NotNil(t, persisted)
		assert.Equal(t, ledger.PolarityReceivable, persisted.Polarity)
		require.NotNil(t, persisted.SourceDocumentID)
		assert.Equal(t, sale.ID, *persisted.SourceDocumentID)
		assert.Equal(t, "Sale SALE-20240110-00001", persisted.Description)
		assert.Equal(t, sale.CustomerName, persisted.CounterpartyName)
		assert.True(t, persisted.OriginalAmount.Equal(decimal.NewFromFloat(500.00)))
		assert.Equal(t, due, persisted.DueDate)
		assert.Equal(t, ledger.ObligationStatusPending, persisted.Status)
	})

	t.Run("redelivered event is a no-op", func(t *testing.T) {
		repo := new(MockObligationRepository)
		handler := NewSaleCreatedHandler(newReceivableService(repo), zap.NewNop())

		sale := newTestSale(t, ledger.PaymentMethodCash, nil)
		event := sales.NewSaleCreatedEvent(sale)

		existing := newDomainObligation(t, ledger.PolarityReceivable, 500)
		repo.On("ExistsBySource", ctx, sale.ID).Return(true, nil)
		repo.On("FindBySource", ctx, sale.ID).Return(existing, nil)

		require.NoError(t, handler.Handle(ctx, event))
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("cash sale without due date falls due on the issue date", func(t *testing.T) {
		repo := new(MockObligationRepository)
		handler := NewSaleCreatedHandler(newReceivableService(repo), zap.NewNop())

		sale := newTestSale(t, ledger.PaymentMethodCash, nil)
		event := sales.NewSaleCreatedEvent(sale)

		var persisted *ledger.Obligation
		repo.On("ExistsBySource", ctx, sale.ID).Return(false, nil)
		repo.On("GenerateSequenceNumber", ctx).Return("AR-20240110-00002", nil)
		repo.On("Save", ctx, mock.AnythingOfType("*ledger.Obligation")).Run(func(args mock.Arguments) {
			persisted = args.Get(1).(*ledger.Obligation)
		}).Return(nil)

		require.NoError(t, handler.Handle(ctx, event))
		require.NotNil(t, persisted)
		assert.Equal(t, sale.IssueDate, persisted.DueDate)
	})

	t.Run("on-credit sale without due date gets the default credit term", func(t *testing.T) {
		repo := new(MockObligationRepository)
		handler := NewSaleCreatedHandler(newReceivableService(repo), zap.NewNop())

		sale := newTestSale(t, ledger.PaymentMethodBoleto, nil)
		event := sales.NewSaleCreatedEvent(sale)

		var persisted *ledger.Obligation
		repo.On("ExistsBySource", ctx, sale.ID).Return(false, nil)
		repo.On("GenerateSequenceNumber", ctx).Return("AR-20240110-00003", nil)
		repo.On("Save", ctx, mock.AnythingOfType("*ledger.Obligation")).Run(func(args mock.Arguments) {
			persisted = args.Get(1).(*ledger.Obligation)
		}).Return(nil)

		require.NoError(t, handler.Handle(ctx, event))
		require.NotNil(t, persisted)
		assert.Equal(t, sale.IssueDate.AddDate(0, 0, sales.DefaultCreditTermDays), persisted.DueDate)
	})

	t.Run("rejects unexpected event types", func(t *testing.T) {
		repo := new(MockObligationRepository)
		handler := NewSaleCreatedHandler(newReceivableService(repo), zap.NewNop())

		sale := newTestSale(t, ledger.PaymentMethodCash, nil)
		require.NoError(t, sale.Finalize())

		assert.Error(t, handler.Handle(ctx, sales.NewSaleFinalizedEvent(sale)))
	})
}

func TestSaleFinalizedHandler(t *testing.T) {
	ctx := context.Background()

	t.Run("cash sale settles the receivable in full", func(t *testing.T) {
		repo := new(MockObligationRepository)
		handler := NewSaleFinalizedHandler(newReceivableService(repo), zap.NewNop())

		sale := newTestSale(t, ledger.PaymentMethodCash, nil)
		require.NoError(t, sale.Finalize())
		event := sales.NewSaleFinalizedEvent(sale)

		receivable := newDomainObligation(t, ledger.PolarityReceivable, 500)
		sourceID := sale.ID
		receivable.SourceDocumentID = &sourceID

		repo.On("FindBySource", ctx, sale.ID).Return(receivable, nil)
		repo.On("SaveWithLock", ctx, receivable).Return(nil)

		require.NoError(t, handler.Handle(ctx, event))
		assert.Equal(t, ledger.ObligationStatusSettled, receivable.Status)
		assert.True(t, receivable.RemainingAmount.IsZero())
		assert.Equal(t, ledger.PaymentMethodCash, receivable.PaymentMethod)
	})

	t.Run("on-credit sale leaves the receivable open", func(t *testing.T) {
		repo := new(MockObligationRepository)
		handler := NewSaleFinalizedHandler(newReceivableService(repo), zap.NewNop())

		due := time.Date(2024, 2, 9, 0, 0, 0, 0, time.UTC)
		sale := newTestSale(t, ledger.PaymentMethodBoleto, &due)
		require.NoError(t, sale.Finalize())

		require.NoError(t, handler.Handle(ctx, sales.NewSaleFinalizedEvent(sale)))
		repo.AssertNotCalled(t, "FindBySource", mock.Anything, mock.Anything)
	})

	t.Run("already settled receivable is skipped", func(t *testing.T) {
		repo := new(MockObligationRepository)
		handler := NewSaleFinalizedHandler(newReceivableService(repo), zap.NewNop())

		sale := newTestSale(t, ledger.PaymentMethodCash, nil)
		require.NoError(t, sale.Finalize())

		receivable := newDomainObligation(t, ledger.PolarityReceivable, 500)
		require.NoError(t, receivable.Settle(valueobject.NewMoneyBRLFromFloat(500), ledger.PaymentMethodCash, time.Now()))

		repo.On("FindBySource", ctx, sale.ID).Return(receivable, nil)

		require.NoError(t, handler.Handle(ctx, sales.NewSaleFinalizedEvent(sale)))
		repo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
	})
}

func TestSaleCancelledHandler(t *testing.T) {
	ctx := context.Background()

	t.Run("cancels the linked receivable", func(t *testing.T) {
		repo := new(MockObligationRepository)
		handler := NewSaleCancelledHandler(newReceivableService(repo), zap.NewNop())

		sale := newTestSale(t, ledger.PaymentMethodBoleto, nil)
		require.NoError(t, sale.Cancel())

		receivable := newDomainObligation(t, ledger.PolarityReceivable, 500)
		repo.On("FindBySource", ctx, sale.ID).Return(receivable, nil)
		repo.On("SaveWithLock", ctx, receivable).Return(nil)

		require.NoError(t, handler.Handle(ctx, sales.NewSaleCancelledEvent(sale)))
		assert.True(t, receivable.IsCancelled())
	})

	t.Run("partially settled receivable is still cancelled", func(t *testing.T) {
		repo := new(MockObligationRepository)
		handler := NewSaleCancelledHandler(newReceivableService(repo), zap.NewNop())

		sale := newTestSale(t, ledger.PaymentMethodBoleto, nil)
		require.NoError(t, sale.Cancel())

		receivable := newDomainObligation(t, ledger.PolarityReceivable, 500)
		require.NoError(t, receivable.Settle(valueobject.NewMoneyBRLFromFloat(200), ledger.PaymentMethodPix, time.Now()))

		repo.On("FindBySource", ctx, sale.ID).Return(receivable, nil)
		repo.On("SaveWithLock", ctx, receivable).Return(nil)

		require.NoError(t, handler.Handle(ctx, sales.NewSaleCancelledEvent(sale)))
		assert.True(t, receivable.IsCancelled())
		assert.True(t, receivable.SettledAmount.Equal(decimal.NewFromFloat(200)))
	})

	t.Run("no linked receivable is a no-op", func(t *testing.T) {
		repo := new(MockObligationRepository)
		handler := NewSaleCancelledHandler(newReceivableService(repo), zap.NewNop())

		sale := newTestSale(t, ledger.PaymentMethodCash, nil)
		require.NoError(t, sale.Cancel())

		repo.On("FindBySource", ctx, sale.ID).Return(nil, shared.ErrNotFound)

		require.NoError(t, handler.Handle(ctx, sales.NewSaleCancelledEvent(sale)))
		repo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
	})

	t.Run("already cancelled receivable is a no-op", func(t *testing.T) {
		repo := new(MockObligationRepository)
		handler := NewSaleCancelledHandler(newReceivableService(repo), zap.NewNop())

		sale := newTestSale(t, ledger.PaymentMethodCash, nil)
		require.NoError(t, sale.Cancel())

		receivable := newDomainObligation(t, ledger.PolarityReceivable, 500)
		require.NoError(t, receivable.Cancel())

		repo.On("FindBySource", ctx, sale.ID).Return(receivable, nil)

		require.NoError(t, handler.Handle(ctx, sales.NewSaleCancelledEvent(sale)))
		repo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
	})
}
