package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/backoffice/backend/internal/domain/ledger"
	"github.com/backoffice/backend/internal/domain/shared"
	"github.com/backoffice/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestService(polarity ledger.Polarity, repo *MockObligationRepository, cache *fakeCache) *ObligationService {
	var kv shared.KeyValueCache
	if cache != nil {
		kv = cache
	}
	return NewObligationService(polarity, repo, kv, nil, nil, zap.NewNop())
}

func newDomainObligation(t *testing.T, polarity ledger.Polarity, amount float64) *ledger.Obligation {
	t.Helper()
	o, err := ledger.NewObligation(
		polarity,
		polarity.SequencePrefix()+"-20240110-00001",
		"Office rent",
		uuid.New(),
		"Landlord Ltda",
		valueobject.NewMoneyBRLFromFloat(amount),
		time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 2, 9, 0, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)
	o.ClearDomainEvents()
	return o
}

// ============================================
// ListAll cache behavior
// ============================================

func TestObligationService_ListAll(t *testing.T) {
	ctx := context.Background()

	t.Run("first call populates the cache, second is served from it", func(t *testing.T) {
		repo := new(MockObligationRepository)
		cache := newFakeCache()
		service := newTestService(ledger.PolarityPayable, repo, cache)

		stored := []ledger.Obligation{*newDomainObligation(t, ledger.PolarityPayable, 1000)}
		repo.On("FindAll", ctx, mock.Anything).Return(stored, nil).Once()

		first, err := service.ListAll(ctx)
		require.NoError(t, err)
		require.Len(t, first, 1)
		assert.True(t, cache.has("ledger:payable:all"))
		assert.Equal(t, 2*time.Minute, cache.ttls["ledger:payable:all"])

		second, err := service.ListAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, first, second)

		repo.AssertExpectations(t) // FindAll ran exactly once
	})

	t.Run("cache keys are scoped per polarity", func(t *testing.T) {
		repo := new(MockObligationRepository)
		cache := newFakeCache()
		payables := newTestService(ledger.PolarityPayable, repo, cache)
		receivables := newTestService(ledger.PolarityReceivable, repo, cache)

		repo.On("FindAll", ctx, mock.Anything).Return([]ledger.Obligation{}, nil)

		_, err := payables.ListAll(ctx)
		require.NoError(t, err)
		_, err = receivables.ListAll(ctx)
		require.NoError(t, err)

		assert.True(t, cache.has("ledger:payable:all"))
		assert.True(t, cache.has("ledger:receivable:all"))
	})

	t.Run("works without a cache", func(t *testing.T) {
		repo := new(MockObligationRepository)
		service := newTestService(ledger.PolarityPayable, repo, nil)

		repo.On("FindAll", ctx, mock.Anything).Return([]ledger.Obligation{}, nil)

		got, err := service.ListAll(ctx)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("corrupt cache entry falls through to the repository", func(t *testing.T) {
		repo := new(MockObligationRepository)
		cache := newFakeCache()
		service := newTestService(ledger.PolarityPayable, repo, cache)

		require.NoError(t, cache.Set(ctx, "ledger:payable:all", []byte("{not json"), time.Minute))
		repo.On("FindAll", ctx, mock.Anything).Return([]ledger.Obligation{}, nil).Once()

		_, err := service.ListAll(ctx)
		require.NoError(t, err)
		repo.AssertExpectations(t)
	})
}

// ============================================
// Create
// ============================================

func TestObligationService_Create(t *testing.T) {
	ctx := context.Background()
	baseReq := CreateObligationRequest{
		Description:    "Supplier invoice",
		CounterpartyID: uuid.New(),
		Amount:         decimal.NewFromFloat(1500.00),
		IssueDate:      time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
		DueDate:        time.Date(2024, 2, 9, 0, 0, 0, 0, time.UTC),
		Category:       ledger.PayableCategorySuppliers,
	}

	t.Run("creates and invalidates the list cache", func(t *testing.T) {
		repo := new(MockObligationRepository)
		cache := newFakeCache()
		service := newTestService(ledger.PolarityPayable, repo, cache)
		require.NoError(t, cache.Set(ctx, "ledger:payable:all", []byte("[]"), time.Minute))

		repo.On("GenerateSequenceNumber", ctx).Return("AP-20240110-00001", nil)
		repo.On("Save", ctx, mock.AnythingOfType("*ledger.Obligation")).Return(nil)

		resp, err := service.Create(ctx, baseReq)
		require.NoError(t, err)
		assert.Equal(t, "AP-20240110-00001", resp.SequenceNumber)
		assert.Equal(t, "PENDING", resp.Status)
		assert.Equal(t, "SUPPLIERS", resp.Category)
		assert.False(t, cache.has("ledger:payable:all"))
	})

	t.Run("write clears every cache key of its polarity only", func(t *testing.T) {
		repo := new(MockObligationRepository)
		cache := newFakeCache()
		service := newTestService(ledger.PolarityPayable, repo, cache)
		require.NoError(t, cache.Set(ctx, "ledger:payable:all", []byte("[]"), time.Minute))
		require.NoError(t, cache.Set(ctx, "ledger:payable:overdue", []byte("[]"), time.Minute))
		require.NoError(t, cache.Set(ctx, "ledger:receivable:all", []byte("[]"), time.Minute))

		repo.On("GenerateSequenceNumber", ctx).Return("AP-20240110-00009", nil)
		repo.On("Save", ctx, mock.AnythingOfType("*ledger.Obligation")).Return(nil)

		_, err := service.Create(ctx, baseReq)
		require.NoError(t, err)
		assert.False(t, cache.has("ledger:payable:all"))
		assert.False(t, cache.has("ledger:payable:overdue"))
		assert.True(t, cache.has("ledger:receivable:all"))
	})

	t.Run("rejects unknown category before touching the repository", func(t *testing.T) {
		repo := new(MockObligationRepository)
		service := newTestService(ledger.PolarityPayable, repo, nil)

		req := baseReq
		req.Category = ledger.PayableCategory("GAMBLING")

		_, err := service.Create(ctx, req)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_CATEGORY", domainErr.Code)
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("rejects unknown recurrence kind before touching the repository", func(t *testing.T) {
		repo := new(MockObligationRepository)
		service := newTestService(ledger.PolarityPayable, repo, nil)

		bad := ledger.RecurrenceKind("FORTNIGHTLY-ISH")
		req := baseReq
		req.IsRecurring = true
		req.RecurrenceKind = &bad

		_, err := service.Create(ctx, req)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_RECURRENCE", domainErr.Code)
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("missing counterparty does not block creation", func(t *testing.T) {
		repo := new(MockObligationRepository)
		service := NewObligationService(ledger.PolarityPayable, repo, nil,
			&stubLookup{names: map[uuid.UUID]string{}}, nil, zap.NewNop())

		repo.On("GenerateSequenceNumber", ctx).Return("AP-20240110-00002", nil)
		repo.On("Save", ctx, mock.AnythingOfType("*ledger.Obligation")).Return(nil)

		resp, err := service.Create(ctx, baseReq)
		require.NoError(t, err)
		assert.Empty(t, resp.CounterpartyName)
	})

	t.Run("known counterparty name is snapshotted", func(t *testing.T) {
		repo := new(MockObligationRepository)
		counterpartyID := uuid.New()
		service := NewObligationService(ledger.PolarityPayable, repo, nil,
			&stubLookup{names: map[uuid.UUID]string{counterpartyID: "Fornecedor SA"}}, nil, zap.NewNop())

		req := baseReq
		req.CounterpartyID = counterpartyID
		repo.On("GenerateSequenceNumber", ctx).Return("AP-20240110-00003", nil)
		repo.On("Save", ctx, mock.AnythingOfType("*ledger.Obligation")).Return(nil)

		resp, err := service.Create(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, "Fornecedor SA", resp.CounterpartyName)
	})

	t.Run("domain validation errors propagate", func(t *testing.T) {
		repo := new(MockObligationRepository)
		service := newTestService(ledger.PolarityPayable, repo, nil)

		req := baseReq
		req.Amount = decimal.Zero
		repo.On("GenerateSequenceNumber", ctx).Return("AP-20240110-00004", nil)

		_, err := service.Create(ctx, req)
		require.Error(t, err)
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

// ============================================
// Settle / Cancel / Update / Delete
// ============================================

func TestObligationService_Settle(t *testing.T) {
	ctx := context.Background()
	settleDate := time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC)

	t.Run("settles, tags a note, invalidates cache", func(t *testing.T) {
		repo := new(MockObligationRepository)
		cache := newFakeCache()
		service := newTestService(ledger.PolarityReceivable, repo, cache)
		require.NoError(t, cache.Set(ctx, "ledger:receivable:all", []byte("[]"), time.Minute))

		obligation := newDomainObligation(t, ledger.PolarityReceivable, 1000)
		repo.On("FindByID", ctx, obligation.ID).Return(obligation, nil)
		repo.On("SaveWithLock", ctx, obligation).Return(nil)

		resp, err := service.Settle(ctx, obligation.ID, SettleObligationRequest{
			Amount:         decimal.NewFromFloat(300),
			PaymentMethod:  ledger.PaymentMethodPix,
			SettlementDate: settleDate,
			Note:           "first installment",
		})
		require.NoError(t, err)
		assert.Equal(t, "PARTIALLY_SETTLED", resp.Status)
		assert.Contains(t, resp.Notes, "[settlement 2024-01-20] first installment")
		assert.False(t, cache.has("ledger:receivable:all"))
	})

	t.Run("over-settlement is rejected before persistence", func(t *testing.T) {
		repo := new(MockObligationRepository)
		service := newTestService(ledger.PolarityReceivable, repo, nil)

		obligation := newDomainObligation(t, ledger.PolarityReceivable, 1500)
		repo.On("FindByID", ctx, obligation.ID).Return(obligation, nil)

		_, err := service.Settle(ctx, obligation.ID, SettleObligationRequest{
			Amount:         decimal.NewFromFloat(1700),
			PaymentMethod:  ledger.PaymentMethodPix,
			SettlementDate: settleDate,
		})
		require.Error(t, err)
		repo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
	})

	t.Run("missing obligation is not found", func(t *testing.T) {
		repo := new(MockObligationRepository)
		service := newTestService(ledger.PolarityReceivable, repo, nil)

		id := uuid.New()
		repo.On("FindByID", ctx, id).Return(nil, shared.ErrNotFound)

		_, err := service.Settle(ctx, id, SettleObligationRequest{
			Amount:         decimal.NewFromFloat(10),
			PaymentMethod:  ledger.PaymentMethodCash,
			SettlementDate: settleDate,
		})
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "NOT_FOUND", domainErr.Code)
	})
}

func TestObligationService_Cancel(t *testing.T) {
	ctx := context.Background()

	t.Run("missing obligation reports found=false without error", func(t *testing.T) {
		repo := new(MockObligationRepository)
		service := newTestService(ledger.PolarityPayable, repo, nil)

		id := uuid.New()
		repo.On("FindByID", ctx, id).Return(nil, shared.ErrNotFound)

		found, err := service.Cancel(ctx, id)
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("cancels an open obligation", func(t *testing.T) {
		repo := new(MockObligationRepository)
		cache := newFakeCache()
		service := newTestService(ledger.PolarityPayable, repo, cache)
		require.NoError(t, cache.Set(ctx, "ledger:payable:all", []byte("[]"), time.Minute))

		obligation := newDomainObligation(t, ledger.PolarityPayable, 100)
		repo.On("FindByID", ctx, obligation.ID).Return(obligation, nil)
		repo.On("SaveWithLock", ctx, obligation).Return(nil)

		found, err := service.Cancel(ctx, obligation.ID)
		require.NoError(t, err)
		assert.True(t, found)
		assert.True(t, obligation.IsCancelled())
		assert.False(t, cache.has("ledger:payable:all"))
	})

	t.Run("settled obligation cannot be cancelled", func(t *testing.T) {
		repo := new(MockObligationRepository)
		service := newTestService(ledger.PolarityPayable, repo, nil)

		obligation := newDomainObligation(t, ledger.PolarityPayable, 100)
		require.NoError(t, obligation.Settle(valueobject.NewMoneyBRLFromFloat(100), ledger.PaymentMethodCash, time.Now()))

		repo.On("FindByID", ctx, obligation.ID).Return(obligation, nil)

		found, err := service.Cancel(ctx, obligation.ID)
		assert.True(t, found)
		require.Error(t, err)
		repo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
	})
}

func TestObligationService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("settled obligation is immutable", func(t *testing.T) {
		repo := new(MockObligationRepository)
		service := newTestService(ledger.PolarityPayable, repo, nil)

		obligation := newDomainObligation(t, ledger.PolarityPayable, 100)
		require.NoError(t, obligation.Settle(valueobject.NewMoneyBRLFromFloat(100), ledger.PaymentMethodCash, time.Now()))
		repo.On("FindByID", ctx, obligation.ID).Return(obligation, nil)

		desc := "new description"
		_, err := service.Update(ctx, obligation.ID, UpdateObligationRequest{Description: &desc})
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_STATE", domainErr.Code)
	})

	t.Run("updates descriptive fields on an open obligation", func(t *testing.T) {
		repo := new(MockObligationRepository)
		cache := newFakeCache()
		service := newTestService(ledger.PolarityPayable, repo, cache)
		require.NoError(t, cache.Set(ctx, "ledger:payable:all", []byte("[]"), time.Minute))

		obligation := newDomainObligation(t, ledger.PolarityPayable, 100)
		repo.On("FindByID", ctx, obligation.ID).Return(obligation, nil)
		repo.On("SaveWithLock", ctx, obligation).Return(nil)

		desc := "Renegotiated rent"
		due := obligation.DueDate.AddDate(0, 0, 15)
		resp, err := service.Update(ctx, obligation.ID, UpdateObligationRequest{
			Description: &desc,
			DueDate:     &due,
		})
		require.NoError(t, err)
		assert.Equal(t, desc, resp.Description)
		assert.Equal(t, due, resp.DueDate)
		assert.False(t, cache.has("ledger:payable:all"))
	})
}

func TestObligationService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("deletes an open obligation", func(t *testing.T) {
		repo := new(MockObligationRepository)
		cache := newFakeCache()
		service := newTestService(ledger.PolarityPayable, repo, cache)
		require.NoError(t, cache.Set(ctx, "ledger:payable:all", []byte("[]"), time.Minute))

		obligation := newDomainObligation(t, ledger.PolarityPayable, 100)
		repo.On("FindByID", ctx, obligation.ID).Return(obligation, nil)
		repo.On("Delete", ctx, obligation.ID).Return(nil)

		found, err := service.Delete(ctx, obligation.ID)
		require.NoError(t, err)
		assert.True(t, found)
		assert.False(t, cache.has("ledger:payable:all"))
	})

	t.Run("settled obligation cannot be deleted", func(t *testing.T) {
		repo := new(MockObligationRepository)
		service := newTestService(ledger.PolarityPayable, repo, nil)

		obligation := newDomainObligation(t, ledger.PolarityPayable, 100)
		require.NoError(t, obligation.Settle(valueobject.NewMoneyBRLFromFloat(100), ledger.PaymentMethodCash, time.Now()))
		repo.On("FindByID", ctx, obligation.ID).Return(obligation, nil)

		_, err := service.Delete(ctx, obligation.ID)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_STATE", domainErr.Code)
		repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("missing obligation reports found=false", func(t *testing.T) {
		repo := new(MockObligationRepository)
		service := newTestService(ledger.PolarityPayable, repo, nil)

		id := uuid.New()
		repo.On("FindByID", ctx, id).Return(nil, shared.ErrNotFound)

		found, err := service.Delete(ctx, id)
		require.NoError(t, err)
		assert.False(t, found)
		repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})
}

// ============================================
// Batch operations
// ============================================

func TestObligationService_RefreshAllStatuses(t *testing.T) {
	ctx := context.Background()
	today := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	t.Run("relabels only past-due open obligations", func(t *testing.T) {
		repo := new(MockObligationRepository)
		cache := newFakeCache()
		service := newTestService(ledger.PolarityPayable, repo, cache)
		require.NoError(t, cache.Set(ctx, "ledger:payable:all", []byte("[]"), time.Minute))

		pastDue := newDomainObligation(t, ledger.PolarityPayable, 100) // due 2024-02-09
		notDue := newDomainObligation(t, ledger.PolarityPayable, 200)
		notDue.DueDate = today.AddDate(0, 1, 0)

		repo.On("FindOpen", ctx).Return([]ledger.Obligation{*pastDue, *notDue}, nil)
		repo.On("SaveWithLock", ctx, mock.AnythingOfType("*ledger.Obligation")).Return(nil).Once()

		changed, err := service.RefreshAllStatuses(ctx, today)
		require.NoError(t, err)
		assert.Equal(t, 1, changed)
		assert.False(t, cache.has("ledger:payable:all"))
		repo.AssertExpectations(t)
	})

	t.Run("no change leaves the cache alone", func(t *testing.T) {
		repo := new(MockObligationRepository)
		cache := newFakeCache()
		service := newTestService(ledger.PolarityPayable, repo, cache)
		require.NoError(t, cache.Set(ctx, "ledger:payable:all", []byte("[]"), time.Minute))

		repo.On("FindOpen", ctx).Return([]ledger.Obligation{}, nil)

		changed, err := service.RefreshAllStatuses(ctx, today)
		require.NoError(t, err)
		assert.Zero(t, changed)
		assert.True(t, cache.has("ledger:payable:all"))
	})
}

func TestObligationService_ProcessRecurring(t *testing.T) {
	ctx := context.Background()
	asOf := time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC)

	t.Run("persists the successor and closes out the source", func(t *testing.T) {
		repo := new(MockObligationRepository)
		service := newTestService(ledger.PolarityPayable, repo, nil)

		source := newDomainObligation(t, ledger.PolarityPayable, 350)
		kind := ledger.RecurrenceMonthly
		source.IsRecurring = true
		source.RecurrenceKind = &kind

		var persisted *ledger.Obligation
		repo.On("FindRecurringDue", ctx, asOf).Return([]ledger.Obligation{*source}, nil)
		repo.On("GenerateSequenceNumber", ctx).Return("AP-20240210-00009", nil)
		repo.On("Save", ctx, mock.AnythingOfType("*ledger.Obligation")).Run(func(args mock.Arguments) {
			persisted = args.Get(1).(*ledger.Obligation)
		}).Return(nil)
		repo.On("SaveWithLock", ctx, mock.AnythingOfType("*ledger.Obligation")).Return(nil)

		created, err := service.ProcessRecurring(ctx, asOf)
		require.NoError(t, err)
		assert.Equal(t, 1, created)

		require.NotNil(t, persisted)
		assert.Equal(t, "AP-20240210-00009", persisted.SequenceNumber)
		assert.Equal(t, source.DueDate.AddDate(0, 1, 0), persisted.DueDate)
		assert.True(t, persisted.IsRecurring)
	})

	t.Run("nothing due generates nothing", func(t *testing.T) {
		repo := new(MockObligationRepository)
		service := newTestService(ledger.PolarityPayable, repo, nil)

		repo.On("FindRecurringDue", ctx, asOf).Return([]ledger.Obligation{}, nil)

		created, err := service.ProcessRecurring(ctx, asOf)
		require.NoError(t, err)
		assert.Zero(t, created)
	})
}

func TestObligationService_PreviewInterest(t *testing.T) {
	ctx := context.Background()

	t.Run("computes interest without persisting", func(t *testing.T) {
		repo := new(MockObligationRepository)
		service := newTestService(ledger.PolarityReceivable, repo, nil)

		obligation := newDomainObligation(t, ledger.PolarityReceivable, 1000)
		repo.On("FindByID", ctx, obligation.ID).Return(obligation, nil)

		got, err := service.PreviewInterest(ctx, obligation.ID,
			obligation.DueDate.AddDate(0, 0, 10), decimal.NewFromFloat(0.001))
		require.NoError(t, err)
		assert.True(t, got.Equal(decimal.NewFromFloat(10)))
		repo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
	})

	t.Run("rejects negative rates", func(t *testing.T) {
		repo := new(MockObligationRepository)
		service := newTestService(ledger.PolarityReceivable, repo, nil)

		_, err := service.PreviewInterest(ctx, uuid.New(), time.Now(), decimal.NewFromFloat(-0.01))
		assert.Error(t, err)
	})
}
