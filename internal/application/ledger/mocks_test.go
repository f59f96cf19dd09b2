package ledger

import (
	"context"
	"sync"
	"time"

	"github.com/backoffice/backend/internal/domain/ledger"
	"github.com/backoffice/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockObligationRepository is a mock implementation of ledger.ObligationRepository
type MockObligationRepository struct {
	mock.Mock
}

func (m *MockObligationRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Obligation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Obligation), args.Error(1)
}

func (m *MockObligationRepository) FindBySequenceNumber(ctx context.Context, sequenceNumber string) (*ledger.Obligation, error) {
	args := m.Called(ctx, sequenceNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Obligation), args.Error(1)
}

func (m *MockObligationRepository) FindBySource(ctx context.Context, sourceDocumentID uuid.UUID) (*ledger.Obligation, error) {
	args := m.Called(ctx, sourceDocumentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Obligation), args.Error(1)
}

func (m *MockObligationRepository) ExistsBySource(ctx context.Context, sourceDocumentID uuid.UUID) (bool, error) {
	args := m.Called(ctx, sourceDocumentID)
	return args.Bool(0), args.Error(1)
}

func (m *MockObligationRepository) FindAll(ctx context.Context, filter ledger.ObligationFilter) ([]ledger.Obligation, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]ledger.Obligation), args.Error(1)
}

func (m *MockObligationRepository) FindByStatus(ctx context.Context, status ledger.ObligationStatus, filter ledger.ObligationFilter) ([]ledger.Obligation, error) {
	args := m.Called(ctx, status, filter)
	return args.Get(0).([]ledger.Obligation), args.Error(1)
}

func (m *MockObligationRepository) FindByCounterparty(ctx context.Context, counterpartyID uuid.UUID, filter ledger.ObligationFilter) ([]ledger.Obligation, error) {
	args := m.Called(ctx, counterpartyID, filter)
	return args.Get(0).([]ledger.Obligation), args.Error(1)
}

func (m *MockObligationRepository) FindOpen(ctx context.Context) ([]ledger.Obligation, error) {
	args := m.Called(ctx)
	return args.Get(0).([]ledger.Obligation), args.Error(1)
}

func (m *MockObligationRepository) FindRecurringDue(ctx context.Context, asOf time.Time) ([]ledger.Obligation, error) {
	args := m.Called(ctx, asOf)
	return args.Get(0).([]ledger.Obligation), args.Error(1)
}

func (m *MockObligationRepository) Save(ctx context.Context, obligation *ledger.Obligation) error {
	args := m.Called(ctx, obligation)
	return args.Error(0)
}

func (m *MockObligationRepository) SaveWithLock(ctx context.Context, obligation *ledger.Obligation) error {
	args := m.Called(ctx, obligation)
	return args.Error(0)
}

func (m *MockObligationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockObligationRepository) Count(ctx context.Context, filter ledger.ObligationFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockObligationRepository) CountOverdue(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockObligationRepository) SumDueInPeriod(ctx context.Context, from, to time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, from, to)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockObligationRepository) SumSettledInPeriod(ctx context.Context, from, to time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, from, to)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockObligationRepository) SumOutstanding(ctx context.Context) (decimal.Decimal, error) {
	args := m.Called(ctx)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockObligationRepository) GenerateSequenceNumber(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

var _ ledger.ObligationRepository = (*MockObligationRepository)(nil)

// fakeCache is an in-process KeyValueCache for service tests. TTLs are
// recorded but never enforced; tests drive expiry explicitly by removal.
type fakeCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	ttls    map[string]time.Duration
	sets    int
	gets    int
	removes int
}

func newFakeCache() *fakeCache {
	return &fakeCache{
		entries: make(map[string][]byte),
		ttls:    make(map[string]time.Duration),
	}
}

func (c *fakeCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	return c.entries[key], nil
}

func (c *fakeCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets++
	c.entries[key] = value
	c.ttls[key] = ttl
	return nil
}

func (c *fakeCache) Remove(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.removes++
	delete(c.entries, key)
	delete(c.ttls, key)
	return nil
}

func (c *fakeCache) RemoveByPrefix(_ context.Context, prefix string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.entries {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			delete(c.entries, key)
			delete(c.ttls, key)
		}
	}
	return nil
}

func (c *fakeCache) has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[key]
	return ok
}

var _ shared.KeyValueCache = (*fakeCache)(nil)

// stubLookup resolves counterparty names from a fixed map
type stubLookup struct {
	names map[uuid.UUID]string
}

func (l *stubLookup) GetNameByID(_ context.Context, id uuid.UUID) (string, error) {
	name, ok := l.names[id]
	if !ok {
		return "", shared.ErrNotFound
	}
	return name, nil
}

// MockEventPublisher is a mock implementation of shared.EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

var _ shared.EventPublisher = (*MockEventPublisher)(nil)
