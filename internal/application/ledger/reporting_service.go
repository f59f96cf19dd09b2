package ledger

import (
	"context"
	"time"

	"github.com/backoffice/backend/internal/domain/ledger"
	"github.com/backoffice/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ReportingService answers the cash-position questions a small business
// asks of its ledger: what is due, what came in, what is late. It reads
// both polarities through their repositories and never mutates anything.
type ReportingService struct {
	payableRepo    ledger.ObligationRepository
	receivableRepo ledger.ObligationRepository
	logger         *zap.Logger
}

// NewReportingService creates a new ReportingService
func NewReportingService(
	payableRepo ledger.ObligationRepository,
	receivableRepo ledger.ObligationRepository,
	logger *zap.Logger,
) *ReportingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportingService{
		payableRepo:    payableRepo,
		receivableRepo: receivableRepo,
		logger:         logger,
	}
}

// PolaritySummary aggregates one side of the ledger over a period
type PolaritySummary struct {
	TotalDueInPeriod     decimal.Decimal `json:"total_due_in_period"`
	TotalSettledInPeriod decimal.Decimal `json:"total_settled_in_period"`
	TotalOutstanding     decimal.Decimal `json:"total_outstanding"`
	OverdueCount         int64           `json:"overdue_count"`
}

// LedgerSummary is the combined period view over both polarities
type LedgerSummary struct {
	From        time.Time       `json:"from"`
	To          time.Time       `json:"to"`
	Payables    PolaritySummary `json:"payables"`
	Receivables PolaritySummary `json:"receivables"`
	NetPosition decimal.Decimal `json:"net_position"` // receivables outstanding - payables outstanding
}

// GetPeriodSummary aggregates both polarities over [from, to]
func (s *ReportingService) GetPeriodSummary(ctx context.Context, from, to time.Time) (*LedgerSummary, error) {
	if to.Before(from) {
		return nil, shared.NewDomainError("INVALID_PERIOD", "Period end precedes period start")
	}

	payables, err := s.summarize(ctx, s.payableRepo, from, to)
	if err != nil {
		return nil, err
	}
	receivables, err := s.summarize(ctx, s.receivableRepo, from, to)
	if err != nil {
		return nil, err
	}

	return &LedgerSummary{
		From:        from,
		To:          to,
		Payables:    *payables,
		Receivables: *receivables,
		NetPosition: receivables.TotalOutstanding.Sub(payables.TotalOutstanding),
	}, nil
}

// GetPayableSummary aggregates the payable side over [from, to]
func (s *ReportingService) GetPayableSummary(ctx context.Context, from, to time.Time) (*PolaritySummary, error) {
	if to.Before(from) {
		return nil, shared.NewDomainError("INVALID_PERIOD", "Period end precedes period start")
	}
	return s.summarize(ctx, s.payableRepo, from, to)
}

// GetReceivableSummary aggregates the receivable side over [from, to]
func (s *ReportingService) GetReceivableSummary(ctx context.Context, from, to time.Time) (*PolaritySummary, error) {
	if to.Before(from) {
		return nil, shared.NewDomainError("INVALID_PERIOD", "Period end precedes period start")
	}
	return s.summarize(ctx, s.receivableRepo, from, to)
}

func (s *ReportingService) summarize(ctx context.Context, repo ledger.ObligationRepository, from, to time.Time) (*PolaritySummary, error) {
	due, err := repo.SumDueInPeriod(ctx, from, to)
	if err != nil {
		return nil, err
	}
	settled, err := repo.SumSettledInPeriod(ctx, from, to)
	if err != nil {
		return nil, err
	}
	outstanding, err := repo.SumOutstanding(ctx)
	if err != nil {
		return nil, err
	}
	overdueCount, err := repo.CountOverdue(ctx)
	if err != nil {
		return nil, err
	}

	return &PolaritySummary{
		TotalDueInPeriod:     due,
		TotalSettledInPeriod: settled,
		TotalOutstanding:     outstanding,
		OverdueCount:         overdueCount,
	}, nil
}
