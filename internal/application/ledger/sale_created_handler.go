package ledger

import (
	"context"
	"fmt"

	"github.com/backoffice/backend/internal/domain/sales"
	"github.com/backoffice/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// SaleCreatedHandler spawns the receivable behind an on-credit sale as soon
// as the sale is registered
type SaleCreatedHandler struct {
	receivables *ObligationService
	logger      *zap.Logger
}

// NewSaleCreatedHandler creates a new handler for sale created events
func NewSaleCreatedHandler(receivables *ObligationService, logger *zap.Logger) *SaleCreatedHandler {
	return &SaleCreatedHandler{
		receivables: receivables,
		logger:      logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *SaleCreatedHandler) EventTypes() []string {
	return []string{sales.EventTypeSaleCreated}
}

// Handle processes a SaleCreatedEvent by creating the linked receivable.
// Creation is idempotent on the sale ID: re-delivered events are no-ops.
func (h *SaleCreatedHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	createdEvent, ok := event.(*sales.SaleCreatedEvent)
	if !ok {
		h.logger.Error("unexpected event type",
			zap.String("expected", sales.EventTypeSaleCreated),
			zap.String("actual", event.EventType()),
		)
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			sales.EventTypeSaleCreated, event.EventType())
	}

	h.logger.Info("processing sale created event for receivable creation",
		zap.String("sale_id", createdEvent.SaleID.String()),
		zap.String("sale_number", createdEvent.SaleNumber),
		zap.String("customer_id", createdEvent.CustomerID.String()),
		zap.Bool("on_credit", createdEvent.OnCredit),
	)

	dueDate := createdEvent.IssueDate
	if createdEvent.OnCredit {
		if createdEvent.DueDate != nil {
			dueDate = *createdEvent.DueDate
		} else {
			dueDate = createdEvent.IssueDate.AddDate(0, 0, sales.DefaultCreditTermDays)
		}
	}

	response, err := h.receivables.SpawnFromSource(ctx, SpawnFromSourceInput{
		SourceDocumentID: createdEvent.SaleID,
		Description:      fmt.Sprintf("Sale %s", createdEvent.SaleNumber),
		CounterpartyID:   createdEvent.CustomerID,
		CounterpartyName: createdEvent.CustomerName,
		Amount:           createdEvent.Total,
		IssueDate:        createdEvent.IssueDate,
		DueDate:          dueDate,
	})
	if err != nil {
		h.logger.Error("failed to create receivable for sale",
			zap.String("sale_id", createdEvent.SaleID.String()),
			zap.String("sale_number", createdEvent.SaleNumber),
			zap.Error(err),
		)
		return fmt.Errorf("failed to create receivable for sale: %w", err)
	}

	h.logger.Info("receivable created for sale",
		zap.String("receivable_id", response.ID.String()),
		zap.String("sequence_number", response.SequenceNumber),
		zap.String("sale_number", createdEvent.SaleNumber),
		zap.Time("due_date", dueDate),
	)

	return nil
}

// Ensure SaleCreatedHandler implements shared.EventHandler
var _ shared.EventHandler = (*SaleCreatedHandler)(nil)
