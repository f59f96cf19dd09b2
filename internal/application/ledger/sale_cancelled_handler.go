package ledger

import (
	"context"
	"fmt"

	"github.com/backoffice/backend/internal/domain/sales"
	"github.com/backoffice/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// SaleCancelledHandler cancels the receivable behind a cancelled sale.
// A partially settled receivable is still cancelled; money already
// received is not reversed here and must be refunded out of band.
type SaleCancelledHandler struct {
	receivables *ObligationService
	logger      *zap.Logger
}

// NewSaleCancelledHandler creates a new handler for sale cancelled events
func NewSaleCancelledHandler(receivables *ObligationService, logger *zap.Logger) *SaleCancelledHandler {
	return &SaleCancelledHandler{
		receivables: receivables,
		logger:      logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *SaleCancelledHandler) EventTypes() []string {
	return []string{sales.EventTypeSaleCancelled}
}

// Handle processes a SaleCancelledEvent by cancelling the linked receivable
func (h *SaleCancelledHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	cancelledEvent, ok := event.(*sales.SaleCancelledEvent)
	if !ok {
		h.logger.Error("unexpected event type",
			zap.String("expected", sales.EventTypeSaleCancelled),
			zap.String("actual", event.EventType()),
		)
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			sales.EventTypeSaleCancelled, event.EventType())
	}

	if err := h.receivables.CancelBySource(ctx, cancelledEvent.SaleID); err != nil {
		h.logger.Error("failed to cancel receivable for cancelled sale",
			zap.String("sale_id", cancelledEvent.SaleID.String()),
			zap.String("sale_number", cancelledEvent.SaleNumber),
			zap.Error(err),
		)
		return fmt.Errorf("failed to cancel receivable: %w", err)
	}

	h.logger.Info("receivable cancelled for cancelled sale",
		zap.String("sale_id", cancelledEvent.SaleID.String()),
		zap.String("sale_number", cancelledEvent.SaleNumber),
	)

	return nil
}

// Ensure SaleCancelledHandler implements shared.EventHandler
var _ shared.EventHandler = (*SaleCancelledHandler)(nil)
