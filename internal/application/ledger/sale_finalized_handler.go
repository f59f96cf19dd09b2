package ledger

import (
	"context"
	"fmt"

	"github.com/backoffice/backend/internal/domain/sales"
	"github.com/backoffice/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// SaleFinalizedHandler settles the receivable behind a cash-like sale the
// moment the sale is finalized. On-credit sales stay open until the
// customer actually pays.
type SaleFinalizedHandler struct {
	receivables *ObligationService
	logger      *zap.Logger
}

// NewSaleFinalizedHandler creates a new handler for sale finalized events
func NewSaleFinalizedHandler(receivables *ObligationService, logger *zap.Logger) *SaleFinalizedHandler {
	return &SaleFinalizedHandler{
		receivables: receivables,
		logger:      logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *SaleFinalizedHandler) EventTypes() []string {
	return []string{sales.EventTypeSaleFinalized}
}

// Handle processes a SaleFinalizedEvent by auto-settling the linked
// receivable in full when the sale was paid on the spot
func (h *SaleFinalizedHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	finalizedEvent, ok := event.(*sales.SaleFinalizedEvent)
	if !ok {
		h.logger.Error("unexpected event type",
			zap.String("expected", sales.EventTypeSaleFinalized),
			zap.String("actual", event.EventType()),
		)
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			sales.EventTypeSaleFinalized, event.EventType())
	}

	if finalizedEvent.OnCredit {
		h.logger.Info("sale is on credit, receivable stays open",
			zap.String("sale_id", finalizedEvent.SaleID.String()),
			zap.String("sale_number", finalizedEvent.SaleNumber),
		)
		return nil
	}

	if err := h.receivables.SettleSourceInFull(ctx, finalizedEvent.SaleID,
		finalizedEvent.PaymentMethod, finalizedEvent.FinalizedAt); err != nil {
		h.logger.Error("failed to auto-settle receivable for finalized sale",
			zap.String("sale_id", finalizedEvent.SaleID.String()),
			zap.String("sale_number", finalizedEvent.SaleNumber),
			zap.Error(err),
		)
		return fmt.Errorf("failed to auto-settle receivable: %w", err)
	}

	h.logger.Info("receivable auto-settled for finalized sale",
		zap.String("sale_id", finalizedEvent.SaleID.String()),
		zap.String("sale_number", finalizedEvent.SaleNumber),
		zap.String("payment_method", string(finalizedEvent.PaymentMethod)),
	)

	return nil
}

// Ensure SaleFinalizedHandler implements shared.EventHandler
var _ shared.EventHandler = (*SaleFinalizedHandler)(nil)
