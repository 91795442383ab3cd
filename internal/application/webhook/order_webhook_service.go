package webhook

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/orderboard/backend/internal/domain/board"
	"github.com/orderboard/backend/internal/domain/shared"
)

// OrderEvent is the distilled payload of a Shopify order webhook.
type OrderEvent struct {
	// EventID is the delivery id from X-Shopify-Webhook-Id, used for
	// duplicate suppression. Empty disables the check for this event.
	EventID string
	// ShopDomain identifies the owning shop. Empty makes the event a no-op.
	ShopDomain string
	// OrderID is the raw order id, numeric or GID form.
	OrderID string
	// OrderNumber is the display name such as #1001.
	OrderNumber string
}

// OrderWebhookService applies order webhooks to the board. Deliveries
// are deduplicated through the idempotency store and unknown shops are
// silently ignored, mirroring how the platform retries webhooks.
type OrderWebhookService struct {
	cardRepo    board.CardRepository
	idempotency shared.IdempotencyStore
	idemCfg     shared.IdempotencyConfig
	logger      *zap.Logger
}

// NewOrderWebhookService creates a new OrderWebhookService
func NewOrderWebhookService(
	cardRepo board.CardRepository,
	idempotency shared.IdempotencyStore,
	idemCfg shared.IdempotencyConfig,
	logger *zap.Logger,
) *OrderWebhookService {
	return &OrderWebhookService{
		cardRepo:    cardRepo,
		idempotency: idempotency,
		idemCfg:     idemCfg,
		logger:      logger,
	}
}

// HandleOrderCreated files the new order into the system column. An
// existing card for the same order is moved back there with its number
// refreshed.
func (s *OrderWebhookService) HandleOrderCreated(ctx context.Context, event OrderEvent) error {
	owner, orderID, ok, err := s.admit(ctx, "orders/create", event)
	if err != nil || !ok {
		return err
	}

	card, err := s.cardRepo.FindByOrderID(ctx, owner, orderID)
	if err == nil {
		card.ColumnCode = board.SystemColumnCode
		card.SetOrderNumber(event.OrderNumber)
		return s.cardRepo.Upsert(ctx, card)
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return err
	}

	return s.cardRepo.Upsert(ctx, board.NewCard(owner, orderID, event.OrderNumber, board.SystemColumnCode, 0))
}

// HandleOrderUpdated refreshes the display number of an existing card.
// Orders the board has never seen are ignored.
func (s *OrderWebhookService) HandleOrderUpdated(ctx context.Context, event OrderEvent) error {
	owner, orderID, ok, err := s.admit(ctx, "orders/updated", event)
	if err != nil || !ok {
		return err
	}
	if event.OrderNumber == "" {
		return nil
	}
	return s.cardRepo.UpdateOrderNumber(ctx, owner, orderID, event.OrderNumber)
}

// admit resolves the owner, normalizes the order id and runs the
// duplicate check. ok is false when the event should be dropped.
func (s *OrderWebhookService) admit(ctx context.Context, topic string, event OrderEvent) (board.OwnerRef, string, bool, error) {
	if event.ShopDomain == "" {
		s.logger.Debug("webhook without shop domain dropped", zap.String("topic", topic))
		return board.OwnerRef{}, "", false, nil
	}
	owner, err := board.NewShopOwner(event.ShopDomain)
	if err != nil {
		return board.OwnerRef{}, "", false, nil
	}

	orderID := board.ExtractOrderID(event.OrderID)
	if orderID == "" {
		return board.OwnerRef{}, "", false, nil
	}

	if s.idemCfg.Enabled && event.EventID != "" {
		fresh, err := s.idempotency.MarkProcessed(ctx, event.EventID, s.idemCfg.TTL)
		if err != nil {
			// store errors do not block processing
			s.logger.Warn("idempotency check failed, processing webhook",
				zap.String("topic", topic),
				zap.String("event_id", event.EventID),
				zap.Error(err))
		} else if !fresh {
			s.logger.Debug("duplicate webhook dropped",
				zap.String("topic", topic),
				zap.String("event_id", event.EventID))
			return board.OwnerRef{}, "", false, nil
		}
	}

	return owner, orderID, true, nil
}
