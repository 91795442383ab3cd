package handler

import (
	"context"
	"encoding/json"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	webhookapp "github.com/orderboard/backend/internal/application/webhook"
	"github.com/orderboard/backend/internal/infrastructure/shopify"
	"github.com/orderboard/backend/internal/infrastructure/telemetry"
)

// WebhookHandler receives Shopify order webhooks. Deliveries are
// authenticated by HMAC over the raw body, never by bearer token.
type WebhookHandler struct {
	BaseHandler
	service  *webhookapp.OrderWebhookService
	verifier *shopify.WebhookVerifier
	metrics  *telemetry.BoardMetrics
	logger   *zap.Logger
}

// NewWebhookHandler creates a new WebhookHandler. metrics may be nil.
func NewWebhookHandler(
	service *webhookapp.OrderWebhookService,
	verifier *shopify.WebhookVerifier,
	metrics *telemetry.BoardMetrics,
	logger *zap.Logger,
) *WebhookHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebhookHandler{
		service:  service,
		verifier: verifier,
		metrics:  metrics,
		logger:   logger,
	}
}

// orderWebhookPayload is the slice of the Shopify order payload the
// board cares about. The id arrives numeric on REST topics and as a GID
// on newer API versions.
type orderWebhookPayload struct {
	ID                json.RawMessage `json:"id"`
	AdminGraphQLAPIID string          `json:"admin_graphql_api_id"`
	Name              string          `json:"name"`
}

// rawOrderID returns the id field as a string, whether it arrived as a
// JSON number or a quoted GID.
func (p orderWebhookPayload) rawOrderID() string {
	if len(p.ID) == 0 {
		return p.AdminGraphQLAPIID
	}
	var s string
	if err := json.Unmarshal(p.ID, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(p.ID, &n); err == nil {
		return n.String()
	}
	return p.AdminGraphQLAPIID
}

// OrdersCreate handles the orders/create topic. The new order's card is
// placed in the system column.
func (h *WebhookHandler) OrdersCreate(c *gin.Context) {
	h.handle(c, "orders/create", h.service.HandleOrderCreated)
}

// OrdersUpdated handles the orders/updated topic. Only the order number
// is backfilled, and only when a card already exists.
func (h *WebhookHandler) OrdersUpdated(c *gin.Context) {
	h.handle(c, "orders/updated", h.service.HandleOrderUpdated)
}

func (h *WebhookHandler) handle(c *gin.Context, topic string, apply func(context.Context, webhookapp.OrderEvent) error) {
	body, err := c.GetRawData()
	if err != nil {
		h.recordOutcome(c, topic, "malformed")
		h.BadRequest(c, "Unable to read request body")
		return
	}

	signature := c.GetHeader(shopify.HeaderHMAC)
	if !h.verifier.Verify(body, signature) {
		h.recordOutcome(c, topic, "unauthorized")
		h.logger.Warn("webhook signature rejected",
			zap.String("topic", topic),
			zap.String("webhook_id", c.GetHeader(shopify.HeaderWebhookID)),
		)
		h.Unauthorized(c, "Invalid webhook signature")
		return
	}

	var payload orderWebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		h.recordOutcome(c, topic, "malformed")
		h.BadRequest(c, "Invalid webhook payload")
		return
	}

	event := webhookapp.OrderEvent{
		EventID:     c.GetHeader(shopify.HeaderWebhookID),
		ShopDomain:  c.GetHeader(shopify.HeaderShopDomain),
		OrderID:     payload.rawOrderID(),
		OrderNumber: payload.Name,
	}

	if err := apply(c.Request.Context(), event); err != nil {
		h.recordOutcome(c, topic, "error")
		h.HandleError(c, err)
		return
	}

	h.recordOutcome(c, topic, "ok")
	h.NoContent(c)
}

func (h *WebhookHandler) recordOutcome(c *gin.Context, topic, outcome string) {
	if h.metrics != nil {
		h.metrics.RecordWebhook(c.Request.Context(), topic, outcome)
	}
}
