package shopify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	appboard "github.com/orderboard/backend/internal/application/board"
	"github.com/orderboard/backend/internal/domain/board"
	"github.com/orderboard/backend/internal/infrastructure/config"
	"github.com/orderboard/backend/internal/infrastructure/telemetry"
)

const (
	// maxResponseSize limits the response body size to prevent memory exhaustion
	maxResponseSize = 10 * 1024 * 1024 // 10MB

	orderFields = "id,name,customer,total_price,created_at"
)

// Errors for the Shopify client
var (
	ErrNoShopDomain       = errors.New("shopify: owner has no shop domain")
	ErrRequestFailed      = errors.New("shopify: request failed")
	ErrShopifyUnreachable = errors.New("shopify: API unreachable")
)

// Client fetches orders from the Shopify Admin REST API. It implements
// the board's order feed.
type Client struct {
	cfg        config.ShopifyConfig
	httpClient *http.Client
	logger     *zap.Logger

	// baseURL overrides the https://{shop-domain} base, used in tests
	baseURL string
}

// ClientOption is a functional option for configuring the client
type ClientOption func(*Client)

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithBaseURL pins every request to a fixed base URL instead of the
// owner's shop domain
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimSuffix(baseURL, "/")
	}
}

// NewClient creates a new Shopify Admin API client
func NewClient(cfg config.ShopifyConfig, logger *zap.Logger, opts ...ClientOption) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ appboard.OrderFeed = (*Client)(nil)

// FetchOrders returns the most recent orders of the owner's shop, any
// fulfillment status, newest first. Only display fields are requested.
func (c *Client) FetchOrders(ctx context.Context, owner board.OwnerRef) ([]appboard.ExternalOrder, error) {
	if owner.Kind != board.OwnerKindShop || owner.ID == "" {
		return nil, ErrNoShopDomain
	}

	ctx, span := telemetry.StartSpan(ctx, "shopify.fetch_orders",
		telemetry.WithSpanKind(trace.SpanKindClient),
		telemetry.WithAttribute(telemetry.SpanAttrOwnerID, owner.ID))
	defer span.End()

	query := url.Values{}
	query.Set("status", "any")
	query.Set("limit", strconv.Itoa(c.cfg.OrderLimit))
	query.Set("fields", orderFields)
	rawURL := fmt.Sprintf("%s/admin/api/%s/orders.json?%s",
		c.shopBaseURL(owner.ID), c.cfg.APIVersion, query.Encode())

	body, err := c.get(ctx, rawURL)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	var parsed ordersResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		err = fmt.Errorf("shopify: failed to decode orders response: %w", err)
		telemetry.RecordError(span, err)
		return nil, err
	}

	orders := make([]appboard.ExternalOrder, 0, len(parsed.Orders))
	for _, o := range parsed.Orders {
		orders = append(orders, toExternalOrder(o))
	}
	telemetry.SetAttribute(span, telemetry.SpanAttrOrderCount, len(orders))
	return orders, nil
}

func (c *Client) shopBaseURL(shopDomain string) string {
	if c.baseURL != "" {
		return c.baseURL
	}
	return "https://" + shopDomain
}

// get performs an authenticated GET with bounded retries. Server errors
// and rate limiting are retried, client errors are not.
func (c *Client) get(ctx context.Context, rawURL string) ([]byte, error) {
	attempts := c.cfg.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt-1) * 200 * time.Millisecond):
			}
		}

		body, retry, err := c.doGet(ctx, rawURL)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !retry {
			return nil, err
		}

		c.logger.Warn("shopify request failed, retrying",
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
	}
	return nil, lastErr
}

func (c *Client) doGet(ctx context.Context, rawURL string) (body []byte, retry bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, false, fmt.Errorf("shopify: failed to create request: %w", err)
	}
	req.Header.Set("X-Shopify-Access-Token", c.cfg.AdminToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, true, fmt.Errorf("%w: %v", ErrShopifyUnreachable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, true, fmt.Errorf("shopify: failed to read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, true, fmt.Errorf("%w: HTTP %d", ErrRequestFailed, resp.StatusCode)
	case resp.StatusCode >= 400:
		var apiErr errorResponse
		_ = json.Unmarshal(raw, &apiErr)
		return nil, false, fmt.Errorf("%w: HTTP %d: %v", ErrRequestFailed, resp.StatusCode, apiErr.Errors)
	}

	return raw, false, nil
}

// toExternalOrder maps one API row to the feed representation
func toExternalOrder(o orderPayload) appboard.ExternalOrder {
	order := appboard.ExternalOrder{
		ID:           strconv.FormatInt(o.ID, 10),
		Number:       o.Name,
		CustomerName: customerDisplayName(o.Customer),
	}
	if o.TotalPrice != "" {
		if total, err := decimal.NewFromString(o.TotalPrice); err == nil {
			order.TotalPrice = total
		}
	}
	if o.CreatedAt != "" {
		if createdAt, err := time.Parse(time.RFC3339, o.CreatedAt); err == nil {
			order.CreatedAt = createdAt
		}
	}
	return order
}

// customerDisplayName joins first and last name, falling back to the
// customer's email when both are blank.
func customerDisplayName(c *customerPayload) string {
	if c == nil {
		return ""
	}
	name := strings.TrimSpace(strings.TrimSpace(c.FirstName) + " " + strings.TrimSpace(c.LastName))
	if name != "" {
		return name
	}
	return strings.TrimSpace(c.Email)
}
