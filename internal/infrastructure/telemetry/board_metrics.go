// Package telemetry provides OpenTelemetry integration for metrics collection.
package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// BoardMetrics tracks board activity: column management, card movement,
// webhook intake and order synchronization.
type BoardMetrics struct {
	meter  metric.Meter
	logger *zap.Logger

	columnCreatedTotal *Counter
	columnDeletedTotal *Counter
	cardMovedTotal     *Counter
	cardReorderedTotal *Counter
	webhookTotal       *Counter
	syncOrdersTotal    *Counter

	boardAssemblyDuration *Histogram
}

// Attribute keys for board metrics
var (
	AttrOwnerKind      = attribute.Key("owner_kind")
	AttrWebhookTopic   = attribute.Key("webhook_topic")
	AttrWebhookOutcome = attribute.Key("webhook_outcome")
	AttrSyncOutcome    = attribute.Key("sync_outcome")
)

// Webhook outcomes
const (
	WebhookOutcomeProcessed = "processed"
	WebhookOutcomeDuplicate = "duplicate"
	WebhookOutcomeDropped   = "dropped"
	WebhookOutcomeRejected  = "rejected"
)

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewBoardMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics-related error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}

// NewBoardMetrics creates the board metric instruments on the given meter.
func NewBoardMetrics(meter metric.Meter, logger *zap.Logger) (*BoardMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	bm := &BoardMetrics{
		meter:  meter,
		logger: logger,
	}

	var err error

	bm.columnCreatedTotal, err = NewCounter(
		meter,
		"orderboard_column_created_total",
		"Total number of board columns created",
		"{columns}",
	)
	if err != nil {
		return nil, err
	}

	bm.columnDeletedTotal, err = NewCounter(
		meter,
		"orderboard_column_deleted_total",
		"Total number of board columns deleted",
		"{columns}",
	)
	if err != nil {
		return nil, err
	}

	bm.cardMovedTotal, err = NewCounter(
		meter,
		"orderboard_card_moved_total",
		"Total number of order cards moved between columns",
		"{cards}",
	)
	if err != nil {
		return nil, err
	}

	bm.cardReorderedTotal, err = NewCounter(
		meter,
		"orderboard_card_reordered_total",
		"Total number of column reindex operations",
		"{operations}",
	)
	if err != nil {
		return nil, err
	}

	bm.webhookTotal, err = NewCounter(
		meter,
		"orderboard_webhook_total",
		"Total number of webhooks received, by topic and outcome",
		"{webhooks}",
	)
	if err != nil {
		return nil, err
	}

	bm.syncOrdersTotal, err = NewCounter(
		meter,
		"orderboard_sync_orders_total",
		"Total number of orders written during manual sync",
		"{orders}",
	)
	if err != nil {
		return nil, err
	}

	bm.boardAssemblyDuration, err = NewHistogram(meter, HistogramOpts{
		Name:        "orderboard_board_assembly_duration_seconds",
		Description: "Time spent assembling the full board response",
		Unit:        "s",
		Boundaries:  []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
	})
	if err != nil {
		return nil, err
	}

	return bm, nil
}

// RecordColumnCreated increments the created-columns counter.
func (bm *BoardMetrics) RecordColumnCreated(ctx context.Context, ownerKind string) {
	bm.columnCreatedTotal.Inc(ctx, AttrOwnerKind.String(ownerKind))
}

// RecordColumnDeleted increments the deleted-columns counter.
func (bm *BoardMetrics) RecordColumnDeleted(ctx context.Context, ownerKind string) {
	bm.columnDeletedTotal.Inc(ctx, AttrOwnerKind.String(ownerKind))
}

// RecordCardMoved increments the moved-cards counter.
func (bm *BoardMetrics) RecordCardMoved(ctx context.Context, ownerKind string) {
	bm.cardMovedTotal.Inc(ctx, AttrOwnerKind.String(ownerKind))
}

// RecordCardsReordered increments the reindex counter.
func (bm *BoardMetrics) RecordCardsReordered(ctx context.Context, ownerKind string) {
	bm.cardReorderedTotal.Inc(ctx, AttrOwnerKind.String(ownerKind))
}

// RecordWebhook counts one webhook delivery with its topic and outcome.
func (bm *BoardMetrics) RecordWebhook(ctx context.Context, topic, outcome string) {
	bm.webhookTotal.Inc(ctx,
		AttrWebhookTopic.String(topic),
		AttrWebhookOutcome.String(outcome),
	)
}

// RecordSyncOrders counts orders created and backfilled by one sync run.
func (bm *BoardMetrics) RecordSyncOrders(ctx context.Context, created, backfilled int) {
	if created > 0 {
		bm.syncOrdersTotal.Add(ctx, int64(created), AttrSyncOutcome.String("created"))
	}
	if backfilled > 0 {
		bm.syncOrdersTotal.Add(ctx, int64(backfilled), AttrSyncOutcome.String("backfilled"))
	}
}

// RecordBoardAssembly records how long one board read took.
func (bm *BoardMetrics) RecordBoardAssembly(ctx context.Context, d time.Duration) {
	bm.boardAssemblyDuration.RecordDuration(ctx, d)
}
