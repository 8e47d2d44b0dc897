package metrics

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type Metrics struct {
	ordersPlacedTotal      metric.Int64Counter
	orderPlacementDuration metric.Float64Histogram
	stockTransactionsTotal metric.Int64Counter
	couponRedemptionsTotal metric.Int64Counter
}

func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}

	var err error

	m.ordersPlacedTotal, err = meter.Int64Counter(
		"orders_placed_total",
		metric.WithDescription("Total number of order placements"),
		metric.WithUnit("{order}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create orders_placed_total counter: %w", err)
	}

	m.orderPlacementDuration, err = meter.Float64Histogram(
		"order_placement_duration_seconds",
		metric.WithDescription("Duration of order placement operations"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("create order_placement_duration histogram: %w", err)
	}

	m.stockTransactionsTotal, err = meter.Int64Counter(
		"stock_transactions_total",
		metric.WithDescription("Total number of stock ledger entries recorded"),
		metric.WithUnit("{transaction}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create stock_transactions_total counter: %w", err)
	}

	m.couponRedemptionsTotal, err = meter.Int64Counter(
		"coupon_redemptions_total",
		metric.WithDescription("Total number of coupons redeemed at checkout"),
		metric.WithUnit("{coupon}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create coupon_redemptions_total counter: %w", err)
	}

	return m, nil
}

func (m *Metrics) RecordOrderPlaced(ctx context.Context, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	m.ordersPlacedTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("status", status),
	))
}

func (m *Metrics) RecordPlacementDuration(ctx context.Context, durationSeconds float64) {
	m.orderPlacementDuration.Record(ctx, durationSeconds)
}

func (m *Metrics) RecordStockTransaction(ctx context.Context, txType string) {
	m.stockTransactionsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("type", txType),
	))
}

func (m *Metrics) RecordCouponRedemption(ctx context.Context) {
	m.couponRedemptionsTotal.Add(ctx, 1)
}
