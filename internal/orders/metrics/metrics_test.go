package metrics

import (
	"context"
	"testing"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newTestMetrics(t *testing.T) (*Metrics, *sdkmetric.ManualReader) {
	t.Helper()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	meter := mp.Meter("test")

	metrics, err := NewMetrics(meter)
	if err != nil {
		t.Fatalf("NewMetrics() failed: %v", err)
	}
	return metrics, reader
}

func findMetric(rm metricdata.ResourceMetrics, name string) (metricdata.Metrics, bool) {
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name == name {
				return m, true
			}
		}
	}
	return metricdata.Metrics{}, false
}

func TestInitializeMetrics(t *testing.T) {
	t.Run("initializes all metric instruments successfully", func(t *testing.T) {
		metrics, _ := newTestMetrics(t)

		if metrics.ordersPlacedTotal == nil {
			t.Error("ordersPlacedTotal is nil")
		}
		if metrics.orderPlacementDuration == nil {
			t.Error("orderPlacementDuration is nil")
		}
		if metrics.stockTransactionsTotal == nil {
			t.Error("stockTransactionsTotal is nil")
		}
		if metrics.couponRedemptionsTotal == nil {
			t.Error("couponRedemptionsTotal is nil")
		}
	})
}

func TestRecordOrderPlaced(t *testing.T) {
	t.Run("records placement count with success status", func(t *testing.T) {
		metrics, reader := newTestMetrics(t)
		ctx := context.Background()

		metrics.RecordOrderPlaced(ctx, true)
		metrics.RecordOrderPlaced(ctx, false)

		var rm metricdata.ResourceMetrics
		if err := reader.Collect(ctx, &rm); err != nil {
			t.Fatalf("Failed to collect metrics: %v", err)
		}

		m, found := findMetric(rm, "orders_placed_total")
		if !found {
			t.Fatal("orders_placed_total metric not found")
		}
		sum, ok := m.Data.(metricdata.Sum[int64])
		if !ok {
			t.Fatal("Expected Sum[int64] data type")
		}
		if len(sum.DataPoints) != 2 {
			t.Errorf("Expected 2 data points, got %d", len(sum.DataPoints))
		}
	})
}

func TestRecordPlacementDuration(t *testing.T) {
	t.Run("records placement duration", func(t *testing.T) {
		metrics, reader := newTestMetrics(t)
		ctx := context.Background()

		metrics.RecordPlacementDuration(ctx, 1.5)
		metrics.RecordPlacementDuration(ctx, 2.3)

		var rm metricdata.ResourceMetrics
		if err := reader.Collect(ctx, &rm); err != nil {
			t.Fatalf("Failed to collect metrics: %v", err)
		}

		m, found := findMetric(rm, "order_placement_duration_seconds")
		if !found {
			t.Fatal("order_placement_duration_seconds metric not found")
		}
		histogram, ok := m.Data.(metricdata.Histogram[float64])
		if !ok {
			t.Fatal("Expected Histogram[float64] data type")
		}
		if len(histogram.DataPoints) != 1 {
			t.Errorf("Expected 1 data point, got %d", len(histogram.DataPoints))
		}
		if histogram.DataPoints[0].Count != 2 {
			t.Errorf("Expected count=2, got %d", histogram.DataPoints[0].Count)
		}
	})
}

func TestRecordStockTransaction(t *testing.T) {
	t.Run("records transaction count per type", func(t *testing.T) {
		metrics, reader := newTestMetrics(t)
		ctx := context.Background()

		metrics.RecordStockTransaction(ctx, "IN")
		metrics.RecordStockTransaction(ctx, "OUT")
		metrics.RecordStockTransaction(ctx, "OUT")

		var rm metricdata.ResourceMetrics
		if err := reader.Collect(ctx, &rm); err != nil {
			t.Fatalf("Failed to collect metrics: %v", err)
		}

		m, found := findMetric(rm, "stock_transactions_total")
		if !found {
			t.Fatal("stock_transactions_total metric not found")
		}
		sum, ok := m.Data.(metricdata.Sum[int64])
		if !ok {
			t.Fatal("Expected Sum[int64] data type")
		}
		if len(sum.DataPoints) != 2 {
			t.Errorf("Expected 2 data points (one per type), got %d", len(sum.DataPoints))
		}
	})
}

func TestRecordCouponRedemption(t *testing.T) {
	t.Run("records redemption count", func(t *testing.T) {
		metrics, reader := newTestMetrics(t)
		ctx := context.Background()

		metrics.RecordCouponRedemption(ctx)
		metrics.RecordCouponRedemption(ctx)

		var rm metricdata.ResourceMetrics
		if err := reader.Collect(ctx, &rm); err != nil {
			t.Fatalf("Failed to collect metrics: %v", err)
		}

		m, found := findMetric(rm, "coupon_redemptions_total")
		if !found {
			t.Fatal("coupon_redemptions_total metric not found")
		}
		sum, ok := m.Data.(metricdata.Sum[int64])
		if !ok {
			t.Fatal("Expected Sum[int64] data type")
		}
		if len(sum.DataPoints) != 1 {
			t.Errorf("Expected 1 data point, got %d", len(sum.DataPoints))
		}
		if sum.DataPoints[0].Value != 2 {
			t.Errorf("Expected value=2, got %d", sum.DataPoints[0].Value)
		}
	})
}
