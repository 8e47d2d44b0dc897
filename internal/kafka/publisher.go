package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/shopworks/fulfillment/internal/orders/domain"
)

const (
	TopicOrderPlaced        = "orders.placed"
	TopicOrderStatusChanged = "orders.status-changed"
)

// OrderPlacedEvent is the payload published when checkout commits.
type OrderPlacedEvent struct {
	OrderID     string    `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	UserID      string    `json:"user_id"`
	Total       int64     `json:"total"`
	PlacedAt    time.Time `json:"placed_at"`
}

// StatusChangedEvent is the payload published after a status transition.
type StatusChangedEvent struct {
	OrderID   string    `json:"order_id"`
	UserID    string    `json:"user_id"`
	NewStatus string    `json:"new_status"`
	ChangedAt time.Time `json:"changed_at"`
}

// EventBus publishes order lifecycle events to Kafka.
type EventBus struct {
	placedWriter *kafka.Writer
	statusWriter *kafka.Writer
	metrics      *Metrics
}

// NewEventBus builds writers for the order topics. brokersCSV is a
// comma-separated broker list.
func NewEventBus(brokersCSV string, metrics *Metrics) *EventBus {
	var brokers []string
	for _, b := range strings.Split(brokersCSV, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}

	return &EventBus{
		placedWriter: newWriter(brokers, TopicOrderPlaced),
		statusWriter: newWriter(brokers, TopicOrderStatusChanged),
		metrics:      metrics,
	}
}

func newWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
	}
}

func (b *EventBus) PublishOrderPlaced(ctx context.Context, order domain.Order) error {
	event := OrderPlacedEvent{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		UserID:      order.UserID,
		Total:       order.Total,
		PlacedAt:    order.CreatedAt,
	}
	return b.publish(ctx, b.placedWriter, TopicOrderPlaced, order.ID, event)
}

func (b *EventBus) PublishOrderStatusChanged(ctx context.Context, userID, orderID string, status domain.OrderStatus) error {
	event := StatusChangedEvent{
		OrderID:   orderID,
		UserID:    userID,
		NewStatus: string(status),
		ChangedAt: time.Now().UTC(),
	}
	return b.publish(ctx, b.statusWriter, TopicOrderStatusChanged, orderID, event)
}

func (b *EventBus) publish(ctx context.Context, writer *kafka.Writer, topic, key string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	start := time.Now()
	err = writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: data,
		Time:  time.Now().UTC(),
	})
	if b.metrics != nil {
		b.metrics.RecordPublish(ctx, topic, time.Since(start).Seconds(), err == nil)
	}
	if err != nil {
		return fmt.Errorf("write kafka message: %w", err)
	}
	return nil
}

// Close flushes and closes the underlying writers.
func (b *EventBus) Close() error {
	if err := b.placedWriter.Close(); err != nil {
		return err
	}
	return b.statusWriter.Close()
}
