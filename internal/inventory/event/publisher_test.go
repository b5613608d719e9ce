package event

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/fekuna/omnipos-catalog-service/internal/model"
	"github.com/segmentio/kafka-go"
)

type captureProducer struct {
	msgs []kafka.Message
}

func (c *captureProducer) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	c.msgs = append(c.msgs, msgs...)
	return nil
}

func (c *captureProducer) Close() error { return nil }

func TestPublishStockChanged(t *testing.T) {
	producer := &captureProducer{}
	pub := NewKafkaPublisher(producer)

	variant := "v1"
	orderID := "o-9"
	m := &model.InventoryMovement{
		ID:           "m1",
		TenantID:     "t1",
		Scope:        model.CounterScopeEntry,
		TargetID:     "e1",
		VariantID:    &variant,
		MovementType: model.MovementSale,
		Quantity:     2,
		ReferenceID:  &orderID,
		CreatedAt:    time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC),
	}
	snap := &model.CounterSnapshot{Ref: m.Ref(), StockQuantity: 3, SoldQuantity: 2}

	if err := pub.PublishStockChanged(context.Background(), m, snap); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(producer.msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(producer.msgs))
	}

	msg := producer.msgs[0]
	if string(msg.Key) != "t1|entry:e1/v1" {
		t.Errorf("unexpected key %q", msg.Key)
	}

	var evt StockChangedEvent
	if err := json.Unmarshal(msg.Value, &evt); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if evt.EventType != EventTypeStockChanged || evt.Payload.VariantID != "v1" || evt.Payload.StockQuantity != 3 || evt.Payload.ReferenceID != "o-9" {
		t.Errorf("unexpected event %+v", evt)
	}
}
