package event

import (
	"context"
	"encoding/json"
	"time"

	"github.com/fekuna/omnipos-catalog-service/internal/inventory"
	"github.com/fekuna/omnipos-catalog-service/internal/model"
	"github.com/fekuna/omnipos-catalog-service/internal/pkg/broker"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

const EventTypeStockChanged = "StockChanged"

type StockChangedEvent struct {
	EventID   string              `json:"event_id"`
	EventType string              `json:"event_type"`
	Payload   StockChangedPayload `json:"payload"`
	Timestamp time.Time           `json:"timestamp"`
}

type StockChangedPayload struct {
	TenantID      string             `json:"tenant_id"`
	Scope         model.CounterScope `json:"scope"`
	TargetID      string             `json:"target_id"`
	VariantID     string             `json:"variant_id,omitempty"`
	MovementID    string             `json:"movement_id"`
	MovementType  model.MovementType `json:"movement_type"`
	Quantity      int64              `json:"quantity"`
	StockQuantity int64              `json:"stock_quantity"`
	SoldQuantity  int64              `json:"sold_quantity"`
	ReferenceType string             `json:"reference_type,omitempty"`
	ReferenceID   string             `json:"reference_id,omitempty"`
}

type KafkaPublisher struct {
	producer broker.MessageProducer
}

func NewKafkaPublisher(producer broker.MessageProducer) *KafkaPublisher {
	return &KafkaPublisher{producer: producer}
}

var _ inventory.EventPublisher = (*KafkaPublisher)(nil)

// PublishStockChanged keys messages by counter so one counter's events stay ordered
// within a partition.
func (p *KafkaPublisher) PublishStockChanged(ctx context.Context, m *model.InventoryMovement, snap *model.CounterSnapshot) error {
	ref := m.Ref()
	evt := StockChangedEvent{
		EventID:   uuid.New().String(),
		EventType: EventTypeStockChanged,
		Payload: StockChangedPayload{
			TenantID:      ref.TenantID,
			Scope:         ref.Scope,
			TargetID:      ref.ID,
			VariantID:     ref.VariantID,
			MovementID:    m.ID,
			MovementType:  m.MovementType,
			Quantity:      m.Quantity,
			StockQuantity: snap.StockQuantity,
			SoldQuantity:  snap.SoldQuantity,
			ReferenceType: deref(m.ReferenceType),
			ReferenceID:   deref(m.ReferenceID),
		},
		Timestamp: m.CreatedAt,
	}

	value, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	return p.producer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(ref.TenantID + "|" + ref.String()),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(EventTypeStockChanged)},
		},
	})
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
