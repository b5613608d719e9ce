package listener

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/fekuna/omnipos-catalog-service/internal/inventory"
	"github.com/fekuna/omnipos-catalog-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-catalog-service/internal/model"
	"github.com/fekuna/omnipos-catalog-service/internal/pkg/broker"
	"github.com/fekuna/omnipos-catalog-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-catalog-service/internal/pkg/metrics"
	"go.uber.org/zap"
)

const (
	EventOrderCreated   = "OrderCreated"
	EventOrderCancelled = "OrderCancelled"

	refOrder         = "order"
	refOrderCancel   = "order_cancel"
	refOrderRollback = "order_rollback"

	systemActor = "system"
)

type InventoryListener struct {
	consumer broker.MessageConsumer
	uc       inventory.UseCase
	metrics  *metrics.Metrics
	logger   logger.ZapLogger
	backoff  time.Duration
}

func NewInventoryListener(consumer broker.MessageConsumer, uc inventory.UseCase, m *metrics.Metrics, logger logger.ZapLogger) *InventoryListener {
	return &InventoryListener{
		consumer: consumer,
		uc:       uc,
		metrics:  m,
		logger:   logger,
		backoff:  time.Second,
	}
}

func (l *InventoryListener) Start(ctx context.Context) {
	l.logger.Info("Starting Inventory Kafka Listener")
	for {
		select {
		case <-ctx.Done():
			l.logger.Info("Stopping Inventory Kafka Listener")
			return
		default:
			msg, err := l.consumer.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				l.logger.Error("Failed to read kafka message", zap.Error(err))
				select {
				case <-ctx.Done():
					return
				case <-time.After(l.backoff):
				}
				continue
			}
			l.processMessage(ctx, msg.Value)
		}
	}
}

type OrderEvent struct {
	EventID   string       `json:"event_id"`
	EventType string       `json:"event_type"`
	Payload   OrderPayload `json:"payload"`
	Timestamp time.Time    `json:"timestamp"`
}

type OrderPayload struct {
	ID       string             `json:"id"`
	TenantID string             `json:"tenant_id"`
	UserID   string             `json:"user_id"`
	Items    []OrderItemPayload `json:"items"`
}

// OrderItemPayload names either a catalog entry (with an optional variant) or a ticket type.
type OrderItemPayload struct {
	EntryID      string `json:"entry_id,omitempty"`
	VariantID    string `json:"variant_id,omitempty"`
	TicketTypeID string `json:"ticket_type_id,omitempty"`
	Quantity     int64  `json:"quantity"`
}

func (i OrderItemPayload) ref(tenantID string) model.CounterRef {
	if i.TicketTypeID != "" {
		return model.TicketCounter(tenantID, i.TicketTypeID)
	}
	return model.EntryCounter(tenantID, i.EntryID, i.VariantID)
}

func (l *InventoryListener) processMessage(ctx context.Context, value []byte) {
	var event OrderEvent
	if err := json.Unmarshal(value, &event); err != nil {
		l.logger.Error("Failed to unmarshal event", zap.Error(err))
		l.metrics.RecordEvent("unknown", metrics.OutcomeInvalid)
		return
	}

	if event.EventType != EventOrderCreated && event.EventType != EventOrderCancelled {
		return
	}

	order := event.Payload
	l.logger.Info("Processing order event",
		zap.String("event_type", event.EventType),
		zap.String("order_id", order.ID),
		zap.Int("items", len(order.Items)),
	)

	if order.ID == "" || order.TenantID == "" {
		l.logger.Error("Order event without order or tenant id", zap.String("event_type", event.EventType))
		l.metrics.RecordEvent(event.EventType, metrics.OutcomeInvalid)
		return
	}

	actor := order.UserID
	if actor == "" {
		actor = systemActor
	}

	var outcome string
	if event.EventType == EventOrderCreated {
		outcome = l.reserveOrder(ctx, order, actor)
	} else {
		outcome = l.cancelOrder(ctx, order, actor)
	}
	l.metrics.RecordEvent(event.EventType, outcome)
}

// reserveOrder reserves every line of the order or none of them.
func (l *InventoryListener) reserveOrder(ctx context.Context, order OrderPayload, actor string) string {
	held, err := l.heldByOrder(ctx, order)
	if err != nil {
		l.logger.Error("Failed to load order movements", zap.String("order_id", order.ID), zap.Error(err))
		return metrics.OutcomeError
	}
	if len(held) > 0 {
		l.logger.Warn("Order already holds inventory, skipping redelivery", zap.String("order_id", order.ID))
		return metrics.OutcomeSuccess
	}

	reserved := make([]*dto.LedgerInput, 0, len(order.Items))
	for _, item := range order.Items {
		in := &dto.LedgerInput{
			Ref:           item.ref(order.TenantID),
			Quantity:      item.Quantity,
			ReferenceType: refOrder,
			ReferenceID:   order.ID,
			ActorID:       actor,
		}
		if _, err := l.uc.Reserve(ctx, in); err != nil {
			l.logger.Error("Failed to reserve order item, rolling back order",
				zap.String("order_id", order.ID),
				zap.String("ref", in.Ref.String()),
				zap.Int64("quantity", item.Quantity),
				zap.Int("reserved_lines", len(reserved)),
				zap.Error(err),
			)
			l.rollback(ctx, reserved)
			if model.IsInsufficientInventoryError(err) {
				return metrics.OutcomeInsufficient
			}
			return metrics.OutcomeError
		}
		reserved = append(reserved, in)
	}
	return metrics.OutcomeSuccess
}

func (l *InventoryListener) rollback(ctx context.Context, reserved []*dto.LedgerInput) {
	for i := len(reserved) - 1; i >= 0; i-- {
		in := *reserved[i]
		in.ReferenceType = refOrderRollback
		if _, err := l.uc.Release(ctx, &in); err != nil {
			l.logger.Error("Failed to roll back order item",
				zap.String("order_id", in.ReferenceID),
				zap.String("ref", in.Ref.String()),
				zap.Int64("quantity", in.Quantity),
				zap.Error(err),
			)
		}
	}
}

// cancelOrder releases what the order still holds according to its movements.
// The event's item list is not trusted.
func (l *InventoryListener) cancelOrder(ctx context.Context, order OrderPayload, actor string) string {
	held, err := l.heldByOrder(ctx, order)
	if err != nil {
		l.logger.Error("Failed to load order movements", zap.String("order_id", order.ID), zap.Error(err))
		return metrics.OutcomeError
	}
	if len(held) == 0 {
		l.logger.Info("Cancelled order holds no inventory", zap.String("order_id", order.ID))
		return metrics.OutcomeSuccess
	}

	refs := make([]model.CounterRef, 0, len(held))
	for ref := range held {
		refs = append(refs, ref)
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].String() < refs[j].String() })

	outcome := metrics.OutcomeSuccess
	for _, ref := range refs {
		_, err := l.uc.Release(ctx, &dto.LedgerInput{
			Ref:           ref,
			Quantity:      held[ref],
			ReferenceType: refOrderCancel,
			ReferenceID:   order.ID,
			ActorID:       actor,
		})
		if err != nil {
			outcome = metrics.OutcomeError
			l.logger.Error("Failed to release cancelled order item",
				zap.String("order_id", order.ID),
				zap.String("ref", ref.String()),
				zap.Int64("quantity", held[ref]),
				zap.Error(err),
			)
		}
	}
	return outcome
}

// heldByOrder nets the order's sales against its releases per counter.
// Only counters with a positive balance are returned.
func (l *InventoryListener) heldByOrder(ctx context.Context, order OrderPayload) (map[model.CounterRef]int64, error) {
	mvs, _, err := l.uc.ListMovements(ctx, &dto.MovementFilters{
		TenantID:    order.TenantID,
		ReferenceID: order.ID,
	})
	if err != nil {
		return nil, err
	}

	held := make(map[model.CounterRef]int64)
	for i := range mvs {
		m := &mvs[i]
		if m.ReferenceType == nil {
			continue
		}
		switch {
		case *m.ReferenceType == refOrder && m.MovementType == model.MovementSale:
			held[m.Ref()] += m.Quantity
		case (*m.ReferenceType == refOrderCancel || *m.ReferenceType == refOrderRollback) && m.MovementType == model.MovementReturn:
			held[m.Ref()] -= m.Quantity
		}
	}
	for ref, q := range held {
		if q <= 0 {
			delete(held, ref)
		}
	}
	return held, nil
}
