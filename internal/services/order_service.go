package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"storefront/internal/models"
	"storefront/internal/repositories"
)

// RoutingKeyOrderCreated is the routing key of the event published after an order is stored.
const RoutingKeyOrderCreated = "order.created"

// EventPublisher sends domain events to a broker.
type EventPublisher interface {
	PublishJSON(ctx context.Context, routingKey string, v any) error
}

// OrderCreatedEvent is the body of an order.created message.
type OrderCreatedEvent struct {
	OrderID     string    `json:"orderId"`
	UserID      string    `json:"userId"`
	Status      string    `json:"status"`
	TotalAmount float64   `json:"totalAmount"`
	Items       int       `json:"items"`
	OrderDate   time.Time `json:"orderDate"`
}

// OrderService handles business logic related to orders.
type OrderService struct {
	orderRepo repositories.OrderRepository
	publisher EventPublisher // nil when no broker is configured
	log       *slog.Logger
	now       func() time.Time
}

// NewOrderService creates a new OrderService. publisher may be nil.
func NewOrderService(orderRepo repositories.OrderRepository, publisher EventPublisher, log *slog.Logger) *OrderService {
	return &OrderService{
		orderRepo: orderRepo,
		publisher: publisher,
		log:       log,
		now:       time.Now,
	}
}

// PlaceOrder stores the order with pending status and payment status and
// announces it on the broker. A failed publish does not fail the order.
func (s *OrderService) PlaceOrder(ctx context.Context, order *models.Order) error {
	if strings.TrimSpace(order.UserID) == "" ||
		order.Products == nil ||
		strings.TrimSpace(order.ShippingAddress.PostalCode) == "" ||
		strings.TrimSpace(order.PaymentMethod) == "" ||
		order.TotalAmount <= 0 {
		return ErrMissingFields
	}

	order.Status = models.OrderStatusPending
	order.PaymentStatus = models.PaymentStatusPending
	order.OrderDate = s.now()

	if err := s.orderRepo.Create(ctx, order); err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}

	s.log.InfoContext(ctx, "order placed", "order_id", order.ID, "user_id", order.UserID, "items", len(order.Products))
	s.publishCreated(ctx, order)
	return nil
}

func (s *OrderService) publishCreated(ctx context.Context, order *models.Order) {
	if s.publisher == nil {
		s.log.DebugContext(ctx, "no event publisher configured, skipping order.created", "order_id", order.ID)
		return
	}

	event := OrderCreatedEvent{
		OrderID:     order.ID,
		UserID:      order.UserID,
		Status:      order.Status,
		TotalAmount: order.TotalAmount,
		Items:       len(order.Products),
		OrderDate:   order.OrderDate,
	}
	if err := s.publisher.PublishJSON(ctx, RoutingKeyOrderCreated, event); err != nil {
		s.log.WarnContext(ctx, "failed to publish order.created", "order_id", order.ID, "err", err)
	}
}

// ListOrders returns one page of the user's orders and their total count.
func (s *OrderService) ListOrders(ctx context.Context, userID string, page Page) ([]models.Order, int64, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, 0, ErrMissingFields
	}

	orders, err := s.orderRepo.ListByUser(ctx, userID, page.Skip(), page.Limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}

	total, err := s.orderRepo.CountByUser(ctx, userID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}
	return orders, total, nil
}
