package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/panaghia/restaurant/internal/events"
	"github.com/panaghia/restaurant/internal/logging"
	"github.com/panaghia/restaurant/internal/models"
	"github.com/panaghia/restaurant/internal/notify"
	"github.com/panaghia/restaurant/internal/repo"
	"github.com/panaghia/restaurant/pkg/checkout"
	"github.com/panaghia/restaurant/pkg/orderstatus"
	"github.com/panaghia/restaurant/pkg/transport"
)

const (
	DefaultOrderLimit = 50
	MaxOrderLimit     = 200

	maxIdempotencyKey = 64
)

type OrderService struct {
	Repo     *repo.GormRepo
	Events   events.Publisher
	Notifier notify.Notifier
	Now      func() time.Time
}

func (s *OrderService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// NewOrderNumber formats ORD-YYYYMMDDHHMMSS-XXXX with a random suffix.
func NewOrderNumber(at time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:4])
	return "ORD-" + at.UTC().Format("20060102150405") + "-" + suffix
}

// CreateOrder validates the request and stores a pending order. Totals are
// recomputed from the submitted lines.
func (s *OrderService) CreateOrder(ctx context.Context, req transport.CreateOrderRequest) (*transport.Order, error) {
	l := logging.FromContext(ctx).With("svc", "order.create")

	if !req.OrderType.Valid() {
		return nil, fmt.Errorf("%w: order_type must be pickup or delivery", ErrValidation)
	}
	if !req.PaymentMethod.Valid() {
		return nil, fmt.Errorf("%w: payment_method must be cash or card", ErrValidation)
	}
	if len(req.Items) == 0 {
		return nil, fmt.Errorf("%w: items required", ErrValidation)
	}
	if err := checkout.Validate(req.Customer, req.OrderType); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	key := strings.TrimSpace(req.IdempotencyKey)
	if len(key) > maxIdempotencyKey {
		return nil, fmt.Errorf("%w: idempotency_key longer than %d characters", ErrValidation, maxIdempotencyKey)
	}
	if key != "" {
		if dto, err := s.replay(ctx, key); dto != nil || err != nil {
			return dto, err
		}
	}

	subtotal := decimal.Zero
	items := make([]models.OrderItem, 0, len(req.Items))
	for _, it := range req.Items {
		if strings.TrimSpace(it.Name) == "" {
			return nil, fmt.Errorf("%w: item name required", ErrValidation)
		}
		if it.Quantity <= 0 {
			return nil, fmt.Errorf("%w: quantity must be > 0", ErrValidation)
		}
		if it.Price.IsNegative() {
			return nil, fmt.Errorf("%w: price must be >= 0", ErrValidation)
		}
		subtotal = subtotal.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
		items = append(items, models.OrderItem{
			MenuItemID: it.MenuItemID,
			Name:       it.Name,
			Price:      it.Price,
			Quantity:   it.Quantity,
		})
	}

	fee := decimal.Zero
	customer := models.Customer{
		Name:  strings.TrimSpace(req.Customer.Name),
		Phone: strings.TrimSpace(req.Customer.Phone),
		Email: strings.TrimSpace(req.Customer.Email),
		Notes: req.Customer.Notes,
	}
	if req.OrderType == transport.Delivery {
		fee = checkout.DeliveryFee
		customer.Address = strings.TrimSpace(req.Customer.Address)
	}

	o := &models.Order{
		OrderNumber:   NewOrderNumber(s.now()),
		Items:         items,
		Customer:      customer,
		Subtotal:      subtotal,
		DeliveryFee:   fee,
		Total:         subtotal.Add(fee),
		Status:        string(orderstatus.Pending),
		OrderType:     string(req.OrderType),
		PaymentMethod: string(req.PaymentMethod),
	}
	if key != "" {
		o.IdempotencyKey = &key
	}
	if err := s.Repo.CreateOrder(ctx, o); err != nil {
		// A concurrent submit with the same key won the unique index.
		if key != "" {
			if dto, rerr := s.replay(ctx, key); dto != nil {
				return dto, nil
			} else if rerr != nil {
				l.Warn("order_replay_error", "error", rerr)
			}
		}
		l.Error("create_order_error", "status", 500, "error", err)
		return nil, err
	}

	dto := o.DTO()
	l.Info("order_created", "order_id", dto.ID, "order_number", dto.OrderNumber, "total", dto.Total.String())

	publish(ctx, s.Events, events.TopicOrders, dto.ID, events.OrderEvent{
		Type:        events.OrderCreated,
		OrderID:     dto.ID,
		OrderNumber: dto.OrderNumber,
		Status:      string(dto.Status),
		OrderType:   string(dto.OrderType),
		Total:       dto.Total,
		At:          s.now().UTC(),
	})
	if s.Notifier != nil {
		if err := s.Notifier.Notify(ctx, notify.Message{Kind: notify.KindNewOrder, Order: &dto, At: s.now().UTC()}); err != nil {
			l.Warn("notify_error", "order_id", dto.ID, "error", err)
		}
	}
	return &dto, nil
}

// replay returns the order already stored under key, or nil when there is none.
func (s *OrderService) replay(ctx context.Context, key string) (*transport.Order, error) {
	o, err := s.Repo.GetOrderByIdempotencyKey(ctx, key)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	dto := o.DTO()
	logging.FromContext(ctx).Info("order_replayed", "order_id", dto.ID, "order_number", dto.OrderNumber)
	return &dto, nil
}

func (s *OrderService) Order(ctx context.Context, id string) (*transport.Order, error) {
	o, err := s.Repo.GetOrder(ctx, id)
	if err != nil {
		return nil, mapRepo(err, "order")
	}
	dto := o.DTO()
	return &dto, nil
}

func (s *OrderService) OrderByNumber(ctx context.Context, number string) (*transport.Order, error) {
	o, err := s.Repo.GetOrderByNumber(ctx, strings.ToUpper(strings.TrimSpace(number)))
	if err != nil {
		return nil, mapRepo(err, "order")
	}
	dto := o.DTO()
	return &dto, nil
}

// UpdateStatus moves an order to target. A no-op or a change to a delivered
// or cancelled order is a conflict.
func (s *OrderService) UpdateStatus(ctx context.Context, id string, target orderstatus.Status, by string) (*transport.Order, error) {
	if !target.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, target)
	}

	var previous orderstatus.Status
	o, err := s.Repo.UpdateOrderStatus(ctx, id, string(target), by, func(current string) error {
		previous = orderstatus.Status(current)
		if err := orderstatus.CanTransition(previous, target); err != nil {
			return fmt.Errorf("%w: %v", ErrConflict, err)
		}
		return nil
	})
	if err != nil {
		return nil, mapRepo(err, "order")
	}

	dto := o.DTO()
	logging.FromContext(ctx).Info("order_status_changed",
		"order_id", dto.ID, "from", previous, "to", dto.Status, "by", by)

	publish(ctx, s.Events, events.TopicOrders, dto.ID, events.OrderEvent{
		Type:        events.OrderStatusChanged,
		OrderID:     dto.ID,
		OrderNumber: dto.OrderNumber,
		Status:      string(dto.Status),
		Previous:    string(previous),
		OrderType:   string(dto.OrderType),
		Total:       dto.Total,
		By:          by,
		At:          s.now().UTC(),
	})
	return &dto, nil
}

func (s *OrderService) Cancel(ctx context.Context, id, by string) (*transport.Order, error) {
	return s.UpdateStatus(ctx, id, orderstatus.Cancelled, by)
}

// List serves the admin order table.
func (s *OrderService) List(ctx context.Context, f transport.OrderFilter) (*transport.OrderList, error) {
	rf, err := s.repoFilter(f)
	if err != nil {
		return nil, err
	}
	orders, total, err := s.Repo.ListOrders(ctx, rf)
	if err != nil {
		return nil, err
	}
	out := &transport.OrderList{
		Orders: make([]transport.Order, 0, len(orders)),
		Total:  total,
		Limit:  rf.Limit,
		Skip:   rf.Offset,
	}
	for _, o := range orders {
		out.Orders = append(out.Orders, o.DTO())
	}
	return out, nil
}

func (s *OrderService) repoFilter(f transport.OrderFilter) (repo.OrderFilter, error) {
	rf := repo.OrderFilter{Limit: f.Limit, Offset: f.Skip}
	switch {
	case rf.Limit == 0:
		rf.Limit = DefaultOrderLimit
	case rf.Limit < 0 || rf.Limit > MaxOrderLimit:
		return rf, fmt.Errorf("%w: limit must be between 1 and %d", ErrValidation, MaxOrderLimit)
	}
	if rf.Offset < 0 {
		return rf, fmt.Errorf("%w: skip must be >= 0", ErrValidation)
	}
	if f.Status != "" {
		if !f.Status.Valid() {
			return rf, fmt.Errorf("%w: unknown status %q", ErrValidation, f.Status)
		}
		rf.Statuses = []string{string(f.Status)}
	}
	if f.OrderType != "" {
		if !f.OrderType.Valid() {
			return rf, fmt.Errorf("%w: unknown order_type %q", ErrValidation, f.OrderType)
		}
		rf.OrderType = string(f.OrderType)
	}
	if f.DateFrom != "" {
		from, err := time.Parse(time.DateOnly, f.DateFrom)
		if err != nil {
			return rf, fmt.Errorf("%w: date_from must be YYYY-MM-DD", ErrValidation)
		}
		rf.From = &from
	}
	if f.DateTo != "" {
		to, err := time.Parse(time.DateOnly, f.DateTo)
		if err != nil {
			return rf, fmt.Errorf("%w: date_to must be YYYY-MM-DD", ErrValidation)
		}
		// date_to is inclusive.
		to = to.AddDate(0, 0, 1)
		rf.To = &to
	}
	return rf, nil
}

// Deliveries lists delivery orders in status, or in the active delivery
// statuses when status is empty.
func (s *OrderService) Deliveries(ctx context.Context, status orderstatus.Status) (*transport.DeliveryList, error) {
	statuses := make([]string, 0, len(orderstatus.ActiveDelivery))
	if status == "" {
		for _, st := range orderstatus.ActiveDelivery {
			statuses = append(statuses, string(st))
		}
	} else {
		if !status.Valid() {
			return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, status)
		}
		statuses = append(statuses, string(status))
	}

	orders, _, err := s.Repo.ListOrders(ctx, repo.OrderFilter{
		Statuses:  statuses,
		OrderType: string(transport.Delivery),
	})
	if err != nil {
		return nil, err
	}
	out := &transport.DeliveryList{Deliveries: make([]transport.Order, 0, len(orders))}
	for _, o := range orders {
		out.Deliveries = append(out.Deliveries, o.DTO())
	}
	out.Total = len(out.Deliveries)
	return out, nil
}

func (s *OrderService) SetCoordinates(ctx context.Context, id string, at transport.Coordinates) error {
	if at.Lat < -90 || at.Lat > 90 || at.Lng < -180 || at.Lng > 180 {
		return fmt.Errorf("%w: coordinates out of range", ErrValidation)
	}
	o, err := s.Repo.GetOrder(ctx, id)
	if err != nil {
		return mapRepo(err, "order")
	}
	if o.OrderType != string(transport.Delivery) {
		return fmt.Errorf("%w: order is not a delivery", ErrValidation)
	}
	err = s.Repo.SetOrderCoordinates(ctx, id, at.Lat, at.Lng)
	if errors.Is(err, repo.ErrNotFound) {
		return fmt.Errorf("%w: order", ErrNotFound)
	}
	return err
}
