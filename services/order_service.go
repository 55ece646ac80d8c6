package services

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/chaudhary-hadi27/usman-fast-food/apperrors"
	"github.com/chaudhary-hadi27/usman-fast-food/kafka"
	"github.com/chaudhary-hadi27/usman-fast-food/models"
	"github.com/chaudhary-hadi27/usman-fast-food/repository"
)

const (
	// MaxOrderItems caps how many distinct lines one order may carry.
	MaxOrderItems = 20
	// MaxOrderItemQuantity is deliberately above the cart's per-item cap of
	// 20 so phone orders taken by staff are not boxed in by the storefront
	// limit.
	MaxOrderItemQuantity = 50
	// TotalTolerance is the accepted rounding drift between the declared and
	// the recomputed total.
	TotalTolerance = 0.01
	// MaxListLimit bounds admin list reads.
	MaxListLimit = 100

	// DefaultCancelReason is recorded when a cancellation carries no reason.
	DefaultCancelReason = "Customer request"

	maxIDRetries = 3
)

// pkPhonePattern accepts Pakistani mobile numbers: optional +92 or 0 prefix
// followed by 3 and nine more digits.
var pkPhonePattern = regexp.MustCompile(`^(\+92|0)?3\d{9}$`)

// CreateOrderItem is one submitted order line.
type CreateOrderItem struct {
	MenuItemID string  `json:"menuItem" validate:"required"`
	Name       string  `json:"name" validate:"required"`
	Price      float64 `json:"price" validate:"required,gt=0"`
	Quantity   int     `json:"quantity" validate:"required,min=1,max=50"`
}

// CreateOrderRequest is the order submission payload.
type CreateOrderRequest struct {
	CustomerName        string            `json:"customerName" validate:"required,min=2,max=100"`
	CustomerEmail       string            `json:"customerEmail" validate:"required,email"`
	CustomerPhone       string            `json:"customerPhone" validate:"required,pkphone"`
	DeliveryAddress     string            `json:"deliveryAddress" validate:"required,min=10,max=500"`
	SpecialInstructions string            `json:"specialInstructions" validate:"max=500"`
	Items               []CreateOrderItem `json:"items" validate:"required,min=1,max=20,dive"`
	TotalAmount         float64           `json:"totalAmount" validate:"required,gt=0"`
}

// TransitionRequest asks to move an order to a new status.
type TransitionRequest struct {
	OrderID      string             `json:"orderId"`
	Status       models.OrderStatus `json:"status"`
	CancelReason string             `json:"cancelReason,omitempty"`
}

// OrderCache is the subset of the Redis cache the order service uses.
type OrderCache interface {
	GetOrder(ctx context.Context, orderID string) (*models.Order, error)
	SetOrder(ctx context.Context, order *models.Order, ttl time.Duration) error
	InvalidateOrder(ctx context.Context, orderID string) error
}

// IdempotencyStore records submitted idempotency keys against order ids.
type IdempotencyStore interface {
	GetIdempotency(ctx context.Context, key string) (string, error)
	SetIdempotency(ctx context.Context, key, orderID string, ttl time.Duration) error
}

// OrderService owns the server-side truth of an order's existence and
// progression.
type OrderService struct {
	repo     repository.OrderRepository
	cache    OrderCache
	idem     IdempotencyStore
	producer kafka.ProducerAPI
	cacheTTL time.Duration
	validate *validator.Validate
}

func NewOrderService(repo repository.OrderRepository, cache OrderCache, idem IdempotencyStore, producer kafka.ProducerAPI, cacheTTL time.Duration) *OrderService {
	v := validator.New()
	_ = v.RegisterValidation("pkphone", func(fl validator.FieldLevel) bool {
		return pkPhonePattern.MatchString(fl.Field().String())
	})

	return &OrderService{
		repo:     repo,
		cache:    cache,
		idem:     idem,
		producer: producer,
		cacheTTL: cacheTTL,
		validate: v,
	}
}

// CreateOrder validates the draft, recomputes the total server-side, and
// persists a new Pending order under a fresh id. Either a complete order is
// stored or nothing is.
func (s *OrderService) CreateOrder(ctx context.Context, req *CreateOrderRequest, idempotencyKey string) (*models.Order, error) {
	if err := s.validateCreate(req); err != nil {
		return nil, err
	}

	// The declared total is what the customer saw; never trust it as the
	// stored amount. Recompute and reject on divergence instead of silently
	// correcting, so client-side tampering surfaces as an error.
	computed := 0.0
	for _, it := range req.Items {
		computed += it.Price * float64(it.Quantity)
	}
	if math.Abs(computed-req.TotalAmount) > TotalTolerance {
		return nil, apperrors.Validation("totalAmount",
			fmt.Sprintf("declared total %.2f does not match computed total %.2f", req.TotalAmount, computed))
	}

	// Replayed submissions return the order created the first time.
	if idempotencyKey != "" && s.idem != nil {
		if existingID, err := s.idem.GetIdempotency(ctx, idempotencyKey); err == nil && existingID != "" {
			return s.Lookup(ctx, existingID)
		}
	}

	items := make([]models.OrderItem, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, models.OrderItem{
			MenuItemID: it.MenuItemID,
			Name:       it.Name,
			Price:      it.Price,
			Quantity:   it.Quantity,
		})
	}

	now := time.Now().UTC()
	order := &models.Order{
		CustomerName:        req.CustomerName,
		CustomerEmail:       req.CustomerEmail,
		CustomerPhone:       req.CustomerPhone,
		DeliveryAddress:     req.DeliveryAddress,
		SpecialInstructions: req.SpecialInstructions,
		Items:               items,
		TotalAmount:         computed,
		Status:              models.StatusPending,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	var insertErr error
	for attempt := 0; attempt < maxIDRetries; attempt++ {
		id, err := GenerateOrderID()
		if err != nil {
			return nil, apperrors.Transient("failed to generate order id", err)
		}
		order.OrderID = id

		insertErr = s.repo.Insert(ctx, order)
		if insertErr == nil {
			break
		}
		if insertErr != repository.ErrDuplicateOrderID {
			return nil, apperrors.Transient("failed to persist order", insertErr)
		}
	}
	if insertErr != nil {
		return nil, apperrors.Transient("failed to assign a unique order id", insertErr)
	}

	if idempotencyKey != "" && s.idem != nil {
		if err := s.idem.SetIdempotency(ctx, idempotencyKey, order.OrderID, 24*time.Hour); err != nil {
			zap.L().Warn("failed to record idempotency key", zap.Error(err))
		}
	}
	if s.cache != nil {
		if err := s.cache.SetOrder(ctx, order, s.cacheTTL); err != nil {
			zap.L().Warn("failed to cache order", zap.String("order_id", order.OrderID), zap.Error(err))
		}
	}
	s.publish(models.OrderEvent{
		Event:     models.EventOrderCreated,
		OrderID:   order.OrderID,
		Status:    order.Status,
		Total:     order.TotalAmount,
		Timestamp: now,
	})

	return order, nil
}

// Transition moves an order to newStatus if the transition table and the
// acting role allow it. The underlying update is conditional on the observed
// current status, so a concurrent racer loses with a conflict instead of
// corrupting state.
func (s *OrderService) Transition(ctx context.Context, req *TransitionRequest, actor models.Actor) (*models.Order, error) {
	if !ValidOrderID(req.OrderID) {
		return nil, apperrors.Validation("orderId", "malformed order id")
	}
	if !req.Status.Valid() {
		return nil, apperrors.Validation("status", fmt.Sprintf("unknown status %q", req.Status))
	}

	order, err := s.repo.FindByOrderID(ctx, req.OrderID)
	if err == repository.ErrNoDocument {
		return nil, apperrors.NotFound(fmt.Sprintf("order %s not found", req.OrderID))
	}
	if err != nil {
		return nil, apperrors.Transient("failed to load order", err)
	}

	if !order.Status.CanTransitionTo(req.Status) {
		return nil, apperrors.Conflict(fmt.Sprintf("illegal transition from %q to %q", order.Status, req.Status))
	}
	if actor == models.ActorCustomer && req.Status != models.StatusCancelled {
		return nil, apperrors.Conflict("customers may only cancel orders")
	}

	var cancelledAt *time.Time
	cancelReason := ""
	if req.Status == models.StatusCancelled {
		now := time.Now().UTC()
		cancelledAt = &now
		cancelReason = req.CancelReason
		if cancelReason == "" {
			cancelReason = DefaultCancelReason
		}
	}

	updated, err := s.repo.UpdateStatus(ctx, req.OrderID, order.Status, req.Status, cancelledAt, cancelReason)
	if err == repository.ErrNoDocument {
		// Either the order vanished or somebody else moved it first.
		if _, lookupErr := s.repo.FindByOrderID(ctx, req.OrderID); lookupErr == repository.ErrNoDocument {
			return nil, apperrors.NotFound(fmt.Sprintf("order %s not found", req.OrderID))
		}
		return nil, apperrors.Conflict(fmt.Sprintf("order %s was updated concurrently", req.OrderID))
	}
	if err != nil {
		return nil, apperrors.Transient("failed to update order status", err)
	}

	if s.cache != nil {
		if err := s.cache.InvalidateOrder(ctx, req.OrderID); err != nil {
			zap.L().Warn("failed to invalidate order cache", zap.String("order_id", req.OrderID), zap.Error(err))
		}
	}

	event := models.EventOrderStatusChanged
	if updated.Status == models.StatusCancelled {
		event = models.EventOrderCancelled
	}
	s.publish(models.OrderEvent{
		Event:     event,
		OrderID:   updated.OrderID,
		Status:    updated.Status,
		Timestamp: time.Now().UTC(),
	})

	return updated, nil
}

// Lookup returns the current order, serving from cache when possible.
func (s *OrderService) Lookup(ctx context.Context, orderID string) (*models.Order, error) {
	if !ValidOrderID(orderID) {
		return nil, apperrors.Validation("orderId", "malformed order id")
	}

	if s.cache != nil {
		if cached, err := s.cache.GetOrder(ctx, orderID); err == nil && cached != nil {
			return cached, nil
		}
	}

	order, err := s.repo.FindByOrderID(ctx, orderID)
	if err == repository.ErrNoDocument {
		return nil, apperrors.NotFound(fmt.Sprintf("order %s not found", orderID))
	}
	if err != nil {
		return nil, apperrors.Transient("failed to load order", err)
	}

	if s.cache != nil {
		if err := s.cache.SetOrder(ctx, order, s.cacheTTL); err != nil {
			zap.L().Warn("failed to cache order", zap.String("order_id", orderID), zap.Error(err))
		}
	}
	return order, nil
}

// ListAll is the admin bulk read, most recent first, capped at MaxListLimit.
func (s *OrderService) ListAll(ctx context.Context, status models.OrderStatus, limit int) ([]models.Order, error) {
	if status != "" && !status.Valid() {
		return nil, apperrors.Validation("status", fmt.Sprintf("unknown status %q", status))
	}
	if limit <= 0 || limit > MaxListLimit {
		limit = MaxListLimit
	}

	orders, err := s.repo.FindAll(ctx, status, limit)
	if err != nil {
		return nil, apperrors.Transient("failed to list orders", err)
	}
	return orders, nil
}

// HistoryByEmail returns a customer's past orders, most recent first.
func (s *OrderService) HistoryByEmail(ctx context.Context, email string, limit int) ([]models.Order, error) {
	if email == "" {
		return nil, apperrors.Validation("email", "email is required")
	}
	if limit <= 0 || limit > MaxListLimit {
		limit = MaxListLimit
	}

	orders, err := s.repo.FindByEmail(ctx, email, limit)
	if err != nil {
		return nil, apperrors.Transient("failed to load order history", err)
	}
	return orders, nil
}

func (s *OrderService) validateCreate(req *CreateOrderRequest) error {
	err := s.validate.Struct(req)
	if err == nil {
		return nil
	}
	if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
		first := verrs[0]
		switch first.Tag() {
		case "pkphone":
			return apperrors.Validation(first.Field(), "invalid Pakistani mobile number")
		case "required":
			return apperrors.Validation(first.Field(), "field is required")
		case "email":
			return apperrors.Validation(first.Field(), "invalid email address")
		default:
			return apperrors.Validation(first.Field(),
				fmt.Sprintf("failed %s validation", first.Tag()))
		}
	}
	return apperrors.Validation("", err.Error())
}

func (s *OrderService) publish(event models.OrderEvent) {
	if s.producer == nil {
		return
	}
	if err := s.producer.SendOrderEvent(event); err != nil {
		zap.L().Warn("failed to publish order event",
			zap.String("event", event.Event),
			zap.String("order_id", event.OrderID),
			zap.Error(err))
	}
}
