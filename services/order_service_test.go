package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/chaudhary-hadi27/usman-fast-food/apperrors"
	"github.com/chaudhary-hadi27/usman-fast-food/models"
	"github.com/chaudhary-hadi27/usman-fast-food/repository"
)

// fakeOrderRepo is an in-memory OrderRepository with the same conditional
// update semantics as the Mongo implementation.
type fakeOrderRepo struct {
	mu     sync.Mutex
	orders map[string]models.Order

	// duplicateInserts makes the next N inserts fail with a duplicate key.
	duplicateInserts int
	lastListLimit    int
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: make(map[string]models.Order)}
}

func (f *fakeOrderRepo) Insert(ctx context.Context, order *models.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.duplicateInserts > 0 {
		f.duplicateInserts--
		return repository.ErrDuplicateOrderID
	}
	if _, exists := f.orders[order.OrderID]; exists {
		return repository.ErrDuplicateOrderID
	}
	f.orders[order.OrderID] = *order
	return nil
}

func (f *fakeOrderRepo) FindByOrderID(ctx context.Context, orderID string) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	order, ok := f.orders[orderID]
	if !ok {
		return nil, repository.ErrNoDocument
	}
	copied := order
	return &copied, nil
}

func (f *fakeOrderRepo) FindAll(ctx context.Context, status models.OrderStatus, limit int) ([]models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastListLimit = limit
	var out []models.Order
	for _, o := range f.orders {
		if status == "" || o.Status == status {
			out = append(out, o)
		}
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (f *fakeOrderRepo) FindByEmail(ctx context.Context, email string, limit int) ([]models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Order
	for _, o := range f.orders {
		if o.CustomerEmail == email {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeOrderRepo) UpdateStatus(ctx context.Context, orderID string, from, to models.OrderStatus, cancelledAt *time.Time, cancelReason string) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	order, ok := f.orders[orderID]
	if !ok || order.Status != from {
		return nil, repository.ErrNoDocument
	}
	order.Status = to
	order.UpdatedAt = time.Now().UTC()
	if cancelledAt != nil {
		order.CancelledAt = cancelledAt
		order.CancelReason = cancelReason
	}
	f.orders[orderID] = order
	copied := order
	return &copied, nil
}

// setStatus lets tests force an order into a given state behind the
// service's back, simulating a concurrent transition.
func (f *fakeOrderRepo) setStatus(orderID string, status models.OrderStatus) {
	f.mu.Lock()
	defer f.mu.Unlock()
	order := f.orders[orderID]
	order.Status = status
	f.orders[orderID] = order
}

type fakeIdemStore struct {
	mu   sync.Mutex
	keys map[string]string
}

func newFakeIdemStore() *fakeIdemStore {
	return &fakeIdemStore{keys: make(map[string]string)}
}

func (f *fakeIdemStore) GetIdempotency(ctx context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.keys[key], nil
}

func (f *fakeIdemStore) SetIdempotency(ctx context.Context, key, orderID string, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.keys[key] = orderID
	return nil
}

type fakeProducer struct {
	mu     sync.Mutex
	events []models.OrderEvent
}

func (f *fakeProducer) SendOrderEvent(event models.OrderEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return nil
}

func newTestOrderService(repo repository.OrderRepository) *OrderService {
	return NewOrderService(repo, nil, newFakeIdemStore(), &fakeProducer{}, 10*time.Minute)
}

func validCreateRequest() *CreateOrderRequest {
	return &CreateOrderRequest{
		CustomerName:    "Ali Raza",
		CustomerEmail:   "ali.raza@example.com",
		CustomerPhone:   "03001234567",
		DeliveryAddress: "House 12, Street 4, Gulberg III, Lahore",
		Items: []CreateOrderItem{
			{MenuItemID: "A", Name: "Zinger Burger", Price: 500, Quantity: 1},
			{MenuItemID: "B", Name: "Masala Fries", Price: 300, Quantity: 2},
		},
		TotalAmount: 1100,
	}
}

func TestCreateOrderHappyPath(t *testing.T) {
	repo := newFakeOrderRepo()
	svc := newTestOrderService(repo)

	order, err := svc.CreateOrder(context.Background(), validCreateRequest(), "")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if order.Status != models.StatusPending {
		t.Fatalf("new order status %q, want Pending", order.Status)
	}
	if order.TotalAmount != 1100 {
		t.Fatalf("total %v, want 1100", order.TotalAmount)
	}
	if len(order.Items) != 2 {
		t.Fatalf("items length %d, want 2", len(order.Items))
	}
	if !ValidOrderID(order.OrderID) {
		t.Fatalf("order id %q malformed", order.OrderID)
	}

	stored, err := repo.FindByOrderID(context.Background(), order.OrderID)
	if err != nil {
		t.Fatalf("order not persisted: %v", err)
	}
	if stored.TotalAmount != stored.ItemsTotal() {
		t.Fatalf("stored total %v diverges from items sum %v", stored.TotalAmount, stored.ItemsTotal())
	}
}

func TestCreateOrderRejectsTamperedTotal(t *testing.T) {
	repo := newFakeOrderRepo()
	svc := newTestOrderService(repo)

	req := &CreateOrderRequest{
		CustomerName:    "Ali Raza",
		CustomerEmail:   "ali.raza@example.com",
		CustomerPhone:   "03001234567",
		DeliveryAddress: "House 12, Street 4, Gulberg III, Lahore",
		Items: []CreateOrderItem{
			{MenuItemID: "A", Name: "Zinger Burger", Price: 450, Quantity: 2},
		},
		TotalAmount: 850, // real sum is 900
	}

	_, err := svc.CreateOrder(context.Background(), req, "")
	if !apperrors.IsKind(err, apperrors.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(repo.orders) != 0 {
		t.Fatal("rejected order was persisted")
	}
}

func TestCreateOrderToleratesRounding(t *testing.T) {
	svc := newTestOrderService(newFakeOrderRepo())

	req := validCreateRequest()
	req.TotalAmount = 1100.009

	if _, err := svc.CreateOrder(context.Background(), req, ""); err != nil {
		t.Fatalf("sub-tolerance drift rejected: %v", err)
	}
}

func TestCreateOrderValidation(t *testing.T) {
	svc := newTestOrderService(newFakeOrderRepo())

	cases := []struct {
		name   string
		mutate func(*CreateOrderRequest)
	}{
		{"missing name", func(r *CreateOrderRequest) { r.CustomerName = "" }},
		{"bad email", func(r *CreateOrderRequest) { r.CustomerEmail = "not-an-email" }},
		{"bad phone", func(r *CreateOrderRequest) { r.CustomerPhone = "12345" }},
		{"foreign phone", func(r *CreateOrderRequest) { r.CustomerPhone = "+4415550123456" }},
		{"short address", func(r *CreateOrderRequest) { r.DeliveryAddress = "Lahore" }},
		{"empty items", func(r *CreateOrderRequest) { r.Items = nil }},
		{"zero quantity", func(r *CreateOrderRequest) { r.Items[0].Quantity = 0 }},
		{"oversized quantity", func(r *CreateOrderRequest) { r.Items[0].Quantity = MaxOrderItemQuantity + 1 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validCreateRequest()
			tc.mutate(req)
			_, err := svc.CreateOrder(context.Background(), req, "")
			if !apperrors.IsKind(err, apperrors.KindValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestCreateOrderAcceptsPhoneVariants(t *testing.T) {
	svc := newTestOrderService(newFakeOrderRepo())

	for _, phone := range []string{"03001234567", "+923001234567", "3001234567"} {
		req := validCreateRequest()
		req.CustomerPhone = phone
		if _, err := svc.CreateOrder(context.Background(), req, ""); err != nil {
			t.Errorf("phone %q rejected: %v", phone, err)
		}
	}
}

func TestCreateOrderRetriesDuplicateID(t *testing.T) {
	repo := newFakeOrderRepo()
	repo.duplicateInserts = 2
	svc := newTestOrderService(repo)

	order, err := svc.CreateOrder(context.Background(), validCreateRequest(), "")
	if err != nil {
		t.Fatalf("create failed after duplicate ids: %v", err)
	}
	if _, err := repo.FindByOrderID(context.Background(), order.OrderID); err != nil {
		t.Fatal("order not persisted after retry")
	}
}

func TestCreateOrderGivesUpAfterRepeatedCollisions(t *testing.T) {
	repo := newFakeOrderRepo()
	repo.duplicateInserts = maxIDRetries
	svc := newTestOrderService(repo)

	_, err := svc.CreateOrder(context.Background(), validCreateRequest(), "")
	if !apperrors.IsKind(err, apperrors.KindTransient) {
		t.Fatalf("expected transient error, got %v", err)
	}
}

func TestCreateOrderIdempotencyReplay(t *testing.T) {
	repo := newFakeOrderRepo()
	idem := newFakeIdemStore()
	svc := NewOrderService(repo, nil, idem, nil, 10*time.Minute)

	first, err := svc.CreateOrder(context.Background(), validCreateRequest(), "key-1")
	if err != nil {
		t.Fatalf("first create failed: %v", err)
	}

	second, err := svc.CreateOrder(context.Background(), validCreateRequest(), "key-1")
	if err != nil {
		t.Fatalf("replay failed: %v", err)
	}
	if second.OrderID != first.OrderID {
		t.Fatalf("replay created a new order: %s vs %s", second.OrderID, first.OrderID)
	}
	if len(repo.orders) != 1 {
		t.Fatalf("replay persisted %d orders", len(repo.orders))
	}
}

func createPendingOrder(t *testing.T, svc *OrderService) *models.Order {
	t.Helper()
	order, err := svc.CreateOrder(context.Background(), validCreateRequest(), "")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	return order
}

func TestTransitionAdvancesStatus(t *testing.T) {
	repo := newFakeOrderRepo()
	svc := newTestOrderService(repo)
	order := createPendingOrder(t, svc)

	updated, err := svc.Transition(context.Background(), &TransitionRequest{
		OrderID: order.OrderID,
		Status:  models.StatusConfirmed,
	}, models.ActorAdmin)
	if err != nil {
		t.Fatalf("transition failed: %v", err)
	}
	if updated.Status != models.StatusConfirmed {
		t.Fatalf("status %q, want Confirmed", updated.Status)
	}
}

func TestTransitionRejectsSkippedStep(t *testing.T) {
	repo := newFakeOrderRepo()
	svc := newTestOrderService(repo)
	order := createPendingOrder(t, svc)

	_, err := svc.Transition(context.Background(), &TransitionRequest{
		OrderID: order.OrderID,
		Status:  models.StatusCooking,
	}, models.ActorAdmin)
	if !apperrors.IsKind(err, apperrors.KindConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}

	stored, _ := repo.FindByOrderID(context.Background(), order.OrderID)
	if stored.Status != models.StatusPending {
		t.Fatalf("rejected transition changed status to %q", stored.Status)
	}
}

func TestTerminalOrdersStayTerminal(t *testing.T) {
	repo := newFakeOrderRepo()
	svc := newTestOrderService(repo)
	order := createPendingOrder(t, svc)
	repo.setStatus(order.OrderID, models.StatusDelivered)

	for _, target := range []models.OrderStatus{
		models.StatusPending, models.StatusConfirmed, models.StatusCooking,
		models.StatusOutForDelivery, models.StatusCancelled,
	} {
		_, err := svc.Transition(context.Background(), &TransitionRequest{
			OrderID: order.OrderID,
			Status:  target,
		}, models.ActorAdmin)
		if !apperrors.IsKind(err, apperrors.KindConflict) {
			t.Fatalf("Delivered -> %s: expected conflict, got %v", target, err)
		}
	}

	stored, _ := repo.FindByOrderID(context.Background(), order.OrderID)
	if stored.Status != models.StatusDelivered {
		t.Fatalf("terminal order moved to %q", stored.Status)
	}
}

func TestCancellationStampsReason(t *testing.T) {
	repo := newFakeOrderRepo()
	svc := newTestOrderService(repo)
	order := createPendingOrder(t, svc)

	updated, err := svc.Transition(context.Background(), &TransitionRequest{
		OrderID: order.OrderID,
		Status:  models.StatusCancelled,
	}, models.ActorCustomer)
	if err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if updated.CancelledAt == nil {
		t.Fatal("cancelledAt not set")
	}
	if updated.CancelReason != DefaultCancelReason {
		t.Fatalf("cancel reason %q, want default", updated.CancelReason)
	}
}

func TestCustomerMayOnlyCancel(t *testing.T) {
	repo := newFakeOrderRepo()
	svc := newTestOrderService(repo)
	order := createPendingOrder(t, svc)

	_, err := svc.Transition(context.Background(), &TransitionRequest{
		OrderID: order.OrderID,
		Status:  models.StatusConfirmed,
	}, models.ActorCustomer)
	if !apperrors.IsKind(err, apperrors.KindConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestConcurrentTransitionLosesWithConflict(t *testing.T) {
	repo := newFakeOrderRepo()
	svc := newTestOrderService(repo)
	order := createPendingOrder(t, svc)

	// Simulate a racer advancing the order between our read and our
	// conditional update: confirm via the repo after the service has seen
	// Pending is not possible from outside, so instead force the stored
	// status right before the CAS by wrapping the repo.
	wrapped := &racingRepo{fakeOrderRepo: repo, orderID: order.OrderID, winner: models.StatusConfirmed}
	racySvc := newTestOrderService(wrapped)

	_, err := racySvc.Transition(context.Background(), &TransitionRequest{
		OrderID: order.OrderID,
		Status:  models.StatusCancelled,
	}, models.ActorAdmin)
	if !apperrors.IsKind(err, apperrors.KindConflict) {
		t.Fatalf("expected conflict for lost race, got %v", err)
	}

	stored, _ := repo.FindByOrderID(context.Background(), order.OrderID)
	if stored.Status != models.StatusConfirmed {
		t.Fatalf("race corrupted status to %q", stored.Status)
	}
}

// racingRepo lets another "request" win right before the conditional update.
type racingRepo struct {
	*fakeOrderRepo
	orderID string
	winner  models.OrderStatus
	won     bool
}

func (r *racingRepo) UpdateStatus(ctx context.Context, orderID string, from, to models.OrderStatus, cancelledAt *time.Time, cancelReason string) (*models.Order, error) {
	if !r.won && orderID == r.orderID {
		r.won = true
		r.fakeOrderRepo.setStatus(r.orderID, r.winner)
	}
	return r.fakeOrderRepo.UpdateStatus(ctx, orderID, from, to, cancelledAt, cancelReason)
}

func TestTransitionNotFound(t *testing.T) {
	svc := newTestOrderService(newFakeOrderRepo())

	_, err := svc.Transition(context.Background(), &TransitionRequest{
		OrderID: "ORD-AAAAAAAAAA",
		Status:  models.StatusConfirmed,
	}, models.ActorAdmin)
	if !apperrors.IsKind(err, apperrors.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestTransitionUnknownStatus(t *testing.T) {
	repo := newFakeOrderRepo()
	svc := newTestOrderService(repo)
	order := createPendingOrder(t, svc)

	_, err := svc.Transition(context.Background(), &TransitionRequest{
		OrderID: order.OrderID,
		Status:  "Shipped",
	}, models.ActorAdmin)
	if !apperrors.IsKind(err, apperrors.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestLookupNotFound(t *testing.T) {
	svc := newTestOrderService(newFakeOrderRepo())

	_, err := svc.Lookup(context.Background(), "ORD-ZZZZZZZZZZ")
	if !apperrors.IsKind(err, apperrors.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestLookupMalformedID(t *testing.T) {
	svc := newTestOrderService(newFakeOrderRepo())

	_, err := svc.Lookup(context.Background(), "not-an-order-id")
	if !apperrors.IsKind(err, apperrors.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestListAllCapsLimit(t *testing.T) {
	repo := newFakeOrderRepo()
	svc := newTestOrderService(repo)

	if _, err := svc.ListAll(context.Background(), "", 5000); err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if repo.lastListLimit != MaxListLimit {
		t.Fatalf("limit %d reached the repository, want cap %d", repo.lastListLimit, MaxListLimit)
	}

	if _, err := svc.ListAll(context.Background(), "Shipped", 10); !apperrors.IsKind(err, apperrors.KindValidation) {
		t.Fatalf("unknown status filter accepted: %v", err)
	}
}

func TestOrderLifecycleEndToEnd(t *testing.T) {
	repo := newFakeOrderRepo()
	producer := &fakeProducer{}
	svc := NewOrderService(repo, nil, newFakeIdemStore(), producer, 10*time.Minute)
	ctx := context.Background()

	// Cart: A 500x1 + B 300x2 = 1100, submitted with matching total.
	order, err := svc.CreateOrder(ctx, validCreateRequest(), "")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if order.Status != models.StatusPending || order.TotalAmount != 1100 || len(order.Items) != 2 {
		t.Fatalf("unexpected new order: status=%s total=%v items=%d", order.Status, order.TotalAmount, len(order.Items))
	}

	// Pending -> Confirmed succeeds.
	if _, err := svc.Transition(ctx, &TransitionRequest{OrderID: order.OrderID, Status: models.StatusConfirmed}, models.ActorAdmin); err != nil {
		t.Fatalf("confirm failed: %v", err)
	}

	// Confirmed -> Delivered directly fails; the flow passes through
	// Cooking and Out for Delivery.
	if _, err := svc.Transition(ctx, &TransitionRequest{OrderID: order.OrderID, Status: models.StatusDelivered}, models.ActorAdmin); !apperrors.IsKind(err, apperrors.KindConflict) {
		t.Fatalf("direct delivery: expected conflict, got %v", err)
	}

	// Confirmed -> Cooking succeeds.
	if _, err := svc.Transition(ctx, &TransitionRequest{OrderID: order.OrderID, Status: models.StatusCooking}, models.ActorAdmin); err != nil {
		t.Fatalf("cooking failed: %v", err)
	}

	// Cooking -> Cancelled is refused.
	if _, err := svc.Transition(ctx, &TransitionRequest{OrderID: order.OrderID, Status: models.StatusCancelled}, models.ActorAdmin); !apperrors.IsKind(err, apperrors.KindConflict) {
		t.Fatalf("late cancel: expected conflict, got %v", err)
	}

	stored, _ := repo.FindByOrderID(ctx, order.OrderID)
	if stored.Status != models.StatusCooking {
		t.Fatalf("final status %q, want Cooking", stored.Status)
	}

	// created + confirmed + cooking events; the refused transitions
	// published nothing.
	producer.mu.Lock()
	defer producer.mu.Unlock()
	if len(producer.events) != 3 {
		t.Fatalf("published %d events, want 3", len(producer.events))
	}
}
