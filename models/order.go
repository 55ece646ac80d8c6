package models

import "time"

// OrderStatus is the wire value stored in Mongo and returned to tracking
// clients. The strings are a compatibility contract; do not rename them.
type OrderStatus string

const (
	StatusPending        OrderStatus = "Pending"
	StatusConfirmed      OrderStatus = "Confirmed"
	StatusCooking        OrderStatus = "Cooking"
	StatusOutForDelivery OrderStatus = "Out for Delivery"
	StatusDelivered      OrderStatus = "Delivered"
	StatusCancelled      OrderStatus = "Cancelled"
)

// Actor identifies who is requesting a status transition.
type Actor string

const (
	ActorCustomer Actor = "customer"
	ActorAdmin    Actor = "admin"
)

// statusFlow is the single authoritative forward path. Terminal states map to
// an empty string.
var statusFlow = map[OrderStatus]OrderStatus{
	StatusPending:        StatusConfirmed,
	StatusConfirmed:      StatusCooking,
	StatusCooking:        StatusOutForDelivery,
	StatusOutForDelivery: StatusDelivered,
	StatusDelivered:      "",
	StatusCancelled:      "",
}

// estimatedTimes mirrors what the tracking page shows per status.
var estimatedTimes = map[OrderStatus]string{
	StatusPending:        "5-10 minutes",
	StatusConfirmed:      "15-20 minutes",
	StatusCooking:        "20-30 minutes",
	StatusOutForDelivery: "30-45 minutes",
	StatusDelivered:      "Delivered",
	StatusCancelled:      "Cancelled",
}

// Valid reports whether s is one of the known statuses.
func (s OrderStatus) Valid() bool {
	_, ok := statusFlow[s]
	return ok
}

// Terminal reports whether no further transition is permitted from s.
func (s OrderStatus) Terminal() bool {
	next, ok := statusFlow[s]
	return ok && next == ""
}

// Next returns the forward successor of s, or "" if s is terminal or unknown.
func (s OrderStatus) Next() OrderStatus {
	return statusFlow[s]
}

// CanCancel reports whether an order in status s may still be cancelled.
// Once the kitchen starts cooking, cancellation is refused.
func (s OrderStatus) CanCancel() bool {
	return s == StatusPending || s == StatusConfirmed
}

// CanTransitionTo reports whether target is a legal successor of s: either the
// single forward step, or a cancellation while still cancellable.
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	if !s.Valid() || !target.Valid() {
		return false
	}
	if target == StatusCancelled {
		return s.CanCancel()
	}
	return statusFlow[s] == target
}

// EstimatedTime returns the customer-facing ETA string for s.
func (s OrderStatus) EstimatedTime() string {
	return estimatedTimes[s]
}

// OrderItem is an immutable snapshot of a menu item at submission time.
// Catalog prices may change later; the order keeps what the customer saw.
type OrderItem struct {
	MenuItemID string  `bson:"menuItem" json:"menuItem"`
	Name       string  `bson:"name" json:"name"`
	Price      float64 `bson:"price" json:"price"`
	Quantity   int     `bson:"quantity" json:"quantity"`
}

// Order is the persisted record of a purchase request. Everything except
// status (and the cancellation fields set alongside it) is immutable after
// creation.
type Order struct {
	OrderID             string      `bson:"orderId" json:"orderId"`
	CustomerName        string      `bson:"customerName" json:"customerName"`
	CustomerEmail       string      `bson:"customerEmail" json:"customerEmail"`
	CustomerPhone       string      `bson:"customerPhone" json:"customerPhone"`
	DeliveryAddress     string      `bson:"deliveryAddress" json:"deliveryAddress"`
	SpecialInstructions string      `bson:"specialInstructions,omitempty" json:"specialInstructions,omitempty"`
	Items               []OrderItem `bson:"items" json:"items"`
	TotalAmount         float64     `bson:"totalAmount" json:"totalAmount"`
	Status              OrderStatus `bson:"status" json:"status"`
	CancelledAt         *time.Time  `bson:"cancelledAt,omitempty" json:"cancelledAt,omitempty"`
	CancelReason        string      `bson:"cancelReason,omitempty" json:"cancelReason,omitempty"`
	CreatedAt           time.Time   `bson:"createdAt" json:"createdAt"`
	UpdatedAt           time.Time   `bson:"updatedAt" json:"updatedAt"`
}

// ItemsTotal recomputes the order total from the item snapshots.
func (o *Order) ItemsTotal() float64 {
	var sum float64
	for _, it := range o.Items {
		sum += it.Price * float64(it.Quantity)
	}
	return sum
}
