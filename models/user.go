package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is an admin dashboard account. PasswordHash is bcrypt and never
// serialized.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Username     string             `bson:"username" json:"username"`
	PasswordHash string             `bson:"passwordHash" json:"-"`
	Role         string             `bson:"role" json:"role"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
}

const RoleAdmin = "admin"

// OrderEvent is the payload published to Kafka when an order is created or
// changes status. Best-effort; consumers drive notifications and the live
// order counter.
type OrderEvent struct {
	Event     string      `json:"event"`
	OrderID   string      `json:"orderId"`
	Status    OrderStatus `json:"status"`
	Total     float64     `json:"total,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

const (
	EventOrderCreated       = "order.created"
	EventOrderStatusChanged = "order.status_changed"
	EventOrderCancelled     = "order.cancelled"
)
