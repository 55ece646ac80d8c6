package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/chaudhary-hadi27/usman-fast-food/models"
)

// ErrDuplicateOrderID is returned when an insert loses to the unique index on
// orderId. Callers regenerate the id and retry.
var ErrDuplicateOrderID = errors.New("duplicate order id")

// ErrNoDocument is returned when no order matches the given filter.
var ErrNoDocument = errors.New("document not found")

// OrderRepository defines the interface for order data access.
type OrderRepository interface {
	Insert(ctx context.Context, order *models.Order) error
	FindByOrderID(ctx context.Context, orderID string) (*models.Order, error)
	FindAll(ctx context.Context, status models.OrderStatus, limit int) ([]models.Order, error)
	FindByEmail(ctx context.Context, email string, limit int) ([]models.Order, error)
	// UpdateStatus performs a conditional update: the order's status must
	// still equal from when the update lands, otherwise ErrNoDocument is
	// returned and the order is untouched.
	UpdateStatus(ctx context.Context, orderID string, from, to models.OrderStatus, cancelledAt *time.Time, cancelReason string) (*models.Order, error)
}

// MongoOrderRepository implements OrderRepository on a Mongo collection.
type MongoOrderRepository struct {
	collection *mongo.Collection
}

func NewMongoOrderRepository(db *mongo.Database) *MongoOrderRepository {
	return &MongoOrderRepository{
		collection: db.Collection("orders"),
	}
}

func (r *MongoOrderRepository) Insert(ctx context.Context, order *models.Order) error {
	_, err := r.collection.InsertOne(ctx, order)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicateOrderID
	}
	return err
}

func (r *MongoOrderRepository) FindByOrderID(ctx context.Context, orderID string) (*models.Order, error) {
	var order models.Order
	err := r.collection.FindOne(ctx, bson.M{"orderId": orderID}).Decode(&order)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNoDocument
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *MongoOrderRepository) FindAll(ctx context.Context, status models.OrderStatus, limit int) ([]models.Order, error) {
	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}

	findOptions := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var orders []models.Order
	if err = cursor.All(ctx, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *MongoOrderRepository) FindByEmail(ctx context.Context, email string, limit int) ([]models.Order, error) {
	findOptions := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, bson.M{"customerEmail": email}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var orders []models.Order
	if err = cursor.All(ctx, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *MongoOrderRepository) UpdateStatus(ctx context.Context, orderID string, from, to models.OrderStatus, cancelledAt *time.Time, cancelReason string) (*models.Order, error) {
	set := bson.M{
		"status":    to,
		"updatedAt": time.Now().UTC(),
	}
	if cancelledAt != nil {
		set["cancelledAt"] = *cancelledAt
		set["cancelReason"] = cancelReason
	}

	// Matching on the expected current status makes this a compare-and-swap:
	// a concurrent transition that already moved the order leaves nothing to
	// match and the racer observes ErrNoDocument.
	filter := bson.M{"orderId": orderID, "status": from}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated models.Order
	err := r.collection.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, opts).Decode(&updated)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNoDocument
	}
	if err != nil {
		return nil, err
	}
	return &updated, nil
}
