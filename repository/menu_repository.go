package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/chaudhary-hadi27/usman-fast-food/models"
)

// MenuRepository is the data access interface for the catalog.
type MenuRepository interface {
	Find(ctx context.Context, category string, availableOnly bool) ([]models.MenuItem, error)
	FindByID(ctx context.Context, id string) (*models.MenuItem, error)
	Create(ctx context.Context, item *models.MenuItem) (string, error)
	Update(ctx context.Context, id string, updates bson.M) (int64, error)
	Delete(ctx context.Context, id string) (int64, error)
}

type MongoMenuRepository struct {
	collection *mongo.Collection
}

func NewMongoMenuRepository(db *mongo.Database) *MongoMenuRepository {
	return &MongoMenuRepository{
		collection: db.Collection("menuitems"),
	}
}

func (r *MongoMenuRepository) Find(ctx context.Context, category string, availableOnly bool) ([]models.MenuItem, error) {
	filter := bson.M{}
	if category != "" {
		filter["category"] = category
	}
	if availableOnly {
		filter["available"] = true
	}

	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "category", Value: 1}, {Key: "name", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var items []models.MenuItem
	if err = cursor.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *MongoMenuRepository) FindByID(ctx context.Context, id string) (*models.MenuItem, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNoDocument
	}

	var item models.MenuItem
	err = r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&item)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNoDocument
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *MongoMenuRepository) Create(ctx context.Context, item *models.MenuItem) (string, error) {
	now := time.Now().UTC()
	item.CreatedAt = now
	item.UpdatedAt = now

	doc := bson.M{
		"name":        item.Name,
		"description": item.Description,
		"price":       item.Price,
		"category":    item.Category,
		"image":       item.Image,
		"available":   item.Available,
		"createdAt":   item.CreatedAt,
		"updatedAt":   item.UpdatedAt,
	}
	res, err := r.collection.InsertOne(ctx, doc)
	if err != nil {
		return "", err
	}
	oid, _ := res.InsertedID.(primitive.ObjectID)
	return oid.Hex(), nil
}

func (r *MongoMenuRepository) Update(ctx context.Context, id string, updates bson.M) (int64, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return 0, ErrNoDocument
	}

	updates["updatedAt"] = time.Now().UTC()
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": updates})
	if err != nil {
		return 0, err
	}
	return res.MatchedCount, nil
}

func (r *MongoMenuRepository) Delete(ctx context.Context, id string) (int64, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return 0, ErrNoDocument
	}

	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
