package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Menu categories. Kept as a closed set so the admin form and the storefront
// filter agree.
var MenuCategories = []string{"Burger", "Fries", "Pizza", "Drinks"}

// ValidCategory reports whether c is one of MenuCategories.
func ValidCategory(c string) bool {
	for _, v := range MenuCategories {
		if v == c {
			return true
		}
	}
	return false
}

// MenuItem is a purchasable catalog entry. The ordering core treats the menu
// as read-only input; only admin CRUD mutates it.
type MenuItem struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description" json:"description"`
	Price       float64            `bson:"price" json:"price"`
	Category    string             `bson:"category" json:"category"`
	Image       string             `bson:"image" json:"image"`
	Available   bool               `bson:"available" json:"available"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}
