package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Item categories and statuses.
const (
	CategoryBill     = "bill"
	CategoryPolicy   = "policy"
	CategoryWarranty = "warranty"
	CategoryOther    = "other"

	StatusOpen    = "open"
	StatusPaid    = "paid"
	StatusExpired = "expired"
)

// Item is a tracked obligation (bill, policy, warranty) owned by one user.
// All reads and writes are scoped to the owner.
type Item struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Owner     primitive.ObjectID `bson:"owner"`
	Title     string             `bson:"title"`
	Category  string             `bson:"category"`
	Amount    float64            `bson:"amount"`
	DueDate   time.Time          `bson:"dueDate,omitempty"`
	Status    string             `bson:"status"`
	Notes     string             `bson:"notes,omitempty"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}
