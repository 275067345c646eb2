package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CartItem is one cart line. The (user, product) pair is unique at the
// collection level.
type CartItem struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	User      primitive.ObjectID `bson:"user" json:"user"`
	Product   primitive.ObjectID `bson:"product" json:"product"`
	Quantity  int                `bson:"quantity" json:"quantity"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// WishlistItem mirrors CartItem without a quantity; same uniqueness rule.
type WishlistItem struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	User      primitive.ObjectID `bson:"user" json:"user"`
	Product   primitive.ObjectID `bson:"product" json:"product"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

type Order struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ProductID  primitive.ObjectID `bson:"productId" json:"productId"`
	Quantity   int                `bson:"quantity" json:"quantity"`
	UserInfo   primitive.ObjectID `bson:"userInfo" json:"userInfo"`
	Category   primitive.ObjectID `bson:"category,omitempty" json:"category,omitempty"`
	TotalPrice float64            `bson:"totalPrice" json:"totalPrice"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// RecentView records when a user last looked at a product. Upserted on every
// view; stale rows are purged by the cleanup sweeper.
type RecentView struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	User      primitive.ObjectID `bson:"user" json:"user"`
	ProductID primitive.ObjectID `bson:"productId" json:"productId"`
	ViewedAt  time.Time          `bson:"viewedAt" json:"viewedAt"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}
