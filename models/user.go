package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SellerProfile holds the storefront info for users who sell.
type SellerProfile struct {
	StoreName        string  `bson:"storeName,omitempty" json:"storeName,omitempty"`
	StoreDescription string  `bson:"storeDescription,omitempty" json:"storeDescription,omitempty"`
	Rating           float64 `bson:"rating" json:"rating"`
	TotalSales       int     `bson:"totalSales" json:"totalSales"`
}

type User struct {
	ID             primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Email          string               `bson:"email" json:"email"`
	Name           string               `bson:"name" json:"name"`
	Username       string               `bson:"username,omitempty" json:"username,omitempty"`
	Password       string               `bson:"password" json:"-"`
	FirstLogin     bool                 `bson:"firstLogin" json:"firstLogin"`
	Bio            string               `bson:"bio,omitempty" json:"bio,omitempty"`
	ProfilePicture string               `bson:"profilePicture,omitempty" json:"profilePicture,omitempty"`
	CoverPhoto     string               `bson:"coverPhoto,omitempty" json:"coverPhoto,omitempty"`
	Website        string               `bson:"website,omitempty" json:"website,omitempty"`
	Location       string               `bson:"location,omitempty" json:"location,omitempty"`
	Followers      []primitive.ObjectID `bson:"followers" json:"followers"`
	Following      []primitive.ObjectID `bson:"following" json:"following"`
	FollowerCount  int                  `bson:"followerCount" json:"followerCount"`
	FollowingCount int                  `bson:"followingCount" json:"followingCount"`
	IsSeller       bool                 `bson:"isSeller" json:"isSeller"`
	SellerProfile  *SellerProfile       `bson:"sellerProfile,omitempty" json:"sellerProfile,omitempty"`
	IsPrivate      bool                 `bson:"isPrivate" json:"isPrivate"`
	CreatedAt      time.Time            `bson:"createdAt" json:"createdAt"`
}

// PublicUser is the author shape embedded in post/story responses.
// Never carries credentials.
type PublicUser struct {
	ID             primitive.ObjectID `bson:"_id" json:"_id"`
	Name           string             `bson:"name" json:"name"`
	Username       string             `bson:"username,omitempty" json:"username,omitempty"`
	ProfilePicture string             `bson:"profilePicture,omitempty" json:"profilePicture,omitempty"`
	IsSeller       bool               `bson:"isSeller,omitempty" json:"isSeller,omitempty"`
	SellerProfile  *SellerProfile     `bson:"sellerProfile,omitempty" json:"sellerProfile,omitempty"`
}
