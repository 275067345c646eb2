package database

import (
	"context"
	"log"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var Client *mongo.Client
var Users *mongo.Collection
var Products *mongo.Collection
var Categories *mongo.Collection
var CartItems *mongo.Collection
var Wishlists *mongo.Collection
var Orders *mongo.Collection
var RecentViews *mongo.Collection
var Posts *mongo.Collection
var Stories *mongo.Collection

func ConnectDB() error {
	uri := os.Getenv("MONGODB_URI")
	if uri == "" {
		log.Println("MONGODB_URI not set, using default localhost")
		uri = "mongodb://127.0.0.1:27017"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	var err error
	Client, err = mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return err
	}

	if err := Client.Ping(ctx, nil); err != nil {
		return err
	}

	db := Client.Database("shopee")
	Users = db.Collection("users")
	Products = db.Collection("products")
	Categories = db.Collection("categories")
	CartItems = db.Collection("cartitems")
	Wishlists = db.Collection("wishlists")
	Orders = db.Collection("orders")
	RecentViews = db.Collection("recentviews")
	Posts = db.Collection("posts")
	Stories = db.Collection("stories")

	log.Println("Connected to MongoDB successfully")
	return nil
}

// EnsureIndexes creates the unique and TTL indexes the handlers rely on.
// Safe to call on every boot; Mongo treats an existing identical index as a
// no-op.
func EnsureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if _, err := Users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return err
	}

	if _, err := Categories.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "slug", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return err
	}

	// One cart/wishlist row per (user, product).
	for _, coll := range []*mongo.Collection{CartItems, Wishlists} {
		if _, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys:    bson.D{{Key: "user", Value: 1}, {Key: "product", Value: 1}},
			Options: options.Index().SetUnique(true),
		}); err != nil {
			return err
		}
	}
	if _, err := RecentViews.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user", Value: 1}, {Key: "productId", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return err
	}

	if _, err := Posts.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "author", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "audience", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "hashtags", Value: 1}, {Key: "createdAt", Value: -1}}},
	}); err != nil {
		return err
	}

	// Backstop for the cleanup sweeper: Mongo evicts expired stories on its
	// own schedule.
	if _, err := Stories.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "expiresAt", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(0),
	}); err != nil {
		return err
	}

	return nil
}

func DisconnectDB() error {
	if Client == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := Client.Disconnect(ctx); err != nil {
		return err
	}

	log.Println("Disconnected from MongoDB")
	return nil
}
