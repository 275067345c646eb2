package handlers

import (
	"net/http"
	"time"

	"github.com/Sahareior/Shopee-Backend/database"
	"github.com/Sahareior/Shopee-Backend/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type AddToWishlistRequest struct {
	Product string `json:"product" binding:"required"`
}

func AddToWishlist(c *gin.Context) {
	var req AddToWishlistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "product is required"})
		return
	}

	userID, ok := principalID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Invalid user ID"})
		return
	}
	productID, err := primitive.ObjectIDFromHex(req.Product)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid product ID"})
		return
	}

	ctx, cancel := dbCtx()
	defer cancel()

	item := models.WishlistItem{
		ID:        primitive.NewObjectID(),
		User:      userID,
		Product:   productID,
		CreatedAt: time.Now(),
	}

	if _, err := database.Wishlists.InsertOne(ctx, item); err != nil {
		if isDupKey(err) {
			c.JSON(http.StatusConflict, gin.H{"success": false, "error": "Product is already in the wishlist"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to add to wishlist"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "Added to wishlist", "data": item})
}

func GetWishlist(c *gin.Context) {
	userID, ok := principalID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Invalid user ID"})
		return
	}

	ctx, cancel := dbCtx()
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "user", Value: userID}}}},
		{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}}}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: "products"},
			{Key: "localField", Value: "product"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "product"},
		}}},
		{{Key: "$unwind", Value: bson.D{
			{Key: "path", Value: "$product"},
			{Key: "preserveNullAndEmptyArrays", Value: true},
		}}},
	}

	cursor, err := database.Wishlists.Aggregate(ctx, pipeline)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch wishlist"})
		return
	}
	defer cursor.Close(ctx)

	items := []bson.M{}
	if err := cursor.All(ctx, &items); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to decode wishlist"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(items), "data": items})
}

func RemoveFromWishlist(c *gin.Context) {
	itemID, err := primitive.ObjectIDFromHex(c.Param("itemId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid wishlist item ID"})
		return
	}

	userID, ok := principalID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Invalid user ID"})
		return
	}

	ctx, cancel := dbCtx()
	defer cancel()

	result, err := database.Wishlists.DeleteOne(ctx, bson.M{"_id": itemID, "user": userID})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to remove from wishlist"})
		return
	}
	if result.DeletedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Wishlist item not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Removed from wishlist"})
}
