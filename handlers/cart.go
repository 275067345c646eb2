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

type AddToCartRequest struct {
	Product  string `json:"product" binding:"required"`
	Quantity int    `json:"quantity"`
}

type UpdateCartRequest struct {
	Quantity int `json:"quantity" binding:"required,min=1"`
}

func AddToCart(c *gin.Context) {
	var req AddToCartRequest
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
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	if req.Quantity < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Quantity must be at least 1"})
		return
	}

	ctx, cancel := dbCtx()
	defer cancel()

	item := models.CartItem{
		ID:        primitive.NewObjectID(),
		User:      userID,
		Product:   productID,
		Quantity:  req.Quantity,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if _, err := database.CartItems.InsertOne(ctx, item); err != nil {
		if isDupKey(err) {
			c.JSON(http.StatusConflict, gin.H{"success": false, "error": "Product is already in the cart"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to add to cart"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "Item added to cart", "data": item})
}

// cartLookupPipeline joins cart lines with their product documents.
func cartLookupPipeline(userID primitive.ObjectID) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "user", Value: userID}}}},
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
		{{Key: "$project", Value: bson.D{
			{Key: "user", Value: 1},
			{Key: "quantity", Value: 1},
			{Key: "createdAt", Value: 1},
			{Key: "updatedAt", Value: 1},
			{Key: "product._id", Value: 1},
			{Key: "product.name", Value: 1},
			{Key: "product.price", Value: 1},
			{Key: "product.images", Value: 1},
		}}},
	}
}

func GetCart(c *gin.Context) {
	userID, ok := principalID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Invalid user ID"})
		return
	}

	ctx, cancel := dbCtx()
	defer cancel()

	cursor, err := database.CartItems.Aggregate(ctx, cartLookupPipeline(userID))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch cart"})
		return
	}
	defer cursor.Close(ctx)

	items := []bson.M{}
	if err := cursor.All(ctx, &items); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to decode cart"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": items})
}

// GetCartSummary totals the cart from the joined product prices.
func GetCartSummary(c *gin.Context) {
	userID, ok := principalID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Invalid user ID"})
		return
	}

	ctx, cancel := dbCtx()
	defer cancel()

	cursor, err := database.CartItems.Aggregate(ctx, cartLookupPipeline(userID))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch cart"})
		return
	}
	defer cursor.Close(ctx)

	var lines []struct {
		Quantity int `bson:"quantity"`
		Product  *struct {
			ID    primitive.ObjectID `bson:"_id"`
			Name  string             `bson:"name"`
			Price float64            `bson:"price"`
		} `bson:"product"`
	}
	if err := cursor.All(ctx, &lines); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to decode cart"})
		return
	}

	totalItems := 0
	totalPrice := 0.0
	items := make([]gin.H, 0, len(lines))
	for _, line := range lines {
		itemTotal := 0.0
		entry := gin.H{"quantity": line.Quantity}
		if line.Product != nil {
			itemTotal = float64(line.Quantity) * line.Product.Price
			entry["productId"] = line.Product.ID.Hex()
			entry["productName"] = line.Product.Name
			entry["price"] = line.Product.Price
		}
		entry["itemTotal"] = itemTotal
		totalItems += line.Quantity
		totalPrice += itemTotal
		items = append(items, entry)
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"totalItems": totalItems,
			"totalPrice": totalPrice,
			"items":      items,
		},
	})
}

func UpdateCartItem(c *gin.Context) {
	itemID, err := primitive.ObjectIDFromHex(c.Param("itemId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid cart item ID"})
		return
	}

	var req UpdateCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Quantity must be a number and at least 1"})
		return
	}

	userID, ok := principalID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Invalid user ID"})
		return
	}

	ctx, cancel := dbCtx()
	defer cancel()

	result, err := database.CartItems.UpdateOne(ctx,
		bson.M{"_id": itemID, "user": userID},
		bson.M{"$set": bson.M{"quantity": req.Quantity, "updatedAt": time.Now()}},
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to update cart"})
		return
	}
	if result.MatchedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Cart item not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Cart updated"})
}

func RemoveCartItem(c *gin.Context) {
	itemID, err := primitive.ObjectIDFromHex(c.Param("itemId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid cart item ID"})
		return
	}

	userID, ok := principalID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Invalid user ID"})
		return
	}

	ctx, cancel := dbCtx()
	defer cancel()

	result, err := database.CartItems.DeleteOne(ctx, bson.M{"_id": itemID, "user": userID})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to remove cart item"})
		return
	}
	if result.DeletedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Cart item not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Item removed from cart successfully"})
}

func ClearCart(c *gin.Context) {
	userID, ok := principalID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Invalid user ID"})
		return
	}

	ctx, cancel := dbCtx()
	defer cancel()

	result, err := database.CartItems.DeleteMany(ctx, bson.M{"user": userID})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to clear cart"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"message":      "Cart cleared successfully",
		"deletedCount": result.DeletedCount,
	})
}
