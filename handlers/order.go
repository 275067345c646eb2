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

type CreateOrderRequest struct {
	ProductID  string  `json:"productId" binding:"required"`
	Quantity   int     `json:"quantity" binding:"required,min=1"`
	Category   string  `json:"category"`
	TotalPrice float64 `json:"totalPrice"`
}

func CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "productId and quantity are required"})
		return
	}

	userID, ok := principalID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Invalid user ID"})
		return
	}
	productID, err := primitive.ObjectIDFromHex(req.ProductID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid product ID"})
		return
	}

	ctx, cancel := dbCtx()
	defer cancel()

	// Reject orders against products that do not exist.
	var product models.Product
	if err := database.Products.FindOne(ctx, bson.M{"_id": productID}).Decode(&product); err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to look up product"})
		return
	}

	totalPrice := req.TotalPrice
	if totalPrice == 0 {
		totalPrice = product.Price * float64(req.Quantity)
	}
	category := product.Category
	if req.Category != "" {
		category, err = primitive.ObjectIDFromHex(req.Category)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid category ID"})
			return
		}
	}

	order := models.Order{
		ID:         primitive.NewObjectID(),
		ProductID:  productID,
		Quantity:   req.Quantity,
		UserInfo:   userID,
		Category:   category,
		TotalPrice: totalPrice,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}

	if _, err := database.Orders.InsertOne(ctx, order); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to create order"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "Order placed", "data": order})
}

// GetOrders lists orders newest-first, optionally scoped to one user via
// the userId query parameter. Product and buyer documents are joined in,
// with credentials stripped from the buyer.
func GetOrders(c *gin.Context) {
	match := bson.D{}
	if raw := c.Query("userId"); raw != "" {
		userID, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid user ID"})
			return
		}
		match = append(match, bson.E{Key: "userInfo", Value: userID})
	}

	ctx, cancel := dbCtx()
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}}}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: "products"},
			{Key: "localField", Value: "productId"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "product"},
		}}},
		{{Key: "$unwind", Value: bson.D{
			{Key: "path", Value: "$product"},
			{Key: "preserveNullAndEmptyArrays", Value: true},
		}}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: "users"},
			{Key: "localField", Value: "userInfo"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "buyer"},
		}}},
		{{Key: "$unwind", Value: bson.D{
			{Key: "path", Value: "$buyer"},
			{Key: "preserveNullAndEmptyArrays", Value: true},
		}}},
		{{Key: "$project", Value: bson.D{
			{Key: "buyer.password", Value: 0},
		}}},
	}

	cursor, err := database.Orders.Aggregate(ctx, pipeline)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch orders"})
		return
	}
	defer cursor.Close(ctx)

	orders := []bson.M{}
	if err := cursor.All(ctx, &orders); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to decode orders"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(orders), "data": orders})
}
