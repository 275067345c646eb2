package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/Sahareior/Shopee-Backend/database"
	"github.com/Sahareior/Shopee-Backend/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func AddProduct(c *gin.Context) {
	var product models.Product
	if err := c.ShouldBindJSON(&product); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}
	if product.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Product name is required"})
		return
	}

	product.ID = primitive.NewObjectID()
	if product.Status == "" {
		product.Status = "draft"
	}
	product.CreatedAt = time.Now()
	product.UpdatedAt = product.CreatedAt

	ctx, cancel := dbCtx()
	defer cancel()

	if _, err := database.Products.InsertOne(ctx, product); err != nil {
		log.Printf("AddProduct error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to create product"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "data": product})
}

func GetAllProducts(c *gin.Context) {
	ctx, cancel := dbCtx()
	defer cancel()

	cursor, err := database.Products.Find(ctx, bson.M{})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch products"})
		return
	}
	defer cursor.Close(ctx)

	products := []models.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to decode products"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": products})
}

func GetProductByID(c *gin.Context) {
	productID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid product ID"})
		return
	}

	ctx, cancel := dbCtx()
	defer cancel()

	var product models.Product
	err = database.Products.FindOne(ctx, bson.M{"_id": productID}).Decode(&product)
	if err == mongo.ErrNoDocuments {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Product not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch product"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": product})
}

// GetProductsByLabel lists products carrying a label such as "featured" or
// "flash-sale".
func GetProductsByLabel(c *gin.Context) {
	label := c.Param("label")

	ctx, cancel := dbCtx()
	defer cancel()

	cursor, err := database.Products.Find(ctx, bson.M{"labels": label})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch products"})
		return
	}
	defer cursor.Close(ctx)

	products := []models.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to decode products"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": products})
}

// FilterProducts runs the typed multi-field catalog filter.
func FilterProducts(c *gin.Context) {
	filter, err := ParseProductFilter(c.Request.URL.Query())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	ctx, cancel := dbCtx()
	defer cancel()

	findOpts := options.Find().
		SetSkip(filter.Skip()).
		SetLimit(int64(filter.Limit))
	if sort := filter.Sort(); sort != nil {
		findOpts.SetSort(sort)
	}

	cursor, err := database.Products.Find(ctx, filter.Query(), findOpts)
	if err != nil {
		log.Printf("FilterProducts error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to filter products"})
		return
	}
	defer cursor.Close(ctx)

	products := []models.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to decode products"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": products})
}
