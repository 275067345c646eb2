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

type AddCategoryRequest struct {
	Name        string   `json:"name" binding:"required"`
	Slug        string   `json:"slug" binding:"required"`
	Description string   `json:"description"`
	Images      []string `json:"images"`
	Parent      string   `json:"parentCategory"`
	Order       int      `json:"order"`
}

func AddCategory(c *gin.Context) {
	var req AddCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Category name and slug are required"})
		return
	}

	ctx, cancel := dbCtx()
	defer cancel()

	category := models.Category{
		ID:          primitive.NewObjectID(),
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		Images:      req.Images,
		IsActive:    true,
		Order:       req.Order,
		CreatedAt:   time.Now(),
	}
	if req.Parent != "" {
		parentID, err := primitive.ObjectIDFromHex(req.Parent)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid parent category ID"})
			return
		}
		category.ParentCategory = parentID
	}
	models.NormalizeCategory(&category)
	category.UpdatedAt = category.CreatedAt

	count, err := database.Categories.CountDocuments(ctx, bson.M{"slug": category.Slug})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Database error"})
		return
	}
	if count > 0 {
		c.JSON(http.StatusConflict, gin.H{"success": false, "error": "Category with this slug already exists"})
		return
	}

	if _, err := database.Categories.InsertOne(ctx, category); err != nil {
		if isDupKey(err) {
			c.JSON(http.StatusConflict, gin.H{"success": false, "error": "Category with this slug already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to create category"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Category created successfully",
		"data":    category,
	})
}

func GetCategories(c *gin.Context) {
	ctx, cancel := dbCtx()
	defer cancel()

	cursor, err := database.Categories.Find(ctx, bson.M{})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch categories"})
		return
	}
	defer cursor.Close(ctx)

	categories := []models.Category{}
	if err := cursor.All(ctx, &categories); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to decode categories"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": categories, "count": len(categories)})
}

func GetCategoryBySlug(c *gin.Context) {
	slug := c.Param("slug")

	ctx, cancel := dbCtx()
	defer cancel()

	var category models.Category
	err := database.Categories.FindOne(ctx, bson.M{"slug": slug}).Decode(&category)
	if err == mongo.ErrNoDocuments {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Category not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch category"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": category})
}
