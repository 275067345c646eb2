package handlers

import (
	"net/http"
	"time"

	"github.com/Sahareior/Shopee-Backend/database"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type RecordRecentViewRequest struct {
	ProductID string `json:"productId" binding:"required"`
}

// RecordRecentView upserts a (user, product) view, refreshing the
// timestamp when the pair already exists so repeat views float to the top.
func RecordRecentView(c *gin.Context) {
	var req RecordRecentViewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "productId is required"})
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

	now := time.Now()
	_, err = database.RecentViews.UpdateOne(ctx,
		bson.M{"user": userID, "productId": productID},
		bson.M{
			"$set":         bson.M{"viewedAt": now},
			"$setOnInsert": bson.M{"user": userID, "productId": productID, "createdAt": now},
		},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to record view"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "View recorded"})
}

func recentViewPipeline(match bson.D) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$sort", Value: bson.D{{Key: "viewedAt", Value: -1}}}},
		{{Key: "$limit", Value: 50}},
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
	}
}

func GetRecentViews(c *gin.Context) {
	ctx, cancel := dbCtx()
	defer cancel()

	cursor, err := database.RecentViews.Aggregate(ctx, recentViewPipeline(bson.D{}))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch recent views"})
		return
	}
	defer cursor.Close(ctx)

	views := []bson.M{}
	if err := cursor.All(ctx, &views); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to decode recent views"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(views), "data": views})
}

func GetUserRecentViews(c *gin.Context) {
	userID, err := primitive.ObjectIDFromHex(c.Param("userId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid user ID"})
		return
	}

	ctx, cancel := dbCtx()
	defer cancel()

	cursor, err := database.RecentViews.Aggregate(ctx, recentViewPipeline(bson.D{{Key: "user", Value: userID}}))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch recent views"})
		return
	}
	defer cursor.Close(ctx)

	views := []bson.M{}
	if err := cursor.All(ctx, &views); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to decode recent views"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(views), "data": views})
}
