package handlers

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// dbCtx gives every handler the same per-operation deadline.
func dbCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 10*time.Second)
}

// principalID reads the authenticated user id set by the JWT middleware.
func principalID(c *gin.Context) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.GetString("userId"))
	if err != nil {
		return primitive.NilObjectID, false
	}
	return id, true
}

// isDupKey reports whether err is a unique-index violation.
func isDupKey(err error) bool {
	return mongo.IsDuplicateKeyError(err)
}
