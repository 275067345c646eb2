package handlers

import (
	"context"
	"encoding/base64"
	"errors"
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

type CreateStoryRequest struct {
	MediaData    string   `json:"mediaData" binding:"required"`
	MediaType    string   `json:"mediaType" binding:"required"`
	MimeType     string   `json:"mimeType"`
	FileName     string   `json:"fileName"`
	Caption      string   `json:"caption"`
	Duration     int      `json:"duration"`
	Visibility   string   `json:"visibility"`
	VisibleTo    []string `json:"visibleTo"`
	CloseFriends []string `json:"closeFriends"`
}

func CreateStory(c *gin.Context) {
	var req CreateStoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "mediaData and mediaType are required"})
		return
	}

	userID, ok := principalID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Invalid user ID"})
		return
	}

	if req.MediaType != "image" && req.MediaType != "video" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "mediaType must be image or video"})
		return
	}

	decodedSize := models.EstimateDecodedSize(len(req.MediaData))
	if decodedSize > models.MaxStoryBytes(req.MediaType) {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"success": false, "error": "Media exceeds the size limit"})
		return
	}
	if len(req.Caption) > models.MaxStoryCaptionLen {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Caption is too long"})
		return
	}

	visibility := req.Visibility
	if visibility == "" {
		visibility = models.StoryPublic
	}
	switch visibility {
	case models.StoryPublic, models.StoryPrivate, models.StoryCloseFriends:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid visibility"})
		return
	}

	visibleTo, err := parseObjectIDs(req.VisibleTo)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid visibleTo ID"})
		return
	}
	closeFriends, err := parseObjectIDs(req.CloseFriends)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid closeFriends ID"})
		return
	}

	now := time.Now()
	duration := models.ClampStoryDuration(req.Duration)
	story := models.Story{
		ID:            primitive.NewObjectID(),
		User:          userID,
		MediaData:     req.MediaData,
		MediaType:     req.MediaType,
		MimeType:      req.MimeType,
		FileName:      req.FileName,
		FileSize:      decodedSize,
		Caption:       req.Caption,
		DurationHours: duration,
		ExpiresAt:     now.Add(time.Duration(duration) * time.Hour),
		Visibility:    visibility,
		VisibleTo:     visibleTo,
		CloseFriends:  closeFriends,
		Views:         []models.StoryView{},
		Reactions:     []models.StoryReaction{},
		Replies:       []models.StoryReply{},
		IsActive:      true,
		CreatedAt:     now,
	}
	story.NormalizeStory(now)

	ctx, cancel := dbCtx()
	defer cancel()

	if _, err := database.Stories.InsertOne(ctx, story); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to create story"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "Story created", "data": storySummary(&story, now)})
}

// storySummary is the list shape for stories: everything but the media blob,
// plus the remaining lifetime.
func storySummary(s *models.Story, now time.Time) gin.H {
	return gin.H{
		"id":             s.ID.Hex(),
		"user":           s.User.Hex(),
		"mediaType":      s.MediaType,
		"mimeType":       s.MimeType,
		"caption":        s.Caption,
		"hashtags":       s.Hashtags,
		"duration":       s.DurationHours,
		"expiresAt":      s.ExpiresAt,
		"remainingHours": s.RemainingHours(now),
		"visibility":     s.Visibility,
		"viewCount":      s.ViewCount,
		"reactionCount":  s.ReactionCount,
		"replyCount":     s.ReplyCount,
		"createdAt":      s.CreatedAt,
	}
}

func fetchStory(ctx context.Context, storyID primitive.ObjectID) (*models.Story, error) {
	var story models.Story
	if err := database.Stories.FindOne(ctx, bson.M{"_id": storyID}).Decode(&story); err != nil {
		return nil, err
	}
	return &story, nil
}

func persistStory(ctx context.Context, story *models.Story) error {
	story.NormalizeStory(time.Now())
	_, err := database.Stories.ReplaceOne(ctx, bson.M{"_id": story.ID}, story)
	return err
}

// activeStoryFilter matches stories still alive at read time. Expiry is
// enforced here as well as by the sweeper and the TTL index.
func activeStoryFilter(now time.Time) bson.M {
	return bson.M{"isActive": true, "expiresAt": bson.M{"$gt": now}}
}

// GetStoriesFeed returns the caller's own active stories first, then stories
// from a sample of up to 15 other users, bucketed per author newest-first.
func GetStoriesFeed(c *gin.Context) {
	userID, ok := principalID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Invalid user ID"})
		return
	}

	ctx, cancel := dbCtx()
	defer cancel()

	now := time.Now()

	ownFilter := activeStoryFilter(now)
	ownFilter["user"] = userID
	ownCursor, err := database.Stories.Find(ctx, ownFilter,
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch stories"})
		return
	}
	var own []models.Story
	if err := ownCursor.All(ctx, &own); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to decode stories"})
		return
	}

	ownBucket := gin.H{
		"user":        userID.Hex(),
		"isOwn":       true,
		"canAddStory": true,
		"stories":     summarizeStories(own, now),
	}

	// Sample up to 15 fellow authors with live stories the caller may view.
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{
			{Key: "isActive", Value: true},
			{Key: "expiresAt", Value: bson.D{{Key: "$gt", Value: now}}},
			{Key: "user", Value: bson.D{{Key: "$ne", Value: userID}}},
			{Key: "$or", Value: bson.A{
				bson.D{{Key: "visibility", Value: models.StoryPublic}},
				bson.D{{Key: "visibility", Value: models.StoryPrivate}, {Key: "visibleTo", Value: userID}},
				bson.D{{Key: "visibility", Value: models.StoryCloseFriends}, {Key: "closeFriends", Value: userID}},
			}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$user"},
			{Key: "stories", Value: bson.D{{Key: "$push", Value: "$$ROOT"}}},
		}}},
		{{Key: "$sample", Value: bson.D{{Key: "size", Value: 15}}}},
	}

	cursor, err := database.Stories.Aggregate(ctx, pipeline)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch stories"})
		return
	}
	defer cursor.Close(ctx)

	var groups []struct {
		User    primitive.ObjectID `bson:"_id"`
		Stories []models.Story     `bson:"stories"`
	}
	if err := cursor.All(ctx, &groups); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to decode stories"})
		return
	}

	buckets := []gin.H{ownBucket}
	for _, g := range groups {
		buckets = append(buckets, gin.H{
			"user":    g.User.Hex(),
			"isOwn":   false,
			"stories": summarizeStories(g.Stories, now),
		})
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": buckets})
}

func summarizeStories(stories []models.Story, now time.Time) []gin.H {
	out := make([]gin.H, 0, len(stories))
	for i := range stories {
		out = append(out, storySummary(&stories[i], now))
	}
	return out
}

// GetStoryMedia serves the decoded media bytes. Expired stories return 410
// for everyone but the owner.
func GetStoryMedia(c *gin.Context) {
	storyID, err := primitive.ObjectIDFromHex(c.Param("storyid"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid story ID"})
		return
	}
	viewerID, _ := principalID(c)

	ctx, cancel := dbCtx()
	defer cancel()

	story, err := fetchStory(ctx, storyID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Story not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch story"})
		return
	}

	now := time.Now()
	if viewerID != story.User && story.IsExpired(now) {
		c.JSON(http.StatusGone, gin.H{"success": false, "error": "Story has expired"})
		return
	}
	if !story.CanUserView(viewerID, now) {
		c.JSON(http.StatusForbidden, gin.H{"success": false, "error": "You cannot view this story"})
		return
	}

	data, err := base64.StdEncoding.DecodeString(story.MediaData)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Stored media is corrupt"})
		return
	}

	// View tracking happens off the serving path.
	if viewerID != story.User {
		go func(id primitive.ObjectID, viewer primitive.ObjectID) {
			bgCtx, bgCancel := dbCtx()
			defer bgCancel()
			recordStoryView(bgCtx, id, viewer)
		}(story.ID, viewerID)
	}

	c.Data(http.StatusOK, story.MimeType, data)
}

func recordStoryView(ctx context.Context, storyID, viewerID primitive.ObjectID) {
	story, err := fetchStory(ctx, storyID)
	if err != nil {
		log.Printf("story view fetch failed for %s: %v", storyID.Hex(), err)
		return
	}
	if !story.AddView(viewerID, time.Now()) {
		return
	}
	if err := persistStory(ctx, story); err != nil {
		log.Printf("story view update failed for %s: %v", storyID.Hex(), err)
	}
}

func ViewStory(c *gin.Context) {
	storyID, err := primitive.ObjectIDFromHex(c.Param("storyid"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid story ID"})
		return
	}
	userID, ok := principalID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Invalid user ID"})
		return
	}

	ctx, cancel := dbCtx()
	defer cancel()

	story, err := fetchStory(ctx, storyID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Story not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch story"})
		return
	}

	now := time.Now()
	if !story.CanUserView(userID, now) {
		c.JSON(http.StatusForbidden, gin.H{"success": false, "error": "You cannot view this story"})
		return
	}

	if story.AddView(userID, now) {
		if err := persistStory(ctx, story); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to record view"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"viewCount": story.ViewCount}})
}

type StoryReactRequest struct {
	Type    string `json:"type" binding:"required"`
	Message string `json:"message"`
}

func ReactToStory(c *gin.Context) {
	storyID, err := primitive.ObjectIDFromHex(c.Param("storyid"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid story ID"})
		return
	}
	userID, ok := principalID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Invalid user ID"})
		return
	}

	var req StoryReactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "type is required"})
		return
	}

	ctx, cancel := dbCtx()
	defer cancel()

	story, err := fetchStory(ctx, storyID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Story not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch story"})
		return
	}

	now := time.Now()
	if !story.CanUserView(userID, now) {
		c.JSON(http.StatusForbidden, gin.H{"success": false, "error": "You cannot react to this story"})
		return
	}

	story.SetReaction(userID, req.Type, req.Message, now)
	if err := persistStory(ctx, story); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to save reaction"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"reactionCount": story.ReactionCount}})
}

type StoryReplyRequest struct {
	Text string `json:"text" binding:"required"`
}

func ReplyToStory(c *gin.Context) {
	storyID, err := primitive.ObjectIDFromHex(c.Param("storyid"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid story ID"})
		return
	}
	userID, ok := principalID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Invalid user ID"})
		return
	}

	var req StoryReplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "text is required"})
		return
	}

	ctx, cancel := dbCtx()
	defer cancel()

	story, err := fetchStory(ctx, storyID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Story not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch story"})
		return
	}

	now := time.Now()
	if !story.CanUserView(userID, now) {
		c.JSON(http.StatusForbidden, gin.H{"success": false, "error": "You cannot reply to this story"})
		return
	}

	story.AddReply(userID, req.Text, now)
	if err := persistStory(ctx, story); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to save reply"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"replyCount": story.ReplyCount}})
}

// GetUserStories lists one user's active stories the caller may view.
func GetUserStories(c *gin.Context) {
	ownerID, err := primitive.ObjectIDFromHex(c.Param("userId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid user ID"})
		return
	}
	viewerID, _ := principalID(c)

	ctx, cancel := dbCtx()
	defer cancel()

	now := time.Now()
	filter := bson.M{"user": ownerID}
	if viewerID != ownerID {
		for k, v := range activeStoryFilter(now) {
			filter[k] = v
		}
	}

	cursor, err := database.Stories.Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch stories"})
		return
	}
	var stories []models.Story
	if err := cursor.All(ctx, &stories); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to decode stories"})
		return
	}

	visible := make([]gin.H, 0, len(stories))
	for i := range stories {
		if stories[i].CanUserView(viewerID, now) {
			visible = append(visible, storySummary(&stories[i], now))
		}
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(visible), "data": visible})
}

// DeleteStory deactivates the story; the sweeper removes the document later.
func DeleteStory(c *gin.Context) {
	storyID, err := primitive.ObjectIDFromHex(c.Param("storyid"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid story ID"})
		return
	}
	userID, ok := principalID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Invalid user ID"})
		return
	}

	ctx, cancel := dbCtx()
	defer cancel()

	result, err := database.Stories.UpdateOne(ctx,
		bson.M{"_id": storyID, "user": userID},
		bson.M{"$set": bson.M{"isActive": false, "updatedAt": time.Now()}},
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to delete story"})
		return
	}
	if result.MatchedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Story not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Story deleted"})
}
