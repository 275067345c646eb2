package handlers

import (
	"context"
	"errors"
	"log"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Sahareior/Shopee-Backend/database"
	"github.com/Sahareior/Shopee-Backend/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type CreatePostRequest struct {
	Content      string             `json:"content"`
	Media        []models.PostMedia `json:"media"`
	SharedPost   string             `json:"sharedPost"`
	Audience     string             `json:"audience"`
	Hashtags     []string           `json:"hashtags"`
	Mentions     []string           `json:"mentions"`
	TaggedUsers  []string           `json:"taggedUsers"`
	Feeling      string             `json:"feeling"`
	Poll         *models.Poll       `json:"poll"`
	Event        *models.Event      `json:"event"`
	ScheduledFor *time.Time         `json:"scheduledFor"`
}

var validAudiences = map[string]bool{"public": true, "followers": true, "private": true}

func parseObjectIDs(hexes []string) ([]primitive.ObjectID, error) {
	ids := make([]primitive.ObjectID, 0, len(hexes))
	for _, h := range hexes {
		id, err := primitive.ObjectIDFromHex(h)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func CreatePost(c *gin.Context) {
	var req CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request body"})
		return
	}

	userID, ok := principalID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Invalid user ID"})
		return
	}

	if req.Content == "" && len(req.Media) == 0 && req.SharedPost == "" && req.Poll == nil && req.Event == nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Post must have content, media, a poll, or an event"})
		return
	}

	audience := req.Audience
	if audience == "" {
		audience = "public"
	}
	if !validAudiences[audience] {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid audience"})
		return
	}

	now := time.Now()
	post := models.Post{
		ID:        primitive.NewObjectID(),
		Author:    userID,
		Content:   req.Content,
		Media:     req.Media,
		Audience:  audience,
		Hashtags:  req.Hashtags,
		Feeling:   req.Feeling,
		Poll:      req.Poll,
		Event:     req.Event,
		CreatedAt: now,
	}

	if req.SharedPost != "" {
		sharedID, err := primitive.ObjectIDFromHex(req.SharedPost)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid shared post ID"})
			return
		}
		post.SharedPost = sharedID
		post.SharedContent = req.Content
	}

	var err error
	if post.Mentions, err = parseObjectIDs(req.Mentions); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid mention ID"})
		return
	}
	if post.TaggedUsers, err = parseObjectIDs(req.TaggedUsers); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid tagged user ID"})
		return
	}

	if post.Poll != nil {
		if post.Poll.Question == "" || len(post.Poll.Options) < 2 {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Poll needs a question and at least two options"})
			return
		}
		post.Poll.IsActive = true
		for i := range post.Poll.Options {
			post.Poll.Options[i].Votes = 0
			post.Poll.Options[i].Voters = []primitive.ObjectID{}
		}
	}
	if post.Event != nil {
		if post.Event.Title == "" {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Event needs a title"})
			return
		}
		post.Event.IsActive = true
		post.Event.Attendees = []primitive.ObjectID{}
	}

	if req.ScheduledFor != nil && req.ScheduledFor.After(now) {
		post.ScheduledFor = req.ScheduledFor
		post.IsScheduled = true
	}

	post.NormalizePost(now)

	ctx, cancel := dbCtx()
	defer cancel()

	if _, err := database.Posts.InsertOne(ctx, post); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to create post"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "Post created", "data": post})
}

// paginationMeta is the page envelope attached to list responses.
func paginationMeta(page, limit int, total int64) gin.H {
	totalPages := int(math.Ceil(float64(total) / float64(limit)))
	return gin.H{
		"currentPage": page,
		"totalPages":  totalPages,
		"totalPosts":  total,
		"hasNextPage": int64(page*limit) < total,
		"hasPrevPage": page > 1,
	}
}

func pageParams(c *gin.Context, defaultLimit int) (page, limit int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultLimit)))
	if limit < 1 || limit > 100 {
		limit = defaultLimit
	}
	return page, limit
}

// publishedClause admits posts that were never scheduled alongside ones
// whose scheduled time has passed. A once-scheduled post may keep
// isScheduled=true in storage until its next write, so queries cannot rely
// on the flag alone.
func publishedClause(now time.Time) []bson.M {
	return []bson.M{
		{"isScheduled": false},
		{"scheduledFor": bson.M{"$lte": now}},
	}
}

// buildNewsFeedQuery selects posts visible to the viewer: nothing deleted or
// still scheduled, anything from the viewer's circle (followed authors plus
// themself) whose audience admits followers, and public posts from strangers.
func buildNewsFeedQuery(viewerID primitive.ObjectID, following []primitive.ObjectID, now time.Time) bson.M {
	circle := append(append([]primitive.ObjectID{}, following...), viewerID)
	return bson.M{
		"isDeleted": false,
		"$and": []bson.M{
			{"$or": publishedClause(now)},
			{"$or": []bson.M{
				{"author": bson.M{"$in": circle}, "audience": bson.M{"$in": []string{"public", "followers"}}},
				{"author": viewerID},
				{"audience": "public"},
			}},
		},
	}
}

// annotatePost wraps a post with viewer-specific flags.
func annotatePost(post *models.Post, viewerID primitive.ObjectID) gin.H {
	reaction := post.Reactions.FindUserReaction(viewerID)
	return gin.H{
		"post":         post,
		"userLiked":    reaction == models.ReactionLike,
		"userReaction": reaction,
	}
}

func fetchPost(ctx context.Context, postID primitive.ObjectID) (*models.Post, error) {
	var post models.Post
	err := database.Posts.FindOne(ctx, bson.M{"_id": postID, "isDeleted": false}).Decode(&post)
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func persistPost(ctx context.Context, post *models.Post) error {
	post.NormalizePost(time.Now())
	_, err := database.Posts.ReplaceOne(ctx, bson.M{"_id": post.ID}, post)
	return err
}

func GetNewsFeed(c *gin.Context) {
	userID, ok := principalID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Invalid user ID"})
		return
	}
	page, limit := pageParams(c, 10)

	ctx, cancel := dbCtx()
	defer cancel()

	var viewer models.User
	if err := database.Users.FindOne(ctx, bson.M{"_id": userID}).Decode(&viewer); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to load user"})
		return
	}

	query := buildNewsFeedQuery(userID, viewer.Following, time.Now())

	total, err := database.Posts.CountDocuments(ctx, query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch news feed"})
		return
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))
	cursor, err := database.Posts.Find(ctx, query, opts)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch news feed"})
		return
	}
	defer cursor.Close(ctx)

	var posts []models.Post
	if err := cursor.All(ctx, &posts); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to decode news feed"})
		return
	}

	annotated := make([]gin.H, 0, len(posts))
	for i := range posts {
		annotated = append(annotated, annotatePost(&posts[i], userID))
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"data":       annotated,
		"pagination": paginationMeta(page, limit, total),
	})
}

func GetUserPosts(c *gin.Context) {
	authorID, err := primitive.ObjectIDFromHex(c.Param("userId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid user ID"})
		return
	}
	viewerID, _ := principalID(c)
	page, limit := pageParams(c, 10)

	query := bson.M{"author": authorID, "isDeleted": false}
	if viewerID != authorID {
		// Scheduled drafts stay invisible to everyone but their author.
		query["$or"] = publishedClause(time.Now())
		query["audience"] = bson.M{"$ne": "private"}
	}

	ctx, cancel := dbCtx()
	defer cancel()

	total, err := database.Posts.CountDocuments(ctx, query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch posts"})
		return
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "isPinned", Value: -1}, {Key: "createdAt", Value: -1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))
	cursor, err := database.Posts.Find(ctx, query, opts)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch posts"})
		return
	}
	defer cursor.Close(ctx)

	var posts []models.Post
	if err := cursor.All(ctx, &posts); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to decode posts"})
		return
	}

	annotated := make([]gin.H, 0, len(posts))
	for i := range posts {
		annotated = append(annotated, annotatePost(&posts[i], viewerID))
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"data":       annotated,
		"pagination": paginationMeta(page, limit, total),
	})
}

// trendingPipeline ranks public posts from the lookback window by a weighted
// engagement score and joins the author in, minus credential fields.
func trendingPipeline(limit, days int, now time.Time) mongo.Pipeline {
	since := now.Add(-time.Duration(days) * 24 * time.Hour)
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.D{
			{Key: "isDeleted", Value: false},
			{Key: "audience", Value: "public"},
			{Key: "createdAt", Value: bson.D{{Key: "$gte", Value: since}}},
			{Key: "$or", Value: publishedClause(now)},
		}}},
		{{Key: "$addFields", Value: bson.D{
			{Key: "engagementScore", Value: bson.D{{Key: "$add", Value: bson.A{
				bson.D{{Key: "$multiply", Value: bson.A{"$likeCount", 1}}},
				bson.D{{Key: "$multiply", Value: bson.A{"$commentCount", 3}}},
				bson.D{{Key: "$multiply", Value: bson.A{"$shareCount", 5}}},
				bson.D{{Key: "$multiply", Value: bson.A{"$savedCount", 2}}},
				bson.D{{Key: "$multiply", Value: bson.A{"$totalReactions", 2}}},
				bson.D{{Key: "$multiply", Value: bson.A{"$viewCount", 0.1}}},
			}}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "engagementScore", Value: -1}, {Key: "createdAt", Value: -1}}}},
		{{Key: "$limit", Value: limit}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: "users"},
			{Key: "localField", Value: "author"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "author"},
		}}},
		{{Key: "$unwind", Value: bson.D{
			{Key: "path", Value: "$author"},
			{Key: "preserveNullAndEmptyArrays", Value: true},
		}}},
		{{Key: "$project", Value: bson.D{
			{Key: "author.password", Value: 0},
			{Key: "author.email", Value: 0},
		}}},
	}
}

// GetTrendingPosts ranks recent public posts by engagement. Both knobs of the
// ranking are client-tunable: result size via limit, lookback via days.
func GetTrendingPosts(c *gin.Context) {
	_, limit := pageParams(c, 10)
	days, err := strconv.Atoi(c.DefaultQuery("days", "7"))
	if err != nil || days < 1 {
		days = 7
	}

	ctx, cancel := dbCtx()
	defer cancel()

	cursor, err := database.Posts.Aggregate(ctx, trendingPipeline(limit, days, time.Now()))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch trending posts"})
		return
	}
	defer cursor.Close(ctx)

	posts := []bson.M{}
	if err := cursor.All(ctx, &posts); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to decode trending posts"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": posts})
}

func GetPostByID(c *gin.Context) {
	postID, err := primitive.ObjectIDFromHex(c.Param("postId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid post ID"})
		return
	}
	viewerID, _ := principalID(c)

	ctx, cancel := dbCtx()
	defer cancel()

	post, err := fetchPost(ctx, postID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Post not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch post"})
		return
	}

	if post.Author != viewerID {
		if post.Audience == "private" {
			c.JSON(http.StatusForbidden, gin.H{"success": false, "error": "This post is private"})
			return
		}
		if post.IsScheduled && post.ScheduledFor != nil && post.ScheduledFor.After(time.Now()) {
			c.JSON(http.StatusForbidden, gin.H{"success": false, "error": "This post is not published yet"})
			return
		}

		// View tracking must not slow the read down.
		go func(id primitive.ObjectID) {
			bgCtx, bgCancel := dbCtx()
			defer bgCancel()
			if _, err := database.Posts.UpdateOne(bgCtx, bson.M{"_id": id}, bson.M{"$inc": bson.M{"viewCount": 1}}); err != nil {
				log.Printf("view count update failed for post %s: %v", id.Hex(), err)
			}
		}(post.ID)
	}

	payload := annotatePost(post, viewerID)
	var author models.PublicUser
	if err := database.Users.FindOne(ctx, bson.M{"_id": post.Author}).Decode(&author); err == nil {
		payload["author"] = author
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": payload})
}

type ReactRequest struct {
	Type string `json:"type"`
}

// ReactToPost sets the caller's reaction. An empty or "none" type clears it.
func ReactToPost(c *gin.Context) {
	postID, err := primitive.ObjectIDFromHex(c.Param("postId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid post ID"})
		return
	}
	userID, ok := principalID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Invalid user ID"})
		return
	}

	var req ReactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request body"})
		return
	}

	ctx, cancel := dbCtx()
	defer cancel()

	post, err := fetchPost(ctx, postID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Post not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch post"})
		return
	}

	if req.Type == "" || req.Type == "none" {
		post.RemoveReaction(userID)
	} else if err := post.ApplyReaction(userID, req.Type); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Unknown reaction type"})
		return
	}

	if err := persistPost(ctx, post); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to save reaction"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{
		"reactionCounts": post.ReactionCounts,
		"totalReactions": post.TotalReactions,
		"userReaction":   post.Reactions.FindUserReaction(userID),
	}})
}

type VoteRequest struct {
	OptionIndex *int `json:"optionIndex" binding:"required"`
}

func VoteInPoll(c *gin.Context) {
	postID, err := primitive.ObjectIDFromHex(c.Param("postId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid post ID"})
		return
	}
	userID, ok := principalID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Invalid user ID"})
		return
	}

	var req VoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "optionIndex is required"})
		return
	}

	ctx, cancel := dbCtx()
	defer cancel()

	post, err := fetchPost(ctx, postID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Post not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch post"})
		return
	}

	if err := post.VoteInPoll(userID, *req.OptionIndex); err != nil {
		switch {
		case errors.Is(err, models.ErrPollInactive):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Poll is not active"})
		case errors.Is(err, models.ErrInvalidPollOption):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid option"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to vote"})
		}
		return
	}

	if err := persistPost(ctx, post); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to save vote"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": post.Poll})
}

func RegisterForEvent(c *gin.Context) {
	postID, err := primitive.ObjectIDFromHex(c.Param("postId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid post ID"})
		return
	}
	userID, ok := principalID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Invalid user ID"})
		return
	}

	ctx, cancel := dbCtx()
	defer cancel()

	post, err := fetchPost(ctx, postID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Post not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch post"})
		return
	}

	if err := post.RegisterForEvent(userID); err != nil {
		switch {
		case errors.Is(err, models.ErrEventInactive):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Event is not active"})
		case errors.Is(err, models.ErrEventFull):
			c.JSON(http.StatusConflict, gin.H{"success": false, "error": "Event is full"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to register"})
		}
		return
	}

	if err := persistPost(ctx, post); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to save registration"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{
		"attendeeCount": len(post.Event.Attendees),
	}})
}

func SavePost(c *gin.Context) {
	postID, err := primitive.ObjectIDFromHex(c.Param("postId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid post ID"})
		return
	}
	userID, ok := principalID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Invalid user ID"})
		return
	}

	ctx, cancel := dbCtx()
	defer cancel()

	post, err := fetchPost(ctx, postID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Post not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch post"})
		return
	}

	saved := post.ToggleSave(userID)

	if err := persistPost(ctx, post); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to save post"})
		return
	}

	message := "Post saved"
	if !saved {
		message = "Post unsaved"
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": message, "data": gin.H{
		"saved":      saved,
		"savedCount": post.SavedCount,
	}})
}

func GetSavedPosts(c *gin.Context) {
	userID, ok := principalID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Invalid user ID"})
		return
	}
	page, limit := pageParams(c, 10)

	ctx, cancel := dbCtx()
	defer cancel()

	query := bson.M{"savedBy": userID, "isDeleted": false}

	total, err := database.Posts.CountDocuments(ctx, query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch saved posts"})
		return
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))
	cursor, err := database.Posts.Find(ctx, query, opts)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch saved posts"})
		return
	}
	defer cursor.Close(ctx)

	var posts []models.Post
	if err := cursor.All(ctx, &posts); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to decode saved posts"})
		return
	}

	annotated := make([]gin.H, 0, len(posts))
	for i := range posts {
		annotated = append(annotated, annotatePost(&posts[i], userID))
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"data":       annotated,
		"pagination": paginationMeta(page, limit, total),
	})
}

type SharePostRequest struct {
	Content  string `json:"content"`
	Audience string `json:"audience"`
}

// SharePost bumps the original's share count and creates a new post
// referencing it.
func SharePost(c *gin.Context) {
	postID, err := primitive.ObjectIDFromHex(c.Param("postId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid post ID"})
		return
	}
	userID, ok := principalID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Invalid user ID"})
		return
	}

	var req SharePostRequest
	_ = c.ShouldBindJSON(&req)
	audience := req.Audience
	if audience == "" {
		audience = "public"
	}
	if !validAudiences[audience] {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid audience"})
		return
	}

	ctx, cancel := dbCtx()
	defer cancel()

	original, err := fetchPost(ctx, postID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Post not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch post"})
		return
	}
	if original.Audience == "private" && original.Author != userID {
		c.JSON(http.StatusForbidden, gin.H{"success": false, "error": "This post cannot be shared"})
		return
	}

	now := time.Now()
	share := models.Post{
		ID:            primitive.NewObjectID(),
		Author:        userID,
		Content:       req.Content,
		SharedPost:    original.ID,
		SharedContent: req.Content,
		Audience:      audience,
		CreatedAt:     now,
	}
	share.NormalizePost(now)

	if _, err := database.Posts.InsertOne(ctx, share); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to share post"})
		return
	}
	if _, err := database.Posts.UpdateOne(ctx, bson.M{"_id": original.ID}, bson.M{"$inc": bson.M{"shareCount": 1}}); err != nil {
		log.Printf("share count update failed for post %s: %v", original.ID.Hex(), err)
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "Post shared", "data": share})
}

type UpdatePostRequest struct {
	Content  *string  `json:"content"`
	Audience *string  `json:"audience"`
	Feeling  *string  `json:"feeling"`
	Hashtags []string `json:"hashtags"`
}

// UpdatePost lets the author edit a limited field set. Content edits are
// versioned in editHistory.
func UpdatePost(c *gin.Context) {
	postID, err := primitive.ObjectIDFromHex(c.Param("postId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid post ID"})
		return
	}
	userID, ok := principalID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Invalid user ID"})
		return
	}

	var req UpdatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request body"})
		return
	}

	ctx, cancel := dbCtx()
	defer cancel()

	post, err := fetchPost(ctx, postID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Post not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch post"})
		return
	}
	if post.Author != userID {
		c.JSON(http.StatusForbidden, gin.H{"success": false, "error": "You can only edit your own posts"})
		return
	}

	if req.Content != nil && *req.Content != post.Content {
		post.EditHistory = append(post.EditHistory, models.EditEntry{
			Content:  post.Content,
			EditedAt: time.Now(),
			EditedBy: userID,
		})
		post.Content = *req.Content
		post.IsEdited = true
	}
	if req.Audience != nil {
		if !validAudiences[*req.Audience] {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid audience"})
			return
		}
		post.Audience = *req.Audience
	}
	if req.Feeling != nil {
		post.Feeling = *req.Feeling
	}
	if req.Hashtags != nil {
		post.Hashtags = req.Hashtags
	}

	if err := persistPost(ctx, post); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to update post"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Post updated", "data": post})
}

// DeletePost is a soft delete; the document stays behind for audit.
func DeletePost(c *gin.Context) {
	postID, err := primitive.ObjectIDFromHex(c.Param("postId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid post ID"})
		return
	}
	userID, ok := principalID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Invalid user ID"})
		return
	}

	ctx, cancel := dbCtx()
	defer cancel()

	now := time.Now()
	result, err := database.Posts.UpdateOne(ctx,
		bson.M{"_id": postID, "author": userID, "isDeleted": false},
		bson.M{"$set": bson.M{"isDeleted": true, "deletedAt": now, "updatedAt": now}},
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to delete post"})
		return
	}
	if result.MatchedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Post not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Post deleted"})
}

func TogglePinPost(c *gin.Context) {
	postID, err := primitive.ObjectIDFromHex(c.Param("postId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid post ID"})
		return
	}
	userID, ok := principalID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Invalid user ID"})
		return
	}

	ctx, cancel := dbCtx()
	defer cancel()

	post, err := fetchPost(ctx, postID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Post not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch post"})
		return
	}
	if post.Author != userID {
		c.JSON(http.StatusForbidden, gin.H{"success": false, "error": "You can only pin your own posts"})
		return
	}

	post.IsPinned = !post.IsPinned
	if err := persistPost(ctx, post); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to update post"})
		return
	}

	message := "Post pinned"
	if !post.IsPinned {
		message = "Post unpinned"
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": message, "data": gin.H{"isPinned": post.IsPinned}})
}

// hashtagQuery selects live public posts carrying the tag. The leading # is
// optional and lookup is case-insensitive via the lowercased hashtags field.
func hashtagQuery(tag string, now time.Time) bson.M {
	return bson.M{
		"hashtags":  strings.ToLower(strings.TrimPrefix(tag, "#")),
		"isDeleted": false,
		"audience":  "public",
		"$or":       publishedClause(now),
	}
}

func GetPostsByHashtag(c *gin.Context) {
	tag := c.Param("hashtag")
	if tag == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Hashtag is required"})
		return
	}
	viewerID, _ := principalID(c)
	page, limit := pageParams(c, 10)

	ctx, cancel := dbCtx()
	defer cancel()

	query := hashtagQuery(tag, time.Now())

	total, err := database.Posts.CountDocuments(ctx, query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch posts"})
		return
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))
	cursor, err := database.Posts.Find(ctx, query, opts)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch posts"})
		return
	}
	defer cursor.Close(ctx)

	var posts []models.Post
	if err := cursor.All(ctx, &posts); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to decode posts"})
		return
	}

	annotated := make([]gin.H, 0, len(posts))
	for i := range posts {
		annotated = append(annotated, annotatePost(&posts[i], viewerID))
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"data":       annotated,
		"pagination": paginationMeta(page, limit, total),
	})
}
