package handlers

import (
	"testing"
	"time"

	"github.com/Sahareior/Shopee-Backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestBuildNewsFeedQuery(t *testing.T) {
	viewer := primitive.NewObjectID()
	followed := primitive.NewObjectID()
	now := time.Now()

	q := buildNewsFeedQuery(viewer, []primitive.ObjectID{followed}, now)

	assert.Equal(t, false, q["isDeleted"])

	and, ok := q["$and"].([]bson.M)
	require.True(t, ok)
	require.Len(t, and, 2)

	// First clause hides unscheduled drafts.
	scheduled := and[0]["$or"].([]bson.M)
	assert.Equal(t, bson.M{"isScheduled": false}, scheduled[0])

	// Second clause admits the circle and public strangers.
	visibility := and[1]["$or"].([]bson.M)
	require.Len(t, visibility, 3)

	circle := visibility[0]["author"].(bson.M)["$in"].([]primitive.ObjectID)
	assert.Contains(t, circle, viewer, "viewer sees their own posts")
	assert.Contains(t, circle, followed)

	assert.Equal(t, bson.M{"author": viewer}, visibility[1])
	assert.Equal(t, bson.M{"audience": "public"}, visibility[2])
}

func TestTrendingPipelineLookback(t *testing.T) {
	now := time.Now()
	pipeline := trendingPipeline(10, 30, now)

	match, ok := pipeline[0][0].Value.(bson.D)
	require.True(t, ok)

	var created bson.D
	var published []bson.M
	for _, e := range match {
		switch e.Key {
		case "createdAt":
			created = e.Value.(bson.D)
		case "$or":
			published = e.Value.([]bson.M)
		}
	}

	require.NotNil(t, created, "window lower bound must be present")
	since, ok := created[0].Value.(time.Time)
	require.True(t, ok)
	assert.WithinDuration(t, now.Add(-30*24*time.Hour), since, time.Second,
		"days parameter drives the lookback window")

	require.NotEmpty(t, published)
	assert.Contains(t, published, bson.M{"isScheduled": false})
	assert.Contains(t, published, bson.M{"scheduledFor": bson.M{"$lte": now}},
		"posts published after their scheduled time stay eligible")
}

func TestTrendingPipelineJoinsAuthor(t *testing.T) {
	pipeline := trendingPipeline(10, 7, time.Now())

	var lookup, project bson.D
	for _, stage := range pipeline {
		switch stage[0].Key {
		case "$lookup":
			lookup = stage[0].Value.(bson.D)
		case "$project":
			project = stage[0].Value.(bson.D)
		}
	}

	require.NotNil(t, lookup, "author must be joined in")
	assert.Equal(t, bson.E{Key: "from", Value: "users"}, lookup[0])

	require.NotNil(t, project)
	assert.Contains(t, project, bson.E{Key: "author.password", Value: 0})
	assert.Contains(t, project, bson.E{Key: "author.email", Value: 0})
}

func TestHashtagQuery(t *testing.T) {
	now := time.Now()
	q := hashtagQuery("#GoLang", now)

	assert.Equal(t, "golang", q["hashtags"], "leading # stripped, lowercased")
	assert.Equal(t, false, q["isDeleted"])
	assert.Equal(t, "public", q["audience"])

	published, ok := q["$or"].([]bson.M)
	require.True(t, ok)
	assert.Contains(t, published, bson.M{"scheduledFor": bson.M{"$lte": now}},
		"once-scheduled posts surface after publication")
}

func TestPaginationMeta(t *testing.T) {
	meta := paginationMeta(2, 10, 35)
	assert.Equal(t, 2, meta["currentPage"])
	assert.Equal(t, 4, meta["totalPages"])
	assert.Equal(t, int64(35), meta["totalPosts"])
	assert.Equal(t, true, meta["hasNextPage"])
	assert.Equal(t, true, meta["hasPrevPage"])

	meta = paginationMeta(4, 10, 35)
	assert.Equal(t, false, meta["hasNextPage"])

	meta = paginationMeta(1, 10, 0)
	assert.Equal(t, 0, meta["totalPages"])
	assert.Equal(t, false, meta["hasNextPage"])
	assert.Equal(t, false, meta["hasPrevPage"])
}

func TestAnnotatePost(t *testing.T) {
	viewer := primitive.NewObjectID()
	post := &models.Post{}
	require.NoError(t, post.ApplyReaction(viewer, models.ReactionLike))

	annotated := annotatePost(post, viewer)
	assert.Equal(t, true, annotated["userLiked"])
	assert.Equal(t, models.ReactionLike, annotated["userReaction"])

	stranger := primitive.NewObjectID()
	annotated = annotatePost(post, stranger)
	assert.Equal(t, false, annotated["userLiked"])
	assert.Equal(t, "", annotated["userReaction"])
}

func TestParseObjectIDs(t *testing.T) {
	a, b := primitive.NewObjectID(), primitive.NewObjectID()

	ids, err := parseObjectIDs([]string{a.Hex(), b.Hex()})
	require.NoError(t, err)
	assert.Equal(t, []primitive.ObjectID{a, b}, ids)

	_, err = parseObjectIDs([]string{"not-an-id"})
	assert.Error(t, err)

	ids, err = parseObjectIDs(nil)
	require.NoError(t, err)
	assert.Empty(t, ids)
}
