package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func activeStory(owner primitive.ObjectID) *Story {
	now := time.Now()
	return &Story{
		ID:         primitive.NewObjectID(),
		User:       owner,
		MediaType:  "image",
		Visibility: StoryPublic,
		ExpiresAt:  now.Add(24 * time.Hour),
		IsActive:   true,
		CreatedAt:  now,
	}
}

func TestCanUserViewVisibility(t *testing.T) {
	owner := primitive.NewObjectID()
	friend := primitive.NewObjectID()
	stranger := primitive.NewObjectID()
	now := time.Now()

	s := activeStory(owner)
	assert.True(t, s.CanUserView(stranger, now), "public story is visible to anyone")

	s.Visibility = StoryPrivate
	s.VisibleTo = []primitive.ObjectID{friend}
	assert.True(t, s.CanUserView(friend, now))
	assert.False(t, s.CanUserView(stranger, now))

	s.Visibility = StoryCloseFriends
	s.CloseFriends = []primitive.ObjectID{friend}
	assert.True(t, s.CanUserView(friend, now))
	assert.False(t, s.CanUserView(stranger, now))
}

func TestCanUserViewOwnerAlwaysPasses(t *testing.T) {
	owner := primitive.NewObjectID()
	now := time.Now()

	s := activeStory(owner)
	s.ExpiresAt = now.Add(-time.Hour)
	assert.True(t, s.CanUserView(owner, now), "owner keeps access after expiry")
	assert.False(t, s.CanUserView(primitive.NewObjectID(), now))

	s = activeStory(owner)
	s.IsActive = false
	assert.True(t, s.CanUserView(owner, now))
	assert.False(t, s.CanUserView(primitive.NewObjectID(), now))
}

func TestAddViewIdempotent(t *testing.T) {
	s := activeStory(primitive.NewObjectID())
	viewer := primitive.NewObjectID()
	now := time.Now()

	assert.True(t, s.AddView(viewer, now))
	assert.False(t, s.AddView(viewer, now))
	s.NormalizeStory(now)
	assert.Equal(t, 1, s.ViewCount)
}

func TestAddViewSkipsOwner(t *testing.T) {
	owner := primitive.NewObjectID()
	s := activeStory(owner)
	now := time.Now()

	assert.False(t, s.AddView(owner, now), "owners don't count toward their own views")
	s.NormalizeStory(now)
	assert.Equal(t, 0, s.ViewCount)
}

func TestSetReactionOverwrites(t *testing.T) {
	s := activeStory(primitive.NewObjectID())
	user := primitive.NewObjectID()
	now := time.Now()

	s.SetReaction(user, "like", "", now)
	s.SetReaction(user, "love", "nice one", now.Add(time.Minute))
	s.NormalizeStory(now)

	assert.Equal(t, 1, s.ReactionCount)
	assert.Equal(t, "love", s.Reactions[0].Type)
	assert.Equal(t, "nice one", s.Reactions[0].Message)
}

func TestClampStoryDuration(t *testing.T) {
	assert.Equal(t, DefaultStoryDurationHours, ClampStoryDuration(0))
	assert.Equal(t, MinStoryDurationHours, ClampStoryDuration(-5))
	assert.Equal(t, MaxStoryDurationHours, ClampStoryDuration(500))
	assert.Equal(t, 48, ClampStoryDuration(48))
}

func TestRemainingHours(t *testing.T) {
	s := activeStory(primitive.NewObjectID())
	now := time.Now()

	s.ExpiresAt = now.Add(90 * time.Minute)
	assert.Equal(t, 2, s.RemainingHours(now), "partial hours round up")

	s.ExpiresAt = now.Add(-time.Minute)
	assert.Equal(t, 0, s.RemainingHours(now), "expired never goes negative")
}

func TestEstimateDecodedSize(t *testing.T) {
	// 4 base64 chars decode to 3 bytes.
	assert.Equal(t, 3, EstimateDecodedSize(4))
	assert.Equal(t, 6, EstimateDecodedSize(8))
	assert.Equal(t, 2, EstimateDecodedSize(2))
}

func TestMaxStoryBytes(t *testing.T) {
	assert.Equal(t, MaxStoryVideoBytes, MaxStoryBytes("video"))
	assert.Equal(t, MaxStoryImageBytes, MaxStoryBytes("image"))
}

func TestNormalizeStory(t *testing.T) {
	s := activeStory(primitive.NewObjectID())
	s.Caption = "  beach day #Vacation #sun  "
	s.MimeType = ""

	s.NormalizeStory(time.Now())

	assert.Equal(t, "beach day #Vacation #sun", s.Caption)
	assert.Equal(t, []string{"vacation", "sun"}, s.Hashtags)
	assert.Equal(t, "image/jpeg", s.MimeType)

	v := activeStory(primitive.NewObjectID())
	v.MediaType = "video"
	v.NormalizeStory(time.Now())
	assert.Equal(t, "video/mp4", v.MimeType)
}
