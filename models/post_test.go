package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestApplyReactionMovesBetweenBuckets(t *testing.T) {
	post := &Post{}
	user := primitive.NewObjectID()

	require.NoError(t, post.ApplyReaction(user, ReactionLike))
	post.NormalizePost(time.Now())
	assert.Equal(t, 1, post.ReactionCounts.Like)
	assert.Equal(t, 1, post.LikeCount, "like bucket mirrors the likes list")

	require.NoError(t, post.ApplyReaction(user, ReactionLove))
	post.NormalizePost(time.Now())
	assert.Equal(t, 0, post.ReactionCounts.Like)
	assert.Equal(t, 1, post.ReactionCounts.Love)
	assert.Equal(t, 0, post.LikeCount, "switching away from like clears the likes list")
	assert.Equal(t, 1, post.TotalReactions)
}

func TestApplyReactionSameTypeStaysSingle(t *testing.T) {
	post := &Post{}
	user := primitive.NewObjectID()

	require.NoError(t, post.ApplyReaction(user, ReactionWow))
	require.NoError(t, post.ApplyReaction(user, ReactionWow))
	post.NormalizePost(time.Now())

	assert.Equal(t, 1, post.ReactionCounts.Wow)
	assert.Equal(t, 1, post.TotalReactions)
}

func TestApplyReactionUnknownType(t *testing.T) {
	post := &Post{}
	err := post.ApplyReaction(primitive.NewObjectID(), "sparkle")
	assert.ErrorIs(t, err, ErrUnknownReaction)
}

func TestRemoveReaction(t *testing.T) {
	post := &Post{}
	user := primitive.NewObjectID()
	other := primitive.NewObjectID()

	require.NoError(t, post.ApplyReaction(user, ReactionLike))
	require.NoError(t, post.ApplyReaction(other, ReactionSad))
	post.RemoveReaction(user)
	post.NormalizePost(time.Now())

	assert.Equal(t, 0, post.ReactionCounts.Like)
	assert.Equal(t, 1, post.ReactionCounts.Sad)
	assert.Empty(t, post.Likes)
	assert.Equal(t, "", post.Reactions.FindUserReaction(user))
	assert.Equal(t, ReactionSad, post.Reactions.FindUserReaction(other))
}

func newPollPost() *Post {
	return &Post{
		Poll: &Poll{
			Question: "Best color?",
			Options: []PollOption{
				{Text: "Red"},
				{Text: "Blue"},
			},
			IsActive: true,
		},
	}
}

func TestVoteInPollSingleVotePerUser(t *testing.T) {
	post := newPollPost()
	user := primitive.NewObjectID()

	require.NoError(t, post.VoteInPoll(user, 0))
	require.NoError(t, post.VoteInPoll(user, 1))
	post.NormalizePost(time.Now())

	assert.Equal(t, 0, post.Poll.Options[0].Votes)
	assert.Equal(t, 1, post.Poll.Options[1].Votes)
	assert.Equal(t, 1, post.Poll.TotalVotes)
}

func TestVoteInPollValidation(t *testing.T) {
	post := newPollPost()
	user := primitive.NewObjectID()

	assert.ErrorIs(t, post.VoteInPoll(user, 5), ErrInvalidPollOption)
	assert.ErrorIs(t, post.VoteInPoll(user, -1), ErrInvalidPollOption)

	post.Poll.IsActive = false
	assert.ErrorIs(t, post.VoteInPoll(user, 0), ErrPollInactive)
}

func TestNormalizePostExpiresPoll(t *testing.T) {
	post := newPollPost()
	past := time.Now().Add(-time.Hour)
	post.Poll.ExpiresAt = &past

	post.NormalizePost(time.Now())
	assert.False(t, post.Poll.IsActive)
}

func TestNormalizePostDefaultsPollExpiry(t *testing.T) {
	post := newPollPost()
	now := time.Now()
	post.NormalizePost(now)

	require.NotNil(t, post.Poll.ExpiresAt)
	assert.WithinDuration(t, now.Add(7*24*time.Hour), *post.Poll.ExpiresAt, time.Second)
}

func TestNormalizePostPublishesPastSchedule(t *testing.T) {
	now := time.Now()

	past := now.Add(-time.Hour)
	post := &Post{IsScheduled: true, ScheduledFor: &past}
	post.NormalizePost(now)
	assert.False(t, post.IsScheduled, "a passed schedule means published")

	future := now.Add(time.Hour)
	post = &Post{IsScheduled: true, ScheduledFor: &future}
	post.NormalizePost(now)
	assert.True(t, post.IsScheduled, "future schedule stays a draft")
}

func TestRegisterForEventCapacity(t *testing.T) {
	post := &Post{
		Event: &Event{Title: "Meetup", MaxAttendees: 2, IsActive: true},
	}
	a, b, c := primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()

	require.NoError(t, post.RegisterForEvent(a))
	require.NoError(t, post.RegisterForEvent(b))
	assert.ErrorIs(t, post.RegisterForEvent(c), ErrEventFull)

	// A second registration from an attendee is a no-op, not a failure.
	require.NoError(t, post.RegisterForEvent(a))
	assert.Len(t, post.Event.Attendees, 2)
}

func TestToggleSave(t *testing.T) {
	post := &Post{}
	user := primitive.NewObjectID()

	assert.True(t, post.ToggleSave(user))
	post.NormalizePost(time.Now())
	assert.Equal(t, 1, post.SavedCount)

	assert.False(t, post.ToggleSave(user))
	post.NormalizePost(time.Now())
	assert.Equal(t, 0, post.SavedCount)
}

func TestExtractHashtags(t *testing.T) {
	tags := ExtractHashtags("Loving the #Summer sale! #summer #DEALS #sale2024")
	assert.Equal(t, []string{"summer", "deals", "sale2024"}, tags)

	assert.Empty(t, ExtractHashtags("no tags here"))
}

func TestNormalizePostMergesHashtags(t *testing.T) {
	post := &Post{
		Content:  "check out #golang",
		Hashtags: []string{"#Backend", "golang"},
	}
	post.NormalizePost(time.Now())
	assert.Equal(t, []string{"backend", "golang"}, post.Hashtags)
}

func TestDeriveContentType(t *testing.T) {
	now := time.Now()

	text := &Post{Content: "hello"}
	text.NormalizePost(now)
	assert.Equal(t, "text", text.ContentType)

	image := &Post{Media: []PostMedia{{MediaType: "image"}}}
	image.NormalizePost(now)
	assert.Equal(t, "image", image.ContentType)

	gallery := &Post{Media: []PostMedia{{MediaType: "image"}, {MediaType: "image"}}}
	gallery.NormalizePost(now)
	assert.Equal(t, "imageGallery", gallery.ContentType)

	shared := &Post{SharedPost: primitive.NewObjectID()}
	shared.NormalizePost(now)
	assert.Equal(t, "sharedPost", shared.ContentType)

	poll := newPollPost()
	poll.NormalizePost(now)
	assert.Equal(t, "poll", poll.ContentType)

	event := &Post{Event: &Event{Title: "Launch", IsActive: true}}
	event.NormalizePost(now)
	assert.Equal(t, "event", event.ContentType)
}
