package models

import (
	"math"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Story visibility levels.
const (
	StoryPublic       = "public"
	StoryPrivate      = "private"
	StoryCloseFriends = "close_friends"
)

// Story duration bounds in hours.
const (
	MinStoryDurationHours     = 1
	MaxStoryDurationHours     = 168
	DefaultStoryDurationHours = 24
)

// Decoded-size caps for inline story media.
const (
	MaxStoryImageBytes = 10 * 1024 * 1024
	MaxStoryVideoBytes = 50 * 1024 * 1024
)

const MaxStoryCaptionLen = 2200

// StoryView records one viewer; a user appears at most once.
type StoryView struct {
	User     primitive.ObjectID `bson:"user" json:"user"`
	ViewedAt time.Time          `bson:"viewedAt" json:"viewedAt"`
}

// StoryReaction is a viewer's single reaction; a repeat reaction from the
// same user overwrites it.
type StoryReaction struct {
	User      primitive.ObjectID `bson:"user" json:"user"`
	Type      string             `bson:"type" json:"type"`
	Message   string             `bson:"message,omitempty" json:"message,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

type StoryReply struct {
	User      primitive.ObjectID `bson:"user" json:"user"`
	Text      string             `bson:"text" json:"text"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

type Story struct {
	ID            primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	User          primitive.ObjectID   `bson:"user" json:"user"`
	MediaData     string               `bson:"mediaData" json:"-"` // base64 blob, served via the media endpoint
	MediaType     string               `bson:"mediaType" json:"mediaType"` // image, video
	MimeType      string               `bson:"mimeType" json:"mimeType"`
	FileName      string               `bson:"fileName,omitempty" json:"fileName,omitempty"`
	FileSize      int                  `bson:"fileSize" json:"fileSize"`
	Caption       string               `bson:"caption,omitempty" json:"caption,omitempty"`
	Hashtags      []string             `bson:"hashtags" json:"hashtags"`
	DurationHours int                  `bson:"duration" json:"duration"`
	ExpiresAt     time.Time            `bson:"expiresAt" json:"expiresAt"`
	Visibility    string               `bson:"visibility" json:"visibility"`
	VisibleTo     []primitive.ObjectID `bson:"visibleTo" json:"visibleTo"`
	CloseFriends  []primitive.ObjectID `bson:"closeFriends" json:"closeFriends"`
	Views         []StoryView          `bson:"views" json:"views"`
	ViewCount     int                  `bson:"viewCount" json:"viewCount"`
	Reactions     []StoryReaction      `bson:"reactions" json:"reactions"`
	ReactionCount int                  `bson:"reactionCount" json:"reactionCount"`
	Replies       []StoryReply         `bson:"replies" json:"replies"`
	ReplyCount    int                  `bson:"replyCount" json:"replyCount"`
	IsActive      bool                 `bson:"isActive" json:"isActive"`
	CreatedAt     time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// ClampStoryDuration forces a requested duration into [1,168] hours, with 24
// as the default for a zero value.
func ClampStoryDuration(hours int) int {
	if hours == 0 {
		return DefaultStoryDurationHours
	}
	if hours < MinStoryDurationHours {
		return MinStoryDurationHours
	}
	if hours > MaxStoryDurationHours {
		return MaxStoryDurationHours
	}
	return hours
}

// EstimateDecodedSize approximates the decoded byte size of a base64 payload.
func EstimateDecodedSize(base64Len int) int {
	return int(math.Ceil(float64(base64Len) * 3 / 4))
}

// MaxStoryBytes returns the size cap for a media type. Videos get the larger
// cap, everything else the image cap.
func MaxStoryBytes(mediaType string) int {
	if mediaType == "video" {
		return MaxStoryVideoBytes
	}
	return MaxStoryImageBytes
}

// DefaultMimeType fills in the mime type when the client omitted it.
func DefaultMimeType(mediaType string) string {
	if mediaType == "video" {
		return "video/mp4"
	}
	return "image/jpeg"
}

func (s *Story) IsExpired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// RemainingHours reports how many whole hours the story has left, never
// negative.
func (s *Story) RemainingHours(now time.Time) int {
	if s.IsExpired(now) {
		return 0
	}
	return int(math.Ceil(s.ExpiresAt.Sub(now).Hours()))
}

// CanUserView applies the visibility rules. The owner always passes, even
// after expiry; everyone else is cut off once the story expires or is
// deactivated, then gated by the visibility allow-lists.
func (s *Story) CanUserView(viewer primitive.ObjectID, now time.Time) bool {
	if viewer == s.User {
		return true
	}
	if !s.IsActive || s.IsExpired(now) {
		return false
	}
	switch s.Visibility {
	case StoryPublic:
		return true
	case StoryPrivate:
		return containsID(s.VisibleTo, viewer)
	case StoryCloseFriends:
		return containsID(s.CloseFriends, viewer)
	}
	return false
}

// AddView records a view once per user. Owners checking their own story are
// not counted. Reports whether the view was new.
func (s *Story) AddView(viewer primitive.ObjectID, now time.Time) bool {
	if viewer == s.User {
		return false
	}
	for _, v := range s.Views {
		if v.User == viewer {
			return false
		}
	}
	s.Views = append(s.Views, StoryView{User: viewer, ViewedAt: now})
	return true
}

// SetReaction stores the user's reaction, replacing any previous one.
func (s *Story) SetReaction(user primitive.ObjectID, reactionType, message string, now time.Time) {
	for i := range s.Reactions {
		if s.Reactions[i].User == user {
			s.Reactions[i].Type = reactionType
			s.Reactions[i].Message = message
			s.Reactions[i].CreatedAt = now
			return
		}
	}
	s.Reactions = append(s.Reactions, StoryReaction{User: user, Type: reactionType, Message: message, CreatedAt: now})
}

func (s *Story) AddReply(user primitive.ObjectID, text string, now time.Time) {
	s.Replies = append(s.Replies, StoryReply{User: user, Text: strings.TrimSpace(text), CreatedAt: now})
}

// NormalizeStory recomputes counters and derived fields before persistence.
func (s *Story) NormalizeStory(now time.Time) {
	s.Caption = strings.TrimSpace(s.Caption)
	s.Hashtags = ExtractHashtags(s.Caption)
	if s.Hashtags == nil {
		s.Hashtags = []string{}
	}
	s.ViewCount = len(s.Views)
	s.ReactionCount = len(s.Reactions)
	s.ReplyCount = len(s.Replies)
	if s.MimeType == "" {
		s.MimeType = DefaultMimeType(s.MediaType)
	}
	s.UpdatedAt = now
}
