package models

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Reaction types a post supports. The like bucket doubles as the legacy
// likes list: reacting with anything else removes the user from likes.
const (
	ReactionLike  = "like"
	ReactionLove  = "love"
	ReactionHaha  = "haha"
	ReactionWow   = "wow"
	ReactionSad   = "sad"
	ReactionAngry = "angry"
)

var ReactionTypes = []string{ReactionLike, ReactionLove, ReactionHaha, ReactionWow, ReactionSad, ReactionAngry}

var (
	ErrPollInactive      = errors.New("poll is not active")
	ErrInvalidPollOption = errors.New("invalid option index")
	ErrEventInactive     = errors.New("event is not active")
	ErrEventFull         = errors.New("event is full")
	ErrUnknownReaction   = errors.New("unknown reaction type")
)

// PostMedia is an inline media blob attached to a post.
type PostMedia struct {
	Base64    string `bson:"base64,omitempty" json:"base64,omitempty"`
	MediaType string `bson:"mediaType" json:"mediaType"` // image, video
	Caption   string `bson:"caption,omitempty" json:"caption,omitempty"`
	Width     int    `bson:"width,omitempty" json:"width,omitempty"`
	Height    int    `bson:"height,omitempty" json:"height,omitempty"`
	Order     int    `bson:"order" json:"order"`
}

// Reactions holds one user-id bucket per reaction type. A user belongs to at
// most one bucket; ApplyReaction enforces that.
type Reactions struct {
	Like  []primitive.ObjectID `bson:"like" json:"like"`
	Love  []primitive.ObjectID `bson:"love" json:"love"`
	Haha  []primitive.ObjectID `bson:"haha" json:"haha"`
	Wow   []primitive.ObjectID `bson:"wow" json:"wow"`
	Sad   []primitive.ObjectID `bson:"sad" json:"sad"`
	Angry []primitive.ObjectID `bson:"angry" json:"angry"`
}

// Bucket returns the member list for a reaction type, nil for an unknown type.
func (r *Reactions) Bucket(reactionType string) *[]primitive.ObjectID {
	switch reactionType {
	case ReactionLike:
		return &r.Like
	case ReactionLove:
		return &r.Love
	case ReactionHaha:
		return &r.Haha
	case ReactionWow:
		return &r.Wow
	case ReactionSad:
		return &r.Sad
	case ReactionAngry:
		return &r.Angry
	}
	return nil
}

// FindUserReaction returns the reaction type whose bucket contains the user,
// or "" when the user has not reacted.
func (r *Reactions) FindUserReaction(userID primitive.ObjectID) string {
	for _, t := range ReactionTypes {
		if containsID(*r.Bucket(t), userID) {
			return t
		}
	}
	return ""
}

type ReactionCounts struct {
	Like  int `bson:"like" json:"like"`
	Love  int `bson:"love" json:"love"`
	Haha  int `bson:"haha" json:"haha"`
	Wow   int `bson:"wow" json:"wow"`
	Sad   int `bson:"sad" json:"sad"`
	Angry int `bson:"angry" json:"angry"`
}

func (c ReactionCounts) Total() int {
	return c.Like + c.Love + c.Haha + c.Wow + c.Sad + c.Angry
}

type PollOption struct {
	Text   string               `bson:"text" json:"text"`
	Votes  int                  `bson:"votes" json:"votes"`
	Voters []primitive.ObjectID `bson:"voters" json:"voters"`
}

type Poll struct {
	Question   string       `bson:"question" json:"question"`
	Options    []PollOption `bson:"options" json:"options"`
	TotalVotes int          `bson:"totalVotes" json:"totalVotes"`
	ExpiresAt  *time.Time   `bson:"expiresAt,omitempty" json:"expiresAt,omitempty"`
	IsActive   bool         `bson:"isActive" json:"isActive"`
}

type Event struct {
	Title            string               `bson:"title" json:"title"`
	Description      string               `bson:"description,omitempty" json:"description,omitempty"`
	Date             *time.Time           `bson:"date,omitempty" json:"date,omitempty"`
	Time             string               `bson:"time,omitempty" json:"time,omitempty"`
	Location         string               `bson:"location,omitempty" json:"location,omitempty"`
	IsVirtual        bool                 `bson:"isVirtual" json:"isVirtual"`
	RegistrationLink string               `bson:"registrationLink,omitempty" json:"registrationLink,omitempty"`
	Attendees        []primitive.ObjectID `bson:"attendees" json:"attendees"`
	MaxAttendees     int                  `bson:"maxAttendees,omitempty" json:"maxAttendees,omitempty"`
	IsActive         bool                 `bson:"isActive" json:"isActive"`
}

type EditEntry struct {
	Content  string             `bson:"content" json:"content"`
	EditedAt time.Time          `bson:"editedAt" json:"editedAt"`
	EditedBy primitive.ObjectID `bson:"editedBy" json:"editedBy"`
}

type Post struct {
	ID             primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Author         primitive.ObjectID   `bson:"author" json:"author"`
	ContentType    string               `bson:"contentType" json:"contentType"` // text, image, video, imageGallery, sharedPost, poll, event
	Content        string               `bson:"content" json:"content"`
	Media          []PostMedia          `bson:"media,omitempty" json:"media,omitempty"`
	SharedPost     primitive.ObjectID   `bson:"sharedPost,omitempty" json:"sharedPost,omitempty"`
	SharedContent  string               `bson:"sharedContent,omitempty" json:"sharedContent,omitempty"`
	Likes          []primitive.ObjectID `bson:"likes" json:"likes"`
	LikeCount      int                  `bson:"likeCount" json:"likeCount"`
	CommentCount   int                  `bson:"commentCount" json:"commentCount"`
	ShareCount     int                  `bson:"shareCount" json:"shareCount"`
	Reactions      Reactions            `bson:"reactions" json:"reactions"`
	ReactionCounts ReactionCounts       `bson:"reactionCounts" json:"reactionCounts"`
	TotalReactions int                  `bson:"totalReactions" json:"totalReactions"`
	Poll           *Poll                `bson:"poll,omitempty" json:"poll,omitempty"`
	Event          *Event               `bson:"event,omitempty" json:"event,omitempty"`
	Audience       string               `bson:"audience" json:"audience"` // public, followers, private
	Hashtags       []string             `bson:"hashtags" json:"hashtags"`
	Mentions       []primitive.ObjectID `bson:"mentions,omitempty" json:"mentions,omitempty"`
	TaggedUsers    []primitive.ObjectID `bson:"taggedUsers,omitempty" json:"taggedUsers,omitempty"`
	Feeling        string               `bson:"feeling,omitempty" json:"feeling,omitempty"`
	IsPinned       bool                 `bson:"isPinned" json:"isPinned"`
	IsEdited       bool                 `bson:"isEdited" json:"isEdited"`
	EditHistory    []EditEntry          `bson:"editHistory,omitempty" json:"editHistory,omitempty"`
	ScheduledFor   *time.Time           `bson:"scheduledFor,omitempty" json:"scheduledFor,omitempty"`
	IsScheduled    bool                 `bson:"isScheduled" json:"isScheduled"`
	IsDeleted      bool                 `bson:"isDeleted" json:"isDeleted"`
	DeletedAt      *time.Time           `bson:"deletedAt,omitempty" json:"deletedAt,omitempty"`
	ViewCount      int                  `bson:"viewCount" json:"viewCount"`
	SavedBy        []primitive.ObjectID `bson:"savedBy" json:"savedBy"`
	SavedCount     int                  `bson:"savedCount" json:"savedCount"`
	CreatedAt      time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time            `bson:"updatedAt" json:"updatedAt"`
}

var hashtagPattern = regexp.MustCompile(`#(\w+)`)

// ExtractHashtags pulls #tokens out of text, lowercased and deduplicated in
// first-seen order.
func ExtractHashtags(text string) []string {
	matches := hashtagPattern.FindAllStringSubmatch(text, -1)
	var tags []string
	seen := make(map[string]bool)
	for _, m := range matches {
		tag := strings.ToLower(m[1])
		if !seen[tag] {
			seen[tag] = true
			tags = append(tags, tag)
		}
	}
	return tags
}

// NormalizePost recomputes every denormalized field from its source of
// truth. Every write path calls this before persisting; there are no hidden
// save hooks.
func (p *Post) NormalizePost(now time.Time) {
	p.LikeCount = len(p.Likes)
	p.SavedCount = len(p.SavedBy)

	p.ReactionCounts = ReactionCounts{
		Like:  len(p.Reactions.Like),
		Love:  len(p.Reactions.Love),
		Haha:  len(p.Reactions.Haha),
		Wow:   len(p.Reactions.Wow),
		Sad:   len(p.Reactions.Sad),
		Angry: len(p.Reactions.Angry),
	}
	p.TotalReactions = p.ReactionCounts.Total()

	// Merge hashtags found in the content with any explicit ones.
	merged := append([]string{}, p.Hashtags...)
	seen := make(map[string]bool, len(merged))
	for i, tag := range merged {
		merged[i] = strings.ToLower(strings.TrimPrefix(tag, "#"))
		seen[merged[i]] = true
	}
	for _, tag := range ExtractHashtags(p.Content) {
		if !seen[tag] {
			seen[tag] = true
			merged = append(merged, tag)
		}
	}
	p.Hashtags = merged
	if p.Hashtags == nil {
		p.Hashtags = []string{}
	}

	if p.Poll != nil {
		total := 0
		for _, opt := range p.Poll.Options {
			total += opt.Votes
		}
		p.Poll.TotalVotes = total
		if p.Poll.IsActive && p.Poll.ExpiresAt == nil {
			exp := now.Add(7 * 24 * time.Hour)
			p.Poll.ExpiresAt = &exp
		}
		if p.Poll.ExpiresAt != nil && now.After(*p.Poll.ExpiresAt) {
			p.Poll.IsActive = false
		}
	}

	if p.Event != nil && p.Event.Date != nil && now.After(*p.Event.Date) {
		p.Event.IsActive = false
	}

	if p.IsScheduled && p.ScheduledFor != nil && !now.Before(*p.ScheduledFor) {
		p.IsScheduled = false
	}

	p.ContentType = p.deriveContentType()
	p.UpdatedAt = now
}

func (p *Post) deriveContentType() string {
	switch {
	case len(p.Media) == 1:
		return p.Media[0].MediaType
	case len(p.Media) > 1:
		return "imageGallery"
	case !p.SharedPost.IsZero():
		return "sharedPost"
	case p.Poll != nil && p.Poll.Question != "":
		return "poll"
	case p.Event != nil && p.Event.Title != "":
		return "event"
	default:
		return "text"
	}
}

// ApplyReaction moves the user into the given bucket, removing them from
// every other one first. The likes list tracks the like bucket. Caller must
// NormalizePost and persist afterwards.
func (p *Post) ApplyReaction(userID primitive.ObjectID, reactionType string) error {
	bucket := p.Reactions.Bucket(reactionType)
	if bucket == nil {
		return ErrUnknownReaction
	}

	p.clearReaction(userID)
	*bucket = append(*bucket, userID)

	if reactionType == ReactionLike {
		p.Likes = append(p.Likes, userID)
	}
	return nil
}

// RemoveReaction clears the user from every bucket and from likes.
func (p *Post) RemoveReaction(userID primitive.ObjectID) {
	p.clearReaction(userID)
}

func (p *Post) clearReaction(userID primitive.ObjectID) {
	for _, t := range ReactionTypes {
		bucket := p.Reactions.Bucket(t)
		*bucket = removeID(*bucket, userID)
	}
	p.Likes = removeID(p.Likes, userID)
}

// VoteInPoll records the user's vote for an option index. A prior vote on
// any option is withdrawn first, so each user holds exactly one vote.
func (p *Post) VoteInPoll(userID primitive.ObjectID, optionIndex int) error {
	if p.Poll == nil || !p.Poll.IsActive {
		return ErrPollInactive
	}
	if optionIndex < 0 || optionIndex >= len(p.Poll.Options) {
		return ErrInvalidPollOption
	}

	for i := range p.Poll.Options {
		opt := &p.Poll.Options[i]
		if containsID(opt.Voters, userID) {
			opt.Voters = removeID(opt.Voters, userID)
			if opt.Votes > 0 {
				opt.Votes--
			}
		}
	}

	opt := &p.Poll.Options[optionIndex]
	opt.Voters = append(opt.Voters, userID)
	opt.Votes++
	return nil
}

// RegisterForEvent adds the user to the attendee list, honoring capacity.
// Registering twice is a no-op.
func (p *Post) RegisterForEvent(userID primitive.ObjectID) error {
	if p.Event == nil || !p.Event.IsActive {
		return ErrEventInactive
	}
	if containsID(p.Event.Attendees, userID) {
		return nil
	}
	if p.Event.MaxAttendees > 0 && len(p.Event.Attendees) >= p.Event.MaxAttendees {
		return ErrEventFull
	}
	p.Event.Attendees = append(p.Event.Attendees, userID)
	return nil
}

// ToggleSave bookmarks the post for the user, or removes the bookmark when
// already present. Reports whether the post is saved afterwards.
func (p *Post) ToggleSave(userID primitive.ObjectID) bool {
	if containsID(p.SavedBy, userID) {
		p.SavedBy = removeID(p.SavedBy, userID)
		return false
	}
	p.SavedBy = append(p.SavedBy, userID)
	return true
}

func containsID(ids []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func removeID(ids []primitive.ObjectID, id primitive.ObjectID) []primitive.ObjectID {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
