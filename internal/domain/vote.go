package domain

import (
	"time"

	"github.com/trailhead/trailhead-backend/internal/common"
)

// ForumVote represents the forum_votes table.
// Exactly one of TopicID / PostID is set.
type ForumVote struct {
	ID        string    `gorm:"column:id;primaryKey;type:varchar(36)" json:"id"`
	UserID    string    `gorm:"column:user_id;type:varchar(64);not null;uniqueIndex:forum_vote_user_topic_idx,priority:1;uniqueIndex:forum_vote_user_post_idx,priority:1" json:"user_id"`
	TopicID   *string   `gorm:"column:topic_id;type:varchar(36);index;uniqueIndex:forum_vote_user_topic_idx,priority:2" json:"topic_id"`
	PostID    *string   `gorm:"column:post_id;type:varchar(36);index;uniqueIndex:forum_vote_user_post_idx,priority:2" json:"post_id"`
	Value     int       `gorm:"column:value;not null" json:"value"` // 1 upvote, -1 downvote
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
}

// TableName returns the table name for GORM
func (ForumVote) TableName() string { return "forum_votes" }

// LocationVote represents the location_votes table (verification votes)
type LocationVote struct {
	ID         string    `gorm:"column:id;primaryKey;type:varchar(36)" json:"id"`
	UserID     string    `gorm:"column:user_id;type:varchar(64);not null;uniqueIndex:location_vote_user_location_idx,priority:1" json:"user_id"`
	LocationID string    `gorm:"column:location_id;type:varchar(36);not null;index;uniqueIndex:location_vote_user_location_idx,priority:2" json:"location_id"`
	Value      int       `gorm:"column:value;not null" json:"value"`
	CreatedAt  time.Time `gorm:"column:created_at" json:"created_at"`
}

// TableName returns the table name for GORM
func (LocationVote) TableName() string { return "location_votes" }

// ForumTarget identifies the topic or post a forum vote applies to
type ForumTarget struct {
	TopicID string
	PostID  string
}

// Validate requires exactly one of TopicID / PostID
func (t ForumTarget) Validate() error {
	if (t.TopicID == "") == (t.PostID == "") {
		return common.ErrInvalidTarget
	}
	return nil
}

func (t ForumTarget) String() string {
	if t.TopicID != "" {
		return "topic:" + t.TopicID
	}
	return "post:" + t.PostID
}

// LocationTarget identifies the location a verification vote applies to
type LocationTarget struct {
	LocationID string
}

// Validate requires a location ID
func (t LocationTarget) Validate() error {
	if t.LocationID == "" {
		return common.ErrInvalidTarget
	}
	return nil
}

func (t LocationTarget) String() string {
	return "location:" + t.LocationID
}

// ForumVoteRequest is the request body for the forum vote action.
// Toggle makes a repeated value retract the vote instead of being a no-op.
type ForumVoteRequest struct {
	TopicID string `json:"topic_id"`
	PostID  string `json:"post_id"`
	Value   *int   `json:"value" binding:"required"`
	Toggle  bool   `json:"toggle"`
}

// LocationVoteRequest is the request body for location.vote
type LocationVoteRequest struct {
	LocationID string `json:"location_id"`
	Value      *int   `json:"value" binding:"required"`
	Toggle     bool   `json:"toggle"`
}
