package domain

import "time"

// ForumTopic represents the forum_topics table
type ForumTopic struct {
	ID        string    `gorm:"column:id;primaryKey;type:varchar(36)" json:"id"`
	Slug      string    `gorm:"column:slug;type:varchar(255);uniqueIndex;not null" json:"slug"`
	Title     string    `gorm:"column:title;type:varchar(255);not null" json:"title"`
	Content   string    `gorm:"column:content;type:text;not null" json:"content"`
	UserID    string    `gorm:"column:user_id;type:varchar(64);index;not null" json:"user_id"`
	VoteCount int       `gorm:"column:vote_count;not null;default:0" json:"vote_count"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime:false" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime:false;index" json:"updated_at"`
}

// TableName returns the table name for GORM
func (ForumTopic) TableName() string { return "forum_topics" }

// ForumPost represents the forum_posts table
type ForumPost struct {
	ID        string    `gorm:"column:id;primaryKey;type:varchar(36)" json:"id"`
	Content   string    `gorm:"column:content;type:text;not null" json:"content"`
	UserID    string    `gorm:"column:user_id;type:varchar(64);index;not null" json:"user_id"`
	TopicID   string    `gorm:"column:topic_id;type:varchar(36);index;not null" json:"topic_id"`
	VoteCount int       `gorm:"column:vote_count;not null;default:0" json:"vote_count"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime:false" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime:false" json:"updated_at"`
}

// TableName returns the table name for GORM
func (ForumPost) TableName() string { return "forum_posts" }

// TopicSummary is one row of the topic listing
type TopicSummary struct {
	ID                string    `gorm:"column:id" json:"id"`
	Slug              string    `gorm:"column:slug" json:"slug"`
	Title             string    `gorm:"column:title" json:"title"`
	UserID            string    `gorm:"column:user_id" json:"user_id"`
	VoteCount         int       `gorm:"column:vote_count" json:"vote_count"`
	CreatedAt         time.Time `gorm:"column:created_at" json:"created_at"`
	LastActive        time.Time `gorm:"column:updated_at" json:"last_active"`
	Replies           int64     `gorm:"column:replies" json:"replies"`
	AuthorName        string    `gorm:"column:author_name" json:"-"`
	AuthorDisplayName *string   `gorm:"column:author_display_name" json:"-"`
	Author            string    `gorm:"-" json:"author"`
}

// PostView is a visible post rendered under its topic
type PostView struct {
	ID                string    `gorm:"column:id" json:"id"`
	Content           string    `gorm:"column:content" json:"content"`
	UserID            string    `gorm:"column:user_id" json:"user_id"`
	VoteCount         int       `gorm:"column:vote_count" json:"vote_count"`
	CreatedAt         time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt         time.Time `gorm:"column:updated_at" json:"updated_at"`
	AuthorName        string    `gorm:"column:author_name" json:"-"`
	AuthorDisplayName *string   `gorm:"column:author_display_name" json:"-"`
	Author            string    `gorm:"-" json:"author"`
}

// TopicView is a single topic with its author name
type TopicView struct {
	ID                string    `gorm:"column:id" json:"id"`
	Slug              string    `gorm:"column:slug" json:"slug"`
	Title             string    `gorm:"column:title" json:"title"`
	Content           string    `gorm:"column:content" json:"content"`
	UserID            string    `gorm:"column:user_id" json:"user_id"`
	VoteCount         int       `gorm:"column:vote_count" json:"vote_count"`
	CreatedAt         time.Time `gorm:"column:created_at" json:"created_at"`
	LastActive        time.Time `gorm:"column:updated_at" json:"last_active"`
	AuthorName        string    `gorm:"column:author_name" json:"-"`
	AuthorDisplayName *string   `gorm:"column:author_display_name" json:"-"`
	Author            string    `gorm:"-" json:"author"`
}

// TopicDetail is the topic page payload: the topic, its visible posts and the
// viewer's own votes keyed "topic:<id>" / "post:<id>"
type TopicDetail struct {
	TopicView
	Replies   int            `json:"replies"`
	Posts     []PostView     `json:"posts"`
	UserVotes map[string]int `json:"user_votes"`
}

// MinTopicTitleLength applies to the trimmed title
const MinTopicTitleLength = 5

// CreateTopicRequest is the request body for topic.create
type CreateTopicRequest struct {
	Title   string `json:"title" binding:"required,min=5,max=255"`
	Content string `json:"content" binding:"required,min=10"`
}

// UpdateTopicRequest is the request body for topic.update
type UpdateTopicRequest struct {
	Title   string `json:"title" binding:"required,notblank,max=255"`
	Content string `json:"content" binding:"required,notblank"`
}

// CreatePostRequest is the request body for post.create
type CreatePostRequest struct {
	TopicID string `json:"topic_id" binding:"required"`
	Content string `json:"content" binding:"required,min=10"`
}

// UpdatePostRequest is the request body for post.update
type UpdatePostRequest struct {
	Content string `json:"content" binding:"required,notblank"`
}

// CreatedRef is returned by create operations
type CreatedRef struct {
	ID   string `json:"id"`
	Slug string `json:"slug,omitempty"`
}
