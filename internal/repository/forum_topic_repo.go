package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/trailhead/trailhead-backend/internal/common"
	"github.com/trailhead/trailhead-backend/internal/domain"
	"gorm.io/gorm"
)

// ForumTopicRepository 포럼 토픽 저장소
type ForumTopicRepository interface {
	// 조회 (visible only)
	List(ctx context.Context, q string, page, perPage int) ([]domain.TopicSummary, int64, error)
	FindBySlug(ctx context.Context, slug string) (*domain.TopicView, error)

	// FindByID ignores visibility; used for ownership checks
	FindByID(ctx context.Context, id string) (*domain.ForumTopic, error)

	Create(ctx context.Context, topic *domain.ForumTopic) error
	Update(ctx context.Context, id, title, content string, at time.Time) error
	// Delete removes the topic with its votes, its posts' votes and its posts
	Delete(ctx context.Context, id string) error
}

type forumTopicRepository struct {
	db *gorm.DB
}

// NewForumTopicRepository creates a new ForumTopicRepository
func NewForumTopicRepository(db *gorm.DB) ForumTopicRepository {
	return &forumTopicRepository{db: db}
}

const topicViewColumns = `forum_topics.id, forum_topics.slug, forum_topics.title, forum_topics.content,
	forum_topics.user_id, forum_topics.vote_count, forum_topics.created_at, forum_topics.updated_at,
	COALESCE(users.name, '') AS author_name, users.display_name AS author_display_name`

func (r *forumTopicRepository) visible(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Table("forum_topics").Scopes(Visible("forum_topics.vote_count"))
}

// List returns visible topics, most recently active first
func (r *forumTopicRepository) List(ctx context.Context, q string, page, perPage int) ([]domain.TopicSummary, int64, error) {
	search := Search(q, "forum_topics.title", "forum_topics.content")

	var total int64
	if err := r.visible(ctx).Scopes(search).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count topics: %w", err)
	}

	rows := make([]domain.TopicSummary, 0, perPage)
	if total == 0 {
		return rows, 0, nil
	}

	err := r.visible(ctx).Scopes(search, Paginate(page, perPage)).
		Select(topicViewColumns+`,
			(SELECT COUNT(*) FROM forum_posts WHERE forum_posts.topic_id = forum_topics.id AND forum_posts.vote_count > ?) AS replies`,
			domain.VoteThreshold).
		Joins("LEFT JOIN users ON users.id = forum_topics.user_id").
		Order("forum_topics.updated_at DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list topics: %w", err)
	}

	for i := range rows {
		rows[i].Author = domain.DisplayNameOr(rows[i].AuthorDisplayName, rows[i].AuthorName)
	}
	return rows, total, nil
}

// FindBySlug returns common.ErrTopicNotFound for missing or hidden topics
func (r *forumTopicRepository) FindBySlug(ctx context.Context, slug string) (*domain.TopicView, error) {
	var view domain.TopicView
	result := r.visible(ctx).
		Select(topicViewColumns).
		Joins("LEFT JOIN users ON users.id = forum_topics.user_id").
		Where("forum_topics.slug = ?", slug).
		Limit(1).
		Scan(&view)
	if result.Error != nil {
		return nil, fmt.Errorf("find topic: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, common.ErrTopicNotFound
	}

	view.Author = domain.DisplayNameOr(view.AuthorDisplayName, view.AuthorName)
	return &view, nil
}

// FindByID returns common.ErrTopicNotFound when absent
func (r *forumTopicRepository) FindByID(ctx context.Context, id string) (*domain.ForumTopic, error) {
	var topic domain.ForumTopic
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&topic).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrTopicNotFound
		}
		return nil, err
	}
	return &topic, nil
}

// Create returns ErrSlugTaken on a slug collision
func (r *forumTopicRepository) Create(ctx context.Context, topic *domain.ForumTopic) error {
	if err := r.db.WithContext(ctx).Create(topic).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrSlugTaken
		}
		return err
	}
	return nil
}

// Update overwrites title and content and bumps updated_at
func (r *forumTopicRepository) Update(ctx context.Context, id, title, content string, at time.Time) error {
	result := r.db.WithContext(ctx).Model(&domain.ForumTopic{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"title":      title,
			"content":    content,
			"updated_at": at,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return common.ErrTopicNotFound
	}
	return nil
}

// Delete 토픽 삭제 (투표 → 댓글 투표 → 댓글 → 토픽 순서)
func (r *forumTopicRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("topic_id = ?", id).Delete(&domain.ForumVote{}).Error; err != nil {
			return fmt.Errorf("delete topic votes: %w", err)
		}

		postIDs := tx.Model(&domain.ForumPost{}).Select("id").Where("topic_id = ?", id)
		if err := tx.Where("post_id IN (?)", postIDs).Delete(&domain.ForumVote{}).Error; err != nil {
			return fmt.Errorf("delete post votes: %w", err)
		}

		if err := tx.Where("topic_id = ?", id).Delete(&domain.ForumPost{}).Error; err != nil {
			return fmt.Errorf("delete posts: %w", err)
		}

		result := tx.Where("id = ?", id).Delete(&domain.ForumTopic{})
		if result.Error != nil {
			return fmt.Errorf("delete topic: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return common.ErrTopicNotFound
		}
		return nil
	})
}
