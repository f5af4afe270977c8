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

// ForumPostRepository 포럼 댓글 저장소
type ForumPostRepository interface {
	// ListByTopic returns the topic's visible posts, oldest first
	ListByTopic(ctx context.Context, topicID string) ([]domain.PostView, error)
	// FindByID ignores visibility; used for ownership checks
	FindByID(ctx context.Context, id string) (*domain.ForumPost, error)
	// Create inserts the post and bumps the parent topic's updated_at in one transaction
	Create(ctx context.Context, post *domain.ForumPost) error
	Update(ctx context.Context, id, content string, at time.Time) error
	// Delete removes the post and its votes
	Delete(ctx context.Context, id string) error
}

type forumPostRepository struct {
	db *gorm.DB
}

// NewForumPostRepository creates a new ForumPostRepository
func NewForumPostRepository(db *gorm.DB) ForumPostRepository {
	return &forumPostRepository{db: db}
}

func (r *forumPostRepository) ListByTopic(ctx context.Context, topicID string) ([]domain.PostView, error) {
	posts := make([]domain.PostView, 0)
	err := r.db.WithContext(ctx).Table("forum_posts").
		Scopes(Visible("forum_posts.vote_count")).
		Select(`forum_posts.id, forum_posts.content, forum_posts.user_id, forum_posts.vote_count,
			forum_posts.created_at, forum_posts.updated_at,
			COALESCE(users.name, '') AS author_name, users.display_name AS author_display_name`).
		Joins("LEFT JOIN users ON users.id = forum_posts.user_id").
		Where("forum_posts.topic_id = ?", topicID).
		Order("forum_posts.created_at ASC").
		Scan(&posts).Error
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}

	for i := range posts {
		posts[i].Author = domain.DisplayNameOr(posts[i].AuthorDisplayName, posts[i].AuthorName)
	}
	return posts, nil
}

// FindByID returns common.ErrPostNotFound when absent
func (r *forumPostRepository) FindByID(ctx context.Context, id string) (*domain.ForumPost, error) {
	var post domain.ForumPost
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrPostNotFound
		}
		return nil, err
	}
	return &post, nil
}

// Create returns common.ErrTopicNotFound when the parent topic is missing or hidden
func (r *forumPostRepository) Create(ctx context.Context, post *domain.ForumPost) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 부모 토픽의 updated_at 갱신 (최근 활동 정렬용)
		result := tx.Model(&domain.ForumTopic{}).
			Scopes(Visible("vote_count")).
			Where("id = ?", post.TopicID).
			UpdateColumn("updated_at", post.CreatedAt)
		if result.Error != nil {
			return fmt.Errorf("touch topic: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return common.ErrTopicNotFound
		}

		if err := tx.Create(post).Error; err != nil {
			return fmt.Errorf("create post: %w", err)
		}
		return nil
	})
}

func (r *forumPostRepository) Update(ctx context.Context, id, content string, at time.Time) error {
	result := r.db.WithContext(ctx).Model(&domain.ForumPost{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"content":    content,
			"updated_at": at,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return common.ErrPostNotFound
	}
	return nil
}

// Delete 댓글 삭제 (투표 → 댓글 순서)
func (r *forumPostRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&domain.ForumVote{}).Error; err != nil {
			return fmt.Errorf("delete post votes: %w", err)
		}

		result := tx.Where("id = ?", id).Delete(&domain.ForumPost{})
		if result.Error != nil {
			return fmt.Errorf("delete post: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return common.ErrPostNotFound
		}
		return nil
	})
}
