package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/trailhead/trailhead-backend/internal/common"
	"github.com/trailhead/trailhead-backend/internal/domain"
	"github.com/trailhead/trailhead-backend/internal/repository"
	"github.com/trailhead/trailhead-backend/internal/vote"
)

// ForumVoter applies forum votes; satisfied by *vote.Ledger[domain.ForumTarget]
type ForumVoter interface {
	Apply(ctx context.Context, voterID string, target domain.ForumTarget, value int) (vote.Result, error)
	Toggle(ctx context.Context, voterID string, target domain.ForumTarget, value int) (vote.Result, error)
}

// ForumVoteReader loads the caller's votes for the topic page
type ForumVoteReader interface {
	UserVotes(ctx context.Context, voterID, topicID string, postIDs []string) (map[string]int, error)
}

// ForumService business logic for forum topics, posts and votes
type ForumService interface {
	ListTopics(ctx context.Context, q string, page, perPage int) ([]domain.TopicSummary, *common.V2Meta, error)
	GetTopic(ctx context.Context, viewer domain.Identity, slug string) (*domain.TopicDetail, error)
	CreateTopic(ctx context.Context, caller domain.Identity, req *domain.CreateTopicRequest) (*domain.CreatedRef, error)
	UpdateTopic(ctx context.Context, caller domain.Identity, topicID string, req *domain.UpdateTopicRequest) (*domain.CreatedRef, error)
	DeleteTopic(ctx context.Context, caller domain.Identity, topicID string) error

	CreatePost(ctx context.Context, caller domain.Identity, req *domain.CreatePostRequest) (*domain.CreatedRef, error)
	UpdatePost(ctx context.Context, caller domain.Identity, postID string, req *domain.UpdatePostRequest) error
	DeletePost(ctx context.Context, caller domain.Identity, postID string) error

	Vote(ctx context.Context, caller domain.Identity, req *domain.ForumVoteRequest) (vote.Result, error)
}

type forumService struct {
	topics repository.ForumTopicRepository
	posts  repository.ForumPostRepository
	votes  ForumVoteReader
	voter  ForumVoter
	now    Clock
}

// NewForumService creates a new ForumService
func NewForumService(
	topics repository.ForumTopicRepository,
	posts repository.ForumPostRepository,
	votes ForumVoteReader,
	voter ForumVoter,
) ForumService {
	return &forumService{topics: topics, posts: posts, votes: votes, voter: voter, now: utcNow}
}

func (s *forumService) ListTopics(ctx context.Context, q string, page, perPage int) ([]domain.TopicSummary, *common.V2Meta, error) {
	rows, total, err := s.topics.List(ctx, q, page, perPage)
	if err != nil {
		return nil, nil, err
	}
	meta := common.NewV2Meta(page, perPage, total)
	meta.Query = q
	return rows, meta, nil
}

// GetTopic returns a visible topic with its visible posts and the viewer's votes
func (s *forumService) GetTopic(ctx context.Context, viewer domain.Identity, slug string) (*domain.TopicDetail, error) {
	topic, err := s.topics.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	posts, err := s.posts.ListByTopic(ctx, topic.ID)
	if err != nil {
		return nil, err
	}

	postIDs := make([]string, len(posts))
	for i := range posts {
		postIDs[i] = posts[i].ID
	}
	userVotes, err := s.votes.UserVotes(ctx, viewer.UserID, topic.ID, postIDs)
	if err != nil {
		return nil, err
	}

	return &domain.TopicDetail{
		TopicView: *topic,
		Replies:   len(posts),
		Posts:     posts,
		UserVotes: userVotes,
	}, nil
}

func (s *forumService) CreateTopic(ctx context.Context, caller domain.Identity, req *domain.CreateTopicRequest) (*domain.CreatedRef, error) {
	if !caller.IsAuthenticated() {
		return nil, common.ErrUnauthorized
	}

	title := strings.TrimSpace(req.Title)
	if utf8.RuneCountInString(title) < domain.MinTopicTitleLength {
		return nil, common.Invalid("title must be at least %d characters", domain.MinTopicTitleLength)
	}

	now := s.now()
	topic := &domain.ForumTopic{
		ID:        newID(),
		Title:     title,
		Content:   req.Content,
		UserID:    caller.UserID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	slug, err := createWithSlug(ctx, topic.Title, func(ctx context.Context, slug string) error {
		topic.Slug = slug
		return s.topics.Create(ctx, topic)
	})
	if err != nil {
		return nil, fmt.Errorf("create topic: %w", err)
	}
	return &domain.CreatedRef{ID: topic.ID, Slug: slug}, nil
}

// loadTopicForOwner checks existence before ownership
func (s *forumService) loadTopicForOwner(ctx context.Context, caller domain.Identity, topicID string) (*domain.ForumTopic, error) {
	if !caller.IsAuthenticated() {
		return nil, common.ErrUnauthorized
	}
	topic, err := s.topics.FindByID(ctx, topicID)
	if err != nil {
		return nil, err
	}
	if err := Authorize(caller.UserID, topic.UserID); err != nil {
		return nil, err
	}
	return topic, nil
}

func (s *forumService) UpdateTopic(ctx context.Context, caller domain.Identity, topicID string, req *domain.UpdateTopicRequest) (*domain.CreatedRef, error) {
	topic, err := s.loadTopicForOwner(ctx, caller, topicID)
	if err != nil {
		return nil, err
	}
	if err := s.topics.Update(ctx, topic.ID, strings.TrimSpace(req.Title), req.Content, s.now()); err != nil {
		return nil, err
	}
	return &domain.CreatedRef{ID: topic.ID, Slug: topic.Slug}, nil
}

func (s *forumService) DeleteTopic(ctx context.Context, caller domain.Identity, topicID string) error {
	topic, err := s.loadTopicForOwner(ctx, caller, topicID)
	if err != nil {
		return err
	}
	return s.topics.Delete(ctx, topic.ID)
}

// CreatePost adds a reply; the repository bumps the topic's updated_at
func (s *forumService) CreatePost(ctx context.Context, caller domain.Identity, req *domain.CreatePostRequest) (*domain.CreatedRef, error) {
	if !caller.IsAuthenticated() {
		return nil, common.ErrUnauthorized
	}

	now := s.now()
	post := &domain.ForumPost{
		ID:        newID(),
		Content:   req.Content,
		UserID:    caller.UserID,
		TopicID:   req.TopicID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, err
	}
	return &domain.CreatedRef{ID: post.ID}, nil
}

func (s *forumService) loadPostForOwner(ctx context.Context, caller domain.Identity, postID string) (*domain.ForumPost, error) {
	if !caller.IsAuthenticated() {
		return nil, common.ErrUnauthorized
	}
	post, err := s.posts.FindByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if err := Authorize(caller.UserID, post.UserID); err != nil {
		return nil, err
	}
	return post, nil
}

// UpdatePost does not touch the parent topic's updated_at
func (s *forumService) UpdatePost(ctx context.Context, caller domain.Identity, postID string, req *domain.UpdatePostRequest) error {
	post, err := s.loadPostForOwner(ctx, caller, postID)
	if err != nil {
		return err
	}
	return s.posts.Update(ctx, post.ID, req.Content, s.now())
}

func (s *forumService) DeletePost(ctx context.Context, caller domain.Identity, postID string) error {
	post, err := s.loadPostForOwner(ctx, caller, postID)
	if err != nil {
		return err
	}
	return s.posts.Delete(ctx, post.ID)
}

func (s *forumService) Vote(ctx context.Context, caller domain.Identity, req *domain.ForumVoteRequest) (vote.Result, error) {
	if req.Value == nil {
		return vote.Result{}, common.ErrInvalidValue
	}
	target := domain.ForumTarget{TopicID: req.TopicID, PostID: req.PostID}
	if req.Toggle {
		return s.voter.Toggle(ctx, caller.UserID, target, *req.Value)
	}
	return s.voter.Apply(ctx, caller.UserID, target, *req.Value)
}
