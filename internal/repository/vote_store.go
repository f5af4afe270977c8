package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/trailhead/trailhead-backend/internal/common"
	"github.com/trailhead/trailhead-backend/internal/domain"
	"github.com/trailhead/trailhead-backend/internal/vote"
	"gorm.io/gorm"
)

// incrementScore adds delta to column in one UPDATE and reads back the new value.
// Both statements run on db, which is a transaction when called from the ledger.
func incrementScore(ctx context.Context, db *gorm.DB, model interface{}, column, id string, delta int, notFound error) (int, error) {
	result := db.WithContext(ctx).Model(model).
		Where("id = ?", id).
		UpdateColumn(column, gorm.Expr(column+" + ?", delta))
	if result.Error != nil {
		return 0, fmt.Errorf("increment %s: %w", column, result.Error)
	}
	if result.RowsAffected == 0 {
		return 0, notFound
	}

	var score int
	if err := db.WithContext(ctx).Model(model).
		Select(column).
		Where("id = ?", id).
		Scan(&score).Error; err != nil {
		return 0, fmt.Errorf("read %s: %w", column, err)
	}
	return score, nil
}

func translateInsert(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return vote.ErrDuplicateVote
	}
	return err
}

// ForumVoteStore persists forum votes and topic/post scores
type ForumVoteStore struct {
	db *gorm.DB
}

// NewForumVoteStore creates a new ForumVoteStore
func NewForumVoteStore(db *gorm.DB) *ForumVoteStore {
	return &ForumVoteStore{db: db}
}

var _ vote.Store[domain.ForumTarget] = (*ForumVoteStore)(nil)

func (s *ForumVoteStore) Transaction(ctx context.Context, fn func(tx vote.Store[domain.ForumTarget]) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&ForumVoteStore{db: tx})
	})
}

func (s *ForumVoteStore) scoped(ctx context.Context, voterID string, target domain.ForumTarget) *gorm.DB {
	q := s.db.WithContext(ctx).Where("user_id = ?", voterID)
	if target.TopicID != "" {
		return q.Where("topic_id = ?", target.TopicID)
	}
	return q.Where("post_id = ?", target.PostID)
}

func (s *ForumVoteStore) FindVote(ctx context.Context, voterID string, target domain.ForumTarget) (*vote.Record, error) {
	var rows []domain.ForumVote
	if err := s.scoped(ctx, voterID, target).Limit(1).Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &vote.Record{ID: rows[0].ID, Value: rows[0].Value}, nil
}

func (s *ForumVoteStore) InsertVote(ctx context.Context, voterID string, target domain.ForumTarget, value int) error {
	row := &domain.ForumVote{
		ID:        uuid.NewString(),
		UserID:    voterID,
		Value:     value,
		CreatedAt: time.Now(),
	}
	if target.TopicID != "" {
		row.TopicID = &target.TopicID
	} else {
		row.PostID = &target.PostID
	}
	return translateInsert(s.db.WithContext(ctx).Create(row).Error)
}

func (s *ForumVoteStore) UpdateVote(ctx context.Context, id string, value int) error {
	return s.db.WithContext(ctx).Model(&domain.ForumVote{}).Where("id = ?", id).Update("value", value).Error
}

func (s *ForumVoteStore) DeleteVote(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.ForumVote{}).Error
}

func (s *ForumVoteStore) IncrementScore(ctx context.Context, target domain.ForumTarget, delta int) (int, error) {
	if target.TopicID != "" {
		return incrementScore(ctx, s.db, &domain.ForumTopic{}, "vote_count", target.TopicID, delta, common.ErrTopicNotFound)
	}
	return incrementScore(ctx, s.db, &domain.ForumPost{}, "vote_count", target.PostID, delta, common.ErrPostNotFound)
}

// UserVotes returns voterID's votes on a topic and the given posts, keyed
// "topic:<id>" / "post:<id>". Entities without a vote are absent.
func (s *ForumVoteStore) UserVotes(ctx context.Context, voterID, topicID string, postIDs []string) (map[string]int, error) {
	votes := make(map[string]int)
	if voterID == "" {
		return votes, nil
	}

	var rows []domain.ForumVote
	q := s.db.WithContext(ctx).Where("user_id = ?", voterID)
	if len(postIDs) > 0 {
		q = q.Where("(topic_id = ? OR post_id IN ?)", topicID, postIDs)
	} else {
		q = q.Where("topic_id = ?", topicID)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load user votes: %w", err)
	}

	for _, row := range rows {
		switch {
		case row.TopicID != nil:
			votes[domain.ForumTarget{TopicID: *row.TopicID}.String()] = row.Value
		case row.PostID != nil:
			votes[domain.ForumTarget{PostID: *row.PostID}.String()] = row.Value
		}
	}
	return votes, nil
}

// LocationVoteStore persists location verification votes
type LocationVoteStore struct {
	db *gorm.DB
}

// NewLocationVoteStore creates a new LocationVoteStore
func NewLocationVoteStore(db *gorm.DB) *LocationVoteStore {
	return &LocationVoteStore{db: db}
}

var _ vote.Store[domain.LocationTarget] = (*LocationVoteStore)(nil)

func (s *LocationVoteStore) Transaction(ctx context.Context, fn func(tx vote.Store[domain.LocationTarget]) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&LocationVoteStore{db: tx})
	})
}

func (s *LocationVoteStore) FindVote(ctx context.Context, voterID string, target domain.LocationTarget) (*vote.Record, error) {
	var rows []domain.LocationVote
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND location_id = ?", voterID, target.LocationID).
		Limit(1).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &vote.Record{ID: rows[0].ID, Value: rows[0].Value}, nil
}

func (s *LocationVoteStore) InsertVote(ctx context.Context, voterID string, target domain.LocationTarget, value int) error {
	row := &domain.LocationVote{
		ID:         uuid.NewString(),
		UserID:     voterID,
		LocationID: target.LocationID,
		Value:      value,
		CreatedAt:  time.Now(),
	}
	return translateInsert(s.db.WithContext(ctx).Create(row).Error)
}

func (s *LocationVoteStore) UpdateVote(ctx context.Context, id string, value int) error {
	return s.db.WithContext(ctx).Model(&domain.LocationVote{}).Where("id = ?", id).Update("value", value).Error
}

func (s *LocationVoteStore) DeleteVote(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.LocationVote{}).Error
}

func (s *LocationVoteStore) IncrementScore(ctx context.Context, target domain.LocationTarget, delta int) (int, error) {
	return incrementScore(ctx, s.db, &domain.Location{}, "verified_count", target.LocationID, delta, common.ErrLocationNotFound)
}

// UserVote returns voterID's vote on the location, 0 when none
func (s *LocationVoteStore) UserVote(ctx context.Context, voterID, locationID string) (int, error) {
	if voterID == "" {
		return 0, nil
	}
	rec, err := s.FindVote(ctx, voterID, domain.LocationTarget{LocationID: locationID})
	if err != nil {
		return 0, fmt.Errorf("load user vote: %w", err)
	}
	if rec == nil {
		return 0, nil
	}
	return rec.Value, nil
}
