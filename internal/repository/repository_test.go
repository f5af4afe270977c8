package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trailhead/trailhead-backend/internal/common"
	"github.com/trailhead/trailhead-backend/internal/domain"
	"github.com/trailhead/trailhead-backend/internal/testutil"
	"github.com/trailhead/trailhead-backend/internal/vote"
	"gorm.io/gorm"
)

var baseTime = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func seedUser(t *testing.T, db *gorm.DB, id, name string, displayName *string) {
	t.Helper()
	require.NoError(t, NewUserRepository(db).Upsert(context.Background(), &domain.User{
		ID: id, Name: name, DisplayName: displayName, Email: id + "@example.com",
	}))
}

func seedTopic(t *testing.T, db *gorm.DB, id, userID string, score int, at time.Time) *domain.ForumTopic {
	t.Helper()
	topic := &domain.ForumTopic{
		ID: id, Slug: "slug-" + id, Title: "Title " + id, Content: "content of " + id,
		UserID: userID, VoteCount: score, CreatedAt: at, UpdatedAt: at,
	}
	require.NoError(t, NewForumTopicRepository(db).Create(context.Background(), topic))
	return topic
}

func seedPost(t *testing.T, db *gorm.DB, id, topicID, userID string, at time.Time) *domain.ForumPost {
	t.Helper()
	post := &domain.ForumPost{
		ID: id, TopicID: topicID, UserID: userID, Content: "reply " + id, CreatedAt: at, UpdatedAt: at,
	}
	require.NoError(t, NewForumPostRepository(db).Create(context.Background(), post))
	return post
}

func seedLocation(t *testing.T, db *gorm.DB, id, userID string, score int, at time.Time) *domain.Location {
	t.Helper()
	loc := &domain.Location{
		ID: id, Slug: "loc-" + id, Name: "Marsh " + id, Content: "ducks", UserID: userID,
		LastUpdatedByUserID: userID, VerifiedCount: score, CreatedAt: at, UpdatedAt: at,
	}
	require.NoError(t, NewLocationRepository(db).Create(context.Background(), loc))
	return loc
}

func TestForumTopicRepository_VisibilityBoundary(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	repo := NewForumTopicRepository(db)
	seedUser(t, db, "u1", "alice", nil)

	seedTopic(t, db, "hidden", "u1", -3, baseTime)
	seedTopic(t, db, "shown", "u1", -2, baseTime.Add(time.Minute))

	rows, total, err := repo.List(ctx, "", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, rows, 1)
	assert.Equal(t, "shown", rows[0].ID)
	assert.Equal(t, "alice", rows[0].Author)

	_, err = repo.FindBySlug(ctx, "slug-hidden")
	assert.ErrorIs(t, err, common.ErrTopicNotFound)

	view, err := repo.FindBySlug(ctx, "slug-shown")
	require.NoError(t, err)
	assert.Equal(t, -2, view.VoteCount)

	// ownership lookups ignore visibility
	topic, err := repo.FindByID(ctx, "hidden")
	require.NoError(t, err)
	assert.Equal(t, "u1", topic.UserID)
}

func TestForumTopicRepository_ListOrderSearchAndReplies(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	repo := NewForumTopicRepository(db)
	dn := "Duck Hunter"
	seedUser(t, db, "u1", "alice", &dn)

	seedTopic(t, db, "old", "u1", 0, baseTime)
	seedTopic(t, db, "new", "u1", 0, baseTime.Add(time.Hour))

	// a reply makes the older topic most recently active
	seedPost(t, db, "p1", "old", "u1", baseTime.Add(2*time.Hour))
	seedPost(t, db, "p2", "old", "u1", baseTime.Add(3*time.Hour))
	require.NoError(t, db.Model(&domain.ForumPost{}).Where("id = ?", "p2").Update("vote_count", -3).Error)

	rows, total, err := repo.List(ctx, "", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, rows, 2)
	assert.Equal(t, "old", rows[0].ID)
	assert.Equal(t, int64(1), rows[0].Replies)
	assert.Equal(t, "Duck Hunter", rows[0].Author)
	assert.Equal(t, "new", rows[1].ID)

	rows, total, err = repo.List(ctx, "Title new", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, rows, 1)
	assert.Equal(t, "new", rows[0].ID)

	rows, total, err = repo.List(ctx, "100%", 1, 10)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, rows)

	rows, _, err = repo.List(ctx, "", 2, 1)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "new", rows[0].ID)
}

func TestForumTopicRepository_CreateDuplicateSlug(t *testing.T) {
	db := testutil.NewDB(t)
	seedTopic(t, db, "a", "u1", 0, baseTime)

	err := NewForumTopicRepository(db).Create(context.Background(), &domain.ForumTopic{
		ID: "b", Slug: "slug-a", Title: "dup", Content: "dup content", UserID: "u1",
		CreatedAt: baseTime, UpdatedAt: baseTime,
	})
	assert.ErrorIs(t, err, ErrSlugTaken)
}

func TestForumPostRepository_CreateTouchesTopic(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	seedTopic(t, db, "t1", "u1", 0, baseTime)

	later := baseTime.Add(48 * time.Hour)
	seedPost(t, db, "p1", "t1", "u2", later)

	topic, err := NewForumTopicRepository(db).FindByID(ctx, "t1")
	require.NoError(t, err)
	assert.True(t, topic.UpdatedAt.Equal(later))
	assert.True(t, topic.CreatedAt.Equal(baseTime))
}

func TestForumPostRepository_CreateIntoMissingOrHiddenTopic(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	repo := NewForumPostRepository(db)
	seedTopic(t, db, "buried", "u1", -5, baseTime)

	for _, topicID := range []string{"missing", "buried"} {
		err := repo.Create(ctx, &domain.ForumPost{
			ID: "p-" + topicID, TopicID: topicID, UserID: "u2", Content: "hello there", CreatedAt: baseTime, UpdatedAt: baseTime,
		})
		assert.ErrorIs(t, err, common.ErrTopicNotFound, topicID)
	}

	var count int64
	require.NoError(t, db.Model(&domain.ForumPost{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestForumPostRepository_ListByTopicVisibleOldestFirst(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	seedTopic(t, db, "t1", "u1", 0, baseTime)
	seedPost(t, db, "second", "t1", "u1", baseTime.Add(2*time.Minute))
	seedPost(t, db, "first", "t1", "u1", baseTime.Add(time.Minute))
	seedPost(t, db, "buried", "t1", "u1", baseTime.Add(3*time.Minute))
	require.NoError(t, db.Model(&domain.ForumPost{}).Where("id = ?", "buried").Update("vote_count", -3).Error)

	posts, err := NewForumPostRepository(db).ListByTopic(ctx, "t1")
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, "first", posts[0].ID)
	assert.Equal(t, "second", posts[1].ID)
	assert.Equal(t, "Unknown", posts[0].Author)
}

func TestForumTopicRepository_DeleteCascades(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	seedTopic(t, db, "t1", "u1", 0, baseTime)
	seedTopic(t, db, "other", "u1", 0, baseTime)
	seedPost(t, db, "p1", "t1", "u1", baseTime)
	seedPost(t, db, "p2", "t1", "u1", baseTime)
	seedPost(t, db, "keep", "other", "u1", baseTime)

	ledger := vote.NewLedger[domain.ForumTarget]("forum", NewForumVoteStore(db))
	for _, target := range []domain.ForumTarget{{TopicID: "t1"}, {PostID: "p1"}, {PostID: "p2"}, {PostID: "keep"}} {
		_, err := ledger.Apply(ctx, "u2", target, 1)
		require.NoError(t, err)
	}

	require.NoError(t, NewForumTopicRepository(db).Delete(ctx, "t1"))

	var votes []domain.ForumVote
	require.NoError(t, db.Find(&votes).Error)
	require.Len(t, votes, 1)
	require.NotNil(t, votes[0].PostID)
	assert.Equal(t, "keep", *votes[0].PostID)

	var posts int64
	require.NoError(t, db.Model(&domain.ForumPost{}).Where("topic_id = ?", "t1").Count(&posts).Error)
	assert.Zero(t, posts)

	_, err := NewForumTopicRepository(db).FindByID(ctx, "t1")
	assert.ErrorIs(t, err, common.ErrTopicNotFound)

	assert.ErrorIs(t, NewForumTopicRepository(db).Delete(ctx, "t1"), common.ErrTopicNotFound)
}

func TestForumVoteStore_LedgerKeepsScoreConsistent(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	seedTopic(t, db, "t1", "u1", 0, baseTime)
	store := NewForumVoteStore(db)
	ledger := vote.NewLedger[domain.ForumTarget]("forum", store)
	target := domain.ForumTarget{TopicID: "t1"}

	steps := []struct {
		user  string
		value int
	}{
		{"a", 1}, {"b", 1}, {"a", -1}, {"c", -1}, {"b", 0}, {"a", -1}, {"c", 1}, {"b", -1},
	}
	for _, step := range steps {
		_, err := ledger.Apply(ctx, step.user, target, step.value)
		require.NoError(t, err)

		var sum int
		require.NoError(t, db.Model(&domain.ForumVote{}).Select("COALESCE(SUM(value), 0)").Where("topic_id = ?", "t1").Scan(&sum).Error)
		topic, err := NewForumTopicRepository(db).FindByID(ctx, "t1")
		require.NoError(t, err)
		assert.Equal(t, sum, topic.VoteCount)
	}

	var rows int64
	require.NoError(t, db.Model(&domain.ForumVote{}).Where("user_id = ? AND topic_id = ?", "a", "t1").Count(&rows).Error)
	assert.Equal(t, int64(1), rows)

	votes, err := store.UserVotes(ctx, "a", "t1", nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"topic:t1": -1}, votes)
}

func TestForumVoteStore_UniqueConstraint(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	seedTopic(t, db, "t1", "u1", 0, baseTime)
	store := NewForumVoteStore(db)
	target := domain.ForumTarget{TopicID: "t1"}

	require.NoError(t, store.InsertVote(ctx, "a", target, 1))
	assert.ErrorIs(t, store.InsertVote(ctx, "a", target, -1), vote.ErrDuplicateVote)
}

func TestForumVoteStore_MissingTargetRollsBack(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	ledger := vote.NewLedger[domain.ForumTarget]("forum", NewForumVoteStore(db))

	_, err := ledger.Apply(ctx, "a", domain.ForumTarget{PostID: "ghost"}, 1)
	assert.ErrorIs(t, err, common.ErrPostNotFound)

	var count int64
	require.NoError(t, db.Model(&domain.ForumVote{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestForumVoteStore_UserVotesForTopicPage(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	seedTopic(t, db, "t1", "u1", 0, baseTime)
	seedPost(t, db, "p1", "t1", "u1", baseTime)
	seedPost(t, db, "p2", "t1", "u1", baseTime)
	store := NewForumVoteStore(db)
	ledger := vote.NewLedger[domain.ForumTarget]("forum", store)

	_, err := ledger.Apply(ctx, "me", domain.ForumTarget{TopicID: "t1"}, 1)
	require.NoError(t, err)
	_, err = ledger.Apply(ctx, "me", domain.ForumTarget{PostID: "p2"}, -1)
	require.NoError(t, err)
	_, err = ledger.Apply(ctx, "someone", domain.ForumTarget{PostID: "p1"}, 1)
	require.NoError(t, err)

	votes, err := store.UserVotes(ctx, "me", "t1", []string{"p1", "p2"})
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"topic:t1": 1, "post:p2": -1}, votes)

	votes, err = store.UserVotes(ctx, "", "t1", []string{"p1"})
	require.NoError(t, err)
	assert.Empty(t, votes)
}

func TestLocationRepository_VisibilityAndDetail(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	repo := NewLocationRepository(db)
	dn := "Marsh Warden"
	seedUser(t, db, "editor", "ed", &dn)

	seedLocation(t, db, "hidden", "editor", -3, baseTime)
	seedLocation(t, db, "shown", "editor", -2, baseTime.Add(time.Minute))
	seedLocation(t, db, "newest", "editor", 4, baseTime.Add(time.Hour))

	rows, total, err := repo.List(ctx, "", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, rows, 2)
	assert.Equal(t, "newest", rows[0].ID)
	assert.Equal(t, "shown", rows[1].ID)

	_, err = repo.FindBySlug(ctx, "loc-hidden")
	assert.ErrorIs(t, err, common.ErrLocationNotFound)

	detail, err := repo.FindBySlug(ctx, "loc-shown")
	require.NoError(t, err)
	assert.Equal(t, "Marsh Warden", detail.LastUpdatedByName)
	assert.Equal(t, domain.PublicLandUnknown, detail.IsPublicLand)

	rows, total, err = repo.List(ctx, "Marsh newest", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "newest", rows[0].ID)
}

func TestLocationRepository_UpdateWithEditAndDeleteCascade(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	repo := NewLocationRepository(db)
	loc := seedLocation(t, db, "l1", "owner", 0, baseTime)

	lat := 45.1
	desc := "flooded timber"
	loc.Latitude = &lat
	loc.Description = &desc
	loc.IsPublicLand = domain.PublicLandPublic
	loc.Content = "geese too"
	loc.UpdatedAt = baseTime.Add(time.Hour)
	edit := &domain.LocationEdit{
		ID: "e1", LocationID: "l1", UserID: "owner", OldContent: "ducks", NewContent: "geese too", EditTimestamp: loc.UpdatedAt,
	}
	require.NoError(t, repo.Update(ctx, loc, edit))

	stored, err := repo.FindByID(ctx, "l1")
	require.NoError(t, err)
	require.NotNil(t, stored.Latitude)
	assert.Equal(t, 45.1, *stored.Latitude)
	assert.Nil(t, stored.Longitude)
	assert.Equal(t, domain.PublicLandPublic, stored.IsPublicLand)
	assert.Equal(t, "geese too", stored.Content)

	edits, err := repo.ListEdits(ctx, "l1")
	require.NoError(t, err)
	require.Len(t, edits, 1)
	assert.Equal(t, "ducks", edits[0].OldContent)

	ledger := vote.NewLedger[domain.LocationTarget]("location", NewLocationVoteStore(db))
	res, err := ledger.Apply(ctx, "voter", domain.LocationTarget{LocationID: "l1"}, 1)
	require.NoError(t, err)
	require.NotNil(t, res.Score)
	assert.Equal(t, 1, *res.Score)

	userVote, err := NewLocationVoteStore(db).UserVote(ctx, "voter", "l1")
	require.NoError(t, err)
	assert.Equal(t, 1, userVote)

	require.NoError(t, repo.Delete(ctx, "l1"))

	var votes, editRows int64
	require.NoError(t, db.Model(&domain.LocationVote{}).Count(&votes).Error)
	require.NoError(t, db.Model(&domain.LocationEdit{}).Count(&editRows).Error)
	assert.Zero(t, votes)
	assert.Zero(t, editRows)
	_, err = repo.FindByID(ctx, "l1")
	assert.ErrorIs(t, err, common.ErrLocationNotFound)
}

func TestUserRepository_UpsertKeepsDisplayName(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	repo := NewUserRepository(db)

	seedUser(t, db, "u1", "alice", nil)
	dn := "Al"
	require.NoError(t, repo.UpdateDisplayName(ctx, "u1", &dn, baseTime))

	require.NoError(t, repo.Upsert(ctx, &domain.User{ID: "u1", Name: "alice2", Email: "new@example.com"}))

	user, err := repo.FindByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "alice2", user.Name)
	assert.Equal(t, "new@example.com", user.Email)
	assert.Equal(t, "Al", user.Display())

	require.NoError(t, repo.UpdateDisplayName(ctx, "u1", nil, baseTime))
	user, err = repo.FindByID(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, user.DisplayName)

	_, err = repo.FindByID(ctx, "nobody")
	assert.ErrorIs(t, err, common.ErrUserNotFound)
	assert.ErrorIs(t, repo.UpdateDisplayName(ctx, "nobody", nil, baseTime), common.ErrUserNotFound)
}
