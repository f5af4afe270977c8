package vote

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trailhead/trailhead-backend/internal/common"
)

type testTarget struct {
	ID string
}

func (t testTarget) Validate() error {
	if t.ID == "" {
		return common.ErrInvalidTarget
	}
	return nil
}

func (t testTarget) String() string { return "test:" + t.ID }

type voteKey struct {
	voter  string
	target testTarget
}

// memStore is an in-memory Store with snapshot rollback
type memStore struct {
	votes  map[voteKey]Record
	scores map[testTarget]int
	seq    int

	// raceOnInsert simulates another request committing the same first vote
	raceOnInsert  func(s *memStore)
	afterRollback func(s *memStore)
	failIncrement error
}

func newMemStore(targets ...testTarget) *memStore {
	s := &memStore{
		votes:  make(map[voteKey]Record),
		scores: make(map[testTarget]int),
	}
	for _, t := range targets {
		s.scores[t] = 0
	}
	return s
}

func (s *memStore) Transaction(ctx context.Context, fn func(tx Store[testTarget]) error) error {
	votes := make(map[voteKey]Record, len(s.votes))
	for k, v := range s.votes {
		votes[k] = v
	}
	scores := make(map[testTarget]int, len(s.scores))
	for k, v := range s.scores {
		scores[k] = v
	}

	if err := fn(s); err != nil {
		s.votes, s.scores = votes, scores
		if s.afterRollback != nil {
			s.afterRollback(s)
			s.afterRollback = nil
		}
		return err
	}
	return nil
}

func (s *memStore) FindVote(ctx context.Context, voterID string, target testTarget) (*Record, error) {
	rec, ok := s.votes[voteKey{voterID, target}]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (s *memStore) InsertVote(ctx context.Context, voterID string, target testTarget, value int) error {
	if s.raceOnInsert != nil {
		s.afterRollback, s.raceOnInsert = s.raceOnInsert, nil
		return ErrDuplicateVote
	}
	key := voteKey{voterID, target}
	if _, ok := s.votes[key]; ok {
		return ErrDuplicateVote
	}
	s.seq++
	s.votes[key] = Record{ID: fmt.Sprintf("v%d", s.seq), Value: value}
	return nil
}

func (s *memStore) UpdateVote(ctx context.Context, id string, value int) error {
	for k, v := range s.votes {
		if v.ID == id {
			v.Value = value
			s.votes[k] = v
			return nil
		}
	}
	return errors.New("vote row not found")
}

func (s *memStore) DeleteVote(ctx context.Context, id string) error {
	for k, v := range s.votes {
		if v.ID == id {
			delete(s.votes, k)
			return nil
		}
	}
	return errors.New("vote row not found")
}

func (s *memStore) IncrementScore(ctx context.Context, target testTarget, delta int) (int, error) {
	if s.failIncrement != nil {
		return 0, s.failIncrement
	}
	score, ok := s.scores[target]
	if !ok {
		return 0, common.ErrNotFound
	}
	score += delta
	s.scores[target] = score
	return score, nil
}

func (s *memStore) sum(target testTarget) int {
	total := 0
	for k, v := range s.votes {
		if k.target == target {
			total += v.Value
		}
	}
	return total
}

func TestLedger_Apply_FirstVote(t *testing.T) {
	target := testTarget{ID: "t1"}
	store := newMemStore(target)
	ledger := NewLedger[testTarget]("test", store)

	res, err := ledger.Apply(context.Background(), "alice", target, 1)
	require.NoError(t, err)
	require.NotNil(t, res.Score)
	assert.Equal(t, 1, *res.Score)
	assert.Equal(t, 1, res.UserVote)
	assert.False(t, res.Unchanged())
}

func TestLedger_Apply_Idempotent(t *testing.T) {
	target := testTarget{ID: "t1"}
	store := newMemStore(target)
	ledger := NewLedger[testTarget]("test", store)
	ctx := context.Background()

	_, err := ledger.Apply(ctx, "alice", target, -1)
	require.NoError(t, err)

	res, err := ledger.Apply(ctx, "alice", target, -1)
	require.NoError(t, err)
	assert.True(t, res.Unchanged())
	assert.Equal(t, -1, res.UserVote)
	assert.Equal(t, -1, store.scores[target])
}

func TestLedger_Apply_ToggleInverse(t *testing.T) {
	target := testTarget{ID: "t1"}
	store := newMemStore(target)
	ledger := NewLedger[testTarget]("test", store)
	ctx := context.Background()

	_, err := ledger.Apply(ctx, "bob", target, 1)
	require.NoError(t, err)

	for _, v := range []int{1, -1} {
		before := store.scores[target]
		_, err := ledger.Apply(ctx, "alice", target, v)
		require.NoError(t, err)

		res, err := ledger.Apply(ctx, "alice", target, 0)
		require.NoError(t, err)
		require.NotNil(t, res.Score)
		assert.Equal(t, before, *res.Score)
		assert.Equal(t, 0, res.UserVote)
		_, exists := store.votes[voteKey{"alice", target}]
		assert.False(t, exists)
	}
}

func TestLedger_Apply_Flip(t *testing.T) {
	target := testTarget{ID: "t1"}
	store := newMemStore(target)
	ledger := NewLedger[testTarget]("test", store)
	ctx := context.Background()

	_, err := ledger.Apply(ctx, "alice", target, 1)
	require.NoError(t, err)

	res, err := ledger.Apply(ctx, "alice", target, -1)
	require.NoError(t, err)
	require.NotNil(t, res.Score)
	assert.Equal(t, -1, *res.Score)
	assert.Len(t, store.votes, 1)
}

func TestLedger_Apply_RemoveWithoutVoteIsNoop(t *testing.T) {
	target := testTarget{ID: "t1"}
	store := newMemStore(target)
	ledger := NewLedger[testTarget]("test", store)

	res, err := ledger.Apply(context.Background(), "alice", target, 0)
	require.NoError(t, err)
	assert.Nil(t, res.Score)
	assert.Equal(t, 0, res.UserVote)
	assert.Equal(t, 0, store.scores[target])
}

func TestLedger_Apply_ScoreConsistency(t *testing.T) {
	targets := []testTarget{{ID: "a"}, {ID: "b"}}
	store := newMemStore(targets...)
	ledger := NewLedger[testTarget]("test", store)
	ctx := context.Background()
	rnd := rand.New(rand.NewSource(42))
	users := []string{"u1", "u2", "u3", "u4", "u5"}

	for i := 0; i < 500; i++ {
		user := users[rnd.Intn(len(users))]
		target := targets[rnd.Intn(len(targets))]
		value := rnd.Intn(3) - 1

		res, err := ledger.Apply(ctx, user, target, value)
		require.NoError(t, err)
		assert.Equal(t, value, res.UserVote)

		for _, tt := range targets {
			require.Equal(t, store.sum(tt), store.scores[tt], "step %d target %s", i, tt)
		}
	}
}

func TestLedger_Apply_Errors(t *testing.T) {
	target := testTarget{ID: "t1"}
	store := newMemStore(target)
	ledger := NewLedger[testTarget]("test", store)
	ctx := context.Background()

	_, err := ledger.Apply(ctx, "", target, 1)
	assert.ErrorIs(t, err, common.ErrUnauthorized)

	_, err = ledger.Apply(ctx, "alice", testTarget{}, 1)
	assert.ErrorIs(t, err, common.ErrInvalidTarget)

	for _, v := range []int{2, -2, 100} {
		_, err = ledger.Apply(ctx, "alice", target, v)
		assert.ErrorIs(t, err, common.ErrInvalidValue)
	}

	assert.Empty(t, store.votes)
	assert.Equal(t, 0, store.scores[target])
}

func TestLedger_Apply_MissingTargetRollsBack(t *testing.T) {
	store := newMemStore()
	ledger := NewLedger[testTarget]("test", store)

	_, err := ledger.Apply(context.Background(), "alice", testTarget{ID: "ghost"}, 1)
	assert.ErrorIs(t, err, common.ErrNotFound)
	assert.Empty(t, store.votes)
}

func TestLedger_Apply_StorageErrorRollsBack(t *testing.T) {
	target := testTarget{ID: "t1"}
	store := newMemStore(target)
	store.failIncrement = errors.New("connection reset")
	ledger := NewLedger[testTarget]("test", store)

	_, err := ledger.Apply(context.Background(), "alice", target, 1)
	require.Error(t, err)
	assert.True(t, http500(err))
	assert.Empty(t, store.votes)
}

func TestLedger_Apply_RetriesConcurrentInsert(t *testing.T) {
	target := testTarget{ID: "t1"}
	store := newMemStore(target)
	store.raceOnInsert = func(s *memStore) {
		s.votes[voteKey{"alice", target}] = Record{ID: "other", Value: 1}
		s.scores[target]++
	}
	ledger := NewLedger[testTarget]("test", store)

	res, err := ledger.Apply(context.Background(), "alice", target, -1)
	require.NoError(t, err)
	require.NotNil(t, res.Score)
	assert.Equal(t, -1, *res.Score)
	assert.Equal(t, -1, store.votes[voteKey{"alice", target}].Value)
	assert.Len(t, store.votes, 1)
}

func http500(err error) bool {
	return common.StatusFor(err) == 500
}

func TestLedger_Toggle(t *testing.T) {
	target := testTarget{ID: "topic"}
	store := newMemStore(target)
	ledger := NewLedger[testTarget]("test", store)
	ctx := context.Background()

	// B upvotes, clicks upvote again, C downvotes
	res, err := ledger.Toggle(ctx, "B", target, 1)
	require.NoError(t, err)
	require.NotNil(t, res.Score)
	assert.Equal(t, 1, *res.Score)
	assert.Equal(t, 1, res.UserVote)

	res, err = ledger.Toggle(ctx, "B", target, 1)
	require.NoError(t, err)
	require.NotNil(t, res.Score)
	assert.Equal(t, 0, *res.Score)
	assert.Equal(t, 0, res.UserVote)

	res, err = ledger.Toggle(ctx, "C", target, -1)
	require.NoError(t, err)
	require.NotNil(t, res.Score)
	assert.Equal(t, -1, *res.Score)
	assert.Equal(t, -1, res.UserVote)
}

func TestLedger_Toggle_ZeroWithoutVoteIsUnchanged(t *testing.T) {
	target := testTarget{ID: "topic"}
	store := newMemStore(target)
	ledger := NewLedger[testTarget]("test", store)

	res, err := ledger.Toggle(context.Background(), "B", target, 0)
	require.NoError(t, err)
	assert.True(t, res.Unchanged())
	assert.Equal(t, 0, res.UserVote)
}
