// Package vote implements the toggle-vote ledger shared by forum content and locations.
package vote

import (
	"context"
	"errors"
	"fmt"

	"github.com/trailhead/trailhead-backend/internal/common"
	"github.com/trailhead/trailhead-backend/pkg/logger"
)

// maxAttempts bounds the re-runs after a concurrent first vote by the same user
const maxAttempts = 3

// ErrDuplicateVote is returned by Store.InsertVote when the (voter, target)
// unique constraint rejects the row
var ErrDuplicateVote = errors.New("duplicate vote")

// Target identifies the entity a vote applies to
type Target interface {
	comparable
	Validate() error
	String() string
}

// Record is a persisted vote row
type Record struct {
	ID    string
	Value int
}

// Store is the persistence capability set the ledger needs for one entity family
type Store[T Target] interface {
	// Transaction runs fn against a store bound to a single database transaction
	Transaction(ctx context.Context, fn func(tx Store[T]) error) error
	// FindVote returns nil when the voter has no vote on target
	FindVote(ctx context.Context, voterID string, target T) (*Record, error)
	InsertVote(ctx context.Context, voterID string, target T, value int) error
	UpdateVote(ctx context.Context, id string, value int) error
	DeleteVote(ctx context.Context, id string) error
	// IncrementScore adds delta to the target's running score in one statement
	// and returns the score after the increment
	IncrementScore(ctx context.Context, target T, delta int) (int, error)
}

// Result is the outcome of Apply. Score is nil when nothing changed.
type Result struct {
	Score    *int `json:"vote_count"`
	UserVote int  `json:"user_vote"`
}

// Unchanged reports whether the request was a no-op
func (r Result) Unchanged() bool {
	return r.Score == nil
}

// Ledger applies votes for one entity family
type Ledger[T Target] struct {
	family string
	store  Store[T]
}

// NewLedger creates a ledger for the named entity family ("forum", "location")
func NewLedger[T Target](family string, store Store[T]) *Ledger[T] {
	return &Ledger[T]{family: family, store: store}
}

// Apply sets voterID's vote on target to value (-1, 0 or 1) and keeps the
// target's running score equal to the sum of its votes. value is taken literally.
func (l *Ledger[T]) Apply(ctx context.Context, voterID string, target T, value int) (Result, error) {
	return l.run(ctx, voterID, target, value, false)
}

// Toggle is Apply with the button convention: requesting the value the voter
// already holds retracts the vote (value 0).
func (l *Ledger[T]) Toggle(ctx context.Context, voterID string, target T, value int) (Result, error) {
	return l.run(ctx, voterID, target, value, true)
}

func (l *Ledger[T]) run(ctx context.Context, voterID string, target T, value int, toggle bool) (Result, error) {
	if voterID == "" {
		return Result{}, common.ErrUnauthorized
	}
	if err := target.Validate(); err != nil {
		return Result{}, err
	}
	if value < -1 || value > 1 {
		return Result{}, common.ErrInvalidValue
	}

	var (
		res     Result
		outcome string
	)
	for attempt := 1; ; attempt++ {
		err := l.store.Transaction(ctx, func(tx Store[T]) error {
			var err error
			res, outcome, err = apply(ctx, tx, voterID, target, value, toggle)
			return err
		})
		if err == nil {
			break
		}
		if errors.Is(err, ErrDuplicateVote) && attempt < maxAttempts {
			logger.GetLogger().Debug().
				Str("family", l.family).
				Str("target", target.String()).
				Int("attempt", attempt).
				Msg("concurrent vote insert, retrying")
			continue
		}
		votesApplied.WithLabelValues(l.family, "error").Inc()
		return Result{}, err
	}

	votesApplied.WithLabelValues(l.family, outcome).Inc()
	return res, nil
}

func apply[T Target](ctx context.Context, tx Store[T], voterID string, target T, value int, toggle bool) (Result, string, error) {
	existing, err := tx.FindVote(ctx, voterID, target)
	if err != nil {
		return Result{}, "", fmt.Errorf("find vote: %w", err)
	}

	old := 0
	if existing != nil {
		old = existing.Value
	}
	if toggle && value == old {
		value = 0
	}
	delta := value - old
	if delta == 0 {
		return Result{UserVote: value}, "unchanged", nil
	}

	var outcome string
	switch {
	case value == 0:
		// delta != 0 이면 기존 투표가 반드시 존재
		err = tx.DeleteVote(ctx, existing.ID)
		outcome = "deleted"
	case existing != nil:
		err = tx.UpdateVote(ctx, existing.ID, value)
		outcome = "updated"
	default:
		err = tx.InsertVote(ctx, voterID, target, value)
		outcome = "inserted"
	}
	if err != nil {
		if errors.Is(err, ErrDuplicateVote) {
			return Result{}, "", err
		}
		return Result{}, "", fmt.Errorf("%s vote: %w", outcome, err)
	}

	score, err := tx.IncrementScore(ctx, target, delta)
	if err != nil {
		return Result{}, "", err
	}
	return Result{Score: &score, UserVote: value}, outcome, nil
}
