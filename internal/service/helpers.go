package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/trailhead/trailhead-backend/internal/repository"
	"github.com/trailhead/trailhead-backend/pkg/slug"
)

// Clock returns the current time; tests substitute a fixed one
type Clock func() time.Time

func utcNow() time.Time { return time.Now().UTC() }

// slugAttempts bounds retries when a generated slug collides
const slugAttempts = 3

// createWithSlug calls create with fresh slugs until one is free
func createWithSlug(ctx context.Context, title string, create func(ctx context.Context, slug string) error) (string, error) {
	var err error
	for i := 0; i < slugAttempts; i++ {
		s := slug.New(title)
		if err = create(ctx, s); !errors.Is(err, repository.ErrSlugTaken) {
			return s, err
		}
	}
	return "", err
}

func newID() string { return uuid.NewString() }

// optional maps blank strings to nil
func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
