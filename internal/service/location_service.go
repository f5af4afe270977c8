package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/trailhead/trailhead-backend/internal/common"
	"github.com/trailhead/trailhead-backend/internal/domain"
	"github.com/trailhead/trailhead-backend/internal/repository"
	"github.com/trailhead/trailhead-backend/internal/vote"
)

// LocationVoter applies verification votes; satisfied by *vote.Ledger[domain.LocationTarget]
type LocationVoter interface {
	Apply(ctx context.Context, voterID string, target domain.LocationTarget, value int) (vote.Result, error)
	Toggle(ctx context.Context, voterID string, target domain.LocationTarget, value int) (vote.Result, error)
}

// LocationVoteReader loads the caller's vote for the location page
type LocationVoteReader interface {
	UserVote(ctx context.Context, voterID, locationID string) (int, error)
}

// LocationService business logic for the location directory
type LocationService interface {
	ListLocations(ctx context.Context, q string, page, perPage int) ([]domain.Location, *common.V2Meta, error)
	GetLocation(ctx context.Context, viewer domain.Identity, slug string) (*domain.LocationDetail, error)
	ListEdits(ctx context.Context, slug string) ([]domain.LocationEditView, error)
	CreateLocation(ctx context.Context, caller domain.Identity, req *domain.LocationRequest) (*domain.CreatedRef, error)
	UpdateLocation(ctx context.Context, caller domain.Identity, locationID string, req *domain.LocationRequest) (*domain.CreatedRef, error)
	DeleteLocation(ctx context.Context, caller domain.Identity, locationID string) error
	Vote(ctx context.Context, caller domain.Identity, req *domain.LocationVoteRequest) (vote.Result, error)
}

type locationService struct {
	locations repository.LocationRepository
	votes     LocationVoteReader
	voter     LocationVoter
	now       Clock
}

// NewLocationService creates a new LocationService
func NewLocationService(locations repository.LocationRepository, votes LocationVoteReader, voter LocationVoter) LocationService {
	return &locationService{locations: locations, votes: votes, voter: voter, now: utcNow}
}

func (s *locationService) ListLocations(ctx context.Context, q string, page, perPage int) ([]domain.Location, *common.V2Meta, error) {
	rows, total, err := s.locations.List(ctx, q, page, perPage)
	if err != nil {
		return nil, nil, err
	}
	meta := common.NewV2Meta(page, perPage, total)
	meta.Query = q
	return rows, meta, nil
}

func (s *locationService) GetLocation(ctx context.Context, viewer domain.Identity, slug string) (*domain.LocationDetail, error) {
	detail, err := s.locations.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	detail.UserVote, err = s.votes.UserVote(ctx, viewer.UserID, detail.ID)
	if err != nil {
		return nil, err
	}
	return detail, nil
}

// ListEdits returns the history of a visible location
func (s *locationService) ListEdits(ctx context.Context, slug string) ([]domain.LocationEditView, error) {
	detail, err := s.locations.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	return s.locations.ListEdits(ctx, detail.ID)
}

// applyRequest copies the editable fields, coercing coordinates and the public land flag
func applyRequest(loc *domain.Location, req *domain.LocationRequest) error {
	lat, err := domain.ParseCoordinate(req.Latitude)
	if err != nil {
		return common.Invalid("latitude: %v", err)
	}
	lng, err := domain.ParseCoordinate(req.Longitude)
	if err != nil {
		return common.Invalid("longitude: %v", err)
	}

	loc.Name = strings.TrimSpace(req.Name)
	loc.Content = req.Content
	loc.Description = optional(req.Description)
	loc.ContactPhone = optional(req.ContactPhone)
	loc.ContactEmail = optional(req.ContactEmail)
	loc.ContactWebsite = optional(req.ContactWebsite)
	loc.Latitude = lat
	loc.Longitude = lng
	loc.IsPublicLand = req.IsPublicLand.PublicLand()
	return nil
}

func (s *locationService) CreateLocation(ctx context.Context, caller domain.Identity, req *domain.LocationRequest) (*domain.CreatedRef, error) {
	if !caller.IsAuthenticated() {
		return nil, common.ErrUnauthorized
	}

	now := s.now()
	loc := &domain.Location{
		ID:                  newID(),
		UserID:              caller.UserID,
		LastUpdatedByUserID: caller.UserID,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if err := applyRequest(loc, req); err != nil {
		return nil, err
	}

	slug, err := createWithSlug(ctx, loc.Name, func(ctx context.Context, slug string) error {
		loc.Slug = slug
		return s.locations.Create(ctx, loc)
	})
	if err != nil {
		return nil, fmt.Errorf("create location: %w", err)
	}
	return &domain.CreatedRef{ID: loc.ID, Slug: slug}, nil
}

func (s *locationService) loadForOwner(ctx context.Context, caller domain.Identity, locationID string) (*domain.Location, error) {
	if !caller.IsAuthenticated() {
		return nil, common.ErrUnauthorized
	}
	loc, err := s.locations.FindByID(ctx, locationID)
	if err != nil {
		return nil, err
	}
	if err := Authorize(caller.UserID, loc.UserID); err != nil {
		return nil, err
	}
	return loc, nil
}

// UpdateLocation overwrites the editable fields and appends a history row
// only when the content text changed
func (s *locationService) UpdateLocation(ctx context.Context, caller domain.Identity, locationID string, req *domain.LocationRequest) (*domain.CreatedRef, error) {
	loc, err := s.loadForOwner(ctx, caller, locationID)
	if err != nil {
		return nil, err
	}

	oldContent := loc.Content
	if err := applyRequest(loc, req); err != nil {
		return nil, err
	}
	now := s.now()
	loc.LastUpdatedByUserID = caller.UserID
	loc.UpdatedAt = now

	var edit *domain.LocationEdit
	if oldContent != loc.Content {
		edit = &domain.LocationEdit{
			ID:            newID(),
			LocationID:    loc.ID,
			UserID:        caller.UserID,
			OldContent:    oldContent,
			NewContent:    loc.Content,
			EditTimestamp: now,
		}
	}

	if err := s.locations.Update(ctx, loc, edit); err != nil {
		return nil, err
	}
	return &domain.CreatedRef{ID: loc.ID, Slug: loc.Slug}, nil
}

func (s *locationService) DeleteLocation(ctx context.Context, caller domain.Identity, locationID string) error {
	loc, err := s.loadForOwner(ctx, caller, locationID)
	if err != nil {
		return err
	}
	return s.locations.Delete(ctx, loc.ID)
}

func (s *locationService) Vote(ctx context.Context, caller domain.Identity, req *domain.LocationVoteRequest) (vote.Result, error) {
	if req.Value == nil {
		return vote.Result{}, common.ErrInvalidValue
	}
	target := domain.LocationTarget{LocationID: req.LocationID}
	if req.Toggle {
		return s.voter.Toggle(ctx, caller.UserID, target, *req.Value)
	}
	return s.voter.Apply(ctx, caller.UserID, target, *req.Value)
}
