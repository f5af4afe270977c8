package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/trailhead/trailhead-backend/internal/common"
	"github.com/trailhead/trailhead-backend/internal/domain"
	"gorm.io/gorm"
)

// LocationRepository 장소 저장소
type LocationRepository interface {
	// 조회 (visible only)
	List(ctx context.Context, q string, page, perPage int) ([]domain.Location, int64, error)
	FindBySlug(ctx context.Context, slug string) (*domain.LocationDetail, error)
	ListEdits(ctx context.Context, locationID string) ([]domain.LocationEditView, error)

	// FindByID ignores visibility; used for ownership checks
	FindByID(ctx context.Context, id string) (*domain.Location, error)

	Create(ctx context.Context, location *domain.Location) error
	// Update writes the editable fields and, when edit is non-nil, appends it to the history
	Update(ctx context.Context, location *domain.Location, edit *domain.LocationEdit) error
	// Delete removes the location with its votes and edit history
	Delete(ctx context.Context, id string) error
}

type locationRepository struct {
	db *gorm.DB
}

// NewLocationRepository creates a new LocationRepository
func NewLocationRepository(db *gorm.DB) LocationRepository {
	return &locationRepository{db: db}
}

func (r *locationRepository) visible(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&domain.Location{}).Scopes(Visible("locations.verified_count"))
}

// List returns visible locations, newest first
func (r *locationRepository) List(ctx context.Context, q string, page, perPage int) ([]domain.Location, int64, error) {
	search := Search(q, "locations.name", "locations.description")

	var total int64
	if err := r.visible(ctx).Scopes(search).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count locations: %w", err)
	}

	locations := make([]domain.Location, 0, perPage)
	if total == 0 {
		return locations, 0, nil
	}

	err := r.visible(ctx).Scopes(search, Paginate(page, perPage)).
		Order("locations.created_at DESC").
		Find(&locations).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list locations: %w", err)
	}
	return locations, total, nil
}

// FindBySlug returns common.ErrLocationNotFound for missing or hidden locations
func (r *locationRepository) FindBySlug(ctx context.Context, slug string) (*domain.LocationDetail, error) {
	var detail domain.LocationDetail
	result := r.visible(ctx).
		Select("locations.*, COALESCE(users.name, '') AS editor_name, users.display_name AS editor_display_name").
		Joins("LEFT JOIN users ON users.id = locations.last_updated_by_user_id").
		Where("locations.slug = ?", slug).
		Limit(1).
		Scan(&detail)
	if result.Error != nil {
		return nil, fmt.Errorf("find location: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, common.ErrLocationNotFound
	}

	detail.LastUpdatedByName = domain.DisplayNameOr(detail.EditorDisplayName, detail.EditorName)
	return &detail, nil
}

// ListEdits returns the edit history, newest first
func (r *locationRepository) ListEdits(ctx context.Context, locationID string) ([]domain.LocationEditView, error) {
	edits := make([]domain.LocationEditView, 0)
	err := r.db.WithContext(ctx).Table("location_edits").
		Select("location_edits.*, COALESCE(users.name, '') AS editor_name, users.display_name AS editor_display_name").
		Joins("LEFT JOIN users ON users.id = location_edits.user_id").
		Where("location_edits.location_id = ?", locationID).
		Order("location_edits.edit_timestamp DESC").
		Scan(&edits).Error
	if err != nil {
		return nil, fmt.Errorf("list location edits: %w", err)
	}

	for i := range edits {
		edits[i].Editor = domain.DisplayNameOr(edits[i].EditorDisplayName, edits[i].EditorName)
	}
	return edits, nil
}

// FindByID returns common.ErrLocationNotFound when absent
func (r *locationRepository) FindByID(ctx context.Context, id string) (*domain.Location, error) {
	var location domain.Location
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&location).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrLocationNotFound
		}
		return nil, err
	}
	return &location, nil
}

// Create returns ErrSlugTaken on a slug collision
func (r *locationRepository) Create(ctx context.Context, location *domain.Location) error {
	if err := r.db.WithContext(ctx).Create(location).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrSlugTaken
		}
		return err
	}
	return nil
}

func (r *locationRepository) Update(ctx context.Context, location *domain.Location, edit *domain.LocationEdit) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// verified_count는 투표로만 변경
		result := tx.Model(&domain.Location{}).
			Where("id = ?", location.ID).
			Updates(map[string]interface{}{
				"name":                    location.Name,
				"description":             location.Description,
				"content":                 location.Content,
				"contact_phone":           location.ContactPhone,
				"contact_email":           location.ContactEmail,
				"contact_website":         location.ContactWebsite,
				"latitude":                location.Latitude,
				"longitude":               location.Longitude,
				"is_public_land":          location.IsPublicLand,
				"last_updated_by_user_id": location.LastUpdatedByUserID,
				"updated_at":              location.UpdatedAt,
			})
		if result.Error != nil {
			return fmt.Errorf("update location: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return common.ErrLocationNotFound
		}

		if edit != nil {
			if err := tx.Create(edit).Error; err != nil {
				return fmt.Errorf("append location edit: %w", err)
			}
		}
		return nil
	})
}

// Delete 장소 삭제 (투표 → 수정 이력 → 장소 순서)
func (r *locationRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("location_id = ?", id).Delete(&domain.LocationVote{}).Error; err != nil {
			return fmt.Errorf("delete location votes: %w", err)
		}
		if err := tx.Where("location_id = ?", id).Delete(&domain.LocationEdit{}).Error; err != nil {
			return fmt.Errorf("delete location edits: %w", err)
		}

		result := tx.Where("id = ?", id).Delete(&domain.Location{})
		if result.Error != nil {
			return fmt.Errorf("delete location: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return common.ErrLocationNotFound
		}
		return nil
	})
}
