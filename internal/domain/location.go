package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Location represents the locations table
type Location struct {
	ID                  string     `gorm:"column:id;primaryKey;type:varchar(36)" json:"id"`
	Slug                string     `gorm:"column:slug;type:varchar(255);uniqueIndex;not null" json:"slug"`
	Name                string     `gorm:"column:name;type:varchar(255);not null" json:"name"`
	Description         *string    `gorm:"column:description;type:text" json:"description"`
	Content             string     `gorm:"column:content;type:text;not null" json:"content"`
	ContactPhone        *string    `gorm:"column:contact_phone;type:varchar(50)" json:"contact_phone"`
	ContactEmail        *string    `gorm:"column:contact_email;type:varchar(255)" json:"contact_email"`
	ContactWebsite      *string    `gorm:"column:contact_website;type:varchar(500)" json:"contact_website"`
	Latitude            *float64   `gorm:"column:latitude" json:"latitude"`
	Longitude           *float64   `gorm:"column:longitude" json:"longitude"`
	IsPublicLand        PublicLand `gorm:"column:is_public_land;type:boolean" json:"is_public_land"`
	VerifiedCount       int        `gorm:"column:verified_count;not null;default:0;index" json:"verified_count"`
	UserID              string     `gorm:"column:user_id;type:varchar(64);index" json:"user_id"`
	LastUpdatedByUserID string     `gorm:"column:last_updated_by_user_id;type:varchar(64)" json:"last_updated_by_user_id"`
	CreatedAt           time.Time  `gorm:"column:created_at;autoCreateTime:false;index" json:"created_at"`
	UpdatedAt           time.Time  `gorm:"column:updated_at;autoUpdateTime:false" json:"updated_at"`
}

// TableName returns the table name for GORM
func (Location) TableName() string { return "locations" }

// LocationEdit represents the location_edits table (append-only content history)
type LocationEdit struct {
	ID            string    `gorm:"column:id;primaryKey;type:varchar(36)" json:"id"`
	LocationID    string    `gorm:"column:location_id;type:varchar(36);not null;index" json:"location_id"`
	UserID        string    `gorm:"column:user_id;type:varchar(64);not null" json:"user_id"`
	OldContent    string    `gorm:"column:old_content;type:text;not null" json:"old_content"`
	NewContent    string    `gorm:"column:new_content;type:text;not null" json:"new_content"`
	EditTimestamp time.Time `gorm:"column:edit_timestamp;not null" json:"edit_timestamp"`
}

// TableName returns the table name for GORM
func (LocationEdit) TableName() string { return "location_edits" }

// LocationDetail is a visible location with the last editor's display name
// and the viewer's own verification vote
type LocationDetail struct {
	Location
	EditorName        string  `gorm:"column:editor_name" json:"-"`
	EditorDisplayName *string `gorm:"column:editor_display_name" json:"-"`
	LastUpdatedByName string  `gorm:"-" json:"last_updated_by_name"`
	UserVote          int     `gorm:"-" json:"user_vote"`
}

// LocationEditView is one history row with the editor's display name
type LocationEditView struct {
	LocationEdit
	EditorName        string  `gorm:"column:editor_name" json:"-"`
	EditorDisplayName *string `gorm:"column:editor_display_name" json:"-"`
	Editor            string  `gorm:"-" json:"editor"`
}

// LocationRequest is the request body for location.create and location.update.
// Latitude / Longitude accept a number or a numeric string; IsPublicLand accepts
// a bool, "true"/"false", "" or null, and an omitted key means not public.
type LocationRequest struct {
	Name           string          `json:"name" binding:"required,notblank,max=255"`
	Content        string          `json:"content" binding:"required,notblank"`
	Description    string          `json:"description"`
	ContactPhone   string          `json:"contact_phone" binding:"max=50"`
	ContactEmail   string          `json:"contact_email" binding:"omitempty,email,max=255"`
	ContactWebsite string          `json:"contact_website" binding:"omitempty,url,max=500"`
	Latitude       interface{}     `json:"latitude"`
	Longitude      interface{}     `json:"longitude"`
	IsPublicLand   PublicLandInput `json:"is_public_land"`
}

// PublicLandInput keeps the raw is_public_land value and whether the key was sent
type PublicLandInput struct {
	Set bool
	Raw interface{}
}

// PublicLandValue is a present is_public_land value
func PublicLandValue(raw interface{}) PublicLandInput {
	return PublicLandInput{Set: true, Raw: raw}
}

// UnmarshalJSON only runs for keys present in the body, including null
func (in *PublicLandInput) UnmarshalJSON(data []byte) error {
	in.Set = true
	return json.Unmarshal(data, &in.Raw)
}

// PublicLand coerces the input; an omitted key is NotPublic
func (in PublicLandInput) PublicLand() PublicLand {
	if !in.Set {
		return PublicLandNotPublic
	}
	return ParsePublicLand(in.Raw)
}

// PublicLand is the three-valued public land flag
type PublicLand int

const (
	PublicLandUnknown PublicLand = iota
	PublicLandPublic
	PublicLandNotPublic
)

// ParsePublicLand converts boundary input: nil and "" are Unknown, true and
// "true" are Public, anything else is NotPublic.
func ParsePublicLand(raw interface{}) PublicLand {
	switch v := raw.(type) {
	case nil:
		return PublicLandUnknown
	case bool:
		if v {
			return PublicLandPublic
		}
		return PublicLandNotPublic
	case string:
		if v == "" {
			return PublicLandUnknown
		}
		if v == "true" {
			return PublicLandPublic
		}
		return PublicLandNotPublic
	default:
		return PublicLandNotPublic
	}
}

func (p PublicLand) String() string {
	switch p {
	case PublicLandPublic:
		return "public"
	case PublicLandNotPublic:
		return "not_public"
	default:
		return "unknown"
	}
}

// Value stores the flag as a nullable boolean
func (p PublicLand) Value() (driver.Value, error) {
	switch p {
	case PublicLandPublic:
		return true, nil
	case PublicLandNotPublic:
		return false, nil
	default:
		return nil, nil
	}
}

// Scan reads a nullable boolean column
func (p *PublicLand) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*p = PublicLandUnknown
	case bool:
		*p = boolToPublicLand(v)
	case int64:
		*p = boolToPublicLand(v != 0)
	case []byte:
		return p.scanString(string(v))
	case string:
		return p.scanString(v)
	default:
		return fmt.Errorf("cannot scan %T into PublicLand", src)
	}
	return nil
}

func (p *PublicLand) scanString(s string) error {
	b, err := strconv.ParseBool(s)
	if err != nil {
		return fmt.Errorf("cannot scan %q into PublicLand: %w", s, err)
	}
	*p = boolToPublicLand(b)
	return nil
}

func boolToPublicLand(b bool) PublicLand {
	if b {
		return PublicLandPublic
	}
	return PublicLandNotPublic
}

// MarshalJSON renders Unknown as null
func (p PublicLand) MarshalJSON() ([]byte, error) {
	switch p {
	case PublicLandPublic:
		return []byte("true"), nil
	case PublicLandNotPublic:
		return []byte("false"), nil
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON applies the same coercion as ParsePublicLand
func (p *PublicLand) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*p = ParsePublicLand(raw)
	return nil
}

// ParseCoordinate converts a number or numeric string to a float.
// nil and blank strings yield nil; non-numeric strings and non-finite values are rejected.
func ParseCoordinate(raw interface{}) (*float64, error) {
	var f float64
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case float64:
		f = v
	case int:
		f = float64(v)
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return nil, fmt.Errorf("coordinate %q is not a number", v.String())
		}
		f = parsed
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return nil, nil
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("coordinate %q is not a number", v)
		}
		f = parsed
	default:
		return nil, fmt.Errorf("coordinate has unsupported type %T", raw)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("coordinate must be finite")
	}
	return &f, nil
}
