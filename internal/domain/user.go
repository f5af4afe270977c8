package domain

import "time"

// User represents the users table
type User struct {
	ID          string    `gorm:"column:id;primaryKey;type:varchar(64)" json:"id"`
	Name        string    `gorm:"column:name;type:varchar(100);not null" json:"name"`
	DisplayName *string   `gorm:"column:display_name;type:varchar(100)" json:"display_name"`
	Email       string    `gorm:"column:email;type:varchar(255);index" json:"email"`
	CreatedAt   time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at" json:"updated_at"`
}

// TableName returns the table name for GORM
func (User) TableName() string { return "users" }

// Display returns the display name with fallback to name
func (u *User) Display() string {
	return DisplayNameOr(u.DisplayName, u.Name)
}

// UpdateProfileRequest is the request body for PUT /me
type UpdateProfileRequest struct {
	DisplayName string `json:"display_name" binding:"max=100"`
}
