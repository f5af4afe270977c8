package repository

import (
	"errors"
	"strings"

	"github.com/trailhead/trailhead-backend/internal/domain"
	"gorm.io/gorm"
)

// ErrSlugTaken is returned by Create when the generated slug collides
var ErrSlugTaken = errors.New("slug already taken")

// Visible hides rows whose running score is at or below the vote threshold
func Visible(scoreColumn string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(scoreColumn+" > ?", domain.VoteThreshold)
	}
}

// Paginate applies 1-based page / perPage as OFFSET / LIMIT
func Paginate(page, perPage int) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if page < 1 {
			page = 1
		}
		return db.Offset((page - 1) * perPage).Limit(perPage)
	}
}

// likeEscape is the LIKE ESCAPE character used by likePattern
const likeEscape = "!"

// likePattern escapes LIKE wildcards in a user search term
func likePattern(q string) string {
	r := strings.NewReplacer(`!`, `!!`, `%`, `!%`, `_`, `!_`)
	return "%" + r.Replace(strings.TrimSpace(q)) + "%"
}

// Search matches q against any of columns. An empty q is a no-op.
func Search(q string, columns ...string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if strings.TrimSpace(q) == "" || len(columns) == 0 {
			return db
		}
		pattern := likePattern(q)
		conds := make([]string, len(columns))
		args := make([]interface{}, len(columns))
		for i, col := range columns {
			conds[i] = col + " LIKE ? ESCAPE '" + likeEscape + "'"
			args[i] = pattern
		}
		return db.Where("("+strings.Join(conds, " OR ")+")", args...)
	}
}
