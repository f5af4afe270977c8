package migration

import (
	"fmt"

	"github.com/trailhead/trailhead-backend/internal/domain"
	"github.com/trailhead/trailhead-backend/pkg/logger"
	"gorm.io/gorm"
)

// Models returns every table owned by the service, in creation order
func Models() []interface{} {
	return []interface{}{
		&domain.User{},
		&domain.Location{},
		&domain.LocationEdit{},
		&domain.LocationVote{},
		&domain.ForumTopic{},
		&domain.ForumPost{},
		&domain.ForumVote{},
	}
}

// Run executes AutoMigrate for all tables.
// 테이블 없으면 생성, 있으면 누락된 컬럼/인덱스만 추가
func Run(db *gorm.DB) error {
	for _, model := range Models() {
		if err := db.AutoMigrate(model); err != nil {
			return fmt.Errorf("migrate %T: %w", model, err)
		}
	}
	logger.Info("[Migration] %d tables up to date", len(Models()))
	return nil
}
