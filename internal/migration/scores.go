package migration

import (
	"fmt"

	"github.com/trailhead/trailhead-backend/pkg/logger"
	"gorm.io/gorm"
)

// ScoreDrift is a row whose stored running score differs from the sum of its votes
type ScoreDrift struct {
	Table  string `gorm:"-"`
	ID     string `gorm:"column:id"`
	Stored int    `gorm:"column:stored"`
	Actual int    `gorm:"column:actual"`
}

type scoreSource struct {
	table     string
	column    string
	voteTable string
	voteFK    string
}

var scoreSources = []scoreSource{
	{table: "forum_topics", column: "vote_count", voteTable: "forum_votes", voteFK: "topic_id"},
	{table: "forum_posts", column: "vote_count", voteTable: "forum_votes", voteFK: "post_id"},
	{table: "locations", column: "verified_count", voteTable: "location_votes", voteFK: "location_id"},
}

func (s scoreSource) driftQuery() string {
	return fmt.Sprintf(`
		SELECT t.id AS id, t.%[2]s AS stored, COALESCE(SUM(v.value), 0) AS actual
		FROM %[1]s t
		LEFT JOIN %[3]s v ON v.%[4]s = t.id
		GROUP BY t.id, t.%[2]s
		HAVING t.%[2]s <> COALESCE(SUM(v.value), 0)`,
		s.table, s.column, s.voteTable, s.voteFK)
}

// VerifyScores lists every topic, post and location whose running score
// no longer equals the sum of its vote rows
func VerifyScores(db *gorm.DB) ([]ScoreDrift, error) {
	var drifts []ScoreDrift
	for _, src := range scoreSources {
		var rows []ScoreDrift
		if err := db.Raw(src.driftQuery()).Scan(&rows).Error; err != nil {
			return nil, fmt.Errorf("verify %s: %w", src.table, err)
		}
		for i := range rows {
			rows[i].Table = src.table
		}
		drifts = append(drifts, rows...)
	}
	return drifts, nil
}

// RepairScores rewrites drifted scores from the vote tables in one transaction.
// Run it with writes stopped; a vote landing mid-repair can be overwritten.
func RepairScores(db *gorm.DB) (int, error) {
	drifts, err := VerifyScores(db)
	if err != nil {
		return 0, err
	}
	if len(drifts) == 0 {
		return 0, nil
	}

	columns := make(map[string]string, len(scoreSources))
	for _, src := range scoreSources {
		columns[src.table] = src.column
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		for _, d := range drifts {
			if err := tx.Table(d.Table).Where("id = ?", d.ID).UpdateColumn(columns[d.Table], d.Actual).Error; err != nil {
				return fmt.Errorf("repair %s %s: %w", d.Table, d.ID, err)
			}
			logger.Info("[Migration] %s %s: %d -> %d", d.Table, d.ID, d.Stored, d.Actual)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(drifts), nil
}
