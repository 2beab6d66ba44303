package services

import (
	"time"

	"team-taskboard/logger"
	"team-taskboard/models"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// StartPointsReconciler schedules a periodic job that re-derives the
// cached users.total_points column from ledger sums. Business reads never
// trust the cache, so this only repairs display drift.
func StartPointsReconciler(db *gorm.DB, interval time.Duration) (gocron.Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}
	sched.Start()

	_, err = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			ReconcilePointTotals(db)
		}),
	)
	if err != nil {
		return nil, err
	}
	return sched, nil
}

type pointsDrift struct {
	ID          string
	TotalPoints int64
	Actual      int64
}

// ReconcilePointTotals fixes every user whose cached total disagrees with
// the ledger and logs what it corrected.
func ReconcilePointTotals(db *gorm.DB) {
	var drifted []pointsDrift
	err := db.Raw(`
		SELECT u.id, u.total_points, COALESCE(SUM(p.points_earned), 0) AS actual
		FROM users u
		LEFT JOIN points_history p ON p.user_id = u.id
		GROUP BY u.id, u.total_points
		HAVING u.total_points <> COALESCE(SUM(p.points_earned), 0)
	`).Scan(&drifted).Error
	if err != nil {
		logger.Error.Error("points reconciliation query failed", zap.Error(err))
		return
	}

	for _, d := range drifted {
		if err := db.Model(&models.User{}).Where("id = ?", d.ID).
			UpdateColumn("total_points", d.Actual).Error; err != nil {
			logger.Error.Error("failed to correct cached total",
				zap.String("user_id", d.ID), zap.Error(err))
			continue
		}
		logger.System.Warn("corrected cached points total",
			zap.String("user_id", d.ID),
			zap.Int64("cached", d.TotalPoints),
			zap.Int64("actual", d.Actual),
		)
	}
}
