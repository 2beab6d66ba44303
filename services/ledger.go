package services

import (
	"fmt"

	"team-taskboard/logger"
	"team-taskboard/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// LedgerService is the append-only points ledger. Both award paths insert
// immutable PointsHistoryEntry rows and bump the cached total in the same
// transaction; nothing here ever updates or deletes an entry.
type LedgerService struct {
	DB    *gorm.DB
	Guard *Guard
}

func NewLedgerService(db *gorm.DB, guard *Guard) *LedgerService {
	return &LedgerService{DB: db, Guard: guard}
}

// AwardForTaskCompletion credits a completed task's story points to the
// completing user, at most once per task. The unique index on
// points_history.task_id is the real guarantee; the pre-check just gives
// a friendlier error on the common path. Safe to retry: a second call
// returns ErrAlreadyAwarded and credits nothing.
func (s *LedgerService) AwardForTaskCompletion(taskID, completingUserID string) (*models.PointsHistoryEntry, error) {
	var entry *models.PointsHistoryEntry
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var task models.Task
		if err := tx.First(&task, "id = ?", taskID).Error; err != nil {
			return storeErr(err)
		}

		if task.CompletedAt == nil {
			// A task_complete entry must reference a completed task.
			return fmt.Errorf("%w: task %s is not completed", ErrConflict, taskID)
		}
		if task.StoryPoints < 0 {
			// Unreachable given task creation validation, checked anyway.
			return fmt.Errorf("%w: story_points %d", ErrInvalidPoints, task.StoryPoints)
		}

		var count int64
		if err := tx.Model(&models.PointsHistoryEntry{}).
			Where("task_id = ?", taskID).
			Count(&count).Error; err != nil {
			return storeErr(err)
		}
		if count > 0 {
			return ErrAlreadyAwarded
		}

		entry = &models.PointsHistoryEntry{
			ID:           uuid.NewString(),
			UserID:       completingUserID,
			PointsEarned: int64(task.StoryPoints),
			Reason:       models.ReasonTaskComplete,
			TaskID:       &task.ID,
			AwardedBy:    &completingUserID,
		}
		if err := tx.Create(entry).Error; err != nil {
			if isDuplicate(err) {
				// A concurrent completion got there first.
				return ErrAlreadyAwarded
			}
			return storeErr(err)
		}

		return bumpCachedTotal(tx, completingUserID, entry.PointsEarned)
	})
	if err != nil {
		return nil, err
	}

	logger.Audit.Info("points awarded for task completion",
		zap.String("task_id", taskID),
		zap.String("user_id", completingUserID),
		zap.Int64("points", entry.PointsEarned),
	)
	return entry, nil
}

// AwardManual appends an admin-granted award. Points must be positive.
func (s *LedgerService) AwardManual(actor Identity, userID string, points int64, notes *string) (*models.PointsHistoryEntry, error) {
	if err := s.Guard.Authorize(actor, ActionPointsAward, nil); err != nil {
		return nil, err
	}
	if points <= 0 {
		return nil, fmt.Errorf("%w: manual awards must be > 0, got %d", ErrInvalidPoints, points)
	}

	var entry *models.PointsHistoryEntry
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, "id = ?", userID).Error; err != nil {
			return storeErr(err)
		}

		entry = &models.PointsHistoryEntry{
			ID:           uuid.NewString(),
			UserID:       user.ID,
			PointsEarned: points,
			Reason:       models.ReasonManualAward,
			AwardedBy:    &actor.UserID,
			Notes:        notes,
		}
		if err := tx.Create(entry).Error; err != nil {
			return storeErr(err)
		}

		return bumpCachedTotal(tx, user.ID, points)
	})
	if err != nil {
		return nil, err
	}

	logger.Audit.Info("manual points award",
		zap.String("user_id", userID),
		zap.String("awarded_by", actor.UserID),
		zap.Int64("points", points),
	)
	return entry, nil
}

// Redeem spends points from the actor's own balance as a negative ledger
// entry. The balance check and insert run in one transaction.
func (s *LedgerService) Redeem(actor Identity, points int64, notes *string) (*models.PointsHistoryEntry, error) {
	if err := s.Guard.Authorize(actor, ActionPointsRedeem, nil); err != nil {
		return nil, err
	}
	if points <= 0 {
		return nil, fmt.Errorf("%w: redemptions must be > 0, got %d", ErrInvalidPoints, points)
	}

	var entry *models.PointsHistoryEntry
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		balance, err := ledgerSum(tx, actor.UserID)
		if err != nil {
			return err
		}
		if balance < points {
			return fmt.Errorf("%w: have %d, want %d", ErrInsufficientPoints, balance, points)
		}

		entry = &models.PointsHistoryEntry{
			ID:           uuid.NewString(),
			UserID:       actor.UserID,
			PointsEarned: -points,
			Reason:       models.ReasonRedemption,
			AwardedBy:    &actor.UserID,
			Notes:        notes,
		}
		if err := tx.Create(entry).Error; err != nil {
			return storeErr(err)
		}

		return bumpCachedTotal(tx, actor.UserID, -points)
	})
	if err != nil {
		return nil, err
	}

	logger.Audit.Info("points redeemed",
		zap.String("user_id", actor.UserID),
		zap.Int64("points", points),
	)
	return entry, nil
}

// GetUserPoints sums the full ledger for a user. It deliberately ignores
// the cached users.total_points column so it can never drift.
func (s *LedgerService) GetUserPoints(actor Identity, userID string) (int64, error) {
	if err := s.Guard.Authorize(actor, ActionPointsRead, nil); err != nil {
		return 0, err
	}
	return ledgerSum(s.DB, userID)
}

// GetPointsHistory returns one reverse-chronological page of the actor's
// own ledger. Each call re-queries; there is no cursor state to restart
// from.
func (s *LedgerService) GetPointsHistory(actor Identity, page, size int) ([]models.PointsHistoryEntry, error) {
	if err := s.Guard.Authorize(actor, ActionPointsRead, nil); err != nil {
		return nil, err
	}
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 20
	}

	var entries []models.PointsHistoryEntry
	err := s.DB.Where("user_id = ?", actor.UserID).
		Order("created_at DESC, id DESC").
		Limit(size).Offset((page - 1) * size).
		Find(&entries).Error
	if err != nil {
		return nil, storeErr(err)
	}
	return entries, nil
}

func ledgerSum(tx *gorm.DB, userID string) (int64, error) {
	var total int64
	err := tx.Model(&models.PointsHistoryEntry{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(points_earned), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, storeErr(err)
	}
	return total, nil
}

func bumpCachedTotal(tx *gorm.DB, userID string, delta int64) error {
	err := tx.Model(&models.User{}).
		Where("id = ?", userID).
		UpdateColumn("total_points", gorm.Expr("total_points + ?", delta)).Error
	if err != nil {
		return storeErr(err)
	}
	return nil
}
