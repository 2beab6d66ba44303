package services

import (
	"errors"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"team-taskboard/logger"
	"team-taskboard/models"
	"team-taskboard/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// TaskService owns the task state machine: Open → Completed, plus the
// orthogonal transitions (edit, move, assign, delete) that never change
// completion state. Guard and ledger come in via the constructor.
type TaskService struct {
	DB     *gorm.DB
	Guard  *Guard
	Ledger *LedgerService
}

func NewTaskService(db *gorm.DB, guard *Guard, ledger *LedgerService) *TaskService {
	return &TaskService{DB: db, Guard: guard, Ledger: ledger}
}

type CreateTaskInput struct {
	ListID      string
	Title       string
	Description string
	StoryPoints *int
	Position    int
	AssignedTo  *string
	DueDate     *time.Time
}

func (s *TaskService) CreateTask(actor Identity, in CreateTaskInput) (*models.Task, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, fmt.Errorf("%w: title must not be empty", ErrValidation)
	}
	storyPoints := 1
	if in.StoryPoints != nil {
		if *in.StoryPoints < 0 {
			return nil, fmt.Errorf("%w: story_points must be >= 0", ErrValidation)
		}
		storyPoints = *in.StoryPoints
	}

	teamID, err := s.teamForList(in.ListID)
	if err != nil {
		return nil, err
	}
	if err := s.Guard.Authorize(actor, ActionTaskWrite, &teamID); err != nil {
		return nil, err
	}

	task := &models.Task{
		ID:          uuid.NewString(),
		Title:       in.Title,
		Description: in.Description,
		ListID:      in.ListID,
		AssignedTo:  in.AssignedTo,
		Position:    in.Position,
		StoryPoints: storyPoints,
		DueDate:     in.DueDate,
	}
	if err := s.DB.Create(task).Error; err != nil {
		return nil, storeErr(err)
	}
	return task, nil
}

func (s *TaskService) GetTask(actor Identity, id string) (*models.Task, error) {
	task, teamID, err := s.loadTask(id)
	if err != nil {
		return nil, err
	}
	if err := s.Guard.Authorize(actor, ActionTaskRead, &teamID); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *TaskService) ListTasks(actor Identity, listID string) ([]models.Task, error) {
	teamID, err := s.teamForList(listID)
	if err != nil {
		return nil, err
	}
	if err := s.Guard.Authorize(actor, ActionTaskRead, &teamID); err != nil {
		return nil, err
	}

	var tasks []models.Task
	if err := s.DB.Where("list_id = ?", listID).
		Order("position ASC, created_at ASC").
		Find(&tasks).Error; err != nil {
		return nil, storeErr(err)
	}
	return tasks, nil
}

type UpdateTaskInput struct {
	Title       *string
	Description *string
	StoryPoints *int
	DueDate     *time.Time
	Position    *int
}

// UpdateTask edits task fields. Field edits never touch completion state
// or previously awarded points.
func (s *TaskService) UpdateTask(actor Identity, id string, in UpdateTaskInput) (*models.Task, error) {
	task, teamID, err := s.loadTask(id)
	if err != nil {
		return nil, err
	}
	if err := s.Guard.Authorize(actor, ActionTaskWrite, &teamID); err != nil {
		return nil, err
	}

	if in.Title != nil {
		if strings.TrimSpace(*in.Title) == "" {
			return nil, fmt.Errorf("%w: title must not be empty", ErrValidation)
		}
		task.Title = *in.Title
	}
	if in.Description != nil {
		task.Description = *in.Description
	}
	if in.StoryPoints != nil {
		if *in.StoryPoints < 0 {
			return nil, fmt.Errorf("%w: story_points must be >= 0", ErrValidation)
		}
		task.StoryPoints = *in.StoryPoints
	}
	if in.DueDate != nil {
		task.DueDate = in.DueDate
	}
	if in.Position != nil {
		task.Position = *in.Position
	}

	if err := s.DB.Save(task).Error; err != nil {
		return nil, storeErr(err)
	}
	return task, nil
}

// MoveTask reassigns list and position. Moving never affects completion
// state or points, and the target list must live in a team the actor may
// write to.
func (s *TaskService) MoveTask(actor Identity, id, listID string, position int) (*models.Task, error) {
	task, teamID, err := s.loadTask(id)
	if err != nil {
		return nil, err
	}
	if err := s.Guard.Authorize(actor, ActionTaskWrite, &teamID); err != nil {
		return nil, err
	}

	targetTeamID, err := s.teamForList(listID)
	if err != nil {
		return nil, err
	}
	if err := s.Guard.Authorize(actor, ActionTaskWrite, &targetTeamID); err != nil {
		return nil, err
	}

	task.ListID = listID
	task.Position = position
	if err := s.DB.Save(task).Error; err != nil {
		return nil, storeErr(err)
	}
	return task, nil
}

// AssignTask sets or clears the assignee. Manager and above only.
func (s *TaskService) AssignTask(actor Identity, id string, assignedTo *string) (*models.Task, error) {
	task, teamID, err := s.loadTask(id)
	if err != nil {
		return nil, err
	}
	if err := s.Guard.Authorize(actor, ActionTaskAssign, &teamID); err != nil {
		return nil, err
	}

	if assignedTo != nil {
		var assignee models.User
		if err := s.DB.First(&assignee, "id = ?", *assignedTo).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: assignee", ErrNotFound)
			}
			return nil, storeErr(err)
		}
	}

	task.AssignedTo = assignedTo
	if err := s.DB.Save(task).Error; err != nil {
		return nil, storeErr(err)
	}
	return task, nil
}

// CompleteTask moves a task Open → Completed and triggers exactly one
// point-award attempt. Members may only complete tasks assigned to them;
// managers and admins bypass that check. The completed_at write is a
// compare-and-swap so concurrent attempts resolve in the store, and an
// award Conflict/upstream failure is logged but never undoes the
// completion.
func (s *TaskService) CompleteTask(actor Identity, id string) (*models.Task, error) {
	task, teamID, err := s.loadTask(id)
	if err != nil {
		return nil, err
	}
	if err := s.Guard.Authorize(actor, ActionTaskComplete, &teamID); err != nil {
		return nil, err
	}

	if actor.Role == models.RoleMember {
		if task.AssignedTo == nil || *task.AssignedTo != actor.UserID {
			return nil, fmt.Errorf("%w: task is not assigned to you", ErrForbidden)
		}
	}

	if task.CompletedAt != nil {
		return nil, ErrAlreadyCompleted
	}

	now := time.Now().UTC()
	res := s.DB.Model(&models.Task{}).
		Where("id = ? AND completed_at IS NULL", task.ID).
		Update("completed_at", now)
	if res.Error != nil {
		return nil, storeErr(res.Error)
	}
	if res.RowsAffected == 0 {
		// A concurrent completion won the race.
		return nil, ErrAlreadyCompleted
	}
	task.CompletedAt = &now

	if _, err := s.Ledger.AwardForTaskCompletion(task.ID, actor.UserID); err != nil {
		if errors.Is(err, ErrConflict) || errors.Is(err, ErrUpstream) {
			// The task stays completed; the unique ledger index already
			// ruled out double-crediting, so this is bookkeeping noise.
			logger.Error.Warn("point award failed after completion",
				zap.String("task_id", task.ID),
				zap.String("user_id", actor.UserID),
				zap.Error(err),
			)
		} else {
			return nil, err
		}
	}

	return task, nil
}

// DeleteTask removes a task in either state. Points earned from a prior
// completion are never retracted.
func (s *TaskService) DeleteTask(actor Identity, id string) error {
	task, teamID, err := s.loadTask(id)
	if err != nil {
		return err
	}
	if err := s.Guard.Authorize(actor, ActionTaskDelete, &teamID); err != nil {
		return err
	}

	if err := s.DB.Delete(&models.Task{}, "id = ?", task.ID).Error; err != nil {
		return storeErr(err)
	}
	return nil
}

// AttachFile uploads a file to object storage and records its URL on the
// task.
func (s *TaskService) AttachFile(actor Identity, id string, fileHeader *multipart.FileHeader) (*models.Task, error) {
	task, teamID, err := s.loadTask(id)
	if err != nil {
		return nil, err
	}
	if err := s.Guard.Authorize(actor, ActionTaskWrite, &teamID); err != nil {
		return nil, err
	}
	if !utils.StorageConfigured() {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, utils.ErrStorageNotConfigured)
	}

	key := fmt.Sprintf("attachments/%s/%s%s", task.ID, uuid.NewString(), filepath.Ext(fileHeader.Filename))
	url, err := utils.UploadAttachment(fileHeader, key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	task.AttachmentURL = &url
	if err := s.DB.Save(task).Error; err != nil {
		return nil, storeErr(err)
	}
	return task, nil
}

func (s *TaskService) loadTask(id string) (*models.Task, string, error) {
	var task models.Task
	if err := s.DB.First(&task, "id = ?", id).Error; err != nil {
		return nil, "", storeErr(err)
	}
	teamID, err := s.teamForList(task.ListID)
	if err != nil {
		return nil, "", err
	}
	return &task, teamID, nil
}

func (s *TaskService) teamForList(listID string) (string, error) {
	var teamID string
	err := s.DB.Raw(
		"SELECT b.team_id FROM lists l JOIN boards b ON b.id = l.board_id WHERE l.id = ?",
		listID,
	).Scan(&teamID).Error
	if err != nil {
		return "", storeErr(err)
	}
	if teamID == "" {
		return "", fmt.Errorf("%w: list", ErrNotFound)
	}
	return teamID, nil
}
