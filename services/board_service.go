package services

import (
	"fmt"
	"strings"

	"team-taskboard/models"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

// BoardService is the CRUD facade for boards and their lists.
type BoardService struct {
	DB    *gorm.DB
	Guard *Guard
}

func NewBoardService(db *gorm.DB, guard *Guard) *BoardService {
	return &BoardService{DB: db, Guard: guard}
}

// ListBoards returns the boards visible to the actor: all of them for an
// admin, the actor's team's boards otherwise. A user with no team sees an
// empty list.
func (s *BoardService) ListBoards(actor Identity) ([]models.Board, error) {
	if actor.UserID == "" {
		return nil, ErrUnauthenticated
	}

	boards := []models.Board{}
	q := s.DB.Order("created_at DESC")
	if actor.Role != models.RoleAdmin {
		if actor.TeamID == nil {
			return boards, nil
		}
		q = q.Where("team_id = ?", *actor.TeamID)
	}
	if err := q.Find(&boards).Error; err != nil {
		return nil, storeErr(err)
	}
	return boards, nil
}

func (s *BoardService) GetBoard(actor Identity, id string) (*models.Board, error) {
	var board models.Board
	if err := s.DB.First(&board, "id = ?", id).Error; err != nil {
		return nil, storeErr(err)
	}
	if err := s.Guard.Authorize(actor, ActionBoardRead, &board.TeamID); err != nil {
		return nil, err
	}
	return &board, nil
}

func (s *BoardService) CreateBoard(actor Identity, name, description, teamID string) (*models.Board, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: name must not be empty", ErrValidation)
	}
	if err := s.Guard.Authorize(actor, ActionBoardWrite, &teamID); err != nil {
		return nil, err
	}

	var team models.Team
	if err := s.DB.First(&team, "id = ?", teamID).Error; err != nil {
		return nil, storeErr(err)
	}

	boardSlug, err := s.uniqueSlug(name)
	if err != nil {
		return nil, err
	}

	board := &models.Board{
		ID:          uuid.NewString(),
		Name:        name,
		Slug:        boardSlug,
		Description: description,
		TeamID:      teamID,
		CreatedBy:   &actor.UserID,
	}
	if err := s.DB.Create(board).Error; err != nil {
		return nil, storeErr(err)
	}
	return board, nil
}

type UpdateBoardInput struct {
	Name        *string
	Description *string
}

func (s *BoardService) UpdateBoard(actor Identity, id string, in UpdateBoardInput) (*models.Board, error) {
	var board models.Board
	if err := s.DB.First(&board, "id = ?", id).Error; err != nil {
		return nil, storeErr(err)
	}
	if err := s.Guard.Authorize(actor, ActionBoardWrite, &board.TeamID); err != nil {
		return nil, err
	}

	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return nil, fmt.Errorf("%w: name must not be empty", ErrValidation)
		}
		board.Name = *in.Name
	}
	if in.Description != nil {
		board.Description = *in.Description
	}

	if err := s.DB.Save(&board).Error; err != nil {
		return nil, storeErr(err)
	}
	return &board, nil
}

// DeleteBoard removes a board and cascades to its lists and their tasks in
// one transaction.
func (s *BoardService) DeleteBoard(actor Identity, id string) error {
	var board models.Board
	if err := s.DB.First(&board, "id = ?", id).Error; err != nil {
		return storeErr(err)
	}
	if err := s.Guard.Authorize(actor, ActionBoardWrite, &board.TeamID); err != nil {
		return err
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(
			"DELETE FROM tasks WHERE list_id IN (SELECT id FROM lists WHERE board_id = ?)",
			board.ID,
		).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.List{}, "board_id = ?", board.ID).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Board{}, "id = ?", board.ID).Error
	})
	if err != nil {
		return storeErr(err)
	}
	return nil
}

func (s *BoardService) ListLists(actor Identity, boardID string) ([]models.List, error) {
	board, err := s.GetBoard(actor, boardID)
	if err != nil {
		return nil, err
	}

	lists := []models.List{}
	if err := s.DB.Where("board_id = ?", board.ID).
		Order("position ASC, created_at ASC").
		Find(&lists).Error; err != nil {
		return nil, storeErr(err)
	}
	return lists, nil
}

func (s *BoardService) CreateList(actor Identity, boardID, name string, position int) (*models.List, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: name must not be empty", ErrValidation)
	}

	var board models.Board
	if err := s.DB.First(&board, "id = ?", boardID).Error; err != nil {
		return nil, storeErr(err)
	}
	if err := s.Guard.Authorize(actor, ActionListWrite, &board.TeamID); err != nil {
		return nil, err
	}

	list := &models.List{
		ID:       uuid.NewString(),
		Name:     name,
		BoardID:  board.ID,
		Position: position,
	}
	if err := s.DB.Create(list).Error; err != nil {
		return nil, storeErr(err)
	}
	return list, nil
}

type UpdateListInput struct {
	Name     *string
	Position *int
}

func (s *BoardService) UpdateList(actor Identity, id string, in UpdateListInput) (*models.List, error) {
	list, teamID, err := s.loadList(id)
	if err != nil {
		return nil, err
	}
	if err := s.Guard.Authorize(actor, ActionListWrite, &teamID); err != nil {
		return nil, err
	}

	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return nil, fmt.Errorf("%w: name must not be empty", ErrValidation)
		}
		list.Name = *in.Name
	}
	if in.Position != nil {
		list.Position = *in.Position
	}

	if err := s.DB.Save(list).Error; err != nil {
		return nil, storeErr(err)
	}
	return list, nil
}

// DeleteList removes a list and its tasks.
func (s *BoardService) DeleteList(actor Identity, id string) error {
	list, teamID, err := s.loadList(id)
	if err != nil {
		return err
	}
	if err := s.Guard.Authorize(actor, ActionListWrite, &teamID); err != nil {
		return err
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.Task{}, "list_id = ?", list.ID).Error; err != nil {
			return err
		}
		return tx.Delete(&models.List{}, "id = ?", list.ID).Error
	})
	if err != nil {
		return storeErr(err)
	}
	return nil
}

func (s *BoardService) loadList(id string) (*models.List, string, error) {
	var list models.List
	if err := s.DB.First(&list, "id = ?", id).Error; err != nil {
		return nil, "", storeErr(err)
	}
	var board models.Board
	if err := s.DB.First(&board, "id = ?", list.BoardID).Error; err != nil {
		return nil, "", storeErr(err)
	}
	return &list, board.TeamID, nil
}

// uniqueSlug derives a URL slug from the board name, suffixing a counter
// when the plain slug is taken.
func (s *BoardService) uniqueSlug(name string) (string, error) {
	base := slug.Make(name)
	candidate := base
	for i := 2; ; i++ {
		var count int64
		if err := s.DB.Model(&models.Board{}).Where("slug = ?", candidate).Count(&count).Error; err != nil {
			return "", storeErr(err)
		}
		if count == 0 {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}
