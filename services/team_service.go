package services

import (
	"fmt"
	"strings"

	"team-taskboard/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TeamService manages the root scoping unit. Admin only.
type TeamService struct {
	DB    *gorm.DB
	Guard *Guard
}

func NewTeamService(db *gorm.DB, guard *Guard) *TeamService {
	return &TeamService{DB: db, Guard: guard}
}

func (s *TeamService) ListTeams(actor Identity) ([]models.Team, error) {
	if err := s.Guard.Authorize(actor, ActionTeamManage, nil); err != nil {
		return nil, err
	}

	teams := []models.Team{}
	if err := s.DB.Order("name ASC").Find(&teams).Error; err != nil {
		return nil, storeErr(err)
	}
	return teams, nil
}

func (s *TeamService) CreateTeam(actor Identity, name string) (*models.Team, error) {
	if err := s.Guard.Authorize(actor, ActionTeamManage, nil); err != nil {
		return nil, err
	}
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: name must not be empty", ErrValidation)
	}

	team := &models.Team{ID: uuid.NewString(), Name: name}
	if err := s.DB.Create(team).Error; err != nil {
		if isDuplicate(err) {
			return nil, fmt.Errorf("%w: team name already exists", ErrConflict)
		}
		return nil, storeErr(err)
	}
	return team, nil
}

// DeleteTeam removes a team, its boards, lists and tasks, and detaches
// its users. Ledger entries are append-only and stay.
func (s *TeamService) DeleteTeam(actor Identity, id string) error {
	if err := s.Guard.Authorize(actor, ActionTeamManage, nil); err != nil {
		return err
	}

	var team models.Team
	if err := s.DB.First(&team, "id = ?", id).Error; err != nil {
		return storeErr(err)
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(`
			DELETE FROM tasks WHERE list_id IN (
				SELECT l.id FROM lists l JOIN boards b ON b.id = l.board_id WHERE b.team_id = ?
			)`, team.ID).Error; err != nil {
			return err
		}
		if err := tx.Exec(
			"DELETE FROM lists WHERE board_id IN (SELECT id FROM boards WHERE team_id = ?)",
			team.ID,
		).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.Board{}, "team_id = ?", team.ID).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.User{}).Where("team_id = ?", team.ID).
			Update("team_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Team{}, "id = ?", team.ID).Error
	})
	if err != nil {
		return storeErr(err)
	}
	return nil
}

// GetUser looks up a user by internal id.
func (s *TeamService) GetUser(actor Identity, id string) (*models.User, error) {
	if actor.UserID == "" {
		return nil, ErrUnauthenticated
	}

	var user models.User
	if err := s.DB.First(&user, "id = ?", id).Error; err != nil {
		return nil, storeErr(err)
	}
	return &user, nil
}
