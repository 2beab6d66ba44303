package services

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"team-taskboard/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// newTestDB opens an isolated in-memory sqlite database migrated with the
// full schema. The same GORM layer the service uses in production runs
// here, including the unique index on points_history.task_id.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Team{},
		&models.User{},
		&models.Board{},
		&models.List{},
		&models.Task{},
		&models.PointsHistoryEntry{},
	))
	return db
}

func seedTeam(t *testing.T, db *gorm.DB, name string) *models.Team {
	t.Helper()
	team := &models.Team{ID: uuid.NewString(), Name: name}
	require.NoError(t, db.Create(team).Error)
	return team
}

func seedUser(t *testing.T, db *gorm.DB, role models.Role, teamID *string) *models.User {
	t.Helper()
	id := uuid.NewString()
	user := &models.User{
		ID:          id,
		ExternalID:  uuid.NewString(),
		Email:       id[:8] + "@example.com",
		DisplayName: "user-" + id[:8],
		Role:        role,
		TeamID:      teamID,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func seedBoard(t *testing.T, db *gorm.DB, teamID string) *models.Board {
	t.Helper()
	id := uuid.NewString()
	board := &models.Board{
		ID:     id,
		Name:   "Board " + id[:8],
		Slug:   "board-" + id[:8],
		TeamID: teamID,
	}
	require.NoError(t, db.Create(board).Error)
	return board
}

func seedList(t *testing.T, db *gorm.DB, boardID string, position int) *models.List {
	t.Helper()
	list := &models.List{
		ID:       uuid.NewString(),
		Name:     "List",
		BoardID:  boardID,
		Position: position,
	}
	require.NoError(t, db.Create(list).Error)
	return list
}

func seedTask(t *testing.T, db *gorm.DB, listID string, storyPoints int, assignedTo *string) *models.Task {
	t.Helper()
	task := &models.Task{
		ID:          uuid.NewString(),
		Title:       "Task",
		ListID:      listID,
		StoryPoints: storyPoints,
		AssignedTo:  assignedTo,
	}
	require.NoError(t, db.Create(task).Error)
	return task
}

func completeTaskRow(t *testing.T, db *gorm.DB, taskID string) {
	t.Helper()
	now := time.Now().UTC()
	require.NoError(t, db.Model(&models.Task{}).Where("id = ?", taskID).
		Update("completed_at", now).Error)
}

func actorFor(user *models.User) Identity {
	return Identity{UserID: user.ID, Role: user.Role, TeamID: user.TeamID}
}

// testFixture bundles the board scaffolding most task tests start from.
type testFixture struct {
	db    *gorm.DB
	team  *models.Team
	board *models.Board
	list  *models.List
}
