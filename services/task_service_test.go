package services

import (
	"testing"

	"team-taskboard/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTaskFixture(t *testing.T) (*TaskService, *LedgerService, *testFixture) {
	t.Helper()
	db := newTestDB(t)
	guard := NewGuard()
	ledger := NewLedgerService(db, guard)
	svc := NewTaskService(db, guard, ledger)

	team := seedTeam(t, db, "alpha")
	board := seedBoard(t, db, team.ID)
	list := seedList(t, db, board.ID, 0)
	return svc, ledger, &testFixture{db: db, team: team, board: board, list: list}
}

func TestCreateTask(t *testing.T) {
	svc, _, fx := newTaskFixture(t)
	manager := seedUser(t, fx.db, models.RoleManager, &fx.team.ID)

	t.Run("rejects empty title", func(t *testing.T) {
		_, err := svc.CreateTask(actorFor(manager), CreateTaskInput{ListID: fx.list.ID, Title: "   "})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("rejects negative story points", func(t *testing.T) {
		sp := -3
		_, err := svc.CreateTask(actorFor(manager), CreateTaskInput{ListID: fx.list.ID, Title: "x", StoryPoints: &sp})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("defaults story points to one", func(t *testing.T) {
		task, err := svc.CreateTask(actorFor(manager), CreateTaskInput{ListID: fx.list.ID, Title: "defaulted"})
		require.NoError(t, err)
		assert.Equal(t, 1, task.StoryPoints)
		assert.Nil(t, task.CompletedAt)
	})

	t.Run("accepts zero story points", func(t *testing.T) {
		sp := 0
		task, err := svc.CreateTask(actorFor(manager), CreateTaskInput{ListID: fx.list.ID, Title: "chore", StoryPoints: &sp})
		require.NoError(t, err)
		assert.Equal(t, 0, task.StoryPoints)
	})

	t.Run("rejects members", func(t *testing.T) {
		member := seedUser(t, fx.db, models.RoleMember, &fx.team.ID)
		_, err := svc.CreateTask(actorFor(member), CreateTaskInput{ListID: fx.list.ID, Title: "x"})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInsufficientRole)
	})

	t.Run("rejects unknown list", func(t *testing.T) {
		_, err := svc.CreateTask(actorFor(manager), CreateTaskInput{ListID: uuid.NewString(), Title: "x"})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestCompleteTaskAsAssignedMember(t *testing.T) {
	svc, ledger, fx := newTaskFixture(t)
	member := seedUser(t, fx.db, models.RoleMember, &fx.team.ID)
	task := seedTask(t, fx.db, fx.list.ID, 5, &member.ID)

	done, err := svc.CompleteTask(actorFor(member), task.ID)
	require.NoError(t, err)
	require.NotNil(t, done.CompletedAt)

	var stored models.Task
	require.NoError(t, fx.db.First(&stored, "id = ?", task.ID).Error)
	require.NotNil(t, stored.CompletedAt)

	var entries []models.PointsHistoryEntry
	require.NoError(t, fx.db.Where("task_id = ?", task.ID).Find(&entries).Error)
	require.Len(t, entries, 1)
	assert.Equal(t, int64(5), entries[0].PointsEarned)
	assert.Equal(t, member.ID, entries[0].UserID)

	total, err := ledger.GetUserPoints(actorFor(member), member.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
}

func TestCompleteTaskMemberMustBeAssignee(t *testing.T) {
	svc, _, fx := newTaskFixture(t)
	assignee := seedUser(t, fx.db, models.RoleMember, &fx.team.ID)
	other := seedUser(t, fx.db, models.RoleMember, &fx.team.ID)
	task := seedTask(t, fx.db, fx.list.ID, 3, &assignee.ID)

	_, err := svc.CompleteTask(actorFor(other), task.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrForbidden)

	var stored models.Task
	require.NoError(t, fx.db.First(&stored, "id = ?", task.ID).Error)
	assert.Nil(t, stored.CompletedAt)
}

func TestCompleteTaskManagerBypassesAssignment(t *testing.T) {
	svc, _, fx := newTaskFixture(t)
	manager := seedUser(t, fx.db, models.RoleManager, &fx.team.ID)
	task := seedTask(t, fx.db, fx.list.ID, 2, nil)

	done, err := svc.CompleteTask(actorFor(manager), task.ID)
	require.NoError(t, err)
	assert.NotNil(t, done.CompletedAt)
}

func TestCompleteTaskManagerWrongTeam(t *testing.T) {
	svc, _, fx := newTaskFixture(t)
	otherTeam := seedTeam(t, fx.db, "bravo")
	manager := seedUser(t, fx.db, models.RoleManager, &otherTeam.ID)
	task := seedTask(t, fx.db, fx.list.ID, 2, nil)

	_, err := svc.CompleteTask(actorFor(manager), task.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrWrongTeamScope)
}

func TestCompleteTaskTwiceConflicts(t *testing.T) {
	svc, _, fx := newTaskFixture(t)
	member := seedUser(t, fx.db, models.RoleMember, &fx.team.ID)
	task := seedTask(t, fx.db, fx.list.ID, 8, &member.ID)

	_, err := svc.CompleteTask(actorFor(member), task.ID)
	require.NoError(t, err)

	_, err = svc.CompleteTask(actorFor(member), task.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAlreadyCompleted)
	assert.ErrorIs(t, err, ErrConflict)

	// Completion stayed monotonic and the ledger stayed single-entry.
	var entries []models.PointsHistoryEntry
	require.NoError(t, fx.db.Where("task_id = ?", task.ID).Find(&entries).Error)
	assert.Len(t, entries, 1)
}

func TestCompleteTaskMissing(t *testing.T) {
	svc, _, fx := newTaskFixture(t)
	member := seedUser(t, fx.db, models.RoleMember, &fx.team.ID)

	_, err := svc.CompleteTask(actorFor(member), uuid.NewString())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCompleteTaskSurvivesAwardConflict(t *testing.T) {
	svc, _, fx := newTaskFixture(t)
	member := seedUser(t, fx.db, models.RoleMember, &fx.team.ID)
	task := seedTask(t, fx.db, fx.list.ID, 5, &member.ID)

	// An award row already exists, so the post-completion award hits the
	// idempotency guard. The completion itself must still succeed.
	require.NoError(t, fx.db.Create(&models.PointsHistoryEntry{
		ID:           uuid.NewString(),
		UserID:       member.ID,
		PointsEarned: 5,
		Reason:       models.ReasonTaskComplete,
		TaskID:       &task.ID,
	}).Error)

	done, err := svc.CompleteTask(actorFor(member), task.ID)
	require.NoError(t, err)
	assert.NotNil(t, done.CompletedAt)

	var count int64
	require.NoError(t, fx.db.Model(&models.PointsHistoryEntry{}).
		Where("task_id = ?", task.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestDeleteTaskRetainsEarnedPoints(t *testing.T) {
	svc, ledger, fx := newTaskFixture(t)
	manager := seedUser(t, fx.db, models.RoleManager, &fx.team.ID)
	member := seedUser(t, fx.db, models.RoleMember, &fx.team.ID)
	task := seedTask(t, fx.db, fx.list.ID, 13, &member.ID)

	_, err := svc.CompleteTask(actorFor(member), task.ID)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteTask(actorFor(manager), task.ID))

	_, err = svc.GetTask(actorFor(manager), task.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)

	total, err := ledger.GetUserPoints(actorFor(member), member.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(13), total)
}

func TestMoveTaskKeepsCompletionState(t *testing.T) {
	svc, _, fx := newTaskFixture(t)
	manager := seedUser(t, fx.db, models.RoleManager, &fx.team.ID)
	member := seedUser(t, fx.db, models.RoleMember, &fx.team.ID)
	done := seedList(t, fx.db, fx.board.ID, 1)
	task := seedTask(t, fx.db, fx.list.ID, 3, &member.ID)

	_, err := svc.CompleteTask(actorFor(member), task.ID)
	require.NoError(t, err)

	moved, err := svc.MoveTask(actorFor(manager), task.ID, done.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, done.ID, moved.ListID)
	assert.NotNil(t, moved.CompletedAt)

	var entries int64
	require.NoError(t, fx.db.Model(&models.PointsHistoryEntry{}).
		Where("task_id = ?", task.ID).Count(&entries).Error)
	assert.Equal(t, int64(1), entries)
}

func TestMoveTaskRejectsForeignTargetList(t *testing.T) {
	svc, _, fx := newTaskFixture(t)
	manager := seedUser(t, fx.db, models.RoleManager, &fx.team.ID)
	task := seedTask(t, fx.db, fx.list.ID, 1, nil)

	otherTeam := seedTeam(t, fx.db, "bravo")
	otherBoard := seedBoard(t, fx.db, otherTeam.ID)
	otherList := seedList(t, fx.db, otherBoard.ID, 0)

	_, err := svc.MoveTask(actorFor(manager), task.ID, otherList.ID, 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrWrongTeamScope)
}

func TestAssignTask(t *testing.T) {
	svc, _, fx := newTaskFixture(t)
	manager := seedUser(t, fx.db, models.RoleManager, &fx.team.ID)
	member := seedUser(t, fx.db, models.RoleMember, &fx.team.ID)
	task := seedTask(t, fx.db, fx.list.ID, 1, nil)

	t.Run("members may not assign", func(t *testing.T) {
		_, err := svc.AssignTask(actorFor(member), task.ID, &member.ID)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInsufficientRole)
	})

	t.Run("assignee must exist", func(t *testing.T) {
		ghost := uuid.NewString()
		_, err := svc.AssignTask(actorFor(manager), task.ID, &ghost)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("manager assigns and clears", func(t *testing.T) {
		assigned, err := svc.AssignTask(actorFor(manager), task.ID, &member.ID)
		require.NoError(t, err)
		require.NotNil(t, assigned.AssignedTo)
		assert.Equal(t, member.ID, *assigned.AssignedTo)

		cleared, err := svc.AssignTask(actorFor(manager), task.ID, nil)
		require.NoError(t, err)
		assert.Nil(t, cleared.AssignedTo)
	})
}

func TestUpdateTaskDoesNotTouchCompletion(t *testing.T) {
	svc, _, fx := newTaskFixture(t)
	manager := seedUser(t, fx.db, models.RoleManager, &fx.team.ID)
	member := seedUser(t, fx.db, models.RoleMember, &fx.team.ID)
	task := seedTask(t, fx.db, fx.list.ID, 5, &member.ID)

	_, err := svc.CompleteTask(actorFor(member), task.ID)
	require.NoError(t, err)

	title := "renamed"
	sp := 8
	updated, err := svc.UpdateTask(actorFor(manager), task.ID, UpdateTaskInput{Title: &title, StoryPoints: &sp})
	require.NoError(t, err)
	assert.Equal(t, "renamed", updated.Title)
	assert.Equal(t, 8, updated.StoryPoints)
	assert.NotNil(t, updated.CompletedAt)

	// Raising story points after completion never re-awards.
	var entries []models.PointsHistoryEntry
	require.NoError(t, fx.db.Where("task_id = ?", task.ID).Find(&entries).Error)
	require.Len(t, entries, 1)
	assert.Equal(t, int64(5), entries[0].PointsEarned)
}

func TestListTasksOrdersByPosition(t *testing.T) {
	svc, _, fx := newTaskFixture(t)
	member := seedUser(t, fx.db, models.RoleMember, &fx.team.ID)

	for i := 2; i >= 0; i-- {
		task := seedTask(t, fx.db, fx.list.ID, 1, nil)
		require.NoError(t, fx.db.Model(task).Update("position", i).Error)
	}

	tasks, err := svc.ListTasks(actorFor(member), fx.list.ID)
	require.NoError(t, err)
	require.Len(t, tasks, 3)
	for i, task := range tasks {
		assert.Equal(t, i, task.Position)
	}
}
