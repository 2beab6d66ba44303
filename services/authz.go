package services

import (
	"team-taskboard/models"
)

// Identity is the authenticated caller as extracted from the gateway
// headers. A zero UserID means the request never went through auth.
type Identity struct {
	UserID string
	Role   models.Role
	TeamID *string
}

// Action names a guarded operation. Handlers and services authorize
// against these, never against raw role strings.
type Action string

const (
	ActionBoardRead    Action = "board.read"
	ActionBoardWrite   Action = "board.write"
	ActionListWrite    Action = "list.write"
	ActionTaskRead     Action = "task.read"
	ActionTaskWrite    Action = "task.write"
	ActionTaskAssign   Action = "task.assign"
	ActionTaskComplete Action = "task.complete"
	ActionTaskDelete   Action = "task.delete"

	ActionTeamManage      Action = "team.manage"
	ActionPointsAward     Action = "points.award"
	ActionPointsRedeem    Action = "points.redeem"
	ActionPointsRead      Action = "points.read"
	ActionLeaderboardRead Action = "leaderboard.read"
)

type policy struct {
	minRole    models.Role
	teamScoped bool
}

// The single source of truth for who may do what. Team-scoped actions are
// additionally checked against the target team; admins span all teams.
var policies = map[Action]policy{
	ActionBoardRead:    {minRole: models.RoleMember, teamScoped: true},
	ActionBoardWrite:   {minRole: models.RoleManager, teamScoped: true},
	ActionListWrite:    {minRole: models.RoleManager, teamScoped: true},
	ActionTaskRead:     {minRole: models.RoleMember, teamScoped: true},
	ActionTaskWrite:    {minRole: models.RoleManager, teamScoped: true},
	ActionTaskAssign:   {minRole: models.RoleManager, teamScoped: true},
	ActionTaskComplete: {minRole: models.RoleMember, teamScoped: true},
	ActionTaskDelete:   {minRole: models.RoleManager, teamScoped: true},

	ActionTeamManage:      {minRole: models.RoleAdmin},
	ActionPointsAward:     {minRole: models.RoleAdmin},
	ActionPointsRedeem:    {minRole: models.RoleMember},
	ActionPointsRead:      {minRole: models.RoleMember},
	ActionLeaderboardRead: {minRole: models.RoleMember},
}

var roleRank = map[models.Role]int{
	models.RoleMember:  1,
	models.RoleManager: 2,
	models.RoleAdmin:   3,
}

// Guard is a pure predicate over (actor role, actor team, target team).
// It never touches the store and never mutates anything.
type Guard struct{}

func NewGuard() *Guard {
	return &Guard{}
}

// Authorize returns nil when the actor may perform the action against the
// given team, or one of ErrUnauthenticated / ErrInsufficientRole /
// ErrWrongTeamScope. Pass a nil targetTeamID for unscoped actions.
func (g *Guard) Authorize(actor Identity, action Action, targetTeamID *string) error {
	if actor.UserID == "" {
		return ErrUnauthenticated
	}

	pol, ok := policies[action]
	if !ok {
		// Unknown actions are denied rather than defaulting open.
		return ErrForbidden
	}

	if roleRank[actor.Role] < roleRank[pol.minRole] {
		return ErrInsufficientRole
	}

	if pol.teamScoped && actor.Role != models.RoleAdmin {
		if targetTeamID == nil || actor.TeamID == nil || *actor.TeamID != *targetTeamID {
			return ErrWrongTeamScope
		}
	}

	return nil
}
