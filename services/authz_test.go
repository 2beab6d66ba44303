package services

import (
	"testing"

	"team-taskboard/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthorize(t *testing.T) {
	guard := NewGuard()

	teamA := "2b1f6f2e-0000-4000-8000-00000000000a"
	teamB := "2b1f6f2e-0000-4000-8000-00000000000b"

	member := Identity{UserID: "u1", Role: models.RoleMember, TeamID: &teamA}
	manager := Identity{UserID: "u2", Role: models.RoleManager, TeamID: &teamA}
	admin := Identity{UserID: "u3", Role: models.RoleAdmin, TeamID: nil}
	unscoped := Identity{UserID: "u4", Role: models.RoleMember, TeamID: nil}

	tests := []struct {
		name    string
		actor   Identity
		action  Action
		team    *string
		wantErr error
	}{
		{"anonymous denied", Identity{}, ActionBoardRead, &teamA, ErrUnauthenticated},
		{"member reads own team", member, ActionBoardRead, &teamA, nil},
		{"member denied other team", member, ActionBoardRead, &teamB, ErrWrongTeamScope},
		{"member cannot write boards", member, ActionBoardWrite, &teamA, ErrInsufficientRole},
		{"member cannot assign", member, ActionTaskAssign, &teamA, ErrInsufficientRole},
		{"member may complete in own team", member, ActionTaskComplete, &teamA, nil},
		{"manager writes own team", manager, ActionTaskWrite, &teamA, nil},
		{"manager denied other team", manager, ActionTaskComplete, &teamB, ErrWrongTeamScope},
		{"manager cannot manage teams", manager, ActionTeamManage, nil, ErrInsufficientRole},
		{"manager cannot award points", manager, ActionPointsAward, nil, ErrInsufficientRole},
		{"admin spans teams", admin, ActionTaskWrite, &teamB, nil},
		{"admin manages teams", admin, ActionTeamManage, nil, nil},
		{"admin awards points", admin, ActionPointsAward, nil, nil},
		{"unscoped member sees nothing team-scoped", unscoped, ActionBoardRead, &teamA, ErrWrongTeamScope},
		{"unscoped member may read own points", unscoped, ActionPointsRead, nil, nil},
		{"unknown action denied", admin, Action("nonsense"), nil, ErrForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := guard.Authorize(tt.actor, tt.action, tt.team)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestAuthorizeDenialReasonsAreDistinguishable(t *testing.T) {
	guard := NewGuard()
	teamA := "2b1f6f2e-0000-4000-8000-00000000000a"
	teamB := "2b1f6f2e-0000-4000-8000-00000000000b"
	member := Identity{UserID: "u1", Role: models.RoleMember, TeamID: &teamA}

	roleErr := guard.Authorize(member, ActionBoardWrite, &teamA)
	scopeErr := guard.Authorize(member, ActionBoardRead, &teamB)

	// Both are forbidden, but callers can tell the reasons apart.
	assert.ErrorIs(t, roleErr, ErrForbidden)
	assert.ErrorIs(t, scopeErr, ErrForbidden)
	assert.NotErrorIs(t, roleErr, ErrWrongTeamScope)
	assert.NotErrorIs(t, scopeErr, ErrInsufficientRole)
}
