package models

// Role controls what a user may do. The hierarchy is total:
// admin ⊇ manager ⊇ member.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleMember  Role = "member"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleMember:
		return true
	default:
		return false
	}
}

// User is a local snapshot of identity data plus the taskboard-owned
// role/team assignment. Profile fields (email, display name) are populated
// by the identity sync worker; role and team are managed here.
type User struct {
	ID          string  `gorm:"primaryKey;type:uuid" json:"id"`
	ExternalID  string  `gorm:"uniqueIndex;not null" json:"external_id"` // identity provider's UUID
	Email       string  `json:"email,omitempty"`
	DisplayName string  `gorm:"not null" json:"display_name"`
	Role        Role    `gorm:"not null;default:'member'" json:"role"`
	TeamID      *string `gorm:"type:uuid;index" json:"team_id,omitempty"`

	// Cached sum of the points ledger. Reads that matter always SUM the
	// ledger; the reconciler repairs drift here.
	TotalPoints int64 `gorm:"default:0" json:"total_points"`

	Timestamps
}
