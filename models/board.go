package models

// Board is a named collection of lists belonging to one team.
// Deleting a board cascades to its lists and tasks.
type Board struct {
	ID          string  `gorm:"primaryKey;type:uuid" json:"id"`
	Name        string  `gorm:"not null" json:"name"`
	Slug        string  `gorm:"uniqueIndex;not null" json:"slug"`
	Description string  `gorm:"type:text" json:"description"`
	TeamID      string  `gorm:"type:uuid;index;not null" json:"team_id"`
	CreatedBy   *string `gorm:"type:uuid" json:"created_by,omitempty"`
	Timestamps
}

// List is an ordered column of tasks within a board. Position is unique
// enough to order by within a board; it is not required to be contiguous.
type List struct {
	ID       string `gorm:"primaryKey;type:uuid" json:"id"`
	Name     string `gorm:"not null" json:"name"`
	BoardID  string `gorm:"type:uuid;index;not null" json:"board_id"`
	Position int    `json:"position"`
	Timestamps
}
