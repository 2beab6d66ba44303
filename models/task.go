package models

import "time"

// Task is a unit of work with story points, an optional assignee, and a
// completion state. CompletedAt only ever transitions null → timestamp;
// there is no un-complete operation.
type Task struct {
	ID          string     `gorm:"primaryKey;type:uuid" json:"id"`
	Title       string     `gorm:"not null" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	ListID      string     `gorm:"type:uuid;index;not null" json:"list_id"`
	AssignedTo  *string    `gorm:"type:uuid;index" json:"assigned_to,omitempty"`
	Position    int        `json:"position"`
	StoryPoints int        `gorm:"default:1" json:"story_points"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	AttachmentURL *string `gorm:"type:text" json:"attachment_url,omitempty"`

	Timestamps
}

func (t *Task) Completed() bool {
	return t.CompletedAt != nil
}
