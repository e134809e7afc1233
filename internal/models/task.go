package models

import (
	"time"

	"github.com/gofrs/uuid"
)

// Task is a durable to-do item. Every row belongs to exactly one user;
// the schema cascades deletion from users to tasks.
type Task struct {
	ID        uuid.UUID  `json:"id" gorm:"primaryKey;type:uuid"`
	UserID    uuid.UUID  `json:"user_id" gorm:"type:uuid;not null;index"`
	Text      string     `json:"text" gorm:"not null"`
	CreatedOn time.Time  `json:"created_on" gorm:"type:date;not null"`
	DueOn     *time.Time `json:"due_on" gorm:"type:date"`
	Done      bool       `json:"done" gorm:"not null;default:false"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// SessionTask is the wire shape of one guest-held task inside the
// session document. Dates stay strings until merge time; the merger and
// the migration normalize them.
type SessionTask struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Date      string `json:"date"`
	DueOnDate string `json:"due_on_date,omitempty"`
	Done      bool   `json:"done"`
}
