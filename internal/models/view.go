package models

import "time"

// Origin tags which backend a merged task came from. It is derived at
// merge time and never persisted.
type Origin string

const (
	OriginDurable   Origin = "durable"
	OriginEphemeral Origin = "ephemeral"
)

// TaskView is the uniform shape the list view works with, regardless of
// whether the task is a database row or a session entry. Dates are
// always normalized calendar dates by the time a TaskView exists.
type TaskView struct {
	ID        string
	Text      string
	CreatedOn time.Time
	DueOn     *time.Time
	Done      bool
	Origin    Origin

	// EphemeralIndex is the position within the session list at merge
	// time, used to route mutations back to the right entry. Only
	// meaningful when Origin is OriginEphemeral.
	EphemeralIndex int
}

func (v TaskView) IsEphemeral() bool {
	return v.Origin == OriginEphemeral
}
