package forum

import (
	"time"

	"github.com/fansite/forum/internal/models"
)

// Default edit limits
const (
	DefaultEditWindow = time.Hour
	DefaultMaxEdits   = 5
)

// EditState is the part of a topic or comment the edit policy looks at
type EditState struct {
	Deleted   bool
	Locked    bool
	CreatedAt time.Time
	EditCount int
}

// TopicEditState extracts the edit state of a topic
func TopicEditState(t *models.Topic) EditState {
	return EditState{Deleted: t.Deleted, Locked: t.Locked, CreatedAt: t.CreatedAt, EditCount: t.EditCount}
}

// CommentEditState extracts the edit state of a comment.
// Comments are never locked; a locked topic does not reach its existing comments.
func CommentEditState(c *models.Comment) EditState {
	return EditState{Deleted: c.Deleted, CreatedAt: c.CreatedAt, EditCount: c.EditCount}
}

// Decision describes whether an edit is permitted right now
type Decision struct {
	Allowed        bool
	RemainingEdits int
	WindowEndsAt   time.Time
}

// EditPolicy bounds edits by a window after creation and a maximum count
type EditPolicy struct {
	Window   time.Duration
	MaxEdits int
}

// NewEditPolicy creates an edit policy, falling back to defaults for zero values
func NewEditPolicy(window time.Duration, maxEdits int) EditPolicy {
	if window <= 0 {
		window = DefaultEditWindow
	}
	if maxEdits <= 0 {
		maxEdits = DefaultMaxEdits
	}
	return EditPolicy{Window: window, MaxEdits: maxEdits}
}

// Decide evaluates the policy without producing an error
func (p EditPolicy) Decide(s EditState, now time.Time) Decision {
	d := Decision{WindowEndsAt: s.CreatedAt.Add(p.Window)}
	if !s.Deleted {
		d.RemainingEdits = p.MaxEdits - s.EditCount
		if d.RemainingEdits < 0 {
			d.RemainingEdits = 0
		}
	}
	d.Allowed = p.Check(s, now) == nil
	return d
}

// Check returns the first rule the state violates, in the order
// deleted, locked, window, count.
func (p EditPolicy) Check(s EditState, now time.Time) error {
	switch {
	case s.Deleted:
		return ErrNotFound
	case s.Locked:
		return ErrLocked
	case now.Sub(s.CreatedAt) > p.Window:
		return ErrEditWindowExpired
	case s.EditCount >= p.MaxEdits:
		return ErrMaxEditsReached
	}
	return nil
}

// WindowStart is the earliest creation time still inside the edit window at now
func (p EditPolicy) WindowStart(now time.Time) time.Time {
	return now.Add(-p.Window)
}
