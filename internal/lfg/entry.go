package lfg

import "time"

// EntryKind says whether a queue ticket belongs to a lone player or a party.
type EntryKind uint8

const (
	EntryPlayer EntryKind = iota
	EntryParty
)

// QueueEntry is one ticket visible to the matcher. Only the matcher adjusts
// it after construction.
type QueueEntry struct {
	ID         string
	Kind       EntryKind
	Category   Category
	QueueID    uint32
	Targets    RoleTargets
	EnqueuedAt time.Time
}

// NewQueueEntry builds a ticket stamped with now. An empty id is a caller bug
// and yields ErrEmptyID.
func NewQueueEntry(id string, kind EntryKind, category Category, queueID uint32, targets RoleTargets, now time.Time) (*QueueEntry, error) {
	if id == "" {
		return nil, ErrEmptyID
	}
	return &QueueEntry{
		ID:         id,
		Kind:       kind,
		Category:   category,
		QueueID:    queueID,
		Targets:    targets,
		EnqueuedAt: now,
	}, nil
}
