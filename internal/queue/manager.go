// Package queue holds the per-dungeon ticket queues the matcher takes
// groups from.
package queue

import (
	"sort"
	"sync"
	"time"

	"github.com/jose-valero/lfg-bot/internal/lfg"
)

// Manager stores the tickets of every queue. A ticket id is unique across
// all queues.
type Manager struct {
	queues map[uint32]*Queue
	mu     sync.Mutex
}

func NewManager() *Manager {
	return &Manager{
		queues: make(map[uint32]*Queue),
	}
}

// Ensure creates the queue if needed and returns a snapshot of it.
func (m *Manager) Ensure(id uint32, name string, capacity int) *Queue {
	m.mu.Lock()
	defer m.mu.Unlock()

	return snapshot(m.ensureLocked(id, name, capacity))
}

func (m *Manager) ensureLocked(id uint32, name string, capacity int) *Queue {
	q, ok := m.queues[id]
	if !ok {
		q = &Queue{
			ID:        id,
			Name:      name,
			Entries:   []*lfg.QueueEntry{},
			CreatedAt: time.Now(),
			Capacity:  capacity,
		}
		m.queues[id] = q
	}
	return q
}

// Join appends a ticket to the tail of its queue, which must exist.
func (m *Manager) Join(e *lfg.QueueEntry) error {
	if e == nil {
		return ErrNoTicket
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	q, ok := m.queues[e.QueueID]
	if !ok {
		return ErrNotFound
	}
	return m.joinLocked(q, e)
}

// Enqueue is Join that creates an unbounded queue named name when needed.
func (m *Manager) Enqueue(e *lfg.QueueEntry, name string) error {
	if e == nil {
		return ErrNoTicket
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.joinLocked(m.ensureLocked(e.QueueID, name, 0), e)
}

func (m *Manager) joinLocked(q *Queue, e *lfg.QueueEntry) error {
	if other, _ := locateEntry(m.queues, e.ID); other != nil {
		return ErrAlreadyIn
	}
	if q.Capacity > 0 && len(q.Entries) >= q.Capacity {
		return ErrFull
	}
	q.Entries = append(q.Entries, e)
	return nil
}

// Leave removes a ticket from whatever queue holds it.
func (m *Manager) Leave(entryID string) (*lfg.QueueEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	q, i := locateEntry(m.queues, entryID)
	if q == nil {
		return nil, ErrNotIn
	}
	e := q.Entries[i]
	q.Entries = removeAt(q.Entries, i)
	return e, nil
}

// Take pops, oldest first, the tickets that fill exactly seats players.
// Tickets too large for the remaining seats are skipped and keep their
// place. When the queue cannot fill every seat nothing is removed and the
// result is nil.
func (m *Manager) Take(queueID uint32, seats int, size Seats) ([]*lfg.QueueEntry, error) {
	if size == nil {
		size = OneSeat
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	q, ok := m.queues[queueID]
	if !ok {
		return nil, ErrNotFound
	}
	if seats <= 0 {
		return nil, nil
	}

	left := seats
	picked := make([]int, 0, seats)
	for i, e := range q.Entries {
		n := size(e)
		if n <= 0 || n > left {
			continue
		}
		picked = append(picked, i)
		left -= n
		if left == 0 {
			break
		}
	}
	if left > 0 {
		return nil, nil
	}

	out := make([]*lfg.QueueEntry, 0, len(picked))
	for k := len(picked) - 1; k >= 0; k-- {
		i := picked[k]
		out = append(out, q.Entries[i])
		q.Entries = removeAt(q.Entries, i)
	}
	// restore FIFO order
	for l, r := 0, len(out)-1; l < r; l, r = l+1, r-1 {
		out[l], out[r] = out[r], out[l]
	}
	return out, nil
}

// Requeue puts tickets back in their queues at the position their original
// enqueue time gives them. Tickets already queued are ignored and capacity
// is not enforced, they already held a place.
func (m *Manager) Requeue(entries ...*lfg.QueueEntry) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, e := range entries {
		if e == nil {
			continue
		}
		if q, _ := locateEntry(m.queues, e.ID); q != nil {
			continue
		}
		q := m.ensureLocked(e.QueueID, "", 0)
		q.Entries = mergeByAge(q.Entries, e)
	}
}

// Queue returns a snapshot of one queue.
func (m *Manager) Queue(id uint32) (*Queue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	q, ok := m.queues[id]
	if !ok {
		return nil, ErrNotFound
	}
	return snapshot(q), nil
}

// Queues returns snapshots of every queue ordered by id.
func (m *Manager) Queues() []*Queue {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*Queue, 0, len(m.queues))
	for _, q := range m.queues {
		out = append(out, snapshot(q))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Contains reports whether the ticket is waiting in any queue.
func (m *Manager) Contains(entryID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	q, _ := locateEntry(m.queues, entryID)
	return q != nil
}

// Prune drops empty queues and returns how many were removed.
func (m *Manager) Prune() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return pruneEmpty(m.queues)
}
