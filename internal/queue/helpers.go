// Small internal helpers kept separate to keep manager.go focused.

package queue

import "github.com/jose-valero/lfg-bot/internal/lfg"

// snapshot returns a copy of the given queue, copying the Entries slice.
// Tickets are immutable so the pointers are shared.
func snapshot(q *Queue) *Queue {
	cp := *q
	cp.Entries = append([]*lfg.QueueEntry(nil), q.Entries...)
	return &cp
}

// locateEntry returns the queue holding entryID and its index, or (nil,-1) if
// absent. It is intended to be called under the Manager mutex.
func locateEntry(qs map[uint32]*Queue, entryID string) (*Queue, int) {
	for _, q := range qs {
		for i, e := range q.Entries {
			if e.ID == entryID {
				return q, i
			}
		}
	}
	return nil, -1
}

func removeAt(es []*lfg.QueueEntry, i int) []*lfg.QueueEntry {
	return append(es[:i], es[i+1:]...)
}
