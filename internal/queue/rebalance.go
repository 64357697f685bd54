// Ordering and housekeeping utilities.

package queue

import (
	"sort"

	"github.com/jose-valero/lfg-bot/internal/lfg"
)

// mergeByAge puts returning tickets back among the waiting ones, keeping the
// queue ordered by EnqueuedAt so requeued players keep their place.
// Intended to be called under the Manager mutex.
func mergeByAge(cur []*lfg.QueueEntry, back ...*lfg.QueueEntry) []*lfg.QueueEntry {
	out := append(cur, back...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].EnqueuedAt.Before(out[j].EnqueuedAt)
	})
	return out
}

// pruneEmpty drops queues without tickets. Caller must hold the mutex.
func pruneEmpty(qs map[uint32]*Queue) int {
	n := 0
	for id, q := range qs {
		if len(q.Entries) == 0 {
			delete(qs, id)
			n++
		}
	}
	return n
}
