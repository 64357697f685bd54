package queue

import (
	"time"

	"github.com/jose-valero/lfg-bot/internal/lfg"
)

// Queue is the FIFO of tickets waiting on one queue id (a dungeon or a
// random pool).
type Queue struct {
	ID        uint32            // lfg queue id
	Name      string            // display name (exp: "Random Heroic")
	Entries   []*lfg.QueueEntry // tickets, oldest first
	CreatedAt time.Time         // when the queue was created
	Capacity  int               // max tickets, 0 means unbounded
}

// Seats is the number of players a ticket brings to a match.
type Seats func(*lfg.QueueEntry) int

// OneSeat counts every ticket as a single player.
func OneSeat(*lfg.QueueEntry) int { return 1 }
