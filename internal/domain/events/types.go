package events

import (
	"time"

	"github.com/jose-valero/lfg-bot/internal/lfg"
)

// QueueChanged is emitted when tickets join, leave or are taken from a queue.
type QueueChanged struct {
	QueueID uint32
	Size    int
}

// RoleCheckStarted is emitted when a party leader queues the party.
type RoleCheckStarted struct {
	Party    lfg.PartyID
	Members  []lfg.PlayerID
	CancelAt time.Time
}

// RoleCheckFinished is emitted when every member confirmed, someone refused
// or the window ran out.
type RoleCheckFinished struct {
	Party  lfg.PartyID
	Result lfg.RoleCheckState
}

// BootStarted is emitted when a kick vote opens.
type BootStarted struct {
	Party       lfg.PartyID
	Kicker      lfg.PlayerID
	Victim      lfg.PlayerID
	Reason      string
	Voters      []lfg.PlayerID
	VotesNeeded uint
	CancelAt    time.Time
}

// BootFinished is emitted when a kick vote is decided or expires.
type BootFinished struct {
	Outcome lfg.BootOutcome
}

// ProposalStarted is emitted when a candidate group is offered to players.
type ProposalStarted struct {
	Proposal lfg.ProposalView
}

// ProposalUpdated is emitted after each answer that leaves the proposal open.
type ProposalUpdated struct {
	Proposal lfg.ProposalView
}

// ProposalFinished is emitted once a proposal succeeds or fails.
type ProposalFinished struct {
	Proposal lfg.ProposalView
}
