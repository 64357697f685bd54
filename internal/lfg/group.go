package lfg

import "time"

// DefaultVotesNeeded is the boot quorum a cleared group starts with.
const DefaultVotesNeeded = 3

// GroupState is the LFG state of one party.
//
// Boot is a suspending sub-state: StartBoot saves the current state and
// StopBoot restores exactly that state. Only one suspension is held at a time.
type GroupState struct {
	id         PartyID
	queued     bool
	state      State
	savedState State
	dungeons   DungeonSet
	dungeon    DungeonID
	proposal   ProposalID
	flags      MemberFlags

	roleCheck         RoleCheckState
	roleCheckCancelAt time.Time

	bootVotes    map[PlayerID]Answer
	bootKicker   PlayerID
	bootVictim   PlayerID
	bootReason   string
	bootCancelAt time.Time

	votesNeeded   uint
	kicksLeft     uint
	randomPlayers uint
}

func NewGroupState(id PartyID, maxKicks uint) *GroupState {
	g := &GroupState{id: id}
	g.Clear(maxKicks)
	return g
}

// Clear fully resets the group, cancelling any role check or boot vote.
func (g *GroupState) Clear(maxKicks uint) {
	g.queued = false
	g.votesNeeded = DefaultVotesNeeded
	g.kicksLeft = maxKicks
	g.flags = groupDefaultFlags
	g.proposal = ""
	g.roleCheck = RoleCheckNone
	g.roleCheckCancelAt = time.Time{}
	g.dungeons.Clear()
	g.dungeon = 0
	g.state = StateNone
	g.SaveState()
	g.StopBoot()
	g.randomPlayers = 0
}

func (g *GroupState) ID() PartyID { return g.id }

func (g *GroupState) State() State          { return g.state }
func (g *GroupState) SavedState() State     { return g.savedState }
func (g *GroupState) SaveState()            { g.savedState = g.state }
func (g *GroupState) RestoreState()         { g.state = g.savedState }
func (g *GroupState) Queued() bool          { return g.queued }
func (g *GroupState) SetQueued(v bool)      { g.queued = v }
func (g *GroupState) Dungeons() *DungeonSet { return &g.dungeons }
func (g *GroupState) Flags() MemberFlags    { return g.flags }

// SetState moves the group to s. While a boot vote runs the vote keeps the
// group, and s becomes the state StopBoot returns to.
func (g *GroupState) SetState(s State) {
	if g.state == StateBoot {
		g.savedState = s
		return
	}
	g.state = s
}

// PrimaryState is the state the group is in, or returns to, outside a boot
// vote.
func (g *GroupState) PrimaryState() State {
	if g.state == StateBoot {
		return g.savedState
	}
	return g.state
}

func (g *GroupState) Dungeon() DungeonID        { return g.dungeon }
func (g *GroupState) SetDungeon(id DungeonID)   { g.dungeon = id }
func (g *GroupState) Proposal() ProposalID      { return g.proposal }
func (g *GroupState) SetProposal(id ProposalID) { g.proposal = id }
func (g *GroupState) RandomPlayers() uint       { return g.randomPlayers }
func (g *GroupState) SetRandomPlayers(n uint)   { g.randomPlayers = n }

func (g *GroupState) VotesNeeded() uint     { return g.votesNeeded }
func (g *GroupState) SetVotesNeeded(n uint) { g.votesNeeded = n }
func (g *GroupState) KicksLeft() uint       { return g.kicksLeft }

// DecreaseKicksLeft spends one kick; the budget never goes below zero.
func (g *GroupState) DecreaseKicksLeft() {
	if g.kicksLeft > 0 {
		g.kicksLeft--
	}
}

// StartRoleCheck opens a role check that expires window after now.
func (g *GroupState) StartRoleCheck(now time.Time, window time.Duration) {
	g.roleCheckCancelAt = now.Add(window)
	g.roleCheck = RoleCheckInitiating
	g.SetState(StateRoleCheck)
}

// FinishRoleCheck records the outcome and disarms the deadline. Only
// RoleCheckFinished puts the group back in the queue.
func (g *GroupState) FinishRoleCheck(result RoleCheckState) {
	g.roleCheck = result
	g.roleCheckCancelAt = time.Time{}
	if result == RoleCheckFinished {
		g.queued = true
		g.SetState(StateQueued)
		return
	}
	g.queued = false
	g.SetState(StateNone)
}

func (g *GroupState) RoleCheckState() RoleCheckState     { return g.roleCheck }
func (g *GroupState) SetRoleCheckState(s RoleCheckState) { g.roleCheck = s }
func (g *GroupState) RoleCheckCancelAt() time.Time       { return g.roleCheckCancelAt }

func (g *GroupState) IsRoleCheckActive() bool {
	return g.roleCheck != RoleCheckNone && !g.roleCheckCancelAt.IsZero()
}

// StartBoot freezes a ballot per member: the victim is preset to Deny and the
// kicker to Agree, everyone else is Pending.
func (g *GroupState) StartBoot(now time.Time, window time.Duration, kicker, victim PlayerID, reason string, members []PlayerID) {
	g.SaveState()
	g.bootVotes = make(map[PlayerID]Answer, len(members))
	g.bootKicker = kicker
	g.bootVictim = victim
	g.bootReason = reason
	g.bootCancelAt = now.Add(window)
	for _, m := range members {
		vote := AnswerPending
		switch m {
		case victim:
			vote = AnswerDeny
		case kicker:
			vote = AnswerAgree
		}
		g.bootVotes[m] = vote
	}
	g.state = StateBoot
}

// UpdateBoot records a ballot. Only the first answer of each voter counts.
func (g *GroupState) UpdateBoot(voter PlayerID, answer Answer) error {
	cur, ok := g.bootVotes[voter]
	if !ok {
		return ErrNotVoter
	}
	if cur == AnswerPending {
		g.bootVotes[voter] = answer
	}
	return nil
}

// BootResult tallies the ballots against the quorum.
func (g *GroupState) BootResult() Answer {
	var agree, deny uint
	for _, v := range g.bootVotes {
		switch v {
		case AnswerAgree:
			agree++
		case AnswerDeny:
			deny++
		}
	}
	total := uint(len(g.bootVotes))
	switch {
	case agree >= g.votesNeeded:
		return AnswerAgree
	// Deny wins once Agree can no longer reach the quorum.
	case g.votesNeeded <= total && deny > total-g.votesNeeded:
		return AnswerDeny
	default:
		return AnswerPending
	}
}

// StopBoot clears the vote and returns the group to its pre-vote state.
func (g *GroupState) StopBoot() {
	g.bootVotes = nil
	g.bootKicker = ""
	g.bootVictim = ""
	g.bootReason = ""
	g.bootCancelAt = time.Time{}
	g.RestoreState()
}

func (g *GroupState) IsBootActive(now time.Time) bool {
	return g.state == StateBoot && now.Before(g.bootCancelAt)
}

func (g *GroupState) BootVictim() PlayerID    { return g.bootVictim }
func (g *GroupState) BootKicker() PlayerID    { return g.bootKicker }
func (g *GroupState) BootReason() string      { return g.bootReason }
func (g *GroupState) BootCancelAt() time.Time { return g.bootCancelAt }

// BootVotes returns a copy of the ballots.
func (g *GroupState) BootVotes() map[PlayerID]Answer {
	out := make(map[PlayerID]Answer, len(g.bootVotes))
	for k, v := range g.bootVotes {
		out[k] = v
	}
	return out
}

// GroupView is a point-in-time copy of a GroupState.
type GroupView struct {
	ID                PartyID
	Queued            bool
	State             State
	SavedState        State
	Dungeons          []DungeonID
	Category          Category
	Dungeon           DungeonID
	Proposal          ProposalID
	RoleCheck         RoleCheckState
	RoleCheckCancelAt time.Time
	BootVotes         map[PlayerID]Answer
	BootKicker        PlayerID
	BootVictim        PlayerID
	BootReason        string
	BootCancelAt      time.Time
	VotesNeeded       uint
	KicksLeft         uint
	Flags             MemberFlags
}

func (g *GroupState) view() GroupView {
	return GroupView{
		ID:                g.id,
		Queued:            g.queued,
		State:             g.state,
		SavedState:        g.savedState,
		Dungeons:          g.dungeons.IDs(),
		Category:          g.dungeons.Category(),
		Dungeon:           g.dungeon,
		Proposal:          g.proposal,
		RoleCheck:         g.roleCheck,
		RoleCheckCancelAt: g.roleCheckCancelAt,
		BootVotes:         g.BootVotes(),
		BootKicker:        g.bootKicker,
		BootVictim:        g.bootVictim,
		BootReason:        g.bootReason,
		BootCancelAt:      g.bootCancelAt,
		VotesNeeded:       g.votesNeeded,
		KicksLeft:         g.kicksLeft,
		Flags:             g.flags,
	}
}
