package lfg

import "time"

// PlayerState is the LFG state of one player session. It is reused across
// sessions of the same player: Clear resets it instead of dropping it.
type PlayerState struct {
	id         PlayerID
	roles      RoleMask
	state      State
	dungeons   DungeonSet
	lockMap    LockMap
	lockDirty  bool
	comment    string
	answer     Answer
	proposal   ProposalID
	joinedAt   time.Time
	teleported bool
	flags      MemberFlags
}

func NewPlayerState(id PlayerID) *PlayerState {
	p := &PlayerState{id: id}
	p.Clear()
	return p
}

// Clear resets every field to its default and flags the whole member record
// for resync.
func (p *PlayerState) Clear() {
	p.roles = RoleMaskNone
	p.state = StateNone
	p.dungeons.Clear()
	p.lockMap = nil
	p.lockDirty = true
	p.comment = ""
	p.answer = AnswerPending
	p.proposal = ""
	p.joinedAt = time.Time{}
	p.teleported = false
	p.flags |= playerResyncFlags
}

func (p *PlayerState) ID() PlayerID { return p.id }

// SetRoles stores the desired roles. The leader bit follows party leadership,
// not the request: it is added iff leader is true.
func (p *PlayerState) SetRoles(mask RoleMask, leader bool) {
	if leader {
		mask = mask.With(RoleLeader)
	} else {
		mask = mask.Without(RoleLeader)
	}
	p.roles = mask
	if mask.IsEmpty() {
		p.flags = p.flags.Without(FlagRoles)
	} else {
		p.flags = p.flags.With(FlagRoles)
	}
}

func (p *PlayerState) Roles() RoleMask { return p.roles }

// IsSingleRole reports whether, leader aside, exactly one of tank, healer or
// dps was requested.
func (p *PlayerState) IsSingleRole() bool {
	switch p.roles.Without(RoleLeader) {
	case NewRoleMask(RoleTank), NewRoleMask(RoleHealer), NewRoleMask(RoleDPS):
		return true
	default:
		return false
	}
}

func (p *PlayerState) SetComment(text string) {
	p.comment = text
	if text == "" {
		p.flags = p.flags.Without(FlagComment)
	} else {
		p.flags = p.flags.With(FlagComment)
	}
}

func (p *PlayerState) Comment() string { return p.comment }

// SetJoined records the start of a queue attempt.
func (p *PlayerState) SetJoined(now time.Time) {
	p.joinedAt = now
	p.teleported = false
}

func (p *PlayerState) JoinedAt() time.Time    { return p.joinedAt }
func (p *PlayerState) Teleported() bool       { return p.teleported }
func (p *PlayerState) SetTeleported(v bool)   { p.teleported = v }
func (p *PlayerState) State() State           { return p.state }
func (p *PlayerState) SetState(s State)       { p.state = s }
func (p *PlayerState) Answer() Answer         { return p.answer }
func (p *PlayerState) SetAnswer(a Answer)     { p.answer = a }
func (p *PlayerState) Proposal() ProposalID   { return p.proposal }
func (p *PlayerState) Flags() MemberFlags     { return p.flags }
func (p *PlayerState) Dungeons() *DungeonSet  { return &p.dungeons }
func (p *PlayerState) AddFlags(f MemberFlags) { p.flags |= f }

// AttachProposal binds the player to a proposal and resets its answer.
func (p *PlayerState) AttachProposal(id ProposalID) {
	p.proposal = id
	p.answer = AnswerPending
}

func (p *PlayerState) DetachProposal() {
	p.proposal = ""
	p.answer = AnswerPending
}

// MarkLockMapDirty forces the next lock map read to query eligibility again.
func (p *PlayerState) MarkLockMapDirty() { p.lockDirty = true }

// lockMapStale is true when the cached map must be refreshed. An empty cache
// is always stale.
func (p *PlayerState) lockMapStale() bool {
	return p.lockDirty || len(p.lockMap) == 0
}

func (p *PlayerState) storeLockMap(m LockMap) {
	p.lockMap = m.clone()
	p.lockDirty = false
}

// PlayerView is a point-in-time copy of a PlayerState.
type PlayerView struct {
	ID         PlayerID
	Roles      RoleMask
	State      State
	Dungeons   []DungeonID
	Category   Category
	Comment    string
	Answer     Answer
	Proposal   ProposalID
	JoinedAt   time.Time
	Teleported bool
	Flags      MemberFlags
}

func (p *PlayerState) view() PlayerView {
	return PlayerView{
		ID:         p.id,
		Roles:      p.roles,
		State:      p.state,
		Dungeons:   p.dungeons.IDs(),
		Category:   p.dungeons.Category(),
		Comment:    p.comment,
		Answer:     p.answer,
		Proposal:   p.proposal,
		JoinedAt:   p.joinedAt,
		Teleported: p.teleported,
		Flags:      p.flags,
	}
}
