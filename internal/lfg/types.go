// Package lfg holds the per-player, per-party and per-proposal state of the
// Looking For Group system: role negotiation, role checks, boot votes and the
// proposal/accept protocol.
//
// The state types in this package carry no locks of their own. Every mutation
// that can race goes through Manager, which owns the one process-wide
// reader/writer lock.
package lfg

import (
	"strings"
	"time"
)

type (
	PlayerID   string
	PartyID    string
	ProposalID string
	DungeonID  uint32
)

// Role is one selectable LFG role.
type Role uint8

const (
	RoleLeader Role = 1 << iota
	RoleTank
	RoleHealer
	RoleDPS
)

func (r Role) String() string {
	switch r {
	case RoleLeader:
		return "leader"
	case RoleTank:
		return "tank"
	case RoleHealer:
		return "healer"
	case RoleDPS:
		return "dps"
	default:
		return "unknown"
	}
}

var allRoles = [...]Role{RoleLeader, RoleTank, RoleHealer, RoleDPS}

// RoleMask is the set of roles a player is willing to fill.
type RoleMask uint8

const RoleMaskNone RoleMask = 0

func NewRoleMask(roles ...Role) RoleMask {
	var m RoleMask
	for _, r := range roles {
		m = m.With(r)
	}
	return m
}

func (m RoleMask) Has(r Role) bool           { return m&RoleMask(r) != 0 }
func (m RoleMask) With(r Role) RoleMask      { return m | RoleMask(r) }
func (m RoleMask) Without(r Role) RoleMask   { return m &^ RoleMask(r) }
func (m RoleMask) IsEmpty() bool             { return m == RoleMaskNone }
func (m RoleMask) Equal(other RoleMask) bool { return m == other }

// Roles lists the members of the set in a fixed order.
func (m RoleMask) Roles() []Role {
	out := make([]Role, 0, len(allRoles))
	for _, r := range allRoles {
		if m.Has(r) {
			out = append(out, r)
		}
	}
	return out
}

func (m RoleMask) String() string {
	if m.IsEmpty() {
		return "none"
	}
	names := make([]string, 0, len(allRoles))
	for _, r := range m.Roles() {
		names = append(names, r.String())
	}
	return strings.Join(names, "+")
}

// Answer is a ballot or a proposal reply.
type Answer uint8

const (
	AnswerPending Answer = iota
	AnswerAgree
	AnswerDeny
)

func (a Answer) String() string {
	switch a {
	case AnswerAgree:
		return "agree"
	case AnswerDeny:
		return "deny"
	default:
		return "pending"
	}
}

// Category is the shared kind of a dungeon entry.
type Category uint8

const (
	CategoryNone Category = iota
	CategoryDungeon
	CategoryRaid
	CategoryQuest
	CategoryZone
	CategoryHeroic
	CategoryRandom
)

func (c Category) String() string {
	switch c {
	case CategoryDungeon:
		return "dungeon"
	case CategoryRaid:
		return "raid"
	case CategoryQuest:
		return "quest"
	case CategoryZone:
		return "zone"
	case CategoryHeroic:
		return "heroic"
	case CategoryRandom:
		return "random"
	default:
		return "none"
	}
}

// State is the coarse LFG state of a player or a party.
type State uint8

const (
	StateNone State = iota
	StateRoleCheck
	StateQueued
	StateProposal
	StateBoot
	StateDungeon
	StateFinishedDungeon
	StateRaidBrowser
)

func (s State) String() string {
	switch s {
	case StateRoleCheck:
		return "rolecheck"
	case StateQueued:
		return "queued"
	case StateProposal:
		return "proposal"
	case StateBoot:
		return "boot"
	case StateDungeon:
		return "dungeon"
	case StateFinishedDungeon:
		return "finished_dungeon"
	case StateRaidBrowser:
		return "raid_browser"
	default:
		return "none"
	}
}

// RoleCheckState is the sub-state of a running (or finished) role check.
type RoleCheckState uint8

const (
	RoleCheckNone RoleCheckState = iota
	RoleCheckFinished
	RoleCheckInitiating
	RoleCheckMissingRole
	RoleCheckWrongRoles
	RoleCheckAborted
	RoleCheckNoRole
)

func (s RoleCheckState) String() string {
	switch s {
	case RoleCheckFinished:
		return "finished"
	case RoleCheckInitiating:
		return "initiating"
	case RoleCheckMissingRole:
		return "missing_role"
	case RoleCheckWrongRoles:
		return "wrong_roles"
	case RoleCheckAborted:
		return "aborted"
	case RoleCheckNoRole:
		return "no_role"
	default:
		return "none"
	}
}

// ProposalState tracks a proposal from construction to resolution.
type ProposalState uint8

const (
	ProposalInitiating ProposalState = iota
	ProposalActive
	ProposalSuccess
	ProposalFailed
)

func (s ProposalState) String() string {
	switch s {
	case ProposalActive:
		return "active"
	case ProposalSuccess:
		return "success"
	case ProposalFailed:
		return "failed"
	default:
		return "initiating"
	}
}

// Resolved reports whether no further answers can change the outcome.
func (s ProposalState) Resolved() bool {
	return s == ProposalSuccess || s == ProposalFailed
}

// MemberFlag marks one attribute as disclosable to party browsers.
type MemberFlag uint16

const (
	FlagCharInfo MemberFlag = 1 << iota
	FlagComment
	FlagGroupLeader
	FlagGroupGUID
	FlagRoles
	FlagArea
	FlagStatus
	FlagBind
)

// MemberFlags is a set of MemberFlag.
type MemberFlags uint16

func NewMemberFlags(flags ...MemberFlag) MemberFlags {
	var s MemberFlags
	for _, f := range flags {
		s = s.With(f)
	}
	return s
}

func (s MemberFlags) Has(f MemberFlag) bool            { return s&MemberFlags(f) != 0 }
func (s MemberFlags) With(f MemberFlag) MemberFlags    { return s | MemberFlags(f) }
func (s MemberFlags) Without(f MemberFlag) MemberFlags { return s &^ MemberFlags(f) }

// playerResyncFlags is what a cleared player discloses on the next update.
var playerResyncFlags = NewMemberFlags(
	FlagCharInfo, FlagComment, FlagGroupLeader, FlagGroupGUID,
	FlagArea, FlagStatus, FlagBind,
)

var groupDefaultFlags = NewMemberFlags(FlagComment, FlagRoles, FlagBind)

// LockReason explains why a player may not enter a dungeon.
type LockReason uint16

const (
	LockNone LockReason = iota
	LockInsufficientExpansion
	LockTooLowLevel
	LockTooHighLevel
	LockTooLowGearScore
	LockTooHighGearScore
	LockRaidLocked
	LockAttunementTooLow
	LockAttunementTooHigh
	LockQuestNotCompleted
	LockMissingItem
	LockNotInSeason
)

// LockMap maps dungeons to the reason the player is locked out of them.
type LockMap map[DungeonID]LockReason

func (m LockMap) clone() LockMap {
	out := make(LockMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// RoleTargets is how many of each role a queue ticket still needs.
type RoleTargets struct {
	Tanks   uint
	Healers uint
	DPS     uint
}

// Clock is the time source for every deadline.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock reads the wall clock.
var SystemClock Clock = systemClock{}
