package lfg

import (
	"sort"
	"time"
)

// Proposal offers one party composition to a set of candidate players.
// Members and decliners never overlap.
type Proposal struct {
	id        ProposalID
	dungeon   *Dungeon
	state     ProposalState
	cancelAt  time.Time
	members   map[PlayerID]struct{}
	decliners map[PlayerID]struct{}
	group     PartyID
	deleted   bool

	// answers frozen when the proposal resolves
	final map[PlayerID]Answer
}

// NewProposal builds a proposal in the Initiating state. dungeon may be nil.
func NewProposal(id ProposalID, dungeon *Dungeon) *Proposal {
	p := &Proposal{
		id:        id,
		state:     ProposalInitiating,
		members:   make(map[PlayerID]struct{}),
		decliners: make(map[PlayerID]struct{}),
	}
	if dungeon != nil {
		d := *dungeon
		p.dungeon = &d
	}
	return p
}

func (p *Proposal) ID() ProposalID           { return p.id }
func (p *Proposal) State() ProposalState     { return p.state }
func (p *Proposal) SetState(s ProposalState) { p.state = s }
func (p *Proposal) CancelAt() time.Time      { return p.cancelAt }
func (p *Proposal) Deleted() bool            { return p.deleted }
func (p *Proposal) MarkDeleted()             { p.deleted = true }

// Start arms the answer deadline and activates the proposal.
func (p *Proposal) Start(now time.Time, window time.Duration) {
	p.cancelAt = now.Add(window)
	p.state = ProposalActive
}

// Dungeon returns a copy of the bound dungeon, if any.
func (p *Proposal) Dungeon() (Dungeon, bool) {
	if p.dungeon == nil {
		return Dungeon{}, false
	}
	return *p.dungeon, true
}

// Type is the category of the bound dungeon, or CategoryNone.
func (p *Proposal) Type() Category {
	if p.dungeon == nil {
		return CategoryNone
	}
	return p.dungeon.Category
}

func (p *Proposal) AddMember(id PlayerID) {
	if id == "" {
		return
	}
	p.members[id] = struct{}{}
}

func (p *Proposal) RemoveMember(id PlayerID) {
	if id == "" {
		return
	}
	delete(p.members, id)
}

// RemoveDecliner drops id from the candidates and records the decline.
func (p *Proposal) RemoveDecliner(id PlayerID) {
	if id == "" {
		return
	}
	delete(p.members, id)
	p.decliners[id] = struct{}{}
}

func (p *Proposal) IsMember(id PlayerID) bool {
	_, ok := p.members[id]
	return ok
}

func (p *Proposal) IsDecliner(id PlayerID) bool {
	_, ok := p.decliners[id]
	return ok
}

// Members returns a sorted copy of the candidate set.
func (p *Proposal) Members() []PlayerID {
	return sortedIDs(p.members)
}

func (p *Proposal) Decliners() []PlayerID {
	return sortedIDs(p.decliners)
}

// SetGroup binds the party formed from this proposal. An empty id unbinds.
func (p *Proposal) SetGroup(id PartyID) { p.group = id }

// Group returns the bound party, or "" when unbound.
func (p *Proposal) Group() PartyID { return p.group }

func sortedIDs(set map[PlayerID]struct{}) []PlayerID {
	out := make([]PlayerID, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
