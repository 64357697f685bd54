package lfg

import (
	"time"

	"go.uber.org/zap"
)

// ProposalView is a point-in-time copy of a Proposal together with the
// answers its members have given so far.
type ProposalView struct {
	ID        ProposalID
	Dungeon   Dungeon
	Category  Category
	State     ProposalState
	CancelAt  time.Time
	Members   []PlayerID
	Decliners []PlayerID
	Answers   map[PlayerID]Answer
	Group     PartyID
}

// Agreed lists the members that answered Agree.
func (v ProposalView) Agreed() []PlayerID {
	out := make([]PlayerID, 0, len(v.Members))
	for _, id := range v.Members {
		if v.Answers[id] == AnswerAgree {
			out = append(out, id)
		}
	}
	return out
}

// NewProposal creates an Initiating proposal for dungeon (nil when none is
// bound yet) and attaches every member to it.
func (m *Manager) NewProposal(dungeon *Dungeon, members ...PlayerID) (ProposalID, error) {
	id := ProposalID(m.newID())

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, pid := range members {
		if _, ok := m.players[pid]; !ok {
			return "", ErrPlayerNotFound
		}
	}
	pr := NewProposal(id, dungeon)
	for _, pid := range members {
		pr.AddMember(pid)
		p := m.players[pid]
		p.AttachProposal(id)
		p.SetState(StateProposal)
	}
	m.proposals[id] = pr
	m.log.Debug("proposal created",
		zap.String("proposal", string(id)),
		zap.Int("members", len(members)),
	)
	return id, nil
}

// StartProposal arms the answer deadline.
func (m *Manager) StartProposal(id ProposalID) error {
	now := m.clock.Now()
	return m.updateProposal(id, func(pr *Proposal) error {
		if pr.State() != ProposalInitiating {
			return ErrProposalClosed
		}
		pr.Start(now, m.cfg.ProposalWindow)
		return nil
	})
}

func (m *Manager) Proposal(id ProposalID) (ProposalView, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	pr, ok := m.proposals[id]
	if !ok {
		return ProposalView{}, ErrProposalNotFound
	}
	return m.proposalView(pr), nil
}

// ProposalMembers returns a snapshot of the candidate set.
func (m *Manager) ProposalMembers(id ProposalID) ([]PlayerID, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	pr, ok := m.proposals[id]
	if !ok {
		return nil, ErrProposalNotFound
	}
	return pr.Members(), nil
}

func (m *Manager) IsProposalMember(id ProposalID, player PlayerID) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	pr, ok := m.proposals[id]
	if !ok {
		return false, ErrProposalNotFound
	}
	return pr.IsMember(player), nil
}

func (m *Manager) IsProposalDecliner(id ProposalID, player PlayerID) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	pr, ok := m.proposals[id]
	if !ok {
		return false, ErrProposalNotFound
	}
	return pr.IsDecliner(player), nil
}

// AddProposalMember backfills a candidate into an open proposal.
func (m *Manager) AddProposalMember(id ProposalID, player PlayerID) error {
	return m.updateProposal(id, func(pr *Proposal) error {
		if pr.State().Resolved() {
			return ErrProposalClosed
		}
		p, ok := m.players[player]
		if !ok {
			return ErrPlayerNotFound
		}
		if pr.IsMember(player) {
			return nil
		}
		pr.AddMember(player)
		p.AttachProposal(id)
		p.SetState(StateProposal)
		return nil
	})
}

// RemoveProposalMember drops a candidate and returns the proposal state
// after it: the remaining members may all have agreed already, or none may
// be left.
func (m *Manager) RemoveProposalMember(id ProposalID, player PlayerID) (ProposalState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	pr, ok := m.proposals[id]
	if !ok {
		return ProposalFailed, ErrProposalNotFound
	}
	pr.RemoveMember(player)
	if p, ok := m.players[player]; ok && p.Proposal() == id {
		p.DetachProposal()
	}
	m.resolveAfterRemoval(pr)
	return pr.State(), nil
}

// AnswerProposal records a member's reply and returns the proposal state
// after it. The first answer of each member counts; answers from players that
// already declined are ignored.
func (m *Manager) AnswerProposal(id ProposalID, player PlayerID, answer Answer) (ProposalState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	pr, ok := m.proposals[id]
	if !ok {
		return ProposalFailed, ErrProposalNotFound
	}
	if pr.State().Resolved() {
		return pr.State(), ErrProposalClosed
	}
	if pr.IsDecliner(player) {
		return pr.State(), nil
	}
	if !pr.IsMember(player) {
		return pr.State(), ErrNotMember
	}
	p, ok := m.players[player]
	if !ok {
		return pr.State(), ErrPlayerNotFound
	}
	if p.Answer() != AnswerPending || answer == AnswerPending {
		return pr.State(), nil
	}
	p.SetAnswer(answer)

	if answer == AnswerDeny {
		pr.RemoveDecliner(player)
		p.DetachProposal()
		p.SetState(StateNone)
		if m.cfg.DeclinePolicy == DeclineFails || len(pr.members) == 0 {
			m.failProposal(pr)
		}
		return pr.State(), nil
	}

	if m.allAgreed(pr) {
		pr.SetState(ProposalSuccess)
		m.log.Info("proposal accepted", zap.String("proposal", string(id)))
	}
	return pr.State(), nil
}

// ExpireProposal fails an active proposal whose deadline has passed. It
// reports whether the proposal was failed by this call.
func (m *Manager) ExpireProposal(id ProposalID) (bool, error) {
	now := m.clock.Now()

	m.mu.Lock()
	defer m.mu.Unlock()

	pr, ok := m.proposals[id]
	if !ok {
		return false, ErrProposalNotFound
	}
	if pr.State() != ProposalActive || now.Before(pr.CancelAt()) {
		return false, nil
	}
	m.failProposal(pr)
	return true, nil
}

// BindProposalGroup attaches the party formed from an accepted proposal and
// moves its members into the dungeon.
func (m *Manager) BindProposalGroup(id ProposalID, party PartyID) error {
	return m.updateProposal(id, func(pr *Proposal) error {
		if pr.State() != ProposalSuccess {
			return ErrProposalClosed
		}
		pr.SetGroup(party)
		g, ok := m.groups[party]
		if !ok {
			g = m.newGroup(party)
			m.groups[party] = g
		}
		g.SetProposal(id)
		if d, ok := pr.Dungeon(); ok {
			g.SetDungeon(d.ID)
		}
		g.SetQueued(false)
		g.SetState(StateDungeon)
		m.freezeAnswers(pr)
		for _, pid := range pr.Members() {
			if p, ok := m.players[pid]; ok {
				p.DetachProposal()
				p.SetState(StateDungeon)
			}
		}
		return nil
	})
}

func (m *Manager) ProposalGroup(id ProposalID) (PartyID, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	pr, ok := m.proposals[id]
	if !ok {
		return "", ErrProposalNotFound
	}
	return pr.Group(), nil
}

// DeleteProposal drops a proposal, detaching any player still bound to it.
func (m *Manager) DeleteProposal(id ProposalID) {
	m.mu.Lock()
	defer m.mu.Unlock()

	pr, ok := m.proposals[id]
	if !ok {
		return
	}
	pr.MarkDeleted()
	for _, pid := range pr.Members() {
		if p, ok := m.players[pid]; ok && p.Proposal() == id {
			p.DetachProposal()
		}
	}
	delete(m.proposals, id)
}

// failProposal must be called with the write lock held. Members that had
// agreed go back to the queue; the rest leave LFG.
func (m *Manager) failProposal(pr *Proposal) {
	pr.SetState(ProposalFailed)
	m.freezeAnswers(pr)
	for _, pid := range pr.Members() {
		p, ok := m.players[pid]
		if !ok || p.Proposal() != pr.ID() {
			continue
		}
		if p.Answer() == AnswerAgree {
			p.SetState(StateQueued)
		} else {
			p.SetState(StateNone)
		}
		p.DetachProposal()
	}
	m.log.Info("proposal failed", zap.String("proposal", string(pr.ID())))
}

func (m *Manager) freezeAnswers(pr *Proposal) {
	pr.final = make(map[PlayerID]Answer, len(pr.members)+len(pr.decliners))
	for pid := range pr.members {
		if p, ok := m.players[pid]; ok && p.Proposal() == pr.ID() {
			pr.final[pid] = p.Answer()
		}
	}
	for pid := range pr.decliners {
		pr.final[pid] = AnswerDeny
	}
}

// resolveAfterRemoval must be called with the write lock held.
func (m *Manager) resolveAfterRemoval(pr *Proposal) {
	if pr.State().Resolved() {
		return
	}
	switch {
	case len(pr.members) == 0:
		m.failProposal(pr)
	case m.allAgreed(pr):
		pr.SetState(ProposalSuccess)
		m.log.Info("proposal accepted", zap.String("proposal", string(pr.ID())))
	}
}

func (m *Manager) allAgreed(pr *Proposal) bool {
	if len(pr.members) == 0 {
		return false
	}
	for pid := range pr.members {
		p, ok := m.players[pid]
		if !ok || p.Answer() != AnswerAgree {
			return false
		}
	}
	return true
}

func (m *Manager) proposalView(pr *Proposal) ProposalView {
	v := ProposalView{
		ID:        pr.ID(),
		Category:  pr.Type(),
		State:     pr.State(),
		CancelAt:  pr.CancelAt(),
		Members:   pr.Members(),
		Decliners: pr.Decliners(),
		Answers:   make(map[PlayerID]Answer),
		Group:     pr.Group(),
	}
	if d, ok := pr.Dungeon(); ok {
		v.Dungeon = d
	}
	if pr.final != nil {
		for pid, a := range pr.final {
			v.Answers[pid] = a
		}
		return v
	}
	for _, pid := range v.Members {
		if p, ok := m.players[pid]; ok && p.Proposal() == pr.ID() {
			v.Answers[pid] = p.Answer()
		}
	}
	for _, pid := range v.Decliners {
		v.Answers[pid] = AnswerDeny
	}
	return v
}

func (m *Manager) updateProposal(id ProposalID, fn func(*Proposal) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	pr, ok := m.proposals[id]
	if !ok {
		return ErrProposalNotFound
	}
	return fn(pr)
}
