package lfg

import (
	"go.uber.org/zap"
)

// BootOutcome is the final tally of a boot vote.
type BootOutcome struct {
	Party     PartyID
	Kicker    PlayerID
	Victim    PlayerID
	Reason    string
	Result    Answer
	KicksLeft uint
	Votes     map[PlayerID]Answer
}

// Kicked reports whether the victim must be removed from the party.
func (o BootOutcome) Kicked() bool { return o.Result == AnswerAgree }

// JoinGroup registers a party, returning the existing state if it is already
// known.
func (m *Manager) JoinGroup(id PartyID) (GroupView, error) {
	if id == "" {
		return GroupView{}, ErrEmptyID
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	g, ok := m.groups[id]
	if !ok {
		g = m.newGroup(id)
		m.groups[id] = g
	}
	return g.view(), nil
}

func (m *Manager) Group(id PartyID) (GroupView, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	g, ok := m.groups[id]
	if !ok {
		return GroupView{}, ErrGroupNotFound
	}
	return g.view(), nil
}

func (m *Manager) RemoveGroup(id PartyID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.groups, id)
}

// ClearGroup resets the party, restoring the kick budget and configured
// quorum.
func (m *Manager) ClearGroup(id PartyID) error {
	return m.updateGroup(id, func(g *GroupState) error {
		g.Clear(m.cfg.MaxKicks)
		m.applyQuorum(g)
		return nil
	})
}

func (m *Manager) SetGroupDungeons(id PartyID, ds ...Dungeon) error {
	return m.updateGroup(id, func(g *GroupState) error {
		g.Dungeons().Replace(ds...)
		return nil
	})
}

func (m *Manager) SetGroupState(id PartyID, s State) error {
	return m.updateGroup(id, func(g *GroupState) error {
		g.SetState(s)
		return nil
	})
}

func (m *Manager) SetVotesNeeded(id PartyID, n uint) error {
	return m.updateGroup(id, func(g *GroupState) error {
		g.SetVotesNeeded(n)
		return nil
	})
}

func (m *Manager) VotesNeeded(id PartyID) (uint, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	g, ok := m.groups[id]
	if !ok {
		return 0, ErrGroupNotFound
	}
	return g.VotesNeeded(), nil
}

func (m *Manager) KicksLeft(id PartyID) (uint, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	g, ok := m.groups[id]
	if !ok {
		return 0, ErrGroupNotFound
	}
	return g.KicksLeft(), nil
}

func (m *Manager) DecreaseKicksLeft(id PartyID) error {
	return m.updateGroup(id, func(g *GroupState) error {
		g.DecreaseKicksLeft()
		return nil
	})
}

// ---------- role check ----------

// StartRoleCheck opens a role check for the party and flags every known
// member as being in it.
func (m *Manager) StartRoleCheck(id PartyID) error {
	members := m.parties.Members(id)
	now := m.clock.Now()

	return m.updateGroup(id, func(g *GroupState) error {
		if g.IsRoleCheckActive() {
			return ErrRoleCheckActive
		}
		g.StartRoleCheck(now, m.cfg.RoleCheckWindow)
		for _, pid := range members {
			if p, ok := m.players[pid]; ok {
				p.SetState(StateRoleCheck)
			}
		}
		m.log.Debug("role check started",
			zap.String("party", string(id)),
			zap.Time("cancelAt", g.RoleCheckCancelAt()),
		)
		return nil
	})
}

// FinishRoleCheck closes the role check with result. RoleCheckFinished
// queues the party, anything else takes it out of LFG.
func (m *Manager) FinishRoleCheck(id PartyID, result RoleCheckState) error {
	members := m.parties.Members(id)

	return m.updateGroup(id, func(g *GroupState) error {
		if !g.IsRoleCheckActive() {
			return ErrRoleCheckIdle
		}
		g.FinishRoleCheck(result)
		for _, pid := range members {
			if p, ok := m.players[pid]; ok {
				p.SetState(g.PrimaryState())
			}
		}
		m.log.Debug("role check finished",
			zap.String("party", string(id)),
			zap.Stringer("result", result),
		)
		return nil
	})
}

func (m *Manager) IsRoleCheckActive(id PartyID) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	g, ok := m.groups[id]
	if !ok {
		return false, ErrGroupNotFound
	}
	return g.IsRoleCheckActive(), nil
}

// ---------- boot ----------

// StartBoot opens a vote to remove victim. The ballot roster is the party
// membership at this moment.
func (m *Manager) StartBoot(id PartyID, kicker, victim PlayerID, reason string) error {
	members := m.parties.Members(id)
	now := m.clock.Now()

	return m.updateGroup(id, func(g *GroupState) error {
		if g.State() == StateBoot {
			return ErrBootInProgress
		}
		if g.KicksLeft() == 0 {
			return ErrNoKicksLeft
		}
		if !containsPlayer(members, kicker) || !containsPlayer(members, victim) {
			return ErrNotMember
		}
		g.StartBoot(now, m.cfg.BootWindow, kicker, victim, reason, members)
		m.log.Info("boot vote started",
			zap.String("party", string(id)),
			zap.String("kicker", string(kicker)),
			zap.String("victim", string(victim)),
			zap.Int("ballots", len(members)),
		)
		return nil
	})
}

// VoteBoot records a ballot. When the ballot decides the vote, the vote is
// closed in the same step and its outcome returned.
func (m *Manager) VoteBoot(id PartyID, voter PlayerID, answer Answer) (Answer, *BootOutcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	g, ok := m.groups[id]
	if !ok {
		return AnswerPending, nil, ErrGroupNotFound
	}
	if g.State() != StateBoot {
		return AnswerPending, nil, ErrBootNotActive
	}
	if err := g.UpdateBoot(voter, answer); err != nil {
		return AnswerPending, nil, err
	}
	result := g.BootResult()
	if result == AnswerPending {
		return result, nil, nil
	}
	out := m.finishBoot(g)
	return result, &out, nil
}

// BootResult tallies the current ballots without closing the vote.
func (m *Manager) BootResult(id PartyID) (Answer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	g, ok := m.groups[id]
	if !ok {
		return AnswerPending, ErrGroupNotFound
	}
	if g.State() != StateBoot {
		return AnswerPending, ErrBootNotActive
	}
	return g.BootResult(), nil
}

// FinishBoot closes the vote. An undecided vote counts as rejected.
func (m *Manager) FinishBoot(id PartyID) (BootOutcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	g, ok := m.groups[id]
	if !ok {
		return BootOutcome{}, ErrGroupNotFound
	}
	if g.State() != StateBoot {
		return BootOutcome{}, ErrBootNotActive
	}
	return m.finishBoot(g), nil
}

// StopBoot abandons the vote without spending a kick.
func (m *Manager) StopBoot(id PartyID) error {
	return m.updateGroup(id, func(g *GroupState) error {
		if g.State() != StateBoot {
			return ErrBootNotActive
		}
		g.StopBoot()
		return nil
	})
}

func (m *Manager) IsBootActive(id PartyID) (bool, error) {
	now := m.clock.Now()

	m.mu.RLock()
	defer m.mu.RUnlock()

	g, ok := m.groups[id]
	if !ok {
		return false, ErrGroupNotFound
	}
	return g.IsBootActive(now), nil
}

// finishBoot must be called with the write lock held.
func (m *Manager) finishBoot(g *GroupState) BootOutcome {
	result := g.BootResult()
	if result == AnswerPending {
		result = AnswerDeny
	}
	if result == AnswerAgree {
		g.DecreaseKicksLeft()
	}
	out := BootOutcome{
		Party:  g.ID(),
		Kicker: g.BootKicker(),
		Victim: g.BootVictim(),
		Reason: g.BootReason(),
		Result: result,
		Votes:  g.BootVotes(),
	}
	g.StopBoot()
	out.KicksLeft = g.KicksLeft()

	m.log.Info("boot vote finished",
		zap.String("party", string(out.Party)),
		zap.String("victim", string(out.Victim)),
		zap.Stringer("result", out.Result),
		zap.Uint("kicksLeft", out.KicksLeft),
	)
	return out
}

func (m *Manager) updateGroup(id PartyID, fn func(*GroupState) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	g, ok := m.groups[id]
	if !ok {
		return ErrGroupNotFound
	}
	return fn(g)
}

func (m *Manager) newGroup(id PartyID) *GroupState {
	g := NewGroupState(id, m.cfg.MaxKicks)
	m.applyQuorum(g)
	return g
}

func (m *Manager) applyQuorum(g *GroupState) {
	if m.cfg.VotesNeeded > 0 {
		g.SetVotesNeeded(m.cfg.VotesNeeded)
	}
}

func containsPlayer(ids []PlayerID, id PlayerID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
