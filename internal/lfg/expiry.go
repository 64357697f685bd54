package lfg

import "sort"

// Expired lists the sub-protocols whose deadline has passed and that still
// wait for a finalizing transition.
type Expired struct {
	RoleChecks []PartyID
	Boots      []PartyID
	Proposals  []ProposalID
}

func (e Expired) Empty() bool {
	return len(e.RoleChecks) == 0 && len(e.Boots) == 0 && len(e.Proposals) == 0
}

// Expired scans every deadline against the clock. It only reads; the caller
// applies FinishRoleCheck, FinishBoot or ExpireProposal.
func (m *Manager) Expired() Expired {
	now := m.clock.Now()

	m.mu.RLock()
	defer m.mu.RUnlock()

	var out Expired
	for id, g := range m.groups {
		if g.IsRoleCheckActive() && !now.Before(g.RoleCheckCancelAt()) {
			out.RoleChecks = append(out.RoleChecks, id)
		}
		if g.State() == StateBoot && !g.IsBootActive(now) {
			out.Boots = append(out.Boots, id)
		}
	}
	for id, pr := range m.proposals {
		if pr.State() == ProposalActive && !now.Before(pr.CancelAt()) {
			out.Proposals = append(out.Proposals, id)
		}
	}
	sort.Slice(out.RoleChecks, func(i, j int) bool { return out.RoleChecks[i] < out.RoleChecks[j] })
	sort.Slice(out.Boots, func(i, j int) bool { return out.Boots[i] < out.Boots[j] })
	sort.Slice(out.Proposals, func(i, j int) bool { return out.Proposals[i] < out.Proposals[j] })
	return out
}
