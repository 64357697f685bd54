// Package party keeps the in-memory party roster the lfg core consults for
// membership and leadership.
package party

import (
	"sync"

	"github.com/google/uuid"

	"github.com/jose-valero/lfg-bot/internal/lfg"
)

// MaxSize is the largest party a dungeon admits.
const MaxSize = 5

type party struct {
	leader  lfg.PlayerID
	members []lfg.PlayerID
}

// Registry implements lfg.Parties. It has its own lock, independent of the
// lfg manager's.
type Registry struct {
	mu       sync.RWMutex
	parties  map[lfg.PartyID]*party
	byPlayer map[lfg.PlayerID]lfg.PartyID
	newID    func() string
}

var _ lfg.Parties = (*Registry)(nil)

func NewRegistry() *Registry {
	return &Registry{
		parties:  make(map[lfg.PartyID]*party),
		byPlayer: make(map[lfg.PlayerID]lfg.PartyID),
		newID:    uuid.NewString,
	}
}

// Form creates a party from players that are all party-less. The first
// member leads.
func (r *Registry) Form(members ...lfg.PlayerID) (lfg.PartyID, error) {
	if len(members) == 0 {
		return "", ErrEmptyParty
	}
	if len(members) > MaxSize {
		return "", ErrPartyFull
	}
	id := lfg.PartyID(r.newID())

	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[lfg.PlayerID]struct{}, len(members))
	for _, m := range members {
		if m == "" {
			return "", ErrEmptyPlayer
		}
		if _, ok := r.byPlayer[m]; ok {
			return "", ErrInParty
		}
		seen[m] = struct{}{}
	}
	p := &party{leader: members[0], members: make([]lfg.PlayerID, 0, len(seen))}
	for _, m := range members {
		if _, ok := seen[m]; !ok {
			continue
		}
		delete(seen, m)
		p.members = append(p.members, m)
		r.byPlayer[m] = id
	}
	r.parties[id] = p
	return id, nil
}

// Invite adds player to the inviter's party, creating one led by the
// inviter when needed.
func (r *Registry) Invite(inviter, player lfg.PlayerID) (lfg.PartyID, error) {
	if inviter == "" || player == "" {
		return "", ErrEmptyPlayer
	}
	if inviter == player {
		return "", ErrInParty
	}
	fresh := lfg.PartyID(r.newID())

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byPlayer[player]; ok {
		return "", ErrInParty
	}
	id, ok := r.byPlayer[inviter]
	if !ok {
		id = fresh
		r.parties[id] = &party{leader: inviter, members: []lfg.PlayerID{inviter}}
		r.byPlayer[inviter] = id
	}
	p := r.parties[id]
	if p.leader != inviter {
		return "", ErrNotLeader
	}
	if len(p.members) >= MaxSize {
		return "", ErrPartyFull
	}
	p.members = append(p.members, player)
	r.byPlayer[player] = id
	return id, nil
}

// Remove takes player out of its party. Leadership passes to the next
// member; an empty party is disbanded. It reports the party left and
// whether it still exists.
func (r *Registry) Remove(player lfg.PlayerID) (lfg.PartyID, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.byPlayer[player]
	if !ok {
		return "", false, ErrNotInParty
	}
	delete(r.byPlayer, player)
	p := r.parties[id]
	for i, m := range p.members {
		if m == player {
			p.members = append(p.members[:i], p.members[i+1:]...)
			break
		}
	}
	if len(p.members) == 0 {
		delete(r.parties, id)
		return id, false, nil
	}
	if p.leader == player {
		p.leader = p.members[0]
	}
	return id, true, nil
}

// Disband dissolves the party.
func (r *Registry) Disband(id lfg.PartyID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.parties[id]
	if !ok {
		return ErrNotFound
	}
	for _, m := range p.members {
		delete(r.byPlayer, m)
	}
	delete(r.parties, id)
	return nil
}

// Members returns the roster, leader first. Unknown parties have none.
func (r *Registry) Members(id lfg.PartyID) []lfg.PlayerID {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.parties[id]
	if !ok {
		return nil
	}
	out := make([]lfg.PlayerID, 0, len(p.members))
	out = append(out, p.leader)
	for _, m := range p.members {
		if m != p.leader {
			out = append(out, m)
		}
	}
	return out
}

func (r *Registry) PartyOf(player lfg.PlayerID) (lfg.PartyID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byPlayer[player]
	return id, ok
}

func (r *Registry) Leader(id lfg.PartyID) (lfg.PlayerID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.parties[id]
	if !ok {
		return "", false
	}
	return p.leader, true
}

func (r *Registry) Size(id lfg.PartyID) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if p, ok := r.parties[id]; ok {
		return len(p.members)
	}
	return 0
}
