package lfg

import (
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Manager owns every PlayerState, GroupState and Proposal together with the
// single reader/writer lock that guards them. Operations that touch several
// records (a boot vote that ends the vote, an answer that resolves a proposal)
// run inside one critical section. Collaborators are never called while the
// lock is held.
type Manager struct {
	mu sync.RWMutex

	cfg         Config
	clock       Clock
	eligibility Eligibility
	parties     Parties
	newID       func() string
	log         *zap.Logger

	players   map[PlayerID]*PlayerState
	groups    map[PartyID]*GroupState
	proposals map[ProposalID]*Proposal
}

type Option func(*Manager)

func WithClock(c Clock) Option { return func(m *Manager) { m.clock = c } }

func WithLogger(l *zap.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.log = l
		}
	}
}

func WithEligibility(e Eligibility) Option { return func(m *Manager) { m.eligibility = e } }

func WithParties(p Parties) Option { return func(m *Manager) { m.parties = p } }

// WithIDSource replaces the proposal id generator (uuid by default).
func WithIDSource(fn func() string) Option { return func(m *Manager) { m.newID = fn } }

func NewManager(cfg Config, opts ...Option) *Manager {
	m := &Manager{
		cfg:         cfg,
		clock:       SystemClock,
		eligibility: noEligibility{},
		parties:     noParties{},
		newID:       uuid.NewString,
		log:         zap.NewNop(),
		players:     make(map[PlayerID]*PlayerState),
		groups:      make(map[PartyID]*GroupState),
		proposals:   make(map[ProposalID]*Proposal),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Manager) Config() Config { return m.cfg }

// ---------- players ----------

// JoinPlayer registers a player, returning the existing state if it is
// already known.
func (m *Manager) JoinPlayer(id PlayerID) (PlayerView, error) {
	if id == "" {
		return PlayerView{}, ErrEmptyID
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.players[id]
	if !ok {
		p = NewPlayerState(id)
		m.players[id] = p
		m.log.Debug("player joined lfg", zap.String("player", string(id)))
	}
	return p.view(), nil
}

func (m *Manager) Player(id PlayerID) (PlayerView, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.players[id]
	if !ok {
		return PlayerView{}, ErrPlayerNotFound
	}
	return p.view(), nil
}

func (m *Manager) RemovePlayer(id PlayerID) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if p, ok := m.players[id]; ok {
		delete(m.players, id)
		if pr, ok := m.proposals[p.proposal]; ok {
			pr.RemoveMember(id)
			m.resolveAfterRemoval(pr)
		}
	}
}

// ClearPlayer resets a player in place, as on logout or queue leave. A
// proposal the player was in is resolved again without them.
func (m *Manager) ClearPlayer(id PlayerID) error {
	return m.updatePlayer(id, func(p *PlayerState) {
		pr, ok := m.proposals[p.proposal]
		p.Clear()
		if ok {
			pr.RemoveMember(id)
			m.resolveAfterRemoval(pr)
		}
	})
}

// SetPlayerRoles stores the requested roles; the leader role is derived from
// the party collaborator.
func (m *Manager) SetPlayerRoles(id PlayerID, roles RoleMask) error {
	leader := m.isLeader(id)
	return m.updatePlayer(id, func(p *PlayerState) { p.SetRoles(roles, leader) })
}

func (m *Manager) IsSingleRole(id PlayerID) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.players[id]
	if !ok {
		return false, ErrPlayerNotFound
	}
	return p.IsSingleRole(), nil
}

func (m *Manager) SetPlayerComment(id PlayerID, text string) error {
	return m.updatePlayer(id, func(p *PlayerState) { p.SetComment(text) })
}

func (m *Manager) SetPlayerJoined(id PlayerID) error {
	now := m.clock.Now()
	return m.updatePlayer(id, func(p *PlayerState) { p.SetJoined(now) })
}

func (m *Manager) SetPlayerState(id PlayerID, s State) error {
	return m.updatePlayer(id, func(p *PlayerState) { p.SetState(s) })
}

func (m *Manager) SetPlayerTeleported(id PlayerID, v bool) error {
	return m.updatePlayer(id, func(p *PlayerState) { p.SetTeleported(v) })
}

func (m *Manager) SetPlayerDungeons(id PlayerID, ds ...Dungeon) error {
	return m.updatePlayer(id, func(p *PlayerState) {
		p.Dungeons().Replace(ds...)
		p.MarkLockMapDirty()
	})
}

func (m *Manager) AddPlayerDungeon(id PlayerID, d Dungeon) error {
	return m.updatePlayer(id, func(p *PlayerState) { p.Dungeons().Add(d) })
}

func (m *Manager) RemovePlayerDungeon(id PlayerID, d DungeonID) error {
	return m.updatePlayer(id, func(p *PlayerState) { p.Dungeons().Remove(d) })
}

// InvalidatePlayerLocks marks the cached lock map stale, e.g. after a level up.
func (m *Manager) InvalidatePlayerLocks(id PlayerID) error {
	return m.updatePlayer(id, func(p *PlayerState) { p.MarkLockMapDirty() })
}

// PlayerLockMap returns the player's lock reasons, asking the eligibility
// collaborator only when the cache is dirty or empty.
func (m *Manager) PlayerLockMap(id PlayerID) (LockMap, error) {
	m.mu.RLock()
	p, ok := m.players[id]
	if !ok {
		m.mu.RUnlock()
		return nil, ErrPlayerNotFound
	}
	if !p.lockMapStale() {
		out := p.lockMap.clone()
		m.mu.RUnlock()
		return out, nil
	}
	m.mu.RUnlock()

	fresh := m.eligibility.LockMap(id)

	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok = m.players[id]
	if !ok {
		return nil, ErrPlayerNotFound
	}
	p.storeLockMap(fresh)
	return p.lockMap.clone(), nil
}

func (m *Manager) updatePlayer(id PlayerID, fn func(*PlayerState)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.players[id]
	if !ok {
		return ErrPlayerNotFound
	}
	fn(p)
	return nil
}

func (m *Manager) isLeader(id PlayerID) bool {
	party, ok := m.parties.PartyOf(id)
	if !ok {
		return false
	}
	leader, ok := m.parties.Leader(party)
	return ok && leader == id
}
