package app

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/jose-valero/lfg-bot/internal/domain/events"
	"github.com/jose-valero/lfg-bot/internal/lfg"
	"github.com/jose-valero/lfg-bot/internal/party"
	"github.com/jose-valero/lfg-bot/internal/queue"
)

// JoinRequest is a solo player asking to be queued.
type JoinRequest struct {
	Player   lfg.PlayerID
	Roles    lfg.RoleMask
	Dungeons []lfg.DungeonID
	Comment  string
}

// pendingParty is a party whose role check is running; it is queued once
// every member confirmed.
type pendingParty struct {
	queueID   uint32
	category  lfg.Category
	confirmed map[lfg.PlayerID]bool
}

// match remembers which tickets a proposal was built from so they can be
// requeued if it fails.
type match struct {
	queueID uint32
	tickets []*lfg.QueueEntry
}

// Service runs the LFG flows on top of the core manager, the party roster
// and the ticket queues, publishing an event for each step.
type Service struct {
	lfg     *lfg.Manager
	parties *party.Registry
	queues  *queue.Manager
	catalog Catalog
	clock   lfg.Clock
	log     *zap.Logger

	mu      sync.Mutex
	pending map[lfg.PartyID]*pendingParty
	matches map[lfg.ProposalID]*match
}

func NewService(m *lfg.Manager, parties *party.Registry, queues *queue.Manager, catalog Catalog, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	return &Service{
		lfg:     m,
		parties: parties,
		queues:  queues,
		catalog: catalog,
		clock:   lfg.SystemClock,
		log:     log,
		pending: make(map[lfg.PartyID]*pendingParty),
		matches: make(map[lfg.ProposalID]*match),
	}
}

func (s *Service) Catalog() Catalog { return s.catalog }

func (s *Service) Player(id lfg.PlayerID) (lfg.PlayerView, error) { return s.lfg.Player(id) }

func (s *Service) Queues() []*queue.Queue { return s.queues.Queues() }

// ---------- queueing ----------

// JoinQueue queues a solo player. The ticket goes to the queue of the
// lowest dungeon id left after lock filtering.
func (s *Service) JoinQueue(req JoinRequest) (*lfg.QueueEntry, error) {
	if !hasCombatRole(req.Roles) {
		return nil, ErrNoRoles
	}
	if len(req.Dungeons) == 0 {
		return nil, ErrNoDungeons
	}
	if _, ok := s.parties.PartyOf(req.Player); ok {
		return nil, ErrInParty
	}
	ds, err := s.catalog.Lookup(req.Dungeons...)
	if err != nil {
		return nil, err
	}
	if _, err := s.lfg.JoinPlayer(req.Player); err != nil {
		return nil, err
	}
	if ds, err = s.usable(req.Player, ds); err != nil {
		return nil, err
	}

	if err := s.lfg.SetPlayerRoles(req.Player, req.Roles); err != nil {
		return nil, err
	}
	if err := s.lfg.SetPlayerDungeons(req.Player, ds...); err != nil {
		return nil, err
	}
	if err := s.lfg.SetPlayerComment(req.Player, req.Comment); err != nil {
		return nil, err
	}

	set := lfg.NewDungeonSet(ds...)
	entry, err := lfg.NewQueueEntry(string(req.Player), lfg.EntryPlayer, set.Category(),
		uint32(set.IDs()[0]), s.lfg.Config().RoleTargets, s.clock.Now())
	if err != nil {
		return nil, err
	}
	if err := s.enqueue(entry); err != nil {
		return nil, err
	}
	if err := s.lfg.SetPlayerState(req.Player, lfg.StateQueued); err != nil {
		s.log.Warn("set player state", zap.String("player", string(req.Player)), zap.Error(err))
	}

	s.log.Info("player queued",
		zap.String("player", string(req.Player)),
		zap.Uint32("queue", entry.QueueID),
		zap.Stringer("roles", req.Roles),
	)
	return entry, nil
}

// LeaveQueue takes the player, or the whole party of a party member, out of
// LFG. A party still in its role check has the check aborted.
func (s *Service) LeaveQueue(player lfg.PlayerID) error {
	ticket := string(player)
	partyID, inParty := s.parties.PartyOf(player)
	if inParty {
		ticket = string(partyID)
	}

	e, err := s.queues.Leave(ticket)
	if err != nil {
		if !errors.Is(err, queue.ErrNotIn) {
			return err
		}
		if inParty {
			if active, _ := s.lfg.IsRoleCheckActive(partyID); active {
				return s.finishRoleCheck(partyID, lfg.RoleCheckAborted)
			}
		}
		return ErrNotQueued
	}

	if inParty {
		_ = s.lfg.ClearGroup(partyID)
		for _, m := range s.parties.Members(partyID) {
			_ = s.lfg.ClearPlayer(m)
		}
	} else {
		_ = s.lfg.ClearPlayer(player)
	}
	s.publishQueue(e.QueueID)
	s.log.Info("ticket left queue", zap.String("ticket", ticket))
	return nil
}

// QueueParty starts the role check that queues the leader's party.
func (s *Service) QueueParty(leader lfg.PlayerID, dungeons []lfg.DungeonID, comment string) error {
	partyID, ok := s.parties.PartyOf(leader)
	if !ok {
		return party.ErrNotInParty
	}
	if l, _ := s.parties.Leader(partyID); l != leader {
		return ErrNotLeader
	}
	if len(dungeons) == 0 {
		return ErrNoDungeons
	}
	if s.queues.Contains(string(partyID)) {
		return queue.ErrAlreadyIn
	}
	ds, err := s.catalog.Lookup(dungeons...)
	if err != nil {
		return err
	}

	members := s.parties.Members(partyID)
	for _, m := range members {
		if _, err := s.lfg.JoinPlayer(m); err != nil {
			return err
		}
		if ds, err = s.usable(m, ds); err != nil {
			return err
		}
	}
	for _, m := range members {
		if err := s.lfg.SetPlayerDungeons(m, ds...); err != nil {
			return err
		}
	}
	if err := s.lfg.SetPlayerComment(leader, comment); err != nil {
		s.log.Warn("set party comment", zap.String("player", string(leader)), zap.Error(err))
	}

	if _, err := s.lfg.JoinGroup(partyID); err != nil {
		return err
	}
	if err := s.lfg.SetGroupDungeons(partyID, ds...); err != nil {
		return err
	}
	if err := s.lfg.StartRoleCheck(partyID); err != nil {
		return err
	}

	set := lfg.NewDungeonSet(ds...)
	s.mu.Lock()
	s.pending[partyID] = &pendingParty{
		queueID:   uint32(set.IDs()[0]),
		category:  set.Category(),
		confirmed: make(map[lfg.PlayerID]bool, len(members)),
	}
	s.mu.Unlock()

	g, _ := s.lfg.Group(partyID)
	events.Publish(events.RoleCheckStarted{
		Party:    partyID,
		Members:  members,
		CancelAt: g.RoleCheckCancelAt,
	})
	return nil
}

// ConfirmRoles records a member's roles during the role check. It reports
// whether this answer ended the check. A member offering no role ends it
// with RoleCheckNoRole.
func (s *Service) ConfirmRoles(player lfg.PlayerID, roles lfg.RoleMask) (bool, error) {
	partyID, ok := s.parties.PartyOf(player)
	if !ok {
		return false, party.ErrNotInParty
	}
	active, err := s.lfg.IsRoleCheckActive(partyID)
	if err != nil {
		return false, err
	}
	if !active {
		return false, lfg.ErrRoleCheckIdle
	}
	if !hasCombatRole(roles) {
		return true, s.finishRoleCheck(partyID, lfg.RoleCheckNoRole)
	}
	if err := s.lfg.SetPlayerRoles(player, roles); err != nil {
		return false, err
	}

	members := s.parties.Members(partyID)
	s.mu.Lock()
	p, ok := s.pending[partyID]
	if !ok {
		s.mu.Unlock()
		return false, lfg.ErrRoleCheckIdle
	}
	p.confirmed[player] = true
	all := true
	for _, m := range members {
		all = all && p.confirmed[m]
	}
	s.mu.Unlock()

	if !all {
		return false, nil
	}
	return true, s.finishRoleCheck(partyID, lfg.RoleCheckFinished)
}

func (s *Service) finishRoleCheck(partyID lfg.PartyID, result lfg.RoleCheckState) error {
	if result == lfg.RoleCheckFinished && !s.partyFits(partyID) {
		result = lfg.RoleCheckWrongRoles
	}
	if err := s.lfg.FinishRoleCheck(partyID, result); err != nil {
		return err
	}

	s.mu.Lock()
	p := s.pending[partyID]
	delete(s.pending, partyID)
	s.mu.Unlock()

	var err error
	if result == lfg.RoleCheckFinished && p != nil {
		var entry *lfg.QueueEntry
		entry, err = lfg.NewQueueEntry(string(partyID), lfg.EntryParty, p.category, p.queueID,
			s.lfg.Config().RoleTargets, s.clock.Now())
		if err == nil {
			err = s.enqueue(entry)
		}
		if err != nil {
			s.log.Warn("queue party failed", zap.String("party", string(partyID)), zap.Error(err))
			_ = s.lfg.ClearGroup(partyID)
		}
	}

	s.log.Info("role check finished",
		zap.String("party", string(partyID)),
		zap.Stringer("result", result),
	)
	events.Publish(events.RoleCheckFinished{Party: partyID, Result: result})
	return err
}

func (s *Service) partyFits(partyID lfg.PartyID) bool {
	members := s.parties.Members(partyID)
	roles := make([]lfg.RoleMask, 0, len(members))
	for _, m := range members {
		v, err := s.lfg.Player(m)
		if err != nil {
			return false
		}
		roles = append(roles, v.Roles)
	}
	return fitsTargets(roles, s.lfg.Config().RoleTargets)
}

// ---------- matching ----------

// Match takes the oldest tickets of a queue that fill size seats and offers
// them a proposal.
func (s *Service) Match(queueID uint32, size int) (lfg.ProposalID, error) {
	tickets, err := s.queues.Take(queueID, size, s.seats)
	if err != nil {
		return "", err
	}
	if tickets == nil {
		return "", ErrNotEnoughPlayers
	}

	var dungeon *lfg.Dungeon
	if d, ok := s.catalog[lfg.DungeonID(queueID)]; ok {
		dungeon = &d
	}
	id, err := s.lfg.NewProposal(dungeon, s.playersOf(tickets)...)
	if err == nil {
		if err = s.lfg.StartProposal(id); err != nil {
			s.lfg.DeleteProposal(id)
		}
	}
	if err != nil {
		s.queues.Requeue(tickets...)
		return "", fmt.Errorf("new proposal: %w", err)
	}
	for _, t := range tickets {
		if t.Kind == lfg.EntryParty {
			_ = s.lfg.SetGroupState(lfg.PartyID(t.ID), lfg.StateProposal)
		}
	}

	s.mu.Lock()
	s.matches[id] = &match{queueID: queueID, tickets: tickets}
	s.mu.Unlock()

	v, _ := s.lfg.Proposal(id)
	s.log.Info("proposal started",
		zap.String("proposal", string(id)),
		zap.Uint32("queue", queueID),
		zap.Int("members", len(v.Members)),
	)
	events.Publish(events.ProposalStarted{Proposal: v})
	s.publishQueue(queueID)
	return id, nil
}

// MatchAll matches every queue until none can fill a group. It returns the
// number of proposals started.
func (s *Service) MatchAll(size int) int {
	n := 0
	for _, q := range s.queues.Queues() {
		for {
			if _, err := s.Match(q.ID, size); err != nil {
				if !errors.Is(err, ErrNotEnoughPlayers) {
					s.log.Warn("match failed", zap.Uint32("queue", q.ID), zap.Error(err))
				}
				break
			}
			n++
		}
	}
	return n
}

// Answer records a proposal reply and runs whatever the reply decided:
// forming the party, requeueing after a failure or backfilling a dropped
// decliner.
func (s *Service) Answer(id lfg.ProposalID, player lfg.PlayerID, answer lfg.Answer) (lfg.ProposalState, error) {
	st, err := s.lfg.AnswerProposal(id, player, answer)
	if err != nil {
		return st, err
	}
	switch st {
	case lfg.ProposalSuccess:
		return st, s.completeProposal(id)
	case lfg.ProposalFailed:
		s.proposalFailed(id)
		return st, nil
	}
	if answer == lfg.AnswerDeny {
		s.dropDecliner(id, player)
	}
	if v, err := s.lfg.Proposal(id); err == nil {
		events.Publish(events.ProposalUpdated{Proposal: v})
	}
	return st, nil
}

func (s *Service) completeProposal(id lfg.ProposalID) error {
	m := s.takeMatch(id)
	members, err := s.lfg.ProposalMembers(id)
	if err != nil {
		return err
	}
	for _, t := range m.tickets {
		if t.Kind == lfg.EntryParty {
			old := lfg.PartyID(t.ID)
			_ = s.parties.Disband(old)
			s.lfg.RemoveGroup(old)
		}
	}

	partyID, err := s.parties.Form(members...)
	if err == nil {
		err = s.lfg.BindProposalGroup(id, partyID)
	}
	if err != nil {
		s.log.Error("form party from proposal", zap.String("proposal", string(id)), zap.Error(err))
		err = fmt.Errorf("form party: %w", err)
	} else {
		s.log.Info("party formed",
			zap.String("proposal", string(id)),
			zap.String("party", string(partyID)),
		)
	}

	if v, verr := s.lfg.Proposal(id); verr == nil {
		events.Publish(events.ProposalFinished{Proposal: v})
	}
	s.lfg.DeleteProposal(id)
	return err
}

// proposalFailed requeues the tickets whose players all agreed and takes
// everyone else out of LFG.
func (s *Service) proposalFailed(id lfg.ProposalID) {
	v, err := s.lfg.Proposal(id)
	if err != nil {
		return
	}
	agreed := make(map[lfg.PlayerID]bool, len(v.Members))
	for _, p := range v.Agreed() {
		agreed[p] = true
	}

	m := s.takeMatch(id)
	var back []*lfg.QueueEntry
	for _, t := range m.tickets {
		players := s.playersOf([]*lfg.QueueEntry{t})
		all := len(players) > 0
		for _, p := range players {
			all = all && agreed[p]
		}
		if all {
			back = append(back, t)
			if t.Kind == lfg.EntryParty {
				_ = s.lfg.SetGroupState(lfg.PartyID(t.ID), lfg.StateQueued)
			}
			continue
		}
		if t.Kind == lfg.EntryParty {
			_ = s.lfg.ClearGroup(lfg.PartyID(t.ID))
		}
		for _, p := range players {
			_ = s.lfg.ClearPlayer(p)
		}
	}
	s.queues.Requeue(back...)

	s.log.Info("proposal failed",
		zap.String("proposal", string(id)),
		zap.Int("requeued", len(back)),
	)
	events.Publish(events.ProposalFinished{Proposal: v})
	s.lfg.DeleteProposal(id)
	if m.queueID != 0 {
		s.publishQueue(m.queueID)
	}
}

// dropDecliner releases a solo decliner's ticket and backfills the free
// seat with the next solo ticket of the same queue.
func (s *Service) dropDecliner(id lfg.ProposalID, player lfg.PlayerID) {
	s.mu.Lock()
	m, ok := s.matches[id]
	if ok {
		for i, t := range m.tickets {
			if t.Kind == lfg.EntryPlayer && t.ID == string(player) {
				m.tickets = append(m.tickets[:i], m.tickets[i+1:]...)
				break
			}
		}
	}
	s.mu.Unlock()
	if !ok {
		return
	}
	_ = s.lfg.ClearPlayer(player)

	next, err := s.queues.Take(m.queueID, 1, soloSeat)
	if err != nil || len(next) == 0 {
		return
	}
	if err := s.lfg.AddProposalMember(id, lfg.PlayerID(next[0].ID)); err != nil {
		s.queues.Requeue(next...)
		return
	}
	s.mu.Lock()
	if m, ok := s.matches[id]; ok {
		m.tickets = append(m.tickets, next...)
	}
	s.mu.Unlock()
	s.log.Debug("proposal backfilled",
		zap.String("proposal", string(id)),
		zap.String("player", next[0].ID),
	)
	s.publishQueue(m.queueID)
}

// ---------- boot ----------

// Kick opens a vote to remove victim from the kicker's party.
func (s *Service) Kick(kicker, victim lfg.PlayerID, reason string) (lfg.PartyID, error) {
	partyID, ok := s.parties.PartyOf(kicker)
	if !ok {
		return "", party.ErrNotInParty
	}
	if _, err := s.lfg.JoinGroup(partyID); err != nil {
		return "", err
	}
	if err := s.lfg.StartBoot(partyID, kicker, victim, reason); err != nil {
		return "", err
	}

	g, _ := s.lfg.Group(partyID)
	voters := make([]lfg.PlayerID, 0, len(g.BootVotes))
	for p := range g.BootVotes {
		voters = append(voters, p)
	}
	sort.Slice(voters, func(i, j int) bool { return voters[i] < voters[j] })

	events.Publish(events.BootStarted{
		Party:       partyID,
		Kicker:      kicker,
		Victim:      victim,
		Reason:      reason,
		Voters:      voters,
		VotesNeeded: g.VotesNeeded,
		CancelAt:    g.BootCancelAt,
	})
	return partyID, nil
}

// Vote casts voter's ballot in their party's kick vote.
func (s *Service) Vote(voter lfg.PlayerID, answer lfg.Answer) (lfg.Answer, error) {
	partyID, ok := s.parties.PartyOf(voter)
	if !ok {
		return lfg.AnswerPending, party.ErrNotInParty
	}
	res, out, err := s.lfg.VoteBoot(partyID, voter, answer)
	if err != nil {
		return res, err
	}
	if out != nil {
		s.applyBoot(*out)
	}
	return res, nil
}

func (s *Service) applyBoot(out lfg.BootOutcome) {
	if out.Kicked() {
		if _, _, err := s.parties.Remove(out.Victim); err != nil && !errors.Is(err, party.ErrNotInParty) {
			s.log.Warn("remove kicked player", zap.String("player", string(out.Victim)), zap.Error(err))
		}
	}
	events.Publish(events.BootFinished{Outcome: out})
	if out.Kicked() {
		s.clearPlayer(out.Victim)
	}
}

// clearPlayer takes the player out of LFG. A proposal the player was in may
// be left fully agreed or empty by that; it is completed or failed here.
func (s *Service) clearPlayer(player lfg.PlayerID) {
	v, err := s.lfg.Player(player)
	if err != nil {
		return
	}
	var open bool
	if pv, err := s.lfg.Proposal(v.Proposal); err == nil {
		open = !pv.State.Resolved()
	}
	if err := s.lfg.ClearPlayer(player); err != nil {
		s.log.Warn("clear player", zap.String("player", string(player)), zap.Error(err))
		return
	}
	if !open {
		return
	}

	pv, err := s.lfg.Proposal(v.Proposal)
	if err != nil {
		return
	}
	switch pv.State {
	case lfg.ProposalSuccess:
		if err := s.completeProposal(pv.ID); err != nil {
			s.log.Warn("complete proposal", zap.String("proposal", string(pv.ID)), zap.Error(err))
		}
	case lfg.ProposalFailed:
		s.proposalFailed(pv.ID)
	default:
		events.Publish(events.ProposalUpdated{Proposal: pv})
	}
}

// ---------- parties ----------

func (s *Service) Invite(inviter, player lfg.PlayerID) (lfg.PartyID, error) {
	return s.parties.Invite(inviter, player)
}

// LeaveParty takes the player out of LFG (with the party's ticket) and then
// out of the party.
func (s *Service) LeaveParty(player lfg.PlayerID) error {
	if err := s.LeaveQueue(player); err != nil && !errors.Is(err, ErrNotQueued) {
		return err
	}
	partyID, alive, err := s.parties.Remove(player)
	if err != nil {
		return err
	}
	if !alive {
		s.lfg.RemoveGroup(partyID)
	}
	return nil
}

// ---------- expiry ----------

// Sweep finalizes every role check, kick vote and proposal whose deadline
// passed. It returns how many it finalized.
func (s *Service) Sweep() int {
	exp := s.lfg.Expired()
	n := 0
	for _, p := range exp.RoleChecks {
		if err := s.finishRoleCheck(p, lfg.RoleCheckMissingRole); err == nil {
			n++
		}
	}
	for _, p := range exp.Boots {
		out, err := s.lfg.FinishBoot(p)
		if err != nil {
			continue
		}
		s.applyBoot(out)
		n++
	}
	for _, id := range exp.Proposals {
		failed, err := s.lfg.ExpireProposal(id)
		if err != nil || !failed {
			continue
		}
		s.proposalFailed(id)
		n++
	}
	s.queues.Prune()
	return n
}

// ---------- helpers ----------

func (s *Service) enqueue(e *lfg.QueueEntry) error {
	if err := s.queues.Enqueue(e, s.catalog[lfg.DungeonID(e.QueueID)].Name); err != nil {
		return fmt.Errorf("join queue %d: %w", e.QueueID, err)
	}
	s.publishQueue(e.QueueID)
	return nil
}

func (s *Service) publishQueue(id uint32) {
	size := 0
	if q, err := s.queues.Queue(id); err == nil {
		size = len(q.Entries)
	}
	events.Publish(events.QueueChanged{QueueID: id, Size: size})
}

// usable drops the dungeons the player is locked out of.
func (s *Service) usable(player lfg.PlayerID, ds []lfg.Dungeon) ([]lfg.Dungeon, error) {
	locks, err := s.lfg.PlayerLockMap(player)
	if err != nil {
		return nil, err
	}
	out := make([]lfg.Dungeon, 0, len(ds))
	for _, d := range ds {
		if _, locked := locks[d.ID]; !locked {
			out = append(out, d)
		}
	}
	if len(out) == 0 {
		return nil, ErrAllLocked
	}
	return out, nil
}

func (s *Service) seats(e *lfg.QueueEntry) int {
	if e.Kind == lfg.EntryParty {
		return s.parties.Size(lfg.PartyID(e.ID))
	}
	return 1
}

func soloSeat(e *lfg.QueueEntry) int {
	if e.Kind == lfg.EntryPlayer {
		return 1
	}
	return 0
}

func (s *Service) playersOf(tickets []*lfg.QueueEntry) []lfg.PlayerID {
	var out []lfg.PlayerID
	for _, t := range tickets {
		if t.Kind == lfg.EntryParty {
			out = append(out, s.parties.Members(lfg.PartyID(t.ID))...)
			continue
		}
		out = append(out, lfg.PlayerID(t.ID))
	}
	return out
}

func (s *Service) takeMatch(id lfg.ProposalID) *match {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.matches[id]
	if !ok {
		return &match{}
	}
	delete(s.matches, id)
	return m
}
