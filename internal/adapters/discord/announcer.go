package discord

import (
	"context"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/jose-valero/lfg-bot/internal/domain/events"
	"github.com/jose-valero/lfg-bot/internal/lfg"
	"github.com/jose-valero/lfg-bot/internal/queue"
	"github.com/jose-valero/lfg-bot/internal/ui"
)

const boardKey = "queues"

// Announcer mirrors LFG events into the announce channel: one message per
// role check, kick vote and proposal, edited as it progresses, plus a queue
// status board.
type Announcer struct {
	pub    *Publisher
	queues func() []*queue.Queue
	now    func() time.Time
	log    *zap.Logger
	work   chan func()
}

func NewAnnouncer(pub *Publisher, queues func() []*queue.Queue, log *zap.Logger) *Announcer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Announcer{
		pub:    pub,
		queues: queues,
		now:    time.Now,
		log:    log,
		work:   make(chan func(), 64),
	}
}

// Start subscribes to the bus. Discord calls run on one worker goroutine so
// the publishing side never waits on the network. The returned stop
// unsubscribes and waits for the worker; queued work is dropped.
func (a *Announcer) Start(ctx context.Context) (stop func()) {
	ctx, cancel := context.WithCancel(ctx)

	cancels := []func(){
		events.Subscribe(func(events.QueueChanged) { a.post(ctx, a.board) }),
		events.Subscribe(func(ev events.RoleCheckStarted) { a.post(ctx, func() { a.roleCheckStarted(ev) }) }),
		events.Subscribe(func(ev events.RoleCheckFinished) { a.post(ctx, func() { a.roleCheckFinished(ev) }) }),
		events.Subscribe(func(ev events.BootStarted) { a.post(ctx, func() { a.bootStarted(ev) }) }),
		events.Subscribe(func(ev events.BootFinished) { a.post(ctx, func() { a.bootFinished(ev) }) }),
		events.Subscribe(func(ev events.ProposalStarted) { a.post(ctx, func() { a.proposal(ev.Proposal) }) }),
		events.Subscribe(func(ev events.ProposalUpdated) { a.post(ctx, func() { a.proposal(ev.Proposal) }) }),
		events.Subscribe(func(ev events.ProposalFinished) { a.post(ctx, func() { a.proposal(ev.Proposal) }) }),
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case fn := <-a.work:
				fn()
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			for _, c := range cancels {
				c()
			}
			cancel()
			wg.Wait()
		})
	}
}

func (a *Announcer) post(ctx context.Context, fn func()) {
	select {
	case a.work <- fn:
	case <-ctx.Done():
	}
}

func (a *Announcer) publish(key string, emb *discordgo.MessageEmbed, comps []discordgo.MessageComponent) {
	if err := a.pub.PublishOrEdit(key, emb, comps); err != nil {
		a.log.Warn("announce failed", zap.String("key", key), zap.Error(err))
	}
}

func (a *Announcer) board() {
	a.publish(boardKey, ui.RenderQueuesEmbed(a.queues(), a.now()), nil)
}

func (a *Announcer) roleCheckStarted(ev events.RoleCheckStarted) {
	a.publish(roleCheckKey(ev.Party), ui.RenderRoleCheckEmbed(ev.Party, ev.Members, ev.CancelAt), ui.RoleSelect(ev.Party, true))
}

func (a *Announcer) roleCheckFinished(ev events.RoleCheckFinished) {
	key := roleCheckKey(ev.Party)
	a.publish(key, ui.RenderRoleCheckResult(ev.Party, ev.Result), ui.RoleSelect(ev.Party, false))
	a.pub.Forget(key)
}

func (a *Announcer) bootStarted(ev events.BootStarted) {
	votes := make(map[lfg.PlayerID]lfg.Answer, len(ev.Voters))
	for _, p := range ev.Voters {
		votes[p] = lfg.AnswerPending
	}
	votes[ev.Kicker] = lfg.AnswerAgree
	votes[ev.Victim] = lfg.AnswerDeny

	a.publish(bootKey(ev.Party), ui.RenderBootEmbed(ui.BootCard{
		Party:       ev.Party,
		Kicker:      ev.Kicker,
		Victim:      ev.Victim,
		Reason:      ev.Reason,
		Votes:       votes,
		VotesNeeded: ev.VotesNeeded,
		CancelAt:    ev.CancelAt,
	}), ui.BootButtons(ev.Party, true))
}

func (a *Announcer) bootFinished(ev events.BootFinished) {
	key := bootKey(ev.Outcome.Party)
	a.publish(key, ui.RenderBootResult(ev.Outcome), ui.BootButtons(ev.Outcome.Party, false))
	a.pub.Forget(key)
}

func (a *Announcer) proposal(v lfg.ProposalView) {
	key := proposalKey(v.ID)
	open := !v.State.Resolved()
	a.publish(key, ui.RenderProposalEmbed(v), ui.ProposalButtons(v.ID, open))
	if !open {
		a.pub.Forget(key)
	}
}

func roleCheckKey(p lfg.PartyID) string { return "rolecheck:" + string(p) }
func bootKey(p lfg.PartyID) string { return "boot:" + string(p) }
func proposalKey(p lfg.ProposalID) string { return "proposal:" + string(p) }
