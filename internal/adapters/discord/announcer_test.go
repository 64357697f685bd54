package discord

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/jose-valero/lfg-bot/internal/domain/events"
	"github.com/jose-valero/lfg-bot/internal/lfg"
	"github.com/jose-valero/lfg-bot/internal/queue"
)

type fakeSender struct {
	mu      sync.Mutex
	next    int
	sends   []*discordgo.MessageSend
	edits   []*discordgo.MessageEdit
	editErr error
}

func (f *fakeSender) ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.next++
	f.sends = append(f.sends, data)
	return &discordgo.Message{ID: fmt.Sprintf("m%d", f.next), ChannelID: channelID}, nil
}

func (f *fakeSender) ChannelMessageEditComplex(m *discordgo.MessageEdit, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.editErr != nil {
		err := f.editErr
		f.editErr = nil
		return nil, err
	}
	f.edits = append(f.edits, m)
	return &discordgo.Message{ID: m.ID, ChannelID: m.Channel}, nil
}

func (f *fakeSender) counts() (sends, edits int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sends), len(f.edits)
}

func (f *fakeSender) lastEdit() *discordgo.MessageEdit {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.edits[len(f.edits)-1]
}

func unknownMessage() error {
	return &discordgo.RESTError{
		Response: &http.Response{StatusCode: http.StatusNotFound},
		Message:  &discordgo.APIErrorMessage{Code: discordgo.ErrCodeUnknownMessage, Message: "Unknown Message"},
	}
}

func TestPublisher_CreateThenEdit(t *testing.T) {
	f := &fakeSender{}
	p := NewPublisher(f, "chan", nil)
	emb := &discordgo.MessageEmbed{Title: "x"}

	require.NoError(t, p.PublishOrEdit("k", emb, nil))
	require.NoError(t, p.PublishOrEdit("k", emb, nil))
	sends, edits := f.counts()
	require.Equal(t, 1, sends)
	require.Equal(t, 1, edits)
	require.Equal(t, "m1", f.lastEdit().ID)
	require.Equal(t, "chan", f.lastEdit().Channel)

	p.Forget("k")
	require.NoError(t, p.PublishOrEdit("k", emb, nil))
	id, ok := p.MessageID("k")
	require.True(t, ok)
	require.Equal(t, "m2", id)
}

func TestPublisher_RecreatesDeletedMessage(t *testing.T) {
	f := &fakeSender{}
	p := NewPublisher(f, "chan", nil)
	emb := &discordgo.MessageEmbed{Title: "x"}
	require.NoError(t, p.PublishOrEdit("k", emb, nil))

	f.editErr = unknownMessage()
	require.NoError(t, p.PublishOrEdit("k", emb, nil))
	sends, _ := f.counts()
	require.Equal(t, 2, sends)
	id, _ := p.MessageID("k")
	require.Equal(t, "m2", id)
}

func TestPublisher_OtherEditErrorsSurface(t *testing.T) {
	f := &fakeSender{}
	p := NewPublisher(f, "chan", nil)
	require.NoError(t, p.PublishOrEdit("k", &discordgo.MessageEmbed{}, nil))

	f.editErr = fmt.Errorf("boom")
	require.EqualError(t, p.PublishOrEdit("k", &discordgo.MessageEmbed{}, nil), "boom")
	id, ok := p.MessageID("k")
	require.True(t, ok)
	require.Equal(t, "m1", id)
}

func TestAnnouncer_ProposalLifecycle(t *testing.T) {
	defer goleak.VerifyNone(t)

	f := &fakeSender{}
	a := NewAnnouncer(NewPublisher(f, "chan", nil), func() []*queue.Queue { return nil }, nil)
	stop := a.Start(context.Background())
	defer stop()

	v := lfg.ProposalView{ID: "prop", State: lfg.ProposalActive, Members: []lfg.PlayerID{"1", "2"}}
	events.Publish(events.ProposalStarted{Proposal: v})
	events.Publish(events.ProposalUpdated{Proposal: v})
	v.State = lfg.ProposalSuccess
	events.Publish(events.ProposalFinished{Proposal: v})

	require.Eventually(t, func() bool {
		s, e := f.counts()
		return s == 1 && e == 2
	}, time.Second, 5*time.Millisecond)

	row := (*f.lastEdit().Components)[0].(discordgo.ActionsRow)
	require.True(t, row.Components[0].(discordgo.Button).Disabled)

	// finished proposals are forgotten
	v.State = lfg.ProposalActive
	events.Publish(events.ProposalStarted{Proposal: v})
	require.Eventually(t, func() bool {
		s, _ := f.counts()
		return s == 2
	}, time.Second, 5*time.Millisecond)
}

func TestAnnouncer_BootAndBoard(t *testing.T) {
	defer goleak.VerifyNone(t)

	f := &fakeSender{}
	a := NewAnnouncer(NewPublisher(f, "chan", nil), func() []*queue.Queue { return nil }, nil)
	stop := a.Start(context.Background())

	events.Publish(events.BootStarted{Party: "party", Kicker: "1", Victim: "2", Voters: []lfg.PlayerID{"1", "2", "3"}, VotesNeeded: 2})
	events.Publish(events.BootFinished{Outcome: lfg.BootOutcome{Party: "party", Victim: "2", Result: lfg.AnswerAgree}})
	events.Publish(events.QueueChanged{QueueID: 20})

	require.Eventually(t, func() bool {
		s, e := f.counts()
		return s == 2 && e == 1
	}, time.Second, 5*time.Millisecond)

	f.mu.Lock()
	boot := f.sends[0].Embeds[0]
	board := f.sends[1].Embeds[0]
	f.mu.Unlock()
	require.Equal(t, "Vote to kick", boot.Title)
	require.Equal(t, "✅ <@1>\n❌ <@2>\n⏳ <@3>", boot.Fields[0].Value)
	require.Equal(t, "Looking for group", board.Title)

	stop()
	stop()
	require.Zero(t, events.Count[events.BootStarted]())
}
