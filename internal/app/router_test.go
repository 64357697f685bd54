package app

import (
	"sync"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	disc "github.com/jose-valero/lfg-bot/internal/adapters/discord"
	"github.com/jose-valero/lfg-bot/internal/domain/events"
	"github.com/jose-valero/lfg-bot/internal/lfg"
	"github.com/jose-valero/lfg-bot/internal/ui"
	"github.com/jose-valero/lfg-bot/pkg/config"
)

type fakeResponder struct {
	mu   sync.Mutex
	resp []*discordgo.InteractionResponse
}

func (f *fakeResponder) InteractionRespond(_ *discordgo.Interaction, resp *discordgo.InteractionResponse, _ ...discordgo.RequestOption) error {
	f.mu.Lock()
	f.resp = append(f.resp, resp)
	f.mu.Unlock()
	return nil
}

func (f *fakeResponder) last(t *testing.T) *discordgo.InteractionResponseData {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.resp)
	return f.resp[len(f.resp)-1].Data
}

func newTestBot(t *testing.T, h *harness) *Bot {
	t.Helper()
	return &Bot{
		Cfg:    &config.Config{QueueChannelID: "lfg", GroupSize: 5},
		Svc:    h.svc,
		policy: disc.NewPolicy([]string{"admins"}),
		log:    zaptest.NewLogger(t),
	}
}

func member(user string, roles ...string) *discordgo.Member {
	return &discordgo.Member{User: &discordgo.User{ID: user, Username: "u" + user}, Roles: roles}
}

func slash(user string, name string, opts ...*discordgo.ApplicationCommandInteractionDataOption) *discordgo.InteractionCreate {
	return &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		Type:      discordgo.InteractionApplicationCommand,
		ChannelID: "lfg",
		Member:    member(user),
		Data:      discordgo.ApplicationCommandInteractionData{Name: name, Options: opts},
	}}
}

func click(user, customID string, values ...string) *discordgo.InteractionCreate {
	return &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		Type:      discordgo.InteractionMessageComponent,
		ChannelID: "announce",
		Member:    member(user),
		Data:      discordgo.MessageComponentInteractionData{CustomID: customID, Values: values},
	}}
}

func strOpt(name, v string) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{Name: name, Type: discordgo.ApplicationCommandOptionString, Value: v}
}

func intOpt(name string, v int) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{Name: name, Type: discordgo.ApplicationCommandOptionInteger, Value: float64(v)}
}

func userOpt(id string) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{Name: "user", Type: discordgo.ApplicationCommandOptionUser, Value: id}
}

func TestRouter_JoinAndLeave(t *testing.T) {
	h := newHarness(t)
	b := newTestBot(t, h)
	r := &fakeResponder{}

	b.dispatch(r, slash("1", cmdJoin, strOpt("roles", "tank, dps"), intOpt("dungeon", 20), intOpt("also", 21)))
	data := r.last(t)
	require.Equal(t, discordgo.MessageFlagsEphemeral, data.Flags)
	require.Contains(t, data.Content, "You're queued")

	v, err := h.svc.Player("1")
	require.NoError(t, err)
	require.Equal(t, []lfg.DungeonID{20, 21}, v.Dungeons)

	b.dispatch(r, slash("1", cmdJoin, strOpt("roles", "dps"), intOpt("dungeon", 20)))
	require.Equal(t, "⚠️ You're already queued.", r.last(t).Content)

	b.dispatch(r, slash("1", cmdLeave))
	require.Equal(t, "👋 Left the queue.", r.last(t).Content)
	b.dispatch(r, slash("1", cmdLeave))
	require.Equal(t, "⚠️ not queued", r.last(t).Content)
}

func TestRouter_RejectsBadInput(t *testing.T) {
	h := newHarness(t)
	b := newTestBot(t, h)
	r := &fakeResponder{}

	b.dispatch(r, slash("1", cmdJoin, strOpt("roles", "bard"), intOpt("dungeon", 20)))
	require.Equal(t, `⚠️ unknown role "bard"`, r.last(t).Content)

	i := slash("1", cmdJoin, strOpt("roles", "dps"), intOpt("dungeon", 20))
	i.ChannelID = "general"
	b.dispatch(r, i)
	require.Equal(t, "Use this command in the LFG channel.", r.last(t).Content)

	b.dispatch(r, slash("1", cmdMatch, intOpt("dungeon", 20)))
	require.Contains(t, r.last(t).Content, "permission")

	b.dispatch(r, click("1", "garbage"))
	require.Equal(t, "⚠️ Unknown action.", r.last(t).Content)
}

func TestRouter_MatchAndAcceptButtons(t *testing.T) {
	h := newHarness(t)
	b := newTestBot(t, h)
	r := &fakeResponder{}
	started := capture[events.ProposalStarted](t)

	ps := players("", 5)
	for _, p := range ps {
		b.dispatch(r, slash(string(p), cmdJoin, strOpt("roles", "dps"), intOpt("dungeon", 20)))
	}

	admin := slash("9", cmdMatch, intOpt("dungeon", 20))
	admin.Member.Roles = []string{"admins"}
	b.dispatch(r, admin)
	require.Equal(t, "✅ Group offer sent.", r.last(t).Content)

	id := started.last(t).Proposal.ID
	b.dispatch(r, click("9", ui.CustomID(ui.ActionAccept, string(id))))
	require.Equal(t, "⚠️ That isn't yours to answer.", r.last(t).Content)

	for _, p := range ps {
		b.dispatch(r, click(string(p), ui.CustomID(ui.ActionAccept, string(id))))
		require.Equal(t, "✅ Accepted.", r.last(t).Content)
	}
	_, ok := h.parties.PartyOf(ps[0])
	require.True(t, ok)

	b.dispatch(r, click(string(ps[0]), ui.CustomID(ui.ActionDecline, string(id))))
	require.Equal(t, "⚠️ That group offer is over.", r.last(t).Content)
}

func TestRouter_PartyFlow(t *testing.T) {
	h := newHarness(t)
	b := newTestBot(t, h)
	r := &fakeResponder{}

	b.dispatch(r, slash("a", cmdPartyInvite, userOpt("b")))
	require.Equal(t, "🤝 <@b> joined your party.", r.last(t).Content)
	pid, ok := h.parties.PartyOf("b")
	require.True(t, ok)

	b.dispatch(r, slash("b", cmdParty, intOpt("dungeon", 20)))
	require.Contains(t, r.last(t).Content, "only the party leader")

	b.dispatch(r, slash("a", cmdParty, intOpt("dungeon", 20)))
	require.Contains(t, r.last(t).Content, "Role check started")

	b.dispatch(r, click("x", ui.CustomID(ui.ActionRoles, string(pid)), "tank"))
	require.Equal(t, "⚠️ This is not for your party.", r.last(t).Content)

	b.dispatch(r, click("a", ui.CustomID(ui.ActionRoles, string(pid)), "tank"))
	require.Contains(t, r.last(t).Content, "Waiting for the rest")
	b.dispatch(r, slash("b", cmdRoles, strOpt("roles", "healer")))
	require.Contains(t, r.last(t).Content, "role check is over")
	require.True(t, h.queues.Contains(string(pid)))

	b.dispatch(r, slash("a", cmdStatus))
	emb := r.last(t).Embeds[0]
	require.Equal(t, "You", emb.Fields[len(emb.Fields)-1].Name)
	require.Contains(t, emb.Fields[len(emb.Fields)-1].Value, "queued")

	b.dispatch(r, slash("b", cmdPartyLeave))
	require.Equal(t, "👋 Left your party.", r.last(t).Content)
	require.False(t, h.queues.Contains(string(pid)))
}

func TestRouter_KickVoteButtons(t *testing.T) {
	h := newHarness(t)
	b := newTestBot(t, h)
	r := &fakeResponder{}
	pid := formParty(t, h, "a", "b", "c", "d", "e")

	b.dispatch(r, slash("a", cmdKick, userOpt("e"), strOpt("reason", "afk")))
	require.Equal(t, "🗳️ Vote to kick started.", r.last(t).Content)

	yes := ui.CustomID(ui.ActionBootYes, string(pid))
	b.dispatch(r, click("b", yes))
	require.Equal(t, "🗳️ Vote recorded.", r.last(t).Content)
	b.dispatch(r, click("c", yes))
	_, ok := h.parties.PartyOf("e")
	require.False(t, ok)

	b.dispatch(r, click("d", yes))
	require.Equal(t, "⚠️ No kick vote is running.", r.last(t).Content)
}

func TestCommands(t *testing.T) {
	cmds := Commands(DefaultCatalog())
	names := make([]string, 0, len(cmds))
	for _, c := range cmds {
		names = append(names, c.Name)
	}
	require.ElementsMatch(t, []string{
		cmdJoin, cmdLeave, cmdParty, cmdRoles, cmdStatus, cmdKick, cmdMatch, cmdPartyInvite, cmdPartyLeave,
	}, names)

	choices := cmds[0].Options[1].Choices
	require.Len(t, choices, len(DefaultCatalog()))
	require.Equal(t, "Random Dungeon (random)", choices[0].Name)
	require.Equal(t, 1, choices[0].Value)
}
