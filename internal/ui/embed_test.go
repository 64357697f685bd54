package ui

import (
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/require"

	"github.com/jose-valero/lfg-bot/internal/lfg"
	"github.com/jose-valero/lfg-bot/internal/queue"
)

var now = time.Date(2024, 3, 1, 20, 0, 0, 0, time.UTC)

func TestRenderQueuesEmbed(t *testing.T) {
	emb := RenderQueuesEmbed(nil, now)
	require.Equal(t, colorIdle, emb.Color)
	require.Contains(t, emb.Description, "/lfgjoin")

	qs := []*queue.Queue{{
		ID:   20,
		Name: "Utgarde Keep (Heroic)",
		Entries: []*lfg.QueueEntry{
			{ID: "111", Kind: lfg.EntryPlayer, EnqueuedAt: now.Add(-90 * time.Minute)},
			{ID: "0f9c2a6e-party", Kind: lfg.EntryParty, EnqueuedAt: now.Add(-10 * time.Second)},
		},
	}}
	emb = RenderQueuesEmbed(qs, now)
	require.Equal(t, colorOpen, emb.Color)
	require.Contains(t, emb.Description, "**Utgarde Keep (Heroic)** (2)")
	require.Contains(t, emb.Description, "1) <@111> · 1h 30m")
	require.Contains(t, emb.Description, "2) party `0f9c2a6e` · <1 min")
}

func TestRenderProposalEmbed(t *testing.T) {
	v := lfg.ProposalView{
		ID:        "prop",
		Dungeon:   lfg.Dungeon{ID: 20, Name: "Utgarde Keep (Heroic)"},
		State:     lfg.ProposalActive,
		CancelAt:  now,
		Members:   []lfg.PlayerID{"1", "2"},
		Decliners: []lfg.PlayerID{"3"},
		Answers:   map[lfg.PlayerID]lfg.Answer{"1": lfg.AnswerAgree},
	}
	emb := RenderProposalEmbed(v)
	require.Equal(t, "Group found: Utgarde Keep (Heroic)", emb.Title)
	require.Contains(t, emb.Description, "<t:")
	require.Equal(t, "Players (1/2 ready)", emb.Fields[0].Name)
	require.Equal(t, "✅ <@1>\n⏳ <@2>\n❌ <@3>", emb.Fields[0].Value)

	v.State = lfg.ProposalFailed
	require.Equal(t, colorFailed, RenderProposalEmbed(v).Color)
	v.State = lfg.ProposalSuccess
	require.Equal(t, colorSuccess, RenderProposalEmbed(v).Color)
}

func TestRenderBoot(t *testing.T) {
	emb := RenderBootEmbed(BootCard{
		Kicker:      "1",
		Victim:      "5",
		Reason:      "afk",
		Votes:       map[lfg.PlayerID]lfg.Answer{"5": lfg.AnswerDeny, "1": lfg.AnswerAgree, "2": lfg.AnswerPending},
		VotesNeeded: 3,
		CancelAt:    now,
	})
	require.Contains(t, emb.Description, "<@1> wants to kick <@5>.")
	require.Contains(t, emb.Description, "> afk")
	require.Equal(t, "Votes (3 needed)", emb.Fields[0].Name)
	require.Equal(t, "✅ <@1>\n⏳ <@2>\n❌ <@5>", emb.Fields[0].Value)

	out := lfg.BootOutcome{Victim: "5", Result: lfg.AnswerAgree, KicksLeft: 2}
	res := RenderBootResult(out)
	require.Equal(t, "Vote to kick: passed", res.Title)
	require.Equal(t, "2 kicks left", res.Footer.Text)

	out.Result = lfg.AnswerDeny
	require.Contains(t, RenderBootResult(out).Description, "stays")
}

func TestRenderRoleCheck(t *testing.T) {
	emb := RenderRoleCheckEmbed("abcdef123456", []lfg.PlayerID{"1", "2"}, now)
	require.Equal(t, "• <@1>\n• <@2>", emb.Fields[0].Value)
	require.Equal(t, "party abcdef12", emb.Footer.Text)

	require.Equal(t, "Role check complete", RenderRoleCheckResult("p", lfg.RoleCheckFinished).Title)
	res := RenderRoleCheckResult("p", lfg.RoleCheckWrongRoles)
	require.Equal(t, "Role check failed", res.Title)
	require.Contains(t, res.Description, "do not fit")
}

func TestCustomIDRoundTrip(t *testing.T) {
	action, target, ok := ParseCustomID(CustomID(ActionBootYes, "party-1"))
	require.True(t, ok)
	require.Equal(t, ActionBootYes, action)
	require.Equal(t, "party-1", target)

	for _, bad := range []string{"", "lfg_accept", ":x", "lfg_accept:"} {
		_, _, ok := ParseCustomID(bad)
		require.False(t, ok, bad)
	}
}

func TestButtonsDisabledWhenClosed(t *testing.T) {
	row := ProposalButtons("prop", false)[0].(discordgo.ActionsRow)
	for _, c := range row.Components {
		require.True(t, c.(discordgo.Button).Disabled)
	}
	row = BootButtons("party", true)[0].(discordgo.ActionsRow)
	btn := row.Components[0].(discordgo.Button)
	require.False(t, btn.Disabled)
	require.Equal(t, "lfg_boot_yes:party", btn.CustomID)
}

func TestHelpers(t *testing.T) {
	require.Equal(t, "—", bulletList(nil, 3))
	require.Equal(t, "• a\n• b\n… and 1 more", bulletList([]string{"a", "b", "c"}, 2))
	require.Equal(t, "> a\n> b", quoteBlock("a\nb"))
	require.Equal(t, "—", safe("  "))
	require.Equal(t, "5 min", humanWait(now, now.Add(-5*time.Minute)))
	require.Equal(t, "2h", humanWait(now, now.Add(-2*time.Hour)))
	require.True(t, strings.HasPrefix(relative(now), "<t:"))
	require.Equal(t, "—", relative(time.Time{}))
}
