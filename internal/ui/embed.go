package ui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/jose-valero/lfg-bot/internal/lfg"
	"github.com/jose-valero/lfg-bot/internal/party"
	"github.com/jose-valero/lfg-bot/internal/queue"
)

const (
	colorOpen    = 0x5865F2
	colorSuccess = 0x57F287
	colorFailed  = 0xED4245
	colorIdle    = 0x808080
)

// BootCard is what a kick vote message shows.
type BootCard struct {
	Party       lfg.PartyID
	Kicker      lfg.PlayerID
	Victim      lfg.PlayerID
	Reason      string
	Votes       map[lfg.PlayerID]lfg.Answer
	VotesNeeded uint
	CancelAt    time.Time
}

func buildQueuesDescription(qs []*queue.Queue, now time.Time) string {
	if len(qs) == 0 {
		return "Nobody is queued. Use `/lfgjoin` to start."
	}
	var b strings.Builder
	for _, q := range qs {
		if q.Capacity > 0 {
			fmt.Fprintf(&b, "**%s** (%d/%d)\n", safe(q.Name), len(q.Entries), q.Capacity)
		} else {
			fmt.Fprintf(&b, "**%s** (%d)\n", safe(q.Name), len(q.Entries))
		}
		if len(q.Entries) == 0 {
			b.WriteString("_(empty)_\n\n")
			continue
		}
		for i, e := range q.Entries {
			who := mention(lfg.PlayerID(e.ID))
			if e.Kind == lfg.EntryParty {
				who = "party `" + shortID(e.ID) + "`"
			}
			fmt.Fprintf(&b, "%d) %s · %s\n", i+1, who, humanWait(now, e.EnqueuedAt))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// RenderQueuesEmbed is the status board of every non-empty queue.
func RenderQueuesEmbed(qs []*queue.Queue, now time.Time) *discordgo.MessageEmbed {
	color := colorIdle
	if len(qs) > 0 {
		color = colorOpen
	}
	return &discordgo.MessageEmbed{
		Title:       "Looking for group",
		Description: buildQueuesDescription(qs, now),
		Color:       color,
	}
}

func RenderRoleCheckEmbed(id lfg.PartyID, members []lfg.PlayerID, cancelAt time.Time) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "Role check",
		Description: "Every member picks their roles before the party is queued.",
		Color:       colorOpen,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Members", Value: bulletList(mentions(members), party.MaxSize), Inline: true},
			{Name: "Ends", Value: relative(cancelAt), Inline: true},
		},
		Footer: &discordgo.MessageEmbedFooter{Text: "party " + shortID(string(id))},
	}
}

func RenderRoleCheckResult(id lfg.PartyID, result lfg.RoleCheckState) *discordgo.MessageEmbed {
	title, color := "Role check failed", colorFailed
	desc := "The party was not queued: " + roleCheckReason(result) + "."
	if result == lfg.RoleCheckFinished {
		title, color = "Role check complete", colorSuccess
		desc = "Everyone confirmed. The party is queued."
	}
	return &discordgo.MessageEmbed{
		Title:       title,
		Description: desc,
		Color:       color,
		Footer:      &discordgo.MessageEmbedFooter{Text: "party " + shortID(string(id))},
	}
}

func roleCheckReason(r lfg.RoleCheckState) string {
	switch r {
	case lfg.RoleCheckMissingRole:
		return "someone did not answer in time"
	case lfg.RoleCheckWrongRoles:
		return "the roles picked do not fit one group"
	case lfg.RoleCheckNoRole:
		return "someone picked no role"
	case lfg.RoleCheckAborted:
		return "the party left the queue"
	default:
		return r.String()
	}
}

func RenderBootEmbed(c BootCard) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "Vote to kick",
		Description: fmt.Sprintf("%s wants to kick %s.\n%s", mention(c.Kicker), mention(c.Victim), quoteBlock(safe(c.Reason))),
		Color:       colorOpen,
		Fields: []*discordgo.MessageEmbedField{
			{Name: fmt.Sprintf("Votes (%d needed)", c.VotesNeeded), Value: ballots(c.Votes), Inline: true},
			{Name: "Ends", Value: relative(c.CancelAt), Inline: true},
		},
	}
}

func RenderBootResult(out lfg.BootOutcome) *discordgo.MessageEmbed {
	emb := &discordgo.MessageEmbed{
		Title:  "Vote to kick: rejected",
		Color:  colorIdle,
		Fields: []*discordgo.MessageEmbedField{{Name: "Votes", Value: ballots(out.Votes)}},
		Footer: &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("%d kicks left", out.KicksLeft)},
	}
	if out.Kicked() {
		emb.Title = "Vote to kick: passed"
		emb.Color = colorFailed
		emb.Description = mention(out.Victim) + " was removed from the party."
	} else {
		emb.Description = mention(out.Victim) + " stays in the party."
	}
	return emb
}

func RenderProposalEmbed(v lfg.ProposalView) *discordgo.MessageEmbed {
	title := "Group found"
	if v.Dungeon.Name != "" {
		title += ": " + v.Dungeon.Name
	}
	emb := &discordgo.MessageEmbed{
		Title: title,
		Color: colorOpen,
	}
	switch v.State {
	case lfg.ProposalSuccess:
		emb.Description = "Everyone accepted. Have fun!"
		emb.Color = colorSuccess
	case lfg.ProposalFailed:
		emb.Description = "The group fell through. Players who accepted are back in the queue."
		emb.Color = colorFailed
	default:
		emb.Description = "Accept before " + relative(v.CancelAt) + "."
	}

	rows := make([]string, 0, len(v.Members)+len(v.Decliners))
	for _, p := range v.Members {
		rows = append(rows, answerIcon(v.Answers[p])+" "+mention(p))
	}
	for _, p := range v.Decliners {
		rows = append(rows, answerIcon(lfg.AnswerDeny)+" "+mention(p))
	}
	emb.Fields = append(emb.Fields, &discordgo.MessageEmbedField{
		Name:  fmt.Sprintf("Players (%d/%d ready)", len(v.Agreed()), len(v.Members)),
		Value: strings.Join(rows, "\n"),
	})
	if len(rows) == 0 {
		emb.Fields[0].Value = "—"
	}
	return emb
}

func ballots(votes map[lfg.PlayerID]lfg.Answer) string {
	if len(votes) == 0 {
		return "—"
	}
	ids := make([]lfg.PlayerID, 0, len(votes))
	for p := range votes {
		ids = append(ids, p)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	rows := make([]string, 0, len(ids))
	for _, p := range ids {
		rows = append(rows, answerIcon(votes[p])+" "+mention(p))
	}
	return strings.Join(rows, "\n")
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
