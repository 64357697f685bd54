package app

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	d "github.com/jose-valero/lfg-bot/internal/adapters/discord"
	"github.com/jose-valero/lfg-bot/internal/lfg"
	"github.com/jose-valero/lfg-bot/internal/party"
	"github.com/jose-valero/lfg-bot/internal/queue"
	"github.com/jose-valero/lfg-bot/internal/ui"
)

type options map[string]*discordgo.ApplicationCommandInteractionDataOption

func optionMap(opts []*discordgo.ApplicationCommandInteractionDataOption) options {
	m := make(options, len(opts))
	for _, o := range opts {
		m[o.Name] = o
	}
	return m
}

func (o options) str(name string) string {
	if v, ok := o[name]; ok {
		return v.StringValue()
	}
	return ""
}

func (o options) integer(name string, def int) int {
	if v, ok := o[name]; ok {
		return int(v.IntValue())
	}
	return def
}

func (o options) user(name string) lfg.PlayerID {
	if v, ok := o[name]; ok {
		return lfg.PlayerID(v.UserValue(nil).ID)
	}
	return ""
}

func (o options) dungeons() []lfg.DungeonID {
	var out []lfg.DungeonID
	for _, name := range []string{"dungeon", "also"} {
		if id := o.integer(name, 0); id > 0 {
			out = append(out, lfg.DungeonID(id))
		}
	}
	return out
}

func (b *Bot) HandleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	b.dispatch(s, i)
}

func (b *Bot) dispatch(r d.Responder, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		b.handleSlash(r, i)
	case discordgo.InteractionMessageComponent:
		b.handleComponent(r, i)
	}
}

// ------------------- Slash -------------------

func (b *Bot) handleSlash(r d.Responder, i *discordgo.InteractionCreate) {
	data := i.ApplicationCommandData()
	if ch := b.Cfg.QueueChannelID; ch != "" && i.ChannelID != ch && data.Name != cmdStatus {
		b.send(r, i, "Use this command in the LFG channel.")
		return
	}
	u := d.UserOf(i)
	if u == nil {
		b.send(r, i, "⚠️ Could not identify you.")
		return
	}
	player := lfg.PlayerID(u.ID)
	opts := optionMap(data.Options)
	b.log.Debug("slash command", zap.String("command", data.Name), zap.String("user", d.SafeName(u)))

	switch data.Name {
	case cmdJoin:
		roles, err := parseRoles(opts.str("roles"))
		if err == nil {
			_, err = b.Svc.JoinQueue(JoinRequest{
				Player:   player,
				Roles:    roles,
				Dungeons: opts.dungeons(),
				Comment:  opts.str("comment"),
			})
		}
		b.reply(r, i, err, "🙌 You're queued. You'll be pinged when a group is found.")

	case cmdLeave:
		b.reply(r, i, b.Svc.LeaveQueue(player), "👋 Left the queue.")

	case cmdParty:
		err := b.Svc.QueueParty(player, opts.dungeons(), opts.str("comment"))
		b.reply(r, i, err, "🎲 Role check started. Everyone picks roles in the menu or with `/lfgroles`.")

	case cmdRoles:
		roles, err := parseRoles(opts.str("roles"))
		if err != nil {
			b.reply(r, i, err, "")
			return
		}
		b.confirmRoles(r, i, player, roles)

	case cmdStatus:
		b.status(r, i, player)

	case cmdKick:
		_, err := b.Svc.Kick(player, opts.user("user"), opts.str("reason"))
		b.reply(r, i, err, "🗳️ Vote to kick started.")

	case cmdMatch:
		if !b.policy.RequirePrivileged(r, i) {
			return
		}
		_, err := b.Svc.Match(uint32(opts.integer("dungeon", 0)), opts.integer("size", b.Cfg.GroupSize))
		b.reply(r, i, err, "✅ Group offer sent.")

	case cmdPartyInvite:
		invitee := opts.user("user")
		_, err := b.Svc.Invite(player, invitee)
		b.reply(r, i, err, fmt.Sprintf("🤝 <@%s> joined your party.", invitee))

	case cmdPartyLeave:
		b.reply(r, i, b.Svc.LeaveParty(player), "👋 Left your party.")

	default:
		b.send(r, i, "⚠️ Unknown command.")
	}
}

func (b *Bot) confirmRoles(r d.Responder, i *discordgo.InteractionCreate, player lfg.PlayerID, roles lfg.RoleMask) {
	done, err := b.Svc.ConfirmRoles(player, roles)
	msg := "✅ Roles confirmed. Waiting for the rest of the party."
	if done {
		msg = "✅ Roles confirmed. The role check is over."
	}
	b.reply(r, i, err, msg)
}

func (b *Bot) status(r d.Responder, i *discordgo.InteractionCreate, player lfg.PlayerID) {
	emb := ui.RenderQueuesEmbed(b.Svc.Queues(), b.Svc.clock.Now())
	state := "Not in LFG."
	if v, err := b.Svc.Player(player); err == nil && v.State != lfg.StateNone {
		state = fmt.Sprintf("%s · roles: %s", v.State, v.Roles)
	}
	emb.Fields = append(emb.Fields, &discordgo.MessageEmbedField{Name: "You", Value: state})
	if err := d.SendEphemeralEmbed(r, i, emb); err != nil {
		b.log.Warn("respond failed", zap.Error(err))
	}
}

// ------------------- Components -------------------

func (b *Bot) handleComponent(r d.Responder, i *discordgo.InteractionCreate) {
	data := i.MessageComponentData()
	u := d.UserOf(i)
	if u == nil {
		b.send(r, i, "⚠️ Could not identify you.")
		return
	}
	player := lfg.PlayerID(u.ID)
	action, target, ok := ui.ParseCustomID(data.CustomID)
	if !ok {
		b.send(r, i, "⚠️ Unknown action.")
		return
	}
	b.log.Debug("component", zap.String("action", action), zap.String("user", d.SafeName(u)))

	switch action {
	case ui.ActionAccept, ui.ActionDecline:
		answer, msg := lfg.AnswerAgree, "✅ Accepted."
		if action == ui.ActionDecline {
			answer, msg = lfg.AnswerDeny, "Declined. You left the queue."
		}
		_, err := b.Svc.Answer(lfg.ProposalID(target), player, answer)
		b.reply(r, i, err, msg)

	case ui.ActionBootYes, ui.ActionBootNo:
		if !b.inParty(r, i, player, target) {
			return
		}
		answer := lfg.AnswerAgree
		if action == ui.ActionBootNo {
			answer = lfg.AnswerDeny
		}
		_, err := b.Svc.Vote(player, answer)
		b.reply(r, i, err, "🗳️ Vote recorded.")

	case ui.ActionRoles:
		if !b.inParty(r, i, player, target) {
			return
		}
		roles, err := parseRoles(strings.Join(data.Values, ","))
		if err != nil {
			b.reply(r, i, err, "")
			return
		}
		b.confirmRoles(r, i, player, roles)

	default:
		b.send(r, i, "⚠️ Unknown action.")
	}
}

func (b *Bot) inParty(r d.Responder, i *discordgo.InteractionCreate, player lfg.PlayerID, target string) bool {
	if p, ok := b.Svc.parties.PartyOf(player); ok && string(p) == target {
		return true
	}
	b.send(r, i, "⚠️ This is not for your party.")
	return false
}

// ------------------- Replies -------------------

func (b *Bot) reply(r d.Responder, i *discordgo.InteractionCreate, err error, ok string) {
	if err != nil {
		b.send(r, i, "⚠️ "+userMessage(err))
		return
	}
	b.send(r, i, ok)
}

func (b *Bot) send(r d.Responder, i *discordgo.InteractionCreate, msg string) {
	if err := d.SendEphemeral(r, i, msg); err != nil {
		b.log.Warn("respond failed", zap.Error(err))
	}
}

var userMessages = []struct {
	err error
	msg string
}{
	{queue.ErrAlreadyIn, "You're already queued."},
	{lfg.ErrProposalNotFound, "That group offer is over."},
	{lfg.ErrProposalClosed, "That group offer is over."},
	{lfg.ErrNotMember, "That isn't yours to answer."},
	{lfg.ErrBootNotActive, "No kick vote is running."},
	{lfg.ErrBootInProgress, "A kick vote is already running."},
	{lfg.ErrNoKicksLeft, "Your party has no kicks left."},
	{lfg.ErrNotVoter, "You can't vote on this kick."},
	{lfg.ErrRoleCheckIdle, "No role check is running."},
	{lfg.ErrRoleCheckActive, "A role check is already running."},
	{party.ErrNotInParty, "You're not in a party."},
	{party.ErrPartyFull, "The party is full."},
	{party.ErrInParty, "They're already in a party."},
}

func userMessage(err error) string {
	for _, m := range userMessages {
		if errors.Is(err, m.err) {
			return m.msg
		}
	}
	return err.Error()
}
