// Buttons and select menus for the LFG messages. Custom ids are
// "<action>:<target>" where target is a proposal or party id.

package ui

import (
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/jose-valero/lfg-bot/internal/lfg"
)

const (
	ActionAccept  = "lfg_accept"
	ActionDecline = "lfg_decline"
	ActionBootYes = "lfg_boot_yes"
	ActionBootNo  = "lfg_boot_no"
	ActionRoles   = "lfg_roles"
)

func CustomID(action, target string) string { return action + ":" + target }

// ParseCustomID splits a custom id built by CustomID.
func ParseCustomID(id string) (action, target string, ok bool) {
	action, target, ok = strings.Cut(id, ":")
	if !ok || action == "" || target == "" {
		return "", "", false
	}
	return action, target, true
}

func ProposalButtons(id lfg.ProposalID, open bool) []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    "Accept",
					Style:    discordgo.SuccessButton,
					CustomID: CustomID(ActionAccept, string(id)),
					Emoji:    &discordgo.ComponentEmoji{Name: "✅"},
					Disabled: !open,
				},
				discordgo.Button{
					Label:    "Decline",
					Style:    discordgo.DangerButton,
					CustomID: CustomID(ActionDecline, string(id)),
					Disabled: !open,
				},
			},
		},
	}
}

func BootButtons(party lfg.PartyID, open bool) []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    "Kick",
					Style:    discordgo.DangerButton,
					CustomID: CustomID(ActionBootYes, string(party)),
					Disabled: !open,
				},
				discordgo.Button{
					Label:    "Keep",
					Style:    discordgo.SecondaryButton,
					CustomID: CustomID(ActionBootNo, string(party)),
					Disabled: !open,
				},
			},
		},
	}
}

// RoleSelect lets a party member pick up to three combat roles.
func RoleSelect(party lfg.PartyID, open bool) []discordgo.MessageComponent {
	minValues := 1
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.SelectMenu{
					MenuType:    discordgo.StringSelectMenu,
					CustomID:    CustomID(ActionRoles, string(party)),
					Placeholder: "Pick your roles…",
					MinValues:   &minValues,
					MaxValues:   3,
					Disabled:    !open,
					Options: []discordgo.SelectMenuOption{
						{Label: "Tank", Value: "tank", Emoji: &discordgo.ComponentEmoji{Name: "🛡️"}},
						{Label: "Healer", Value: "healer", Emoji: &discordgo.ComponentEmoji{Name: "💚"}},
						{Label: "DPS", Value: "dps", Emoji: &discordgo.ComponentEmoji{Name: "⚔️"}},
					},
				},
			},
		},
	}
}
