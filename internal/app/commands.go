package app

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// Slash command names.
const (
	cmdJoin        = "lfgjoin"
	cmdLeave       = "lfgleave"
	cmdParty       = "lfgparty"
	cmdRoles       = "lfgroles"
	cmdStatus      = "lfgstatus"
	cmdKick        = "lfgkick"
	cmdMatch       = "lfgmatch"
	cmdPartyInvite = "partyinvite"
	cmdPartyLeave  = "partyleave"
)

// Discord caps choices per option at 25.
const maxChoices = 25

// CommandRegistrar is the part of *discordgo.Session used to install the
// slash commands.
type CommandRegistrar interface {
	ApplicationCommandBulkOverwrite(appID string, guildID string, commands []*discordgo.ApplicationCommand, options ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error)
}

func dungeonChoices(c Catalog) []*discordgo.ApplicationCommandOptionChoice {
	ds := c.Sorted()
	out := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(ds))
	for _, d := range ds {
		if len(out) == maxChoices {
			break
		}
		out = append(out, &discordgo.ApplicationCommandOptionChoice{
			Name:  fmt.Sprintf("%s (%s)", d.Name, d.Category),
			Value: int(d.ID),
		})
	}
	return out
}

func dungeonOption(name string, required bool, choices []*discordgo.ApplicationCommandOptionChoice) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionInteger,
		Name:        name,
		Description: "Dungeon to queue for",
		Required:    required,
		Choices:     choices,
	}
}

func rolesOption(required bool) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "roles",
		Description: "tank, healer and/or dps (exp: \"tank, dps\")",
		Required:    required,
	}
}

func commentOption() *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "comment",
		Description: "Shown to the group you get matched with",
		MaxLength:   200,
	}
}

func userOption(description string) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionUser,
		Name:        "user",
		Description: description,
		Required:    true,
	}
}

// Commands builds the slash commands; dungeon choices come from the catalog.
func Commands(c Catalog) []*discordgo.ApplicationCommand {
	choices := dungeonChoices(c)
	minSize := 1.0
	return []*discordgo.ApplicationCommand{
		{
			Name:        cmdJoin,
			Description: "Queue for a dungeon on your own",
			Options: []*discordgo.ApplicationCommandOption{
				rolesOption(true),
				dungeonOption("dungeon", true, choices),
				dungeonOption("also", false, choices),
				commentOption(),
			},
		},
		{Name: cmdLeave, Description: "Leave the LFG queue (with your party if you are in one)"},
		{
			Name:        cmdParty,
			Description: "Queue your party (leader only); starts a role check",
			Options: []*discordgo.ApplicationCommandOption{
				dungeonOption("dungeon", true, choices),
				dungeonOption("also", false, choices),
				commentOption(),
			},
		},
		{
			Name:        cmdRoles,
			Description: "Answer your party's role check",
			Options:     []*discordgo.ApplicationCommandOption{rolesOption(true)},
		},
		{Name: cmdStatus, Description: "Show your LFG state and the queues"},
		{
			Name:        cmdKick,
			Description: "Start a vote to kick someone from your party",
			Options: []*discordgo.ApplicationCommandOption{
				userOption("Who to kick"),
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "reason",
					Description: "Why",
					MaxLength:   200,
				},
			},
		},
		{
			Name:        cmdMatch,
			Description: "Match a queue now (admins)",
			Options: []*discordgo.ApplicationCommandOption{
				dungeonOption("dungeon", true, choices),
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "size",
					Description: "Players per group",
					MinValue:    &minSize,
					MaxValue:    5,
				},
			},
		},
		{
			Name:        cmdPartyInvite,
			Description: "Invite someone to your party",
			Options:     []*discordgo.ApplicationCommandOption{userOption("Who to invite")},
		},
		{Name: cmdPartyLeave, Description: "Leave your party"},
	}
}

// RegisterCommands replaces the guild-level commands with Commands(c).
func RegisterCommands(s CommandRegistrar, appID, guildID string, c Catalog) error {
	if _, err := s.ApplicationCommandBulkOverwrite(appID, guildID, Commands(c)); err != nil {
		return fmt.Errorf("register commands: %w", err)
	}
	return nil
}
