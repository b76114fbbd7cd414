package bot

import (
	"github.com/bwmarrin/discordgo"

	"wirdbot/internal/db/models"
)

var (
	commands = []*discordgo.ApplicationCommand{
		{
			Name:        "register",
			Description: "Register for daily Wird tracking",
		},
		{
			Name:        "unregister",
			Description: "Unregister from daily Wird tracking",
		},
		{
			Name:        "stats",
			Description: "View your Wird statistics",
		},
		{
			Name:        "setup",
			Description: "Configure daily Wird for this server (admins only)",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionChannel,
					Name:        "channel",
					Description: "Channel where daily pages are posted",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "pages_per_day",
					Description: "Number of pages assigned per day",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "start_page",
					Description: "Page to start from (1-based, defaults to 1)",
					Required:    false,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "mosque_id",
					Description: "Mosque ID used to resolve prayer-time schedules",
					Required:    false,
				},
			},
		},
		{
			Name:        "schedule",
			Description: "Manage daily send times (admins only)",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "add",
					Description: "Add a send time",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "when",
							Description: "Fixed time or prayer event",
							Required:    true,
							Choices: []*discordgo.ApplicationCommandOptionChoice{
								{Name: "Fixed time (UTC)", Value: models.TimeTypeFixed},
								{Name: "Fajr", Value: models.EventFajr},
								{Name: "Dhuhr", Value: models.EventDhuhr},
								{Name: "Asr", Value: models.EventAsr},
								{Name: "Maghrib", Value: models.EventMaghrib},
								{Name: "Isha", Value: models.EventIsha},
							},
						},
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "time",
							Description: "Time of day for fixed entries (HH:MM, UTC)",
							Required:    false,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "remove",
					Description: "Remove a send time",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionInteger,
							Name:        "entry",
							Description: "Entry number from /schedule list",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "list",
					Description: "List configured send times",
				},
			},
		},
		{
			Name:        "sendnow",
			Description: "Send today's pages immediately (admins only)",
		},
		{
			Name:        "progress",
			Description: "Show today's completion progress",
		},
	}
)
