package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strconv"
	"strings"
	"time"

	"wirdbot/internal/core"
	"wirdbot/internal/db"
	"wirdbot/internal/db/models"

	"github.com/bwmarrin/discordgo"
)

const completionButtonPrefix = "wird_complete:"

var fixedTimePattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

func (b *Bot) handleRegister(s *discordgo.Session, i *discordgo.InteractionCreate) {
	logCommand(i, "register")

	userID, username := interactionUser(i)
	if userID == "" {
		respondWithError(s, i, "Could not determine user information")
		return
	}

	ctx := context.Background()
	user, err := b.db.GetUser(ctx, userID, i.GuildID)
	if err != nil {
		respondWithError(s, i, "Error looking up registration: "+err.Error())
		return
	}
	if user != nil && user.Registered {
		respondWithSuccess(s, i, "You're already registered!")
		return
	}

	if err := b.db.RegisterUser(ctx, userID, i.GuildID, username); err != nil {
		respondWithError(s, i, "Error registering: "+err.Error())
		return
	}
	respondWithSuccess(s, i, "✅ You've been registered for daily Wird tracking!")
}

func (b *Bot) handleUnregister(s *discordgo.Session, i *discordgo.InteractionCreate) {
	logCommand(i, "unregister")

	userID, _ := interactionUser(i)
	ctx := context.Background()

	user, err := b.db.GetUser(ctx, userID, i.GuildID)
	if err != nil {
		respondWithError(s, i, "Error looking up registration: "+err.Error())
		return
	}
	if user == nil || !user.Registered {
		respondWithError(s, i, "You're not registered!")
		return
	}

	if err := b.db.UnregisterUser(ctx, userID, i.GuildID); err != nil {
		respondWithError(s, i, "Error unregistering: "+err.Error())
		return
	}
	respondWithSuccess(s, i, "✅ You've been unregistered from Wird tracking")
}

func (b *Bot) handleStats(s *discordgo.Session, i *discordgo.InteractionCreate) {
	logCommand(i, "stats")

	userID, username := interactionUser(i)
	ctx := context.Background()

	streak, err := b.engine.GetStreak(ctx, userID, i.GuildID)
	if err != nil {
		if errors.Is(err, core.ErrNotRegistered) {
			respondWithError(s, i, "You're not registered! Use `/register` first.")
			return
		}
		respondWithError(s, i, "Error loading stats: "+err.Error())
		return
	}

	embed := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("📊 %s's Wird Stats", username),
		Color: 0x2ecc71,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "🔥 Current Streak", Value: fmt.Sprintf("%d days", streak.CurrentDays), Inline: true},
			{Name: "🏆 Longest Streak", Value: fmt.Sprintf("%d days", streak.LongestDays), Inline: true},
			{Name: "📿 Session Streak", Value: fmt.Sprintf("%d (best %d)", streak.CurrentSessions, streak.LongestSessions), Inline: true},
		},
	}

	// Today's progress, when a session exists
	now := b.clock.Now()
	session, err := b.db.GetSessionByDate(ctx, i.GuildID, core.DateOf(now))
	if err == nil && session != nil {
		units, err := b.db.GetUserSessionUnits(ctx, userID, session.ID)
		if err == nil {
			embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
				Name:  "📖 Today's Progress",
				Value: fmt.Sprintf("%d/%d pages", len(units), session.UnitCount()),
			})
		}
	}

	respondWithEmbed(s, i, embed)
}

func (b *Bot) handleSetup(s *discordgo.Session, i *discordgo.InteractionCreate) {
	logCommand(i, "setup")

	userID, _ := interactionUser(i)
	if !isAdmin(s, i.GuildID, userID) {
		respondWithError(s, i, "Only administrators can configure the server")
		return
	}

	var channelID, mosqueID string
	pagesPerDay := 0
	startPage := 0
	for _, opt := range i.ApplicationCommandData().Options {
		switch opt.Name {
		case "channel":
			channelID = opt.ChannelValue(s).ID
		case "pages_per_day":
			pagesPerDay = int(opt.IntValue())
		case "start_page":
			startPage = int(opt.IntValue())
		case "mosque_id":
			mosqueID = opt.StringValue()
		}
	}

	totalPages := b.config.Wird.TotalPages
	if pagesPerDay < 1 || pagesPerDay > totalPages {
		respondWithError(s, i, fmt.Sprintf("pages_per_day must be between 1 and %d", totalPages))
		return
	}
	if startPage < 0 || startPage > totalPages {
		respondWithError(s, i, fmt.Sprintf("start_page must be between 1 and %d", totalPages))
		return
	}

	ctx := context.Background()
	existing, err := b.db.GetGuildConfig(ctx, i.GuildID)
	if err != nil {
		respondWithError(s, i, "Error loading configuration: "+err.Error())
		return
	}

	guild := &models.GuildConfig{
		GuildID:       i.GuildID,
		ChannelID:     channelID,
		ContentSource: "quran",
		UnitsPerDay:   pagesPerDay,
		TotalUnits:    totalPages,
		MosqueID:      mosqueID,
		Configured:    true,
		SummaryOnDone: true,
		CreatedAt:     time.Now().UTC(),
	}
	if existing != nil {
		guild.CurrentUnit = existing.CurrentUnit
		guild.CreatedAt = existing.CreatedAt
		if mosqueID == "" {
			guild.MosqueID = existing.MosqueID
		}
	}
	if startPage > 0 {
		// Pages are shown 1-based; the cursor is 0-based
		guild.CurrentUnit = startPage - 1
	}

	if err := b.db.UpsertGuildConfig(ctx, guild); err != nil {
		respondWithError(s, i, "Error saving configuration: "+err.Error())
		return
	}

	respondWithSuccess(s, i, fmt.Sprintf(
		"✅ Configured: %d page(s) per day in <#%s>, next page %d.\nAdd send times with `/schedule add`.",
		pagesPerDay, channelID, guild.CurrentUnit+1))
}

func (b *Bot) handleSchedule(s *discordgo.Session, i *discordgo.InteractionCreate) {
	sub := i.ApplicationCommandData().Options[0]
	logCommand(i, "schedule", sub.Name)

	switch sub.Name {
	case "add":
		b.handleScheduleAdd(s, i, sub)
	case "remove":
		b.handleScheduleRemove(s, i, sub)
	case "list":
		b.handleScheduleList(s, i)
	default:
		respondWithError(s, i, "Unknown schedule subcommand")
	}
}

func (b *Bot) handleScheduleAdd(s *discordgo.Session, i *discordgo.InteractionCreate, sub *discordgo.ApplicationCommandInteractionDataOption) {
	userID, _ := interactionUser(i)
	if !isAdmin(s, i.GuildID, userID) {
		respondWithError(s, i, "Only administrators can manage the schedule")
		return
	}

	var timeType, timeValue string
	for _, opt := range sub.Options {
		switch opt.Name {
		case "when":
			timeType = opt.StringValue()
		case "time":
			timeValue = opt.StringValue()
		}
	}

	if timeType == models.TimeTypeFixed {
		if !fixedTimePattern.MatchString(timeValue) {
			respondWithError(s, i, "Invalid time format! Use HH:MM (e.g., 14:30)")
			return
		}
	} else {
		if !isPrayerEvent(timeType) {
			respondWithError(s, i, "Unknown schedule type: "+timeType)
			return
		}
		timeValue = ""
		ctx := context.Background()
		guild, err := b.db.GetGuildConfig(ctx, i.GuildID)
		if err != nil || guild == nil || guild.MosqueID == "" {
			respondWithError(s, i, "Prayer-time schedules need a mosque ID; set one with `/setup`")
			return
		}
	}

	entry := db.NewScheduleEntry(i.GuildID, timeType, timeValue)
	if err := b.db.AddScheduleEntry(context.Background(), entry); err != nil {
		respondWithError(s, i, "Error adding schedule entry: "+err.Error())
		return
	}

	if timeType == models.TimeTypeFixed {
		respondWithSuccess(s, i, fmt.Sprintf("✅ Added scheduled time: %s UTC", timeValue))
	} else {
		respondWithSuccess(s, i, fmt.Sprintf("✅ Pages will be sent at %s time", timeType))
	}
}

func (b *Bot) handleScheduleRemove(s *discordgo.Session, i *discordgo.InteractionCreate, sub *discordgo.ApplicationCommandInteractionDataOption) {
	userID, _ := interactionUser(i)
	if !isAdmin(s, i.GuildID, userID) {
		respondWithError(s, i, "Only administrators can manage the schedule")
		return
	}

	index := int(sub.Options[0].IntValue())

	ctx := context.Background()
	entries, err := b.db.GetScheduleEntries(ctx, i.GuildID)
	if err != nil {
		respondWithError(s, i, "Error loading schedule: "+err.Error())
		return
	}
	if index < 1 || index > len(entries) {
		respondWithError(s, i, fmt.Sprintf("Entry must be between 1 and %d (see `/schedule list`)", len(entries)))
		return
	}

	entry := entries[index-1]
	if err := b.db.RemoveScheduleEntry(ctx, entry.ID); err != nil {
		respondWithError(s, i, "Error removing schedule entry: "+err.Error())
		return
	}
	respondWithSuccess(s, i, fmt.Sprintf("✅ Removed schedule entry %d (%s)", index, describeEntry(entry)))
}

func (b *Bot) handleScheduleList(s *discordgo.Session, i *discordgo.InteractionCreate) {
	entries, err := b.db.GetScheduleEntries(context.Background(), i.GuildID)
	if err != nil {
		respondWithError(s, i, "Error loading schedule: "+err.Error())
		return
	}
	if len(entries) == 0 {
		respondWithSuccess(s, i, "No send times configured. Add one with `/schedule add`.")
		return
	}

	var sb strings.Builder
	sb.WriteString("**Configured send times:**\n")
	for n, entry := range entries {
		state := ""
		if !entry.Enabled {
			state = " (disabled)"
		}
		sb.WriteString(fmt.Sprintf("%d. %s%s\n", n+1, describeEntry(entry), state))
	}
	respondWithSuccess(s, i, sb.String())
}

func isPrayerEvent(timeType string) bool {
	for _, event := range models.PrayerEvents {
		if timeType == event {
			return true
		}
	}
	return false
}

func describeEntry(entry *models.ScheduleEntry) string {
	if entry.TimeType == models.TimeTypeFixed {
		return entry.TimeValue + " UTC"
	}
	return entry.TimeType
}

func (b *Bot) handleSendNow(s *discordgo.Session, i *discordgo.InteractionCreate) {
	logCommand(i, "sendnow")

	userID, _ := interactionUser(i)
	if !isAdmin(s, i.GuildID, userID) {
		respondWithError(s, i, "Only administrators can send pages manually")
		return
	}

	ctx := context.Background()
	session, created, err := b.engine.GetOrCreateToday(ctx, i.GuildID, b.clock.Now())
	if err != nil {
		if errors.Is(err, core.ErrGuildNotConfigured) {
			respondWithError(s, i, "Server not configured! Run `/setup` first.")
			return
		}
		respondWithError(s, i, "Error creating session: "+err.Error())
		return
	}
	if !created {
		respondWithSuccess(s, i, fmt.Sprintf("Today's pages were already sent (pages %d-%d).",
			session.StartUnit+1, session.EndUnit+1))
		return
	}

	b.deliverSession(ctx, session)
	respondWithSuccess(s, i, fmt.Sprintf("✅ Sent today's pages (%d-%d).",
		session.StartUnit+1, session.EndUnit+1))
}

// handleCompletionButton records a page completion from a "Mark as read"
// button press.
func (b *Bot) handleCompletionButton(s *discordgo.Session, i *discordgo.InteractionCreate, customID string) {
	userID, username := interactionUser(i)
	if userID == "" {
		respondWithError(s, i, "Could not determine user information")
		return
	}

	unit, err := strconv.Atoi(strings.TrimPrefix(customID, completionButtonPrefix))
	if err != nil {
		respondWithError(s, i, "Malformed completion button")
		return
	}

	ctx := context.Background()
	result, err := b.engine.RecordCompletion(ctx, userID, i.GuildID, unit, b.clock.Now())
	if err != nil {
		switch {
		case errors.Is(err, core.ErrNotRegistered):
			respondWithError(s, i, "You are not registered for Wird tracking! Use `/register` first.")
		case errors.Is(err, core.ErrGuildNotConfigured):
			respondWithError(s, i, "Server not configured!")
		case errors.Is(err, core.ErrNoSession):
			respondWithError(s, i, "This page is not part of any assignment.")
		default:
			log.Printf(formatLogMessage(i.GuildID, fmt.Sprintf("Error recording completion for %s: %v", username, err), "WIRD", ""))
			respondWithError(s, i, "Error recording completion")
		}
		return
	}

	page := unit + 1
	if result.AlreadyRecorded {
		respondWithSuccess(s, i, "✅ You already marked this page as read!")
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "✅ Page %d marked as complete!\n", page)
	if result.Late {
		sb.WriteString("🕰️ Recorded against an earlier assignment.\n")
	}
	if result.MemberDayComplete {
		sb.WriteString("🎉 You've completed all pages for today!\n")
		if result.Streak != nil {
			fmt.Fprintf(&sb, "🔥 Current streak: %d days", result.Streak.CurrentDays)
		}
	} else {
		fmt.Fprintf(&sb, "📖 Progress: %d/%d pages", result.UnitsDone, result.Session.UnitCount())
	}
	respondWithSuccess(s, i, sb.String())

	if result.SessionNowComplete {
		b.announceSessionComplete(ctx, result.Session)
	}
}
