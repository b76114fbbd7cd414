package bot

import (
	"fmt"
	"log"

	"github.com/bwmarrin/discordgo"
)

// formatLogMessage builds the guild-tagged log line used across the bot
func formatLogMessage(guildID, message, source, serverName string) string {
	if serverName != "" {
		return fmt.Sprintf("[%s] [%s (%s)] %s", source, serverName, guildID, message)
	}
	if guildID != "" {
		return fmt.Sprintf("[%s] [%s] %s", source, guildID, message)
	}
	return fmt.Sprintf("[%s] %s", source, message)
}

// getServerName resolves a guild's display name, falling back to its ID
func getServerName(s *discordgo.Session, guildID string) string {
	if guild, err := s.Guild(guildID); err == nil {
		return guild.Name
	}
	return guildID
}

// respondWithError sends an error response to the user
func respondWithError(s *discordgo.Session, i *discordgo.InteractionCreate, errMsg string) {
	s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: "Error: " + errMsg,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
}

// respondWithSuccess sends a success response to the user
func respondWithSuccess(s *discordgo.Session, i *discordgo.InteractionCreate, msg string) {
	s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: msg,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
}

// respondWithEmbed sends an ephemeral embed response to the user
func respondWithEmbed(s *discordgo.Session, i *discordgo.InteractionCreate, embed *discordgo.MessageEmbed) {
	s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
			Flags:  discordgo.MessageFlagsEphemeral,
		},
	})
}

// interactionUser returns the acting user's ID and username, handling both
// guild and DM interactions
func interactionUser(i *discordgo.InteractionCreate) (string, string) {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID, i.Member.User.Username
	}
	if i.User != nil {
		return i.User.ID, i.User.Username
	}
	return "", ""
}

// Helper function to check if a user is an admin
func isAdmin(s *discordgo.Session, guildID string, userID string) bool {
	member, err := s.GuildMember(guildID, userID)
	if err != nil {
		log.Printf("Error getting guild member: %v", err)
		return false
	}

	guild, err := s.Guild(guildID)
	if err != nil {
		log.Printf("Error getting guild: %v", err)
		return false
	}

	// First check if user is the guild owner
	if guild.OwnerID == userID {
		return true
	}

	// Check each role the user has
	for _, roleID := range member.Roles {
		for _, role := range guild.Roles {
			if role.ID == roleID {
				if role.Permissions&discordgo.PermissionAdministrator != 0 || role.Permissions&discordgo.PermissionManageServer != 0 {
					return true
				}
				break
			}
		}
	}

	return false
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

// logCommand logs command execution to the console
func logCommand(i *discordgo.InteractionCreate, commandName string, details ...string) {
	_, username := interactionUser(i)
	msg := fmt.Sprintf("%s executed /%s", username, commandName)
	for _, d := range details {
		msg += " " + d
	}
	log.Printf(formatLogMessage(i.GuildID, msg, "CMD", ""))
}
