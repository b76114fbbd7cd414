package bot

import (
	"context"
	"fmt"
	"log"
	"runtime"
	"strings"
	"sync"
	"time"

	"wirdbot/internal/config"
	"wirdbot/internal/core"
	"wirdbot/internal/db"

	"github.com/bwmarrin/discordgo"
)

type Bot struct {
	config     *config.Config
	db         *db.DB
	engine     *core.Engine
	clock      core.Clock
	session    *discordgo.Session
	shutdownCh chan struct{}
	isShutdown bool
	mu         sync.Mutex
	wg         sync.WaitGroup
}

func New(cfg *config.Config, database *db.DB, engine *core.Engine, clock core.Clock) (*Bot, error) {
	session, err := discordgo.New("Bot " + cfg.Discord.Token)
	if err != nil {
		return nil, fmt.Errorf("error creating Discord session: %w", err)
	}

	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsGuildMessages

	// Required permissions for visibility
	requiredPermissions := int64(
		discordgo.PermissionViewChannel |
			discordgo.PermissionSendMessages |
			discordgo.PermissionEmbedLinks |
			discordgo.PermissionUseSlashCommands)

	cfg.Discord.Permissions = requiredPermissions

	log.Printf("Bot intents: %d", session.Identify.Intents)
	log.Printf("Bot permissions: %d", cfg.Discord.Permissions)

	return &Bot{
		config:     cfg,
		db:         database,
		engine:     engine,
		clock:      clock,
		session:    session,
		shutdownCh: make(chan struct{}),
		isShutdown: false,
	}, nil
}

// Helper function to register commands for a guild
func (b *Bot) registerGuildCommands(guildID string) error {
	maxRetries := 3
	var lastErr error

	for i := 0; i < maxRetries; i++ {
		err := b.registerGuildCommandsOnce(guildID)
		if err == nil {
			return nil
		}
		lastErr = err
		log.Printf("Attempt %d to register commands failed: %v", i+1, err)
		time.Sleep(time.Second * time.Duration(i+1))
	}
	return fmt.Errorf("failed to register commands after %d attempts: %v", maxRetries, lastErr)
}

func (b *Bot) registerGuildCommandsOnce(guildID string) error {
	serverName := getServerName(b.session, guildID)

	log.Printf(formatLogMessage(guildID, "Registering commands", "BOT", serverName))

	// Clear existing commands
	existing, err := b.session.ApplicationCommands(b.config.Discord.ClientID, guildID)
	if err != nil {
		return fmt.Errorf("error getting existing commands: %w", err)
	}

	for _, v := range existing {
		err := b.session.ApplicationCommandDelete(b.config.Discord.ClientID, guildID, v.ID)
		if err != nil {
			log.Printf(formatLogMessage(guildID, fmt.Sprintf("%s: Failed to delete command (%v)", v.Name, err), "BOT", serverName))
		}
	}

	// Wait a moment to ensure all deletions are processed
	time.Sleep(time.Second)

	for _, v := range commands {
		_, err := b.session.ApplicationCommandCreate(b.config.Discord.ClientID, guildID, v)
		if err != nil {
			return fmt.Errorf("error creating command %s: %w", v.Name, err)
		}
		log.Printf(formatLogMessage(guildID, fmt.Sprintf("%s: Registered command", v.Name), "BOT", serverName))
	}

	return nil
}

func (b *Bot) Start(ctx context.Context) error {
	log.Println("Starting WirdBot...")

	// Keep trying to connect until successful
	for {
		log.Println("Testing Discord API connection...")
		if _, err := b.session.User("@me"); err != nil {
			log.Printf("Failed to connect to Discord API: %v. Retrying in 5 seconds...", err)
			time.Sleep(5 * time.Second)
			continue
		}
		log.Println("Successfully connected to Discord API")
		break
	}

	for {
		if err := b.session.Open(); err != nil {
			log.Printf("Error opening Discord session: %v. Retrying in 5 seconds...", err)
			time.Sleep(5 * time.Second)
			continue
		}
		log.Printf("Session opened successfully (Session ID: %s)", b.session.State.SessionID)
		break
	}

	// Register handlers
	b.session.AddHandler(b.handleReady)
	b.session.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		switch i.Type {
		case discordgo.InteractionApplicationCommand:
			b.handleCommand(s, i)
		case discordgo.InteractionMessageComponent:
			b.handleComponent(s, i)
		}
	})

	log.Println("Force re-registering commands for all guilds...")
	for _, guild := range b.session.State.Guilds {
		if err := b.registerGuildCommands(guild.ID); err != nil {
			log.Printf("Error registering commands for guild %s: %v", guild.ID, err)
		}
	}

	// Now add the guild create handler for future guilds
	b.session.AddHandler(b.handleGuildCreate)

	// Start the send-time scheduler
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		b.runScheduler(ctx)
	}()

	log.Println("Bot is now running. Press CTRL-C to exit.")

	<-ctx.Done()
	return b.Shutdown()
}

// Shutdown performs a graceful shutdown of the bot
func (b *Bot) Shutdown() error {
	log.Println("Initiating graceful shutdown...")

	// Ensure we only close the channel once
	b.mu.Lock()
	if b.isShutdown {
		b.mu.Unlock()
		return nil
	}
	b.isShutdown = true
	close(b.shutdownCh)
	b.mu.Unlock()

	log.Println("Waiting for active handlers to complete...")
	b.wg.Wait()

	log.Println("Closing Discord session...")
	if err := b.session.Close(); err != nil {
		return fmt.Errorf("error closing Discord session: %w", err)
	}

	log.Println("Closing database connection...")
	b.db.Close()

	log.Println("Shutdown completed successfully")
	return nil
}

func (b *Bot) handleReady(s *discordgo.Session, r *discordgo.Ready) {
	log.Printf("Bot is ready! Connected to %d guilds", len(r.Guilds))
}

func (b *Bot) handleGuildCreate(s *discordgo.Session, g *discordgo.GuildCreate) {
	log.Printf(formatLogMessage(g.ID, "Bot joined new guild", "BOT", g.Name))

	if err := b.registerGuildCommands(g.ID); err != nil {
		log.Printf(formatLogMessage(g.ID, fmt.Sprintf("Error registering commands: %v", err), "BOT", g.Name))
	}
}

func (b *Bot) handleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	// Add defer to catch panics with stack trace
	defer func() {
		if r := recover(); r != nil {
			var username string
			if i.Member != nil && i.Member.User != nil {
				username = i.Member.User.Username
			} else {
				username = "unknown"
			}

			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			log.Printf("Panic in command handler for user %s in guild %s:\nError: %v\nStack Trace:\n%s",
				username, i.GuildID, r, string(buf[:n]))

			respondWithError(s, i, "An internal error occurred")
		}
	}()

	commandName := i.ApplicationCommandData().Name

	// Every command operates on guild state
	if i.GuildID == "" {
		respondWithError(s, i, fmt.Sprintf("The `/%s` command can only be used in a server", commandName))
		return
	}

	switch commandName {
	case "register":
		b.handleRegister(s, i)
	case "unregister":
		b.handleUnregister(s, i)
	case "stats":
		b.handleStats(s, i)
	case "setup":
		b.handleSetup(s, i)
	case "schedule":
		b.handleSchedule(s, i)
	case "sendnow":
		b.handleSendNow(s, i)
	case "progress":
		b.handleProgress(s, i)
	default:
		log.Printf(formatLogMessage(i.GuildID, "Unknown command: "+commandName, "", ""))
		respondWithError(s, i, "Unknown command")
	}
}

func (b *Bot) handleComponent(s *discordgo.Session, i *discordgo.InteractionCreate) {
	customID := i.MessageComponentData().CustomID
	if strings.HasPrefix(customID, completionButtonPrefix) {
		b.handleCompletionButton(s, i, customID)
		return
	}
	log.Printf(formatLogMessage(i.GuildID, "Unknown component: "+customID, "", ""))
}
