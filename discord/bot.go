// discord/bot.go

// Package discord is the inbound surface: it registers the /whitelist slash
// command on one guild and translates interactions into grant requests. It
// authenticates the requester and hands the service a stable Discord user ID.
package discord

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	logger "github.com/evspresso/walter/logging"
	"github.com/evspresso/walter/model"
	"github.com/evspresso/walter/service"
)

const commandName = "whitelist"

// requestTimeout bounds one grant workflow end to end; Discord drops
// un-deferred interaction responses after 3 seconds on its side anyway.
const requestTimeout = 30 * time.Second

type Bot struct {
	session          *discordgo.Session
	guildID          string
	whitelistService service.IWhitelistService
	command          *discordgo.ApplicationCommand
}

func NewBot(token, guildID string, whitelistService service.IWhitelistService) (*Bot, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create Discord session: %w", err)
	}

	bot := &Bot{
		session:          session,
		guildID:          guildID,
		whitelistService: whitelistService,
	}

	session.AddHandler(bot.onReady)
	session.AddHandler(bot.onInteraction)

	return bot, nil
}

// Start opens the gateway connection and registers the guild command.
func (b *Bot) Start() error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open Discord session: %w", err)
	}

	command, err := b.session.ApplicationCommandCreate(b.session.State.User.ID, b.guildID, &discordgo.ApplicationCommand{
		Name:        commandName,
		Description: "Add yourself to the minecraft server whitelist",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "minecraft_username",
				Description: "The Minecraft username to whitelist",
				Required:    true,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to register /%s command: %w", commandName, err)
	}
	b.command = command

	return nil
}

func (b *Bot) onReady(s *discordgo.Session, _ *discordgo.Ready) {
	if err := s.UpdateListeningStatus("/whitelist {minecraft_username}"); err != nil {
		logger.Warn("Failed to set presence", zap.Error(err))
	}
	logger.Info("Good morning, Walter is fully awake!")
}

func (b *Bot) onInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}
	data := i.ApplicationCommandData()
	if data.Name != commandName {
		return
	}

	user := interactionUser(i)
	if user == nil {
		logger.Warn("Interaction without a resolvable user")
		return
	}

	var playerName string
	for _, option := range data.Options {
		if option.Name == "minecraft_username" {
			playerName = option.StringValue()
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	status, err := b.whitelistService.AddToWhitelist(ctx, model.GrantRequest{
		RequesterID:   user.ID,
		RequesterName: user.String(),
		PlayerName:    playerName,
	})
	if err != nil {
		logger.Error("Whitelist request failed",
			zap.Error(err),
			zap.String("discordID", user.ID),
			zap.String("playerName", playerName))
	}

	reply := buildReply(status, playerName)
	if err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Content: reply},
	}); err != nil {
		logger.Error("Failed to respond to interaction",
			zap.Error(err),
			zap.String("discordID", user.ID))
	}
}

// interactionUser resolves the invoking user for guild and DM interactions.
func interactionUser(i *discordgo.InteractionCreate) *discordgo.User {
	if i.Member != nil {
		return i.Member.User
	}
	return i.User
}

// buildReply picks the one user-facing message for a terminal status. The
// server community is Norwegian, so the replies are too.
func buildReply(status service.Status, playerName string) string {
	switch status {
	case service.StatusDiscordAlreadyUsed:
		return ":red_square: :orange_book: :red_square:\nOops, det virker som om du allerede har brukt din whitelist token! Vennligst ta kontakt med en @server_admin om du mener det har oppstått en feil, eller om du vil whiteliste noen andre."
	case service.StatusAlreadyWhitelisted:
		return ":yellow_square::grey_question::yellow_square:\n Oops, det virker som om du allerede har blitt whitelistet på serveren.\nVennligst ta kontakt med en @server_admin om du mener det har oppstått en feil"
	case service.StatusMinecraftUserNotValid:
		return ":orange_square: :mag: :orange_square:\nOops, fant ingen Minecraft-spiller med det brukernavnet. Dobbeltsjekk stavemåten og prøv igjen."
	case service.StatusOK:
		return fmt.Sprintf(":green_circle: :book: :green_circle:\n%s har blitt lagt til whitelisten! Vennligst vent 30 sekunder sånn at whitelist oppdateringen kan vedtas.\nGood luck, have fun!", playerName)
	default:
		return ":red_circle: :tools: :red_circle:\nOi, noe gikk galt på serveren vår. Vennligst prøv igjen om litt, eller ta kontakt med en @server_admin."
	}
}

// Close disconnects from the gateway. The registered command is left in
// place so restarts don't re-sync it.
func (b *Bot) Close() {
	if err := b.session.Close(); err != nil {
		logger.Error("Error closing Discord session", zap.Error(err))
	} else {
		logger.Info("Discord session closed successfully")
	}
}
