package announce

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"numonce/internal/game"
)

// Discord posts settlement summaries to a single channel. Sending is plain
// REST; no gateway connection is opened.
type Discord struct {
	session   *discordgo.Session
	channelID string
}

func NewDiscord(token, channelID string) (*Discord, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("discord session: %w", err)
	}
	return &Discord{session: session, channelID: channelID}, nil
}

func (d *Discord) Announce(ctx context.Context, out game.DailySettlement, top []game.SettlementResult) error {
	_, err := d.session.ChannelMessageSend(d.channelID, Summary(out, top), discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("discord announce: %w", err)
	}
	return nil
}

func (d *Discord) Close() error {
	return d.session.Close()
}
