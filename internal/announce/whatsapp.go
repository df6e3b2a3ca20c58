package announce

import (
	"context"
	"fmt"
	"os"

	_ "github.com/lib/pq"
	"github.com/mdp/qrterminal/v3"
	"go.mau.fi/whatsmeow"
	waE2E "go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/store/sqlstore"
	"go.mau.fi/whatsmeow/types"
	waLog "go.mau.fi/whatsmeow/util/log"
	"google.golang.org/protobuf/proto"

	"numonce/internal/game"
)

// WhatsApp posts settlement summaries to a group chat. Device state lives in a
// Postgres-backed whatsmeow store; first run prints a pairing QR code to the
// terminal and blocks until the operator scans it.
type WhatsApp struct {
	client *whatsmeow.Client
	group  types.JID
}

func NewWhatsApp(ctx context.Context, storeDSN, groupJID string) (*WhatsApp, error) {
	group, err := types.ParseJID(groupJID)
	if err != nil {
		return nil, fmt.Errorf("parse group jid %q: %w", groupJID, err)
	}

	container, err := sqlstore.New(ctx, "postgres", storeDSN, waLog.Noop)
	if err != nil {
		return nil, fmt.Errorf("whatsapp store: %w", err)
	}
	device, err := container.GetFirstDevice(ctx)
	if err != nil {
		return nil, fmt.Errorf("whatsapp device: %w", err)
	}
	client := whatsmeow.NewClient(device, waLog.Noop)

	if client.Store.ID == nil {
		qrChan, err := client.GetQRChannel(ctx)
		if err != nil {
			return nil, fmt.Errorf("whatsapp qr channel: %w", err)
		}
		if err := client.Connect(); err != nil {
			return nil, fmt.Errorf("whatsapp connect: %w", err)
		}
		for evt := range qrChan {
			if evt.Event == "code" {
				qrterminal.GenerateHalfBlock(evt.Code, qrterminal.L, os.Stdout)
				continue
			}
			if evt.Event != whatsmeow.QRChannelSuccess.Event {
				return nil, fmt.Errorf("whatsapp pairing: %s", evt.Event)
			}
		}
	} else if err := client.Connect(); err != nil {
		return nil, fmt.Errorf("whatsapp connect: %w", err)
	}

	return &WhatsApp{client: client, group: group}, nil
}

func (w *WhatsApp) Announce(ctx context.Context, out game.DailySettlement, top []game.SettlementResult) error {
	_, err := w.client.SendMessage(ctx, w.group, &waE2E.Message{
		Conversation: proto.String(Summary(out, top)),
	})
	if err != nil {
		return fmt.Errorf("whatsapp announce: %w", err)
	}
	return nil
}

func (w *WhatsApp) Close() error {
	w.client.Disconnect()
	return nil
}
