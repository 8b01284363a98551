// Package alert formats and dispatches match notifications to clients.
package alert

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hoekwacht/hoekwacht/internal/model"
	"github.com/hoekwacht/hoekwacht/internal/service"
)

// maxPhotosInMessage caps how many photo links one alert carries.
const maxPhotosInMessage = 3

// Dispatcher implements service.Notifier. Channel choice is a business
// rule: email when the client has an address, WhatsApp as fallback, and a
// silent skip when the client is unreachable.
type Dispatcher struct {
	email    service.EmailSender
	whatsapp service.MessageSender
}

// NewDispatcher creates a notifier over the given delivery channels.
func NewDispatcher(email service.EmailSender, whatsapp service.MessageSender) *Dispatcher {
	return &Dispatcher{
		email:    email,
		whatsapp: whatsapp,
	}
}

// Notify sends one alert about a newly discovered match.
func (d *Dispatcher) Notify(ctx context.Context, client *model.Client, result *model.MatchResult) error {
	if client == nil || result == nil {
		return nil
	}

	body := FormatMessage(result)

	switch {
	case client.HasEmail() && d.email != nil:
		return d.email.SendEmail(ctx, client.Email, "New match found", body)
	case client.HasWhatsApp() && d.whatsapp != nil:
		return d.whatsapp.SendMessage(ctx, client.WhatsApp, body)
	default:
		slog.Debug("Client has no notification channel, skipping",
			"client_id", client.ID,
			"result_id", result.ID)
		return nil
	}
}

// FormatMessage builds the alert body from a match result snapshot. Lines
// for absent fields are omitted.
func FormatMessage(result *model.MatchResult) string {
	pieces := []string{
		fmt.Sprintf("Match: %.1f%%", result.MatchPercent),
	}
	if result.Price != nil {
		pieces = append(pieces, fmt.Sprintf("Price: €%d", *result.Price))
	}
	if result.DistanceKM != nil {
		pieces = append(pieces, fmt.Sprintf("Distance: %d km", *result.DistanceKM))
	}
	pieces = append(pieces, "Link: "+result.URL)
	if len(result.PhotoURLs) > 0 {
		photos := result.PhotoURLs
		if len(photos) > maxPhotosInMessage {
			photos = photos[:maxPhotosInMessage]
		}
		pieces = append(pieces, "Photos: "+strings.Join(photos, " | "))
	}
	return strings.Join(pieces, "\n")
}
