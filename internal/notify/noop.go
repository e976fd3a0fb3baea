package notify

import (
	"context"
	"log/slog"
)

// NoOpNotifier implements Notifier by logging discarded announcements. It
// is used when Discord is not configured.
type NoOpNotifier struct {
	log *slog.Logger
}

// NewNoOpNotifier creates a notifier that discards announcements with a
// log message.
func NewNoOpNotifier(log *slog.Logger) *NoOpNotifier {
	return &NoOpNotifier{log: log}
}

// SendCardSaved logs and discards a single announcement.
func (n *NoOpNotifier) SendCardSaved(_ context.Context, card *CardPayload) error {
	n.log.Debug("notification discarded (no backend configured)",
		"player", card.Player,
		"estimate", card.Estimate,
	)
	return nil
}
