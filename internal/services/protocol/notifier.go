package protocol

import (
	"log/slog"

	"github.com/mcoot/ccpubsub/internal/model"
)

// LogNotifier reports protocol milestones to a logger
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates a LogNotifier
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger.With(slog.String("component", "notifier"))}
}

// AuthenticationRequired logs the login URL
func (n *LogNotifier) AuthenticationRequired(url string) {
	n.logger.Info("authentication required", slog.String("url", url))
}

// Subscribed logs the subscription outcome
func (n *LogNotifier) Subscribed(name string, result model.SubscriptionResultEvent) {
	n.logger.Info("subscribed",
		slog.String("name", name),
		slog.Any("success", result.Success),
		slog.Any("failure", result.Failure))
}

// EffectRequested logs an incoming effect request
func (n *LogNotifier) EffectRequested(effectName, requester string) {
	n.logger.Info("effect requested",
		slog.String("effect", effectName),
		slog.String("requester", requester))
}
