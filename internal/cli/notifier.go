package cli

import (
	"fmt"
	"strings"

	"github.com/mcoot/ccpubsub/internal/model"
	"github.com/mcoot/ccpubsub/internal/services/protocol"
)

// ConsoleNotifier prints protocol milestones for the operator
type ConsoleNotifier struct {
	out *Output
}

var _ protocol.Notifier = (*ConsoleNotifier)(nil)

// NewConsoleNotifier creates a ConsoleNotifier
func NewConsoleNotifier(out *Output) *ConsoleNotifier {
	return &ConsoleNotifier{out: out}
}

func (n *ConsoleNotifier) AuthenticationRequired(url string) {
	n.out.Print(Event{
		Event:   "authentication-required",
		Message: "Please authenticate on " + url,
		Fields:  map[string]string{"url": url},
	})
}

func (n *ConsoleNotifier) Subscribed(name string, result model.SubscriptionResultEvent) {
	fields := map[string]string{
		"name":    name,
		"success": strings.Join(result.Success, ","),
	}
	if len(result.Failure) > 0 {
		fields["failure"] = strings.Join(result.Failure, ",")
	}
	n.out.Print(Event{
		Event:   "subscribed",
		Message: "Connected to WebSocket as " + name,
		Fields:  fields,
	})
}

func (n *ConsoleNotifier) EffectRequested(effectName, requester string) {
	n.out.Print(Event{
		Event:   "effect-request",
		Message: fmt.Sprintf("Accepting request for effect %s by %s", effectName, requester),
		Fields:  map[string]string{"effect": effectName, "requester": requester},
	})
}
