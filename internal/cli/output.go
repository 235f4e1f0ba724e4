package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	stdout io.Writer
	stderr io.Writer
}

// NewOutput creates a new Output formatter
func NewOutput(format string, stdout, stderr io.Writer) *Output {
	return &Output{format: format, stdout: stdout, stderr: stderr}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		_, _ = fmt.Fprintln(o.stderr, string(data))
	} else {
		_, _ = fmt.Fprintf(o.stderr, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		_, _ = fmt.Fprintln(o.stdout, string(data))
	} else {
		_, _ = fmt.Fprintln(o.stdout, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.stdout)
	if _, ok := data.(Event); !ok {
		enc.SetIndent("", "  ")
	}
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case Event:
		_, _ = fmt.Fprintln(o.stdout, v.Message)
	case CredentialsView:
		o.printCredentials(v)
	case SessionResult:
		o.printSessionResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// Event is a protocol milestone reported while running. JSON output
// emits one compact object per line.
type Event struct {
	Event   string            `json:"event"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// CredentialsView describes the stored login token
type CredentialsView struct {
	SubjectID   string    `json:"ccUID"`
	Name        string    `json:"name"`
	ProfileType string    `json:"profileType"`
	OriginID    string    `json:"originID"`
	Roles       []string  `json:"roles"`
	ExpiresAt   time.Time `json:"expiresAt"`
	Expired     bool      `json:"expired"`
	Topic       string    `json:"topic"`
}

// SessionResult describes a started game session
type SessionResult struct {
	GameSessionID string `json:"gameSessionID"`
	GamePackID    string `json:"gamePackID"`
}

func (o *Output) printCredentials(c CredentialsView) {
	_, _ = fmt.Fprintf(o.stdout, "User: %s (%s)\n", c.Name, c.SubjectID)
	_, _ = fmt.Fprintf(o.stdout, "Profile: %s (%s)\n", c.ProfileType, c.OriginID)
	_, _ = fmt.Fprintf(o.stdout, "Topic: %s\n", c.Topic)
	if len(c.Roles) > 0 {
		_, _ = fmt.Fprintf(o.stdout, "Roles: %s\n", strings.Join(c.Roles, ", "))
	}
	if c.ExpiresAt.IsZero() {
		_, _ = fmt.Fprintln(o.stdout, "Expires: never")
		return
	}
	expired := ""
	if c.Expired {
		expired = " [expired]"
	}
	_, _ = fmt.Fprintf(o.stdout, "Expires: %s%s\n", c.ExpiresAt.Format(time.RFC3339), expired)
}

func (o *Output) printSessionResult(s SessionResult) {
	_, _ = fmt.Fprintf(o.stdout, "Game session started: %s\n", s.GameSessionID)
	_, _ = fmt.Fprintf(o.stdout, "Game pack: %s\n", s.GamePackID)
}
