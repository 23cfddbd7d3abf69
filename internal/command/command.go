// Package command implements the ordered slash-command registry.
//
// Submitted text beginning with "/name" is diverted from normal memory
// storage into the first command whose name matches. A command either
// produces replacement text to store as a memory, or a terminal response
// that bypasses storage entirely.
package command

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"unicode"

	"github.com/lethe-board/lethe/internal/session"
)

// OutcomeKind discriminates the Outcome variants.
type OutcomeKind int

const (
	// KindCreateMemory stores Outcome.Text as a memory.
	KindCreateMemory OutcomeKind = iota
	// KindRespond ends the request with (Message, Status).
	KindRespond
	// KindRedirect ends the request with a redirect to the listing.
	KindRedirect
)

// Outcome is the result of executing a matched command. Exactly one
// variant holds: replacement memory text, a terminal response, or a
// redirect.
type Outcome struct {
	Kind    OutcomeKind
	Text    string
	Message string
	Status  int
}

// CreateMemory yields replacement text to store as a memory.
func CreateMemory(text string) Outcome {
	return Outcome{Kind: KindCreateMemory, Text: text}
}

// Respond yields a terminal (message, status) response.
func Respond(message string, status int) Outcome {
	return Outcome{Kind: KindRespond, Message: message, Status: status}
}

// Redirect yields a terminal redirect-to-listing response.
func Redirect() Outcome {
	return Outcome{Kind: KindRedirect}
}

// Command is one named rule in the registry. MaxArgs < 0 means variadic.
type Command struct {
	Name    string
	MinArgs int
	MaxArgs int
	Run     func(ctx context.Context, sess *session.Session, args []string) (Outcome, error)
}

// Registry holds commands in fixed declared order; the first match wins.
type Registry struct {
	commands []Command
}

// NewRegistry builds a registry from commands in dispatch order.
func NewRegistry(commands ...Command) *Registry {
	return &Registry{commands: commands}
}

// Dispatch tries each command in order against the submitted text.
// matched is false when no command name matched, in which case the text
// should proceed to plain memory storage. A matched command with the
// wrong argument count yields a 400 outcome rather than a fault; errors
// from a command's execute step propagate unfiltered.
func (r *Registry) Dispatch(ctx context.Context, sess *session.Session, text string) (outcome Outcome, matched bool, err error) {
	lowered := strings.ToLower(strings.TrimSpace(text))

	for _, cmd := range r.commands {
		args, ok := cmd.parse(lowered)
		if !ok {
			continue
		}
		if len(args) < cmd.MinArgs || (cmd.MaxArgs >= 0 && len(args) > cmd.MaxArgs) {
			msg := fmt.Sprintf("/%s: incorrect arguments", cmd.Name)
			return Respond(msg, http.StatusBadRequest), true, nil
		}
		outcome, err = cmd.Run(ctx, sess, args)
		return outcome, true, err
	}

	return Outcome{}, false, nil
}

// parse matches "/name" followed by end of text or whitespace, returning
// the whitespace-split argument tokens. Matching and argument parsing
// both run on the lowered text.
func (c Command) parse(lowered string) ([]string, bool) {
	prefix := "/" + c.Name
	if !strings.HasPrefix(lowered, prefix) {
		return nil, false
	}
	rest := lowered[len(prefix):]
	if rest != "" && !unicode.IsSpace(rune(rest[0])) {
		return nil, false
	}
	return strings.Fields(rest), true
}
