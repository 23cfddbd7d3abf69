// Package board implements the submission pipeline: validation, slash
// command dispatch, the slash guard, and capacity-bounded storage.
package board

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/lethe-board/lethe/internal/command"
	"github.com/lethe-board/lethe/internal/config"
	"github.com/lethe-board/lethe/internal/model"
	"github.com/lethe-board/lethe/internal/probe"
	"github.com/lethe-board/lethe/internal/session"
	"github.com/lethe-board/lethe/internal/store"
)

// Reason classifies why a submission or deletion was rejected.
type Reason string

const (
	ReasonTooShort      Reason = "too_short"
	ReasonTooLong       Reason = "too_long"
	ReasonDuplicate     Reason = "duplicate"
	ReasonInvalidSlash  Reason = "invalid_slash"
	ReasonNotPrivileged Reason = "not_privileged"
)

// Result is the terminal answer of a pipeline operation: either a
// redirect back to the listing, or a (message, status) rejection.
type Result struct {
	Redirect bool
	Message  string
	Status   int
	Reason   Reason
}

func redirect() Result {
	return Result{Redirect: true}
}

func reject(reason Reason, message string, status int) Result {
	return Result{Reason: reason, Message: message, Status: status}
}

// Pipeline routes submitted text through validation, command dispatch and
// storage against a single shared store.
type Pipeline struct {
	cfg      config.Config
	store    store.Store
	registry *command.Registry
	prober   probe.Prober
	log      *zap.Logger

	// mu makes check-evict-insert one atomic unit, so two submissions at
	// capacity-1 cannot both insert. External calls never run under it.
	mu sync.Mutex
}

// New builds a pipeline. logger may be nil.
func New(cfg config.Config, st store.Store, registry *command.Registry, prober probe.Prober, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		cfg:      cfg,
		store:    st,
		registry: registry,
		prober:   prober,
		log:      logger,
	}
}

// Submit runs rawText through the full pipeline. The returned error is
// reserved for unexpected failures (storage faults, strict-mode external
// call failures); every expected rejection arrives as a Result.
func (p *Pipeline) Submit(ctx context.Context, sess *session.Session, rawText string) (Result, error) {
	text := strings.TrimSpace(rawText)
	original := text

	if res, err := p.validate(ctx, text); err != nil {
		return Result{}, err
	} else if res != nil {
		return *res, nil
	}

	outcome, matched, err := p.registry.Dispatch(ctx, sess, text)
	if err != nil {
		return Result{}, fmt.Errorf("command dispatch: %w", err)
	}
	if matched {
		switch outcome.Kind {
		case command.KindRedirect:
			return redirect(), nil
		case command.KindRespond:
			return Result{Message: outcome.Message, Status: outcome.Status}, nil
		case command.KindCreateMemory:
			// Replacement text is stored without re-running validation.
			text = outcome.Text
		}
	}

	// Unrecognized or failed slash attempts must never be broadcast as
	// plain text, e.g. a mistyped "/login password".
	if strings.HasPrefix(text, "/") && text == original {
		return reject(ReasonInvalidSlash, p.cfg.Messages.InvalidSlash, http.StatusBadRequest), nil
	}

	// Probe before taking the store lock; command-produced image links
	// are thumbnailed identically to user-submitted ones.
	thumbnail := p.prober.Probe(ctx, text)

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.store.EvictOldestIfFull(ctx); err != nil {
		return Result{}, fmt.Errorf("evict: %w", err)
	}
	mem, err := p.store.Insert(ctx, text, thumbnail)
	if err != nil {
		return Result{}, fmt.Errorf("store memory: %w", err)
	}

	p.log.Debug("memory stored",
		zap.Int64("id", mem.ID),
		zap.Bool("thumbnail", mem.Thumbnail != nil))

	return redirect(), nil
}

// validate returns a rejection Result for invalid text, nil when the text
// may proceed. Validation runs before any command dispatch.
func (p *Pipeline) validate(ctx context.Context, text string) (*Result, error) {
	if text == "" {
		r := reject(ReasonTooShort, p.cfg.Messages.TooShort, http.StatusBadRequest)
		return &r, nil
	}
	if utf8.RuneCountInString(text) > p.cfg.MaxCharacters {
		r := reject(ReasonTooLong, p.cfg.Messages.TooLong, http.StatusBadRequest)
		return &r, nil
	}
	exists, err := p.store.ExistsWithText(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("duplicate check: %w", err)
	}
	if exists {
		r := reject(ReasonDuplicate, p.cfg.Messages.Unoriginal, http.StatusBadRequest)
		return &r, nil
	}
	return nil, nil
}

// List returns all memories in display order, ascending by creation time.
func (p *Pipeline) List(ctx context.Context) ([]model.Memory, error) {
	return p.store.ListOrderedByTime(ctx)
}

// Forget deletes a memory by id. Callers without the privileged flag are
// refused and the store is left untouched; deleting an id that is already
// gone succeeds silently.
func (p *Pipeline) Forget(ctx context.Context, sess *session.Session, id int64) (Result, error) {
	if sess == nil || !sess.Privileged() {
		return reject(ReasonNotPrivileged, "Unauthorized", http.StatusUnauthorized), nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.store.DeleteByID(ctx, id); err != nil {
		return Result{}, fmt.Errorf("forget %d: %w", id, err)
	}
	p.log.Debug("memory forgotten", zap.Int64("id", id))
	return redirect(), nil
}
