package valueflow

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/randalmurphal/valueflow/pkg/valueflow/archive"
	"github.com/randalmurphal/valueflow/pkg/valueflow/observability"
)

// Conversation owns one value store and processes turns strictly in order.
// Later turns may reference any value a previous turn stored, which is why
// turns within one conversation are never processed concurrently.
// Independent conversations are fully isolated from each other.
type Conversation struct {
	id      string
	store   *Store
	logger  *slog.Logger
	metrics observability.MetricsRecorder
	spans   observability.SpanManager

	// order tracks insertion order of names for export.
	order []string
}

// ConversationOption configures a Conversation.
type ConversationOption func(*Conversation)

// WithID sets the conversation ID instead of generating one.
func WithID(id string) ConversationOption {
	return func(c *Conversation) {
		if id != "" {
			c.id = id
		}
	}
}

// WithLogger sets the logger. Nil disables logging.
func WithLogger(logger *slog.Logger) ConversationOption {
	return func(c *Conversation) {
		c.logger = logger
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m observability.MetricsRecorder) ConversationOption {
	return func(c *Conversation) {
		if m != nil {
			c.metrics = m
		}
	}
}

// WithSpans enables per-turn tracing spans.
func WithSpans(s observability.SpanManager) ConversationOption {
	return func(c *Conversation) {
		if s != nil {
			c.spans = s
		}
	}
}

// NewConversation creates a conversation with its own empty value store.
func NewConversation(opts ...ConversationOption) *Conversation {
	c := &Conversation{
		id:      uuid.New().String(),
		store:   NewStore(),
		metrics: observability.NoopMetrics{},
		spans:   observability.NoopSpanManager{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ID returns the conversation's unique identifier.
func (c *Conversation) ID() string {
	return c.id
}

// Store returns the conversation's value store.
func (c *Conversation) Store() *Store {
	return c.store
}

// RecordExtracted stores an externally produced value under name.
// Like all insertions, it is a no-op if the name is already present, so an
// extraction in a later turn can never clobber an earlier turn's result.
func (c *Conversation) RecordExtracted(name string, v ValueObject) {
	c.insert(name, v)
}

// EvaluateTurn validates and executes one turn's formula against the
// conversation's stored values, then stores the result under name.
//
// A failed turn stores nothing: any later formula referencing name will
// fail with an undefined-variable or not-found error rather than silently
// using a wrong value.
func (c *Conversation) EvaluateTurn(ctx context.Context, name, formulaText string) (ValueObject, error) {
	ctx, span := c.spans.StartTurnSpan(ctx, c.id, name)
	start := time.Now()

	result, err := c.evaluate(ctx, formulaText)
	c.metrics.RecordEvaluation(ctx, time.Since(start), err)
	c.spans.EndSpanWithError(span, err)

	if err != nil {
		observability.LogEvaluationError(c.logger, formulaText, err)
		return ValueObject{}, err
	}

	c.insert(name, result)
	observability.LogEvaluation(c.logger, formulaText, result.Scale.String(),
		float64(time.Since(start).Milliseconds()))
	return result, nil
}

func (c *Conversation) evaluate(_ context.Context, formulaText string) (ValueObject, error) {
	f, err := Validate(formulaText, c.store.Names())
	if err != nil {
		return ValueObject{}, err
	}

	bindings := make(map[string]ValueObject, len(f.Identifiers()))
	for _, ref := range f.Identifiers() {
		v, err := c.store.Get(ref)
		if err != nil {
			return ValueObject{}, err
		}
		bindings[ref] = v
	}

	return Execute(f, bindings)
}

// insert adds a value through PutIfAbsent, tracking insertion order for
// export.
func (c *Conversation) insert(name string, v ValueObject) {
	if c.store.Has(name) {
		return
	}
	c.store.PutIfAbsent(name, v)
	c.order = append(c.order, name)
}

// Export snapshots the conversation's values into an archive, in insertion
// order. The live store is unaffected; a conversation is either discarded
// or explicitly exported when it ends.
func (c *Conversation) Export(dst archive.Store) error {
	snap := c.store.Snapshot()
	names := make([]string, 0, len(snap))
	exported := make(map[string]bool, len(snap))
	for _, name := range c.order {
		if _, ok := snap[name]; ok && !exported[name] {
			names = append(names, name)
			exported[name] = true
		}
	}
	// Values placed directly into the store still export, after the
	// ordered ones.
	for _, name := range c.store.Names() {
		if !exported[name] {
			names = append(names, name)
		}
	}

	for _, name := range names {
		v := snap[name]
		record := archive.Record{
			Name:         name,
			Value:        v.Value,
			DisplayValue: v.DisplayValue,
			Scale:        v.Scale.String(),
			Source:       v.Source.String(),
			Description:  v.Description,
		}
		if err := dst.Save(c.id, record); err != nil {
			return err
		}
	}
	observability.LogExport(c.logger, c.id, len(names))
	return nil
}
