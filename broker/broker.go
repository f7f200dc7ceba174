package broker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultAskTimeout is how long the broker waits for the operator before
// answering Skip on their behalf.
const DefaultAskTimeout = 5 * time.Minute

// ErrQuestionPending is returned when a driver asks a second question while
// one is outstanding. This is a programming error in the driver: the
// contract allows exactly one pending question per run.
var ErrQuestionPending = errors.New("broker: a question is already pending")

// Question is one outstanding conflict awaiting an operator decision. The
// UI receives Questions from the broker's channel and answers exactly once.
type Question struct {
	// ID uniquely identifies the question within the run.
	ID string

	// Conflict is what the driver needs decided.
	Conflict Conflict

	answer chan Resolution
	once   sync.Once
}

// Answer records the operator's decision. It returns an error if the
// resolution is not a legal answer for the conflict kind; a second call is
// a no-op.
func (q *Question) Answer(r Resolution) error {
	if !r.ValidFor(q.Conflict) {
		return fmt.Errorf("broker: %s is not a valid resolution for %s", r.Kind, q.Conflict.Kind)
	}
	q.once.Do(func() {
		q.answer <- r
	})
	return nil
}

// Broker is the rendezvous between a driver goroutine and the operator's
// UI loop. One Broker serves one run.
type Broker struct {
	timeout   time.Duration
	logger    *slog.Logger
	questions chan *Question

	mu      sync.Mutex
	pending bool
}

// Option configures a Broker.
type Option func(*Broker)

// WithTimeout overrides the default ask timeout.
func WithTimeout(d time.Duration) Option {
	return func(b *Broker) {
		if d > 0 {
			b.timeout = d
		}
	}
}

// WithLogger sets the broker's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Broker) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// New creates a broker for a single run.
func New(opts ...Option) *Broker {
	b := &Broker{
		timeout: DefaultAskTimeout,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		// Buffered so posting a question never blocks the worker even if
		// the UI has not started draining yet.
		questions: make(chan *Question, 1),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Questions is the channel the UI drains to present operator dialogs.
// At most one question is in flight at a time.
func (b *Broker) Questions() <-chan *Question {
	return b.questions
}

// Ask posts a conflict and blocks until the operator answers, the timeout
// elapses, or ctx is cancelled. Timeout and cancellation both resolve to
// Skip. Calling Ask while a question is pending returns ErrQuestionPending.
func (b *Broker) Ask(ctx context.Context, c Conflict) (Resolution, error) {
	b.mu.Lock()
	if b.pending {
		b.mu.Unlock()
		return Resolution{}, ErrQuestionPending
	}
	b.pending = true
	b.mu.Unlock()

	defer func() {
		b.mu.Lock()
		b.pending = false
		b.mu.Unlock()
	}()

	q := &Question{
		ID:       uuid.NewString(),
		Conflict: c,
		answer:   make(chan Resolution, 1),
	}

	b.logger.Info("asking operator", "question", q.ID, "conflict", c.String())
	b.questions <- q

	timer := time.NewTimer(b.timeout)
	defer timer.Stop()

	select {
	case r := <-q.answer:
		b.logger.Info("operator answered", "question", q.ID, "resolution", r.Kind)
		return r, nil
	case <-timer.C:
		b.logger.Warn("operator did not answer in time, skipping", "question", q.ID)
		b.abandon(q)
		return Skip(), nil
	case <-ctx.Done():
		b.logger.Info("run cancelled with question pending, skipping", "question", q.ID)
		b.abandon(q)
		return Skip(), nil
	}
}

// abandon seals an unanswered question and pulls it back off the channel
// if the UI never picked it up, so the slot is free for the next ask.
func (b *Broker) abandon(q *Question) {
	q.once.Do(func() {})
	select {
	case <-b.questions:
	default:
	}
}
