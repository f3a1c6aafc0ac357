// Package chat relays user questions plus selected document context to a
// hosted chat completion endpoint.
package chat

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/dgallion1/deckchat/internal/selector"
)

// ErrorPrefix starts every reply that reports a failed call.
const ErrorPrefix = "Error: "

// Options configures the completion request.
type Options struct {
	Model       string
	MaxTokens   int
	Temperature float32
	// Timeout bounds a single remote call. Zero leaves it to the context.
	Timeout time.Duration
	// MaxRetries is how many times a rate-limited or server-failed call is
	// repeated.
	MaxRetries int
}

func DefaultOptions() Options {
	return Options{
		Model:       "gpt-3.5-turbo",
		MaxTokens:   1500,
		Temperature: 0.7,
		MaxRetries:  2,
	}
}

// Orchestrator builds prompts from selected context and calls the Completer.
type Orchestrator struct {
	completer Completer
	selector  *selector.Selector
	opts      Options
	stats     *LLMStats
	backoff   func(attempt int) time.Duration
	log       *slog.Logger
}

func NewOrchestrator(c Completer, sel *selector.Selector, opts Options, log *slog.Logger) *Orchestrator {
	def := DefaultOptions()
	if opts.Model == "" {
		opts.Model = def.Model
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = def.MaxTokens
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.MaxRetries > MaxRetriesLimit {
		opts.MaxRetries = MaxRetriesLimit
	}
	if sel == nil {
		sel = selector.New(selector.DefaultConfig())
	}
	if log == nil {
		log = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &Orchestrator{
		completer: c,
		selector:  sel,
		opts:      opts,
		stats:     NewLLMStats(time.Hour),
		backoff:   Backoff,
		log:       log,
	}
}

// Respond returns the assistant's reply, or ErrorPrefix followed by the
// failure description. It never returns an error.
func (o *Orchestrator) Respond(ctx context.Context, credential, userMessage, document string) string {
	reply, err := o.Complete(ctx, credential, userMessage, document)
	if err != nil {
		return ErrorPrefix + err.Error()
	}
	return reply
}

// Complete is Respond with the classified error exposed.
func (o *Orchestrator) Complete(ctx context.Context, credential, userMessage, document string) (string, error) {
	if credential == "" {
		return "", fmt.Errorf("%w: no API key provided", ErrCredentialInvalid)
	}

	selection, reduced := document, false
	if document != "" && !o.selector.WithinBudget(document) {
		selection, reduced = o.selector.Select(document, userMessage), true
	}
	req := Request{
		Model:       o.opts.Model,
		System:      BuildSystemPrompt(selection, userMessage, reduced),
		User:        userMessage,
		MaxTokens:   o.opts.MaxTokens,
		Temperature: o.opts.Temperature,
	}

	for attempt := 0; ; attempt++ {
		reply, err := o.call(ctx, credential, req)
		if err == nil {
			o.log.Info("chat completion",
				"model", req.Model,
				"reduced", reduced,
				"prompt_chars", len(req.System),
				"reply_chars", len(reply),
				"attempt", attempt+1,
			)
			return reply, nil
		}
		if attempt >= o.opts.MaxRetries || !IsRetryable(err) {
			err = Classify(err)
			o.log.Warn("chat completion failed", "model", req.Model, "reduced", reduced, "attempt", attempt+1, "error", err)
			return "", err
		}
		delay := o.backoff(attempt)
		o.log.Warn("chat completion retrying", "attempt", attempt+1, "delay", delay.String(), "error", err)
		if serr := sleep(ctx, delay); serr != nil {
			return "", Classify(err)
		}
	}
}

// call makes one timed remote call and records its latency.
func (o *Orchestrator) call(ctx context.Context, credential string, req Request) (string, error) {
	if o.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.opts.Timeout)
		defer cancel()
	}

	start := time.Now()
	reply, err := o.completer.Complete(ctx, credential, req)
	elapsed := time.Since(start).Milliseconds()
	if err != nil {
		o.stats.RecordFailure(elapsed)
		o.log.Debug("chat call failed", "model", req.Model, "duration_ms", elapsed, "error", err)
		return "", err
	}
	o.stats.Record(elapsed)
	o.log.Debug("chat call", "model", req.Model, "duration_ms", elapsed)
	return reply, nil
}

// Verify probes the endpoint with credential.
func (o *Orchestrator) Verify(ctx context.Context, credential string) error {
	if credential == "" {
		return fmt.Errorf("%w: no API key provided", ErrCredentialInvalid)
	}
	if o.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.opts.Timeout)
		defer cancel()
	}
	return Classify(o.completer.Verify(ctx, credential))
}

func (o *Orchestrator) Model() string { return o.opts.Model }

func (o *Orchestrator) Stats() StatsSnapshot { return o.stats.Snapshot() }
