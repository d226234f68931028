package chat

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/diogo/geminichat/internal/api"
	apierrors "github.com/diogo/geminichat/internal/errors"
	"github.com/diogo/geminichat/internal/models"
)

// Attempt records one try against one model
type Attempt struct {
	Model   string
	Err     error
	Elapsed time.Duration
}

// Result is the outcome of a dispatch
type Result struct {
	Text     string
	Model    string // model that answered; empty when Fallback is set
	Attempts []Attempt
	Fallback bool // all models failed and Text is the apology
}

// Err summarises the failed attempts when every model failed
func (r Result) Err() error {
	if !r.Fallback {
		return nil
	}
	errs := make([]error, 0, len(r.Attempts)+1)
	errs = append(errs, apierrors.ErrAllModelsFailed)
	for _, a := range r.Attempts {
		if a.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", a.Model, a.Err))
		}
	}
	return errors.Join(errs...)
}

// Dispatcher sends a prompt through the model chain, first answer wins
type Dispatcher struct {
	gen     api.Generator
	models  []string
	apology string
	logger  zerolog.Logger
}

// DispatcherOption configures a Dispatcher
type DispatcherOption func(*Dispatcher)

// WithModels overrides the fallback chain; an empty list keeps the default
func WithModels(chain []string) DispatcherOption {
	return func(d *Dispatcher) {
		if len(chain) > 0 {
			d.models = append([]string(nil), chain...)
		}
	}
}

// WithApology overrides the text shown when every model fails
func WithApology(text string) DispatcherOption {
	return func(d *Dispatcher) {
		if text != "" {
			d.apology = text
		}
	}
}

// WithLogger sets the dispatcher logger
func WithLogger(logger zerolog.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

// NewDispatcher creates a Dispatcher over gen using the default chain
func NewDispatcher(gen api.Generator, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		gen:     gen,
		models:  models.DefaultModels(),
		apology: models.ApologyText,
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Models returns a copy of the fallback chain
func (d *Dispatcher) Models() []string {
	return append([]string(nil), d.models...)
}

// Apology returns the exhaustion text
func (d *Dispatcher) Apology() string {
	return d.apology
}

// Dispatch tries each model in order and returns the first non-empty text.
// Failures are logged, never returned; exhaustion yields the apology.
func (d *Dispatcher) Dispatch(ctx context.Context, prompt string) Result {
	var result Result

	for _, model := range d.models {
		if err := ctx.Err(); err != nil {
			d.logger.Warn().Err(err).Str("model", model).Msg("dispatch cancelled")
			break
		}

		d.logger.Info().Str("model", model).Msg("attempting model")
		start := time.Now()
		out, err := d.gen.GenerateContent(ctx, model, prompt)
		elapsed := time.Since(start)

		if err == nil && (out == nil || out.Text == "") {
			err = apierrors.NewEmptyResponseError(model, "")
		}
		if err != nil {
			d.logger.Warn().Err(err).Str("model", model).Dur("elapsed", elapsed).Msg("model failed")
			result.Attempts = append(result.Attempts, Attempt{Model: model, Err: err, Elapsed: elapsed})
			continue
		}

		result.Attempts = append(result.Attempts, Attempt{Model: model, Elapsed: elapsed})
		result.Text = out.Text
		result.Model = model
		d.logger.Info().Str("model", model).Dur("elapsed", elapsed).Msg("model answered")
		return result
	}

	d.logger.Error().Int("attempts", len(result.Attempts)).Msg("all models failed")
	result.Text = d.apology
	result.Fallback = true
	return result
}
