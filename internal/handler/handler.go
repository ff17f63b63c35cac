// Package handler ties normalization, history, classification, and recovery
// together behind a single entry point. Commands report failures here and
// either get them back (give up) or get nil (retry is worthwhile).
package handler

import (
	"io"
	"log/slog"
	"os"
	"time"

	"git.home.luguber.info/inful/imageforge/internal/classify"
	"git.home.luguber.info/inful/imageforge/internal/errors"
	"git.home.luguber.info/inful/imageforge/internal/history"
	"git.home.luguber.info/inful/imageforge/internal/metrics"
	"git.home.luguber.info/inful/imageforge/internal/recovery"
	"git.home.luguber.info/inful/imageforge/internal/report"
)

// Options configures a Facade. The zero value is not usable; call
// DefaultOptions and override as needed.
type Options struct {
	MaxRetries                 int
	RetryDelay                 int // milliseconds; floor for classified retry delays
	MaxHistory                 int
	EnableRecovery             bool
	EnableClassification       bool
	EnableUserFriendlyMessages bool
	EnableDiagnostics          bool
}

// DefaultOptions returns the stock configuration.
func DefaultOptions() Options {
	return Options{
		MaxRetries:                 3,
		RetryDelay:                 1000,
		MaxHistory:                 100,
		EnableRecovery:             true,
		EnableClassification:       true,
		EnableUserFriendlyMessages: true,
		EnableDiagnostics:          true,
	}
}

// ErrorSink receives the normalized record and its decision after every
// handle call. Sink failures are logged, never propagated.
type ErrorSink interface {
	Consume(rec *errors.ErrorRecord, d classify.Decision) error
}

// Facade is the single entry point for failure handling.
type Facade struct {
	opts       Options
	hist       *history.Store
	classifier *classify.Classifier
	executor   *recovery.Executor
	formatter  *report.Formatter
	logger     *slog.Logger
	recorder   metrics.Recorder
	sinks      []ErrorSink
	out        io.Writer
}

// New constructs a Facade with its own history store and executor.
func New(opts Options, logger *slog.Logger) *Facade {
	if logger == nil {
		logger = slog.Default()
	}
	hist := history.NewStore(opts.MaxHistory)
	return &Facade{
		opts: opts,
		hist: hist,
		classifier: classify.New(classify.Config{
			Enabled:      opts.EnableClassification,
			MaxRetries:   opts.MaxRetries,
			DefaultDelay: time.Duration(opts.RetryDelay) * time.Millisecond,
		}, hist),
		executor:  recovery.NewExecutor(),
		formatter: report.NewFormatter(opts.EnableUserFriendlyMessages),
		logger:    logger,
		recorder:  metrics.NoopRecorder{},
		out:       os.Stderr,
	}
}

// WithRecorder sets the metrics recorder.
func (f *Facade) WithRecorder(r metrics.Recorder) *Facade {
	if r != nil {
		f.recorder = r
	}
	return f
}

// WithSink adds a side channel consuming every handled failure.
func (f *Facade) WithSink(s ErrorSink) *Facade {
	if s != nil {
		f.sinks = append(f.sinks, s)
	}
	return f
}

// WithOutput redirects diagnostic reports (tests only).
func (f *Facade) WithOutput(w io.Writer) *Facade {
	f.out = w
	return f
}

// WithExecutor replaces the recovery executor (tests only).
func (f *Facade) WithExecutor(e *recovery.Executor) *Facade {
	f.executor = e
	return f
}

// Handle processes one failure. It returns nil when recovery succeeded and
// the caller should retry its operation; otherwise it returns the normalized
// record for the caller to propagate.
func (f *Facade) Handle(failure error, context map[string]string) error {
	if failure == nil {
		return nil
	}

	rec := errors.Normalize(failure, context)
	f.hist.Append(rec)

	d := f.classifier.Classify(rec)

	f.recorder.IncError(string(d.Kind), string(d.Severity))
	if d.Cascade {
		f.recorder.IncCascade()
	}
	f.feedSinks(rec, d)

	if f.opts.EnableDiagnostics {
		if _, err := io.WriteString(f.out, f.formatter.Format(rec, d)); err != nil {
			f.logger.Warn("failed to write diagnostic report", "error", err)
		}
	}

	if !f.opts.EnableRecovery || !d.Recoverable {
		f.recorder.IncRecovery(metrics.RecoverySkipped)
		return rec
	}

	if f.executor.Attempt(rec.IdentityKey(), d) {
		f.recorder.IncRecovery(metrics.RecoveryRecovered)
		f.recorder.ObserveRecoveryDelay(d.RetryDelay)
		f.logger.Info("recovered from failure",
			"kind", d.Kind,
			"attempt", f.executor.Attempts(rec.IdentityKey()),
			"max_retries", d.MaxRetries)
		return nil
	}

	f.recorder.IncRecovery(metrics.RecoveryExhausted)
	f.logger.Warn("retry budget exhausted", "kind", d.Kind, "max_retries", d.MaxRetries)
	return rec
}

// feedSinks forwards the failure to side channels. A broken sink never masks
// the failure being handled.
func (f *Facade) feedSinks(rec *errors.ErrorRecord, d classify.Decision) {
	for _, s := range f.sinks {
		if err := s.Consume(rec, d); err != nil {
			f.logger.Warn("error sink failed", "error", err)
		}
	}
}

// History returns an ordered snapshot of handled failures.
func (f *Facade) History() []*errors.ErrorRecord {
	return f.hist.Snapshot()
}

// ClearHistory empties the history and resets all retry budgets.
func (f *Facade) ClearHistory() {
	f.hist.Clear()
	f.executor.Clear()
}

// Statistics aggregates the current history.
func (f *Facade) Statistics() history.Statistics {
	return f.hist.Stats()
}
