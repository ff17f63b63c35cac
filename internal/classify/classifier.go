package classify

import (
	"strings"
	"time"

	"git.home.luguber.info/inful/imageforge/internal/errors"
	"git.home.luguber.info/inful/imageforge/internal/history"
)

const (
	// correlationWindow is the trailing period scanned for repeated
	// same-kind failures.
	correlationWindow = 60 * time.Second

	// correlationThreshold is the same-kind count (including the record
	// being classified) that triggers escalation.
	correlationThreshold = 3

	// cascadeLookback / cascadeSample / cascadeDistinct define cascade
	// detection: >= cascadeDistinct distinct kinds among the last
	// cascadeSample of the most recent cascadeLookback records.
	cascadeLookback = 10
	cascadeSample   = 5
	cascadeDistinct = 3

	// maxEscalatedDelay caps the delay doubling applied on correlation.
	maxEscalatedDelay = 10 * time.Second

	// minRetryDelay is the floor enforced for retryable decisions.
	minRetryDelay = 1 * time.Second
)

// Config carries the caller-level classification settings.
type Config struct {
	// Enabled gates the full pipeline; when false only the degraded
	// decision (record kind/severity, not recoverable) is produced.
	Enabled bool

	// MaxRetries is the global retry ceiling. Zero disables recovery
	// entirely: every decision becomes non-recoverable.
	MaxRetries int

	// DefaultDelay raises the retry-delay floor above the built-in 1s
	// minimum. Zero or anything below the minimum keeps the minimum.
	DefaultDelay time.Duration
}

// Classifier runs the staged pipeline against a record and the recent
// history. It holds no per-record state; decisions are derived, never stored.
type Classifier struct {
	cfg  Config
	hist *history.Store
	now  func() time.Time
}

// New creates a classifier consulting the given history store.
func New(cfg Config, hist *history.Store) *Classifier {
	return &Classifier{
		cfg:  cfg,
		hist: hist,
		now:  time.Now,
	}
}

// WithClock overrides the time source (tests only).
func (c *Classifier) WithClock(now func() time.Time) *Classifier {
	c.now = now
	return c
}

// stage is one step of the pipeline. Stages run in declaration order and a
// later stage may overwrite anything an earlier one set.
type stage struct {
	name  string
	apply func(c *Classifier, rec *errors.ErrorRecord, d *Decision)
}

var stages = []stage{
	{"base", (*Classifier).applyBase},
	{"context", (*Classifier).applyContext},
	{"patterns", (*Classifier).applyPatterns},
	{"correlation", (*Classifier).applyCorrelation},
	{"finalize", (*Classifier).finalize},
}

// Classify produces the handling decision for a record. The record is
// expected to already be appended to history; correlation counts include it.
func (c *Classifier) Classify(rec *errors.ErrorRecord) Decision {
	d := Decision{
		Kind:     rec.Kind,
		Severity: rec.Severity,
		Strategy: StrategyNone,
	}

	if !c.cfg.Enabled {
		return d
	}

	for _, s := range stages {
		s.apply(c, rec, &d)
	}
	return d
}

// applyBase seeds the decision from the per-kind lookup table.
func (c *Classifier) applyBase(rec *errors.ErrorRecord, d *Decision) {
	rule, ok := baseRules[d.Kind]
	if !ok {
		rule = baseRules[errors.KindUnknown]
	}

	d.Recoverable = rule.recoverable
	d.Retryable = rule.recoverable
	d.Strategy = rule.strategy
	d.MaxRetries = rule.maxRetries
	d.RetryDelay = rule.delay
	d.UserAction = rule.userAction
	if rule.forceSeverity != "" {
		d.Severity = rule.forceSeverity
	}

	if d.Recoverable && d.MaxRetries > c.cfg.MaxRetries {
		d.MaxRetries = c.cfg.MaxRetries
	}
}

// applyContext adjusts the decision from structured details and message tone.
func (c *Classifier) applyContext(rec *errors.ErrorRecord, d *Decision) {
	if status, ok := rec.DetailInt(errors.DetailStatusCode); ok {
		switch {
		case status == 429:
			d.Recoverable = true
			d.Retryable = true
			d.Strategy = StrategyExponential
			d.RetryDelay = 5 * time.Second
		case status >= 500:
			d.Recoverable = true
			d.Retryable = true
			d.Strategy = StrategyBackoff
		case status >= 400:
			d.Recoverable = false
			d.Retryable = false
			d.Strategy = StrategyNone
		}
	}

	if code, ok := rec.DetailString(errors.DetailCode); ok {
		switch code {
		case codeConnRefused, codeHostNotFound:
			d.Kind = errors.KindNetwork
			d.Recoverable = true
			d.Retryable = true
			if d.Strategy == StrategyNone {
				d.Strategy = StrategyRetry
			}
		case codePermission:
			d.Kind = errors.KindFileWrite
			d.Severity = errors.SeverityMedium
		case codeNoSpace:
			d.Kind = errors.KindFileWrite
			d.Severity = errors.SeverityHigh
			d.Recoverable = false
			d.Retryable = false
			d.Strategy = StrategyNone
		}
	}

	if path, ok := rec.DetailString(errors.DetailPath); ok {
		lower := strings.ToLower(path)
		switch {
		case strings.Contains(lower, "config"):
			d.Kind = errors.KindConfigLoad
		case strings.Contains(lower, ".tmpl") || strings.Contains(lower, "template"):
			d.Kind = errors.KindTemplate
		}
	}

	if op, ok := rec.DetailString(errors.DetailOperation); ok {
		lower := strings.ToLower(op)
		switch {
		case strings.Contains(lower, "build"):
			d.Kind = errors.KindBuild
		case strings.Contains(lower, "push"), strings.Contains(lower, "pull"):
			d.Kind = errors.KindRegistry
		case strings.Contains(lower, "manifest"):
			d.Kind = errors.KindManifest
		}
	}

	// Message tone adjusts severity independently of the structured details.
	lower := strings.ToLower(rec.Message)
	switch {
	case containsAny(lower, "critical", "fatal", "emergency"):
		d.Severity = errors.SeverityCritical
	case containsAny(lower, "warning", "deprecated", "notice"):
		d.Severity = errors.SeverityLow
	}
}

// applyPatterns reclassifies from message text when no structured details
// were supplied. The rule list order fixes precedence.
func (c *Classifier) applyPatterns(rec *errors.ErrorRecord, d *Decision) {
	if hasStructuredDetails(rec) {
		return
	}
	if rule := matchPattern(rec.Message); rule != nil {
		rule.apply(d)
	}
}

// applyCorrelation escalates repeated same-kind failures and detects
// cascades across kinds. Cascade detection overrides everything stages 1-3
// decided.
func (c *Classifier) applyCorrelation(rec *errors.ErrorRecord, d *Decision) {
	now := c.now()

	if len(c.hist.RecentByKind(d.Kind, correlationWindow, now)) >= correlationThreshold {
		d.Severity = d.Severity.Escalate()
		if d.Retryable {
			if d.MaxRetries > 1 {
				d.MaxRetries--
			}
			d.RetryDelay *= 2
			if d.RetryDelay > maxEscalatedDelay {
				d.RetryDelay = maxEscalatedDelay
			}
		}
		d.UserAction += " This failure has repeated within the last minute; check for a persistent underlying cause."
	}

	recent := c.hist.LastKinds(cascadeLookback)
	if len(recent) > cascadeSample {
		recent = recent[len(recent)-cascadeSample:]
	}
	distinct := make(map[errors.Kind]struct{}, len(recent))
	for _, k := range recent {
		distinct[k] = struct{}{}
	}
	if len(distinct) >= cascadeDistinct {
		d.Cascade = true
		d.Severity = errors.SeverityHigh
		d.Recoverable = false
		d.Retryable = false
		d.Strategy = StrategyNone
		d.MaxRetries = 0
		d.UserAction = "Multiple distinct failure kinds occurred in quick succession; the system looks unstable. Stop and investigate before retrying anything."
	}
}

// finalize enforces decision consistency.
func (c *Classifier) finalize(rec *errors.ErrorRecord, d *Decision) {
	if c.cfg.MaxRetries == 0 {
		d.Recoverable = false
		d.Retryable = false
		d.Strategy = StrategyNone
		d.MaxRetries = 0
		return
	}

	if d.Recoverable {
		d.Retryable = true
		if d.MaxRetries < 1 {
			d.MaxRetries = 1
		}
		if d.MaxRetries > c.cfg.MaxRetries {
			d.MaxRetries = c.cfg.MaxRetries
		}
	}

	if d.Retryable {
		if d.MaxRetries < 1 {
			d.MaxRetries = 1
		}
		floor := minRetryDelay
		if c.cfg.DefaultDelay > floor {
			floor = c.cfg.DefaultDelay
		}
		if d.RetryDelay < floor {
			d.RetryDelay = floor
		}
		if d.Strategy == StrategyNone {
			d.Strategy = StrategyRetry
		}
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
