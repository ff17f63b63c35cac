// Package errors provides the structured failure record (ErrorRecord) used by
// the classification and recovery engine, plus the fixed taxonomy of failure
// kinds and severities.
package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// Kind is the fixed category of a failure. Classification decisions key off it.
type Kind string

const (
	KindNetwork    Kind = "network"
	KindRegistry   Kind = "registry"
	KindDocker     Kind = "docker"
	KindConfigLoad Kind = "config_load"
	KindValidation Kind = "validation"
	KindSecurity   Kind = "security"
	KindTemplate   Kind = "template"
	KindFileWrite  Kind = "file_write"
	KindBuild      Kind = "build"
	KindManifest   Kind = "manifest"
	KindArgument   Kind = "argument"
	KindTest       Kind = "test"
	KindUnknown    Kind = "unknown"
)

// Kinds lists every kind in the taxonomy.
func Kinds() []Kind {
	return []Kind{
		KindNetwork, KindRegistry, KindDocker, KindConfigLoad, KindValidation,
		KindSecurity, KindTemplate, KindFileWrite, KindBuild, KindManifest,
		KindArgument, KindTest, KindUnknown,
	}
}

// Severity indicates how critical a failure is. Ordering: LOW < MEDIUM < HIGH < CRITICAL.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

var severityRank = map[Severity]int{
	SeverityLow:      0,
	SeverityMedium:   1,
	SeverityHigh:     2,
	SeverityCritical: 3,
}

// Rank returns the ordinal position of the severity; unknown values rank as MEDIUM.
func (s Severity) Rank() int {
	if r, ok := severityRank[s]; ok {
		return r
	}
	return severityRank[SeverityMedium]
}

// Escalate returns the severity one level up, capped at CRITICAL.
func (s Severity) Escalate() Severity {
	switch s {
	case SeverityLow:
		return SeverityMedium
	case SeverityMedium:
		return SeverityHigh
	default:
		return SeverityCritical
	}
}

// Recognized detail keys. Collaborators raising failures may set these in the
// record details (or the flat context map passed to the handler); the
// classification engine inspects them.
const (
	DetailStatusCode    = "status_code"
	DetailCode          = "code"
	DetailPath          = "path"
	DetailOperation     = "operation"
	DetailRegistry      = "registry"
	DetailArchitecture  = "architecture"
	DetailPlatform      = "platform"
	DetailOriginalError = "original_error"
)

// ErrorRecord is the normalized form of any failure raised into the engine.
// Once handed to the handler it must not be mutated; classification derives
// decisions from it, it never writes back.
type ErrorRecord struct {
	Kind        Kind           `json:"kind"`
	Severity    Severity       `json:"severity"`
	Message     string         `json:"message"`
	Details     map[string]any `json:"details,omitempty"`
	Suggestions []string       `json:"suggestions,omitempty"`
	Code        string         `json:"code,omitempty"`
	Timestamp   time.Time      `json:"timestamp"`
	Cause       error          `json:"-"`
}

// Error implements the error interface.
func (r *ErrorRecord) Error() string {
	if r.Cause != nil {
		return fmt.Sprintf("%s (%s): %s: %v", r.Kind, r.Severity, r.Message, r.Cause)
	}
	return fmt.Sprintf("%s (%s): %s", r.Kind, r.Severity, r.Message)
}

// Unwrap supports errors.Is / errors.As chains.
func (r *ErrorRecord) Unwrap() error {
	return r.Cause
}

// IdentityKey derives the deterministic key used for retry bookkeeping.
// It is not a deduplication key: two occurrences of the same failure at
// different times get distinct keys.
func (r *ErrorRecord) IdentityKey() string {
	return fmt.Sprintf("%s|%s|%d", r.Kind, r.Message, r.Timestamp.UnixNano())
}

// WithDetail adds a detail field to the record and returns it for chaining.
func (r *ErrorRecord) WithDetail(key string, value any) *ErrorRecord {
	if r.Details == nil {
		r.Details = make(map[string]any)
	}
	r.Details[key] = value
	return r
}

// WithSuggestions appends remediation hints in display order.
func (r *ErrorRecord) WithSuggestions(hints ...string) *ErrorRecord {
	r.Suggestions = append(r.Suggestions, hints...)
	return r
}

// WithCode sets the short machine code.
func (r *ErrorRecord) WithCode(code string) *ErrorRecord {
	r.Code = code
	return r
}

// DetailString returns a detail value as a string, with ok reporting presence.
func (r *ErrorRecord) DetailString(key string) (string, bool) {
	if r.Details == nil {
		return "", false
	}
	v, ok := r.Details[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// DetailInt returns a detail value as an int, tolerating the numeric types
// that survive JSON and YAML round-trips.
func (r *ErrorRecord) DetailInt(key string) (int, bool) {
	if r.Details == nil {
		return 0, false
	}
	switch v := r.Details[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

// New creates a new ErrorRecord with the current timestamp.
func New(kind Kind, severity Severity, message string) *ErrorRecord {
	return &ErrorRecord{
		Kind:      kind,
		Severity:  severity,
		Message:   message,
		Timestamp: time.Now(),
	}
}

// Wrap creates a new ErrorRecord that wraps an underlying cause.
func Wrap(cause error, kind Kind, severity Severity, message string) *ErrorRecord {
	r := New(kind, severity, message)
	r.Cause = cause
	return r
}

// Normalize turns any raised failure into an ErrorRecord. A failure that is
// already an ErrorRecord (anywhere in its chain) is used as-is; everything
// else is wrapped as UNKNOWN/MEDIUM with the caller's flat context map merged
// into the details.
func Normalize(failure error, context map[string]string) *ErrorRecord {
	if failure == nil {
		return nil
	}

	var rec *ErrorRecord
	if stderrors.As(failure, &rec) {
		return rec
	}

	rec = Wrap(failure, KindUnknown, SeverityMedium, failure.Error())
	rec.WithDetail(DetailOriginalError, failure.Error())
	for k, v := range context {
		rec.WithDetail(k, v)
	}
	return rec
}

// IsKind checks whether an error carries a record of the given kind.
func IsKind(err error, kind Kind) bool {
	var rec *ErrorRecord
	if stderrors.As(err, &rec) {
		return rec.Kind == kind
	}
	return false
}

// GetKind extracts the kind from an error, or KindUnknown for plain errors.
func GetKind(err error) Kind {
	var rec *ErrorRecord
	if stderrors.As(err, &rec) {
		return rec.Kind
	}
	return KindUnknown
}
