package metrics

import "time"

// RecoveryOutcome labels the result of a recovery attempt.
type RecoveryOutcome string

const (
	RecoveryRecovered RecoveryOutcome = "recovered"
	RecoveryExhausted RecoveryOutcome = "exhausted"
	RecoverySkipped   RecoveryOutcome = "skipped"
)

// Recorder defines observability hooks for error handling. Implementations
// may forward to Prometheus, OpenTelemetry, etc. The NoopRecorder is the
// default when metrics are not configured.
type Recorder interface {
	IncError(kind, severity string)
	IncRecovery(outcome RecoveryOutcome)
	IncCascade()
	ObserveRecoveryDelay(d time.Duration)
}

// NoopRecorder is a Recorder that does nothing.
type NoopRecorder struct{}

func (NoopRecorder) IncError(string, string)            {}
func (NoopRecorder) IncRecovery(RecoveryOutcome)        {}
func (NoopRecorder) IncCascade()                        {}
func (NoopRecorder) ObserveRecoveryDelay(time.Duration) {}
