// Package classify derives handling decisions from normalized error records.
// The pipeline is an explicit ordered list of stages; later stages overwrite
// earlier ones, and the order of pattern rules determines precedence when a
// message matches several categories.
package classify

import (
	"time"

	"git.home.luguber.info/inful/imageforge/internal/errors"
)

// Strategy names how a recoverable failure should be waited out before the
// caller retries its own operation.
type Strategy string

const (
	StrategyNone        Strategy = "none"
	StrategyRetry       Strategy = "retry"
	StrategyBackoff     Strategy = "retry_with_backoff"
	StrategyExponential Strategy = "retry_with_exponential_backoff"
)

// Decision is the outcome of classification. It is recomputed on every call
// and never persisted; only the record enters history.
type Decision struct {
	Kind        errors.Kind
	Severity    errors.Severity
	Recoverable bool
	Strategy    Strategy
	Retryable   bool
	MaxRetries  int
	RetryDelay  time.Duration
	UserAction  string

	// Cascade reports that distinct failure kinds piled up in quick
	// succession and the decision was forced non-recoverable.
	Cascade bool
}

// baseRule supplies the per-kind defaults applied in the first stage.
type baseRule struct {
	recoverable bool
	strategy    Strategy
	maxRetries  int
	delay       time.Duration
	// forceSeverity overrides the record severity when non-empty.
	forceSeverity errors.Severity
	userAction    string
}

var baseRules = map[errors.Kind]baseRule{
	errors.KindNetwork: {
		recoverable: true, strategy: StrategyRetry, maxRetries: 3, delay: 2 * time.Second,
		userAction: "Check network connectivity and retry.",
	},
	errors.KindRegistry: {
		recoverable: true, strategy: StrategyBackoff, maxRetries: 5, delay: 1 * time.Second,
		userAction: "Verify registry credentials and availability.",
	},
	errors.KindDocker: {
		recoverable: true, strategy: StrategyRetry, maxRetries: 2, delay: 3 * time.Second,
		userAction: "Check that the Docker daemon is running and accessible.",
	},
	errors.KindConfigLoad: {
		strategy:   StrategyNone,
		userAction: "Fix the configuration file and run the command again.",
	},
	errors.KindValidation: {
		strategy:   StrategyNone,
		userAction: "Correct the invalid configuration values.",
	},
	errors.KindSecurity: {
		strategy: StrategyNone, forceSeverity: errors.SeverityHigh,
		userAction: "Resolve the security finding before publishing the image.",
	},
	errors.KindTemplate: {
		strategy:   StrategyNone,
		userAction: "Fix the Dockerfile template and regenerate.",
	},
	errors.KindFileWrite: {
		recoverable: true, strategy: StrategyRetry, maxRetries: 2, delay: 1 * time.Second,
		userAction: "Check filesystem permissions and free space.",
	},
	errors.KindBuild: {
		recoverable: true, strategy: StrategyRetry, maxRetries: 1, delay: 5 * time.Second,
		userAction: "Inspect the build log for the failing stage.",
	},
	errors.KindManifest: {
		recoverable: true, strategy: StrategyRetry, maxRetries: 2, delay: 2 * time.Second,
		userAction: "Verify all platform images exist before creating the manifest.",
	},
	errors.KindArgument: {
		strategy:   StrategyNone,
		userAction: "Run the command with --help for valid arguments.",
	},
	errors.KindTest: {
		strategy:   StrategyNone,
		userAction: "Inspect the container test output.",
	},
	errors.KindUnknown: {
		strategy: StrategyNone, forceSeverity: errors.SeverityHigh,
		userAction: "Re-run with --verbose and report the failure if it persists.",
	},
}
