package classify

import (
	"strings"
	"time"

	"git.home.luguber.info/inful/imageforge/internal/errors"
)

// System error codes recognized in record details.
const (
	codeConnRefused  = "ECONNREFUSED"
	codeHostNotFound = "ENOTFOUND"
	codePermission   = "EACCES"
	codeNoSpace      = "ENOSPC"
)

// patternRule reclassifies a record from its message text. Rules are applied
// in declaration order and the first match wins, so a message matching
// several categories resolves to the earliest rule.
type patternRule struct {
	name       string
	substrings []string
	apply      func(d *Decision)
}

var patternRules = []patternRule{
	{
		name:       "network",
		substrings: []string{"timeout", "timed out", "connection refused", "unreachable"},
		apply: func(d *Decision) {
			d.Kind = errors.KindNetwork
			d.Recoverable = true
			d.Retryable = true
			d.Strategy = StrategyBackoff
			d.RetryDelay = 3 * time.Second
			if d.MaxRetries == 0 {
				d.MaxRetries = baseRules[errors.KindNetwork].maxRetries
			}
		},
	},
	{
		name:       "docker",
		substrings: []string{"docker daemon", "not running", "permission denied"},
		apply: func(d *Decision) {
			d.Kind = errors.KindDocker
			d.Recoverable = true
			d.Retryable = true
			d.Strategy = StrategyRetry
			if d.MaxRetries == 0 {
				d.MaxRetries = baseRules[errors.KindDocker].maxRetries
			}
			if d.RetryDelay == 0 {
				d.RetryDelay = baseRules[errors.KindDocker].delay
			}
		},
	},
	{
		name:       "registry",
		substrings: []string{"unauthorized", "forbidden", "rate limit", "registry"},
		apply: func(d *Decision) {
			d.Kind = errors.KindRegistry
			d.Recoverable = true
			d.Retryable = true
			d.Strategy = StrategyExponential
			if d.MaxRetries == 0 {
				d.MaxRetries = baseRules[errors.KindRegistry].maxRetries
			}
			if d.RetryDelay == 0 {
				d.RetryDelay = baseRules[errors.KindRegistry].delay
			}
		},
	},
	{
		name:       "filesystem",
		substrings: []string{"no space", "disk full", "quota exceeded"},
		apply: func(d *Decision) {
			d.Kind = errors.KindFileWrite
			d.Severity = errors.SeverityHigh
			d.Recoverable = false
			d.Retryable = false
			d.Strategy = StrategyNone
			d.MaxRetries = 0
			d.RetryDelay = 0
		},
	},
	{
		name:       "security",
		substrings: []string{"vulnerability", "insecure", "malicious"},
		apply: func(d *Decision) {
			d.Kind = errors.KindSecurity
			d.Severity = errors.SeverityHigh
			d.Recoverable = false
			d.Retryable = false
			d.Strategy = StrategyNone
			d.MaxRetries = 0
			d.RetryDelay = 0
		},
	},
	{
		name:       "config",
		substrings: []string{"invalid config", "missing required", "syntax error"},
		apply: func(d *Decision) {
			d.Kind = errors.KindConfigLoad
			d.Recoverable = false
			d.Retryable = false
			d.Strategy = StrategyNone
			d.MaxRetries = 0
			d.RetryDelay = 0
		},
	},
}

// matchPattern returns the first rule whose substrings match the message
// (case-insensitive), or nil.
func matchPattern(message string) *patternRule {
	lower := strings.ToLower(message)
	for i := range patternRules {
		for _, sub := range patternRules[i].substrings {
			if strings.Contains(lower, sub) {
				return &patternRules[i]
			}
		}
	}
	return nil
}

// hasStructuredDetails reports whether the record carries any of the detail
// keys the context stage acts on; pattern matching is skipped for those.
func hasStructuredDetails(rec *errors.ErrorRecord) bool {
	if rec.Details == nil {
		return false
	}
	for _, key := range []string{
		errors.DetailStatusCode,
		errors.DetailCode,
		errors.DetailPath,
		errors.DetailOperation,
	} {
		if _, ok := rec.Details[key]; ok {
			return true
		}
	}
	return false
}
