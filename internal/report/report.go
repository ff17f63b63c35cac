// Package report renders classified failures as human-readable diagnostics.
package report

import (
	"fmt"
	"strings"
	"time"

	"git.home.luguber.info/inful/imageforge/internal/classify"
	"git.home.luguber.info/inful/imageforge/internal/errors"
)

// friendlyMessages maps each kind to the lead sentence used when
// user-friendly output is enabled.
var friendlyMessages = map[errors.Kind]string{
	errors.KindNetwork:    "A network problem interrupted the operation.",
	errors.KindRegistry:   "The container registry rejected the request.",
	errors.KindDocker:     "Docker is not responding as expected.",
	errors.KindConfigLoad: "The configuration file could not be loaded.",
	errors.KindValidation: "The configuration contains invalid values.",
	errors.KindSecurity:   "A security problem blocks publishing this image.",
	errors.KindTemplate:   "The Dockerfile template could not be processed.",
	errors.KindFileWrite:  "A file could not be written.",
	errors.KindBuild:      "The image build failed.",
	errors.KindManifest:   "The multi-arch manifest could not be assembled.",
	errors.KindArgument:   "The command was called with invalid arguments.",
	errors.KindTest:       "The container test run failed.",
	errors.KindUnknown:    "An unexpected failure occurred.",
}

// contextFields are the detail keys rendered on the context line, in a fixed
// order so reports are stable.
var contextFields = []struct {
	key   string
	label string
}{
	{errors.DetailOperation, "operation"},
	{errors.DetailRegistry, "registry"},
	{errors.DetailPath, "path"},
	{errors.DetailStatusCode, "status"},
	{errors.DetailCode, "code"},
	{errors.DetailArchitecture, "arch"},
	{errors.DetailPlatform, "platform"},
}

// Formatter turns a record plus its decision into report text.
type Formatter struct {
	userFriendly bool
}

// NewFormatter returns a formatter. When userFriendly is false the raw
// record message leads the report instead of the per-kind sentence.
func NewFormatter(userFriendly bool) *Formatter {
	return &Formatter{userFriendly: userFriendly}
}

// Format renders the full diagnostic report.
func (f *Formatter) Format(rec *errors.ErrorRecord, d classify.Decision) string {
	var b strings.Builder

	fmt.Fprintf(&b, "[%s/%s] %s\n", strings.ToUpper(string(d.Kind)), strings.ToUpper(string(d.Severity)), f.lead(rec, d))
	fmt.Fprintf(&b, "  time: %s\n", rec.Timestamp.Format(time.RFC3339))

	if f.userFriendly && rec.Message != "" {
		fmt.Fprintf(&b, "  detail: %s\n", rec.Message)
	}

	if line := f.contextLine(rec); line != "" {
		fmt.Fprintf(&b, "  context: %s\n", line)
	}

	if d.UserAction != "" {
		fmt.Fprintf(&b, "  action required: %s\n", d.UserAction)
	}

	for i, s := range rec.Suggestions {
		fmt.Fprintf(&b, "  %d. %s\n", i+1, s)
	}

	if d.Recoverable {
		fmt.Fprintf(&b, "  retry: up to %d attempts, %s delay (%s)\n", d.MaxRetries, d.RetryDelay, d.Strategy)
	}

	return b.String()
}

func (f *Formatter) lead(rec *errors.ErrorRecord, d classify.Decision) string {
	if !f.userFriendly {
		return rec.Message
	}
	if msg, ok := friendlyMessages[d.Kind]; ok {
		return msg
	}
	return rec.Message
}

func (f *Formatter) contextLine(rec *errors.ErrorRecord) string {
	if len(rec.Details) == 0 {
		return ""
	}
	parts := make([]string, 0, len(contextFields))
	for _, field := range contextFields {
		if v, ok := rec.Details[field.key]; ok {
			parts = append(parts, fmt.Sprintf("%s=%v", field.label, v))
		}
	}
	return strings.Join(parts, " ")
}
