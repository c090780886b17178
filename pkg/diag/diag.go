// Package diag defines the uniform diagnostic record the compiler core
// reports through (spec §6, §7): a severity, a stable code, a message and
// the uid of the subject element the diagnostic is about.
package diag

import "fmt"

// Severity distinguishes fatal-to-the-pass issues from accumulating ones.
type Severity int

const (
	Warn Severity = iota
	Error
)

func (s Severity) String() string {
	if s == Error {
		return "error"
	}
	return "warn"
}

// Code enumerates the diagnostic kinds from spec §7.
type Code string

const (
	// Structural
	CyclicPortBinding Code = "CyclicPortBinding"
	UnconnectedPort   Code = "UnconnectedPort"
	DuplicateName     Code = "DuplicateName"
	UnknownComponent  Code = "UnknownComponent"
	UnknownFunction   Code = "UnknownFunction"

	// Binding
	UnsatisfiablePinAssignment Code = "UnsatisfiablePinAssignment"
	NoDeviceForComponent       Code = "NoDeviceForComponent"

	// Soft-binding (warnings)
	RandomDeviceSelected Code = "RandomDeviceSelected"
	MissingRequiredPin   Code = "MissingRequiredPin"
	UnconnectedNet       Code = "UnconnectedNet"
	UnusedPort           Code = "UnusedPort"

	// Electrical
	ErcConflict       Code = "ErcConflict"
	UnresolvedErcRole Code = "UnresolvedErcRole"
)

// Diagnostic is one uniform report record.
type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Subject  uint64 // uid of the offending element; 0 if not subject-specific
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s[%s] %s (subject=%d)", d.Severity, d.Code, d.Message, d.Subject)
}

// Report accumulates non-fatal diagnostics across a compile run. Structural
// and Binding errors are not collected here — they abort the current pass
// as ordinary Go errors (spec §7's fatal propagation policy); Report only
// ever holds Soft-binding and Electrical diagnostics plus any Warn-severity
// Binding notices callers choose to downgrade.
type Report struct {
	Diagnostics []Diagnostic
}

// Add appends a diagnostic to the report.
func (r *Report) Add(d Diagnostic) {
	r.Diagnostics = append(r.Diagnostics, d)
}

// Addf builds and appends a diagnostic from a format string.
func (r *Report) Addf(sev Severity, code Code, subject uint64, format string, args ...any) {
	r.Add(Diagnostic{Severity: sev, Code: code, Message: fmt.Sprintf(format, args...), Subject: subject})
}

// HasErrors reports whether any Error-severity diagnostic was recorded.
// Spec §6: "Exit code is nonzero iff any Error-severity diagnostic was
// emitted."
func (r *Report) HasErrors() bool {
	for _, d := range r.Diagnostics {
		if d.Severity == Error {
			return true
		}
	}
	return false
}

// Merge appends another report's diagnostics onto r.
func (r *Report) Merge(other *Report) {
	if other == nil {
		return
	}
	r.Diagnostics = append(r.Diagnostics, other.Diagnostics...)
}
