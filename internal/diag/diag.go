// Package diag defines the structured diagnostics emitted by every
// validation phase. Diagnostics are accumulated, never thrown: a load
// always completes and returns a best-effort bundle plus its findings.
package diag

import "fmt"

// Severity indicates how serious a diagnostic is.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Source identifies which validation phase produced a diagnostic.
type Source string

const (
	// SourceGate covers structural problems: unreadable directories,
	// unparseable files, missing or duplicate ids.
	SourceGate Source = "gate"

	// SourceSchema covers entity data that violates its declared schema.
	SourceSchema Source = "schema"

	// SourceLint covers findings from the pluggable lint rules.
	SourceLint Source = "lint"
)

// Stable diagnostic codes. Agents rely on these; do not rename.
const (
	CodeParseError       = "PARSE_ERROR"
	CodeMissingID        = "MISSING_ID"
	CodeDuplicateID      = "DUPLICATE_ID"
	CodeUnreadableDir    = "UNREADABLE_DIRECTORY"
	CodeUnknownType      = "UNKNOWN_TYPE"
	CodeSchemaInvalid    = "SCHEMA_INVALID"
	CodeBrokenRef        = "BROKEN_REFERENCE"
	CodeRefTypeMismatch  = "ref-type-mismatch"
	CodeValidationError  = "VALIDATION_ERROR"
	CodeReferenceError   = "REFERENCE_ERROR"
	CodeDeleteBlocked    = "DELETE_BLOCKED"
	CodeNotFound         = "NOT_FOUND"
	CodeBadRequest       = "BAD_REQUEST"
	CodeInternal         = "INTERNAL"
)

// Diagnostic is a single structured finding.
type Diagnostic struct {
	Severity   Severity `json:"severity" yaml:"severity"`
	Message    string   `json:"message" yaml:"message"`
	EntityType string   `json:"entityType,omitempty" yaml:"entityType,omitempty"`
	EntityID   string   `json:"entityId,omitempty" yaml:"entityId,omitempty"`
	FilePath   string   `json:"filePath,omitempty" yaml:"filePath,omitempty"`

	// Path is the instance path of the offending field, e.g. "/title".
	Path string `json:"path,omitempty" yaml:"path,omitempty"`

	Source Source `json:"source" yaml:"source"`
	Code   string `json:"code,omitempty" yaml:"code,omitempty"`
}

// String renders a diagnostic in check-output form.
func (d Diagnostic) String() string {
	where := d.FilePath
	if where == "" && d.EntityID != "" {
		where = d.EntityType + ":" + d.EntityID
	}
	if d.Path != "" {
		where += d.Path
	}
	if where == "" {
		return fmt.Sprintf("%s: %s", d.Severity, d.Message)
	}
	return fmt.Sprintf("%s: %s - %s", d.Severity, where, d.Message)
}

// Errorf builds an error-severity diagnostic.
func Errorf(source Source, code, format string, args ...interface{}) Diagnostic {
	return Diagnostic{
		Severity: SeverityError,
		Source:   source,
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
	}
}

// Warnf builds a warning-severity diagnostic.
func Warnf(source Source, code, format string, args ...interface{}) Diagnostic {
	return Diagnostic{
		Severity: SeverityWarning,
		Source:   source,
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
	}
}

// Summary aggregates a diagnostic list for reporting.
type Summary struct {
	TotalErrors   int  `json:"totalErrors"`
	TotalWarnings int  `json:"totalWarnings"`
	IsValid       bool `json:"isValid"`
}

// Summarize counts errors and warnings. A bundle is valid when it has
// no error-severity diagnostics; warnings do not invalidate it.
func Summarize(diags []Diagnostic) Summary {
	s := Summary{}
	for _, d := range diags {
		switch d.Severity {
		case SeverityError:
			s.TotalErrors++
		case SeverityWarning:
			s.TotalWarnings++
		}
	}
	s.IsValid = s.TotalErrors == 0
	return s
}

// Errors filters a list down to error-severity diagnostics.
func Errors(diags []Diagnostic) []Diagnostic {
	var out []Diagnostic
	for _, d := range diags {
		if d.Severity == SeverityError {
			out = append(out, d)
		}
	}
	return out
}
