// Package buildinfo carries release metadata stamped in via ldflags.
package buildinfo

// Empty for local builds; release pipelines inject real values.
var (
	Version = ""
	Commit  = ""
	Date    = ""
)
