// Package txn implements the transactional change-application engine:
// batches of create/update/delete operations validated as a whole
// against a private working copy before anything touches disk.
package txn

import (
	"github.com/bindery-dev/bindery/internal/diag"
)

// Operation is the kind of a proposed change.
type Operation string

const (
	OpCreate Operation = "create"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
)

// Mode is the tri-state for validation and reference policies.
type Mode string

const (
	ModeStrict Mode = "strict"
	ModeWarn   Mode = "warn"
	ModeNone   Mode = "none"
)

// DeleteMode controls delete safety.
type DeleteMode string

const (
	// DeleteRestrict blocks deleting an entity that anything still
	// references.
	DeleteRestrict DeleteMode = "restrict"

	// DeleteOrphan allows the delete and leaves dangling edges behind.
	DeleteOrphan DeleteMode = "orphan"
)

// Change is one proposed operation. Transient; lives only for the
// duration of a batch.
type Change struct {
	Operation  Operation              `json:"operation"`
	EntityType string                 `json:"entityType"`
	EntityID   string                 `json:"entityId"`
	FieldPath  string                 `json:"fieldPath,omitempty"`
	Value      interface{}            `json:"value,omitempty"`
	Data       map[string]interface{} `json:"data,omitempty"`
}

// Request is a batch-apply request.
type Request struct {
	Changes []Change `json:"changes"`

	// DryRun defaults to true: validate everything, write nothing.
	DryRun *bool `json:"dryRun,omitempty"`

	// Validate defaults to strict for real writes and warn for dry runs.
	Validate Mode `json:"validate,omitempty"`

	// ReferencePolicy has the same states and defaulting as Validate.
	ReferencePolicy Mode `json:"referencePolicy,omitempty"`

	// DeleteMode defaults to restrict.
	DeleteMode DeleteMode `json:"deleteMode,omitempty"`
}

// IsDryRun resolves the DryRun default.
func (r *Request) IsDryRun() bool {
	if r.DryRun == nil {
		return true
	}
	return *r.DryRun
}

// Change statuses.
const (
	StatusWouldApply = "would_apply"
	StatusApplied    = "applied"
	StatusError      = "error"
)

// ChangeResult is the per-change outcome, attributed to the change's
// original batch index so a caller can pinpoint exactly what failed.
type ChangeResult struct {
	Index         int                    `json:"index"`
	Operation     Operation              `json:"operation"`
	EntityType    string                 `json:"entityType"`
	EntityID      string                 `json:"entityId"`
	Status        string                 `json:"status"`
	ResultData    map[string]interface{} `json:"resultEntity,omitempty"`
	AffectedFiles []string               `json:"affectedFiles,omitempty"`
	Diagnostics   []diag.Diagnostic      `json:"diagnostics,omitempty"`
	Error         string                 `json:"error,omitempty"`
}

// Response is the batch-apply response.
type Response struct {
	DryRun        bool           `json:"dryRun"`
	Applied       int            `json:"applied,omitempty"`
	WouldApply    int            `json:"wouldApply,omitempty"`
	ModifiedFiles []string       `json:"modifiedFiles,omitempty"`
	DeletedFiles  []string       `json:"deletedFiles,omitempty"`
	WouldDelete   []string       `json:"wouldDelete,omitempty"`
	Results       []ChangeResult `json:"results"`
}

// Rejected reports whether the batch was rejected: any change with a
// blocking error rejects the whole batch and no file is written.
func (r *Response) Rejected() bool {
	for _, res := range r.Results {
		if res.Status == StatusError {
			return true
		}
	}
	return false
}
