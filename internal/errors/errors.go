// Package errors defines typed errors with categories for user-friendly reporting.
// It provides a structured approach to error handling with machine-readable error
// kinds and human-friendly messages. Migration failures come in two tiers: setup
// kinds are fatal and abort the whole run, while per-table kinds are recorded in
// the migration result and the run continues with the remaining tables.
//
// The package supports wrapping underlying errors while maintaining error kind
// information, making it easier to handle different types of failures appropriately.
package errors

import "fmt"

// Kind is a machine-readable error category.
type Kind string

const (
	// DocCreateFailed indicates the destination document could not be created. Fatal.
	DocCreateFailed Kind = "doc_create_failed"
	// SchemaFetchFailed indicates a source table schema could not be fetched. Fatal.
	SchemaFetchFailed Kind = "schema_fetch_failed"
	// TableCreateFailed indicates destination tables could not be created. Fatal.
	TableCreateFailed Kind = "table_create_failed"
	// TableMigrateFailed indicates one table's records could not be transferred.
	// Recorded per table; sibling tables keep migrating.
	TableMigrateFailed Kind = "table_migrate_failed"
)

// E wraps an error with kind and human-friendly message.
type E struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *E) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes the underlying error to errors.Is and errors.As.
func (e *E) Unwrap() error { return e.Err }

// IsFatal reports whether the kind aborts the whole migration run.
func (e *E) IsFatal() bool { return e.Kind != TableMigrateFailed }

func Wrap(kind Kind, msg string, err error) *E { return &E{Kind: kind, Message: msg, Err: err} }
func New(kind Kind, msg string) *E             { return &E{Kind: kind, Message: msg} }
