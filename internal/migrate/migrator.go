package migrate

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"gridmove/cli/internal/airtable"
	xerrors "gridmove/cli/internal/errors"
	"gridmove/cli/internal/grist"
)

// Source is the read side of a migration. Implemented by *airtable.Client.
type Source interface {
	TableSchema(ctx context.Context, baseID, tableID string) (airtable.Table, error)
	ListRecords(ctx context.Context, baseID, tableID string) ([]airtable.Record, error)
}

// Destination is the write side of a migration. Implemented by *grist.Client.
type Destination interface {
	CreateDoc(ctx context.Context, workspaceID int64, name string) (string, error)
	AddTables(ctx context.Context, docID string, tables []grist.Table) ([]string, error)
	AddRecords(ctx context.Context, docID, tableID string, records []grist.RecordFields) error
}

// Job describes one migration run: which tables of which base go into which
// workspace, and what the new document is called. Tables are migrated in the
// order given here.
type Job struct {
	BaseID      string
	TableIDs    []string
	WorkspaceID int64
	DocName     string
}

// TableError records the failure of a single table's record transfer.
type TableError struct {
	TableID   string
	TableName string
	Err       error
}

// Result is the terminal artifact of one run.
type Result struct {
	// RunID uniquely identifies this run in logs and summaries.
	RunID string
	// DocID is the created destination document.
	DocID string
	// Migrated holds the destination ids of tables whose records were all
	// transferred, in migration order. A table that failed mid-transfer is
	// absent here and present in Errors; its (partially filled) destination
	// table still exists in the document.
	Migrated []string
	// Errors holds one entry per table whose record transfer failed.
	Errors []TableError
}

// Migrator drives a migration run against injected source and destination
// clients. It issues at most one remote call at a time; tables are processed
// strictly in job order and batches within a table in record order.
type Migrator struct {
	source    Source
	dest      Destination
	batchSize int
	listeners []func(Event)
}

// New creates a migrator with the default batch size.
func New(source Source, dest Destination) *Migrator {
	return &Migrator{source: source, dest: dest, batchSize: DefaultBatchSize}
}

// SetBatchSize overrides the records-per-request bound. Values < 1 keep the
// default. Not safe to call concurrently with Run.
func (m *Migrator) SetBatchSize(n int) {
	if n >= 1 {
		m.batchSize = n
	}
}

// Run executes the migration: create the document, fetch and translate every
// schema, create all tables in one call, then move each table's records.
//
// Failures before record transfer starts are fatal: the run returns an error
// and no Result, leaving whatever was already created on the server in place
// (the error names the orphaned document when there is one). A failure while
// transferring one table's records is recorded in the Result and the run
// continues with the next table.
func (m *Migrator) Run(ctx context.Context, job Job) (*Result, error) {
	total := len(job.TableIDs)
	runID := uuid.NewString()

	m.emit(Event{Phase: PhaseCreating, TotalTables: total})
	docID, err := m.dest.CreateDoc(ctx, job.WorkspaceID, job.DocName)
	if err != nil {
		werr := xerrors.Wrap(xerrors.DocCreateFailed, fmt.Sprintf("create document %q", job.DocName), err)
		m.emit(Event{Phase: PhaseError, TotalTables: total, Err: werr})
		return nil, werr
	}

	m.emit(Event{Phase: PhaseFetching, TotalTables: total})
	schemas := make([]airtable.Table, 0, total)
	tables := make([]grist.Table, 0, total)
	mappings := make([]FieldMapping, 0, total)
	for _, tableID := range job.TableIDs {
		schema, err := m.source.TableSchema(ctx, job.BaseID, tableID)
		if err != nil {
			werr := xerrors.Wrap(xerrors.SchemaFetchFailed,
				fmt.Sprintf("fetch schema of table %q (document %s not cleaned up)", tableID, docID), err)
			m.emit(Event{Phase: PhaseError, TotalTables: total, Err: werr})
			return nil, werr
		}
		table, mapping := TranslateTable(schema)
		schemas = append(schemas, schema)
		tables = append(tables, table)
		mappings = append(mappings, mapping)
	}

	m.emit(Event{Phase: PhaseCreating, TotalTables: total})
	destTableIDs, err := m.dest.AddTables(ctx, docID, tables)
	if err != nil {
		werr := xerrors.Wrap(xerrors.TableCreateFailed,
			fmt.Sprintf("create tables (document %s not cleaned up)", docID), err)
		m.emit(Event{Phase: PhaseError, TotalTables: total, Err: werr})
		return nil, werr
	}

	res := &Result{RunID: runID, DocID: docID}
	for i, tableID := range job.TableIDs {
		name := schemas[i].Name
		m.emit(Event{Phase: PhaseMigrating, CurrentTable: i + 1, TotalTables: total, TableName: name})
		if err := m.migrateTable(ctx, job.BaseID, tableID, docID, destTableIDs[i], mappings[i]); err != nil {
			werr := xerrors.Wrap(xerrors.TableMigrateFailed, fmt.Sprintf("table %q", name), err)
			res.Errors = append(res.Errors, TableError{TableID: destTableIDs[i], TableName: name, Err: werr})
			m.emit(Event{Phase: PhaseError, CurrentTable: i + 1, TotalTables: total, TableName: name, Err: werr})
			continue
		}
		res.Migrated = append(res.Migrated, destTableIDs[i])
	}

	m.emit(Event{Phase: PhaseComplete, CurrentTable: total, TotalTables: total})
	return res, nil
}

// migrateTable moves one table's records: fetch all, transform each, send in
// batches.
func (m *Migrator) migrateTable(ctx context.Context, baseID, tableID, docID, destTableID string, mapping FieldMapping) error {
	records, err := m.source.ListRecords(ctx, baseID, tableID)
	if err != nil {
		return err
	}
	rows := make([]grist.RecordFields, len(records))
	for i, rec := range records {
		rows[i] = TransformRecord(rec, mapping)
	}
	return SendBatches(ctx, m.dest, docID, destTableID, rows, m.batchSize)
}
