package migrate

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"gridmove/cli/internal/airtable"
	xerrors "gridmove/cli/internal/errors"
	"gridmove/cli/internal/grist"
)

type fakeSource struct {
	tables  map[string]airtable.Table
	records map[string][]airtable.Record
	// listErr makes ListRecords fail for the named table.
	listErr   map[string]error
	schemaErr error
}

func (s *fakeSource) TableSchema(ctx context.Context, baseID, tableID string) (airtable.Table, error) {
	if s.schemaErr != nil {
		return airtable.Table{}, s.schemaErr
	}
	t, ok := s.tables[tableID]
	if !ok {
		return airtable.Table{}, errors.New("no such table: " + tableID)
	}
	return t, nil
}

func (s *fakeSource) ListRecords(ctx context.Context, baseID, tableID string) ([]airtable.Record, error) {
	if err := s.listErr[tableID]; err != nil {
		return nil, err
	}
	return s.records[tableID], nil
}

type fakeDest struct {
	docID     string
	createErr error
	tablesErr error
	// addErr makes AddRecords fail for the named destination table.
	addErr map[string]error

	createdTables []grist.Table
	inserted      map[string][]grist.RecordFields
}

func (d *fakeDest) CreateDoc(ctx context.Context, workspaceID int64, name string) (string, error) {
	if d.createErr != nil {
		return "", d.createErr
	}
	return d.docID, nil
}

func (d *fakeDest) AddTables(ctx context.Context, docID string, tables []grist.Table) ([]string, error) {
	if d.tablesErr != nil {
		return nil, d.tablesErr
	}
	d.createdTables = tables
	ids := make([]string, len(tables))
	for i, t := range tables {
		ids[i] = t.ID
	}
	return ids, nil
}

func (d *fakeDest) AddRecords(ctx context.Context, docID, tableID string, records []grist.RecordFields) error {
	if err := d.addErr[tableID]; err != nil {
		return err
	}
	if d.inserted == nil {
		d.inserted = map[string][]grist.RecordFields{}
	}
	d.inserted[tableID] = append(d.inserted[tableID], records...)
	return nil
}

func threeTableSource() *fakeSource {
	mkTable := func(id, name string) airtable.Table {
		return airtable.Table{
			ID:   id,
			Name: name,
			Fields: []airtable.Field{
				{ID: "fld" + id, Name: "Title", Type: "singleLineText"},
			},
		}
	}
	mkRecords := func(id string, n int) []airtable.Record {
		recs := make([]airtable.Record, n)
		for i := range recs {
			recs[i] = airtable.Record{ID: "rec", Fields: map[string]any{"Title": id}}
		}
		return recs
	}
	return &fakeSource{
		tables: map[string]airtable.Table{
			"tbl1": mkTable("tbl1", "Projects"),
			"tbl2": mkTable("tbl2", "Tasks"),
			"tbl3": mkTable("tbl3", "People"),
		},
		records: map[string][]airtable.Record{
			"tbl1": mkRecords("tbl1", 3),
			"tbl2": mkRecords("tbl2", 2),
			"tbl3": mkRecords("tbl3", 1),
		},
	}
}

func TestRunMigratesAllTables(t *testing.T) {
	source := threeTableSource()
	dest := &fakeDest{docID: "docA"}
	m := New(source, dest)

	var events []Event
	m.OnProgress(func(ev Event) { events = append(events, ev) })

	job := Job{BaseID: "app1", TableIDs: []string{"tbl1", "tbl2", "tbl3"}, WorkspaceID: 7, DocName: "Import"}
	result, err := m.Run(context.Background(), job)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if result.DocID != "docA" {
		t.Errorf("doc id = %q, want docA", result.DocID)
	}
	if result.RunID == "" {
		t.Error("run id is empty")
	}
	if want := []string{"Projects", "Tasks", "People"}; !reflect.DeepEqual(result.Migrated, want) {
		t.Errorf("migrated = %v, want %v", result.Migrated, want)
	}
	if len(result.Errors) != 0 {
		t.Errorf("unexpected table errors: %v", result.Errors)
	}

	if len(dest.createdTables) != 3 {
		t.Fatalf("created %d tables in the document, want 3", len(dest.createdTables))
	}
	if got := len(dest.inserted["Tasks"]); got != 2 {
		t.Errorf("Tasks received %d records, want 2", got)
	}

	// Per-table events are 1-based and in job order.
	var migrating []Event
	for _, ev := range events {
		if ev.Phase == PhaseMigrating {
			migrating = append(migrating, ev)
		}
	}
	if len(migrating) != 3 {
		t.Fatalf("got %d migrating events, want 3", len(migrating))
	}
	for i, ev := range migrating {
		if ev.CurrentTable != i+1 || ev.TotalTables != 3 {
			t.Errorf("event %d: CurrentTable=%d TotalTables=%d, want %d/3", i, ev.CurrentTable, ev.TotalTables, i+1)
		}
	}
	last := events[len(events)-1]
	if last.Phase != PhaseComplete {
		t.Errorf("last event phase = %q, want %q", last.Phase, PhaseComplete)
	}
}

func TestRunContinuesPastTableFailure(t *testing.T) {
	source := threeTableSource()
	source.listErr = map[string]error{"tbl2": errors.New("rate limited")}
	dest := &fakeDest{docID: "docA"}
	m := New(source, dest)

	var events []Event
	m.OnProgress(func(ev Event) { events = append(events, ev) })

	job := Job{BaseID: "app1", TableIDs: []string{"tbl1", "tbl2", "tbl3"}, WorkspaceID: 7, DocName: "Import"}
	result, err := m.Run(context.Background(), job)
	if err != nil {
		t.Fatalf("Run() error = %v: one table failing must not fail the run", err)
	}

	if want := []string{"Projects", "People"}; !reflect.DeepEqual(result.Migrated, want) {
		t.Errorf("migrated = %v, want %v", result.Migrated, want)
	}
	if len(result.Errors) != 1 {
		t.Fatalf("got %d table errors, want 1", len(result.Errors))
	}
	te := result.Errors[0]
	if te.TableName != "Tasks" {
		t.Errorf("failed table = %q, want Tasks", te.TableName)
	}
	var e *xerrors.E
	if !errors.As(te.Err, &e) {
		t.Fatalf("table error %v is not a classified error", te.Err)
	}
	if e.Kind != xerrors.TableMigrateFailed {
		t.Errorf("table error kind = %s, want %s", e.Kind, xerrors.TableMigrateFailed)
	}
	if e.IsFatal() {
		t.Error("a per-table transfer failure must not be fatal")
	}

	// The error event for table 2 is followed by the migrating event for
	// table 3: the run moved on.
	sawError := false
	sawThirdAfterError := false
	for _, ev := range events {
		if ev.Phase == PhaseError && ev.CurrentTable == 2 {
			sawError = true
		}
		if sawError && ev.Phase == PhaseMigrating && ev.CurrentTable == 3 {
			sawThirdAfterError = true
		}
	}
	if !sawError {
		t.Error("no error event for the failed table")
	}
	if !sawThirdAfterError {
		t.Error("no migrating event after the failure: the run did not continue")
	}
}

func TestRunFatalSetupFailures(t *testing.T) {
	tests := []struct {
		name     string
		source   func() *fakeSource
		dest     func() *fakeDest
		wantKind xerrors.Kind
		wantDoc  bool
	}{
		{
			name:     "document creation fails",
			source:   threeTableSource,
			dest:     func() *fakeDest { return &fakeDest{createErr: errors.New("workspace gone")} },
			wantKind: xerrors.DocCreateFailed,
		},
		{
			name: "schema fetch fails",
			source: func() *fakeSource {
				s := threeTableSource()
				s.schemaErr = errors.New("forbidden")
				return s
			},
			dest:     func() *fakeDest { return &fakeDest{docID: "docA"} },
			wantKind: xerrors.SchemaFetchFailed,
			wantDoc:  true,
		},
		{
			name:   "table creation fails",
			source: threeTableSource,
			dest: func() *fakeDest {
				return &fakeDest{docID: "docA", tablesErr: errors.New("bad column")}
			},
			wantKind: xerrors.TableCreateFailed,
			wantDoc:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New(tt.source(), tt.dest())

			var events []Event
			m.OnProgress(func(ev Event) { events = append(events, ev) })

			job := Job{BaseID: "app1", TableIDs: []string{"tbl1", "tbl2", "tbl3"}, WorkspaceID: 7, DocName: "Import"}
			result, err := m.Run(context.Background(), job)
			if err == nil {
				t.Fatal("Run() succeeded, want a fatal error")
			}
			if result != nil {
				t.Errorf("Run() returned a result alongside a fatal error: %v", result)
			}
			var e *xerrors.E
			if !errors.As(err, &e) || e.Kind != tt.wantKind {
				t.Errorf("error kind = %v, want %s", err, tt.wantKind)
			}
			if e != nil && !e.IsFatal() {
				t.Error("setup failures must be fatal")
			}
			if tt.wantDoc && !strings.Contains(err.Error(), "docA") {
				t.Errorf("error %q does not name the orphaned document", err)
			}
			for _, ev := range events {
				if ev.Phase == PhaseMigrating {
					t.Fatal("record transfer started despite the setup failure")
				}
			}
		})
	}
}

func TestRunRespectsBatchSize(t *testing.T) {
	source := threeTableSource()
	source.records["tbl1"] = make([]airtable.Record, 5)
	for i := range source.records["tbl1"] {
		source.records["tbl1"][i] = airtable.Record{Fields: map[string]any{"Title": "t"}}
	}
	calls := 0
	dest := &countingDest{fakeDest: fakeDest{docID: "docA"}, calls: &calls}
	m := New(source, dest)
	m.SetBatchSize(2)

	job := Job{BaseID: "app1", TableIDs: []string{"tbl1"}, WorkspaceID: 7, DocName: "Import"}
	if _, err := m.Run(context.Background(), job); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if calls != 3 {
		t.Errorf("5 records at batch size 2 made %d insert calls, want 3", calls)
	}
}

type countingDest struct {
	fakeDest
	calls *int
}

func (d *countingDest) AddRecords(ctx context.Context, docID, tableID string, records []grist.RecordFields) error {
	*d.calls++
	return d.fakeDest.AddRecords(ctx, docID, tableID, records)
}
