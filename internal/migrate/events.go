// Package migrate implements the migration engine that moves an Airtable
// base into a Grist document: schema translation between the two type
// systems, per-record field transformation, batched record transfer, and
// multi-table orchestration with per-table failure isolation and progress
// reporting.
package migrate

// Phase enumerates the stages a migration run moves through.
type Phase string

const (
	// PhaseCreating covers document creation and table creation.
	PhaseCreating Phase = "creating"
	// PhaseFetching covers source schema fetching and translation.
	PhaseFetching Phase = "fetching"
	// PhaseMigrating is emitted once per table before its records move.
	PhaseMigrating Phase = "migrating"
	// PhaseComplete is the terminal event of a successful run.
	PhaseComplete Phase = "complete"
	// PhaseError reports a failure; fatal during setup, per-table afterwards.
	PhaseError Phase = "error"
)

// Event describes one progress update of a migration run.
// Listeners receive events synchronously, in order, between the migrator's
// remote calls; they must not block.
type Event struct {
	Phase Phase
	// CurrentTable is 1-based during the migrating phase, 0 during setup.
	CurrentTable int
	TotalTables  int
	TableName    string
	// Err is set on error-phase events only.
	Err error
}

// OnProgress subscribes a listener to the migrator's progress events.
// Zero or more listeners may be registered; each event is delivered to all
// of them in subscription order. Not safe to call concurrently with Run.
func (m *Migrator) OnProgress(fn func(Event)) {
	m.listeners = append(m.listeners, fn)
}

// emit fans an event out to every listener, in-line.
func (m *Migrator) emit(ev Event) {
	for _, fn := range m.listeners {
		fn(ev)
	}
}
