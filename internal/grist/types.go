// Package grist implements a minimal client for the Grist REST API.
// It covers the write surface a migration needs: creating a document in a
// workspace, adding tables to it, and bulk-inserting records. Requests carry
// a bearer token; there are no retries.
package grist

// ColumnFields holds the label, type and widget options of a column.
// The Grist API nests these under a "fields" key on each column; despite the
// plural name it is a single object, not a list.
type ColumnFields struct {
	Label string `json:"label"`
	Type  string `json:"type"`
	// WidgetOptions is a serialized JSON blob understood by the Grist UI,
	// e.g. the choice list of a ChoiceList column. Empty means none.
	WidgetOptions string `json:"widgetOptions,omitempty"`
}

// Column is one column of a table to create.
type Column struct {
	ID     string       `json:"id"`
	Fields ColumnFields `json:"fields"`
}

// Table is one table to create in a document. ID is the table name.
type Table struct {
	ID      string   `json:"id"`
	Columns []Column `json:"columns"`
}

// RecordFields maps column ids to cell values for one row.
type RecordFields map[string]any
