// Package airtable implements a minimal client for the Airtable REST API.
// It covers the read-only surface a migration needs: the base metadata
// endpoint for table schemas and the records endpoint with offset pagination.
// Requests carry a bearer token; there are no retries.
package airtable

// Table describes one table of a base as returned by the metadata API.
type Table struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Description    string  `json:"description,omitempty"`
	PrimaryFieldID string  `json:"primaryFieldId"`
	Fields         []Field `json:"fields"`
}

// Field describes a single column of a table.
type Field struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Type        string        `json:"type"`
	Description string        `json:"description,omitempty"`
	Options     *FieldOptions `json:"options,omitempty"`
}

// FieldOptions carries type-specific settings. Only the parts a migration
// reads are modelled; everything else the API returns is ignored.
type FieldOptions struct {
	// Choices is set for singleSelect and multipleSelects fields.
	Choices []Choice `json:"choices,omitempty"`
}

// Choice is one selectable option of a select field.
type Choice struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

// Record is one row of a table. Field values keep the loose typing of the
// API's JSON: strings, float64 numbers, bools, arrays, or nested objects.
type Record struct {
	ID          string         `json:"id"`
	CreatedTime string         `json:"createdTime"`
	Fields      map[string]any `json:"fields"`
}
