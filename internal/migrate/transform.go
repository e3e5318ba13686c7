package migrate

import (
	"gridmove/cli/internal/airtable"
	"gridmove/cli/internal/grist"
)

// listMarker is Grist's encoding prefix for list-valued cells: a cell holding
// ["L", "a", "b"] is the list ["a", "b"], distinguishing it from a cell that
// holds a plain scalar.
const listMarker = "L"

// TransformRecord converts one source record into the destination row shape
// using the table's field mapping. Fields absent from the mapping are
// dropped silently; that is how a field is excluded from a migration, not an
// error. Pure, total function.
func TransformRecord(record airtable.Record, mapping FieldMapping) grist.RecordFields {
	out := make(grist.RecordFields, len(record.Fields))
	for name, value := range record.Fields {
		colID, ok := mapping[name]
		if !ok {
			continue
		}
		out[colID] = coerceValue(value)
	}
	return out
}

// coerceValue maps a loosely-typed source value onto what a Grist cell
// accepts. Scalars pass through. A one-element array unwraps to its sole
// element: Airtable wraps many scalar-ish values (lookups, links) in arrays
// and the unwrapped scalar is what the user expects in the cell. Any other
// array, the empty one included, becomes the tagged-list encoding. Values
// with no cell representation (objects, nil) become nil.
func coerceValue(value any) any {
	switch v := value.(type) {
	case string, bool, float64, int, int64:
		return v
	case []any:
		if len(v) == 1 {
			return coerceValue(v[0])
		}
		tagged := make([]any, 0, len(v)+1)
		tagged = append(tagged, listMarker)
		tagged = append(tagged, v...)
		return tagged
	default:
		return nil
	}
}
