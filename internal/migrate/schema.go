package migrate

import (
	"encoding/json"

	"gridmove/cli/internal/airtable"
	"gridmove/cli/internal/grist"
)

// FieldMapping associates source field names with destination column ids for
// one table. Record transformation drops any field not present here.
type FieldMapping map[string]string

// fieldTypeTable maps Airtable field type tags to Grist column types.
// Computed and reference types land on Any, Grist's untyped column; type
// tags missing from the table fall back to Text.
var fieldTypeTable = map[string]string{
	"singleLineText":        "Text",
	"multilineText":         "Text",
	"richText":              "Text",
	"email":                 "Text",
	"url":                   "Text",
	"phoneNumber":           "Text",
	"barcode":               "Text",
	"singleCollaborator":    "Text",
	"multipleCollaborators": "Text",
	"number":                "Numeric",
	"currency":              "Numeric",
	"percent":               "Numeric",
	"duration":              "Numeric",
	"rating":                "Numeric",
	"count":                 "Int",
	"autoNumber":            "Int",
	"checkbox":              "Bool",
	"date":                  "Date",
	"dateTime":              "DateTime",
	"createdTime":           "DateTime",
	"lastModifiedTime":      "DateTime",
	"createdBy":             "Text",
	"lastModifiedBy":        "Text",
	"singleSelect":          "Choice",
	"multipleSelects":       "ChoiceList",
	"formula":               "Any",
	"rollup":                "Any",
	"lookup":                "Any",
	"multipleLookupValues":  "Any",
	"multipleRecordLinks":   "Any",
	"multipleAttachments":   "Any",
}

// fallbackFieldType is used for type tags Airtable adds that this table does
// not know about yet.
const fallbackFieldType = "Text"

// TranslateFieldType maps one source field to a Grist column type plus the
// serialized widget options for that type. Only multi-choice fields carry
// widget options: the choice labels, so the ChoiceList column renders its
// dropdown. Never fails; unrecognized types become Text.
func TranslateFieldType(field airtable.Field) (string, string) {
	colType, ok := fieldTypeTable[field.Type]
	if !ok {
		colType = fallbackFieldType
	}
	if field.Type != "multipleSelects" || field.Options == nil || len(field.Options.Choices) == 0 {
		return colType, ""
	}
	labels := make([]string, len(field.Options.Choices))
	for i, c := range field.Options.Choices {
		labels[i] = c.Name
	}
	// Choice labels are plain strings; marshalling them cannot fail.
	opts, _ := json.Marshal(map[string][]string{"choices": labels})
	return colType, string(opts)
}

// TranslateTable converts one source table schema into the Grist table to
// create alongside the field mapping used to transform its records.
//
// Column ids are the source field ids rather than the display names, so a
// field renamed in Airtable mid-migration still lands in the same column.
// Column order follows source field order. Pure function; always succeeds.
func TranslateTable(table airtable.Table) (grist.Table, FieldMapping) {
	columns := make([]grist.Column, 0, len(table.Fields))
	mapping := make(FieldMapping, len(table.Fields))
	for _, field := range table.Fields {
		colType, widgetOptions := TranslateFieldType(field)
		columns = append(columns, grist.Column{
			ID: field.ID,
			Fields: grist.ColumnFields{
				Label:         field.Name,
				Type:          colType,
				WidgetOptions: widgetOptions,
			},
		})
		mapping[field.Name] = field.ID
	}
	return grist.Table{ID: table.Name, Columns: columns}, mapping
}
