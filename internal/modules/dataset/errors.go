package dataset

import (
	"fmt"
	"strings"
)

// SchemaError reports the required columns a source is missing
type SchemaError struct {
	Source  string
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("dataset %s is missing required columns: %s", e.Source, strings.Join(e.Missing, ", "))
}

func newSchemaError(source string, missing []Column) *SchemaError {
	names := make([]string, len(missing))
	for i, c := range missing {
		names[i] = c.Header()
	}
	return &SchemaError{Source: source, Missing: names}
}
