// row.go - Ordered column/value mapping for a single result row

package models // Declares the package name

import (
	"bytes"         // Output buffer
	"encoding/json" // Key and value encoding
	"unicode/utf8"  // Text vs binary column check
)

// Row maps column names to values while keeping result-set column order.
// Values are string, number, bool, time.Time, []byte or nil. Driver []byte values
// that are valid UTF-8 are stored as string; anything else (BLOB/BINARY data)
// stays []byte and encodes as base64 in JSON rather than being mangled.
type Row struct {
	columns []string       // Insertion order
	values  map[string]any // Column to value
}

// NewRow returns an empty row.
func NewRow() *Row {
	return &Row{values: make(map[string]any)}
}

// Set stores a value, appending the column on first use.
// Valid UTF-8 []byte is stored as string, since that is how text columns come back from most drivers.
func (r *Row) Set(column string, value any) {
	if b, ok := value.([]byte); ok {
		if utf8.Valid(b) {
			value = string(b) // Text column
		} else {
			value = append([]byte(nil), b...) // Binary column, copied off the driver buffer
		}
	}
	if _, exists := r.values[column]; !exists {
		r.columns = append(r.columns, column)
	}
	r.values[column] = value
}

// Get returns the value for column and whether it is present.
func (r *Row) Get(column string) (any, bool) {
	v, ok := r.values[column]
	return v, ok
}

// Columns returns column names in order.
func (r *Row) Columns() []string {
	out := make([]string, len(r.columns))
	copy(out, r.columns)
	return out
}

// Len returns the number of columns.
func (r *Row) Len() int {
	return len(r.columns)
}

// MarshalJSON encodes the row as a JSON object in column order.
func (r *Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, col := range r.columns {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(col)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(r.values[col])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
