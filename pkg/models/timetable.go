package models

import (
	"time"

	"github.com/google/uuid"
)

// Row is a materialized row mapping, field name to normalized value.
// Values are normalized at the datasource boundary (numerics to
// float64/int64, timestamps to RFC 3339 strings) before they enter the
// materializer or the scoring engine.
type Row map[string]any

// String returns the named field as a string, or "" when absent or not
// a string.
func (r Row) String(field string) string {
	v, ok := r[field].(string)
	if !ok {
		return ""
	}
	return v
}

// Float returns the named field as a float64. The second return is
// false when the field is absent or not numeric.
func (r Row) Float(field string) (float64, bool) {
	switch v := r[field].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int64:
		return float64(v), true
	case int:
		return float64(v), true
	default:
		return 0, false
	}
}

// TimeTableMetadata describes a materialized Time Table without its rows.
type TimeTableMetadata struct {
	ID        uuid.UUID `json:"id"`
	Hash      string    `json:"hash"`
	RowCount  int       `json:"row_count"`
	RowGrain  RowGrain  `json:"row_grain"`
	CreatedAt time.Time `json:"created_at"`
}

// TimeTable is a materialized, hash-identified result set. The hash is
// computed over the stably-serialized spec plus full row content, so
// two materializations of the same spec against unchanged data always
// produce the same hash. Downstream artifacts cite {spec, hash} as
// their evidence trail.
type TimeTable struct {
	Spec     TableSpec         `json:"spec"`
	Rows     []Row             `json:"rows"`
	Hash     string            `json:"hash"`
	Metadata TimeTableMetadata `json:"metadata"`
}

// Preview is a truncated view of a Time Table. The hash and metadata
// still describe the full materialized set.
type Preview struct {
	Rows     []Row             `json:"rows"`
	Metadata TimeTableMetadata `json:"metadata"`
}
