package dataset

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Row is a single tabular record keyed by column name. Cell values arrive as
// numbers, numeric strings, timestamps or timestamp strings depending on the
// source; the coercion helpers below normalize them on read. The analytics
// packages treat rows as read-only.
type Row map[string]any

// DataError reports input that is structurally valid but unusable, such as
// an empty dataset or an unparsable timestamp cell.
type DataError struct {
	Reason string
	Column string
	Value  any
}

func (e *DataError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("data: %s (column %q, value %v)", e.Reason, e.Column, e.Value)
	}
	return "data: " + e.Reason
}

// timeLayouts lists the accepted timestamp shapes. RFC3339 covers ISO-8601
// with a trailing Z or explicit offset; the remaining layouts cover
// zone-less export formats.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Time parses a cell value as a timestamp. A trailing Z is interpreted as
// UTC; zone-less values keep their wall-clock reading.
func Time(v any) (time.Time, bool) {
	switch x := v.(type) {
	case time.Time:
		return x, true
	case string:
		s := strings.TrimSpace(x)
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

// Float coerces a cell value to a float64. Numeric strings are accepted.
func Float(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		return f, err == nil
	}
	return 0, false
}

// String renders a cell value for use as a grouping key.
func String(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	default:
		return fmt.Sprint(x)
	}
}
