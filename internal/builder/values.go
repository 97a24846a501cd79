package builder

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/conduit-lang/recordtree/internal/data"
)

// Default layouts for temporal values without an outputFormat
const (
	LayoutDate     = "2006-01-02"
	LayoutTime     = "15:04:05"
	LayoutDateTime = "2006-01-02 15:04:05"
)

var parseLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	LayoutDateTime,
	LayoutDate,
	LayoutTime,
}

// formatValue renders a scalar for a field node
func formatValue(t data.FieldType, value interface{}, outputFormat string) string {
	if t.IsTemporal() {
		if ts, ok := asTime(value); ok {
			return ts.Format(layoutFor(t, outputFormat))
		}
	}
	return stringify(value)
}

func layoutFor(t data.FieldType, outputFormat string) string {
	if outputFormat != "" {
		return outputFormat
	}
	switch t {
	case data.TypeDate:
		return LayoutDate
	case data.TypeTime:
		return LayoutTime
	default:
		return LayoutDateTime
	}
}

// asTime accepts time values and the common textual encodings storage returns
func asTime(value interface{}) (time.Time, bool) {
	switch v := value.(type) {
	case time.Time:
		return v, !v.IsZero()
	case *time.Time:
		if v == nil {
			return time.Time{}, false
		}
		return *v, !v.IsZero()
	case string:
		return parseTime(v)
	case []byte:
		return parseTime(string(v))
	}
	return time.Time{}, false
}

func parseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range parseLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

// stringify renders any row value as text
func stringify(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case bool:
		if v {
			return "1"
		}
		return "0"
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case time.Time:
		return v.Format(LayoutDateTime)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

// selectedValues extracts the chosen option values from a select or
// multi-select cell
func selectedValues(value interface{}) []string {
	switch v := value.(type) {
	case nil:
		return nil
	case []string:
		return v
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			out = append(out, stringify(item))
		}
		return out
	case []int:
		out := make([]string, 0, len(v))
		for _, item := range v {
			out = append(out, strconv.Itoa(item))
		}
		return out
	case []int64:
		out := make([]string, 0, len(v))
		for _, item := range v {
			out = append(out, strconv.FormatInt(item, 10))
		}
		return out
	default:
		s := stringify(v)
		if s == "" {
			return nil
		}
		return []string{s}
	}
}
