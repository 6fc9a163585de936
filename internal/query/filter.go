package query

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/majorcontext/watchprocess/internal/record"
)

// Threshold passes a record whose field is present and strictly greater
// than Value.
type Threshold struct {
	Field record.Field
	Value float64
}

func (t Threshold) String() string {
	return t.Field.Name + ">" + strconv.FormatFloat(t.Value, 'g', -1, 64)
}

// Filter is a disjunction of thresholds. The empty filter passes everything.
type Filter []Threshold

// Match reports whether r passes any threshold.
func (f Filter) Match(r *record.Record) bool {
	if len(f) == 0 {
		return true
	}
	for _, t := range f {
		if v, ok := t.Field.Number(r); ok && v > t.Value {
			return true
		}
	}
	return false
}

// ParseThreshold builds a threshold from a field name and a numeric value.
// Only numeric record fields can be filtered on.
func ParseThreshold(name, value string) (Threshold, error) {
	field, ok := record.LookupField(name)
	if !ok || !field.Numeric {
		return Threshold{}, fmt.Errorf("unknown field %q (filterable fields: %s)",
			name, strings.Join(record.NumericFieldNames(), ", "))
	}
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return Threshold{}, fmt.Errorf("invalid threshold %q for %s: not a number", value, name)
	}
	return Threshold{Field: field, Value: v}, nil
}

// ParseThresholdSpec parses FIELD=VALUE.
func ParseThresholdSpec(spec string) (Threshold, error) {
	name, value, ok := strings.Cut(spec, "=")
	if !ok {
		return Threshold{}, fmt.Errorf("invalid filter %q: expected FIELD=VALUE", spec)
	}
	return ParseThreshold(strings.TrimSpace(name), strings.TrimSpace(value))
}
