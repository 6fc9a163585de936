package record

import "strconv"

// Field is a named scalar column of a record. The ordered Fields table drives
// both CSV export and threshold filtering.
type Field struct {
	Name    string
	Numeric bool

	number func(*Record) (float64, bool)
	text   func(*Record) (string, bool)
}

// Number returns the field's numeric value and whether it is present.
// Non-numeric fields are never present.
func (f Field) Number(r *Record) (float64, bool) {
	if f.number == nil {
		return 0, false
	}
	return f.number(r)
}

// Format renders the field for tabular output.
func (f Field) Format(r *Record) (string, bool) {
	return f.text(r)
}

// Fields lists the scalar record fields in export order.
var Fields = []Field{
	floatField("start_time", func(r *Record) float64 { return r.StartTime }),
	floatField("finish_time", func(r *Record) float64 { return r.FinishTime }),
	floatField("elapsed_time", func(r *Record) float64 { return r.ElapsedTime }),
	floatField("return_code", func(r *Record) float64 { return float64(r.ReturnCode) }),
	optFloatField("user_cpu", func(r *Record) *float64 { return r.UserCPU }),
	optFloatField("system_cpu", func(r *Record) *float64 { return r.SystemCPU }),
	optIntField("resident_memory_size", func(r *Record) *int64 { return r.ResidentMemory }),
	optIntField("minor_page_fault", func(r *Record) *int64 { return r.MinorPageFaults }),
	optIntField("major_page_fault", func(r *Record) *int64 { return r.MajorPageFaults }),
	optIntField("swap_outs", func(r *Record) *int64 { return r.SwapOuts }),
	optIntField("block_inputs", func(r *Record) *int64 { return r.BlockInputs }),
	optIntField("block_outputs", func(r *Record) *int64 { return r.BlockOutputs }),
	optIntField("voluntary_context_switches", func(r *Record) *int64 { return r.VoluntaryCtxSwitches }),
	optIntField("involuntary_context_switches", func(r *Record) *int64 { return r.InvoluntaryCtxSwitches }),
	stringField("working_directory", func(r *Record) string { return r.WorkingDir }),
	stringField("package", func(r *Record) string { return r.Package }),
}

// LookupField finds a field by name.
func LookupField(name string) (Field, bool) {
	for _, f := range Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// NumericFieldNames returns the names of all filterable fields.
func NumericFieldNames() []string {
	var names []string
	for _, f := range Fields {
		if f.Numeric {
			names = append(names, f.Name)
		}
	}
	return names
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func floatField(name string, get func(*Record) float64) Field {
	return Field{
		Name:    name,
		Numeric: true,
		number:  func(r *Record) (float64, bool) { return get(r), true },
		text:    func(r *Record) (string, bool) { return formatFloat(get(r)), true },
	}
}

func optFloatField(name string, get func(*Record) *float64) Field {
	return Field{
		Name:    name,
		Numeric: true,
		number: func(r *Record) (float64, bool) {
			if v := get(r); v != nil {
				return *v, true
			}
			return 0, false
		},
		text: func(r *Record) (string, bool) {
			if v := get(r); v != nil {
				return formatFloat(*v), true
			}
			return "", false
		},
	}
}

func optIntField(name string, get func(*Record) *int64) Field {
	return Field{
		Name:    name,
		Numeric: true,
		number: func(r *Record) (float64, bool) {
			if v := get(r); v != nil {
				return float64(*v), true
			}
			return 0, false
		},
		text: func(r *Record) (string, bool) {
			if v := get(r); v != nil {
				return strconv.FormatInt(*v, 10), true
			}
			return "", false
		},
	}
}

func stringField(name string, get func(*Record) string) Field {
	return Field{
		Name: name,
		text: func(r *Record) (string, bool) {
			v := get(r)
			return v, v != ""
		},
	}
}
