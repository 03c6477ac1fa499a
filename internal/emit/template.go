package emit

import (
	"fmt"
	"io"
	"text/template"
)

// TemplateOptions sets the fixed parts of every template MCF block.
type TemplateOptions struct {
	Table             string
	ScalingFactor     int
	MeasurementMethod string
}

// DefaultTemplateOptions returns the values used for the NUTS2 enrollment import.
func DefaultTemplateOptions() TemplateOptions {
	return TemplateOptions{
		Table:             "EurostatsNUTS2_Enrollment",
		ScalingFactor:     100,
		MeasurementMethod: "EurostatRegionalStatistics",
	}
}

// TemplateEntry is one statistical variable block.
type TemplateEntry struct {
	Index   int
	StatVar string
	TemplateOptions
}

var tmcfBlock = template.Must(template.New("tmcf").Parse(`
Node: E:{{.Table}}->E{{.Index}}
typeOf: dcs:StatVarObservation
variableMeasured: dcs:{{.StatVar}}
observationAbout: C:{{.Table}}->GeoId
observationDate: C:{{.Table}}->Date
value: C:{{.Table}}->{{.StatVar}}
scalingFactor: {{.ScalingFactor}}
measurementMethod: dcs:{{.MeasurementMethod}}
`))

// Entries returns one entry per statistical variable in columns[2:].
func Entries(columns []string, opt TemplateOptions) ([]TemplateEntry, error) {
	if len(columns) < 3 {
		return nil, fmt.Errorf("need Date, GeoId and at least one value column, got %d column(s)", len(columns))
	}
	vars := columns[2:]
	out := make([]TemplateEntry, len(vars))
	for i, sv := range vars {
		out[i] = TemplateEntry{Index: i, StatVar: sv, TemplateOptions: opt}
	}
	return out, nil
}

// WriteTemplate writes one template MCF block per value column.
func WriteTemplate(w io.Writer, columns []string, opt TemplateOptions) error {
	entries, err := Entries(columns, opt)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if err := tmcfBlock.Execute(w, e); err != nil {
			return fmt.Errorf("write template entry %d: %w", e.Index, err)
		}
	}
	return nil
}
