package analysis

import (
	"fmt"
	"sort"
	"strings"

	"github.com/KaramelBytes/eurostat-enrollment/internal/reshape"
)

// Options controls inspection behavior.
type Options struct {
	// SampleRows determines how many source rows to include in the report.
	SampleRows int
	// MaxWarnings caps the warnings kept for malformed keys and values.
	MaxWarnings int
}

// DefaultOptions returns reasonable defaults for dataset inspection.
func DefaultOptions() Options {
	return Options{SampleRows: 5, MaxWarnings: 10}
}

// Report summarises a source table without converting it.
type Report struct {
	Name        string
	KeyColumn   string
	Rows        int
	YearColumns int
	FirstYear   string
	LastYear    string
	Cells       int
	Kept        int
	Dropped     int
	Invalid     int
	BadKeys     int
	FlagCounts  map[string]int // cells containing each flag
	Sexes       map[string]int // kept cells per sex code
	Geos        int
	Groups      int
	Samples     []reshape.RawRecord
	Warnings    []string
}

// Inspect walks every cell of t the way the converter would, but records
// problems as warnings instead of failing.
func Inspect(name string, t *reshape.Table, opt Options) *Report {
	if opt.SampleRows < 0 {
		opt.SampleRows = 0
	}
	if opt.MaxWarnings <= 0 {
		opt.MaxWarnings = 10
	}
	years := t.Years()
	rep := &Report{
		Name:        name,
		KeyColumn:   t.KeyColumn(),
		Rows:        len(t.Rows),
		YearColumns: len(years),
		FlagCounts:  make(map[string]int, len(reshape.Flags)),
		Sexes:       make(map[string]int),
	}
	if len(years) > 0 {
		rep.FirstYear = strings.TrimSpace(years[0])
		rep.LastYear = strings.TrimSpace(years[len(years)-1])
	}
	warn := func(format string, args ...any) {
		if len(rep.Warnings) < opt.MaxWarnings {
			rep.Warnings = append(rep.Warnings, fmt.Sprintf(format, args...))
		}
	}

	geos := map[string]struct{}{}
	groups := map[reshape.GroupKey]struct{}{}
	for i, row := range t.Rows {
		if len(rep.Samples) < opt.SampleRows {
			rep.Samples = append(rep.Samples, row)
		}
		k, err := reshape.ParseKey(row.Key)
		if err != nil {
			rep.BadKeys++
			warn("row %d: %v", i+1, err)
			continue
		}
		for j, year := range years {
			if j >= len(row.Values) {
				break
			}
			v := row.Values[j]
			rep.Cells++
			for _, f := range reshape.Flags {
				if strings.Contains(v, f) {
					rep.FlagCounts[f]++
				}
			}
			if !reshape.HasDigit(v) {
				rep.Dropped++
				continue
			}
			if _, err := reshape.ParseValue(v); err != nil {
				rep.Invalid++
				warn("row %d, %s: %v", i+1, strings.TrimSpace(year), err)
				continue
			}
			rep.Kept++
			rep.Sexes[k.Sex]++
			geos[k.Geo] = struct{}{}
			groups[reshape.GroupKey{Geo: k.Geo, Time: year, Unit: k.Unit, Age: k.Age}] = struct{}{}
		}
	}
	rep.Geos = len(geos)
	rep.Groups = len(groups)
	return rep
}

// Markdown renders the report as a compact plain-text summary.
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	if r.Name != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", r.Name))
	}
	b.WriteString(fmt.Sprintf("Key column: %s\n", safeVal(r.KeyColumn)))
	b.WriteString(fmt.Sprintf("Rows: %d\n", r.Rows))
	if r.YearColumns > 0 {
		b.WriteString(fmt.Sprintf("Year columns: %d (%s .. %s)\n", r.YearColumns, r.FirstYear, r.LastYear))
	} else {
		b.WriteString("Year columns: 0\n")
	}
	b.WriteString("\n[CELLS]\n")
	b.WriteString(fmt.Sprintf("- total: %d\n", r.Cells))
	b.WriteString(fmt.Sprintf("- kept: %d\n", r.Kept))
	b.WriteString(fmt.Sprintf("- dropped (no digits): %d\n", r.Dropped))
	if r.Invalid > 0 {
		b.WriteString(fmt.Sprintf("- not numeric after flag removal: %d\n", r.Invalid))
	}
	if r.BadKeys > 0 {
		b.WriteString(fmt.Sprintf("- rows with malformed keys: %d\n", r.BadKeys))
	}

	b.WriteString("\n[FLAGS]\n")
	for _, f := range reshape.Flags {
		b.WriteString(fmt.Sprintf("- %s: %d\n", flagName(f), r.FlagCounts[f]))
	}

	b.WriteString("\n[OUTPUT PREVIEW]\n")
	b.WriteString(fmt.Sprintf("- geos: %d\n", r.Geos))
	b.WriteString(fmt.Sprintf("- output rows: %d\n", r.Groups))
	if len(r.Sexes) > 0 {
		sexes := make([]string, 0, len(r.Sexes))
		for s := range r.Sexes {
			sexes = append(sexes, s)
		}
		sort.Strings(sexes)
		parts := make([]string, len(sexes))
		for i, s := range sexes {
			parts[i] = fmt.Sprintf("%s(%d)", safeVal(s), r.Sexes[s])
		}
		b.WriteString("- values by sex: " + strings.Join(parts, ", ") + "\n")
	}

	if len(r.Samples) > 0 {
		b.WriteString("\n[HEAD AND SAMPLE ROWS]\n")
		for _, s := range r.Samples {
			vals := make([]string, len(s.Values))
			for i, v := range s.Values {
				vals[i] = safeVal(v)
			}
			b.WriteString(fmt.Sprintf("| %s | %s |\n", safeVal(s.Key), strings.Join(vals, " | ")))
		}
	}
	if len(r.Warnings) > 0 {
		b.WriteString("\n[WARNINGS]\n")
		for _, w := range r.Warnings {
			b.WriteString("- " + w + "\n")
		}
	}
	return b.String()
}

func flagName(f string) string {
	if f == " " {
		return "space"
	}
	return fmt.Sprintf("%q", f)
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
