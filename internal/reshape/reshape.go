package reshape

import (
	"cmp"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
)

// Flags are the data-quality markers removed from a value before parsing.
// Each one is removed wherever it occurs, not only as a suffix.
var Flags = []string{" ", ":", "b", "e", "u"}

// LongRecord is one (geo, time, unit, age, sex) cell with its raw value.
type LongRecord struct {
	Geo   string
	Time  string
	Unit  string
	Age   string
	Sex   string
	Value string
}

// CleanRecord is a LongRecord whose value parsed as a number.
type CleanRecord struct {
	Geo   string
	Time  string
	Unit  string
	Age   string
	Sex   string
	Value float64
}

// GroupKey identifies one output row.
type GroupKey struct {
	Geo  string
	Time string
	Unit string
	Age  string
}

// WideRecord holds the per-sex values of one group. Sex codes without a
// value are absent from Values.
type WideRecord struct {
	GroupKey
	Values map[string]float64
}

// Value returns the value recorded for sex, if any.
func (w WideRecord) Value(sex string) (float64, bool) {
	v, ok := w.Values[sex]
	return v, ok
}

// Unpivot turns each (row, year column) pair into a LongRecord, row-major.
func Unpivot(t *Table) ([]LongRecord, error) {
	years := t.Years()
	out := make([]LongRecord, 0, len(t.Rows)*len(years))
	for i, row := range t.Rows {
		k, err := ParseKey(row.Key)
		if err != nil {
			if kse, ok := err.(*KeyShapeError); ok {
				kse.Row = i + 1
			}
			return nil, err
		}
		for j, year := range years {
			var v string
			if j < len(row.Values) {
				v = row.Values[j]
			}
			out = append(out, LongRecord{
				Geo:   k.Geo,
				Time:  year,
				Unit:  k.Unit,
				Age:   k.Age,
				Sex:   k.Sex,
				Value: v,
			})
		}
	}
	return out, nil
}

// HasDigit reports whether s contains at least one ASCII digit.
func HasDigit(s string) bool {
	return strings.ContainsAny(s, "0123456789")
}

// StripFlags removes every occurrence of each data-quality flag from s.
func StripFlags(s string) string {
	for _, f := range Flags {
		s = strings.ReplaceAll(s, f, "")
	}
	return s
}

// ParseValue strips flags from raw and parses the remainder.
func ParseValue(raw string) (float64, error) {
	cleaned := StripFlags(raw)
	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, &NumericParseError{Raw: raw, Cleaned: cleaned, Err: err}
	}
	return f, nil
}

// Clean drops records whose value has no digit and parses the rest.
func Clean(recs []LongRecord) ([]CleanRecord, error) {
	out := make([]CleanRecord, 0, len(recs))
	for _, r := range recs {
		if !HasDigit(r.Value) {
			continue
		}
		v, err := ParseValue(r.Value)
		if err != nil {
			return nil, fmt.Errorf("%s %s %s %s %s: %w", r.Geo, r.Time, r.Unit, r.Age, r.Sex, err)
		}
		out = append(out, CleanRecord{
			Geo:   r.Geo,
			Time:  r.Time,
			Unit:  r.Unit,
			Age:   r.Age,
			Sex:   r.Sex,
			Value: v,
		})
	}
	return out, nil
}

// Widen groups records by (geo, time, unit, age) and pivots sex into
// Values. The first record seen for a given group and sex wins. The result
// is sorted by geo, time, unit, then age.
func Widen(recs []CleanRecord) []WideRecord {
	groups := make(map[GroupKey]map[string]float64)
	for _, r := range recs {
		gk := GroupKey{Geo: r.Geo, Time: r.Time, Unit: r.Unit, Age: r.Age}
		vals, ok := groups[gk]
		if !ok {
			vals = make(map[string]float64, 3)
			groups[gk] = vals
		}
		if _, seen := vals[r.Sex]; !seen {
			vals[r.Sex] = r.Value
		}
	}
	out := make([]WideRecord, 0, len(groups))
	for gk, vals := range groups {
		out = append(out, WideRecord{GroupKey: gk, Values: vals})
	}
	slices.SortFunc(out, func(a, b WideRecord) int {
		return compareGroupKeys(a.GroupKey, b.GroupKey)
	})
	return out
}

func compareGroupKeys(a, b GroupKey) int {
	if c := cmp.Compare(a.Geo, b.Geo); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Time, b.Time); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Unit, b.Unit); c != 0 {
		return c
	}
	return cmp.Compare(a.Age, b.Age)
}

// Stats counts what each reshape stage produced.
type Stats struct {
	Rows         int `json:"rows"`
	YearColumns  int `json:"year_columns"`
	LongRecords  int `json:"long_records"`
	CleanRecords int `json:"clean_records"`
	Dropped      int `json:"dropped"`
	Groups       int `json:"groups"`
}

// Result is the output of Reshape.
type Result struct {
	Records []WideRecord
	Stats   Stats
}

// Reshape runs Load, Unpivot, Clean and Widen over r.
func Reshape(r io.Reader) (*Result, error) {
	t, err := Load(r)
	if err != nil {
		return nil, err
	}
	return ReshapeTable(t)
}

// ReshapeTable runs Unpivot, Clean and Widen over an already loaded table.
func ReshapeTable(t *Table) (*Result, error) {
	long, err := Unpivot(t)
	if err != nil {
		return nil, fmt.Errorf("unpivot: %w", err)
	}
	clean, err := Clean(long)
	if err != nil {
		return nil, fmt.Errorf("clean: %w", err)
	}
	wide := Widen(clean)
	return &Result{
		Records: wide,
		Stats: Stats{
			Rows:         len(t.Rows),
			YearColumns:  len(t.Years()),
			LongRecords:  len(long),
			CleanRecords: len(clean),
			Dropped:      len(long) - len(clean),
			Groups:       len(wide),
		},
	}, nil
}
