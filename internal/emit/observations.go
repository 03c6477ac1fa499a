// Package emit writes reshaped enrollment data as a Data Commons
// observation CSV and its template MCF.
package emit

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/KaramelBytes/eurostat-enrollment/internal/reshape"
)

// GeoPrefix is prepended to every NUTS code in the GeoId column.
const GeoPrefix = "dcid:nuts/"

// OutputColumns are the CSV columns in order. Entries from index 2 on are
// statistical variables.
var OutputColumns = []string{
	"Date",
	"GeoId",
	"Count_Person_25To64Years_EnrolledInEducationOrTraining_Female_AsAFractionOfCount_Person_25To64Years_Female",
	"Count_Person_25To64Years_EnrolledInEducationOrTraining_Male_AsAFractionOfCount_Person_25To64Years_Male",
	"Count_Person_25To64Years_EnrolledInEducationOrTraining_AsAFractionOfCount_Person_25To64Years",
}

// valueSexes lines up with OutputColumns[2:].
var valueSexes = []string{reshape.SexFemale, reshape.SexMale, reshape.SexTotal}

// WriteObservations writes the header followed by one row per record, in
// the order given. Missing values are written as empty fields.
func WriteObservations(w io.Writer, recs []reshape.WideRecord) error {
	cw := csv.NewWriter(w)
	cw.UseCRLF = false
	if err := cw.Write(OutputColumns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	row := make([]string, len(OutputColumns))
	for i, r := range recs {
		row[0] = Date(r.Time)
		row[1] = GeoID(r.Geo)
		for j, sex := range valueSexes {
			row[2+j] = ""
			if v, ok := r.Value(sex); ok {
				row[2+j] = FormatValue(v)
			}
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// Date returns the four-digit year prefix of a time label.
func Date(time string) string {
	if len(time) <= 4 {
		return time
	}
	return time[:4]
}

// GeoID returns the NUTS dcid for geo.
func GeoID(geo string) string { return GeoPrefix + geo }

// FormatValue renders v the way the import pipeline has always written
// floats: shortest round-trip form, with ".0" kept on whole numbers.
func FormatValue(v float64) string {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if abs := math.Abs(v); abs != 0 && (abs >= 1e16 || abs < 1e-4) {
		s = strconv.FormatFloat(v, 'g', -1, 64)
	}
	if !strings.ContainsAny(s, ".eEn") {
		s += ".0"
	}
	return s
}
