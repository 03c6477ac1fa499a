package reshape

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
)

// Table is the wide source table: a key column followed by one column per year.
type Table struct {
	Header []string
	Rows   []RawRecord
}

// RawRecord is one source row.
type RawRecord struct {
	Key    string
	Values []string
}

// KeyColumn returns the label of the composite key column.
func (t *Table) KeyColumn() string {
	if len(t.Header) == 0 {
		return ""
	}
	return t.Header[0]
}

// Years returns the year column labels verbatim.
func (t *Table) Years() []string {
	if len(t.Header) < 2 {
		return nil
	}
	return t.Header[1:]
}

// Load reads a tab-delimited table. The first column of every row holds the
// composite key; the remaining columns must line up with the header.
func Load(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.FieldsPerRecord = 0 // header length is enforced for every row
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &FormatError{Msg: "empty input"}
		}
		return nil, wrapCSVError("read header", err)
	}
	if len(header) < 2 {
		return nil, &FormatError{Line: 1, Msg: fmt.Sprintf("header has %d column(s), want a key column and at least one year", len(header))}
	}
	t := &Table{Header: append([]string(nil), header...)}
	for {
		rec, err := cr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, wrapCSVError(fmt.Sprintf("read row %d", len(t.Rows)+1), err)
		}
		t.Rows = append(t.Rows, RawRecord{
			Key:    rec[0],
			Values: append([]string(nil), rec[1:]...),
		})
	}
	return t, nil
}

func wrapCSVError(msg string, err error) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return &FormatError{Line: pe.Line, Msg: msg, Err: pe.Err}
	}
	return &FormatError{Msg: msg, Err: err}
}
