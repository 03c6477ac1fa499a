package reshape

import "fmt"

// FormatError indicates the source is not a well-formed tab-separated table.
type FormatError struct {
	Line int
	Msg  string
	Err  error
}

func (e *FormatError) Error() string {
	if e.Line > 0 {
		if e.Err != nil {
			return fmt.Sprintf("malformed table at line %d: %s: %v", e.Line, e.Msg, e.Err)
		}
		return fmt.Sprintf("malformed table at line %d: %s", e.Line, e.Msg)
	}
	if e.Err != nil {
		return fmt.Sprintf("malformed table: %s: %v", e.Msg, e.Err)
	}
	return fmt.Sprintf("malformed table: %s", e.Msg)
}

func (e *FormatError) Unwrap() error { return e.Err }

// KeyShapeError indicates a composite key that does not split into
// exactly unit, sex, age and geo.
type KeyShapeError struct {
	Row   int // 1-based data row
	Key   string
	Parts int
}

func (e *KeyShapeError) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("row %d: key %q has %d parts, want %d (unit,sex,age,geo)", e.Row, e.Key, e.Parts, keyParts)
	}
	return fmt.Sprintf("key %q has %d parts, want %d (unit,sex,age,geo)", e.Key, e.Parts, keyParts)
}

// NumericParseError indicates a value that still is not a number after
// data-quality flags were removed.
type NumericParseError struct {
	Raw     string
	Cleaned string
	Err     error
}

func (e *NumericParseError) Error() string {
	return fmt.Sprintf("value %q (cleaned %q) is not numeric: %v", e.Raw, e.Cleaned, e.Err)
}

func (e *NumericParseError) Unwrap() error { return e.Err }
