package reshape

import "strings"

const keyParts = 4

// Sex codes used in the source key.
const (
	SexFemale = "F"
	SexMale   = "M"
	SexTotal  = "T"
)

// Key is the decomposed composite key of a source row.
type Key struct {
	Unit string
	Sex  string
	Age  string
	Geo  string
}

// ParseKey splits "unit,sex,age,geo" into its named parts.
func ParseKey(s string) (Key, error) {
	parts := strings.Split(s, ",")
	if len(parts) != keyParts {
		return Key{}, &KeyShapeError{Key: s, Parts: len(parts)}
	}
	return Key{Unit: parts[0], Sex: parts[1], Age: parts[2], Geo: parts[3]}, nil
}
