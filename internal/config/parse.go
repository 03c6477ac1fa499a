package config

import (
	"fmt"
	"strconv"
)

func parseBool(val string) (bool, error) {
	return strconv.ParseBool(val)
}

func setNonNegative(dst *int, key, val string) error {
	i, err := strconv.Atoi(val)
	if err != nil || i < 0 {
		return fmt.Errorf("invalid int for %s: %v", key, val)
	}
	*dst = i
	return nil
}
