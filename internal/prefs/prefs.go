// Package prefs persists client-local preferences such as the dark-mode flag.
package prefs

import (
	"errors"
	"fmt"
	"strconv"
)

// DarkModeKey is the single durable key holding the dark-mode flag.
const DarkModeKey = "darkMode"

var ErrNotFound = errors.New("preference not found")

func encodeBool(v bool) string { return strconv.FormatBool(v) }

func decodeBool(key, raw string) (bool, error) {
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("corrupt preference %s: %w", key, err)
	}
	return v, nil
}
