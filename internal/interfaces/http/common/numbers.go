package common

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ParseOptionalPositiveFloat parses an optional positive number. Empty input
// yields nil.
func ParseOptionalPositiveFloat(value string) (*float64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(parsed) || math.IsInf(parsed, 0) {
		return nil, fmt.Errorf("%q is not a number", value)
	}
	if parsed <= 0 {
		return nil, fmt.Errorf("%q must be greater than zero", value)
	}
	return &parsed, nil
}

// ParseBool parses boolean form values with fallback.
func ParseBool(value string, fallback bool) bool {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback
	}
	switch strings.ToLower(value) {
	case "1", "true", "on", "yes":
		return true
	case "0", "false", "off", "no":
		return false
	}
	return fallback
}

// FloatPtrValue returns value or zero.
func FloatPtrValue(value *float64) float64 {
	if value == nil {
		return 0
	}
	return *value
}
