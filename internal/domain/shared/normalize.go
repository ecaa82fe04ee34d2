package shared

import (
	"fmt"
	"strconv"
	"strings"
)

// Normalization helpers shared by the reference loaders, the query layer
// and the label builder. All functions are idempotent: applying one to
// its own output returns the same value.

// Trim removes surrounding whitespace.
func Trim(s string) string {
	return strings.TrimSpace(s)
}

// UpperTrim trims and uppercases without locale-dependent folding.
func UpperTrim(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// ParseIntDefault parses a trimmed integer, returning def on blank or
// invalid input.
func ParseIntDefault(s string, def int) int {
	t := strings.TrimSpace(s)
	if t == "" {
		return def
	}
	n, err := strconv.Atoi(t)
	if err != nil {
		return def
	}
	return n
}

// ParseFloatDefault parses a trimmed float, returning def on blank or
// invalid input.
func ParseFloatDefault(s string, def float64) float64 {
	t := strings.TrimSpace(s)
	if t == "" {
		return def
	}
	f, err := strconv.ParseFloat(t, 64)
	if err != nil {
		return def
	}
	return f
}

// RequireNonEmpty returns the trimmed value, or a validation error naming
// the field when the value is blank.
func RequireNonEmpty(field, value string) (string, error) {
	t := strings.TrimSpace(value)
	if t == "" {
		return "", NewValidationError(fmt.Sprintf("%s must not be empty", field))
	}
	return t, nil
}

// NormalizeSku uppercases a SKU and rejects blanks.
func NormalizeSku(sku string) (string, error) {
	t := UpperTrim(sku)
	if t == "" {
		return "", NewValidationError("sku must not be empty")
	}
	return t, nil
}

// NormalizeStagingLocation uppercases a staging location and rejects blanks.
func NormalizeStagingLocation(loc string) (string, error) {
	t := UpperTrim(loc)
	if t == "" {
		return "", NewValidationError("staging location must not be empty")
	}
	return t, nil
}

// OptionalStagingLocation uppercases a staging location, returning ""
// for blank input.
func OptionalStagingLocation(loc string) string {
	return UpperTrim(loc)
}

// NormalizeBarcode trims a barcode and rejects blanks.
func NormalizeBarcode(code string) (string, error) {
	t := strings.TrimSpace(code)
	if t == "" {
		return "", NewValidationError("barcode must not be empty")
	}
	return t, nil
}

// NormalizeCarrierCode uppercases a SCAC and rejects blanks.
func NormalizeCarrierCode(code string) (string, error) {
	t := UpperTrim(code)
	if t == "" {
		return "", NewValidationError("carrier code must not be empty")
	}
	return t, nil
}

// DigitsOnly keeps the digit runes of s in order.
func DigitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// StripLeadingZeros removes leading zeros, collapsing an all-zero string
// to "0".
func StripLeadingZeros(s string) string {
	t := strings.TrimLeft(s, "0")
	if t == "" && s != "" {
		return "0"
	}
	return t
}
