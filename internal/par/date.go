package par

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// compactDateLayout is the 8-digit calendar encoding used by the invoice
// exports, e.g. 20240301.
const compactDateLayout = "20060102"

// CompactDate is a calendar day parsed from the compact YYYYMMDD encoding.
// Valid is false when the source value could not be parsed; callers treat
// that as a null date rather than an error.
type CompactDate struct {
	Time  time.Time
	Valid bool
}

// ParseCompactDate parses a raw export value into a CompactDate. The
// exports are inconsistent: the same column may hold an int, an int64, a
// float (rendered with a trailing ".0"), or a string, and values shorter
// than 8 digits lost their leading zeros somewhere upstream. Anything
// unparseable yields an invalid date.
func ParseCompactDate(raw any) CompactDate {
	switch v := raw.(type) {
	case nil:
		return CompactDate{}
	case time.Time:
		return CompactDate{Time: Midnight(v), Valid: true}
	case *time.Time:
		if v == nil {
			return CompactDate{}
		}
		return CompactDate{Time: Midnight(*v), Valid: true}
	}

	s := strings.TrimSpace(coerceString(raw))
	if s == "" {
		return CompactDate{}
	}
	s = strings.TrimSuffix(s, ".0")
	if len(s) < 8 {
		s = strings.Repeat("0", 8-len(s)) + s
	}

	t, err := time.ParseInLocation(compactDateLayout, s, time.UTC)
	if err != nil {
		return CompactDate{}
	}
	return CompactDate{Time: t, Valid: true}
}

// ParseQuantity coerces a raw export value to a float64. Malformed values
// report ok=false and degrade to null upstream.
func ParseQuantity(raw any) (float64, bool) {
	switch v := raw.(type) {
	case nil:
		return 0, false
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	}

	s := strings.TrimSpace(coerceString(raw))
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func coerceString(raw any) string {
	switch v := raw.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	case int:
		return strconv.Itoa(v)
	case int32:
		return strconv.FormatInt(int64(v), 10)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		// Integral floats are the common case for date columns read back
		// from loosely typed stores.
		if v == float64(int64(v)) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return coerceString(float64(v))
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprintf("%v", raw)
	}
}

// Midnight truncates a timestamp to its calendar day. All engine
// arithmetic runs on UTC midnights so day deltas are exact.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

