package analysis

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

const (
	// ScoreMin and ScoreMax bound every score in the system. Out-of-range
	// values are clamped, not rejected: a backend returning 0 or 11 still
	// carries a usable "very bad"/"very good" signal at the boundary.
	ScoreMin = 1.0
	ScoreMax = 10.0
)

// ClampScore caps a raw score into [ScoreMin, ScoreMax].
func ClampScore(v float64) float64 {
	if v < ScoreMin {
		return ScoreMin
	}
	if v > ScoreMax {
		return ScoreMax
	}
	return v
}

// FoldKey canonicalizes an object key for field lookup: case-folded with
// underscores, hyphens and spaces removed, so "score_numeric",
// "ScoreNumeric" and "score numeric" collide.
func FoldKey(k string) string {
	k = strings.ToLower(strings.TrimSpace(k))
	return strings.NewReplacer("_", "", "-", "", " ", "").Replace(k)
}

// ToFloat converts a value of unknown dynamic type (as produced by JSON
// decoding or fragment scanning) to a float64. Failure here fails only the
// field, never the whole record.
func ToFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case json.Number:
		return n.Float64()
	case string:
		s := strings.TrimSpace(n)
		// Tolerate "7/10" and trailing junk like "8.5 out of 10".
		if i := strings.IndexAny(s, "/ "); i > 0 {
			s = s[:i]
		}
		return strconv.ParseFloat(s, 64)
	case bool, nil:
		return 0, fmt.Errorf("not numeric: %v", v)
	default:
		return 0, fmt.Errorf("not numeric: %T", v)
	}
}

// toString renders scalar field values; non-strings fall back to Sprint.
func toString(v any) string {
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s)
	case nil:
		return ""
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

// toStringList accepts JSON arrays of scalars as well as a single scalar.
func toStringList(v any) []string {
	switch arr := v.(type) {
	case []any:
		out := make([]string, 0, len(arr))
		for _, it := range arr {
			if s := toString(it); s != "" {
				out = append(out, s)
			}
		}
		return out
	case []string:
		return arr
	default:
		if s := toString(v); s != "" {
			return []string{s}
		}
		return nil
	}
}
