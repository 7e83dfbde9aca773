package normalize

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"jobsearch-engine/internal/scrape/types"
)

func str(raw types.RawRecord, key string) string {
	switch v := raw[key].(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case []byte:
		return strings.TrimSpace(string(v))
	case fmt.Stringer:
		return strings.TrimSpace(v.String())
	case float64, float32, int, int64, int32, json.Number, bool:
		return fmt.Sprint(v)
	}
	return ""
}

func num(raw types.RawRecord, key string) (float64, bool) {
	var f float64
	switch v := raw[key].(type) {
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int:
		f = float64(v)
	case int64:
		f = float64(v)
	case int32:
		f = float64(v)
	case json.Number:
		x, err := v.Float64()
		if err != nil {
			return 0, false
		}
		f = x
	case string:
		x, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(v), ",", ""), 64)
		if err != nil {
			return 0, false
		}
		f = x
	default:
		return 0, false
	}
	if f <= 0 || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func boolean(raw types.RawRecord, key string) bool {
	switch v := raw[key].(type) {
	case bool:
		return v
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "yes", "1", "remote":
			return true
		}
	}
	return false
}

func strs(raw types.RawRecord, key string) []string {
	var in []string
	switch v := raw[key].(type) {
	case []string:
		in = v
	case []any:
		for _, x := range v {
			if s, ok := x.(string); ok {
				in = append(in, s)
			}
		}
	case string:
		in = strings.Split(v, ",")
	}
	seen := map[string]bool{}
	var out []string
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" || seen[strings.ToLower(s)] {
			continue
		}
		seen[strings.ToLower(s)] = true
		out = append(out, s)
	}
	return out
}

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05.000Z0700",
	time.RFC1123Z,
	time.RFC1123,
	"2006-01-02",
}

// parseDate accepts time.Time, RFC3339 and a few common layouts, or unix
// seconds/milliseconds as a number or numeric string. Results are UTC.
func parseDate(v any) *time.Time {
	var t time.Time
	switch x := v.(type) {
	case time.Time:
		t = x
	case *time.Time:
		if x == nil {
			return nil
		}
		t = *x
	case float64:
		t = fromUnix(int64(x))
	case int64:
		t = fromUnix(x)
	case int:
		t = fromUnix(int64(x))
	case json.Number:
		n, err := x.Int64()
		if err != nil {
			return nil
		}
		t = fromUnix(n)
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return nil
		}
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			t = fromUnix(n)
			break
		}
		for _, layout := range dateLayouts {
			if p, err := time.Parse(layout, s); err == nil {
				t = p
				break
			}
		}
	}
	if t.IsZero() {
		return nil
	}
	t = t.UTC()
	return &t
}

func fromUnix(n int64) time.Time {
	switch {
	case n <= 0:
		return time.Time{}
	case n > 1e12:
		return time.UnixMilli(n)
	default:
		return time.Unix(n, 0)
	}
}
