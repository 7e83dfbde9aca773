package normalize

import (
	"regexp"
	"strconv"
	"strings"

	"jobsearch-engine/internal/domain"
)

// a number with optional thousands separators or decimals, and a k suffix
var amountRe = regexp.MustCompile(`(\d{1,3}(?:[,.]\d{3})+|\d+(?:\.\d+)?)\s*([kK])?`)

var currencyCodes = []string{"USD", "CAD", "AUD", "GBP", "EUR", "INR", "SGD", "BRL", "JPY", "NZD", "CHF"}

var currencySymbols = []struct{ sym, code string }{
	{"£", "GBP"},
	{"€", "EUR"},
	{"₹", "INR"},
	{"¥", "JPY"},
	{"$", "USD"},
}

// ParseSalary reads free-form salary text such as "$80k-$120k",
// "90000-130000 USD", "£45,000 - £55,000", "€60k" or "$40/hour".
// It returns nil when no amount can be found.
func ParseSalary(s string) *domain.Salary {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	var nums []float64
	for _, m := range amountRe.FindAllStringSubmatch(s, -1) {
		v, ok := parseAmount(m[1])
		if !ok {
			continue
		}
		if m[2] != "" {
			v *= 1000
		}
		nums = append(nums, v)
		if len(nums) == 2 {
			break
		}
	}
	if len(nums) == 0 {
		return nil
	}

	lo, hi := nums[0], nums[0]
	if len(nums) == 2 {
		lo, hi = nums[0], nums[1]
		// "$80-120k": the suffix on the upper bound applies to both
		if lo < 1000 && hi >= 1000 && hi/lo >= 100 {
			lo *= 1000
		}
		if lo > hi {
			lo, hi = hi, lo
		}
	}

	return &domain.Salary{
		Min:      &lo,
		Max:      &hi,
		Currency: detectCurrency(s),
		Interval: detectInterval(s, hi),
	}
}

func parseAmount(raw string) (float64, bool) {
	// "45,000" and "45.000" are thousands; "45.5" is a decimal
	if strings.ContainsAny(raw, ",.") {
		parts := strings.FieldsFunc(raw, func(r rune) bool { return r == ',' || r == '.' })
		if len(parts) > 1 && len(parts[len(parts)-1]) == 3 {
			raw = strings.Join(parts, "")
		}
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}

func detectCurrency(s string) string {
	up := strings.ToUpper(s)
	for _, c := range currencyCodes {
		if strings.Contains(up, c) {
			return c
		}
	}
	for _, cs := range currencySymbols {
		if strings.Contains(s, cs.sym) {
			return cs.code
		}
	}
	return ""
}

func detectInterval(s string, hi float64) string {
	low := strings.ToLower(s)
	if iv := intervalKeyword(low); iv != "" {
		return iv
	}
	switch {
	case strings.Contains(low, "/hr"), strings.Contains(low, "per hr"):
		return "hourly"
	case strings.Contains(low, "/mo"):
		return "monthly"
	case strings.Contains(low, "/yr"):
		return "yearly"
	}
	if hi >= 1000 {
		return "yearly"
	}
	return ""
}

// normalizeInterval maps interval labels ("per-year-salary", "Hourly",
// "month") onto yearly/monthly/weekly/daily/hourly. Unknown labels come back
// lower-cased.
func normalizeInterval(s string) string {
	low := strings.ToLower(strings.TrimSpace(s))
	if iv := intervalKeyword(low); iv != "" {
		return iv
	}
	return low
}

func intervalKeyword(low string) string {
	switch {
	case strings.Contains(low, "hour"):
		return "hourly"
	case strings.Contains(low, "month"):
		return "monthly"
	case strings.Contains(low, "week"):
		return "weekly"
	case strings.Contains(low, "daily"), strings.Contains(low, "per day"), low == "day":
		return "daily"
	case strings.Contains(low, "year"), strings.Contains(low, "annual"):
		return "yearly"
	}
	return ""
}
