package research

import "strings"

// DefaultPattern is the most common corporate address format.
const DefaultPattern = "{first}.{last}"

var sampleNames = [][2]string{
	{"jane", "doe"},
	{"john", "smith"},
}

// Examples renders pattern for a couple of sample names at host. Patterns
// use Hunter's placeholders: {first}, {last}, {f}, {l}.
func Examples(pattern, host string) []string {
	if pattern == "" || host == "" {
		return nil
	}
	out := make([]string, 0, len(sampleNames))
	for _, n := range sampleNames {
		local := strings.NewReplacer(
			"{first}", n[0],
			"{last}", n[1],
			"{f}", n[0][:1],
			"{l}", n[1][:1],
		).Replace(pattern)
		out = append(out, local+"@"+host)
	}
	return out
}
