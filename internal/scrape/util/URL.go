package util

import (
	"net/url"
	"slices"
	"strings"
)

var trackingParams = map[string]bool{
	"gclid": true, "fbclid": true, "msclkid": true,
	"mc_cid": true, "mc_eid": true, "mkt_tok": true,
	"ref": true, "source": true, "gh_src": true, "lever-origin": true,
}

// CanonicalizeURL returns the form of a job link used for identity and
// dedupe. Non-http values come back trimmed but otherwise untouched.
func CanonicalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if raw == "" || err != nil || u.Host == "" {
		return raw
	}
	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return raw
	}

	u.Scheme = scheme
	u.Host = strings.TrimPrefix(strings.ToLower(u.Host), "www.")
	u.Fragment = ""
	u.RawFragment = ""

	q := u.Query()
	for k, vals := range q {
		lk := strings.ToLower(k)
		if strings.HasPrefix(lk, "utm_") || trackingParams[lk] {
			q.Del(k)
			continue
		}
		slices.Sort(vals)
	}
	// Encode sorts keys
	u.RawQuery = q.Encode()
	return strings.TrimSuffix(u.String(), "/")
}
