package research

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"jobsearch-engine/internal/domain"
	"jobsearch-engine/internal/scrape/util"
)

const hunterBaseURL = "https://api.hunter.io"

// Hunter queries Hunter.io's domain-search endpoint. Key is resolved per
// call so a key stored after startup takes effect.
type Hunter struct {
	BaseURL string
	Key     func() (string, error)
	client  *util.Client
}

var _ EmailProvider = (*Hunter)(nil)

func NewHunter(key func() (string, error), hc *http.Client, limiter *util.HostLimiter) *Hunter {
	return &Hunter{BaseURL: hunterBaseURL, Key: key, client: util.NewClient(domain.SourceID("hunter"), hc, limiter)}
}

type hunterResponse struct {
	Data struct {
		Domain  string `json:"domain"`
		Pattern string `json:"pattern"`
		Emails  []struct {
			Value      string `json:"value"`
			Confidence int    `json:"confidence"`
		} `json:"emails"`
	} `json:"data"`
}

func (h *Hunter) Lookup(ctx context.Context, host string) (string, []string, bool, error) {
	if h.Key == nil {
		return "", nil, false, nil
	}
	key, err := h.Key()
	if err != nil || key == "" {
		return "", nil, false, nil
	}

	params := url.Values{}
	params.Set("domain", host)
	params.Set("api_key", key)
	params.Set("limit", "10")

	var resp hunterResponse
	if err := h.client.GetJSON(ctx, h.BaseURL+"/v2/domain-search?"+params.Encode(), nil, &resp); err != nil {
		return "", nil, false, err
	}
	if resp.Data.Pattern == "" && len(resp.Data.Emails) == 0 {
		return "", nil, false, errors.New("hunter returned no data")
	}

	var examples []string
	for _, e := range resp.Data.Emails {
		if e.Value != "" && len(examples) < 3 {
			examples = append(examples, e.Value)
		}
	}
	return resp.Data.Pattern, examples, true, nil
}
