package config

import (
	"fmt"
	"strings"
)

type Validation struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}
func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
func (v Validation) OK() bool { return len(v.Errors) == 0 }

func (v Validation) Err() error {
	if v.OK() {
		return nil
	}
	return fmt.Errorf("config validation failed:\n- %s", strings.Join(v.Errors, "\n- "))
}

// NormalizeAndValidate returns a normalized copy plus any problems found.
func NormalizeAndValidate(cfg Config) (Config, Validation) {
	var out = cfg
	var res Validation

	trimCompanies := func(name string, xs []Company) []Company {
		seen := map[string]bool{}
		var ys []Company
		for i, c := range xs {
			c.Slug = strings.TrimSpace(c.Slug)
			c.Name = strings.TrimSpace(c.Name)
			if c.Slug == "" {
				res.addWarn("%s[%d] has no slug and was dropped", name, i)
				continue
			}
			if c.Name == "" {
				c.Name = c.Slug
			}
			key := strings.ToLower(c.Slug)
			if seen[key] {
				continue
			}
			seen[key] = true
			ys = append(ys, c)
		}
		return ys
	}

	out.Sources.Greenhouse.Companies = trimCompanies("sources.greenhouse.companies", out.Sources.Greenhouse.Companies)
	out.Sources.Lever.Companies = trimCompanies("sources.lever.companies", out.Sources.Lever.Companies)
	out.Sources.SmartRecruiters.Companies = trimCompanies("sources.smartrecruiters.companies", out.Sources.SmartRecruiters.Companies)

	var wd []WorkdayCompany
	for i, c := range out.Sources.Workday.Companies {
		c.Host = strings.TrimSuffix(strings.TrimSpace(c.Host), "/")
		c.Tenant = strings.TrimSpace(c.Tenant)
		c.Site = strings.TrimSpace(c.Site)
		if c.Host == "" || c.Tenant == "" || c.Site == "" {
			res.addErr("sources.workday.companies[%d] needs host, tenant and site", i)
			continue
		}
		if !strings.HasPrefix(c.Host, "http://") && !strings.HasPrefix(c.Host, "https://") {
			c.Host = "https://" + c.Host
		}
		if strings.TrimSpace(c.Name) == "" {
			c.Name = c.Tenant
		}
		wd = append(wd, c)
	}
	out.Sources.Workday.Companies = wd

	out.App.LogLevel = strings.ToLower(strings.TrimSpace(out.App.LogLevel))
	out.Search.Country = strings.ToUpper(strings.TrimSpace(out.Search.Country))
	out.Sources.Adzuna.AppID = strings.TrimSpace(out.Sources.Adzuna.AppID)

	// ---- Validation rules ----

	if out.App.Port <= 0 || out.App.Port > 65535 {
		res.addErr("app.port must be 1..65535")
	}

	if out.Search.DefaultResults < 1 {
		res.addErr("search.default_results must be >= 1")
	}
	if out.Search.MaxResults < out.Search.DefaultResults {
		res.addErr("search.max_results must be >= search.default_results")
	}
	if out.Search.MaxParallel < 0 {
		res.addErr("search.max_parallel must be >= 0 (0 means one worker per source, capped at 8)")
	} else if out.Search.MaxParallel > 32 {
		res.addWarn("search.max_parallel is very high (%d).", out.Search.MaxParallel)
	}
	if out.Search.SourceTimeoutSeconds <= 0 {
		res.addErr("search.source_timeout_seconds must be > 0")
	}
	if out.Search.OverallBudgetSeconds <= 0 {
		res.addErr("search.overall_budget_seconds must be > 0")
	} else if out.Search.SourceTimeoutSeconds > out.Search.OverallBudgetSeconds {
		res.addWarn("search.source_timeout_seconds (%d) exceeds the overall budget (%d); the budget wins.",
			out.Search.SourceTimeoutSeconds, out.Search.OverallBudgetSeconds)
	}

	if out.Retry.MaxRetries < 0 || out.Retry.MaxRetries > 5 {
		res.addErr("retry.max_retries must be 0..5")
	}
	if out.Retry.BaseDelayMS <= 0 {
		res.addErr("retry.base_delay_ms must be > 0")
	}
	if out.Retry.MaxDelayMS < out.Retry.BaseDelayMS {
		res.addErr("retry.max_delay_ms must be >= retry.base_delay_ms")
	}
	if out.Retry.JitterFactor < 0 || out.Retry.JitterFactor > 1 {
		res.addErr("retry.jitter_factor must be 0..1")
	}

	if out.Limiter.ReqPerSec <= 0 {
		res.addErr("limiter.req_per_sec must be > 0")
	} else if out.Limiter.ReqPerSec > 20 {
		res.addWarn("limiter.req_per_sec is high (%.1f) and may cause rate limits.", out.Limiter.ReqPerSec)
	}
	if out.Limiter.Burst < 1 {
		res.addErr("limiter.burst must be >= 1")
	}

	if len(out.EnabledSources()) == 0 {
		res.addErr("no sources enabled")
	}
	if out.Sources.Greenhouse.Enabled && len(out.Sources.Greenhouse.Companies) == 0 {
		res.addWarn("greenhouse is enabled but has no companies; it will be skipped.")
	}
	if out.Sources.Lever.Enabled && len(out.Sources.Lever.Companies) == 0 {
		res.addWarn("lever is enabled but has no companies; it will be skipped.")
	}
	if out.Sources.SmartRecruiters.Enabled && len(out.Sources.SmartRecruiters.Companies) == 0 {
		res.addWarn("smartrecruiters is enabled but has no companies; it will be skipped.")
	}
	if out.Sources.Workday.Enabled && len(out.Sources.Workday.Companies) == 0 {
		res.addWarn("workday is enabled but has no companies; it will be skipped.")
	}
	if out.Sources.Adzuna.Enabled && out.Sources.Adzuna.AppID == "" {
		res.addWarn("adzuna is enabled but sources.adzuna.app_id is empty; set it or ADZUNA_APP_ID.")
	}

	if out.Cache.Enabled {
		if strings.TrimSpace(out.Cache.RedisURL) == "" {
			res.addErr("cache.redis_url is required when cache.enabled=true")
		}
		if out.Cache.TTLSeconds <= 0 {
			res.addErr("cache.ttl_seconds must be > 0")
		}
	}

	checkRules := func(name string, rules []Rule) {
		for i, r := range rules {
			if r.Tag == "" {
				res.addErr("%s[%d].tag is required", name, i)
			}
			if len(r.Any) == 0 {
				res.addErr("%s[%d].any must have at least 1 term", name, i)
			}
			for j, term := range r.Any {
				if strings.TrimSpace(term) == "" {
					res.addErr("%s[%d].any[%d] cannot be empty", name, i, j)
				}
			}
		}
	}
	checkRules("scoring.title_rules", out.Scoring.TitleRules)
	checkRules("scoring.keyword_rules", out.Scoring.KeywordRules)
	for i, p := range out.Scoring.Penalties {
		if p.Reason == "" {
			res.addErr("scoring.penalties[%d].reason is required", i)
		}
		if len(p.Any) == 0 {
			res.addErr("scoring.penalties[%d].any must have at least 1 term", i)
		}
	}

	return out, res
}
