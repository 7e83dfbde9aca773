package config

import (
	"os"
	"time"

	"jobsearch-engine/internal/domain"

	"gopkg.in/yaml.v3"
)

type Rule struct {
	Tag    string   `yaml:"tag" json:"tag"`
	Weight int      `yaml:"weight" json:"weight"`
	Any    []string `yaml:"any" json:"any"`
}

type Penalty struct {
	Reason string   `yaml:"reason" json:"reason"`
	Weight int      `yaml:"weight" json:"weight"`
	Any    []string `yaml:"any" json:"any"`
}

type Company struct {
	Slug string `yaml:"slug" json:"slug"`
	Name string `yaml:"name" json:"name"`
}

// WorkdayCompany points at one Workday career site:
// https://<host>/wday/cxs/<tenant>/<site>/jobs
type WorkdayCompany struct {
	Name   string `yaml:"name" json:"name"`
	Host   string `yaml:"host" json:"host"`
	Tenant string `yaml:"tenant" json:"tenant"`
	Site   string `yaml:"site" json:"site"`
}

type ATSSource struct {
	Enabled   bool      `yaml:"enabled" json:"enabled"`
	Companies []Company `yaml:"companies" json:"companies"`
}

type Toggle struct {
	Enabled bool `yaml:"enabled" json:"enabled"`
}

type Config struct {
	App struct {
		Port      int    `yaml:"port" json:"port"`
		DataDir   string `yaml:"data_dir" json:"data_dir"`
		LogLevel  string `yaml:"log_level" json:"log_level"`
		LogFormat string `yaml:"log_format" json:"log_format"`
	} `yaml:"app" json:"app"`

	Search struct {
		DefaultResults       int    `yaml:"default_results" json:"default_results"`
		MaxResults           int    `yaml:"max_results" json:"max_results"`
		MaxParallel          int    `yaml:"max_parallel" json:"max_parallel"`
		SourceTimeoutSeconds int    `yaml:"source_timeout_seconds" json:"source_timeout_seconds"`
		OverallBudgetSeconds int    `yaml:"overall_budget_seconds" json:"overall_budget_seconds"`
		Country              string `yaml:"country" json:"country"`
	} `yaml:"search" json:"search"`

	Retry struct {
		MaxRetries   int     `yaml:"max_retries" json:"max_retries"`
		BaseDelayMS  int     `yaml:"base_delay_ms" json:"base_delay_ms"`
		MaxDelayMS   int     `yaml:"max_delay_ms" json:"max_delay_ms"`
		JitterFactor float64 `yaml:"jitter_factor" json:"jitter_factor"`
	} `yaml:"retry" json:"retry"`

	Limiter struct {
		ReqPerSec float64 `yaml:"req_per_sec" json:"req_per_sec"`
		Burst     int     `yaml:"burst" json:"burst"`
	} `yaml:"limiter" json:"limiter"`

	Sources struct {
		Greenhouse      ATSSource `yaml:"greenhouse" json:"greenhouse"`
		Lever           ATSSource `yaml:"lever" json:"lever"`
		SmartRecruiters ATSSource `yaml:"smartrecruiters" json:"smartrecruiters"`
		Workday         struct {
			Enabled   bool             `yaml:"enabled" json:"enabled"`
			Companies []WorkdayCompany `yaml:"companies" json:"companies"`
		} `yaml:"workday" json:"workday"`
		Adzuna struct {
			Enabled bool   `yaml:"enabled" json:"enabled"`
			AppID   string `yaml:"app_id" json:"app_id"`
		} `yaml:"adzuna" json:"adzuna"`
		Remotive Toggle `yaml:"remotive" json:"remotive"`
		RemoteOK Toggle `yaml:"remoteok" json:"remoteok"`
		Jobicy   Toggle `yaml:"jobicy" json:"jobicy"`
	} `yaml:"sources" json:"sources"`

	Cache struct {
		Enabled    bool   `yaml:"enabled" json:"enabled"`
		RedisURL   string `yaml:"redis_url" json:"redis_url"`
		TTLSeconds int    `yaml:"ttl_seconds" json:"ttl_seconds"`
	} `yaml:"cache" json:"cache"`

	Research struct {
		Enabled bool `yaml:"enabled" json:"enabled"`
	} `yaml:"research" json:"research"`

	Events struct {
		PingSeconds int `yaml:"ping_seconds" json:"ping_seconds"`
	} `yaml:"events" json:"events"`

	Scoring struct {
		TitleRules   []Rule    `yaml:"title_rules" json:"title_rules"`
		KeywordRules []Rule    `yaml:"keyword_rules" json:"keyword_rules"`
		Penalties    []Penalty `yaml:"penalties" json:"penalties"`
	} `yaml:"scoring" json:"scoring"`
}

// Default is the configuration used when no file exists yet, and the base
// that a loaded file is decoded on top of.
func Default() Config {
	var c Config
	c.App.Port = 8000
	c.App.DataDir = "."
	c.App.LogLevel = "info"
	c.App.LogFormat = "json"

	c.Search.DefaultResults = 15
	c.Search.MaxResults = 100
	c.Search.SourceTimeoutSeconds = 20
	c.Search.OverallBudgetSeconds = 45
	c.Search.Country = "USA"

	c.Retry.MaxRetries = 2
	c.Retry.BaseDelayMS = 500
	c.Retry.MaxDelayMS = 4000
	c.Retry.JitterFactor = 0.1

	c.Limiter.ReqPerSec = 2
	c.Limiter.Burst = 4

	c.Sources.Remotive.Enabled = true
	c.Sources.RemoteOK.Enabled = true
	c.Sources.Jobicy.Enabled = true

	c.Cache.TTLSeconds = 600
	c.Research.Enabled = true
	c.Events.PingSeconds = 25
	return c
}

func Load(path string) (Config, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	err = yaml.Unmarshal(b, &cfg)
	return cfg, err
}

func (c Config) SourceTimeout() time.Duration {
	return time.Duration(c.Search.SourceTimeoutSeconds) * time.Second
}

func (c Config) OverallBudget() time.Duration {
	return time.Duration(c.Search.OverallBudgetSeconds) * time.Second
}

func (c Config) RetryBaseDelay() time.Duration {
	return time.Duration(c.Retry.BaseDelayMS) * time.Millisecond
}

func (c Config) RetryMaxDelay() time.Duration {
	return time.Duration(c.Retry.MaxDelayMS) * time.Millisecond
}

func (c Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLSeconds) * time.Second
}

// SourceEnabled reports whether the operator switched the source on.
func (c Config) SourceEnabled(id domain.SourceID) bool {
	switch id {
	case domain.SourceGreenhouse:
		return c.Sources.Greenhouse.Enabled
	case domain.SourceLever:
		return c.Sources.Lever.Enabled
	case domain.SourceSmartRecruiters:
		return c.Sources.SmartRecruiters.Enabled
	case domain.SourceWorkday:
		return c.Sources.Workday.Enabled
	case domain.SourceAdzuna:
		return c.Sources.Adzuna.Enabled
	case domain.SourceRemotive:
		return c.Sources.Remotive.Enabled
	case domain.SourceRemoteOK:
		return c.Sources.RemoteOK.Enabled
	case domain.SourceJobicy:
		return c.Sources.Jobicy.Enabled
	}
	return false
}

func (c *Config) setSourceEnabled(id domain.SourceID, on bool) {
	switch id {
	case domain.SourceGreenhouse:
		c.Sources.Greenhouse.Enabled = on
	case domain.SourceLever:
		c.Sources.Lever.Enabled = on
	case domain.SourceSmartRecruiters:
		c.Sources.SmartRecruiters.Enabled = on
	case domain.SourceWorkday:
		c.Sources.Workday.Enabled = on
	case domain.SourceAdzuna:
		c.Sources.Adzuna.Enabled = on
	case domain.SourceRemotive:
		c.Sources.Remotive.Enabled = on
	case domain.SourceRemoteOK:
		c.Sources.RemoteOK.Enabled = on
	case domain.SourceJobicy:
		c.Sources.Jobicy.Enabled = on
	}
}

// EnabledSources lists enabled sources in priority order.
func (c Config) EnabledSources() []domain.SourceID {
	var out []domain.SourceID
	for _, s := range domain.AllSources {
		if c.SourceEnabled(s) {
			out = append(out, s)
		}
	}
	return out
}

func (c Config) QueryDefaults() domain.QueryDefaults {
	return domain.QueryDefaults{
		ResultsWanted: c.Search.DefaultResults,
		MaxResults:    c.Search.MaxResults,
		Sources:       c.EnabledSources(),
		Country:       c.Search.Country,
	}
}
