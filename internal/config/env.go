package config

import (
	"os"
	"strconv"
	"strings"

	"jobsearch-engine/internal/domain"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// LoadEnv loads .env files from the working directory when present.
func LoadEnv(logger *logrus.Logger) {
	files := []string{".env", ".env.local"}
	var loaded []string
	for _, file := range files {
		if _, err := os.Stat(file); err != nil {
			continue
		}
		if err := godotenv.Overload(file); err != nil {
			if logger != nil {
				logger.WithError(err).Warnf("failed to load %s", file)
			}
			continue
		}
		loaded = append(loaded, file)
	}
	if logger != nil && len(loaded) > 0 {
		logger.Debugf("loaded env files: %s", strings.Join(loaded, ", "))
	}
}

func GetEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func GetEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return def
}

func GetEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			return b
		}
	}
	return def
}

// ApplyEnv overlays process environment on top of the file config.
// JOBSEARCH_SOURCES is a comma list; when set, exactly those sources are enabled.
func ApplyEnv(cfg *Config) (unknownSources []string) {
	cfg.App.Port = GetEnvInt("PORT", cfg.App.Port)
	cfg.App.LogLevel = GetEnv("LOG_LEVEL", cfg.App.LogLevel)
	cfg.App.LogFormat = GetEnv("LOG_FORMAT", cfg.App.LogFormat)
	cfg.Search.MaxParallel = GetEnvInt("JOBSEARCH_MAX_PARALLEL", cfg.Search.MaxParallel)

	if u := GetEnv("REDIS_URL", ""); u != "" {
		cfg.Cache.RedisURL = u
		cfg.Cache.Enabled = GetEnvBool("JOBSEARCH_CACHE", true)
	}
	if id := GetEnv("ADZUNA_APP_ID", ""); id != "" {
		cfg.Sources.Adzuna.AppID = id
	}

	raw := GetEnv("JOBSEARCH_SOURCES", "")
	if raw == "" {
		return nil
	}
	want := map[domain.SourceID]bool{}
	for _, part := range strings.Split(raw, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		id, ok := domain.ParseSourceID(part)
		if !ok {
			unknownSources = append(unknownSources, strings.TrimSpace(part))
			continue
		}
		want[id] = true
	}
	for _, s := range domain.AllSources {
		cfg.setSourceEnabled(s, want[s])
	}
	return unknownSources
}
