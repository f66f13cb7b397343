package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultSourceURL    = "https://en.wikipedia.org/api/rest_v1/page/html/2026_Winter_Olympics_medal_table"
	defaultReferenceURL = "https://en.wikipedia.org/wiki/List_of_IOC_country_codes"
)

type Config struct {
	SourceURL    string
	ReferenceURL string
	UserAgent    string

	HTTPTimeoutMs  int
	CheckTimeoutMs int
	RateLimitRPS   int

	WatchIntervalSec int

	DataDir      string
	ReferenceCSV string
	MembersJSON  string
	OutputCSV    string
	OutputJSON   string
	MetaJSON     string
	OutputXLSX   string
	DBPath       string
	MetricsPath  string

	FlagURLTemplate string
	AggregateNOC    string
	AggregateName   string
	AggregateISO2   string

	Debug        bool
	GitHubOutput string
}

func Load() (Config, error) {
	_ = godotenv.Load()

	dataDir := getEnv("MEDALS_DATA_DIR", "data")
	if !filepath.IsAbs(dataDir) {
		cwd, err := os.Getwd()
		if err != nil {
			return Config{}, err
		}
		dataDir = filepath.Join(cwd, dataDir)
	}

	cfg := Config{
		SourceURL:    getEnv("MEDALS_SOURCE_URL", defaultSourceURL),
		ReferenceURL: getEnv("MEDALS_REFERENCE_URL", defaultReferenceURL),
		UserAgent:    getEnv("MEDALS_USER_AGENT", "medals-bot/1.0"),

		HTTPTimeoutMs:  getEnvInt("MEDALS_HTTP_TIMEOUT_MS", 30000),
		CheckTimeoutMs: getEnvInt("MEDALS_CHECK_TIMEOUT_MS", 20000),
		RateLimitRPS:   getEnvInt("MEDALS_RATE_LIMIT_RPS", 2),

		WatchIntervalSec: getEnvInt("MEDALS_WATCH_INTERVAL_SEC", 900),

		DataDir:      dataDir,
		ReferenceCSV: getEnv("MEDALS_REFERENCE_CSV", filepath.Join(dataDir, "ioc_codes.csv")),
		MembersJSON:  getEnv("MEDALS_MEMBERS_JSON", filepath.Join(dataDir, "eu_members.json")),
		OutputCSV:    getEnv("MEDALS_OUTPUT_CSV", filepath.Join(dataDir, "medals_eu.csv")),
		OutputJSON:   getEnv("MEDALS_OUTPUT_JSON", filepath.Join(dataDir, "medals_eu.json")),
		MetaJSON:     getEnv("MEDALS_META_JSON", filepath.Join(dataDir, "medals_meta.json")),
		OutputXLSX:   getEnv("MEDALS_OUTPUT_XLSX", filepath.Join(dataDir, "medals_eu.xlsx")),
		DBPath:       getEnv("MEDALS_DB_PATH", filepath.Join(dataDir, "medals.db")),
		MetricsPath:  getEnv("MEDALS_METRICS_PATH", filepath.Join(dataDir, "medals.prom")),

		FlagURLTemplate: getEnv("MEDALS_FLAG_URL_TEMPLATE", "https://flagcdn.com/w40/%s.png"),
		AggregateNOC:    getEnv("MEDALS_AGGREGATE_NOC", "EU27"),
		AggregateName:   getEnv("MEDALS_AGGREGATE_NAME", "European Union"),
		AggregateISO2:   getEnv("MEDALS_AGGREGATE_ISO2", "EU"),

		Debug:        getEnvBool("MEDALS_DEBUG", false),
		GitHubOutput: getEnv("GITHUB_OUTPUT", ""),
	}

	if err := cfg.Require("MEDALS_SOURCE_URL", cfg.SourceURL); err != nil {
		return Config{}, err
	}
	if err := cfg.Require("MEDALS_OUTPUT_CSV", cfg.OutputCSV); err != nil {
		return Config{}, err
	}
	if err := cfg.Require("MEDALS_OUTPUT_JSON", cfg.OutputJSON); err != nil {
		return Config{}, err
	}
	if err := cfg.Require("MEDALS_META_JSON", cfg.MetaJSON); err != nil {
		return Config{}, err
	}
	if !strings.Contains(cfg.FlagURLTemplate, "%s") {
		return Config{}, fmt.Errorf("MEDALS_FLAG_URL_TEMPLATE must contain %%s: %q", cfg.FlagURLTemplate)
	}

	return cfg, nil
}

func (c Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutMs) * time.Millisecond
}

func (c Config) CheckTimeout() time.Duration {
	return time.Duration(c.CheckTimeoutMs) * time.Millisecond
}

func (c Config) WatchInterval() time.Duration {
	if c.WatchIntervalSec <= 0 {
		return 900 * time.Second
	}
	return time.Duration(c.WatchIntervalSec) * time.Second
}

func (c Config) Require(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("missing required env var: %s", name)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := strings.ToLower(strings.TrimSpace(getEnv(key, "")))
	if value == "" {
		return fallback
	}
	if value == "1" || value == "true" || value == "yes" || value == "on" {
		return true
	}
	if value == "0" || value == "false" || value == "no" || value == "off" {
		return false
	}
	return fallback
}
