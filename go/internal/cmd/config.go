package main

import (
	"fmt"
	"os"

	"github.com/mcdev12/gaffer/go/internal/eligibility"
	"github.com/mcdev12/gaffer/go/internal/season"
	"github.com/mcdev12/gaffer/go/internal/transfermarket"
	"github.com/nats-io/nats.go"
	"gopkg.in/yaml.v3"
)

// AppConfig is everything read from the environment at startup. Rule files
// are optional overlays; compiled-in defaults apply when unset.
type AppConfig struct {
	NATSURL string

	SuspensionRulesPath     string
	QualificationConfigPath string
	MarketConfigPath        string

	LogLevel string
}

// loadAppConfig reads the app configuration from environment variables.
func loadAppConfig() AppConfig {
	return AppConfig{
		NATSURL:                 getEnv("NATS_URL", nats.DefaultURL),
		SuspensionRulesPath:     os.Getenv("SUSPENSION_RULES_PATH"),
		QualificationConfigPath: os.Getenv("QUALIFICATION_CONFIG_PATH"),
		MarketConfigPath:        os.Getenv("MARKET_CONFIG_PATH"),
		LogLevel:                getEnv("LOG_LEVEL", "info"),
	}
}

// ruleTable loads the suspension rule overlay, or the defaults.
func (c AppConfig) ruleTable() (eligibility.RuleTable, error) {
	if c.SuspensionRulesPath == "" {
		return eligibility.DefaultRuleTable(), nil
	}
	return eligibility.LoadRuleTable(c.SuspensionRulesPath)
}

// qualificationConfig loads the continental slot overlay, or the defaults.
func (c AppConfig) qualificationConfig() (season.QualificationConfig, error) {
	if c.QualificationConfigPath == "" {
		return season.DefaultQualificationConfig(), nil
	}
	return season.LoadQualificationConfig(c.QualificationConfigPath)
}

// marketConfig loads market tunables over the compiled-in balance.
func (c AppConfig) marketConfig() (transfermarket.Config, error) {
	cfg := transfermarket.DefaultConfig()
	if c.MarketConfigPath == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(c.MarketConfigPath)
	if err != nil {
		return cfg, fmt.Errorf("failed to read market config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse market config: %w", err)
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
