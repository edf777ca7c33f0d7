package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Jina      JinaConfig      `yaml:"jina" mapstructure:"jina"`
	Firecrawl FirecrawlConfig `yaml:"firecrawl" mapstructure:"firecrawl"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Sources   SourcesConfig   `yaml:"sources" mapstructure:"sources"`
	Validate  ValidateConfig  `yaml:"validate" mapstructure:"validate"`
	Intel     IntelConfig     `yaml:"intel" mapstructure:"intel"`
	Enrich    EnrichConfig    `yaml:"enrich" mapstructure:"enrich"`
	Upgrade   UpgradeConfig   `yaml:"upgrade" mapstructure:"upgrade"`
	Strategy  StrategyConfig  `yaml:"strategy" mapstructure:"strategy"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the lead store backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// JinaConfig holds Jina AI reader/search settings.
type JinaConfig struct {
	Key           string `yaml:"key" mapstructure:"key"`
	BaseURL       string `yaml:"base_url" mapstructure:"base_url"`
	SearchBaseURL string `yaml:"search_base_url" mapstructure:"search_base_url"`
}

// FirecrawlConfig holds the fallback scraper settings. An empty key
// disables the fallback.
type FirecrawlConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key   string `yaml:"key" mapstructure:"key"`
	Model string `yaml:"model" mapstructure:"model"`
}

// SourcesConfig configures source selection and scraping.
type SourcesConfig struct {
	SearchLimit         int      `yaml:"search_limit" mapstructure:"search_limit"`
	MaxScrapeSources    int      `yaml:"max_scrape_sources" mapstructure:"max_scrape_sources"`
	MinUsableSources    int      `yaml:"min_usable_sources" mapstructure:"min_usable_sources"`
	TopUpAttempts       int      `yaml:"top_up_attempts" mapstructure:"top_up_attempts"`
	SubstantialityFloor int      `yaml:"substantiality_floor" mapstructure:"substantiality_floor"`
	PerSourceCap        int      `yaml:"per_source_cap" mapstructure:"per_source_cap"`
	FetchDelaySecs      int      `yaml:"fetch_delay_secs" mapstructure:"fetch_delay_secs"`
	ExcludePaths        []string `yaml:"exclude_paths" mapstructure:"exclude_paths"`
}

// WithDefaults fills zero values with the standard knobs.
func (c SourcesConfig) WithDefaults() SourcesConfig {
	if c.SearchLimit <= 0 {
		c.SearchLimit = 10
	}
	if c.MaxScrapeSources <= 0 {
		c.MaxScrapeSources = 3
	}
	if c.MinUsableSources <= 0 {
		c.MinUsableSources = 2
	}
	if c.TopUpAttempts <= 0 {
		c.TopUpAttempts = 2
	}
	if c.SubstantialityFloor <= 0 {
		c.SubstantialityFloor = 100
	}
	if c.PerSourceCap <= 0 {
		c.PerSourceCap = 50000
	}
	return c
}

// ValidateConfig configures batched person validation.
type ValidateConfig struct {
	BatchSize      int `yaml:"batch_size" mapstructure:"batch_size"`
	BatchDelaySecs int `yaml:"batch_delay_secs" mapstructure:"batch_delay_secs"`
}

// IntelConfig configures the intelligence summarizer.
type IntelConfig struct {
	ContextBudget int   `yaml:"context_budget" mapstructure:"context_budget"`
	MaxTokens     int64 `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// EnrichConfig configures the enrichment orchestrator.
type EnrichConfig struct {
	BatchCap      int `yaml:"batch_cap" mapstructure:"batch_cap"`
	LeadDelaySecs int `yaml:"lead_delay_secs" mapstructure:"lead_delay_secs"`
}

// UpgradeConfig configures the contact-upgrade orchestrator.
type UpgradeConfig struct {
	SearchLimit   int `yaml:"search_limit" mapstructure:"search_limit"`
	LeadDelaySecs int `yaml:"lead_delay_secs" mapstructure:"lead_delay_secs"`
}

// StrategyConfig points at the query-strategy file.
type StrategyConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// ServerConfig configures the HTTP batch server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from config.yaml and JND_* environment
// overrides.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("JND")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "leads.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("jina.key", "")
	v.SetDefault("jina.base_url", "https://r.jina.ai")
	v.SetDefault("jina.search_base_url", "https://s.jina.ai")
	v.SetDefault("firecrawl.key", "")
	v.SetDefault("firecrawl.base_url", "")
	v.SetDefault("anthropic.key", "")
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("sources.search_limit", 10)
	v.SetDefault("sources.max_scrape_sources", 3)
	v.SetDefault("sources.min_usable_sources", 2)
	v.SetDefault("sources.top_up_attempts", 2)
	v.SetDefault("sources.substantiality_floor", 100)
	v.SetDefault("sources.per_source_cap", 50000)
	v.SetDefault("sources.fetch_delay_secs", 2)
	v.SetDefault("validate.batch_size", 10)
	v.SetDefault("validate.batch_delay_secs", 2)
	v.SetDefault("intel.context_budget", 90000)
	v.SetDefault("intel.max_tokens", 2048)
	v.SetDefault("enrich.batch_cap", 10)
	v.SetDefault("enrich.lead_delay_secs", 10)
	v.SetDefault("upgrade.search_limit", 5)
	v.SetDefault("upgrade.lead_delay_secs", 10)
	v.SetDefault("strategy.path", "strategies.yaml")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}
	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)
	return nil
}
