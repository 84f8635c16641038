package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Judge     JudgeConfig     `yaml:"judge" mapstructure:"judge"`
	Providers ProvidersConfig `yaml:"providers" mapstructure:"providers"`
	Timeouts  map[string]int  `yaml:"timeouts" mapstructure:"timeouts"`
	Run       RunConfig       `yaml:"run" mapstructure:"run"`
	Results   ResultsConfig   `yaml:"results" mapstructure:"results"`
	Queries   QueriesConfig   `yaml:"queries" mapstructure:"queries"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the run archive backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// JudgeConfig holds credentials and tuning for the grading model.
type JudgeConfig struct {
	Key         string `yaml:"key" mapstructure:"key"`
	Model       string `yaml:"model" mapstructure:"model"`
	Concurrency int    `yaml:"concurrency" mapstructure:"concurrency"`
}

// ProvidersConfig holds per-provider API credentials and endpoint overrides.
type ProvidersConfig struct {
	Exa      ProviderConfig `yaml:"exa" mapstructure:"exa"`
	Parallel ProviderConfig `yaml:"parallel" mapstructure:"parallel"`
	Brave    ProviderConfig `yaml:"brave" mapstructure:"brave"`
	Linkup   ProviderConfig `yaml:"linkup" mapstructure:"linkup"`
	Tavily   TavilyConfig   `yaml:"tavily" mapstructure:"tavily"`
}

// ProviderConfig holds one search provider's settings.
type ProviderConfig struct {
	Key      string `yaml:"key" mapstructure:"key"`
	Endpoint string `yaml:"endpoint" mapstructure:"endpoint"`
}

// TavilyConfig extends ProviderConfig with Tavily's pricing quirks: the free
// tier costs nothing, the paid tier a flat per-query rate, and an explicit
// override wins over both.
type TavilyConfig struct {
	Key          string  `yaml:"key" mapstructure:"key"`
	Endpoint     string  `yaml:"endpoint" mapstructure:"endpoint"`
	CostMode     string  `yaml:"cost_mode" mapstructure:"cost_mode"`
	CostPerQuery float64 `yaml:"cost_per_query" mapstructure:"cost_per_query"`
}

// RunConfig bounds benchmark execution.
type RunConfig struct {
	QueryConcurrency int `yaml:"query_concurrency" mapstructure:"query_concurrency"`
}

// ResultsConfig configures report and history output.
type ResultsConfig struct {
	Dir string `yaml:"dir" mapstructure:"dir"`
}

// QueriesConfig configures query set resolution.
type QueriesConfig struct {
	Dir string `yaml:"dir" mapstructure:"dir"`
}

// ServerConfig configures the report server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// DefaultTimeouts are the per-provider timeout seconds used when the config
// file has no timeouts block. "default" applies to any unlisted provider.
func DefaultTimeouts() map[string]int {
	return map[string]int{
		"default":  30,
		"exa":      30,
		"parallel": 30,
		"brave":    20,
		"linkup":   25,
		"tavily":   20,
	}
}

// TimeoutFor resolves the timeout for a provider, falling back to the
// configured default.
func (c *Config) TimeoutFor(provider string) time.Duration {
	return time.Duration(c.TimeoutSecondsFor(provider)) * time.Second
}

// TimeoutSecondsFor returns the raw configured seconds for a provider.
func (c *Config) TimeoutSecondsFor(provider string) int {
	if secs, ok := c.Timeouts[provider]; ok && secs > 0 {
		return secs
	}
	if secs, ok := c.Timeouts["default"]; ok && secs > 0 {
		return secs
	}
	return DefaultTimeouts()["default"]
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("SEARCHBENCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "results/searchbench.db")
	v.SetDefault("judge.model", "claude-haiku-4-5-20251001")
	v.SetDefault("judge.concurrency", 6)
	v.SetDefault("run.query_concurrency", 2)
	v.SetDefault("results.dir", "results")
	v.SetDefault("queries.dir", "queries")
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("providers.exa.endpoint", "https://api.exa.ai/answer")
	v.SetDefault("providers.parallel.endpoint", "https://api.parallel.ai/v1beta/search")
	v.SetDefault("providers.brave.endpoint", "https://api.search.brave.com/res/v1/web/search")
	v.SetDefault("providers.linkup.endpoint", "https://api.linkup.so/v1/search")
	v.SetDefault("providers.tavily.endpoint", "https://api.tavily.com/search")
	v.SetDefault("providers.tavily.cost_mode", "free")
	for name, secs := range DefaultTimeouts() {
		v.SetDefault("timeouts."+name, secs)
	}

	// Read config file (optional)
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
