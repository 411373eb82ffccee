package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"chooser-bench/internal/logging"
	"chooser-bench/internal/pricing"
)

// Config materialises application configuration.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Logging  logging.Config `mapstructure:"logging"`
	Database DatabaseConfig `mapstructure:"database"`
	Data     DataConfig     `mapstructure:"data"`
	Option   OptionConfig   `mapstructure:"option"`
	Pricing  PricingConfig  `mapstructure:"pricing"`
	Analysis AnalysisConfig `mapstructure:"analysis"`
	Monitor  MonitorConfig  `mapstructure:"monitor"`
	Alerting AlertingConfig `mapstructure:"alerting"`
	Export   ExportConfig   `mapstructure:"export"`
}

// AppConfig general metadata.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
}

// DatabaseConfig encapsulates PostgreSQL connectivity for valuation history.
type DatabaseConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// DataConfig locates the processed daily feature table.
type DataConfig struct {
	DatasetPath string `mapstructure:"dataset_path"`
}

// OptionConfig is the static contract parameter bundle. FallbackRate is a
// boundary-layer policy: the pricing core itself never substitutes a rate.
type OptionConfig struct {
	Strike        float64 `mapstructure:"strike"`
	T1Years       float64 `mapstructure:"t1_years"`
	T2Years       float64 `mapstructure:"t2_years"`
	T1OffsetDays  int     `mapstructure:"t1_offset_days"`
	T2OffsetDays  int     `mapstructure:"t2_offset_days"`
	DividendYield float64 `mapstructure:"dividend_yield"`
	FallbackRate  float64 `mapstructure:"fallback_rate"`
	Policy        string  `mapstructure:"policy"`
}

// PricingConfig tunes the valuation method.
type PricingConfig struct {
	Method string `mapstructure:"method"`
	Paths  int    `mapstructure:"paths"`
	Seed   uint64 `mapstructure:"seed"`
}

// AnalysisConfig holds the regime thresholds.
type AnalysisConfig struct {
	VolThreshold       float64 `mapstructure:"vol_threshold"`
	SentimentThreshold float64 `mapstructure:"sentiment_threshold"`
}

// MonitorConfig governs the revaluation loop cadence.
type MonitorConfig struct {
	Interval        time.Duration `mapstructure:"interval"`
	AlignToBucket   bool          `mapstructure:"align_to_bucket"`
	AdvisoryLockKey int64         `mapstructure:"advisory_lock_key"`
}

// AlertingConfig defines model-divergence alert thresholds and routing.
type AlertingConfig struct {
	Enabled       bool           `mapstructure:"enabled"`
	DivergencePct float64        `mapstructure:"divergence_pct"`
	Channels      []string       `mapstructure:"channels"`
	Telegram      TelegramConfig `mapstructure:"telegram"`
}

// TelegramConfig describes the Telegram delivery channel.
type TelegramConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	BotToken string `mapstructure:"bot_token"`
	ChatID   string `mapstructure:"chat_id"`
	APIBase  string `mapstructure:"api_base"`
}

// ExportConfig sets CLI export behaviour.
type ExportConfig struct {
	MaxDataPoints int `mapstructure:"max_data_points"`
}

// Load builds configuration from file, environment, and defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("CHOOSERBENCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, decodeHook()); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func readConfig(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "chooserbench")
	v.SetDefault("app.environment", "development")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("data.dataset_path", "data/processed/processed_dataset.csv")

	v.SetDefault("option.strike", 150.0)
	v.SetDefault("option.t1_years", 0.5)
	v.SetDefault("option.t2_years", 1.0)
	v.SetDefault("option.t1_offset_days", 126)
	v.SetDefault("option.t2_offset_days", 252)
	v.SetDefault("option.dividend_yield", -1.0)
	v.SetDefault("option.fallback_rate", 0.04)
	v.SetDefault("option.policy", "spot_vs_strike")

	v.SetDefault("pricing.method", "monte_carlo")
	v.SetDefault("pricing.paths", 10000)
	v.SetDefault("pricing.seed", uint64(42))

	v.SetDefault("analysis.vol_threshold", 30.0)
	v.SetDefault("analysis.sentiment_threshold", 0.3)

	v.SetDefault("monitor.interval", "24h")
	v.SetDefault("monitor.align_to_bucket", true)
	v.SetDefault("monitor.advisory_lock_key", int64(0x63686f73))

	v.SetDefault("alerting.enabled", false)
	v.SetDefault("alerting.divergence_pct", 5.0)
	v.SetDefault("alerting.channels", []string{"telegram"})
	v.SetDefault("alerting.telegram.enabled", false)
	v.SetDefault("alerting.telegram.api_base", "https://api.telegram.org")

	v.SetDefault("export.max_data_points", 100000)

	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "30m")
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}

// Validate performs basic sanity checks on the configuration values.
func (c *Config) Validate() error {
	if c.Option.Strike <= 0 {
		return fmt.Errorf("option.strike must be greater than zero")
	}
	if c.Option.T1Years <= 0 || c.Option.T2Years < c.Option.T1Years {
		return fmt.Errorf("option horizons must satisfy t2_years >= t1_years > 0")
	}
	if c.Option.T1OffsetDays <= 0 || c.Option.T2OffsetDays < c.Option.T1OffsetDays {
		return fmt.Errorf("option offsets must satisfy t2_offset_days >= t1_offset_days > 0")
	}
	if _, ok := pricing.ParseExercisePolicy(c.Option.Policy); !ok {
		return fmt.Errorf("option.policy %q not recognised", c.Option.Policy)
	}
	if c.Pricing.Paths <= 0 {
		return fmt.Errorf("pricing.paths must be greater than zero")
	}
	if c.Pricing.Method != "monte_carlo" && c.Pricing.Method != "analytic" {
		return fmt.Errorf("pricing.method must be monte_carlo or analytic, got %q", c.Pricing.Method)
	}
	if c.Analysis.VolThreshold < 0 {
		return fmt.Errorf("analysis.vol_threshold cannot be negative")
	}
	if c.Monitor.Interval <= 0 {
		return fmt.Errorf("monitor.interval must be greater than zero")
	}
	if c.Alerting.DivergencePct < 0 {
		return fmt.Errorf("alerting.divergence_pct cannot be negative")
	}
	if c.Export.MaxDataPoints <= 0 {
		return fmt.Errorf("export.max_data_points must be greater than zero")
	}
	if c.Alerting.Telegram.Enabled {
		if c.Alerting.Telegram.BotToken == "" {
			return fmt.Errorf("alerting.telegram.bot_token is required when telegram is enabled")
		}
		if c.Alerting.Telegram.ChatID == "" {
			return fmt.Errorf("alerting.telegram.chat_id is required when telegram is enabled")
		}
	}
	return nil
}

// ExercisePolicy resolves the configured decision rule.
func (c *Config) ExercisePolicy() pricing.ExercisePolicy {
	policy, _ := pricing.ParseExercisePolicy(c.Option.Policy)
	return policy
}

// ResolveMaxPoints returns either the CLI override or config default.
func (c *Config) ResolveMaxPoints(override int) int {
	if override > 0 {
		return override
	}
	return c.Export.MaxDataPoints
}
