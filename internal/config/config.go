package config

import (
	"strings"
	"time"

	"glucosedash/internal/analysis"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const (
	SourceSheet = "sheet"
	SourceMongo = "mongo"
)

type Config struct {
	Server   ServerConfig    `mapstructure:"server"`
	Source   SourceConfig    `mapstructure:"source"`
	Mongo    MongoConfig     `mapstructure:"mongo"`
	Redis    RedisConfig     `mapstructure:"redis"`
	Analysis analysis.Config `mapstructure:"analysis"`
}

type ServerConfig struct {
	Port            string        `mapstructure:"port" validate:"required"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" validate:"gt=0"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" validate:"gt=0"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
}

type SourceConfig struct {
	Type          string        `mapstructure:"type" validate:"required,oneof=sheet mongo"`
	CSVURL        string        `mapstructure:"csv_url" validate:"omitempty,url"`
	DateLayout    string        `mapstructure:"date_layout" validate:"required"`
	Timezone      string        `mapstructure:"timezone" validate:"required"`
	Timeout       time.Duration `mapstructure:"timeout" validate:"gt=0"`
	RatePerMinute int           `mapstructure:"rate_per_minute" validate:"gte=0"`
}

// Location resolves Timezone. Call only on a validated config.
func (s SourceConfig) Location() *time.Location {
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

type MongoConfig struct {
	URI  string `mapstructure:"uri"`
	Name string `mapstructure:"name"`
}

// RedisConfig enables the reading cache when Addr is set.
type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db" validate:"gte=0"`
	TTL      time.Duration `mapstructure:"ttl" validate:"gt=0"`
	Key      string        `mapstructure:"key"`
}

func (r RedisConfig) Enabled() bool {
	return r.Addr != ""
}

// LoadConfig reads GLUCOSEDASH_* environment variables, an optional
// config.yaml and the defaults below, in that order of precedence.
func LoadConfig() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/glucosedash/")

	v.SetEnvPrefix("GLUCOSEDASH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, errors.Wrap(err, "failed to read config file")
		}
	}

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, errors.Wrap(err, "failed to decode config")
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(err, "failed to validate config")
	}

	if c.Source.Type == SourceSheet && c.Source.CSVURL == "" {
		return errors.New("source.csv_url is required when source.type is sheet")
	}
	if c.Source.Type == SourceMongo && (c.Mongo.URI == "" || c.Mongo.Name == "") {
		return errors.New("mongo.uri and mongo.name are required when source.type is mongo")
	}
	if _, err := time.LoadLocation(c.Source.Timezone); err != nil {
		return errors.Wrapf(err, "invalid source.timezone %q", c.Source.Timezone)
	}
	if err := c.Analysis.Validate(); err != nil {
		return errors.Wrap(err, "invalid analysis config")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.shutdown_timeout", 15*time.Second)

	v.SetDefault("source.type", SourceSheet)
	v.SetDefault("source.csv_url", "")
	v.SetDefault("source.date_layout", "1/2/2006")
	v.SetDefault("source.timezone", "UTC")
	v.SetDefault("source.timeout", 10*time.Second)
	v.SetDefault("source.rate_per_minute", 30)

	v.SetDefault("mongo.uri", "")
	v.SetDefault("mongo.name", "glucosedash")

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", 5*time.Minute)
	v.SetDefault("redis.key", "glucosedash:readings")

	a := analysis.DefaultConfig()
	v.SetDefault("analysis.low_threshold", a.LowThreshold)
	v.SetDefault("analysis.normal_max", a.NormalMax)
	v.SetDefault("analysis.target_max", a.TargetMax)
	v.SetDefault("analysis.very_high_threshold", a.VeryHighThreshold)
	v.SetDefault("analysis.control_target_weight", a.ControlTargetWeight)
	v.SetDefault("analysis.control_variability_weight", a.ControlVariabilityWeight)
	v.SetDefault("analysis.peak_relative_threshold", a.PeakRelativeThreshold)
	v.SetDefault("analysis.max_pattern_hours", a.MaxPatternHours)
	v.SetDefault("analysis.overall_trend_threshold", a.OverallTrendThreshold)
	v.SetDefault("analysis.min_overall_trend_readings", a.MinOverallTrendReadings)
	v.SetDefault("analysis.recent_week_threshold", a.RecentWeekThreshold)
	v.SetDefault("analysis.min_recent_week_readings", a.MinRecentWeekReadings)
	v.SetDefault("analysis.min_recent_week_history", a.MinRecentWeekHistory)
	v.SetDefault("analysis.recent_window", a.RecentWindow)
	v.SetDefault("analysis.hypoglycemia_percent_max", a.HypoglycemiaPercentMax)
	v.SetDefault("analysis.target_percent_min", a.TargetPercentMin)
	v.SetDefault("analysis.variability_cv_max", a.VariabilityCVMax)
	v.SetDefault("analysis.good_control_score", a.GoodControlScore)
}
