// Package config loads tempo's application settings from a YAML file and
// TEMPO_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, so db.path is
// read from TEMPO_DB_PATH.
const EnvPrefix = "TEMPO"

// Config holds all configuration for the application.
type Config struct {
	DB        DBConfig        `mapstructure:"db"`
	Corpus    CorpusConfig    `mapstructure:"corpus"`
	Pipeline  PipelineConfig  `mapstructure:"pipeline"`
	Embedding EmbeddingConfig `mapstructure:"embedding"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Log       LogConfig       `mapstructure:"log"`
	Sentry    SentryConfig    `mapstructure:"sentry"`
}

type DBConfig struct {
	Driver string `mapstructure:"driver"` // sqlite or postgres
	Path   string `mapstructure:"path"`
	URL    string `mapstructure:"url"`
}

// DSN returns the connection string for the configured driver.
func (c DBConfig) DSN() string {
	if c.Driver == "postgres" {
		return c.URL
	}
	return c.Path
}

type CorpusConfig struct {
	Source string   `mapstructure:"source"` // dir or s3
	Dir    string   `mapstructure:"dir"`
	S3     S3Config `mapstructure:"s3"`
}

type S3Config struct {
	Bucket          string `mapstructure:"bucket"`
	Prefix          string `mapstructure:"prefix"`
	Region          string `mapstructure:"region"`
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
}

type PipelineConfig struct {
	PhilosophyStrategy string             `mapstructure:"philosophy_strategy"` // filter or embedding
	StructureStrategy  string             `mapstructure:"structure_strategy"`  // filter or embedding
	TextConcurrency    int                `mapstructure:"text_concurrency"`
	CacheTTL           time.Duration      `mapstructure:"cache_ttl"`
	Ratios             map[string]float64 `mapstructure:"ratios"`
}

type EmbeddingConfig struct {
	Provider string `mapstructure:"provider"` // ollama, vertex or hash
}

// LLMConfig selects the generation provider. Transport settings (endpoint,
// models, timeouts) come from llm.LoadConfig; non-empty values here win.
type LLMConfig struct {
	Provider string `mapstructure:"provider"` // ollama or vertex
	Endpoint string `mapstructure:"endpoint"`
	Model    string `mapstructure:"model"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json, text or auto
}

// LogFormatAuto logs text to a terminal and JSON otherwise.
const LogFormatAuto = "auto"

type SentryConfig struct {
	DSN         string `mapstructure:"dsn"`
	Environment string `mapstructure:"environment"`
}

// Strategy names.
const (
	StrategyFilter    = "filter"
	StrategyEmbedding = "embedding"
)

// Load reads configuration from path and the environment. path may name a
// YAML file or a directory holding tempo.yaml; a missing file in a
// directory is not an error. An empty path means defaults and environment
// only.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if path != "" {
		info, err := os.Stat(path)
		if err != nil {
			return Config{}, fmt.Errorf("reading config: %w", err)
		}
		if info.IsDir() {
			v.AddConfigPath(path)
			v.SetConfigName("tempo")
		} else {
			v.SetConfigFile(path)
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("reading config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("db.driver", "sqlite")
	v.SetDefault("db.path", defaultDataPath("tempo.db"))
	v.SetDefault("db.url", "")

	v.SetDefault("corpus.source", "dir")
	v.SetDefault("corpus.dir", "./corpus")
	v.SetDefault("corpus.s3.bucket", "")
	v.SetDefault("corpus.s3.prefix", "")
	v.SetDefault("corpus.s3.region", "")
	v.SetDefault("corpus.s3.endpoint", "")
	v.SetDefault("corpus.s3.access_key_id", "")
	v.SetDefault("corpus.s3.secret_access_key", "")

	v.SetDefault("pipeline.philosophy_strategy", StrategyFilter)
	v.SetDefault("pipeline.structure_strategy", StrategyFilter)
	v.SetDefault("pipeline.text_concurrency", 4)
	v.SetDefault("pipeline.cache_ttl", "24h")
	v.SetDefault("pipeline.ratios", map[string]float64{
		"long": 0.30,
		"hard": 0.25,
		"easy": 0.45,
		"rest": 0,
	})

	v.SetDefault("embedding.provider", "hash")
	v.SetDefault("llm.provider", "ollama")
	v.SetDefault("llm.endpoint", "")
	v.SetDefault("llm.model", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", LogFormatAuto)

	v.SetDefault("sentry.dsn", "")
	v.SetDefault("sentry.environment", "development")
}

// defaultDataPath places name under ~/.tempo, or the working directory
// when there is no home directory.
func defaultDataPath(name string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return name
	}
	return filepath.Join(home, ".tempo", name)
}

// Validate checks enumerated settings and required combinations.
func (c Config) Validate() error {
	var errs []error
	switch c.DB.Driver {
	case "sqlite":
		if c.DB.Path == "" {
			errs = append(errs, errors.New("db.path is required for sqlite"))
		}
	case "postgres":
		if c.DB.URL == "" {
			errs = append(errs, errors.New("db.url is required for postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("db.driver must be sqlite or postgres, got %q", c.DB.Driver))
	}

	switch c.Corpus.Source {
	case "dir":
		if c.Corpus.Dir == "" {
			errs = append(errs, errors.New("corpus.dir is required for a dir source"))
		}
	case "s3":
		if c.Corpus.S3.Bucket == "" {
			errs = append(errs, errors.New("corpus.s3.bucket is required for an s3 source"))
		}
	default:
		errs = append(errs, fmt.Errorf("corpus.source must be dir or s3, got %q", c.Corpus.Source))
	}

	for key, s := range map[string]string{
		"pipeline.philosophy_strategy": c.Pipeline.PhilosophyStrategy,
		"pipeline.structure_strategy":  c.Pipeline.StructureStrategy,
	} {
		if s != StrategyFilter && s != StrategyEmbedding {
			errs = append(errs, fmt.Errorf("%s must be filter or embedding, got %q", key, s))
		}
	}
	if c.Pipeline.TextConcurrency <= 0 {
		errs = append(errs, fmt.Errorf("pipeline.text_concurrency must be > 0, got %d", c.Pipeline.TextConcurrency))
	}
	if c.Pipeline.CacheTTL <= 0 {
		errs = append(errs, fmt.Errorf("pipeline.cache_ttl must be positive, got %s", c.Pipeline.CacheTTL))
	}
	for group, r := range c.Pipeline.Ratios {
		if r < 0 {
			errs = append(errs, fmt.Errorf("pipeline.ratios.%s must be >= 0, got %g", group, r))
		}
	}

	switch c.Embedding.Provider {
	case "ollama", "vertex", "hash":
	default:
		errs = append(errs, fmt.Errorf("embedding.provider must be ollama, vertex or hash, got %q", c.Embedding.Provider))
	}
	switch c.LLM.Provider {
	case "ollama", "vertex":
	default:
		errs = append(errs, fmt.Errorf("llm.provider must be ollama or vertex, got %q", c.LLM.Provider))
	}
	switch strings.ToLower(c.Log.Format) {
	case "json", "text", LogFormatAuto:
	default:
		errs = append(errs, fmt.Errorf("log.format must be json, text or auto, got %q", c.Log.Format))
	}
	return errors.Join(errs...)
}
