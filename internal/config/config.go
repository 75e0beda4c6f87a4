package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration. There is no
// process-wide mutable state; everything fixed in the original
// workflow (base URL, timeouts) lives here and is passed at
// construction.
type Config struct {
	LLM    LLMConfig    `yaml:"llm" mapstructure:"llm"`
	Output OutputConfig `yaml:"output" mapstructure:"output"`
	Store  StoreConfig  `yaml:"store" mapstructure:"store"`
	OCR    OCRConfig    `yaml:"ocr" mapstructure:"ocr"`
	Server ServerConfig `yaml:"server" mapstructure:"server"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// LLMConfig configures the completion client and per-purpose budgets.
type LLMConfig struct {
	BaseURL             string `yaml:"base_url" mapstructure:"base_url"`
	Model               string `yaml:"model" mapstructure:"model"`
	MaxRetries          int    `yaml:"max_retries" mapstructure:"max_retries"`
	ParseTimeoutSecs    int    `yaml:"parse_timeout_secs" mapstructure:"parse_timeout_secs"`
	AnalysisTimeoutSecs int    `yaml:"analysis_timeout_secs" mapstructure:"analysis_timeout_secs"`
}

// ParseTimeout returns the parse-call timeout as a duration.
func (c LLMConfig) ParseTimeout() time.Duration {
	return time.Duration(c.ParseTimeoutSecs) * time.Second
}

// AnalysisTimeout returns the analysis-call timeout as a duration.
func (c LLMConfig) AnalysisTimeout() time.Duration {
	return time.Duration(c.AnalysisTimeoutSecs) * time.Second
}

// OutputConfig configures where run artifacts are written.
type OutputConfig struct {
	Dir string `yaml:"dir" mapstructure:"dir"`
}

// StoreConfig configures the analysis registry.
type StoreConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// OCRConfig configures PDF text extraction.
type OCRConfig struct {
	PdfToTextPath string `yaml:"pdftotext_path" mapstructure:"pdftotext_path"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("ANALYZER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("llm.base_url", "http://192.168.1.119:1234")
	v.SetDefault("llm.max_retries", 3)
	v.SetDefault("llm.parse_timeout_secs", 300)
	v.SetDefault("llm.analysis_timeout_secs", 360)
	v.SetDefault("output.dir", "output")
	v.SetDefault("store.path", "analyses.db")
	v.SetDefault("ocr.pdftotext_path", "pdftotext")
	v.SetDefault("server.port", 5001)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

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
