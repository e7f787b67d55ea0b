// Package config loads the toolmesh configuration from an optional TOML file
// and TOOLMESH_ environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"

	"github.com/hupe1980/toolmesh/core"
	"github.com/hupe1980/toolmesh/engine"
	"github.com/hupe1980/toolmesh/logging"
)

const (
	configName = "toolmesh"
	configType = "toml"
	envPrefix  = "TOOLMESH"

	configDirMode  = 0o700
	configFileMode = 0o600
)

// Config keys.
const (
	KeyLogLevel          = "log.level"
	KeyLogFormat         = "log.format"
	KeyMaxConcurrentJobs = "scheduler.max_concurrent_jobs"
	KeyCodeTimeout       = "timeouts.code"
	KeyConvertTimeout    = "timeouts.convert"
	KeyOCRTimeout        = "timeouts.ocr"
	KeyGreeting          = "session.greeting"
	KeyLogCapacity       = "session.log_capacity"
	KeyResponderModel    = "responder.model"
	KeyResponderSeed     = "responder.seed"
	KeyOpenAIModel       = "providers.openai.model"
	KeyOpenAIAPIKey      = "providers.openai.api_key"
	KeyOpenAIBaseURL     = "providers.openai.base_url"
	KeyAnthropicModel    = "providers.anthropic.model"
	KeyAnthropicAPIKey   = "providers.anthropic.api_key"
	KeyAnthropicBaseURL  = "providers.anthropic.base_url"
	KeyGeminiModel       = "providers.gemini.model"
	KeyGeminiAPIKey      = "providers.gemini.api_key"
	KeyGeminiBaseURL     = "providers.gemini.base_url"
	KeyHistoryPath       = "storage.history_path"
	KeyArtifactsDir      = "storage.artifacts_dir"
)

// Config is the complete runtime configuration.
type Config struct {
	LogLevel  string
	LogFormat string

	MaxConcurrentJobs int
	CodeTimeout       time.Duration
	ConvertTimeout    time.Duration
	OCRTimeout        time.Duration

	Greeting    string
	LogCapacity int

	ResponderModel string
	ResponderSeed  int64

	OpenAI    Provider
	Anthropic Provider
	Gemini    Provider

	// HistoryPath is the TOML file of archived conversations. Empty keeps the
	// history in memory.
	HistoryPath string
	// ArtifactsDir receives job artifacts. Empty keeps them in memory.
	ArtifactsDir string
}

// Provider configures one LLM provider of the default responder.
type Provider struct {
	Model   string
	APIKey  string
	BaseURL string
}

// Enabled reports whether the provider has credentials.
func (p Provider) Enabled() bool { return p.APIKey != "" }

// Default returns the built-in configuration.
func Default() Config {
	ec := engine.DefaultConfig
	return Config{
		LogLevel:          "warn",
		LogFormat:         "text",
		MaxConcurrentJobs: ec.MaxConcurrentJobs,
		CodeTimeout:       ec.CodeTimeout,
		ConvertTimeout:    ec.ConvertTimeout,
		OCRTimeout:        ec.OCRTimeout,
		Greeting:          ec.Greeting,
		LogCapacity:       ec.LogCapacity,
		ResponderModel:    core.DefaultModel,
		ResponderSeed:     1,
		OpenAI:            Provider{Model: "gpt-4o-mini"},
		Anthropic:         Provider{Model: "claude-3-5-sonnet-20241022"},
		Gemini:            Provider{Model: "gemini-2.0-flash"},
	}
}

// DefaultDir returns $HOME/.config/toolmesh.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".config", configName), nil
}

// DefaultPath returns the config file searched when no path is given.
func DefaultPath() (string, error) {
	dir, err := DefaultDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configName+"."+configType), nil
}

// Load reads the configuration. An explicit path must exist; without one the
// file is searched in DefaultDir and a missing file yields the defaults.
// Environment variables override file values, e.g. TOOLMESH_LOG_LEVEL or
// TOOLMESH_PROVIDERS_OPENAI_API_KEY.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v, Default())

	v.SetConfigType(configType)
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(configName)
		if dir, err := DefaultDir(); err == nil {
			v.AddConfigPath(dir)
		}
	}
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := Config{
		LogLevel:          v.GetString(KeyLogLevel),
		LogFormat:         v.GetString(KeyLogFormat),
		MaxConcurrentJobs: v.GetInt(KeyMaxConcurrentJobs),
		CodeTimeout:       v.GetDuration(KeyCodeTimeout),
		ConvertTimeout:    v.GetDuration(KeyConvertTimeout),
		OCRTimeout:        v.GetDuration(KeyOCRTimeout),
		Greeting:          v.GetString(KeyGreeting),
		LogCapacity:       v.GetInt(KeyLogCapacity),
		ResponderModel:    v.GetString(KeyResponderModel),
		ResponderSeed:     v.GetInt64(KeyResponderSeed),
		OpenAI: Provider{
			Model:   v.GetString(KeyOpenAIModel),
			APIKey:  v.GetString(KeyOpenAIAPIKey),
			BaseURL: v.GetString(KeyOpenAIBaseURL),
		},
		Anthropic: Provider{
			Model:   v.GetString(KeyAnthropicModel),
			APIKey:  v.GetString(KeyAnthropicAPIKey),
			BaseURL: v.GetString(KeyAnthropicBaseURL),
		},
		Gemini: Provider{
			Model:   v.GetString(KeyGeminiModel),
			APIKey:  v.GetString(KeyGeminiAPIKey),
			BaseURL: v.GetString(KeyGeminiBaseURL),
		},
		HistoryPath:  v.GetString(KeyHistoryPath),
		ArtifactsDir: v.GetString(KeyArtifactsDir),
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// setDefaults registers every key so that AutomaticEnv can resolve it.
func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault(KeyLogLevel, d.LogLevel)
	v.SetDefault(KeyLogFormat, d.LogFormat)
	v.SetDefault(KeyMaxConcurrentJobs, d.MaxConcurrentJobs)
	v.SetDefault(KeyCodeTimeout, d.CodeTimeout)
	v.SetDefault(KeyConvertTimeout, d.ConvertTimeout)
	v.SetDefault(KeyOCRTimeout, d.OCRTimeout)
	v.SetDefault(KeyGreeting, d.Greeting)
	v.SetDefault(KeyLogCapacity, d.LogCapacity)
	v.SetDefault(KeyResponderModel, d.ResponderModel)
	v.SetDefault(KeyResponderSeed, d.ResponderSeed)
	v.SetDefault(KeyOpenAIModel, d.OpenAI.Model)
	v.SetDefault(KeyOpenAIAPIKey, d.OpenAI.APIKey)
	v.SetDefault(KeyOpenAIBaseURL, d.OpenAI.BaseURL)
	v.SetDefault(KeyAnthropicModel, d.Anthropic.Model)
	v.SetDefault(KeyAnthropicAPIKey, d.Anthropic.APIKey)
	v.SetDefault(KeyAnthropicBaseURL, d.Anthropic.BaseURL)
	v.SetDefault(KeyGeminiModel, d.Gemini.Model)
	v.SetDefault(KeyGeminiAPIKey, d.Gemini.APIKey)
	v.SetDefault(KeyGeminiBaseURL, d.Gemini.BaseURL)
	v.SetDefault(KeyHistoryPath, d.HistoryPath)
	v.SetDefault(KeyArtifactsDir, d.ArtifactsDir)
}

// Validate checks value ranges and enumerations.
func (c Config) Validate() error {
	var errs []error
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("%s: %w", KeyLogLevel, err))
	}
	if c.LogFormat != "json" && c.LogFormat != "text" {
		errs = append(errs, fmt.Errorf("%s: must be json or text, got %q", KeyLogFormat, c.LogFormat))
	}
	if c.MaxConcurrentJobs < 0 {
		errs = append(errs, fmt.Errorf("%s: must not be negative", KeyMaxConcurrentJobs))
	}
	for key, d := range map[string]time.Duration{
		KeyCodeTimeout:    c.CodeTimeout,
		KeyConvertTimeout: c.ConvertTimeout,
		KeyOCRTimeout:     c.OCRTimeout,
	} {
		if d <= 0 {
			errs = append(errs, fmt.Errorf("%s: must be positive, got %s", key, d))
		}
	}
	if c.LogCapacity < 0 {
		errs = append(errs, fmt.Errorf("%s: must not be negative", KeyLogCapacity))
	}
	if !core.ValidModel(c.ResponderModel) {
		errs = append(errs, fmt.Errorf("%s: %w: %q", KeyResponderModel, core.ErrUnknownModel, c.ResponderModel))
	}
	return errors.Join(errs...)
}

// EngineConfig maps the configuration onto the engine tuning parameters.
func (c Config) EngineConfig() engine.Config {
	ec := engine.DefaultConfig
	ec.MaxConcurrentJobs = c.MaxConcurrentJobs
	ec.CodeTimeout = c.CodeTimeout
	ec.ConvertTimeout = c.ConvertTimeout
	ec.OCRTimeout = c.OCRTimeout
	ec.Greeting = c.Greeting
	ec.LogCapacity = c.LogCapacity
	return ec
}

// LoggerConfig maps the configuration onto a logger configuration writing to
// stderr.
func (c Config) LoggerConfig() *logging.LoggerConfig {
	cfg := logging.DefaultLoggerConfig()
	if lvl, err := logging.ParseLevel(c.LogLevel); err == nil {
		cfg.Level = lvl
	}
	cfg.Format = c.LogFormat
	return cfg
}

// fileSchema is the TOML layout written by Save. Durations are stored as
// strings such as "90s".
type fileSchema struct {
	Log struct {
		Level  string `toml:"level"`
		Format string `toml:"format"`
	} `toml:"log"`
	Scheduler struct {
		MaxConcurrentJobs int `toml:"max_concurrent_jobs"`
	} `toml:"scheduler"`
	Timeouts struct {
		Code    string `toml:"code"`
		Convert string `toml:"convert"`
		OCR     string `toml:"ocr"`
	} `toml:"timeouts"`
	Session struct {
		Greeting    string `toml:"greeting"`
		LogCapacity int    `toml:"log_capacity"`
	} `toml:"session"`
	Responder struct {
		Model string `toml:"model"`
		Seed  int64  `toml:"seed"`
	} `toml:"responder"`
	Providers struct {
		OpenAI    providerSchema `toml:"openai"`
		Anthropic providerSchema `toml:"anthropic"`
		Gemini    providerSchema `toml:"gemini"`
	} `toml:"providers"`
	Storage struct {
		HistoryPath  string `toml:"history_path"`
		ArtifactsDir string `toml:"artifacts_dir"`
	} `toml:"storage"`
}

type providerSchema struct {
	Model   string `toml:"model"`
	APIKey  string `toml:"api_key"`
	BaseURL string `toml:"base_url,omitempty"`
}

// Marshal renders c as TOML readable by Load.
func Marshal(c Config) ([]byte, error) {
	var f fileSchema
	f.Log.Level = c.LogLevel
	f.Log.Format = c.LogFormat
	f.Scheduler.MaxConcurrentJobs = c.MaxConcurrentJobs
	f.Timeouts.Code = c.CodeTimeout.String()
	f.Timeouts.Convert = c.ConvertTimeout.String()
	f.Timeouts.OCR = c.OCRTimeout.String()
	f.Session.Greeting = c.Greeting
	f.Session.LogCapacity = c.LogCapacity
	f.Responder.Model = c.ResponderModel
	f.Responder.Seed = c.ResponderSeed
	f.Providers.OpenAI = providerSchema(c.OpenAI)
	f.Providers.Anthropic = providerSchema(c.Anthropic)
	f.Providers.Gemini = providerSchema(c.Gemini)
	f.Storage.HistoryPath = c.HistoryPath
	f.Storage.ArtifactsDir = c.ArtifactsDir

	data, err := toml.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return data, nil
}

// Save writes c to path, creating the parent directory. An existing file is
// only replaced when overwrite is set.
func Save(path string, c Config, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config file %s already exists", path)
		}
	}
	data, err := Marshal(c)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), configDirMode); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, configFileMode); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}
