package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/spf13/afero"

	"github.com/hupe1980/toolmesh"
	"github.com/hupe1980/toolmesh/artifact"
	"github.com/hupe1980/toolmesh/backend/codegen"
	"github.com/hupe1980/toolmesh/config"
	"github.com/hupe1980/toolmesh/core"
	"github.com/hupe1980/toolmesh/history"
	"github.com/hupe1980/toolmesh/logging"
	"github.com/hupe1980/toolmesh/model"
	"github.com/hupe1980/toolmesh/model/anthropic"
	"github.com/hupe1980/toolmesh/model/gemini"
	"github.com/hupe1980/toolmesh/model/openai"
	"github.com/hupe1980/toolmesh/responder"
)

const historyFile = "history.toml"

type app struct {
	configPath string
}

func (a *app) loadConfig() (config.Config, error) {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	if cfg.OpenAI.APIKey == "" {
		cfg.OpenAI.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.Anthropic.APIKey == "" {
		cfg.Anthropic.APIKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if cfg.Gemini.APIKey == "" {
		cfg.Gemini.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	return cfg, nil
}

func newLogger(cfg config.Config, w io.Writer) logging.Logger {
	lc := cfg.LoggerConfig()
	lc.Output = w
	lc.Component = "toolmesh"
	return logging.NewLogger(lc)
}

// openHistory opens the TOML history file. Without a configured path it lives
// next to the default config file.
func openHistory(cfg config.Config) (*history.FileStore, error) {
	path := cfg.HistoryPath
	if path == "" {
		dir, err := config.DefaultDir()
		if err != nil {
			return nil, err
		}
		path = filepath.Join(dir, historyFile)
	}
	store, err := history.OpenFileStore(afero.NewOsFs(), path)
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}
	return store, nil
}

// providerModels builds the LLM models for the providers that have
// credentials, keyed by the responder model name that selects them.
func providerModels(ctx context.Context, cfg config.Config) (map[string]model.Model, error) {
	models := map[string]model.Model{}
	if cfg.OpenAI.Enabled() {
		models["gpt-4"] = openai.NewModel(func(o *openai.Options) {
			o.Model = cfg.OpenAI.Model
			o.APIKey = cfg.OpenAI.APIKey
			o.BaseURL = cfg.OpenAI.BaseURL
		})
	}
	if cfg.Anthropic.Enabled() {
		models["claude"] = anthropic.NewModel(func(o *anthropic.Options) {
			o.Model = anthropicsdk.Model(cfg.Anthropic.Model)
			o.APIKey = cfg.Anthropic.APIKey
			o.BaseURL = cfg.Anthropic.BaseURL
		})
	}
	if cfg.Gemini.Enabled() {
		m, err := gemini.NewModel(ctx, func(o *gemini.Options) {
			o.Model = cfg.Gemini.Model
			o.APIKey = cfg.Gemini.APIKey
			o.BaseURL = cfg.Gemini.BaseURL
		})
		if err != nil {
			return nil, err
		}
		models["gemini"] = m
	}
	return models, nil
}

func newResponder(cfg config.Config, models map[string]model.Model, logger logging.Logger) core.Responder {
	canned := responder.NewCanned(func(o *responder.CannedOptions) { o.Seed = cfg.ResponderSeed })
	if len(models) == 0 {
		return canned
	}
	router := responder.NewRouter(canned, func(o *responder.RouterOptions) { o.Logger = logger })
	for name, m := range models {
		router.Route(name, responder.NewModelResponder(m))
	}
	return router
}

// newCodeGenerator prefers an LLM backed generator and falls back to the
// templates.
func newCodeGenerator(models map[string]model.Model) core.CodeGenerator {
	for _, name := range []string{"gpt-4", "claude", "gemini"} {
		if m, ok := models[name]; ok {
			return codegen.NewModelGenerator(m)
		}
	}
	return codegen.NewTemplate()
}

func wireMesh(ctx context.Context, cfg config.Config, logger logging.Logger) (*toolmesh.ToolMesh, error) {
	hist, err := openHistory(cfg)
	if err != nil {
		return nil, err
	}
	models, err := providerModels(ctx, cfg)
	if err != nil {
		return nil, err
	}

	return toolmesh.New(func(o *toolmesh.Options) {
		o.EngineConfig = cfg.EngineConfig()
		o.History = hist
		if cfg.ArtifactsDir != "" {
			o.Artifacts = artifact.NewOSFileStore(cfg.ArtifactsDir)
		}
		o.Responder = newResponder(cfg, models, logger)
		o.CodeGenerator = newCodeGenerator(models)
		o.Logger = logger
	}), nil
}
