package cmd

import (
	"context"
	"fmt"

	"github.com/iksnae/chatlog-viewer/internal"
	"github.com/iksnae/chatlog-viewer/internal/config"
	"github.com/spf13/cobra"
)

// app bundles what a command needs: configuration, the API and the viewer
// state with the saved source restored
type app struct {
	cfg    *config.Config
	log    internal.Logger
	parser *internal.Parser
	client *internal.APIClient
	api    *internal.API
	viewer *internal.Viewer
	state  internal.StateStore
}

// loadConfig reads the config and applies the persistent flag overrides
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if serverURL != "" {
		cfg.Server = serverURL
	}
	if stateBackend != "" {
		cfg.StateBackend = stateBackend
	}
	if stateDir != "" {
		cfg.StateDir = stateDir
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// newParser builds a parser for offline commands that need no service
func newParser(cfg *config.Config) (*internal.Parser, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	return internal.NewParser(internal.DefaultLogger(), loc), nil
}

func newApp() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	log := internal.DefaultLogger()
	parser, err := newParser(cfg)
	if err != nil {
		return nil, err
	}

	client, err := internal.NewAPIClient(cfg.Server, cfg.Timeout, log)
	if err != nil {
		return nil, err
	}

	state, err := internal.OpenStateStore(cfg.StateBackend, cfg.StateDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open state store: %w", err)
	}

	api := internal.NewAPI(client, parser, internal.NewNormalizer(log), log)
	viewer := internal.NewViewer(api, state, log)
	viewer.RestoreSource()

	return &app{
		cfg:    cfg,
		log:    log,
		parser: parser,
		client: client,
		api:    api,
		viewer: viewer,
		state:  state,
	}, nil
}

func (a *app) Close() {
	if err := a.state.Close(); err != nil {
		internal.LogWarn("Failed to close state store: %v", err)
	}
}

// withApp runs fn with a fresh app and closes it afterwards
func withApp(fn func(a *app) error) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
