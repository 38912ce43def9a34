package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/hemoscan/internal/api"
	"github.com/abhisek/hemoscan/internal/app"
	"github.com/abhisek/hemoscan/internal/auth"
	"github.com/abhisek/hemoscan/internal/config"
	"github.com/abhisek/hemoscan/internal/handoff"
	"github.com/abhisek/hemoscan/internal/logging"
	"github.com/abhisek/hemoscan/internal/store"
)

// errNotSignedIn is returned by commands that need a session.
var errNotSignedIn = errors.New("not signed in; run `hemoscan login` first")

// deps is everything a command may need, built once per invocation.
type deps struct {
	cfg     config.Config
	store   *store.Store
	logger  *zap.Logger
	client  *api.Client
	manager *auth.Manager
}

func (d *deps) Close() {
	_ = d.logger.Sync()
	_ = d.store.Close()
}

// loadConfig resolves configuration: file, then environment, then flags.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		p, err := config.DefaultConfigPath()
		if err != nil {
			return config.Config{}, err
		}
		path = p
	}
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.ApplyEnv(); err != nil {
		return config.Config{}, err
	}

	if u, _ := cmd.Flags().GetString("api-url"); u != "" {
		cfg.API.BaseURL = u
	}
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		cfg.DBPath = p
	}
	if p, _ := cmd.Flags().GetString("log-file"); p != "" {
		cfg.LogFile = p
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// resolveDBPath returns the configured database path or the default XDG path.
func resolveDBPath(cfg config.Config) (string, error) {
	if cfg.DBPath != "" {
		return cfg.DBPath, store.EnsureDir(cfg.DBPath)
	}
	return store.DefaultDBPath()
}

// setup opens the store and builds the client and session manager.
func setup(cmd *cobra.Command) (*deps, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	debug, _ := cmd.Flags().GetBool("debug")
	logger, err := logging.New(cfg.LogFile, debug)
	if err != nil {
		return nil, fmt.Errorf("open log: %w", err)
	}

	dbPath, err := resolveDBPath(cfg)
	if err != nil {
		return nil, fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	client := api.New(cfg, st.EventRepo(), logger)
	manager := auth.NewManager(client, st.Credentials(), auth.WithLogger(logger))

	logger.Debug("client ready",
		zap.String("api", cfg.API.BaseURL),
		zap.String("db", dbPath),
		zap.String("command", cmd.Name()))

	return &deps{cfg: cfg, store: st, logger: logger, client: client, manager: manager}, nil
}

// session restores the stored session and waits for its verification.
func (d *deps) session(ctx context.Context) (auth.Session, error) {
	d.manager.Initialize(ctx)
	if err := d.manager.WaitReady(ctx); err != nil {
		return auth.Session{}, err
	}
	sess := d.manager.Snapshot()
	if !sess.Authenticated() {
		return auth.Session{}, errNotSignedIn
	}
	return sess, nil
}

// runApp launches the TUI.
func runApp(cmd *cobra.Command) error {
	d, err := setup(cmd)
	if err != nil {
		return err
	}
	defer d.Close()

	noSplash, _ := cmd.Flags().GetBool("no-splash")
	slot := &handoff.Slot{}
	return app.Run(cmd.Context(), app.Options{
		Config:   d.cfg,
		Manager:  d.manager,
		Client:   d.client,
		Slot:     slot,
		Events:   d.store.EventRepo(),
		Logger:   d.logger,
		Splash:   !noSplash,
	})
}
