// Package setup bootstraps the application's shared dependencies.
package setup

import (
	"path/filepath"

	"go.uber.org/zap"

	"github.com/milestonebot/milestone/internal/settings"
	"github.com/milestonebot/milestone/internal/setup/config"
	"github.com/milestonebot/milestone/internal/setup/logger"
	"github.com/milestonebot/milestone/internal/tracker"
)

// Snapshot file names inside the data directory.
const (
	activityFile = "activity.json"
	settingsFile = "settings.json"
)

// App bundles the initialized subsystems the bot binary needs.
type App struct {
	Config   *config.Config
	Logger   *zap.Logger
	Store    *tracker.Store
	Settings *settings.Manager
}

// InitializeApp loads the configuration, builds the logger and opens both
// snapshot stores. Missing or corrupt snapshots start empty and are never
// fatal; only configuration and logger failures abort startup.
func InitializeApp() (*App, error) {
	cfg, configDir, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	log, err := logger.New(&cfg.Debug)
	if err != nil {
		return nil, err
	}

	log.Info("Loaded configuration", zap.String("config_dir", configDir))

	dataDir := cfg.Bot.DataDir
	if dataDir == "" {
		dataDir = "data"
	}

	store := tracker.NewStore(tracker.NewSnapshotRepository(filepath.Join(dataDir, activityFile)), log)
	settingsManager := settings.NewManager(filepath.Join(dataDir, settingsFile), log)

	return &App{
		Config:   cfg,
		Logger:   log,
		Store:    store,
		Settings: settingsManager,
	}, nil
}

// Cleanup flushes buffered log output.
func (a *App) Cleanup() {
	_ = a.Logger.Sync()
}
