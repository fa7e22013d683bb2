// Package app wires configuration, the app registry and services together
// for the command line.
package app

import (
	"fmt"
	"log/slog"

	"github.com/wasmhost/wasm/config"
	"github.com/wasmhost/wasm/db"
	"github.com/wasmhost/wasm/encryption"
	"github.com/wasmhost/wasm/git"
	"github.com/wasmhost/wasm/repository"
	"github.com/wasmhost/wasm/services"
	"github.com/wasmhost/wasm/validators"
	"gorm.io/gorm"
)

var (
	// Version is set at build time via -ldflags
	Version = "dev"

	database     *gorm.DB
	appService   services.AppManager
	setupService *services.SetupService
	portChecker  services.PortChecker
	appConfig    *config.Config
)

// InitializeWithConfig stores cfg and builds the services that do not need
// the registry. The registry is opened on first use so that commands like
// validate work without access to the data directory.
func InitializeWithConfig(cfg *config.Config) error {
	if err := Close(); err != nil {
		return err
	}

	appConfig = cfg
	appService = nil
	portChecker = validators.NewPortProber(cfg.PortProbeHost, cfg.PortProbeTimeout)
	setupService = services.NewSetupService(cfg, initRegistry)
	return nil
}

// GetAppService returns the app service, opening the registry if needed.
func GetAppService() (services.AppManager, error) {
	if appService != nil {
		return appService, nil
	}
	if appConfig == nil {
		return nil, fmt.Errorf("application is not initialized")
	}

	var err error
	database, err = db.InitDB(appConfig.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open app registry %s: %w", appConfig.DatabasePath, err)
	}

	var encryptionSvc *encryption.EncryptionService
	if appConfig.EncryptionKey != "" {
		encryptionSvc, err = encryption.NewEncryptionService(appConfig.EncryptionKey)
		if err != nil {
			return nil, err
		}
	}

	appRepo := repository.NewAppRepository(database, encryptionSvc)
	gitService := git.NewGitService(appConfig.GitTimeout)

	appService = services.NewAppService(appRepo, gitService, portChecker, appConfig)
	return appService, nil
}

func GetSetupService() *services.SetupService {
	return setupService
}

func GetPortChecker() services.PortChecker {
	return portChecker
}

func GetConfig() *config.Config {
	return appConfig
}

// Close releases the registry connection, if one is open.
func Close() error {
	if database == nil {
		return nil
	}
	sqlDB, err := database.DB()
	if err != nil {
		return err
	}
	database = nil
	appService = nil
	return sqlDB.Close()
}

// SetAppServiceForTesting allows overriding the app service for testing purposes
func SetAppServiceForTesting(service services.AppManager) {
	appService = service
}

func initRegistry(path string) error {
	registry, err := db.InitDB(path)
	if err != nil {
		return err
	}
	sqlDB, err := registry.DB()
	if err != nil {
		return err
	}
	if err := sqlDB.Close(); err != nil {
		slog.Warn("Failed to close app registry", "path", path, "error", err)
	}
	return nil
}
