// Package extension provides the Forge extension adapter for Correlate.
//
// It implements the forge.Extension interface to integrate Correlate
// into a Forge application with automatic dependency discovery and
// lifecycle management.
//
// Configuration can be provided programmatically via Option functions
// or via YAML configuration files under "extensions.correlate" or
// "correlate" keys.
package extension

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"github.com/uptrace/bun"
	"github.com/xraph/forge"
	"github.com/xraph/vessel"

	"github.com/xraph/correlate"
	"github.com/xraph/correlate/engine"
	bunstore "github.com/xraph/correlate/store/bun"
	redisstore "github.com/xraph/correlate/store/redis"
)

// ExtensionName is the name registered with Forge.
const ExtensionName = "correlate"

// ExtensionDescription is the human-readable description.
const ExtensionDescription = "Tenant-aware event correlation and dispatch engine for case instances"

// ExtensionVersion is the semantic version.
const ExtensionVersion = "0.1.0"

// Ensure Extension implements forge.Extension at compile time.
var _ forge.Extension = (*Extension)(nil)

// Extension adapts Correlate as a Forge extension. It implements the
// forge.Extension interface so Correlate can be mounted into any Forge app.
type Extension struct {
	*forge.BaseExtension

	config   Config
	reg      *correlate.Registry
	eng      *engine.Engine
	logger   *slog.Logger
	regOpts  []correlate.Option
	engOpts  []engine.Option
	useDB    bool
	useRedis bool
	hasStore bool
	hasCase  bool
}

// New creates a Correlate Forge extension with the given options.
func New(opts ...ExtOption) *Extension {
	e := &Extension{
		BaseExtension: forge.NewBaseExtension(ExtensionName, ExtensionVersion, ExtensionDescription),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Engine returns the underlying correlate engine.
// This is nil until Register is called.
func (e *Extension) Engine() *engine.Engine { return e.eng }

// Registry returns the underlying registry.
// This is nil until Register is called.
func (e *Extension) Registry() *correlate.Registry { return e.reg }

// Register implements [forge.Extension]. It initializes the registry,
// builds the engine, and registers it in the DI container.
func (e *Extension) Register(fapp forge.App) error {
	if err := e.BaseExtension.Register(fapp); err != nil {
		return err
	}

	if err := e.loadConfiguration(); err != nil {
		return err
	}

	if err := e.init(fapp); err != nil {
		return err
	}

	// Register the engine in the DI container so other extensions can use it.
	if err := vessel.Provide(fapp.Container(), func() (*engine.Engine, error) {
		return e.eng, nil
	}); err != nil {
		return fmt.Errorf("correlate: register engine in container: %w", err)
	}

	return nil
}

// init builds the registry and engine.
func (e *Extension) init(fapp forge.App) error {
	// Resolve a database-backed store if configured. The database takes
	// precedence over redis when both are set.
	if !e.hasStore {
		switch {
		case e.useDB:
			db, err := e.resolveDB(fapp)
			if err != nil {
				return fmt.Errorf("correlate: %w", err)
			}
			e.regOpts = append(e.regOpts, correlate.WithStore(bunstore.New(db)))
		case e.useRedis:
			client, err := e.resolveRedis(fapp)
			if err != nil {
				return fmt.Errorf("correlate: %w", err)
			}
			e.regOpts = append(e.regOpts, correlate.WithStore(redisstore.New(client)))
		}
	}

	// Resolve the case engine from the container when none was given
	// programmatically. Another extension typically provides it.
	if !e.hasCase {
		ce, err := vessel.Inject[correlate.CaseEngine](fapp.Container())
		if err != nil {
			return fmt.Errorf("correlate: case engine not found in container: %w", err)
		}
		e.regOpts = append(e.regOpts, correlate.WithCaseEngine(ce))
	}

	logger := e.logger
	if logger == nil {
		logger = slog.Default()
	}

	opts := make([]correlate.Option, 0, len(e.regOpts)+2)
	opts = append(opts, correlate.WithConfig(e.config.Correlate))
	opts = append(opts, e.regOpts...)
	opts = append(opts, correlate.WithLogger(logger))

	reg, err := correlate.New(opts...)
	if err != nil {
		return fmt.Errorf("correlate: create registry: %w", err)
	}
	e.reg = reg

	e.eng, err = engine.Build(reg, e.engOpts...)
	if err != nil {
		return fmt.Errorf("correlate: build engine: %w", err)
	}

	return nil
}

// Start runs auto-migration unless disabled.
func (e *Extension) Start(ctx context.Context) error {
	if e.eng == nil {
		return errors.New("correlate: extension not initialized")
	}

	if !e.config.DisableMigrate {
		store := e.reg.Store()
		if store != nil {
			if err := store.Migrate(ctx); err != nil {
				return fmt.Errorf("correlate: migration failed: %w", err)
			}
		}
	}

	e.MarkStarted()
	return nil
}

// Stop gracefully shuts down the registry.
func (e *Extension) Stop(ctx context.Context) error {
	if e.reg == nil {
		e.MarkStopped()
		return nil
	}
	err := e.reg.Close(ctx)
	e.MarkStopped()
	return err
}

// Health implements [forge.Extension].
func (e *Extension) Health(ctx context.Context) error {
	if e.reg == nil {
		return errors.New("correlate: extension not initialized")
	}

	store := e.reg.Store()
	if store == nil {
		return errors.New("correlate: no store configured")
	}

	return store.Ping(ctx)
}

// --- Config Loading (mirrors grove/shield extension pattern) ---

// loadConfiguration loads config from YAML files or programmatic sources.
func (e *Extension) loadConfiguration() error {
	programmaticConfig := e.config

	// Try loading from config file.
	fileConfig, configLoaded := e.tryLoadFromConfigFile()

	if !configLoaded {
		if programmaticConfig.RequireConfig {
			return errors.New("correlate: configuration is required but not found in config files; " +
				"ensure 'extensions.correlate' or 'correlate' key exists in your config")
		}

		// Use programmatic config merged with defaults.
		e.config = e.mergeWithDefaults(programmaticConfig)
	} else {
		// Config loaded from YAML -- merge with programmatic options.
		e.config = e.mergeConfigurations(fileConfig, programmaticConfig)
	}

	// Enable DI resolution if YAML config specifies backend settings.
	if e.config.Database != "" {
		e.useDB = true
	}
	if e.config.Redis != "" {
		e.useRedis = true
	}

	e.Logger().Debug("correlate: configuration loaded",
		forge.F("disable_migrate", e.config.DisableMigrate),
		forge.F("database", e.config.Database),
		forge.F("redis", e.config.Redis),
		forge.F("capture_drops", e.config.Correlate.CaptureDrops),
	)

	return nil
}

// tryLoadFromConfigFile attempts to load config from YAML files.
func (e *Extension) tryLoadFromConfigFile() (Config, bool) {
	cm := e.App().Config()
	var cfg Config

	// Try "extensions.correlate" first (namespaced pattern).
	if cm.IsSet("extensions.correlate") {
		if err := cm.Bind("extensions.correlate", &cfg); err == nil {
			e.Logger().Debug("correlate: loaded config from file",
				forge.F("key", "extensions.correlate"),
			)
			return cfg, true
		}
		e.Logger().Warn("correlate: failed to bind extensions.correlate config",
			forge.F("error", "bind failed"),
		)
	}

	// Try legacy "correlate" key.
	if cm.IsSet("correlate") {
		if err := cm.Bind("correlate", &cfg); err == nil {
			e.Logger().Debug("correlate: loaded config from file",
				forge.F("key", "correlate"),
			)
			return cfg, true
		}
		e.Logger().Warn("correlate: failed to bind correlate config",
			forge.F("error", "bind failed"),
		)
	}

	return Config{}, false
}

// mergeWithDefaults fills zero-valued fields with defaults.
func (e *Extension) mergeWithDefaults(cfg Config) Config {
	defaults := DefaultConfig()
	if cfg.Correlate.ReplayAttempts == 0 {
		cfg.Correlate.ReplayAttempts = defaults.Correlate.ReplayAttempts
	}
	return cfg
}

// mergeConfigurations merges YAML config with programmatic options.
// YAML config takes precedence for most fields; programmatic bool flags fill gaps.
func (e *Extension) mergeConfigurations(yamlConfig, programmaticConfig Config) Config {
	// Programmatic bool flags override when true.
	if programmaticConfig.DisableMigrate {
		yamlConfig.DisableMigrate = true
	}
	if programmaticConfig.Correlate.CaptureDrops {
		yamlConfig.Correlate.CaptureDrops = true
	}

	// String fields: YAML takes precedence.
	if yamlConfig.Database == "" && programmaticConfig.Database != "" {
		yamlConfig.Database = programmaticConfig.Database
	}
	if yamlConfig.Redis == "" && programmaticConfig.Redis != "" {
		yamlConfig.Redis = programmaticConfig.Redis
	}

	// Fill remaining zeros with defaults.
	return e.mergeWithDefaults(yamlConfig)
}

// resolveDB resolves a *bun.DB from the DI container.
// If Database is set, it looks up the named DB; otherwise it uses the default.
func (e *Extension) resolveDB(fapp forge.App) (*bun.DB, error) {
	if e.config.Database != "" {
		db, err := vessel.InjectNamed[*bun.DB](fapp.Container(), e.config.Database)
		if err != nil {
			return nil, fmt.Errorf("database %q not found in container: %w", e.config.Database, err)
		}
		return db, nil
	}
	db, err := vessel.Inject[*bun.DB](fapp.Container())
	if err != nil {
		return nil, fmt.Errorf("default database not found in container: %w", err)
	}
	return db, nil
}

// resolveRedis resolves a redis client from the DI container.
// If Redis is set, it looks up the named client; otherwise it uses the default.
func (e *Extension) resolveRedis(fapp forge.App) (redis.UniversalClient, error) {
	if e.config.Redis != "" {
		client, err := vessel.InjectNamed[redis.UniversalClient](fapp.Container(), e.config.Redis)
		if err != nil {
			return nil, fmt.Errorf("redis client %q not found in container: %w", e.config.Redis, err)
		}
		return client, nil
	}
	client, err := vessel.Inject[redis.UniversalClient](fapp.Container())
	if err != nil {
		return nil, fmt.Errorf("default redis client not found in container: %w", err)
	}
	return client, nil
}
