// Package di provides dependency injection container
package di

import (
	"fmt"
	"log/slog"

	"github.com/ssargent/skyactions/pkg/action"
	"github.com/ssargent/skyactions/pkg/api" //nolint:depguard
	"github.com/ssargent/skyactions/pkg/catalog"
	"github.com/ssargent/skyactions/pkg/config"
	"github.com/ssargent/skyactions/pkg/logging"
)

// Container holds all the dependencies for the application
type Container struct {
	config        *config.Config
	logger        *slog.Logger
	metrics       *api.Metrics
	catalog       *catalog.Catalog
	serverFactory api.ServerFactory
}

// NewContainer creates a new dependency injection container
func NewContainer() *Container {
	return &Container{
		config:        config.DefaultConfig(),
		logger:        logging.Discard(),
		serverFactory: api.NewServerFactory(),
	}
}

// Configure replaces the configuration and logger. It must be called before
// the catalog is first opened.
func (c *Container) Configure(cfg *config.Config, logger *slog.Logger) {
	if cfg != nil {
		c.config = cfg
	}
	if logger != nil {
		c.logger = logger
	}
}

// Config returns the active configuration
func (c *Container) Config() *config.Config {
	return c.config
}

// Logger returns the application logger
func (c *Container) Logger() *slog.Logger {
	return c.logger
}

// Metrics returns the shared metrics, creating them on first use
func (c *Container) Metrics() *api.Metrics {
	if c.metrics == nil {
		c.metrics = api.NewMetrics()
	}
	return c.metrics
}

// Catalog opens the table catalog for the configured data directory on first
// use and returns the same instance afterwards
func (c *Container) Catalog() (*catalog.Catalog, error) {
	if c.catalog != nil {
		return c.catalog, nil
	}

	cat, err := catalog.Open(c.config.DataDir,
		catalog.WithLogger(c.logger),
		catalog.WithRegistryOptions(c.registryOptions()...),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	c.catalog = cat
	return cat, nil
}

func (c *Container) registryOptions() []action.Option {
	return []action.Option{
		action.WithLogger(c.logger),
		action.WithObserver(c.Metrics()),
		action.WithCreateOnSave(c.config.Actions.CreateOnSave),
	}
}

// GetServerFactory returns the server factory
func (c *Container) GetServerFactory() api.ServerFactory {
	return c.serverFactory
}

// SetServerFactory allows overriding the server factory (for testing)
func (c *Container) SetServerFactory(factory api.ServerFactory) {
	c.serverFactory = factory
}

// Close releases the catalog if it was opened
func (c *Container) Close() error {
	if c.catalog == nil {
		return nil
	}
	err := c.catalog.Close()
	c.catalog = nil
	return err
}
