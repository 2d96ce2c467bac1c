package di

import (
	"fmt"
	"sync"

	"pnregistry-dbinit/internal/bootstrap"
	"pnregistry-dbinit/internal/bootstrap/config"
	"pnregistry-dbinit/internal/shared/logger"
)

// Container holds the process-wide dependencies of one initializer run
type Container struct {
	mu sync.RWMutex

	BootstrapModule *bootstrap.BootstrapModule
	Config          *config.Config
	Logger          logger.Logger
}

// NewContainer creates a new, empty container
func NewContainer() *Container {
	return &Container{}
}

// InitializeBootstrap builds the bootstrap module from cfg. A nil logger
// falls back to the package default.
func (c *Container) InitializeBootstrap(cfg *config.Config, log logger.Logger) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.BootstrapModule != nil {
		return fmt.Errorf("bootstrap module is already initialized")
	}
	if log == nil {
		log = logger.Default()
	}

	module, err := bootstrap.NewBootstrapModule(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to create bootstrap module: %w", err)
	}

	c.Config = cfg
	c.Logger = log
	c.BootstrapModule = module
	return nil
}

// GetBootstrapModule returns the bootstrap module instance
func (c *Container) GetBootstrapModule() *bootstrap.BootstrapModule {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.BootstrapModule
}

// Close stops every initialized module
func (c *Container) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.BootstrapModule == nil {
		return nil
	}
	if err := c.BootstrapModule.Stop(); err != nil {
		return fmt.Errorf("failed to stop bootstrap module: %w", err)
	}
	c.BootstrapModule = nil
	return nil
}
