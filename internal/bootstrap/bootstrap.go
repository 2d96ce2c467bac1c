package bootstrap

import (
	"context"
	"fmt"

	"pnregistry-dbinit/internal/bootstrap/adapter/lock"
	"pnregistry-dbinit/internal/bootstrap/adapter/persistence/mongodb"
	"pnregistry-dbinit/internal/bootstrap/adapter/seed"
	"pnregistry-dbinit/internal/bootstrap/config"
	"pnregistry-dbinit/internal/bootstrap/domain/model"
	"pnregistry-dbinit/internal/bootstrap/domain/repository"
	"pnregistry-dbinit/internal/bootstrap/usecase"
	"pnregistry-dbinit/internal/shared/logger"

	"github.com/redis/go-redis/v9"
)

// BootstrapModule wires the initializer to its MongoDB, seed and lock adapters
type BootstrapModule struct {
	connector   repository.Connector
	seeds       repository.SeedSource
	policy      usecase.RetryPolicy
	initializer *usecase.Initializer
	redis       *redis.Client
	config      *config.Config
	logger      logger.Logger
}

// NewBootstrapModule creates a new bootstrap module instance
func NewBootstrapModule(cfg *config.Config, log logger.Logger) (*BootstrapModule, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bootstrap module requires a configuration")
	}
	if log == nil {
		log = logger.Default()
	}

	connector := mongodb.NewConnector(cfg.Connection, log)
	seeds := seed.NewSource(cfg.SeedFile)
	policy := usecase.NewRetryPolicy(cfg.Connection.RetrySeconds.Duration()).
		WithMaxAttempts(cfg.Connection.RetryMaxAttempts)

	initializer := usecase.NewInitializer(connector, seeds, policy, usecase.Options{
		Database:       cfg.Connection.Database,
		Collection:     cfg.Connection.Collection,
		StrictExitCode: cfg.StrictExitCode,
		DryRun:         cfg.DryRun,
		LockTTL:        cfg.Lock.TTL,
	}, log)

	module := &BootstrapModule{
		connector:   connector,
		seeds:       seeds,
		policy:      policy,
		initializer: initializer,
		config:      cfg,
		logger:      log.WithComponent("bootstrap"),
	}

	if cfg.Lock.Enabled() {
		module.redis = lock.NewRedisClient(cfg.Lock)
		initializer.WithLocker(lock.NewRedisLocker(module.redis, log))
	}

	return module, nil
}

// Run performs one initialization pass
func (bm *BootstrapModule) Run(ctx context.Context) (model.Report, error) {
	policy := bm.GetRetryPolicy()
	attempts := "unlimited"
	if !policy.Unlimited() {
		attempts = fmt.Sprint(policy.MaxAttempts)
	}
	bm.logger.WithFields(map[string]interface{}{
		"retry_interval": policy.Interval.String(),
		"max_attempts":   attempts,
		"lock":           bm.LockEnabled(),
	}).Infof("Initializing %s/%s on %s",
		bm.config.Connection.Database,
		bm.config.Connection.Collection,
		bm.config.Connection.RedactedURI())

	return bm.initializer.Run(ctx)
}

// GetRetryPolicy returns the connection retry policy
func (bm *BootstrapModule) GetRetryPolicy() usecase.RetryPolicy {
	return bm.policy
}

// LockEnabled reports whether runs are guarded by the Redis lock
func (bm *BootstrapModule) LockEnabled() bool {
	return bm.redis != nil
}

// Stop releases the resources held by the module
func (bm *BootstrapModule) Stop() error {
	if bm.redis != nil {
		if err := bm.redis.Close(); err != nil {
			return fmt.Errorf("failed to close lock client: %w", err)
		}
		bm.redis = nil
	}
	return nil
}
