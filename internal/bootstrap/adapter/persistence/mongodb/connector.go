package mongodb

import (
	"context"
	"fmt"
	"time"

	"pnregistry-dbinit/internal/bootstrap/config"
	"pnregistry-dbinit/internal/bootstrap/domain/repository"
	"pnregistry-dbinit/internal/shared/logger"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const appName = "pnregistry-dbinit"

// Connector opens MongoDB connections for the configured server. Each
// Connect call is a single attempt bounded by the connect timeout.
type Connector struct {
	cfg    config.ConnectionConfig
	logger logger.Logger
}

var _ repository.Connector = (*Connector)(nil)

// NewConnector creates a new Connector
func NewConnector(cfg config.ConnectionConfig, log logger.Logger) *Connector {
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = 10 * time.Second
	}
	return &Connector{
		cfg:    cfg,
		logger: log.WithComponent("mongodb-connector"),
	}
}

// ClientOptions returns the driver options used for every attempt
func (c *Connector) ClientOptions() *options.ClientOptions {
	return options.Client().
		ApplyURI(c.cfg.URI()).
		SetAppName(appName).
		SetConnectTimeout(c.cfg.ConnectTimeout).
		SetServerSelectionTimeout(c.cfg.ConnectTimeout)
}

// Connect creates a client and pings the primary. mongo.Connect alone does
// not reach the server, so an attempt only succeeds once the ping does.
func (c *Connector) Connect(ctx context.Context) (repository.Store, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.cfg.ConnectTimeout)
	defer cancel()

	c.logger.Debugf("Connecting to %s", c.cfg.RedactedURI())

	client, err := mongo.Connect(attemptCtx, c.ClientOptions())
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", c.cfg.RedactedURI(), err)
	}

	if err := client.Ping(attemptCtx, readpref.Primary()); err != nil {
		dctx, dcancel := context.WithTimeout(context.Background(), c.cfg.ConnectTimeout)
		defer dcancel()
		if derr := client.Disconnect(dctx); derr != nil {
			c.logger.Debugf("Discarding failed client: %v", derr)
		}
		return nil, fmt.Errorf("ping %s: %w", c.cfg.RedactedURI(), err)
	}

	return NewStore(client), nil
}
