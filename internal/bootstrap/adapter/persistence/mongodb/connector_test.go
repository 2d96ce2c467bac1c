package mongodb

import (
	"context"
	"io"
	"testing"
	"time"

	"pnregistry-dbinit/internal/bootstrap/config"
	"pnregistry-dbinit/internal/shared/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() logger.Logger {
	return logger.New(logger.Options{Out: io.Discard, ErrOut: io.Discard})
}

func TestConnector_ClientOptions(t *testing.T) {
	cfg := config.ConnectionConfig{
		Host:           "mongo.svc",
		Port:           "27017",
		Username:       "root",
		Password:       "secret",
		ConnectTimeout: 3 * time.Second,
	}

	opts := NewConnector(cfg, testLogger()).ClientOptions()

	require.NotNil(t, opts.AppName)
	assert.Equal(t, appName, *opts.AppName)
	require.NotNil(t, opts.Auth)
	assert.Equal(t, "root", opts.Auth.Username)
	assert.Equal(t, "secret", opts.Auth.Password)
	assert.Equal(t, []string{"mongo.svc:27017"}, opts.Hosts)
	require.NotNil(t, opts.ServerSelectionTimeout)
	assert.Equal(t, 3*time.Second, *opts.ServerSelectionTimeout)
}

func TestConnector_UnreachableServerFailsAttempt(t *testing.T) {
	cfg := config.ConnectionConfig{
		Host:           "127.0.0.1",
		Port:           "1",
		ConnectTimeout: 200 * time.Millisecond,
	}

	store, err := NewConnector(cfg, testLogger()).Connect(context.Background())

	require.Error(t, err)
	assert.Nil(t, store)
	assert.Contains(t, err.Error(), "mongodb://127.0.0.1:1")
}
