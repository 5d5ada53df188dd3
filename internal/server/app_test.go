package server

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/dreamsync/internal/logging"
	"github.com/dmitrijs2005/dreamsync/internal/server/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memoryConfig() *config.Config {
	c := &config.Config{}
	c.LoadDefaults()
	c.Store = "memory"
	c.EndpointAddrGRPC = "127.0.0.1:0"
	c.EndpointAddrHTTP = "127.0.0.1:0"
	c.S3Bucket = ""
	return c
}

func TestNewApp_Memory(t *testing.T) {
	app, err := NewApp(context.Background(), memoryConfig(), logging.Nop())
	require.NoError(t, err)
	assert.NotNil(t, app.services.Auth)
	assert.NotNil(t, app.services.Dreams)
	assert.NotNil(t, app.services.Users)
	assert.NotNil(t, app.services.Social)
}

func TestNewApp_UnknownStore(t *testing.T) {
	c := memoryConfig()
	c.Store = "cassandra"
	_, err := NewApp(context.Background(), c, logging.Nop())
	assert.Error(t, err)
}

func TestApp_RunStopsOnCancel(t *testing.T) {
	app, err := NewApp(context.Background(), memoryConfig(), logging.Nop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("app did not stop")
	}
}

func TestApp_RunFailsOnBadAddress(t *testing.T) {
	c := memoryConfig()
	c.EndpointAddrGRPC = "bad-address"
	app, err := NewApp(context.Background(), c, logging.Nop())
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- app.Run(context.Background()) }()

	select {
	case err := <-done:
		assert.Error(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("app did not fail")
	}
}

func TestNewPictureStore(t *testing.T) {
	c := memoryConfig()
	assert.Nil(t, newPictureStore(c))
	c.S3Bucket = "pics"
	assert.NotNil(t, newPictureStore(c))
}
