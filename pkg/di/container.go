// Package di wires the ledger, snapshot store and API server from a config
package di

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/ssargent/stakelist/pkg/api"
	"github.com/ssargent/stakelist/pkg/config"
	"github.com/ssargent/stakelist/pkg/storage"
	"github.com/ssargent/stakelist/pkg/store"
)

// Container holds all the dependencies for the application. Components are
// opened on first use and released by Close.
type Container struct {
	config *config.Config
	logger zerolog.Logger

	mu        sync.Mutex
	ledger    *store.Ledger
	snapshots storage.SnapshotStore
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *config.Config, logger zerolog.Logger) *Container {
	return &Container{config: cfg, logger: logger}
}

// Config returns the resolved configuration
func (c *Container) Config() *config.Config {
	return c.config
}

// Ledger returns the opened ledger and the verification result of opening it
func (c *Container) Ledger() (*store.Ledger, *store.VerifyResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.ledger == nil {
		c.ledger = store.NewLedger(store.LedgerConfig{
			BufferPath:    c.config.BufferPath(),
			CapacityBytes: c.config.Buffer.CapacityBytes,
			HeaderWidth:   c.config.HeaderWidth(),
			Logger:        c.logger.With().Str("component", "ledger").Logger(),
		})
	}

	res, err := c.ledger.Open()
	if err != nil {
		c.ledger = nil
		return nil, nil, fmt.Errorf("failed to open ledger: %w", err)
	}
	return c.ledger, res, nil
}

// Snapshots returns the configured snapshot store
func (c *Container) Snapshots() (storage.SnapshotStore, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.snapshots != nil {
		return c.snapshots, nil
	}
	s, err := storage.Open(c.config.Snapshot.Backend, c.config.SnapshotDir())
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot store: %w", err)
	}
	c.snapshots = s
	return s, nil
}

// Server builds an API server over the ledger and snapshot store
func (c *Container) Server() (*api.Server, error) {
	if err := c.config.RequireAPIKey(); err != nil {
		return nil, err
	}
	ledger, _, err := c.Ledger()
	if err != nil {
		return nil, err
	}
	snapshots, err := c.Snapshots()
	if err != nil {
		return nil, err
	}

	return api.NewServer(ledger, snapshots, api.ServerConfig{
		Bind:   c.config.Bind,
		Port:   c.config.Port,
		APIKey: c.config.Security.APIKey,
	}, c.logger.With().Str("component", "api").Logger()), nil
}

// Close releases everything the container opened
func (c *Container) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var firstErr error
	if c.snapshots != nil {
		firstErr = c.snapshots.Close()
		c.snapshots = nil
	}
	if c.ledger != nil {
		if err := c.ledger.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		c.ledger = nil
	}
	return firstErr
}
