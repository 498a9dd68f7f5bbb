package service

import (
	"context"
	"fmt"

	"github.com/vocdoni/zkballot/auth"
	"github.com/vocdoni/zkballot/config"
	"github.com/vocdoni/zkballot/log"
	"github.com/vocdoni/zkballot/metrics"
	"github.com/vocdoni/zkballot/sequencer"
	"github.com/vocdoni/zkballot/storage"
	"go.vocdoni.io/dvote/db/metadb"
)

// Node wires the storage, the sequencer and the API of a zkballot node.
type Node struct {
	Storage   *storage.Storage
	Sequencer *sequencer.Sequencer
	Metrics   *metrics.Metrics
	API       *APIService
}

// NewNode opens the database in the data directory of cfg and builds the
// services of the node. They are not started until Start is called.
func NewNode(cfg *config.Config) (*Node, error) {
	if cfg == nil {
		return nil, fmt.Errorf("missing node configuration")
	}
	database, err := metadb.New(cfg.DBType, cfg.DBPath())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	stg := storage.New(database)

	var m *metrics.Metrics
	if cfg.MetricsEnabled {
		if m, err = metrics.New(); err != nil {
			stg.Close()
			return nil, fmt.Errorf("failed to create metrics: %w", err)
		}
	}
	if len(cfg.Commission) == 0 {
		log.Warn("no commission members configured, elections cannot be managed")
	}
	seq, err := sequencer.New(&sequencer.Config{
		Storage:         stg,
		Authorizer:      auth.NewCommissionList(cfg.Commission...),
		ProofCacheSize:  cfg.ProofCacheSize,
		TranscriptLabel: cfg.TranscriptLabel,
		Metrics:         m,
	})
	if err != nil {
		stg.Close()
		return nil, fmt.Errorf("failed to create sequencer: %w", err)
	}
	return &Node{
		Storage:   stg,
		Sequencer: seq,
		Metrics:   m,
		API:       NewAPI(seq, m, cfg.Host, cfg.Port),
	}, nil
}

// Start starts the API of the node.
func (n *Node) Start(ctx context.Context) error {
	return n.API.Start(ctx)
}

// Stop stops the API and closes the storage.
func (n *Node) Stop() {
	n.API.Stop()
	n.Storage.Close()
}
