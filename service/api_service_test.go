package service

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	qt "github.com/frankban/quicktest"
	"github.com/vocdoni/zkballot/api"
	"github.com/vocdoni/zkballot/auth"
	"github.com/vocdoni/zkballot/config"
	"github.com/vocdoni/zkballot/sequencer"
	"github.com/vocdoni/zkballot/storage"
	"github.com/vocdoni/zkballot/types"
	"go.vocdoni.io/dvote/db"
	"go.vocdoni.io/dvote/db/metadb"
)

func TestAPIService(t *testing.T) {
	c := qt.New(t)

	store := storage.New(metadb.NewTest(t))
	seq, err := sequencer.New(&sequencer.Config{Storage: store, Authorizer: auth.NewCommissionList()})
	c.Assert(err, qt.IsNil)

	// Port 0 lets the OS choose an available port
	apiService := NewAPI(seq, nil, "127.0.0.1", 0)

	ctx := context.Background()
	err = apiService.Start(ctx)
	c.Assert(err, qt.IsNil)
	defer apiService.Stop()
	c.Assert(ping(apiService), qt.IsNil)

	// Test stopping and restarting
	apiService.Stop()
	err = apiService.Start(ctx)
	c.Assert(err, qt.IsNil)
	c.Assert(ping(apiService), qt.IsNil)

	// Test starting an already running service
	err = apiService.Start(ctx)
	c.Assert(err, qt.ErrorMatches, "service already running")
}

func TestNode(t *testing.T) {
	c := qt.New(t)
	commission := common.HexToAddress("0x000000000000000000000000000000000000c0de")
	cfg := &config.Config{
		Host:            "127.0.0.1",
		Port:            0,
		DataDir:         t.TempDir(),
		DBType:          db.TypePebble,
		Commission:      []common.Address{commission},
		TranscriptLabel: types.DefaultTranscriptLabel,
		ProofCacheSize:  8,
		MetricsEnabled:  true,
	}
	node, err := NewNode(cfg)
	c.Assert(err, qt.IsNil)
	c.Assert(node.Start(context.Background()), qt.IsNil)
	c.Assert(ping(node.API), qt.IsNil)

	id, err := node.Sequencer.RegisterElection(commission)
	c.Assert(err, qt.IsNil)
	node.Stop()

	// the election survives a restart
	node, err = NewNode(cfg)
	c.Assert(err, qt.IsNil)
	defer node.Stop()
	e, err := node.Sequencer.Election(id)
	c.Assert(err, qt.IsNil)
	c.Assert(e.ID, qt.Equals, id)
	c.Assert(filepath.Join(cfg.DataDir, "db"), qt.Equals, cfg.DBPath())
}

func ping(as *APIService) error {
	host, port := as.HostPort()
	resp, err := http.Get(fmt.Sprintf("http://%s:%d%s", host, port, api.PingEndpoint))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return nil
}
