package service

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/vocdoni/zkballot/api"
	"github.com/vocdoni/zkballot/log"
	"github.com/vocdoni/zkballot/metrics"
	"github.com/vocdoni/zkballot/sequencer"
)

// shutdownTimeout is how long Stop waits for the requests in flight.
const shutdownTimeout = 10 * time.Second

// APIService represents a service that manages the HTTP API server.
type APIService struct {
	seq     *sequencer.Sequencer
	metrics *metrics.Metrics
	api     *api.API
	mu      sync.Mutex
	cancel  context.CancelFunc
	host    string
	port    int
}

// NewAPI creates a new APIService instance. The metrics are optional.
func NewAPI(seq *sequencer.Sequencer, m *metrics.Metrics, host string, port int) *APIService {
	return &APIService{
		seq:     seq,
		metrics: m,
		host:    host,
		port:    port,
	}
}

// Start begins the API server. It returns an error if the service
// is already running or if it fails to start. The server is stopped when
// ctx is done.
func (as *APIService) Start(ctx context.Context) error {
	as.mu.Lock()
	defer as.mu.Unlock()

	if as.cancel != nil {
		return fmt.Errorf("service already running")
	}

	var err error
	as.api, err = api.New(&api.APIConfig{
		Host:      as.host,
		Port:      as.port,
		Sequencer: as.seq,
		Metrics:   as.metrics,
	})
	if err != nil {
		return fmt.Errorf("failed to start API server: %w", err)
	}

	ctx, as.cancel = context.WithCancel(ctx)
	srv := as.api
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Close(shutdownCtx); err != nil {
			log.Warnw("failed to stop API server", "error", err)
		}
	}()
	return nil
}

// Stop halts the API server.
func (as *APIService) Stop() {
	as.mu.Lock()
	defer as.mu.Unlock()

	if as.cancel != nil {
		as.cancel()
		as.cancel = nil
	}
	if as.api != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := as.api.Close(ctx); err != nil {
			log.Warnw("failed to stop API server", "error", err)
		}
		as.api = nil
	}
}

// HostPort returns the host and port of the API server. While running, the
// port is the one actually listened on.
func (as *APIService) HostPort() (string, int) {
	as.mu.Lock()
	defer as.mu.Unlock()
	if as.api != nil {
		if addr, ok := as.api.Addr().(*net.TCPAddr); ok {
			return as.host, addr.Port
		}
	}
	return as.host, as.port
}
