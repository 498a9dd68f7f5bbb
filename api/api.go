package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/vocdoni/zkballot/log"
	"github.com/vocdoni/zkballot/metrics"
	"github.com/vocdoni/zkballot/sequencer"
)

// replayCacheSize bounds the number of signed requests remembered to
// reject replays.
const replayCacheSize = 100_000

// APIConfig type represents the configuration for the API HTTP server.
type APIConfig struct {
	Host      string
	Port      int
	Sequencer *sequencer.Sequencer
	// Metrics, if set, are served at MetricsEndpoint.
	Metrics *metrics.Metrics
	// SignatureWindow defaults to DefaultSignatureWindow.
	SignatureWindow time.Duration
}

// API type represents the API HTTP server.
type API struct {
	router          *chi.Mux
	server          *http.Server
	addr            net.Addr
	seq             *sequencer.Sequencer
	metrics         *metrics.Metrics
	seen            *lru.Cache[string, int64]
	signatureWindow time.Duration
	now             func() time.Time
}

// New creates a new API instance with the given configuration and starts
// the HTTP server in the background.
func New(conf *APIConfig) (*API, error) {
	a, err := newAPI(conf)
	if err != nil {
		return nil, err
	}
	ln, err := net.Listen("tcp", fmt.Sprintf("%s:%d", conf.Host, conf.Port))
	if err != nil {
		return nil, fmt.Errorf("failed to listen: %w", err)
	}
	a.addr = ln.Addr()
	a.server = &http.Server{
		Handler:           a.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Infow("starting API server", "addr", ln.Addr().String())
		if err := a.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("failed to start the API server: %v", err)
		}
	}()
	return a, nil
}

func newAPI(conf *APIConfig) (*API, error) {
	if conf == nil {
		return nil, fmt.Errorf("missing API configuration")
	}
	if conf.Sequencer == nil {
		return nil, fmt.Errorf("missing sequencer instance")
	}
	seen, err := lru.New[string, int64](replayCacheSize)
	if err != nil {
		return nil, err
	}
	a := &API{
		seq:             conf.Sequencer,
		metrics:         conf.Metrics,
		seen:            seen,
		signatureWindow: conf.SignatureWindow,
		now:             time.Now,
	}
	if a.signatureWindow <= 0 {
		a.signatureWindow = DefaultSignatureWindow
	}
	a.initRouter()
	return a, nil
}

// Router returns the chi router for testing purposes
func (a *API) Router() *chi.Mux {
	return a.router
}

// Addr returns the address the server listens on, which is useful when
// the configured port is 0. It is nil until New has started the server.
func (a *API) Addr() net.Addr {
	return a.addr
}

// Close stops the HTTP server, waiting for the requests in flight until
// ctx is done.
func (a *API) Close(ctx context.Context) error {
	if a.server == nil {
		return nil
	}
	return a.server.Shutdown(ctx)
}

// registerHandlers registers all the API handlers.
func (a *API) registerHandlers() {
	handle := func(method, endpoint string, h http.HandlerFunc) {
		log.Debugw("register handler", "endpoint", endpoint, "method", method)
		a.router.Method(method, endpoint, h)
	}
	signed := func(method, endpoint string, h http.HandlerFunc) {
		log.Debugw("register signed handler", "endpoint", endpoint, "method", method)
		a.router.With(a.authenticate).Method(method, endpoint, h)
	}

	handle(http.MethodGet, PingEndpoint, func(w http.ResponseWriter, r *http.Request) {
		httpWriteOK(w)
	})
	if a.metrics != nil {
		a.router.Method(http.MethodGet, MetricsEndpoint, a.metrics.Handler())
	}

	// elections
	signed(http.MethodPost, ElectionsEndpoint, a.newElection)
	handle(http.MethodGet, ElectionsEndpoint, a.elections)
	handle(http.MethodGet, ElectionEndpoint, a.election)
	signed(http.MethodDelete, ElectionEndpoint, a.deregisterElection)
	signed(http.MethodPost, OpenRegistrationEndpoint, a.lifecycle(a.seq.OpenRegistration))
	signed(http.MethodPost, CloseRegistrationEndpoint, a.lifecycle(a.seq.CloseRegistration))
	signed(http.MethodPost, OpenVotingEndpoint, a.lifecycle(a.seq.OpenVoting))
	signed(http.MethodPost, CloseVotingEndpoint, a.lifecycle(a.seq.CloseVoting))
	signed(http.MethodPost, CompleteEndpoint, a.lifecycle(a.seq.CompleteElection))

	// registry
	signed(http.MethodPost, CandidatesEndpoint, a.newCandidate)
	handle(http.MethodGet, CandidatesEndpoint, a.candidates)
	handle(http.MethodGet, CandidateEndpoint, a.candidate)
	signed(http.MethodPost, VotersEndpoint, a.newVoter)
	handle(http.MethodGet, VotersEndpoint, a.censusInfo)
	handle(http.MethodGet, VoterProofEndpoint, a.voterProof)
	handle(http.MethodGet, CensusProofEndpoint, a.censusProof)

	// votes and results
	signed(http.MethodPost, VotesEndpoint, a.newVote)
	handle(http.MethodGet, TallyEndpoint, a.results)
	handle(http.MethodGet, CandidateTallyEndpoint, a.candidateTally)
	handle(http.MethodPost, VerifyProofsEndpoint, a.verifyProofs)
	handle(http.MethodGet, EventsEndpoint, a.events)
}

// initRouter creates the router with all the routes and middleware.
func (a *API) initRouter() {
	// Create the router with a basic middleware stack
	a.router = chi.NewRouter()
	a.router.Use(cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", TimestampHeader, NonceHeader, SignatureHeader},
		AllowCredentials: true,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}).Handler)
	a.router.Use(middleware.Recoverer)
	a.router.Use(middleware.Throttle(100))
	a.router.Use(middleware.ThrottleBacklog(5000, 40000, 60*time.Second))
	a.router.Use(middleware.Timeout(45 * time.Second))

	a.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		ErrResourceNotFound.With(r.URL.Path).Write(w)
	})

	// Register the API handlers
	a.registerHandlers()
}
