// Command e2etest starts a local node and runs a complete election against
// it through the HTTP client: registration, voting and tally.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/pflag"
	"github.com/vocdoni/zkballot/api"
	"github.com/vocdoni/zkballot/api/client"
	"github.com/vocdoni/zkballot/config"
	"github.com/vocdoni/zkballot/crypto/ethereum"
	"github.com/vocdoni/zkballot/log"
	"github.com/vocdoni/zkballot/processor"
	"github.com/vocdoni/zkballot/service"
	censusdb "github.com/vocdoni/zkballot/storage/census"
	"github.com/vocdoni/zkballot/types"
	"github.com/vocdoni/zkballot/util"
	"go.vocdoni.io/dvote/db"
)

func main() {
	voters := pflag.Int("voters", 10, "number of voters")
	candidates := pflag.Int("candidates", 3, "number of candidates")
	port := pflag.Int("port", 0, "API port, 0 picks a free one")
	logLevel := pflag.String("log-level", log.LogLevelInfo, "log level")
	pflag.Parse()
	log.Init(*logLevel, "stdout", nil)

	if *voters <= 0 || *candidates <= 0 {
		log.Fatal("voters and candidates must be positive")
	}
	if err := run(*voters, *candidates, *port); err != nil {
		log.Fatal(err)
	}
}

func run(nVoters, nCandidates, port int) error {
	dataDir, err := os.MkdirTemp("", "zkballot-e2e")
	if err != nil {
		return err
	}
	defer os.RemoveAll(dataDir)

	commission := ethereum.NewSignKeys()
	if err := commission.Generate(); err != nil {
		return err
	}
	node, err := service.NewNode(&config.Config{
		Host:            "127.0.0.1",
		Port:            port,
		DataDir:         dataDir,
		DBType:          db.TypePebble,
		Commission:      []common.Address{commission.Address()},
		TranscriptLabel: types.DefaultTranscriptLabel,
		ProofCacheSize:  config.DefaultProofCacheSize,
		MetricsEnabled:  true,
	})
	if err != nil {
		return err
	}
	if err := node.Start(context.Background()); err != nil {
		return err
	}
	defer node.Stop()

	host, p := node.API.HostPort()
	cli, err := client.New(fmt.Sprintf("http://%s:%d", host, p))
	if err != nil {
		return err
	}

	// commission: election and candidates
	cli.SetSigner(commission)
	id, err := cli.RegisterElection()
	if err != nil {
		return fmt.Errorf("register election: %w", err)
	}
	if _, err := cli.OpenRegistration(id); err != nil {
		return err
	}
	cands := make([]types.CandidateID, nCandidates)
	for i := range cands {
		if cands[i], err = cli.RegisterCandidate(id, fmt.Sprintf("candidate-%d", i), ""); err != nil {
			return fmt.Errorf("register candidate: %w", err)
		}
	}
	log.Infow("election ready", "electionId", id.String(), "candidates", nCandidates)

	// voters register themselves
	keys := make([]*ethereum.SignKeys, nVoters)
	for i := range keys {
		keys[i] = ethereum.NewSignKeys()
		if err := keys[i].Generate(); err != nil {
			return err
		}
		cli.SetSigner(keys[i])
		if _, err := cli.RegisterVoter(id, []byte(fmt.Sprintf("credential-%d", i))); err != nil {
			return fmt.Errorf("register voter: %w", err)
		}
	}
	census, err := cli.Census(id)
	if err != nil {
		return err
	}
	log.Infow("census", "root", census.Root.String(), "size", census.Size)
	if len(census.Voters) != nVoters {
		return fmt.Errorf("census lists %d voters, want %d", len(census.Voters), nVoters)
	}
	proof, err := cli.VoterProofByRoot(census.Root, keys[0].Address())
	if err != nil {
		return fmt.Errorf("voter proof: %w", err)
	}
	if !censusdb.VerifyProof(proof.Key, proof.Value, proof.Root, proof.Siblings) {
		return fmt.Errorf("invalid census proof for %s", keys[0].Address().Hex())
	}

	cli.SetSigner(commission)
	if _, err := cli.CloseRegistration(id); err != nil {
		return err
	}
	if _, err := cli.OpenVoting(id); err != nil {
		return err
	}

	// every voter votes for a candidate, round robin
	expected := make(map[types.CandidateID]uint64)
	start := time.Now()
	for i, k := range keys {
		cand := cands[i%nCandidates]
		vote, err := processor.NewVote(id, cand, 1, nil, types.DefaultTranscriptLabel)
		if err != nil {
			return err
		}
		cli.SetSigner(k)
		if _, err := cli.CastVote(vote); err != nil {
			return fmt.Errorf("cast vote: %w", err)
		}
		expected[cand]++
	}
	log.Infow("votes cast", "count", nVoters, "took", time.Since(start).String())

	// a tampered proof must be rejected
	bad, err := processor.NewVote(id, cands[0], 1, util.RandomBytes(32), types.DefaultTranscriptLabel)
	if err != nil {
		return err
	}
	bad.Proof[len(bad.Proof)-1] ^= 0x01
	if _, err := cli.CastVote(bad); !errors.Is(err, api.ErrProofVerificationFailed) {
		return fmt.Errorf("tampered vote: expected proof verification failure, got %v", err)
	}

	cli.SetSigner(commission)
	if _, err := cli.CloseVoting(id); err != nil {
		return err
	}
	if _, err := cli.CompleteElection(id); err != nil {
		return err
	}

	results, err := cli.Results(id)
	if err != nil {
		return err
	}
	for _, r := range results.Results {
		want := types.NewVoteCount(expected[r.CandidateID])
		if r.Votes.Cmp(want) != 0 {
			return fmt.Errorf("candidate %s: expected %s votes, got %s", r.CandidateID, want, r.Votes)
		}
		log.Infow("result", "candidateId", r.CandidateID.String(), "votes", r.Votes.String())
	}
	if len(results.Results) != len(expected) {
		return fmt.Errorf("expected %d candidates with votes, got %d", len(expected), len(results.Results))
	}
	log.Infow("e2e test passed", "electionId", id.String())
	return nil
}
