// Package config loads the node configuration from command line flags and
// ZKBALLOT_* environment variables. Flags take precedence.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/vocdoni/zkballot/log"
	"github.com/vocdoni/zkballot/types"
	"go.vocdoni.io/dvote/db"
)

const (
	HostKey            = "host"
	PortKey            = "port"
	DataDirKey         = "datadir"
	DBTypeKey          = "dbtype"
	LogLevelKey        = "log-level"
	LogOutputKey       = "log-output"
	CommissionKey      = "commission"
	TranscriptLabelKey = "transcript-label"
	ProofCacheSizeKey  = "proof-cache-size"
	MetricsKey         = "metrics"

	// EnvPrefix is the prefix of the environment variables read, so
	// ZKBALLOT_LOG_LEVEL sets log-level.
	EnvPrefix = "ZKBALLOT"

	DefaultHost           = "0.0.0.0"
	DefaultPort           = 9090
	DefaultProofCacheSize = 4096
)

// Config is the configuration of a zkballot node.
type Config struct {
	Host            string
	Port            int
	DataDir         string
	DBType          string
	LogLevel        string
	LogOutput       string
	Commission      []common.Address
	TranscriptLabel string
	ProofCacheSize  int
	MetricsEnabled  bool
}

// DBPath returns the directory of the node database.
func (c *Config) DBPath() string {
	return filepath.Join(c.DataDir, "db")
}

// AddFlags defines the configuration flags in flags.
func AddFlags(flags *pflag.FlagSet) {
	flags.String(HostKey, DefaultHost, "address the API listens on")
	flags.Int(PortKey, DefaultPort, "port the API listens on")
	flags.String(DataDirKey, defaultDataDir(), "directory where the node keeps its data")
	flags.String(DBTypeKey, db.TypePebble, "database engine (pebble or leveldb)")
	flags.String(LogLevelKey, log.LogLevelInfo, "log level (debug, info, warn, error)")
	flags.String(LogOutputKey, "stdout", "log output (stdout, stderr or a file path)")
	flags.StringSlice(CommissionKey, nil, "addresses of the election commission members")
	flags.String(TranscriptLabelKey, types.DefaultTranscriptLabel, "label vote proofs are bound to")
	flags.Int(ProofCacheSizeKey, DefaultProofCacheSize, "number of cached proof verifications, 0 disables the cache")
	flags.Bool(MetricsKey, true, "serve prometheus metrics at /metrics")
}

// Load parses args with flags, which must have been set up with AddFlags,
// merges the environment and validates the result.
func Load(flags *pflag.FlagSet, args []string) (*Config, error) {
	if err := flags.Parse(args); err != nil {
		return nil, err
	}
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(flags); err != nil {
		return nil, err
	}

	cfg := &Config{
		Host:            v.GetString(HostKey),
		Port:            v.GetInt(PortKey),
		DataDir:         v.GetString(DataDirKey),
		DBType:          v.GetString(DBTypeKey),
		LogLevel:        v.GetString(LogLevelKey),
		LogOutput:       v.GetString(LogOutputKey),
		TranscriptLabel: v.GetString(TranscriptLabelKey),
		ProofCacheSize:  v.GetInt(ProofCacheSizeKey),
		MetricsEnabled:  v.GetBool(MetricsKey),
	}
	for _, addr := range v.GetStringSlice(CommissionKey) {
		// environment values arrive as a single comma separated string
		for _, a := range strings.Split(addr, ",") {
			if a = strings.TrimSpace(a); a == "" {
				continue
			}
			if !common.IsHexAddress(a) {
				return nil, fmt.Errorf("invalid commission address %q", a)
			}
			cfg.Commission = append(cfg.Commission, common.HexToAddress(a))
		}
	}
	return cfg, cfg.Validate()
}

// Validate checks the configuration values.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.DataDir == "" {
		return fmt.Errorf("data directory cannot be empty")
	}
	switch c.DBType {
	case db.TypePebble, db.TypeLevelDB:
	default:
		return fmt.Errorf("unsupported database type %q", c.DBType)
	}
	switch c.LogLevel {
	case log.LogLevelDebug, log.LogLevelInfo, log.LogLevelWarn, log.LogLevelError:
	default:
		return fmt.Errorf("invalid log level %q", c.LogLevel)
	}
	if c.TranscriptLabel == "" {
		return fmt.Errorf("transcript label cannot be empty")
	}
	if c.ProofCacheSize < 0 {
		return fmt.Errorf("invalid proof cache size %d", c.ProofCacheSize)
	}
	return nil
}
