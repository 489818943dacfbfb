package launcher

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	cli "gopkg.in/urfave/cli.v1"

	"github.com/rony4d/go-anchor-ledger/integration"
)

// Config aggregates every subsystem's configuration the launcher needs.
type Config struct {
	Node    NodeConfig
	Storage StorageConfig
	Genesis GenesisConfig
}

type NodeConfig struct {
	DataDir string
	Logging LoggingConfig
}

type LoggingConfig struct {
	Verbosity int
	Format    string
	Color     bool
	SentryDSN string
}

type StorageConfig struct {
	CacheMB int
	Handles int
}

type GenesisConfig struct {
	ChainName string
	Sequencer string // Bitcoin address text, empty means use the preset
	DAO       string // Bitcoin address text, empty means use the preset
	Memory    bool
}

func defaultConfig() Config {
	d := DefaultConfig()
	return Config{
		Node: NodeConfig{
			DataDir: filepath.Join(GuessHomeDir(), ".anchor"),
			Logging: LoggingConfig{
				Verbosity: d.Logging.Verbosity,
				Format:    d.Logging.Format,
				Color:     d.Logging.Color,
			},
		},
		Storage: StorageConfig{
			CacheMB: d.Storage.CacheMB,
			Handles: d.Storage.Handles,
		},
		Genesis: GenesisConfig{
			ChainName: d.Network.ChainName,
		},
	}
}

// MakeAllConfigs merges defaults with the CLI flag overrides into a single
// config struct.
func MakeAllConfigs(ctx *cli.Context) Config {
	cfg := defaultConfig()
	applyCLIOverrides(ctx, &cfg)
	if !cfg.Genesis.Memory {
		if err := ensureDir(cfg.Node.DataDir); err != nil {
			panic(err)
		}
	}
	return cfg
}

func applyCLIOverrides(ctx *cli.Context, cfg *Config) {
	if ctx.IsSet("datadir") {
		cfg.Node.DataDir = resolvePath(ctx.String("datadir"))
	}
	if ctx.IsSet("log.format") {
		cfg.Node.Logging.Format = ctx.String("log.format")
	}
	if ctx.IsSet("log.verbosity") {
		cfg.Node.Logging.Verbosity = ctx.Int("log.verbosity")
	}
	if ctx.IsSet("log.color") {
		cfg.Node.Logging.Color = ctx.Bool("log.color")
	}
	if ctx.IsSet("sentry.dsn") {
		cfg.Node.Logging.SentryDSN = ctx.String("sentry.dsn")
	}

	// The preset applies before the cache flag so an explicit --cache still
	// wins over the profile's value.
	if ctx.IsSet("preset") {
		preset, err := integration.GetPresetByName(ctx.String("preset"))
		if err != nil {
			panic(err)
		}
		cfg.Storage.CacheMB = preset.CacheMB
		cfg.Storage.Handles = preset.Handles
	}
	if ctx.IsSet("cache") {
		cfg.Storage.CacheMB = ctx.Int("cache")
	}

	if ctx.IsSet("chain") {
		cfg.Genesis.ChainName = strings.ToLower(ctx.String("chain"))
	}
	if ctx.IsSet("sequencer") {
		cfg.Genesis.Sequencer = ctx.String("sequencer")
	}
	if ctx.IsSet("dao") {
		cfg.Genesis.DAO = ctx.String("dao")
	}
	if ctx.IsSet("memory") {
		cfg.Genesis.Memory = ctx.Bool("memory")
	}
}

func ensureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create datadir %s: %w", dir, err)
	}
	return nil
}

func resolvePath(p string) string {
	if strings.HasPrefix(p, "~") {
		return filepath.Join(GuessHomeDir(), strings.TrimPrefix(p, "~"))
	}
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(GuessWorkDir(), p)
}

func GuessWorkDir() string {
	if wd, err := os.Getwd(); err == nil {
		return wd
	}
	return "."
}

func GuessHomeDir() string {
	if dir, err := os.UserHomeDir(); err == nil {
		return dir
	}
	return "."
}
