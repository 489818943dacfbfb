// Package launcher wires the CLI surface to the genesis bootstrap: flag
// parsing, config assembly, logging setup, database opening, and the
// genesis/check commands.
package launcher

import (
	"fmt"
	"path/filepath"

	"github.com/Fantom-foundation/lachesis-base/kvdb"
	"github.com/Fantom-foundation/lachesis-base/kvdb/leveldb"
	"github.com/Fantom-foundation/lachesis-base/kvdb/memorydb"
	"github.com/sirupsen/logrus"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/rony4d/go-anchor-ledger/coin"
	"github.com/rony4d/go-anchor-ledger/flags"
	"github.com/rony4d/go-anchor-ledger/genesis"
	"github.com/rony4d/go-anchor-ledger/inter/btcaddr"
	"github.com/rony4d/go-anchor-ledger/ledger"
	"github.com/rony4d/go-anchor-ledger/ledgerstore"
)

var log = logrus.WithField("module", "launcher")

func makeApp() *cli.App {
	app := flags.NewApp()
	app.Flags = flags.CommonFlags()
	app.Commands = []cli.Command{
		{
			Name:   "genesis",
			Usage:  "Bootstrap a new ledger database",
			Flags:  append(flags.CommonFlags(), flags.GenesisFlags()...),
			Action: genesisAction,
		},
		{
			Name:   "check",
			Usage:  "Print the genesis record of an existing ledger database",
			Flags:  flags.CommonFlags(),
			Action: checkAction,
		},
	}
	return app
}

// Launch runs the CLI with the given arguments.
func Launch(args []string) error {
	return makeApp().Run(args)
}

func genesisAction(ctx *cli.Context) error {
	cfg := MakeAllConfigs(ctx)
	applyLoggerFlags(cfg.Node.Logging)

	gctx, err := makeGenesisContext(cfg.Genesis)
	if err != nil {
		return err
	}

	db, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	state, err := genesis.ApplyGenesis(db, gctx)
	if err != nil {
		return err
	}

	daoBalance, err := state.Bank.Balance(state.DAOAccount)
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"network":     state.Rules.Name,
		"sequencer":   state.SequencerAccount.Hex(),
		"dao":         state.DAOAccount.Hex(),
		"dao_balance": coin.FormatAmount(daoBalance),
	}).Info("ledger bootstrapped")
	return nil
}

func checkAction(ctx *cli.Context) error {
	cfg := MakeAllConfigs(ctx)
	applyLoggerFlags(cfg.Node.Logging)

	db, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	store, _ := ledgerstore.New(db)
	info, err := genesis.ReadChainInfo(store)
	if err != nil {
		return fmt.Errorf("no genesis record found: %w", err)
	}

	fmt.Fprintf(ctx.App.Writer, "network:   %s (chain id %d)\n", info.ChainID.Name(), uint64(info.ChainID))
	fmt.Fprintf(ctx.App.Writer, "sequencer: %s\n", info.SequencerAccount.Hex())
	fmt.Fprintf(ctx.App.Writer, "dao:       %s\n", info.DAOAccount.Hex())
	fmt.Fprintf(ctx.App.Writer, "genesis:   %s\n", info.GenesisHash.Hex())
	return nil
}

// makeGenesisContext assembles the genesis context from the network preset
// and the CLI overrides. The production network has no preset, so both role
// addresses must be given explicitly there.
func makeGenesisContext(cfg GenesisConfig) (genesis.GenesisContext, error) {
	id, err := ledger.ChainIDByName(cfg.ChainName)
	if err != nil {
		return genesis.GenesisContext{}, err
	}

	var gctx genesis.GenesisContext
	if id.IsMain() {
		if cfg.Sequencer == "" || cfg.DAO == "" {
			return genesis.GenesisContext{}, fmt.Errorf("the main network requires explicit --sequencer and --dao addresses")
		}
		gctx.ChainID = id
	} else {
		gctx, err = genesis.GenesisContextByName(cfg.ChainName)
		if err != nil {
			return genesis.GenesisContext{}, err
		}
	}

	if cfg.Sequencer != "" {
		if gctx.Sequencer, err = btcaddr.Parse(cfg.Sequencer); err != nil {
			return genesis.GenesisContext{}, fmt.Errorf("bad --sequencer: %w", err)
		}
	}
	if cfg.DAO != "" {
		if gctx.DAO, err = btcaddr.Parse(cfg.DAO); err != nil {
			return genesis.GenesisContext{}, fmt.Errorf("bad --dao: %w", err)
		}
	}
	return gctx, nil
}

// openDB opens the ledger database: ephemeral in-memory storage when
// requested, a leveldb under <datadir>/chaindata otherwise.
func openDB(cfg Config) (kvdb.DropableStore, error) {
	if cfg.Genesis.Memory {
		log.Info("using ephemeral in-memory database")
		return memorydb.New(), nil
	}
	dir := filepath.Join(cfg.Node.DataDir, "chaindata")
	producer := leveldb.NewProducer(dir, func(string) (int, int) {
		return cfg.Storage.CacheMB * 1024 * 1024, cfg.Storage.Handles
	})
	db, err := producer.OpenDB("ledger")
	if err != nil {
		return nil, fmt.Errorf("open ledger database in %s: %w", dir, err)
	}
	return db, nil
}
