// Package genesis implements the one-shot ledger bootstrap: given a chain
// id and the Bitcoin addresses of the sequencer and the DAO, it creates the
// system accounts, the ledger-global singletons, the builtin auth
// validators, the genesis accounts, and their initial funding, all inside
// a single atomic store transaction.
//
// Genesis either commits completely or leaves the backing database
// untouched. Every failure path aborts the buffered writes before
// returning, so a node that crashes or errors mid-bootstrap can simply run
// genesis again on the same database.
package genesis

import (
	"errors"
	"fmt"

	"github.com/Fantom-foundation/lachesis-base/common/bigendian"
	"github.com/Fantom-foundation/lachesis-base/kvdb"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/sirupsen/logrus"

	"github.com/rony4d/go-anchor-ledger/account"
	"github.com/rony4d/go-anchor-ledger/addrmapping"
	"github.com/rony4d/go-anchor-ledger/authvalidator"
	"github.com/rony4d/go-anchor-ledger/coin"
	"github.com/rony4d/go-anchor-ledger/inter"
	"github.com/rony4d/go-anchor-ledger/inter/btcaddr"
	"github.com/rony4d/go-anchor-ledger/ledger"
	"github.com/rony4d/go-anchor-ledger/ledger/sysaddr"
	"github.com/rony4d/go-anchor-ledger/ledgerstore"
	"github.com/rony4d/go-anchor-ledger/upgrade"
)

var log = logrus.WithField("module", "genesis")

// ErrGenesisInit is the root of the genesis error taxonomy: every bootstrap
// failure wraps it.
var ErrGenesisInit = errors.New("genesis initialization failed")

// chainInfoTypeID is the stable type id of the chain-info singleton, the
// object whose presence marks a database as already bootstrapped.
const chainInfoTypeID = "anchor.chain_info"

// Chain-info field keys.
var (
	keyChainID     = []byte("chain_id")  // 8 bytes big-endian, immutable
	keySequencer   = []byte("sequencer") // canonical sequencer account
	keyDAO         = []byte("dao")       // canonical DAO account
	keyGenesisHash = []byte("hash")      // hash of the genesis context
)

// GenesisContext carries everything a network needs to bootstrap: the chain
// id plus the Bitcoin identities of the two genesis roles.
type GenesisContext struct {
	// ChainID selects the network rules and is recorded immutably.
	ChainID ledger.ChainID
	// Sequencer is the Bitcoin address of the block-producing sequencer.
	Sequencer btcaddr.Address
	// DAO is the Bitcoin address of the governance treasury.
	DAO btcaddr.Address
}

// Validate checks the context is complete enough to bootstrap from.
func (ctx GenesisContext) Validate() error {
	if ctx.ChainID == 0 {
		return fmt.Errorf("%w: chain id 0 is reserved", ErrGenesisInit)
	}
	if ctx.Sequencer.Empty() {
		return fmt.Errorf("%w: sequencer address is empty", ErrGenesisInit)
	}
	if ctx.DAO.Empty() {
		return fmt.Errorf("%w: dao address is empty", ErrGenesisInit)
	}
	return nil
}

// Hash returns a stable digest of the context. Two nodes bootstrapping the
// same network from the same context record the same hash, which makes
// configuration mismatches detectable at handshake time.
func (ctx GenesisContext) Hash() common.Hash {
	data := bigendian.Uint64ToBytes(uint64(ctx.ChainID))
	data = append(data, ctx.Sequencer.Bytes()...)
	data = append(data, ctx.DAO.Bytes()...)
	return crypto.Keccak256Hash(data)
}

// State bundles the live handles produced by a successful bootstrap. The
// launcher keeps it as the root object of the running node.
type State struct {
	Rules      ledger.Rules
	Store      *ledgerstore.Store
	Authority  ledgerstore.Authority
	Accounts   *account.Registry
	Bank       *coin.Bank
	Mapping    *addrmapping.Store
	Validators *authvalidator.Registry
	Upgrades   *upgrade.Caps

	// SequencerAccount and DAOAccount are the canonical accounts derived
	// from the context's Bitcoin addresses.
	SequencerAccount inter.Address
	DAOAccount       inter.Address
}

// ApplyGenesis bootstraps a ledger into the database. It is atomic: on any
// error the buffered writes are dropped and the database is left exactly as
// it was; on success everything is committed in one flush.
//
// A database that already carries a chain-info record refuses a second
// genesis.
func ApplyGenesis(db kvdb.DropableStore, ctx GenesisContext) (*State, error) {
	if err := ctx.Validate(); err != nil {
		return nil, err
	}
	rules, err := ledger.RulesByChainID(ctx.ChainID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenesisInit, err)
	}

	store, auth := ledgerstore.New(db)
	state, err := applyGenesis(store, auth, rules, ctx)
	if err != nil {
		store.Abort()
		return nil, err
	}
	if err := store.Commit(); err != nil {
		store.Abort()
		return nil, fmt.Errorf("%w: commit: %v", ErrGenesisInit, err)
	}

	log.WithFields(logrus.Fields{
		"network":   rules.Name,
		"chain_id":  uint64(ctx.ChainID),
		"sequencer": ctx.Sequencer.String(),
		"dao":       ctx.DAO.String(),
		"hash":      ctx.Hash().Hex(),
	}).Info("genesis applied")
	return state, nil
}

// MustApplyGenesis is ApplyGenesis for call sites where a bootstrap failure
// is unrecoverable (tests, fake-network launchers).
func MustApplyGenesis(db kvdb.DropableStore, ctx GenesisContext) *State {
	state, err := ApplyGenesis(db, ctx)
	if err != nil {
		log.WithError(err).Fatal("genesis failed")
	}
	return state
}

func applyGenesis(store *ledgerstore.Store, auth ledgerstore.Authority, rules ledger.Rules, ctx GenesisContext) (*State, error) {
	fail := func(stage string, err error) error {
		return fmt.Errorf("%w: %s: %v", ErrGenesisInit, stage, err)
	}

	// A chain-info record marks the database as bootstrapped; a second
	// genesis on the same database is refused up front.
	if _, err := store.GetSingleton(chainInfoTypeID); err == nil {
		return nil, fmt.Errorf("%w: database already carries a genesis", ErrGenesisInit)
	} else if !errors.Is(err, ledgerstore.ErrNotFound) {
		return nil, fail("chain info", err)
	}

	// System accounts, in reserved-address order.
	accounts, err := account.Init(store, auth)
	if err != nil {
		return nil, fail("accounts", err)
	}
	for _, addr := range sysaddr.All() {
		if err := accounts.CreateSystem(addr); err != nil {
			return nil, fail("system accounts", err)
		}
	}

	// The chain identifier is recorded once and never changes.
	info, _, err := store.Singleton(auth, chainInfoTypeID, sysaddr.Framework)
	if err != nil {
		return nil, fail("chain info", err)
	}
	if err := info.PutField(keyChainID, bigendian.Uint64ToBytes(uint64(ctx.ChainID))); err != nil {
		return nil, fail("chain info", err)
	}

	// Builtin auth validators. Registration order fixes the ids every
	// signed transaction refers to, so the outcome is asserted.
	validators, err := authvalidator.Init(store, auth)
	if err != nil {
		return nil, fail("auth validators", err)
	}
	ids, err := validators.RegisterBuiltins()
	if err != nil {
		return nil, fail("auth validators", err)
	}
	for want, got := range ids {
		if uint64(want) != got {
			return nil, fmt.Errorf("%w: builtin validator %s got id %d, want %d",
				ErrGenesisInit, authvalidator.Builtins()[want], got, want)
		}
	}

	// Gas coin.
	bank, err := coin.Init(store, auth)
	if err != nil {
		return nil, fail("coin", err)
	}
	if err := bank.RegisterGasCoin(); err != nil {
		return nil, fail("coin", err)
	}

	// Address mapping tables.
	mapping, err := addrmapping.Init(store, auth)
	if err != nil {
		return nil, fail("address mapping", err)
	}

	// Sequencer: derive the canonical account, create it if needed, and
	// seed the reverse binding so resolve_bitcoin works from block one.
	seqAccount := ctx.Sequencer.CanonicalAccount()
	if _, err := accounts.CreateIfAbsent(seqAccount); err != nil {
		return nil, fail("sequencer account", err)
	}
	if err := mapping.SeedBitcoinBinding(auth, ctx.Sequencer); err != nil {
		return nil, fail("sequencer binding", err)
	}

	// DAO: the account must be fresh. An occupied address here means the
	// context is inconsistent (e.g. DAO and sequencer share an address),
	// which is fatal rather than recoverable.
	daoAccount := ctx.DAO.CanonicalAccount()
	if err := accounts.Create(daoAccount); err != nil {
		return nil, fail("dao account", err)
	}
	if err := mapping.SeedBitcoinBinding(auth, ctx.DAO); err != nil {
		return nil, fail("dao binding", err)
	}

	// Upgrade authority over every system account goes to the DAO.
	upgrades, err := upgrade.Init(store, auth)
	if err != nil {
		return nil, fail("upgrade caps", err)
	}
	for _, owner := range sysaddr.All() {
		if err := upgrades.Issue(auth, store, owner, daoAccount); err != nil {
			return nil, fail("upgrade caps", err)
		}
	}

	// Initial funding: the DAO always, the sequencer per network rules.
	if err := bank.Faucet(daoAccount, rules.GasAllocation); err != nil {
		return nil, fail("dao funding", err)
	}
	if rules.FundSequencer {
		if err := bank.Faucet(seqAccount, rules.GasAllocation); err != nil {
			return nil, fail("sequencer funding", err)
		}
	} else {
		log.WithField("network", rules.Name).Info("sequencer left unfunded per network rules")
	}

	// Both genesis roles authenticate with Bitcoin signatures.
	if err := validators.InstallAuthValidator(seqAccount, authvalidator.Bitcoin); err != nil {
		return nil, fail("sequencer validator", err)
	}
	if err := validators.InstallAuthValidator(daoAccount, authvalidator.Bitcoin); err != nil {
		return nil, fail("dao validator", err)
	}

	// Finalize chain info.
	if err := info.PutField(keySequencer, seqAccount.Bytes()); err != nil {
		return nil, fail("chain info", err)
	}
	if err := info.PutField(keyDAO, daoAccount.Bytes()); err != nil {
		return nil, fail("chain info", err)
	}
	if err := info.PutField(keyGenesisHash, ctx.Hash().Bytes()); err != nil {
		return nil, fail("chain info", err)
	}

	return &State{
		Rules:            rules,
		Store:            store,
		Authority:        auth,
		Accounts:         accounts,
		Bank:             bank,
		Mapping:          mapping,
		Validators:       validators,
		Upgrades:         upgrades,
		SequencerAccount: seqAccount,
		DAOAccount:       daoAccount,
	}, nil
}

// ChainInfo reports the recorded genesis facts of a bootstrapped database.
type ChainInfo struct {
	ChainID          ledger.ChainID
	SequencerAccount inter.Address
	DAOAccount       inter.Address
	GenesisHash      common.Hash
}

// ReadChainInfo loads the chain-info record from an already bootstrapped
// store. It returns ledgerstore.ErrNotFound for a fresh database.
func ReadChainInfo(store *ledgerstore.Store) (ChainInfo, error) {
	obj, err := store.GetSingleton(chainInfoTypeID)
	if err != nil {
		return ChainInfo{}, err
	}
	var out ChainInfo

	raw, err := obj.Field(keyChainID)
	if err != nil {
		return ChainInfo{}, err
	}
	if len(raw) != 8 {
		return ChainInfo{}, fmt.Errorf("corrupted chain id record")
	}
	out.ChainID = ledger.ChainID(bigendian.BytesToUint64(raw))

	if raw, err = obj.Field(keySequencer); err != nil {
		return ChainInfo{}, err
	}
	if out.SequencerAccount, err = inter.BytesToAddress(raw); err != nil {
		return ChainInfo{}, err
	}
	if raw, err = obj.Field(keyDAO); err != nil {
		return ChainInfo{}, err
	}
	if out.DAOAccount, err = inter.BytesToAddress(raw); err != nil {
		return ChainInfo{}, err
	}
	if raw, err = obj.Field(keyGenesisHash); err != nil {
		return ChainInfo{}, err
	}
	out.GenesisHash = common.BytesToHash(raw)
	return out, nil
}
