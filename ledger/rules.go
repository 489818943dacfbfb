// Package ledger defines the network-level configuration for the Anchor
// ledger: the chain identifier registry and the per-network rules that the
// genesis bootstrap consumes (funding policy, initial gas allocation).
//
// The Rules type is the central configuration structure; each builtin
// network has a constructor (MainNetRules, TestNetRules, DevNetRules,
// LocalNetRules) mirroring how operators select a deployment.

package ledger

import (
	"encoding/json"
	"fmt"
	"math/big"
	"strings"
)

// ChainID identifies a ledger network. Builtin ids occupy the low range;
// anything above LocalChainID is a custom deployment.
type ChainID uint64

// Builtin chain identifiers.
const (
	// MainChainID is the production network.
	MainChainID ChainID = 1
	// TestChainID is the public test network.
	TestChainID ChainID = 2
	// DevChainID is the shared development network.
	DevChainID ChainID = 3
	// LocalChainID is a throwaway single-node network; its state lives in
	// ephemeral storage and is cleared between runs.
	LocalChainID ChainID = 4
)

// InitialGasAllocationUnits is the genesis gas-coin allocation granted to
// the DAO (and, outside the production network, to the sequencer):
// 100,000,000 whole coins at 8 decimals.
const InitialGasAllocationUnits uint64 = 100000000_00000000

// InitialGasAllocation returns the genesis allocation as a fresh big.Int so
// callers can never mutate shared state.
func InitialGasAllocation() *big.Int {
	return new(big.Int).SetUint64(InitialGasAllocationUnits)
}

// IsMain reports whether the id denotes the production network.
func (id ChainID) IsMain() bool {
	return id == MainChainID
}

// IsBuiltin reports whether the id is one of the four builtin networks.
func (id ChainID) IsBuiltin() bool {
	return id >= MainChainID && id <= LocalChainID
}

// Name returns the canonical lowercase network name. Custom ids render as
// "custom-<id>".
func (id ChainID) Name() string {
	switch id {
	case MainChainID:
		return "main"
	case TestChainID:
		return "test"
	case DevChainID:
		return "dev"
	case LocalChainID:
		return "local"
	default:
		return fmt.Sprintf("custom-%d", uint64(id))
	}
}

// ChainIDByName maps a builtin network name back to its id.
func ChainIDByName(name string) (ChainID, error) {
	switch strings.ToLower(name) {
	case "main":
		return MainChainID, nil
	case "test":
		return TestChainID, nil
	case "dev":
		return DevChainID, nil
	case "local":
		return LocalChainID, nil
	default:
		return 0, fmt.Errorf("unknown chain name: %q (valid: main, test, dev, local)", name)
	}
}

// Rules describes the configuration of an Anchor network deployment.
type Rules struct {
	// Name is the human-readable network identifier (e.g. "main", "local").
	Name string
	// ChainID is the unique numeric identifier recorded immutably at
	// genesis; it prevents cross-network replay.
	ChainID ChainID
	// GasAllocation is the initial gas-coin grant paid out at genesis.
	GasAllocation *big.Int
	// FundSequencer controls whether the sequencer account receives the
	// initial allocation. Disabled on the production network, where the
	// sequencer is expected to be funded by the DAO out of band.
	FundSequencer bool
}

// MainNetRules returns the production network configuration. The sequencer
// is deliberately left unfunded at genesis.
func MainNetRules() Rules {
	return Rules{
		Name:          "main",
		ChainID:       MainChainID,
		GasAllocation: InitialGasAllocation(),
		FundSequencer: false,
	}
}

// TestNetRules returns the public test network configuration.
func TestNetRules() Rules {
	return Rules{
		Name:          "test",
		ChainID:       TestChainID,
		GasAllocation: InitialGasAllocation(),
		FundSequencer: true,
	}
}

// DevNetRules returns the shared development network configuration.
func DevNetRules() Rules {
	return Rules{
		Name:          "dev",
		ChainID:       DevChainID,
		GasAllocation: InitialGasAllocation(),
		FundSequencer: true,
	}
}

// LocalNetRules returns the throwaway local network configuration.
func LocalNetRules() Rules {
	return Rules{
		Name:          "local",
		ChainID:       LocalChainID,
		GasAllocation: InitialGasAllocation(),
		FundSequencer: true,
	}
}

// RulesByChainID returns the rules for any chain id. Builtin ids map to
// their named constructors; custom ids behave like a local deployment under
// their own identifier.
func RulesByChainID(id ChainID) (Rules, error) {
	if id == 0 {
		return Rules{}, fmt.Errorf("chain id 0 is reserved")
	}
	switch id {
	case MainChainID:
		return MainNetRules(), nil
	case TestChainID:
		return TestNetRules(), nil
	case DevChainID:
		return DevNetRules(), nil
	case LocalChainID:
		return LocalNetRules(), nil
	default:
		return Rules{
			Name:          id.Name(),
			ChainID:       id,
			GasAllocation: InitialGasAllocation(),
			FundSequencer: true,
		}, nil
	}
}

// Copy creates a deep copy of Rules. GasAllocation is a *big.Int, so a
// shallow copy would share mutable state.
func (r Rules) Copy() Rules {
	cp := r
	cp.GasAllocation = new(big.Int).Set(r.GasAllocation)
	return cp
}

// String returns a JSON representation of Rules for debugging and logging.
func (r Rules) String() string {
	b, _ := json.Marshal(&r)
	return string(b)
}
