package genesis

import (
	"fmt"

	"golang.org/x/crypto/blake2b"

	"github.com/rony4d/go-anchor-ledger/inter/btcaddr"
	"github.com/rony4d/go-anchor-ledger/ledger"
)

// presetAddress derives a deterministic p2wpkh address from a role tag.
// Presets must be identical on every node of a network, so the payload is a
// pure function of the network name and role rather than anything random.
func presetAddress(network, role string) btcaddr.Address {
	sum := blake2b.Sum256([]byte("anchor.genesis:" + network + ":" + role))
	a, _ := btcaddr.NewWitnessProgram(0, sum[:20])
	return a
}

func presetContext(id ledger.ChainID) GenesisContext {
	name := id.Name()
	return GenesisContext{
		ChainID:   id,
		Sequencer: presetAddress(name, "sequencer"),
		DAO:       presetAddress(name, "dao"),
	}
}

// LocalGenesisContext returns the throwaway local network preset.
func LocalGenesisContext() GenesisContext {
	return presetContext(ledger.LocalChainID)
}

// DevGenesisContext returns the shared development network preset.
func DevGenesisContext() GenesisContext {
	return presetContext(ledger.DevChainID)
}

// TestGenesisContext returns the public test network preset.
func TestGenesisContext() GenesisContext {
	return presetContext(ledger.TestChainID)
}

// GenesisContextByName returns the preset context for a builtin network
// name. The production network has no preset: its sequencer and DAO
// addresses must be supplied explicitly by the operator.
func GenesisContextByName(name string) (GenesisContext, error) {
	id, err := ledger.ChainIDByName(name)
	if err != nil {
		return GenesisContext{}, err
	}
	if id.IsMain() {
		return GenesisContext{}, fmt.Errorf("no preset for the main network: pass explicit sequencer and dao addresses")
	}
	return presetContext(id), nil
}
