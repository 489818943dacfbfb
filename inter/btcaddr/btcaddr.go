// Package btcaddr provides the ledger-side representation of Bitcoin
// addresses. It decouples the script type from the raw payload bytes so the
// rest of the ledger can store and compare addresses in a fixed,
// network-agnostic byte format, while the text boundary still speaks the
// native Bitcoin encodings (base58check, bech32, bech32m).
//
// The package also defines the canonical account derivation: the one-way,
// deterministic hash that turns a Bitcoin address into a ledger account
// address. Every call site must derive accounts through CanonicalAccount so
// that the same Bitcoin address always lands on the same account.

package btcaddr

import (
	"bytes"
	"crypto/rand"
	"errors"
	"fmt"
	mrand "math/rand"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/crypto/blake2b"

	"github.com/rony4d/go-anchor-ledger/inter"
)

// ErrInvalidAddressFormat is returned when address text or bytes do not
// decode as any supported Bitcoin address encoding.
var ErrInvalidAddressFormat = errors.New("invalid bitcoin address format")

// PayloadType discriminates the script kind carried in an Address payload.
type PayloadType uint8

const (
	// PubkeyHash is a legacy pay-to-pubkey-hash address ("1..." on mainnet).
	// The payload is the 20-byte HASH160 of the public key.
	PubkeyHash PayloadType = iota

	// ScriptHash is a pay-to-script-hash address ("3..." on mainnet).
	// The payload is the 20-byte HASH160 of the redeem script.
	ScriptHash

	// WitnessProgram covers every segwit output: v0 p2wpkh/p2wsh ("bc1q...")
	// and v1 taproot ("bc1p..."). The payload is the witness version byte
	// followed by the witness program.
	WitnessProgram
)

// Witness program length bounds per BIP141.
const (
	minWitnessProgramLen = 2
	maxWitnessProgramLen = 40
)

// decodeNets is the parse order for network detection. The stored payload is
// network-agnostic, so parsing only needs some registered set of params whose
// prefixes match the input text.
var decodeNets = []*chaincfg.Params{
	&chaincfg.MainNetParams,
	&chaincfg.TestNet3Params,
	&chaincfg.RegressionNetParams,
	&chaincfg.SimNetParams,
}

// Address is the fixed-format representation of a Bitcoin address.
//
// The zero value is the empty sentinel: it is distinct from every parseable
// address and is used by batch APIs to mark absent results. Callers must
// test Empty(), never compare against a default-valued struct field by
// field.
type Address struct {
	// Type identifies the script kind of the payload.
	Type PayloadType
	// Payload contains the script-type-specific bytes (see PayloadType).
	Payload []byte
}

// Parse decodes a Bitcoin address from its native text encoding.
// Legacy base58check, script-hash, bech32 (v0) and bech32m (v1/taproot)
// forms are recognized across mainnet, testnet3, regtest and simnet
// parameters. It returns ErrInvalidAddressFormat when no encoding matches.
func Parse(text string) (Address, error) {
	for _, net := range decodeNets {
		decoded, err := btcutil.DecodeAddress(text, net)
		if err != nil {
			continue
		}
		addr, err := fromDecoded(decoded)
		if err != nil {
			return Address{}, err
		}
		return addr, nil
	}
	return Address{}, fmt.Errorf("%w: %q", ErrInvalidAddressFormat, text)
}

// fromDecoded converts a btcutil address into the ledger representation.
func fromDecoded(decoded btcutil.Address) (Address, error) {
	switch a := decoded.(type) {
	case *btcutil.AddressPubKeyHash:
		return Address{Type: PubkeyHash, Payload: common.CopyBytes(a.Hash160()[:])}, nil
	case *btcutil.AddressScriptHash:
		return Address{Type: ScriptHash, Payload: common.CopyBytes(a.Hash160()[:])}, nil
	case *btcutil.AddressWitnessPubKeyHash:
		return newWitness(a.WitnessVersion(), a.WitnessProgram())
	case *btcutil.AddressWitnessScriptHash:
		return newWitness(a.WitnessVersion(), a.WitnessProgram())
	case *btcutil.AddressTaproot:
		return newWitness(a.WitnessVersion(), a.WitnessProgram())
	default:
		return Address{}, fmt.Errorf("%w: unsupported script type %T", ErrInvalidAddressFormat, decoded)
	}
}

func newWitness(version byte, program []byte) (Address, error) {
	if len(program) < minWitnessProgramLen || len(program) > maxWitnessProgramLen {
		return Address{}, fmt.Errorf("%w: witness program length %d", ErrInvalidAddressFormat, len(program))
	}
	payload := make([]byte, 0, 1+len(program))
	payload = append(payload, version)
	payload = append(payload, program...)
	return Address{Type: WitnessProgram, Payload: payload}, nil
}

// NewPubkeyHash builds a legacy p2pkh address from a 20-byte pubkey hash.
func NewPubkeyHash(hash160 []byte) (Address, error) {
	if len(hash160) != 20 {
		return Address{}, fmt.Errorf("%w: pubkey hash length %d", ErrInvalidAddressFormat, len(hash160))
	}
	return Address{Type: PubkeyHash, Payload: common.CopyBytes(hash160)}, nil
}

// NewScriptHash builds a p2sh address from a 20-byte script hash.
func NewScriptHash(hash160 []byte) (Address, error) {
	if len(hash160) != 20 {
		return Address{}, fmt.Errorf("%w: script hash length %d", ErrInvalidAddressFormat, len(hash160))
	}
	return Address{Type: ScriptHash, Payload: common.CopyBytes(hash160)}, nil
}

// NewWitnessProgram builds a segwit address from a witness version and
// program.
func NewWitnessProgram(version byte, program []byte) (Address, error) {
	return newWitness(version, common.CopyBytes(program))
}

// Empty reports whether the address is the absent sentinel.
func (a Address) Empty() bool {
	return len(a.Payload) == 0
}

// Bytes returns the flat byte representation: [Type byte] + [Payload...].
// This is the form persisted in the mapping store and hashed by
// CanonicalAccount.
func (a Address) Bytes() []byte {
	return append([]byte{byte(a.Type)}, a.Payload...)
}

// FromBytes reconstructs an Address from its flat byte representation and
// validates the payload against the declared script type.
func FromBytes(b []byte) (Address, error) {
	if len(b) < 2 {
		return Address{}, fmt.Errorf("%w: %d bytes", ErrInvalidAddressFormat, len(b))
	}
	payload := common.CopyBytes(b[1:])
	switch PayloadType(b[0]) {
	case PubkeyHash:
		return NewPubkeyHash(payload)
	case ScriptHash:
		return NewScriptHash(payload)
	case WitnessProgram:
		return newWitness(payload[0], payload[1:])
	default:
		return Address{}, fmt.Errorf("%w: unknown payload type %d", ErrInvalidAddressFormat, b[0])
	}
}

// Equal reports whether two addresses carry the same script type and payload.
func (a Address) Equal(other Address) bool {
	return a.Type == other.Type && bytes.Equal(a.Payload, other.Payload)
}

// Copy creates a deep copy of the Address. Payload is a slice, so a plain
// assignment would share the underlying memory.
func (a Address) Copy() Address {
	return Address{Type: a.Type, Payload: common.CopyBytes(a.Payload)}
}

// EncodeForNet renders the address in its native text encoding for the given
// network parameters.
func (a Address) EncodeForNet(net *chaincfg.Params) (string, error) {
	if a.Empty() {
		return "", fmt.Errorf("%w: empty address", ErrInvalidAddressFormat)
	}
	var (
		decoded btcutil.Address
		err     error
	)
	switch a.Type {
	case PubkeyHash:
		decoded, err = btcutil.NewAddressPubKeyHash(a.Payload, net)
	case ScriptHash:
		decoded, err = btcutil.NewAddressScriptHashFromHash(a.Payload, net)
	case WitnessProgram:
		version, program := a.Payload[0], a.Payload[1:]
		switch {
		case version == 0 && len(program) == 20:
			decoded, err = btcutil.NewAddressWitnessPubKeyHash(program, net)
		case version == 0 && len(program) == 32:
			decoded, err = btcutil.NewAddressWitnessScriptHash(program, net)
		case version == 1 && len(program) == 32:
			decoded, err = btcutil.NewAddressTaproot(program, net)
		default:
			return "", fmt.Errorf("%w: witness v%d program length %d", ErrInvalidAddressFormat, version, len(program))
		}
	default:
		return "", fmt.Errorf("%w: unknown payload type %d", ErrInvalidAddressFormat, a.Type)
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidAddressFormat, err)
	}
	return decoded.EncodeAddress(), nil
}

// String renders the address with mainnet parameters. The empty sentinel
// renders as "".
func (a Address) String() string {
	if a.Empty() {
		return ""
	}
	s, err := a.EncodeForNet(&chaincfg.MainNetParams)
	if err != nil {
		// Unencodable payloads can only come from corrupted storage;
		// fall back to the hex form so logs stay usable.
		return "0x" + common.Bytes2Hex(a.Bytes())
	}
	return s
}

// CanonicalAccount derives the canonical ledger account for this Bitcoin
// address: blake2b-256 over the flat byte representation. The derivation is
// pure and deterministic, so resolution of Bitcoin addresses never needs a
// table lookup, and distinct addresses practically never collide.
func (a Address) CanonicalAccount() inter.Address {
	return inter.Address(blake2b.Sum256(a.Bytes()))
}

// MarshalText implements encoding.TextMarshaler using the mainnet text form.
func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Address) UnmarshalText(input []byte) error {
	if len(input) == 0 {
		*a = Address{}
		return nil
	}
	res, err := Parse(string(input))
	if err != nil {
		return err
	}
	*a = res
	return nil
}

// Random generates a random p2wpkh address. It is intended for tests and
// local genesis presets.
func Random() Address {
	program := make([]byte, 20)
	_, _ = rand.Read(program)
	a, _ := NewWitnessProgram(0, program)
	return a
}

// RandomFrom generates a deterministic pseudo-random p2wpkh address from a
// seed. The same seed always yields the same address, which keeps test
// scenarios and fake-network genesis reproducible.
func RandomFrom(seed int64) Address {
	rng := mrand.New(mrand.NewSource(seed))
	program := make([]byte, 20)
	_, _ = rng.Read(program)
	a, _ := NewWitnessProgram(0, program)
	return a
}
