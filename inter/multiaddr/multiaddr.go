// Package multiaddr defines the tagged multi-chain address union: a single
// value that can carry a native ledger address, a Bitcoin address, or an
// address of any other registered external chain. Chain tags follow the
// slip-0044 coin-type registry so foreign identifiers stay stable across
// tooling.
//
// The union is opaque to its holders: raw bytes are validated against the
// declared chain tag at construction time, and extraction is only possible
// through the typed IntoNative/IntoBitcoin accessors.

package multiaddr

import (
	"errors"
	"fmt"

	"github.com/Fantom-foundation/lachesis-base/common/bigendian"
	"github.com/ethereum/go-ethereum/common"

	"github.com/rony4d/go-anchor-ledger/inter"
	"github.com/rony4d/go-anchor-ledger/inter/btcaddr"
)

// slip-0044 coin types for the chains the ledger knows about.
const (
	// BitcoinChain is the slip-0044 coin type of Bitcoin.
	BitcoinChain uint64 = 0
	// EtherChain is the slip-0044 coin type of Ethereum.
	EtherChain uint64 = 60
	// NostrChain is the slip-0044 coin type of Nostr.
	NostrChain uint64 = 1237
	// NativeChain tags addresses native to this ledger. The value is a
	// placeholder outside the assigned slip-0044 range.
	NativeChain uint64 = 20230101
)

// ErrUnsupportedAddressKind is returned on a tag mismatch: extracting a
// native address from a Bitcoin-tagged value, constructing a value whose raw
// bytes are invalid for the declared chain, and so on.
var ErrUnsupportedAddressKind = errors.New("unsupported address kind")

// Kind classifies a multi-chain address by how the ledger resolves it.
type Kind int

const (
	// KindNative addresses resolve to themselves.
	KindNative Kind = iota
	// KindBitcoin addresses resolve by canonical derivation, no lookup.
	KindBitcoin
	// KindForeign addresses resolve through the forward mapping table.
	KindForeign
)

// Address is a tagged multi-chain address. The zero value is empty and
// invalid; construct through NewNative, NewBitcoin or New.
type Address struct {
	chainID uint64
	raw     []byte
}

// NewNative wraps a canonical ledger address.
func NewNative(a inter.Address) Address {
	return Address{chainID: NativeChain, raw: a.Bytes()}
}

// NewBitcoin wraps a Bitcoin address. The empty sentinel is rejected: an
// absent address has no multi-chain identity.
func NewBitcoin(b btcaddr.Address) (Address, error) {
	if b.Empty() {
		return Address{}, fmt.Errorf("%w: empty bitcoin address", ErrUnsupportedAddressKind)
	}
	return Address{chainID: BitcoinChain, raw: b.Bytes()}, nil
}

// New constructs a multi-chain address from a chain tag and raw bytes,
// validating the bytes against the tag. Known chains enforce their native
// byte formats; unregistered chains only require a non-empty payload.
func New(chainID uint64, raw []byte) (Address, error) {
	switch chainID {
	case NativeChain:
		a, err := inter.BytesToAddress(raw)
		if err != nil {
			return Address{}, fmt.Errorf("%w: %v", ErrUnsupportedAddressKind, err)
		}
		return NewNative(a), nil
	case BitcoinChain:
		b, err := btcaddr.FromBytes(raw)
		if err != nil {
			return Address{}, fmt.Errorf("%w: %v", ErrUnsupportedAddressKind, err)
		}
		return NewBitcoin(b)
	default:
		if len(raw) == 0 {
			return Address{}, fmt.Errorf("%w: empty payload for chain %d", ErrUnsupportedAddressKind, chainID)
		}
		return Address{chainID: chainID, raw: common.CopyBytes(raw)}, nil
	}
}

// ChainID returns the chain tag.
func (a Address) ChainID() uint64 {
	return a.chainID
}

// Raw returns a copy of the raw address bytes.
func (a Address) Raw() []byte {
	return common.CopyBytes(a.raw)
}

// Empty reports whether the value is the zero value.
func (a Address) Empty() bool {
	return len(a.raw) == 0
}

// Kind classifies the address for resolution.
func (a Address) Kind() Kind {
	switch a.chainID {
	case NativeChain:
		return KindNative
	case BitcoinChain:
		return KindBitcoin
	default:
		return KindForeign
	}
}

// IntoNative extracts the inner canonical ledger address. It fails with
// ErrUnsupportedAddressKind if the tag is not native.
func (a Address) IntoNative() (inter.Address, error) {
	if a.chainID != NativeChain {
		return inter.Address{}, fmt.Errorf("%w: chain %d is not native", ErrUnsupportedAddressKind, a.chainID)
	}
	return inter.BytesToAddress(a.raw)
}

// IntoBitcoin extracts the inner Bitcoin address. It fails with
// ErrUnsupportedAddressKind if the tag is not Bitcoin.
func (a Address) IntoBitcoin() (btcaddr.Address, error) {
	if a.chainID != BitcoinChain {
		return btcaddr.Address{}, fmt.Errorf("%w: chain %d is not bitcoin", ErrUnsupportedAddressKind, a.chainID)
	}
	return btcaddr.FromBytes(a.raw)
}

// Bytes returns the stable byte encoding used as the forward-table key:
// big-endian chain tag followed by the raw address bytes.
func (a Address) Bytes() []byte {
	return append(bigendian.Uint64ToBytes(a.chainID), a.raw...)
}

// FromBytes decodes the Bytes form back into a validated Address.
func FromBytes(b []byte) (Address, error) {
	if len(b) < 8 {
		return Address{}, fmt.Errorf("%w: %d bytes", ErrUnsupportedAddressKind, len(b))
	}
	return New(bigendian.BytesToUint64(b[:8]), b[8:])
}

// String renders the address as "<chain-id>:0x<raw-hex>".
func (a Address) String() string {
	return fmt.Sprintf("%d:0x%s", a.chainID, common.Bytes2Hex(a.raw))
}
