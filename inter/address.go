// Package inter defines the core value types shared by every layer of the
// ledger: the canonical 32-byte account address together with its byte and
// hex-text encodings. Higher-level packages (address mapping, genesis,
// accounts, coins) all speak in terms of these types, so the package has no
// dependencies beyond hex helpers.

package inter

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// AddressLength is the fixed width (in bytes) of a canonical ledger address.
// Canonical addresses are derived by hashing external-chain addresses, so the
// width matches the 256-bit output of the derivation hash.
const AddressLength = 32

// Address is a canonical ledger account address.
//
// It is either one of the reserved low system addresses (see ledger/sysaddr)
// or the deterministic hash of an external-chain address (see
// inter/btcaddr.Address.CanonicalAccount). The zero value is the empty
// address and is never a valid account.
type Address [AddressLength]byte

// BytesToAddress converts a byte slice into an Address.
// It fails if the slice is not exactly AddressLength bytes; canonical
// addresses are fixed-width and truncation/padding would silently alias
// distinct accounts.
func BytesToAddress(b []byte) (Address, error) {
	var a Address
	if len(b) != AddressLength {
		return a, fmt.Errorf("invalid address length: %d, want %d", len(b), AddressLength)
	}
	copy(a[:], b)
	return a, nil
}

// HexToAddress parses a hex string (with or without "0x" prefix) into an
// Address. The string must encode exactly AddressLength bytes.
func HexToAddress(s string) (Address, error) {
	return BytesToAddress(common.FromHex(s))
}

// ReservedAddress returns the n-th system-reserved address. Reserved
// addresses occupy the low end of the address space (last byte = n, all
// other bytes zero) and are pre-allocated at genesis for core framework
// modules.
func ReservedAddress(n uint8) Address {
	var a Address
	a[AddressLength-1] = n
	return a
}

// Bytes returns the address as a fresh byte slice.
func (a Address) Bytes() []byte {
	return a[:]
}

// Hex returns the "0x"-prefixed hex representation of the address.
func (a Address) Hex() string {
	return hexutil.Encode(a[:])
}

// String implements fmt.Stringer; it is the same as Hex.
func (a Address) String() string {
	return a.Hex()
}

// Empty reports whether the address is the zero value.
func (a Address) Empty() bool {
	return a == Address{}
}

// MarshalText implements encoding.TextMarshaler, so the address is encoded
// as a hex string in JSON and text-based formats.
func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.Hex()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Address) UnmarshalText(input []byte) error {
	res, err := HexToAddress(string(input))
	if err != nil {
		return err
	}
	*a = res
	return nil
}
