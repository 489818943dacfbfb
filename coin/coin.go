// Package coin implements the minimal coin subsystem genesis depends on:
// registering the native gas coin and minting/querying balances. There is no
// general multi-asset model here; the ledger carries exactly one coin type
// at bootstrap and the package only tracks per-account balances and total
// supply for it.

package coin

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/rony4d/go-anchor-ledger/inter"
	"github.com/rony4d/go-anchor-ledger/ledger/sysaddr"
	"github.com/rony4d/go-anchor-ledger/ledgerstore"
)

// Native gas coin metadata.
const (
	// GasCoinType is the stable type descriptor of the native gas coin.
	GasCoinType = "anchor.gas"
	// GasCoinSymbol is the display symbol.
	GasCoinSymbol = "AGC"
	// GasCoinDecimals is the number of decimal places (Bitcoin-style).
	GasCoinDecimals = 8
)

// ErrCoinNotRegistered is returned when minting before the gas coin type
// has been registered.
var ErrCoinNotRegistered = errors.New("gas coin type not registered")

// ErrInvalidAmount is returned for nil or negative mint amounts.
var ErrInvalidAmount = errors.New("invalid coin amount")

const bankTypeID = "anchor.coin"

// Field key prefixes inside the bank singleton.
var (
	keyGasCoinInfo = []byte("info:" + GasCoinType)
	keySupply      = []byte("supply:" + GasCoinType)
	balancePrefix  = []byte("bal:")
)

// Bank is the ledger-global coin singleton.
type Bank struct {
	obj *ledgerstore.Object
}

// Init creates (or reopens) the coin singleton. Privileged.
func Init(s *ledgerstore.Store, auth ledgerstore.Authority) (*Bank, error) {
	obj, _, err := s.Singleton(auth, bankTypeID, sysaddr.Framework)
	if err != nil {
		return nil, err
	}
	return &Bank{obj: obj}, nil
}

// Open returns a handle to the existing coin singleton.
func Open(s *ledgerstore.Store) (*Bank, error) {
	obj, err := s.GetSingleton(bankTypeID)
	if err != nil {
		return nil, err
	}
	return &Bank{obj: obj}, nil
}

// RegisterGasCoin registers the native gas coin type. Idempotent: repeated
// registration leaves the recorded metadata untouched.
func (b *Bank) RegisterGasCoin() error {
	ok, err := b.obj.HasField(keyGasCoinInfo)
	if err != nil || ok {
		return err
	}
	info := append([]byte{GasCoinDecimals}, []byte(GasCoinSymbol)...)
	return b.obj.PutField(keyGasCoinInfo, info)
}

// GasCoinRegistered reports whether the native gas coin type exists.
func (b *Bank) GasCoinRegistered() (bool, error) {
	return b.obj.HasField(keyGasCoinInfo)
}

// Mint creates amount new gas coins on the address and grows the total
// supply accordingly.
func (b *Bank) Mint(addr inter.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return ErrInvalidAmount
	}
	registered, err := b.GasCoinRegistered()
	if err != nil {
		return err
	}
	if !registered {
		return ErrCoinNotRegistered
	}

	balance, err := b.Balance(addr)
	if err != nil {
		return err
	}
	balance.Add(balance, amount)
	if err := b.obj.PutField(balanceKey(addr), balance.Bytes()); err != nil {
		return err
	}

	supply, err := b.TotalSupply()
	if err != nil {
		return err
	}
	supply.Add(supply, amount)
	return b.obj.PutField(keySupply, supply.Bytes())
}

// Faucet grants amount gas coins to the address. It is the genesis funding
// entry point; semantics are identical to Mint.
func (b *Bank) Faucet(addr inter.Address, amount *big.Int) error {
	return b.Mint(addr, amount)
}

// Balance returns the gas coin balance of the address. Accounts that never
// received coins have a zero balance.
func (b *Bank) Balance(addr inter.Address) (*big.Int, error) {
	raw, err := b.obj.Field(balanceKey(addr))
	if err != nil {
		return nil, err
	}
	return new(big.Int).SetBytes(raw), nil
}

// TotalSupply returns the total minted gas coin supply.
func (b *Bank) TotalSupply() (*big.Int, error) {
	raw, err := b.obj.Field(keySupply)
	if err != nil {
		return nil, err
	}
	return new(big.Int).SetBytes(raw), nil
}

func balanceKey(addr inter.Address) []byte {
	return append(balancePrefix, addr.Bytes()...)
}

// FormatAmount renders an amount in whole-coin units for logs, e.g.
// "100000000.00000000 AGC".
func FormatAmount(amount *big.Int) string {
	q, r := new(big.Int).QuoRem(amount, big.NewInt(1e8), new(big.Int))
	return fmt.Sprintf("%s.%08d %s", q.String(), r.Uint64(), GasCoinSymbol)
}
