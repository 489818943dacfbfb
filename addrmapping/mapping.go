// Package addrmapping implements bidirectional identity resolution between
// external-chain addresses and canonical ledger accounts.
//
// Two ledger-global singleton tables exist, both created once at genesis and
// owned by the framework:
//
//   - the forward table maps foreign-chain addresses (anything that is not
//     native or Bitcoin) to canonical accounts;
//   - the reverse table maps canonical accounts to their bound Bitcoin
//     address.
//
// Native addresses resolve to themselves and Bitcoin addresses resolve by
// pure canonical derivation, so neither ever touches a table. A reverse
// binding, once written, is never overwritten: the first binder wins and
// later attempts are silent no-ops. That immutability is what lets the rest
// of the ledger treat a resolved Bitcoin address as the account's permanent
// external identity.
//
// Mutations are privileged. Collaborators that may record bindings
// (account creation, transaction validation, transfers) hold a BinderCap
// issued by the system authority; seeding a binding for an account that has
// never transacted additionally requires the authority itself.

package addrmapping

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/rony4d/go-anchor-ledger/inter"
	"github.com/rony4d/go-anchor-ledger/inter/btcaddr"
	"github.com/rony4d/go-anchor-ledger/inter/multiaddr"
	"github.com/rony4d/go-anchor-ledger/ledger/sysaddr"
	"github.com/rony4d/go-anchor-ledger/ledgerstore"
)

var log = logrus.WithField("module", "addrmapping")

// ErrUnauthorized is returned when a privileged mapping operation is called
// without a valid capability.
var ErrUnauthorized = ledgerstore.ErrUnauthorized

// Stable type ids of the two singleton tables.
const (
	forwardTypeID = "anchor.multichain_address_mapping"
	reverseTypeID = "anchor.native_to_bitcoin_address_mapping"
)

// Store is the address mapping store: a handle over the two singleton
// tables. Resolution methods are pure reads and safe for unrestricted
// concurrent use; mutations are serialized by the surrounding transaction
// execution model.
type Store struct {
	state   *ledgerstore.Store
	forward *ledgerstore.Object
	reverse *ledgerstore.Object
}

// BinderCap authorizes recording bindings. It is issued by IssueBinderCap
// against the system authority; the zero value authorizes nothing.
type BinderCap struct {
	store *Store
}

// Init creates both singleton tables (create-if-absent) and returns the
// mapping store. Privileged: requires the store authority.
func Init(s *ledgerstore.Store, auth ledgerstore.Authority) (*Store, error) {
	forward, createdF, err := s.Singleton(auth, forwardTypeID, sysaddr.Framework)
	if err != nil {
		return nil, err
	}
	reverse, createdR, err := s.Singleton(auth, reverseTypeID, sysaddr.Framework)
	if err != nil {
		return nil, err
	}
	if createdF || createdR {
		log.WithFields(logrus.Fields{
			"forward": forward.ID().Hex(),
			"reverse": reverse.ID().Hex(),
		}).Info("address mapping tables created")
	}
	return &Store{state: s, forward: forward, reverse: reverse}, nil
}

// Open returns a handle over the existing tables without creating them.
func Open(s *ledgerstore.Store) (*Store, error) {
	forward, err := s.GetSingleton(forwardTypeID)
	if err != nil {
		return nil, err
	}
	reverse, err := s.GetSingleton(reverseTypeID)
	if err != nil {
		return nil, err
	}
	return &Store{state: s, forward: forward, reverse: reverse}, nil
}

// IssueBinderCap issues a binding capability. Privileged: only the holder
// of the store authority (the genesis/system layer) can grant it to
// collaborators.
func (s *Store) IssueBinderCap(auth ledgerstore.Authority) (BinderCap, error) {
	if !auth.Permits(s.state) {
		return BinderCap{}, ErrUnauthorized
	}
	return BinderCap{store: s}, nil
}

func (c BinderCap) permits(s *Store) bool {
	return c.store != nil && c.store.state == s.state
}

// Resolve maps a multi-chain address to its canonical ledger account.
//
//   - Native addresses are returned unchanged.
//   - Bitcoin addresses are derived on the fly; no table lookup is needed
//     because the derivation is deterministic.
//   - Foreign addresses are looked up in the forward table; absence is
//     reported by ok == false, never by an error.
func (s *Store) Resolve(addr multiaddr.Address) (inter.Address, bool, error) {
	switch addr.Kind() {
	case multiaddr.KindNative:
		account, err := addr.IntoNative()
		if err != nil {
			return inter.Address{}, false, err
		}
		return account, true, nil
	case multiaddr.KindBitcoin:
		btc, err := addr.IntoBitcoin()
		if err != nil {
			return inter.Address{}, false, err
		}
		return btc.CanonicalAccount(), true, nil
	default:
		raw, err := s.forward.Field(addr.Bytes())
		if err != nil {
			return inter.Address{}, false, err
		}
		if raw == nil {
			return inter.Address{}, false, nil
		}
		account, err := inter.BytesToAddress(raw)
		if err != nil {
			return inter.Address{}, false, fmt.Errorf("corrupted forward mapping for %s: %v", addr, err)
		}
		return account, true, nil
	}
}

// ResolveBitcoin maps a canonical account back to its bound Bitcoin
// address. The derivation is one-way, so only explicitly recorded bindings
// resolve; ok == false means no binding exists.
func (s *Store) ResolveBitcoin(account inter.Address) (btcaddr.Address, bool, error) {
	raw, err := s.reverse.Field(account.Bytes())
	if err != nil {
		return btcaddr.Address{}, false, err
	}
	if raw == nil {
		return btcaddr.Address{}, false, nil
	}
	btc, err := btcaddr.FromBytes(raw)
	if err != nil {
		return btcaddr.Address{}, false, fmt.Errorf("corrupted reverse mapping for %s: %v", account, err)
	}
	return btc, true, nil
}

// ResolveBitcoinBatch resolves many accounts at once. The result has the
// same length and order as the input; unresolved entries are filled with
// the empty sentinel, never omitted. Positional correspondence with the
// request is a hard contract.
func (s *Store) ResolveBitcoinBatch(accounts []inter.Address) ([]btcaddr.Address, error) {
	out := make([]btcaddr.Address, len(accounts))
	for i, account := range accounts {
		btc, ok, err := s.ResolveBitcoin(account)
		if err != nil {
			return nil, err
		}
		if ok {
			out[i] = btc
		}
		// Unresolved slots keep the zero value: the empty sentinel.
	}
	return out, nil
}

// ExistsMapping reports whether the address resolves to some canonical
// account. Native and Bitcoin addresses always resolve; foreign addresses
// resolve iff the forward table has an entry.
func (s *Store) ExistsMapping(addr multiaddr.Address) (bool, error) {
	switch addr.Kind() {
	case multiaddr.KindNative, multiaddr.KindBitcoin:
		return true, nil
	default:
		return s.forward.HasField(addr.Bytes())
	}
}

// BindBitcoinAddress derives the canonical account for the Bitcoin address
// and records the reverse binding account -> btc, only if no binding exists
// yet. First-binder-wins: a later bind attempt for an already-bound account
// is a silent no-op, not an error.
func (s *Store) BindBitcoinAddress(cap BinderCap, btc btcaddr.Address) error {
	if !cap.permits(s) {
		return ErrUnauthorized
	}
	return s.bindBitcoin(btc)
}

// SeedBitcoinBinding records a reverse binding before the target account has
// ever transacted. Privileged: requires the system authority itself; used
// for the sequencer (and DAO) at genesis.
func (s *Store) SeedBitcoinBinding(auth ledgerstore.Authority, btc btcaddr.Address) error {
	if !auth.Permits(s.state) {
		return ErrUnauthorized
	}
	return s.bindBitcoin(btc)
}

func (s *Store) bindBitcoin(btc btcaddr.Address) error {
	if btc.Empty() {
		return fmt.Errorf("%w: cannot bind the empty sentinel", btcaddr.ErrInvalidAddressFormat)
	}
	account := btc.CanonicalAccount()
	bound, err := s.reverse.HasField(account.Bytes())
	if err != nil {
		return err
	}
	if bound {
		// Immutable after first write.
		return nil
	}
	return s.reverse.PutField(account.Bytes(), btc.Bytes())
}

// BindForeign records a forward-table entry foreign address -> canonical
// account. Entries are added, never removed; like the reverse table, the
// first recorded target wins.
func (s *Store) BindForeign(cap BinderCap, addr multiaddr.Address, target inter.Address) error {
	if !cap.permits(s) {
		return ErrUnauthorized
	}
	if addr.Kind() != multiaddr.KindForeign {
		return fmt.Errorf("%w: only foreign chains use the forward table", multiaddr.ErrUnsupportedAddressKind)
	}
	bound, err := s.forward.HasField(addr.Bytes())
	if err != nil {
		return err
	}
	if bound {
		return nil
	}
	return s.forward.PutField(addr.Bytes(), target.Bytes())
}
