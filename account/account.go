// Package account implements the minimal account bookkeeping the genesis
// bootstrap and the mapping store depend on: creating user and system
// accounts and querying their existence. Anything beyond that (nonces,
// authentication state, resources) lives in other subsystems.

package account

import (
	"errors"
	"fmt"

	"github.com/rony4d/go-anchor-ledger/inter"
	"github.com/rony4d/go-anchor-ledger/ledger/sysaddr"
	"github.com/rony4d/go-anchor-ledger/ledgerstore"
)

// ErrAccountExists is returned by Create when the target address already
// has an account.
var ErrAccountExists = errors.New("account already exists")

// accountsTypeID is the stable type id of the accounts singleton.
const accountsTypeID = "anchor.accounts"

// Account record flags.
const (
	flagExists byte = 1 << 0
	flagSystem byte = 1 << 1
)

// Registry tracks which addresses have accounts. It is a ledger-global
// singleton owned by the framework.
type Registry struct {
	obj *ledgerstore.Object
}

// Init creates (or reopens) the accounts singleton. Privileged: only the
// holder of the store authority may initialize it.
func Init(s *ledgerstore.Store, auth ledgerstore.Authority) (*Registry, error) {
	obj, _, err := s.Singleton(auth, accountsTypeID, sysaddr.Framework)
	if err != nil {
		return nil, err
	}
	return &Registry{obj: obj}, nil
}

// Open returns a handle to the existing accounts singleton.
func Open(s *ledgerstore.Store) (*Registry, error) {
	obj, err := s.GetSingleton(accountsTypeID)
	if err != nil {
		return nil, err
	}
	return &Registry{obj: obj}, nil
}

// Create creates an account at the address. It fails with ErrAccountExists
// if the address is already occupied.
func (r *Registry) Create(addr inter.Address) error {
	exists, err := r.Exists(addr)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: %s", ErrAccountExists, addr)
	}
	return r.obj.PutField(addr.Bytes(), []byte{flagExists})
}

// CreateIfAbsent creates the account unless it already exists. The returned
// flag reports whether this call created it.
func (r *Registry) CreateIfAbsent(addr inter.Address) (bool, error) {
	exists, err := r.Exists(addr)
	if err != nil || exists {
		return false, err
	}
	return true, r.obj.PutField(addr.Bytes(), []byte{flagExists})
}

// CreateSystem creates a system account at the address. Idempotent: a
// repeated call on an existing system account is a no-op.
func (r *Registry) CreateSystem(addr inter.Address) error {
	return r.obj.PutField(addr.Bytes(), []byte{flagExists | flagSystem})
}

// Exists reports whether an account occupies the address.
func (r *Registry) Exists(addr inter.Address) (bool, error) {
	return r.obj.HasField(addr.Bytes())
}

// IsSystem reports whether the address holds a system account.
func (r *Registry) IsSystem(addr inter.Address) (bool, error) {
	rec, err := r.obj.Field(addr.Bytes())
	if err != nil || rec == nil {
		return false, err
	}
	return rec[0]&flagSystem != 0, nil
}
