// Package upgrade tracks which account holds the upgrade authority over
// each system account's modules. At genesis every system account's upgrade
// capability is granted to the DAO, so framework upgrades require DAO
// governance rather than any single key.
package upgrade

import (
	"fmt"

	"github.com/rony4d/go-anchor-ledger/inter"
	"github.com/rony4d/go-anchor-ledger/ledger/sysaddr"
	"github.com/rony4d/go-anchor-ledger/ledgerstore"
)

// ErrUnauthorized mirrors the store-level taxonomy: issuing capabilities is
// a system-authority operation.
var ErrUnauthorized = ledgerstore.ErrUnauthorized

const capsTypeID = "anchor.upgrade_caps"

// Caps is the ledger-global registry of upgrade capability grants.
type Caps struct {
	obj *ledgerstore.Object
}

// Init creates (or reopens) the capability registry. Privileged.
func Init(s *ledgerstore.Store, auth ledgerstore.Authority) (*Caps, error) {
	obj, _, err := s.Singleton(auth, capsTypeID, sysaddr.Framework)
	if err != nil {
		return nil, err
	}
	return &Caps{obj: obj}, nil
}

// Open returns a handle to the existing capability registry.
func Open(s *ledgerstore.Store) (*Caps, error) {
	obj, err := s.GetSingleton(capsTypeID)
	if err != nil {
		return nil, err
	}
	return &Caps{obj: obj}, nil
}

// Issue grants the upgrade capability over owner's modules to grantee.
// Privileged: only the system authority can issue grants, and a grant is
// recorded once; re-issuing for the same owner fails.
func (c *Caps) Issue(auth ledgerstore.Authority, s *ledgerstore.Store, owner, grantee inter.Address) error {
	if !auth.Permits(s) {
		return ErrUnauthorized
	}
	held, err := c.obj.HasField(owner.Bytes())
	if err != nil {
		return err
	}
	if held {
		return fmt.Errorf("upgrade capability for %s already issued", owner)
	}
	return c.obj.PutField(owner.Bytes(), grantee.Bytes())
}

// AuthorityOf returns the account holding the upgrade capability over
// owner's modules; ok == false means no grant exists.
func (c *Caps) AuthorityOf(owner inter.Address) (inter.Address, bool, error) {
	raw, err := c.obj.Field(owner.Bytes())
	if err != nil {
		return inter.Address{}, false, err
	}
	if raw == nil {
		return inter.Address{}, false, nil
	}
	grantee, err := inter.BytesToAddress(raw)
	if err != nil {
		return inter.Address{}, false, fmt.Errorf("corrupted upgrade grant for %s: %v", owner, err)
	}
	return grantee, true, nil
}
