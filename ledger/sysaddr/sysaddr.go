// Package sysaddr enumerates the system-reserved account addresses: accounts
// pre-allocated for core framework modules and created automatically during
// genesis. Reserved addresses sit at the low end of the address space and
// are never the target of canonical derivation.

package sysaddr

import (
	"github.com/rony4d/go-anchor-ledger/inter"
)

var (
	// Std hosts the standard-library modules.
	Std = inter.ReservedAddress(0x1)
	// Framework hosts the core ledger framework modules, including the
	// address mapping store and the builtin auth validators. It owns the
	// ledger-global singleton objects.
	Framework = inter.ReservedAddress(0x2)
	// Bridge hosts the Bitcoin bridge modules that relay external chain
	// state into the ledger.
	Bridge = inter.ReservedAddress(0x3)
	// Nursery hosts pre-release framework modules (experimental auth
	// validators graduate from here).
	Nursery = inter.ReservedAddress(0x4)
)

// All returns every system-reserved address in creation order. Genesis
// iterates this slice when creating system accounts and when granting
// upgrade authority.
func All() []inter.Address {
	return []inter.Address{Std, Framework, Bridge, Nursery}
}

// IsReserved reports whether the address is one of the system-reserved
// accounts.
func IsReserved(a inter.Address) bool {
	for _, r := range All() {
		if a == r {
			return true
		}
	}
	return false
}
