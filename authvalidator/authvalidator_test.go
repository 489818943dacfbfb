package authvalidator

import (
	"errors"
	"testing"

	"github.com/Fantom-foundation/lachesis-base/kvdb/memorydb"
	"github.com/stretchr/testify/require"

	"github.com/rony4d/go-anchor-ledger/inter"
	"github.com/rony4d/go-anchor-ledger/ledger/sysaddr"
	"github.com/rony4d/go-anchor-ledger/ledgerstore"
)

func newTestRegistry(t *testing.T) *Registry {
	s, auth := ledgerstore.New(memorydb.New())
	r, err := Init(s, auth)
	require.NoError(t, err)
	return r
}

// TestBuiltinIDsStable verifies the builtin schemes always get ids 0..3 in
// declaration order, on every fresh ledger.
func TestBuiltinIDsStable(t *testing.T) {
	require := require.New(t)

	for round := 0; round < 3; round++ {
		r := newTestRegistry(t)
		ids, err := r.RegisterBuiltins()
		require.NoError(err)
		require.Equal([]uint64{0, 1, 2, 3}, ids)
	}
}

// TestBuiltinBindings verifies each builtin resolves to its hosting module.
func TestBuiltinBindings(t *testing.T) {
	require := require.New(t)
	r := newTestRegistry(t)
	_, err := r.RegisterBuiltins()
	require.NoError(err)

	v, err := r.ValidatorByID(0)
	require.NoError(err)
	require.Equal(Session, v.Scheme)
	require.Equal(sysaddr.Framework, v.ModuleAddr)
	require.Equal("session_validator", v.ModuleName)

	v, err = r.ValidatorByID(1)
	require.NoError(err)
	require.Equal(Bitcoin, v.Scheme)
	require.Equal(sysaddr.Framework, v.ModuleAddr)
	require.Equal("bitcoin_validator", v.ModuleName)

	v, err = r.ValidatorByID(2)
	require.NoError(err)
	require.Equal(BitcoinMultisig, v.Scheme)
	require.Equal(sysaddr.Nursery, v.ModuleAddr)
	require.Equal("bitcoin_multisign_validator", v.ModuleName)

	v, err = r.ValidatorByID(3)
	require.NoError(err)
	require.Equal(Webauthn, v.Scheme)
	require.Equal(sysaddr.Framework, v.ModuleAddr)
	require.Equal("webauthn_validator", v.ModuleName)
}

// TestRegisterIdempotent verifies re-registering a scheme keeps its id and
// does not advance the counter.
func TestRegisterIdempotent(t *testing.T) {
	require := require.New(t)
	r := newTestRegistry(t)

	id1, err := r.Register(Session, sysaddr.Framework, "session_validator")
	require.NoError(err)
	require.Equal(uint64(0), id1)

	id2, err := r.Register(Session, sysaddr.Framework, "session_validator")
	require.NoError(err)
	require.Equal(id1, id2)

	// The next distinct scheme gets id 1, not 2.
	id3, err := r.Register(Bitcoin, sysaddr.Framework, "bitcoin_validator")
	require.NoError(err)
	require.Equal(uint64(1), id3)
}

// TestRepeatedBuiltinRegistration verifies RegisterBuiltins is idempotent.
func TestRepeatedBuiltinRegistration(t *testing.T) {
	require := require.New(t)
	r := newTestRegistry(t)

	ids, err := r.RegisterBuiltins()
	require.NoError(err)
	again, err := r.RegisterBuiltins()
	require.NoError(err)
	require.Equal(ids, again)
}

// TestLookups verifies scheme/id lookups and the unknown-scheme taxonomy.
func TestLookups(t *testing.T) {
	require := require.New(t)
	r := newTestRegistry(t)
	_, err := r.RegisterBuiltins()
	require.NoError(err)

	ok, err := r.IsRegistered(Webauthn)
	require.NoError(err)
	require.True(ok)

	ok, err = r.IsRegistered(Scheme("ethereum"))
	require.NoError(err)
	require.False(ok)

	_, err = r.IDOf(Scheme("ethereum"))
	require.True(errors.Is(err, ErrUnknownScheme))

	_, err = r.ValidatorByID(99)
	require.True(errors.Is(err, ErrUnknownScheme))
}

// TestInstall verifies per-account installation records.
func TestInstall(t *testing.T) {
	require := require.New(t)
	r := newTestRegistry(t)
	_, err := r.RegisterBuiltins()
	require.NoError(err)

	account := inter.ReservedAddress(0x42)
	other := inter.ReservedAddress(0x43)

	bitcoinID, err := r.IDOf(Bitcoin)
	require.NoError(err)

	installed, err := r.IsAuthValidatorInstalled(account, bitcoinID)
	require.NoError(err)
	require.False(installed)

	require.NoError(r.InstallAuthValidator(account, Bitcoin))

	installed, err = r.IsAuthValidatorInstalled(account, bitcoinID)
	require.NoError(err)
	require.True(installed)

	// Installation is per account and per validator.
	installed, err = r.IsAuthValidatorInstalled(other, bitcoinID)
	require.NoError(err)
	require.False(installed)
	sessionID, err := r.IDOf(Session)
	require.NoError(err)
	installed, err = r.IsAuthValidatorInstalled(account, sessionID)
	require.NoError(err)
	require.False(installed)

	// Unknown ids report false, never an error.
	installed, err = r.IsAuthValidatorInstalled(account, 99)
	require.NoError(err)
	require.False(installed)

	// Installing an unregistered scheme fails.
	err = r.InstallAuthValidator(account, Scheme("ethereum"))
	require.True(errors.Is(err, ErrUnknownScheme))

	// Installing twice is a no-op.
	require.NoError(r.InstallAuthValidator(account, Bitcoin))
}
