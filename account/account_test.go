package account

import (
	"errors"
	"testing"

	"github.com/Fantom-foundation/lachesis-base/kvdb/memorydb"
	"github.com/stretchr/testify/require"

	"github.com/rony4d/go-anchor-ledger/inter"
	"github.com/rony4d/go-anchor-ledger/ledgerstore"
)

func newTestRegistry(t *testing.T) *Registry {
	s, auth := ledgerstore.New(memorydb.New())
	r, err := Init(s, auth)
	require.NoError(t, err)
	return r
}

func TestCreate(t *testing.T) {
	require := require.New(t)
	r := newTestRegistry(t)
	addr := inter.ReservedAddress(0x42)

	exists, err := r.Exists(addr)
	require.NoError(err)
	require.False(exists)

	require.NoError(r.Create(addr))

	exists, err = r.Exists(addr)
	require.NoError(err)
	require.True(exists)

	// Create on an occupied address fails.
	err = r.Create(addr)
	require.True(errors.Is(err, ErrAccountExists))
}

func TestCreateIfAbsent(t *testing.T) {
	require := require.New(t)
	r := newTestRegistry(t)
	addr := inter.ReservedAddress(0x42)

	created, err := r.CreateIfAbsent(addr)
	require.NoError(err)
	require.True(created)

	created, err = r.CreateIfAbsent(addr)
	require.NoError(err)
	require.False(created)
}

func TestSystemAccounts(t *testing.T) {
	require := require.New(t)
	r := newTestRegistry(t)
	sys := inter.ReservedAddress(0x2)
	user := inter.ReservedAddress(0x42)

	require.NoError(r.CreateSystem(sys))
	require.NoError(r.Create(user))

	isSys, err := r.IsSystem(sys)
	require.NoError(err)
	require.True(isSys)

	isSys, err = r.IsSystem(user)
	require.NoError(err)
	require.False(isSys)

	// Never-created addresses are not system accounts.
	isSys, err = r.IsSystem(inter.ReservedAddress(0x43))
	require.NoError(err)
	require.False(isSys)

	// CreateSystem is idempotent.
	require.NoError(r.CreateSystem(sys))
}
