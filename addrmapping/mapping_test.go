package addrmapping

import (
	"errors"
	"testing"

	"github.com/Fantom-foundation/lachesis-base/kvdb/memorydb"
	"github.com/stretchr/testify/require"

	"github.com/rony4d/go-anchor-ledger/inter"
	"github.com/rony4d/go-anchor-ledger/inter/btcaddr"
	"github.com/rony4d/go-anchor-ledger/inter/multiaddr"
	"github.com/rony4d/go-anchor-ledger/ledgerstore"
)

func newTestStore(t *testing.T) (*Store, ledgerstore.Authority) {
	state, auth := ledgerstore.New(memorydb.New())
	m, err := Init(state, auth)
	require.NoError(t, err)
	return m, auth
}

// TestResolveNative verifies that native addresses resolve to themselves
// without any recorded binding.
func TestResolveNative(t *testing.T) {
	require := require.New(t)
	m, _ := newTestStore(t)

	account := inter.ReservedAddress(0x42)
	got, ok, err := m.Resolve(multiaddr.NewNative(account))
	require.NoError(err)
	require.True(ok)
	require.Equal(account, got)
}

// TestResolveBitcoinDerivation verifies that Bitcoin addresses resolve by
// canonical derivation without touching the tables.
func TestResolveBitcoinDerivation(t *testing.T) {
	require := require.New(t)
	m, _ := newTestStore(t)

	btc := btcaddr.RandomFrom(1)
	maddr, err := multiaddr.NewBitcoin(btc)
	require.NoError(err)

	got, ok, err := m.Resolve(maddr)
	require.NoError(err)
	require.True(ok)
	require.Equal(btc.CanonicalAccount(), got)
}

// TestReverseBindingFirstWins verifies the first-binder-wins rule: once an
// account is bound, later bind attempts are silent no-ops.
func TestReverseBindingFirstWins(t *testing.T) {
	require := require.New(t)
	m, auth := newTestStore(t)

	cap, err := m.IssueBinderCap(auth)
	require.NoError(err)

	btc := btcaddr.RandomFrom(2)
	account := btc.CanonicalAccount()

	// No binding yet.
	_, ok, err := m.ResolveBitcoin(account)
	require.NoError(err)
	require.False(ok)

	require.NoError(m.BindBitcoinAddress(cap, btc))

	got, ok, err := m.ResolveBitcoin(account)
	require.NoError(err)
	require.True(ok)
	require.True(got.Equal(btc))

	// Re-binding the same account is a no-op, not an error.
	require.NoError(m.BindBitcoinAddress(cap, btc))
	got, ok, err = m.ResolveBitcoin(account)
	require.NoError(err)
	require.True(ok)
	require.True(got.Equal(btc))
}

// TestBindUnauthorized verifies that the zero-value capability and foreign
// capabilities are rejected.
func TestBindUnauthorized(t *testing.T) {
	require := require.New(t)
	m, _ := newTestStore(t)
	other, otherAuth := newTestStore(t)

	btc := btcaddr.RandomFrom(3)

	err := m.BindBitcoinAddress(BinderCap{}, btc)
	require.True(errors.Is(err, ErrUnauthorized))

	// A capability issued by another store does not transfer.
	foreignCap, err := other.IssueBinderCap(otherAuth)
	require.NoError(err)
	err = m.BindBitcoinAddress(foreignCap, btc)
	require.True(errors.Is(err, ErrUnauthorized))

	// Seeding also requires the right authority.
	err = m.SeedBitcoinBinding(otherAuth, btc)
	require.True(errors.Is(err, ErrUnauthorized))
}

// TestSeedBitcoinBinding verifies that the system authority can record a
// binding before the account ever transacts.
func TestSeedBitcoinBinding(t *testing.T) {
	require := require.New(t)
	m, auth := newTestStore(t)

	btc := btcaddr.RandomFrom(4)
	require.NoError(m.SeedBitcoinBinding(auth, btc))

	got, ok, err := m.ResolveBitcoin(btc.CanonicalAccount())
	require.NoError(err)
	require.True(ok)
	require.True(got.Equal(btc))
}

// TestBindEmptySentinel verifies the empty sentinel cannot be bound.
func TestBindEmptySentinel(t *testing.T) {
	require := require.New(t)
	m, auth := newTestStore(t)

	err := m.SeedBitcoinBinding(auth, btcaddr.Address{})
	require.True(errors.Is(err, btcaddr.ErrInvalidAddressFormat))
}

// TestResolveBitcoinBatch verifies positional correspondence and sentinel
// filling for unresolved entries.
func TestResolveBitcoinBatch(t *testing.T) {
	require := require.New(t)
	m, auth := newTestStore(t)

	bound := btcaddr.RandomFrom(5)
	require.NoError(m.SeedBitcoinBinding(auth, bound))
	unbound := inter.ReservedAddress(0x77)

	got, err := m.ResolveBitcoinBatch([]inter.Address{
		unbound,
		bound.CanonicalAccount(),
		unbound,
	})
	require.NoError(err)
	require.Len(got, 3)
	require.True(got[0].Empty())
	require.True(got[1].Equal(bound))
	require.True(got[2].Empty())

	// Empty input gives an empty, non-nil result.
	got, err = m.ResolveBitcoinBatch(nil)
	require.NoError(err)
	require.Len(got, 0)
}

// TestForeignMapping verifies forward-table binding and resolution for a
// foreign chain address.
func TestForeignMapping(t *testing.T) {
	require := require.New(t)
	m, auth := newTestStore(t)

	cap, err := m.IssueBinderCap(auth)
	require.NoError(err)

	eth, err := multiaddr.New(multiaddr.EtherChain, []byte{
		0xde, 0xad, 0xbe, 0xef, 0x00, 0x01, 0x02, 0x03, 0x04, 0x05,
		0x06, 0x07, 0x08, 0x09, 0x0a, 0x0b, 0x0c, 0x0d, 0x0e, 0x0f,
	})
	require.NoError(err)
	target := inter.ReservedAddress(0x55)

	// Unmapped foreign addresses report ok == false, not an error.
	_, ok, err := m.Resolve(eth)
	require.NoError(err)
	require.False(ok)

	exists, err := m.ExistsMapping(eth)
	require.NoError(err)
	require.False(exists)

	require.NoError(m.BindForeign(cap, eth, target))

	got, ok, err := m.Resolve(eth)
	require.NoError(err)
	require.True(ok)
	require.Equal(target, got)

	exists, err = m.ExistsMapping(eth)
	require.NoError(err)
	require.True(exists)

	// First recorded target wins.
	require.NoError(m.BindForeign(cap, eth, inter.ReservedAddress(0x56)))
	got, _, err = m.Resolve(eth)
	require.NoError(err)
	require.Equal(target, got)
}

// TestBindForeignRejectsNonForeign verifies the forward table never carries
// native or Bitcoin entries.
func TestBindForeignRejectsNonForeign(t *testing.T) {
	require := require.New(t)
	m, auth := newTestStore(t)

	cap, err := m.IssueBinderCap(auth)
	require.NoError(err)

	err = m.BindForeign(cap, multiaddr.NewNative(inter.ReservedAddress(0x1)), inter.ReservedAddress(0x2))
	require.True(errors.Is(err, multiaddr.ErrUnsupportedAddressKind))

	btc, err := multiaddr.NewBitcoin(btcaddr.RandomFrom(6))
	require.NoError(err)
	err = m.BindForeign(cap, btc, inter.ReservedAddress(0x2))
	require.True(errors.Is(err, multiaddr.ErrUnsupportedAddressKind))
}

// TestExistsMappingAlwaysTrueForDerivable verifies native and Bitcoin
// addresses always resolve.
func TestExistsMappingAlwaysTrueForDerivable(t *testing.T) {
	require := require.New(t)
	m, _ := newTestStore(t)

	exists, err := m.ExistsMapping(multiaddr.NewNative(inter.ReservedAddress(0x1)))
	require.NoError(err)
	require.True(exists)

	btc, err := multiaddr.NewBitcoin(btcaddr.RandomFrom(7))
	require.NoError(err)
	exists, err = m.ExistsMapping(btc)
	require.NoError(err)
	require.True(exists)
}

// TestOpenExisting verifies a reopened handle sees the committed bindings.
func TestOpenExisting(t *testing.T) {
	require := require.New(t)

	db := memorydb.New()
	state, auth := ledgerstore.New(db)
	m, err := Init(state, auth)
	require.NoError(err)

	btc := btcaddr.RandomFrom(8)
	require.NoError(m.SeedBitcoinBinding(auth, btc))
	require.NoError(state.Commit())

	reopened, _ := ledgerstore.New(db)
	m2, err := Open(reopened)
	require.NoError(err)

	got, ok, err := m2.ResolveBitcoin(btc.CanonicalAccount())
	require.NoError(err)
	require.True(ok)
	require.True(got.Equal(btc))

	// Open never creates: a fresh database has no tables.
	empty, _ := ledgerstore.New(memorydb.New())
	_, err = Open(empty)
	require.True(errors.Is(err, ledgerstore.ErrNotFound))
}
