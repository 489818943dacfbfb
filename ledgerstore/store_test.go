package ledgerstore

import (
	"errors"
	"testing"

	"github.com/Fantom-foundation/lachesis-base/kvdb/memorydb"
	"github.com/stretchr/testify/require"

	"github.com/rony4d/go-anchor-ledger/inter"
)

// TestSingletonCreateIfAbsent verifies create-if-absent semantics and the
// created flag.
func TestSingletonCreateIfAbsent(t *testing.T) {
	require := require.New(t)

	s, auth := New(memorydb.New())
	owner := inter.ReservedAddress(0x2)

	obj, created, err := s.Singleton(auth, "test.counter", owner)
	require.NoError(err)
	require.True(created)
	require.Equal(owner, obj.Owner())
	require.Equal("test.counter", obj.TypeID())

	// Second call returns the existing object.
	again, created, err := s.Singleton(auth, "test.counter", inter.ReservedAddress(0x9))
	require.NoError(err)
	require.False(created)
	require.Equal(obj.ID(), again.ID())
	// Owner is the one recorded at creation, not the later caller's.
	require.Equal(owner, again.Owner())
}

// TestSingletonUnauthorized verifies that creation requires the authority
// token issued for this store.
func TestSingletonUnauthorized(t *testing.T) {
	require := require.New(t)

	s, _ := New(memorydb.New())
	other, otherAuth := New(memorydb.New())
	_ = other

	// Zero-value token authorizes nothing.
	_, _, err := s.Singleton(Authority{}, "test.x", inter.ReservedAddress(0x2))
	require.True(errors.Is(err, ErrUnauthorized))

	// A token from a different store does not transfer.
	_, _, err = s.Singleton(otherAuth, "test.x", inter.ReservedAddress(0x2))
	require.True(errors.Is(err, ErrUnauthorized))
}

// TestGetSingleton verifies opening without creating.
func TestGetSingleton(t *testing.T) {
	require := require.New(t)

	s, auth := New(memorydb.New())

	_, err := s.GetSingleton("test.absent")
	require.True(errors.Is(err, ErrNotFound))

	created, _, err := s.Singleton(auth, "test.present", inter.ReservedAddress(0x2))
	require.NoError(err)

	opened, err := s.GetSingleton("test.present")
	require.NoError(err)
	require.Equal(created.ID(), opened.ID())
	require.Equal(created.Owner(), opened.Owner())
}

// TestFields verifies keyed field reads and writes, including the nil-means-
// absent contract.
func TestFields(t *testing.T) {
	require := require.New(t)

	s, auth := New(memorydb.New())
	obj, _, err := s.Singleton(auth, "test.fields", inter.ReservedAddress(0x2))
	require.NoError(err)

	val, err := obj.Field([]byte("k"))
	require.NoError(err)
	require.Nil(val)

	ok, err := obj.HasField([]byte("k"))
	require.NoError(err)
	require.False(ok)

	require.NoError(obj.PutField([]byte("k"), []byte("v")))

	val, err = obj.Field([]byte("k"))
	require.NoError(err)
	require.Equal([]byte("v"), val)

	ok, err = obj.HasField([]byte("k"))
	require.NoError(err)
	require.True(ok)
}

// TestFieldIsolation verifies that two objects never see each other's
// fields even under the same key.
func TestFieldIsolation(t *testing.T) {
	require := require.New(t)

	s, auth := New(memorydb.New())
	a, _, err := s.Singleton(auth, "test.a", inter.ReservedAddress(0x2))
	require.NoError(err)
	b, _, err := s.Singleton(auth, "test.b", inter.ReservedAddress(0x2))
	require.NoError(err)

	require.NoError(a.PutField([]byte("k"), []byte("from-a")))

	val, err := b.Field([]byte("k"))
	require.NoError(err)
	require.Nil(val)
}

// TestCommitAbort verifies the all-or-nothing transaction boundary: writes
// dropped by Abort are invisible to a fresh store over the same database,
// committed writes survive.
func TestCommitAbort(t *testing.T) {
	require := require.New(t)

	db := memorydb.New()
	s, auth := New(db)

	obj, _, err := s.Singleton(auth, "test.tx", inter.ReservedAddress(0x2))
	require.NoError(err)
	require.NoError(obj.PutField([]byte("k"), []byte("v")))
	require.NotZero(s.Pending())

	// Abort: nothing reaches the backing database.
	s.Abort()
	reopened, _ := New(db)
	_, err = reopened.GetSingleton("test.tx")
	require.True(errors.Is(err, ErrNotFound))

	// Redo and commit: everything reaches the backing database.
	obj, _, err = s.Singleton(auth, "test.tx", inter.ReservedAddress(0x2))
	require.NoError(err)
	require.NoError(obj.PutField([]byte("k"), []byte("v")))
	require.NoError(s.Commit())
	require.Zero(s.Pending())

	reopened, _ = New(db)
	got, err := reopened.GetSingleton("test.tx")
	require.NoError(err)
	val, err := got.Field([]byte("k"))
	require.NoError(err)
	require.Equal([]byte("v"), val)
}

// TestObjectIDStable verifies the object id derivation is deterministic and
// type-dependent.
func TestObjectIDStable(t *testing.T) {
	if ObjectID("x") != ObjectID("x") {
		t.Fatal("object id derivation is not deterministic")
	}
	if ObjectID("x") == ObjectID("y") {
		t.Fatal("distinct type ids produced the same object id")
	}
}
