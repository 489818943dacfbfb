// Package ledgerstore implements the object/storage layer the ledger runs
// on: singleton objects keyed by a stable type identifier, with keyed fields
// attached to each object.
//
// All writes are buffered in a flushable wrapper around the backing
// key-value store. A transaction boundary (genesis, or a single post-genesis
// mutation) either commits every buffered write atomically or drops them
// all; no partial mutation is ever observable in the parent store.
//
// Privileged operations (creating singletons, seeding bindings) require the
// Authority token issued when the store is opened. The token is an explicit
// capability: it cannot be forged from outside because its fields are
// unexported and it is only valid for the store that issued it.

package ledgerstore

import (
	"errors"
	"fmt"

	"github.com/Fantom-foundation/lachesis-base/kvdb"
	"github.com/Fantom-foundation/lachesis-base/kvdb/flushable"
	"github.com/Fantom-foundation/lachesis-base/kvdb/table"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/rony4d/go-anchor-ledger/inter"
)

// ErrUnauthorized is returned when a privileged operation is attempted
// without a valid system authority or capability token.
var ErrUnauthorized = errors.New("unauthorized: system authority required")

// ErrNotFound is returned when opening a singleton that was never created.
var ErrNotFound = errors.New("object not found")

// Table prefixes within the backing store.
var (
	objectsPrefix = []byte("o") // object id -> owner || type id
	fieldsPrefix  = []byte("f") // object id || field key -> value
)

// Store is the ledger object store. It owns a flushable view over the
// backing database; see Commit and Abort for the transaction boundary.
type Store struct {
	flushable *flushable.Flushable
	objects   *table.Table
	fields    *table.Table
}

// Authority is the system capability token for privileged store operations.
// It is issued once per store by New; the zero value authorizes nothing.
type Authority struct {
	store *Store
}

// Permits reports whether the token was issued by the given store.
func (a Authority) Permits(s *Store) bool {
	return a.store != nil && a.store == s
}

// New opens a Store over the backing database and issues its system
// authority token. The caller that opens the store is the system: genesis
// holds the token and hands narrow capabilities to collaborators.
func New(db kvdb.DropableStore) (*Store, Authority) {
	f := flushable.Wrap(db)
	s := &Store{
		flushable: f,
		objects:   table.New(f, objectsPrefix),
		fields:    table.New(f, fieldsPrefix),
	}
	return s, Authority{store: s}
}

// ObjectID derives the stable object identifier for a type id. The
// derivation is pure, so the same type id addresses the same singleton on
// every node.
func ObjectID(typeID string) common.Hash {
	return crypto.Keccak256Hash([]byte("anchor.object:" + typeID))
}

// Object is a handle to a singleton object and its keyed fields.
type Object struct {
	id     common.Hash
	owner  inter.Address
	typeID string
	fields *table.Table
}

// Singleton creates the singleton object for the given type id, or returns
// the existing one (create-if-absent). The returned flag reports whether the
// object was created by this call. Creation is privileged.
func (s *Store) Singleton(auth Authority, typeID string, owner inter.Address) (*Object, bool, error) {
	if !auth.Permits(s) {
		return nil, false, ErrUnauthorized
	}
	id := ObjectID(typeID)
	meta, err := s.objects.Get(id.Bytes())
	if err != nil {
		return nil, false, err
	}
	if meta != nil {
		obj, err := s.openObject(id, meta)
		return obj, false, err
	}
	meta = append(owner.Bytes(), []byte(typeID)...)
	if err := s.objects.Put(id.Bytes(), meta); err != nil {
		return nil, false, err
	}
	return s.object(id, owner, typeID), true, nil
}

// GetSingleton opens an existing singleton without creating it. It returns
// ErrNotFound if the object was never created. Reads are unprivileged.
func (s *Store) GetSingleton(typeID string) (*Object, error) {
	id := ObjectID(typeID)
	meta, err := s.objects.Get(id.Bytes())
	if err != nil {
		return nil, err
	}
	if meta == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, typeID)
	}
	return s.openObject(id, meta)
}

func (s *Store) openObject(id common.Hash, meta []byte) (*Object, error) {
	if len(meta) < inter.AddressLength {
		return nil, fmt.Errorf("corrupted object meta for %s", id.Hex())
	}
	owner, err := inter.BytesToAddress(meta[:inter.AddressLength])
	if err != nil {
		return nil, err
	}
	return s.object(id, owner, string(meta[inter.AddressLength:])), nil
}

func (s *Store) object(id common.Hash, owner inter.Address, typeID string) *Object {
	return &Object{
		id:     id,
		owner:  owner,
		typeID: typeID,
		fields: table.New(s.fields, id.Bytes()),
	}
}

// ID returns the object identifier.
func (o *Object) ID() common.Hash {
	return o.id
}

// Owner returns the account that owns the object.
func (o *Object) Owner() inter.Address {
	return o.owner
}

// TypeID returns the stable type identifier the object was created under.
func (o *Object) TypeID() string {
	return o.typeID
}

// Field reads a keyed field. A nil result means the field is absent.
func (o *Object) Field(key []byte) ([]byte, error) {
	return o.fields.Get(key)
}

// HasField reports whether a keyed field exists.
func (o *Object) HasField(key []byte) (bool, error) {
	return o.fields.Has(key)
}

// PutField writes a keyed field into the buffered view. The write becomes
// durable only when the enclosing transaction commits.
func (o *Object) PutField(key, value []byte) error {
	return o.fields.Put(key, value)
}

// Commit flushes every buffered write to the backing database atomically.
func (s *Store) Commit() error {
	return s.flushable.Flush()
}

// Abort drops every buffered write, restoring the view to the last commit.
func (s *Store) Abort() {
	s.flushable.DropNotFlushed()
}

// Pending returns the number of buffered, not yet committed writes.
func (s *Store) Pending() int {
	return s.flushable.NotFlushedPairs()
}
