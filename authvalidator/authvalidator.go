// Package authvalidator implements the registry of transaction
// authentication validators and their per-account installation records.
//
// A validator is identified two ways: by a stable string scheme name and by
// a small sequential numeric id assigned at registration. The id sequence is
// append-only, so as long as validators register in a fixed order (the
// builtin order at genesis), ids are identical on every node and can be
// embedded in signed transaction payloads.
package authvalidator

import (
	"errors"
	"fmt"

	"github.com/Fantom-foundation/lachesis-base/common/bigendian"
	"github.com/sirupsen/logrus"

	"github.com/rony4d/go-anchor-ledger/inter"
	"github.com/rony4d/go-anchor-ledger/ledger/sysaddr"
	"github.com/rony4d/go-anchor-ledger/ledgerstore"
)

var log = logrus.WithField("module", "authvalidator")

// Scheme names a validator implementation. Builtin schemes are registered at
// genesis in declaration order.
type Scheme string

// Builtin authentication schemes.
const (
	// Session validates session-key signatures. Always id 0.
	Session Scheme = "session"
	// Bitcoin validates single-key Bitcoin signatures. Always id 1.
	Bitcoin Scheme = "bitcoin"
	// BitcoinMultisig validates multi-signature Bitcoin auth. Always id 2.
	BitcoinMultisig Scheme = "bitcoin-multisig"
	// Webauthn validates WebAuthn assertions. Always id 3.
	Webauthn Scheme = "webauthn"
)

// Builtins returns the builtin schemes in their fixed genesis registration
// order. The order is part of the consensus surface: changing it changes the
// ids baked into signed transactions.
func Builtins() []Scheme {
	return []Scheme{Session, Bitcoin, BitcoinMultisig, Webauthn}
}

// Validator describes a registered validator: its assigned id, scheme name,
// and the on-ledger module implementing it.
type Validator struct {
	ID         uint64        // sequential registration id
	Scheme     Scheme        // stable scheme name
	ModuleAddr inter.Address // account hosting the implementation module
	ModuleName string        // module name within that account
}

// builtinModule returns the module binding of a builtin scheme.
func builtinModule(scheme Scheme) (inter.Address, string) {
	switch scheme {
	case Session:
		return sysaddr.Framework, "session_validator"
	case Bitcoin:
		return sysaddr.Framework, "bitcoin_validator"
	case BitcoinMultisig:
		return sysaddr.Nursery, "bitcoin_multisign_validator"
	case Webauthn:
		return sysaddr.Framework, "webauthn_validator"
	default:
		return inter.Address{}, ""
	}
}

// ErrUnknownScheme is returned when looking up a validator that was never
// registered.
var ErrUnknownScheme = errors.New("unknown auth validator scheme")

const registryTypeID = "anchor.auth_validator_registry"

// Field keys inside the registry singleton.
var (
	keyCounter    = []byte("counter") // next id to assign, 8 bytes big-endian
	schemePrefix  = []byte("scheme:") // scheme name -> id
	idPrefix      = []byte("id:")     // id -> scheme || module addr || module name
	installPrefix = []byte("inst:")   // account || id -> 0x1
)

// Registry is the ledger-global validator registry singleton.
type Registry struct {
	obj *ledgerstore.Object
}

// Init creates (or reopens) the registry singleton. Privileged.
func Init(s *ledgerstore.Store, auth ledgerstore.Authority) (*Registry, error) {
	obj, created, err := s.Singleton(auth, registryTypeID, sysaddr.Framework)
	if err != nil {
		return nil, err
	}
	if created {
		log.Info("auth validator registry created")
	}
	return &Registry{obj: obj}, nil
}

// Open returns a handle to the existing registry singleton.
func Open(s *ledgerstore.Store) (*Registry, error) {
	obj, err := s.GetSingleton(registryTypeID)
	if err != nil {
		return nil, err
	}
	return &Registry{obj: obj}, nil
}

// Register registers the scheme and returns its assigned id. Idempotent: a
// scheme already registered keeps its id and the counter does not advance.
func (r *Registry) Register(scheme Scheme, moduleAddr inter.Address, moduleName string) (uint64, error) {
	if id, ok, err := r.idOf(scheme); err != nil || ok {
		return id, err
	}

	id, err := r.nextID()
	if err != nil {
		return 0, err
	}

	record := encodeValidator(scheme, moduleAddr, moduleName)
	if err := r.obj.PutField(idKey(id), record); err != nil {
		return 0, err
	}
	if err := r.obj.PutField(schemeKey(scheme), bigendian.Uint64ToBytes(id)); err != nil {
		return 0, err
	}
	if err := r.obj.PutField(keyCounter, bigendian.Uint64ToBytes(id+1)); err != nil {
		return 0, err
	}

	log.WithFields(logrus.Fields{
		"scheme": string(scheme),
		"id":     id,
	}).Info("auth validator registered")
	return id, nil
}

// RegisterBuiltins registers every builtin scheme in the fixed order and
// returns their ids. On a fresh ledger the ids come out 0..3; on an already
// initialized ledger the existing ids are returned unchanged.
func (r *Registry) RegisterBuiltins() ([]uint64, error) {
	schemes := Builtins()
	ids := make([]uint64, len(schemes))
	for i, scheme := range schemes {
		addr, name := builtinModule(scheme)
		id, err := r.Register(scheme, addr, name)
		if err != nil {
			return nil, err
		}
		ids[i] = id
	}
	return ids, nil
}

// IsRegistered reports whether the scheme has been registered.
func (r *Registry) IsRegistered(scheme Scheme) (bool, error) {
	_, ok, err := r.idOf(scheme)
	return ok, err
}

// IDOf returns the id assigned to the scheme, failing with ErrUnknownScheme
// if it was never registered.
func (r *Registry) IDOf(scheme Scheme) (uint64, error) {
	id, ok, err := r.idOf(scheme)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownScheme, scheme)
	}
	return id, nil
}

// ValidatorByID returns the validator registered under the id, failing with
// ErrUnknownScheme for ids that were never assigned.
func (r *Registry) ValidatorByID(id uint64) (Validator, error) {
	raw, err := r.obj.Field(idKey(id))
	if err != nil {
		return Validator{}, err
	}
	if raw == nil {
		return Validator{}, fmt.Errorf("%w: id %d", ErrUnknownScheme, id)
	}
	return decodeValidator(id, raw)
}

// InstallAuthValidator installs the scheme's validator on the account, so
// transactions from the account may authenticate through it. The scheme must
// already be registered; installing twice is a no-op.
func (r *Registry) InstallAuthValidator(account inter.Address, scheme Scheme) error {
	id, err := r.IDOf(scheme)
	if err != nil {
		return err
	}
	return r.obj.PutField(installKey(account, id), []byte{1})
}

// IsAuthValidatorInstalled reports whether the validator with the id is
// installed on the account. Unknown ids simply report false.
func (r *Registry) IsAuthValidatorInstalled(account inter.Address, id uint64) (bool, error) {
	return r.obj.HasField(installKey(account, id))
}

func (r *Registry) idOf(scheme Scheme) (uint64, bool, error) {
	raw, err := r.obj.Field(schemeKey(scheme))
	if err != nil || raw == nil {
		return 0, false, err
	}
	return bigendian.BytesToUint64(raw), true, nil
}

func (r *Registry) nextID() (uint64, error) {
	raw, err := r.obj.Field(keyCounter)
	if err != nil {
		return 0, err
	}
	if raw == nil {
		return 0, nil
	}
	return bigendian.BytesToUint64(raw), nil
}

func schemeKey(scheme Scheme) []byte {
	return append(schemePrefix, scheme...)
}

func idKey(id uint64) []byte {
	return append(idPrefix, bigendian.Uint64ToBytes(id)...)
}

func installKey(account inter.Address, id uint64) []byte {
	key := append(installPrefix, account.Bytes()...)
	return append(key, bigendian.Uint64ToBytes(id)...)
}

// encodeValidator packs scheme and module binding into the id record:
// module address (32 bytes) || scheme length (1 byte) || scheme || module name.
func encodeValidator(scheme Scheme, moduleAddr inter.Address, moduleName string) []byte {
	record := append(moduleAddr.Bytes(), byte(len(scheme)))
	record = append(record, scheme...)
	return append(record, moduleName...)
}

func decodeValidator(id uint64, raw []byte) (Validator, error) {
	if len(raw) < inter.AddressLength+1 {
		return Validator{}, fmt.Errorf("corrupted validator record for id %d", id)
	}
	moduleAddr, err := inter.BytesToAddress(raw[:inter.AddressLength])
	if err != nil {
		return Validator{}, err
	}
	rest := raw[inter.AddressLength:]
	schemeLen := int(rest[0])
	if len(rest) < 1+schemeLen {
		return Validator{}, fmt.Errorf("corrupted validator record for id %d", id)
	}
	return Validator{
		ID:         id,
		Scheme:     Scheme(rest[1 : 1+schemeLen]),
		ModuleAddr: moduleAddr,
		ModuleName: string(rest[1+schemeLen:]),
	}, nil
}
