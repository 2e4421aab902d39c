package openpgp

import "io"

// Subkey is a subkey bound to a KeyEntry's primary key, plus whatever
// signatures certify or revoke that binding.
type Subkey struct {
	PublicKey  *PublicKey
	SecretKey  *SecretKey
	Signatures []*Signature // binding and revocation signatures over this subkey
}

// Identity pairs a User ID (or User Attribute) with the certification
// and revocation signatures made over it.
type Identity struct {
	UserID        *UserID
	UserAttribute *UserAttribute
	Signatures    []*Signature
}

// KeyEntry is one OpenPGP key: a primary key, its identities, and its
// subkeys, accumulated from a flat packet stream per spec §4.5.
type KeyEntry struct {
	PrimaryPublicKey *PublicKey
	PrimarySecretKey *SecretKey
	Identities       []*Identity
	Subkeys          []*Subkey

	// DirectSignatures are self-signatures over the primary key itself
	// (SigDirectKey, SigKeyRevocation) that belong to no identity.
	DirectSignatures []*Signature
}

// KeyID returns the primary key's key ID.
func (k *KeyEntry) KeyID() ([8]byte, error) {
	if k.PrimaryPublicKey != nil {
		return k.PrimaryPublicKey.KeyID()
	}
	return [8]byte{}, newErr(PNotEnoughData, "KeyEntry.KeyID", "no primary public key", nil)
}

// Keyring is an ordered collection of KeyEntry, indexed by key ID for
// the PKESK/signature-verification lookup spec §4.7 needs.
type Keyring struct {
	Entries []*KeyEntry
	byID    map[[8]byte]*KeyEntry
}

// NewKeyring returns an empty Keyring.
func NewKeyring() *Keyring {
	return &Keyring{byID: map[[8]byte]*KeyEntry{}}
}

// FindByID returns the KeyEntry whose primary key (or any subkey) has
// the given key ID.
func (kr *Keyring) FindByID(id [8]byte) (*KeyEntry, bool) {
	e, ok := kr.byID[id]
	return e, ok
}

func (kr *Keyring) index(e *KeyEntry) {
	if id, err := e.KeyID(); err == nil {
		kr.byID[id] = e
	}
	for _, sub := range e.Subkeys {
		if sub.PublicKey == nil {
			continue
		}
		if id, err := sub.PublicKey.KeyID(); err == nil {
			kr.byID[id] = e
		}
	}
}

// accumulatorState is the keyring-builder state machine from spec
// §4.5: START -> IN_PRIMARY -> AFTER_USERID / AFTER_SUBKEY -> DONE,
// where DONE for one key immediately becomes START for the next.
type accumulatorState int

const (
	stateStart accumulatorState = iota
	stateInPrimary
	stateAfterUserID
	stateAfterSubkey
)

// ReadKeyring parses every packet from src and assembles a Keyring,
// implementing the accumulator spec §4.5 describes: a primary key
// packet starts a new KeyEntry, User ID/User Attribute packets open a
// new Identity, subkey packets open a new Subkey, and Signature
// packets attach to whichever of those is currently open. A malformed
// packet is visited as TagParserError and skipped, the same
// run-to-completion instinct Parse already has; a User ID, User
// Attribute, subkey, or Signature packet that arrives before any
// primary key is ignored.
func ReadKeyring(src Source) (*Keyring, error) {
	kr := NewKeyring()
	var cur *KeyEntry
	var state accumulatorState

	finish := func() {
		if cur != nil {
			kr.Entries = append(kr.Entries, cur)
			kr.index(cur)
		}
		cur = nil
		state = stateStart
	}

	err := Parse(src, func(c *Content) Directive {
		switch c.Tag {
		case TagPublicKey, TagSecretKey:
			finish()
			cur = &KeyEntry{PrimaryPublicKey: c.PublicKey}
			if c.SecretKey != nil {
				cur.PrimarySecretKey = c.SecretKey
				cur.PrimaryPublicKey = &c.SecretKey.Public
			}
			state = stateInPrimary

		case TagPublicSubkey, TagSecretSubkey:
			if cur == nil {
				return KeepMemory
			}
			sub := &Subkey{PublicKey: c.PublicKey}
			if c.SecretKey != nil {
				sub.SecretKey = c.SecretKey
				sub.PublicKey = &c.SecretKey.Public
			}
			cur.Subkeys = append(cur.Subkeys, sub)
			state = stateAfterSubkey

		case TagUserID:
			if cur == nil {
				return KeepMemory
			}
			cur.Identities = append(cur.Identities, &Identity{UserID: c.UserID})
			state = stateAfterUserID

		case TagUserAttribute:
			if cur == nil {
				return KeepMemory
			}
			cur.Identities = append(cur.Identities, &Identity{UserAttribute: c.UserAttribute})
			state = stateAfterUserID

		case TagSignature:
			if cur == nil {
				return KeepMemory
			}
			switch state {
			case stateAfterUserID:
				id := cur.Identities[len(cur.Identities)-1]
				id.Signatures = append(id.Signatures, c.Signature)
			case stateAfterSubkey:
				sub := cur.Subkeys[len(cur.Subkeys)-1]
				sub.Signatures = append(sub.Signatures, c.Signature)
			default:
				cur.DirectSignatures = append(cur.DirectSignatures, c.Signature)
			}

		case TagTrust:
			// Trust packets carry no portable meaning (spec §1 Non-goals); ignored.

		case TagParserError:
			// Skip malformed packets rather than abort the whole keyring read.
		}
		return KeepMemory
	})
	finish()
	if err != nil && err != io.EOF {
		return kr, err
	}
	return kr, nil
}
