// Package id implements the recipient and publisher identity model: the
// tagged-variant Identifier wire type, the secret-bearing Identity it is
// derived from, and the DID signing collaborator used for DID-bound
// identities.
package id

import (
	"github.com/streamwire/streams/ddml"
)

// Kind discriminates an Identifier's variant.
type Kind byte

const (
	// KindEd25519PublicKey identifies a recipient or publisher by a bare
	// Ed25519 public key.
	KindEd25519PublicKey Kind = 0
	// KindPskID identifies a recipient by a 16-byte pre-shared key
	// identifier.
	KindPskID Kind = 1
	// KindDID identifies a recipient or publisher by a decentralized
	// identifier URI and verification-method fragment.
	KindDID Kind = 2
)

// Identifier is the canonical, variant-tagged binary identity of a
// recipient or publisher. Exactly one of its fields is meaningful,
// selected by Kind.
type Identifier struct {
	Kind Kind

	Ed25519PublicKey [32]byte
	PskID            [16]byte
	DIDURI           string
}

// NewEd25519Identifier returns an Identifier for an Ed25519 public key.
func NewEd25519Identifier(pub [32]byte) Identifier {
	return Identifier{Kind: KindEd25519PublicKey, Ed25519PublicKey: pub}
}

// NewPskIdentifier returns an Identifier for a PSK identifier.
func NewPskIdentifier(pskID [16]byte) Identifier {
	return Identifier{Kind: KindPskID, PskID: pskID}
}

// NewDIDIdentifier returns an Identifier for a DID URI.
func NewDIDIdentifier(didURI string) Identifier {
	return Identifier{Kind: KindDID, DIDURI: didURI}
}

// Codec absorbs id's tag byte and variant payload through c, both writing
// (RoleWrap) and reading (RoleUnwrap) it depending on c.Role.
func (id *Identifier) Codec(c *ddml.Context) error {
	tag := byte(id.Kind)
	if err := c.AbsorbU8(&tag); err != nil {
		return err
	}
	id.Kind = Kind(tag)

	switch id.Kind {
	case KindEd25519PublicKey:
		return c.AbsorbNBytes(id.Ed25519PublicKey[:])
	case KindPskID:
		return c.AbsorbNBytes(id.PskID[:])
	case KindDID:
		data := []byte(id.DIDURI)
		if err := c.AbsorbBytes(&data); err != nil {
			return err
		}
		id.DIDURI = string(data)
		return nil
	default:
		return &ddml.UnknownVariantError{Kind: "Identifier", Tag: tag}
	}
}

// MaskCodec is Codec's encrypted counterpart, used where an Identifier
// must not be readable by anyone lacking the enclosing Spongos state (e.g.
// an HDF's publisher field).
func (id *Identifier) MaskCodec(c *ddml.Context) error {
	tag := byte(id.Kind)
	if err := c.MaskU8(&tag); err != nil {
		return err
	}
	id.Kind = Kind(tag)

	switch id.Kind {
	case KindEd25519PublicKey:
		return c.MaskNBytes(id.Ed25519PublicKey[:])
	case KindPskID:
		return c.MaskNBytes(id.PskID[:])
	case KindDID:
		data := []byte(id.DIDURI)
		if err := c.MaskBytes(&data); err != nil {
			return err
		}
		id.DIDURI = string(data)
		return nil
	default:
		return &ddml.UnknownVariantError{Kind: "Identifier", Tag: tag}
	}
}

// Equal reports whether id and other identify the same recipient.
func (id Identifier) Equal(other Identifier) bool {
	if id.Kind != other.Kind {
		return false
	}
	switch id.Kind {
	case KindEd25519PublicKey:
		return id.Ed25519PublicKey == other.Ed25519PublicKey
	case KindPskID:
		return id.PskID == other.PskID
	case KindDID:
		return id.DIDURI == other.DIDURI
	default:
		return false
	}
}

// Key returns a value suitable for use as a map key identifying id, for
// stores keyed by recipient.
func (id Identifier) Key() string {
	switch id.Kind {
	case KindEd25519PublicKey:
		return "ed:" + string(id.Ed25519PublicKey[:])
	case KindPskID:
		return "psk:" + string(id.PskID[:])
	case KindDID:
		return "did:" + id.DIDURI
	default:
		return "unknown"
	}
}
