package id

import (
	"context"
	"crypto/ed25519"
	"crypto/sha512"
	"fmt"

	"github.com/streamwire/streams/ddml"
)

// IdentityKind discriminates an Identity's variant. It is distinct from
// Kind: an Identity carries secret material and signs with it, an
// Identifier is only ever the public, wire-visible reference to one.
type IdentityKind byte

const (
	// IdentityKindEd25519 signs directly with an Ed25519 private key.
	IdentityKindEd25519 IdentityKind = 0
	// IdentityKindDID signs through a DID document's verification method,
	// via the DIDSigner collaborator.
	IdentityKindDID IdentityKind = 1
)

// Identity holds secret key material for a channel participant. It is
// never serialized as-is; only its Identifier (the public reference) ever
// appears on the wire.
type Identity struct {
	Kind IdentityKind

	// Ed25519Priv is the signing key for IdentityKindEd25519.
	Ed25519Priv ed25519.PrivateKey

	// DIDURI and KeyFragment identify the verification method for
	// IdentityKindDID. VerificationKey is the Ed25519 keypair backing that
	// verification method, used for X25519Secret's birational derivation.
	// Signing goes through Signer, which signs with the key registered with
	// it for DIDURI#KeyFragment; Sign does not pass VerificationKey to it.
	DIDURI          string
	KeyFragment     string
	VerificationKey ed25519.PrivateKey
	Signer          DIDSigner
}

// NewEd25519Identity returns an Identity that signs directly with priv.
func NewEd25519Identity(priv ed25519.PrivateKey) *Identity {
	return &Identity{Kind: IdentityKindEd25519, Ed25519Priv: priv}
}

// NewDIDIdentity returns an Identity that signs through signer using the
// verification method didURI#fragment, backed locally by verificationKey.
func NewDIDIdentity(didURI, fragment string, verificationKey ed25519.PrivateKey, signer DIDSigner) *Identity {
	return &Identity{
		Kind:            IdentityKindDID,
		DIDURI:          didURI,
		KeyFragment:     fragment,
		VerificationKey: verificationKey,
		Signer:          signer,
	}
}

// ToIdentifier deterministically derives id's wire-visible Identifier.
func (id *Identity) ToIdentifier() Identifier {
	switch id.Kind {
	case IdentityKindEd25519:
		var pub [32]byte
		copy(pub[:], id.Ed25519Priv.Public().(ed25519.PublicKey))
		return NewEd25519Identifier(pub)
	case IdentityKindDID:
		return NewDIDIdentifier(id.DIDURI + "#" + id.KeyFragment)
	default:
		return Identifier{}
	}
}

// ed25519PrivToX25519 derives an X25519 static secret from an Ed25519
// private key via the standard birational mapping: hash the 32-byte seed
// with SHA-512 and clamp the low half as an X25519 scalar.
func ed25519PrivToX25519(priv ed25519.PrivateKey) [32]byte {
	h := sha512.Sum512(priv.Seed())
	h[0] &= 248
	h[31] &= 127
	h[31] |= 64
	var out [32]byte
	copy(out[:], h[:32])
	return out
}

// X25519Secret derives id's X25519 static secret via birational mapping
// from whichever Ed25519 private key id owns.
func (id *Identity) X25519Secret() [32]byte {
	switch id.Kind {
	case IdentityKindEd25519:
		return ed25519PrivToX25519(id.Ed25519Priv)
	case IdentityKindDID:
		return ed25519PrivToX25519(id.VerificationKey)
	default:
		return [32]byte{}
	}
}

// identitySignTag is IdentityKind's wire discriminant inside Sign/Verify,
// distinct from Identifier's own tag space.
func identitySignTag(k IdentityKind) byte { return byte(k) }

// Sign runs the Identity::sign wire script against c: absorb the identity
// kind tag, commit, squeeze a 64-byte external challenge from the
// transcript so far, and emit a signature over it — directly via Ed25519
// for IdentityKindEd25519, or via id.Signer's JCS-Ed25519 suite for
// IdentityKindDID, in which case the signature bytes are themselves
// absorbed back into the transcript after being written.
func (id *Identity) Sign(ctx context.Context, c *ddml.Context) error {
	tag := identitySignTag(id.Kind)
	if err := c.AbsorbU8(&tag); err != nil {
		return err
	}

	switch id.Kind {
	case IdentityKindEd25519:
		if err := c.Commit(); err != nil {
			return err
		}
		return c.Ed25519Sign(id.Ed25519Priv)
	case IdentityKindDID:
		fragment := []byte(id.KeyFragment)
		if err := c.AbsorbBytes(&fragment); err != nil {
			return err
		}
		if err := c.Commit(); err != nil {
			return err
		}
		var challenge [64]byte
		if err := c.SqueezeExternal(challenge[:]); err != nil {
			return err
		}
		sig, err := id.Signer.Sign(ctx, challenge, id.DIDURI, id.KeyFragment)
		if err != nil {
			return fmt.Errorf("ddml: DID sign: %w: %w", ddml.ErrExternalResolutionFailed, err)
		}
		return c.AbsorbNBytes(sig[:])
	default:
		return &ddml.UnknownVariantError{Kind: "IdentityKind", Tag: tag}
	}
}

// Verify mirrors Sign for RoleUnwrap: it reads the same tag and payload
// back off the wire and checks the signature, using verifier for the
// IdentityKindDID branch to resolve the DID document's public key
// out-of-band.
func Verify(ctx context.Context, c *ddml.Context, pub ed25519.PublicKey, verifier DIDSigner) error {
	var tag byte
	if err := c.AbsorbU8(&tag); err != nil {
		return err
	}

	switch IdentityKind(tag) {
	case IdentityKindEd25519:
		if err := c.Commit(); err != nil {
			return err
		}
		return c.Ed25519Verify(pub)
	case IdentityKindDID:
		var fragment []byte
		if err := c.AbsorbBytes(&fragment); err != nil {
			return err
		}
		if err := c.Commit(); err != nil {
			return err
		}
		var challenge [64]byte
		if err := c.SqueezeExternal(challenge[:]); err != nil {
			return err
		}
		var sig [64]byte
		if err := c.AbsorbNBytes(sig[:]); err != nil {
			return err
		}
		if err := verifier.Verify(ctx, challenge, "", string(fragment), sig); err != nil {
			return fmt.Errorf("%w: %v", ddml.ErrSignatureInvalid, err)
		}
		return nil
	default:
		return &ddml.UnknownVariantError{Kind: "IdentityKind", Tag: tag}
	}
}
