package message

import (
	"crypto/ed25519"
	"fmt"

	"github.com/streamwire/streams"
	"github.com/streamwire/streams/ddml"
	"github.com/streamwire/streams/id"
)

// keyloadPskBranchDropLen is the number of bytes a PSK branch occupies on the
// wire (the 32-byte masked session key), drained verbatim by an unwrapper
// that lacks the PSK.
const keyloadPskBranchDropLen = streams.SessionKeySize

// keyloadXBranchDropLen is the number of bytes an X25519 branch occupies on
// the wire (32-byte ephemeral public key plus 32-byte masked session key),
// drained verbatim by an unwrapper that lacks the recipient secret.
const keyloadXBranchDropLen = 32 + streams.SessionKeySize

// PskStore resolves a PSK recipient identifier to its pre-shared key
// value.
type PskStore interface {
	Lookup(recipient id.Identifier) (psk [32]byte, ok bool)
}

// KeSkStore resolves an X25519 recipient identifier to the local party's
// static X25519 secret for that recipient slot.
type KeSkStore interface {
	Lookup(recipient id.Identifier) (secret [32]byte, ok bool)
}

// KeyloadRecipient is one entry of a Keyload's recipient list on the wrap
// side: an identifier plus the material needed to encapsulate the session
// key for it. Exactly one of Psk or X25519Pub is meaningful, selected by
// Identifier.Kind.
type KeyloadRecipient struct {
	Identifier id.Identifier
	Psk        [32]byte // valid when Identifier.Kind == id.KindPskID
	X25519Pub  [32]byte // valid when Identifier.Kind == id.KindEd25519PublicKey
}

// KeyloadWrapContent is the author-side view of a Keyload: the fresh
// session key to distribute, the recipients it is encapsulated for, and
// the signing key binding the whole recipient list together.
type KeyloadWrapContent struct {
	PrevLink      []byte
	Nonce         [streams.NonceSize]byte
	SessionKey    [streams.SessionKeySize]byte
	Recipients    []KeyloadRecipient
	AuthorKeypair ed25519.PrivateKey
}

// Codec runs the Keyload wrap/sizeof script against c.
func (k *KeyloadWrapContent) Codec(c *ddml.Context, linkStore ddml.LinkStore) error {
	if err := c.Join(linkStore, k.PrevLink); err != nil {
		return err
	}
	if err := c.AbsorbNBytes(k.Nonce[:]); err != nil {
		return err
	}

	var idHash [64]byte
	if err := c.Fork(func(inner *ddml.Context) error {
		n := ddml.Size(len(k.Recipients))
		if err := inner.AbsorbSize(&n); err != nil {
			return err
		}
		for i := range k.Recipients {
			r := &k.Recipients[i]
			if err := r.Identifier.Codec(inner); err != nil {
				return err
			}
			if err := inner.Fork(func(branch *ddml.Context) error {
				return wrapRecipientBranch(branch, r, k.SessionKey)
			}); err != nil {
				return err
			}
		}
		if err := inner.Commit(); err != nil {
			return err
		}
		return inner.SqueezeExternal(idHash[:])
	}); err != nil {
		return err
	}

	if err := c.AbsorbExternalNBytes(k.SessionKey[:]); err != nil {
		return err
	}

	if err := c.Fork(func(inner *ddml.Context) error {
		if err := inner.AbsorbNBytes(idHash[:]); err != nil {
			return err
		}
		return inner.Ed25519Sign(k.AuthorKeypair)
	}); err != nil {
		return err
	}

	return c.Commit()
}

func wrapRecipientBranch(branch *ddml.Context, r *KeyloadRecipient, sessionKey [32]byte) error {
	switch r.Identifier.Kind {
	case id.KindPskID:
		if err := branch.AbsorbExternalNBytes(r.Psk[:]); err != nil {
			return err
		}
		if err := branch.Commit(); err != nil {
			return err
		}
		return branch.MaskNBytes(sessionKey[:])
	case id.KindEd25519PublicKey:
		var dh [32]byte
		if err := branch.X25519Wrap(&r.X25519Pub, &dh); err != nil {
			return err
		}
		return branch.MaskNBytes(sessionKey[:])
	default:
		return fmt.Errorf("message: keyload: unsupported recipient kind %v", r.Identifier.Kind)
	}
}

// KeyloadUnwrapContent is the recipient-side view of a Keyload. After
// Codec returns successfully, KeyIDs lists every recipient identifier that
// appeared on the wire (found locally or not), and Key is non-nil iff this
// party's own material decrypted a branch.
//
// A non-nil Key is not, by itself, proof that the message is legitimate:
// nothing above this layer enforces "I am addressed" before trusting
// SignedPackets joined to this keyload, matching the behavior of the
// system this codec is modeled on. Callers must perform that check
// themselves.
type KeyloadUnwrapContent struct {
	Link   []byte
	Nonce  [streams.NonceSize]byte
	KeyIDs []id.Identifier
	Key    *[32]byte
}

// Codec runs the Keyload unwrap script against c, resolving recipient
// material through psks and kesks and verifying the author's signature
// with authorPub if (and only if) a session key was recovered.
func (k *KeyloadUnwrapContent) Codec(c *ddml.Context, linkStore ddml.LinkStore, psks PskStore, kesks KeSkStore, authorPub ed25519.PublicKey) error {
	if err := c.Join(linkStore, k.Link); err != nil {
		return err
	}
	if err := c.AbsorbNBytes(k.Nonce[:]); err != nil {
		return err
	}

	var idHash [64]byte
	var sessionKey [32]byte
	var recovered bool

	if err := c.Fork(func(inner *ddml.Context) error {
		var n ddml.Size
		if err := inner.AbsorbSize(&n); err != nil {
			return err
		}
		for i := uint64(0); i < uint64(n); i++ {
			var recID id.Identifier
			if err := recID.Codec(inner); err != nil {
				return err
			}
			k.KeyIDs = append(k.KeyIDs, recID)

			if err := inner.Fork(func(branch *ddml.Context) error {
				key, ok, err := unwrapRecipientBranch(branch, recID, psks, kesks)
				if err != nil {
					return err
				}
				if ok {
					sessionKey, recovered = key, true
				}
				return nil
			}); err != nil {
				return err
			}
		}
		if err := inner.Commit(); err != nil {
			return err
		}
		return inner.SqueezeExternal(idHash[:])
	}); err != nil {
		return err
	}

	if err := c.AbsorbExternalNBytes(sessionKey[:]); err != nil {
		return err
	}

	if err := c.Fork(func(inner *ddml.Context) error {
		if err := inner.AbsorbNBytes(idHash[:]); err != nil {
			return err
		}
		if !recovered {
			// The signature is always present on the wire; drain it to
			// stay aligned without treating "no key" as a forgery.
			_, err := inner.IS.TryAdvance(ed25519.SignatureSize)
			return err
		}
		return inner.Ed25519Verify(authorPub)
	}); err != nil {
		return err
	}

	if err := c.Commit(); err != nil {
		return err
	}

	if recovered {
		key := sessionKey
		k.Key = &key
	}
	return nil
}

// unwrapRecipientBranch attempts to decrypt one recipient branch, draining
// its bytes verbatim (without touching branch.Spongos further) when the
// local stores don't hold the needed material.
func unwrapRecipientBranch(branch *ddml.Context, recID id.Identifier, psks PskStore, kesks KeSkStore) (key [32]byte, ok bool, err error) {
	switch recID.Kind {
	case id.KindPskID:
		psk, found := psks.Lookup(recID)
		if !found {
			drop := make([]byte, keyloadPskBranchDropLen)
			return key, false, branch.SkipNBytes(drop)
		}
		if err := branch.AbsorbExternalNBytes(psk[:]); err != nil {
			return key, false, err
		}
		if err := branch.Commit(); err != nil {
			return key, false, err
		}
		if err := branch.MaskNBytes(key[:]); err != nil {
			return key, false, err
		}
		return key, true, nil
	case id.KindEd25519PublicKey:
		secret, found := kesks.Lookup(recID)
		if !found {
			drop := make([]byte, keyloadXBranchDropLen)
			return key, false, branch.SkipNBytes(drop)
		}
		var dh [32]byte
		if err := branch.X25519Unwrap(&secret, &dh); err != nil {
			return key, false, err
		}
		if err := branch.MaskNBytes(key[:]); err != nil {
			return key, false, err
		}
		return key, true, nil
	default:
		return key, false, &ddml.UnknownVariantError{Kind: "Identifier", Tag: byte(recID.Kind)}
	}
}
