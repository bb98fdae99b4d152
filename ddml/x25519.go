package ddml

import (
	"crypto/rand"
	"fmt"

	"golang.org/x/crypto/curve25519"
)

// x25519KeySize is the byte length of an X25519 public key, private scalar,
// or derived shared secret.
const x25519KeySize = 32

// X25519Wrap generates an ephemeral X25519 key pair, writes the ephemeral
// public key to the wire, absorbs it into the Spongos, derives a shared
// secret with remotePub via curve25519 scalar multiplication, and absorbs
// that secret too so a subsequent MaskNBytes call encrypts under it.
// Valid only under RoleWrap (and RoleSizeof, for the ephemeral key's fixed
// wire length).
func (c *Context) X25519Wrap(remotePub *[x25519KeySize]byte, sharedSecret *[x25519KeySize]byte) error {
	if c.Role == RoleSizeof {
		c.size += x25519KeySize
		return nil
	}
	if c.Role != RoleWrap {
		return fmt.Errorf("ddml: X25519Wrap called outside RoleWrap")
	}

	var ephPriv [x25519KeySize]byte
	if _, err := rand.Read(ephPriv[:]); err != nil {
		return fmt.Errorf("ddml: X25519Wrap: %w", err)
	}
	var ephPub [x25519KeySize]byte
	curve25519.ScalarBaseMult(&ephPub, &ephPriv)

	buf, err := c.OS.TryAdvance(x25519KeySize)
	if err != nil {
		return err
	}
	copy(buf, ephPub[:])
	c.Spongos.Absorb(buf)

	secret, err := curve25519.X25519(ephPriv[:], remotePub[:])
	if err != nil {
		return fmt.Errorf("ddml: X25519Wrap: %w", err)
	}
	c.Spongos.Absorb(secret)
	copy(sharedSecret[:], secret)
	return nil
}

// X25519Unwrap reads an ephemeral X25519 public key from the wire, absorbs
// it into the Spongos, and derives a shared secret with it using localPriv.
// Valid only under RoleUnwrap (and RoleSizeof).
func (c *Context) X25519Unwrap(localPriv *[x25519KeySize]byte, sharedSecret *[x25519KeySize]byte) error {
	if c.Role == RoleSizeof {
		c.size += x25519KeySize
		return nil
	}
	if c.Role != RoleUnwrap {
		return fmt.Errorf("ddml: X25519Unwrap called outside RoleUnwrap")
	}

	buf, err := c.IS.TryAdvance(x25519KeySize)
	if err != nil {
		return err
	}
	c.Spongos.Absorb(buf)

	secret, err := curve25519.X25519(localPriv[:], buf)
	if err != nil {
		return fmt.Errorf("ddml: X25519Unwrap: %w", err)
	}
	c.Spongos.Absorb(secret)
	copy(sharedSecret[:], secret)
	return nil
}
