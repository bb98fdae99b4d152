// Package ddml implements the Data Description Markup Language: a
// declarative binary codec whose commands drive a Spongos duplex sponge in
// lockstep with stream serialization. The same command sequence, applied
// under three different roles, computes a message's encoded length
// (sizeof), writes it to a stream (wrap), or reads it back (unwrap) while
// verifying every committed and masked byte.
package ddml

import (
	"crypto/ed25519"
	"crypto/subtle"
	"fmt"

	"github.com/streamwire/streams/ddml/io"
	"github.com/streamwire/streams/spongos"
)

// Role selects which of the three DDML interpretations a Context performs.
type Role int

const (
	// RoleSizeof computes the wire length a command sequence will occupy,
	// without touching a Spongos or stream.
	RoleSizeof Role = iota
	// RoleWrap writes a command sequence to an OStream, mixing absorbed and
	// masked bytes into a Spongos as it goes.
	RoleWrap
	// RoleUnwrap reads a command sequence from an IStream, mixing the same
	// bytes into a Spongos and verifying committed values.
	RoleUnwrap
)

// Context is the single interpreter for all three DDML roles. A command
// sequence is written once, as a function operating on *Context, and
// produces the correct behavior under any Role: encode-direction commands
// read through pointer and slice arguments, decode-direction commands write
// through them. Only the X25519 and Ed25519 commands have genuinely
// divergent wrap/unwrap control flow and so are split into explicit method
// pairs.
type Context struct {
	Role    Role
	Spongos *spongos.Spongos
	OS      io.OStream
	IS      io.IStream

	size int // accumulated byte count, RoleSizeof only
}

// NewSizeofContext returns a Context that only accumulates a byte count.
func NewSizeofContext() *Context {
	return &Context{Role: RoleSizeof}
}

// NewWrapContext returns a Context that writes into os, absorbing and
// masking through s as commands are run.
func NewWrapContext(s *spongos.Spongos, os io.OStream) *Context {
	return &Context{Role: RoleWrap, Spongos: s, OS: os}
}

// NewUnwrapContext returns a Context that reads from is, absorbing and
// masking through s as commands are run.
func NewUnwrapContext(s *spongos.Spongos, is io.IStream) *Context {
	return &Context{Role: RoleUnwrap, Spongos: s, IS: is}
}

// Size returns the accumulated byte count. Only meaningful under
// RoleSizeof.
func (c *Context) Size() int { return c.size }

// AbsorbU8 absorbs a single byte, reading *x under RoleWrap and writing it
// under RoleUnwrap.
func (c *Context) AbsorbU8(x *byte) error {
	switch c.Role {
	case RoleSizeof:
		c.size++
		return nil
	case RoleWrap:
		buf, err := c.OS.TryAdvance(1)
		if err != nil {
			return err
		}
		buf[0] = *x
		c.Spongos.Absorb(buf)
		return nil
	default: // RoleUnwrap
		buf, err := c.IS.TryAdvance(1)
		if err != nil {
			return err
		}
		*x = buf[0]
		c.Spongos.Absorb(buf)
		return nil
	}
}

// AbsorbNBytes absorbs exactly len(data) bytes. Under RoleWrap, data is the
// source; under RoleUnwrap, data is the destination the wire bytes are
// copied into before absorption.
func (c *Context) AbsorbNBytes(data []byte) error {
	switch c.Role {
	case RoleSizeof:
		c.size += len(data)
		return nil
	case RoleWrap:
		buf, err := c.OS.TryAdvance(len(data))
		if err != nil {
			return err
		}
		copy(buf, data)
		c.Spongos.Absorb(buf)
		return nil
	default: // RoleUnwrap
		buf, err := c.IS.TryAdvance(len(data))
		if err != nil {
			return err
		}
		copy(data, buf)
		c.Spongos.Absorb(buf)
		return nil
	}
}

// AbsorbSize absorbs a variable-length Size, reading *n under RoleWrap and
// writing it under RoleUnwrap.
func (c *Context) AbsorbSize(n *Size) error {
	switch c.Role {
	case RoleSizeof:
		c.size += sizeofSize(uint64(*n))
		return nil
	case RoleWrap:
		buf, err := c.OS.TryAdvance(sizeofSize(uint64(*n)))
		if err != nil {
			return err
		}
		encodeSize(buf, uint64(*n))
		c.Spongos.Absorb(buf)
		return nil
	default: // RoleUnwrap
		lb, err := c.IS.TryAdvance(1)
		if err != nil {
			return err
		}
		k := int(lb[0])
		if k > 8 {
			return &GuardError{Err: ErrReservedBitsSet}
		}
		vb, err := c.IS.TryAdvance(k)
		if err != nil {
			return err
		}
		val, err := decodeSize(lb[0], vb)
		if err != nil {
			return err
		}
		*n = Size(val)
		c.Spongos.Absorb(lb)
		c.Spongos.Absorb(vb)
		return nil
	}
}

// AbsorbBytes absorbs a Size-prefixed, variable-length byte string (the
// `Bytes` DDML type). Under RoleWrap, *data supplies both the length and
// the content written to the wire. Under RoleUnwrap, *data is replaced with
// a freshly allocated slice holding the bytes read from the wire.
func (c *Context) AbsorbBytes(data *[]byte) error {
	switch c.Role {
	case RoleSizeof:
		c.size += sizeofSize(uint64(len(*data))) + len(*data)
		return nil
	case RoleWrap:
		n := Size(len(*data))
		if err := c.AbsorbSize(&n); err != nil {
			return err
		}
		return c.AbsorbNBytes(*data)
	default: // RoleUnwrap
		var n Size
		if err := c.AbsorbSize(&n); err != nil {
			return err
		}
		buf := make([]byte, n)
		if err := c.AbsorbNBytes(buf); err != nil {
			return err
		}
		*data = buf
		return nil
	}
}

// AbsorbMaybeNBytes absorbs a one-byte presence flag followed, when
// present, by exactly len(data) bytes (the `Maybe<NBytes<N>>` DDML type).
// Under RoleWrap, *present and data supply the value written. Under
// RoleUnwrap, *present and data receive the decoded value; callers must
// still size data to N bytes before calling, since Go cannot resize an
// unwrap destination slice through a pointer the way AbsorbBytes does.
func (c *Context) AbsorbMaybeNBytes(present *bool, data []byte) error {
	var flag byte
	if c.Role != RoleUnwrap {
		if *present {
			flag = 1
		}
	}
	if err := c.AbsorbU8(&flag); err != nil {
		return err
	}
	if c.Role == RoleUnwrap {
		if flag > 1 {
			return &UnknownVariantError{Kind: "Maybe", Tag: flag}
		}
		*present = flag == 1
	}
	if flag == 0 {
		return nil
	}
	return c.AbsorbNBytes(data)
}

// AbsorbExternalNBytes absorbs len(data) bytes into the Spongos state
// without ever touching the wire. Both parties must already know the value
// (e.g. a key derived out of band) and absorb it identically.
func (c *Context) AbsorbExternalNBytes(data []byte) error {
	if c.Role == RoleSizeof {
		return nil
	}
	c.Spongos.Absorb(data)
	return nil
}

// MaskNBytes encrypts len(data) bytes under RoleWrap (data is the
// plaintext source, ciphertext goes to the wire) or decrypts them under
// RoleUnwrap (data is the plaintext destination, ciphertext comes from the
// wire).
func (c *Context) MaskNBytes(data []byte) error {
	switch c.Role {
	case RoleSizeof:
		c.size += len(data)
		return nil
	case RoleWrap:
		buf, err := c.OS.TryAdvance(len(data))
		if err != nil {
			return err
		}
		c.Spongos.Encrypt(buf, data)
		return nil
	default: // RoleUnwrap
		buf, err := c.IS.TryAdvance(len(data))
		if err != nil {
			return err
		}
		c.Spongos.Decrypt(data, buf)
		return nil
	}
}

// MaskU8 encrypts or decrypts a single byte the same way MaskNBytes does.
func (c *Context) MaskU8(x *byte) error {
	buf := []byte{*x}
	if err := c.MaskNBytes(buf); err != nil {
		return err
	}
	*x = buf[0]
	return nil
}

// MaskSize masks a variable-length Size the same way AbsorbSize absorbs
// one, but under encryption: the length-prefix byte and value bytes are
// both passed through Mask instead of Absorb.
func (c *Context) MaskSize(n *Size) error {
	switch c.Role {
	case RoleSizeof:
		c.size += sizeofSize(uint64(*n))
		return nil
	case RoleWrap:
		plain := make([]byte, sizeofSize(uint64(*n)))
		encodeSize(plain, uint64(*n))
		return c.MaskNBytes(plain)
	default: // RoleUnwrap
		var lb [1]byte
		if err := c.MaskNBytes(lb[:]); err != nil {
			return err
		}
		k := int(lb[0])
		if k > 8 {
			return &GuardError{Err: ErrReservedBitsSet}
		}
		vb := make([]byte, k)
		if err := c.MaskNBytes(vb); err != nil {
			return err
		}
		val, err := decodeSize(lb[0], vb)
		if err != nil {
			return err
		}
		*n = Size(val)
		return nil
	}
}

// MaskBytes is AbsorbBytes's masked counterpart: a Size-prefixed,
// variable-length byte string, encrypted end to end.
func (c *Context) MaskBytes(data *[]byte) error {
	switch c.Role {
	case RoleSizeof:
		c.size += sizeofSize(uint64(len(*data))) + len(*data)
		return nil
	case RoleWrap:
		n := Size(len(*data))
		if err := c.MaskSize(&n); err != nil {
			return err
		}
		return c.MaskNBytes(*data)
	default: // RoleUnwrap
		var n Size
		if err := c.MaskSize(&n); err != nil {
			return err
		}
		buf := make([]byte, n)
		if err := c.MaskNBytes(buf); err != nil {
			return err
		}
		*data = buf
		return nil
	}
}

// SkipNBytes copies len(data) bytes to or from the wire without any effect
// on the Spongos state.
func (c *Context) SkipNBytes(data []byte) error {
	switch c.Role {
	case RoleSizeof:
		c.size += len(data)
		return nil
	case RoleWrap:
		buf, err := c.OS.TryAdvance(len(data))
		if err != nil {
			return err
		}
		copy(buf, data)
		return nil
	default: // RoleUnwrap
		buf, err := c.IS.TryAdvance(len(data))
		if err != nil {
			return err
		}
		copy(data, buf)
		return nil
	}
}

// SkipSize copies a variable-length Size to or from the wire without any
// effect on the Spongos state.
func (c *Context) SkipSize(n *Size) error {
	switch c.Role {
	case RoleSizeof:
		c.size += sizeofSize(uint64(*n))
		return nil
	case RoleWrap:
		buf, err := c.OS.TryAdvance(sizeofSize(uint64(*n)))
		if err != nil {
			return err
		}
		encodeSize(buf, uint64(*n))
		return nil
	default: // RoleUnwrap
		lb, err := c.IS.TryAdvance(1)
		if err != nil {
			return err
		}
		k := int(lb[0])
		if k > 8 {
			return &GuardError{Err: ErrReservedBitsSet}
		}
		vb, err := c.IS.TryAdvance(k)
		if err != nil {
			return err
		}
		val, err := decodeSize(lb[0], vb)
		if err != nil {
			return err
		}
		*n = Size(val)
		return nil
	}
}

// SqueezeExternal squeezes len(out) bytes of keystream from the Spongos
// into out without reading or writing the wire. Used to derive values (e.g.
// session keys) that are never transmitted directly.
func (c *Context) SqueezeExternal(out []byte) error {
	if c.Role == RoleSizeof {
		return nil
	}
	c.Spongos.Squeeze(out)
	return nil
}

// SqueezeMAC squeezes an n-byte authentication tag. Under RoleWrap the tag
// is written to the wire; under RoleUnwrap it is compared, in constant
// time, against the tag read from the wire, failing with ErrMacMismatch on
// any difference.
func (c *Context) SqueezeMAC(n int) error {
	switch c.Role {
	case RoleSizeof:
		c.size += n
		return nil
	case RoleWrap:
		buf, err := c.OS.TryAdvance(n)
		if err != nil {
			return err
		}
		c.Spongos.Squeeze(buf)
		return nil
	default: // RoleUnwrap
		wire, err := c.IS.TryAdvance(n)
		if err != nil {
			return err
		}
		got := make([]byte, n)
		c.Spongos.Squeeze(got)
		if subtle.ConstantTimeCompare(got, wire) != 1 {
			return ErrMacMismatch
		}
		return nil
	}
}

// Commit finalizes any partial Spongos block so that a subsequent Fork or
// Join starts from a block boundary. It is a no-op under RoleSizeof.
func (c *Context) Commit() error {
	if c.Role != RoleSizeof {
		c.Spongos.Commit()
	}
	return nil
}

// Guard fails a command sequence with err if cond is false. It has no wire
// or Spongos effect under any role.
func (c *Context) Guard(cond bool, err error) error {
	if !cond {
		return &GuardError{Err: err}
	}
	return nil
}

// Fork runs body against a Context sharing this Context's stream but a
// forked (copied) Spongos, so that absorbs and masks inside body do not
// affect this Context's Spongos once Fork returns. Used to embed a MAC or
// signature whose transcript must be isolated from the enclosing one.
func (c *Context) Fork(body func(*Context) error) error {
	inner := &Context{Role: c.Role, OS: c.OS, IS: c.IS}
	if c.Role != RoleSizeof {
		inner.Spongos = c.Spongos.Fork()
	}
	if err := body(inner); err != nil {
		return err
	}
	if c.Role == RoleSizeof {
		c.size += inner.size
	}
	return nil
}

// Join replaces c's own Spongos with a fresh fork of the one stored under
// link, then absorbs link into it, binding this message's transcript to
// its predecessor. Unlike Fork, Join mutates c itself rather than scoping
// its effect to a sub-script: every command run on c after Join operates
// on the joined Spongos for the rest of the message. Under RoleSizeof, a
// fresh empty Spongos is substituted regardless of store contents, since
// sizeof only needs byte counts, not real key material. Under RoleWrap and
// RoleUnwrap, a missing link is reported via ErrExternalResolutionFailed;
// callers that must tolerate a missing link (e.g. resuming a branch this
// party has not seen) need to catch that error above this layer.
func (c *Context) Join(store LinkStore, link []byte) error {
	switch c.Role {
	case RoleSizeof:
		c.Spongos = spongos.New()
	default:
		found, _, ok := store.Lookup(link)
		if !ok {
			return fmt.Errorf("ddml: join: %w", ErrExternalResolutionFailed)
		}
		c.Spongos = found.Fork()
	}
	c.Spongos.Absorb(link)
	return nil
}

// ed25519ChallengeSize is the number of bytes squeezed from the Spongos to
// form the message that Ed25519Sign/Ed25519Verify actually sign, binding
// the signature to the entire transcript absorbed and masked so far rather
// than to a hash computed independently of it.
const ed25519ChallengeSize = 64

// Ed25519Sign signs the Spongos transcript squeezed so far with priv and
// writes the signature to the wire. Valid only under RoleWrap (and
// RoleSizeof, to account for the signature's fixed wire length).
func (c *Context) Ed25519Sign(priv ed25519.PrivateKey) error {
	if c.Role == RoleSizeof {
		c.size += ed25519.SignatureSize
		return nil
	}
	if c.Role != RoleWrap {
		return fmt.Errorf("ddml: Ed25519Sign called outside RoleWrap")
	}
	var challenge [ed25519ChallengeSize]byte
	c.Spongos.Squeeze(challenge[:])
	sig := ed25519.Sign(priv, challenge[:])
	buf, err := c.OS.TryAdvance(len(sig))
	if err != nil {
		return err
	}
	copy(buf, sig)
	return nil
}

// Ed25519Verify reads a signature from the wire and verifies it against the
// Spongos transcript squeezed so far using pub, failing with
// ErrSignatureInvalid on mismatch. Valid only under RoleUnwrap (and
// RoleSizeof).
func (c *Context) Ed25519Verify(pub ed25519.PublicKey) error {
	if c.Role == RoleSizeof {
		c.size += ed25519.SignatureSize
		return nil
	}
	if c.Role != RoleUnwrap {
		return fmt.Errorf("ddml: Ed25519Verify called outside RoleUnwrap")
	}
	var challenge [ed25519ChallengeSize]byte
	c.Spongos.Squeeze(challenge[:])
	sig, err := c.IS.TryAdvance(ed25519.SignatureSize)
	if err != nil {
		return err
	}
	if !ed25519.Verify(pub, challenge[:], sig) {
		return ErrSignatureInvalid
	}
	return nil
}
