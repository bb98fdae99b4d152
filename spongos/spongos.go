// Package spongos implements the duplex sponge construction that underlies
// the DDML codec: a single evolving permutation state that simultaneously
// serves as a MAC accumulator, a stream cipher, and a key-derivation
// function, depending on which operation (absorb/encrypt/decrypt/squeeze) is
// applied to it.
package spongos

import (
	"crypto/subtle"

	"github.com/streamwire/streams/hazmat/keccak"
	"github.com/streamwire/streams/internal/mem"
)

// StateSize is the width of the permutation state in bytes (Keccak-f[1600]
// operates on a 1600-bit, i.e. 200-byte, state).
const StateSize = 200

// Rate is the width of the outer (rate) portion of the state that absorb,
// mask, and squeeze operate against directly. The remaining StateSize-Rate
// bytes form the inner (capacity) portion, never touched except by the
// permutation itself.
const Rate = 64

// PRP is a pseudorandom permutation operating in place on a fixed-width
// state. [hazmat/keccak.P1600] is the default and only permutation shipped
// by this module; it is expressed as a function type so that all interoperating
// parties are forced to agree on a single named F (see the Spongos type's
// doc comment on interoperability).
type PRP func(state *[StateSize]byte)

// Spongos is a duplex sponge instance. The zero value is not usable; use
// [New] or [NewWithPRP].
//
// All interoperating parties in a channel must use the same PRP. Mixing
// permutations between wrap and unwrap produces undetectable corruption
// rather than an error, since nothing about the wire format names the
// permutation in use.
type Spongos struct {
	s   [StateSize]byte
	pos int
	f   PRP
}

// New returns a Spongos driven by the Keccak-f[1600] permutation.
func New() *Spongos {
	return NewWithPRP(keccak.P1600)
}

// NewWithPRP returns a Spongos driven by an arbitrary permutation. Use this
// only for testing; interoperable channels must all use [New].
func NewWithPRP(f PRP) *Spongos {
	return &Spongos{f: f}
}

// Absorb mixes data into the sponge state. Absorbed bytes are never emitted;
// the caller is responsible for writing them to the wire separately if the
// DDML operator calls for it (as `absorb` does, unlike `mask`).
func (s *Spongos) Absorb(data []byte) {
	for len(data) > 0 {
		w := min(Rate-s.pos, len(data))
		mem.XORInPlace(s.s[s.pos:s.pos+w], data[:w])
		s.pos += w
		data = data[w:]
		if s.pos == Rate {
			s.permute()
		}
	}
}

// Encrypt writes len(plain) bytes to dst such that dst[i] = plain[i] XOR
// outer[i], then replaces outer[i] with plain[i]. This both produces
// ciphertext and absorbs the plaintext, which is what lets `mask` serialize,
// encrypt, and authenticate in one pass. dst and plain must be the same
// length; they may alias.
func (s *Spongos) Encrypt(dst, plain []byte) {
	if len(dst) != len(plain) {
		panic("spongos: Encrypt: dst and plain must be the same length")
	}
	for len(plain) > 0 {
		w := min(Rate-s.pos, len(plain))
		mem.XORAndReplace(dst[:w], plain[:w], s.s[s.pos:s.pos+w])
		s.pos += w
		dst, plain = dst[w:], plain[w:]
		if s.pos == Rate {
			s.permute()
		}
	}
}

// Decrypt writes len(cipher) bytes to dst such that dst[i] = cipher[i] XOR
// outer[i], then replaces outer[i] with dst[i]. This both recovers
// plaintext and absorbs it, mirroring Encrypt for the unwrap side of `mask`.
// dst and cipher must be the same length; they may alias.
func (s *Spongos) Decrypt(dst, cipher []byte) {
	if len(dst) != len(cipher) {
		panic("spongos: Decrypt: dst and cipher must be the same length")
	}
	for len(cipher) > 0 {
		w := min(Rate-s.pos, len(cipher))
		mem.XORAndCopy(dst[:w], cipher[:w], s.s[s.pos:s.pos+w])
		s.pos += w
		dst, cipher = dst[w:], cipher[w:]
		if s.pos == Rate {
			s.permute()
		}
	}
}

// Squeeze derives len(out) pseudorandom bytes from the sponge state. It
// implicitly commits any pending absorbed/masked data first, so callers need
// not call Commit before Squeeze.
func (s *Spongos) Squeeze(out []byte) {
	s.Commit()
	for len(out) > 0 {
		if s.pos == Rate {
			s.permute()
		}
		n := copy(out, s.s[s.pos:Rate])
		s.pos += n
		out = out[n:]
	}
}

// Commit applies the permutation to mix any pending outer-portion bytes into
// the inner state and resets the outer cursor. It is a no-op if nothing has
// been absorbed, masked, or partially squeezed since the last Commit.
func (s *Spongos) Commit() {
	if s.pos > 0 {
		s.permute()
	}
}

// Fork returns an independent copy of the sponge state. Mutating the fork
// (via a DDML `fork` block) has no effect on the receiver; the receiver must
// be re-synchronized explicitly (by re-running the forked operations, or by
// discarding the fork) if the caller wants its effects reflected.
func (s *Spongos) Fork() *Spongos {
	clone := *s
	return &clone
}

// Equal reports whether two sponge states are bitwise identical, including
// the outer cursor position. It runs in constant time with respect to the
// state contents (but not the cursor, which is not secret).
func (s *Spongos) Equal(other *Spongos) bool {
	return s.pos == other.pos && subtle.ConstantTimeCompare(s.s[:], other.s[:]) == 1
}

// Hash derives len(out) bytes from data using a fresh Spongos: absorb(data),
// squeeze(out). It is used for the 16-byte TopicHash and anywhere else the
// codec needs a one-shot sponge digest outside of a Context's running state.
func Hash(data []byte, out []byte) {
	s := New()
	s.Absorb(data)
	s.Squeeze(out)
}

func (s *Spongos) permute() {
	s.f(&s.s)
	s.pos = 0
}
