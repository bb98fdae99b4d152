package spongos

import (
	"bytes"
	"testing"
)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	plain := []byte("the quick brown fox jumps over the lazy dog, twice over")

	enc := New()
	enc.Absorb([]byte("shared-key"))
	ct := make([]byte, len(plain))
	enc.Encrypt(ct, plain)

	dec := New()
	dec.Absorb([]byte("shared-key"))
	pt := make([]byte, len(ct))
	dec.Decrypt(pt, ct)

	if !bytes.Equal(pt, plain) {
		t.Fatalf("round trip mismatch:\n got  %q\n want %q", pt, plain)
	}
}

func TestSqueezeDeterministic(t *testing.T) {
	a := New()
	a.Absorb([]byte("input"))
	var outA [64]byte
	a.Squeeze(outA[:])

	b := New()
	b.Absorb([]byte("input"))
	var outB [64]byte
	b.Squeeze(outB[:])

	if outA != outB {
		t.Fatal("squeeze is not deterministic for identical absorb history")
	}
}

func TestSqueezeDiffersOnDifferentInput(t *testing.T) {
	a := New()
	a.Absorb([]byte("input-a"))
	var outA [32]byte
	a.Squeeze(outA[:])

	b := New()
	b.Absorb([]byte("input-b"))
	var outB [32]byte
	b.Squeeze(outB[:])

	if bytes.Equal(outA[:], outB[:]) {
		t.Fatal("squeeze produced identical output for different absorbed input")
	}
}

// TestForkIsolation is property 7 from the spec: a sponge absorbing X then
// forking and absorbing Y inside the fork has, after fork exit, the same
// state as one that only absorbed X.
func TestForkIsolation(t *testing.T) {
	base := New()
	base.Absorb([]byte("X"))

	forked := base.Fork()
	forked.Absorb([]byte("Y"))

	reference := New()
	reference.Absorb([]byte("X"))

	if !base.Equal(reference) {
		t.Fatal("forking and mutating the fork affected the parent sponge")
	}
	if base.Equal(forked) {
		t.Fatal("fork diverged from parent but Equal still reports them identical")
	}
}

func TestSqueezeAcrossMultipleBlocks(t *testing.T) {
	s := New()
	s.Absorb(bytes.Repeat([]byte{0xAB}, 200))

	out := make([]byte, Rate*3+7) // force several internal permute calls
	s.Squeeze(out)

	allZero := true
	for _, b := range out {
		if b != 0 {
			allZero = false
			break
		}
	}
	if allZero {
		t.Fatal("squeeze across multiple blocks produced all-zero output")
	}
}

func TestCommitIsIdempotentWhenClean(t *testing.T) {
	a := New()
	a.Absorb([]byte("hello"))
	a.Commit()

	b := a.Fork()
	b.Commit() // no pending data; must be a no-op

	if !a.Equal(b) {
		t.Fatal("Commit on a clean (pos==0) spongos changed its state")
	}
}

func TestEqualDetectsCursorDifference(t *testing.T) {
	a := New()
	b := New()
	a.Absorb([]byte("x"))

	if a.Equal(b) {
		t.Fatal("spongos with different outer cursors compared equal")
	}
}

func TestHashIsDeterministicAndFixedLength(t *testing.T) {
	var h1, h2 [16]byte
	Hash([]byte("topic-name"), h1[:])
	Hash([]byte("topic-name"), h2[:])

	if h1 != h2 {
		t.Fatal("Hash is not deterministic")
	}

	var h3 [16]byte
	Hash([]byte("other-topic"), h3[:])
	if h1 == h3 {
		t.Fatal("Hash collided across distinct inputs (extremely unlikely, check wiring)")
	}
}
