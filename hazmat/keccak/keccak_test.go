package keccak

import (
	"encoding/hex"
	"testing"
)

func TestP1600KnownAnswer(t *testing.T) {
	var state [200]byte
	P1600(&state)

	want := "e7dde140798f25f18a47c033f9ccd584eea95aa61e2698d54d49806f304715bd57d05362054e288bd46f8e7f2da497ffc44746a4a0e5fe90762e19d60cda5b8c9c05191bf7a630ad64fc8fd0b75a933035d617233fa95aeb0321710d26e6a6a95f55cfdb167ca58126c84703cd31b8439f56a5111a2ff20161aed9215a63e505f270c98cf2febe641166c47b95703661cb0ed04f555a7cb8c832cf1c8ae83e8c14263aae22790c94e409c5a224f94118c26504e72635f5163ba1307fe944f67549a2ec5c7bfff1ea"
	if got := hex.EncodeToString(state[:]); got != want {
		t.Errorf("P1600(0*200) = %s, want = %s", got, want)
	}
}

func TestP1600Deterministic(t *testing.T) {
	var a, b [200]byte
	P1600(&a)
	P1600(&b)

	if a != b {
		t.Fatal("P1600 is not deterministic on the zero state")
	}
}

func TestP1600ChangesState(t *testing.T) {
	var zero, out [200]byte
	P1600(&out)

	if out == zero {
		t.Fatal("P1600 left the state unchanged")
	}
}

func TestP1600Avalanche(t *testing.T) {
	var a, b [200]byte
	b[0] = 0x01 // flip a single bit of input

	P1600(&a)
	P1600(&b)

	diff := 0
	for i := range a {
		if a[i] != b[i] {
			diff++
		}
	}

	// A single-bit input difference should cascade into most of the output
	// bytes differing; this is a coarse avalanche sanity check, not a
	// statistical test.
	if diff < 100 {
		t.Fatalf("weak diffusion: only %d/200 bytes differ after a 1-bit input change", diff)
	}
}

func TestP1600NotInvolution(t *testing.T) {
	var a [200]byte
	a[0] = 0x42

	first := a
	P1600(&a)
	if a == first {
		t.Fatal("P1600 must not be the identity function")
	}

	second := a
	P1600(&a)
	if a == first {
		t.Fatal("P1600 applied twice restored the input: it behaves as an involution")
	}
	if a == second {
		// Applying P1600 twice from a fixed point would be suspicious, but
		// not impossible; this just documents that repeated application
		// keeps evolving the state for this particular input.
		t.Skip("state reached a fixed point under repeated permutation (unexpected but not fatal)")
	}
}
