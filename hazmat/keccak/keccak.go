// Package keccak provides a pure Go implementation of the Keccak-f[1600]
// permutation, the full 24-round variant specified by FIPS 202. It is the
// permutation underlying the Spongos duplex construction.
package keccak

import "math/bits"

// lanes is the number of 64-bit lanes in the Keccak-f[1600] state (5x5).
const lanes = 25

// rc holds the 24 round constants for Keccak-f[1600].
var rc = [24]uint64{
	0x0000000000000001, 0x0000000000008082, 0x800000000000808A, 0x8000000080008000,
	0x000000000000808B, 0x0000000080000001, 0x8000000080008081, 0x8000000000008009,
	0x000000000000008A, 0x0000000000000088, 0x0000000080008009, 0x000000008000000A,
	0x000000008000808B, 0x800000000000008B, 0x8000000000008089, 0x8000000000008003,
	0x8000000000008002, 0x8000000000000080, 0x000000000000800A, 0x800000008000000A,
	0x8000000080008081, 0x8000000000008080, 0x0000000080000001, 0x8000000080008008,
}

// rotc holds the rotation offsets for the rho step, indexed the same way as
// the state lanes (row-major, x + 5*y).
var rotc = [lanes]int{
	0, 1, 62, 28, 27,
	36, 44, 6, 55, 20,
	3, 10, 43, 25, 39,
	41, 45, 15, 21, 8,
	18, 2, 61, 56, 14,
}

// piLane maps source lane index i=(x+5y) to destination lane index
// (y + 5*((2x+3y) mod 5)) for the pi step.
var piLane = [lanes]int{
	0, 10, 20, 5, 15,
	16, 1, 11, 21, 6,
	7, 17, 2, 12, 22,
	23, 8, 18, 3, 13,
	14, 24, 9, 19, 4,
}

// P1600 applies the Keccak-f[1600] permutation (24 rounds) to state in place.
func P1600(state *[200]byte) {
	var a [lanes]uint64
	for i := range a {
		a[i] = laneFromBytes(state[i*8 : i*8+8])
	}

	f1600(&a)

	for i := range a {
		laneToBytes(state[i*8:i*8+8], a[i])
	}
}

func laneFromBytes(b []byte) uint64 {
	return uint64(b[0]) | uint64(b[1])<<8 | uint64(b[2])<<16 | uint64(b[3])<<24 |
		uint64(b[4])<<32 | uint64(b[5])<<40 | uint64(b[6])<<48 | uint64(b[7])<<56
}

func laneToBytes(b []byte, x uint64) {
	b[0] = byte(x)
	b[1] = byte(x >> 8)
	b[2] = byte(x >> 16)
	b[3] = byte(x >> 24)
	b[4] = byte(x >> 32)
	b[5] = byte(x >> 40)
	b[6] = byte(x >> 48)
	b[7] = byte(x >> 56)
}

// f1600 runs the 24-round Keccak-f[1600] round function over a lane-major state.
func f1600(a *[lanes]uint64) {
	var b [lanes]uint64
	var c [5]uint64
	var d [5]uint64

	for round := 0; round < 24; round++ {
		// theta
		for x := 0; x < 5; x++ {
			c[x] = a[x] ^ a[x+5] ^ a[x+10] ^ a[x+15] ^ a[x+20]
		}
		for x := 0; x < 5; x++ {
			d[x] = c[(x+4)%5] ^ bits.RotateLeft64(c[(x+1)%5], 1)
		}
		for i := 0; i < lanes; i++ {
			a[i] ^= d[i%5]
		}

		// rho + pi
		for i := 0; i < lanes; i++ {
			b[piLane[i]] = bits.RotateLeft64(a[i], rotc[i])
		}

		// chi
		for y := 0; y < 5; y++ {
			row := y * 5
			var r [5]uint64
			copy(r[:], b[row:row+5])
			for x := 0; x < 5; x++ {
				a[row+x] = r[x] ^ (^r[(x+1)%5] & r[(x+2)%5])
			}
		}

		// iota
		a[0] ^= rc[round]
	}
}
