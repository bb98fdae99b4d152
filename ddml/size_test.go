package ddml

import "testing"

// TestSizeRoundTrip is testable property 8: encoding then decoding a Size
// recovers the original value, and the encoded length matches the formula
// (1 length byte plus the minimal big-endian representation).
func TestSizeRoundTrip(t *testing.T) {
	values := []uint64{0, 1, 255, 256, 65535, 65536, 1 << 32, 1<<64 - 1}

	for _, v := range values {
		n := sizeofSize(v)
		buf := make([]byte, n)
		encodeSize(buf, v)

		got, err := decodeSize(buf[0], buf[1:])
		if err != nil {
			t.Fatalf("decodeSize(%d): %v", v, err)
		}
		if got != v {
			t.Fatalf("round trip mismatch: encoded %d, decoded %d", v, got)
		}

		wantLen := 1
		for x := v; x > 0; x >>= 8 {
			wantLen++
		}
		if n != wantLen {
			t.Fatalf("sizeofSize(%d) = %d, want %d", v, n, wantLen)
		}
	}
}

func TestSizeZeroEncodesAsSingleByte(t *testing.T) {
	buf := make([]byte, sizeofSize(0))
	encodeSize(buf, 0)
	if len(buf) != 1 || buf[0] != 0x00 {
		t.Fatalf("encodeSize(0) = %v, want [0x00]", buf)
	}
}

func TestDecodeSizeRejectsOversizedLengthByte(t *testing.T) {
	if _, err := decodeSize(9, make([]byte, 9)); err == nil {
		t.Fatal("decodeSize accepted a length byte > 8")
	}
}

func TestDecodeSizeRejectsTruncatedValue(t *testing.T) {
	if _, err := decodeSize(4, []byte{1, 2}); err == nil {
		t.Fatal("decodeSize accepted fewer value bytes than the length byte promised")
	}
}
