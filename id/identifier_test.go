package id

import (
	"testing"

	"github.com/streamwire/streams/ddml"
	"github.com/streamwire/streams/ddml/io"
	"github.com/streamwire/streams/spongos"
)

func roundTripIdentifier(t *testing.T, want Identifier) Identifier {
	t.Helper()

	sc := ddml.NewSizeofContext()
	wantCopy := want
	if err := wantCopy.Codec(sc); err != nil {
		t.Fatalf("sizeof: %v", err)
	}

	buf := make([]byte, sc.Size())
	wc := ddml.NewWrapContext(spongos.New(), io.NewSliceOStream(buf))
	wantCopy = want
	if err := wantCopy.Codec(wc); err != nil {
		t.Fatalf("wrap: %v", err)
	}

	var got Identifier
	uc := ddml.NewUnwrapContext(spongos.New(), io.NewSliceIStream(buf))
	if err := got.Codec(uc); err != nil {
		t.Fatalf("unwrap: %v", err)
	}
	return got
}

func TestIdentifierEd25519RoundTrip(t *testing.T) {
	want := NewEd25519Identifier([32]byte{1, 2, 3})
	got := roundTripIdentifier(t, want)
	if !got.Equal(want) {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestIdentifierPskIDRoundTrip(t *testing.T) {
	want := NewPskIdentifier([16]byte{0xAA, 0xBB})
	got := roundTripIdentifier(t, want)
	if !got.Equal(want) {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestIdentifierDIDRoundTrip(t *testing.T) {
	want := NewDIDIdentifier("did:example:abc123#key-1")
	got := roundTripIdentifier(t, want)
	if !got.Equal(want) {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestIdentifierUnknownVariantTagRejected(t *testing.T) {
	buf := []byte{0x09} // tag 9 is not a known Identifier kind
	var got Identifier
	uc := ddml.NewUnwrapContext(spongos.New(), io.NewSliceIStream(buf))
	err := got.Codec(uc)
	var uv *ddml.UnknownVariantError
	if err == nil {
		t.Fatal("expected UnknownVariantError")
	}
	if !isUnknownVariant(err, &uv) {
		t.Fatalf("got %v, want *UnknownVariantError", err)
	}
}

func isUnknownVariant(err error, target **ddml.UnknownVariantError) bool {
	uv, ok := err.(*ddml.UnknownVariantError)
	if ok {
		*target = uv
	}
	return ok
}
