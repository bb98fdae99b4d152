package id

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"errors"
	"testing"

	"github.com/streamwire/streams/ddml"
	"github.com/streamwire/streams/ddml/io"
	"github.com/streamwire/streams/spongos"
)

func TestIdentityEd25519SignVerifyRoundTrip(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		t.Fatal(err)
	}
	identity := NewEd25519Identity(priv)

	transcript := []byte("header bytes to be authenticated")
	buf := make([]byte, len(transcript)+1+ed25519.SignatureSize)

	wc := ddml.NewWrapContext(spongos.New(), io.NewSliceOStream(buf))
	if err := wc.AbsorbNBytes(transcript); err != nil {
		t.Fatal(err)
	}
	if err := identity.Sign(context.Background(), wc); err != nil {
		t.Fatalf("sign: %v", err)
	}

	got := make([]byte, len(transcript))
	uc := ddml.NewUnwrapContext(spongos.New(), io.NewSliceIStream(buf))
	if err := uc.AbsorbNBytes(got); err != nil {
		t.Fatal(err)
	}
	if err := Verify(context.Background(), uc, pub, nil); err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !bytes.Equal(got, transcript) {
		t.Fatalf("got %q, want %q", got, transcript)
	}
}

func TestIdentityEd25519VerifyRejectsTamperedTranscript(t *testing.T) {
	_, priv, _ := ed25519.GenerateKey(nil)
	pub := priv.Public().(ed25519.PublicKey)
	identity := NewEd25519Identity(priv)

	transcript := []byte("header bytes to be authenticated")
	buf := make([]byte, len(transcript)+1+ed25519.SignatureSize)

	wc := ddml.NewWrapContext(spongos.New(), io.NewSliceOStream(buf))
	wc.AbsorbNBytes(transcript)
	if err := identity.Sign(context.Background(), wc); err != nil {
		t.Fatal(err)
	}

	buf[0] ^= 0xFF

	got := make([]byte, len(transcript))
	uc := ddml.NewUnwrapContext(spongos.New(), io.NewSliceIStream(buf))
	uc.AbsorbNBytes(got)
	if err := Verify(context.Background(), uc, pub, nil); !errors.Is(err, ddml.ErrSignatureInvalid) {
		t.Fatalf("got %v, want ErrSignatureInvalid", err)
	}
}

func TestX25519SecretDerivationIsDeterministic(t *testing.T) {
	_, priv, _ := ed25519.GenerateKey(nil)
	identity := NewEd25519Identity(priv)

	a := identity.X25519Secret()
	b := identity.X25519Secret()
	if a != b {
		t.Fatal("X25519Secret is not deterministic")
	}
}

func TestToIdentifierMatchesVariant(t *testing.T) {
	_, priv, _ := ed25519.GenerateKey(nil)
	identity := NewEd25519Identity(priv)

	ident := identity.ToIdentifier()
	if ident.Kind != KindEd25519PublicKey {
		t.Fatalf("kind = %v, want KindEd25519PublicKey", ident.Kind)
	}
	if !bytes.Equal(ident.Ed25519PublicKey[:], priv.Public().(ed25519.PublicKey)) {
		t.Fatal("ToIdentifier did not carry the public key")
	}

	didIdentity := NewDIDIdentity("did:example:abc", "key-1", priv, nil)
	didIdent := didIdentity.ToIdentifier()
	if didIdent.Kind != KindDID || didIdent.DIDURI != "did:example:abc#key-1" {
		t.Fatalf("got %+v, want DID did:example:abc#key-1", didIdent)
	}
}
