package id

import (
	"context"
	"crypto/ed25519"
	"errors"
	"testing"

	"github.com/streamwire/streams/ddml"
	"github.com/streamwire/streams/ddml/io"
	"github.com/streamwire/streams/spongos"
)

func TestIdentityDIDSignVerifyRoundTrip(t *testing.T) {
	_, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		t.Fatal(err)
	}

	signer := NewLocalDIDSigner()
	signer.Register("did:example:org", "key-1", priv)

	identity := NewDIDIdentity("did:example:org", "key-1", priv, signer)

	transcript := []byte("keyload id hash binding")
	sc := ddml.NewSizeofContext()
	sc.AbsorbNBytes(transcript)
	identity.Sign(context.Background(), sc)

	buf := make([]byte, sc.Size())
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
	if err := Verify(context.Background(), uc, nil, signer); err != nil {
		t.Fatalf("verify: %v", err)
	}
}

func TestIdentityDIDVerifyFailsForUnregisteredMethod(t *testing.T) {
	_, priv, _ := ed25519.GenerateKey(nil)
	signer := NewLocalDIDSigner()
	signer.Register("did:example:org", "key-1", priv)
	identity := NewDIDIdentity("did:example:org", "key-1", priv, signer)

	otherSigner := NewLocalDIDSigner() // no methods registered

	transcript := []byte("payload")
	sc := ddml.NewSizeofContext()
	sc.AbsorbNBytes(transcript)
	identity.Sign(context.Background(), sc)

	buf := make([]byte, sc.Size())
	wc := ddml.NewWrapContext(spongos.New(), io.NewSliceOStream(buf))
	wc.AbsorbNBytes(transcript)
	if err := identity.Sign(context.Background(), wc); err != nil {
		t.Fatal(err)
	}

	got := make([]byte, len(transcript))
	uc := ddml.NewUnwrapContext(spongos.New(), io.NewSliceIStream(buf))
	uc.AbsorbNBytes(got)
	if err := Verify(context.Background(), uc, nil, otherSigner); !errors.Is(err, ddml.ErrSignatureInvalid) {
		t.Fatalf("got %v, want ErrSignatureInvalid", err)
	}
}

func TestCachingResolverCachesAcrossCalls(t *testing.T) {
	calls := 0
	resolver := NewCachingResolver(func(ctx context.Context, didURI string) ([]byte, error) {
		calls++
		return []byte("{\"id\":\"" + didURI + "\"}"), nil
	})

	for range 3 {
		if _, err := resolver.Resolve(context.Background(), "did:example:cached"); err != nil {
			t.Fatal(err)
		}
	}
	if calls != 1 {
		t.Fatalf("fetch called %d times, want 1", calls)
	}
}

func TestCachingResolverDistinguishesDIDs(t *testing.T) {
	resolver := NewCachingResolver(func(ctx context.Context, didURI string) ([]byte, error) {
		return []byte(didURI), nil
	})

	a, _ := resolver.Resolve(context.Background(), "did:example:a")
	b, _ := resolver.Resolve(context.Background(), "did:example:b")
	if string(a) == string(b) {
		t.Fatal("resolver returned the same document for two different DIDs")
	}
}
