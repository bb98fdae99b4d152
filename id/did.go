package id

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/codahale/kt128"
)

// DIDSigner is the async collaborator behind DID-bound signing: resolving
// and exercising a DID document's verification method is an out-of-process
// concern the codec never performs itself.
type DIDSigner interface {
	// Sign produces a signature over hash using the verification method
	// identified by did#fragment.
	Sign(ctx context.Context, hash [64]byte, did, fragment string) (signature [64]byte, err error)
	// Verify checks signature against hash for did#fragment.
	Verify(ctx context.Context, hash [64]byte, did, fragment string, signature [64]byte) error
}

// verificationMethod is one entry of a DID document's verificationMethod
// array, reduced to its identifier and Ed25519 key material.
type verificationMethod struct {
	ID                 string
	PublicKeyEd25519   ed25519.PublicKey
	PrivateKeyEd25519  ed25519.PrivateKey // only populated locally for methods this process can sign with
}

// LocalDIDSigner is a reference DIDSigner backed by an in-memory table of
// DID documents, signing with the JCS-Ed25519 suite: the payload is
// canonicalized per RFC 8785's JSON Canonicalization Scheme, then signed
// directly with Ed25519. It has no network dependency and resolves nothing
// out of process; it exists so the rest of the codec can be exercised
// end-to-end without a real DID resolver.
type LocalDIDSigner struct {
	mu      sync.RWMutex
	methods map[string]verificationMethod // key: did#fragment
}

// NewLocalDIDSigner returns an empty LocalDIDSigner.
func NewLocalDIDSigner() *LocalDIDSigner {
	return &LocalDIDSigner{methods: make(map[string]verificationMethod)}
}

// Register adds a verification method this signer can sign and verify
// with.
func (s *LocalDIDSigner) Register(did, fragment string, priv ed25519.PrivateKey) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.methods[did+"#"+fragment] = verificationMethod{
		ID:                did + "#" + fragment,
		PublicKeyEd25519:  priv.Public().(ed25519.PublicKey),
		PrivateKeyEd25519: priv,
	}
}

// RegisterPublic adds a verification method this signer can verify
// against but not sign with (the private key lives elsewhere).
func (s *LocalDIDSigner) RegisterPublic(did, fragment string, pub ed25519.PublicKey) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.methods[did+"#"+fragment] = verificationMethod{ID: did + "#" + fragment, PublicKeyEd25519: pub}
}

// jcsSignaturePayload is the canonicalized document signed over: the
// 64-byte transcript hash plus the verification method identifier,
// matching the shape of the original implementation's JcsEd25519 suite.
type jcsSignaturePayload struct {
	Hash   string `json:"hash"`
	Method string `json:"verificationMethod"`
}

func canonicalize(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var generic map[string]json.RawMessage
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(generic))
	for k := range generic {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, _ := json.Marshal(k)
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(generic[k])
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Sign implements DIDSigner.
func (s *LocalDIDSigner) Sign(_ context.Context, hash [64]byte, did, fragment string) ([64]byte, error) {
	s.mu.RLock()
	vm, ok := s.methods[did+"#"+fragment]
	s.mu.RUnlock()
	if !ok || vm.PrivateKeyEd25519 == nil {
		return [64]byte{}, fmt.Errorf("id: no signing key registered for %s#%s", did, fragment)
	}

	payload, err := canonicalize(jcsSignaturePayload{Hash: fmt.Sprintf("%x", hash), Method: vm.ID})
	if err != nil {
		return [64]byte{}, err
	}

	var sig [64]byte
	copy(sig[:], ed25519.Sign(vm.PrivateKeyEd25519, payload))
	return sig, nil
}

// Verify implements DIDSigner.
func (s *LocalDIDSigner) Verify(_ context.Context, hash [64]byte, did, fragment string, signature [64]byte) error {
	s.mu.RLock()
	vm, ok := s.methods[did+"#"+fragment]
	s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("id: no verification method registered for %s#%s", did, fragment)
	}

	payload, err := canonicalize(jcsSignaturePayload{Hash: fmt.Sprintf("%x", hash), Method: vm.ID})
	if err != nil {
		return err
	}
	if !ed25519.Verify(vm.PublicKeyEd25519, payload, signature[:]) {
		return fmt.Errorf("id: JCS-Ed25519 signature invalid for %s#%s", did, fragment)
	}
	return nil
}

// ResolveFunc fetches a DID document's raw bytes for a given DID URI, the
// network or storage call a real DID resolver would make. CachingResolver
// calls it only on a cache miss; a failed fetch is not cached, and
// concurrent misses for the same URI may each call it.
type ResolveFunc func(ctx context.Context, didURI string) ([]byte, error)

// CachingResolver memoizes ResolveFunc results keyed by a KT128 digest of
// the DID URI, so repeated signature verifications against the same
// document avoid redundant resolution calls.
type CachingResolver struct {
	fetch ResolveFunc

	mu    sync.RWMutex
	cache map[[32]byte][]byte
}

// NewCachingResolver wraps fetch with a KT128-keyed cache.
func NewCachingResolver(fetch ResolveFunc) *CachingResolver {
	return &CachingResolver{fetch: fetch, cache: make(map[[32]byte][]byte)}
}

// Resolve returns the cached document for didURI, calling fetch and
// populating the cache on a miss.
func (r *CachingResolver) Resolve(ctx context.Context, didURI string) ([]byte, error) {
	key := didURIKey(didURI)

	r.mu.RLock()
	doc, ok := r.cache[key]
	r.mu.RUnlock()
	if ok {
		return doc, nil
	}

	doc, err := r.fetch(ctx, didURI)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.cache[key] = doc
	r.mu.Unlock()
	return doc, nil
}

func didURIKey(didURI string) [32]byte {
	h := kt128.New()
	h.Write([]byte(didURI))
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}
