// Package stores provides the in-memory state a channel participant needs
// between messages: prior-message Spongos transcripts for Join, and the
// recipient key material Keyload branches are decrypted against.
package stores

import (
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"log/slog"
	"sync"

	"github.com/codahale/treewrap"
	"github.com/streamwire/streams/id"
	"github.com/streamwire/streams/spongos"
)

// MemLinkStore is an in-memory ddml.LinkStore keyed by message link.
type MemLinkStore struct {
	mu      sync.RWMutex
	entries map[string]linkEntry
	log     *slog.Logger
}

type linkEntry struct {
	spongos *spongos.Spongos
	info    []byte
}

// NewMemLinkStore returns an empty MemLinkStore. A nil logger falls back to
// slog.Default().
func NewMemLinkStore(log *slog.Logger) *MemLinkStore {
	if log == nil {
		log = slog.Default()
	}
	return &MemLinkStore{entries: make(map[string]linkEntry), log: log}
}

// Lookup implements ddml.LinkStore.
func (s *MemLinkStore) Lookup(link []byte) (*spongos.Spongos, []byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[string(link)]
	if !ok {
		return nil, nil, false
	}
	return e.spongos, e.info, true
}

// Update implements ddml.LinkStore.
func (s *MemLinkStore) Update(link []byte, sp *spongos.Spongos, info []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[string(link)] = linkEntry{spongos: sp, info: info}
	s.log.Debug("link store updated", slog.Int("link_len", len(link)), slog.Int("info_len", len(info)))
}

// Delete removes a link, e.g. once all of a channel's participants have
// confirmed they no longer need to join from it.
func (s *MemLinkStore) Delete(link []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, string(link))
}

// MemPskStore is an in-memory message.PskStore keyed by recipient
// identifier.
type MemPskStore struct {
	mu   sync.RWMutex
	psks map[string][32]byte
}

// NewMemPskStore returns an empty MemPskStore.
func NewMemPskStore() *MemPskStore {
	return &MemPskStore{psks: make(map[string][32]byte)}
}

// Lookup implements message.PskStore.
func (s *MemPskStore) Lookup(recipient id.Identifier) (psk [32]byte, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	psk, ok = s.psks[recipient.Key()]
	return psk, ok
}

// Add registers psk under recipient's identifier, overwriting any existing
// entry.
func (s *MemPskStore) Add(recipient id.Identifier, psk [32]byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.psks[recipient.Key()] = psk
}

// Remove forgets the PSK registered for recipient, if any.
func (s *MemPskStore) Remove(recipient id.Identifier) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.psks, recipient.Key())
}

// MemKeSkStore is an in-memory message.KeSkStore holding this party's own
// X25519 static secrets, keyed by the identifier a Keyload recipient entry
// will address them under.
type MemKeSkStore struct {
	mu    sync.RWMutex
	seeds map[string][32]byte
}

// NewMemKeSkStore returns an empty MemKeSkStore.
func NewMemKeSkStore() *MemKeSkStore {
	return &MemKeSkStore{seeds: make(map[string][32]byte)}
}

// Lookup implements message.KeSkStore.
func (s *MemKeSkStore) Lookup(recipient id.Identifier) (secret [32]byte, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	secret, ok = s.seeds[recipient.Key()]
	return secret, ok
}

// Add registers secret as the X25519 static secret recipient's Keyload
// entries are encapsulated under.
func (s *MemKeSkStore) Add(recipient id.Identifier, secret [32]byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seeds[recipient.Key()] = secret
}

// SealedPskStore is a PskStore with its own map of sealed entries,
// encrypting every PSK value at rest under a local master key via TreeWrap, so a process memory dump doesn't
// hand an attacker every pre-shared key directly. Session use (Keyload
// wrap/unwrap) still goes through plaintext [32]byte values; only storage
// is sealed.
type SealedPskStore struct {
	mu      sync.RWMutex
	masterK [treewrap.KeySize]byte
	sealed  map[string]sealedPsk
	log     *slog.Logger
}

type sealedPsk struct {
	ciphertext []byte
	tag        [treewrap.TagSize]byte
}

// NewSealedPskStore returns a SealedPskStore using a freshly generated
// random master key. The master key never leaves the process.
func NewSealedPskStore(log *slog.Logger) (*SealedPskStore, error) {
	if log == nil {
		log = slog.Default()
	}
	var key [treewrap.KeySize]byte
	if _, err := rand.Read(key[:]); err != nil {
		return nil, fmt.Errorf("stores: generate master key: %w", err)
	}
	return &SealedPskStore{masterK: key, sealed: make(map[string]sealedPsk), log: log}, nil
}

// Add seals psk under recipient's identifier.
func (s *SealedPskStore) Add(recipient id.Identifier, psk [32]byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ct, tag := treewrap.EncryptAndMAC(nil, &s.masterK, psk[:])
	s.sealed[recipient.Key()] = sealedPsk{ciphertext: ct, tag: tag}
	s.log.Debug("psk sealed", slog.String("recipient_key", recipient.Key()))
}

// Lookup implements message.PskStore, unsealing the stored ciphertext.
func (s *SealedPskStore) Lookup(recipient id.Identifier) (psk [32]byte, ok bool) {
	s.mu.RLock()
	entry, found := s.sealed[recipient.Key()]
	s.mu.RUnlock()
	if !found {
		return psk, false
	}

	pt, gotTag := treewrap.DecryptAndMAC(nil, &s.masterK, entry.ciphertext)
	if subtle.ConstantTimeCompare(gotTag[:], entry.tag[:]) != 1 {
		s.log.Error("sealed psk tag mismatch", slog.String("recipient_key", recipient.Key()))
		return psk, false
	}
	copy(psk[:], pt)
	return psk, true
}

// Remove forgets the sealed PSK registered for recipient, if any.
func (s *SealedPskStore) Remove(recipient id.Identifier) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sealed, recipient.Key())
}
