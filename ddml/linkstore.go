package ddml

import "github.com/streamwire/streams/spongos"

// LinkStore resolves an opaque, caller-serialized Link into the Spongos
// transcript state anchored to it, for use by Context.Join. info is
// arbitrary caller metadata stored alongside the Spongos (e.g. the
// publisher identity of the linked message) and is not interpreted by
// ddml itself.
type LinkStore interface {
	// Lookup returns the Spongos and info previously stored under link, and
	// ok=false if link is not known.
	Lookup(link []byte) (s *spongos.Spongos, info []byte, ok bool)
	// Update records s and info under link, overwriting any prior entry.
	Update(link []byte, s *spongos.Spongos, info []byte)
}
