package ddml

import (
	"errors"
	"fmt"

	ioerr "github.com/streamwire/streams/ddml/io"
)

// ErrStreamExhausted is returned when the underlying stream runs out of
// bytes (unwrap) or capacity (wrap) mid-script. Re-exported from ddml/io so
// callers need only import one package's sentinels.
var ErrStreamExhausted = ioerr.ErrStreamExhausted

// ErrReservedBitsSet is returned when a parsed header has non-zero reserved
// bits, before any MAC verification takes place.
var ErrReservedBitsSet = errors.New("ddml: reserved bits set")

// ErrVersionMismatch is returned when a version byte is not recognized.
var ErrVersionMismatch = errors.New("ddml: version not supported")

// ErrFrameTypeMismatch is returned when a frame-type byte does not match the
// expected frame identifier.
var ErrFrameTypeMismatch = errors.New("ddml: frame type mismatch")

// ErrMacMismatch is returned when a squeezed MAC tag differs from the tag
// read from the wire.
var ErrMacMismatch = errors.New("ddml: MAC mismatch")

// ErrSignatureInvalid is returned when an Ed25519 (or DID-backed Ed25519)
// signature fails verification.
var ErrSignatureInvalid = errors.New("ddml: signature invalid")

// ErrExternalResolutionFailed wraps a failure from an out-of-band
// collaborator, such as a DID document resolver.
var ErrExternalResolutionFailed = errors.New("ddml: external resolution failed")

// GuardError is returned by Guard when its condition is false. It wraps an
// explanatory error supplied by the caller.
type GuardError struct {
	Err error
}

func (g *GuardError) Error() string { return fmt.Sprintf("ddml: guard failed: %v", g.Err) }
func (g *GuardError) Unwrap() error { return g.Err }

// UnknownVariantError is returned when a tagged-union discriminant byte does
// not correspond to any known variant.
type UnknownVariantError struct {
	Kind string
	Tag  byte
}

func (u *UnknownVariantError) Error() string {
	return fmt.Sprintf("ddml: unknown %s variant tag 0x%02x", u.Kind, u.Tag)
}
