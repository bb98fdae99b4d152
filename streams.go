// Package streams holds the wire constants and address types shared by the
// ddml, id, message, and stores packages: the version and frame-type
// sentinels every HDF checks, the fixed sizes of PSK and session-key
// material, and the opaque link type the codec threads through Join
// without ever interpreting its contents.
package streams

const (
	// STREAMS1Ver is the only protocol version this codec understands.
	STREAMS1Ver = 0
	// HDFID is the frame-type byte every HDF header must carry.
	HDFID = 0
	// UTF8 is the encoding sentinel byte HDF's encoding field must carry.
	UTF8 = 0

	// MACSize is the length, in bytes, of the squeezed tag appended to
	// every HDF.
	MACSize = 32
	// PskSize is the length, in bytes, of a pre-shared key.
	PskSize = 32
	// PskIDSize is the length, in bytes, of a PSK identifier.
	PskIDSize = 16
	// SessionKeySize is the length, in bytes, of a keyload session key.
	SessionKeySize = 32
	// NonceSize is the length, in bytes, of a keyload nonce.
	NonceSize = 16
	// TopicHashSize is the length, in bytes, of a topic's sponge digest.
	TopicHashSize = 16
)

// MsgIDSize is the fixed width of a MsgId.
const MsgIDSize = 12

// MsgId is an opaque, fixed-width message identifier. The codec never
// interprets its bytes; callers derive it however their transport assigns
// message addresses.
type MsgId [MsgIDSize]byte

// Link is an opaque, caller-serialized reference to a previously processed
// message, used as the key into a LinkStore by Join. The codec treats it as
// a byte string; this type merely names the convention, matching MsgId's
// width for the common case of a channel-local link.
type Link [MsgIDSize]byte

// Bytes returns l's bytes for use as a LinkStore key.
func (l Link) Bytes() []byte { return l[:] }

// ChannelAddr identifies a channel-scoped message: a publisher-derived tag
// plus the message's own MsgId. The application layer is responsible for
// deriving Tag (e.g. from the publisher's identifier) and hashing it into a
// Link; the codec only ever sees the resulting opaque bytes.
type ChannelAddr struct {
	Tag   [MsgIDSize]byte
	MsgId MsgId
}
