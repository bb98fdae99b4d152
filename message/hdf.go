package message

import (
	"github.com/streamwire/streams"
	"github.com/streamwire/streams/ddml"
	"github.com/streamwire/streams/id"
)

// HDF is the Header Data Frame, the fixed-schema prefix of every message.
// Its wire layout is bit-packed: the message type, a two-bit reserved
// field, and the ten-bit payload length share two bytes; the 22-bit
// payload frame count and two more reserved bits share three bytes.
type HDF struct {
	MessageType       uint8 // 0-15
	PayloadLength     uint16 // 0-1023
	PayloadFrameCount uint32 // 0-(2^22-1)
	Linked            *streams.MsgId
	TopicHash         TopicHash
	Publisher         id.Identifier
	Sequence          uint64
}

// Codec runs HDF's wire script against c. Under RoleUnwrap it populates h
// from the wire and returns ReservedBitsSet, VersionMismatch, or
// FrameTypeMismatch if any structural check fails, before the trailing MAC
// is even read.
func (h *HDF) Codec(c *ddml.Context) error {
	encoding := byte(streams.UTF8)
	if err := c.AbsorbU8(&encoding); err != nil {
		return err
	}
	if err := c.Guard(encoding == streams.UTF8, ddml.ErrFrameTypeMismatch); err != nil {
		return err
	}

	version := byte(streams.STREAMS1Ver)
	if err := c.AbsorbU8(&version); err != nil {
		return err
	}
	if err := c.Guard(version == streams.STREAMS1Ver, ddml.ErrVersionMismatch); err != nil {
		return err
	}

	typeAndLen := [2]byte{
		byte(h.MessageType<<4) | byte(h.PayloadLength>>8&0x03),
		byte(h.PayloadLength),
	}
	if err := c.SkipNBytes(typeAndLen[:]); err != nil {
		return err
	}
	if c.Role == ddml.RoleUnwrap {
		if err := c.Guard(typeAndLen[0]&0x0C == 0, ddml.ErrReservedBitsSet); err != nil {
			return err
		}
		h.MessageType = typeAndLen[0] >> 4
		h.PayloadLength = uint16(typeAndLen[0]&0x03)<<8 | uint16(typeAndLen[1])
	}

	extType := h.MessageType << 4
	if err := c.AbsorbExternalNBytes([]byte{extType}); err != nil {
		return err
	}

	frameType := byte(streams.HDFID)
	if err := c.AbsorbU8(&frameType); err != nil {
		return err
	}
	if err := c.Guard(frameType == streams.HDFID, ddml.ErrFrameTypeMismatch); err != nil {
		return err
	}

	frameCountBytes := [3]byte{
		byte(h.PayloadFrameCount >> 16 & 0x3F),
		byte(h.PayloadFrameCount >> 8),
		byte(h.PayloadFrameCount),
	}
	if err := c.SkipNBytes(frameCountBytes[:]); err != nil {
		return err
	}
	if c.Role == ddml.RoleUnwrap {
		if err := c.Guard(frameCountBytes[0]&0xC0 == 0, ddml.ErrReservedBitsSet); err != nil {
			return err
		}
		h.PayloadFrameCount = uint32(frameCountBytes[0]&0x3F)<<16 | uint32(frameCountBytes[1])<<8 | uint32(frameCountBytes[2])
	}

	var present bool
	var linkBuf [streams.MsgIDSize]byte
	if c.Role != ddml.RoleUnwrap {
		present = h.Linked != nil
		if present {
			linkBuf = *h.Linked
		}
	}
	if err := c.AbsorbMaybeNBytes(&present, linkBuf[:]); err != nil {
		return err
	}
	if c.Role == ddml.RoleUnwrap {
		if present {
			msgID := streams.MsgId(linkBuf)
			h.Linked = &msgID
		} else {
			h.Linked = nil
		}
	}

	if err := c.MaskNBytes(h.TopicHash[:]); err != nil {
		return err
	}

	if err := h.Publisher.MaskCodec(c); err != nil {
		return err
	}

	seq := ddml.Size(h.Sequence)
	if err := c.SkipSize(&seq); err != nil {
		return err
	}
	if c.Role == ddml.RoleUnwrap {
		h.Sequence = uint64(seq)
	}

	if err := c.Commit(); err != nil {
		return err
	}
	return c.SqueezeMAC(streams.MACSize)
}
