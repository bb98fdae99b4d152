// Package message implements the wire-level structures built on top of
// ddml and spongos: the HDF header frame, the Keyload key-agreement
// content, and the Topic/TopicHash pair HDF binds a publisher to.
package message

import (
	"errors"
	"unicode/utf8"

	"github.com/streamwire/streams"
	"github.com/streamwire/streams/spongos"
)

// ErrInvalidTopic is returned by NewTopic for a string that is not valid
// UTF-8.
var ErrInvalidTopic = errors.New("message: topic is not valid UTF-8")

// Topic is a channel branch name. It is never transmitted directly inside
// HDF; only its TopicHash is.
type Topic struct {
	name string
}

// NewTopic validates name as UTF-8 and returns a Topic.
func NewTopic(name string) (Topic, error) {
	if !utf8.ValidString(name) {
		return Topic{}, ErrInvalidTopic
	}
	return Topic{name: name}, nil
}

// String returns the topic's name.
func (t Topic) String() string { return t.name }

// TopicHash is the fixed 16-byte sponge digest of a Topic's bytes. Its
// width bounds collision resistance at 2^64; deployments that outgrow that
// bound need a wider TopicHash, a type change rather than a silent
// behavior change.
type TopicHash [streams.TopicHashSize]byte

// Hash computes t's TopicHash.
func (t Topic) Hash() TopicHash {
	var h TopicHash
	spongos.Hash([]byte(t.name), h[:])
	return h
}
