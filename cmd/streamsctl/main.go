// streamsctl decodes and prints a Header Data Frame read from a hex string,
// a file, or stdin.
package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/streamwire/streams/ddml"
	streamsio "github.com/streamwire/streams/ddml/io"
	"github.com/streamwire/streams/id"
	"github.com/streamwire/streams/message"
	"github.com/streamwire/streams/spongos"
)

var hexFrame string

func init() {
	flag.StringVar(&hexFrame, "hex", "", "hex-encoded HDF frame (otherwise read from the file argument or stdin)")
}

func readFrame() ([]byte, error) {
	if hexFrame != "" {
		return hex.DecodeString(hexFrame)
	}
	if flag.NArg() > 0 {
		return os.ReadFile(flag.Arg(0))
	}
	return io.ReadAll(os.Stdin)
}

func identifierString(i id.Identifier) string {
	switch i.Kind {
	case id.KindEd25519PublicKey:
		return "ed25519:" + hex.EncodeToString(i.Ed25519PublicKey[:])
	case id.KindPskID:
		return "psk:" + hex.EncodeToString(i.PskID[:])
	case id.KindDID:
		return "did:" + i.DIDURI
	default:
		return fmt.Sprintf("unknown(%d)", i.Kind)
	}
}

func run() error {
	raw, err := readFrame()
	if err != nil {
		return fmt.Errorf("read frame: %w", err)
	}

	h := &message.HDF{}
	c := ddml.NewUnwrapContext(spongos.New(), streamsio.NewSliceIStream(raw))
	if err := h.Codec(c); err != nil {
		return fmt.Errorf("decode HDF: %w", err)
	}

	fmt.Printf("message_type:        %d\n", h.MessageType)
	fmt.Printf("payload_length:      %d\n", h.PayloadLength)
	fmt.Printf("payload_frame_count: %d\n", h.PayloadFrameCount)
	if h.Linked != nil {
		fmt.Printf("linked_msg_id:       %s\n", hex.EncodeToString(h.Linked[:]))
	} else {
		fmt.Println("linked_msg_id:       (none)")
	}
	fmt.Printf("topic_hash:          %s\n", hex.EncodeToString(h.TopicHash[:]))
	fmt.Printf("publisher:           %s\n", identifierString(h.Publisher))
	fmt.Printf("sequence:            %d\n", h.Sequence)
	fmt.Printf("frame_bytes:         %d\n", len(raw))
	return nil
}

func main() {
	flag.Parse()
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "streamsctl:", err)
		os.Exit(1)
	}
}
