// Package protocol implements the batched wire format shared by host and
// peers.
//
// A payload starts with a three byte preamble (magic "DN" and the protocol
// version) followed by zero or more frames. A frame is a one byte Tag, a
// big-endian uint16 body length and a msgpack body.
package protocol

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"reflect"

	"github.com/automoto/doomerang-netplay/shared/messages"
	"github.com/automoto/doomerang-netplay/shared/netconfig"
	"github.com/hashicorp/go-msgpack/v2/codec"
)

const (
	magic0 = 0x44
	magic1 = 0x4E

	// PreambleSize is the number of bytes written by PrepareMessageBuffer.
	PreambleSize = 3
	// FrameHeaderSize is the tag byte plus the body length.
	FrameHeaderSize = 3
)

var (
	ErrBufferFull     = errors.New("protocol: message does not fit in buffer")
	ErrUnknownMessage = errors.New("protocol: unregistered message type")
	ErrBadPreamble    = errors.New("protocol: bad preamble")
	ErrTruncated      = errors.New("protocol: truncated frame")
)

// Codec encodes registered message types into size-bounded payloads.
type Codec struct {
	maxSize int
	handle  *codec.MsgpackHandle
	byType  map[reflect.Type]Tag
	byTag   map[Tag]reflect.Type
}

// Default is bounded by netconfig.MaxMessageSize and knows every built-in
// message.
var Default = NewCodec(netconfig.MaxMessageSize)

// NewCodec returns a codec whose payloads never exceed maxSize bytes, with the
// built-in messages registered.
func NewCodec(maxSize int) *Codec {
	if maxSize > math.MaxUint16 {
		maxSize = math.MaxUint16
	}
	h := &codec.MsgpackHandle{WriteExt: true}
	h.StructToArray = true

	c := &Codec{
		maxSize: maxSize,
		handle:  h,
		byType:  make(map[reflect.Type]Tag),
		byTag:   make(map[Tag]reflect.Type),
	}
	if err := RegisterMessages(c); err != nil {
		panic(err)
	}
	return c
}

// MaxSize returns the payload bound.
func (c *Codec) MaxSize() int {
	return c.maxSize
}

// PrepareMessageBuffer resets buf to an empty payload holding only the
// preamble.
func (c *Codec) PrepareMessageBuffer(buf *[]byte) {
	*buf = append((*buf)[:0], magic0, magic1, netconfig.ProtocolVersion)
}

// SerializeMessageToBuffer appends msg as one frame. It returns false and
// leaves buf untouched when the frame would push buf past the size bound or
// msg cannot be encoded.
func (c *Codec) SerializeMessageToBuffer(msg any, buf *[]byte) bool {
	return c.AppendMessage(msg, buf) == nil
}

// AppendMessage is SerializeMessageToBuffer with the failure reason.
func (c *Codec) AppendMessage(msg any, buf *[]byte) error {
	v := reflect.ValueOf(msg)
	if v.Kind() == reflect.Pointer && !v.IsNil() {
		v = v.Elem()
	}
	if !v.IsValid() {
		return fmt.Errorf("%w: %T", ErrUnknownMessage, msg)
	}
	tag, ok := c.byType[v.Type()]
	if !ok {
		return fmt.Errorf("%w: %T", ErrUnknownMessage, msg)
	}

	var body []byte
	if err := codec.NewEncoderBytes(&body, c.handle).Encode(v.Interface()); err != nil {
		return fmt.Errorf("encode %T: %w", msg, err)
	}

	size := max(len(*buf), PreambleSize)
	if size+FrameHeaderSize+len(body) > c.maxSize {
		return ErrBufferFull
	}
	if len(*buf) < PreambleSize {
		c.PrepareMessageBuffer(buf)
	}

	out := append(*buf, byte(tag))
	out = binary.BigEndian.AppendUint16(out, uint16(len(body)))
	*buf = append(out, body...)
	return nil
}

// SerializeMessage returns a stand-alone payload holding msg alone.
func (c *Codec) SerializeMessage(msg any) ([]byte, error) {
	var buf []byte
	c.PrepareMessageBuffer(&buf)
	if err := c.AppendMessage(msg, &buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// DecodeMessages returns the messages in payload in the order they were
// written. Values are returned by value, never as pointers.
func (c *Codec) DecodeMessages(payload []byte) ([]messages.Message, error) {
	if len(payload) < PreambleSize || payload[0] != magic0 || payload[1] != magic1 {
		return nil, ErrBadPreamble
	}
	if payload[2] != netconfig.ProtocolVersion {
		return nil, fmt.Errorf("%w: version %d, want %d", ErrBadPreamble, payload[2], netconfig.ProtocolVersion)
	}

	var out []messages.Message
	for off := PreambleSize; off < len(payload); {
		if len(payload)-off < FrameHeaderSize {
			return nil, fmt.Errorf("%w at offset %d", ErrTruncated, off)
		}
		tag := Tag(payload[off])
		n := int(binary.BigEndian.Uint16(payload[off+1:]))
		off += FrameHeaderSize
		if len(payload)-off < n {
			return nil, fmt.Errorf("%w: tag %d wants %d bytes, %d left", ErrTruncated, tag, n, len(payload)-off)
		}

		t, ok := c.byTag[tag]
		if !ok {
			return nil, fmt.Errorf("%w: tag %d", ErrUnknownMessage, tag)
		}
		ptr := reflect.New(t)
		if err := codec.NewDecoderBytes(payload[off:off+n], c.handle).Decode(ptr.Interface()); err != nil {
			return nil, fmt.Errorf("decode tag %d: %w", tag, err)
		}
		out = append(out, ptr.Elem().Interface())
		off += n
	}
	return out, nil
}

// HasMessages reports whether payload carries at least one frame.
func HasMessages(payload []byte) bool {
	return len(payload) > PreambleSize
}

func PrepareMessageBuffer(buf *[]byte) {
	Default.PrepareMessageBuffer(buf)
}

func SerializeMessageToBuffer(msg any, buf *[]byte) bool {
	return Default.SerializeMessageToBuffer(msg, buf)
}

func SerializeMessage(msg any) ([]byte, error) {
	return Default.SerializeMessage(msg)
}

func DecodeMessages(payload []byte) ([]messages.Message, error) {
	return Default.DecodeMessages(payload)
}
