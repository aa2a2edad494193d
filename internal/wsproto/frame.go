// Package wsproto implements the WebSocket framing used by the /ws surface.
//
// The session handler works at the frame level rather than through a
// higher-level message API: the intake state machine needs to see frame
// kinds individually (to reject fragmented messages, answer pings, and drain
// oversized payloads without desynchronizing the connection's framing).
package wsproto

import (
	"crypto/sha1"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"io"
)

// WebSocket frame opcodes
const (
	OpcodeContinuation = 0x0
	OpcodeText         = 0x1
	OpcodeBinary       = 0x2
	OpcodeClose        = 0x8
	OpcodePing         = 0x9
	OpcodePong         = 0xA
)

// MaxControlPayload is the RFC 6455 payload cap for control frames.
const MaxControlPayload = 125

// Header is the parsed fixed part of one frame. The payload is read (or
// drained) separately so a budget check can happen before any allocation.
type Header struct {
	FIN     bool
	Opcode  byte
	Masked  bool
	Length  uint64
	MaskKey [4]byte
}

// IsControl reports whether the frame is a control frame (close, ping,
// pong). Control frames may carry at most MaxControlPayload bytes;
// readers must check Length against that cap before reading the payload.
func (h Header) IsControl() bool {
	return h.Opcode&0x8 != 0
}

// ReadHeader reads and parses a frame header from r.
func ReadHeader(r io.Reader) (Header, error) {
	var h Header

	// First two bytes: FIN/RSV/opcode, mask bit and 7-bit length
	fixed := make([]byte, 2)
	if _, err := io.ReadFull(r, fixed); err != nil {
		return h, fmt.Errorf("wsproto: read frame header: %w", err)
	}

	h.FIN = fixed[0]&0x80 != 0
	h.Opcode = fixed[0] & 0x0F
	h.Masked = fixed[1]&0x80 != 0

	switch payloadLen := uint64(fixed[1] & 0x7F); payloadLen {
	case 126:
		ext := make([]byte, 2)
		if _, err := io.ReadFull(r, ext); err != nil {
			return h, fmt.Errorf("wsproto: read extended length: %w", err)
		}
		h.Length = uint64(binary.BigEndian.Uint16(ext))
	case 127:
		ext := make([]byte, 8)
		if _, err := io.ReadFull(r, ext); err != nil {
			return h, fmt.Errorf("wsproto: read extended length: %w", err)
		}
		h.Length = binary.BigEndian.Uint64(ext)
	default:
		h.Length = payloadLen
	}

	// Client-to-server frames carry a mask key
	if h.Masked {
		if _, err := io.ReadFull(r, h.MaskKey[:]); err != nil {
			return h, fmt.Errorf("wsproto: read mask key: %w", err)
		}
	}

	return h, nil
}

// ReadPayload reads the frame payload described by h, unmasking it if
// needed. Callers check h.Length against their budget first.
func ReadPayload(r io.Reader, h Header) ([]byte, error) {
	if h.Length == 0 {
		return nil, nil
	}
	payload := make([]byte, h.Length)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, fmt.Errorf("wsproto: read payload: %w", err)
	}
	if h.Masked {
		unmask(payload, h.MaskKey)
	}
	return payload, nil
}

// Discard consumes the frame payload without retaining it, keeping the
// connection's framing in sync after a rejected frame.
func Discard(r io.Reader, h Header) error {
	if h.Length == 0 {
		return nil
	}
	if _, err := io.CopyN(io.Discard, r, int64(h.Length)); err != nil {
		return fmt.Errorf("wsproto: drain payload: %w", err)
	}
	return nil
}

// unmask applies the XOR mask in place.
func unmask(payload []byte, key [4]byte) {
	for i := range payload {
		payload[i] ^= key[i%4]
	}
}

// WriteMessage writes a single unfragmented, unmasked frame, the
// server-to-client format:
//
//	[FIN + opcode] [payload length] [payload]
func WriteMessage(w io.Writer, opcode byte, payload []byte) error {
	frame := make([]byte, 0, 10+len(payload))

	frame = append(frame, 0x80|opcode)

	switch n := len(payload); {
	case n < 126:
		frame = append(frame, byte(n))
	case n < 65536:
		frame = append(frame, 126, byte(n>>8), byte(n))
	default:
		frame = append(frame, 127)
		var ext [8]byte
		binary.BigEndian.PutUint64(ext[:], uint64(n))
		frame = append(frame, ext[:]...)
	}

	frame = append(frame, payload...)

	if _, err := w.Write(frame); err != nil {
		return fmt.Errorf("wsproto: write frame: %w", err)
	}
	return nil
}

// websocketGUID is the fixed RFC 6455 handshake magic.
const websocketGUID = "258EAFA5-E914-47DA-95CA-C5AB0DC85B11"

// AcceptKey computes the Sec-WebSocket-Accept value for a client key.
func AcceptKey(clientKey string) string {
	sum := sha1.Sum([]byte(clientKey + websocketGUID))
	return base64.StdEncoding.EncodeToString(sum[:])
}

// OpcodeString returns a human-readable opcode name
func (h Header) OpcodeString() string {
	switch h.Opcode {
	case OpcodeContinuation:
		return "continuation"
	case OpcodeText:
		return "text"
	case OpcodeBinary:
		return "binary"
	case OpcodeClose:
		return "close"
	case OpcodePing:
		return "ping"
	case OpcodePong:
		return "pong"
	default:
		return fmt.Sprintf("unknown(0x%02x)", h.Opcode)
	}
}
