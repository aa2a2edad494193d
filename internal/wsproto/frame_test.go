package wsproto

import (
	"bytes"
	"testing"
)

func TestReadHeaderAndPayload(t *testing.T) {
	tests := []struct {
		name        string
		data        []byte
		wantOpcode  byte
		wantFIN     bool
		wantMasked  bool
		wantPayload []byte
	}{
		{
			name: "simple unmasked text frame",
			data: []byte{
				0x81, // FIN + text opcode
				0x05, // No mask, 5 byte payload
				'H', 'e', 'l', 'l', 'o',
			},
			wantOpcode:  OpcodeText,
			wantFIN:     true,
			wantPayload: []byte("Hello"),
		},
		{
			name: "masked text frame",
			data: func() []byte {
				payload := []byte(`[]`)
				maskKey := [4]byte{0xAA, 0xBB, 0xCC, 0xDD}
				masked := make([]byte, len(payload))
				for i := range payload {
					masked[i] = payload[i] ^ maskKey[i%4]
				}
				return append([]byte{
					0x81, // FIN + text opcode
					0x82, // Mask bit + 2 byte payload
					maskKey[0], maskKey[1], maskKey[2], maskKey[3],
				}, masked...)
			}(),
			wantOpcode:  OpcodeText,
			wantFIN:     true,
			wantMasked:  true,
			wantPayload: []byte(`[]`),
		},
		{
			name: "ping with payload",
			data: []byte{
				0x89, // FIN + ping opcode
				0x02,
				0x01, 0x02,
			},
			wantOpcode:  OpcodePing,
			wantFIN:     true,
			wantPayload: []byte{0x01, 0x02},
		},
		{
			name: "close frame without payload",
			data: []byte{
				0x88, // FIN + close opcode
				0x00,
			},
			wantOpcode:  OpcodeClose,
			wantFIN:     true,
			wantPayload: nil,
		},
		{
			name: "continuation frame",
			data: []byte{
				0x00, // no FIN, continuation opcode
				0x01,
				'x',
			},
			wantOpcode:  OpcodeContinuation,
			wantFIN:     false,
			wantPayload: []byte("x"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := bytes.NewReader(tt.data)
			h, err := ReadHeader(r)
			if err != nil {
				t.Fatalf("ReadHeader() error: %v", err)
			}
			if h.Opcode != tt.wantOpcode {
				t.Errorf("opcode = 0x%02x, want 0x%02x", h.Opcode, tt.wantOpcode)
			}
			if h.FIN != tt.wantFIN {
				t.Errorf("FIN = %v, want %v", h.FIN, tt.wantFIN)
			}
			if h.Masked != tt.wantMasked {
				t.Errorf("masked = %v, want %v", h.Masked, tt.wantMasked)
			}
			payload, err := ReadPayload(r, h)
			if err != nil {
				t.Fatalf("ReadPayload() error: %v", err)
			}
			if !bytes.Equal(payload, tt.wantPayload) {
				t.Errorf("payload = %q, want %q", payload, tt.wantPayload)
			}
		})
	}
}

func TestReadHeaderExtendedLength(t *testing.T) {
	// 16-bit extended length frame with a 200-byte payload
	payload := bytes.Repeat([]byte{'a'}, 200)
	data := append([]byte{0x82, 126, 0x00, 200}, payload...)

	r := bytes.NewReader(data)
	h, err := ReadHeader(r)
	if err != nil {
		t.Fatalf("ReadHeader() error: %v", err)
	}
	if h.Length != 200 {
		t.Errorf("length = %d, want 200", h.Length)
	}
	got, err := ReadPayload(r, h)
	if err != nil {
		t.Fatalf("ReadPayload() error: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Error("payload mismatch")
	}
}

func TestReadHeaderTruncated(t *testing.T) {
	for _, data := range [][]byte{
		{},                       // nothing
		{0x81},                   // half a header
		{0x81, 0x7E},             // extended length missing
		{0x81, 0x85, 0x01, 0x02}, // mask key cut short
	} {
		if _, err := ReadHeader(bytes.NewReader(data)); err == nil {
			t.Errorf("ReadHeader(% x) succeeded, want error", data)
		}
	}
}

func TestDiscardKeepsFramingInSync(t *testing.T) {
	var stream bytes.Buffer
	// an oversized binary frame followed by a ping
	stream.Write([]byte{0x82, 0x03, 0x01, 0x02, 0x03})
	stream.Write([]byte{0x89, 0x00})

	h, err := ReadHeader(&stream)
	if err != nil {
		t.Fatalf("ReadHeader() error: %v", err)
	}
	if err := Discard(&stream, h); err != nil {
		t.Fatalf("Discard() error: %v", err)
	}

	next, err := ReadHeader(&stream)
	if err != nil {
		t.Fatalf("ReadHeader() after Discard error: %v", err)
	}
	if next.Opcode != OpcodePing {
		t.Errorf("next opcode = %s, want ping", next.OpcodeString())
	}
}

func TestWriteMessageRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		opcode  byte
		payload []byte
	}{
		{"short text", OpcodeText, []byte(`{"status":"ok"}`)},
		{"empty pong", OpcodePong, nil},
		{"medium payload", OpcodeBinary, bytes.Repeat([]byte{0x55}, 300)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := WriteMessage(&buf, tt.opcode, tt.payload); err != nil {
				t.Fatalf("WriteMessage() error: %v", err)
			}

			h, err := ReadHeader(&buf)
			if err != nil {
				t.Fatalf("ReadHeader() error: %v", err)
			}
			if !h.FIN {
				t.Error("FIN not set")
			}
			if h.Opcode != tt.opcode {
				t.Errorf("opcode = 0x%02x, want 0x%02x", h.Opcode, tt.opcode)
			}
			if h.Masked {
				t.Error("server-to-client frame must not be masked")
			}
			got, err := ReadPayload(&buf, h)
			if err != nil {
				t.Fatalf("ReadPayload() error: %v", err)
			}
			if !bytes.Equal(got, tt.payload) {
				t.Errorf("payload = %q, want %q", got, tt.payload)
			}
			if _, err := ReadHeader(&buf); err == nil {
				t.Error("trailing bytes after frame")
			}
		})
	}
}

func TestAcceptKey(t *testing.T) {
	// Reference value from RFC 6455 section 1.3
	got := AcceptKey("dGhlIHNhbXBsZSBub25jZQ==")
	want := "s3pPLMBiTxaQ9kYGzzhZRbK+xOo="
	if got != want {
		t.Errorf("AcceptKey() = %q, want %q", got, want)
	}
}

func TestHeaderIsControl(t *testing.T) {
	tests := []struct {
		opcode byte
		want   bool
	}{
		{OpcodeContinuation, false},
		{OpcodeText, false},
		{OpcodeBinary, false},
		{OpcodeClose, true},
		{OpcodePing, true},
		{OpcodePong, true},
	}

	for _, tt := range tests {
		h := Header{Opcode: tt.opcode}
		if got := h.IsControl(); got != tt.want {
			t.Errorf("IsControl() for opcode 0x%02x = %v, want %v", tt.opcode, got, tt.want)
		}
	}
}
