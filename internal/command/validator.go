// Package command turns untrusted network payloads into pixel commands.
//
// The validator is a pure parse/validate stage shared by every intake path
// (HTTP, WebSocket, MQTT). It never touches hardware state, the command
// channel, or the network.
package command

import (
	"encoding/json"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/TuteMthCD/nightstand/internal/color"
)

// DefaultMaxPayload is the default byte budget for one inbound message.
const DefaultMaxPayload = 512

// chunkSize is the read granularity on the streaming path.
const chunkSize = 128

// Command is the pixel sequence decoded from one message. An empty command
// means "turn the strip off". It is consumed exactly once by the drive loop.
type Command []color.RGB

// Validator decodes message bodies into Commands, enforcing the payload
// budget before anything is interpreted.
type Validator struct {
	// MaxPayload is the byte budget for one message body.
	MaxPayload int
}

// New returns a Validator with the default payload budget.
func New() *Validator {
	return &Validator{MaxPayload: DefaultMaxPayload}
}

// Decode validates a fully-received body whose length was declared up front.
func (v *Validator) Decode(body []byte) (Command, error) {
	if len(body) > v.MaxPayload {
		return nil, fmt.Errorf("%w: %d bytes over budget %d", ErrPayloadTooLarge, len(body), v.MaxPayload)
	}
	return v.parse(body)
}

// DecodeStream validates a body of undeclared length, accumulating
// incrementally and aborting as soon as the running total would pass the
// budget. It never buffers past the limit.
func (v *Validator) DecodeStream(r io.Reader) (Command, error) {
	body := make([]byte, 0, chunkSize)
	chunk := make([]byte, chunkSize)
	for {
		n, err := r.Read(chunk)
		if n > 0 {
			if len(body)+n > v.MaxPayload {
				return nil, fmt.Errorf("%w: body exceeds budget %d", ErrPayloadTooLarge, v.MaxPayload)
			}
			body = append(body, chunk[:n]...)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("command: read body: %w", err)
		}
	}
	return v.parse(body)
}

// pixelSpec mirrors one element of the wire format. Pointer fields
// distinguish a missing channel from an explicit zero.
type pixelSpec struct {
	R *int `json:"r"`
	G *int `json:"g"`
	B *int `json:"b"`
}

func (v *Validator) parse(body []byte) (Command, error) {
	if !utf8.Valid(body) {
		return nil, ErrInvalidEncoding
	}

	var specs []pixelSpec
	if err := json.Unmarshal(body, &specs); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	cmd := make(Command, len(specs))
	for i, s := range specs {
		r, err := channel("r", s.R)
		if err != nil {
			return nil, fmt.Errorf("pixel %d: %w", i, err)
		}
		g, err := channel("g", s.G)
		if err != nil {
			return nil, fmt.Errorf("pixel %d: %w", i, err)
		}
		b, err := channel("b", s.B)
		if err != nil {
			return nil, fmt.Errorf("pixel %d: %w", i, err)
		}
		cmd[i] = color.New(r, g, b)
	}
	return cmd, nil
}

func channel(name string, val *int) (uint8, error) {
	if val == nil {
		return 0, fmt.Errorf("%w: missing channel %q", ErrMalformedPayload, name)
	}
	if *val < 0 || *val > 255 {
		return 0, fmt.Errorf("%w: channel %q=%d outside 0-255", ErrMalformedPayload, name, *val)
	}
	return uint8(*val), nil
}
