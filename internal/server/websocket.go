package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/TuteMthCD/nightstand/internal/command"
	"github.com/TuteMthCD/nightstand/internal/logging"
	"github.com/TuteMthCD/nightstand/internal/pixelbus"
	"github.com/TuteMthCD/nightstand/internal/wsproto"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second
)

// handleWebSocket upgrades the request and runs the session read loop on a
// hijacked connection. Frames are parsed manually so control frames and
// fragmentation get the exact handling each kind needs.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if err := validateUpgradeRequest(r); err != nil {
		logging.Warn("Rejected WebSocket upgrade",
			zap.String("remote_addr", r.RemoteAddr),
			zap.Error(err),
		)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	hijacker, ok := w.(http.Hijacker)
	if !ok {
		http.Error(w, "webserver does not support hijacking", http.StatusInternalServerError)
		return
	}

	conn, buf, err := hijacker.Hijack()
	if err != nil {
		logging.Error("Failed to hijack connection",
			zap.String("remote_addr", r.RemoteAddr),
			zap.Error(err),
		)
		return
	}

	// net/http may have armed a read deadline for the request headers;
	// the session manages its own write deadlines and reads block freely
	_ = conn.SetDeadline(time.Time{})

	accept := wsproto.AcceptKey(r.Header.Get("Sec-WebSocket-Key"))
	response := "HTTP/1.1 101 Switching Protocols\r\n" +
		"Upgrade: websocket\r\n" +
		"Connection: Upgrade\r\n" +
		"Sec-WebSocket-Accept: " + accept + "\r\n" +
		"\r\n"
	if _, err := buf.WriteString(response); err != nil {
		_ = conn.Close()
		return
	}
	if err := buf.Flush(); err != nil {
		_ = conn.Close()
		return
	}

	logging.LogConnection(r.RemoteAddr, "websocket_upgraded")

	s.trackSession(r.RemoteAddr, conn)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.untrackSession(r.RemoteAddr)
		s.runSession(conn, buf.Reader, r.RemoteAddr)
	}()
}

// validateUpgradeRequest checks the RFC 6455 upgrade preconditions.
func validateUpgradeRequest(r *http.Request) error {
	if r.Method != http.MethodGet {
		return fmt.Errorf("upgrade requires GET, got %s", r.Method)
	}
	if !strings.EqualFold(r.Header.Get("Upgrade"), "websocket") {
		return errors.New("missing Upgrade: websocket header")
	}
	if !headerContainsToken(r.Header.Get("Connection"), "upgrade") {
		return errors.New("missing Connection: Upgrade header")
	}
	if r.Header.Get("Sec-WebSocket-Key") == "" {
		return errors.New("missing Sec-WebSocket-Key header")
	}
	if v := r.Header.Get("Sec-WebSocket-Version"); v != "" && v != "13" {
		return fmt.Errorf("unsupported Sec-WebSocket-Version %q", v)
	}
	return nil
}

func headerContainsToken(header, token string) bool {
	for _, part := range strings.Split(header, ",") {
		if strings.EqualFold(strings.TrimSpace(part), token) {
			return true
		}
	}
	return false
}

// runSession is the per-connection state machine. It acknowledges the
// session, then reads frames until the peer closes, the connection errors,
// or a fatal condition forces a server-side close.
func (s *Server) runSession(conn net.Conn, reader io.Reader, remoteAddr string) {
	defer func() {
		_ = conn.Close()
		logging.LogConnection(remoteAddr, "websocket_closed")
	}()

	if err := s.sendText(conn, remoteAddr, map[string]string{"status": "ready"}); err != nil {
		return
	}

	for {
		header, err := wsproto.ReadHeader(reader)
		if err != nil {
			if err == io.EOF || errors.Is(err, io.ErrUnexpectedEOF) {
				logging.Info("Connection closed by client",
					zap.String("remote_addr", remoteAddr),
				)
			} else {
				logging.Info("Error reading frame",
					zap.String("remote_addr", remoteAddr),
					zap.Error(err),
				)
			}
			return
		}

		// RFC 6455 caps control frames at 125 bytes. The declared length
		// is attacker-controlled and must be bounded before any read or
		// allocation happens.
		if header.IsControl() && header.Length > wsproto.MaxControlPayload {
			logging.Warn("Oversized control frame, closing session",
				zap.String("remote_addr", remoteAddr),
				zap.String("frame_kind", header.OpcodeString()),
				zap.Uint64("declared_length", header.Length),
			)
			return
		}

		logging.LogWebSocketMessage(remoteAddr, "received",
			header.OpcodeString(), int(header.Length))

		switch header.Opcode {
		case wsproto.OpcodeClose:
			payload, _ := wsproto.ReadPayload(reader, header)
			_ = s.sendControl(conn, wsproto.OpcodeClose, payload)
			logging.Info("Received close frame",
				zap.String("remote_addr", remoteAddr),
			)
			return

		case wsproto.OpcodePing:
			payload, err := wsproto.ReadPayload(reader, header)
			if err != nil {
				return
			}
			if err := s.sendControl(conn, wsproto.OpcodePong, payload); err != nil {
				return
			}

		case wsproto.OpcodePong:
			if err := wsproto.Discard(reader, header); err != nil {
				return
			}

		case wsproto.OpcodeBinary:
			if err := wsproto.Discard(reader, header); err != nil {
				return
			}
			if err := s.sendError(conn, remoteAddr, "binary_not_supported"); err != nil {
				return
			}

		case wsproto.OpcodeContinuation:
			// Fragmented messages are never produced by supported clients;
			// skip the fragment so framing stays aligned.
			logging.Warn("Ignoring continuation frame",
				zap.String("remote_addr", remoteAddr),
			)
			if err := wsproto.Discard(reader, header); err != nil {
				return
			}

		case wsproto.OpcodeText:
			if !header.FIN {
				logging.Warn("Ignoring fragmented text message",
					zap.String("remote_addr", remoteAddr),
				)
				if err := wsproto.Discard(reader, header); err != nil {
					return
				}
				continue
			}
			if header.Length > uint64(s.validator.MaxPayload) {
				if err := wsproto.Discard(reader, header); err != nil {
					return
				}
				_ = s.sendError(conn, remoteAddr, "payload_too_large")
				_ = s.sendControl(conn, wsproto.OpcodeClose, nil)
				return
			}
			payload, err := wsproto.ReadPayload(reader, header)
			if err != nil {
				return
			}
			if done := s.handleTextMessage(conn, remoteAddr, payload); done {
				return
			}

		default:
			logging.Warn("Received frame with unknown opcode",
				zap.String("remote_addr", remoteAddr),
				zap.String("opcode", header.OpcodeString()),
			)
			if err := wsproto.Discard(reader, header); err != nil {
				return
			}
		}
	}
}

// handleTextMessage validates one text payload and produces it onto the
// bus. The return value reports whether the session must end.
func (s *Server) handleTextMessage(conn net.Conn, remoteAddr string, payload []byte) bool {
	cmd, err := s.validator.Decode(payload)
	if err != nil {
		var code string
		switch {
		case errors.Is(err, command.ErrPayloadTooLarge):
			code = "payload_too_large"
		case errors.Is(err, command.ErrInvalidEncoding):
			code = "invalid_utf8"
		default:
			code = "invalid_payload"
		}
		logging.Warn("Rejected color command",
			zap.String("remote_addr", remoteAddr),
			zap.String("code", code),
			zap.Error(err),
		)
		return s.sendError(conn, remoteAddr, code) != nil
	}

	if err := s.bus.Send(cmd); err != nil {
		if errors.Is(err, pixelbus.ErrClosed) {
			_ = s.sendError(conn, remoteAddr, "pixel_queue_unavailable")
			_ = s.sendControl(conn, wsproto.OpcodeClose, nil)
			return true
		}
		return s.sendError(conn, remoteAddr, "internal_error") != nil
	}

	logging.Info("Applied color command",
		zap.String("remote_addr", remoteAddr),
		zap.String("transport", "websocket"),
		zap.Int("pixels", len(cmd)),
	)
	return s.sendText(conn, remoteAddr, map[string]string{"status": "ok"}) != nil
}

// sendText sends a JSON text frame to the peer.
func (s *Server) sendText(conn net.Conn, remoteAddr string, body any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	if err := wsproto.WriteMessage(conn, wsproto.OpcodeText, payload); err != nil {
		logging.Info("Failed to write frame",
			zap.String("remote_addr", remoteAddr),
			zap.Error(err),
		)
		return err
	}
	logging.LogWebSocketMessage(remoteAddr, "sent", "text", len(payload))
	return nil
}

func (s *Server) sendError(conn net.Conn, remoteAddr string, code string) error {
	return s.sendText(conn, remoteAddr, map[string]string{"error": code})
}

func (s *Server) sendControl(conn net.Conn, opcode byte, payload []byte) error {
	if len(payload) > wsproto.MaxControlPayload {
		payload = payload[:wsproto.MaxControlPayload]
	}
	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return wsproto.WriteMessage(conn, opcode, payload)
}
