package cydterm

import (
	"fmt"
	"io"
)

// Direction classifies session traffic for activity reporting.
type Direction int

const (
	DirInbound  Direction = iota // bytes received from the remote side
	DirOutbound                  // bytes sent to the remote side
)

// String returns the serial-terminal abbreviation for the direction:
// "rx" for inbound traffic, "tx" for outbound. Status displays and log
// labels use these short forms.
func (d Direction) String() string {
	if d == DirOutbound {
		return "tx"
	}
	return "rx"
}

// Session ties the parser, buffer and history together around one byte
// source/sink. Inbound bytes go through Feed; outbound through Send.
// Both report through the activity callback; frontends drive their
// RX/TX indicators and traffic logging from it.
type Session struct {
	buffer  *Buffer
	parser  *Parser
	history *History

	sink       io.Writer
	localEcho  bool
	onActivity func(dir Direction, payload []byte)
}

// NewSession creates a session with the given geometry and no sink.
func NewSession(cfg Config) *Session {
	cfg = cfg.normalize()
	buffer := NewBuffer(cfg)
	return &Session{
		buffer:  buffer,
		parser:  NewParser(buffer),
		history: NewHistory(cfg.HistorySize),
	}
}

// Buffer returns the session's terminal buffer.
func (s *Session) Buffer() *Buffer {
	return s.buffer
}

// History returns the session's command history.
func (s *Session) History() *History {
	return s.history
}

// SetSink sets the writer outbound bytes are delivered to (a PTY, a
// serial port, a network connection).
func (s *Session) SetSink(w io.Writer) {
	s.sink = w
}

// SetLocalEcho controls whether outbound bytes are also fed back through
// the parser. Enable it for remotes that do not echo.
func (s *Session) SetLocalEcho(echo bool) {
	s.localEcho = echo
}

// SetActivityCallback sets the function invoked for every inbound and
// outbound payload. The payload slice is only valid for the duration of
// the call.
func (s *Session) SetActivityCallback(fn func(dir Direction, payload []byte)) {
	s.onActivity = fn
}

// Feed processes inbound bytes from the remote side.
func (s *Session) Feed(data []byte) {
	if len(data) == 0 {
		return
	}
	if s.onActivity != nil {
		s.onActivity(DirInbound, data)
	}
	s.parser.Parse(data)
}

// Send delivers outbound bytes to the sink.
func (s *Session) Send(data []byte) error {
	if len(data) == 0 {
		return nil
	}
	if s.onActivity != nil {
		s.onActivity(DirOutbound, data)
	}
	if s.localEcho {
		s.parser.Parse(data)
	}
	if s.sink == nil {
		return nil
	}
	if _, err := s.sink.Write(data); err != nil {
		return fmt.Errorf("session send: %w", err)
	}
	return nil
}

// SendLine records the line in history and sends it followed by CRLF.
func (s *Session) SendLine(line string) error {
	s.history.Push(line)
	return s.Send([]byte(line + "\r\n"))
}
