package cli

import (
	"os"

	cydterm "github.com/CheshirCa/CYD-terminal"
)

// InputHandler reads host keyboard input. With the input bar closed,
// bytes pass through to the session's byte source; a few chords are
// handled locally (F2 toggles the input bar, Shift+navigation scrolls
// the viewport). With the bar open, keystrokes edit the compose line
// and Up/Down walk the command history.
type InputHandler struct {
	term         *Terminal
	escapeBuffer []byte
	decoder      cydterm.Decoder
}

// Special key constants for internal handling
const (
	keyNone = iota
	keyUp
	keyDown
	keyLeft
	keyRight
	keyHome
	keyEnd
	keyPageUp
	keyPageDown
	keyDelete
	keyF2
)

// Modifier flags
const (
	modShift = 1 << iota
	modAlt
	modCtrl
)

// NewInputHandler creates an input handler
func NewInputHandler(term *Terminal) *InputHandler {
	return &InputHandler{
		term:         term,
		escapeBuffer: make([]byte, 0, 32),
	}
}

// InputLoop reads and processes input from stdin
func (h *InputHandler) InputLoop() {
	buf := make([]byte, 256)

	for {
		select {
		case <-h.term.stopRender:
			return
		default:
		}

		n, err := os.Stdin.Read(buf)
		if err != nil {
			return
		}
		if n == 0 {
			continue
		}

		h.processInput(buf[:n])
	}
}

// processInput handles raw input bytes
func (h *InputHandler) processInput(data []byte) {
	for i := 0; i < len(data); {
		b := data[i]

		if b == 0x1b {
			h.escapeBuffer = append(h.escapeBuffer[:0], b)
			i++

			for i < len(data) && len(h.escapeBuffer) < 32 {
				h.escapeBuffer = append(h.escapeBuffer, data[i])
				i++

				key, mods, consumed, passthrough := h.parseEscapeSequence(h.escapeBuffer)
				if consumed > 0 {
					if passthrough != nil {
						h.sendBytes(passthrough)
					} else if key != keyNone {
						h.handleSpecialKey(key, mods)
					}
					h.escapeBuffer = h.escapeBuffer[:0]
					break
				}
			}

			if len(h.escapeBuffer) > 0 {
				if len(h.escapeBuffer) == 1 {
					// Standalone ESC
					h.handleEscape()
				} else {
					h.sendBytes(h.escapeBuffer)
				}
				h.escapeBuffer = h.escapeBuffer[:0]
			}
		} else {
			h.handleRegularInput(b)
			i++
		}
	}
}

// parseEscapeSequence attempts to parse a host escape sequence.
// Returns: key code, modifiers, bytes consumed, passthrough bytes.
func (h *InputHandler) parseEscapeSequence(seq []byte) (key int, mods int, consumed int, passthrough []byte) {
	if len(seq) < 2 {
		return keyNone, 0, 0, nil
	}

	if seq[1] == '[' {
		return h.parseCSISequence(seq)
	}
	if seq[1] == 'O' {
		return h.parseSS3Sequence(seq)
	}

	// Alt+key: ESC followed by a regular character, passed through
	if len(seq) == 2 && seq[1] >= 0x20 && seq[1] < 0x7f {
		return keyNone, modAlt, 2, seq
	}

	return keyNone, 0, 0, nil
}

// parseCSISequence parses CSI (ESC [) sequences from the host
func (h *InputHandler) parseCSISequence(seq []byte) (key int, mods int, consumed int, passthrough []byte) {
	if len(seq) < 3 {
		return keyNone, 0, 0, nil
	}

	lastByte := seq[len(seq)-1]

	if lastByte >= 'A' && lastByte <= 'Z' || lastByte == '~' {
		switch lastByte {
		case 'A':
			key = keyUp
		case 'B':
			key = keyDown
		case 'C':
			key = keyRight
		case 'D':
			key = keyLeft
		case 'H':
			key = keyHome
		case 'F':
			key = keyEnd
		case '~':
			if len(seq) >= 4 {
				switch seq[2] {
				case '1':
					key = keyHome
					if len(seq) >= 5 && seq[3] == '2' {
						key = keyF2 // ESC [ 1 2 ~
					}
				case '3':
					key = keyDelete
				case '4':
					key = keyEnd
				case '5':
					key = keyPageUp
				case '6':
					key = keyPageDown
				}
			}
		}

		// Modifiers in extended format: ESC [ 1 ; <mod> <key>
		if len(seq) >= 6 && seq[2] == '1' && seq[3] == ';' {
			modByte := seq[4]
			if modByte >= '2' && modByte <= '8' {
				modNum := int(modByte - '1')
				if modNum&1 != 0 {
					mods |= modShift
				}
				if modNum&2 != 0 {
					mods |= modAlt
				}
				if modNum&4 != 0 {
					mods |= modCtrl
				}
			}
		}

		consumed = len(seq)
		if h.shouldHandleLocally(key, mods) {
			return key, mods, consumed, nil
		}
		return keyNone, 0, consumed, seq
	}

	if lastByte >= '0' && lastByte <= '9' || lastByte == ';' {
		return keyNone, 0, 0, nil // need more data
	}

	return keyNone, 0, len(seq), seq
}

// parseSS3Sequence parses SS3 (ESC O) sequences
func (h *InputHandler) parseSS3Sequence(seq []byte) (key int, mods int, consumed int, passthrough []byte) {
	if len(seq) < 3 {
		return keyNone, 0, 0, nil
	}

	switch seq[2] {
	case 'A':
		key = keyUp
	case 'B':
		key = keyDown
	case 'C':
		key = keyRight
	case 'D':
		key = keyLeft
	case 'H':
		key = keyHome
	case 'F':
		key = keyEnd
	case 'Q':
		key = keyF2
	default:
		return keyNone, 0, 3, seq[:3]
	}

	consumed = 3
	if h.shouldHandleLocally(key, 0) {
		return key, 0, consumed, nil
	}
	return keyNone, 0, consumed, seq[:3]
}

// shouldHandleLocally decides whether a key drives the frontend instead
// of the attached byte source.
func (h *InputHandler) shouldHandleLocally(key int, mods int) bool {
	if key == keyF2 {
		return true
	}
	if h.term.InputBarOpen() {
		switch key {
		case keyUp, keyDown, keyLeft, keyRight, keyHome, keyEnd, keyDelete:
			return true
		}
	}
	if mods&modShift != 0 {
		switch key {
		case keyPageUp, keyPageDown, keyUp, keyDown, keyHome, keyEnd:
			return true
		}
	}
	return false
}

// handleSpecialKey handles locally-consumed keys
func (h *InputHandler) handleSpecialKey(key int, mods int) {
	if key == keyF2 {
		h.term.ToggleInputBar()
		return
	}

	if h.term.InputBarOpen() {
		switch key {
		case keyUp:
			h.historyUp()
		case keyDown:
			h.historyDown()
		}
		return
	}

	if mods&modShift != 0 {
		_, rows := h.term.buffer.GetSize()
		switch key {
		case keyPageUp:
			h.term.ScrollUp(rows - 1)
		case keyPageDown:
			h.term.ScrollDown(rows - 1)
		case keyUp:
			h.term.ScrollUp(1)
		case keyDown:
			h.term.ScrollDown(1)
		case keyHome:
			h.term.ScrollToTop()
		case keyEnd:
			h.term.ScrollToBottom()
		}
		h.term.renderer.RequestRender()
	}
}

// handleEscape handles a standalone ESC press
func (h *InputHandler) handleEscape() {
	if h.term.InputBarOpen() {
		h.term.ToggleInputBar()
		return
	}
	h.sendBytes([]byte{0x1b})
}

// handleRegularInput handles non-escape input bytes
func (h *InputHandler) handleRegularInput(b byte) {
	if !h.term.InputBarOpen() {
		// Any typing snaps back to the newest content.
		if h.term.buffer.GetScrollOffset() > 0 {
			h.term.ScrollToBottom()
		}
		h.sendBytes([]byte{b})
		return
	}

	switch b {
	case '\r', '\n':
		h.term.submitCompose()
	case 0x7f, 0x08:
		h.composeBackspace()
	default:
		if r, ok := h.decoder.Feed(b); ok && r >= 0x20 {
			h.term.mu.Lock()
			h.term.composeLine = append(h.term.composeLine, r)
			h.term.mu.Unlock()
			h.term.renderer.RequestRender()
		}
	}
}

// composeBackspace removes the last rune from the compose line. Working
// in runes keeps multi-byte characters intact.
func (h *InputHandler) composeBackspace() {
	h.term.mu.Lock()
	if n := len(h.term.composeLine); n > 0 {
		h.term.composeLine = h.term.composeLine[:n-1]
	}
	h.term.mu.Unlock()
	h.term.renderer.RequestRender()
}

func (h *InputHandler) historyUp() {
	t := h.term
	t.mu.Lock()
	current := string(t.composeLine)
	t.mu.Unlock()

	if line, ok := t.session.History().Up(current); ok {
		t.mu.Lock()
		t.composeLine = []rune(line)
		t.mu.Unlock()
		t.renderer.RequestRender()
	}
}

func (h *InputHandler) historyDown() {
	t := h.term
	if line, ok := t.session.History().Down(); ok {
		t.mu.Lock()
		t.composeLine = []rune(line)
		t.mu.Unlock()
		t.renderer.RequestRender()
	}
}

// sendBytes delivers input to the session's byte source.
func (h *InputHandler) sendBytes(data []byte) {
	h.term.session.Send(data)
}
