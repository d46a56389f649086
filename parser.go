package cydterm

// parserState represents the current state of the escape parser
type parserState int

const (
	stateGround     parserState = iota // normal byte flow
	stateCollecting                    // after ESC, collecting a sequence
)

// escBufferCap bounds the bytes collected after ESC. A sequence that has
// not terminated by then is abandoned.
const escBufferCap = 31

// maxCSIParams bounds the numeric parameters extracted from a sequence.
const maxCSIParams = 4

// Parser intercepts escape sequences in the inbound byte stream before
// they reach the UTF-8 decoder, and executes the recognized commands
// against a Buffer. Everything that is not part of a sequence flows
// through the decoder into the buffer.
type Parser struct {
	buffer  *Buffer
	decoder Decoder

	state  parserState
	escSeq []byte
}

// NewParser creates a parser driving the given buffer
func NewParser(buffer *Buffer) *Parser {
	return &Parser{
		buffer: buffer,
		escSeq: make([]byte, 0, escBufferCap),
	}
}

// Parse processes a chunk of inbound bytes
func (p *Parser) Parse(data []byte) {
	for _, b := range data {
		p.feedByte(b)
	}
}

func (p *Parser) feedByte(b byte) {
	switch p.state {
	case stateCollecting:
		if len(p.escSeq) >= escBufferCap {
			// Overflow: abandon the sequence and resume at ground. The
			// byte that hit the limit is dropped, not reprocessed, so a
			// garbled sequence can swallow one printable byte.
			p.resetEscape()
			return
		}
		p.escSeq = append(p.escSeq, b)
		if (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z') {
			p.executeSequence()
			p.resetEscape()
		}

	default:
		if b == 0x1B {
			p.state = stateCollecting
			p.escSeq = p.escSeq[:0]
			return
		}
		if r, ok := p.decoder.Feed(b); ok {
			p.buffer.WriteRune(r)
		}
	}
}

func (p *Parser) resetEscape() {
	p.state = stateGround
	p.escSeq = p.escSeq[:0]
}

// executeSequence interprets a terminated sequence. Only CSI sequences
// (first collected byte '[') have any effect.
func (p *Parser) executeSequence() {
	if len(p.escSeq) < 2 || p.escSeq[0] != '[' {
		return
	}

	cmd := p.escSeq[len(p.escSeq)-1]
	params, count := p.parseParams(p.escSeq[1 : len(p.escSeq)-1])
	p.executeCSI(cmd, params, count)
}

// parseParams extracts up to maxCSIParams unsigned decimal parameters
// separated by ';'. Bytes that are neither digits nor ';' are skipped.
func (p *Parser) parseParams(body []byte) (params [maxCSIParams]int, count int) {
	num := 0
	hasNum := false
	for _, b := range body {
		switch {
		case b >= '0' && b <= '9':
			num = num*10 + int(b-'0')
			hasNum = true
		case b == ';':
			if hasNum && count < maxCSIParams {
				params[count] = num
				count++
			}
			num = 0
			hasNum = false
		}
	}
	if hasNum && count < maxCSIParams {
		params[count] = num
		count++
	}
	return params, count
}

func (p *Parser) executeCSI(cmd byte, params [maxCSIParams]int, count int) {
	switch cmd {
	case 'H', 'f': // cursor position, 1-based row;col, default 1;1
		row, col := 0, 0
		if count > 0 && params[0] > 0 {
			row = params[0] - 1
		}
		if count > 1 && params[1] > 0 {
			col = params[1] - 1
		}
		p.buffer.SetCursor(col, row)

	case 'J': // erase display, only mode 2 acts
		if params[0] == 2 {
			p.buffer.Clear()
		}

	case 'K': // erase to end of line
		p.buffer.ClearToEndOfLine()

	case 'm': // graphics mode
		p.executeSGR(params, count)

	case 'A': // cursor up
		p.buffer.MoveCursorUp(defaultOne(params[0]))

	case 'B': // cursor down
		p.buffer.MoveCursorDown(defaultOne(params[0]))

	case 'C': // cursor forward
		p.buffer.MoveCursorForward(defaultOne(params[0]))

	case 'D': // cursor back
		p.buffer.MoveCursorBackward(defaultOne(params[0]))
	}
	// Unknown terminators after a valid CSI prefix have no effect.
}

// executeSGR handles CSI m: 0 (or no parameters) resets to the session
// default pair; 30-37 select a palette foreground; everything else is
// ignored.
func (p *Parser) executeSGR(params [maxCSIParams]int, count int) {
	if count == 0 || params[0] == 0 {
		p.buffer.ResetColors()
		return
	}
	for i := 0; i < count; i++ {
		if params[i] >= 30 && params[i] <= 37 {
			p.buffer.SetForeground(PaletteColor(params[i] - 30))
		}
	}
}

func defaultOne(n int) int {
	if n == 0 {
		return 1
	}
	return n
}
