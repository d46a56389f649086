package cydterm

// --- Character Output ---

// WriteRune feeds one decoded scalar value into the buffer. Carriage
// return, line feed and backspace route to cursor movement; printable
// values (>= 0x20) are written at the cursor with the current colors.
// Other control values are ignored.
func (b *Buffer) WriteRune(r rune) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch {
	case r == '\r':
		b.cursorX = 0
	case r == '\n':
		b.lineFeedInternal()
	case r == '\b':
		b.backspaceInternal()
	case r >= 0x20:
		b.writeRuneInternal(r)
	}
	b.markDirty()
}

// WriteString writes a string of already-decoded characters. Used by
// frontends for local echo and banners.
func (b *Buffer) WriteString(s string) {
	for _, r := range s {
		b.WriteRune(r)
	}
}

func (b *Buffer) writeRuneInternal(r rune) {
	b.lines[b.cursorY][b.cursorX] = Cell{Rune: r, Fg: b.currentFg, Bg: b.currentBg}
	b.cursorX++
	if b.cursorX >= b.cols {
		// Reaching the last column wraps through the same path as an
		// explicit newline.
		b.lineFeedInternal()
	}
}

// lineFeedInternal advances the cursor to the next line. A newline from
// the newest line opens absolute line totalLines: while unused slots
// remain the cursor moves linearly, and once every slot has been used
// the oldest line's slot is blank-filled and reused (lazy eviction, no
// data is shifted). Either way totalLines grows to count the opened
// line. A newline from anywhere above the newest line only steps down
// onto the existing line below, leaving its content and the counter
// alone.
func (b *Buffer) lineFeedInternal() {
	b.cursorX = 0

	if b.totalLines >= b.bufferRows {
		if b.cursorAbsoluteLineInternal() == b.totalLines-1 {
			next := b.totalLines % b.bufferRows
			b.clearSlot(next)
			b.cursorY = next
			b.totalLines++
		} else {
			b.cursorY = (b.cursorY + 1) % b.bufferRows
		}
		return
	}

	b.cursorY++
	if b.cursorY >= b.totalLines {
		b.clearSlot(b.cursorY)
		b.totalLines = b.cursorY + 1
	}
}

func (b *Buffer) backspaceInternal() {
	// Never crosses a line boundary.
	if b.cursorX > 0 {
		b.cursorX--
		b.lines[b.cursorY][b.cursorX] = b.blankCell()
	}
}

// --- Erase Operations ---

// Clear blank-fills the whole buffer and resets cursor, line counter and
// scroll offset. This is the ESC[2J path and the user-initiated clear.
func (b *Buffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.lines {
		b.clearSlot(i)
	}
	b.cursorX = 0
	b.cursorY = 0
	b.totalLines = 1
	b.scrollOffset = 0
	b.markDirty()
}

// ClearToEndOfLine erases from the cursor to the end of the current line
// (ESC[K)
func (b *Buffer) ClearToEndOfLine() {
	b.mu.Lock()
	defer b.mu.Unlock()
	line := b.lines[b.cursorY]
	for x := b.cursorX; x < b.cols; x++ {
		line[x] = b.blankCell()
	}
	b.markDirty()
}
