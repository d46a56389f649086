package cydterm

// --- Cursor Position Methods ---

// GetCursor returns the cursor column and its physical row slot
func (b *Buffer) GetCursor() (x, y int) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.cursorX, b.cursorY
}

// SetCursor sets the cursor position from 0-based coordinates, clamped
// to [0,cols) x [0,rows). This is the CSI H/f path: the row addresses
// the screen window, not the scrollback.
func (b *Buffer) SetCursor(x, y int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if x < 0 {
		x = 0
	}
	if x >= b.cols {
		x = b.cols - 1
	}
	if y < 0 {
		y = 0
	}
	if y >= b.rows {
		y = b.rows - 1
	}
	b.cursorX = x
	b.cursorY = y
	b.markDirty()
}

// --- Cursor Movement ---

// MoveCursorUp moves cursor up n rows, stopping at the top (CSI A)
func (b *Buffer) MoveCursorUp(n int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cursorY -= n
	if b.cursorY < 0 {
		b.cursorY = 0
	}
	b.markDirty()
}

// MoveCursorDown moves cursor down n rows, stopping at the last screen
// row (CSI B)
func (b *Buffer) MoveCursorDown(n int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cursorY += n
	if b.cursorY >= b.rows {
		b.cursorY = b.rows - 1
	}
	b.markDirty()
}

// MoveCursorForward moves cursor right n columns without wrapping (CSI C)
func (b *Buffer) MoveCursorForward(n int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cursorX += n
	if b.cursorX >= b.cols {
		b.cursorX = b.cols - 1
	}
	b.markDirty()
}

// MoveCursorBackward moves cursor left n columns without wrapping (CSI D)
func (b *Buffer) MoveCursorBackward(n int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cursorX -= n
	if b.cursorX < 0 {
		b.cursorX = 0
	}
	b.markDirty()
}
