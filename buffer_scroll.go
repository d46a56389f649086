package cydterm

// --- Scrollback and Viewport ---
//
// The viewport height is passed into every call rather than stored:
// frontends shrink it while an overlay (input bar, on-screen keyboard)
// is shown, and the buffer must never cache a stale height.

// GetScrollOffset returns the current scroll offset in lines. Zero means
// the newest content is visible; larger values look further back.
func (b *Buffer) GetScrollOffset() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.scrollOffset
}

// GetMaxScrollOffset returns the maximum valid scroll offset for the
// given viewport height.
func (b *Buffer) GetMaxScrollOffset(viewportRows int) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.maxScrollOffsetInternal(viewportRows)
}

func (b *Buffer) maxScrollOffsetInternal(viewportRows int) int {
	max := b.totalLines - viewportRows
	if max < 0 {
		max = 0
	}
	return max
}

func (b *Buffer) clampScrollOffsetInternal(offset, viewportRows int) int {
	if offset < 0 {
		return 0
	}
	if max := b.maxScrollOffsetInternal(viewportRows); offset > max {
		return max
	}
	return offset
}

// ScrollBy adjusts the scroll offset by delta lines, clamped to the
// valid range for the given viewport height. Positive delta moves toward
// older history, negative toward the most recent content.
func (b *Buffer) ScrollBy(delta, viewportRows int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.scrollOffset = b.clampScrollOffsetInternal(b.scrollOffset+delta, viewportRows)
	b.markDirty()
}

// SetScrollOffset sets an absolute scroll offset, clamped.
func (b *Buffer) SetScrollOffset(offset, viewportRows int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.scrollOffset = b.clampScrollOffsetInternal(offset, viewportRows)
	b.markDirty()
}

// ScrollToBottom jumps back to the newest content.
func (b *Buffer) ScrollToBottom() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.scrollOffset = 0
	b.markDirty()
}

// VisibleRange returns the half-open absolute line range [first, last)
// currently visible in a viewport of the given height:
// first = max(0, totalLines - viewportRows - scrollOffset). Lines older
// than totalLines - bufferRows inside the range have been overwritten;
// GetLine returns them blank.
func (b *Buffer) VisibleRange(viewportRows int) (first, last int) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.visibleRangeInternal(viewportRows)
}

func (b *Buffer) visibleRangeInternal(viewportRows int) (first, last int) {
	first = b.totalLines - viewportRows - b.scrollOffset
	if first < 0 {
		first = 0
	}
	last = first + viewportRows
	if last > b.totalLines {
		last = b.totalLines
	}
	return first, last
}

// GetLine returns a copy of the line at the given absolute index. Lines
// that were never written, lie in the future, or have been evicted from
// the circular buffer come back blank.
func (b *Buffer) GetLine(abs int) []Cell {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]Cell, b.cols)
	if abs < 0 || abs >= b.totalLines || abs < b.totalLines-b.bufferRows {
		for i := range out {
			out[i] = Cell{Rune: ' ', Fg: DefaultColor(), Bg: DefaultColor()}
		}
		return out
	}
	copy(out, b.lines[abs%b.bufferRows])
	return out
}

// GetVisibleLines returns copies of the lines in the visible range along
// with the absolute index of the first one. Renderers draw from this
// snapshot without holding the buffer lock.
func (b *Buffer) GetVisibleLines(viewportRows int) (lines [][]Cell, first int) {
	b.mu.RLock()
	f, l := b.visibleRangeInternal(viewportRows)
	oldest := b.totalLines - b.bufferRows
	lines = make([][]Cell, 0, l-f)
	for abs := f; abs < l; abs++ {
		line := make([]Cell, b.cols)
		if abs >= oldest {
			copy(line, b.lines[abs%b.bufferRows])
		} else {
			for i := range line {
				line[i] = Cell{Rune: ' ', Fg: DefaultColor(), Bg: DefaultColor()}
			}
		}
		lines = append(lines, line)
	}
	b.mu.RUnlock()
	return lines, f
}

// CursorAbsoluteLine translates the cursor's physical slot back to its
// absolute line number. Before the buffer wraps the two are equal; after
// wrapping, the absolute line is recovered from the newest line's slot
// and the circular distance back to the cursor's slot.
func (b *Buffer) CursorAbsoluteLine() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.cursorAbsoluteLineInternal()
}

func (b *Buffer) cursorAbsoluteLineInternal() int {
	if b.totalLines <= b.bufferRows {
		return b.cursorY
	}
	newestSlot := (b.totalLines - 1) % b.bufferRows
	offset := (newestSlot - b.cursorY + b.bufferRows) % b.bufferRows
	return b.totalLines - 1 - offset
}

// GetCursorScreenPosition returns the cursor's column and row within a
// viewport of the given height, and whether it is visible at the current
// scroll offset.
func (b *Buffer) GetCursorScreenPosition(viewportRows int) (x, y int, visible bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	first, last := b.visibleRangeInternal(viewportRows)
	abs := b.cursorAbsoluteLineInternal()
	if abs < first || abs >= last {
		return 0, 0, false
	}
	return b.cursorX, abs - first, true
}

// EnsureCursorVisible recomputes the scroll offset so the cursor's
// absolute line lands on targetRow within a viewport of the given
// height. Frontends call this when an overlay shrinks the viewport;
// targetRow is their policy (typically a few rows above the overlay to
// keep context visible), never decided here.
func (b *Buffer) EnsureCursorVisible(viewportRows, targetRow int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if targetRow < 0 {
		targetRow = 0
	}

	targetFirst := b.cursorAbsoluteLineInternal() - targetRow
	if targetFirst < 0 {
		targetFirst = 0
	}

	// first = totalLines - viewportRows - offset, solved for offset.
	b.scrollOffset = b.clampScrollOffsetInternal(
		b.totalLines-viewportRows-targetFirst, viewportRows)
	b.markDirty()
}
