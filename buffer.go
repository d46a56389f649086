package cydterm

import "sync"

// Cell is one character cell: a scalar value plus its logical colors.
type Cell struct {
	Rune rune
	Fg   Color
	Bg   Color
}

// Buffer is the scrollback store and cursor/viewport controller. Lines
// live in a fixed circular array of bufferRows slots; totalLines counts
// every line ever opened, so the physical slot of absolute line i is
// i % bufferRows and anything older than totalLines-bufferRows has been
// overwritten.
//
// All state is guarded by one mutex. No operation is safe to interleave
// with another (a scroll adjustment racing a newline can desynchronize
// the scroll offset), so concurrent hosts must go through the exported
// methods and nothing else.
type Buffer struct {
	mu sync.RWMutex

	cols       int
	rows       int // full-screen viewport height, bounds CSI cursor moves
	bufferRows int

	lines [][]Cell

	// cursorY is a physical slot index. While totalLines <= bufferRows it
	// equals the cursor's absolute line; after the buffer wraps the two
	// diverge and CursorAbsoluteLine recovers the mapping.
	cursorX int
	cursorY int

	totalLines   int
	scrollOffset int

	currentFg Color
	currentBg Color

	onDirty func()
}

// NewBuffer creates a terminal buffer with the given geometry.
func NewBuffer(cfg Config) *Buffer {
	cfg = cfg.normalize()
	b := &Buffer{
		cols:       cfg.Cols,
		rows:       cfg.Rows,
		bufferRows: cfg.BufferRows,
		totalLines: 1,
		currentFg:  DefaultColor(),
		currentBg:  DefaultColor(),
	}
	b.lines = make([][]Cell, cfg.BufferRows)
	for i := range b.lines {
		b.lines[i] = b.blankLine()
	}
	return b
}

// SetDirtyCallback sets a function called whenever visible state changes.
// Frontends use it to schedule a repaint.
func (b *Buffer) SetDirtyCallback(fn func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onDirty = fn
}

// markDirty must be called with the lock held.
func (b *Buffer) markDirty() {
	if b.onDirty != nil {
		b.onDirty()
	}
}

// GetSize returns the column count and full-screen row count.
func (b *Buffer) GetSize() (cols, rows int) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.cols, b.rows
}

// GetBufferRows returns the circular scrollback capacity in lines.
func (b *Buffer) GetBufferRows() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.bufferRows
}

// GetTotalLines returns the count of lines opened so far, including the
// line the cursor is on.
func (b *Buffer) GetTotalLines() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.totalLines
}

// --- Color State ---

// SetForeground sets the color applied to subsequently written cells
func (b *Buffer) SetForeground(c Color) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.currentFg = c
}

// SetBackground sets the background applied to subsequently written cells
func (b *Buffer) SetBackground(c Color) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.currentBg = c
}

// ResetColors restores the session default color pair (SGR 0)
func (b *Buffer) ResetColors() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.currentFg = DefaultColor()
	b.currentBg = DefaultColor()
}

// GetColors returns the current drawing colors
func (b *Buffer) GetColors() (fg, bg Color) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.currentFg, b.currentBg
}

func (b *Buffer) blankCell() Cell {
	return Cell{Rune: ' ', Fg: b.currentFg, Bg: b.currentBg}
}

func (b *Buffer) blankLine() []Cell {
	line := make([]Cell, b.cols)
	for i := range line {
		line[i] = Cell{Rune: ' ', Fg: DefaultColor(), Bg: DefaultColor()}
	}
	return line
}

// clearSlot blank-fills one physical line slot. Must be called with the
// lock held.
func (b *Buffer) clearSlot(slot int) {
	line := b.lines[slot]
	for i := range line {
		line[i] = Cell{Rune: ' ', Fg: DefaultColor(), Bg: DefaultColor()}
	}
}
