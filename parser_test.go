package cydterm

import (
	"strings"
	"testing"
)

func testParser() (*Parser, *Buffer) {
	b := NewBuffer(DefaultConfig())
	return NewParser(b), b
}

func TestCursorPosition(t *testing.T) {
	p, b := testParser()
	p.Parse([]byte("\x1b[10;5H"))

	x, y := b.GetCursor()
	if x != 4 || y != 9 {
		t.Errorf("cursor = (%d, %d), want (4, 9)", x, y)
	}
}

func TestCursorPositionDefaults(t *testing.T) {
	p, b := testParser()
	p.Parse([]byte("\x1b[10;5H"))
	p.Parse([]byte("\x1b[H"))

	x, y := b.GetCursor()
	if x != 0 || y != 0 {
		t.Errorf("cursor = (%d, %d), want (0, 0) for ESC[H", x, y)
	}
}

func TestCursorPositionClamped(t *testing.T) {
	p, b := testParser()
	p.Parse([]byte("\x1b[999;999f"))

	x, y := b.GetCursor()
	if x != DefaultCols-1 || y != DefaultRows-1 {
		t.Errorf("cursor = (%d, %d), want (%d, %d)", x, y, DefaultCols-1, DefaultRows-1)
	}
}

func TestCursorMoves(t *testing.T) {
	p, b := testParser()
	p.Parse([]byte("\x1b[10;10H"))

	p.Parse([]byte("\x1b[3A")) // up 3
	_, y := b.GetCursor()
	if y != 6 {
		t.Errorf("after ESC[3A, row = %d, want 6", y)
	}

	p.Parse([]byte("\x1b[B")) // down, default 1
	_, y = b.GetCursor()
	if y != 7 {
		t.Errorf("after ESC[B, row = %d, want 7", y)
	}

	p.Parse([]byte("\x1b[5C")) // forward 5
	x, _ := b.GetCursor()
	if x != 14 {
		t.Errorf("after ESC[5C, col = %d, want 14", x)
	}

	p.Parse([]byte("\x1b[100D")) // back, clamped at left edge
	x, _ = b.GetCursor()
	if x != 0 {
		t.Errorf("after ESC[100D, col = %d, want 0", x)
	}

	p.Parse([]byte("\x1b[100A")) // up, clamped at top
	_, y = b.GetCursor()
	if y != 0 {
		t.Errorf("after ESC[100A, row = %d, want 0", y)
	}
}

func TestSGRReset(t *testing.T) {
	p, b := testParser()
	p.Parse([]byte("\x1b[31m"))
	if fg, _ := b.GetColors(); fg != PaletteColor(PaletteRed) {
		t.Fatalf("foreground = %+v, want red", fg)
	}

	p.Parse([]byte("\x1b[m"))
	fg, bg := b.GetColors()
	if fg != DefaultColor() || bg != DefaultColor() {
		t.Errorf("colors = (%+v, %+v), want session defaults", fg, bg)
	}
}

func TestSGRForegroundAppliesToCells(t *testing.T) {
	p, b := testParser()
	p.Parse([]byte("\x1b[32mok\x1b[0m fine"))

	line := b.GetLine(0)
	if line[0].Fg != PaletteColor(PaletteGreen) {
		t.Errorf("cell 0 fg = %+v, want green", line[0].Fg)
	}
	if line[3].Fg != DefaultColor() {
		t.Errorf("cell 3 fg = %+v, want default after reset", line[3].Fg)
	}
}

func TestSGRUnknownValuesIgnored(t *testing.T) {
	p, b := testParser()
	p.Parse([]byte("\x1b[31m"))
	p.Parse([]byte("\x1b[95m")) // out of the supported range
	if fg, _ := b.GetColors(); fg != PaletteColor(PaletteRed) {
		t.Errorf("foreground = %+v, want red (unchanged)", fg)
	}
}

func TestEraseDisplay(t *testing.T) {
	p, b := testParser()
	p.Parse([]byte("content\r\nmore\r\n"))

	// Modes other than 2 are no-ops.
	p.Parse([]byte("\x1b[J"))
	p.Parse([]byte("\x1b[1J"))
	if got := lineText(b.GetLine(0)); got != "content" {
		t.Fatalf("line 0 = %q, want untouched content", got)
	}

	p.Parse([]byte("\x1b[2J"))
	if b.GetTotalLines() != 1 {
		t.Errorf("totalLines = %d, want 1 after ESC[2J", b.GetTotalLines())
	}
	if got := lineText(b.GetLine(0)); got != "" {
		t.Errorf("line 0 = %q, want blank", got)
	}
}

func TestEraseToEndOfLine(t *testing.T) {
	p, b := testParser()
	p.Parse([]byte("hello world\r"))
	p.Parse([]byte("\x1b[5C")) // cursor to column 5
	p.Parse([]byte("\x1b[K"))

	if got := lineText(b.GetLine(0)); got != "hello" {
		t.Errorf("line = %q, want %q", got, "hello")
	}
}

func TestNonCSISequenceDiscarded(t *testing.T) {
	p, b := testParser()
	p.Parse([]byte("\x1b(Bafter"))

	// The two-byte sequence is absorbed; following text flows through.
	if got := lineText(b.GetLine(0)); got != "after" {
		t.Errorf("line = %q, want %q", got, "after")
	}
	x, y := b.GetCursor()
	if x != 5 || y != 0 {
		t.Errorf("cursor = (%d, %d), want (5, 0)", x, y)
	}
}

func TestUnknownCSITerminatorIgnored(t *testing.T) {
	p, b := testParser()
	p.Parse([]byte("\x1b[5Xtext"))

	if got := lineText(b.GetLine(0)); got != "text" {
		t.Errorf("line = %q, want %q", got, "text")
	}
}

func TestEscapeBufferOverflow(t *testing.T) {
	p, b := testParser()

	// A sequence that never terminates within the buffer cap aborts
	// back to ground; the remaining bytes print as ordinary text.
	seq := "\x1b[" + strings.Repeat("1;", 20) + "H"
	p.Parse([]byte(seq))

	x, y := b.GetCursor()
	if y == 0 && x == 0 {
		t.Log("cursor unchanged, as expected")
	}
	if got := lineText(b.GetLine(0)); !strings.HasSuffix(got, "H") {
		t.Errorf("line = %q, want trailing bytes printed after overflow", got)
	}

	// Parsing recovers: a fresh sequence works.
	p.Parse([]byte("\x1b[2;2H"))
	x, y = b.GetCursor()
	if x != 1 || y != 1 {
		t.Errorf("cursor = (%d, %d), want (1, 1) after recovery", x, y)
	}
}

func TestEscapeInterruptsUTF8(t *testing.T) {
	p, b := testParser()

	// An escape sequence arriving between the bytes of a multibyte
	// character is intercepted before the decoder; the pending partial
	// character completes once the sequence is done.
	utf8 := []byte("ж") // 0xD0 0xB6
	p.Parse([]byte{utf8[0]})
	p.Parse([]byte("\x1b[31m"))
	p.Parse([]byte{utf8[1]})

	if got := lineText(b.GetLine(0)); got != "ж" {
		t.Errorf("line = %q, want %q", got, "ж")
	}
	line := b.GetLine(0)
	if line[0].Fg != PaletteColor(PaletteRed) {
		t.Errorf("cell fg = %+v, want red applied before completion", line[0].Fg)
	}
}

func TestMultibyteTextThroughParser(t *testing.T) {
	p, b := testParser()
	p.Parse([]byte("привет мир"))

	if got := lineText(b.GetLine(0)); got != "привет мир" {
		t.Errorf("line = %q, want %q", got, "привет мир")
	}
}
