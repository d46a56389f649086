// Package cydtermqt provides a Qt widget frontend for CYD-terminal,
// built on the miqt bindings.
package cydtermqt

import (
	"sync"
	"sync/atomic"

	cydterm "github.com/CheshirCa/CYD-terminal"
	"github.com/mappu/miqt/qt"
)

// Widget renders a session's visible range into a QWidget and turns key
// and wheel events into session traffic.
type Widget struct {
	mu sync.Mutex

	session *cydterm.Session
	buffer  *cydterm.Buffer

	widget      *qt.QWidget
	updateTimer *qt.QTimer

	scheme     *cydterm.ColorScheme
	fontFamily string
	fontSize   int

	cellW int
	cellH int

	dirty atomic.Bool

	inputCallback func([]byte)
}

// NewWidget creates a terminal widget around an existing session.
func NewWidget(session *cydterm.Session) *Widget {
	w := &Widget{
		session:    session,
		buffer:     session.Buffer(),
		widget:     qt.NewQWidget2(),
		scheme:     cydterm.GreenScheme(),
		fontFamily: "Monospace",
		fontSize:   12,
	}
	w.updateFontMetrics()

	w.widget.SetFocusPolicy(qt.StrongFocus)

	cols, rows := w.buffer.GetSize()
	w.widget.SetMinimumSize2(cols*w.cellW, rows*w.cellH)

	w.widget.OnPaintEvent(func(super func(event *qt.QPaintEvent), event *qt.QPaintEvent) {
		w.paintEvent()
	})
	w.widget.OnKeyPressEvent(func(super func(event *qt.QKeyEvent), event *qt.QKeyEvent) {
		w.keyPressEvent(event)
	})
	w.widget.OnWheelEvent(func(super func(event *qt.QWheelEvent), event *qt.QWheelEvent) {
		w.wheelEvent(event)
	})

	// Repaints are coalesced: the dirty callback fires on the session's
	// reader goroutine, so it only sets a flag the GUI-thread timer
	// picks up.
	w.buffer.SetDirtyCallback(func() {
		w.dirty.Store(true)
	})
	w.updateTimer = qt.NewQTimer2(w.widget.QObject)
	w.updateTimer.OnTimeout(func() {
		if w.dirty.Swap(false) {
			w.widget.Update()
		}
	})
	w.updateTimer.Start(16)

	return w
}

// QWidget returns the wrapped widget for embedding in layouts.
func (w *Widget) QWidget() *qt.QWidget {
	return w.widget
}

// SetColorScheme swaps the display colors.
func (w *Widget) SetColorScheme(scheme *cydterm.ColorScheme) {
	w.mu.Lock()
	w.scheme = scheme
	w.mu.Unlock()
	w.widget.Update()
}

// SetFont sets the monospace font used for cells.
func (w *Widget) SetFont(family string, size int) {
	w.mu.Lock()
	w.fontFamily = family
	w.fontSize = size
	w.mu.Unlock()
	w.updateFontMetrics()
	cols, rows := w.buffer.GetSize()
	w.widget.SetMinimumSize2(cols*w.cellW, rows*w.cellH)
	w.widget.Update()
}

// SetInputCallback sets the receiver for keyboard-generated bytes.
// Without one, bytes go straight to the session.
func (w *Widget) SetInputCallback(fn func([]byte)) {
	w.mu.Lock()
	w.inputCallback = fn
	w.mu.Unlock()
}

func (w *Widget) updateFontMetrics() {
	font := qt.NewQFont6(w.fontFamily, w.fontSize)
	metrics := qt.NewQFontMetrics(font)
	w.cellW = metrics.HorizontalAdvance("M")
	w.cellH = metrics.Height()
	if w.cellW <= 0 {
		w.cellW = w.fontSize
	}
	if w.cellH <= 0 {
		w.cellH = w.fontSize * 2
	}
}

func (w *Widget) viewportRows() int {
	_, rows := w.buffer.GetSize()
	return rows
}

func (w *Widget) paintEvent() {
	w.mu.Lock()
	scheme := w.scheme
	fontFamily := w.fontFamily
	fontSize := w.fontSize
	w.mu.Unlock()

	painter := qt.NewQPainter2(w.widget.QPaintDevice)
	defer painter.End()

	font := qt.NewQFont6(fontFamily, fontSize)
	painter.SetFont(font)
	metrics := qt.NewQFontMetrics(font)
	ascent := metrics.Ascent()

	rows := w.viewportRows()
	lines, _ := w.buffer.GetVisibleLines(rows)

	bg := scheme.DefaultBg
	painter.FillRect5(0, 0, w.widget.Width(), w.widget.Height(),
		qt.NewQColor3(int(bg.R), int(bg.G), int(bg.B)))

	for y, line := range lines {
		for x, cell := range line {
			cellBg := scheme.Resolve(cell.Bg, false)
			if cellBg != bg {
				painter.FillRect5(x*w.cellW, y*w.cellH, w.cellW, w.cellH,
					qt.NewQColor3(int(cellBg.R), int(cellBg.G), int(cellBg.B)))
			}

			if cell.Rune == ' ' || cell.Rune == 0 {
				continue
			}
			fg := scheme.Resolve(cell.Fg, true)
			painter.SetPen(qt.NewQColor3(int(fg.R), int(fg.G), int(fg.B)))
			painter.DrawText3(x*w.cellW, y*w.cellH+ascent, string(cell.Rune))
		}
	}

	// Cursor block
	if cx, cy, visible := w.buffer.GetCursorScreenPosition(rows); visible {
		fg := scheme.DefaultFg
		painter.FillRect5(cx*w.cellW, cy*w.cellH, w.cellW, w.cellH,
			qt.NewQColor3(int(fg.R), int(fg.G), int(fg.B)))
	}
}

func (w *Widget) keyPressEvent(event *qt.QKeyEvent) {
	event.Accept()

	data := w.keyEventBytes(event)
	if data == nil {
		return
	}

	w.mu.Lock()
	callback := w.inputCallback
	w.mu.Unlock()
	if callback != nil {
		callback(data)
	} else {
		w.session.Send(data)
	}
}

func (w *Widget) keyEventBytes(event *qt.QKeyEvent) []byte {
	switch qt.Key(event.Key()) {
	case qt.Key_Return, qt.Key_Enter:
		return []byte("\r")
	case qt.Key_Backspace:
		return []byte{0x08}
	case qt.Key_Tab:
		return []byte{'\t'}
	case qt.Key_Escape:
		return []byte{0x1b}
	case qt.Key_Up:
		return []byte("\x1b[A")
	case qt.Key_Down:
		return []byte("\x1b[B")
	case qt.Key_Right:
		return []byte("\x1b[C")
	case qt.Key_Left:
		return []byte("\x1b[D")
	}

	text := event.Text()
	if text == "" {
		return nil
	}
	return []byte(text)
}

func (w *Widget) wheelEvent(event *qt.QWheelEvent) {
	delta := event.AngleDelta().Y()
	rows := w.viewportRows()
	switch {
	case delta > 0:
		w.buffer.ScrollBy(3, rows)
	case delta < 0:
		w.buffer.ScrollBy(-3, rows)
	}
	w.widget.Update()
}
