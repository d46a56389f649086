// Package cydtermgtk provides a GTK3 widget frontend for CYD-terminal.
package cydtermgtk

import (
	"fmt"
	"sync"

	cydterm "github.com/CheshirCa/CYD-terminal"
	"github.com/gotk3/gotk3/cairo"
	"github.com/gotk3/gotk3/gdk"
	"github.com/gotk3/gotk3/glib"
	"github.com/gotk3/gotk3/gtk"
)

// Widget renders a session's visible range into a GTK drawing area and
// turns widget input into session bytes.
type Widget struct {
	mu sync.Mutex

	session *cydterm.Session
	buffer  *cydterm.Buffer

	drawingArea *gtk.DrawingArea
	scrollbar   *gtk.Scrollbar
	box         *gtk.Box

	scheme     *cydterm.ColorScheme
	fontFamily string
	fontSize   float64

	cellW float64
	cellH float64

	// suppressScrollbar blocks feedback while the code, not the user,
	// moves the scrollbar.
	suppressScrollbar bool

	inputCallback func([]byte)
}

// NewWidget creates a terminal widget around an existing session.
func NewWidget(session *cydterm.Session) (*Widget, error) {
	w := &Widget{
		session:    session,
		buffer:     session.Buffer(),
		scheme:     cydterm.GreenScheme(),
		fontFamily: "Monospace",
		fontSize:   14,
	}
	w.updateCellMetrics()

	var err error
	w.box, err = gtk.BoxNew(gtk.ORIENTATION_HORIZONTAL, 0)
	if err != nil {
		return nil, fmt.Errorf("create box: %w", err)
	}

	w.drawingArea, err = gtk.DrawingAreaNew()
	if err != nil {
		return nil, fmt.Errorf("create drawing area: %w", err)
	}
	w.drawingArea.SetCanFocus(true)
	w.drawingArea.AddEvents(int(gdk.SCROLL_MASK | gdk.KEY_PRESS_MASK | gdk.BUTTON_PRESS_MASK))

	cols, rows := w.buffer.GetSize()
	w.drawingArea.SetSizeRequest(int(float64(cols)*w.cellW), int(float64(rows)*w.cellH))

	w.drawingArea.Connect("draw", w.onDraw)
	w.drawingArea.Connect("scroll-event", w.onScroll)
	w.drawingArea.Connect("key-press-event", w.onKeyPress)
	w.drawingArea.Connect("button-press-event", func(da *gtk.DrawingArea, ev *gdk.Event) bool {
		da.GrabFocus()
		return true
	})

	adjustment, err := gtk.AdjustmentNew(0, 0, 1, 1, float64(rows), float64(rows))
	if err != nil {
		return nil, fmt.Errorf("create adjustment: %w", err)
	}
	w.scrollbar, err = gtk.ScrollbarNew(gtk.ORIENTATION_VERTICAL, adjustment)
	if err != nil {
		return nil, fmt.Errorf("create scrollbar: %w", err)
	}
	w.scrollbar.Connect("value-changed", w.onScrollbarChanged)

	w.box.PackStart(w.drawingArea, true, true, 0)
	w.box.PackStart(w.scrollbar, false, false, 0)

	w.buffer.SetDirtyCallback(func() {
		glib.IdleAdd(func() {
			w.syncScrollbar()
			w.drawingArea.QueueDraw()
		})
	})

	return w, nil
}

// Box returns the container to pack into a window.
func (w *Widget) Box() *gtk.Box {
	return w.box
}

// SetColorScheme swaps the display colors.
func (w *Widget) SetColorScheme(scheme *cydterm.ColorScheme) {
	w.mu.Lock()
	w.scheme = scheme
	w.mu.Unlock()
	w.drawingArea.QueueDraw()
}

// SetFont sets the monospace font used for cells.
func (w *Widget) SetFont(family string, size float64) {
	w.mu.Lock()
	w.fontFamily = family
	w.fontSize = size
	w.mu.Unlock()
	w.updateCellMetrics()
	cols, rows := w.buffer.GetSize()
	w.drawingArea.SetSizeRequest(int(float64(cols)*w.cellW), int(float64(rows)*w.cellH))
	w.drawingArea.QueueDraw()
}

// SetInputCallback sets the receiver for keyboard-generated bytes.
func (w *Widget) SetInputCallback(fn func([]byte)) {
	w.mu.Lock()
	w.inputCallback = fn
	w.mu.Unlock()
}

func (w *Widget) updateCellMetrics() {
	// Monospace advance approximation; onDraw measures precisely.
	w.cellW = w.fontSize * 0.6
	w.cellH = w.fontSize * 1.3
}

func (w *Widget) viewportRows() int {
	_, rows := w.buffer.GetSize()
	return rows
}

// syncScrollbar reflects buffer state into the scrollbar without
// triggering a feedback scroll.
func (w *Widget) syncScrollbar() {
	rows := w.viewportRows()
	total := w.buffer.GetTotalLines()
	first, _ := w.buffer.VisibleRange(rows)

	adj := w.scrollbar.GetAdjustment()
	w.mu.Lock()
	w.suppressScrollbar = true
	w.mu.Unlock()
	adj.SetLower(0)
	adj.SetUpper(float64(total))
	adj.SetPageSize(float64(rows))
	adj.SetValue(float64(first))
	w.mu.Lock()
	w.suppressScrollbar = false
	w.mu.Unlock()
}

func (w *Widget) onScrollbarChanged() {
	w.mu.Lock()
	suppressed := w.suppressScrollbar
	w.mu.Unlock()
	if suppressed {
		return
	}

	rows := w.viewportRows()
	first := int(w.scrollbar.GetAdjustment().GetValue())
	total := w.buffer.GetTotalLines()
	// first = total - rows - offset
	w.buffer.SetScrollOffset(total-rows-first, rows)
	w.drawingArea.QueueDraw()
}

func (w *Widget) onScroll(da *gtk.DrawingArea, ev *gdk.Event) bool {
	scrollEvent := gdk.EventScrollNewFromEvent(ev)
	rows := w.viewportRows()

	switch scrollEvent.Direction() {
	case gdk.SCROLL_UP:
		w.buffer.ScrollBy(3, rows)
	case gdk.SCROLL_DOWN:
		w.buffer.ScrollBy(-3, rows)
	default:
		return false
	}
	return true
}

func (w *Widget) onKeyPress(da *gtk.DrawingArea, ev *gdk.Event) bool {
	keyEvent := gdk.EventKeyNewFromEvent(ev)
	data := keyvalToBytes(keyEvent.KeyVal())
	if data == nil {
		return false
	}

	w.mu.Lock()
	callback := w.inputCallback
	w.mu.Unlock()
	if callback != nil {
		callback(data)
	} else {
		w.session.Send(data)
	}
	return true
}

// keyvalToBytes maps a GDK keyval to the bytes sent to the remote side.
func keyvalToBytes(keyval uint) []byte {
	switch keyval {
	case gdk.KEY_Return, gdk.KEY_KP_Enter:
		return []byte("\r")
	case gdk.KEY_BackSpace:
		return []byte{0x08}
	case gdk.KEY_Tab:
		return []byte{'\t'}
	case gdk.KEY_Escape:
		return []byte{0x1b}
	case gdk.KEY_Up:
		return []byte("\x1b[A")
	case gdk.KEY_Down:
		return []byte("\x1b[B")
	case gdk.KEY_Right:
		return []byte("\x1b[C")
	case gdk.KEY_Left:
		return []byte("\x1b[D")
	}

	r := gdk.KeyvalToUnicode(keyval)
	if r == 0 {
		return nil
	}
	return []byte(string(r))
}

func (w *Widget) onDraw(da *gtk.DrawingArea, cr *cairo.Context) bool {
	w.mu.Lock()
	scheme := w.scheme
	fontFamily := w.fontFamily
	fontSize := w.fontSize
	w.mu.Unlock()

	cr.SelectFontFace(fontFamily, cairo.FONT_SLANT_NORMAL, cairo.FONT_WEIGHT_NORMAL)
	cr.SetFontSize(fontSize)
	extents := cr.FontExtents()
	cellW := extents.MaxXAdvance
	cellH := extents.Height
	if cellW <= 0 {
		cellW = w.cellW
	}

	rows := w.viewportRows()
	lines, _ := w.buffer.GetVisibleLines(rows)

	// Background wash
	bg := scheme.DefaultBg
	cr.SetSourceRGB(float64(bg.R)/255, float64(bg.G)/255, float64(bg.B)/255)
	cr.Paint()

	for y, line := range lines {
		for x, cell := range line {
			cellBg := scheme.Resolve(cell.Bg, false)
			if cellBg != bg {
				cr.SetSourceRGB(float64(cellBg.R)/255, float64(cellBg.G)/255, float64(cellBg.B)/255)
				cr.Rectangle(float64(x)*cellW, float64(y)*cellH, cellW, cellH)
				cr.Fill()
			}

			if cell.Rune == ' ' || cell.Rune == 0 {
				continue
			}
			fg := scheme.Resolve(cell.Fg, true)
			cr.SetSourceRGB(float64(fg.R)/255, float64(fg.G)/255, float64(fg.B)/255)
			cr.MoveTo(float64(x)*cellW, float64(y)*cellH+extents.Ascent)
			cr.ShowText(string(cell.Rune))
		}
	}

	// Cursor block
	if cx, cy, visible := w.buffer.GetCursorScreenPosition(rows); visible {
		fg := scheme.DefaultFg
		cr.SetSourceRGBA(float64(fg.R)/255, float64(fg.G)/255, float64(fg.B)/255, 0.6)
		cr.Rectangle(float64(cx)*cellW, float64(cy)*cellH, cellW, cellH)
		cr.Fill()
	}

	return false
}
