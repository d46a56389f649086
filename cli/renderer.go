package cli

import (
	"fmt"
	"strings"
	"sync"
	"time"

	cydterm "github.com/CheshirCa/CYD-terminal"
	"github.com/mattn/go-runewidth"
)

// Renderer draws the emulated screen into the host terminal. It renders
// differentially: each frame is compared cell-by-cell against the last
// one and only changed cells are written, with SGR state carried across
// runs so unchanged colors cost nothing.
type Renderer struct {
	term *Terminal
	mu   sync.Mutex

	renderNeeded bool
	lastCells    [][]renderedCell

	output strings.Builder
}

// renderedCell is the last drawn state of one host cell
type renderedCell struct {
	char rune
	fg   cydterm.RGB
	bg   cydterm.RGB
}

// Single-line box drawing set for the window border.
const (
	borderTopLeft     = '┌'
	borderTopRight    = '┐'
	borderBottomLeft  = '└'
	borderBottomRight = '┘'
	borderHorizontal  = '─'
	borderVertical    = '│'
	borderTitleLeft   = '┤'
	borderTitleRight  = '├'
)

// NewRenderer creates a renderer for the terminal
func NewRenderer(term *Terminal) *Renderer {
	return &Renderer{
		term:         term,
		renderNeeded: true,
	}
}

// RequestRender marks that a render is needed
func (r *Renderer) RequestRender() {
	r.mu.Lock()
	r.renderNeeded = true
	r.mu.Unlock()
}

// forceFullRender discards the diff state so the next frame repaints
// everything. Needed after layout or scheme changes.
func (r *Renderer) forceFullRender() {
	r.mu.Lock()
	r.lastCells = nil
	r.renderNeeded = true
	r.mu.Unlock()
}

// RenderLoop renders at up to ~60fps, but only when something changed
func (r *Renderer) RenderLoop() {
	ticker := time.NewTicker(16 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.mu.Lock()
			needsRender := r.renderNeeded
			r.renderNeeded = false
			r.mu.Unlock()

			if needsRender {
				r.Render()
			}
		case <-r.term.stopRender:
			return
		}
	}
}

// Render draws one frame
func (r *Renderer) Render() {
	opts := r.term.options
	buffer := r.term.buffer
	scheme := r.term.scheme()

	viewportRows := r.term.viewportRows()
	inputBarOpen := r.term.InputBarOpen()
	lines, _ := buffer.GetVisibleLines(viewportRows)
	scrollOffset := buffer.GetScrollOffset()

	r.output.Reset()
	r.output.WriteString("\033[?25l")

	r.renderBorder(opts)

	// Content rows start inside the border at host row 2, column 2.
	const contentStartX, contentStartY = 1, 1

	prevCells := r.lastCells
	needsFullRender := prevCells == nil || len(prevCells) != opts.Rows

	newCells := make([][]renderedCell, opts.Rows)
	for y := range newCells {
		newCells[y] = make([]renderedCell, opts.Cols)
	}

	var currentFg, currentBg cydterm.RGB
	firstAttr := true

	fill := func(cells []cydterm.Cell, compose []renderedCell) {
		for x := 0; x < opts.Cols; x++ {
			if cells != nil {
				compose[x] = renderedCell{
					char: cells[x].Rune,
					fg:   scheme.Resolve(cells[x].Fg, true),
					bg:   scheme.Resolve(cells[x].Bg, false),
				}
			}
		}
	}

	for y := 0; y < viewportRows; y++ {
		if y < len(lines) {
			fill(lines[y], newCells[y])
		} else {
			for x := range newCells[y] {
				newCells[y][x] = renderedCell{char: ' ', fg: scheme.DefaultFg, bg: scheme.DefaultBg}
			}
		}
	}
	if inputBarOpen {
		r.fillInputBar(newCells, viewportRows, scheme)
	}

	for y := 0; y < opts.Rows; y++ {
		rowChanged := needsFullRender || len(prevCells[y]) != opts.Cols
		skip := false
		for x := 0; x < opts.Cols; x++ {
			if skip {
				skip = false
				continue
			}
			cell := newCells[y][x]

			if !rowChanged && prevCells[y][x] == cell {
				continue
			}

			fmt.Fprintf(&r.output, "\033[%d;%dH", contentStartY+y+1, contentStartX+x+1)

			var sgr []string
			if firstAttr || cell.fg != currentFg {
				sgr = append(sgr, fmt.Sprintf("38;2;%d;%d;%d", cell.fg.R, cell.fg.G, cell.fg.B))
				currentFg = cell.fg
			}
			if firstAttr || cell.bg != currentBg {
				sgr = append(sgr, fmt.Sprintf("48;2;%d;%d;%d", cell.bg.R, cell.bg.G, cell.bg.B))
				currentBg = cell.bg
			}
			firstAttr = false
			if len(sgr) > 0 {
				r.output.WriteString("\033[")
				r.output.WriteString(strings.Join(sgr, ";"))
				r.output.WriteString("m")
			}

			switch w := runewidth.RuneWidth(cell.char); {
			case cell.char == 0 || w == 0:
				r.output.WriteRune(' ')
			case w == 2 && x+1 < opts.Cols:
				// A wide rune covers the next column too; skip its diff
				// cell this frame so it is not overdrawn.
				r.output.WriteRune(cell.char)
				newCells[y][x+1] = renderedCell{char: 0, fg: cell.fg, bg: cell.bg}
				skip = true
			default:
				r.output.WriteRune(cell.char)
			}
		}
	}

	r.lastCells = newCells

	if opts.ShowStatusBar {
		r.renderStatusBar(opts, scrollOffset)
	}

	r.positionCursor(opts, viewportRows, inputBarOpen)

	fmt.Print(r.output.String())
}

// fillInputBar overlays the separator and compose line onto the bottom
// rows of the window.
func (r *Renderer) fillInputBar(cells [][]renderedCell, viewportRows int, scheme *cydterm.ColorScheme) {
	opts := r.term.options
	if viewportRows+1 >= opts.Rows {
		return
	}

	sep := cells[viewportRows]
	for x := range sep {
		sep[x] = renderedCell{char: borderHorizontal, fg: scheme.DefaultFg, bg: scheme.DefaultBg}
	}

	input := cells[viewportRows+1]
	line := "> " + r.term.composeSnapshot()
	runes := []rune(line)
	// Keep the tail visible when the line outgrows the window.
	if len(runes) > opts.Cols {
		runes = runes[len(runes)-opts.Cols:]
	}
	for x := range input {
		ch := ' '
		if x < len(runes) {
			ch = runes[x]
		}
		input[x] = renderedCell{char: ch, fg: scheme.DefaultFg, bg: scheme.DefaultBg}
	}
}

// renderBorder draws the window frame with the title in the top edge.
func (r *Renderer) renderBorder(opts Options) {
	// Top edge
	r.output.WriteString("\033[0m\033[1;1H")
	r.output.WriteRune(borderTopLeft)
	title := opts.Title
	if title != "" {
		if len(title) > opts.Cols-4 {
			title = title[:opts.Cols-4]
		}
		r.output.WriteRune(borderTitleLeft)
		r.output.WriteString(title)
		r.output.WriteRune(borderTitleRight)
	}
	for i := len(title) + boolToInt(title != "")*2; i < opts.Cols; i++ {
		r.output.WriteRune(borderHorizontal)
	}
	r.output.WriteRune(borderTopRight)

	// Side edges
	for y := 0; y < opts.Rows; y++ {
		fmt.Fprintf(&r.output, "\033[%d;1H%c", y+2, borderVertical)
		fmt.Fprintf(&r.output, "\033[%d;%dH%c", y+2, opts.Cols+2, borderVertical)
	}

	// Bottom edge
	fmt.Fprintf(&r.output, "\033[%d;1H", opts.Rows+2)
	r.output.WriteRune(borderBottomLeft)
	for i := 0; i < opts.Cols; i++ {
		r.output.WriteRune(borderHorizontal)
	}
	r.output.WriteRune(borderBottomRight)
}

// renderStatusBar draws the inverse-video status line under the window:
// activity markers, scroll position and the session log file.
func (r *Renderer) renderStatusBar(opts Options, scrollOffset int) {
	rx, tx := r.term.activitySnapshot()

	var status strings.Builder
	status.WriteString(" ")
	if rx {
		status.WriteString("RX↓ ")
	} else {
		status.WriteString("    ")
	}
	if tx {
		status.WriteString("TX↑ ")
	} else {
		status.WriteString("    ")
	}
	if scrollOffset > 0 {
		fmt.Fprintf(&status, "[scroll +%d] ", scrollOffset)
	}
	if r.term.logger != nil {
		fmt.Fprintf(&status, "log:%s ", r.term.logger.Path())
	}

	text := runewidth.FillRight(runewidth.Truncate(status.String(), opts.Cols+2, ""), opts.Cols+2)
	fmt.Fprintf(&r.output, "\033[%d;1H\033[7m%s\033[0m", opts.Rows+3, text)
}

// positionCursor parks the host cursor: on the compose line while the
// input bar is open, else on the emulated cursor when it is scrolled
// into view.
func (r *Renderer) positionCursor(opts Options, viewportRows int, inputBarOpen bool) {
	if inputBarOpen {
		col := len([]rune("> "+r.term.composeSnapshot())) + 1
		if col > opts.Cols {
			col = opts.Cols
		}
		fmt.Fprintf(&r.output, "\033[%d;%dH\033[?25h", viewportRows+3, col+1)
		return
	}

	x, y, visible := r.term.buffer.GetCursorScreenPosition(viewportRows)
	if !visible {
		return
	}
	fmt.Fprintf(&r.output, "\033[%d;%dH\033[?25h", y+2, x+2)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
