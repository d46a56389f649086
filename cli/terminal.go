package cli

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"time"

	cydterm "github.com/CheshirCa/CYD-terminal"
	"golang.org/x/term"
)

// activityHold is how long an RX/TX marker stays lit after traffic.
const activityHold = 500 * time.Millisecond

// defaultHistoryTarget is the screen row the cursor is parked on when
// the input bar opens, leaving a couple of rows of context above it.
const defaultHistoryTarget = 2

// inputBarRows is how many host rows the input bar reserves when open.
const inputBarRows = 2

// Options configures terminal creation
type Options struct {
	Cols       int // emulated columns (default 53)
	Rows       int // emulated rows (default 27)
	BufferRows int // scrollback capacity in lines (default 100)

	Scheme     *cydterm.ColorScheme // color scheme (default: GreenScheme)
	SchemeFile string               // optional JSON scheme, hot-reloaded on change

	Shell      string // command for RunShell (default: $SHELL or /bin/sh)
	WorkingDir string // initial working directory (default: current dir)

	Title         string // text in the top border
	ShowStatusBar bool   // render a status bar under the window
	LogDir        string // when set, session traffic is recorded there

	// HistoryTarget is the viewport row the cursor is scrolled to when
	// the input bar opens. 0 keeps the default.
	HistoryTarget int
}

// Terminal is a complete emulator session hosted in a CLI terminal
type Terminal struct {
	mu sync.Mutex

	session *cydterm.Session
	buffer  *cydterm.Buffer
	pty     cydterm.PTY
	cmd     *exec.Cmd
	logger  *cydterm.SessionLogger
	options Options

	renderer *Renderer
	input    *InputHandler
	watcher  *schemeWatcher

	// Input bar state. While the bar is open the viewport shrinks by
	// inputBarRows and keystrokes edit composeLine instead of going to
	// the byte source.
	inputBarOpen bool
	composeLine  []rune

	// Activity marker timestamps, written from the session callback.
	lastRX time.Time
	lastTX time.Time

	running    bool
	done       chan struct{}
	stopRender chan struct{}

	oldState *term.State

	onExit func(int)
}

// New creates a CLI-hosted terminal session
func New(opts Options) (*Terminal, error) {
	if opts.Cols <= 0 {
		opts.Cols = cydterm.DefaultCols
	}
	if opts.Rows <= 0 {
		opts.Rows = cydterm.DefaultRows
	}
	if opts.BufferRows <= 0 {
		opts.BufferRows = cydterm.DefaultBufferRows
	}
	if opts.Shell == "" {
		opts.Shell = os.Getenv("SHELL")
		if opts.Shell == "" {
			opts.Shell = "/bin/sh"
		}
	}
	if opts.WorkingDir == "" {
		opts.WorkingDir, _ = os.Getwd()
	}
	if opts.Scheme == nil {
		opts.Scheme = cydterm.GreenScheme()
	}
	if opts.HistoryTarget <= 0 {
		opts.HistoryTarget = defaultHistoryTarget
	}

	session := cydterm.NewSession(cydterm.Config{
		Cols:       opts.Cols,
		Rows:       opts.Rows,
		BufferRows: opts.BufferRows,
	})

	t := &Terminal{
		session:    session,
		buffer:     session.Buffer(),
		options:    opts,
		done:       make(chan struct{}),
		stopRender: make(chan struct{}),
	}

	if opts.SchemeFile != "" {
		if scheme, err := cydterm.LoadColorScheme(opts.SchemeFile); err == nil {
			t.options.Scheme = scheme
		}
	}

	if opts.LogDir != "" {
		logger, err := cydterm.NewSessionLogger(opts.LogDir)
		if err != nil {
			return nil, fmt.Errorf("session log: %w", err)
		}
		t.logger = logger
	}

	session.SetActivityCallback(t.onActivity)

	t.renderer = NewRenderer(t)
	t.input = NewInputHandler(t)

	t.buffer.SetDirtyCallback(func() {
		t.renderer.RequestRender()
	})

	return t, nil
}

// onActivity is installed as the session's activity callback: it feeds
// the traffic log and lights the status bar markers.
func (t *Terminal) onActivity(dir cydterm.Direction, payload []byte) {
	if t.logger != nil {
		t.logger.Log(dir, payload)
	}
	t.mu.Lock()
	if dir == cydterm.DirInbound {
		t.lastRX = time.Now()
	} else {
		t.lastTX = time.Now()
	}
	t.mu.Unlock()
	if t.options.ShowStatusBar {
		t.renderer.RequestRender()
	}
}

// Session returns the underlying session.
func (t *Terminal) Session() *cydterm.Session {
	return t.session
}

// SetExitCallback sets a function called when the child process exits.
func (t *Terminal) SetExitCallback(fn func(code int)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onExit = fn
}

// Start enters raw mode, switches to the alternate screen and starts
// the render and input loops.
func (t *Terminal) Start() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	oldState, err := term.MakeRaw(int(os.Stdin.Fd()))
	if err != nil {
		return fmt.Errorf("enter raw mode: %w", err)
	}
	t.oldState = oldState

	// Hide host cursor, alternate screen, clear
	fmt.Print("\033[?25l")
	fmt.Print("\033[?1049h")
	fmt.Print("\033[2J\033[H")

	if t.options.SchemeFile != "" {
		if w, err := newSchemeWatcher(t, t.options.SchemeFile); err == nil {
			t.watcher = w
		}
	}

	go t.renderer.RenderLoop()
	go t.input.InputLoop()

	return nil
}

// Stop restores the host terminal and closes the session log.
func (t *Terminal) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	select {
	case <-t.stopRender:
	default:
		close(t.stopRender)
	}

	if t.watcher != nil {
		t.watcher.Close()
		t.watcher = nil
	}

	if t.pty != nil {
		t.pty.Close()
		t.pty = nil
	}

	if t.logger != nil {
		t.logger.Close()
		t.logger = nil
	}

	// Leave alternate screen, show cursor, reset attributes
	fmt.Print("\033[?1049l")
	fmt.Print("\033[?25h")
	fmt.Print("\033[0m")

	if t.oldState != nil {
		term.Restore(int(os.Stdin.Fd()), t.oldState)
		t.oldState = nil
	}
}

// RunShell starts the configured shell as the session's byte source.
func (t *Terminal) RunShell() error {
	return t.RunCommand(t.options.Shell)
}

// RunCommand runs a command attached to the session through a PTY.
func (t *Terminal) RunCommand(name string, args ...string) error {
	t.mu.Lock()
	if t.running {
		t.mu.Unlock()
		return fmt.Errorf("command already running")
	}
	t.done = make(chan struct{})
	t.mu.Unlock()

	pty, err := cydterm.NewPTY()
	if err != nil {
		return fmt.Errorf("create pty: %w", err)
	}

	cmd := exec.Command(name, args...)
	cmd.Dir = t.options.WorkingDir
	cmd.Env = append(os.Environ(), "TERM=xterm")

	if err := pty.Start(cmd); err != nil {
		pty.Close()
		return fmt.Errorf("start pty: %w", err)
	}

	t.mu.Lock()
	t.pty = pty
	t.cmd = cmd
	t.running = true
	t.mu.Unlock()

	t.session.SetSink(pty)
	pty.Resize(t.options.Cols, t.options.Rows)

	go t.readLoop()

	go func() {
		exitCode := 0
		if err := cmd.Wait(); err != nil {
			if exitError, ok := err.(*exec.ExitError); ok {
				exitCode = exitError.ExitCode()
			}
		}
		t.mu.Lock()
		t.running = false
		onExit := t.onExit
		t.mu.Unlock()

		if onExit != nil {
			onExit(exitCode)
		}
		close(t.done)
	}()

	return nil
}

// Wait blocks until the child process exits.
func (t *Terminal) Wait() {
	<-t.done
}

// readLoop feeds PTY output into the session.
func (t *Terminal) readLoop() {
	buf := make([]byte, 4096)
	for {
		t.mu.Lock()
		pty := t.pty
		running := t.running
		t.mu.Unlock()

		if !running || pty == nil {
			return
		}

		n, err := pty.Read(buf)
		if n > 0 {
			t.session.Feed(buf[:n])
		}
		if err != nil {
			if err != io.EOF {
				fmt.Fprintf(os.Stderr, "read: %v\r\n", err)
			}
			return
		}
	}
}

// --- Viewport ---

// viewportRows returns the emulated rows currently visible, shrunk while
// the input bar is open.
func (t *Terminal) viewportRows() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.viewportRowsLocked()
}

func (t *Terminal) viewportRowsLocked() int {
	rows := t.options.Rows
	if t.inputBarOpen {
		rows -= inputBarRows
		if rows < 1 {
			rows = 1
		}
	}
	return rows
}

// ScrollUp scrolls toward older history
func (t *Terminal) ScrollUp(lines int) {
	t.buffer.ScrollBy(lines, t.viewportRows())
}

// ScrollDown scrolls toward the newest content
func (t *Terminal) ScrollDown(lines int) {
	t.buffer.ScrollBy(-lines, t.viewportRows())
}

// ScrollToBottom jumps back to the newest content
func (t *Terminal) ScrollToBottom() {
	t.buffer.ScrollToBottom()
}

// ScrollToTop scrolls to the oldest retained line
func (t *Terminal) ScrollToTop() {
	rows := t.viewportRows()
	t.buffer.SetScrollOffset(t.buffer.GetMaxScrollOffset(rows), rows)
}

// --- Input Bar ---

// ToggleInputBar opens or closes the command input bar. Opening shrinks
// the viewport and scrolls the cursor line to the configured target row
// so a few rows of context stay above the bar.
func (t *Terminal) ToggleInputBar() {
	t.mu.Lock()
	t.inputBarOpen = !t.inputBarOpen
	open := t.inputBarOpen
	if !open {
		t.composeLine = t.composeLine[:0]
	}
	rows := t.viewportRowsLocked()
	target := t.options.HistoryTarget
	t.mu.Unlock()

	if open {
		t.buffer.EnsureCursorVisible(rows, target)
	} else {
		t.buffer.ScrollToBottom()
	}
	t.renderer.forceFullRender()
	t.renderer.RequestRender()
}

// InputBarOpen reports whether the input bar is showing.
func (t *Terminal) InputBarOpen() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.inputBarOpen
}

// composeSnapshot returns the current compose line for rendering.
func (t *Terminal) composeSnapshot() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return string(t.composeLine)
}

// submitCompose sends the composed line and records it in history.
func (t *Terminal) submitCompose() {
	t.mu.Lock()
	line := string(t.composeLine)
	t.composeLine = t.composeLine[:0]
	t.mu.Unlock()

	t.session.SendLine(line)
	t.renderer.RequestRender()
}

// activitySnapshot reports which direction markers should be lit.
func (t *Terminal) activitySnapshot() (rx, tx bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := time.Now()
	return now.Sub(t.lastRX) < activityHold, now.Sub(t.lastTX) < activityHold
}

// setScheme swaps the color scheme and forces a repaint. Called by the
// scheme file watcher.
func (t *Terminal) setScheme(scheme *cydterm.ColorScheme) {
	t.mu.Lock()
	t.options.Scheme = scheme
	t.mu.Unlock()
	t.renderer.forceFullRender()
	t.renderer.RequestRender()
}

// scheme returns the current color scheme.
func (t *Terminal) scheme() *cydterm.ColorScheme {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.options.Scheme
}
