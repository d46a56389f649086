package cydtermgtk

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"

	cydterm "github.com/CheshirCa/CYD-terminal"
	"github.com/gotk3/gotk3/gtk"
)

// Options configures terminal creation
type Options struct {
	Cols       int                  // emulated columns (default 53)
	Rows       int                  // emulated rows (default 27)
	BufferRows int                  // scrollback capacity (default 100)
	FontFamily string               // font family (default "Monospace")
	FontSize   float64              // font size in points (default 14)
	Scheme     *cydterm.ColorScheme // color scheme (default GreenScheme)
	Shell      string               // shell to run (default $SHELL or /bin/sh)
	WorkingDir string               // initial working directory
	LogDir     string               // when set, session traffic is recorded there
}

// Terminal is a complete GTK terminal emulator widget with an attached
// shell process.
type Terminal struct {
	mu sync.Mutex

	session *cydterm.Session
	widget  *Widget
	pty     cydterm.PTY
	cmd     *exec.Cmd
	logger  *cydterm.SessionLogger
	options Options

	running bool
	done    chan struct{}
}

// New creates a GTK terminal emulator
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
	if opts.FontFamily == "" {
		opts.FontFamily = "Monospace"
	}
	if opts.FontSize <= 0 {
		opts.FontSize = 14
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

	session := cydterm.NewSession(cydterm.Config{
		Cols:       opts.Cols,
		Rows:       opts.Rows,
		BufferRows: opts.BufferRows,
	})

	widget, err := NewWidget(session)
	if err != nil {
		return nil, err
	}
	widget.SetFont(opts.FontFamily, opts.FontSize)
	widget.SetColorScheme(opts.Scheme)

	t := &Terminal{
		session: session,
		widget:  widget,
		options: opts,
		done:    make(chan struct{}),
	}

	if opts.LogDir != "" {
		logger, err := cydterm.NewSessionLogger(opts.LogDir)
		if err != nil {
			return nil, fmt.Errorf("session log: %w", err)
		}
		t.logger = logger
		session.SetActivityCallback(logger.Log)
	}

	widget.SetInputCallback(func(data []byte) {
		session.Send(data)
	})

	return t, nil
}

// Widget returns the embeddable widget.
func (t *Terminal) Widget() *Widget {
	return t.widget
}

// Box returns the GTK container to pack into a window.
func (t *Terminal) Box() *gtk.Box {
	return t.widget.Box()
}

// Session returns the underlying session.
func (t *Terminal) Session() *cydterm.Session {
	return t.session
}

// RunShell starts the configured shell in the terminal.
func (t *Terminal) RunShell() error {
	return t.RunCommand(t.options.Shell)
}

// RunCommand runs a command attached through a PTY.
func (t *Terminal) RunCommand(name string, args ...string) error {
	t.mu.Lock()
	if t.running {
		t.mu.Unlock()
		return fmt.Errorf("command already running")
	}
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
		cmd.Wait()
		t.mu.Lock()
		t.running = false
		t.mu.Unlock()
		close(t.done)
	}()

	return nil
}

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
				fmt.Fprintf(os.Stderr, "read: %v\n", err)
			}
			return
		}
	}
}

// Close shuts down the child process and the traffic log.
func (t *Terminal) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.pty != nil {
		t.pty.Close()
		t.pty = nil
	}
	if t.logger != nil {
		t.logger.Close()
		t.logger = nil
	}
}
