package cydterm

import "os/exec"

// PTY is the byte source/sink a frontend attaches a local process
// through. A serial port or network connection can stand in for it via
// Session.SetSink plus a read loop; this interface exists for the
// common host-a-shell case.
type PTY interface {
	// Start starts the PTY with the given command
	Start(cmd *exec.Cmd) error

	// Read reads output produced by the command
	Read(p []byte) (n int, err error)

	// Write sends input to the command
	Write(p []byte) (n int, err error)

	// Resize updates the command's window size
	Resize(cols, rows int) error

	// Close closes the PTY
	Close() error
}
