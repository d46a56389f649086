//go:build !windows

package cydterm

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/creack/pty"
)

// UnixPTY implements PTY on top of the platform pty device.
type UnixPTY struct {
	ptmx *os.File
	cmd  *exec.Cmd
}

// NewPTY creates a platform PTY.
func NewPTY() (PTY, error) {
	return &UnixPTY{}, nil
}

// Start launches cmd with its stdio attached to a new pty.
func (p *UnixPTY) Start(cmd *exec.Cmd) error {
	ptmx, err := pty.Start(cmd)
	if err != nil {
		return fmt.Errorf("start pty: %w", err)
	}
	p.ptmx = ptmx
	p.cmd = cmd
	return nil
}

func (p *UnixPTY) Read(b []byte) (int, error) {
	if p.ptmx == nil {
		return 0, os.ErrClosed
	}
	return p.ptmx.Read(b)
}

func (p *UnixPTY) Write(b []byte) (int, error) {
	if p.ptmx == nil {
		return 0, os.ErrClosed
	}
	return p.ptmx.Write(b)
}

// Resize updates the child's window size.
func (p *UnixPTY) Resize(cols, rows int) error {
	if p.ptmx == nil {
		return nil
	}
	return pty.Setsize(p.ptmx, &pty.Winsize{
		Cols: uint16(cols),
		Rows: uint16(rows),
	})
}

// Close closes the pty and reaps the child.
func (p *UnixPTY) Close() error {
	if p.ptmx != nil {
		p.ptmx.Close()
		p.ptmx = nil
	}
	if p.cmd != nil && p.cmd.Process != nil {
		p.cmd.Process.Kill()
		p.cmd.Wait()
		p.cmd = nil
	}
	return nil
}
