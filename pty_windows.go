//go:build windows

package cydterm

import (
	"errors"
	"os/exec"
)

// ErrPTYUnsupported is returned on platforms without a pty
// implementation.
var ErrPTYUnsupported = errors.New("pty not supported on this platform")

type windowsPTY struct{}

// NewPTY creates a platform PTY. Not implemented on Windows; attach a
// byte source to the session directly instead.
func NewPTY() (PTY, error) {
	return nil, ErrPTYUnsupported
}

func (p *windowsPTY) Start(cmd *exec.Cmd) error   { return ErrPTYUnsupported }
func (p *windowsPTY) Read(b []byte) (int, error)  { return 0, ErrPTYUnsupported }
func (p *windowsPTY) Write(b []byte) (int, error) { return 0, ErrPTYUnsupported }
func (p *windowsPTY) Resize(cols, rows int) error { return ErrPTYUnsupported }
func (p *windowsPTY) Close() error                { return nil }
