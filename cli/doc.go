// Package cli renders a CYD-terminal session inside an actual CLI
// terminal. It draws the emulated screen into a bordered window on the
// host terminal, feeds host keystrokes to the attached byte source, and
// adds the pieces the handheld device had around its screen: a status
// bar with RX/TX activity markers, a command input bar with history
// recall that shrinks the viewport while open, and session traffic
// logging.
package cli
