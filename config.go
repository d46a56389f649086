package cydterm

// Default terminal geometry. The values match the 320x240 display the
// original hardware drove with a 6x8 font.
const (
	DefaultCols        = 53
	DefaultRows        = 27
	DefaultBufferRows  = 100
	DefaultHistorySize = 10
)

// BaudRates lists the serial speeds a session can be opened at.
var BaudRates = []int{9600, 19200, 38400, 57600, 115200, 230400}

// DefaultBaudRate is used when no saved setting exists.
const DefaultBaudRate = 115200

// Config holds the terminal geometry for one session.
type Config struct {
	Cols        int // visible columns per line
	Rows        int // full-screen viewport height
	BufferRows  int // circular scrollback capacity in lines
	HistorySize int // command history depth
}

// DefaultConfig returns the standard geometry.
func DefaultConfig() Config {
	return Config{
		Cols:        DefaultCols,
		Rows:        DefaultRows,
		BufferRows:  DefaultBufferRows,
		HistorySize: DefaultHistorySize,
	}
}

// normalize clamps nonsensical values back to defaults. The buffer must
// hold at least one full viewport of lines.
func (c Config) normalize() Config {
	if c.Cols < 1 {
		c.Cols = DefaultCols
	}
	if c.Rows < 1 {
		c.Rows = DefaultRows
	}
	if c.BufferRows < c.Rows {
		c.BufferRows = DefaultBufferRows
		if c.BufferRows < c.Rows {
			c.BufferRows = c.Rows
		}
	}
	if c.HistorySize < 1 {
		c.HistorySize = DefaultHistorySize
	}
	return c
}

// ValidBaudRate reports whether rate is one of the supported speeds.
func ValidBaudRate(rate int) bool {
	for _, r := range BaudRates {
		if r == rate {
			return true
		}
	}
	return false
}
