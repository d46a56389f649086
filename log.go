package cydterm

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	// MaxLogSessions is how many session files are kept; older ones are
	// pruned when a session closes.
	MaxLogSessions = 50

	logFlushInterval = 5 * time.Second
	logLineCap       = 255
)

// SessionLogger records session traffic to numbered text files, one per
// session (session_001.txt, session_002.txt, ...). Traffic is
// accumulated per direction and written line-by-line, inbound lines
// prefixed "<< " and outbound lines ">> ", so interleaved byte chunks
// still read as a conversation. A background flusher pushes buffered
// data to disk every few seconds.
//
// Plug Log into Session.SetActivityCallback to record a session.
type SessionLogger struct {
	mu sync.Mutex

	dir    string
	number int
	file   *os.File
	w      *bufio.Writer

	rxLine []byte
	txLine []byte

	stop chan struct{}
	done chan struct{}
}

// NewSessionLogger opens the next numbered session file under dir,
// creating the directory if needed.
func NewSessionLogger(dir string) (*SessionLogger, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}

	number := nextSessionNumber(dir)
	path := filepath.Join(dir, sessionFileName(number))
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open session log: %w", err)
	}

	l := &SessionLogger{
		dir:    dir,
		number: number,
		file:   file,
		w:      bufio.NewWriterSize(file, 512),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	fmt.Fprintf(l.w, "=== Session %d Start ===\n", number)
	l.w.Flush()

	go l.flushLoop()
	return l, nil
}

// SessionNumber returns the number of the open session file.
func (l *SessionLogger) SessionNumber() int {
	return l.number
}

// Path returns the session file path.
func (l *SessionLogger) Path() string {
	return filepath.Join(l.dir, sessionFileName(l.number))
}

// Log records one traffic payload. It has the signature expected by
// Session.SetActivityCallback.
func (l *SessionLogger) Log(dir Direction, payload []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return
	}

	line := &l.rxLine
	prefix := "<< "
	if dir == DirOutbound {
		line = &l.txLine
		prefix = ">> "
	}

	for _, b := range payload {
		if b == '\n' || b == '\r' {
			if len(*line) > 0 {
				l.w.WriteString(prefix)
				l.w.Write(*line)
				l.w.WriteByte('\n')
				*line = (*line)[:0]
			}
		} else if len(*line) < logLineCap {
			*line = append(*line, b)
		}
	}
}

// Close flushes any partial lines, writes the session footer, closes the
// file and prunes old sessions beyond MaxLogSessions.
func (l *SessionLogger) Close() error {
	close(l.stop)
	<-l.done

	l.mu.Lock()
	if l.file == nil {
		l.mu.Unlock()
		return nil
	}
	l.flushLineLocked("<< ", &l.rxLine)
	l.flushLineLocked(">> ", &l.txLine)
	fmt.Fprintf(l.w, "\n=== Session %d End ===\n", l.number)
	l.w.Flush()
	err := l.file.Close()
	l.file = nil
	l.mu.Unlock()

	pruneOldSessions(l.dir, MaxLogSessions)
	if err != nil {
		return fmt.Errorf("close session log: %w", err)
	}
	return nil
}

func (l *SessionLogger) flushLineLocked(prefix string, line *[]byte) {
	if len(*line) == 0 {
		return
	}
	l.w.WriteString(prefix)
	l.w.Write(*line)
	l.w.WriteByte('\n')
	*line = (*line)[:0]
}

func (l *SessionLogger) flushLoop() {
	defer close(l.done)
	ticker := time.NewTicker(logFlushInterval)
	defer ticker.Stop()
	for {
		select {
		case <-l.stop:
			return
		case <-ticker.C:
			l.mu.Lock()
			if l.file != nil {
				l.w.Flush()
			}
			l.mu.Unlock()
		}
	}
}

func sessionFileName(n int) string {
	return fmt.Sprintf("session_%03d.txt", n)
}

// nextSessionNumber scans dir for existing session files and returns the
// highest number found plus one (starting at 1).
func nextSessionNumber(dir string) int {
	highest := 0
	for _, n := range listSessionNumbers(dir) {
		if n > highest {
			highest = n
		}
	}
	return highest + 1
}

func listSessionNumbers(dir string) []int {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var numbers []int
	for _, e := range entries {
		name := e.Name()
		if !strings.HasPrefix(name, "session_") || !strings.HasSuffix(name, ".txt") {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(name, "session_"), ".txt"))
		if err != nil || n <= 0 {
			continue
		}
		numbers = append(numbers, n)
	}
	return numbers
}

// pruneOldSessions removes the lowest-numbered session files until at
// most keep remain.
func pruneOldSessions(dir string, keep int) {
	numbers := listSessionNumbers(dir)
	if len(numbers) <= keep {
		return
	}
	sort.Ints(numbers)
	for _, n := range numbers[:len(numbers)-keep] {
		os.Remove(filepath.Join(dir, sessionFileName(n)))
	}
}
