package cydterm

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSessionLoggerWritesConversation(t *testing.T) {
	dir := t.TempDir()
	l, err := NewSessionLogger(dir)
	if err != nil {
		t.Fatalf("NewSessionLogger: %v", err)
	}

	l.Log(DirOutbound, []byte("ls\r"))
	l.Log(DirInbound, []byte("file1  file2\n"))
	l.Log(DirInbound, []byte("prompt> ")) // partial, flushed on Close

	if err := l.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "session_001.txt"))
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	got := string(data)

	want := []string{
		"=== Session 1 Start ===",
		">> ls",
		"<< file1  file2",
		"<< prompt> ",
		"=== Session 1 End ===",
	}
	for _, line := range want {
		if !strings.Contains(got, line) {
			t.Errorf("log missing %q:\n%s", line, got)
		}
	}
}

func TestSessionLoggerSplitsChunksIntoLines(t *testing.T) {
	dir := t.TempDir()
	l, err := NewSessionLogger(dir)
	if err != nil {
		t.Fatalf("NewSessionLogger: %v", err)
	}

	// A line split across payloads still logs as one line.
	l.Log(DirInbound, []byte("hel"))
	l.Log(DirInbound, []byte("lo\nwor"))
	l.Log(DirInbound, []byte("ld\n"))
	l.Close()

	data, _ := os.ReadFile(l.Path())
	got := string(data)
	if !strings.Contains(got, "<< hello\n") {
		t.Errorf("log missing reassembled line:\n%s", got)
	}
	if !strings.Contains(got, "<< world\n") {
		t.Errorf("log missing second line:\n%s", got)
	}
}

func TestSessionLoggerNumbering(t *testing.T) {
	dir := t.TempDir()

	for want := 1; want <= 3; want++ {
		l, err := NewSessionLogger(dir)
		if err != nil {
			t.Fatalf("NewSessionLogger: %v", err)
		}
		if l.SessionNumber() != want {
			t.Errorf("session number = %d, want %d", l.SessionNumber(), want)
		}
		l.Close()
	}

	if _, err := os.Stat(filepath.Join(dir, "session_003.txt")); err != nil {
		t.Errorf("session_003.txt missing: %v", err)
	}
}

func TestSessionLoggerNumberingSkipsGaps(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "session_007.txt"), nil, 0o644)

	l, err := NewSessionLogger(dir)
	if err != nil {
		t.Fatalf("NewSessionLogger: %v", err)
	}
	defer l.Close()

	if l.SessionNumber() != 8 {
		t.Errorf("session number = %d, want 8", l.SessionNumber())
	}
}

func TestSessionLoggerPrunesOldSessions(t *testing.T) {
	dir := t.TempDir()
	for n := 1; n <= MaxLogSessions+5; n++ {
		os.WriteFile(filepath.Join(dir, sessionFileName(n)), nil, 0o644)
	}

	l, err := NewSessionLogger(dir)
	if err != nil {
		t.Fatalf("NewSessionLogger: %v", err)
	}
	l.Close()

	entries, _ := os.ReadDir(dir)
	if len(entries) != MaxLogSessions {
		t.Errorf("got %d files after prune, want %d", len(entries), MaxLogSessions)
	}
	// The lowest numbers go first.
	if _, err := os.Stat(filepath.Join(dir, sessionFileName(1))); !os.IsNotExist(err) {
		t.Error("session_001.txt should have been pruned")
	}
	if _, err := os.Stat(l.Path()); err != nil {
		t.Errorf("newest session file should survive prune: %v", err)
	}
}

func TestSessionLoggerCapsLineLength(t *testing.T) {
	dir := t.TempDir()
	l, err := NewSessionLogger(dir)
	if err != nil {
		t.Fatalf("NewSessionLogger: %v", err)
	}

	long := strings.Repeat("x", 400)
	l.Log(DirInbound, []byte(long+"\n"))
	l.Close()

	data, _ := os.ReadFile(l.Path())
	for _, line := range strings.Split(string(data), "\n") {
		if strings.HasPrefix(line, "<< ") && len(line) > 3+logLineCap {
			t.Errorf("logged line exceeds cap: %d bytes", len(line)-3)
		}
	}
}
