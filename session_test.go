package cydterm

import (
	"bytes"
	"testing"
)

func TestSessionFeedRendersToBuffer(t *testing.T) {
	s := NewSession(DefaultConfig())
	s.Feed([]byte("hello\r\nworld"))

	if got := lineText(s.Buffer().GetLine(0)); got != "hello" {
		t.Errorf("line 0 = %q, want %q", got, "hello")
	}
	if got := lineText(s.Buffer().GetLine(1)); got != "world" {
		t.Errorf("line 1 = %q, want %q", got, "world")
	}
}

func TestSessionSendWritesSink(t *testing.T) {
	s := NewSession(DefaultConfig())
	var sink bytes.Buffer
	s.SetSink(&sink)

	if err := s.Send([]byte("ls\r")); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if sink.String() != "ls\r" {
		t.Errorf("sink = %q, want %q", sink.String(), "ls\r")
	}
}

func TestSessionSendWithoutSink(t *testing.T) {
	s := NewSession(DefaultConfig())
	if err := s.Send([]byte("x")); err != nil {
		t.Errorf("Send with no sink should not fail: %v", err)
	}
}

func TestSessionActivityCallback(t *testing.T) {
	s := NewSession(DefaultConfig())
	var sink bytes.Buffer
	s.SetSink(&sink)

	type event struct {
		dir     Direction
		payload string
	}
	var events []event
	s.SetActivityCallback(func(dir Direction, payload []byte) {
		events = append(events, event{dir, string(payload)})
	})

	s.Feed([]byte("prompt> "))
	s.Send([]byte("cmd\r"))

	want := []event{
		{DirInbound, "prompt> "},
		{DirOutbound, "cmd\r"},
	}
	if len(events) != len(want) {
		t.Fatalf("got %d events, want %d", len(events), len(want))
	}
	for i := range want {
		if events[i] != want[i] {
			t.Errorf("event %d = %+v, want %+v", i, events[i], want[i])
		}
	}
}

func TestSessionLocalEcho(t *testing.T) {
	s := NewSession(DefaultConfig())
	s.SetLocalEcho(true)
	s.Send([]byte("echoed"))

	if got := lineText(s.Buffer().GetLine(0)); got != "echoed" {
		t.Errorf("line 0 = %q, want %q", got, "echoed")
	}
}

func TestSessionNoEchoByDefault(t *testing.T) {
	s := NewSession(DefaultConfig())
	s.Send([]byte("silent"))

	if got := lineText(s.Buffer().GetLine(0)); got != "" {
		t.Errorf("line 0 = %q, want empty", got)
	}
}

func TestSessionSendLine(t *testing.T) {
	s := NewSession(DefaultConfig())
	var sink bytes.Buffer
	s.SetSink(&sink)

	if err := s.SendLine("uptime"); err != nil {
		t.Fatalf("SendLine: %v", err)
	}
	if sink.String() != "uptime\r\n" {
		t.Errorf("sink = %q, want %q", sink.String(), "uptime\r\n")
	}
	if s.History().Len() != 1 || s.History().Entry(0) != "uptime" {
		t.Error("SendLine should record the line in history")
	}
}

func TestSessionDirectionString(t *testing.T) {
	if DirInbound.String() != "rx" || DirOutbound.String() != "tx" {
		t.Errorf("Direction strings = %q, %q", DirInbound, DirOutbound)
	}
}
