package cydterm

import (
	"fmt"
	"testing"
)

func TestHistoryRecall(t *testing.T) {
	h := NewHistory(DefaultHistorySize)
	h.Push("ls")
	h.Push("pwd")
	h.Push("ls -la")

	steps := []struct {
		op   string
		want string
	}{
		{"up", "ls -la"},
		{"up", "pwd"},
		{"up", "ls"},
		{"down", "pwd"},
	}

	current := ""
	for i, step := range steps {
		var got string
		var ok bool
		if step.op == "up" {
			got, ok = h.Up(current)
		} else {
			got, ok = h.Down()
		}
		if !ok {
			t.Fatalf("step %d (%s): no entry returned", i, step.op)
		}
		if got != step.want {
			t.Errorf("step %d (%s): got %q, want %q", i, step.op, got, step.want)
		}
		current = got
	}
}

func TestHistorySavesInProgressEdit(t *testing.T) {
	h := NewHistory(DefaultHistorySize)
	h.Push("ls")
	h.Push("pwd")

	// Typing "par", browsing up, then returning down restores the edit.
	line, ok := h.Up("par")
	if !ok || line != "pwd" {
		t.Fatalf("Up = (%q, %v), want (%q, true)", line, ok, "pwd")
	}
	line, ok = h.Down()
	if !ok || line != "par" {
		t.Errorf("Down = (%q, %v), want saved edit %q", line, ok, "par")
	}
	if h.Browsing() {
		t.Error("should be back in editing state")
	}
}

func TestHistoryUpStopsAtOldest(t *testing.T) {
	h := NewHistory(DefaultHistorySize)
	h.Push("one")
	h.Push("two")

	h.Up("")
	h.Up("")
	if _, ok := h.Up(""); ok {
		t.Error("Up past the oldest entry should return false")
	}
}

func TestHistoryDownWhileEditing(t *testing.T) {
	h := NewHistory(DefaultHistorySize)
	h.Push("cmd")
	if _, ok := h.Down(); ok {
		t.Error("Down without browsing should return false")
	}
}

func TestHistoryUpWhenEmpty(t *testing.T) {
	h := NewHistory(DefaultHistorySize)
	if _, ok := h.Up("typing"); ok {
		t.Error("Up on empty history should return false")
	}
}

func TestHistoryCapacity(t *testing.T) {
	h := NewHistory(DefaultHistorySize)
	for i := 0; i < 12; i++ {
		h.Push(fmt.Sprintf("cmd-%d", i))
	}

	if h.Len() != DefaultHistorySize {
		t.Fatalf("len = %d, want %d", h.Len(), DefaultHistorySize)
	}
	if h.Entry(0) != "cmd-11" {
		t.Errorf("newest = %q, want %q", h.Entry(0), "cmd-11")
	}
	if h.Entry(9) != "cmd-2" {
		t.Errorf("oldest = %q, want %q (cmd-0 and cmd-1 dropped)", h.Entry(9), "cmd-2")
	}
}

func TestHistoryIgnoresEmptyLines(t *testing.T) {
	h := NewHistory(DefaultHistorySize)
	h.Push("real")
	h.Push("")
	if h.Len() != 1 {
		t.Errorf("len = %d, want 1", h.Len())
	}
}

func TestHistoryPushEndsBrowse(t *testing.T) {
	h := NewHistory(DefaultHistorySize)
	h.Push("old")
	h.Up("draft")
	h.Push("new")

	if h.Browsing() {
		t.Error("Push should end the browse in progress")
	}
	if h.Entry(0) != "new" {
		t.Errorf("newest = %q, want %q", h.Entry(0), "new")
	}
}

func TestHistoryClear(t *testing.T) {
	h := NewHistory(DefaultHistorySize)
	h.Push("one")
	h.Up("")
	h.Clear()

	if h.Len() != 0 || h.Browsing() {
		t.Error("Clear should wipe entries and browse state")
	}
}
