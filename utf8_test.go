package cydterm

import (
	"bytes"
	"testing"
)

func TestDecodeASCII(t *testing.T) {
	var d Decoder
	for _, b := range []byte("hello") {
		r, ok := d.Feed(b)
		if !ok {
			t.Fatalf("ASCII byte %q should decode immediately", b)
		}
		if r != rune(b) {
			t.Errorf("got %q, want %q", r, b)
		}
	}
}

func TestDecodeMultiByte(t *testing.T) {
	tests := []struct {
		input string
		want  rune
	}{
		{"é", 'é'},       // 2-byte
		{"ж", 'ж'},       // 2-byte cyrillic
		{"€", '€'},       // 3-byte
		{"\U0001f600", '😀'},  // 4-byte
	}
	for _, tt := range tests {
		var d Decoder
		var got rune
		var completed bool
		for _, b := range []byte(tt.input) {
			if r, ok := d.Feed(b); ok {
				got = r
				completed = true
			}
		}
		if !completed {
			t.Errorf("%q never completed", tt.input)
			continue
		}
		if got != tt.want {
			t.Errorf("decoded %q, want %q", got, tt.want)
		}
	}
}

func TestIncrementalMatchesBatch(t *testing.T) {
	input := []byte("ascii ж€😀 mixed ответ done")

	batch := Decode(input)

	var d Decoder
	var incremental []rune
	for _, b := range input {
		if r, ok := d.Feed(b); ok {
			incremental = append(incremental, r)
		}
	}

	if string(batch) != string(incremental) {
		t.Errorf("incremental %q != batch %q", string(incremental), string(batch))
	}
	if string(batch) != string(bytes.Runes(input)) {
		t.Errorf("decoded %q, want %q", string(batch), string(input))
	}
}

func TestInvalidLeadByteDropped(t *testing.T) {
	// 0xFF can never start a sequence; 0x80 is a stray continuation.
	got := Decode([]byte{0xFF, 'a', 0x80, 'b'})
	if string(got) != "ab" {
		t.Errorf("got %q, want %q", string(got), "ab")
	}
}

func TestInvalidContinuationDropsByte(t *testing.T) {
	// 0xC3 expects a continuation byte; 'A' is not one. The decoder
	// resets and 'A' is dropped, not retried as a lead byte.
	got := Decode([]byte{0xC3, 'A', 'B'})
	if string(got) != "B" {
		t.Errorf("got %q, want %q", string(got), "B")
	}
}

func TestDecoderResetMidSequence(t *testing.T) {
	var d Decoder
	d.Feed(0xE2) // first of three bytes
	d.Reset()
	r, ok := d.Feed('x')
	if !ok || r != 'x' {
		t.Errorf("after Reset, got (%q, %v), want ('x', true)", r, ok)
	}
}
