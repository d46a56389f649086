package cydterm

// Decoder is an incremental UTF-8 decoder. It accepts one byte at a time
// and reports when a complete scalar value has been assembled, which lets
// callers feed it straight from a byte stream without buffering.
//
// Malformed input is absorbed: an invalid lead byte, or a continuation
// byte that does not match the expected pattern, resets the decoder and
// the offending byte is dropped rather than reprocessed as a new lead
// byte. A noisy source therefore loses at most the garbled character.
type Decoder struct {
	bytesNeeded   int
	bytesReceived int
	accumulator   rune
}

// Reset discards any partially assembled character.
func (d *Decoder) Reset() {
	d.bytesNeeded = 0
	d.bytesReceived = 0
	d.accumulator = 0
}

// Feed consumes one byte. It returns the decoded scalar value and true
// once a character is complete; otherwise it returns (0, false).
func (d *Decoder) Feed(b byte) (rune, bool) {
	if d.bytesNeeded == 0 {
		switch {
		case b&0x80 == 0x00:
			return rune(b), true
		case b&0xE0 == 0xC0:
			d.accumulator = rune(b & 0x1F)
			d.bytesNeeded = 2
		case b&0xF0 == 0xE0:
			d.accumulator = rune(b & 0x0F)
			d.bytesNeeded = 3
		case b&0xF8 == 0xF0:
			d.accumulator = rune(b & 0x07)
			d.bytesNeeded = 4
		default:
			// Invalid lead byte (stray continuation or 0xF8+). Dropped.
			d.Reset()
			return 0, false
		}
		d.bytesReceived = 1
		return 0, false
	}

	if b&0xC0 != 0x80 {
		// Expected a continuation byte. Abort the sequence; the byte is
		// dropped, not retried as a new lead byte.
		d.Reset()
		return 0, false
	}

	d.accumulator = d.accumulator<<6 | rune(b&0x3F)
	d.bytesReceived++
	if d.bytesReceived < d.bytesNeeded {
		return 0, false
	}

	r := d.accumulator
	d.Reset()
	return r, true
}

// Decode runs a whole byte slice through a fresh decoder and returns the
// completed scalar values. Incremental feeding of the same bytes yields
// an identical sequence.
func Decode(data []byte) []rune {
	var d Decoder
	out := make([]rune, 0, len(data))
	for _, b := range data {
		if r, ok := d.Feed(b); ok {
			out = append(out, r)
		}
	}
	return out
}
