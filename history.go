package cydterm

// History is a small most-recent-first list of submitted command lines
// with Up/Down recall. While the user browses, the in-progress edit is
// parked in a side slot; stepping down past the newest entry restores it.
//
// History is not safe for concurrent use; frontends drive it from their
// input loop only.
type History struct {
	entries []string
	max     int

	// browseIndex is -1 while editing, otherwise the index of the entry
	// currently recalled (0 = newest).
	browseIndex int
	savedEdit   string
}

// NewHistory creates a history keeping at most max entries
func NewHistory(max int) *History {
	if max < 1 {
		max = DefaultHistorySize
	}
	return &History{
		max:         max,
		browseIndex: -1,
	}
}

// Push records a submitted line as the newest entry, dropping the oldest
// once the list is full. Empty lines are skipped. Any browse in progress
// ends.
func (h *History) Push(line string) {
	h.browseIndex = -1
	h.savedEdit = ""

	if line == "" {
		return
	}

	if len(h.entries) < h.max {
		h.entries = append(h.entries, "")
	}
	copy(h.entries[1:], h.entries)
	h.entries[0] = line
}

// Up recalls the next older entry. The first press parks the current
// edit before recalling the newest entry. Returns false at the oldest
// entry (or when the history is empty), leaving the state unchanged.
func (h *History) Up(current string) (string, bool) {
	if len(h.entries) == 0 {
		return "", false
	}
	if h.browseIndex == -1 {
		h.savedEdit = current
		h.browseIndex = 0
		return h.entries[0], true
	}
	if h.browseIndex < len(h.entries)-1 {
		h.browseIndex++
		return h.entries[h.browseIndex], true
	}
	return "", false
}

// Down recalls the next newer entry. Stepping past the newest restores
// the parked edit and returns to the editing state. Returns false when
// not browsing.
func (h *History) Down() (string, bool) {
	if h.browseIndex == -1 {
		return "", false
	}
	h.browseIndex--
	if h.browseIndex == -1 {
		saved := h.savedEdit
		h.savedEdit = ""
		return saved, true
	}
	return h.entries[h.browseIndex], true
}

// Browsing reports whether a recall is in progress.
func (h *History) Browsing() bool {
	return h.browseIndex != -1
}

// Len returns the number of stored entries.
func (h *History) Len() int {
	return len(h.entries)
}

// Entry returns the i-th entry, newest first.
func (h *History) Entry(i int) string {
	if i < 0 || i >= len(h.entries) {
		return ""
	}
	return h.entries[i]
}

// Clear wipes all entries and any browse in progress.
func (h *History) Clear() {
	h.entries = h.entries[:0]
	h.browseIndex = -1
	h.savedEdit = ""
}
