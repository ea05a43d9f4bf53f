package forgeterm

// DefaultHistorySize is the number of commands kept before the oldest are dropped.
const DefaultHistorySize = 1000

// HistoryLog is a bounded, append-only log of accepted command strings.
type HistoryLog struct {
	entries []string
	limit   int
}

// NewHistoryLog creates a log that keeps at most limit entries.
func NewHistoryLog(limit int) *HistoryLog {
	if limit <= 0 {
		limit = DefaultHistorySize
	}
	return &HistoryLog{limit: limit}
}

// Append records command, dropping the oldest entries past the limit.
func (h *HistoryLog) Append(command string) {
	h.entries = append(h.entries, command)
	if over := len(h.entries) - h.limit; over > 0 {
		n := copy(h.entries, h.entries[over:])
		h.entries = h.entries[:n]
	}
}

// Entries returns a copy of the log, oldest first.
func (h *HistoryLog) Entries() []string {
	out := make([]string, len(h.entries))
	copy(out, h.entries)
	return out
}

// Len returns the number of entries.
func (h *HistoryLog) Len() int {
	return len(h.entries)
}

// At returns the i-th entry, oldest first.
func (h *HistoryLog) At(i int) (string, bool) {
	if i < 0 || i >= len(h.entries) {
		return "", false
	}
	return h.entries[i], true
}
