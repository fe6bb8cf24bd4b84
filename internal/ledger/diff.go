package ledger

// Diff returns the minimal update set between the persisted ledger and its
// edited copy, matched by component code. Only changed marks are emitted
// (including transitions to and from absent, a nil Marks meaning "clear"),
// so saving an unmodified ledger is a true no-op. Entries that fail
// validation are held back; they block only themselves.
func Diff(current, edited []Entry) []MarkUpdate {
	prev := make(map[string]*float64, len(current))
	for _, e := range current {
		prev[e.ComponentCode] = e.Obtained
	}
	var out []MarkUpdate
	for _, e := range edited {
		if e.Validate() != nil {
			continue
		}
		if sameMark(prev[e.ComponentCode], e.Obtained) {
			continue
		}
		out = append(out, MarkUpdate{ComponentCode: e.ComponentCode, Marks: e.Obtained})
	}
	return out
}

func sameMark(a, b *float64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
