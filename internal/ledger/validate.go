package ledger

import (
	"math"
	"strconv"
	"strings"

	"github.com/classledger/classledger/internal/clerr"
)

// SetMark records an edit on an entry, keeping the typed text verbatim.
// Whitespace-only input clears the entry back to "not graded".
func SetMark(e *Entry, text string) {
	text = strings.TrimSpace(text)
	e.Entered = text
	if text == "" {
		e.Obtained = nil
		return
	}
	if v, err := strconv.ParseFloat(text, 64); err == nil && !math.IsNaN(v) && !math.IsInf(v, 0) {
		e.Obtained = &v
	} else {
		e.Obtained = nil
	}
}

// Validate reports whether the entry's marks are usable. An absent mark is
// always valid; a present one must be a finite number within [0, fullMarks].
// The entry itself is never mutated: invalid input stays as typed so the
// user can see and correct it.
func (e Entry) Validate() *clerr.ValidationError {
	v, entered := e.value()
	if !entered {
		return nil
	}
	if v == nil {
		return &clerr.ValidationError{ComponentCode: e.ComponentCode, Reason: "marks must be a number"}
	}
	if *v < 0 {
		return &clerr.ValidationError{ComponentCode: e.ComponentCode, Reason: "marks cannot be negative"}
	}
	if e.FullMarks != nil && *v > *e.FullMarks {
		return &clerr.ValidationError{ComponentCode: e.ComponentCode, Reason: "marks exceed full marks"}
	}
	return nil
}

// value resolves the entry's current mark, preferring in-flight edited text
// over the parsed Obtained value. The second return is false when no mark
// has been entered at all.
func (e Entry) value() (*float64, bool) {
	if e.Entered != "" {
		if v, err := strconv.ParseFloat(e.Entered, 64); err == nil && !math.IsNaN(v) && !math.IsInf(v, 0) {
			return &v, true
		}
		return nil, true
	}
	return e.Obtained, e.Obtained != nil
}
