package ledger

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/classledger/classledger/internal/component"
)

// RawRow is one ledger row as the backing service returns it. Older
// endpoints emit the same row under different key spellings; every lookup
// against those shapes lives in this adapter and nowhere else.
type RawRow map[string]any

var (
	codeKeys     = []string{"component_code", "componentCode", "exam_code", "code"}
	titleKeys    = []string{"component_title", "componentTitle", "title", "name"}
	subjectKeys  = []string{"subject_name", "subjectName", "subject"}
	fullKeys     = []string{"full_marks", "fullMarks", "full"}
	obtainedKeys = []string{"obtained_marks", "obtainedMarks", "obtained", "marks"}
)

// BuildLedger normalizes raw rows into entries, dropping rows without a
// resolvable component code.
func BuildLedger(rows []RawRow) []Entry {
	out := make([]Entry, 0, len(rows))
	for _, r := range rows {
		code := component.NormalizeCode(stringAt(r, codeKeys))
		if code == "" {
			continue
		}
		out = append(out, Entry{
			ComponentCode:  code,
			SubjectName:    stringAt(r, subjectKeys),
			ComponentTitle: stringAt(r, titleKeys),
			FullMarks:      numberAt(r, fullKeys),
			Obtained:       numberAt(r, obtainedKeys),
		})
	}
	return out
}

func stringAt(r RawRow, keys []string) string {
	for _, k := range keys {
		switch v := r[k].(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		case json.Number:
			return v.String()
		case float64:
			// numeric codes arrive as JSON numbers from some endpoints
			return strconv.FormatFloat(v, 'f', -1, 64)
		case int:
			return strconv.Itoa(v)
		case int64:
			return strconv.FormatInt(v, 10)
		}
	}
	return ""
}

func numberAt(r RawRow, keys []string) *float64 {
	for _, k := range keys {
		v, ok := r[k]
		if !ok || v == nil {
			continue
		}
		switch n := v.(type) {
		case float64:
			f := n
			return &f
		case int:
			f := float64(n)
			return &f
		case int64:
			f := float64(n)
			return &f
		case json.Number:
			if f, err := n.Float64(); err == nil {
				return &f
			}
		case string:
			s := strings.TrimSpace(n)
			if s == "" {
				continue
			}
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				return &f
			}
		}
	}
	return nil
}
