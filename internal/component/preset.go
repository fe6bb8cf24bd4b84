package component

import (
	"math"
	"strings"

	"github.com/classledger/classledger/internal/clerr"
)

type PresetKey string

const (
	PresetFirstTerminal  PresetKey = "first_terminal"
	PresetSecondTerminal PresetKey = "second_terminal"
	PresetThirdTerminal  PresetKey = "third_terminal"
	PresetFinal          PresetKey = "final"
	PresetCustom         PresetKey = "custom"
)

// Preset is a pure template of full-marks and enablement rules for one exam
// phase. Applying it never touches anything but the flat component list.
type Preset struct {
	Key            PresetKey `json:"key"`
	THFull         *float64  `json:"th_full"`
	OptionalFull   *float64  `json:"optional_full"`
	EnableInternal bool      `json:"enable_internal"`
	InternalFull   *float64  `json:"internal_full"`
}

// Validate is the caller-side gate before ApplyPreset: the theory values must
// be present. ApplyPreset itself assumes they are.
func (p Preset) Validate() error {
	if !finite(p.THFull) || !finite(p.OptionalFull) {
		return clerr.Precondition("full marks and optional full marks are required to apply preset")
	}
	return nil
}

// SpecialOptionalKeywords classifies vocational/technical subjects that take
// the preset's optional theory full marks instead of the ordinary one.
// Matching is a case-insensitive substring test on the subject name.
var SpecialOptionalKeywords = []string{"computer", "hotel management"}

func IsSpecialOptional(subjectName string) bool {
	name := strings.ToLower(subjectName)
	for _, kw := range SpecialOptionalKeywords {
		if strings.Contains(name, kw) {
			return true
		}
	}
	return false
}

// Flatten walks Group -> Subject -> Component and emits one flat record per
// component, preserving input order throughout.
func Flatten(groups []Group) []FlatComponent {
	var out []FlatComponent
	for _, g := range groups {
		for _, s := range g.Subjects {
			groupName := s.GroupName
			if groupName == "" {
				groupName = g.Name
			}
			for _, c := range s.Components {
				out = append(out, FlatComponent{
					Code:        c.Code,
					Type:        c.Type,
					Title:       c.Title,
					CreditHour:  c.CreditHour,
					SubjectID:   s.ID,
					SubjectName: s.Name,
					GroupName:   groupName,
					FullMarks:   c.FullMarks,
					PassMarks:   c.PassMarks,
					Enabled:     c.Enabled,
				})
			}
		}
	}
	return out
}

// ApplyPreset maps the preset over the flat list. Theory components are
// always enabled with the preset's theory value (optional value for
// special-optional subjects). Internal and practical components follow the
// EnableInternal gate; a missing InternalFull leaves their existing full
// marks alone rather than zeroing them. Unknown types pass through.
func ApplyPreset(flat []FlatComponent, p Preset) []FlatComponent {
	out := make([]FlatComponent, len(flat))
	for i, fc := range flat {
		switch fc.Type {
		case TypeTheory:
			full := *p.THFull
			if IsSpecialOptional(fc.SubjectName) {
				full = *p.OptionalFull
			}
			fc.FullMarks = &full
			fc.Enabled = true
		case TypeInternal, TypePractical:
			if !p.EnableInternal {
				fc.Enabled = false
			} else {
				fc.Enabled = true
				if finite(p.InternalFull) {
					full := *p.InternalFull
					fc.FullMarks = &full
				}
			}
		}
		out[i] = fc
	}
	return out
}

// BuildPersistPayload keeps only components whose full marks resolved to a
// finite number; the rest require explicit values before they can be
// enabled and are excluded, not rejected.
func BuildPersistPayload(flat []FlatComponent) []Update {
	out := make([]Update, 0, len(flat))
	for _, fc := range flat {
		code := NormalizeCode(fc.Code)
		if code == "" || !finite(fc.FullMarks) {
			continue
		}
		out = append(out, Update{
			Code:      code,
			FullMarks: *fc.FullMarks,
			PassMarks: fc.PassMarks,
			Enabled:   fc.Enabled,
		})
	}
	return out
}

func finite(v *float64) bool {
	return v != nil && !math.IsNaN(*v) && !math.IsInf(*v, 0)
}
