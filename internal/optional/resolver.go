// Package optional resolves a student's optional-subject groups and
// reconciles the choice draft that gates which subjects appear on the
// marks ledger.
package optional

import (
	"github.com/classledger/classledger/internal/component"
)

// SubjectOption is one selectable subject within a group. ComponentCode is
// the subject's representative component: its first theory component, or
// its first component when no theory one exists.
type SubjectOption struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	ComponentCode string `json:"component_code,omitempty"`
}

// Group is a named bucket of mutually exclusive subject choices.
type Group struct {
	Name     string          `json:"name"`
	Subjects []SubjectOption `json:"subjects"`
}

// Choice is one saved selection: at most one subject per group. The
// subject's name rides along so a selection stays displayable even when
// the catalog that produced it is gone.
type Choice struct {
	GroupName   string `json:"group_name"`
	SubjectID   int64  `json:"subject_id"`
	SubjectName string `json:"subject_name,omitempty"`
}

// ResolveGroups derives the groups a student can choose from. The catalog
// is the primary source; when it yields nothing (not yet configured for
// this year and class), group names are rebuilt from the student's saved
// choices and the student's already-known subjects become the selectable
// set for each, so an existing selection stays viewable and re-savable.
func ResolveGroups(catalog []component.Group, saved []Choice, known []SubjectOption) []Group {
	var out []Group
	index := map[string]int{}
	for _, g := range catalog {
		for _, s := range g.Subjects {
			if s.GroupName == "" {
				continue // compulsory subjects carry no group
			}
			i, ok := index[s.GroupName]
			if !ok {
				i = len(out)
				index[s.GroupName] = i
				out = append(out, Group{Name: s.GroupName})
			}
			out[i].Subjects = append(out[i].Subjects, SubjectOption{
				ID:            s.ID,
				Name:          s.Name,
				ComponentCode: representativeCode(s),
			})
		}
	}
	if len(out) > 0 {
		return out
	}

	seen := map[string]bool{}
	for _, c := range saved {
		if c.GroupName == "" || seen[c.GroupName] {
			continue
		}
		seen[c.GroupName] = true
		out = append(out, Group{Name: c.GroupName, Subjects: known})
	}
	return out
}

func representativeCode(s component.Subject) string {
	for _, c := range s.Components {
		if c.Type == component.TypeTheory {
			return component.NormalizeCode(c.Code)
		}
	}
	if len(s.Components) > 0 {
		return component.NormalizeCode(s.Components[0].Code)
	}
	return ""
}
