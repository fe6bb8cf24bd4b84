package optional

import (
	"testing"

	"github.com/classledger/classledger/internal/clerr"
	"github.com/classledger/classledger/internal/component"
)

func catalog() []component.Group {
	return []component.Group{
		{
			Name: "Compulsory",
			Subjects: []component.Subject{
				{ID: 1, Name: "Physics", Components: []component.Component{
					{Code: "101", Type: component.TypeTheory},
				}},
			},
		},
		{
			Name: "Optional I",
			Subjects: []component.Subject{
				{ID: 2, Name: "Computer Science", GroupName: "Optional I", Components: []component.Component{
					{Code: "202", Type: component.TypePractical},
					{Code: "201", Type: component.TypeTheory},
				}},
				{ID: 3, Name: "Economics", GroupName: "Optional I", Components: []component.Component{
					{Code: "301", Type: component.TypeInternal},
				}},
			},
		},
	}
}

func TestResolveGroupsFromCatalog(t *testing.T) {
	got := ResolveGroups(catalog(), nil, nil)
	if len(got) != 1 {
		t.Fatalf("expected 1 optional group, got %d: %+v", len(got), got)
	}
	g := got[0]
	if g.Name != "Optional I" || len(g.Subjects) != 2 {
		t.Fatalf("group: %+v", g)
	}
	// First TH component wins even when it is not listed first.
	if g.Subjects[0].ComponentCode != "0201" {
		t.Errorf("representative code for Computer Science = %q, want 0201", g.Subjects[0].ComponentCode)
	}
	// No TH component: first component stands in.
	if g.Subjects[1].ComponentCode != "0301" {
		t.Errorf("representative code for Economics = %q, want 0301", g.Subjects[1].ComponentCode)
	}
}

func TestResolveGroupsFallback(t *testing.T) {
	saved := []Choice{
		{GroupName: "Optional I", SubjectID: 2},
		{GroupName: "Optional II", SubjectID: 5},
		{GroupName: "Optional I", SubjectID: 2}, // duplicate group collapses
	}
	known := []SubjectOption{{ID: 2, Name: "Computer Science"}, {ID: 5, Name: "Economics"}}

	got := ResolveGroups(nil, saved, known)
	if len(got) != 2 {
		t.Fatalf("expected 2 fallback groups, got %d: %+v", len(got), got)
	}
	if got[0].Name != "Optional I" || got[1].Name != "Optional II" {
		t.Errorf("fallback group order: %+v", got)
	}
	for _, g := range got {
		if len(g.Subjects) != 2 {
			t.Errorf("fallback group %s should offer all known subjects: %+v", g.Name, g.Subjects)
		}
	}
}

func TestDraftDirtyOnAnyTouch(t *testing.T) {
	d := InitDraft([]Choice{{GroupName: "Optional I", SubjectID: 2}})
	if d.Dirty() {
		t.Fatalf("fresh draft must be clean")
	}
	// Re-selecting the same value still counts as a touch.
	d.Set(Choice{GroupName: "Optional I", SubjectID: 2})
	if !d.Dirty() {
		t.Fatalf("touched draft must be dirty even when the value is unchanged")
	}
	if d.Get("Optional I") != 2 {
		t.Fatalf("draft value lost")
	}
}

func TestBuildSavePayload(t *testing.T) {
	d := InitDraft(nil)
	d.Set(Choice{GroupName: "Optional II", SubjectID: 5, SubjectName: "Economics"})
	d.Set(Choice{GroupName: "Optional I", SubjectID: 2, SubjectName: "Computer Science"})
	d.Set(Choice{GroupName: "Optional III"}) // unselected: filtered out

	got, err := d.BuildSavePayload()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 choices, got %+v", got)
	}
	if got[0].GroupName != "Optional I" || got[0].SubjectID != 2 || got[0].SubjectName != "Computer Science" {
		t.Errorf("payload[0]: %+v", got[0])
	}
	if got[1].GroupName != "Optional II" || got[1].SubjectID != 5 || got[1].SubjectName != "Economics" {
		t.Errorf("payload[1]: %+v", got[1])
	}
}

func TestBuildSavePayloadEmptySelection(t *testing.T) {
	d := InitDraft(nil)
	d.Set(Choice{GroupName: "Optional I"})
	if _, err := d.BuildSavePayload(); !clerr.IsPrecondition(err) {
		t.Fatalf("expected precondition error, got %v", err)
	}
}
