package optional

import (
	"sort"

	"github.com/classledger/classledger/internal/clerr"
)

// Draft is the one mutable piece of choice state, owned by a single caller
// between load and save. Any touch marks it dirty, even when the written
// value equals the saved one.
type Draft struct {
	choices map[string]Choice
	dirty   bool
}

// InitDraft builds the draft strictly from the server's current choices.
func InitDraft(server []Choice) *Draft {
	d := &Draft{choices: make(map[string]Choice, len(server))}
	for _, c := range server {
		if c.GroupName != "" {
			d.choices[c.GroupName] = c
		}
	}
	return d
}

func (d *Draft) Set(c Choice) {
	if c.GroupName == "" {
		return
	}
	d.choices[c.GroupName] = c
	d.dirty = true
}

func (d *Draft) Get(groupName string) int64 { return d.choices[groupName].SubjectID }

func (d *Draft) Dirty() bool { return d.dirty }

// BuildSavePayload filters the draft to entries with a chosen subject and
// emits them in stable group-name order. An empty selection is rejected
// before any network call; a partial save is never sent.
func (d *Draft) BuildSavePayload() ([]Choice, error) {
	names := make([]string, 0, len(d.choices))
	for g, c := range d.choices {
		if c.SubjectID > 0 {
			names = append(names, g)
		}
	}
	if len(names) == 0 {
		return nil, clerr.Precondition("select at least one optional subject")
	}
	sort.Strings(names)
	out := make([]Choice, 0, len(names))
	for _, g := range names {
		out = append(out, d.choices[g])
	}
	return out, nil
}
