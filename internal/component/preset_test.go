package component

import "testing"

func fp(v float64) *float64 { return &v }

func TestNormalizeCode(t *testing.T) {
	cases := []struct{ in, want string }{
		{"7", "0007"},
		{"42", "0042"},
		{"742", "0742"},
		{"1042", "1042"},
		{"10421", "10421"},
		{"  7 ", "0007"},
		{"", ""},
		{"   ", ""},
	}
	for _, c := range cases {
		if got := NormalizeCode(c.in); got != c.want {
			t.Errorf("NormalizeCode(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestIsSpecialOptional(t *testing.T) {
	cases := []struct {
		name string
		want bool
	}{
		{"Computer Science", true},
		{"COMPUTER SCIENCE", true},
		{"Hotel Management", true},
		{"hotel management II", true},
		{"Physics", false},
		{"Optional Mathematics", false},
	}
	for _, c := range cases {
		if got := IsSpecialOptional(c.name); got != c.want {
			t.Errorf("IsSpecialOptional(%q) = %v, want %v", c.name, got, c.want)
		}
	}
}

func TestPresetValidate(t *testing.T) {
	ok := Preset{Key: PresetFirstTerminal, THFull: fp(50), OptionalFull: fp(17.5)}
	if err := ok.Validate(); err != nil {
		t.Fatalf("valid preset rejected: %v", err)
	}
	missing := Preset{Key: PresetFirstTerminal, THFull: fp(50)}
	if err := missing.Validate(); err == nil {
		t.Fatalf("expected precondition error for missing optional full marks")
	}
}

func catalog() []Group {
	return []Group{
		{
			Name: "Compulsory",
			Subjects: []Subject{
				{ID: 1, Name: "Physics", Components: []Component{
					{Code: "101", Type: TypeTheory, Title: "Theory", CreditHour: 3.75},
					{Code: "102", Type: TypeInternal, Title: "Internal", CreditHour: 1.25, FullMarks: fp(25)},
				}},
			},
		},
		{
			Name: "Optional I",
			Subjects: []Subject{
				{ID: 2, Name: "Computer Science", GroupName: "Optional I", Components: []Component{
					{Code: "201", Type: TypeTheory, Title: "Theory", CreditHour: 3},
					{Code: "202", Type: TypePractical, Title: "Practical", CreditHour: 2, FullMarks: fp(50)},
				}},
			},
		},
	}
}

func TestFlattenOrder(t *testing.T) {
	flat := Flatten(catalog())
	if len(flat) != 4 {
		t.Fatalf("expected 4 flat components, got %d", len(flat))
	}
	wantCodes := []string{"101", "102", "201", "202"}
	for i, w := range wantCodes {
		if flat[i].Code != w {
			t.Errorf("flat[%d].Code = %q, want %q", i, flat[i].Code, w)
		}
	}
	if flat[2].SubjectName != "Computer Science" || flat[2].GroupName != "Optional I" {
		t.Errorf("subject context not carried: %+v", flat[2])
	}
}

func TestApplyPresetInternalDisabled(t *testing.T) {
	flat := Flatten(catalog())
	p := Preset{Key: PresetFirstTerminal, THFull: fp(50), OptionalFull: fp(17.5), EnableInternal: false}
	got := ApplyPreset(flat, p)

	// Ordinary TH gets thFull, special-optional TH gets optionalFull.
	if got[0].FullMarks == nil || *got[0].FullMarks != 50 || !got[0].Enabled {
		t.Errorf("ordinary TH: %+v", got[0])
	}
	if got[2].FullMarks == nil || *got[2].FullMarks != 17.5 || !got[2].Enabled {
		t.Errorf("special-optional TH: %+v", got[2])
	}
	// IN/PR disabled with full marks untouched.
	if got[1].Enabled || got[1].FullMarks == nil || *got[1].FullMarks != 25 {
		t.Errorf("IN with internal disabled: %+v", got[1])
	}
	if got[3].Enabled || got[3].FullMarks == nil || *got[3].FullMarks != 50 {
		t.Errorf("PR with internal disabled: %+v", got[3])
	}
}

func TestApplyPresetInternalEnabled(t *testing.T) {
	flat := Flatten(catalog())

	p := Preset{Key: PresetFinal, THFull: fp(75), OptionalFull: fp(25), EnableInternal: true, InternalFull: fp(25)}
	got := ApplyPreset(flat, p)
	if !got[1].Enabled || *got[1].FullMarks != 25 {
		t.Errorf("IN with internal full: %+v", got[1])
	}
	if !got[3].Enabled || *got[3].FullMarks != 25 {
		t.Errorf("PR with internal full: %+v", got[3])
	}

	// Template gap: InternalFull unset keeps the component's own value.
	gap := Preset{Key: PresetCustom, THFull: fp(75), OptionalFull: fp(25), EnableInternal: true}
	got = ApplyPreset(flat, gap)
	if !got[1].Enabled || got[1].FullMarks == nil || *got[1].FullMarks != 25 {
		t.Errorf("IN with internal full unset: %+v", got[1])
	}
	if got[0].FullMarks == nil || *got[0].FullMarks != 75 {
		t.Errorf("TH full marks: %+v", got[0])
	}
}

func TestBuildPersistPayload(t *testing.T) {
	flat := []FlatComponent{
		{Code: "101", FullMarks: fp(50), PassMarks: fp(20), Enabled: true},
		{Code: "102", Enabled: true}, // no full marks: excluded even though enabled
		{Code: "", FullMarks: fp(50)},
		{Code: "9", FullMarks: fp(25), Enabled: false},
	}
	got := BuildPersistPayload(flat)
	if len(got) != 2 {
		t.Fatalf("expected 2 updates, got %d: %+v", len(got), got)
	}
	if got[0].Code != "0101" || got[0].FullMarks != 50 || got[0].PassMarks == nil || *got[0].PassMarks != 20 || !got[0].Enabled {
		t.Errorf("update[0]: %+v", got[0])
	}
	if got[1].Code != "0009" || got[1].FullMarks != 25 || got[1].PassMarks != nil || got[1].Enabled {
		t.Errorf("update[1]: %+v", got[1])
	}
}
