package component

// Component types. Theory components are always scorable once configured;
// internal and practical components are gated by the exam preset.
const (
	TypeTheory    = "TH"
	TypeInternal  = "IN"
	TypePractical = "PR"
)

type Component struct {
	Code       string   `json:"code"`
	Type       string   `json:"type"` // TH|IN|PR
	Title      string   `json:"title"`
	CreditHour float64  `json:"credit_hour"`
	FullMarks  *float64 `json:"full_marks,omitempty"`
	PassMarks  *float64 `json:"pass_marks,omitempty"`
	Enabled    bool     `json:"enabled"`
}

type Subject struct {
	ID         int64       `json:"id"`
	Name       string      `json:"name"`
	GroupName  string      `json:"group_name,omitempty"` // empty for compulsory subjects
	Components []Component `json:"components"`
}

type Group struct {
	Name     string    `json:"name,omitempty"`
	Subjects []Subject `json:"subjects"`
}

// FlatComponent is one catalog component with its subject context attached.
// Flatten emits these in catalog order, which downstream grid layouts rely on.
type FlatComponent struct {
	Code        string   `json:"code"`
	Type        string   `json:"type"`
	Title       string   `json:"title"`
	CreditHour  float64  `json:"credit_hour"`
	SubjectID   int64    `json:"subject_id"`
	SubjectName string   `json:"subject_name"`
	GroupName   string   `json:"group_name,omitempty"`
	FullMarks   *float64 `json:"full_marks,omitempty"`
	PassMarks   *float64 `json:"pass_marks,omitempty"`
	Enabled     bool     `json:"enabled"`
}

// Update is the persistence payload for one component's configuration.
// A nil PassMarks clears any stored pass marks.
type Update struct {
	Code      string   `json:"code"`
	FullMarks float64  `json:"full_marks"`
	PassMarks *float64 `json:"pass_marks"`
	Enabled   bool     `json:"enabled"`
}
