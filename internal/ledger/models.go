package ledger

// Entry is one scorable row of a student's ledger for one exam. Obtained is
// nil while no mark has been entered; Entered holds the raw text of an
// in-flight edit verbatim, so an out-of-range or non-numeric value stays
// visible exactly as typed until the user corrects it.
type Entry struct {
	ComponentCode  string   `json:"component_code"`
	SubjectName    string   `json:"subject_name,omitempty"`
	ComponentTitle string   `json:"component_title,omitempty"`
	FullMarks      *float64 `json:"full_marks,omitempty"`
	Obtained       *float64 `json:"obtained_marks,omitempty"`
	Entered        string   `json:"entered,omitempty"`
}

// MarkUpdate is the persistence unit for one component's marks. A nil Marks
// clears the stored score.
type MarkUpdate struct {
	ComponentCode string   `json:"component_code"`
	Marks         *float64 `json:"marks"`
}

// Enrollment is a student's participation in one exam context.
type Enrollment struct {
	ID           string `json:"id"`
	StudentName  string `json:"student_name"`
	RollNumber   int    `json:"roll_number"`
	AcademicYear string `json:"academic_year"`
	Class        string `json:"class"`
	Section      string `json:"section,omitempty"`
}
