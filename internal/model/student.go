package model

// Student is one row of the student directory.  Roll numbers are
// normalized to upper case before storage and lookup; Year carries the
// cohort label ("II", "III", "IV") used by the year-separation rules.
//
// Fields:
//  ID        – primary key identifier.
//  RollNo    – unique roll number, upper-cased.
//  Name      – student display name.
//  ClassName – class label, upper-cased (e.g. "AIDS-A").
//  Year      – cohort year label.
//  Password  – bcrypt hash of the date of birth, the login password.
type Student struct {
	ID        uint64 `json:"id"`         // students.id
	RollNo    string `json:"rollno"`     // students.rollno
	Name      string `json:"name"`       // students.name
	ClassName string `json:"class_name"` // students.class_name
	Year      string `json:"year"`       // students.year
	Password  string `json:"-"`          // students.password (bcrypt of DOB), never serialized
}
