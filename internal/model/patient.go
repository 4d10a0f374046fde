package model

// Patient is a row from the patient directory. All fields are kept as
// the directory stores them; date of birth in particular is compared as
// an exact string, never reparsed.
type Patient struct {
	PatientID   string `db:"patient_id" json:"patient_id"`
	FirstName   string `db:"first_name" json:"first_name"`
	LastName    string `db:"last_name" json:"last_name"`
	DateOfBirth string `db:"dob" json:"dob"`
	Email       string `db:"email" json:"email"`
	Phone       string `db:"phone" json:"phone"`
}
