package model

// Person is the data structure for a person record as it is stored in the people table.
type Person struct {
	Id        int64  `json:"id"         db:"id"`
	FirstName string `json:"first_name" db:"first_name"`
	LastName  string `json:"last_name"  db:"last_name"`
	Email     string `json:"email"      db:"email"`
	Age       int    `json:"age"        db:"age"`
}

// NewPerson is the payload for creating a person. All fields are mandatory.
type NewPerson struct {
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name"  validate:"required"`
	Email     string `json:"email"      validate:"required,email"`
	Age       int    `json:"age"        validate:"min=1"`
}

// PersonPatch is the payload for updating a person. A nil field was not part of the request and
// leaves the stored value untouched. A non-nil field overwrites the stored value and must be
// valid on its own, so an empty name or an age of 0 is rejected instead of being ignored.
type PersonPatch struct {
	FirstName *string `json:"first_name,omitempty" validate:"omitnil,min=1"`
	LastName  *string `json:"last_name,omitempty"  validate:"omitnil,min=1"`
	Email     *string `json:"email,omitempty"      validate:"omitnil,email"`
	Age       *int    `json:"age,omitempty"        validate:"omitnil,min=1"`
}

// IsEmpty reports whether the patch carries no field at all.
func (p PersonPatch) IsEmpty() bool {
	return p.FirstName == nil && p.LastName == nil && p.Email == nil && p.Age == nil
}

// ApplyTo overwrites the fields of person that are present in the patch.
func (p PersonPatch) ApplyTo(person *Person) {
	if p.FirstName != nil {
		person.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		person.LastName = *p.LastName
	}
	if p.Email != nil {
		person.Email = *p.Email
	}
	if p.Age != nil {
		person.Age = *p.Age
	}
}
