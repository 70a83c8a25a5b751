package people

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"gitlab.com/dirk.krummacker/people-service/internal/model"
)

func ptr[T any](v T) *T {
	return &v
}

// assertValidationError checks that err is a *ValidationError for the given field and message.
func assertValidationError(t *testing.T, err error, field string, message string) {
	t.Helper()
	var validationErr *ValidationError
	if assert.True(t, errors.As(err, &validationErr), "expected a validation error, got %v", err) {
		assert.Equal(t, field, validationErr.Field)
		assert.Equal(t, message, validationErr.Message)
	}
}

func TestValidateNewPerson(t *testing.T) {
	valid := model.NewPerson{FirstName: "A", LastName: "B", Email: "a@b.com", Age: 30}
	assert.NoError(t, Validate(valid))

	tests := []struct {
		name    string
		mutate  func(p *model.NewPerson)
		field   string
		message string
	}{
		{"age zero", func(p *model.NewPerson) { p.Age = 0 }, "age", "Age must be a positive integer"},
		{"negative age", func(p *model.NewPerson) { p.Age = -4 }, "age", "Age must be a positive integer"},
		{"invalid email", func(p *model.NewPerson) { p.Email = "not-an-email" }, "email", "value is not a valid email address"},
		{"missing email", func(p *model.NewPerson) { p.Email = "" }, "email", "value is not a valid email address"},
		{"empty first name", func(p *model.NewPerson) { p.FirstName = "" }, "first_name", "first_name must not be empty"},
		{"empty last name", func(p *model.NewPerson) { p.LastName = "" }, "last_name", "last_name must not be empty"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			p := valid
			test.mutate(&p)
			assertValidationError(t, Validate(p), test.field, test.message)
		})
	}
}

func TestValidatePersonPatch(t *testing.T) {
	assert.NoError(t, Validate(model.PersonPatch{}))
	assert.NoError(t, Validate(model.PersonPatch{Age: ptr(31)}))
	assert.NoError(t, Validate(model.PersonPatch{Email: ptr("rudi@example.com"), FirstName: ptr("Rudi")}))

	assertValidationError(t, Validate(model.PersonPatch{Age: ptr(0)}), "age", "Age must be a positive integer")
	assertValidationError(t, Validate(model.PersonPatch{Email: ptr("rudi")}), "email", "value is not a valid email address")
	assertValidationError(t, Validate(model.PersonPatch{FirstName: ptr("")}), "first_name", "first_name must not be empty")
}
