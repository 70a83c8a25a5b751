package people

import "fmt"

// ValidationError reports a request field with a malformed or out-of-range value.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ConflictError reports that an email address is already used by another person.
type ConflictError struct {
	Email string
}

func (e *ConflictError) Error() string {
	return "Email address already used by another person"
}

// NotFoundError reports that no person exists for an id.
type NotFoundError struct {
	Id int64
}

func (e *NotFoundError) Error() string {
	return "Person not found"
}
