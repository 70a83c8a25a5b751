package model

// Person is the JSON representation of a person record as returned by the people service.
type Person struct {
	Id        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Age       int    `json:"age"`
}

// Detail is the JSON body the people service returns for errors and confirmations.
type Detail struct {
	Detail string `json:"detail"`
}
