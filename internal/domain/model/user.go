package model

// User is a single deck record as served by the users source.
type User struct {
	ID        int64  `json:"id"`
	FirstName string `json:"firstName"`
	Image     string `json:"image"`
}

type UsersPage struct {
	Total int    `json:"total"`
	Skip  int    `json:"skip"`
	Limit int    `json:"limit"`
	Users []User `json:"users"`
}
