package dto

// UserItem is a projected profile. Fields left out of the select list are
// omitted from the JSON.
type UserItem struct {
	ID        int64   `json:"id"`
	FirstName *string `json:"firstName,omitempty"`
	Image     *string `json:"image,omitempty"`
}

type UsersResponse struct {
	Total int        `json:"total"`
	Skip  int        `json:"skip"`
	Limit int        `json:"limit"`
	Users []UserItem `json:"users"`
}
