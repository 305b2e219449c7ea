package entity

// UserAuth identifies the operator behind an authenticated request.
type UserAuth struct {
	Name string `json:"name"`
}
