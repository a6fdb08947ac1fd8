package model

// User is an account on the backend. Only ID and Email are guaranteed;
// the remaining profile fields may be empty.
type User struct {
	ID           int    `json:"id"`
	Email        string `json:"email"`
	FullName     string `json:"full_name,omitempty"`
	Organisation string `json:"organisation,omitempty"`
	Mobile       string `json:"mobile,omitempty"`
	Role         string `json:"role,omitempty"`
	Location     string `json:"location,omitempty"`
}

// DisplayName returns the user's full name, falling back to the email.
func (u User) DisplayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	return u.Email
}

// ProfileUpdate is the PATCH body for a profile edit. Pointer fields set
// to nil clear the corresponding optional value on the backend.
type ProfileUpdate struct {
	FullName     string  `json:"full_name"`
	Email        string  `json:"email"`
	Mobile       *string `json:"mobile"`
	Role         *string `json:"role"`
	Location     *string `json:"location"`
	Organisation *string `json:"organisation"`
}
