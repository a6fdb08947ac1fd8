package model

// Project groups tasks and sprints under a manager and a member set.
// Membership has set semantics by user id.
type Project struct {
	ID        int    `json:"id"`
	Title     string `json:"title"`
	ManagerID int    `json:"manager_id"`
	Users     []User `json:"users,omitempty"`
}

// HasMember reports whether the given user id is in the member set.
func (p Project) HasMember(userID int) bool {
	for _, u := range p.Users {
		if u.ID == userID {
			return true
		}
	}
	return false
}
