package models

// Student is the signed-in pupil's profile.
type Student struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	AvatarURL string `json:"avatarUrl"`
}

// DisplayName prefers the first name.
func (s Student) DisplayName() string {
	if s.FirstName != "" {
		return s.FirstName
	}
	return s.Name
}
