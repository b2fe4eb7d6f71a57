package models

// Announcement is a school notice shown on the dashboard.
type Announcement struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	SchoolName  string `json:"school_name"`
	TeacherName string `json:"teacher_name"`
	SchoolLogo  string `json:"school_logo"`
	Timestamp   string `json:"timestamp"`
}
