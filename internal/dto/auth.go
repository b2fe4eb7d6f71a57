package dto

// CredentialsRequest is the verify-credentials body.
type CredentialsRequest struct {
	PupilCode   string `json:"pupilCode" validate:"required"`
	DateOfBirth string `json:"dateOfBirth" validate:"required"`
	RememberMe  bool   `json:"rememberMe"`
}

// UserView is the /api/user payload. Avatar is null when the pupil has none.
type UserView struct {
	Name        string  `json:"name"`
	DisplayName string  `json:"displayName"`
	Avatar      *string `json:"avatar"`
}
