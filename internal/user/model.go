package user

import (
	"time"

	"github.com/sudo-init-do/coderr/internal/models"
)

// ProfileResponse is the single profile shape, email and created_at included.
type ProfileResponse struct {
	User         int64           `json:"user"`
	Username     string          `json:"username"`
	FirstName    string          `json:"first_name"`
	LastName     string          `json:"last_name"`
	File         string          `json:"file"`
	Location     string          `json:"location"`
	Tel          string          `json:"tel"`
	Description  string          `json:"description"`
	WorkingHours string          `json:"working_hours"`
	Type         models.UserType `json:"type"`
	Email        string          `json:"email"`
	CreatedAt    time.Time       `json:"created_at"`
}

// ListedProfile is what the business and customer lists show.
type ListedProfile struct {
	User         int64           `json:"user"`
	Username     string          `json:"username"`
	FirstName    string          `json:"first_name"`
	LastName     string          `json:"last_name"`
	File         string          `json:"file"`
	Location     string          `json:"location"`
	Tel          string          `json:"tel"`
	Description  string          `json:"description"`
	WorkingHours string          `json:"working_hours"`
	Type         models.UserType `json:"type"`
}

func toResponse(v *models.ProfileView) ProfileResponse {
	return ProfileResponse{
		User:         v.UserID,
		Username:     v.Username,
		FirstName:    v.FirstName,
		LastName:     v.LastName,
		File:         v.File,
		Location:     v.Location,
		Tel:          v.Tel,
		Description:  v.Description,
		WorkingHours: v.WorkingHours,
		Type:         v.Type,
		Email:        v.Email,
		CreatedAt:    v.CreatedAt,
	}
}

func toListed(v *models.ProfileView) ListedProfile {
	return ListedProfile{
		User:         v.UserID,
		Username:     v.Username,
		FirstName:    v.FirstName,
		LastName:     v.LastName,
		File:         v.File,
		Location:     v.Location,
		Tel:          v.Tel,
		Description:  v.Description,
		WorkingHours: v.WorkingHours,
		Type:         v.Type,
	}
}
