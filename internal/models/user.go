package models

import "time"

// UserType is fixed at registration.
type UserType string

const (
	Customer UserType = "customer"
	Business UserType = "business"
)

// ParseUserType accepts only the two known account types.
func ParseUserType(s string) (UserType, bool) {
	switch UserType(s) {
	case Customer:
		return Customer, true
	case Business:
		return Business, true
	}
	return "", false
}

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Type         UserType  `json:"type"`
	IsActive     bool      `json:"is_active"`
	IsStaff      bool      `json:"is_staff"`
	CreatedAt    time.Time `json:"created_at"`
}

// Profile carries the editable bio fields of a user. Text fields are never null.
type Profile struct {
	UserID       int64     `json:"user"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	File         string    `json:"file"`
	Location     string    `json:"location"`
	Tel          string    `json:"tel"`
	Description  string    `json:"description"`
	WorkingHours string    `json:"working_hours"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ProfileView is a profile joined with the owning user's identity fields.
type ProfileView struct {
	Profile
	Username string
	Email    string
	Type     UserType
}

// ProfilePatch holds the fields a PATCH may set; nil means untouched.
type ProfilePatch struct {
	FirstName    *string
	LastName     *string
	File         *string
	Location     *string
	Tel          *string
	Description  *string
	WorkingHours *string
	Email        *string
}

// Apply copies every set field onto the view.
func (p ProfilePatch) Apply(v *ProfileView) {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&v.FirstName, p.FirstName)
	set(&v.LastName, p.LastName)
	set(&v.File, p.File)
	set(&v.Location, p.Location)
	set(&v.Tel, p.Tel)
	set(&v.Description, p.Description)
	set(&v.WorkingHours, p.WorkingHours)
	set(&v.Email, p.Email)
}

// UserDetails is the owner summary embedded in offer listings.
type UserDetails struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Username  string `json:"username"`
}
