package entity

import (
	"time"
)

// User is the aggregate root for the profile domain.
// Password holds a bcrypt hash and is never serialized.
type User struct {
	ID             string
	Name           string
	Email          string
	Password       string
	Bio            string
	ProfilePicture string
	Location       string
	Website        string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// UserSummary is the slice of a User joined into posts and comments.
type UserSummary struct {
	ID             string
	Name           string
	Email          string
	Bio            string
	ProfilePicture string
}

func (u *User) Summary() UserSummary {
	if u == nil {
		return UserSummary{}
	}
	return UserSummary{
		ID:             u.ID,
		Name:           u.Name,
		Email:          u.Email,
		Bio:            u.Bio,
		ProfilePicture: u.ProfilePicture,
	}
}
