package domain

import (
	"context"
	"errors"
	"strings"
	"time"
)

// Role separates the two kinds of event users: organizers publish
// content, participants interact with it.
type Role string

const (
	RoleOrganizer   Role = "organizer"
	RoleParticipant Role = "participant"
)

// Valid reports whether the role is one of the two known values
func (r Role) Valid() bool {
	return r == RoleOrganizer || r == RoleParticipant
}

// User represents an event attendee or organizer
type User struct {
	Entity          `bson:",inline"`
	Email           string   `bson:"email" json:"email"`
	PasswordHash    string   `bson:"password_hash" json:"-"`
	FullName        string   `bson:"full_name" json:"full_name"`
	Bio             string   `bson:"bio,omitempty" json:"bio,omitempty"`
	Allergies       []string `bson:"allergies,omitempty" json:"allergies,omitempty"`
	Role            Role     `bson:"role" json:"role"`
	IsActive        bool     `bson:"is_active" json:"is_active"`
	FCMToken        string   `bson:"fcm_token,omitempty" json:"-"`
	ProfileImageURL string   `bson:"profile_image_url,omitempty" json:"profile_image_url,omitempty"`
}

// Validate checks the user business rules before a write
func (u *User) Validate() error {
	if u.Email == "" || u.PasswordHash == "" {
		return errors.New("user requires email and password hash")
	}
	if len(strings.TrimSpace(u.FullName)) < 2 {
		return errors.New("full name must be at least 2 characters")
	}
	if !u.Role.Valid() {
		return errors.New("unknown role")
	}
	return nil
}

// CanPublish reports whether the user may create posts and stories
func (u *User) CanPublish() bool {
	return u.Role == RoleOrganizer && u.IsActive
}

// CanInteract reports whether the user may like, comment and view
func (u *User) CanInteract() bool {
	return u.Role == RoleParticipant && u.IsActive
}

// UserResponse is the public representation of a user
type UserResponse struct {
	ID              string     `json:"id"`
	Email           string     `json:"email"`
	FullName        string     `json:"full_name"`
	Bio             string     `json:"bio,omitempty"`
	Allergies       []string   `json:"allergies,omitempty"`
	Role            Role       `json:"role"`
	IsActive        bool       `json:"is_active"`
	ProfileImageURL string     `json:"profile_image_url,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       *time.Time `json:"updated_at,omitempty"`
}

// ToResponse converts a User to its public representation
func (u *User) ToResponse() *UserResponse {
	return &UserResponse{
		ID:              u.HexID(),
		Email:           u.Email,
		FullName:        u.FullName,
		Bio:             u.Bio,
		Allergies:       u.Allergies,
		Role:            u.Role,
		IsActive:        u.IsActive,
		ProfileImageURL: u.ProfileImageURL,
		CreatedAt:       u.CreatedAt,
		UpdatedAt:       u.UpdatedAt,
	}
}

// UserRepository defines user data access. Lookups return (nil, nil)
// when no document matches; an invalid id string counts as no match.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	Update(ctx context.Context, id string, fields map[string]interface{}) (*User, error)
	ActiveParticipantsWithToken(ctx context.Context) ([]User, error)
}
