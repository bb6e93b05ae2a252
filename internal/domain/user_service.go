package domain

import (
	"context"
	"errors"
	"strings"

	"github.com/convene/backend/internal/auth"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountInactive    = errors.New("account is deactivated")
)

// UserService handles registration, login and profile management
type UserService struct {
	users UserRepository
	jwt   *auth.JWTManager
}

// NewUserService creates a new user service
func NewUserService(users UserRepository, jwt *auth.JWTManager) *UserService {
	return &UserService{
		users: users,
		jwt:   jwt,
	}
}

// AuthResult is the token-plus-user payload returned by register, login
// and refresh.
type AuthResult struct {
	AccessToken string        `json:"access_token"`
	TokenType   string        `json:"token_type"`
	User        *UserResponse `json:"user"`
}

// Register creates a new user and issues a token. The email-uniqueness
// check is check-then-insert: racy under concurrent identical
// registration, accepted for this workload.
func (s *UserService) Register(ctx context.Context, email, password, fullName string, role Role) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	exists, err := s.users.EmailExists(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailTaken
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &User{
		Email:        email,
		PasswordHash: hash,
		FullName:     strings.TrimSpace(fullName),
		Role:         role,
		IsActive:     true,
	}
	if err := user.Validate(); err != nil {
		return nil, err
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	return s.issueToken(user)
}

// Login verifies credentials and issues a token
func (s *UserService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrAccountInactive
	}
	if err := auth.VerifyPassword(password, user.PasswordHash); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.issueToken(user)
}

// Refresh reissues a token for an already-authenticated subject. The
// user must still exist and be active.
func (s *UserService) Refresh(ctx context.Context, userID string) (*AuthResult, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	if !user.IsActive {
		return nil, ErrAccountInactive
	}

	return s.issueToken(user)
}

// GetProfile returns a user by id
func (s *UserService) GetProfile(ctx context.Context, userID string) (*User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// ProfileUpdate carries the sparse profile merge: only non-nil fields
// are applied.
type ProfileUpdate struct {
	FullName        *string
	Bio             *string
	Allergies       []string
	ProfileImageURL *string
	FCMToken        *string
}

// UpdateProfile applies the provided fields to the user's profile
func (s *UserService) UpdateProfile(ctx context.Context, userID string, upd ProfileUpdate) (*User, error) {
	current, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if upd.FullName != nil {
		fields["full_name"] = strings.TrimSpace(*upd.FullName)
	}
	if upd.Bio != nil {
		fields["bio"] = *upd.Bio
	}
	if upd.Allergies != nil {
		fields["allergies"] = upd.Allergies
	}
	if upd.ProfileImageURL != nil {
		fields["profile_image_url"] = *upd.ProfileImageURL
	}
	if upd.FCMToken != nil {
		fields["fcm_token"] = *upd.FCMToken
	}
	if len(fields) == 0 {
		return current, nil
	}

	updated, err := s.users.Update(ctx, userID, fields)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, ErrUserNotFound
	}
	return updated, nil
}

// UpdateFCMToken stores the device push token for the user
func (s *UserService) UpdateFCMToken(ctx context.Context, userID, token string) (*User, error) {
	return s.UpdateProfile(ctx, userID, ProfileUpdate{FCMToken: &token})
}

// SetActive flips the account active flag
func (s *UserService) SetActive(ctx context.Context, userID string, active bool) (*User, error) {
	updated, err := s.users.Update(ctx, userID, map[string]interface{}{"is_active": active})
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, ErrUserNotFound
	}
	return updated, nil
}

func (s *UserService) issueToken(user *User) (*AuthResult, error) {
	token, err := s.jwt.Generate(user.HexID(), user.Email, string(user.Role))
	if err != nil {
		return nil, err
	}
	return &AuthResult{
		AccessToken: token,
		TokenType:   "bearer",
		User:        user.ToResponse(),
	}, nil
}
