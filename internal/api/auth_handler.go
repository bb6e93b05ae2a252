package api

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/convene/backend/internal/domain"
	"github.com/convene/backend/internal/middleware"
	"github.com/convene/backend/pkg/response"
	"github.com/convene/backend/pkg/validator"
)

// AuthHandler handles registration, login and profile endpoints
type AuthHandler struct {
	userService *domain.UserService
	logger      *zap.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(userService *domain.UserService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		logger:      logger,
	}
}

// RegisterRequest represents the registration request body
type RegisterRequest struct {
	Email    string      `json:"email"`
	Password string      `json:"password"`
	FullName string      `json:"full_name"`
	Role     domain.Role `json:"role"`
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateProfileRequest represents the sparse profile update body
type UpdateProfileRequest struct {
	FullName        *string  `json:"full_name"`
	Bio             *string  `json:"bio"`
	Allergies       []string `json:"allergies"`
	ProfileImageURL *string  `json:"profile_image_url"`
	FCMToken        *string  `json:"fcm_token"`
}

// FCMTokenRequest represents the push token registration body
type FCMTokenRequest struct {
	FCMToken string `json:"fcm_token"`
}

// Register handles user registration
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	req.Email = validator.SanitizeEmail(req.Email)
	if !validator.ValidateEmail(req.Email) {
		response.BadRequest(w, "invalid email address")
		return
	}
	if !validator.ValidatePassword(req.Password) {
		response.BadRequest(w, "password must be at least 8 characters")
		return
	}
	req.FullName = validator.SanitizeString(req.FullName, 100)
	if !validator.ValidateName(req.FullName) {
		response.BadRequest(w, "full name must be 2-100 characters")
		return
	}
	if req.Role == "" {
		req.Role = domain.RoleParticipant
	}
	if !req.Role.Valid() {
		response.BadRequest(w, "role must be organizer or participant")
		return
	}

	result, err := h.userService.Register(r.Context(), req.Email, req.Password, req.FullName, req.Role)
	if err != nil {
		if err == domain.ErrEmailTaken {
			response.Conflict(w, "email already registered")
			return
		}
		h.logger.Error("registration failed", zap.Error(err))
		response.InternalError(w)
		return
	}

	response.Created(w, "user registered", result)
}

// Login handles user login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	req.Email = validator.SanitizeEmail(req.Email)
	if req.Email == "" || req.Password == "" {
		response.BadRequest(w, "email and password are required")
		return
	}

	result, err := h.userService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if err == domain.ErrInvalidCredentials || err == domain.ErrAccountInactive {
			response.Unauthorized(w, "invalid email or password")
			return
		}
		h.logger.Error("login failed", zap.Error(err), zap.String("email", req.Email))
		response.InternalError(w)
		return
	}

	response.OK(w, "login successful", result)
}

// Me returns the current authenticated user's profile
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "not authenticated")
		return
	}

	user, err := h.userService.GetProfile(r.Context(), userID)
	if err != nil {
		if err == domain.ErrUserNotFound {
			response.NotFound(w, "user not found")
			return
		}
		h.logger.Error("get profile failed", zap.Error(err))
		response.InternalError(w)
		return
	}

	response.OK(w, "profile retrieved", user.ToResponse())
}

// UpdateMe applies a sparse update to the current user's profile
func (h *AuthHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "not authenticated")
		return
	}

	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if req.FullName != nil {
		trimmed := validator.SanitizeString(*req.FullName, 100)
		if !validator.ValidateName(trimmed) {
			response.BadRequest(w, "full name must be 2-100 characters")
			return
		}
		req.FullName = &trimmed
	}
	if req.Bio != nil && !validator.ValidateLength(*req.Bio, 0, 500) {
		response.BadRequest(w, "bio must be at most 500 characters")
		return
	}

	user, err := h.userService.UpdateProfile(r.Context(), userID, domain.ProfileUpdate{
		FullName:        req.FullName,
		Bio:             req.Bio,
		Allergies:       req.Allergies,
		ProfileImageURL: req.ProfileImageURL,
		FCMToken:        req.FCMToken,
	})
	if err != nil {
		if err == domain.ErrUserNotFound {
			response.NotFound(w, "user not found")
			return
		}
		h.logger.Error("update profile failed", zap.Error(err))
		response.InternalError(w)
		return
	}

	response.OK(w, "profile updated", user.ToResponse())
}

// Refresh reissues a token for the authenticated subject
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "not authenticated")
		return
	}

	result, err := h.userService.Refresh(r.Context(), userID)
	if err != nil {
		if err == domain.ErrUserNotFound || err == domain.ErrAccountInactive {
			response.Unauthorized(w, "account no longer valid")
			return
		}
		h.logger.Error("token refresh failed", zap.Error(err))
		response.InternalError(w)
		return
	}

	response.OK(w, "token refreshed", result)
}

// UpdateFCMToken stores the device push token for the current user
func (h *AuthHandler) UpdateFCMToken(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "not authenticated")
		return
	}

	var req FCMTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if req.FCMToken == "" {
		response.BadRequest(w, "fcm_token is required")
		return
	}

	user, err := h.userService.UpdateFCMToken(r.Context(), userID, req.FCMToken)
	if err != nil {
		if err == domain.ErrUserNotFound {
			response.NotFound(w, "user not found")
			return
		}
		h.logger.Error("update fcm token failed", zap.Error(err))
		response.InternalError(w)
		return
	}

	response.OK(w, "fcm token updated", user.ToResponse())
}
