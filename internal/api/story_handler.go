package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/convene/backend/internal/domain"
	"github.com/convene/backend/internal/middleware"
	"github.com/convene/backend/pkg/response"
	"github.com/convene/backend/pkg/validator"
)

// StoryHandler handles ephemeral story endpoints
type StoryHandler struct {
	storyService *domain.StoryService
	logger       *zap.Logger
}

// NewStoryHandler creates a new story handler
func NewStoryHandler(storyService *domain.StoryService, logger *zap.Logger) *StoryHandler {
	return &StoryHandler{
		storyService: storyService,
		logger:       logger,
	}
}

// CreateStoryRequest represents the story creation body
type CreateStoryRequest struct {
	Content  string `json:"content"`
	ImageURL string `json:"image_url"`
}

// UpdateStoryRequest represents the sparse story update body
type UpdateStoryRequest struct {
	Content  *string `json:"content"`
	ImageURL *string `json:"image_url"`
}

// Create handles story publication by organizers
func (h *StoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "not authenticated")
		return
	}

	var req CreateStoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if !validator.ValidateLength(req.Content, 1, 1000) {
		response.BadRequest(w, "content must be 1-1000 characters")
		return
	}

	story, err := h.storyService.Create(r.Context(), userID, req.Content, req.ImageURL)
	if err != nil {
		h.writeError(w, err, "create story failed")
		return
	}

	response.Created(w, "story created", story)
}

// List returns live stories, newest first
func (h *StoryHandler) List(w http.ResponseWriter, r *http.Request) {
	skip, limit := pagination(r)

	stories, err := h.storyService.ListActive(r.Context(), skip, limit)
	if err != nil {
		h.writeError(w, err, "list stories failed")
		return
	}

	response.OK(w, "stories retrieved", stories)
}

// ListByAuthor returns an author's live stories
func (h *StoryHandler) ListByAuthor(w http.ResponseWriter, r *http.Request) {
	skip, limit := pagination(r)

	stories, err := h.storyService.ListByAuthor(r.Context(), chi.URLParam(r, "authorID"), skip, limit)
	if err != nil {
		h.writeError(w, err, "list author stories failed")
		return
	}

	response.OK(w, "stories retrieved", stories)
}

// View returns a story and records the caller's view
func (h *StoryHandler) View(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "not authenticated")
		return
	}

	result, err := h.storyService.View(r.Context(), chi.URLParam(r, "id"), userID)
	if err != nil {
		h.writeError(w, err, "view story failed")
		return
	}

	response.OK(w, "story retrieved", result)
}

// Update applies a sparse update to a live story owned by the caller
func (h *StoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "not authenticated")
		return
	}

	var req UpdateStoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if req.Content != nil && !validator.ValidateLength(*req.Content, 1, 1000) {
		response.BadRequest(w, "content must be 1-1000 characters")
		return
	}

	story, err := h.storyService.Update(r.Context(), chi.URLParam(r, "id"), userID, domain.StoryUpdate{
		Content:  req.Content,
		ImageURL: req.ImageURL,
	})
	if err != nil {
		h.writeError(w, err, "update story failed")
		return
	}

	response.OK(w, "story updated", story)
}

// Delete removes a story owned by the caller
func (h *StoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "not authenticated")
		return
	}

	if err := h.storyService.Delete(r.Context(), chi.URLParam(r, "id"), userID); err != nil {
		h.writeError(w, err, "delete story failed")
		return
	}

	response.OK(w, "story deleted", nil)
}

// Views returns who viewed a story. Author only.
func (h *StoryHandler) Views(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "not authenticated")
		return
	}

	skip, limit := pagination(r)

	views, err := h.storyService.Views(r.Context(), chi.URLParam(r, "id"), userID, skip, limit)
	if err != nil {
		h.writeError(w, err, "list story views failed")
		return
	}

	response.OK(w, "views retrieved", views)
}

// ExpireOld deactivates stories past their expiry. Meant to be called
// by an external scheduler.
func (h *StoryHandler) ExpireOld(w http.ResponseWriter, r *http.Request) {
	count, err := h.storyService.ExpireOld(r.Context())
	if err != nil {
		h.writeError(w, err, "expire stories failed")
		return
	}

	response.OK(w, "expired stories deactivated", map[string]int64{"expired_count": count})
}

func (h *StoryHandler) writeError(w http.ResponseWriter, err error, logMsg string) {
	switch err {
	case domain.ErrStoryNotFound:
		response.NotFound(w, "story not found")
	case domain.ErrStoryExpired:
		response.Gone(w, "story has expired")
	case domain.ErrUserNotFound:
		response.NotFound(w, "user not found")
	case domain.ErrNotOrganizer:
		response.Forbidden(w, "only organizers can publish stories")
	case domain.ErrNotAuthor:
		response.Forbidden(w, "not the author of this story")
	default:
		h.logger.Error(logMsg, zap.Error(err))
		response.InternalError(w)
	}
}
