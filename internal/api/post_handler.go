package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/convene/backend/internal/domain"
	"github.com/convene/backend/internal/middleware"
	"github.com/convene/backend/pkg/response"
	"github.com/convene/backend/pkg/validator"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// pagination reads skip/limit query parameters with sane bounds.
func pagination(r *http.Request) (skip, limit int64) {
	limit = defaultPageLimit
	if v := r.URL.Query().Get("skip"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n >= 0 {
			skip = n
		}
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			limit = n
		}
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return skip, limit
}

// PostHandler handles post endpoints
type PostHandler struct {
	postService *domain.PostService
	logger      *zap.Logger
}

// NewPostHandler creates a new post handler
func NewPostHandler(postService *domain.PostService, logger *zap.Logger) *PostHandler {
	return &PostHandler{
		postService: postService,
		logger:      logger,
	}
}

// CreatePostRequest represents the post creation body
type CreatePostRequest struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	ImageURL string `json:"image_url"`
}

// UpdatePostRequest represents the sparse post update body
type UpdatePostRequest struct {
	Title    *string `json:"title"`
	Content  *string `json:"content"`
	ImageURL *string `json:"image_url"`
}

// CommentRequest represents the comment creation body
type CommentRequest struct {
	Content string `json:"content"`
}

// Create handles post publication by organizers
func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "not authenticated")
		return
	}

	var req CreatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	req.Title = validator.SanitizeString(req.Title, 200)
	if !validator.ValidateLength(req.Title, 1, 200) {
		response.BadRequest(w, "title must be 1-200 characters")
		return
	}
	if !validator.ValidateLength(req.Content, 1, 2000) {
		response.BadRequest(w, "content must be 1-2000 characters")
		return
	}

	post, err := h.postService.Create(r.Context(), userID, req.Title, req.Content, req.ImageURL)
	if err != nil {
		h.writeError(w, err, "create post failed")
		return
	}

	response.Created(w, "post created", post)
}

// List returns active posts, newest first
func (h *PostHandler) List(w http.ResponseWriter, r *http.Request) {
	skip, limit := pagination(r)

	posts, err := h.postService.List(r.Context(), skip, limit)
	if err != nil {
		h.writeError(w, err, "list posts failed")
		return
	}

	response.OK(w, "posts retrieved", posts)
}

// Get returns a single post with its likes and comments
func (h *PostHandler) Get(w http.ResponseWriter, r *http.Request) {
	post, err := h.postService.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err, "get post failed")
		return
	}

	response.OK(w, "post retrieved", post)
}

// Update applies a sparse update to a post owned by the caller
func (h *PostHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "not authenticated")
		return
	}

	var req UpdatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if req.Title != nil {
		trimmed := validator.SanitizeString(*req.Title, 200)
		if !validator.ValidateLength(trimmed, 1, 200) {
			response.BadRequest(w, "title must be 1-200 characters")
			return
		}
		req.Title = &trimmed
	}
	if req.Content != nil && !validator.ValidateLength(*req.Content, 1, 2000) {
		response.BadRequest(w, "content must be 1-2000 characters")
		return
	}

	post, err := h.postService.Update(r.Context(), chi.URLParam(r, "id"), userID, domain.PostUpdate{
		Title:    req.Title,
		Content:  req.Content,
		ImageURL: req.ImageURL,
	})
	if err != nil {
		h.writeError(w, err, "update post failed")
		return
	}

	response.OK(w, "post updated", post)
}

// Delete removes a post owned by the caller
func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "not authenticated")
		return
	}

	if err := h.postService.Delete(r.Context(), chi.URLParam(r, "id"), userID); err != nil {
		h.writeError(w, err, "delete post failed")
		return
	}

	response.OK(w, "post deleted", nil)
}

// Like records a like by the calling participant
func (h *PostHandler) Like(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "not authenticated")
		return
	}

	if err := h.postService.Like(r.Context(), chi.URLParam(r, "id"), userID); err != nil {
		h.writeError(w, err, "like post failed")
		return
	}

	response.OK(w, "post liked", nil)
}

// Unlike removes the caller's like from a post
func (h *PostHandler) Unlike(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "not authenticated")
		return
	}

	if err := h.postService.Unlike(r.Context(), chi.URLParam(r, "id"), userID); err != nil {
		h.writeError(w, err, "unlike post failed")
		return
	}

	response.OK(w, "post unliked", nil)
}

// AddComment records a comment by the calling participant
func (h *PostHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "not authenticated")
		return
	}

	var req CommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if !validator.ValidateLength(req.Content, 1, 500) {
		response.BadRequest(w, "comment must be 1-500 characters")
		return
	}

	comment, err := h.postService.AddComment(r.Context(), chi.URLParam(r, "id"), userID, req.Content)
	if err != nil {
		h.writeError(w, err, "add comment failed")
		return
	}

	response.Created(w, "comment added", comment)
}

// ListComments returns the comments on a post
func (h *PostHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	skip, limit := pagination(r)

	comments, err := h.postService.ListComments(r.Context(), chi.URLParam(r, "id"), skip, limit)
	if err != nil {
		h.writeError(w, err, "list comments failed")
		return
	}

	response.OK(w, "comments retrieved", comments)
}

// ListLikes returns the likes on a post
func (h *PostHandler) ListLikes(w http.ResponseWriter, r *http.Request) {
	skip, limit := pagination(r)

	likes, err := h.postService.ListLikes(r.Context(), chi.URLParam(r, "id"), skip, limit)
	if err != nil {
		h.writeError(w, err, "list likes failed")
		return
	}

	response.OK(w, "likes retrieved", likes)
}

func (h *PostHandler) writeError(w http.ResponseWriter, err error, logMsg string) {
	switch err {
	case domain.ErrPostNotFound:
		response.NotFound(w, "post not found")
	case domain.ErrUserNotFound:
		response.NotFound(w, "user not found")
	case domain.ErrNotOrganizer:
		response.Forbidden(w, "only organizers can publish posts")
	case domain.ErrNotParticipant:
		response.Forbidden(w, "only participants can interact with posts")
	case domain.ErrNotAuthor:
		response.Forbidden(w, "not the author of this post")
	case domain.ErrAlreadyLiked:
		response.BadRequest(w, "post already liked")
	case domain.ErrLikeNotFound:
		response.NotFound(w, "like not found")
	default:
		h.logger.Error(logMsg, zap.Error(err))
		response.InternalError(w)
	}
}
