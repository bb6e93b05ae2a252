package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/convene/backend/internal/domain"
	"github.com/convene/backend/internal/middleware"
)

// Minimal in-memory repositories, just enough to drive the handler
// paths under test through the real services.

type memUsers struct {
	byID map[string]*domain.User
}

func (m *memUsers) Create(_ context.Context, user *domain.User) error {
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	m.byID[user.HexID()] = user
	return nil
}

func (m *memUsers) GetByID(_ context.Context, id string) (*domain.User, error) {
	return m.byID[id], nil
}

func (m *memUsers) GetByEmail(_ context.Context, _ string) (*domain.User, error) {
	return nil, nil
}

func (m *memUsers) EmailExists(_ context.Context, _ string) (bool, error) {
	return false, nil
}

func (m *memUsers) Update(_ context.Context, _ string, _ map[string]interface{}) (*domain.User, error) {
	return nil, nil
}

func (m *memUsers) ActiveParticipantsWithToken(_ context.Context) ([]domain.User, error) {
	return nil, nil
}

type memPosts struct {
	byID map[string]*domain.Post
}

func (m *memPosts) Create(_ context.Context, post *domain.Post) error {
	if post.ID.IsZero() {
		post.ID = primitive.NewObjectID()
	}
	m.byID[post.HexID()] = post
	return nil
}

func (m *memPosts) GetByID(_ context.Context, id string) (*domain.Post, error) {
	p, ok := m.byID[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (m *memPosts) ListActive(_ context.Context, _, _ int64) ([]domain.Post, error) {
	return nil, nil
}

func (m *memPosts) Update(_ context.Context, id string, fields map[string]interface{}) (*domain.Post, error) {
	p, ok := m.byID[id]
	if !ok {
		return nil, nil
	}
	for k, v := range fields {
		switch k {
		case "title":
			p.Title = v.(string)
		case "content":
			p.Content = v.(string)
		case "image_url":
			p.ImageURL = v.(string)
		case "is_active":
			p.IsActive = v.(bool)
		}
	}
	cp := *p
	return &cp, nil
}

func (m *memPosts) Delete(_ context.Context, id string) (bool, error) {
	if _, ok := m.byID[id]; !ok {
		return false, nil
	}
	delete(m.byID, id)
	return true, nil
}

func (m *memPosts) IncrementLikes(_ context.Context, id string, delta int64) error {
	if p, ok := m.byID[id]; ok {
		p.LikesCount += delta
	}
	return nil
}

func (m *memPosts) IncrementComments(_ context.Context, id string, delta int64) error {
	if p, ok := m.byID[id]; ok {
		p.CommentsCount += delta
	}
	return nil
}

type memComments struct {
	all []*domain.Comment
}

func (m *memComments) Create(_ context.Context, comment *domain.Comment) error {
	if comment.ID.IsZero() {
		comment.ID = primitive.NewObjectID()
	}
	m.all = append(m.all, comment)
	return nil
}

func (m *memComments) ListByPost(_ context.Context, postID string, _, _ int64) ([]domain.Comment, error) {
	var out []domain.Comment
	for _, c := range m.all {
		if c.PostID == postID {
			out = append(out, *c)
		}
	}
	return out, nil
}

type memLikes struct{}

func (memLikes) Create(_ context.Context, _ *domain.Like) error { return nil }
func (memLikes) Delete(_ context.Context, _ string) (bool, error) {
	return false, nil
}
func (memLikes) GetByUserAndPost(_ context.Context, _, _ string) (*domain.Like, error) {
	return nil, nil
}
func (memLikes) ListByPost(_ context.Context, _ string, _, _ int64) ([]domain.Like, error) {
	return nil, nil
}

type memStories struct {
	byID map[string]*domain.Story
}

func (m *memStories) Create(_ context.Context, story *domain.Story) error {
	if story.ID.IsZero() {
		story.ID = primitive.NewObjectID()
	}
	m.byID[story.HexID()] = story
	return nil
}

func (m *memStories) GetByID(_ context.Context, id string) (*domain.Story, error) {
	return m.byID[id], nil
}

func (m *memStories) ListActive(_ context.Context, _ time.Time, _, _ int64) ([]domain.Story, error) {
	return nil, nil
}

func (m *memStories) ListActiveByAuthor(_ context.Context, _ string, _ time.Time, _, _ int64) ([]domain.Story, error) {
	return nil, nil
}

func (m *memStories) Update(_ context.Context, _ string, _ map[string]interface{}) (*domain.Story, error) {
	return nil, nil
}

func (m *memStories) Delete(_ context.Context, _ string) (bool, error) {
	return false, nil
}

func (m *memStories) IncrementViews(_ context.Context, _ string) error { return nil }

func (m *memStories) ExpireOld(_ context.Context, _ time.Time) (int64, error) {
	return 0, nil
}

type memStoryViews struct{}

func (memStoryViews) Create(_ context.Context, _ *domain.StoryView) error { return nil }
func (memStoryViews) GetByUserAndStory(_ context.Context, _, _ string) (*domain.StoryView, error) {
	return nil, nil
}
func (memStoryViews) ListByStory(_ context.Context, _ string, _, _ int64) ([]domain.StoryView, error) {
	return nil, nil
}

type handlerFixture struct {
	router *chi.Mux

	organizer   *domain.User
	participant *domain.User
}

// withSubject stands in for the JWT middleware: the resolved subject id
// goes straight into the request context.
func withSubject(userID string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), middleware.UserIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func newHandlerFixture(t *testing.T) *handlerFixture {
	t.Helper()

	users := &memUsers{byID: map[string]*domain.User{}}
	posts := &memPosts{byID: map[string]*domain.Post{}}
	stories := &memStories{byID: map[string]*domain.Story{}}

	f := &handlerFixture{
		organizer: &domain.User{
			Email: "olivia@example.com", PasswordHash: "x",
			FullName: "olivia", Role: domain.RoleOrganizer, IsActive: true,
		},
		participant: &domain.User{
			Email: "pat@example.com", PasswordHash: "x",
			FullName: "pat", Role: domain.RoleParticipant, IsActive: true,
		},
	}
	require.NoError(t, users.Create(context.Background(), f.organizer))
	require.NoError(t, users.Create(context.Background(), f.participant))

	logger := zap.NewNop()
	postHandler := NewPostHandler(domain.NewPostService(posts, &memComments{}, memLikes{}, users, nil), logger)
	storyHandler := NewStoryHandler(domain.NewStoryService(stories, memStoryViews{}, users, nil), logger)

	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(withSubject(f.organizer.HexID()))
		r.Post("/posts", postHandler.Create)
		r.Put("/posts/{id}", postHandler.Update)
		r.Post("/stories", storyHandler.Create)
	})
	r.Group(func(r chi.Router) {
		r.Use(withSubject(f.participant.HexID()))
		r.Post("/posts/{id}/comments", postHandler.AddComment)
	})
	f.router = r
	return f
}

func decodeBody(rec *httptest.ResponseRecorder, v interface{}) error {
	return json.Unmarshal(rec.Body.Bytes(), v)
}

func (f *handlerFixture) do(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func (f *handlerFixture) mustCreatePost(t *testing.T) string {
	t.Helper()
	rec := f.do(http.MethodPost, "/posts", `{"title":"Welcome","content":"Doors open at nine."}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var env struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	require.NoError(t, decodeBody(rec, &env))
	return env.Data.ID
}

func TestPostHandler_Create_ContentLengthBoundary(t *testing.T) {
	f := newHandlerFixture(t)

	atLimit := `{"title":"Welcome","content":"` + strings.Repeat("x", 2000) + `"}`
	rec := f.do(http.MethodPost, "/posts", atLimit)
	assert.Equal(t, http.StatusCreated, rec.Code)

	overLimit := `{"title":"Welcome","content":"` + strings.Repeat("x", 2001) + `"}`
	rec = f.do(http.MethodPost, "/posts", overLimit)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPostHandler_Update_ContentLengthBoundary(t *testing.T) {
	f := newHandlerFixture(t)
	postID := f.mustCreatePost(t)

	rec := f.do(http.MethodPut, "/posts/"+postID, `{"content":"`+strings.Repeat("x", 2000)+`"}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(http.MethodPut, "/posts/"+postID, `{"content":"`+strings.Repeat("x", 2001)+`"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPostHandler_AddComment_LengthBoundary(t *testing.T) {
	f := newHandlerFixture(t)
	postID := f.mustCreatePost(t)

	rec := f.do(http.MethodPost, "/posts/"+postID+"/comments", `{"content":"`+strings.Repeat("x", 500)+`"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = f.do(http.MethodPost, "/posts/"+postID+"/comments", `{"content":"`+strings.Repeat("x", 501)+`"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStoryHandler_Create_ContentLengthBoundary(t *testing.T) {
	f := newHandlerFixture(t)

	rec := f.do(http.MethodPost, "/stories", `{"content":"`+strings.Repeat("x", 1000)+`"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = f.do(http.MethodPost, "/stories", `{"content":"`+strings.Repeat("x", 1001)+`"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
