package domain

import (
	"context"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory repository fakes. They mirror the Mongo-backed behavior the
// services rely on: lookups return (nil, nil) when nothing matches, and
// sparse updates apply field maps keyed by bson names.

type fakeUsers struct {
	byID map[string]*User
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byID: map[string]*User{}}
}

func (f *fakeUsers) Create(_ context.Context, user *User) error {
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	f.byID[user.HexID()] = user
	return nil
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (*User, error) {
	return f.byID[id], nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*User, error) {
	for _, u := range f.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeUsers) EmailExists(ctx context.Context, email string) (bool, error) {
	u, _ := f.GetByEmail(ctx, email)
	return u != nil, nil
}

func (f *fakeUsers) Update(_ context.Context, id string, fields map[string]interface{}) (*User, error) {
	u, ok := f.byID[id]
	if !ok {
		return nil, nil
	}
	for k, v := range fields {
		switch k {
		case "full_name":
			u.FullName = v.(string)
		case "bio":
			u.Bio = v.(string)
		case "allergies":
			u.Allergies = v.([]string)
		case "profile_image_url":
			u.ProfileImageURL = v.(string)
		case "fcm_token":
			u.FCMToken = v.(string)
		case "is_active":
			u.IsActive = v.(bool)
		}
	}
	now := time.Now().UTC()
	u.UpdatedAt = &now
	return u, nil
}

func (f *fakeUsers) ActiveParticipantsWithToken(_ context.Context) ([]User, error) {
	var out []User
	for _, u := range f.byID {
		if u.Role == RoleParticipant && u.IsActive && u.FCMToken != "" {
			out = append(out, *u)
		}
	}
	return out, nil
}

type fakePosts struct {
	byID map[string]*Post
}

func newFakePosts() *fakePosts {
	return &fakePosts{byID: map[string]*Post{}}
}

func (f *fakePosts) Create(_ context.Context, post *Post) error {
	if post.ID.IsZero() {
		post.ID = primitive.NewObjectID()
	}
	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now().UTC()
	}
	f.byID[post.HexID()] = post
	return nil
}

func (f *fakePosts) GetByID(_ context.Context, id string) (*Post, error) {
	p, ok := f.byID[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (f *fakePosts) ListActive(_ context.Context, skip, limit int64) ([]Post, error) {
	var out []Post
	for _, p := range f.byID {
		if p.IsActive {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return page(out, skip, limit), nil
}

func (f *fakePosts) Update(_ context.Context, id string, fields map[string]interface{}) (*Post, error) {
	p, ok := f.byID[id]
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

func (f *fakePosts) Delete(_ context.Context, id string) (bool, error) {
	if _, ok := f.byID[id]; !ok {
		return false, nil
	}
	delete(f.byID, id)
	return true, nil
}

func (f *fakePosts) IncrementLikes(_ context.Context, id string, delta int64) error {
	if p, ok := f.byID[id]; ok {
		p.LikesCount += delta
	}
	return nil
}

func (f *fakePosts) IncrementComments(_ context.Context, id string, delta int64) error {
	if p, ok := f.byID[id]; ok {
		p.CommentsCount += delta
	}
	return nil
}

type fakeComments struct {
	all []*Comment
}

func newFakeComments() *fakeComments { return &fakeComments{} }

func (f *fakeComments) Create(_ context.Context, comment *Comment) error {
	if comment.ID.IsZero() {
		comment.ID = primitive.NewObjectID()
	}
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = time.Now().UTC()
	}
	f.all = append(f.all, comment)
	return nil
}

func (f *fakeComments) ListByPost(_ context.Context, postID string, skip, limit int64) ([]Comment, error) {
	var out []Comment
	for _, c := range f.all {
		if c.PostID == postID {
			out = append(out, *c)
		}
	}
	return page(out, skip, limit), nil
}

type fakeLikes struct {
	all []*Like
}

func newFakeLikes() *fakeLikes { return &fakeLikes{} }

func (f *fakeLikes) Create(_ context.Context, like *Like) error {
	if like.ID.IsZero() {
		like.ID = primitive.NewObjectID()
	}
	if like.CreatedAt.IsZero() {
		like.CreatedAt = time.Now().UTC()
	}
	f.all = append(f.all, like)
	return nil
}

func (f *fakeLikes) Delete(_ context.Context, id string) (bool, error) {
	for i, l := range f.all {
		if l.HexID() == id {
			f.all = append(f.all[:i], f.all[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeLikes) GetByUserAndPost(_ context.Context, userID, postID string) (*Like, error) {
	for _, l := range f.all {
		if l.UserID == userID && l.PostID == postID {
			cp := *l
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeLikes) ListByPost(_ context.Context, postID string, skip, limit int64) ([]Like, error) {
	var out []Like
	for _, l := range f.all {
		if l.PostID == postID {
			out = append(out, *l)
		}
	}
	return page(out, skip, limit), nil
}

type fakeStories struct {
	byID map[string]*Story
}

func newFakeStories() *fakeStories {
	return &fakeStories{byID: map[string]*Story{}}
}

func (f *fakeStories) Create(_ context.Context, story *Story) error {
	if story.ID.IsZero() {
		story.ID = primitive.NewObjectID()
	}
	if story.CreatedAt.IsZero() {
		story.CreatedAt = time.Now().UTC()
	}
	f.byID[story.HexID()] = story
	return nil
}

func (f *fakeStories) GetByID(_ context.Context, id string) (*Story, error) {
	s, ok := f.byID[id]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (f *fakeStories) ListActive(_ context.Context, now time.Time, skip, limit int64) ([]Story, error) {
	var out []Story
	for _, s := range f.byID {
		if s.IsActive && now.Before(s.ExpiresAt) {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return page(out, skip, limit), nil
}

func (f *fakeStories) ListActiveByAuthor(ctx context.Context, authorID string, now time.Time, skip, limit int64) ([]Story, error) {
	all, err := f.ListActive(ctx, now, 0, int64(len(f.byID)))
	if err != nil {
		return nil, err
	}
	var out []Story
	for _, s := range all {
		if s.AuthorID == authorID {
			out = append(out, s)
		}
	}
	return page(out, skip, limit), nil
}

func (f *fakeStories) Update(_ context.Context, id string, fields map[string]interface{}) (*Story, error) {
	s, ok := f.byID[id]
	if !ok {
		return nil, nil
	}
	for k, v := range fields {
		switch k {
		case "content":
			s.Content = v.(string)
		case "image_url":
			s.ImageURL = v.(string)
		case "is_active":
			s.IsActive = v.(bool)
		}
	}
	cp := *s
	return &cp, nil
}

func (f *fakeStories) Delete(_ context.Context, id string) (bool, error) {
	if _, ok := f.byID[id]; !ok {
		return false, nil
	}
	delete(f.byID, id)
	return true, nil
}

func (f *fakeStories) IncrementViews(_ context.Context, id string) error {
	if s, ok := f.byID[id]; ok {
		s.ViewsCount++
	}
	return nil
}

func (f *fakeStories) ExpireOld(_ context.Context, now time.Time) (int64, error) {
	var n int64
	for _, s := range f.byID {
		if s.IsActive && !now.Before(s.ExpiresAt) {
			s.IsActive = false
			n++
		}
	}
	return n, nil
}

type fakeStoryViews struct {
	all []*StoryView
}

func newFakeStoryViews() *fakeStoryViews { return &fakeStoryViews{} }

func (f *fakeStoryViews) Create(_ context.Context, view *StoryView) error {
	if view.ID.IsZero() {
		view.ID = primitive.NewObjectID()
	}
	if view.CreatedAt.IsZero() {
		view.CreatedAt = time.Now().UTC()
	}
	f.all = append(f.all, view)
	return nil
}

func (f *fakeStoryViews) GetByUserAndStory(_ context.Context, userID, storyID string) (*StoryView, error) {
	for _, v := range f.all {
		if v.UserID == userID && v.StoryID == storyID {
			cp := *v
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeStoryViews) ListByStory(_ context.Context, storyID string, skip, limit int64) ([]StoryView, error) {
	var out []StoryView
	for _, v := range f.all {
		if v.StoryID == storyID {
			out = append(out, *v)
		}
	}
	return page(out, skip, limit), nil
}

// recordingNotifier captures dispatched notifications for assertions
type recordingNotifier struct {
	posts   []*Post
	stories []*Story
}

func (n *recordingNotifier) PostPublished(post *Post)    { n.posts = append(n.posts, post) }
func (n *recordingNotifier) StoryPublished(story *Story) { n.stories = append(n.stories, story) }

func page[T any](items []T, skip, limit int64) []T {
	if skip >= int64(len(items)) {
		return nil
	}
	items = items[skip:]
	if limit > 0 && limit < int64(len(items)) {
		items = items[:limit]
	}
	return items
}

func seedUser(users *fakeUsers, name string, role Role, active bool) *User {
	u := &User{
		Email:        name + "@example.com",
		PasswordHash: "x",
		FullName:     name,
		Role:         role,
		IsActive:     active,
	}
	_ = users.Create(context.Background(), u)
	return u
}
