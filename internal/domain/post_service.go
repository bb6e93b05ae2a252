package domain

import (
	"context"
	"errors"
)

var (
	ErrPostNotFound   = errors.New("post not found")
	ErrNotAuthor      = errors.New("only the author may modify this content")
	ErrNotOrganizer   = errors.New("only organizers may publish content")
	ErrNotParticipant = errors.New("only participants may interact with content")
	ErrAlreadyLiked   = errors.New("post already liked")
	ErrLikeNotFound   = errors.New("like not found")
)

// enrichLimit caps the likes/comments attached to a post at read time.
const enrichLimit = 100

// PostService orchestrates posts and their likes and comments. The
// denormalized counters on Post are updated with a separate increment
// after each child write; the two steps are not atomic.
type PostService struct {
	posts    PostRepository
	comments CommentRepository
	likes    LikeRepository
	users    UserRepository
	notifier Notifier
}

// NewPostService creates a new post service. notifier may be nil.
func NewPostService(posts PostRepository, comments CommentRepository, likes LikeRepository, users UserRepository, notifier Notifier) *PostService {
	return &PostService{
		posts:    posts,
		comments: comments,
		likes:    likes,
		users:    users,
		notifier: notifier,
	}
}

// Create publishes a new post. Only active organizers may publish.
func (s *PostService) Create(ctx context.Context, authorID, title, content, imageURL string) (*Post, error) {
	author, err := s.users.GetByID(ctx, authorID)
	if err != nil {
		return nil, err
	}
	if author == nil {
		return nil, ErrUserNotFound
	}
	if !author.CanPublish() {
		return nil, ErrNotOrganizer
	}

	post := &Post{
		Title:      title,
		Content:    content,
		ImageURL:   imageURL,
		AuthorID:   authorID,
		AuthorName: author.FullName,
		AuthorRole: author.Role,
		IsActive:   true,
	}
	if err := post.Validate(); err != nil {
		return nil, err
	}

	if err := s.posts.Create(ctx, post); err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.PostPublished(post)
	}
	return post, nil
}

// List returns active posts, newest first, enriched with the liker id
// list and the comment list computed from their collections.
func (s *PostService) List(ctx context.Context, skip, limit int64) ([]Post, error) {
	posts, err := s.posts.ListActive(ctx, skip, limit)
	if err != nil {
		return nil, err
	}

	for i := range posts {
		if err := s.enrich(ctx, &posts[i]); err != nil {
			return nil, err
		}
	}
	return posts, nil
}

// Get returns one post by id, enriched
func (s *PostService) Get(ctx context.Context, postID string) (*Post, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrPostNotFound
	}
	if err := s.enrich(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// PostUpdate carries the sparse post merge
type PostUpdate struct {
	Title    *string
	Content  *string
	ImageURL *string
	IsActive *bool
}

// Update applies the provided fields to a post. Author only.
func (s *PostService) Update(ctx context.Context, postID, userID string, upd PostUpdate) (*Post, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrPostNotFound
	}
	if post.AuthorID != userID {
		return nil, ErrNotAuthor
	}

	fields := map[string]interface{}{}
	if upd.Title != nil {
		fields["title"] = *upd.Title
	}
	if upd.Content != nil {
		fields["content"] = *upd.Content
	}
	if upd.ImageURL != nil {
		fields["image_url"] = *upd.ImageURL
	}
	if upd.IsActive != nil {
		fields["is_active"] = *upd.IsActive
	}
	if len(fields) == 0 {
		return post, nil
	}

	updated, err := s.posts.Update(ctx, postID, fields)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, ErrPostNotFound
	}
	return updated, nil
}

// Delete removes a post. Author only.
func (s *PostService) Delete(ctx context.Context, postID, userID string) error {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if post == nil {
		return ErrPostNotFound
	}
	if post.AuthorID != userID {
		return ErrNotAuthor
	}

	_, err = s.posts.Delete(ctx, postID)
	return err
}

// Like records a like from an active participant. A second like by the
// same user on the same post is rejected.
func (s *PostService) Like(ctx context.Context, postID, userID string) error {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if post == nil {
		return ErrPostNotFound
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}
	if !user.CanInteract() {
		return ErrNotParticipant
	}

	existing, err := s.likes.GetByUserAndPost(ctx, userID, postID)
	if err != nil {
		return err
	}
	if existing != nil {
		return ErrAlreadyLiked
	}

	like := &Like{
		PostID:   postID,
		UserID:   userID,
		UserName: user.FullName,
	}
	if err := like.Validate(); err != nil {
		return err
	}
	if err := s.likes.Create(ctx, like); err != nil {
		return err
	}

	return s.posts.IncrementLikes(ctx, postID, 1)
}

// Unlike removes a previously recorded like
func (s *PostService) Unlike(ctx context.Context, postID, userID string) error {
	like, err := s.likes.GetByUserAndPost(ctx, userID, postID)
	if err != nil {
		return err
	}
	if like == nil {
		return ErrLikeNotFound
	}

	deleted, err := s.likes.Delete(ctx, like.HexID())
	if err != nil {
		return err
	}
	if !deleted {
		return ErrLikeNotFound
	}

	return s.posts.IncrementLikes(ctx, postID, -1)
}

// AddComment records a comment from an active participant
func (s *PostService) AddComment(ctx context.Context, postID, userID, content string) (*Comment, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrPostNotFound
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	if !user.CanInteract() {
		return nil, ErrNotParticipant
	}

	comment := &Comment{
		PostID:   postID,
		UserID:   userID,
		UserName: user.FullName,
		Content:  content,
	}
	if err := comment.Validate(); err != nil {
		return nil, err
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}

	if err := s.posts.IncrementComments(ctx, postID, 1); err != nil {
		return nil, err
	}
	return comment, nil
}

// ListComments returns the comments of a post
func (s *PostService) ListComments(ctx context.Context, postID string, skip, limit int64) ([]Comment, error) {
	if err := s.requirePost(ctx, postID); err != nil {
		return nil, err
	}
	return s.comments.ListByPost(ctx, postID, skip, limit)
}

// ListLikes returns the likes of a post
func (s *PostService) ListLikes(ctx context.Context, postID string, skip, limit int64) ([]Like, error) {
	if err := s.requirePost(ctx, postID); err != nil {
		return nil, err
	}
	return s.likes.ListByPost(ctx, postID, skip, limit)
}

func (s *PostService) requirePost(ctx context.Context, postID string) error {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if post == nil {
		return ErrPostNotFound
	}
	return nil
}

// enrich attaches the liker id list and comments and recomputes the
// counters from the collections, overriding the cached values.
func (s *PostService) enrich(ctx context.Context, post *Post) error {
	id := post.HexID()

	likes, err := s.likes.ListByPost(ctx, id, 0, enrichLimit)
	if err != nil {
		return err
	}
	comments, err := s.comments.ListByPost(ctx, id, 0, enrichLimit)
	if err != nil {
		return err
	}

	post.Likes = make([]string, 0, len(likes))
	for _, l := range likes {
		post.Likes = append(post.Likes, l.UserID)
	}
	post.Comments = comments
	post.LikesCount = int64(len(likes))
	post.CommentsCount = int64(len(comments))
	return nil
}
