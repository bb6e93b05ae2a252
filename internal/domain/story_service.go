package domain

import (
	"context"
	"errors"
	"time"
)

var (
	ErrStoryNotFound = errors.New("story not found")
	ErrStoryExpired  = errors.New("story has expired")

	// ErrAlreadyViewed is raised by the storage layer when a concurrent
	// view wins the unique-index race; View treats it as a repeat view.
	ErrAlreadyViewed = errors.New("story already viewed")
)

// StoryService orchestrates ephemeral stories: creation, the 24 hour
// visibility window, per-user view tracking and the expiry sweep.
type StoryService struct {
	stories  StoryRepository
	views    StoryViewRepository
	users    UserRepository
	notifier Notifier
	now      func() time.Time
}

// NewStoryService creates a new story service. notifier may be nil.
func NewStoryService(stories StoryRepository, views StoryViewRepository, users UserRepository, notifier Notifier) *StoryService {
	return &StoryService{
		stories:  stories,
		views:    views,
		users:    users,
		notifier: notifier,
		now:      time.Now,
	}
}

// Create publishes a story that expires StoryTTL after creation. Only
// active organizers may publish.
func (s *StoryService) Create(ctx context.Context, authorID, content, imageURL string) (*Story, error) {
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

	story := &Story{
		Content:    content,
		ImageURL:   imageURL,
		AuthorID:   authorID,
		AuthorName: author.FullName,
		AuthorRole: author.Role,
		ExpiresAt:  s.now().Add(StoryTTL),
		IsActive:   true,
	}
	if err := story.Validate(); err != nil {
		return nil, err
	}

	if err := s.stories.Create(ctx, story); err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.StoryPublished(story)
	}
	return story, nil
}

// ListActive returns unexpired active stories, newest first
func (s *StoryService) ListActive(ctx context.Context, skip, limit int64) ([]Story, error) {
	return s.stories.ListActive(ctx, s.now(), skip, limit)
}

// ListByAuthor returns one author's unexpired active stories
func (s *StoryService) ListByAuthor(ctx context.Context, authorID string, skip, limit int64) ([]Story, error) {
	return s.stories.ListActiveByAuthor(ctx, authorID, s.now(), skip, limit)
}

// ViewResult pairs a story with the time left in its window
type ViewResult struct {
	Story              *Story `json:"story"`
	TimeRemainingHours int    `json:"time_remaining_hours"`
}

// View returns a story and records the view. The first view by a
// subject creates a StoryView and bumps the counter; repeat views by
// the same subject are successful no-ops. An expired story reads as
// gone, not as missing.
func (s *StoryService) View(ctx context.Context, storyID, userID string) (*ViewResult, error) {
	story, err := s.getLive(ctx, storyID)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	existing, err := s.views.GetByUserAndStory(ctx, userID, storyID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		view := &StoryView{
			StoryID:  storyID,
			UserID:   userID,
			UserName: user.FullName,
		}
		switch err := s.views.Create(ctx, view); err {
		case nil:
		case ErrAlreadyViewed:
			// Lost the insert race to a concurrent view; the counter
			// was bumped by the winner.
			return &ViewResult{
				Story:              story,
				TimeRemainingHours: int(story.TimeRemaining(s.now()).Hours()),
			}, nil
		default:
			return nil, err
		}
		if err := s.stories.IncrementViews(ctx, storyID); err != nil {
			return nil, err
		}
		story.ViewsCount++
	}

	return &ViewResult{
		Story:              story,
		TimeRemainingHours: int(story.TimeRemaining(s.now()).Hours()),
	}, nil
}

// StoryUpdate carries the sparse story merge
type StoryUpdate struct {
	Content  *string
	ImageURL *string
	IsActive *bool
}

// Update applies the provided fields to a story. Author only, and not
// once the story has expired.
func (s *StoryService) Update(ctx context.Context, storyID, userID string, upd StoryUpdate) (*Story, error) {
	story, err := s.stories.GetByID(ctx, storyID)
	if err != nil {
		return nil, err
	}
	if story == nil {
		return nil, ErrStoryNotFound
	}
	if story.AuthorID != userID {
		return nil, ErrNotAuthor
	}
	if story.Expired(s.now()) {
		return nil, ErrStoryExpired
	}

	fields := map[string]interface{}{}
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
		return story, nil
	}

	updated, err := s.stories.Update(ctx, storyID, fields)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, ErrStoryNotFound
	}
	return updated, nil
}

// Delete removes a story. Author only.
func (s *StoryService) Delete(ctx context.Context, storyID, userID string) error {
	story, err := s.stories.GetByID(ctx, storyID)
	if err != nil {
		return err
	}
	if story == nil {
		return ErrStoryNotFound
	}
	if story.AuthorID != userID {
		return ErrNotAuthor
	}

	_, err = s.stories.Delete(ctx, storyID)
	return err
}

// Views lists who viewed a story. Author only.
func (s *StoryService) Views(ctx context.Context, storyID, userID string, skip, limit int64) ([]StoryView, error) {
	story, err := s.stories.GetByID(ctx, storyID)
	if err != nil {
		return nil, err
	}
	if story == nil {
		return nil, ErrStoryNotFound
	}
	if story.AuthorID != userID {
		return nil, ErrNotAuthor
	}

	return s.views.ListByStory(ctx, storyID, skip, limit)
}

// ExpireOld flips is_active off for every story whose window has passed
// and returns how many were flipped. Idempotent: a second run right
// after finds nothing left to flip.
func (s *StoryService) ExpireOld(ctx context.Context) (int64, error) {
	return s.stories.ExpireOld(ctx, s.now())
}

// getLive fetches a story and distinguishes missing from expired
func (s *StoryService) getLive(ctx context.Context, storyID string) (*Story, error) {
	story, err := s.stories.GetByID(ctx, storyID)
	if err != nil {
		return nil, err
	}
	if story == nil {
		return nil, ErrStoryNotFound
	}
	if !story.IsActive || story.Expired(s.now()) {
		return nil, ErrStoryExpired
	}
	return story, nil
}
