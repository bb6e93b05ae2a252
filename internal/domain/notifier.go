package domain

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/convene/backend/internal/fcm"
)

// Notifier announces new content to participants. Implementations are
// best-effort: delivery failure never reaches the operation that
// published the content.
type Notifier interface {
	PostPublished(post *Post)
	StoryPublished(story *Story)
}

// PushNotifier fans out FCM push messages to every active participant
// that registered a device token.
type PushNotifier struct {
	users  UserRepository
	client *fcm.Client
	logger *zap.Logger
}

// NewPushNotifier creates a push notifier. client may be nil when
// Firebase is not configured; dispatch then degrades to a no-op.
func NewPushNotifier(users UserRepository, client *fcm.Client, logger *zap.Logger) *PushNotifier {
	return &PushNotifier{
		users:  users,
		client: client,
		logger: logger,
	}
}

// PostPublished announces a new post. Fire-and-forget: the caller's
// request context is deliberately not used.
func (n *PushNotifier) PostPublished(post *Post) {
	go n.dispatch(
		"New post",
		post.AuthorName+" published: "+post.Title,
		map[string]string{
			"type":    "new_post",
			"post_id": post.HexID(),
			"author":  post.AuthorName,
		},
	)
}

// StoryPublished announces a new story
func (n *PushNotifier) StoryPublished(story *Story) {
	go n.dispatch(
		"New story",
		story.AuthorName+" published a new story",
		map[string]string{
			"type":     "new_story",
			"story_id": story.HexID(),
			"author":   story.AuthorName,
		},
	)
}

func (n *PushNotifier) dispatch(title, body string, data map[string]string) {
	if n.client == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	participants, err := n.users.ActiveParticipantsWithToken(ctx)
	if err != nil {
		n.logger.Error("failed to load notification recipients", zap.Error(err))
		return
	}

	tokens := make([]string, 0, len(participants))
	for _, p := range participants {
		if p.FCMToken != "" {
			tokens = append(tokens, p.FCMToken)
		}
	}
	if len(tokens) == 0 {
		return
	}

	success, failure := n.client.SendMulticast(ctx, tokens, title, body, data)
	n.logger.Info("push notification dispatched",
		zap.String("title", title),
		zap.Int("success", success),
		zap.Int("failure", failure),
	)
}
