package posts

import (
	"context"
	"fmt"
	"strings"
	"sync"

	commonerrors "mobile-forms/internal/common/errors"
	"mobile-forms/internal/common/logger"
)

// Composer creates posts. One create runs at a time.
type Composer struct {
	api    API
	store  *Store
	userID int
	logger logger.Logger

	mu         sync.Mutex
	submitting bool
}

func NewComposer(api API, store *Store, userID int, log logger.Logger) *Composer {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Composer{api: api, store: store, userID: userID, logger: log}
}

// Create sends the trimmed title and body and prepends the created post to
// the store.
func (c *Composer) Create(ctx context.Context, title, body string) (Post, error) {
	title, body = strings.TrimSpace(title), strings.TrimSpace(body)
	if title == "" || body == "" {
		return Post{}, ErrPostFieldsRequired
	}

	c.mu.Lock()
	if c.submitting {
		c.mu.Unlock()
		return Post{}, ErrCreateInProgress
	}
	c.submitting = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.submitting = false
		c.mu.Unlock()
	}()

	created, err := c.api.CreatePost(ctx, NewPost{Title: title, Body: body, UserID: c.userID})
	if err != nil {
		c.logger.Error("post create failed", map[string]interface{}{"error": err.Error()})
		return Post{}, fmt.Errorf("%w: %w", ErrPostCreateFailed, commonerrors.NewPostCreateFailedError(err))
	}

	if c.store != nil {
		c.store.Add(created)
	}
	c.logger.Info("post created", map[string]interface{}{"postId": created.ID})
	return created, nil
}

// Details loads what the post screen shows below the post itself.
type Details struct {
	api    API
	logger logger.Logger
}

func NewDetails(api API, log logger.Logger) *Details {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Details{api: api, logger: log}
}

// LoadComments never returns a nil slice on success.
func (d *Details) LoadComments(ctx context.Context, postID int) ([]Comment, error) {
	comments, err := d.api.ListComments(ctx, postID)
	if err != nil {
		d.logger.Error("comments load failed", map[string]interface{}{
			"postId": postID,
			"error":  err.Error(),
		})
		return nil, fmt.Errorf("%w: %w", ErrCommentsFetchFailed, err)
	}
	if comments == nil {
		comments = []Comment{}
	}
	return comments, nil
}
