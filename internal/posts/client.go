// Package posts talks to a JSONPlaceholder-style posts API and keeps the
// list the home screen shows.
package posts

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	commonhttp "mobile-forms/internal/common/http"
)

var (
	ErrPostsFetchFailed    = errors.New("POSTS_FETCH_FAILED")
	ErrPostCreateFailed    = errors.New("POST_CREATE_FAILED")
	ErrCommentsFetchFailed = errors.New("COMMENTS_FETCH_FAILED")
	ErrPostFieldsRequired  = errors.New("POST_FIELDS_REQUIRED")
	ErrCreateInProgress    = errors.New("CREATE_IN_PROGRESS")
)

// User-facing messages.
const (
	FetchErrorMessage     = "Не удалось загрузить посты. Попробуйте позже."
	CreateErrorMessage    = "Не удалось создать пост"
	FieldsRequiredMessage = "Заполните и заголовок, и текст поста"
	CommentsErrorMessage  = "Не удалось загрузить комментарии"
)

type Post struct {
	ID     int    `json:"id"`
	UserID int    `json:"userId"`
	Title  string `json:"title"`
	Body   string `json:"body"`
}

type Comment struct {
	ID     int    `json:"id"`
	PostID int    `json:"postId"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Body   string `json:"body"`
}

type NewPost struct {
	Title  string `json:"title"`
	Body   string `json:"body"`
	UserID int    `json:"userId"`
}

// API is the remote posts service.
type API interface {
	ListPosts(ctx context.Context) ([]Post, error)
	CreatePost(ctx context.Context, post NewPost) (Post, error)
	ListComments(ctx context.Context, postID int) ([]Comment, error)
}

type Client struct {
	http *commonhttp.Client
}

func NewClient(baseURL string, timeout time.Duration, opts ...commonhttp.Option) *Client {
	return &Client{http: commonhttp.NewClient(baseURL, timeout, opts...)}
}

func (c *Client) ListPosts(ctx context.Context) ([]Post, error) {
	var out []Post
	if err := c.http.GetJSON(ctx, "/posts", nil, &out); err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return out, nil
}

func (c *Client) CreatePost(ctx context.Context, post NewPost) (Post, error) {
	var out Post
	if err := c.http.PostJSON(ctx, "/posts", post, &out); err != nil {
		return Post{}, fmt.Errorf("create post: %w", err)
	}
	return out, nil
}

func (c *Client) ListComments(ctx context.Context, postID int) ([]Comment, error) {
	var out []Comment
	query := map[string]string{"postId": strconv.Itoa(postID)}
	if err := c.http.GetJSON(ctx, "/comments", query, &out); err != nil {
		return nil, fmt.Errorf("list comments of post %d: %w", postID, err)
	}
	return out, nil
}
