package posts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	commonerrors "mobile-forms/internal/common/errors"
	"mobile-forms/internal/common/logger"
	"mobile-forms/internal/common/metrics"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

const (
	cacheKey            = "posts:list"
	defaultFetchTimeout = 15 * time.Second
)

// State is what the list screen renders.
type State struct {
	Posts   []Post `json:"posts"`
	Loading bool   `json:"loading"`
	Error   string `json:"error,omitempty"`
}

type StoreOptions struct {
	// Cache is optional. Read and write errors on it are logged only.
	Cache        redis.Cmdable
	CacheTTL     time.Duration
	// FetchTimeout bounds one shared load, independent of any caller.
	FetchTimeout time.Duration
	Logger       logger.Logger
}

type Store struct {
	api      API
	cache    redis.Cmdable
	cacheTTL time.Duration
	timeout  time.Duration
	logger   logger.Logger
	group    singleflight.Group

	mu      sync.RWMutex
	posts   []Post
	loading bool
	errMsg  string
}

func NewStore(api API, opts StoreOptions) *Store {
	if opts.Logger == nil {
		opts.Logger = logger.NewNoOpLogger()
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = time.Minute
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = defaultFetchTimeout
	}
	return &Store{
		api:      api,
		cache:    opts.Cache,
		cacheTTL: opts.CacheTTL,
		timeout:  opts.FetchTimeout,
		logger:   opts.Logger,
		posts:    []Post{},
	}
}

func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return State{
		Posts:   append([]Post{}, s.posts...),
		Loading: s.loading,
		Error:   s.errMsg,
	}
}

// Fetch reloads the list. Concurrent callers share one load, which runs
// detached from every caller's context and settles the state itself, so a
// caller that goes away only ends its own wait. On failure the previous
// posts stay and Error carries the user message.
func (s *Store) Fetch(ctx context.Context) error {
	s.mu.Lock()
	s.loading = true
	s.errMsg = ""
	s.mu.Unlock()

	ch := s.group.DoChan("posts", func() (interface{}, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
		defer cancel()

		list, err := s.load(loadCtx)
		s.settle(list, err)
		return list, err
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return fmt.Errorf("%w: %w", ErrPostsFetchFailed, commonerrors.NewPostsFetchFailedError(res.Err))
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("fetch posts: %w", ctx.Err())
	}
}

func (s *Store) settle(list []Post, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if err != nil {
		s.errMsg = FetchErrorMessage
		return
	}
	s.posts = append([]Post{}, list...)
}

// Add puts a post at the top of the list.
func (s *Store) Add(post Post) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.posts = append([]Post{post}, s.posts...)
}

func (s *Store) load(ctx context.Context) ([]Post, error) {
	if cached, ok := s.readCache(ctx); ok {
		metrics.PostsFetches.WithLabelValues("cache").Inc()
		return cached, nil
	}

	list, err := s.api.ListPosts(ctx)
	if err != nil {
		metrics.PostsFetches.WithLabelValues("error").Inc()
		s.logger.Error("posts load failed", map[string]interface{}{"error": err.Error()})
		return nil, err
	}
	if list == nil {
		list = []Post{}
	}
	metrics.PostsFetches.WithLabelValues("api").Inc()
	s.writeCache(ctx, list)
	return list, nil
}

func (s *Store) readCache(ctx context.Context) ([]Post, bool) {
	if s.cache == nil {
		return nil, false
	}
	raw, err := s.cache.Get(ctx, cacheKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn("posts cache read failed", map[string]interface{}{"error": err.Error()})
		}
		return nil, false
	}
	var list []Post
	if err := json.Unmarshal(raw, &list); err != nil {
		s.logger.Warn("posts cache entry corrupt", map[string]interface{}{"error": err.Error()})
		return nil, false
	}
	return list, true
}

func (s *Store) writeCache(ctx context.Context, list []Post) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(list)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, cacheKey, raw, s.cacheTTL).Err(); err != nil {
		s.logger.Warn("posts cache write failed", map[string]interface{}{"error": err.Error()})
	}
}
