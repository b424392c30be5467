// test/e2e/e2e_test.go
package e2e

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-resty/resty/v2"
	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mobile-forms/internal/common/camunda"
	"mobile-forms/internal/common/config"
	"mobile-forms/internal/common/logger"
	"mobile-forms/internal/common/observability"
	"mobile-forms/internal/httpapi"
	"mobile-forms/internal/posts"
	"mobile-forms/internal/profileform"
	"mobile-forms/internal/sink"
	"mobile-forms/internal/tasks"
	"mobile-forms/pkg/registry"
)

// upstream fakes both the posts API and the profile endpoint the http sink
// forwards to.
type upstream struct {
	mu       sync.Mutex
	profiles []map[string]interface{}
	posts    int
}

func (u *upstream) handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/posts", func(w http.ResponseWriter, _ *http.Request) {
		u.mu.Lock()
		u.posts++
		u.mu.Unlock()
		writeJSON(w, http.StatusOK, []posts.Post{
			{ID: 1, UserID: 1, Title: "sunt aut facere", Body: "quia et suscipit"},
			{ID: 2, UserID: 1, Title: "qui est esse", Body: "est rerum tempore"},
		})
	}).Methods(http.MethodGet)
	r.HandleFunc("/posts", func(w http.ResponseWriter, req *http.Request) {
		var in posts.NewPost
		if err := json.NewDecoder(req.Body).Decode(&in); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		writeJSON(w, http.StatusCreated, posts.Post{ID: 101, UserID: in.UserID, Title: in.Title, Body: in.Body})
	}).Methods(http.MethodPost)
	r.HandleFunc("/comments", func(w http.ResponseWriter, req *http.Request) {
		postID, _ := strconv.Atoi(req.URL.Query().Get("postId"))
		writeJSON(w, http.StatusOK, []posts.Comment{
			{ID: 1, PostID: postID, Name: "id labore", Email: "Eliseo@gardner.biz", Body: "laudantium"},
		})
	}).Methods(http.MethodGet)
	r.HandleFunc("/profiles", func(w http.ResponseWriter, req *http.Request) {
		var in map[string]interface{}
		if err := json.NewDecoder(req.Body).Decode(&in); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		u.mu.Lock()
		u.profiles = append(u.profiles, in)
		u.mu.Unlock()
		writeJSON(w, http.StatusCreated, map[string]string{"id": "remote-1"})
	}).Methods(http.MethodPost)
	return r
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type stack struct {
	api      *resty.Client
	upstream *upstream
	cache    *miniredis.Miniredis
}

func TestMain(m *testing.M) {
	os.Exit(m.Run())
}

func TestFullE2E(t *testing.T) {
	cfg, err := config.LoadFromFile("../../configs/config.yaml")
	require.NoError(t, err)
	require.NotNil(t, cfg)

	t.Log("Starting form service E2E test...")

	// 1. Bring up the fakes and the service
	st := startStack(t, cfg)

	// 2. Form descriptor and stateless helpers
	testFormAndFormatting(t, st)

	// 3. Session fill and submit through the http sink
	testSessionSubmit(t, st)

	// 4. Posts feed backed by the cache
	testPostsFeed(t, st)

	// 5. Local tasks
	testTasks(t, st)

	// 6. Optional broker check
	assertZeebeConnectivity(t, cfg)

	t.Log("Full E2E workflow successful")
}

func startStack(t *testing.T, cfg *config.Config) *stack {
	t.Helper()
	log := logger.NewTestLogger(t)

	up := &upstream{}
	upSrv := httptest.NewServer(up.handler())
	t.Cleanup(upSrv.Close)

	cache := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: cache.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	cfg.Sink.Kind = config.SinkHTTP
	cfg.Sink.HTTP.URL = upSrv.URL + "/profiles"
	cfg.Sink.HTTP.Timeout = 5000
	profileSink, err := sink.Build(cfg, sink.Deps{Logger: log, Observability: observability.NewNoop()})
	require.NoError(t, err)
	assert.Equal(t, "http", profileSink.Name())

	postsAPI := posts.NewClient(upSrv.URL, 5*time.Second)
	store := posts.NewStore(postsAPI, posts.StoreOptions{Cache: rdb, CacheTTL: time.Minute, Logger: log})

	forms, err := registry.LoadOrDefault("../../configs/form-registry.json")
	require.NoError(t, err)

	sessions := httpapi.NewSessionRegistry(time.Minute, log)
	t.Cleanup(sessions.Close)

	api := httpapi.NewServer(httpapi.Options{
		ServiceName: "form-service-e2e",
		Catalog:     profileform.NewCatalog(cfg.Form.Locale),
		Sink:        profileSink,
		Sessions:    sessions,
		Forms:       forms,
		Posts:       store,
		Composer:    posts.NewComposer(postsAPI, store, 1, log),
		Details:     posts.NewDetails(postsAPI, log),
		Tasks:       tasks.NewSeededStore(),
		Logger:      log,
	})
	srv := httptest.NewServer(api.Router())
	t.Cleanup(srv.Close)

	client := resty.New().SetBaseURL(srv.URL).SetTimeout(10 * time.Second)
	resp, err := client.R().Get("/health")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode())
	t.Log("Form service is up")

	return &stack{api: client, upstream: up, cache: cache}
}

func testFormAndFormatting(t *testing.T, st *stack) {
	t.Log("Testing form descriptor and formatting...")

	var form registry.Form
	resp, err := st.api.R().SetResult(&form).Get("/v1/forms/profile")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode())
	assert.Len(t, form.Fields, len(profileform.FieldOrder))

	var formatted struct {
		Display   string `json:"display"`
		Canonical string `json:"canonical"`
	}
	resp, err = st.api.R().
		SetBody(map[string]string{"value": "8 (999) 123-45-67"}).
		SetResult(&formatted).
		Post("/v1/profile/format/phone")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode())
	assert.Equal(t, "+7 (899) 912-34-56", formatted.Display)

	var result struct {
		Valid  bool `json:"valid"`
		Errors []struct {
			Field   string `json:"field"`
			Message string `json:"message"`
		} `json:"errors"`
	}
	resp, err = st.api.R().
		SetBody(map[string]interface{}{"email": "not-an-email", "acceptTerms": false}).
		SetResult(&result).
		Post("/v1/profile/validate")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode())
	assert.False(t, result.Valid)
	require.NotEmpty(t, result.Errors)
	assert.Equal(t, "fullName", result.Errors[0].Field)
}

func testSessionSubmit(t *testing.T, st *stack) {
	t.Log("Testing session submit...")

	var snap struct {
		ID        string            `json:"id"`
		State     string            `json:"state"`
		CanSubmit bool              `json:"canSubmit"`
		Display   map[string]string `json:"display"`
	}
	resp, err := st.api.R().SetResult(&snap).Post("/v1/profile/sessions")
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode())
	require.NotEmpty(t, snap.ID)
	base := "/v1/profile/sessions/" + snap.ID

	fields := []struct {
		name  string
		value interface{}
	}{
		{"fullName", "Иван Иванов"},
		{"email", "ivan@example.com"},
		{"phone", "9991234567"},
		{"passportNumber", "1234 567890"},
		{"password", "secret123"},
		{"confirmPassword", "secret123"},
		{"acceptTerms", true},
	}
	for _, f := range fields {
		resp, err := st.api.R().SetBody(map[string]interface{}{"value": f.value}).Put(base + "/fields/" + f.name)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode(), resp.String())
	}

	resp, err = st.api.R().SetResult(&snap).Get(base)
	require.NoError(t, err)
	require.True(t, snap.CanSubmit)
	assert.Equal(t, "+7 (999) 123-45-67", snap.Display["phone"])

	var submitted struct {
		Session struct {
			State string `json:"state"`
		} `json:"session"`
		Notice struct {
			Body string `json:"body"`
		} `json:"notice"`
	}
	resp, err = st.api.R().SetResult(&submitted).Post(base + "/submit")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode(), resp.String())
	assert.Equal(t, "submitted", submitted.Session.State)
	assert.Equal(t, "Форма валидна, данные сохранены", submitted.Notice.Body)

	st.upstream.mu.Lock()
	require.Len(t, st.upstream.profiles, 1)
	got := st.upstream.profiles[0]
	st.upstream.mu.Unlock()
	assert.Equal(t, "+79991234567", got["phone"])
	assert.Equal(t, "1234567890", got["passportNumber"])
	assert.NotContains(t, got, "confirmPassword")

	resp, err = st.api.R().Post(base + "/submit")
	require.NoError(t, err)
	assert.Equal(t, http.StatusGone, resp.StatusCode())
}

func testPostsFeed(t *testing.T, st *stack) {
	t.Log("Testing posts feed...")

	var state posts.State
	resp, err := st.api.R().SetResult(&state).Get("/v1/posts")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode(), resp.String())
	assert.Len(t, state.Posts, 2)
	assert.True(t, st.cache.Exists("posts:list"))

	var created posts.Post
	resp, err = st.api.R().
		SetBody(map[string]string{"title": "Новый пост", "body": "Текст"}).
		SetResult(&created).
		Post("/v1/posts")
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode(), resp.String())
	assert.Equal(t, 101, created.ID)

	resp, err = st.api.R().SetResult(&state).Get("/v1/posts")
	require.NoError(t, err)
	require.Len(t, state.Posts, 3)
	assert.Equal(t, "Новый пост", state.Posts[0].Title)

	var comments []posts.Comment
	resp, err = st.api.R().SetResult(&comments).Get("/v1/posts/1/comments")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode())
	require.Len(t, comments, 1)
	assert.Equal(t, 1, comments[0].PostID)
}

func testTasks(t *testing.T, st *stack) {
	t.Log("Testing tasks...")

	var list []tasks.Task
	resp, err := st.api.R().SetResult(&list).Get("/v1/tasks")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode())
	seeded := len(list)

	var task tasks.Task
	resp, err = st.api.R().
		SetBody(map[string]string{"title": "Позвонить клиенту"}).
		SetResult(&task).
		Post("/v1/tasks")
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode(), resp.String())

	resp, err = st.api.R().SetResult(&list).Get("/v1/tasks")
	require.NoError(t, err)
	assert.Len(t, list, seeded+1)

	resp, err = st.api.R().Get("/v1/tasks/" + task.ID)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode())
}

// assertZeebeConnectivity only runs against a live broker.
func assertZeebeConnectivity(t *testing.T, cfg *config.Config) {
	addr := os.Getenv("E2E_ZEEBE_ADDRESS")
	if addr == "" {
		t.Log("E2E_ZEEBE_ADDRESS not set, skipping broker check")
		return
	}

	client, err := camunda.NewClientWithConfig(&camunda.ClientConfig{
		GatewayAddress:         addr,
		UsePlaintextConnection: true,
		ConnectionTimeout:      10 * time.Second,
		RequestTimeout:         config.GetDuration(cfg.Camunda.RequestTimeout),
	})
	require.NoError(t, err, "Zeebe client creation failed")
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	assert.NoError(t, client.HealthCheck(ctx), "Zeebe topology request failed")
	t.Log("Zeebe connected")
}
