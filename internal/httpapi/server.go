// Package httpapi exposes the profile form, the posts feed and the task list
// over JSON/HTTP.
package httpapi

import (
	"net/http"

	"mobile-forms/internal/common/logger"
	"mobile-forms/internal/common/validation"
	"mobile-forms/internal/posts"
	"mobile-forms/internal/profileform"
	"mobile-forms/internal/tasks"
	"mobile-forms/pkg/registry"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Options struct {
	ServiceName string
	Catalog     *profileform.Catalog
	Sink        profileform.Sink
	Sessions    *SessionRegistry
	Forms       *registry.FormRegistry
	Posts       *posts.Store
	Composer    *posts.Composer
	Details     *posts.Details
	Tasks       *tasks.Store
	Logger      logger.Logger
}

type Server struct {
	name      string
	catalog   *profileform.Catalog
	validator *profileform.Validator
	sink      profileform.Sink
	sessions  *SessionRegistry
	forms     *registry.FormRegistry
	posts     *posts.Store
	composer  *posts.Composer
	details   *posts.Details
	tasks     *tasks.Store
	logger    logger.Logger
}

func NewServer(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = logger.NewNoOpLogger()
	}
	if opts.Catalog == nil {
		opts.Catalog = profileform.DefaultCatalog()
	}
	if opts.Sessions == nil {
		opts.Sessions = NewSessionRegistry(0, opts.Logger)
	}
	if opts.Forms == nil {
		opts.Forms = registry.Default()
	}
	if opts.Tasks == nil {
		opts.Tasks = tasks.NewSeededStore()
	}
	if opts.ServiceName == "" {
		opts.ServiceName = "form-service"
	}
	return &Server{
		name:      opts.ServiceName,
		catalog:   opts.Catalog,
		validator: profileform.NewValidator(opts.Catalog),
		sink:      opts.Sink,
		sessions:  opts.Sessions,
		forms:     opts.Forms,
		posts:     opts.Posts,
		composer:  opts.Composer,
		details:   opts.Details,
		tasks:     opts.Tasks,
		logger:    opts.Logger,
	}
}

// Router builds the route table. Posts routes are registered only for the
// posts components that are configured.
func (s *Server) Router() http.Handler {
	r := mux.NewRouter()
	r.Use(requestID, recoverer(s.logger), requestLogger(s.logger))

	r.HandleFunc("/health", s.health).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	v1 := r.PathPrefix("/v1").Subrouter()
	v1.HandleFunc("/forms/{id}", s.getForm).Methods(http.MethodGet)

	v1.HandleFunc("/profile/format/{field}", s.formatField).Methods(http.MethodPost)
	v1.HandleFunc("/profile/validate", s.validateProfile).Methods(http.MethodPost)

	v1.HandleFunc("/profile/sessions", s.createSession).Methods(http.MethodPost)
	v1.HandleFunc("/profile/sessions/{id}", s.getSession).Methods(http.MethodGet)
	v1.HandleFunc("/profile/sessions/{id}", s.deleteSession).Methods(http.MethodDelete)
	v1.HandleFunc("/profile/sessions/{id}/fields/{field}", s.setField).Methods(http.MethodPut)
	v1.HandleFunc("/profile/sessions/{id}/submit", s.submitSession).Methods(http.MethodPost)

	if s.posts != nil {
		v1.HandleFunc("/posts", s.listPosts).Methods(http.MethodGet)
		if s.composer != nil {
			v1.HandleFunc("/posts", s.createPost).Methods(http.MethodPost)
		}
	}
	if s.details != nil {
		v1.HandleFunc("/posts/{id:[0-9]+}/comments", s.listComments).Methods(http.MethodGet)
	}

	v1.HandleFunc("/tasks", s.listTasks).Methods(http.MethodGet)
	v1.HandleFunc("/tasks", s.createTask).Methods(http.MethodPost)
	v1.HandleFunc("/tasks/{id}", s.getTask).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusNotFound, errorEnvelope{Error: notFoundBody(req.URL.Path)})
	})
	return r
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":   "healthy",
		"service":  s.name,
		"sessions": s.sessions.Len(),
	})
}

// catalogFor picks the message catalog from Accept-Language.
func (s *Server) catalogFor(r *http.Request) *profileform.Catalog {
	return profileform.CatalogForAcceptLanguage(r.Header.Get("Accept-Language"), s.catalog)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error, fields ...validation.ValidationError) {
	status, body := classify(err, s.catalogFor(r))
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", map[string]interface{}{
			"path":  r.URL.Path,
			"error": err.Error(),
		})
	}
	writeJSON(w, status, errorEnvelope{Error: body, Fields: fields})
}
