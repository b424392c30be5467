package httpapi

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
)

type newPostRequest struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type newTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// listPosts serves the cached list, loading it on first use or when
// refresh=true. A failed reload still answers 200 while earlier posts exist.
func (s *Server) listPosts(w http.ResponseWriter, r *http.Request) {
	state := s.posts.Snapshot()
	if len(state.Posts) == 0 || r.URL.Query().Get("refresh") == "true" {
		if err := s.posts.Fetch(r.Context()); err != nil {
			state = s.posts.Snapshot()
			if len(state.Posts) == 0 {
				s.writeError(w, r, err)
				return
			}
		}
		state = s.posts.Snapshot()
	}
	writeJSON(w, http.StatusOK, state)
}

func (s *Server) createPost(w http.ResponseWriter, r *http.Request) {
	var req newPostRequest
	if err := decodeBody(w, r, newPostSchema, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	post, err := s.composer.Create(r.Context(), req.Title, req.Body)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, post)
}

func (s *Server) listComments(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, r, fmt.Errorf("%w: post id", ErrBadPathParam))
		return
	}

	comments, err := s.details.LoadComments(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, comments)
}

func (s *Server) listTasks(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.tasks.List())
}

func (s *Server) getTask(w http.ResponseWriter, r *http.Request) {
	task, err := s.tasks.Get(mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (s *Server) createTask(w http.ResponseWriter, r *http.Request) {
	var req newTaskRequest
	if err := decodeBody(w, r, newTaskSchema, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	task, err := s.tasks.Create(req.Title, req.Description)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, task)
}
