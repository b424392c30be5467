// Package tasks is the in-memory task list.
package tasks

import (
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrTaskNotFound      = errors.New("TASK_NOT_FOUND")
	ErrTaskTitleRequired = errors.New("TASK_TITLE_REQUIRED")
)

type Task struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}

type Store struct {
	mu    sync.RWMutex
	tasks map[string]Task
	now   func() time.Time
}

func NewStore() *Store {
	return &Store{tasks: make(map[string]Task), now: time.Now}
}

// NewSeededStore returns a store holding the sample tasks.
func NewSeededStore() *Store {
	s := NewStore()
	for _, t := range []struct{ title, description string }{
		{"Проверить отчёты", "Сверить квартальные отчёты с бухгалтерией"},
		{"Обновить зависимости", "Поднять версии библиотек и прогнать тесты"},
		{"Созвон с командой", "Обсудить план на следующую неделю"},
	} {
		_, _ = s.Create(t.title, t.description)
	}
	return s
}

// List returns tasks oldest first.
func (s *Store) List() []Task {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		out = append(out, t)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func (s *Store) Get(id string) (Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tasks[id]
	if !ok {
		return Task{}, ErrTaskNotFound
	}
	return t, nil
}

func (s *Store) Create(title, description string) (Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return Task{}, ErrTaskTitleRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t := Task{
		ID:          uuid.NewString(),
		Title:       title,
		Description: strings.TrimSpace(description),
		CreatedAt:   s.now().UTC(),
	}
	s.tasks[t.ID] = t
	return t, nil
}
