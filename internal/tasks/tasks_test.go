package tasks

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_CreateAndGet(t *testing.T) {
	s := NewStore()

	created, err := s.Create("  Проверить отчёты ", " за март ")
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Проверить отчёты", created.Title)
	assert.Equal(t, "за март", created.Description)

	got, err := s.Get(created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)

	_, err = s.Get("missing")
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestStore_TitleRequired(t *testing.T) {
	s := NewStore()
	for _, title := range []string{"", "   ", "\n\t"} {
		_, err := s.Create(title, "description")
		assert.ErrorIs(t, err, ErrTaskTitleRequired)
	}
	assert.Empty(t, s.List())
}

func TestStore_ListOldestFirst(t *testing.T) {
	s := NewStore()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	s.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}

	for _, title := range []string{"first", "second", "third"} {
		_, err := s.Create(title, "")
		require.NoError(t, err)
	}

	list := s.List()
	require.Len(t, list, 3)
	assert.Equal(t, "first", list[0].Title)
	assert.Equal(t, "third", list[2].Title)
}

func TestNewSeededStore(t *testing.T) {
	s := NewSeededStore()
	list := s.List()
	require.Len(t, list, 3)
	for _, task := range list {
		assert.NotEmpty(t, task.Title)
	}
}
