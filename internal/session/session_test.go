package session

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"task-tracker/internal/model"
)

func TestSession_Lifecycle(t *testing.T) {
	s := New()

	assert.False(t, s.IsLoggedIn())
	_, err := s.UserID()
	assert.ErrorIs(t, err, model.ErrNoActiveSession)
	_, err = s.Username()
	assert.ErrorIs(t, err, model.ErrNoActiveSession)

	s.Login(model.User{ID: "u1", Username: "alice"})
	require.True(t, s.IsLoggedIn())
	id, err := s.UserID()
	require.NoError(t, err)
	assert.Equal(t, "u1", id)
	name, err := s.Username()
	require.NoError(t, err)
	assert.Equal(t, "alice", name)

	s.Logout()
	assert.False(t, s.IsLoggedIn())
	s.Logout()
	assert.False(t, s.IsLoggedIn())
}

func TestSession_CurrentUserIsACopy(t *testing.T) {
	s := New()
	s.Login(model.User{ID: "u1", Username: "alice"})

	u, err := s.CurrentUser()
	require.NoError(t, err)
	u.Username = "mallory"

	name, _ := s.Username()
	assert.Equal(t, "alice", name)
}

func TestSession_ConcurrentAccess(t *testing.T) {
	s := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			s.Login(model.User{ID: "u", Username: "someone"})
			s.Logout()
		}()
		go func() {
			defer wg.Done()
			_, _ = s.Username()
		}()
	}
	wg.Wait()
	assert.False(t, s.IsLoggedIn())
}
