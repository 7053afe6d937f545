package state

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func exercise(t *testing.T, m StateManager) {
	t.Helper()

	assert.Equal(t, None, m.GetUserState(7))
	m.SetUserState(7, WaitingForEmail)
	assert.Equal(t, WaitingForEmail, m.GetUserState(7))
	assert.Equal(t, None, m.GetUserState(8))

	_, ok := m.GetTempData(7, KeyEmail)
	assert.False(t, ok)

	m.SetTempData(7, KeyEmail, "jane@example.com")
	m.SetTempData(7, KeyTranscript, "sore throat")
	v, ok := m.GetTempData(7, KeyEmail)
	assert.True(t, ok)
	assert.Equal(t, "jane@example.com", v)

	m.DeleteTempData(7, KeyEmail)
	_, ok = m.GetTempData(7, KeyEmail)
	assert.False(t, ok)
	_, ok = m.GetTempData(7, KeyTranscript)
	assert.True(t, ok)

	m.ClearTempData(7)
	_, ok = m.GetTempData(7, KeyTranscript)
	assert.False(t, ok)
}

func TestManager(t *testing.T) {
	exercise(t, NewManager())
}

func TestRedisManager(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	m := NewRedisManager(client)
	exercise(t, m)

	m.SetUserState(9, WaitingForName)
	assert.Greater(t, mr.TTL("user:9:state"), time.Duration(0))

	mr.FastForward(25 * time.Hour)
	assert.Equal(t, None, m.GetUserState(9))
}
