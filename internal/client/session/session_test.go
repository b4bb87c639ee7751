package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWatchedPlayerResetsCursor(t *testing.T) {
	s := New("http://localhost:8080")
	s.SetWatchedPlayer("p1")
	s.SetLastRollID(7)
	s.SetLastRollID(3)
	assert.Equal(t, int64(7), s.GetLastRollID())

	s.SetWatchedPlayer("p1")
	assert.Equal(t, int64(7), s.GetLastRollID())

	s.SetWatchedPlayer("p2")
	assert.Zero(t, s.GetLastRollID())
}

func TestLogoutClearsState(t *testing.T) {
	s := New("http://localhost:8080")
	s.SetAuth("u1", "alice", "tok")
	s.SetCurrentCharacter("c1", "Marlowe")
	assert.Equal(t, "tok", s.Client.AuthToken)

	s.SetAuth("", "", "")
	assert.Empty(t, s.Client.AuthToken)
	assert.Empty(t, s.GetCurrentCharacter())
}
