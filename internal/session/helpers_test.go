package session

import (
	"testing"

	"jeux/internal/player"
)

func newTestPlayer(t *testing.T, name string) *player.Player {
	t.Helper()
	return player.New(name)
}
