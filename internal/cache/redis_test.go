package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBoardKeysAreGenerationScoped(t *testing.T) {
	b := NewBoards(nil, 0)
	assert.Equal(t, "leaderboard:0:individual:overall", b.key(0, "individual:overall"))
	assert.Equal(t, "leaderboard:7:unit:members:all:2", b.key(7, "unit:members:all:2"))
	assert.NotEqual(t, b.key(1, "individual:overall"), b.key(2, "individual:overall"))
}
