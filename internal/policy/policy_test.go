package policy

import (
	"testing"

	"taskboard/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestCanAccessBoard(t *testing.T) {
	board := models.Board{ID: 1, UserID: 10}
	assert.True(t, CanAccessBoard(10, board))
	assert.False(t, CanAccessBoard(11, board))
}

func TestCanListBoards(t *testing.T) {
	assert.True(t, CanListBoards(10, 10))
	// Even an otherwise valid account cannot list under another user's path
	assert.False(t, CanListBoards(10, 11))
}

func TestCanListTasks(t *testing.T) {
	board := models.Board{ID: 1, UserID: 10}
	assert.True(t, CanListTasks(10, board))
	assert.False(t, CanListTasks(11, board))
}

func TestCanAccessTaskTransitiveOwnership(t *testing.T) {
	// The task's own ids are irrelevant; only the board's owner counts
	assert.True(t, CanAccessTask(10, 10))
	assert.False(t, CanAccessTask(11, 10))
}
