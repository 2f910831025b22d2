// Package policy holds the ownership rules gating every board and task
// operation. All checks are pure functions over the actor id and the
// resolved resource; callers are expected to answer a denied check with the
// same generic not-found response they use for a missing resource.
package policy

import "taskboard/internal/models"

// CanListBoards reports whether the actor may list or create boards under
// the given path user. Only the user themselves may, even for their own
// boards reached through someone else's path.
func CanListBoards(actorID, pathUserID int) bool {
	return actorID == pathUserID
}

// CanAccessBoard covers view, update and delete on a board: the actor must
// be the board's owner.
func CanAccessBoard(actorID int, board models.Board) bool {
	return actorID == board.UserID
}

// CanListTasks covers listing and creating tasks on a board: the actor must
// be the owner of the board named in the path.
func CanListTasks(actorID int, board models.Board) bool {
	return actorID == board.UserID
}

// CanAccessTask covers view, update and delete on a task. Ownership is
// transitive through the board, so the check is against the board's owner.
func CanAccessTask(actorID int, boardOwnerID int) bool {
	return actorID == boardOwnerID
}
