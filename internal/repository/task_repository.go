package repository

import (
	"database/sql"

	"taskboard/internal/models"
)

const taskColumns = "id, board_id, title, status, priority, created_at, updated_at"

func scanTask(row *sql.Row) (models.Task, error) {
	var task models.Task
	err := row.Scan(&task.ID, &task.BoardID, &task.Title, &task.Status, &task.Priority, &task.CreatedAt, &task.UpdatedAt)
	return task, err
}

// FindTasksByBoard returns the board's live tasks ordered by status then
// priority, both ascending. Priority 0 is the most urgent, so this puts the
// most urgent tasks first within each status.
func FindTasksByBoard(db *sql.DB, boardID int) ([]models.Task, error) {
	rows, err := db.Query(
		"SELECT "+taskColumns+" FROM tasks WHERE board_id = $1 AND deleted_at IS NULL ORDER BY status, priority",
		boardID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		var task models.Task
		if err := rows.Scan(&task.ID, &task.BoardID, &task.Title, &task.Status, &task.Priority, &task.CreatedAt, &task.UpdatedAt); err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

// FindRecentTasks returns the board's newest live tasks, for the board page.
func FindRecentTasks(db *sql.DB, boardID int, limit int) ([]models.Task, error) {
	rows, err := db.Query(
		"SELECT "+taskColumns+" FROM tasks WHERE board_id = $1 AND deleted_at IS NULL ORDER BY created_at DESC, id DESC LIMIT $2",
		boardID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		var task models.Task
		if err := rows.Scan(&task.ID, &task.BoardID, &task.Title, &task.Status, &task.Priority, &task.CreatedAt, &task.UpdatedAt); err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

// FindTaskIDsByBoard returns the ids of every task row on the board,
// soft-deleted ones included. Cache purges on cascade deletes need the
// full set, not just the live tasks.
func FindTaskIDsByBoard(db *sql.DB, boardID int) ([]int, error) {
	rows, err := db.Query("SELECT id FROM tasks WHERE board_id = $1", boardID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []int{}
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// FindTaskIDsByUser returns the ids of every task row on any of the user's
// boards, soft-deleted ones included.
func FindTaskIDsByUser(db *sql.DB, userID int) ([]int, error) {
	rows, err := db.Query(
		"SELECT t.id FROM tasks t JOIN boards b ON b.id = t.board_id WHERE b.user_id = $1",
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []int{}
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// GetTaskWithOwner fetches a live task plus the owning user of its board,
// which is what every task-level ownership check needs.
func GetTaskWithOwner(db *sql.DB, taskID int) (models.Task, int, error) {
	var task models.Task
	var ownerID int
	err := db.QueryRow(
		`SELECT t.id, t.board_id, t.title, t.status, t.priority, t.created_at, t.updated_at, b.user_id
         FROM tasks t
         JOIN boards b ON b.id = t.board_id
         WHERE t.id = $1 AND t.deleted_at IS NULL`,
		taskID).Scan(&task.ID, &task.BoardID, &task.Title, &task.Status, &task.Priority, &task.CreatedAt, &task.UpdatedAt, &ownerID)
	return task, ownerID, err
}

// InsertTask creates a task on boardID. The board reference comes from the
// route path, never from the request payload, and is immutable afterwards.
func InsertTask(db *sql.DB, boardID int, title string, priority models.TaskPriority) (models.Task, error) {
	return scanTask(db.QueryRow(
		"INSERT INTO tasks (board_id, title, priority) VALUES ($1, $2, $3) RETURNING "+taskColumns,
		boardID, title, priority))
}

// UpdateTask applies a partial update: nil fields keep their current value,
// and an empty title counts as not supplied. board_id is deliberately
// absent from the SET list.
func UpdateTask(db *sql.DB, taskID int, title *string, status *models.TaskStatus, priority *models.TaskPriority) (models.Task, error) {
	return scanTask(db.QueryRow(
		`UPDATE tasks
         SET title = COALESCE(NULLIF($1, ''), title),
             status = COALESCE($2, status),
             priority = COALESCE($3, priority),
             updated_at = CURRENT_TIMESTAMP
         WHERE id = $4 AND deleted_at IS NULL
         RETURNING `+taskColumns,
		title, status, priority, taskID))
}

// SoftDeleteTask stamps deleted_at instead of removing the row. The row
// stays in storage but disappears from every normal read.
func SoftDeleteTask(db *sql.DB, taskID int) error {
	_, err := db.Exec(
		"UPDATE tasks SET deleted_at = CURRENT_TIMESTAMP WHERE id = $1 AND deleted_at IS NULL",
		taskID)
	return err
}
