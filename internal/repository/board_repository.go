package repository

import (
	"database/sql"

	"taskboard/internal/models"
)

// FindBoardsByUser returns the user's boards, newest first.
func FindBoardsByUser(db *sql.DB, userID int) ([]models.Board, error) {
	rows, err := db.Query(
		"SELECT id, user_id, name, created_at, updated_at FROM boards WHERE user_id = $1 ORDER BY created_at DESC, id DESC",
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	boards := []models.Board{}
	for rows.Next() {
		var board models.Board
		if err := rows.Scan(&board.ID, &board.UserID, &board.Name, &board.CreatedAt, &board.UpdatedAt); err != nil {
			return nil, err
		}
		boards = append(boards, board)
	}
	return boards, rows.Err()
}

// FindBoardIDsByUser returns the ids of all the user's boards, for cache
// purges when the user row is cascade-deleted.
func FindBoardIDsByUser(db *sql.DB, userID int) ([]int, error) {
	rows, err := db.Query("SELECT id FROM boards WHERE user_id = $1", userID)
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

func GetBoard(db *sql.DB, boardID int) (models.Board, error) {
	var board models.Board
	err := db.QueryRow(
		"SELECT id, user_id, name, created_at, updated_at FROM boards WHERE id = $1",
		boardID).Scan(&board.ID, &board.UserID, &board.Name, &board.CreatedAt, &board.UpdatedAt)
	return board, err
}

// InsertBoard creates a board owned by userID. The owner is fixed here and
// never changed by any later statement.
func InsertBoard(db *sql.DB, userID int, name string) (models.Board, error) {
	var board models.Board
	err := db.QueryRow(
		"INSERT INTO boards (user_id, name) VALUES ($1, $2) RETURNING id, user_id, name, created_at, updated_at",
		userID, name).Scan(&board.ID, &board.UserID, &board.Name, &board.CreatedAt, &board.UpdatedAt)
	return board, err
}

// UpdateBoardName updates the name when one is supplied; a nil or empty
// name keeps the current value.
func UpdateBoardName(db *sql.DB, boardID int, name *string) (models.Board, error) {
	var board models.Board
	err := db.QueryRow(
		`UPDATE boards
         SET name = COALESCE(NULLIF($1, ''), name),
             updated_at = CURRENT_TIMESTAMP
         WHERE id = $2
         RETURNING id, user_id, name, created_at, updated_at`,
		name, boardID).Scan(&board.ID, &board.UserID, &board.Name, &board.CreatedAt, &board.UpdatedAt)
	return board, err
}

// DeleteBoard removes the board row. The tasks foreign key cascades, so all
// tasks on the board are hard-deleted with it, soft-deleted ones included.
func DeleteBoard(db *sql.DB, boardID int) error {
	_, err := db.Exec("DELETE FROM boards WHERE id = $1", boardID)
	return err
}
