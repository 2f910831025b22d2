package repository

import (
	"database/sql"
	"fmt"
	"log"

	"taskboard/internal/models"

	"golang.org/x/crypto/bcrypt"
)

// SeedDemoData inserts a demo account with one board and ten tasks spread
// over the status/priority ranges. Meant for a fresh local database.
func SeedDemoData(db *sql.DB) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Error hashing password: %v", err)
	}

	var userID int
	err = db.QueryRow(
		"INSERT INTO users (username, email, password) VALUES ($1, $2, $3) RETURNING id",
		"testuser", "test@example.com", string(hashedPassword)).Scan(&userID)
	if err != nil {
		log.Fatalf("Error inserting demo user: %v", err)
	}

	board, err := InsertBoard(db, userID, "Sprint 1")
	if err != nil {
		log.Fatalf("Error inserting demo board: %v", err)
	}

	for i := 0; i < 10; i++ {
		title := fmt.Sprintf("Demo task %d", i+1)
		priority := models.TaskPriority(i % 5)
		task, err := InsertTask(db, board.ID, title, priority)
		if err != nil {
			log.Fatalf("Error inserting demo task: %v", err)
		}
		status := models.TaskStatus(i % 8)
		if status != models.StatusTodo {
			if _, err := UpdateTask(db, task.ID, nil, &status, nil); err != nil {
				log.Fatalf("Error setting demo task status: %v", err)
			}
		}
	}

	fmt.Println("Demo user 'testuser' with board and tasks is created.")
}
