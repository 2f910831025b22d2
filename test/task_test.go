package test

import (
	"fmt"
	"net/http"
	"strings"
	"testing"

	"taskboard/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateTaskDefaults(t *testing.T) {
	app := CreateTestApp()
	token, userID := registerAndLogin(t, app, "taskdefaults")
	boardID := createBoard(t, app, token, userID, "Defaults Board")

	task := createTask(t, app, token, boardID, map[string]interface{}{"title": "Just a title"})
	assert.Equal(t, float64(0), task["status"], "status should default to Todo")
	assert.Equal(t, float64(2), task["priority"], "priority should default to Medium")
	assert.Equal(t, float64(boardID), task["board_id"])
}

func TestTaskTitleLengthBounds(t *testing.T) {
	app := CreateTestApp()
	token, userID := registerAndLogin(t, app, "titlebounds")
	boardID := createBoard(t, app, token, userID, "Bounds Board")

	cases := []struct {
		length int
		status int
	}{
		{2, http.StatusBadRequest},
		{3, http.StatusCreated},
		{255, http.StatusCreated},
		{256, http.StatusBadRequest},
	}
	for _, tc := range cases {
		title := strings.Repeat("a", tc.length)
		resp := doRequest(t, app, "POST", fmt.Sprintf("/api/v1/boards/%d/tasks", boardID), token, map[string]interface{}{
			"title": title,
		})
		assert.Equal(t, tc.status, resp.StatusCode, "title of length %d", tc.length)
		resp.Body.Close()
	}
}

func TestTaskEnumBounds(t *testing.T) {
	app := CreateTestApp()
	token, userID := registerAndLogin(t, app, "enumbounds")
	boardID := createBoard(t, app, token, userID, "Enum Board")
	task := createTask(t, app, token, boardID, map[string]interface{}{"title": "Enum task"})
	taskID := int(task["id"].(float64))

	// Priority outside 0..4 is rejected at creation
	resp := doRequest(t, app, "POST", fmt.Sprintf("/api/v1/boards/%d/tasks", boardID), token, map[string]interface{}{
		"title":    "Bad priority",
		"priority": 5,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	cases := []struct {
		body   map[string]interface{}
		status int
	}{
		{map[string]interface{}{"status": 7}, http.StatusOK},
		{map[string]interface{}{"status": 8}, http.StatusBadRequest},
		{map[string]interface{}{"status": -1}, http.StatusBadRequest},
		{map[string]interface{}{"priority": 4}, http.StatusOK},
		{map[string]interface{}{"priority": 5}, http.StatusBadRequest},
		{map[string]interface{}{"priority": -1}, http.StatusBadRequest},
	}
	for _, tc := range cases {
		resp := doRequest(t, app, "PUT", fmt.Sprintf("/api/v1/tasks/%d", taskID), token, tc.body)
		assert.Equal(t, tc.status, resp.StatusCode, "update %v", tc.body)
		resp.Body.Close()
	}
}

// Updating only one field must leave every other field untouched.
func TestPartialUpdateKeepsOtherFields(t *testing.T) {
	app := CreateTestApp()
	token, userID := registerAndLogin(t, app, "partial")
	boardID := createBoard(t, app, token, userID, "Partial Board")

	task := createTask(t, app, token, boardID, map[string]interface{}{
		"title":    "Original title",
		"priority": 1,
	})
	taskID := int(task["id"].(float64))

	resp := doRequest(t, app, "PUT", fmt.Sprintf("/api/v1/tasks/%d", taskID), token, map[string]interface{}{
		"status": 3,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	updated := parseBody(t, resp)["data"].(map[string]interface{})["task"].(map[string]interface{})
	assert.Equal(t, float64(3), updated["status"])
	assert.Equal(t, float64(1), updated["priority"], "priority must survive a status-only update")
	assert.Equal(t, "Original title", updated["title"])

	// PATCH is an alias for PUT
	resp = doRequest(t, app, "PATCH", fmt.Sprintf("/api/v1/tasks/%d", taskID), token, map[string]interface{}{
		"title": "Renamed title",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	updated = parseBody(t, resp)["data"].(map[string]interface{})["task"].(map[string]interface{})
	assert.Equal(t, "Renamed title", updated["title"])
	assert.Equal(t, float64(3), updated["status"], "status must survive a title-only update")
	assert.Equal(t, float64(1), updated["priority"])
}

// A board id in an update payload is ignored: tasks can never be
// re-parented.
func TestTaskBoardImmutable(t *testing.T) {
	app := CreateTestApp()
	token, userID := registerAndLogin(t, app, "reparent")
	boardID := createBoard(t, app, token, userID, "Home Board")
	otherBoardID := createBoard(t, app, token, userID, "Other Board")

	task := createTask(t, app, token, boardID, map[string]interface{}{"title": "Stay home"})
	taskID := int(task["id"].(float64))

	resp := doRequest(t, app, "PUT", fmt.Sprintf("/api/v1/tasks/%d", taskID), token, map[string]interface{}{
		"title":    "Stay home still",
		"board_id": otherBoardID,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	updated := parseBody(t, resp)["data"].(map[string]interface{})["task"].(map[string]interface{})
	assert.Equal(t, float64(boardID), updated["board_id"])

	var storedBoardID int
	require.NoError(t, config.DB.QueryRow(
		"SELECT board_id FROM tasks WHERE id = $1", taskID).Scan(&storedBoardID))
	assert.Equal(t, boardID, storedBoardID)
}

// Listing is ordered by status then priority, both ascending. Priority 0 is
// the most urgent, so the lowest priority value comes first in each status.
func TestTaskListOrdering(t *testing.T) {
	app := CreateTestApp()
	token, userID := registerAndLogin(t, app, "ordering")
	boardID := createBoard(t, app, token, userID, "Ordered Board")

	lowUrgency := createTask(t, app, token, boardID, map[string]interface{}{"title": "todo low", "priority": 3})
	highUrgency := createTask(t, app, token, boardID, map[string]interface{}{"title": "todo highest", "priority": 0})
	done := createTask(t, app, token, boardID, map[string]interface{}{"title": "done task", "priority": 0})
	resp := doRequest(t, app, "PUT", fmt.Sprintf("/api/v1/tasks/%d", int(done["id"].(float64))), token, map[string]interface{}{
		"status": 3,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = doRequest(t, app, "GET", fmt.Sprintf("/api/v1/boards/%d/tasks", boardID), token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	result := parseBody(t, resp)
	assert.Equal(t, "task/index", result["page"])
	tasks := result["data"].(map[string]interface{})["tasks"].([]interface{})
	require.Len(t, tasks, 3)
	assert.Equal(t, float64(highUrgency["id"].(float64)), tasks[0].(map[string]interface{})["id"])
	assert.Equal(t, float64(lowUrgency["id"].(float64)), tasks[1].(map[string]interface{})["id"])
	assert.Equal(t, float64(done["id"].(float64)), tasks[2].(map[string]interface{})["id"])
}

func TestNewTaskPage(t *testing.T) {
	app := CreateTestApp()
	token, userID := registerAndLogin(t, app, "taskform")
	boardID := createBoard(t, app, token, userID, "Form Board")

	resp := doRequest(t, app, "GET", fmt.Sprintf("/api/v1/boards/%d/tasks/create", boardID), token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	result := parseBody(t, resp)
	assert.Equal(t, "task/create", result["page"])
	data := result["data"].(map[string]interface{})
	assert.Equal(t, float64(boardID), data["board"].(map[string]interface{})["id"])
	priorities := data["priorities"].([]interface{})
	require.Len(t, priorities, 5)
	assert.Equal(t, "Highest", priorities[0].(map[string]interface{})["label"])

	// Foreign boards answer like missing ones, form pages included
	tokenB, _ := registerAndLogin(t, app, "taskformintruder")
	resp = doRequest(t, app, "GET", fmt.Sprintf("/api/v1/boards/%d/tasks/create", boardID), tokenB, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestEditTaskPage(t *testing.T) {
	app := CreateTestApp()
	token, userID := registerAndLogin(t, app, "edittask")
	boardID := createBoard(t, app, token, userID, "Edit Board")
	task := createTask(t, app, token, boardID, map[string]interface{}{"title": "Editable"})

	resp := doRequest(t, app, "GET", fmt.Sprintf("/api/v1/tasks/%d/edit", int(task["id"].(float64))), token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	result := parseBody(t, resp)
	assert.Equal(t, "task/edit", result["page"])
	data := result["data"].(map[string]interface{})
	assert.Len(t, data["statuses"].([]interface{}), 8)
	assert.Len(t, data["priorities"].([]interface{}), 5)
	first := data["priorities"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, float64(0), first["value"])
	assert.Equal(t, "Highest", first["label"])
}

// Another user's task answers exactly like a task that does not exist.
func TestTaskOwnershipDenied(t *testing.T) {
	app := CreateTestApp()
	tokenA, userA := registerAndLogin(t, app, "taskowner")
	tokenB, _ := registerAndLogin(t, app, "taskintruder")

	boardID := createBoard(t, app, tokenA, userA, "Private Tasks")
	task := createTask(t, app, tokenA, boardID, map[string]interface{}{"title": "Hands off"})
	taskID := int(task["id"].(float64))

	foreignResp := doRequest(t, app, "GET", fmt.Sprintf("/api/v1/tasks/%d/edit", taskID), tokenB, nil)
	require.Equal(t, http.StatusNotFound, foreignResp.StatusCode)
	foreignBody := parseBody(t, foreignResp)

	missingResp := doRequest(t, app, "GET", "/api/v1/tasks/999999/edit", tokenB, nil)
	require.Equal(t, http.StatusNotFound, missingResp.StatusCode)
	missingBody := parseBody(t, missingResp)

	assert.Equal(t, missingBody["message"], foreignBody["message"])

	resp := doRequest(t, app, "PUT", fmt.Sprintf("/api/v1/tasks/%d", taskID), tokenB, map[string]interface{}{"status": 3})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	resp = doRequest(t, app, "DELETE", fmt.Sprintf("/api/v1/tasks/%d", taskID), tokenB, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	// Listing and creating on a foreign board is denied the same way
	resp = doRequest(t, app, "GET", fmt.Sprintf("/api/v1/boards/%d/tasks", boardID), tokenB, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	resp = doRequest(t, app, "POST", fmt.Sprintf("/api/v1/boards/%d/tasks", boardID), tokenB, map[string]interface{}{"title": "Sneaky task"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

// The full walkthrough: board, task with priority High, status flip to
// Done, then soft delete with the row surviving in storage.
func TestSprintScenario(t *testing.T) {
	app := CreateTestApp()
	token, userID := registerAndLogin(t, app, "sprint")

	boardID := createBoard(t, app, token, userID, "Sprint 1")

	task := createTask(t, app, token, boardID, map[string]interface{}{
		"title":    "Write spec",
		"priority": 1,
	})
	taskID := int(task["id"].(float64))
	assert.Equal(t, float64(0), task["status"], "new task starts at Todo")
	assert.Equal(t, float64(1), task["priority"])

	resp := doRequest(t, app, "PUT", fmt.Sprintf("/api/v1/tasks/%d", taskID), token, map[string]interface{}{
		"status": 3,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	updated := parseBody(t, resp)["data"].(map[string]interface{})["task"].(map[string]interface{})
	assert.Equal(t, float64(3), updated["status"])
	assert.Equal(t, float64(1), updated["priority"], "priority unchanged by the status update")

	resp = doRequest(t, app, "DELETE", fmt.Sprintf("/api/v1/tasks/%d", taskID), token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = doRequest(t, app, "GET", fmt.Sprintf("/api/v1/boards/%d/tasks", boardID), token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	result := parseBody(t, resp)
	tasks := result["data"].(map[string]interface{})["tasks"].([]interface{})
	assert.Empty(t, tasks, "soft-deleted task must vanish from the listing")

	// The row is still in storage with a deletion timestamp
	var deleted bool
	require.NoError(t, config.DB.QueryRow(
		"SELECT deleted_at IS NOT NULL FROM tasks WHERE id = $1", taskID).Scan(&deleted))
	assert.True(t, deleted, "soft-deleted row must keep a non-null deleted_at")

	// And every further operation treats it as gone
	resp = doRequest(t, app, "PUT", fmt.Sprintf("/api/v1/tasks/%d", taskID), token, map[string]interface{}{"status": 1})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}
