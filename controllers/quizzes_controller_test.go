package controllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"

	"lms/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func postJSON(t *testing.T, app *fiber.App, path, token string, payload interface{}) (int, map[string]interface{}) {
	t.Helper()

	body, err := json.Marshal(payload)
	assert.NoError(t, err)

	req := httptest.NewRequest("POST", path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	resp, err := app.Test(req)
	assert.NoError(t, err)

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	return resp.StatusCode, result
}

// seedQuiz creates a published free course holding one published quiz with
// three questions whose correct answers are 0, 1, 2.
func seedQuiz(t *testing.T, db *gorm.DB, maxAttempts int) (models.Course, models.Quiz) {
	t.Helper()

	course := models.Course{Title: "Go", Price: 0, IsPublished: true}
	assert.NoError(t, db.Create(&course).Error)

	quiz := models.Quiz{CourseID: course.ID, Title: "Q1", Position: 1, IsPublished: true, MaxAttempts: maxAttempts}
	assert.NoError(t, db.Create(&quiz).Error)

	for i := 0; i < 3; i++ {
		assert.NoError(t, db.Create(&models.QuizQuestion{
			QuizID:        quiz.ID,
			Question:      fmt.Sprintf("q%d", i),
			Options:       "a;b;c",
			CorrectAnswer: i,
			Position:      i + 1,
		}).Error)
	}
	return course, quiz
}

func attemptPath(course models.Course, quiz models.Quiz) string {
	return fmt.Sprintf("/api/courses/%d/quizzes/%d/attempts", course.ID, quiz.ID)
}

func TestSubmitAttemptScoring(t *testing.T) {
	app, db, cfg := setupTestApp(t)
	_, token := createUser(t, db, cfg, "quiztaker1", "user", "")
	course, quiz := seedQuiz(t, db, 3)

	// Two of three correct: 66.67%, above the 50% bar
	status, result := postJSON(t, app, attemptPath(course, quiz), token,
		fiber.Map{"answers": []int{0, 1, 0}})
	assert.Equal(t, fiber.StatusOK, status)
	assert.InDelta(t, 66.67, result["percentage"].(float64), 0.01)
	assert.Equal(t, float64(2), result["correct"])
	assert.Equal(t, float64(3), result["total"])
	assert.Equal(t, true, result["passed"])
	assert.Equal(t, float64(1), result["attemptsUsed"])
	assert.Equal(t, float64(3), result["maxAttempts"])

	// One of three: 33.33%, failed
	status, result = postJSON(t, app, attemptPath(course, quiz), token,
		fiber.Map{"answers": []int{0, 0, 0}})
	assert.Equal(t, fiber.StatusOK, status)
	assert.InDelta(t, 33.33, result["percentage"].(float64), 0.01)
	assert.Equal(t, false, result["passed"])
	assert.Equal(t, float64(2), result["attemptsUsed"])

	// Both results are kept
	var count int64
	db.Model(&models.QuizResult{}).Where("quiz_id = ?", quiz.ID).Count(&count)
	assert.Equal(t, int64(2), count)
}

func TestSubmitAttemptLimit(t *testing.T) {
	app, db, cfg := setupTestApp(t)
	_, token := createUser(t, db, cfg, "quiztaker2", "user", "")
	course, quiz := seedQuiz(t, db, 1)

	status, _ := postJSON(t, app, attemptPath(course, quiz), token,
		fiber.Map{"answers": []int{0, 0, 0}})
	assert.Equal(t, fiber.StatusOK, status)

	// The single allowed attempt is spent even though it failed
	status, result := postJSON(t, app, attemptPath(course, quiz), token,
		fiber.Map{"answers": []int{0, 1, 2}})
	assert.Equal(t, fiber.StatusForbidden, status)
	assert.Equal(t, "No attempts left", result["error"])

	var count int64
	db.Model(&models.QuizResult{}).Where("quiz_id = ?", quiz.ID).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestSubmitAttemptAnswerCountMismatch(t *testing.T) {
	app, db, cfg := setupTestApp(t)
	_, token := createUser(t, db, cfg, "quiztaker3", "user", "")
	course, quiz := seedQuiz(t, db, 3)

	status, result := postJSON(t, app, attemptPath(course, quiz), token,
		fiber.Map{"answers": []int{0}})
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "Expected one answer per question", result["error"])
}

func TestSubmitAttemptLockedQuiz(t *testing.T) {
	app, db, cfg := setupTestApp(t)
	_, token := createUser(t, db, cfg, "quiztaker4", "user", "")

	// Paid course with no purchase: the quiz is behind the access gate
	course := models.Course{Title: "Paid", Price: 100, IsPublished: true}
	assert.NoError(t, db.Create(&course).Error)
	quiz := models.Quiz{CourseID: course.ID, Title: "Q1", Position: 1, IsPublished: true, MaxAttempts: 1}
	assert.NoError(t, db.Create(&quiz).Error)
	assert.NoError(t, db.Create(&models.QuizQuestion{
		QuizID: quiz.ID, Question: "q", Options: "a;b", CorrectAnswer: 0, Position: 1,
	}).Error)

	status, result := postJSON(t, app, attemptPath(course, quiz), token,
		fiber.Map{"answers": []int{0}})
	assert.Equal(t, fiber.StatusForbidden, status)
	assert.Equal(t, true, result["isLocked"])

	var count int64
	db.Model(&models.QuizResult{}).Where("quiz_id = ?", quiz.ID).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestSubmitAttemptUnknownQuiz(t *testing.T) {
	app, db, cfg := setupTestApp(t)
	_, token := createUser(t, db, cfg, "quiztaker5", "user", "")

	course := models.Course{Title: "Go", Price: 0, IsPublished: true}
	assert.NoError(t, db.Create(&course).Error)

	status, _ := postJSON(t, app,
		fmt.Sprintf("/api/courses/%d/quizzes/99999/attempts", course.ID), token,
		fiber.Map{"answers": []int{0}})
	assert.Equal(t, fiber.StatusNotFound, status)
}
