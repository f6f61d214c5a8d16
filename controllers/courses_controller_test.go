package controllers_test

import (
	"bytes"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"

	"lms/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

func TestEnrollFreeCourseIdempotent(t *testing.T) {
	app, db, cfg := setupTestApp(t)
	user, token := createUser(t, db, cfg, "enrollee1", "user", "")

	course := models.Course{Title: "Free", Price: 0, IsPublished: true}
	assert.NoError(t, db.Create(&course).Error)

	path := fmt.Sprintf("/api/courses/%d/enroll", course.ID)

	status, result := postJSON(t, app, path, token, fiber.Map{})
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "Enrolled", result["message"])

	// Enrolling twice keeps a single record
	status, result = postJSON(t, app, path, token, fiber.Map{})
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "Already enrolled", result["message"])

	var count int64
	db.Model(&models.Purchase{}).Where("user_id = ? AND course_id = ?", user.ID, course.ID).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestEnrollPaidCourseRejected(t *testing.T) {
	app, db, cfg := setupTestApp(t)
	_, token := createUser(t, db, cfg, "enrollee2", "user", "")

	course := models.Course{Title: "Paid", Price: 49.99, IsPublished: true}
	assert.NoError(t, db.Create(&course).Error)

	status, result := postJSON(t, app,
		fmt.Sprintf("/api/courses/%d/enroll", course.ID), token, fiber.Map{})
	assert.Equal(t, fiber.StatusForbidden, status)
	assert.Equal(t, "Course requires a purchase", result["error"])
}

func TestAdminRoutesRequireAdminRole(t *testing.T) {
	app, db, cfg := setupTestApp(t)
	_, userToken := createUser(t, db, cfg, "plainuser", "user", "")
	_, adminToken := createUser(t, db, cfg, "theadmin", "admin", "")

	status, _ := postJSON(t, app, "/api/admin/courses", userToken,
		fiber.Map{"title": "X"})
	assert.Equal(t, fiber.StatusForbidden, status)

	status, result := postJSON(t, app, "/api/admin/courses", adminToken,
		fiber.Map{"title": "Go from scratch", "price": 0})
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "Course created", result["message"])

	// New courses start unpublished
	var course models.Course
	assert.NoError(t, db.Where("title = ?", "Go from scratch").First(&course).Error)
	assert.False(t, course.IsPublished)
}

func TestListCoursesEmptyIsArray(t *testing.T) {
	app, db, cfg := setupTestApp(t)
	_, token := createUser(t, db, cfg, "browser0", "user", "")

	req := httptest.NewRequest("GET", "/api/courses", nil)
	req.Header.Set("Authorization", token)
	resp, err := app.Test(req)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	// No published courses still yields a JSON array, never null
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "[]", string(bytes.TrimSpace(body)))
}

func TestListCoursesShowsAccessFlags(t *testing.T) {
	app, db, cfg := setupTestApp(t)
	user, token := createUser(t, db, cfg, "browser1", "user", "")

	free := models.Course{Title: "Free", Price: 0, IsPublished: true}
	paid := models.Course{Title: "Paid", Price: 100, IsPublished: true}
	owned := models.Course{Title: "Owned", Price: 100, IsPublished: true}
	assert.NoError(t, db.Create(&free).Error)
	assert.NoError(t, db.Create(&paid).Error)
	assert.NoError(t, db.Create(&owned).Error)
	db.Create(&models.Purchase{UserID: user.ID, CourseID: owned.ID, Status: models.PurchaseStatusActive, Amount: 100})
	db.Create(&models.Course{Title: "Draft", IsPublished: false})

	status, items := getJSONArray(t, app, "/api/courses", token)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Len(t, items, 3)
	assert.Equal(t, true, items[0]["hasAccess"])
	assert.Equal(t, false, items[1]["hasAccess"])
	assert.Equal(t, true, items[2]["hasAccess"])
	assert.Equal(t, true, items[2]["hasPurchase"])
}
