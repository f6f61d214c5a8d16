package controllers_test

import (
	"testing"

	"lms/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

func TestRegisterAndLogin(t *testing.T) {
	app, db, _ := setupTestApp(t)

	status, result := postJSON(t, app, "/api/auth/register", "", fiber.Map{
		"username":   "newuser",
		"email":      "newuser@example.com",
		"password":   "secret-password",
		"study_type": "online",
	})
	assert.Equal(t, fiber.StatusOK, status)
	assert.NotEmpty(t, result["token"])

	var user models.User
	assert.NoError(t, db.Where("username = ?", "newuser").First(&user).Error)
	assert.Equal(t, "user", user.Role)
	// Never stored in the clear
	assert.NotEqual(t, "secret-password", user.PasswordHash)

	status, result = postJSON(t, app, "/api/auth/login", "", fiber.Map{
		"username": "newuser",
		"password": "secret-password",
	})
	assert.Equal(t, fiber.StatusOK, status)
	assert.NotEmpty(t, result["token"])

	status, result = postJSON(t, app, "/api/auth/login", "", fiber.Map{
		"username": "newuser",
		"password": "wrong-password",
	})
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, "Invalid credentials", result["error"])
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	app, _, _ := setupTestApp(t)

	// Validation failures use the 422 response helper, not a plain 400
	status, result := postJSON(t, app, "/api/auth/register", "", fiber.Map{
		"username": "shorty",
		"email":    "shorty@example.com",
		"password": "short",
	})
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)
	assert.Equal(t, false, result["success"])
}
