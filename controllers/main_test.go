package controllers_test

import (
	"fmt"
	"sync/atomic"
	"testing"

	"lms/config"
	"lms/models"
	"lms/routes"
	"lms/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var testDBCounter atomic.Int64

// setupTestApp builds the full route table against a fresh in-memory
// database. Uploads run without a storage client in tests.
func setupTestApp(t *testing.T) (*fiber.App, *gorm.DB, *config.Config) {
	t.Helper()

	dsn := fmt.Sprintf("file:controllers%d?mode=memory&cache=shared", testDBCounter.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	assert.NoError(t, err)
	assert.NoError(t, utils.MigrateModels(db))

	cfg := &config.Config{JWTSecret: "test-secret"}
	logger := utils.InitLogger()

	app := fiber.New()
	routes.SetupRoutes(app, db, cfg, logger, nil)

	return app, db, cfg
}

func createUser(t *testing.T, db *gorm.DB, cfg *config.Config, username, role, studyType string) (models.User, string) {
	t.Helper()

	user := models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "x",
		Role:         role,
		StudyType:    studyType,
	}
	assert.NoError(t, db.Create(&user).Error)

	token, err := utils.GenerateJWTToken(user.ID, cfg)
	assert.NoError(t, err)
	return user, token
}
