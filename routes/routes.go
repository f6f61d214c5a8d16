package routes

import (
	"log"

	"lms/config"
	"lms/controllers"
	"lms/middleware"
	"lms/storage"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupRoutes(app *fiber.App, db *gorm.DB, cfg *config.Config, logger *log.Logger, uploader *storage.Uploader) {
	// Auth routes
	authController := controllers.NewAuthController(db, cfg)
	app.Post("/api/auth/register", authController.Register)
	app.Post("/api/auth/login", authController.Login)

	// Middleware
	authMiddleware := middleware.AuthMiddleware(cfg)
	adminMiddleware := middleware.AdminMiddleware(db, cfg)

	// User routes
	userController := controllers.NewUserController(db, cfg)
	app.Get("/api/user/profile", authMiddleware, userController.GetProfile)
	app.Put("/api/user/profile", authMiddleware, userController.UpdateProfile)

	// Courses routes
	coursesController := controllers.NewCoursesController(db, cfg)
	courses := app.Group("/api/courses", authMiddleware)
	courses.Get("/", coursesController.ListCourses)
	courses.Post("/:id/enroll", coursesController.Enroll)

	// Content access routes
	contentController := controllers.NewContentController(db, cfg)
	courses.Get("/:id/access", contentController.GetCourseAccess)
	courses.Get("/:id/content", contentController.GetCourseContent)
	courses.Get("/:id/first-content", contentController.GetFirstContent)
	courses.Get("/:id/chapters/:chapterId", contentController.GetChapter)
	courses.Get("/:id/quizzes/:quizId", contentController.GetQuiz)

	// Quiz attempts
	quizzesController := controllers.NewQuizzesController(db, cfg)
	courses.Post("/:id/quizzes/:quizId/attempts", quizzesController.SubmitAttempt)

	// Uploads
	uploadsController := controllers.NewUploadsController(cfg, uploader, logger)
	app.Post("/api/uploads", authMiddleware, uploadsController.Upload)

	// Admin routes for courses
	adminCourses := app.Group("/api/admin/courses", authMiddleware, adminMiddleware)
	adminCourses.Post("/", coursesController.CreateCourse)
	adminCourses.Put("/:id", coursesController.UpdateCourse)
	adminCourses.Put("/:id/publish", coursesController.PublishCourse)

	// Admin routes for chapters
	chaptersController := controllers.NewChaptersController(db, cfg)
	adminCourses.Post("/:id/chapters", chaptersController.AddChapter)
	adminCourses.Put("/:id/chapters/:chapterId", chaptersController.UpdateChapter)

	// Admin routes for quizzes
	adminCourses.Post("/:id/quizzes", quizzesController.CreateQuiz)
	adminCourses.Put("/:id/quizzes/:quizId", quizzesController.UpdateQuiz)
	adminCourses.Post("/:id/quizzes/:quizId/questions", quizzesController.AddQuestion)
}
