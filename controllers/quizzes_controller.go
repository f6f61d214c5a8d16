package controllers

import (
	"errors"
	"strconv"
	"time"

	"lms/config"
	"lms/models"
	"lms/services"
	"lms/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type QuizzesController struct {
	DB      *gorm.DB
	Cfg     *config.Config
	Catalog *services.Catalog
	Access  *services.Access
	Locks   *services.LockEngine
}

func NewQuizzesController(db *gorm.DB, cfg *config.Config) *QuizzesController {
	return &QuizzesController{
		DB:      db,
		Cfg:     cfg,
		Catalog: services.NewCatalog(db),
		Access:  services.NewAccess(db),
		Locks:   services.NewLockEngine(db),
	}
}

// SubmitAttempt scores a learner's answers, enforces the attempt limit and
// records an immutable result. Earlier results are never overwritten; the
// best percentage is what unlocks downstream content.
func (qc *QuizzesController) SubmitAttempt(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, qc.Cfg)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	courseID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid course ID",
		})
	}

	quizID, err := strconv.Atoi(c.Params("quizId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid quiz ID",
		})
	}

	var input struct {
		Answers []int `json:"answers"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}

	var course models.Course
	if err := qc.DB.Where("id = ? AND is_published = ?", courseID, true).First(&course).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Course not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}

	var quiz models.Quiz
	if err := qc.DB.Where("id = ? AND course_id = ? AND is_published = ?", quizID, courseID, true).First(&quiz).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Quiz not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}

	// The quiz itself must be reachable in the sequence before an attempt
	// can be made.
	locked, reason, err := qc.quizLocked(userID, &course, quiz.ID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}
	if locked {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error":    reason,
			"isLocked": true,
		})
	}

	var attemptsUsed int64
	if err := qc.DB.Model(&models.QuizResult{}).
		Where("user_id = ? AND quiz_id = ?", userID, quiz.ID).
		Count(&attemptsUsed).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}
	if attemptsUsed >= int64(quiz.MaxAttempts) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "No attempts left",
		})
	}

	var questions []models.QuizQuestion
	if err := qc.DB.Where("quiz_id = ?", quiz.ID).Order("position ASC").Find(&questions).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}
	if len(questions) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Quiz has no questions",
		})
	}
	if len(input.Answers) != len(questions) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Expected one answer per question",
		})
	}

	correct := 0
	for i, q := range questions {
		if input.Answers[i] == q.CorrectAnswer {
			correct++
		}
	}
	percentage := float64(correct) / float64(len(questions)) * 100

	result := models.QuizResult{
		UserID:      userID,
		QuizID:      quiz.ID,
		Percentage:  percentage,
		SubmittedAt: time.Now(),
	}
	if err := qc.DB.Create(&result).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not save result",
		})
	}

	return c.JSON(fiber.Map{
		"percentage":   percentage,
		"correct":      correct,
		"total":        len(questions),
		"passed":       percentage >= services.PassingScore,
		"attemptsUsed": attemptsUsed + 1,
		"maxAttempts":  quiz.MaxAttempts,
	})
}

// quizLocked runs the lock pipeline and reports the quiz's lock state.
func (qc *QuizzesController) quizLocked(userID uint, course *models.Course, quizID uint) (bool, string, error) {
	items, err := qc.Catalog.Build(course.ID)
	if err != nil {
		return false, "", err
	}

	access, err := qc.Access.ForUser(userID, course)
	if err != nil {
		return false, "", err
	}

	var user models.User
	if err := qc.DB.First(&user, userID).Error; err != nil {
		return false, "", err
	}

	quizIDs := make([]uint, 0, len(items))
	for _, it := range items {
		if it.Type == services.ItemTypeQuiz {
			quizIDs = append(quizIDs, it.Quiz.ID)
		}
	}
	best, err := qc.Locks.BestResults(userID, quizIDs)
	if err != nil {
		return false, "", err
	}

	for _, it := range qc.Locks.Annotate(items, access.HasAccess, user.StudyType, best) {
		if it.Type == services.ItemTypeQuiz && it.ID() == quizID {
			return it.IsLocked, it.LockReason, nil
		}
	}
	// Published quiz missing from its own catalog: treat as locked.
	return true, "Quiz is not available", nil
}

func (qc *QuizzesController) CreateQuiz(c *fiber.Ctx) error {
	courseID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid course ID",
		})
	}

	var input struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Position    *int   `json:"position"`
		MaxAttempts int    `json:"max_attempts"`
		IsPublished *bool  `json:"is_published"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}

	var course models.Course
	if err := qc.DB.First(&course, courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Course not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}

	quiz := models.Quiz{
		CourseID:    uint(courseID),
		Title:       input.Title,
		Description: input.Description,
		MaxAttempts: input.MaxAttempts,
	}
	if quiz.MaxAttempts < 1 {
		quiz.MaxAttempts = 1
	}
	if input.Position != nil {
		quiz.Position = *input.Position
	} else {
		quiz.Position = nextPosition(qc.DB, uint(courseID))
	}
	if input.IsPublished != nil {
		quiz.IsPublished = *input.IsPublished
	}

	if err := qc.DB.Create(&quiz).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not create quiz",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Quiz created",
		"quiz":    quiz,
	})
}

func (qc *QuizzesController) UpdateQuiz(c *fiber.Ctx) error {
	courseID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid course ID",
		})
	}

	quizID, err := strconv.Atoi(c.Params("quizId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid quiz ID",
		})
	}

	var input struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Position    *int   `json:"position"`
		MaxAttempts *int   `json:"max_attempts"`
		IsPublished *bool  `json:"is_published"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}

	var quiz models.Quiz
	if err := qc.DB.Where("id = ? AND course_id = ?", quizID, courseID).First(&quiz).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Quiz not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}

	if input.Title != "" {
		quiz.Title = input.Title
	}
	if input.Description != "" {
		quiz.Description = input.Description
	}
	if input.Position != nil {
		quiz.Position = *input.Position
	}
	if input.MaxAttempts != nil && *input.MaxAttempts >= 1 {
		quiz.MaxAttempts = *input.MaxAttempts
	}
	if input.IsPublished != nil {
		quiz.IsPublished = *input.IsPublished
	}

	if err := qc.DB.Save(&quiz).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not update quiz",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Quiz updated",
		"quiz":    quiz,
	})
}

func (qc *QuizzesController) AddQuestion(c *fiber.Ctx) error {
	courseID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid course ID",
		})
	}

	quizID, err := strconv.Atoi(c.Params("quizId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid quiz ID",
		})
	}

	var input struct {
		Question      string `json:"question"`
		Options       string `json:"options"`
		CorrectAnswer int    `json:"correct_answer"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}

	var quiz models.Quiz
	if err := qc.DB.Where("id = ? AND course_id = ?", quizID, courseID).First(&quiz).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Quiz not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}

	var questionCount int64
	qc.DB.Model(&models.QuizQuestion{}).Where("quiz_id = ?", quiz.ID).Count(&questionCount)

	question := models.QuizQuestion{
		QuizID:        quiz.ID,
		Question:      input.Question,
		Options:       input.Options,
		CorrectAnswer: input.CorrectAnswer,
		Position:      int(questionCount) + 1,
	}
	if err := qc.DB.Create(&question).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not create question",
		})
	}

	return c.JSON(fiber.Map{
		"message":  "Question added",
		"question": question,
	})
}
