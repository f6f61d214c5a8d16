package controllers

import (
	"errors"
	"strconv"

	"lms/config"
	"lms/models"
	"lms/services"
	"lms/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// ContentController serves the learner-facing course content endpoints. All
// lock decisions go through the one lock engine; handlers only assemble
// responses.
type ContentController struct {
	DB      *gorm.DB
	Cfg     *config.Config
	Catalog *services.Catalog
	Access  *services.Access
	Locks   *services.LockEngine
}

func NewContentController(db *gorm.DB, cfg *config.Config) *ContentController {
	return &ContentController{
		DB:      db,
		Cfg:     cfg,
		Catalog: services.NewCatalog(db),
		Access:  services.NewAccess(db),
		Locks:   services.NewLockEngine(db),
	}
}

// loadPublishedCourse resolves the :id param; unpublished courses are
// indistinguishable from missing ones. On failure the response has already
// been written and the returned course is nil.
func (cc *ContentController) loadPublishedCourse(c *fiber.Ctx) (*models.Course, error) {
	courseID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return nil, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid course ID",
		})
	}

	var course models.Course
	if err := cc.DB.Where("id = ? AND is_published = ?", courseID, true).First(&course).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Course not found",
			})
		}
		return nil, c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}
	return &course, nil
}

// annotatedCatalog runs the full pipeline for one learner and course:
// catalog merge, access evaluation, best quiz results, lock annotation.
func (cc *ContentController) annotatedCatalog(userID uint, course *models.Course) ([]services.AnnotatedItem, services.CourseAccess, error) {
	items, err := cc.Catalog.Build(course.ID)
	if err != nil {
		return nil, services.CourseAccess{}, err
	}

	access, err := cc.Access.ForUser(userID, course)
	if err != nil {
		return nil, services.CourseAccess{}, err
	}

	var user models.User
	if err := cc.DB.First(&user, userID).Error; err != nil {
		return nil, services.CourseAccess{}, err
	}

	// Best results are needed for every quiz in the sequence plus any quiz a
	// chapter names as its passing requirement (it may not be in the catalog).
	quizIDs := make([]uint, 0, len(items))
	for _, it := range items {
		if it.Type == services.ItemTypeQuiz {
			quizIDs = append(quizIDs, it.Quiz.ID)
		}
		if it.Type == services.ItemTypeChapter && it.Chapter.RequiredQuizID != nil {
			quizIDs = append(quizIDs, *it.Chapter.RequiredQuizID)
		}
	}
	best, err := cc.Locks.BestResults(userID, quizIDs)
	if err != nil {
		return nil, services.CourseAccess{}, err
	}

	return cc.Locks.Annotate(items, access.HasAccess, user.StudyType, best), access, nil
}

func (cc *ContentController) GetCourseAccess(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, cc.Cfg)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	course, err := cc.loadPublishedCourse(c)
	if course == nil {
		return err
	}

	access, err := cc.Access.ForUser(userID, course)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}

	return c.JSON(fiber.Map{
		"hasAccess":   access.HasAccess,
		"hasPurchase": access.HasPurchase,
	})
}

func (cc *ContentController) GetCourseContent(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, cc.Cfg)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	course, err := cc.loadPublishedCourse(c)
	if course == nil {
		return err
	}

	annotated, _, err := cc.annotatedCatalog(userID, course)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}

	result := make([]fiber.Map, 0, len(annotated))
	for _, it := range annotated {
		entry := fiber.Map{
			"id":         it.ID(),
			"type":       it.Type,
			"title":      it.Title(),
			"position":   it.Position(),
			"isLocked":   it.IsLocked,
			"lockReason": it.LockReason,
		}
		switch it.Type {
		case services.ItemTypeChapter:
			entry["description"] = it.Chapter.Description
			entry["isFree"] = it.Chapter.IsFree
		case services.ItemTypeQuiz:
			entry["description"] = it.Quiz.Description
			entry["maxAttempts"] = it.Quiz.MaxAttempts
		}
		result = append(result, entry)
	}

	return c.JSON(result)
}

func (cc *ContentController) GetFirstContent(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, cc.Cfg)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	course, err := cc.loadPublishedCourse(c)
	if course == nil {
		return err
	}

	annotated, access, err := cc.annotatedCatalog(userID, course)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}

	first := services.FirstContent(annotated, access.HasAccess)
	if first == nil {
		return c.JSON(fiber.Map{"id": nil, "type": nil})
	}

	return c.JSON(fiber.Map{
		"id":   first.ID(),
		"type": first.Type,
	})
}

func (cc *ContentController) GetChapter(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, cc.Cfg)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	course, err := cc.loadPublishedCourse(c)
	if course == nil {
		return err
	}

	chapterID, err := strconv.Atoi(c.Params("chapterId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid chapter ID",
		})
	}

	annotated, _, err := cc.annotatedCatalog(userID, course)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}

	for _, it := range annotated {
		if it.Type != services.ItemTypeChapter || it.ID() != uint(chapterID) {
			continue
		}
		if it.IsLocked {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error":    it.LockReason,
				"isLocked": true,
			})
		}
		chapter := it.Chapter
		return c.JSON(fiber.Map{
			"id":          chapter.ID,
			"courseId":    chapter.CourseID,
			"title":       chapter.Title,
			"description": chapter.Description,
			"content":     chapter.Content,
			"videoUrl":    chapter.VideoURL,
			"position":    chapter.Position,
			"isFree":      chapter.IsFree,
		})
	}

	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
		"error": "Chapter not found",
	})
}

func (cc *ContentController) GetQuiz(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, cc.Cfg)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	course, err := cc.loadPublishedCourse(c)
	if course == nil {
		return err
	}

	quizID, err := strconv.Atoi(c.Params("quizId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid quiz ID",
		})
	}

	annotated, _, err := cc.annotatedCatalog(userID, course)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}

	for _, it := range annotated {
		if it.Type != services.ItemTypeQuiz || it.ID() != uint(quizID) {
			continue
		}
		if it.IsLocked {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error":    it.LockReason,
				"isLocked": true,
			})
		}

		var questions []models.QuizQuestion
		if err := cc.DB.Where("quiz_id = ?", quizID).Order("position ASC").Find(&questions).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Could not query database",
			})
		}

		// Correct answers never leave the server
		qs := make([]fiber.Map, 0, len(questions))
		for _, q := range questions {
			qs = append(qs, fiber.Map{
				"id":       q.ID,
				"question": q.Question,
				"options":  q.Options,
				"position": q.Position,
			})
		}

		var attemptsUsed int64
		cc.DB.Model(&models.QuizResult{}).
			Where("user_id = ? AND quiz_id = ?", userID, quizID).
			Count(&attemptsUsed)

		quiz := it.Quiz
		return c.JSON(fiber.Map{
			"id":           quiz.ID,
			"courseId":     quiz.CourseID,
			"title":        quiz.Title,
			"description":  quiz.Description,
			"position":     quiz.Position,
			"maxAttempts":  quiz.MaxAttempts,
			"attemptsUsed": attemptsUsed,
			"questions":    qs,
		})
	}

	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
		"error": "Quiz not found",
	})
}
