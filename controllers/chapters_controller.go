package controllers

import (
	"errors"
	"strconv"

	"lms/config"
	"lms/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type ChaptersController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewChaptersController(db *gorm.DB, cfg *config.Config) *ChaptersController {
	return &ChaptersController{DB: db, Cfg: cfg}
}

type chapterInput struct {
	Title              string  `json:"title"`
	Description        string  `json:"description"`
	Content            string  `json:"content"`
	VideoURL           string  `json:"video_url"`
	Position           *int    `json:"position"`
	IsFree             *bool   `json:"is_free"`
	IsPublished        *bool   `json:"is_published"`
	StudyTypes         *string `json:"study_types"`
	RequirePassingQuiz *bool   `json:"require_passing_quiz"`
	RequiredQuizID     *uint   `json:"required_quiz_id"`
}

func (cc *ChaptersController) AddChapter(c *fiber.Ctx) error {
	courseID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid course ID",
		})
	}

	var input chapterInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}

	var course models.Course
	if err := cc.DB.First(&course, courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Course not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}

	chapter := models.Chapter{
		CourseID:    uint(courseID),
		Title:       input.Title,
		Description: input.Description,
		Content:     input.Content,
		VideoURL:    input.VideoURL,
	}
	if input.Position != nil {
		chapter.Position = *input.Position
	} else {
		// append at the end of the merged sequence
		chapter.Position = nextPosition(cc.DB, uint(courseID))
	}
	if input.IsFree != nil {
		chapter.IsFree = *input.IsFree
	}
	if input.IsPublished != nil {
		chapter.IsPublished = *input.IsPublished
	}
	if input.StudyTypes != nil {
		chapter.StudyTypes = *input.StudyTypes
	}
	if input.RequirePassingQuiz != nil {
		chapter.RequirePassingQuiz = *input.RequirePassingQuiz
	}
	chapter.RequiredQuizID = input.RequiredQuizID

	if err := cc.DB.Create(&chapter).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not create chapter",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Chapter added",
		"chapter": chapter,
	})
}

func (cc *ChaptersController) UpdateChapter(c *fiber.Ctx) error {
	courseID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid course ID",
		})
	}

	chapterID, err := strconv.Atoi(c.Params("chapterId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid chapter ID",
		})
	}

	var input chapterInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}

	var chapter models.Chapter
	if err := cc.DB.Where("id = ? AND course_id = ?", chapterID, courseID).First(&chapter).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Chapter not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}

	if input.Title != "" {
		chapter.Title = input.Title
	}
	if input.Description != "" {
		chapter.Description = input.Description
	}
	if input.Content != "" {
		chapter.Content = input.Content
	}
	if input.VideoURL != "" {
		chapter.VideoURL = input.VideoURL
	}
	if input.Position != nil {
		chapter.Position = *input.Position
	}
	if input.IsFree != nil {
		chapter.IsFree = *input.IsFree
	}
	if input.IsPublished != nil {
		chapter.IsPublished = *input.IsPublished
	}
	if input.StudyTypes != nil {
		chapter.StudyTypes = *input.StudyTypes
	}
	if input.RequirePassingQuiz != nil {
		chapter.RequirePassingQuiz = *input.RequirePassingQuiz
	}
	if input.RequiredQuizID != nil {
		chapter.RequiredQuizID = input.RequiredQuizID
	}

	if err := cc.DB.Save(&chapter).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not update chapter",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Chapter updated",
		"chapter": chapter,
	})
}

// nextPosition returns a position after every existing chapter and quiz of
// the course, so new items land at the end of the merged sequence.
func nextPosition(db *gorm.DB, courseID uint) int {
	var maxChapter, maxQuiz int
	db.Model(&models.Chapter{}).Where("course_id = ?", courseID).
		Select("COALESCE(MAX(position), 0)").Scan(&maxChapter)
	db.Model(&models.Quiz{}).Where("course_id = ?", courseID).
		Select("COALESCE(MAX(position), 0)").Scan(&maxQuiz)
	if maxQuiz > maxChapter {
		return maxQuiz + 1
	}
	return maxChapter + 1
}
