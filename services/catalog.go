package services

import (
	"sort"

	"lms/models"

	"gorm.io/gorm"
)

const (
	ItemTypeChapter = "chapter"
	ItemTypeQuiz    = "quiz"
)

// ContentItem is one entry of a course's merged content sequence: either a
// chapter or a quiz, discriminated by Type.
type ContentItem struct {
	Type    string
	Chapter *models.Chapter
	Quiz    *models.Quiz
}

func (it ContentItem) ID() uint {
	if it.Type == ItemTypeQuiz {
		return it.Quiz.ID
	}
	return it.Chapter.ID
}

func (it ContentItem) Position() int {
	if it.Type == ItemTypeQuiz {
		return it.Quiz.Position
	}
	return it.Chapter.Position
}

func (it ContentItem) Title() string {
	if it.Type == ItemTypeQuiz {
		return it.Quiz.Title
	}
	return it.Chapter.Title
}

// Catalog builds the single linear sequence of a course's published content.
type Catalog struct {
	DB *gorm.DB
}

func NewCatalog(db *gorm.DB) *Catalog {
	return &Catalog{DB: db}
}

// Build fetches published chapters and quizzes of the course and merges them
// ascending by position. Ties resolve deterministically: chapters before
// quizzes, then lower ID first. Repeated calls over unchanged data return
// identical sequences.
func (cb *Catalog) Build(courseID uint) ([]ContentItem, error) {
	var chapters []models.Chapter
	if err := cb.DB.Where("course_id = ? AND is_published = ?", courseID, true).
		Find(&chapters).Error; err != nil {
		return nil, err
	}

	var quizzes []models.Quiz
	if err := cb.DB.Where("course_id = ? AND is_published = ?", courseID, true).
		Find(&quizzes).Error; err != nil {
		return nil, err
	}

	items := make([]ContentItem, 0, len(chapters)+len(quizzes))
	for i := range chapters {
		items = append(items, ContentItem{Type: ItemTypeChapter, Chapter: &chapters[i]})
	}
	for i := range quizzes {
		items = append(items, ContentItem{Type: ItemTypeQuiz, Quiz: &quizzes[i]})
	}

	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Position() != items[j].Position() {
			return items[i].Position() < items[j].Position()
		}
		if items[i].Type != items[j].Type {
			return items[i].Type == ItemTypeChapter
		}
		return items[i].ID() < items[j].ID()
	})

	return items, nil
}
