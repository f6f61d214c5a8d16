package services

import (
	"fmt"
	"sync/atomic"
	"testing"

	"lms/models"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var testDBCounter atomic.Int64

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:catalog%d?mode=memory&cache=shared", testDBCounter.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	assert.NoError(t, err)
	assert.NoError(t, db.AutoMigrate(
		&models.Course{}, &models.Chapter{}, &models.Quiz{},
		&models.QuizQuestion{}, &models.QuizResult{}, &models.Purchase{},
	))
	return db
}

func TestCatalogMergeOrder(t *testing.T) {
	db := newTestDB(t)

	course := models.Course{Title: "Go", IsPublished: true}
	assert.NoError(t, db.Create(&course).Error)

	db.Create(&models.Chapter{CourseID: course.ID, Title: "C1", Position: 1, IsPublished: true})
	db.Create(&models.Quiz{CourseID: course.ID, Title: "Q1", Position: 2, IsPublished: true})
	db.Create(&models.Chapter{CourseID: course.ID, Title: "C2", Position: 3, IsPublished: true})
	// unpublished items never appear
	db.Create(&models.Chapter{CourseID: course.ID, Title: "Draft", Position: 0, IsPublished: false})

	items, err := NewCatalog(db).Build(course.ID)
	assert.NoError(t, err)
	assert.Len(t, items, 3)
	assert.Equal(t, "C1", items[0].Title())
	assert.Equal(t, "Q1", items[1].Title())
	assert.Equal(t, "C2", items[2].Title())
}

func TestCatalogTieBreakChaptersFirst(t *testing.T) {
	db := newTestDB(t)

	course := models.Course{Title: "Go", IsPublished: true}
	assert.NoError(t, db.Create(&course).Error)

	// Quiz created before the chapter, same position: the chapter still sorts
	// first
	db.Create(&models.Quiz{CourseID: course.ID, Title: "Q", Position: 5, IsPublished: true})
	db.Create(&models.Chapter{CourseID: course.ID, Title: "C", Position: 5, IsPublished: true})

	items, err := NewCatalog(db).Build(course.ID)
	assert.NoError(t, err)
	assert.Len(t, items, 2)
	assert.Equal(t, ItemTypeChapter, items[0].Type)
	assert.Equal(t, ItemTypeQuiz, items[1].Type)
}

func TestCatalogStableAcrossCalls(t *testing.T) {
	db := newTestDB(t)

	course := models.Course{Title: "Go", IsPublished: true}
	assert.NoError(t, db.Create(&course).Error)

	for i := 0; i < 5; i++ {
		db.Create(&models.Chapter{CourseID: course.ID, Title: fmt.Sprintf("C%d", i), Position: 1, IsPublished: true})
		db.Create(&models.Quiz{CourseID: course.ID, Title: fmt.Sprintf("Q%d", i), Position: 1, IsPublished: true})
	}

	first, err := NewCatalog(db).Build(course.ID)
	assert.NoError(t, err)
	second, err := NewCatalog(db).Build(course.ID)
	assert.NoError(t, err)

	assert.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].Type, second[i].Type)
		assert.Equal(t, first[i].ID(), second[i].ID())
	}
}

func TestBestResultsPicksMax(t *testing.T) {
	db := newTestDB(t)

	db.Create(&models.QuizResult{UserID: 1, QuizID: 10, Percentage: 30})
	db.Create(&models.QuizResult{UserID: 1, QuizID: 10, Percentage: 70})
	db.Create(&models.QuizResult{UserID: 1, QuizID: 11, Percentage: 45})
	db.Create(&models.QuizResult{UserID: 2, QuizID: 10, Percentage: 99})

	best, err := NewLockEngine(db).BestResults(1, []uint{10, 11, 12})
	assert.NoError(t, err)
	assert.Equal(t, 70.0, best[10])
	assert.Equal(t, 45.0, best[11])
	_, ok := best[12]
	assert.False(t, ok)
}
