package models

import (
	"time"

	"gorm.io/gorm"
)

type Quiz struct {
	gorm.Model
	CourseID    uint
	Title       string
	Description string
	Position    int // ordering key shared with chapters
	IsPublished bool `gorm:"default:false"`
	MaxAttempts int  `gorm:"default:1"`
	Questions   []QuizQuestion
}

type QuizQuestion struct {
	gorm.Model
	QuizID        uint
	Question      string
	Options       string // JSON array of options
	CorrectAnswer int
	Position      int
}

// QuizResult is written once per completed attempt and never updated.
// A learner may hold several results for the same quiz; the best one wins.
type QuizResult struct {
	gorm.Model
	UserID      uint `gorm:"index"`
	QuizID      uint `gorm:"index"`
	Percentage  float64
	SubmittedAt time.Time
}
