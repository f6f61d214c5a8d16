package models

import "gorm.io/gorm"

type Course struct {
	gorm.Model
	Title       string
	ShortDesc   string
	Description string
	Price       float64 // 0 = free course
	LogoURL     string
	AuthorID    uint
	IsPublished bool `gorm:"default:false"`
	Chapters    []Chapter
	Quizzes     []Quiz
}

type Chapter struct {
	gorm.Model
	CourseID    uint
	Title       string
	Description string
	Content     string
	VideoURL    string
	Position    int  // ordering key shared with quizzes
	IsFree      bool `gorm:"default:false"` // free preview, visible without purchase
	IsPublished bool `gorm:"default:false"`
	// Comma-separated list of study types the chapter targets; empty = all
	StudyTypes         string
	RequirePassingQuiz bool `gorm:"default:false"`
	RequiredQuizID     *uint
}
