package services

import (
	"fmt"
	"strings"

	"lms/models"

	"gorm.io/gorm"
)

// PassingScore is the fixed percentage a learner must reach for a quiz to
// count as passed. Unlock state everywhere depends on this exact value.
const PassingScore = 50.0

// LockDecision is recomputed from scratch on every request; nothing here is
// persisted.
type LockDecision struct {
	IsLocked   bool
	LockReason string

	// per-rule flags, kept for the first-content query
	accessBlocked       bool
	studyTypeBlocked    bool
	requiredQuizBlocked bool
	sequenceBlocked     bool
}

// AnnotatedItem is a catalog entry with its lock state for one learner.
type AnnotatedItem struct {
	ContentItem
	LockDecision
}

// LockEngine decides, per catalog item, whether a learner may open it. All
// call sites that gate content go through this one engine.
type LockEngine struct {
	DB *gorm.DB
}

func NewLockEngine(db *gorm.DB) *LockEngine {
	return &LockEngine{DB: db}
}

// BestResults returns the learner's best percentage per quiz in one query.
func (e *LockEngine) BestResults(userID uint, quizIDs []uint) (map[uint]float64, error) {
	best := make(map[uint]float64, len(quizIDs))
	if len(quizIDs) == 0 {
		return best, nil
	}

	var rows []struct {
		QuizID uint
		Best   float64
	}
	err := e.DB.Model(&models.QuizResult{}).
		Select("quiz_id, MAX(percentage) AS best").
		Where("user_id = ? AND quiz_id IN ?", userID, quizIDs).
		Group("quiz_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		best[row.QuizID] = row.Best
	}
	return best, nil
}

// Annotate runs the per-item rules left to right over the merged sequence.
//
// Rules, in reason priority order:
//  1. no course access (free chapter previews are exempt)
//  2. chapter targets study types the learner does not match
//  3. chapter requires passing a specific quiz the learner has not passed
//  4. the nearest preceding quiz in the sequence is not passed; quizzes
//     further back are irrelevant once the nearest one is passed
//
// The nearest preceding quiz is carried along the pass, so the whole
// annotation is a single O(n) sweep.
func (e *LockEngine) Annotate(items []ContentItem, hasAccess bool, learnerStudyType string, best map[uint]float64) []AnnotatedItem {
	out := make([]AnnotatedItem, 0, len(items))
	var prevQuiz *models.Quiz

	for _, it := range items {
		var d LockDecision

		if !hasAccess && !(it.Type == ItemTypeChapter && it.Chapter.IsFree) {
			d.accessBlocked = true
		}

		if it.Type == ItemTypeChapter {
			ch := it.Chapter
			if !StudyTypeMatches(learnerStudyType, ch.StudyTypes) {
				d.studyTypeBlocked = true
			}
			if ch.RequirePassingQuiz && ch.RequiredQuizID != nil && !passed(best, *ch.RequiredQuizID) {
				d.requiredQuizBlocked = true
			}
		}

		if prevQuiz != nil && !passed(best, prevQuiz.ID) {
			d.sequenceBlocked = true
		}

		switch {
		case d.accessBlocked:
			d.LockReason = "course access required"
		case d.studyTypeBlocked:
			d.LockReason = "study type mismatch"
		case d.requiredQuizBlocked:
			d.LockReason = "must pass required quiz"
		case d.sequenceBlocked:
			d.LockReason = fmt.Sprintf("must pass preceding quiz %q at >=%d%%", prevQuiz.Title, int(PassingScore))
		}
		d.IsLocked = d.LockReason != ""

		out = append(out, AnnotatedItem{ContentItem: it, LockDecision: d})

		if it.Type == ItemTypeQuiz {
			prevQuiz = it.Quiz
		}
	}

	return out
}

// FirstContent picks the entry point for "start learning" navigation: the
// first quiz the learner may open, or the first chapter that is either fully
// unlocked or a free preview not blocked by the chapter-level rules.
func FirstContent(items []AnnotatedItem, hasAccess bool) *AnnotatedItem {
	for i := range items {
		it := &items[i]
		if !it.IsLocked && hasAccess {
			return it
		}
		if it.Type == ItemTypeChapter && it.Chapter.IsFree &&
			!it.studyTypeBlocked && !it.requiredQuizBlocked {
			return it
		}
	}
	return nil
}

func passed(best map[uint]float64, quizID uint) bool {
	score, ok := best[quizID]
	return ok && score >= PassingScore
}

// StudyTypeMatches applies the fuzzy compatibility rule between a learner's
// study type and a chapter's comma-separated target list. An empty list or
// an unset learner type always matches; otherwise an entry matches when
// either string contains the other, case-insensitively.
func StudyTypeMatches(learner, chapterTypes string) bool {
	learner = strings.ToLower(strings.TrimSpace(learner))
	if learner == "" {
		return true
	}

	seen := false
	for _, raw := range strings.Split(chapterTypes, ",") {
		t := strings.ToLower(strings.TrimSpace(raw))
		if t == "" {
			continue
		}
		seen = true
		if strings.Contains(learner, t) || strings.Contains(t, learner) {
			return true
		}
	}
	return !seen
}
