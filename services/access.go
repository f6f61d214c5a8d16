package services

import (
	"errors"

	"lms/models"

	"gorm.io/gorm"
)

// CourseAccess keeps the two signals separate: a free course without an
// enrollment record is accessible but not yet enrolled, a paid course
// without a purchase is not accessible at all.
type CourseAccess struct {
	HasAccess   bool
	HasPurchase bool
}

// EvaluateAccess is the pure access predicate: free course, or an active
// purchase exists. No I/O happens here.
func EvaluateAccess(course *models.Course, activePurchase *models.Purchase) bool {
	return course.Price == 0 || activePurchase != nil
}

// Access looks up purchase state and applies EvaluateAccess.
type Access struct {
	DB *gorm.DB
}

func NewAccess(db *gorm.DB) *Access {
	return &Access{DB: db}
}

func (a *Access) ForUser(userID uint, course *models.Course) (CourseAccess, error) {
	var purchase models.Purchase
	err := a.DB.Where("user_id = ? AND course_id = ? AND status = ?",
		userID, course.ID, models.PurchaseStatusActive).First(&purchase).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return CourseAccess{HasAccess: EvaluateAccess(course, nil)}, nil
		}
		return CourseAccess{}, err
	}
	return CourseAccess{HasAccess: true, HasPurchase: true}, nil
}
