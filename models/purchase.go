package models

import "gorm.io/gorm"

const PurchaseStatusActive = "ACTIVE"

// Purchase doubles as the enrollment record: free courses get one with a
// zero amount, paid courses get one from the payment flow.
type Purchase struct {
	gorm.Model
	UserID   uint    `gorm:"index"`
	CourseID uint    `gorm:"index"`
	Status   string  `gorm:"default:ACTIVE"` // ACTIVE, CANCELLED, REFUNDED
	Amount   float64
}
