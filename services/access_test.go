package services

import (
	"testing"

	"lms/models"

	"github.com/stretchr/testify/assert"
)

func TestEvaluateAccessFreeCourse(t *testing.T) {
	course := &models.Course{Price: 0}
	assert.True(t, EvaluateAccess(course, nil))
}

func TestEvaluateAccessPaidCourse(t *testing.T) {
	course := &models.Course{Price: 100}
	assert.False(t, EvaluateAccess(course, nil))
	assert.True(t, EvaluateAccess(course, &models.Purchase{Status: models.PurchaseStatusActive}))
}
