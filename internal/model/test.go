package model

// Test is the exam paper configuration. It is treated as immutable while any
// attempt on it is in progress; score-relevant values are snapshotted onto the
// attempt at creation.
// swagger:model
type Test struct {
	BaseModel
	Title           string `gorm:"size:255" json:"title"`
	Description     string `gorm:"type:text" json:"description"`
	TotalQuestions  int    `json:"totalQuestions"`
	TotalMarks      int    `json:"totalMarks"`
	DurationMinutes int    `json:"durationMinutes"`
	NegativeMarking bool   `gorm:"default:false" json:"negativeMarking"`
	// Deduction per incorrect answer in hundredths of a mark (25 = 0.25).
	NegativeMarkBP int  `gorm:"default:0" json:"negativeMarkBp"`
	IsPublished    bool `gorm:"default:false;index" json:"isPublished"`
}

func (Test) TableName() string {
	return "tests"
}
