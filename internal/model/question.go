package model

import "encoding/json"

// Question belongs to a test. Options is a JSON array of four strings;
// CorrectOption is a 1-based index into it. Read-only to the session engine.
// swagger:model
type Question struct {
	BaseModel
	TestID        uint            `gorm:"index;type:bigint unsigned" json:"testId"`
	Text          string          `gorm:"type:text" json:"text"`
	Options       json.RawMessage `gorm:"type:json" json:"options"`
	CorrectOption int             `json:"-"`
	Explanation   string          `gorm:"type:text" json:"-"`
	Section       string          `gorm:"size:100;index" json:"section"`
	DisplayOrder  int             `json:"displayOrder"`
}

func (Question) TableName() string {
	return "questions"
}
