package model

// TopicStat accumulates per-section answer outcomes for one user. Written by
// the weak-topic analyzer on submission events; read by the weak-topics report.
type TopicStat struct {
	BaseModel
	UserID    uint   `gorm:"uniqueIndex:idx_topic_user_section;type:bigint unsigned" json:"userId"`
	Section   string `gorm:"uniqueIndex:idx_topic_user_section;size:100" json:"section"`
	Attempted int    `json:"attempted"`
	Wrong     int    `json:"wrong"`
}

func (TopicStat) TableName() string {
	return "topic_stats"
}
