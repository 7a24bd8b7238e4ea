package model

type IntegrityEventType string

const (
	EventFullscreenExit        IntegrityEventType = "fullscreen_exit"
	EventFullscreenUnsupported IntegrityEventType = "fullscreen_unsupported"
	EventTabBlur               IntegrityEventType = "tab_blur"
)

// IntegrityEvent is the audit trail of client-reported proctoring signals.
type IntegrityEvent struct {
	BaseModel
	AttemptID uint               `gorm:"index;type:bigint unsigned" json:"attemptId"`
	EventType IntegrityEventType `gorm:"size:40" json:"eventType"`
	Detail    string             `gorm:"size:500" json:"detail"`
}

func (IntegrityEvent) TableName() string {
	return "integrity_events"
}
