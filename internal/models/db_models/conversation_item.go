package db_models

// ConversationItem is one transcript entry of a session. Payload holds the
// item exactly as the agent runtime serialises it.
type ConversationItem struct {
	BaseModel
	SessionKey string `gorm:"type:varchar(128);index:idx_session_position,priority:1;not null"`
	Position   int    `gorm:"index:idx_session_position,priority:2;not null"`
	Role       string `gorm:"type:varchar(16)"`
	Payload    string `gorm:"type:jsonb;not null"`
}

func (ConversationItem) TableName() string { return "conversation_items" }

// ConversationSession marks that a session exists, even with an empty transcript.
type ConversationSession struct {
	BaseModel
	SessionKey string `gorm:"type:varchar(128);uniqueIndex;not null"`
	ItemCount  int
}

func (ConversationSession) TableName() string { return "conversation_sessions" }
