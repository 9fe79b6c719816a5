package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TurnRole says who produced a transcript entry.
type TurnRole string

const (
	RoleUser      TurnRole = "user"
	RoleAssistant TurnRole = "assistant"
)

// ChatTurn is stored in MongoDB, one document per message. A flat
// collection keeps pagination by (session_id, created_at) cheap.
type ChatTurn struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SessionID   string             `bson:"session_id" json:"session_id"`
	Role        TurnRole           `bson:"role" json:"role"`
	Text        string             `bson:"text" json:"text"`
	Language    string             `bson:"language,omitempty" json:"language,omitempty"`
	IsEmergency bool               `bson:"is_emergency,omitempty" json:"is_emergency,omitempty"`
	AISource    string             `bson:"ai_source,omitempty" json:"ai_source,omitempty"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
}
