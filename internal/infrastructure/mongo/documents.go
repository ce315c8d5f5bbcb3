package mongo

import (
	"time"
)

// SessionDocument は MongoDB 上でのセッション状態のスキーマ。
// State は JSON のまま payload に格納する。
type SessionDocument struct {
	ID        string     `bson:"_id"`
	Payload   string     `bson:"payload"`
	CreatedAt *time.Time `bson:"createdAt,omitempty"`
	UpdatedAt time.Time  `bson:"updatedAt"`
	ExpiresAt *time.Time `bson:"expiresAt,omitempty"`
}
